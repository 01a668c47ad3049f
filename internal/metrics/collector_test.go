package metrics

import (
	"testing"
	"time"
)

func TestCollector(t *testing.T) {
	c := NewCollector()
	c.Record("core.echo", 10*time.Millisecond, false)
	c.Record("core.echo", 30*time.Millisecond, true)
	c.Record("core.other", 5*time.Millisecond, false)

	snap := c.Snapshot()
	echo := snap["core.echo"]
	if echo.Invocations != 2 || echo.Failures != 1 {
		t.Fatalf("echo counters wrong: %+v", echo)
	}
	if echo.Mean() != 20*time.Millisecond {
		t.Fatalf("expected mean 20ms, got %s", echo.Mean())
	}
	if snap["core.other"].Failures != 0 {
		t.Fatalf("other counters wrong: %+v", snap["core.other"])
	}

	// Snapshot is detached from the live counters.
	c.Record("core.echo", time.Millisecond, false)
	if snap["core.echo"].Invocations != 2 {
		t.Fatal("snapshot tracked later records")
	}
}

func TestStat_MeanOfZero(t *testing.T) {
	if m := (Stat{}).Mean(); m != 0 {
		t.Fatalf("mean of no invocations should be 0, got %s", m)
	}
}
