package run

import (
	"testing"

	"caprun/internal/domain"
)

func TestLedger(t *testing.T) {
	l := NewLedger()

	first := l.StartRun()
	if first == "" {
		t.Fatal("run id empty")
	}
	l.Record(domain.InvocationRecord{CapabilityID: "a", FunctionName: "fa", Output: "1"})
	l.Record(domain.InvocationRecord{CapabilityID: "b", FunctionName: "fb", Output: "2"})
	l.Record(domain.InvocationRecord{CapabilityID: "a", FunctionName: "fa", Output: "3"})

	entries := l.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries including the duplicate, got %d", len(entries))
	}
	if entries[0].Output != "1" || entries[2].Output != "3" {
		t.Fatalf("order lost: %+v", entries)
	}

	// The returned slice is a copy.
	entries[0].Output = "mutated"
	if l.Entries()[0].Output != "1" {
		t.Fatal("Entries leaked internal state")
	}

	second := l.StartRun()
	if second == first {
		t.Fatal("run ids must differ")
	}
	if len(l.Entries()) != 0 {
		t.Fatal("new run did not clear the ledger")
	}
}
