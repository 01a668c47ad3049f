package agent

import "testing"

func TestExtractToolCalls_PureJSON(t *testing.T) {
	calls := extractToolCalls(`{"name": "echo", "arguments": {"message": "hi"}}`)
	if len(calls) != 1 {
		t.Fatalf("expected one call, got %d", len(calls))
	}
	if calls[0].Name != "echo" || calls[0].Arguments["message"] != "hi" {
		t.Fatalf("call wrong: %+v", calls[0])
	}
	if calls[0].ID == "" {
		t.Fatal("missing id should be filled in")
	}
}

func TestExtractToolCalls_Array(t *testing.T) {
	calls := extractToolCalls(`[{"name": "a", "arguments": {}}, {"name": "b", "arguments": {}}]`)
	if len(calls) != 2 || calls[0].Name != "a" || calls[1].Name != "b" {
		t.Fatalf("array not parsed: %+v", calls)
	}
}

func TestExtractToolCalls_CodeFence(t *testing.T) {
	content := "```json\n{\"name\": \"echo\", \"arguments\": {\"message\": \"x\"}}\n```"
	calls := extractToolCalls(content)
	if len(calls) != 1 || calls[0].Name != "echo" {
		t.Fatalf("fenced JSON not parsed: %+v", calls)
	}
}

func TestExtractToolCalls_EmbeddedInProse(t *testing.T) {
	content := `I will call the tool now: {"name": "echo", "arguments": {"message": "a {b}"}} and wait.`
	calls := extractToolCalls(content)
	if len(calls) != 1 {
		t.Fatalf("embedded JSON not found: %+v", calls)
	}
	if calls[0].Arguments["message"] != "a {b}" {
		t.Fatalf("braces inside strings broke the scan: %+v", calls[0].Arguments)
	}
}

func TestExtractToolCalls_PlainText(t *testing.T) {
	for _, content := range []string{
		"just a normal reply",
		`{"note": "an object without a name"}`,
		"",
	} {
		if calls := extractToolCalls(content); len(calls) != 0 {
			t.Fatalf("content %q produced calls: %+v", content, calls)
		}
	}
}
