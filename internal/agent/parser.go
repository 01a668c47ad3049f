package agent

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"caprun/internal/domain"
)

// extractToolCalls attempts to parse tool calls from reply text. Handles a
// pure JSON object, a JSON array of calls, code-fenced JSON, and JSON
// embedded in surrounding prose.
func extractToolCalls(content string) []domain.ToolCall {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		lines := strings.Split(content, "\n")
		if len(lines) >= 3 && strings.HasPrefix(lines[len(lines)-1], "```") {
			content = strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
		}
	}

	if calls := tryParseToolJSON(content); len(calls) > 0 {
		return calls
	}

	if start, end := findJSONBounds(content); start >= 0 && end > start {
		if calls := tryParseToolJSON(content[start:end]); len(calls) > 0 {
			return calls
		}
	}
	return nil
}

type rawToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

func tryParseToolJSON(s string) []domain.ToolCall {
	var single rawToolCall
	if err := json.Unmarshal([]byte(s), &single); err == nil && single.Name != "" {
		return []domain.ToolCall{materialize(single)}
	}
	var many []rawToolCall
	if err := json.Unmarshal([]byte(s), &many); err == nil {
		out := make([]domain.ToolCall, 0, len(many))
		for _, r := range many {
			if r.Name == "" {
				return nil
			}
			out = append(out, materialize(r))
		}
		return out
	}
	return nil
}

func materialize(r rawToolCall) domain.ToolCall {
	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}
	return domain.ToolCall{ID: id, Name: r.Name, Arguments: r.Arguments}
}

// findJSONBounds locates the first balanced top-level JSON object or array
// in s, skipping string contents. Returns (-1, -1) if none is found.
func findJSONBounds(s string) (int, int) {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return -1, -1
	}
	openChar := s[start]
	closeChar := byte('}')
	if openChar == '[' {
		closeChar = ']'
	}

	depth := 0
	inStr := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inStr {
			if ch == '\\' {
				i++
				continue
			}
			if ch == '"' {
				inStr = false
			}
			continue
		}
		switch ch {
		case '"':
			inStr = true
		case openChar:
			depth++
		case closeChar:
			depth--
			if depth == 0 {
				return start, i + 1
			}
		}
	}
	return -1, -1
}
