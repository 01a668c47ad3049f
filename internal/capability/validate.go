package capability

import (
	"fmt"
	"strings"

	"caprun/internal/domain"
)

// Validate checks every declared context of a capability against the values
// accumulated for one invocation. It returns all violations, not just the
// first; execution happens only when the result is empty.
func Validate(desc domain.Descriptor, values map[string]domain.Value) []domain.Violation {
	var out []domain.Violation
	for _, spec := range desc.Contexts {
		v, ok := values[spec.Name]
		if !ok || v.IsAbsent() {
			if spec.Required && spec.Default.IsAbsent() {
				out = append(out, domain.Violation{
					Context: spec.DisplayName(),
					Reason:  "required context is missing",
				})
			}
			continue
		}
		if reason := typeMismatch(spec.Type, v); reason != "" {
			out = append(out, domain.Violation{Context: spec.DisplayName(), Reason: reason})
		}
	}
	return out
}

// typeMismatch reports a constraint violation the declared-type cast could
// not repair. Entity slots stay lenient: an unresolved reference is handed
// through as a raw identifier.
func typeMismatch(t domain.ContextType, v domain.Value) string {
	ts := string(t)
	switch {
	case t.IsEntity(), t == domain.TypeOpaque:
		return ""
	case strings.HasPrefix(ts, string(domain.TypeBoolean)):
		if v.Kind() != domain.KindBool {
			return mismatch("boolean", v)
		}
	case strings.HasPrefix(ts, string(domain.TypeInteger)):
		if v.Kind() != domain.KindInt && v.Kind() != domain.KindList {
			return mismatch("integer", v)
		}
	case strings.HasPrefix(ts, string(domain.TypeFloat)):
		if v.Kind() != domain.KindFloat && v.Kind() != domain.KindInt {
			return mismatch("float", v)
		}
	case t == domain.TypeList:
		if v.Kind() != domain.KindList {
			return mismatch("list", v)
		}
	}
	return ""
}

func mismatch(want string, v domain.Value) string {
	return fmt.Sprintf("expected %s, got %s %q", want, v.Kind(), v.Render())
}
