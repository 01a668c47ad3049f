package capability

import (
	"strconv"
	"strings"

	"caprun/internal/domain"
)

// Resolve turns a coerced value into a loaded entity when the declared type
// names an entity kind. Resolution is best-effort: a lookup miss leaves the
// raw value in place so validation (or the capability itself) decides what
// to do with a bare identifier.
func Resolve(v domain.Value, t domain.ContextType, defaultKind string, store domain.EntityStore) domain.Value {
	if !t.IsEntity() || store == nil {
		return v
	}

	kind := t.EntityKind()
	if kind == "" {
		kind = defaultKind
	}

	// Already a loaded object.
	if _, ok := v.AsEntity(); ok {
		return v
	}

	candidate := domain.Absent()
	switch v.Kind() {
	case domain.KindMap:
		// Composite forms: an embedded loaded object, or a target_id
		// shaped reference.
		if e, ok := v.MapGet("entity").AsEntity(); ok {
			return domain.EntityValue(e)
		}
		if ref := v.MapGet("target_id"); !ref.IsAbsent() {
			candidate = ref
		}
	case domain.KindString, domain.KindInt:
		candidate = v
	}
	if candidate.IsAbsent() {
		return v
	}

	id := candidateID(candidate)
	if kind == "" {
		// A kind:id composite can recover the kind when nothing else
		// declared one.
		if k, rest, ok := strings.Cut(id, ":"); ok && k != "" && rest != "" {
			kind, id = k, rest
		}
	}
	if kind == "" || id == "" {
		return v
	}

	if ent, ok := store.Get(kind, id); ok {
		return domain.EntityValue(ent)
	}
	return v
}

func candidateID(v domain.Value) string {
	switch v.Kind() {
	case domain.KindString:
		return strings.TrimSpace(v.Str())
	case domain.KindInt:
		i, _ := v.AsInt()
		return strconv.FormatInt(i, 10)
	default:
		return ""
	}
}
