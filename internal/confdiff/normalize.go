package confdiff

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Render serializes a config tree to its canonical block text: keys sorted
// at every depth, nested mappings indented, lists as dash items. Two trees
// that differ only in key order render identically, which is the whole
// point of normalization.
func Render(tree map[string]any) string {
	var b strings.Builder
	renderMap(&b, tree, 0)
	return b.String()
}

func renderMap(b *strings.Builder, m map[string]any, depth int) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		renderEntry(b, k, m[k], depth)
	}
}

func renderEntry(b *strings.Builder, key string, v any, depth int) {
	indent := strings.Repeat("  ", depth)
	switch t := asMap(v); {
	case t != nil:
		fmt.Fprintf(b, "%s%s:\n", indent, key)
		renderMap(b, t, depth+1)
	default:
		if list, ok := v.([]any); ok {
			fmt.Fprintf(b, "%s%s:\n", indent, key)
			for _, el := range list {
				if nested := asMap(el); nested != nil {
					fmt.Fprintf(b, "%s- \n", indent)
					renderMap(b, nested, depth+1)
					continue
				}
				fmt.Fprintf(b, "%s- %s\n", indent, renderScalar(el))
			}
			return
		}
		fmt.Fprintf(b, "%s%s: %s\n", indent, key, renderScalar(v))
	}
}

func renderScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// asMap widens the two mapping shapes YAML decoding can produce.
func asMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, el := range t {
			out[fmt.Sprint(k)] = el
		}
		return out
	default:
		return nil
	}
}
