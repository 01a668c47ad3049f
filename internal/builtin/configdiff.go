package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"caprun/internal/confdiff"
	"caprun/internal/domain"
)

// ConfigDiff compares the active config store against the staging store.
type ConfigDiff struct {
	active  domain.ConfigSource
	staging domain.ConfigSource
}

func configDiffDescriptor() domain.Descriptor {
	return domain.Descriptor{
		ID:           "core.config.diff",
		FunctionName: "config_diff",
		Label:        "Diff configuration stores",
		Description:  "Compare the active configuration trees against staging and report created, deleted, and updated items with line diffs.",
		Group:        "config",
		Contexts: []domain.ContextSpec{
			{Name: "include_lines", Type: domain.TypeBoolean, Default: domain.BoolValue(true), Label: "Include line diffs"},
		},
	}
}

func (c *ConfigDiff) Execute(ctx context.Context, call *domain.Call) (string, domain.Value, error) {
	res, err := confdiff.Diff(ctx, c.active, c.staging)
	if err != nil {
		return "", domain.Absent(), err
	}
	includeLines, _ := call.Value("include_lines").AsBool()
	if !includeLines {
		res.Lines = nil
	}
	return RenderDiff(res), diffValue(res), nil
}

// RenderDiff formats a diff result for humans.
func RenderDiff(res *confdiff.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "created: %s\n", nameList(res.Created))
	fmt.Fprintf(&b, "deleted: %s\n", nameList(res.Deleted))
	fmt.Fprintf(&b, "updated: %s\n", nameList(res.Updated))
	for _, name := range res.Updated {
		lines, ok := res.Lines[name]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n--- %s ---\n", name)
		for _, l := range lines {
			switch l.Op {
			case confdiff.OpAdd:
				fmt.Fprintf(&b, "+ %s\n", l.Text)
			case confdiff.OpDelete:
				fmt.Fprintf(&b, "- %s\n", l.Text)
			default:
				fmt.Fprintf(&b, "  %s\n", l.Text)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func nameList(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}

// diffValue converts the result into the structured-value form through its
// JSON shape.
func diffValue(res *confdiff.Result) domain.Value {
	data, err := json.Marshal(res)
	if err != nil {
		return domain.Absent()
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return domain.Absent()
	}
	return domain.FromAny(m)
}
