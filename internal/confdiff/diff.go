// Package confdiff compares two stores of hierarchical configuration
// trees: set difference over item names, then a normalized line-level diff
// for items present on both sides.
package confdiff

import (
	"context"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"caprun/internal/domain"
)

// LineOp classifies one line of an item diff.
type LineOp string

const (
	OpContext LineOp = "context"
	OpAdd     LineOp = "add"
	OpDelete  LineOp = "delete"
)

// Line is one operation of a minimal edit script.
type Line struct {
	Op   LineOp `json:"op"`
	Text string `json:"text"`
}

// Result is the outcome of one comparison. Created and deleted keep their
// source store's enumeration order; updated keeps the intersection's.
type Result struct {
	Created []string          `json:"created"`
	Deleted []string          `json:"deleted"`
	Updated []string          `json:"updated"`
	Lines   map[string][]Line `json:"line_diffs,omitempty"`
}

// Diff compares the active store against the staging store. Items whose
// normalized forms match are untouched; items where either side is not a
// well-formed mapping are skipped entirely.
func Diff(ctx context.Context, active, staging domain.ConfigSource) (*Result, error) {
	activeNames, err := active.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	stagingNames, err := staging.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	inActive := make(map[string]bool, len(activeNames))
	for _, n := range activeNames {
		inActive[n] = true
	}
	inStaging := make(map[string]bool, len(stagingNames))
	for _, n := range stagingNames {
		inStaging[n] = true
	}

	res := &Result{
		Created: []string{},
		Deleted: []string{},
		Updated: []string{},
		Lines:   map[string][]Line{},
	}

	for _, n := range activeNames {
		if !inStaging[n] {
			res.Created = append(res.Created, n)
		}
	}
	for _, n := range stagingNames {
		if !inActive[n] {
			res.Deleted = append(res.Deleted, n)
		}
	}

	for _, name := range activeNames {
		if !inStaging[name] {
			continue
		}
		activeTree, okA, err := active.Read(ctx, name)
		if err != nil {
			return nil, err
		}
		stagingTree, okS, err := staging.Read(ctx, name)
		if err != nil {
			return nil, err
		}
		if !okA || !okS || activeTree == nil || stagingTree == nil {
			// One side is absent or not a mapping: neither changed nor
			// equal, just not comparable.
			continue
		}
		activeText := Render(activeTree)
		stagingText := Render(stagingTree)
		if activeText == stagingText {
			continue
		}
		res.Updated = append(res.Updated, name)
		res.Lines[name] = lineDiff(stagingText, activeText)
	}

	return res, nil
}

// lineDiff computes the minimal edit script from the staging text to the
// active text with one line of unchanged context and no headers.
func lineDiff(from, to string) []Line {
	a := splitLines(from)
	b := splitLines(to)
	matcher := difflib.NewMatcher(a, b)

	var out []Line
	for _, group := range matcher.GetGroupedOpCodes(1) {
		for _, op := range group {
			switch op.Tag {
			case 'e':
				for _, text := range a[op.I1:op.I2] {
					out = append(out, Line{Op: OpContext, Text: text})
				}
			case 'd':
				for _, text := range a[op.I1:op.I2] {
					out = append(out, Line{Op: OpDelete, Text: text})
				}
			case 'i':
				for _, text := range b[op.J1:op.J2] {
					out = append(out, Line{Op: OpAdd, Text: text})
				}
			case 'r':
				for _, text := range a[op.I1:op.I2] {
					out = append(out, Line{Op: OpDelete, Text: text})
				}
				for _, text := range b[op.J1:op.J2] {
					out = append(out, Line{Op: OpAdd, Text: text})
				}
			}
		}
	}
	return out
}

func splitLines(s string) []string {
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil
	}
	return lines
}
