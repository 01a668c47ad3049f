package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"caprun/internal/domain"
	"caprun/internal/ephemeral"
)

// SchemaWrite materializes a scratch draft as a schema file. The draft is
// deleted after a successful read so it cannot be written twice.
type SchemaWrite struct {
	store *ephemeral.Store
	dir   string
}

func schemaWriteDescriptor() domain.Descriptor {
	return domain.Descriptor{
		ID:           "core.schema.write",
		FunctionName: "schema_write",
		Label:        "Write schema file",
		Description:  "Consume a scratch draft and write it to the schema directory as a .json file.",
		Group:        "schema",
		Contexts: []domain.ContextSpec{
			{Name: "key", Type: domain.TypeString, Required: true, Label: "Draft key"},
			{Name: "filename", Type: domain.TypeString, Required: true, Label: "File name"},
		},
	}
}

func (c *SchemaWrite) Execute(ctx context.Context, call *domain.Call) (string, domain.Value, error) {
	// Input checks happen before the draft is touched: a bad filename must
	// not consume anything.
	target, err := c.resolveTarget(call.Str("filename"))
	if err != nil {
		return "", domain.Absent(), err
	}

	payload, found, err := c.store.Consume(ctx, call.Principal.ID, call.Str("key"))
	if err != nil {
		return "", domain.Absent(), err
	}
	if !found {
		return "", domain.Absent(), fmt.Errorf("no draft under key %q", call.Str("key"))
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", domain.Absent(), fmt.Errorf("create schema directory: %w", err)
	}
	if err := os.WriteFile(target, []byte(payload), 0o644); err != nil {
		return "", domain.Absent(), fmt.Errorf("write schema file: %w", err)
	}

	out := fmt.Sprintf("Wrote %d bytes to %s", len(payload), target)
	return out, domain.MapValue(map[string]domain.Value{
		"path":  domain.StringValue(target),
		"bytes": domain.IntValue(int64(len(payload))),
	}), nil
}

// resolveTarget confines the filename to the schema directory and enforces
// the .json extension.
func (c *SchemaWrite) resolveTarget(filename string) (string, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return "", domain.InvalidInputf("empty filename")
	}
	if !strings.HasSuffix(filename, ".json") {
		return "", domain.InvalidInputf("filename %q must end in .json", filename)
	}
	dirAbs, err := filepath.Abs(c.dir)
	if err != nil {
		return "", fmt.Errorf("resolve schema directory: %w", err)
	}
	resolved, err := filepath.Abs(filepath.Clean(filepath.Join(dirAbs, filename)))
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	if !strings.HasPrefix(resolved, dirAbs+string(filepath.Separator)) {
		return "", domain.InvalidInputf("filename %q escapes the schema directory", filename)
	}
	return resolved, nil
}
