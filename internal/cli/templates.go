package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bjax13/CookbookClub/internal/application"
	"github.com/bjax13/CookbookClub/internal/persistence"
	"github.com/bjax13/CookbookClub/internal/reminder"
)

const templateFileVersion = 1

type templateExport struct {
	Version    int                        `json:"version"`
	ExportedAt string                     `json:"exportedAt"`
	Templates  map[string]reminder.Policy `json:"templates"`
}

type templateExportResult struct {
	ExportedTo    string `json:"exportedTo"`
	TemplateCount int    `json:"templateCount"`
}

type templateImportResult struct {
	ImportedFrom string `json:"importedFrom"`
	reminder.ImportResult
}

func exportTemplates(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
	out, err := env.inv.required("out")
	if err != nil {
		return nil, err
	}
	templates, err := svc.ExportReminderTemplates(ctx)
	if err != nil {
		return nil, err
	}
	exportedTo, err := writeJSONFile(out, templateExport{
		Version:    templateFileVersion,
		ExportedAt: application.FormatTimestamp(env.now()),
		Templates:  templates,
	})
	if err != nil {
		return nil, err
	}
	return templateExportResult{ExportedTo: exportedTo, TemplateCount: len(templates)}, nil
}

func importTemplates(ctx context.Context, env *commandEnv, svc *application.Service) (any, error) {
	in, err := env.inv.required("in")
	if err != nil {
		return nil, err
	}
	absolute, raw, err := readJSONFile(in, "template import")
	if err != nil {
		return nil, err
	}
	actor, err := env.inv.required("actor")
	if err != nil {
		return nil, err
	}
	result, err := svc.ImportReminderTemplates(ctx, application.ImportReminderTemplatesParams{
		ActorUserID: actor,
		Templates:   decodeTemplates(raw),
		Overwrite:   env.inv.flag("overwrite"),
		Prefix:      env.inv.optional("prefix"),
	})
	if err != nil {
		return nil, err
	}
	return templateImportResult{ImportedFrom: absolute, ImportResult: result}, nil
}

// decodeTemplates accepts either an export envelope or a bare map of
// templates. Anything that is not an object yields nil.
func decodeTemplates(raw []byte) map[string]reminder.Input {
	body := raw
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil
	}
	if inner, ok := envelope["templates"]; ok && !bytes.Equal(bytes.TrimSpace(inner), []byte("null")) {
		body = inner
	}

	var policies map[string]reminder.Policy
	if err := json.Unmarshal(body, &policies); err != nil || policies == nil {
		return nil
	}
	templates := make(map[string]reminder.Input, len(policies))
	for name, policy := range policies {
		templates[name] = policy.Input()
	}
	return templates
}

// readJSONFile reads a JSON document relative to the working directory and
// checks that it parses.
func readJSONFile(path, label string) (string, []byte, error) {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return "", nil, err
	}
	raw, err := os.ReadFile(absolute)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil, &persistence.FileNotFoundError{Label: capitalize(label) + " file", Path: absolute}
		}
		return "", nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", nil, fmt.Errorf("%s file is empty: %s", label, absolute)
	}
	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "", nil, fmt.Errorf("Invalid JSON in %s file: %s (%v)", label, absolute, err)
	}
	return absolute, raw, nil
}

// writeJSONFile writes payload as pretty JSON, creating parent directories.
func writeJSONFile(path string, payload any) (string, error) {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(absolute), 0o755); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := encodeJSON(&buf, payload); err != nil {
		return "", err
	}
	if err := os.WriteFile(absolute, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return absolute, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
