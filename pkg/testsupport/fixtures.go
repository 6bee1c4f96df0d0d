// Package testsupport collects fixture helpers shared by package tests.
package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	pkgprompt "github.com/goliatone/go-promptgen/pkg/prompt"
)

// LoadTemplate reads a fixture file and parses it into a prompt.Template.
// Testing helpers fail the test on error to keep contract tests concise.
func LoadTemplate(t *testing.T, path string) pkgprompt.Template {
	t.Helper()

	tpl, err := LoadTemplateFromPath(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	return tpl
}

// LoadTemplateFromPath parses a template fixture without requiring testing.T,
// allowing callers to wire fixtures in setup functions.
func LoadTemplateFromPath(path string) (pkgprompt.Template, error) {
	if path == "" {
		return pkgprompt.Template{}, errors.New("testsupport: template path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return pkgprompt.Template{}, fmt.Errorf("testsupport: read template: %w", err)
	}
	name := filepath.Base(path)
	return pkgprompt.Parse(name[:len(name)-len(filepath.Ext(name))], data)
}

// WriteTemplate writes template content under dir and returns the full path.
func WriteTemplate(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir template dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	return path
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
