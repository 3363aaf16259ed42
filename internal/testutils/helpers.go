// Package testutils holds fixtures shared by the package tests.
package testutils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/conneroisu/stencil/internal/config"
	"github.com/conneroisu/stencil/internal/dom"
	"github.com/conneroisu/stencil/internal/registry"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// CreateTestConfig returns the default configuration, read from a fresh
// Viper instance so the global one is left alone.
func CreateTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(viper.New())
	require.NoError(t, err)
	return cfg
}

// ElementConstructor returns a constructor building an empty <tag>.
func ElementConstructor(tag string, attrs ...html.Attribute) registry.Constructor {
	return func(*registry.Scope) (*html.Node, error) {
		return dom.NewElement(tag, attrs...), nil
	}
}

// CreateTestRegistry creates a registry holding a "card" component built as
// <article class="card"> and a native "clock".
func CreateTestRegistry(t *testing.T) *registry.ComponentRegistry {
	t.Helper()
	reg := registry.NewComponentRegistry()
	require.NoError(t, reg.Register("card",
		ElementConstructor("article", html.Attribute{Key: "class", Val: "card"})))
	require.NoError(t, reg.DefineNative("clock"))
	return reg
}

// WaitForFileChange waits for a file to be modified (useful for testing file watchers)
func WaitForFileChange(
	t *testing.T,
	filePath string,
	originalModTime time.Time,
	timeout time.Duration,
) {
	t.Helper()
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		info, err := os.Stat(filePath)
		if err == nil && info.ModTime().After(originalModTime) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("File %s was not modified within %v", filePath, timeout)
}
