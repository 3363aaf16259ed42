package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/conneroisu/stencil/internal/logging"
	"github.com/conneroisu/stencil/internal/registry"
	"github.com/conneroisu/stencil/internal/testutils"
	"github.com/conneroisu/stencil/internal/version"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func executeCommand(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()

	viper.Reset()
	cfgFile = ""
	*renderFlags = StandardFlags{}
	*watchFlags = StandardFlags{}
	*inspectFlags = StandardFlags{OutputFormat: "table"}
	versionFormat, versionShort, versionDetailed = "text", false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	return out.String(), err
}

func pageFixture(t *testing.T) (tmpl, values, components string) {
	t.Helper()
	dir := t.TempDir()
	tmpl = testutils.WriteFile(t, dir, "page.html", `<p class="${}">${}</p><tpl-slot-card>c</tpl-slot-card>`)
	values = testutils.WriteFile(t, dir, "values.yaml", "- lead\n- Hello\n")
	components = testutils.WriteFile(t, dir, "components.yaml", "scope:\n  card: {tag: section}\n")
	return tmpl, values, components
}

func TestRenderCommand(t *testing.T) {
	tmpl, values, components := pageFixture(t)

	out, err := executeCommand(t, context.Background(),
		"render", tmpl, "--values", values, "--components", components)
	require.NoError(t, err)
	assert.Equal(t, "<p class=\"lead\">Hello</p><section>c</section>\n", out)
}

func TestRenderCommandWritesOutputFile(t *testing.T) {
	tmpl, values, components := pageFixture(t)
	target := filepath.Join(t.TempDir(), "out.html")

	out, err := executeCommand(t, context.Background(),
		"render", tmpl, "--values", values, "-c", components, "-o", target)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "<p class=\"lead\">Hello</p><section>c</section>\n", string(data))
}

func TestRenderCommandErrors(t *testing.T) {
	tmpl, _, _ := pageFixture(t)

	testCases := []struct {
		name string
		args []string
		msg  string
	}{
		{"missing values file", []string{"render", tmpl, "--values", "nope.yaml"}, "file does not exist"},
		{"unresolved component", []string{"render", tmpl}, "ERR_UNRESOLVED_COMPONENT"},
		{"no template", []string{"render"}, "accepts 1 arg"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := executeCommand(t, context.Background(), tc.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestRenderCommandUsesConfigFile(t *testing.T) {
	dir := t.TempDir()
	tmpl := testutils.WriteFile(t, dir, "page.html", `<b>{{}}</b><ui_card></ui_card>`)
	values := testutils.WriteFile(t, dir, "values.yaml", "- bold\n")
	components := testutils.WriteFile(t, dir, "components.yaml", "global:\n  card: {tag: aside}\n")
	cfg := testutils.WriteFile(t, dir, "stencil.yml", `
template:
  hole: "{{}}"
  marker: ui
  separator: _
components:
  file: `+components+`
`)

	out, err := executeCommand(t, context.Background(),
		"--config", cfg, "render", tmpl, "--values", values)
	require.NoError(t, err)
	assert.Equal(t, "<b>bold</b><aside></aside>\n", out)
}

func TestRenderCommandMissingConfigFile(t *testing.T) {
	tmpl, _, _ := pageFixture(t)

	_, err := executeCommand(t, context.Background(),
		"--config", filepath.Join(t.TempDir(), "missing.yml"), "render", tmpl)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ERR_CONFIG_INVALID")
}

func TestInspectCommand(t *testing.T) {
	tmpl, _, _ := pageFixture(t)

	t.Run("table", func(t *testing.T) {
		out, err := executeCommand(t, context.Background(), "inspect", tmpl)
		require.NoError(t, err)
		assert.Contains(t, out, "Values:   2")
		assert.Contains(t, out, "Slots:    1")
		assert.Contains(t, out, "attribute")
		assert.Contains(t, out, `"" ""`)
	})

	t.Run("json", func(t *testing.T) {
		out, err := executeCommand(t, context.Background(), "inspect", tmpl, "-f", "json")
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		assert.Equal(t, float64(2), decoded["values"])
		assert.Equal(t, float64(1), decoded["slots"])
		descriptors := decoded["descriptors"].([]any)
		require.Len(t, descriptors, 2)
		assert.Equal(t, "attribute", descriptors[0].(map[string]any)["kind"])
		assert.Equal(t, "node", descriptors[1].(map[string]any)["kind"])
	})

	t.Run("yaml", func(t *testing.T) {
		out, err := executeCommand(t, context.Background(), "inspect", tmpl, "--format", "yaml")
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
		assert.Equal(t, 2, decoded["values"])
		assert.Equal(t, tmpl, decoded["template"])
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := executeCommand(t, context.Background(), "inspect", tmpl, "-f", "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid output format xml")
	})
}

func TestVersionCommand(t *testing.T) {
	info := version.Get()

	out, err := executeCommand(t, context.Background(), "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, info.Version+"\n", out)

	out, err = executeCommand(t, context.Background(), "version")
	require.NoError(t, err)
	assert.Equal(t, "stencil "+info.Short()+"\n", out)

	out, err = executeCommand(t, context.Background(), "version", "--detailed")
	require.NoError(t, err)
	assert.Contains(t, out, "Build type: development")

	out, err = executeCommand(t, context.Background(), "version", "-f", "json")
	require.NoError(t, err)
	var decoded version.BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, info.Version, decoded.Version)
}

func TestWatchCommandRendersInitially(t *testing.T) {
	tmpl, values, components := pageFixture(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	out, err := executeCommand(t, ctx,
		"watch", tmpl, "--values", values, "--components", components)
	require.NoError(t, err)
	assert.Equal(t, "<p class=\"lead\">Hello</p><section>c</section>\n", out)
}

func TestWatchCommandRerendersOnChange(t *testing.T) {
	tmpl, values, components := pageFixture(t)
	target := filepath.Join(t.TempDir(), "out.html")

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := executeCommand(t, ctx,
			"watch", tmpl, "--values", values, "-c", components, "-o", target)
		errCh <- err
	}()

	require.Eventually(t, func() bool {
		_, err := os.Stat(target)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)
	info, err := os.Stat(target)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(values, []byte("- lead\n- Bye\n"), 0o644))
	testutils.WaitForFileChange(t, target, info.ModTime(), 5*time.Second)

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(target)
		return err == nil && string(data) == "<p class=\"lead\">Bye</p><section>c</section>\n"
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-errCh)
}

func TestLogRegistryEventsReportsUpdates(t *testing.T) {
	var buf bytes.Buffer
	previous := appLogger
	appLogger = logging.NewLogger(&logging.LoggerConfig{Level: logging.LevelInfo, Format: "json", Output: &buf})
	defer func() { appLogger = previous }()

	events := make(chan registry.ComponentEvent, 2)
	events <- registry.ComponentEvent{Type: registry.EventTypeUpdated, Component: &registry.ComponentInfo{Name: "card"}}
	events <- registry.ComponentEvent{Type: registry.EventTypeRemoved, Component: &registry.ComponentInfo{Name: "badge"}}
	close(events)

	logRegistryEvents(context.Background(), events)

	out := buf.String()
	assert.Contains(t, out, `"component":"card"`)
	assert.Contains(t, out, `"event":"updated"`)
	assert.Contains(t, out, `"component":"badge"`)
}

func TestValidateFormat(t *testing.T) {
	validate := ValidateFormat("table", "json")
	assert.NoError(t, validate("json"))
	assert.EqualError(t, validate("csv"), "invalid output format csv, must be one of: table, json")
}
