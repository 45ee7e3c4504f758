package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Iron-Ham/framegraph/internal/testutil"
)

// executeCommand runs a fresh command tree with args and returns captured output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// setupEnv isolates config and state directories and returns a sample capture.
func setupEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	return testutil.WriteSample(t)
}

func TestRootCommand(t *testing.T) {
	root := newRootCmd()
	if root.Use != "framegraph" {
		t.Errorf("Use = %q, want framegraph", root.Use)
	}

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"build", "passes", "edges", "export", "view", "serve", "config"} {
		if !names[want] {
			t.Errorf("missing subcommand %q", want)
		}
	}

	for _, flag := range []string{"config", "log-level", "no-cache"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing global flag --%s", flag)
		}
	}
}

func TestBuild(t *testing.T) {
	capture := setupEnv(t)

	out, err := executeCommand(t, "build", capture)
	if err != nil {
		t.Fatalf("build error = %v\n%s", err, out)
	}
	for _, want := range []string{"(Vulkan)", "(built)", "Frames:   2", "Passes:   4 (2 end)", "Edges:    4"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = executeCommand(t, "build", capture)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "(cached)") {
		t.Errorf("second build should hit the cache:\n%s", out)
	}

	for _, args := range [][]string{
		{"build", "--no-cache", capture},
		{"build", "--rebuild", capture},
	} {
		out, err = executeCommand(t, args...)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "(built)") {
			t.Errorf("%v should build:\n%s", args, out)
		}
	}
}

func TestBuild_JSON(t *testing.T) {
	capture := setupEnv(t)

	out, err := executeCommand(t, "build", "--json", "--no-cache", capture)
	if err != nil {
		t.Fatalf("build error = %v", err)
	}
	var sum buildSummary
	if err := json.Unmarshal([]byte(out), &sum); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if sum.Stats.Passes != 4 || sum.Stats.Edges != 4 {
		t.Errorf("stats = %+v", sum.Stats)
	}
	if len(sum.EndPasses) != 2 || sum.EndPasses[0] != 6 || sum.EndPasses[1] != 8 {
		t.Errorf("endPasses = %v, want [6 8]", sum.EndPasses)
	}
	if sum.API != "Vulkan" || sum.Digest == "" || sum.BuildID == "" {
		t.Errorf("summary = %+v", sum)
	}
}

func TestBuild_Errors(t *testing.T) {
	setupEnv(t)

	if _, err := executeCommand(t, "build"); err == nil {
		t.Error("build without a capture should fail")
	}
	if _, err := executeCommand(t, "build", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("build of a missing file should fail")
	}
}

func TestPasses(t *testing.T) {
	capture := setupEnv(t)

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name: "all",
			want: []string{"EID", "vkCmdDraw(shadow 1)", "vkCmdDraw(gbuffer 1)", "vkQueuePresentKHR", "vkCmdDraw(post 1)"},
		},
		{
			name:    "filter",
			args:    []string{"--filter", "gbuffer 1"},
			want:    []string{"vkCmdDraw(gbuffer 1)", "2 Targets + Depth"},
			notWant: []string{"shadow", "post"},
		},
		{
			name:    "frame",
			args:    []string{"--frame", "2"},
			want:    []string{"vkCmdDraw(post 1)"},
			notWant: []string{"gbuffer"},
		},
		{
			name:    "hide end passes",
			args:    []string{"--hide", "end"},
			want:    []string{"shadow", "gbuffer"},
			notWant: []string{"vkQueuePresentKHR", "post"},
		},
		{
			name: "nothing matches",
			args: []string{"--filter", "compute*"},
			want: []string{"no passes match"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"passes", "--no-cache", capture}, tt.args...)
			out, err := executeCommand(t, args...)
			if err != nil {
				t.Fatalf("passes error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output should not contain %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestPasses_InvalidFlags(t *testing.T) {
	capture := setupEnv(t)

	if _, err := executeCommand(t, "passes", capture, "--hide", "compute"); err == nil {
		t.Error("unknown category should fail")
	}
	if _, err := executeCommand(t, "passes", capture, "--filter", "[unterminated"); err == nil {
		t.Error("invalid pattern should fail")
	}
}

func TestEdges(t *testing.T) {
	capture := setupEnv(t)

	out, err := executeCommand(t, "edges", "--no-cache", capture)
	if err != nil {
		t.Fatalf("edges error = %v", err)
	}
	for _, want := range []string{"ResourceId::20", "Shadow Map", "GBuffer Albedo", "Lighting", "depth", "color"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = executeCommand(t, "edges", "--no-cache", "--kind", "depth", capture)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Shadow Map") || strings.Contains(out, "Lighting") {
		t.Errorf("--kind depth output:\n%s", out)
	}

	if _, err := executeCommand(t, "edges", "--kind", "stencil", capture); err == nil {
		t.Error("unknown edge kind should fail")
	}
}

func TestExport(t *testing.T) {
	capture := setupEnv(t)

	out, err := executeCommand(t, "export", "--no-cache", capture)
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if !strings.HasPrefix(out, "digraph") || strings.Contains(out, "resource_") {
		t.Errorf("default export should be the simple DOT:\n%.200s", out)
	}

	out, err = executeCommand(t, "export", "--no-cache", "--format", "json", capture)
	if err != nil {
		t.Fatal(err)
	}
	if !json.Valid([]byte(out)) {
		t.Errorf("json export is not valid JSON:\n%.200s", out)
	}

	path := filepath.Join(t.TempDir(), "graph.svg")
	if _, err := executeCommand(t, "export", "--no-cache", "-f", "svg", "-o", path, capture); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "<svg") {
		t.Errorf("svg file starts with %.20q", data)
	}

	if _, err := executeCommand(t, "export", "--format", "png", capture); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestExport_EnvOverridesDefaultView(t *testing.T) {
	capture := setupEnv(t)
	t.Setenv("FRAMEGRAPH_VIEW_DEFAULT", "detailed")

	out, err := executeCommand(t, "export", "--no-cache", capture)
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if !strings.Contains(out, "resource_20") {
		t.Errorf("detailed view should route edges through resource nodes:\n%.300s", out)
	}
}

func TestView_RequiresTerminal(t *testing.T) {
	capture := setupEnv(t)

	_, err := executeCommand(t, "view", capture)
	if err == nil || !strings.Contains(err.Error(), "terminal") {
		t.Errorf("view without a terminal error = %v", err)
	}
}

func TestServe_BadAddress(t *testing.T) {
	capture := setupEnv(t)

	if _, err := executeCommand(t, "serve", "--watch=false", "--addr", "not-an-address", capture); err == nil {
		t.Error("serve on an invalid address should fail")
	}
}

func TestConfig(t *testing.T) {
	setupEnv(t)
	path := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "framegraph", "config.yaml")

	out, err := executeCommand(t, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "not created") || !strings.Contains(out, "FRAMEGRAPH_") {
		t.Errorf("config path output:\n%s", out)
	}

	if _, err := executeCommand(t, "config", "init"); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if _, err := executeCommand(t, "config", "init"); err == nil {
		t.Error("second init should refuse to overwrite")
	}
	if _, err := executeCommand(t, "config", "init", "--force"); err != nil {
		t.Errorf("init --force error = %v", err)
	}

	if _, err := executeCommand(t, "config", "set", "view.default", "detailed"); err != nil {
		t.Fatalf("config set error = %v", err)
	}
	out, err = executeCommand(t, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "default: detailed") || !strings.Contains(out, path) {
		t.Errorf("config show output:\n%s", out)
	}

	out, err = executeCommand(t, "config", "set", "build.workers", "8")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Set build.workers = 8") {
		t.Errorf("config set output:\n%s", out)
	}
}

func TestConfigSet_Invalid(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown key", []string{"no.such_key", "1"}},
		{"not an integer", []string{"build.workers", "many"}},
		{"not a bool", []string{"build.cache", "maybe"}},
		{"fails validation", []string{"view.default", "isometric"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"config", "set"}, tt.args...)
			if _, err := executeCommand(t, args...); err == nil {
				t.Errorf("config set %v should fail", tt.args)
			}
		})
	}

	path := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "framegraph", "config.yaml")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("rejected values must not create a config file")
	}
}

func TestInvalidConfigFile(t *testing.T) {
	capture := setupEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(cfgPath, []byte("view:\n  default: isometric\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := executeCommand(t, "--config", cfgPath, "build", capture)
	if err == nil || !strings.Contains(err.Error(), "view.default") {
		t.Errorf("invalid config error = %v", err)
	}

	// config commands still work so the file can be fixed.
	if _, err := executeCommand(t, "--config", cfgPath, "config", "set", "view.default", "nodes"); err != nil {
		t.Errorf("config set on a broken file error = %v", err)
	}
	if _, err := executeCommand(t, "--config", cfgPath, "build", capture); err != nil {
		t.Errorf("build after fixing the config error = %v", err)
	}
}
