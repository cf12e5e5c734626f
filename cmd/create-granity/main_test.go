package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/NicabarNimble/create-granity/internal/config"
	apperrors "github.com/NicabarNimble/create-granity/internal/errors"
	"github.com/NicabarNimble/create-granity/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGranityCommand(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		scaffoldErr    error
		expectedCode   int
		expectedOutput string
		expectUsage    bool
		expectCalled   bool
	}{
		{
			name:           "No arguments provided",
			args:           []string{},
			expectedCode:   1,
			expectedOutput: "accepts 1 arg(s), received 0",
			expectUsage:    true,
		},
		{
			name:           "Too many arguments",
			args:           []string{"game1", "game2"},
			expectedCode:   1,
			expectedOutput: "accepts 1 arg(s), received 2",
			expectUsage:    true,
		},
		{
			name:         "Valid project name",
			args:         []string{"my-game"},
			expectedCode: 0,
			expectCalled: true,
		},
		{
			name:           "Fatal step failure",
			args:           []string{"my-game"},
			scaffoldErr:    apperrors.NewFatal("acquire", "failed to clone the repository into my-game", errors.New("exit status 128")),
			expectedCode:   1,
			expectedOutput: "Process has terminated.",
			expectCalled:   true,
		},
		{
			name:           "Unknown flag",
			args:           []string{"my-game", "--bogus"},
			expectedCode:   1,
			expectedOutput: "unknown flag: --bogus",
			expectUsage:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			orig := scaffoldFunc
			defer func() { scaffoldFunc = orig }()
			scaffoldFunc = func(_ context.Context, name string, _ *options, _, _ io.Writer) error {
				called = true
				assert.Equal(t, "my-game", name)
				return tt.scaffoldErr
			}

			var stdout, stderr bytes.Buffer
			code := execute(context.Background(), tt.args, &stdout, &stderr)

			assert.Equal(t, tt.expectedCode, code)
			assert.Equal(t, tt.expectCalled, called)
			if tt.expectedOutput != "" {
				assert.Contains(t, stderr.String(), tt.expectedOutput)
			}
			if tt.expectUsage {
				assert.Contains(t, stderr.String(), "Run 'create-granity --help' for usage.")
			} else {
				assert.NotContains(t, stderr.String(), "--help")
			}
		})
	}
}

func TestCreateGranityCommand_Flags(t *testing.T) {
	orig := scaffoldFunc
	defer func() { scaffoldFunc = orig }()

	var got options
	scaffoldFunc = func(_ context.Context, _ string, opts *options, _, _ io.Writer) error {
		got = *opts
		return nil
	}

	args := []string{"my-game", "--config", "granity.jsonc", "--skip-install", "--no-upstream", "-v"}
	code := execute(context.Background(), args, io.Discard, io.Discard)
	require.Equal(t, 0, code)

	assert.Equal(t, options{
		configFile:  "granity.jsonc",
		skipInstall: true,
		noUpstream:  true,
		verbose:     true,
	}, got)
}

func TestCreateGranityCommand_Help(t *testing.T) {
	var stdout bytes.Buffer
	code := execute(context.Background(), []string{"--help"}, &stdout, io.Discard)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "Create a new game project from the Granity template")
	assert.Contains(t, stdout.String(), newRootCmd(io.Discard, io.Discard).Long)
	assert.Contains(t, stdout.String(), "--skip-install")
}

func TestNewNotifier(t *testing.T) {
	tests := []struct {
		name     string
		template string
		disabled bool
		want     bool
	}{
		{name: "GitHub template", template: config.DefaultTemplateURL, want: true},
		{name: "notice disabled", template: config.DefaultTemplateURL, disabled: true, want: false},
		{name: "local template", template: "file:///srv/templates/granity", want: false},
		{name: "self-hosted template", template: "https://git.example.com/games/granity.git", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.TemplateURL = tt.template
			cfg.DisableNotice = tt.disabled
			cfg.CurrentVersion = "1.0.14"

			notifier := newNotifier(cfg, newLogger(io.Discard, false))
			if !tt.want {
				assert.Nil(t, notifier)
				return
			}
			require.NotNil(t, notifier)
			n, ok := notifier.(*version.Notifier)
			require.True(t, ok)
			assert.Equal(t, tt.template, n.TemplateURL)
			assert.Equal(t, "1.0.14", n.Current)
		})
	}
}

func TestScaffold_InvalidProjectName(t *testing.T) {
	t.Setenv("CREATE_GRANITY_NO_UPDATE_NOTIFIER", "true")

	var stderr bytes.Buffer
	code := execute(context.Background(), []string{"../escape"}, io.Discard, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "invalid configuration")
	assert.Contains(t, stderr.String(), "Process has terminated.")
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func gitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test",
		"GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test",
		"GIT_COMMITTER_EMAIL=test@example.com",
	)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func TestScaffold_EndToEnd(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	t.Setenv("GIT_CONFIG_GLOBAL", "/dev/null")
	t.Setenv("GIT_CONFIG_SYSTEM", "/dev/null")

	template := t.TempDir()
	gitCmd(t, template, "init")
	for name, content := range map[string]string{
		"README.md":         "# Granity\n",
		"README.project.md": "# New game\n",
		"LICENSE":           "MIT\n",
		"app/index.js":      "\n",
		"server/index.js":   "\n",
	} {
		path := filepath.Join(template, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	gitCmd(t, template, "add", ".")
	gitCmd(t, template, "commit", "-m", "initial")

	t.Setenv("CREATE_GRANITY_TEMPLATE_URL", "file://"+template)
	t.Setenv("CREATE_GRANITY_NO_UPDATE_NOTIFIER", "true")
	work := t.TempDir()
	chdir(t, work)

	var stdout bytes.Buffer
	code := execute(context.Background(), []string{"my-game", "--skip-install"}, &stdout, io.Discard)
	require.Equal(t, 0, code, stdout.String())

	assert.Contains(t, stdout.String(), "Congratulations! my-game is ready")
	assert.Contains(t, stdout.String(), "Skipped: Installing dependencies")

	dest := filepath.Join(work, "my-game")
	data, err := os.ReadFile(filepath.Join(dest, "package.json"))
	require.NoError(t, err)
	var manifest map[string]any
	require.NoError(t, json.Unmarshal(data, &manifest))
	assert.Equal(t, "my-game", manifest["name"])

	assert.NoFileExists(t, filepath.Join(dest, "LICENSE"))
	assert.NoFileExists(t, filepath.Join(dest, "README.project.md"))
	assert.DirExists(t, filepath.Join(dest, ".git"))
}
