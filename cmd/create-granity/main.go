// Package main provides the create-granity CLI, which scaffolds a new game
// project from the Granity template repository.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/NicabarNimble/create-granity/internal/config"
	apperrors "github.com/NicabarNimble/create-granity/internal/errors"
	"github.com/NicabarNimble/create-granity/internal/github"
	"github.com/NicabarNimble/create-granity/internal/pipeline"
	"github.com/NicabarNimble/create-granity/internal/progress"
	"github.com/NicabarNimble/create-granity/internal/shell"
	"github.com/NicabarNimble/create-granity/internal/urlutils"
	"github.com/NicabarNimble/create-granity/internal/version"
	"github.com/spf13/cobra"
)

// buildVersion is set with -ldflags "-X main.buildVersion=1.2.3".
var buildVersion = "dev"

var (
	// scaffoldFunc allows for mocking in tests
	scaffoldFunc = scaffold
)

type options struct {
	configFile  string
	skipInstall bool
	noUpstream  bool
	verbose     bool
}

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "create-granity <project-name>",
		Short: "Create a new Granity game project",
		Long: `Create a new game project from the Granity template.

The template is cloned into a folder named after the project, template-only
files are removed, package.json and README.md are generated, a fresh git
repository is initialized and dependencies are installed.

Example usage:
  create-granity my-game
  create-granity my-game --skip-install --no-upstream`,
		Args:          cobra.ExactArgs(1),
		Version:       buildVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return scaffoldFunc(cmd.Context(), args[0], opts, stdout, stderr)
		},
	}

	rootCmd.Flags().StringVar(&opts.configFile, "config", "", "Path to a JSONC config file")
	rootCmd.Flags().BoolVar(&opts.skipInstall, "skip-install", false, "Do not install dependencies")
	rootCmd.Flags().BoolVar(&opts.noUpstream, "no-upstream", false, "Do not add the template as an upstream remote")
	rootCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd
}

// execute runs the CLI and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if !apperrors.IsStepError(err) {
			fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", rootCmd.Name())
		}
		if apperrors.IsFatal(err) {
			fmt.Fprintln(stderr, "Process has terminated.")
		}
		return apperrors.ExitCode(err)
	}
	return 0
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newNotifier returns nil when the notice is disabled or the template is not
// hosted on GitHub.
func newNotifier(cfg *config.ScaffoldConfig, logger *slog.Logger) pipeline.Notifier {
	if cfg.DisableNotice {
		return nil
	}
	src, err := urlutils.ParseSource(cfg.TemplateURL)
	if err != nil || !src.IsGitHub() {
		logger.Debug("version notice disabled", "template", urlutils.Redact(cfg.TemplateURL))
		return nil
	}
	return &version.Notifier{
		Source:      github.NewClient(github.WithBaseURL(cfg.RegistryURL), github.WithToken(cfg.GitHubToken)),
		TemplateURL: cfg.TemplateURL,
		Current:     cfg.CurrentVersion,
		Logger:      logger,
	}
}

func scaffold(ctx context.Context, projectName string, opts *options, stdout, stderr io.Writer) error {
	logger := newLogger(stderr, opts.verbose)

	cfg, err := config.Load(config.LoadOptions{
		ProjectName:    projectName,
		ConfigFile:     opts.configFile,
		CurrentVersion: buildVersion,
		Overrides: func(c *config.ScaffoldConfig) {
			if opts.skipInstall {
				c.SkipInstall = true
			}
			if opts.noUpstream {
				c.NoUpstream = true
			}
		},
	})
	if err != nil {
		return apperrors.NewFatal("config", "invalid configuration", err)
	}
	logger.Debug("configuration loaded",
		"project", cfg.ProjectName,
		"destination", cfg.Destination,
		"template", cfg.TemplateURL)

	executor := shell.NewExecutor()
	p := pipeline.New(pipeline.NewScaffolder(cfg, executor, logger), pipeline.Options{
		Tracker:     progress.NewConsoleTracker(stdout),
		Logger:      logger,
		Notifier:    newNotifier(cfg, logger),
		SkipInstall: cfg.SkipInstall,
	})

	out, err := p.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "\nCongratulations! %s is ready in %s\n", cfg.ProjectName, cfg.Destination)
	if len(out.Warnings) > 0 {
		fmt.Fprintf(stdout, "Finished with %d warning(s), see the output above.\n", len(out.Warnings))
	}
	fmt.Fprintf(stdout, "\nNext steps:\n  cd %s\n", cfg.ProjectName)
	if cfg.SkipInstall {
		fmt.Fprintf(stdout, "  %s install\n", cfg.PackageManager)
	}
	fmt.Fprintf(stdout, "  %s run dev\n", cfg.PackageManager)

	if out.Notice != nil {
		fmt.Fprintf(stdout, "\n%s\n", out.Notice)
	}
	return nil
}
