package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/NicabarNimble/create-granity/internal/cleanup"
	"github.com/NicabarNimble/create-granity/internal/config"
	apperrors "github.com/NicabarNimble/create-granity/internal/errors"
	"github.com/NicabarNimble/create-granity/internal/git"
	"github.com/NicabarNimble/create-granity/internal/install"
	"github.com/NicabarNimble/create-granity/internal/project"
	"github.com/NicabarNimble/create-granity/internal/shell"
)

// Scaffolder is the production Steps implementation.
type Scaffolder struct {
	cfg    *config.ScaffoldConfig
	runner shell.Runner
	logger *slog.Logger
}

var _ Steps = (*Scaffolder)(nil)

// NewScaffolder binds the steps to one invocation's configuration.
func NewScaffolder(cfg *config.ScaffoldConfig, runner shell.Runner, logger *slog.Logger) *Scaffolder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scaffolder{cfg: cfg, runner: runner, logger: logger}
}

// Acquire clones the template repository into the destination.
func (s *Scaffolder) Acquire(ctx context.Context) error {
	s.logger.Debug("cloning template", "url", s.cfg.TemplateURL, "destination", s.cfg.Destination)
	err := git.Clone(ctx, s.runner, git.CloneOptions{
		SourceURL:   s.cfg.TemplateURL,
		Destination: s.cfg.Destination,
		Depth:       s.cfg.CloneDepth,
	})
	if err != nil {
		return apperrors.NewFatal(StepAcquire, fmt.Sprintf("failed to clone the repository into %s", s.cfg.ProjectName), err)
	}
	return nil
}

// Cleanup removes every manifest path and waits for all removals to settle.
func (s *Scaffolder) Cleanup(ctx context.Context) error {
	report := cleanup.Remove(ctx, s.cfg.Destination, s.cfg.Manifest())

	for _, p := range report.Removed() {
		s.logger.Debug("removed template path", "path", p)
	}
	for _, p := range report.Missing() {
		s.logger.Debug("template path already absent", "path", p)
	}

	var errs []error
	for _, res := range report.Failed() {
		errs = append(errs, apperrors.NewInformational(StepCleanup, "could not remove "+res.Path, res.Err))
	}
	return errors.Join(errs...)
}

// Materialize writes package.json and promotes the project readme.
func (s *Scaffolder) Materialize(ctx context.Context) error {
	report := project.Materialize(project.Options{
		Dir: s.cfg.Destination,
		Manifest: project.ManifestOptions{
			Name:           s.cfg.ProjectName,
			PackageManager: s.cfg.PackageManager,
			ClientDir:      s.cfg.ClientDir,
			ServerDir:      s.cfg.ServerDir,
		},
		ReadmeTemplate: s.cfg.ReadmeTemplate,
		ReadmeTarget:   s.cfg.ReadmeTarget,
	})

	var errs []error
	for _, problem := range report.Problems {
		errs = append(errs, apperrors.NewInformational(StepMaterialize, "could not write project file", problem))
	}
	return errors.Join(errs...)
}

// Reinit gives the project fresh git history.
func (s *Scaffolder) Reinit(ctx context.Context) error {
	err := git.Reinit(ctx, s.runner, git.ReinitOptions{
		Dir:        s.cfg.Destination,
		RemoteName: s.cfg.UpstreamRemote,
		RemoteURL:  s.cfg.TemplateURL,
	})
	if err != nil {
		return apperrors.NewFatal(StepReinit, "failed to initialize git", err)
	}
	return nil
}

// Install installs dependencies for the root, client and server folders.
func (s *Scaffolder) Install(ctx context.Context) error {
	err := install.Run(ctx, s.runner, install.Options{
		Dir:            s.cfg.Destination,
		PackageManager: s.cfg.PackageManager,
		SubProjects:    []string{s.cfg.ClientDir, s.cfg.ServerDir},
	})
	if err != nil {
		return apperrors.NewFatal(StepInstall, fmt.Sprintf("failed to install dependencies for %s", s.cfg.ProjectName), err)
	}
	return nil
}
