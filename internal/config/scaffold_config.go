package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/NicabarNimble/create-granity/internal/urlutils"
	"github.com/caarlos0/env/v11"
	"github.com/tidwall/jsonc"
)

const (
	// DefaultTemplateURL is the repository every project is generated from.
	DefaultTemplateURL = "https://github.com/fgarrec0397/Granity.git"
	// DefaultUpstreamRemote is the remote registered on the template so
	// projects can pull later template updates.
	DefaultUpstreamRemote = "upstream"
	DefaultPackageManager = "npm"
	DefaultRegistryURL    = "https://api.github.com"
	DefaultReadmeTemplate = "README.project.md"
	DefaultReadmeTarget   = "README.md"
	DefaultClientDir      = "app"
	DefaultServerDir      = "server"
	DefaultCloneDepth     = 1
)

var (
	projectNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
	remoteNameRegex  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
	// Package managers are interpolated into shell commands unquoted.
	packageManagerRegex = regexp.MustCompile(`^[A-Za-z0-9._/+-]+$`)
)

// defaultCleanupPaths are the template-only paths removed after cloning.
var defaultCleanupPaths = []string{
	".git",
	".github",
	"README.md",
	"LICENSE",
	"CONTRIBUTING.md",
	"CODE_OF_CONDUCT.md",
	"bin",
	"package-lock.json",
}

// ScaffoldConfig is the invocation context for one run. It is built once by
// Load and must not be modified afterwards.
type ScaffoldConfig struct {
	ProjectName string `json:"-"`
	Destination string `json:"-"`

	TemplateURL    string   `json:"template_url,omitempty" env:"CREATE_GRANITY_TEMPLATE_URL"`
	CloneDepth     int      `json:"clone_depth,omitempty" env:"CREATE_GRANITY_CLONE_DEPTH"` // 0 clones the full history
	UpstreamRemote string   `json:"upstream_remote,omitempty" env:"CREATE_GRANITY_UPSTREAM_REMOTE"`
	NoUpstream     bool     `json:"no_upstream,omitempty" env:"CREATE_GRANITY_NO_UPSTREAM"`
	CleanupPaths   []string `json:"cleanup_paths,omitempty"`
	ReadmeTemplate string   `json:"readme_template,omitempty"`
	ReadmeTarget   string   `json:"readme_target,omitempty"`
	PackageManager string   `json:"package_manager,omitempty" env:"CREATE_GRANITY_PACKAGE_MANAGER"`
	ClientDir      string   `json:"client_dir,omitempty"`
	ServerDir      string   `json:"server_dir,omitempty"`
	SkipInstall    bool     `json:"skip_install,omitempty" env:"CREATE_GRANITY_SKIP_INSTALL"`

	RegistryURL    string `json:"registry_url,omitempty" env:"CREATE_GRANITY_REGISTRY_URL"`
	DisableNotice  bool   `json:"disable_notice,omitempty" env:"CREATE_GRANITY_NO_UPDATE_NOTIFIER"`
	GitHubToken    string `json:"-" env:"GITHUB_TOKEN"`
	CurrentVersion string `json:"-"`
}

// DefaultConfig provides default configuration values
func DefaultConfig() *ScaffoldConfig {
	return &ScaffoldConfig{
		TemplateURL:    DefaultTemplateURL,
		CloneDepth:     DefaultCloneDepth,
		UpstreamRemote: DefaultUpstreamRemote,
		CleanupPaths:   append([]string(nil), defaultCleanupPaths...),
		ReadmeTemplate: DefaultReadmeTemplate,
		ReadmeTarget:   DefaultReadmeTarget,
		PackageManager: DefaultPackageManager,
		ClientDir:      DefaultClientDir,
		ServerDir:      DefaultServerDir,
		RegistryURL:    DefaultRegistryURL,
	}
}

// LoadOptions control how Load assembles the configuration.
type LoadOptions struct {
	ProjectName    string
	ConfigFile     string // optional JSONC file
	CurrentVersion string
	// Overrides is applied last, after the file and the environment.
	Overrides func(*ScaffoldConfig)
}

// Load builds the configuration from defaults, an optional config file,
// CREATE_GRANITY_* environment variables and caller overrides, in that
// order, then validates it.
func Load(opts LoadOptions) (*ScaffoldConfig, error) {
	cfg := DefaultConfig()

	if opts.ConfigFile != "" {
		fileCfg, err := LoadFile(opts.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if opts.Overrides != nil {
		opts.Overrides(cfg)
	}

	cfg.ProjectName = opts.ProjectName
	cfg.CurrentVersion = opts.CurrentVersion
	cfg.MergeDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dest, err := filepath.Abs(cfg.ProjectName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination: %w", err)
	}
	cfg.Destination = dest

	return cfg, nil
}

// LoadFile loads configuration from a JSON file. Comments and trailing
// commas are allowed. A missing file yields the defaults.
func LoadFile(path string) (*ScaffoldConfig, error) {
	cfg := DefaultConfig()
	if err := cfg.overlayFile(path); err != nil {
		return nil, err
	}
	cfg.MergeDefaults()
	return cfg, nil
}

func (c *ScaffoldConfig) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(jsonc.ToJSON(data), c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// MergeDefaults merges default values for unset fields
func (c *ScaffoldConfig) MergeDefaults() {
	d := DefaultConfig()
	if c.TemplateURL == "" {
		c.TemplateURL = d.TemplateURL
	}
	if c.NoUpstream {
		c.UpstreamRemote = ""
	} else if c.UpstreamRemote == "" {
		c.UpstreamRemote = d.UpstreamRemote
	}
	if c.CleanupPaths == nil {
		c.CleanupPaths = d.CleanupPaths
	}
	if c.ReadmeTemplate == "" {
		c.ReadmeTemplate = d.ReadmeTemplate
	}
	if c.ReadmeTarget == "" {
		c.ReadmeTarget = d.ReadmeTarget
	}
	if c.PackageManager == "" {
		c.PackageManager = d.PackageManager
	}
	if c.ClientDir == "" {
		c.ClientDir = d.ClientDir
	}
	if c.ServerDir == "" {
		c.ServerDir = d.ServerDir
	}
	if c.RegistryURL == "" {
		c.RegistryURL = d.RegistryURL
	}
}

// Validate checks if the configuration is valid
func (c *ScaffoldConfig) Validate() error {
	if err := ValidateProjectName(c.ProjectName); err != nil {
		return fmt.Errorf("invalid project name: %w", err)
	}
	if c.TemplateURL == "" {
		return fmt.Errorf("template URL cannot be empty")
	}
	if err := urlutils.ValidateURL(c.TemplateURL); err != nil {
		return fmt.Errorf("invalid template URL: %w", err)
	}
	if c.CloneDepth < 0 {
		return fmt.Errorf("clone depth cannot be negative")
	}
	if c.UpstreamRemote != "" && !remoteNameRegex.MatchString(c.UpstreamRemote) {
		return fmt.Errorf("invalid upstream remote name %q", c.UpstreamRemote)
	}
	if !packageManagerRegex.MatchString(c.PackageManager) {
		return fmt.Errorf("invalid package manager %q", c.PackageManager)
	}
	for _, p := range c.CleanupPaths {
		if err := ValidateRelativePath(p); err != nil {
			return fmt.Errorf("invalid cleanup path: %w", err)
		}
	}
	for _, p := range []string{c.ReadmeTemplate, c.ReadmeTarget, c.ClientDir, c.ServerDir} {
		if err := ValidateRelativePath(p); err != nil {
			return err
		}
	}
	return nil
}

// Manifest returns a copy of the cleanup paths.
func (c *ScaffoldConfig) Manifest() []string {
	return append([]string(nil), c.CleanupPaths...)
}

// ValidateProjectName accepts a single filesystem-safe path element.
func ValidateProjectName(name string) error {
	if name == "" {
		return fmt.Errorf("project name cannot be empty")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("project name cannot be %q", name)
	}
	if !projectNameRegex.MatchString(name) {
		return fmt.Errorf("project name %q may only contain letters, digits, '.', '_' and '-'", name)
	}
	return nil
}

// ValidateRelativePath checks that p stays inside the project directory.
func ValidateRelativePath(p string) error {
	if p == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if filepath.IsAbs(p) {
		return fmt.Errorf("path %q must be relative", p)
	}
	clean := filepath.Clean(p)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path %q escapes the project directory", p)
	}
	return nil
}
