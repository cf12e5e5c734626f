// Package version performs the best-effort "newer release available" lookup.
// The lookup runs in the background and is never waited on.
package version

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/NicabarNimble/create-granity/internal/github"
	"github.com/NicabarNimble/create-granity/internal/urlutils"
)

const defaultLookupTimeout = 3 * time.Second

// Notice reports that a newer release than the running one exists.
type Notice struct {
	Current string
	Latest  string
	URL     string
}

func (n Notice) String() string {
	s := fmt.Sprintf("A newer release is available: %s (current %s)", n.Latest, n.Current)
	if n.URL != "" {
		s += "\n  " + n.URL
	}
	return s
}

// ReleaseSource returns the latest release of a repository.
type ReleaseSource interface {
	LatestRelease(ctx context.Context, owner, repo string) (*github.Release, error)
}

// Notifier looks up the latest release of the template repository.
type Notifier struct {
	Source      ReleaseSource
	TemplateURL string
	Current     string
	Timeout     time.Duration
	Logger      *slog.Logger
}

// Check performs the lookup synchronously. It returns nil when the running
// version is current or cannot be compared.
func (n *Notifier) Check(ctx context.Context) (*Notice, error) {
	current, err := parse(n.Current)
	if err != nil {
		return nil, fmt.Errorf("current version %q: %w", n.Current, err)
	}

	owner, repo, err := urlutils.RepoInfo(n.TemplateURL)
	if err != nil {
		return nil, fmt.Errorf("template is not a GitHub repository: %w", err)
	}

	release, err := n.Source.LatestRelease(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	newer, err := Newer(n.Current, release.TagName)
	if err != nil {
		return nil, fmt.Errorf("latest release %q: %w", release.TagName, err)
	}
	if !newer {
		return nil, nil
	}

	latest, _ := parse(release.TagName)
	return &Notice{
		Current: current.String(),
		Latest:  latest.String(),
		URL:     release.HTMLURL,
	}, nil
}

// Start runs Check in the background. The returned channel receives at most
// one Notice and is closed when the lookup ends. Lookup failures are only
// logged at debug level.
func (n *Notifier) Start(ctx context.Context) <-chan Notice {
	ch := make(chan Notice, 1)
	timeout := n.Timeout
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}

	go func() {
		defer close(ch)
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		notice, err := n.Check(ctx)
		if err != nil {
			n.logger().Debug("version lookup skipped", "error", err)
			return
		}
		if notice != nil {
			ch <- *notice
		}
	}()

	return ch
}

// Poll returns a Notice if one has already arrived, without waiting.
func Poll(ch <-chan Notice) (Notice, bool) {
	if ch == nil {
		return Notice{}, false
	}
	select {
	case notice, ok := <-ch:
		return notice, ok
	default:
		return Notice{}, false
	}
}

// Newer reports whether latest is a higher semantic version than current.
func Newer(current, latest string) (bool, error) {
	c, err := parse(current)
	if err != nil {
		return false, err
	}
	l, err := parse(latest)
	if err != nil {
		return false, err
	}
	return l.GreaterThan(c), nil
}

func parse(v string) (*semver.Version, error) {
	return semver.NewVersion(strings.TrimSpace(v))
}

func (n *Notifier) logger() *slog.Logger {
	if n.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return n.Logger
}
