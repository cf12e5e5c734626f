// Package urlutils parses and validates template repository locations.
// Templates are cloned over HTTPS, or from file:// URLs and local paths
// (used for offline templates and tests). Release lookups additionally
// require the template to live on a GitHub host.
package urlutils

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// ErrInvalidURL indicates that the provided URL is not valid
	ErrInvalidURL = errors.New("invalid URL format")

	// ErrInvalidHost indicates that the host is not a valid GitHub instance
	ErrInvalidHost = errors.New("invalid GitHub host")

	// ErrInvalidPath indicates that the URL path is not a valid repository path
	ErrInvalidPath = errors.New("invalid repository path")

	// ErrNotHTTPS indicates that the URL does not use HTTPS protocol
	ErrNotHTTPS = errors.New("URL must use HTTPS protocol")

	ownerRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	repoRegex  = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,100}$`)
)

// Kind identifies how a template location is reached.
type Kind int

const (
	KindHTTPS Kind = iota
	KindFile
	KindLocal
)

// Source is a parsed template location.
type Source struct {
	Kind Kind
	Raw  string
	URL  *url.URL // nil for KindLocal
}

// IsGitHub reports whether the source is an HTTPS URL on a GitHub host.
func (s *Source) IsGitHub() bool {
	return s.Kind == KindHTTPS && s.URL != nil && isValidGitHubHost(s.URL.Host)
}

// ParseSource parses a template location. Accepted forms:
//   - https://host/owner/repo(.git)
//   - file:///abs/path/to/repo
//   - an absolute local path
//
// SSH remotes are rejected; the clone must not depend on ssh-agent state.
func ParseSource(raw string) (*Source, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty URL", ErrInvalidURL)
	}
	if strings.HasPrefix(raw, "git@") || strings.HasPrefix(raw, "ssh://") {
		return nil, ErrNotHTTPS
	}
	if filepath.IsAbs(raw) {
		return &Source{Kind: KindLocal, Raw: raw}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	switch u.Scheme {
	case "file":
		if u.Path == "" {
			return nil, fmt.Errorf("%w: file URL without path", ErrInvalidPath)
		}
		return &Source{Kind: KindFile, Raw: raw, URL: u}, nil
	case "https":
		if u.Host == "" {
			return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
		}
		if strings.Trim(u.Path, "/") == "" {
			return nil, fmt.Errorf("%w: URL must include a repository path", ErrInvalidPath)
		}
		return &Source{Kind: KindHTTPS, Raw: raw, URL: u}, nil
	default:
		return nil, ErrInvalidURL
	}
}

// ValidateURL checks that raw is an acceptable template location.
func ValidateURL(raw string) error {
	_, err := ParseSource(raw)
	return err
}

// ParseHTTPSURL parses and validates a GitHub HTTPS URL.
// It accepts URLs in the following formats:
//   - https://github.com/owner/repo
//   - https://github.com/owner/repo.git
func ParseHTTPSURL(rawURL string) (*url.URL, error) {
	if strings.HasPrefix(rawURL, "git@") {
		return nil, ErrNotHTTPS
	}
	if !strings.HasPrefix(rawURL, "https://") {
		return nil, ErrInvalidURL
	}

	parsedURL, err := url.Parse(strings.TrimSuffix(rawURL, ".git"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	parsedURL.User = nil

	if !isValidGitHubHost(parsedURL.Host) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidHost, parsedURL.Host)
	}

	pathParts := strings.Split(strings.Trim(parsedURL.Path, "/"), "/")
	if len(pathParts) != 2 {
		return nil, fmt.Errorf("%w: URL must include owner and repository", ErrInvalidPath)
	}
	if !ownerRegex.MatchString(pathParts[0]) {
		return nil, fmt.Errorf("%w: invalid owner name format", ErrInvalidPath)
	}
	if !repoRegex.MatchString(pathParts[1]) {
		return nil, fmt.Errorf("%w: invalid repository name format", ErrInvalidPath)
	}

	return parsedURL, nil
}

// RepoInfo extracts the owner and repository name of a GitHub URL.
func RepoInfo(rawURL string) (owner, name string, err error) {
	u, err := ParseHTTPSURL(rawURL)
	if err != nil {
		return "", "", err
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	return parts[0], parts[1], nil
}

// Redact removes credentials from a URL so it can be printed.
func Redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.User == nil {
		return rawURL
	}
	u.User = nil
	return u.String()
}

// isValidGitHubHost checks if the host is github.com or a GitHub Enterprise
// Cloud subdomain.
func isValidGitHubHost(host string) bool {
	return host == "github.com" || strings.HasSuffix(host, ".github.com")
}
