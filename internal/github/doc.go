// Package github is a minimal GitHub REST client used to look up template
// releases.
package github
