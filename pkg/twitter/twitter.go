// Package twitter holds Twitter URL conventions used across the scraper.
package twitter

import (
	"regexp"
	"strings"
)

const (
	// SuspendedPath marks the page suspended accounts redirect to
	SuspendedPath = "account/suspended"

	// SuspendedUsername is written in place of a username for suspended accounts
	SuspendedUsername = "N/A Suspended"
)

// matches twitter.com and x.com hosts, including subdomains such as mobile.
var usernamePattern = regexp.MustCompile(`(?:^|[/.])(?:twitter|x)\.com/([a-zA-Z0-9_]+)`)

// Username extracts the account name from a tweet URL such as
// https://twitter.com/alice/status/123 or https://x.com/alice/status/123. Suspended-account URLs map to
// SuspendedUsername. An empty string means the URL has no username.
func Username(url string) string {
	if strings.Contains(url, SuspendedPath) {
		return SuspendedUsername
	}
	m := usernamePattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

// IsSuspended reports whether url is the suspended-account page
func IsSuspended(url, sentinel string) bool {
	return strings.TrimRight(url, "/") == strings.TrimRight(sentinel, "/")
}
