package scraper

import (
	"net/url"
	"regexp"
)

// rootPathRe matches URLs that textually begin with a path-root shape. Some
// scheme-less references carry a host fragment that still has to be treated
// as relative when it matches this shape.
var rootPathRe = regexp.MustCompile(`^/[\w.\-/]+`)

// IsRelative reports whether raw has no host component or starts at the
// path root.
func IsRelative(raw string) bool {
	if u, err := url.Parse(raw); err == nil && u.Host == "" {
		return true
	}
	return rootPathRe.MatchString(raw)
}

// IsInternal reports whether raw points inside host. Relative URLs are
// internal by definition; absolute ones must match host exactly, with no
// subdomain or wildcard matching.
func IsInternal(raw, host string) bool {
	if IsRelative(raw) {
		return true
	}
	u, err := url.Parse(raw)
	return err == nil && u.Host == host
}

// IsRelevant reports whether raw carries no query string. OLX appends query
// markers (e.g. "?reason=extended-region") to filler results injected when a
// region has too few listings, so any query disqualifies the link.
func IsRelevant(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.RawQuery == ""
}

// Canonicalize resolves raw to its absolute form on the fixed host. Already
// absolute URLs are returned unchanged, which makes the operation idempotent.
// Call only after IsInternal and IsRelevant have passed.
func Canonicalize(raw, scheme, host string) string {
	if IsRelative(raw) {
		return scheme + "://" + host + raw
	}
	return raw
}
