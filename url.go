package fetchax

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/ansel1/merry"
)

// ErrInvalidURL is returned when the base URL and the requested URL do not
// compose into a parseable URL.
var ErrInvalidURL = merry.New("invalid url")

var absoluteURL = regexp.MustCompile(`(?i)^([a-z][a-z0-9+.\-]*:)?//`)

// IsAbsoluteURL reports whether u has a scheme, or is protocol-relative
// ("//host/path").
func IsAbsoluteURL(u string) bool {
	return absoluteURL.MatchString(u)
}

// JoinURL joins a relative URL onto a base URL with exactly one slash.
// One trailing slash is removed from baseURL and every leading slash
// from relativeURL.  If either is empty, the other is returned.
func JoinURL(baseURL, relativeURL string) string {
	if relativeURL == "" {
		return baseURL
	}
	if baseURL == "" {
		return relativeURL
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimLeft(relativeURL, "/")
}

// BuildURL composes the URL a request is sent to.
//
// If requestedURL is relative and baseURL is not empty, the two are joined
// with JoinURL.  Absolute requested URLs ignore baseURL.  params are encoded
// and appended to the query string, ahead of any fragment.
//
// This is string composition: dot segments are left alone.  The result is
// checked with url.Parse, and ErrInvalidURL is returned if it does not
// parse.
func BuildURL(baseURL, requestedURL string, params url.Values) (string, error) {
	full := requestedURL
	if baseURL != "" && !IsAbsoluteURL(requestedURL) {
		full = JoinURL(baseURL, requestedURL)
	}

	if len(params) > 0 {
		fragment := ""
		if i := strings.IndexByte(full, '#'); i >= 0 {
			full, fragment = full[:i], full[i:]
		}
		sep := "?"
		if strings.Contains(full, "?") {
			sep = "&"
		}
		full = full + sep + params.Encode() + fragment
	}

	if _, err := url.Parse(full); err != nil {
		return "", merry.Prepend(ErrInvalidURL, err.Error())
	}
	return full, nil
}
