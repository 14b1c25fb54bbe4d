package shortener

import (
	"net/url"
	"strings"
)

// NormalizeURL canonicalizes a URL so equivalent spellings compare equal:
// lowercase scheme and host, no default port, no trailing slash (except the root
// path) and no fragment.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	host := u.Host
	if strings.HasSuffix(host, ":80") && u.Scheme == "http" {
		u.Host = strings.TrimSuffix(host, ":80")
	} else if strings.HasSuffix(host, ":443") && u.Scheme == "https" {
		u.Host = strings.TrimSuffix(host, ":443")
	}

	if len(u.Path) > 1 && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	u.Fragment = ""

	return u.String(), nil
}
