package parser

import (
	"regexp"
	"strings"
)

// domainRe captures the last two host labels of a URL, with or without a
// scheme, followed by an optional port and then a path, query, fragment or
// the end of input.
var domainRe = regexp.MustCompile(`^(?:[a-z][a-z0-9+.-]*://)?(?:[\w.-]+\.)?([\w-]+\.[\w-]+)(?::\d+)?(?:[/?#]|$)`)

// ExtractDomain returns the registrable domain of rawURL, e.g. "ica.se"
// for "https://www.ica.se/recept/x/".
func ExtractDomain(rawURL string) (string, bool) {
	m := domainRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(rawURL)))
	if m == nil {
		return "", false
	}
	return m[1], true
}
