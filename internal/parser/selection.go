package parser

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/recipe-service/pkg/utils"
)

// Find returns the elements under sel matching selector, or an error
// wrapping ErrElementNotFound when there are none.
func Find(sel *goquery.Selection, selector string) (*goquery.Selection, error) {
	found := sel.Find(selector)
	if found.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return found, nil
}

// First is Find restricted to the first match.
func First(sel *goquery.Selection, selector string) (*goquery.Selection, error) {
	found, err := Find(sel, selector)
	if err != nil {
		return nil, err
	}
	return found.First(), nil
}

// Attr returns the trimmed, non-empty value of the named attribute of the
// first element in sel.
func Attr(sel *goquery.Selection, name string) (string, error) {
	v, ok := sel.Attr(name)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: attribute %s", ErrElementNotFound, name)
	}
	return v, nil
}

// ResolveURL resolves ref against base. Protocol-relative references get
// the scheme of base. The result must be an absolute http(s) URL.
func ResolveURL(base, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty URL reference", ErrElementNotFound)
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base %q: %w", base, err)
	}
	abs, err := utils.ToAbsoluteURL(b, ref)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", ref, err)
	}
	u, err := url.Parse(abs)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("resolve %q: not an absolute web URL", ref)
	}
	return abs, nil
}

var backgroundImage = regexp.MustCompile(`background-image:\s*url\(\s*['"]?([^'")]+?)['"]?\s*\)`)

// BackgroundImage returns the URL of the first CSS background-image
// declaration in css.
func BackgroundImage(css string) (string, error) {
	m := backgroundImage.FindStringSubmatch(css)
	if m == nil {
		return "", fmt.Errorf("%w: background-image", ErrElementNotFound)
	}
	return m[1], nil
}
