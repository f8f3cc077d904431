// Package parser holds the site extractor contract, the registry that maps
// domains to extractors and the scraper that runs an extractor over a page.
package parser

import (
	"errors"
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

var (
	ErrDuplicateDomain   = errors.New("duplicate parser domain")
	ErrInvalidDescriptor = errors.New("invalid parser descriptor")
	ErrElementNotFound   = errors.New("element not found")
)

// Descriptor identifies a supported recipe site.
type Descriptor struct {
	Domain  string `json:"domain"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

var domainPattern = regexp.MustCompile(`^[a-z0-9-]+\.[a-z0-9-]+$`)

// Validate reports whether the descriptor can be registered.
func (d Descriptor) Validate() error {
	if !domainPattern.MatchString(d.Domain) {
		return &DescriptorError{Descriptor: d, Reason: "domain must be a lower case label.tld"}
	}
	if d.Name == "" {
		return &DescriptorError{Descriptor: d, Reason: "name is empty"}
	}
	return nil
}

// DescriptorError explains why a descriptor was rejected.
type DescriptorError struct {
	Descriptor Descriptor
	Reason     string
}

func (e *DescriptorError) Error() string {
	return "parser " + e.Descriptor.Name + " (" + e.Descriptor.Domain + "): " + e.Reason
}

func (e *DescriptorError) Unwrap() error { return ErrInvalidDescriptor }

// Extractor pulls the recipe fields out of one site's pages. Each method
// reads doc without modifying it and reports a missing or malformed element
// as an error.
type Extractor interface {
	Descriptor() Descriptor
	Title(doc *goquery.Document) (string, error)
	// Image returns the absolute URL of the main recipe image.
	Image(doc *goquery.Document) (string, error)
	Ingredients(doc *goquery.Document) (string, error)
	Contents(doc *goquery.Document) (string, error)
	Portions(doc *goquery.Document) (string, error)
}
