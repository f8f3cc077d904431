// Package sites contains the extractors for every supported recipe site.
package sites

import (
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/recipe-service/internal/parser"
	"github.com/user/recipe-service/internal/parser/htmltext"
)

// All returns a new instance of every site extractor, in listing order.
func All() []parser.Extractor {
	return []parser.Extractor{
		newAlltOmMat(),
		newArla(),
		newCoop(),
		newICA(),
		newKoket(),
		newKungsornen(),
		newMittKok(),
		newRecepten(),
		newTasteline(),
	}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *parser.Registry
	defaultErr      error
)

// Default returns the process-wide registry of All. It is built once, on
// first use.
func Default() (*parser.Registry, error) {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = parser.NewRegistry(All()...)
	})
	return defaultRegistry, defaultErr
}

// site carries what every extractor shares: its descriptor and its own
// text rendering options.
type site struct {
	desc parser.Descriptor
	text htmltext.Options
}

func (s *site) Descriptor() parser.Descriptor { return s.desc }

func (s *site) plain(doc *goquery.Document, selector string) (string, error) {
	sel, err := parser.First(doc.Selection, selector)
	if err != nil {
		return "", err
	}
	return htmltext.Text(sel), nil
}

func (s *site) convert(doc *goquery.Document, selector string) (string, error) {
	sel, err := parser.First(doc.Selection, selector)
	if err != nil {
		return "", err
	}
	return s.text.Convert(sel), nil
}

// steps renders the first match of selector with list indentation removed.
func (s *site) steps(doc *goquery.Document, selector string) (string, error) {
	out, err := s.convert(doc, selector)
	if err != nil {
		return "", err
	}
	return htmltext.CollapseIndent(out), nil
}

func (s *site) imageAttr(doc *goquery.Document, selector, attr, base string) (string, error) {
	sel, err := parser.First(doc.Selection, selector)
	if err != nil {
		return "", err
	}
	ref, err := parser.Attr(sel, attr)
	if err != nil {
		return "", err
	}
	return parser.ResolveURL(base, ref)
}

func (s *site) imageSrc(doc *goquery.Document, selector string) (string, error) {
	return s.imageAttr(doc, selector, "src", s.desc.Address)
}

// labelledLists renders the sub-headings and lists found under container
// as plain label lines followed by their items.
func (s *site) labelledLists(doc *goquery.Document, container string) (string, error) {
	root, err := parser.First(doc.Selection, container)
	if err != nil {
		return "", err
	}
	parts := root.Clone().Find("h3, ul").Not("ul ul")
	htmltext.Rename(parts.Filter("h3"), "div")
	return s.text.Convert(parts), nil
}

func trimPortions(s string) string {
	return strings.TrimSpace(strings.TrimSuffix(s, " portioner"))
}
