package sites

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/recipe-service/internal/parser"
	"github.com/user/recipe-service/internal/parser/htmltext"
)

type koket struct{ site }

func newKoket() *koket {
	return &koket{site{
		desc: parser.Descriptor{Domain: "koket.se", Name: "Köket", Address: "https://www.koket.se/recept/"},
		text: htmltext.Options{EmphasisMark: "*"},
	}}
}

func (e *koket) Title(doc *goquery.Document) (string, error) {
	return e.plain(doc, ".recipe-content-wrapper h1")
}

// Image takes the first candidate of the picture's srcset.
func (e *koket) Image(doc *goquery.Document) (string, error) {
	source, err := parser.First(doc.Selection, ".image-container picture source")
	if err != nil {
		return "", err
	}
	srcset, err := parser.Attr(source, "srcset")
	if err != nil {
		return "", err
	}
	candidate := strings.Fields(strings.Split(srcset, ",")[0])
	if len(candidate) == 0 {
		return "", fmt.Errorf("%w: srcset candidate", parser.ErrElementNotFound)
	}
	return parser.ResolveURL(e.desc.Address, candidate[0])
}

func (e *koket) Ingredients(doc *goquery.Document) (string, error) {
	return e.labelledLists(doc, "#ingredients-component")
}

func (e *koket) Contents(doc *goquery.Document) (string, error) {
	return e.steps(doc, ".step-by-step ol")
}

func (e *koket) Portions(doc *goquery.Document) (string, error) {
	p, err := e.plain(doc, ".amount")
	if err != nil {
		return "", err
	}
	return trimPortions(p), nil
}
