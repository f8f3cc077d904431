package sites

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/user/recipe-service/internal/parser"
	"github.com/user/recipe-service/internal/parser/htmltext"
)

type ica struct{ site }

func newICA() *ica {
	return &ica{site{
		desc: parser.Descriptor{Domain: "ica.se", Name: "ICA", Address: "https://www.ica.se/recept/"},
		text: htmltext.Options{EmphasisMark: "*"},
	}}
}

func (e *ica) Title(doc *goquery.Document) (string, error) {
	return e.plain(doc, ".recipepage__headline")
}

// Image is set as an inline background on the hero element.
func (e *ica) Image(doc *goquery.Document) (string, error) {
	hero, err := parser.First(doc.Selection, ".recipe-image-square__image")
	if err != nil {
		return "", err
	}
	style, err := parser.Attr(hero, "style")
	if err != nil {
		return "", err
	}
	ref, err := parser.BackgroundImage(style)
	if err != nil {
		return "", err
	}
	return parser.ResolveURL(e.desc.Address, ref)
}

// Ingredients keeps the bold group labels and the top level lists.
func (e *ica) Ingredients(doc *goquery.Document) (string, error) {
	block, err := parser.First(doc.Selection, ".ingredients")
	if err != nil {
		return "", err
	}
	parts, err := parser.Find(block, "ul, strong")
	if err != nil {
		return "", err
	}
	return e.text.Convert(parts.Not("ul ul, ul strong")), nil
}

func (e *ica) Contents(doc *goquery.Document) (string, error) {
	return e.steps(doc, ".recipe-howto-steps ol")
}

func (e *ica) Portions(doc *goquery.Document) (string, error) {
	return e.plain(doc, ".servings-picker__servings")
}
