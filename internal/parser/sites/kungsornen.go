package sites

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/recipe-service/internal/parser"
	"github.com/user/recipe-service/internal/parser/htmltext"
)

const kungsornenOrigin = "https://www.kungsornen.se"

type kungsornen struct{ site }

func newKungsornen() *kungsornen {
	return &kungsornen{site{
		desc: parser.Descriptor{Domain: "kungsornen.se", Name: "Kungsörnen", Address: "https://www.kungsornen.se/recept/"},
		text: htmltext.Options{EmphasisMark: "*"},
	}}
}

func (e *kungsornen) Title(doc *goquery.Document) (string, error) {
	return e.plain(doc, ".theme-headline")
}

// Image drops the resize query the CMS appends to every src.
func (e *kungsornen) Image(doc *goquery.Document) (string, error) {
	img, err := parser.First(doc.Selection, ".container.main img")
	if err != nil {
		return "", err
	}
	src, err := parser.Attr(img, "src")
	if err != nil {
		return "", err
	}
	src, _, _ = strings.Cut(src, "?")
	return parser.ResolveURL(kungsornenOrigin, src)
}

func (e *kungsornen) Ingredients(doc *goquery.Document) (string, error) {
	return e.convert(doc, "#ingredients-list")
}

// Contents joins the instruction paragraphs one per line.
func (e *kungsornen) Contents(doc *goquery.Document) (string, error) {
	section, err := parser.First(doc.Selection, ".span9 .section")
	if err != nil {
		return "", err
	}
	paragraphs, err := parser.Find(section, "p")
	if err != nil {
		return "", err
	}
	lines := paragraphs.Map(func(_ int, p *goquery.Selection) string {
		return htmltext.Text(p)
	})
	return strings.Join(lines, "\n"), nil
}

func (e *kungsornen) Portions(doc *goquery.Document) (string, error) {
	return e.plain(doc, "[itemprop=recipeYield]")
}
