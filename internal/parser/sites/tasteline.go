package sites

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/recipe-service/internal/parser"
	"github.com/user/recipe-service/internal/parser/htmltext"
)

var stepNumber = regexp.MustCompile(`^\d{1,2}\.\s`)

type tasteline struct{ site }

func newTasteline() *tasteline {
	return &tasteline{site{
		desc: parser.Descriptor{Domain: "tasteline.com", Name: "Tasteline", Address: "https://www.tasteline.com/recept/"},
		text: htmltext.Options{EmphasisMark: "*", IgnoreImages: true, IgnoreLinks: true},
	}}
}

func (e *tasteline) Title(doc *goquery.Document) (string, error) {
	return e.plain(doc, ".recipe-description h1")
}

func (e *tasteline) Image(doc *goquery.Document) (string, error) {
	return e.imageSrc(doc, ".recipe-header-image img")
}

// Ingredients renders each ingredient group separately, its heading as a
// plain label.
func (e *tasteline) Ingredients(doc *goquery.Document) (string, error) {
	groups, err := parser.Find(doc.Selection, ".ingredient-group")
	if err != nil {
		return "", err
	}
	out := groups.Map(func(_ int, g *goquery.Selection) string {
		g = g.Clone()
		htmltext.Rename(g.Find("h3"), "div")
		return e.text.Convert(g)
	})
	return strings.Join(out, "\n\n"), nil
}

// Contents renders the steps as one numbered list per section. The page
// numbers its steps inside the item text, so those numbers are dropped.
func (e *tasteline) Contents(doc *goquery.Document) (string, error) {
	block, err := parser.First(doc.Selection, ".steps")
	if err != nil {
		return "", err
	}
	block = block.Clone()
	block.Find("h2").First().Remove()
	block.Find(".row").Remove()
	htmltext.Rename(block.Find("h3"), "b")
	htmltext.Rename(block.Find("ul"), "ol")
	block.Find("li").Each(func(_ int, li *goquery.Selection) {
		li.SetText(stepNumber.ReplaceAllString(strings.TrimSpace(li.Text()), ""))
	})
	return e.text.Convert(block), nil
}

func (e *tasteline) Portions(doc *goquery.Document) (string, error) {
	block, err := parser.First(doc.Selection, ".portions")
	if err != nil {
		return "", err
	}
	return e.plainSel(block, "option[selected]")
}

func (e *tasteline) plainSel(sel *goquery.Selection, selector string) (string, error) {
	found, err := parser.First(sel, selector)
	if err != nil {
		return "", err
	}
	return htmltext.Text(found), nil
}
