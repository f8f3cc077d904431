package sites

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/user/recipe-service/internal/parser"
	"github.com/user/recipe-service/internal/parser/htmltext"
)

type coop struct{ site }

func newCoop() *coop {
	return &coop{site{
		desc: parser.Descriptor{Domain: "coop.se", Name: "Coop", Address: "https://www.coop.se/recept/"},
		text: htmltext.Options{EmphasisMark: "*", IgnoreImages: true, IgnoreLinks: true},
	}}
}

func (e *coop) Title(doc *goquery.Document) (string, error) {
	return e.plain(doc, ".Recipe-title")
}

// Image references are protocol-relative and resolve to https.
func (e *coop) Image(doc *goquery.Document) (string, error) {
	return e.imageSrc(doc, ".Recipe-imageWrapperContainer img")
}

// Ingredients drops the portion picker, the column legend and the section
// heading that share the ingredient block.
func (e *coop) Ingredients(doc *goquery.Document) (string, error) {
	block, err := parser.First(doc.Selection, ".Recipe-ingredients")
	if err != nil {
		return "", err
	}
	block = block.Clone()
	block.Find(".Recipe-portions, .Recipe-ingredientLegend, h2").Remove()
	return e.text.Convert(block), nil
}

// Contents drops the step number badges.
func (e *coop) Contents(doc *goquery.Document) (string, error) {
	block, err := parser.First(doc.Selection, "[itemprop=recipeInstructions]")
	if err != nil {
		return "", err
	}
	block = block.Clone()
	block.Find("span").Remove()
	return e.text.Convert(block), nil
}

func (e *coop) Portions(doc *goquery.Document) (string, error) {
	p, err := e.plain(doc, ".Recipe-portionsCount")
	if err != nil {
		return "", err
	}
	return trimPortions(p), nil
}
