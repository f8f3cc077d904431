package sites

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/user/recipe-service/internal/parser"
	"github.com/user/recipe-service/internal/parser/htmltext"
)

type arla struct{ site }

func newArla() *arla {
	return &arla{site{
		desc: parser.Descriptor{Domain: "arla.se", Name: "Arla", Address: "https://www.arla.se/recept/"},
		text: htmltext.Options{EmphasisMark: "*", IgnoreImages: true},
	}}
}

func (e *arla) Title(doc *goquery.Document) (string, error) {
	return e.plain(doc, ".recipe-header__heading")
}

func (e *arla) Image(doc *goquery.Document) (string, error) {
	return e.imageSrc(doc, ".image-box-recipe__image.focuspoint img")
}

func (e *arla) Ingredients(doc *goquery.Document) (string, error) {
	list, err := parser.First(doc.Selection, ".recipe-ingredients")
	if err != nil {
		return "", err
	}
	items, err := parser.Find(list, "li")
	if err != nil {
		return "", err
	}
	return e.text.Convert(items), nil
}

func (e *arla) Contents(doc *goquery.Document) (string, error) {
	return e.convert(doc, ".instructions-area__text")
}

func (e *arla) Portions(doc *goquery.Document) (string, error) {
	return e.plain(doc, "[itemprop=recipeYield]")
}
