package sites

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/user/recipe-service/internal/parser"
	"github.com/user/recipe-service/internal/parser/htmltext"
)

type mittKok struct{ site }

func newMittKok() *mittKok {
	return &mittKok{site{
		desc: parser.Descriptor{Domain: "expressen.se", Name: "Mitt kök", Address: "https://mittkok.expressen.se/recept/"},
		text: htmltext.Options{EmphasisMark: "*"},
	}}
}

func (e *mittKok) Title(doc *goquery.Document) (string, error) {
	return e.plain(doc, ".recipe__title")
}

func (e *mittKok) Image(doc *goquery.Document) (string, error) {
	return e.imageSrc(doc, ".recipe__image img")
}

func (e *mittKok) Ingredients(doc *goquery.Document) (string, error) {
	return e.labelledLists(doc, ".recipe__ingredients--inner")
}

func (e *mittKok) Contents(doc *goquery.Document) (string, error) {
	return e.steps(doc, ".recipe__instructions--inner ol")
}

func (e *mittKok) Portions(doc *goquery.Document) (string, error) {
	return e.plain(doc, ".recipe__portions")
}
