package sites

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/user/recipe-service/internal/parser"
	"github.com/user/recipe-service/internal/parser/htmltext"
)

const receptenOrigin = "https://recepten.se"

type recepten struct{ site }

func newRecepten() *recepten {
	return &recepten{site{
		desc: parser.Descriptor{Domain: "recepten.se", Name: "recepten.se", Address: "https://www.recepten.se/recept/"},
		text: htmltext.Options{EmphasisMark: "*", IgnoreLinks: true, IgnoreImages: true},
	}}
}

func (e *recepten) Title(doc *goquery.Document) (string, error) {
	return e.plain(doc, "#content h1")
}

func (e *recepten) Image(doc *goquery.Document) (string, error) {
	return e.imageAttr(doc, "#content #mainImageContainer img", "src", receptenOrigin)
}

func (e *recepten) Ingredients(doc *goquery.Document) (string, error) {
	return e.steps(doc, ".list.ingredients")
}

// Contents leaves out the per-step ingredient lists and photo credits.
func (e *recepten) Contents(doc *goquery.Document) (string, error) {
	block, err := parser.First(doc.Selection, ".list.instructionItem")
	if err != nil {
		return "", err
	}
	block = block.Clone()
	block.Find("ul, div.clearAfter").Remove()
	return htmltext.CollapseIndent(e.text.Convert(block)), nil
}

// Portions is the last entry of the property list.
func (e *recepten) Portions(doc *goquery.Document) (string, error) {
	props, err := parser.Find(doc.Selection, ".property")
	if err != nil {
		return "", err
	}
	return htmltext.Text(props.Last()), nil
}
