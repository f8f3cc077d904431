package sites

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/recipe-service/internal/parser"
	"github.com/user/recipe-service/internal/parser/htmltext"
)

type alltOmMat struct{ site }

func newAlltOmMat() *alltOmMat {
	return &alltOmMat{site{
		desc: parser.Descriptor{Domain: "alltommat.se", Name: "Allt om Mat", Address: "https://alltommat.se/recept/"},
		text: htmltext.Options{EmphasisMark: "*", IgnoreTables: true},
	}}
}

func (e *alltOmMat) Title(doc *goquery.Document) (string, error) {
	return e.plain(doc, ".entry-title")
}

// Image reads the URL out of the inline stylesheet of the hero block.
func (e *alltOmMat) Image(doc *goquery.Document) (string, error) {
	style, err := parser.First(doc.Selection, ".featured-image-body style")
	if err != nil {
		return "", err
	}
	ref, err := parser.BackgroundImage(style.Text())
	if err != nil {
		return "", err
	}
	return parser.ResolveURL(e.desc.Address, ref)
}

// Ingredients renders each group header as a label and each ingredient
// table row as a bullet.
func (e *alltOmMat) Ingredients(doc *goquery.Document) (string, error) {
	parts, err := parser.Find(doc.Selection, ".recipe-table, .table-list-header")
	if err != nil {
		return "", err
	}
	var b strings.Builder
	parts.Each(func(_ int, part *goquery.Selection) {
		switch goquery.NodeName(part) {
		case "h4":
			if label := htmltext.Text(part); label != "" {
				b.WriteString("\n\n" + label + "\n\n")
			}
		case "table":
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
				b.WriteString("\n")
			}
			var rows []string
			for _, row := range strings.Split(e.text.Convert(part), "\n") {
				if strings.TrimSpace(row) != "" {
					rows = append(rows, "* "+row)
				}
			}
			b.WriteString(strings.Join(rows, "\n"))
		}
	})
	return strings.TrimSpace(b.String()), nil
}

func (e *alltOmMat) Contents(doc *goquery.Document) (string, error) {
	return e.steps(doc, ".entry-content ol")
}

// Portions turns "För 4 personer:" into "4 portioner".
func (e *alltOmMat) Portions(doc *goquery.Document) (string, error) {
	p, err := e.plain(doc, ".recipe-servings")
	if err != nil {
		return "", err
	}
	p = strings.TrimPrefix(strings.TrimRight(p, ":"), "För ")
	if strings.HasSuffix(p, "personer") {
		p = strings.TrimSuffix(p, "personer") + "portioner"
	}
	return p, nil
}
