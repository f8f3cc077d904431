// Package htmltext renders recipe markup as Markdown-flavoured plain text.
//
// Every recipe site gets its own Options value; there is no shared,
// package-level converter state.
package htmltext

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

// Options controls how markup is rendered. The zero value renders links,
// images and tables, using "_" for emphasis and "**" for strong text.
type Options struct {
	EmphasisMark string
	StrongMark   string
	IgnoreLinks  bool
	IgnoreImages bool
	// IgnoreTables renders each table row as one line of space separated cells.
	IgnoreTables bool
}

func (o Options) emphasis() string {
	if o.EmphasisMark == "" {
		return "_"
	}
	return o.EmphasisMark
}

func (o Options) strong() string {
	if o.StrongMark == "" {
		return "**"
	}
	return o.StrongMark
}

// Convert renders the nodes of sel, in document order, as text.
func (o Options) Convert(sel *goquery.Selection) string {
	r := &renderer{opts: o, space: true}
	for _, n := range sel.Nodes {
		r.walk(n)
	}
	return finish(r.b.String())
}

var (
	trailingSpace = regexp.MustCompile(`[ \t]+\n`)
	blankLines    = regexp.MustCompile(`\n{3,}`)
	indentRun     = regexp.MustCompile(`\n\s+`)
)

func finish(s string) string {
	s = trailingSpace.ReplaceAllString(s, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	s = strings.Trim(s, "\n ")
	return norm.NFC.String(s)
}

// CollapseIndent removes blank lines and the indentation that follows
// every line break.
func CollapseIndent(s string) string {
	return indentRun.ReplaceAllString(s, "\n")
}

// Rename changes the tag of every element in sel, e.g. to render
// sub-headings as plain label lines instead of Markdown headings.
func Rename(sel *goquery.Selection, tag string) {
	a := atom.Lookup([]byte(tag))
	for _, n := range sel.Nodes {
		if n.Type == nethtml.ElementNode {
			n.Data = tag
			n.DataAtom = a
		}
	}
}

var strictPolicy = bluemonday.StrictPolicy()

// PlainText strips any markup left in s, collapses whitespace and trims.
func PlainText(s string) string {
	s = html.UnescapeString(strictPolicy.Sanitize(s))
	return norm.NFC.String(strings.TrimSpace(collapseSpace(s)))
}

// Text returns the plain text content of sel. The markup is sanitized
// before entities are decoded, so escaped text such as "&lt;3" survives.
func Text(sel *goquery.Selection) string {
	var b strings.Builder
	sel.Each(func(_ int, s *goquery.Selection) {
		if markup, err := goquery.OuterHtml(s); err == nil {
			b.WriteString(markup)
		}
	})
	return PlainText(b.String())
}

func collapseSpace(s string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
				inSpace = true
			}
			continue
		}
		b.WriteRune(r)
		inSpace = false
	}
	return b.String()
}

type list struct {
	ordered bool
	index   int
}

type renderer struct {
	opts    Options
	b       strings.Builder
	lists   []list
	pending int  // line breaks owed before the next output
	space   bool // output ends in whitespace or at a line start
	cells   int  // cells written in the current table row
}

func (r *renderer) walk(n *nethtml.Node) {
	switch n.Type {
	case nethtml.TextNode:
		r.text(n.Data)
		return
	case nethtml.DocumentNode:
		r.children(n)
		return
	case nethtml.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Head, atom.Template,
		atom.Svg, atom.Button, atom.Iframe, atom.Select, atom.Input:
		return
	case atom.Br:
		if r.b.Len() > 0 {
			r.flush()
			r.trimTrailingSpace()
			r.b.WriteByte('\n')
			r.space = true
		}
	case atom.P, atom.Div, atom.Section, atom.Article, atom.Header, atom.Footer,
		atom.Main, atom.Blockquote, atom.Figure, atom.Aside, atom.Nav, atom.Form, atom.Fieldset:
		r.block(2)
		r.children(n)
		r.block(2)
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		if strings.TrimSpace(nodeText(n)) == "" {
			return
		}
		r.block(2)
		r.raw(strings.Repeat("#", int(n.Data[1]-'0')) + " ")
		r.space = true
		r.children(n)
		r.block(2)
	case atom.Ul, atom.Ol:
		r.listBreak()
		l := list{ordered: n.DataAtom == atom.Ol}
		if start, err := strconv.Atoi(attr(n, "start")); err == nil {
			l.index = start - 1
		}
		r.lists = append(r.lists, l)
		r.children(n)
		r.lists = r.lists[:len(r.lists)-1]
		r.listBreak()
	case atom.Li:
		r.block(1)
		r.raw(r.marker())
		r.space = true
		r.children(n)
		r.block(1)
	case atom.Strong, atom.B:
		r.wrap(n, r.opts.strong(), r.opts.strong())
	case atom.Em, atom.I:
		r.wrap(n, r.opts.emphasis(), r.opts.emphasis())
	case atom.A:
		href := strings.TrimSpace(attr(n, "href"))
		if r.opts.IgnoreLinks || href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(strings.ToLower(href), "javascript:") {
			r.children(n)
			return
		}
		r.wrap(n, "[", "]("+href+")")
	case atom.Img:
		src := attr(n, "src")
		if r.opts.IgnoreImages || src == "" {
			return
		}
		r.raw("![" + attr(n, "alt") + "](" + src + ")")
	case atom.Table:
		r.block(2)
		r.children(n)
		r.block(2)
	case atom.Tr:
		r.block(1)
		r.cells = 0
		r.children(n)
		r.block(1)
	case atom.Td, atom.Th:
		if r.cells > 0 {
			if r.opts.IgnoreTables {
				r.text(" ")
			} else {
				r.sep(" | ")
			}
		}
		r.cells++
		r.children(n)
	case atom.Hr:
		r.block(2)
		r.raw("* * *")
		r.block(2)
	case atom.Pre:
		r.block(2)
		r.raw(strings.Trim(nodeText(n), "\n"))
		r.block(2)
	default:
		r.children(n)
	}
}

func (r *renderer) children(n *nethtml.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.walk(c)
	}
}

func (r *renderer) block(n int) {
	if n > r.pending {
		r.pending = n
	}
}

func (r *renderer) listBreak() {
	if len(r.lists) == 0 {
		r.block(2)
		return
	}
	r.block(1)
}

func (r *renderer) marker() string {
	depth := len(r.lists)
	if depth == 0 {
		return "* "
	}
	indent := strings.Repeat("  ", depth-1)
	l := &r.lists[depth-1]
	if !l.ordered {
		return indent + "* "
	}
	l.index++
	return indent + strconv.Itoa(l.index) + ". "
}

func (r *renderer) flush() {
	if r.pending == 0 {
		return
	}
	if r.b.Len() > 0 {
		r.trimTrailingSpace()
		r.b.WriteString(strings.Repeat("\n", r.pending))
	}
	r.pending = 0
	r.space = true
}

func (r *renderer) trimTrailingSpace() bool {
	s := r.b.String()
	trimmed := strings.TrimRight(s, " ")
	if len(trimmed) == len(s) {
		return false
	}
	r.b.Reset()
	r.b.WriteString(trimmed)
	return true
}

func (r *renderer) raw(s string) {
	r.flush()
	r.b.WriteString(s)
	r.space = strings.HasSuffix(s, " ")
}

func (r *renderer) sep(s string) {
	r.flush()
	r.trimTrailingSpace()
	r.b.WriteString(s)
	r.space = strings.HasSuffix(s, " ")
}

func (r *renderer) text(s string) {
	collapsed := collapseSpace(s)
	if collapsed == "" {
		return
	}
	if r.space || r.pending > 0 {
		collapsed = strings.TrimLeft(collapsed, " ")
		if collapsed == "" {
			return
		}
	}
	r.flush()
	r.b.WriteString(collapsed)
	r.space = strings.HasSuffix(collapsed, " ")
}

// wrap renders the children of n between open and close, moving any
// whitespace at the edges of the content outside the marks.
func (r *renderer) wrap(n *nethtml.Node, open, close string) {
	if strings.TrimSpace(nodeText(n)) == "" {
		r.children(n)
		return
	}
	r.raw(open)
	r.space = true
	r.children(n)
	hadSpace := r.trimTrailingSpace()
	r.b.WriteString(close)
	r.space = false
	if hadSpace {
		r.b.WriteByte(' ')
		r.space = true
	}
}

func attr(n *nethtml.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *nethtml.Node) string {
	if n.Type == nethtml.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return b.String()
}
