package content

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const exportStyle = `body{font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Roboto,sans-serif;max-width:720px;margin:40px auto;padding:0 20px;line-height:1.6;color:#1f2937}
h1,h2,h3{line-height:1.25}
blockquote{border-left:4px solid #d1d5db;margin:0;padding-left:16px;color:#4b5563}
pre{background:#f3f4f6;padding:12px;border-radius:6px;overflow-x:auto}
code{font-family:ui-monospace,SFMono-Regular,Menlo,monospace}
mark{background:#fef08a}
ul.task-list{list-style:none;padding-left:0}`

// ExportHTML renders a standalone HTML document containing the title and the
// content tree. The output is a best-effort export and does not round-trip.
func ExportHTML(title string, root Node) (string, error) {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	htmlEl := element(atom.Html, attr("lang", "en"))
	doc.AppendChild(htmlEl)

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, attr("charset", "utf-8")))
	titleEl := element(atom.Title)
	titleEl.AppendChild(textNode(title))
	head.AppendChild(titleEl)
	style := element(atom.Style)
	style.AppendChild(textNode(exportStyle))
	head.AppendChild(style)
	htmlEl.AppendChild(head)

	body := element(atom.Body)
	article := element(atom.Article)
	h1 := element(atom.H1)
	h1.AppendChild(textNode(title))
	article.AppendChild(h1)
	for _, n := range blocksOf(root) {
		if el := renderBlock(n); el != nil {
			article.AppendChild(el)
		}
	}
	body.AppendChild(article)
	htmlEl.AppendChild(body)

	var b strings.Builder
	if err := html.Render(&b, doc); err != nil {
		return "", err
	}
	return b.String(), nil
}

var headingAtoms = [...]atom.Atom{atom.H1, atom.H2, atom.H3}

func renderBlock(n Node) *html.Node {
	var el *html.Node
	switch n.Type {
	case TypeHeading:
		el = element(headingAtoms[n.Level()-1])
		appendInline(el, n.Content)
	case TypeParagraph:
		el = element(atom.P)
		appendInline(el, n.Content)
	case TypeBulletList:
		el = element(atom.Ul)
		appendItems(el, n.Content)
	case TypeOrderedList:
		el = element(atom.Ol)
		if n.Attrs != nil && n.Attrs.Start > 1 {
			el.Attr = append(el.Attr, attr("start", strconv.Itoa(n.Attrs.Start)))
		}
		appendItems(el, n.Content)
	case TypeTaskList:
		el = element(atom.Ul, attr("class", "task-list"))
		appendItems(el, n.Content)
	case TypeBlockquote:
		el = element(atom.Blockquote)
		appendBlocks(el, n.Content)
	case TypeCodeBlock:
		el = element(atom.Pre)
		code := element(atom.Code)
		if n.Attrs != nil && n.Attrs.Language != "" {
			code.Attr = append(code.Attr, attr("class", "language-"+n.Attrs.Language))
		}
		code.AppendChild(textNode(InlineText(n)))
		el.AppendChild(code)
	case TypeHorizontalRule:
		el = element(atom.Hr)
	}
	return el
}

func appendBlocks(parent *html.Node, blocks []Node) {
	for _, c := range blocks {
		if el := renderBlock(c); el != nil {
			parent.AppendChild(el)
		}
	}
}

func appendItems(list *html.Node, items []Node) {
	for _, item := range items {
		if item.Type != TypeListItem && item.Type != TypeTaskItem {
			continue
		}
		li := element(atom.Li)
		if item.Type == TypeTaskItem {
			box := element(atom.Input, attr("type", "checkbox"), attr("disabled", ""))
			if item.Attrs != nil && item.Attrs.Checked {
				box.Attr = append(box.Attr, attr("checked", ""))
			}
			li.AppendChild(box)
		}
		appendBlocks(li, item.Content)
		list.AppendChild(li)
	}
}

func appendInline(parent *html.Node, inline []Node) {
	for _, n := range inline {
		switch n.Type {
		case TypeText:
			parent.AppendChild(wrapMarks(n))
		case TypeHardBreak:
			parent.AppendChild(element(atom.Br))
		}
	}
}

func wrapMarks(n Node) *html.Node {
	out := textNode(n.Text)
	for i := len(n.Marks) - 1; i >= 0; i-- {
		var wrap *html.Node
		switch m := n.Marks[i]; m.Type {
		case MarkBold:
			wrap = element(atom.Strong)
		case MarkItalic:
			wrap = element(atom.Em)
		case MarkUnderline:
			wrap = element(atom.U)
		case MarkStrike:
			wrap = element(atom.S)
		case MarkHighlight:
			wrap = element(atom.Mark)
		case MarkCode:
			wrap = element(atom.Code)
		case MarkLink:
			href := ""
			if m.Attrs != nil {
				href = m.Attrs.Href
			}
			wrap = element(atom.A, attr("href", href))
		default:
			continue
		}
		wrap.AppendChild(out)
		out = wrap
	}
	return out
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
