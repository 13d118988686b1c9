package content

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var markdownParser = goldmark.New(
	goldmark.WithExtensions(extension.Strikethrough, extension.TaskList),
).Parser()

// FromMarkdown parses Markdown source into a document tree. Constructs with
// no node kind in the tree (images, raw HTML, tables) are dropped.
func FromMarkdown(src []byte) Node {
	root := markdownParser.Parse(text.NewReader(src))
	doc := Empty()
	for c := root.FirstChild(); c != nil; c = c.NextSibling() {
		if n, ok := convertBlock(c, src); ok {
			doc.Content = append(doc.Content, n)
		}
	}
	return doc
}

func convertBlock(n ast.Node, src []byte) (Node, bool) {
	switch v := n.(type) {
	case *ast.Heading:
		return Node{Type: TypeHeading, Attrs: &Attrs{Level: v.Level}, Content: convertInlines(v, src, nil)}, true
	case *ast.Paragraph, *ast.TextBlock:
		return Node{Type: TypeParagraph, Content: convertInlines(v, src, nil)}, true
	case *ast.List:
		return convertList(v, src), true
	case *ast.Blockquote:
		return Node{Type: TypeBlockquote, Content: convertChildren(v, src)}, true
	case *ast.FencedCodeBlock:
		cb := CodeBlock(string(v.Language(src)), codeLines(v, src))
		return cb, true
	case *ast.CodeBlock:
		return CodeBlock("", codeLines(v, src)), true
	case *ast.ThematicBreak:
		return HorizontalRule(), true
	}
	return Node{}, false
}

func convertChildren(parent ast.Node, src []byte) []Node {
	var out []Node
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		if n, ok := convertBlock(c, src); ok {
			out = append(out, n)
		}
	}
	return out
}

func convertList(l *ast.List, src []byte) Node {
	list := Node{Type: TypeBulletList}
	if l.IsOrdered() {
		list.Type = TypeOrderedList
		list.Attrs = &Attrs{Start: l.Start}
	}
	if isTaskList(l) {
		list.Type = TypeTaskList
		list.Attrs = nil
	}
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		li := Node{Type: TypeListItem, Content: convertChildren(item, src)}
		if list.Type == TypeTaskList {
			li.Type = TypeTaskItem
			li.Attrs = &Attrs{Checked: taskChecked(item)}
		}
		list.Content = append(list.Content, li)
	}
	return list
}

func taskBox(item ast.Node) *extast.TaskCheckBox {
	first := item.FirstChild()
	if first == nil {
		return nil
	}
	box, _ := first.FirstChild().(*extast.TaskCheckBox)
	return box
}

func isTaskList(l *ast.List) bool {
	item := l.FirstChild()
	return item != nil && taskBox(item) != nil
}

func taskChecked(item ast.Node) bool {
	if box := taskBox(item); box != nil {
		return box.IsChecked
	}
	return false
}

func codeLines(n ast.Node, src []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return strings.TrimRight(b.String(), "\n")
}

func convertInlines(parent ast.Node, src []byte, marks []Mark) []Node {
	var out []Node
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		out = append(out, convertInline(c, src, marks)...)
	}
	return out
}

func withMark(marks []Mark, m Mark) []Mark {
	out := make([]Mark, 0, len(marks)+1)
	out = append(out, marks...)
	return append(out, m)
}

func textRun(s string, marks []Mark) []Node {
	if s == "" {
		return nil
	}
	return []Node{{Type: TypeText, Text: s, Marks: marks}}
}

func convertInline(n ast.Node, src []byte, marks []Mark) []Node {
	switch v := n.(type) {
	case *ast.Text:
		out := textRun(string(v.Segment.Value(src)), marks)
		switch {
		case v.HardLineBreak():
			out = append(out, Node{Type: TypeHardBreak})
		case v.SoftLineBreak():
			out = append(out, textRun(" ", marks)...)
		}
		return out
	case *ast.String:
		return textRun(string(v.Value), marks)
	case *ast.Emphasis:
		mt := MarkItalic
		if v.Level >= 2 {
			mt = MarkBold
		}
		return convertInlines(v, src, withMark(marks, Mark{Type: mt}))
	case *extast.Strikethrough:
		return convertInlines(v, src, withMark(marks, Mark{Type: MarkStrike}))
	case *ast.CodeSpan:
		var b strings.Builder
		for c := v.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				b.Write(t.Segment.Value(src))
			}
		}
		return textRun(b.String(), withMark(marks, Mark{Type: MarkCode}))
	case *ast.Link:
		return convertInlines(v, src, withMark(marks, Mark{Type: MarkLink, Attrs: &MarkAttrs{Href: string(v.Destination)}}))
	case *ast.AutoLink:
		u := string(v.URL(src))
		return textRun(u, withMark(marks, Mark{Type: MarkLink, Attrs: &MarkAttrs{Href: u}}))
	case *extast.TaskCheckBox, *ast.Image, *ast.RawHTML:
		return nil
	}
	return convertInlines(n, src, marks)
}
