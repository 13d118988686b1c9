package content

import (
	"fmt"
	"strings"
)

// Markdown serializes the tree to Markdown. Headings are emitted with one
// '#' per level (1..3), paragraphs are followed by a blank line, list items
// are prefixed with "- " or "N. ", blockquotes with "> " and code blocks are
// fenced. Marks collapse to plain text and unknown nodes produce no output.
func Markdown(root Node) string {
	var b strings.Builder
	for _, n := range blocksOf(root) {
		writeBlock(&b, n)
	}
	return b.String()
}

// ExportMarkdown renders a complete Markdown file: the document title as a
// level-1 heading followed by the serialized content.
func ExportMarkdown(title string, root Node) string {
	return "# " + title + "\n\n" + Markdown(root)
}

func blocksOf(root Node) []Node {
	if root.Type == TypeDoc {
		return root.Content
	}
	return []Node{root}
}

func writeBlock(b *strings.Builder, n Node) {
	switch n.Type {
	case TypeHeading:
		b.WriteString(strings.Repeat("#", n.Level()))
		b.WriteByte(' ')
		b.WriteString(InlineText(n))
		b.WriteString("\n\n")
	case TypeParagraph:
		b.WriteString(InlineText(n))
		b.WriteString("\n\n")
	case TypeBulletList, TypeOrderedList, TypeTaskList:
		writeList(b, n, 0)
		b.WriteByte('\n')
	case TypeBlockquote:
		var lines []string
		for _, c := range n.Content {
			lines = append(lines, strings.Split(blockText(c), "\n")...)
		}
		for _, l := range lines {
			b.WriteString("> ")
			b.WriteString(l)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	case TypeCodeBlock:
		b.WriteString("```")
		if n.Attrs != nil {
			b.WriteString(n.Attrs.Language)
		}
		b.WriteByte('\n')
		b.WriteString(InlineText(n))
		b.WriteString("\n```\n\n")
	case TypeHorizontalRule:
		b.WriteString("---\n\n")
	}
}

// blockText flattens a block nested inside a quote.
func blockText(n Node) string {
	switch n.Type {
	case TypeBulletList, TypeOrderedList, TypeTaskList:
		var b strings.Builder
		writeList(&b, n, 0)
		return strings.TrimRight(b.String(), "\n")
	}
	return InlineText(n)
}

func writeList(b *strings.Builder, list Node, depth int) {
	start := 1
	if list.Attrs != nil && list.Attrs.Start > 0 {
		start = list.Attrs.Start
	}
	indent := strings.Repeat("  ", depth)
	for i, item := range list.Content {
		if item.Type != TypeListItem && item.Type != TypeTaskItem {
			continue
		}
		b.WriteString(indent)
		switch list.Type {
		case TypeOrderedList:
			fmt.Fprintf(b, "%d. ", start+i)
		case TypeTaskList:
			if item.Attrs != nil && item.Attrs.Checked {
				b.WriteString("- [x] ")
			} else {
				b.WriteString("- [ ] ")
			}
		default:
			b.WriteString("- ")
		}

		var text []string
		var nested []Node
		for _, c := range item.Content {
			switch c.Type {
			case TypeBulletList, TypeOrderedList, TypeTaskList:
				nested = append(nested, c)
			default:
				if c.Type.Known() {
					text = append(text, InlineText(c))
				}
			}
		}
		b.WriteString(strings.Join(text, " "))
		b.WriteByte('\n')
		for _, sub := range nested {
			writeList(b, sub, depth+1)
		}
	}
}
