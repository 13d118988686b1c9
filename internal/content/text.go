package content

import "strings"

// WordsPerMinute is the reading speed used for reading-time estimates.
const WordsPerMinute = 200

// PlainText projects the tree to plain text. Blocks are separated by a blank
// line, hard breaks become newlines and marks are dropped.
func PlainText(n Node) string {
	var parts []string
	collectBlocks(n, &parts)
	return strings.Join(parts, "\n\n")
}

func collectBlocks(n Node, parts *[]string) {
	switch n.Type {
	case TypeDoc, TypeBulletList, TypeOrderedList, TypeTaskList, TypeListItem, TypeTaskItem, TypeBlockquote:
		for _, c := range n.Content {
			collectBlocks(c, parts)
		}
	case TypeHeading, TypeParagraph, TypeCodeBlock:
		*parts = append(*parts, InlineText(n))
	case TypeText:
		*parts = append(*parts, n.Text)
	}
}

// InlineText concatenates all descendant text runs of n in document order,
// ignoring formatting marks. Subtrees of unrecognized node types contribute
// nothing.
func InlineText(n Node) string {
	var b strings.Builder
	writeInline(&b, n)
	return b.String()
}

func writeInline(b *strings.Builder, n Node) {
	switch n.Type {
	case TypeText:
		b.WriteString(n.Text)
	case TypeHardBreak:
		b.WriteByte('\n')
	default:
		if !n.Type.Known() {
			return
		}
		for _, c := range n.Content {
			writeInline(b, c)
		}
	}
}

// WordCount returns the number of whitespace-delimited non-empty tokens in the
// plain-text projection of n.
func WordCount(n Node) int {
	return CountWords(PlainText(n))
}

// CountWords counts whitespace-delimited tokens in s.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// ReadingTime returns ceil(words / WordsPerMinute) minutes, at least 1.
func ReadingTime(words int) int {
	m := (words + WordsPerMinute - 1) / WordsPerMinute
	if m < 1 {
		return 1
	}
	return m
}
