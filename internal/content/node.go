// Package content implements the structured document tree edited by the
// document editor: its JSON form, text projection, and export formats.
package content

import (
	"bytes"
	"encoding/json"
	"strings"
)

// NodeType tags a node in the document tree. The set is closed; decoders keep
// unknown types so that a newer editor does not lose data, but every consumer
// in this package skips them.
type NodeType string

const (
	TypeDoc            NodeType = "doc"
	TypeHeading        NodeType = "heading"
	TypeParagraph      NodeType = "paragraph"
	TypeBulletList     NodeType = "bulletList"
	TypeOrderedList    NodeType = "orderedList"
	TypeListItem       NodeType = "listItem"
	TypeTaskList       NodeType = "taskList"
	TypeTaskItem       NodeType = "taskItem"
	TypeBlockquote     NodeType = "blockquote"
	TypeCodeBlock      NodeType = "codeBlock"
	TypeHorizontalRule NodeType = "horizontalRule"
	TypeHardBreak      NodeType = "hardBreak"
	TypeText           NodeType = "text"
)

// Known reports whether t belongs to the closed set of node kinds.
func (t NodeType) Known() bool {
	switch t {
	case TypeDoc, TypeHeading, TypeParagraph, TypeBulletList, TypeOrderedList,
		TypeListItem, TypeTaskList, TypeTaskItem, TypeBlockquote, TypeCodeBlock,
		TypeHorizontalRule, TypeHardBreak, TypeText:
		return true
	}
	return false
}

// MarkType is an inline formatting mark carried by a text run.
type MarkType string

const (
	MarkBold      MarkType = "bold"
	MarkItalic    MarkType = "italic"
	MarkUnderline MarkType = "underline"
	MarkStrike    MarkType = "strike"
	MarkHighlight MarkType = "highlight"
	MarkCode      MarkType = "code"
	MarkLink      MarkType = "link"
)

// Mark is a formatting mark. Only links carry attributes.
type Mark struct {
	Type  MarkType   `json:"type"`
	Attrs *MarkAttrs `json:"attrs,omitempty"`
}

// MarkAttrs holds mark attributes.
type MarkAttrs struct {
	Href string `json:"href,omitempty"`
}

// Attrs holds the union of block attributes used by the node kinds.
type Attrs struct {
	Level     int    `json:"level,omitempty"`
	Language  string `json:"language,omitempty"`
	Start     int    `json:"start,omitempty"`
	Checked   bool   `json:"checked,omitempty"`
	TextAlign string `json:"textAlign,omitempty"`
}

// Node is one element of the document tree. Block nodes carry Content;
// text nodes carry Text and Marks.
type Node struct {
	Type    NodeType `json:"type"`
	Attrs   *Attrs   `json:"attrs,omitempty"`
	Content []Node   `json:"content,omitempty"`
	Text    string   `json:"text,omitempty"`
	Marks   []Mark   `json:"marks,omitempty"`
}

// UnmarshalJSON accepts the editor's JSON tree. A null value yields an empty
// document, and a bare string (documents saved before the rich editor existed)
// is split into paragraphs on blank lines.
func (n *Node) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*n = Empty()
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*n = FromPlainText(s)
		return nil
	}
	type plain Node
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*n = Node(p)
	return nil
}

// Empty returns a document with no blocks.
func Empty() Node {
	return Node{Type: TypeDoc}
}

// IsEmpty reports whether the tree has no text at all.
func (n Node) IsEmpty() bool {
	return strings.TrimSpace(PlainText(n)) == ""
}

// Level returns the heading level clamped to the supported range 1..3.
func (n Node) Level() int {
	l := 1
	if n.Attrs != nil && n.Attrs.Level > 0 {
		l = n.Attrs.Level
	}
	if l > 3 {
		l = 3
	}
	return l
}

// HasMark reports whether a text node carries the given mark.
func (n Node) HasMark(t MarkType) bool {
	for _, m := range n.Marks {
		if m.Type == t {
			return true
		}
	}
	return false
}

// Doc builds a document from block nodes.
func Doc(blocks ...Node) Node {
	return Node{Type: TypeDoc, Content: blocks}
}

// Heading builds a heading of the given level containing one text run.
func Heading(level int, text string) Node {
	return Node{Type: TypeHeading, Attrs: &Attrs{Level: level}, Content: runs(text)}
}

// Paragraph builds a paragraph from inline nodes.
func Paragraph(inline ...Node) Node {
	return Node{Type: TypeParagraph, Content: inline}
}

// Para is shorthand for a paragraph with a single unmarked run.
func Para(text string) Node {
	return Node{Type: TypeParagraph, Content: runs(text)}
}

// Text builds an inline text run.
func Text(s string, marks ...MarkType) Node {
	n := Node{Type: TypeText, Text: s}
	for _, m := range marks {
		n.Marks = append(n.Marks, Mark{Type: m})
	}
	return n
}

// Link builds a text run carrying a link mark.
func Link(s, href string) Node {
	return Node{Type: TypeText, Text: s, Marks: []Mark{{Type: MarkLink, Attrs: &MarkAttrs{Href: href}}}}
}

// BulletList builds a bullet list with one paragraph per item.
func BulletList(items ...string) Node {
	return Node{Type: TypeBulletList, Content: listItems(TypeListItem, items, nil)}
}

// OrderedList builds an ordered list starting at 1.
func OrderedList(items ...string) Node {
	return Node{Type: TypeOrderedList, Attrs: &Attrs{Start: 1}, Content: listItems(TypeListItem, items, nil)}
}

// TaskList builds a task list; checked[i] marks item i as done.
func TaskList(items []string, checked []bool) Node {
	return Node{Type: TypeTaskList, Content: listItems(TypeTaskItem, items, checked)}
}

// Blockquote builds a quote containing one paragraph.
func Blockquote(text string) Node {
	return Node{Type: TypeBlockquote, Content: []Node{Para(text)}}
}

// CodeBlock builds a code block.
func CodeBlock(language, code string) Node {
	n := Node{Type: TypeCodeBlock, Content: runs(code)}
	if language != "" {
		n.Attrs = &Attrs{Language: language}
	}
	return n
}

// HorizontalRule builds a thematic break.
func HorizontalRule() Node {
	return Node{Type: TypeHorizontalRule}
}

// FromPlainText converts plain text to paragraphs, one per blank-line
// separated block.
func FromPlainText(s string) Node {
	doc := Empty()
	for _, block := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		doc.Content = append(doc.Content, Para(block))
	}
	return doc
}

func runs(text string) []Node {
	if text == "" {
		return nil
	}
	return []Node{Text(text)}
}

func listItems(t NodeType, items []string, checked []bool) []Node {
	out := make([]Node, len(items))
	for i, it := range items {
		out[i] = Node{Type: t, Content: []Node{Para(it)}}
		if t == TypeTaskItem {
			out[i].Attrs = &Attrs{Checked: i < len(checked) && checked[i]}
		}
	}
	return out
}
