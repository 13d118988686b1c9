// Package parser reads Markdown files dropped into the inbox: YAML
// frontmatter, a title, and tags.
package parser

import (
	"bytes"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var tagRe = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)

// Frontmatter is the recognised header of an inbox file. Unknown keys are
// ignored.
type Frontmatter struct {
	Kind   string  `yaml:"kind"`
	Title  string  `yaml:"title"`
	Tags   tagList `yaml:"tags"`
	Color  string  `yaml:"color"`
	Pinned bool    `yaml:"pinned"`
}

// tagList accepts both a YAML sequence and a comma-separated string.
type tagList []string

func (t *tagList) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		var s string
		if err := n.Decode(&s); err != nil {
			return err
		}
		*t = splitTags(s)
		return nil
	}
	var items []string
	if err := n.Decode(&items); err != nil {
		return err
	}
	*t = items
	return nil
}

func splitTags(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter *Frontmatter
	Body        string
	Tags        []string
	Title       string
}

// Parse splits frontmatter from the body and derives title and tags. When the
// title comes from a leading "# " heading, that heading is removed from Body.
func Parse(data []byte) (*Result, error) {
	fm, body := splitFrontmatter(data)

	title, body := deriveTitle(fm, body)
	return &Result{
		Frontmatter: fm,
		Body:        body,
		Tags:        extractTags(body, fm),
		Title:       title,
	}, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. Missing or invalid frontmatter leaves the whole
// input as body.
func splitFrontmatter(data []byte) (*Frontmatter, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm Frontmatter
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data)
	}
	return &fm, body
}

// extractTags collects frontmatter tags followed by inline #tags, without
// duplicates.
func extractTags(body string, fm *Frontmatter) []string {
	seen := make(map[string]struct{})
	out := []string{}
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" {
			return
		}
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	if fm != nil {
		for _, t := range fm.Tags {
			add(t)
		}
	}
	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}
	return out
}

// deriveTitle returns the frontmatter title if present, otherwise the first
// line when it is an H1 heading, which is then dropped from the body.
func deriveTitle(fm *Frontmatter, body string) (string, string) {
	if fm != nil && strings.TrimSpace(fm.Title) != "" {
		return strings.TrimSpace(fm.Title), body
	}
	first, rest, _ := strings.Cut(strings.TrimLeft(body, "\n\r"), "\n")
	first = strings.TrimSpace(first)
	if strings.HasPrefix(first, "# ") {
		return strings.TrimSpace(first[2:]), strings.TrimLeft(rest, "\n\r")
	}
	return "", body
}
