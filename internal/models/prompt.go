package models

import (
	"regexp"
	"strings"
)

var variableRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// ExtractVariables returns the distinct {{name}} placeholders of template in
// order of first appearance.
func ExtractVariables(template string) []string {
	matches := variableRe.FindAllStringSubmatch(template, -1)
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// FillTemplate substitutes every {{name}} with values[name]. Placeholders
// without a non-empty value are left as they are.
func FillTemplate(template string, values map[string]string) string {
	return variableRe.ReplaceAllStringFunc(template, func(token string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(token, "{{"), "}}")
		if v := values[name]; v != "" {
			return v
		}
		return token
	})
}
