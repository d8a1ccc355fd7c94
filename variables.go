package vaila

import (
	"bytes"
	"log"
	"strings"
	"text/template"
)

// StringMap holds template variables and localized strings.
type StringMap map[string]string

// templateFuncs are the helpers available inside {{...}} expressions in
// config variables, language strings and the launcher/desktop templates.
var templateFuncs = template.FuncMap{
	"replace": func(from, to, input string) string { return strings.ReplaceAll(input, from, to) },
	"trim":    func(input string) string { return strings.Trim(input, " \r\n\t") },
	"split":   func(sep, input string) []string { return strings.Split(input, sep) },
	"join":    func(sep string, input []string) string { return strings.Join(input, sep) },
	"upper":   strings.ToUpper,
	"lower":   strings.ToLower,
	"title":   strings.ToTitle,
}

// ExpandVariables renders {{.var}} references in str from the given map.
// A string that fails to parse or execute is returned unchanged, so a
// malformed language entry degrades to its raw text instead of breaking
// the run.
func ExpandVariables(str string, variables StringMap) string {
	templ, err := template.New("").Funcs(templateFuncs).Parse(str)
	if err != nil {
		log.Printf("Invalid string template %q: %v", str, err)
		return str
	}
	var buf bytes.Buffer
	if err := templ.Execute(&buf, variables); err != nil {
		log.Printf("Error expanding template %q: %v", str, err)
		return str
	}
	return buf.String()
}

// MergeVariables flattens several variable maps into one. On duplicate
// keys the last map wins.
func MergeVariables(varMaps ...StringMap) StringMap {
	merged := make(StringMap)
	for _, vars := range varMaps {
		for k, v := range vars {
			merged[k] = v
		}
	}
	return merged
}
