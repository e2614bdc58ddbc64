// Package nvdoc renders the schema language reference as markdown or as a
// standalone HTML page.
package nvdoc

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHtml "github.com/yuin/goldmark/renderer/html"

	"oss.terrastruct.com/navani/nvformat"
	"oss.terrastruct.com/navani/nvparser"
	"oss.terrastruct.com/navani/nvschema"
	"oss.terrastruct.com/navani/nvsql"
)

//go:embed reference.md
var reference string

var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithRendererOptions(
		// The SQL sample is inlined as highlighted HTML.
		goldmarkHtml.WithUnsafe(),
		goldmarkHtml.WithXHTML(),
	),
)

// Markdown returns the reference followed by the icon and color palettes,
// the table templates and the sample schema.
func Markdown() (string, error) {
	sb := &strings.Builder{}
	sb.WriteString(reference)

	sb.WriteString("\n## Icons\n\n")
	for _, icon := range nvschema.Icons {
		fmt.Fprintf(sb, "* `%s` %s\n", icon, nvschema.IconGlyph(icon))
	}

	sb.WriteString("\n## Colors\n\n")
	for _, c := range nvschema.Colors {
		if c == "" {
			sb.WriteString("* none\n")
			continue
		}
		fmt.Fprintf(sb, "* `%s`\n", c)
	}

	sb.WriteString("\n## Templates\n\n")
	sb.WriteString("`navani templates` lists tables that can be added by name.\n\n")
	for _, name := range nvschema.TemplateNames() {
		s := nvschema.New()
		s.Tables = append(s.Tables, nvschema.Template(name))
		fmt.Fprintf(sb, "### %s\n\n```\n%s```\n\n", name, nvformat.Format(s, nil))
	}

	s, err := nvparser.Parse(nvschema.SampleDSL)
	if err != nil {
		return "", fmt.Errorf("sample schema: %w", err)
	}
	sb.WriteString("## Sample\n\n```\n")
	sb.WriteString(strings.TrimSpace(nvschema.SampleDSL))
	sb.WriteString("\n```\n\nIts SQL:\n\n")
	if err := nvsql.Highlight(sb, nvsql.Generate(s), nvsql.FormatHTML, nvsql.DefaultHTMLStyle); err != nil {
		return "", err
	}
	sb.WriteString("\n")
	return sb.String(), nil
}

// RenderMarkdown converts m to an HTML fragment.
func RenderMarkdown(m string) (string, error) {
	var output bytes.Buffer
	if err := markdownRenderer.Convert([]byte(m), &output); err != nil {
		return "", err
	}
	return output.String(), nil
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 860px; margin: 2rem auto; padding: 0 1rem; color: #0f172a; }
code, pre { font-family: ui-monospace, monospace; font-size: 0.9em; }
pre { padding: 12px; background: #f8fafc; border: 1px solid #cbd5e1; border-radius: 6px; overflow-x: auto; }
table { border-collapse: collapse; }
th, td { border: 1px solid #cbd5e1; padding: 4px 10px; text-align: left; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// HTML returns the reference as a standalone page.
func HTML() ([]byte, error) {
	m, err := Markdown()
	if err != nil {
		return nil, err
	}
	body, err := RenderMarkdown(m)
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	err = pageTemplate.Execute(&b, struct {
		Title string
		Body  template.HTML
	}{
		Title: "Navani schema language",
		Body:  template.HTML(body),
	})
	if err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
