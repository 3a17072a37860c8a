package export

import (
	"bytes"
	"html/template"
	"strings"
)

var documentTemplate = template.Must(template.New("document").Funcs(template.FuncMap{
	"paragraphs": func(body string) []string {
		var out []string
		for _, p := range strings.Split(body, "\n") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	},
}).Parse(documentHTML))

// renderDocumentHTML lays the document out for the PDF printer.
func renderDocumentHTML(doc Document) (string, error) {
	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const documentHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; max-width: 800px; margin: 2rem auto; }
    h1 { border-bottom: 2px solid #333; padding-bottom: 0.5rem; }
    h2 { margin-top: 2rem; }
    .topic { color: #666; font-size: 0.9em; margin-bottom: 2rem; }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  {{if .Topic}}<div class="topic">Topic: {{.Topic}}</div>{{end}}
  {{range .Sections}}
  <h2>{{.Title}}</h2>
  {{range paragraphs .Body}}<p>{{.}}</p>
  {{end}}
  {{end}}
</body>
</html>`
