package export

import (
	"fmt"
	"strings"

	"github.com/ridhiagarwalla/AI-doc-Generator/internal/outline"
)

// Document is the render model: title block plus sections in outline order.
type Document struct {
	Title    string
	Topic    string
	Sections []Section
}

// Section is one rendered block. Body may be empty when the section was
// never generated; the heading still renders.
type Section struct {
	Title string
	Body  string
}

// BuildDocument projects outline and content into the render model. Content
// is keyed by section id; lookup accepts the entry's explicit id or the
// derived form, mirroring how content was stored. BuildDocument never
// mutates anything and ignores content keys absent from the outline.
func BuildDocument(title, topic string, entries []outline.Entry, content map[string]string) Document {
	doc := Document{Title: title, Topic: topic}
	for _, entry := range entries {
		body, ok := content[entry.SectionID()]
		if !ok {
			body = content[outline.DeriveID(entry.DisplayTitle())]
		}
		doc.Sections = append(doc.Sections, Section{
			Title: entry.DisplayTitle(),
			Body:  body,
		})
	}
	return doc
}

// Render serializes the document in the requested format.
func Render(doc Document, format Format) (*Result, error) {
	switch format {
	case FormatDOCX:
		return renderDOCX(doc)
	case FormatPPTX:
		return renderPPTX(doc)
	case FormatPDF:
		return renderPDF(doc)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// exportFilename follows the download convention: title with spaces replaced
// by underscores plus the format extension.
func exportFilename(title string, format Format) string {
	if title == "" {
		title = "document"
	}
	return strings.ReplaceAll(title, " ", "_") + "." + string(format)
}
