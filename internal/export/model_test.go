package export

import (
	"strings"
	"testing"

	"github.com/ridhiagarwalla/AI-doc-Generator/internal/outline"
)

func TestBuildDocumentKeepsOutlineOrder(t *testing.T) {
	entries := []outline.Entry{
		{ID: "section_1", Title: "Intro", Order: 1},
		{ID: "section_2", Title: "Body", Order: 2},
		{ID: "section_3", Title: "End", Order: 3},
	}
	content := map[string]string{
		"section_3": "closing",
		"section_1": "opening",
	}

	doc := BuildDocument("My Report", "widgets", entries, content)
	if doc.Title != "My Report" || doc.Topic != "widgets" {
		t.Fatalf("doc = %+v", doc)
	}
	if len(doc.Sections) != 3 {
		t.Fatalf("sections = %+v", doc.Sections)
	}
	if doc.Sections[0].Body != "opening" || doc.Sections[2].Body != "closing" {
		t.Fatalf("sections = %+v", doc.Sections)
	}
	if doc.Sections[1].Body != "" {
		t.Fatalf("missing content should render as empty body, got %q", doc.Sections[1].Body)
	}
}

func TestBuildDocumentLooksUpDerivedID(t *testing.T) {
	entries := []outline.Entry{{Title: "Market Analysis"}}
	content := map[string]string{"market_analysis": "text"}

	doc := BuildDocument("T", "", entries, content)
	if doc.Sections[0].Body != "text" {
		t.Fatalf("derived-id lookup failed: %+v", doc.Sections)
	}
}

func TestBuildDocumentIgnoresOrphanContent(t *testing.T) {
	entries := []outline.Entry{{ID: "section_1", Title: "Intro"}}
	content := map[string]string{
		"section_1": "a",
		"leftover":  "b",
	}
	doc := BuildDocument("T", "", entries, content)
	if len(doc.Sections) != 1 {
		t.Fatalf("sections = %+v", doc.Sections)
	}
}

func TestExportFilename(t *testing.T) {
	cases := []struct {
		title  string
		format Format
		want   string
	}{
		{"My Great Report", FormatDOCX, "My_Great_Report.docx"},
		{"Deck", FormatPPTX, "Deck.pptx"},
		{"", FormatPDF, "document.pdf"},
	}
	for _, tc := range cases {
		if got := exportFilename(tc.title, tc.format); got != tc.want {
			t.Errorf("exportFilename(%q, %s) = %q, want %q", tc.title, tc.format, got, tc.want)
		}
	}
}

func TestRenderDocumentHTML(t *testing.T) {
	doc := Document{
		Title: "Report",
		Topic: "widgets",
		Sections: []Section{
			{Title: "Intro", Body: "first line\n\nsecond line"},
		},
	}
	html, err := renderDocumentHTML(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"<h1>Report</h1>", "Topic: widgets", "<h2>Intro</h2>", "<p>first line</p>", "<p>second line</p>"} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q", want)
		}
	}
}

func TestRenderDocumentHTMLEscapes(t *testing.T) {
	doc := Document{
		Title:    "R",
		Sections: []Section{{Title: "S", Body: "<script>alert(1)</script>"}},
	}
	html, err := renderDocumentHTML(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Fatal("body content must be escaped")
	}
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	if _, err := Render(Document{Title: "x"}, Format("odt")); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestPercentEncodeForDataURL(t *testing.T) {
	got := percentEncodeForDataURL("a b&c")
	if got != "a%20b%26c" {
		t.Fatalf("got %q", got)
	}
}
