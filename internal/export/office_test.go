package export

import (
	"strings"
	"testing"
)

func TestPptxMarkdownLeadLineThenBullets(t *testing.T) {
	doc := Document{
		Title: "Deck",
		Topic: "widgets",
		Sections: []Section{
			{Title: "Key Points", Body: "The headline claim.\n- supporting detail\nanother detail\n\n* last one"},
		},
	}

	md := pptxMarkdown(doc)

	slide := md[strings.Index(md, "# Key Points"):]
	wantSlide := "# Key Points\n\nThe headline claim.\n\n- supporting detail\n- another detail\n- last one\n\n"
	if slide != wantSlide {
		t.Fatalf("slide layout:\n%q\nwant:\n%q", slide, wantSlide)
	}
	if !strings.Contains(md, `subtitle: "widgets"`) {
		t.Errorf("topic missing from title slide metadata:\n%s", md)
	}
}

func TestPptxMarkdownEmptyBody(t *testing.T) {
	doc := Document{
		Title:    "Deck",
		Sections: []Section{{Title: "Pending"}},
	}

	md := pptxMarkdown(doc)
	if !strings.Contains(md, "# Pending\n\n\n") {
		t.Fatalf("empty section should still produce a slide heading:\n%q", md)
	}
	if strings.Contains(md, "- ") {
		t.Fatalf("empty section must not emit bullets:\n%q", md)
	}
}

func TestDocxMarkdownLayout(t *testing.T) {
	doc := Document{
		Title: "My Report",
		Topic: "widgets",
		Sections: []Section{
			{Title: "Intro", Body: "opening words"},
			{Title: "Body"},
		},
	}

	md := docxMarkdown(doc)
	for _, want := range []string{
		"title: \"My Report\"",
		"Topic: widgets\n\n",
		"# Intro\n\nopening words\n",
		"# Body\n\n",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestQuoteYAMLEscapes(t *testing.T) {
	if got := quoteYAML(`a "b" \c`); got != `"a \"b\" \\c"` {
		t.Fatalf("got %s", got)
	}
}
