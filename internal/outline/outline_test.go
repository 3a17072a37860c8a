package outline

import "testing"

func TestDeriveID(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Introduction", "introduction"},
		{"Main Content", "main_content"},
		{"Key  Points", "key__points"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := DeriveID(tc.title); got != tc.want {
			t.Errorf("DeriveID(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestDeriveIDIsStable(t *testing.T) {
	if DeriveID("Market Analysis") != DeriveID("Market Analysis") {
		t.Fatal("deriving twice from the same title must yield the same id")
	}
}

func TestSectionIDPrefersExplicitID(t *testing.T) {
	entry := Entry{ID: "section_3", Title: "Market Analysis"}
	if got := entry.SectionID(); got != "section_3" {
		t.Fatalf("SectionID() = %q, want section_3", got)
	}

	entry = Entry{Title: "Market Analysis"}
	if got := entry.SectionID(); got != "market_analysis" {
		t.Fatalf("SectionID() = %q, want market_analysis", got)
	}
}

func TestDisplayTitleFallsBackToName(t *testing.T) {
	entry := Entry{Name: "Overview"}
	if got := entry.DisplayTitle(); got != "Overview" {
		t.Fatalf("DisplayTitle() = %q, want Overview", got)
	}
	entry = Entry{Title: "Intro", Name: "Overview"}
	if got := entry.DisplayTitle(); got != "Intro" {
		t.Fatalf("DisplayTitle() = %q, want Intro", got)
	}
}

func TestFindAcceptsBothIDForms(t *testing.T) {
	entries := []Entry{
		{ID: "section_1", Title: "Introduction", Order: 1},
		{ID: "section_2", Title: "Main Content", Order: 2},
	}

	if _, ok := Find(entries, "section_2"); !ok {
		t.Error("explicit id should match")
	}
	if _, ok := Find(entries, "main_content"); !ok {
		t.Error("derived id should match")
	}
	if _, ok := Find(entries, "conclusion"); ok {
		t.Error("unknown id should not match")
	}

	got, ok := Find(entries, "introduction")
	if !ok || got.ID != "section_1" {
		t.Fatalf("Find returned %+v, want section_1", got)
	}
}

func TestFindWithNameOnlyEntries(t *testing.T) {
	entries := []Entry{{Name: "Key Points"}}
	got, ok := Find(entries, "key_points")
	if !ok || got.DisplayTitle() != "Key Points" {
		t.Fatalf("Find returned %+v, ok=%v", got, ok)
	}
}

func TestCollisions(t *testing.T) {
	entries := []Entry{
		{Title: "Summary"},
		{Title: "summary"},
		{Title: "Details"},
	}
	dupes := Collisions(entries)
	if len(dupes) != 1 || dupes[0] != "summary" {
		t.Fatalf("Collisions = %v, want [summary]", dupes)
	}

	if dupes := Collisions([]Entry{{Title: "A"}, {Title: "B"}}); len(dupes) != 0 {
		t.Fatalf("Collisions = %v, want none", dupes)
	}
}
