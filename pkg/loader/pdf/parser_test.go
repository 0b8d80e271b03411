package pdf

import "testing"

func TestSplitPages_MultiplePages(t *testing.T) {
	pages := splitPages("first page\fsecond page\fthird page\f")
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	for i, want := range []string{"first page", "second page", "third page"} {
		if pages[i].Number != i+1 {
			t.Errorf("page %d: expected number %d, got %d", i, i+1, pages[i].Number)
		}
		if pages[i].Text != want {
			t.Errorf("page %d: expected %q, got %q", i, want, pages[i].Text)
		}
	}
}

func TestSplitPages_SinglePage(t *testing.T) {
	pages := splitPages("only page\n")
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if pages[0].Number != 1 {
		t.Fatalf("expected page number 1, got %d", pages[0].Number)
	}
	if pages[0].Text != "only page" {
		t.Fatalf("expected trimmed text, got %q", pages[0].Text)
	}
}

func TestSplitPages_InteriorBlankPageKeepsNumbering(t *testing.T) {
	pages := splitPages("a\f\fc\f")
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	if pages[1].Text != "" {
		t.Fatalf("expected empty interior page, got %q", pages[1].Text)
	}
	if pages[2].Number != 3 {
		t.Fatalf("expected page 3 to keep number 3, got %d", pages[2].Number)
	}
}

func TestSplitPages_CollapsesExcessNewlines(t *testing.T) {
	pages := splitPages("line one\n\n\n\nline two")
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if pages[0].Text != "line one\n\nline two" {
		t.Fatalf("unexpected text: %q", pages[0].Text)
	}
}

func TestSplitPages_Empty(t *testing.T) {
	if pages := splitPages(""); len(pages) != 0 {
		t.Fatalf("expected no pages, got %d", len(pages))
	}
}
