package pagination

import (
	"net/url"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	page, err := Parse(url.Values{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if page.Page != 1 || page.Limit != DefaultLimit {
		t.Errorf("unexpected defaults: %+v", page)
	}
	if page.Offset() != 0 {
		t.Errorf("expected offset 0, got %d", page.Offset())
	}
}

func TestParseCapsLimit(t *testing.T) {
	values := url.Values{"limit": []string{"5000"}}
	page, err := Parse(values)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if page.Limit != MaxLimit {
		t.Errorf("expected limit capped at %d, got %d", MaxLimit, page.Limit)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, values := range []url.Values{
		{"page": []string{"abc"}},
		{"page": []string{"0"}},
		{"page": []string{"-2"}},
		{"limit": []string{"abc"}},
		{"limit": []string{"0"}},
	} {
		if _, err := Parse(values); err == nil {
			t.Errorf("expected error for %v", values)
		}
	}
}

func TestOffsetAndTotalPages(t *testing.T) {
	page := Page{Page: 3, Limit: 20}
	if page.Offset() != 40 {
		t.Errorf("expected offset 40, got %d", page.Offset())
	}
	if got := page.TotalPages(41); got != 3 {
		t.Errorf("expected 3 pages for 41 items, got %d", got)
	}
	if got := page.TotalPages(40); got != 2 {
		t.Errorf("expected 2 pages for 40 items, got %d", got)
	}
	if got := page.TotalPages(0); got != 0 {
		t.Errorf("expected 0 pages for 0 items, got %d", got)
	}
}
