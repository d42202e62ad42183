package http

import (
	"net/url"
	"testing"
)

func TestParseProposalsQueryReadsFlatKeys(t *testing.T) {
	values := url.Values{}
	values.Set("query", "#123")
	values.Set("sort", "highest")
	values.Set("reviews", "not-reviewed")
	values.Set("status", "accepted")
	values.Set("formats", "format-1")
	values.Set("categories", "category-1")
	values.Set("tags", "tag-1")
	values.Set("speakers", "speaker-1")
	values.Set("page", "3")
	values.Set("page_size", "50")

	query := ParseProposalsQuery(values)

	if query.Query != "#123" || query.Sort != "highest" || query.Reviews != "not-reviewed" || query.Status != "accepted" {
		t.Fatalf("unexpected query fields %+v", query)
	}
	if query.FormatID != "format-1" || query.CategoryID != "category-1" || query.TagID != "tag-1" || query.SpeakerID != "speaker-1" {
		t.Fatalf("unexpected dimension fields %+v", query)
	}
	if query.Page != 3 || query.PageSize != 50 {
		t.Fatalf("unexpected paging %+v", query)
	}
}

func TestParseProposalsQueryDefaultsBadPageValues(t *testing.T) {
	values := url.Values{}
	values.Set("page", "first")

	query := ParseProposalsQuery(values)
	if query.Page != 0 {
		t.Fatalf("expected zero page for non-numeric input, got %d", query.Page)
	}
}
