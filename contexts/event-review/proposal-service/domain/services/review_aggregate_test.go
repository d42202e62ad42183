package services

import (
	"testing"

	"papercall/contexts/event-review/proposal-service/domain/entities"
)

func notePtr(v float64) *float64 { return &v }

func TestSummarizeCountsFeelingsAndAveragesNotes(t *testing.T) {
	summary := Summarize([]entities.Review{
		{UserID: "u1", Feeling: entities.FeelingPositive, Note: notePtr(5)},
		{UserID: "u2", Feeling: entities.FeelingNegative, Note: notePtr(1)},
		{UserID: "u3", Feeling: entities.FeelingNeutral, Note: notePtr(3)},
	})

	if summary.Positives != 1 || summary.Negatives != 1 {
		t.Fatalf("unexpected feeling counts %+v", summary)
	}
	if summary.Average == nil || *summary.Average != 3 {
		t.Fatalf("expected average 3, got %+v", summary.Average)
	}
}

func TestSummarizeExcludesNoOpinionFromAverage(t *testing.T) {
	summary := Summarize([]entities.Review{
		{UserID: "u1", Feeling: entities.FeelingPositive, Note: notePtr(4)},
		{UserID: "u2", Feeling: entities.FeelingNoOpinion, Note: notePtr(0)},
	})

	if summary.Average == nil || *summary.Average != 4 {
		t.Fatalf("expected no-opinion notes excluded, got %+v", summary.Average)
	}
}

func TestSummarizeWithoutNotesHasNilAverage(t *testing.T) {
	summary := Summarize([]entities.Review{
		{UserID: "u1", Feeling: entities.FeelingPositive},
		{UserID: "u2", Feeling: entities.FeelingNoOpinion},
	})

	if summary.Average != nil {
		t.Fatalf("expected nil average, got %v", *summary.Average)
	}
	if summary.Positives != 1 {
		t.Fatalf("expected feelings still counted, got %+v", summary)
	}
}

func TestReviewOfUserReturnsNilsWhenAbsent(t *testing.T) {
	reviews := []entities.Review{
		{UserID: "u1", Feeling: entities.FeelingPositive, Note: notePtr(5)},
	}

	mine := ReviewOfUser(reviews, "u1")
	if mine.Feeling == nil || *mine.Feeling != entities.FeelingPositive || mine.Note == nil {
		t.Fatalf("expected own review, got %+v", mine)
	}

	other := ReviewOfUser(reviews, "u2")
	if other.Feeling != nil || other.Note != nil {
		t.Fatalf("expected empty review view, got %+v", other)
	}
}
