package services

import (
	"context"
	"fmt"

	"github.com/staffsense/staffsense-engine/pkg/llm"
	"github.com/staffsense/staffsense-engine/pkg/models"
	"github.com/staffsense/staffsense-engine/pkg/prompts"
)

// summaryTemperature leaves the narrative some latitude without letting it
// drift from the rows it was given.
const summaryTemperature = 0.3

// Summarizer turns raw query or retrieval output into a human-readable
// answer.
type Summarizer struct {
	completer llm.Completer
}

// NewSummarizer creates a Summarizer.
func NewSummarizer(completer llm.Completer) *Summarizer {
	return &Summarizer{completer: completer}
}

// SummarizeRows narrates the rows a structured query returned.
func (s *Summarizer) SummarizeRows(ctx context.Context, question, sqlText string, rows []map[string]any) (string, error) {
	encoded, err := models.MarshalJSONSafe(rows)
	if err != nil {
		return "", fmt.Errorf("encode rows for summary: %w", err)
	}
	return s.completer.Complete(ctx, prompts.BuildSQLSummaryPrompt(question, sqlText, encoded), summaryTemperature)
}

// SummarizeRetrieved narrates the rank-ordered fallback retrieval output.
func (s *Summarizer) SummarizeRetrieved(ctx context.Context, question, retrieved string) (string, error) {
	return s.completer.Complete(ctx, prompts.BuildVectorSummaryPrompt(question, retrieved), summaryTemperature)
}
