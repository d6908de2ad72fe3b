// Package services contains the routing and narration logic between the
// HTTP handlers and the domain packages.
package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/staffsense/staffsense-engine/pkg/apperrors"
	"github.com/staffsense/staffsense-engine/pkg/llm"
	"github.com/staffsense/staffsense-engine/pkg/retrieval"
	sqlsafe "github.com/staffsense/staffsense-engine/pkg/sql"
)

// Answer paths.
const (
	PathSQL    = "sql"
	PathVector = "vector"
)

// Answer is the outcome of routing one question.
type Answer struct {
	Question string
	// Path is PathSQL when the validated candidate executed against the
	// database, PathVector when the question fell back to similarity search.
	Path string
	// SQL is the generated candidate, normalized. Present on both paths so
	// callers can see what was attempted.
	SQL string
	// RejectReason is the validator's reason when the candidate was
	// rejected, empty otherwise.
	RejectReason string
	Rows         []map[string]any
	Summary      string
}

// SQLExecutor runs a validated SELECT against the structured store.
type SQLExecutor interface {
	ExecuteReadOnly(ctx context.Context, sqlText string) ([]map[string]any, error)
}

// FallbackRetriever answers a question from the similarity index.
type FallbackRetriever interface {
	Retrieve(ctx context.Context, queryText string, topK int) (*retrieval.Result, error)
}

// QueryService routes questions: generate a candidate once, validate it, and
// either execute it or fall back to semantic retrieval. A candidate that
// validates but fails at execution surfaces the execution error; it never
// re-routes to the fallback.
type QueryService struct {
	generator     llm.SQLGenerator
	validator     *sqlsafe.Validator
	executor      SQLExecutor
	retriever     FallbackRetriever
	summarizer    *Summarizer
	forceFallback bool
	fallbackTopK  int
	logger        *zap.Logger
}

// NewQueryService creates a QueryService. fallbackTopK <= 0 falls back to the
// retriever's default.
func NewQueryService(
	generator llm.SQLGenerator,
	validator *sqlsafe.Validator,
	executor SQLExecutor,
	retriever FallbackRetriever,
	summarizer *Summarizer,
	forceFallback bool,
	fallbackTopK int,
	logger *zap.Logger,
) *QueryService {
	return &QueryService{
		generator:     generator,
		validator:     validator,
		executor:      executor,
		retriever:     retriever,
		summarizer:    summarizer,
		forceFallback: forceFallback,
		fallbackTopK:  fallbackTopK,
		logger:        logger.Named("query"),
	}
}

// Ask answers one natural-language question.
func (s *QueryService) Ask(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question: %w", apperrors.ErrEmptyCandidate)
	}

	// Diagnostic only. The allowlist validator is the actual gate; a finding
	// here just flags the question for review.
	if finding := sqlsafe.ScreenQuestion(question); finding != nil {
		s.logger.Warn("injection pattern in question",
			zap.String("fingerprint", finding.Fingerprint),
			zap.String("question", question))
	}

	// The candidate is generated exactly once per question, even when the
	// router is pinned to the fallback path.
	candidate, err := s.generator.GenerateSQL(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("generate sql: %w", err)
	}

	verdict := s.validator.Validate(candidate)
	if verdict.Accepted && !s.forceFallback {
		return s.answerStructured(ctx, question, verdict.NormalizedSQL)
	}

	if !verdict.Accepted {
		s.logger.Info("candidate rejected, using fallback",
			zap.String("kind", string(verdict.Kind)),
			zap.String("reason", verdict.Reason))
	}
	return s.answerFallback(ctx, question, candidate, verdict)
}

func (s *QueryService) answerStructured(ctx context.Context, question, sqlText string) (*Answer, error) {
	rows, err := s.executor.ExecuteReadOnly(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("execute validated query: %w", err)
	}
	s.logger.Info("structured path answered",
		zap.String("sql", sqlText),
		zap.Int("rows", len(rows)))

	summary, err := s.summarizer.SummarizeRows(ctx, question, sqlText, rows)
	if err != nil {
		return nil, fmt.Errorf("summarize rows: %w", err)
	}

	return &Answer{
		Question: question,
		Path:     PathSQL,
		SQL:      sqlText,
		Rows:     rows,
		Summary:  summary,
	}, nil
}

func (s *QueryService) answerFallback(ctx context.Context, question, candidate string, verdict sqlsafe.Verdict) (*Answer, error) {
	result, err := s.retriever.Retrieve(ctx, question, s.fallbackTopK)
	if err != nil {
		return nil, fmt.Errorf("fallback retrieval: %w", err)
	}
	s.logger.Info("fallback path answered", zap.Int("results", len(result.Results)))

	summary, err := s.summarizer.SummarizeRetrieved(ctx, question, result.Summary)
	if err != nil {
		return nil, fmt.Errorf("summarize retrieval: %w", err)
	}

	return &Answer{
		Question:     question,
		Path:         PathVector,
		SQL:          strings.TrimSpace(candidate),
		RejectReason: verdict.Reason,
		Summary:      summary,
	}, nil
}
