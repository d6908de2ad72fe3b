// Package retrieval implements the semantic fallback path: similarity
// search, deterministic reranking, and the rank-ordered textual summary.
package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/staffsense/staffsense-engine/pkg/llm"
	"github.com/staffsense/staffsense-engine/pkg/models"
)

// DefaultTopK is the candidate count when the caller passes topK <= 0.
const DefaultTopK = 20

// SearchIndex is the read surface of the similarity index.
type SearchIndex interface {
	Search(ctx context.Context, embedding []float32, topK int) ([]models.Neighbor, error)
}

// Result is a fallback retrieval outcome.
type Result struct {
	QueryUsed string
	Summary   string
	Results   []models.Neighbor
}

// Retriever answers questions the structured path rejected. It never mutates
// the index.
type Retriever struct {
	index    SearchIndex
	embedder llm.Embedder
	logger   *zap.Logger
}

// NewRetriever creates a Retriever.
func NewRetriever(index SearchIndex, embedder llm.Embedder, logger *zap.Logger) *Retriever {
	return &Retriever{
		index:    index,
		embedder: embedder,
		logger:   logger.Named("retrieval"),
	}
}

// Retrieve embeds the query, fetches topK nearest neighbors, reranks them by
// ascending distance, and renders the rank-ordered summary.
func (r *Retriever) Retrieve(ctx context.Context, queryText string, topK int) (*Result, error) {
	queryUsed := strings.TrimSpace(queryText)
	if topK <= 0 {
		topK = DefaultTopK
	}

	embedding, err := r.embedder.CreateEmbedding(ctx, queryUsed)
	if err != nil {
		return nil, fmt.Errorf("embed fallback query: %w", err)
	}

	neighbors, err := r.index.Search(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	ranked := Rerank(neighbors)
	r.logger.Debug("fallback retrieval",
		zap.String("query", queryUsed),
		zap.Int("results", len(ranked)))

	return &Result{
		QueryUsed: queryUsed,
		Summary:   Summarize(ranked),
		Results:   ranked,
	}, nil
}

// Rerank orders neighbors by ascending distance. A missing distance sorts
// after every present one, and the sort is stable, so the total order is
// deterministic; reranking an already-sorted slice is a no-op.
func Rerank(neighbors []models.Neighbor) []models.Neighbor {
	ranked := make([]models.Neighbor, len(neighbors))
	copy(ranked, neighbors)

	sort.SliceStable(ranked, func(i, j int) bool {
		return distanceOf(ranked[i]) < distanceOf(ranked[j])
	})
	return ranked
}

func distanceOf(n models.Neighbor) float64 {
	if n.Distance == nil {
		return math.Inf(1)
	}
	return *n.Distance
}

// Summarize renders ranked results as
//
//	Rank <n> — ID: <id> — score: <distance to 4 decimals>
//
// followed by the document text, blank-line joined.
func Summarize(ranked []models.Neighbor) string {
	parts := make([]string, 0, len(ranked))
	for i, n := range ranked {
		parts = append(parts, fmt.Sprintf("Rank %d — ID: %s — score: %s\n%s",
			i+1, displayID(n), formatScore(n.Distance), strings.TrimSpace(n.Content)))
	}
	return strings.Join(parts, "\n\n")
}

// displayID prefers the source row id recorded in metadata; the raw index
// key is the fallback.
func displayID(n models.Neighbor) string {
	if rowID, ok := n.Metadata["row_id"]; ok && rowID != "" {
		return rowID
	}
	return n.ID
}

func formatScore(distance *float64) string {
	if distance == nil {
		return "NA"
	}
	return fmt.Sprintf("%.4f", *distance)
}
