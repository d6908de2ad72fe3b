package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/staffsense/staffsense-engine/pkg/prompts"
)

// generationTemperature keeps the generator close to deterministic; the
// validator is the safety boundary, not sampling luck.
const generationTemperature = 0.1

// Generator implements SQLGenerator on top of a Completer and a fixed schema
// description.
type Generator struct {
	completer         Completer
	schemaDescription string
}

var _ SQLGenerator = (*Generator)(nil)

// NewGenerator creates a Generator. schemaDescription is rendered once at
// construction and reused for every question.
func NewGenerator(completer Completer, schemaDescription string) *Generator {
	return &Generator{completer: completer, schemaDescription: schemaDescription}
}

// GenerateSQL produces a candidate SQL string for the question. Markdown
// fences are stripped defensively even though the prompt forbids them; the
// result is still untrusted input for the validator.
func (g *Generator) GenerateSQL(ctx context.Context, question string) (string, error) {
	prompt := prompts.BuildSQLGenerationPrompt(question, g.schemaDescription)

	out, err := g.completer.Complete(ctx, prompt, generationTemperature)
	if err != nil {
		return "", fmt.Errorf("generate sql: %w", err)
	}

	return stripFences(out), nil
}

// stripFences removes ``` fences and a leading "sql" label that smaller
// models sometimes emit despite the output format rules.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```sql")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "sql\n")
	return strings.TrimSpace(s)
}
