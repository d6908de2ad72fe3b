package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_GenerateSQL(t *testing.T) {
	var gotPrompt string
	var gotTemperature float64
	mock := &MockClient{
		CompleteFunc: func(ctx context.Context, prompt string, temperature float64) (string, error) {
			gotPrompt = prompt
			gotTemperature = temperature
			return "SELECT first_name FROM employees", nil
		},
	}

	g := NewGenerator(mock, "employees(employee_id, first_name)")
	sql, err := g.GenerateSQL(context.Background(), "list names")
	require.NoError(t, err)

	assert.Equal(t, "SELECT first_name FROM employees", sql)
	assert.Contains(t, gotPrompt, "list names")
	assert.Contains(t, gotPrompt, "employees(employee_id, first_name)")
	assert.InDelta(t, 0.1, gotTemperature, 1e-9)
}

func TestGenerator_StripsMarkdownFences(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"plain", "SELECT 1", "SELECT 1"},
		{"fenced", "```\nSELECT 1\n```", "SELECT 1"},
		{"fenced with label", "```sql\nSELECT 1\n```", "SELECT 1"},
		{"bare label", "sql\nSELECT 1", "SELECT 1"},
		{"surrounding whitespace", "  \nSELECT 1\n ", "SELECT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockClient{
				CompleteFunc: func(ctx context.Context, prompt string, temperature float64) (string, error) {
					return tt.output, nil
				},
			}

			g := NewGenerator(mock, "schema")
			sql, err := g.GenerateSQL(context.Background(), "q")
			require.NoError(t, err)
			assert.Equal(t, tt.want, sql)
		})
	}
}

func TestGenerator_CompleterError(t *testing.T) {
	mock := &MockClient{
		CompleteFunc: func(ctx context.Context, prompt string, temperature float64) (string, error) {
			return "", errors.New("model unavailable")
		},
	}

	g := NewGenerator(mock, "schema")
	_, err := g.GenerateSQL(context.Background(), "q")
	assert.Error(t, err)
}
