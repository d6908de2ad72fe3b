package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCandidate(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		want      string
	}{
		{"plain", "SELECT 1", "SELECT 1"},
		{"surrounding whitespace", "  SELECT 1\n", "SELECT 1"},
		{"trailing semicolon", "SELECT 1;", "SELECT 1"},
		{"semicolon then whitespace", "SELECT 1 ;  \n", "SELECT 1"},
		{"empty", "", ""},
		{"lone semicolon", ";", ""},
		{"semicolon inside single quotes", "SELECT ';' FROM employees", "SELECT ';' FROM employees"},
		{"semicolon inside double quotes", `SELECT ";" FROM employees`, `SELECT ";" FROM employees`},
		{"escaped quote then semicolon in string", `SELECT 'it''s; fine' FROM employees`, `SELECT 'it''s; fine' FROM employees`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeCandidate(tt.candidate)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeCandidate_MultipleStatements(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
	}{
		{"two selects", "SELECT 1; SELECT 2"},
		{"piggybacked statement", "SELECT 1; DROP TABLE employees"},
		{"interior semicolon with trailing one", "SELECT 1; SELECT 2;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeCandidate(tt.candidate)
			require.ErrorIs(t, err, ErrMultipleStatements)
		})
	}
}
