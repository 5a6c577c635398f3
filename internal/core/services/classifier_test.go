package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/athenaeum-labs/alexandria/internal/core/domain"
)

func TestClassifyQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  domain.QueryMode
	}{
		{
			name:  "single concept",
			query: "justice",
			want:  domain.QueryModeFlat,
		},
		{
			name:  "single concept with article",
			query: "the stranger",
			want:  domain.QueryModeFlat,
		},
		{
			name:  "two significant tokens",
			query: "montaigne virtue",
			want:  domain.QueryModeHierarchical,
		},
		{
			name:  "french connector",
			query: "vertu et sagesse",
			want:  domain.QueryModeHierarchical,
		},
		{
			name:  "connector between stopword-free tokens",
			query: "war and peace",
			want:  domain.QueryModeHierarchical,
		},
		{
			name:  "long single concept",
			query: "incomprehensibilities",
			want:  domain.QueryModeHierarchical,
		},
		{
			name:  "versus connector",
			query: "stoicism vs epicureanism",
			want:  domain.QueryModeHierarchical,
		},
		{
			name:  "empty",
			query: "",
			want:  domain.QueryModeFlat,
		},
		{
			name:  "whitespace only",
			query: "   ",
			want:  domain.QueryModeFlat,
		},
		{
			name:  "punctuation around token",
			query: `"kafka"`,
			want:  domain.QueryModeFlat,
		},
		{
			name:  "french articles only count once",
			query: "la peste",
			want:  domain.QueryModeFlat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyQuery(tt.query))
		})
	}
}

func TestClassifyQueryDeterministic(t *testing.T) {
	query := "vertu et sagesse chez montaigne"
	first := ClassifyQuery(query)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ClassifyQuery(query))
	}
}
