package notes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreTiers(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		candidate string
		want      int
	}{
		{name: "exact", query: "Bergamotto", candidate: "bergamotto", want: ScoreExact},
		{name: "candidate prefix", query: "berga", candidate: "Bergamotto", want: ScorePrefix},
		{name: "whole word", query: "fcf", candidate: "Bergamotto FCF", want: ScoreWholeWord},
		{name: "word prefix", query: "fc", candidate: "Bergamotto FCF", want: ScoreWordPrefix},
		{name: "substring", query: "gamo", candidate: "Bergamotto", want: ScoreSubstring},
		{name: "edit distance", query: "bergamto", candidate: "Bergamotto FCF", want: 500 - 6*20},
		{name: "empty query", query: " ", candidate: "Rosa", want: NoScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.query, tt.candidate))
		})
	}
}

func TestScoreMonotonicity(t *testing.T) {
	for _, name := range []string{"Rosa", "Bergamotto FCF", "Ylang Ylang"} {
		assert.Equal(t, ScoreExact, Score(name, name))
	}
	assert.Greater(t, Score("berga", "Bergamotto"), Score("gamo", "Bergamotto"))
	assert.Greater(t, ScoreSubstring, 500, "distance tier never reaches the substring tier")
}

func TestScoreDistanceIsTruncated(t *testing.T) {
	prefix := strings.Repeat("a", maxDistanceRunes)
	// 兩者前 32 個字元相同，後段差異不計入距離
	q := prefix + "xyz"
	c := prefix + "qwertyuiop"
	assert.Equal(t, 500, Score(q, c))
}
