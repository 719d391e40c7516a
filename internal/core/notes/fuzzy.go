package notes

import (
	"math"
	"strings"

	"github.com/agnivade/levenshtein"
)

// 模糊比對各層級分數，高層級一定嚴格大於低層級
const (
	ScoreExact       = 1000
	ScorePrefix      = 900
	ScoreWholeWord   = 800
	ScoreWordPrefix  = 700
	ScoreSubstring   = 600
	scoreDistanceTop = 500
	distancePenalty  = 20

	// AcceptScore 模糊命中的最低分數
	AcceptScore = 650

	// maxDistanceRunes 編輯距離只比較前 32 個字元，屬於效能上的近似
	maxDistanceRunes = 32
)

// NoScore 任一側為空時的分數，低於所有可能的結果
const NoScore = math.MinInt32

// Score 計算查詢字串與候選名稱的相似度。
// 完全相同 > 候選以查詢開頭 > 整個單字相同 > 某單字以查詢開頭 > 子字串 > 編輯距離。
func Score(query, candidate string) int {
	q := Normalize(query)
	c := Normalize(candidate)
	if q == "" || c == "" {
		return NoScore
	}

	if q == c {
		return ScoreExact
	}
	if strings.HasPrefix(c, q) {
		return ScorePrefix
	}

	words := strings.Split(c, " ")
	for _, w := range words {
		if w == q {
			return ScoreWholeWord
		}
	}
	for _, w := range words {
		if strings.HasPrefix(w, q) {
			return ScoreWordPrefix
		}
	}

	if strings.Contains(c, q) {
		return ScoreSubstring
	}

	dist := levenshtein.ComputeDistance(truncateRunes(q, maxDistanceRunes), truncateRunes(c, maxDistanceRunes))
	return scoreDistanceTop - dist*distancePenalty
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
