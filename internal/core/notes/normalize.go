package notes

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// apostrophes 各種撇號統一為 ASCII '
var apostrophes = strings.NewReplacer(
	"\u2019", "'",
	"\u2018", "'",
	"\u02bc", "'",
	"\u00b4", "'",
	"`", "'",
)

// Normalize 正規化原料名稱：去空白、轉小寫、移除變音符號、統一撇號、合併空白。
// 對同一輸入重複呼叫結果不變。
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	// transform.Chain 帶有內部狀態，每次呼叫都建立新的
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	s = apostrophes.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
