package formula

// Totals 所有原料的數量合計
type Totals struct {
	Grams   float64 `json:"grams"`
	ML      float64 `json:"ml"`
	Drops   float64 `json:"drops"`
	Percent float64 `json:"percent"`
}

// ComputeTotals 加總原料數量，非有限值視為 0
func ComputeTotals(materials []Material) Totals {
	var t Totals
	for _, m := range materials {
		t.Grams += finite(m.Grams)
		t.ML += finite(m.ML)
		t.Drops += finite(m.Drops)
		t.Percent += finite(m.Percent)
	}
	return t
}
