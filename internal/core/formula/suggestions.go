package formula

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// 建議文字
const (
	SuggestAddMaterials  = "Aggiungi materie prime per generare piramide e suggerimenti mirati."
	SuggestPickFromList  = "Seleziona note dal catalogo per ottenere la famiglia olfattiva suggerita."
	SuggestSecondFamily  = "Integra una seconda famiglia per aumentare la complessità."
	suggestRaiseLevel    = "Aumenta le note di %s fino almeno a ~%s%%."
	suggestLowerLevel    = "Riduci le note di %s verso ~%s%%."
	suggestDominant      = "La famiglia %s è dominante: mantienila o integra famiglie complementari."
	suggestConcentrateLo = "Il concentrato è basso per la tipologia: porta il totale almeno al %s%%."
	suggestConcentrateHi = "Il concentrato supera il massimo consigliato (%s%%): riduci o cambia tipologia."
)

// BuildSuggestions 依彙整後的數值產生建議，順序固定且不重複
func BuildSuggestions(ins Insights) []string {
	if ins.TotalWeight <= 0 {
		return []string{SuggestAddMaterials}
	}

	var out []string
	for _, level := range ins.Pyramid {
		if level.Target == nil {
			continue
		}
		name := strings.ToLower(level.Level)
		switch {
		case level.Percentage < level.Target.Min:
			out = append(out, fmt.Sprintf(suggestRaiseLevel, name, formatNumber(level.Target.Min)))
		case level.Percentage > level.Target.Max:
			out = append(out, fmt.Sprintf(suggestLowerLevel, name, formatNumber(level.Target.Max)))
		}
	}

	if ins.DominantFamily == "" {
		out = append(out, SuggestPickFromList)
	} else {
		out = append(out, fmt.Sprintf(suggestDominant, ins.DominantFamily))
	}
	if len(ins.Families) < 2 {
		out = append(out, SuggestSecondFamily)
	}

	switch {
	case ins.ConcentratePercent < ins.Quota.Min:
		out = append(out, fmt.Sprintf(suggestConcentrateLo, formatNumber(ins.Quota.Min)))
	case ins.ConcentratePercent > ins.Quota.Max:
		out = append(out, fmt.Sprintf(suggestConcentrateHi, formatNumber(ins.Quota.Max)))
	}

	return lo.Uniq(out)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
