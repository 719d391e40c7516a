package notes

import "sort"

// MaxBrowseResults 目錄瀏覽最多回傳的筆數
const MaxBrowseResults = 400

// Match 目錄瀏覽的單筆結果
type Match struct {
	Name     string   `json:"name"`
	Group    string   `json:"group,omitempty"`
	Families []string `json:"families"`
	Pyramid  []string `json:"pyramid"`
	Score    int      `json:"score"`
}

// Browse 依群組篩選後以模糊分數排序目錄；query 為空時依目錄順序回傳。
// 只保留分數為正的結果，同分維持目錄順序。
func (c *Catalog) Browse(query, group string, limit int) []Match {
	if limit <= 0 || limit > MaxBrowseResults {
		limit = MaxBrowseResults
	}
	groupKey := Normalize(group)
	searching := Normalize(query) != ""

	matches := make([]Match, 0)
	for _, e := range c.ordered {
		if groupKey != "" && Normalize(e.Group) != groupKey {
			continue
		}
		m := Match{
			Name:     e.Profile.Name,
			Group:    e.Group,
			Families: e.Profile.Families,
			Pyramid:  e.Profile.Pyramid,
		}
		if searching {
			m.Score = Score(query, e.Profile.Name)
			if m.Score <= 0 {
				continue
			}
		}
		matches = append(matches, m)
	}

	if searching {
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].Score > matches[j].Score
		})
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
