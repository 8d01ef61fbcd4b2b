package fleet

import (
	"sort"

	"github.com/YeeNg2333/mcstatquery/internal/domain"
)

// Rank orders results for presentation: online before offline, online by
// player count descending, ties and all offline entries by name
// ascending. The sort is stable and deterministic.
func Rank(results []domain.ProbeResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Online != b.Online {
			return a.Online
		}
		if a.Online && a.PlayersOnline != b.PlayersOnline {
			return a.PlayersOnline > b.PlayersOnline
		}
		return a.Name < b.Name
	})
}
