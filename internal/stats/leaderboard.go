package stats

import (
	"sort"

	"github.com/verte-zerg/tuimath/internal/model"
)

// Rank orders leaderboard entries by score descending and assigns dense
// 1-based ranks. Ties are broken by earlier start, then lower session id,
// so ranking is a total order and tied scores sit adjacent.
func Rank(entries []model.LeaderboardEntry) []model.LeaderboardEntry {
	ranked := make([]model.LeaderboardEntry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if !ranked[i].StartedAt.Equal(ranked[j].StartedAt) {
			return ranked[i].StartedAt.Before(ranked[j].StartedAt)
		}
		return ranked[i].SessionID < ranked[j].SessionID
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
