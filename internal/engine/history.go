// internal/engine/history.go
package engine

import "strings"

// historyRanks maps the credit-history enumeration to its ordinal.
// Read-only constant data; unknown or empty history ranks lowest.
var historyRanks = map[string]int{
	"none":      0,
	"limited":   1,
	"good":      2,
	"excellent": 3,
}

// HistoryRankMax is the rank of the best history level.
const HistoryRankMax = 3

// HistoryRank returns the ordinal 0..3 for a credit-history level.
func HistoryRank(history string) int {
	return historyRanks[strings.ToLower(strings.TrimSpace(history))]
}
