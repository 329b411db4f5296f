package domain

import (
	"cmp"
	"slices"
)

const rankEpsilon = 1e-9

// CompareAgentPerformance orders agents best first: pnl_pct desc, then pnl_abs desc,
// then equity desc. Values within 1e-9 compare equal on the first two keys.
// Usable directly with slices.SortFunc.
func CompareAgentPerformance(a, b Agent) int {
	if c := compareDesc(a.PnLPct, b.PnLPct); c != 0 {
		return c
	}
	if c := compareDesc(a.PnLAbs, b.PnLAbs); c != 0 {
		return c
	}
	return cmp.Compare(b.Equity, a.Equity)
}

func compareDesc(a, b float64) int {
	if a-b > rankEpsilon {
		return -1
	}
	if b-a > rankEpsilon {
		return 1
	}
	return 0
}

// RankAgents returns a sorted copy of agents, best performer first.
func RankAgents(agents []Agent) []Agent {
	ranked := slices.Clone(agents)
	slices.SortStableFunc(ranked, CompareAgentPerformance)
	return ranked
}

// TopPerformer returns the best agent. ok is false for an empty list.
func TopPerformer(agents []Agent) (Agent, bool) {
	if len(agents) == 0 {
		return Agent{}, false
	}
	best := agents[0]
	for _, a := range agents[1:] {
		if CompareAgentPerformance(a, best) < 0 {
			best = a
		}
	}
	return best, true
}
