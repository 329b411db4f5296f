package domain

import "strings"

// FilterAll matches every row.
const FilterAll = "ALL"

// Filter is the agent/asset filter driven by the dashboard dropdowns.
// Empty fields behave like FilterAll.
type Filter struct {
	Agent string
	Asset string
}

// Selection is the UI state owned by the caller and passed into every query.
type Selection struct {
	AgentID string // agent whose analysis and equity curve are shown
	Filter  Filter // applies to the trade feed
}

// Matches reports whether a row with the given agent id and asset passes the filter.
// Agent ids compare exactly, assets case-insensitively.
func (f Filter) Matches(agentID, asset string) bool {
	if !isAll(f.Agent) && f.Agent != agentID {
		return false
	}
	if !isAll(f.Asset) && !strings.EqualFold(strings.TrimSpace(f.Asset), strings.TrimSpace(asset)) {
		return false
	}
	return true
}

// MatchesTrade is Matches applied to a trade row.
func (f Filter) MatchesTrade(t Trade) bool {
	return f.Matches(t.AgentID, t.Asset)
}

// Apply returns the trades that pass the filter, preserving order.
func (f Filter) Apply(trades []Trade) []Trade {
	out := make([]Trade, 0, len(trades))
	for _, t := range trades {
		if f.MatchesTrade(t) {
			out = append(out, t)
		}
	}
	return out
}

func isAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, FilterAll)
}
