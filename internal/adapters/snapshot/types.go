package snapshot

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// DTOs raw del export JSON del sistema de trading. Solo se usan dentro de este paquete.
// La conversión a domain entities se hace en mapping.go.
//
// El export viene de un script que mezcla números, strings numéricos y nulls, así que
// cada campo numérico usa flexFloat y cada array usa flexList: nada de lo que venga
// en el JSON hace fallar el decode salvo que el documento no sea JSON.

type snapshotDTO struct {
	GeneratedAt     flexString         `json:"generated_at"`
	Agents          flexList[agentDTO] `json:"agents"`
	Market          flexList[quoteDTO] `json:"market"`
	RecentTrades    flexList[tradeDTO] `json:"recent_trades"`
	RecentDecisions json.RawMessage    `json:"recent_decisions"` // no se usa en el core
	RecentEvents    json.RawMessage    `json:"recent_events"`    // no se usa en el core
}

type agentDTO struct {
	ID             flexString            `json:"id"`
	Name           flexString            `json:"name"`
	RiskProfile    flexString            `json:"risk_profile"`
	Assets         flexList[flexString]  `json:"assets"`
	Timeframes     flexList[flexString]  `json:"timeframes"`
	CashBalance    flexFloat             `json:"cash_balance"`
	InitialBalance flexFloat             `json:"initial_balance"`
	PositionsValue flexFloat             `json:"positions_value_eur"`
	Equity         flexFloat             `json:"equity"`
	PnLAbs         flexFloat             `json:"pnl_abs"`
	PnLPct         flexFloat             `json:"pnl_pct"`
	Positions      flexList[positionDTO] `json:"positions"`
}

type positionDTO struct {
	Asset          flexString `json:"asset"`
	Quantity       flexFloat  `json:"quantity"`
	AvgPrice       flexFloat  `json:"avg_price"`
	MarketPrice    flexFloat  `json:"market_price"`
	MarketValueEUR flexFloat  `json:"market_value_eur"`
	UpdatedAt      flexString `json:"updated_at"`
}

type quoteDTO struct {
	Asset             flexString `json:"asset"`
	LastPrice         flexFloat  `json:"last_price"`
	PriceChangePct24h flexFloat  `json:"price_change_pct_24h"`
}

type tradeDTO struct {
	ID          flexFloat  `json:"id"`
	AgentID     flexString `json:"agent_id"`
	Asset       flexString `json:"asset"`
	Side        flexString `json:"side"`
	Quantity    flexFloat  `json:"quantity"`
	Price       flexFloat  `json:"price"`
	NotionalEUR flexFloat  `json:"notional_eur"`
	FeeEUR      flexFloat  `json:"fee_eur"`
	Reason      flexString `json:"reason"`
	CreatedAt   flexString `json:"created_at"`
}

// flexFloat acepta números, strings numéricos, null o basura. Valid es false cuando el
// valor no era numérico (o no era finito); en ese caso Value queda en 0.
type flexFloat struct {
	Value float64
	Valid bool
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	*f = flexFloat{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	var raw string
	switch data[0] {
	case '"':
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		raw = string(data)
	default:
		// null, bool, objetos y arrays valen 0
		return nil
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	*f = flexFloat{Value: v, Valid: true}
	return nil
}

// flexString acepta strings o números (ids numéricos); cualquier otra cosa es "".
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	*s = ""
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch {
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err == nil {
			*s = flexString(v)
		}
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		*s = flexString(data)
	}
	return nil
}

// flexList decodifica un array elemento a elemento. Un valor que no es array queda
// vacío y los elementos que no encajan en T se descartan.
type flexList[T any] []T

func (l *flexList[T]) UnmarshalJSON(data []byte) error {
	*l = nil
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	out := make([]T, 0, len(items))
	for _, raw := range items {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	*l = out
	return nil
}
