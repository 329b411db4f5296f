package storage

// sqlite.go: lee la base de datos del sistema de trading y arma un domain.Snapshot
// equivalente al export JSON, sin pasar por el fichero intermedio.
//
// Estrategia:
//   - Solo lectura. El schema es el del sistema de trading; ApplySchema existe para tests
//     y para arrancar contra una base vacía.
//   - Precios de mercado: último evento `cycle_summary` (payload.market_snapshot). Si no
//     hay ninguno, último precio operado por asset.
//   - Posiciones marcadas al precio de mercado (avg_price si no hay precio).
//   - equity = cash + valor de posiciones; pnl_abs = equity - initial.

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/alejandrodnm/agentdash/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS agents (
    id           TEXT PRIMARY KEY,
    name         TEXT NOT NULL,
    risk_profile TEXT NOT NULL,
    assets       TEXT NOT NULL,
    timeframes   TEXT NOT NULL,
    created_at   TEXT NOT NULL,
    updated_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS portfolios (
    agent_id        TEXT PRIMARY KEY,
    cash_balance    REAL NOT NULL,
    initial_balance REAL NOT NULL,
    updated_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS positions (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    agent_id   TEXT NOT NULL,
    asset      TEXT NOT NULL,
    quantity   REAL NOT NULL,
    avg_price  REAL NOT NULL,
    updated_at TEXT NOT NULL,
    UNIQUE(agent_id, asset)
);

CREATE TABLE IF NOT EXISTS trades (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    agent_id   TEXT    NOT NULL,
    asset      TEXT    NOT NULL,
    side       TEXT    NOT NULL,
    quantity   REAL    NOT NULL,
    price      REAL    NOT NULL,
    notional   REAL    NOT NULL,
    fee        REAL    NOT NULL,
    reason     TEXT    NOT NULL,
    dry_run    INTEGER NOT NULL,
    created_at TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    event_type TEXT NOT NULL,
    payload    TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_agent_created ON trades(agent_id, created_at);
`

const defaultTradesLimit = 250 // mismo límite que el export JSON

// SQLiteSource implementa ports.SnapshotSource leyendo la base del sistema de trading.
type SQLiteSource struct {
	db          *sql.DB
	tradesLimit int
	now         func() time.Time
}

// NewSQLiteSource abre la base de datos en la ruta dada. No aplica el schema.
func NewSQLiteSource(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteSource: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer; además mantiene viva una base :memory:
	db.SetMaxIdleConns(1)

	return &SQLiteSource{
		db:          db,
		tradesLimit: defaultTradesLimit,
		now:         time.Now,
	}, nil
}

// WithTradesLimit cambia cuántos trades recientes se cargan (los más nuevos por id).
func (s *SQLiteSource) WithTradesLimit(n int) *SQLiteSource {
	if n > 0 {
		s.tradesLimit = n
	}
	return s
}

// ApplySchema crea las tablas si no existen.
func (s *SQLiteSource) ApplySchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("storage.ApplySchema: %w", err)
	}
	return nil
}

// DB expone la conexión para seeds en tests.
func (s *SQLiteSource) DB() *sql.DB { return s.db }

// Close cierra la conexión.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// Load implementa ports.SnapshotSource.
func (s *SQLiteSource) Load(ctx context.Context) (domain.Snapshot, error) {
	agents, err := s.fetchAgents(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	portfolios, err := s.fetchPortfolios(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	trades, err := s.fetchRecentTrades(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}

	assets, err := s.knownAssets(ctx, agents)
	if err != nil {
		return domain.Snapshot{}, err
	}
	market, err := s.fetchMarket(ctx, assets)
	if err != nil {
		return domain.Snapshot{}, err
	}
	prices, err := s.lastPrices(ctx, market)
	if err != nil {
		return domain.Snapshot{}, err
	}
	positions, err := s.fetchPositions(ctx, prices)
	if err != nil {
		return domain.Snapshot{}, err
	}

	for i := range agents {
		a := &agents[i]
		p := portfolios[a.ID]
		a.CashBalance = p.cash
		a.InitialBalance = p.initial
		a.Positions = positions[a.ID]
		if a.Positions == nil {
			a.Positions = []domain.Position{}
		}

		var positionsValue float64
		for _, pos := range a.Positions {
			positionsValue += pos.MarketValueEUR
		}
		a.Equity = a.CashBalance + positionsValue
		a.HasEquity = true
		a.PnLAbs = a.Equity - a.InitialBalance
		if a.InitialBalance != 0 {
			a.PnLPct = a.PnLAbs / a.InitialBalance
		}
	}

	return domain.Snapshot{
		GeneratedAt:  s.now().UTC().Format(time.RFC3339Nano),
		Agents:       agents,
		Market:       market,
		RecentTrades: trades,
	}, nil
}

func (s *SQLiteSource) fetchAgents(ctx context.Context) ([]domain.Agent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, risk_profile, assets, timeframes
		FROM agents
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("storage.fetchAgents: %w", err)
	}
	defer rows.Close()

	var out []domain.Agent
	for rows.Next() {
		var a domain.Agent
		var assets, timeframes string
		if err := rows.Scan(&a.ID, &a.Name, &a.RiskProfile, &assets, &timeframes); err != nil {
			return nil, fmt.Errorf("storage.fetchAgents: scan: %w", err)
		}
		a.Assets = jsonStrings(assets)
		a.Timeframes = jsonStrings(timeframes)
		out = append(out, a)
	}
	return out, rows.Err()
}

type portfolio struct {
	cash    float64
	initial float64
}

func (s *SQLiteSource) fetchPortfolios(ctx context.Context) (map[string]portfolio, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT agent_id, cash_balance, initial_balance FROM portfolios`)
	if err != nil {
		return nil, fmt.Errorf("storage.fetchPortfolios: %w", err)
	}
	defer rows.Close()

	out := make(map[string]portfolio)
	for rows.Next() {
		var id string
		var p portfolio
		if err := rows.Scan(&id, &p.cash, &p.initial); err != nil {
			return nil, fmt.Errorf("storage.fetchPortfolios: scan: %w", err)
		}
		out[id] = p
	}
	return out, rows.Err()
}

func (s *SQLiteSource) fetchPositions(ctx context.Context, prices map[string]float64) (map[string][]domain.Position, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT agent_id, asset, quantity, avg_price, updated_at
		FROM positions
		ORDER BY agent_id, asset`)
	if err != nil {
		return nil, fmt.Errorf("storage.fetchPositions: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.Position)
	for rows.Next() {
		var agentID string
		var p domain.Position
		if err := rows.Scan(&agentID, &p.Asset, &p.Quantity, &p.AvgPrice, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("storage.fetchPositions: scan: %w", err)
		}
		p.MarketPrice = p.AvgPrice
		if price, ok := prices[strings.ToUpper(p.Asset)]; ok {
			p.MarketPrice = price
		}
		p.MarketValueEUR = p.Quantity * p.MarketPrice
		out[agentID] = append(out[agentID], p)
	}
	return out, rows.Err()
}

func (s *SQLiteSource) fetchRecentTrades(ctx context.Context) ([]domain.Trade, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, agent_id, asset, side, quantity, price, notional, fee, reason, created_at
		FROM trades
		ORDER BY id DESC
		LIMIT ?`, s.tradesLimit)
	if err != nil {
		return nil, fmt.Errorf("storage.fetchRecentTrades: %w", err)
	}
	defer rows.Close()

	out := []domain.Trade{}
	for rows.Next() {
		var t domain.Trade
		var side string
		if err := rows.Scan(&t.ID, &t.AgentID, &t.Asset, &side, &t.Quantity, &t.Price,
			&t.NotionalEUR, &t.FeeEUR, &t.Reason, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage.fetchRecentTrades: scan: %w", err)
		}
		t.Side = domain.ParseSide(side)
		out = append(out, t)
	}
	return out, rows.Err()
}

// knownAssets es la unión ordenada de los assets declarados por los agentes y los operados.
func (s *SQLiteSource) knownAssets(ctx context.Context, agents []domain.Agent) ([]string, error) {
	seen := make(map[string]bool)
	for _, a := range agents {
		for _, asset := range a.Assets {
			seen[strings.ToUpper(strings.TrimSpace(asset))] = true
		}
	}

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT asset FROM trades`)
	if err != nil {
		return nil, fmt.Errorf("storage.knownAssets: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var asset string
		if err := rows.Scan(&asset); err != nil {
			return nil, fmt.Errorf("storage.knownAssets: scan: %w", err)
		}
		seen[strings.ToUpper(strings.TrimSpace(asset))] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	delete(seen, "")
	out := make([]string, 0, len(seen))
	for asset := range seen {
		out = append(out, asset)
	}
	slices.Sort(out)
	return out, nil
}

// marketDetails es una entrada de payload.market_snapshot en un evento cycle_summary.
type marketDetails struct {
	LastPrice         float64 `json:"last_price"`
	PriceChangePct24h float64 `json:"price_change_pct_24h"`
}

// fetchMarket usa el último cycle_summary con market_snapshot no vacío; si no hay, cae
// al último precio operado de cada asset.
func (s *SQLiteSource) fetchMarket(ctx context.Context, assets []string) ([]domain.MarketQuote, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload
		FROM events
		WHERE event_type = 'cycle_summary'
		ORDER BY id DESC
		LIMIT 1`).Scan(&payload)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("storage.fetchMarket: %w", err)
	}

	var summary struct {
		MarketSnapshot map[string]marketDetails `json:"market_snapshot"`
	}
	if payload != "" && json.Unmarshal([]byte(payload), &summary) == nil && len(summary.MarketSnapshot) > 0 {
		byAsset := make(map[string]marketDetails, len(summary.MarketSnapshot))
		for k, v := range summary.MarketSnapshot {
			byAsset[strings.ToUpper(k)] = v
		}
		out := make([]domain.MarketQuote, 0, len(assets))
		for _, asset := range assets {
			d := byAsset[asset]
			out = append(out, domain.MarketQuote{Asset: asset, LastPrice: d.LastPrice, PriceChangePct24h: d.PriceChangePct24h})
		}
		return out, nil
	}

	out := make([]domain.MarketQuote, 0, len(assets))
	for _, asset := range assets {
		price, _, err := s.lastTradePrice(ctx, asset)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.MarketQuote{Asset: asset, LastPrice: price})
	}
	return out, nil
}

// lastPrices devuelve los precios > 0 del mercado, completando con el último precio operado.
func (s *SQLiteSource) lastPrices(ctx context.Context, market []domain.MarketQuote) (map[string]float64, error) {
	out := make(map[string]float64, len(market))
	for _, q := range market {
		if q.LastPrice > 0 {
			out[q.Asset] = q.LastPrice
			continue
		}
		price, ok, err := s.lastTradePrice(ctx, q.Asset)
		if err != nil {
			return nil, err
		}
		if ok {
			out[q.Asset] = price
		}
	}
	return out, nil
}

func (s *SQLiteSource) lastTradePrice(ctx context.Context, asset string) (float64, bool, error) {
	var price float64
	err := s.db.QueryRowContext(ctx, `
		SELECT price
		FROM trades
		WHERE UPPER(asset) = ?
		ORDER BY id DESC
		LIMIT 1`, asset).Scan(&price)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("storage.lastTradePrice %s: %w", asset, err)
	}
	return price, true, nil
}

// jsonStrings decodifica una columna con un array JSON de strings; basura → vacío.
func jsonStrings(raw string) []string {
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return []string{}
	}
	return out
}
