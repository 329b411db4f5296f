package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/agentdash/internal/chart"
	"github.com/alejandrodnm/agentdash/internal/domain"
)

// DefaultSnapshotPath es donde el exportador del sistema de trading deja el JSON.
const DefaultSnapshotPath = "dashboard/data/dashboard-data.json"

// Config es la configuración completa del dashboard.
type Config struct {
	Snapshot  SnapshotConfig  `yaml:"snapshot"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Chart     ChartConfig     `yaml:"chart"`
	Log       LogConfig       `yaml:"log"`
}

// SnapshotConfig indica de dónde sale el snapshot. Prioridad: database > url > path.
type SnapshotConfig struct {
	Path              string  `yaml:"path"`     // export JSON en disco
	URL               string  `yaml:"url"`      // export JSON servido por HTTP
	Database          string  `yaml:"database"` // SQLite del sistema de trading
	RefreshSeconds    int     `yaml:"refresh_seconds"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	TradesLimit       int     `yaml:"trades_limit"` // trades recientes leídos de la base
}

// DashboardConfig es la selección inicial y el tamaño del overview.
type DashboardConfig struct {
	Agent       string `yaml:"agent"` // vacío = top performer
	AgentFilter string `yaml:"agent_filter"`
	AssetFilter string `yaml:"asset_filter"`
	Workers     int    `yaml:"workers"` // 0 = NumCPU*2
	ClosedLimit int    `yaml:"closed_limit"`
}

// ChartConfig es el tamaño del gráfico de equity en píxeles.
type ChartConfig struct {
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	MarginTop    float64 `yaml:"margin_top"`
	MarginRight  float64 `yaml:"margin_right"`
	MarginBottom float64 `yaml:"margin_bottom"`
	MarginLeft   float64 `yaml:"margin_left"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Las variables de entorno sobreescriben los valores del YAML.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// Default devuelve la configuración sin archivo YAML: .env, entorno y defaults.
func Default() *Config {
	_ = godotenv.Load()

	var cfg Config
	applyEnvOverrides(&cfg)
	setDefaults(&cfg)
	return &cfg
}

// RefreshInterval devuelve el intervalo de recarga como time.Duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Snapshot.RefreshSeconds) * time.Second
}

// Timeout devuelve el timeout HTTP como time.Duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Snapshot.TimeoutSeconds) * time.Second
}

// Layout devuelve el layout del gráfico.
func (c *Config) Layout() chart.Layout {
	return chart.Layout{
		Width:  c.Chart.Width,
		Height: c.Chart.Height,
		Margins: chart.Margins{
			Top:    c.Chart.MarginTop,
			Right:  c.Chart.MarginRight,
			Bottom: c.Chart.MarginBottom,
			Left:   c.Chart.MarginLeft,
		},
	}
}

// Selection devuelve la selección inicial del dashboard.
func (c *Config) Selection() domain.Selection {
	return domain.Selection{
		AgentID: c.Dashboard.Agent,
		Filter: domain.Filter{
			Agent: c.Dashboard.AgentFilter,
			Asset: c.Dashboard.AssetFilter,
		},
	}
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("SNAPSHOT_PATH"); v != "" {
		cfg.Snapshot.Path = v
	}
	if v := os.Getenv("SNAPSHOT_URL"); v != "" {
		cfg.Snapshot.URL = v
	}
	if v := os.Getenv("SNAPSHOT_DB"); v != "" {
		cfg.Snapshot.Database = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Snapshot.Path == "" && cfg.Snapshot.URL == "" && cfg.Snapshot.Database == "" {
		cfg.Snapshot.Path = DefaultSnapshotPath
	}
	if cfg.Snapshot.RefreshSeconds <= 0 {
		cfg.Snapshot.RefreshSeconds = 60
	}
	if cfg.Snapshot.RequestsPerSecond <= 0 {
		cfg.Snapshot.RequestsPerSecond = 2
	}
	if cfg.Snapshot.TimeoutSeconds <= 0 {
		cfg.Snapshot.TimeoutSeconds = 10
	}
	if cfg.Snapshot.TradesLimit <= 0 {
		cfg.Snapshot.TradesLimit = 250
	}

	if strings.TrimSpace(cfg.Dashboard.AgentFilter) == "" {
		cfg.Dashboard.AgentFilter = domain.FilterAll
	}
	if strings.TrimSpace(cfg.Dashboard.AssetFilter) == "" {
		cfg.Dashboard.AssetFilter = domain.FilterAll
	}
	if cfg.Dashboard.ClosedLimit <= 0 {
		cfg.Dashboard.ClosedLimit = 20
	}

	def := chart.DefaultLayout()
	if cfg.Chart.Width <= 0 {
		cfg.Chart.Width = def.Width
	}
	if cfg.Chart.Height <= 0 {
		cfg.Chart.Height = def.Height
	}
	if cfg.Chart.MarginTop <= 0 {
		cfg.Chart.MarginTop = def.Margins.Top
	}
	if cfg.Chart.MarginRight <= 0 {
		cfg.Chart.MarginRight = def.Margins.Right
	}
	if cfg.Chart.MarginBottom <= 0 {
		cfg.Chart.MarginBottom = def.Margins.Bottom
	}
	if cfg.Chart.MarginLeft <= 0 {
		cfg.Chart.MarginLeft = def.Margins.Left
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
