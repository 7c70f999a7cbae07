package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/strikebot/internal/domain"
)

// Config es la configuración completa del bot.
type Config struct {
	Simulator SimulatorConfig `yaml:"simulator"`
	Series    []SeriesConfig  `yaml:"series"`
	API       APIConfig       `yaml:"api"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
}

// SimulatorConfig controla la estrategia de acumulación de pares.
type SimulatorConfig struct {
	TickSeconds       int     `yaml:"tick_seconds"`
	SeedBalance       float64 `yaml:"seed_balance"`
	BuySize           float64 `yaml:"buy_size"`
	SafetyMargin      float64 `yaml:"safety_margin"`
	MinPriceThreshold float64 `yaml:"min_price_threshold"`
	WindowSize        int     `yaml:"window_size"`
	SettlementPolicy  string  `yaml:"settlement_policy"` // cost-basis | matched-only | mark-to-market | winner-take-all
}

// SeriesConfig identifica una serie de mercados a simular.
type SeriesConfig struct {
	Name    string `yaml:"name"`    // hourly | 15m
	Default bool   `yaml:"default"` // serie que responde /api/simulation sin nombre
}

// APIConfig contiene los base URLs de las APIs externas.
type APIConfig struct {
	CLOBBase      string `yaml:"clob_base"`
	GammaBase     string `yaml:"gamma_base"`
	KalshiBase    string `yaml:"kalshi_base"`
	KalshiSeries  string `yaml:"kalshi_series"` // serie del evento horario, ej. KXBTCD
	BinanceBase   string `yaml:"binance_base"`
	BinanceSymbol string `yaml:"binance_symbol"`
}

// ServerConfig controla el servidor HTTP del dashboard.
type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// StorageConfig controla dónde se persiste el historial.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
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

	if _, err := domain.ParseSettlementPolicy(cfg.Simulator.SettlementPolicy); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return &cfg, nil
}

// TickInterval devuelve el intervalo de tick como time.Duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Simulator.TickSeconds) * time.Second
}

// Policy devuelve la settlement policy ya validada.
func (c *Config) Policy() domain.SettlementPolicy {
	p, _ := domain.ParseSettlementPolicy(c.Simulator.SettlementPolicy)
	return p
}

// Controller construye el controller con los parámetros configurados.
func (c *Config) Controller() domain.Controller {
	return domain.Controller{
		BuySize:           c.Simulator.BuySize,
		SafetyMargin:      c.Simulator.SafetyMargin,
		MinPriceThreshold: c.Simulator.MinPriceThreshold,
	}
}

// DefaultSeries devuelve el nombre de la serie marcada como default, o la
// primera configurada.
func (c *Config) DefaultSeries() string {
	for _, s := range c.Series {
		if s.Default {
			return s.Name
		}
	}
	return c.Series[0].Name
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("STRIKEBOT_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("STRIKEBOT_POLICY"); v != "" {
		cfg.Simulator.SettlementPolicy = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Simulator.TickSeconds <= 0 {
		cfg.Simulator.TickSeconds = 2
	}
	if cfg.Simulator.SeedBalance <= 0 {
		cfg.Simulator.SeedBalance = 100
	}
	if cfg.Simulator.BuySize <= 0 {
		cfg.Simulator.BuySize = domain.DefaultBuySize
	}
	if cfg.Simulator.SafetyMargin <= 0 {
		cfg.Simulator.SafetyMargin = domain.DefaultSafetyMargin
	}
	if cfg.Simulator.MinPriceThreshold <= 0 {
		cfg.Simulator.MinPriceThreshold = domain.DefaultMinPriceThreshold
	}
	if cfg.Simulator.WindowSize <= 0 {
		cfg.Simulator.WindowSize = domain.DefaultWindowSize
	}
	if len(cfg.Series) == 0 {
		cfg.Series = []SeriesConfig{{Name: "hourly", Default: true}}
	}
	if cfg.API.CLOBBase == "" {
		cfg.API.CLOBBase = "https://clob.polymarket.com"
	}
	if cfg.API.GammaBase == "" {
		cfg.API.GammaBase = "https://gamma-api.polymarket.com"
	}
	if cfg.API.KalshiBase == "" {
		cfg.API.KalshiBase = "https://api.elections.kalshi.com/trade-api/v2"
	}
	if cfg.API.KalshiSeries == "" {
		cfg.API.KalshiSeries = "KXBTCD"
	}
	if cfg.API.BinanceBase == "" {
		cfg.API.BinanceBase = "https://api.binance.com"
	}
	if cfg.API.BinanceSymbol == "" {
		cfg.API.BinanceSymbol = "BTCUSDT"
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "strikebot.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
