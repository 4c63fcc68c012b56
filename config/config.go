package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iMarioChow/algo/internal/logging"
	"github.com/iMarioChow/algo/risk"
	"github.com/iMarioChow/algo/sweep"
)

// Config is everything a backtest or sweep run needs besides the data.
type Config struct {
	Account AccountConfig `json:"account" yaml:"account"`
	Engine  EngineConfig  `json:"engine" yaml:"engine"`
	Risk    RiskConfig    `json:"risk" yaml:"risk"`
	Data    DataConfig    `json:"data" yaml:"data"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
	Sweep   SweepConfig   `json:"sweep" yaml:"sweep"`
}

type AccountConfig struct {
	Instrument string  `json:"instrument" yaml:"instrument"`
	Balance    float64 `json:"balance" yaml:"balance"`
}

// EngineConfig selects the close policy.
type EngineConfig struct {
	Variant    string `json:"variant" yaml:"variant"` // "signal" or "risk"
	CloseAtEnd bool   `json:"close_at_end" yaml:"close_at_end"`
}

// RiskConfig holds the risk-close parameters. Rates are fractions of the
// balance.
type RiskConfig struct {
	TakeProfitRate float64 `json:"take_profit_rate" yaml:"take_profit_rate"`
	StopLossRate   float64 `json:"stop_loss_rate" yaml:"stop_loss_rate"`
	HoldPeriod     int     `json:"hold_period" yaml:"hold_period"`
	TransactionFee float64 `json:"transaction_fee" yaml:"transaction_fee"`
}

// DataConfig points at a CSV or Parquet file of closes and signals.
type DataConfig struct {
	Path string `json:"path" yaml:"path"`
}

type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	OrgDir     string `json:"org_dir,omitempty" yaml:"org_dir,omitempty"`
}

type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
}

// SweepConfig lists the values tried per risk parameter. An empty list
// uses the single value from RiskConfig.
type SweepConfig struct {
	TakeProfitRates []float64 `json:"take_profit_rates,omitempty" yaml:"take_profit_rates,omitempty"`
	StopLossRates   []float64 `json:"stop_loss_rates,omitempty" yaml:"stop_loss_rates,omitempty"`
	HoldPeriods     []int     `json:"hold_periods,omitempty" yaml:"hold_periods,omitempty"`
	TransactionFees []float64 `json:"transaction_fees,omitempty" yaml:"transaction_fees,omitempty"`
	Workers         int       `json:"workers" yaml:"workers"`
}

// LoadFromFile loads a YAML or JSON file over Default, so a file only
// needs the keys it changes.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", jerr)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Engine.Variant {
	case "signal", "risk":
	default:
		return fmt.Errorf("engine.variant must be 'signal' or 'risk'")
	}
	if err := c.RiskPolicy().Validate(); err != nil {
		return fmt.Errorf("risk: %w", err)
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}

	if c.Sweep.Workers < 0 {
		return fmt.Errorf("sweep.workers must not be negative")
	}
	for i, p := range c.SweepGrid().Policies() {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("sweep grid point %d: %w", i, err)
		}
	}
	return nil
}

// RiskPolicy combines the account balance with the risk section.
func (c *Config) RiskPolicy() risk.Policy {
	return risk.Policy{
		InitialBalance: c.Account.Balance,
		TakeProfitRate: c.Risk.TakeProfitRate,
		StopLossRate:   c.Risk.StopLossRate,
		HoldPeriod:     c.Risk.HoldPeriod,
		TransactionFee: c.Risk.TransactionFee,
	}
}

// SweepGrid is the sweep section with empty lists filled from the risk
// section.
func (c *Config) SweepGrid() sweep.Grid {
	g := sweep.Grid{
		TakeProfitRates: c.Sweep.TakeProfitRates,
		StopLossRates:   c.Sweep.StopLossRates,
		HoldPeriods:     c.Sweep.HoldPeriods,
		TransactionFees: c.Sweep.TransactionFees,
		InitialBalance:  c.Account.Balance,
	}
	if len(g.TakeProfitRates) == 0 {
		g.TakeProfitRates = []float64{c.Risk.TakeProfitRate}
	}
	if len(g.StopLossRates) == 0 {
		g.StopLossRates = []float64{c.Risk.StopLossRate}
	}
	if len(g.HoldPeriods) == 0 {
		g.HoldPeriods = []int{c.Risk.HoldPeriod}
	}
	if len(g.TransactionFees) == 0 {
		g.TransactionFees = []float64{c.Risk.TransactionFee}
	}
	return g
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	p := risk.Default()
	return &Config{
		Account: AccountConfig{
			Balance: p.InitialBalance,
		},
		Engine: EngineConfig{
			Variant: "risk",
		},
		Risk: RiskConfig{
			TakeProfitRate: p.TakeProfitRate,
			StopLossRate:   p.StopLossRate,
			HoldPeriod:     p.HoldPeriod,
			TransactionFee: p.TransactionFee,
		},
		Journal: JournalConfig{
			Type: "none",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
