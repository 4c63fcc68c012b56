package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iMarioChow/algo/risk"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "risk", cfg.Engine.Variant)
	assert.Empty(t, cfg.Account.Instrument)
	assert.Equal(t, 1000.0, cfg.Account.Balance)
	assert.Equal(t, risk.Default(), cfg.RiskPolicy())
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:   "signal variant",
			mutate: func(c *Config) { c.Engine.Variant = "signal" },
		},
		{
			name:   "zero fee",
			mutate: func(c *Config) { c.Risk.TransactionFee = 0 },
		},
		{
			name:    "unknown variant",
			mutate:  func(c *Config) { c.Engine.Variant = "rsi" },
			wantErr: true,
			errMsg:  "engine.variant must be 'signal' or 'risk'",
		},
		{
			name:    "negative balance",
			mutate:  func(c *Config) { c.Account.Balance = -1000 },
			wantErr: true,
			errMsg:  "initial balance",
		},
		{
			name:    "zero hold period",
			mutate:  func(c *Config) { c.Risk.HoldPeriod = 0 },
			wantErr: true,
			errMsg:  "hold period",
		},
		{
			name:    "csv journal without files",
			mutate:  func(c *Config) { c.Journal.Type = "csv" },
			wantErr: true,
			errMsg:  "journal trades_file and equity_file required for CSV type",
		},
		{
			name:    "sqlite journal without path",
			mutate:  func(c *Config) { c.Journal.Type = "sqlite" },
			wantErr: true,
			errMsg:  "journal db_path required for SQLite type",
		},
		{
			name:    "unknown journal",
			mutate:  func(c *Config) { c.Journal.Type = "postgres" },
			wantErr: true,
			errMsg:  "journal.type must be",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: true,
			errMsg:  "logging.level",
		},
		{
			name:    "negative workers",
			mutate:  func(c *Config) { c.Sweep.Workers = -1 },
			wantErr: true,
			errMsg:  "sweep.workers must not be negative",
		},
		{
			name:    "bad sweep value",
			mutate:  func(c *Config) { c.Sweep.StopLossRates = []float64{0.1, 0} },
			wantErr: true,
			errMsg:  "sweep grid point 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
		{"yml format", ".yml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Journal = JournalConfig{Type: "sqlite", DBPath: "runs.db"}
			cfg.Sweep.HoldPeriods = []int{5, 10}
			path := filepath.Join(tmpDir, "test"+tt.ext)

			require.NoError(t, cfg.SaveToFile(path))

			_, err := os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  variant: signal\nrisk:\n  hold_period: 5\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "signal", cfg.Engine.Variant)
	assert.Equal(t, 5, cfg.Risk.HoldPeriod)
	assert.Equal(t, 0.3, cfg.Risk.TakeProfitRate)
	assert.Equal(t, 1000.0, cfg.Account.Balance)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"engine": {"variant": "martingale"}}`), 0644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestSweepGrid(t *testing.T) {
	cfg := Default()
	cfg.Sweep.TakeProfitRates = []float64{0.1, 0.2}

	g := cfg.SweepGrid()
	assert.Equal(t, []float64{0.1, 0.2}, g.TakeProfitRates)
	assert.Equal(t, []float64{0.15}, g.StopLossRates)
	assert.Equal(t, []int{15}, g.HoldPeriods)
	assert.Len(t, g.Policies(), 2)
}
