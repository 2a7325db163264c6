package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ReconciliationConfig holds the variance classification thresholds used when
// comparing internal quantities against channel-reported quantities.
type ReconciliationConfig struct {
	// AbsoluteUnitFloor: deltas at or below this many units always pass,
	// so low-volume SKUs are not flagged on rounding noise.
	AbsoluteUnitFloor float64 `mapstructure:"absoluteUnitFloor"`
	// PassVariancePercent: variance at or below this percentage passes.
	PassVariancePercent float64 `mapstructure:"passVariancePercent"`
	// CriticalVariancePercent: variance above this percentage is critical.
	CriticalVariancePercent float64 `mapstructure:"criticalVariancePercent"`
}

func DefaultReconciliationConfig() ReconciliationConfig {
	return ReconciliationConfig{
		AbsoluteUnitFloor:       1,
		PassVariancePercent:     0.5,
		CriticalVariancePercent: 3,
	}
}

// ReconciliationConfigHolder keeps the active thresholds and hot-reloads them
// when the config file changes.
type ReconciliationConfigHolder struct {
	current atomic.Value // holds ReconciliationConfig
}

func NewReconciliationConfigHolder() (*ReconciliationConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("reconciliation")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/lotline/config")
	v.AddConfigPath("/etc/lotline")
	v.AddConfigPath(".")

	v.SetEnvPrefix("LOTLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultReconciliationConfig()
	v.SetDefault("reconciliation.absoluteUnitFloor", defaults.AbsoluteUnitFloor)
	v.SetDefault("reconciliation.passVariancePercent", defaults.PassVariancePercent)
	v.SetDefault("reconciliation.criticalVariancePercent", defaults.CriticalVariancePercent)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg ReconciliationConfig
	if err := v.UnmarshalKey("reconciliation", &cfg); err != nil {
		return nil, err
	}
	if err := validateReconciliationConfig(cfg); err != nil {
		return nil, err
	}

	holder := &ReconciliationConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ReconciliationConfig
		if err := v.UnmarshalKey("reconciliation", &updated); err != nil {
			log.Printf("[reconciliation-config] reload failed: %v", err)
			return
		}
		if err := validateReconciliationConfig(updated); err != nil {
			log.Printf("[reconciliation-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[reconciliation-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticReconciliationConfigHolder returns a holder with fixed thresholds.
// Used by tests and one-off tooling.
func NewStaticReconciliationConfigHolder(cfg ReconciliationConfig) *ReconciliationConfigHolder {
	holder := &ReconciliationConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *ReconciliationConfigHolder) Get() ReconciliationConfig {
	return h.current.Load().(ReconciliationConfig)
}

func validateReconciliationConfig(cfg ReconciliationConfig) error {
	if cfg.AbsoluteUnitFloor < 0 {
		return errors.New("reconciliation.absoluteUnitFloor cannot be negative")
	}
	if cfg.PassVariancePercent < 0 {
		return errors.New("reconciliation.passVariancePercent cannot be negative")
	}
	if cfg.CriticalVariancePercent <= cfg.PassVariancePercent {
		return errors.New("reconciliation.criticalVariancePercent must exceed passVariancePercent")
	}
	return nil
}
