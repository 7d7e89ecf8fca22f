package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// DisplayConfig controls user-facing rendering of costs and balances.
type DisplayConfig struct {
	// Currency is the display suffix appended to amounts ("EGP", "USD", ...).
	Currency string `mapstructure:"currency"`
	// MinorUnits is how many decimal places a stored minor-unit amount carries.
	MinorUnits int `mapstructure:"minorUnits"`
}

func DefaultDisplayConfig() DisplayConfig {
	return DisplayConfig{
		Currency:   "",
		MinorUnits: 2,
	}
}

// DisplayConfigHolder exposes the current display configuration and hot
// reloads it when the backing file changes.
type DisplayConfigHolder struct {
	current atomic.Value // holds DisplayConfig
}

func NewDisplayConfigHolder() (*DisplayConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("paygate")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/paygate/config")
	v.AddConfigPath("/etc/paygate")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PAYGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultDisplayConfig()
		v.SetDefault("display.currency", defaults.Currency)
		v.SetDefault("display.minorUnits", defaults.MinorUnits)
	}

	var cfg DisplayConfig
	if err := v.UnmarshalKey("display", &cfg); err != nil {
		return nil, err
	}
	if err := validateDisplayConfig(cfg); err != nil {
		return nil, err
	}

	holder := &DisplayConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated DisplayConfig
		if err := v.UnmarshalKey("display", &updated); err != nil {
			log.Printf("[display-config] reload failed: %v", err)
			return
		}
		if err := validateDisplayConfig(updated); err != nil {
			log.Printf("[display-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[display-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticDisplayConfigHolder returns a holder pinned to cfg, for tests.
func NewStaticDisplayConfigHolder(cfg DisplayConfig) *DisplayConfigHolder {
	holder := &DisplayConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *DisplayConfigHolder) Get() DisplayConfig {
	return h.current.Load().(DisplayConfig)
}

func validateDisplayConfig(cfg DisplayConfig) error {
	if cfg.MinorUnits < 0 || cfg.MinorUnits > 6 {
		return errors.New("display.minorUnits must be between 0 and 6")
	}
	return nil
}
