package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type AppConfig struct {
	API            *APIConfig            `mapstructure:"api"`
	Gin            *GinConfig            `mapstructure:"gin"`
	Postgres       *PostgresConfig       `mapstructure:"postgres"`
	Reconciliation *ReconciliationConfig `mapstructure:"reconciliation"`
}

type APIConfig struct {
	Environment        string   `mapstructure:"environment"`
	BaseURL            string   `mapstructure:"base_url"`
	Port               string   `mapstructure:"port"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string   `mapstructure:"jwt_signing_key"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"db_name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// ReconciliationConfig carries the discrepancy tolerance as a percentage of the
// externally reported closing balance. It is hot-reloadable so the tolerance can
// be tightened ahead of an excise filing without a restart.
type ReconciliationConfig struct {
	TolerancePct string `mapstructure:"tolerance_pct"`
}

func Load(path string) (*AppConfig, error) {
	conf := viper.New()
	conf.SetConfigFile(path)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	conf.AutomaticEnv()

	if err := conf.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("conf.ReadInConfig -> %w", err)
	}

	var appConfig AppConfig
	if err := conf.Unmarshal(&appConfig); err != nil {
		return nil, fmt.Errorf("conf.Unmarshal -> %w", err)
	}

	conf.OnConfigChange(func(e fsnotify.Event) {
		if err := conf.Unmarshal(&appConfig); err != nil {
			zap.L().Error("failed to reload config", zap.String("file", e.Name), zap.Error(err))
			return
		}
		zap.L().Info("config reloaded", zap.String("file", e.Name))
	})
	conf.WatchConfig()

	return &appConfig, nil
}
