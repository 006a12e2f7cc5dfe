package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server             string `mapstructure:"server"`
	Port               int    `mapstructure:"port"`
	CertFile           string `mapstructure:"cert"`
	KeyFile            string `mapstructure:"key"`
	APIVersion         string `mapstructure:"api_version"`
	LogLevel           string `mapstructure:"log_level"`
	LogFormat          string `mapstructure:"log_format"`
	HTTPTimeoutSeconds int    `mapstructure:"http_timeout_seconds"`
}

func Default() *Config {
	return &Config{
		Port:               443,
		APIVersion:         "v1",
		LogLevel:           "info",
		LogFormat:          "text",
		HTTPTimeoutSeconds: 30,
	}
}

func Load(cfgFile string) (*Config, error) {
	cfg := Default()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("agent")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("/etc/debtrack")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("DEBTRACK")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
