package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`
	Redis struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	JWT struct {
		SecretKey string `mapstructure:"secret_key"`
	} `mapstructure:"jwt"`
	Rates struct {
		ProviderURL    string `mapstructure:"provider_url"`
		APIKey         string `mapstructure:"api_key"`
		BaseCurrency   string `mapstructure:"base_currency"`
		StalenessHours int    `mapstructure:"staleness_hours"`
	} `mapstructure:"rates"`
	Loan struct {
		Multiplier          string `mapstructure:"multiplier"`
		DefaultInterestRate string `mapstructure:"default_interest_rate"`
	} `mapstructure:"loan"`
	Transfer struct {
		AllowOverdraft bool `mapstructure:"allow_overdraft"`
	} `mapstructure:"transfer"`
}

var AppConfig Config

func LoadConfig(path string) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yml")

	viper.AutomaticEnv()

	// Policy knobs keep the source system's defaults unless overridden in config.yml.
	viper.SetDefault("rates.base_currency", "SEK")
	viper.SetDefault("rates.staleness_hours", 24)
	viper.SetDefault("loan.multiplier", "5")
	viper.SetDefault("loan.default_interest_rate", "0.03")
	viper.SetDefault("transfer.allow_overdraft", true)

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
}
