package config

import "github.com/spf13/viper"

type Config struct {
	ServerPort        string `mapstructure:"SERVER_PORT"`
	GoogleMapsAPIKey  string `mapstructure:"GOOGLE_MAPS_API_KEY"`
	GoogleMapsBaseURL string `mapstructure:"GOOGLE_MAPS_BASE_URL"`
	TransitAPIKey     string `mapstructure:"TRANSIT_API_KEY"`
	TransitBaseURL    string `mapstructure:"TRANSIT_BASE_URL"`
	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	RedisPassword     string `mapstructure:"REDIS_PASSWORD"`
}

func Load() Config {
	viper.AutomaticEnv()
	viper.SetDefault("SERVER_PORT", ":8080")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}
