package config

import (
	"log"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort   string `mapstructure:"SERVER_PORT"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	JWTSecret    string `mapstructure:"JWT_SECRET"`
	ClientOrigin string `mapstructure:"CLIENT_ORIGIN"`

	// Nearest-volunteer matching defaults; MatchRadiusKm applies when a
	// lookup passes no radius of its own.
	MatchRadiusKm float64 `mapstructure:"MATCH_RADIUS_KM"`
	MatchLimit    int     `mapstructure:"MATCH_LIMIT"`

	AWSRegion   string `mapstructure:"AWS_REGION"`
	EmailSender string `mapstructure:"EMAIL_SENDER"`

	StripeAPIKey string
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env") // Name of config file (without extension)
	viper.SetConfigType("env")

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("MATCH_RADIUS_KM", 20.0)
	viper.SetDefault("MATCH_LIMIT", 10)

	viper.AutomaticEnv() // Read in environment variables that match

	err := viper.ReadInConfig()
	if err != nil {
		// Handle errors reading the config file, but allow it if it's just "not found"
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No .env file found.")
		} else {
			return nil, err
		}
	}

	var cfg Config
	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	cfg.StripeAPIKey = os.Getenv("STRIPE_API_KEY")

	return &cfg, nil
}
