package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath  = ".env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	defaultRunAddress = ":3001"
	defaultMigrations = "migrations"
)

type Config struct {
	Env    string
	DB     db
	Server server
	Logger logger
}

type db struct {
	DatabaseURI string `env:"DATABASE_URI"`
	Migrations  string `env:"MIGRATIONS_PATH"`
}

type server struct {
	RunAddress string `env:"RUN_ADDRESS"`
}

type logger struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// MustLoad загружает конфигурацию сервера из .env и окружения.
func MustLoad() *Config {
	if err := godotenv.Load(envPath); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	viper.AutomaticEnv()
	viper.SetDefault("RUN_ADDRESS", defaultRunAddress)
	viper.SetDefault("MIGRATIONS_PATH", defaultMigrations)
	viper.SetDefault("APP_ENV", EnvLocal)
	viper.SetDefault("LOG_LEVEL", "info")

	config := Config{
		Env: viper.GetString("APP_ENV"),
		DB: db{
			DatabaseURI: viper.GetString("DATABASE_URI"),
			Migrations:  viper.GetString("MIGRATIONS_PATH"),
		},
		Server: server{RunAddress: viper.GetString("RUN_ADDRESS")},
		Logger: logger{LogLevel: viper.GetString("LOG_LEVEL")},
	}

	return &config
}
