package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backing names for the record store.
const (
	BackingSQLite   = "sqlite"
	BackingJSONFile = "jsonfile"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Storage struct {
		Backing string
	}
	Database struct {
		Path string
	}
	JSONFile struct {
		Path string
	}
	Upload struct {
		Dir string
	}
	Notify struct {
		Enabled bool
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	_ = godotenv.Load() // optional .env

	v := viper.New()
	v.SetEnvPrefix("USERDIR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:3000")
	v.SetDefault("storage.backing", BackingSQLite)
	v.SetDefault("database.path", "data/users.db")
	v.SetDefault("jsonfile.path", "data/users.json")
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("notify.enabled", true)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	switch cfg.Storage.Backing {
	case BackingSQLite, BackingJSONFile:
	default:
		return Config{}, fmt.Errorf("unknown storage backing %q", cfg.Storage.Backing)
	}

	return cfg, nil
}
