package api

import (
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/pwbcr2502-crypto/galass/logging"
)

type Config struct {
	StorageConfig
	ServerConfig
	AuthConfig
}

type StorageConfig struct {
	DSN string
}

type ServerConfig struct {
	Port int
}

type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	AdminToken string
}

var settingsOnce sync.Once

func ReadConfig() *Config {

	var conf = &Config{
		StorageConfig: StorageConfig{
			DSN: viper.GetString("storage.dsn"),
		},
		ServerConfig: ServerConfig{
			Port: getIntOrDefault("server.port", 8080),
		},
		AuthConfig: AuthConfig{
			JWTSecret:  viper.GetString("auth.jwtSecret"),
			TokenTTL:   time.Duration(getIntOrDefault("auth.tokenTTLMinutes", 120)) * time.Minute,
			AdminToken: viper.GetString("auth.adminToken"),
		},
	}

	settingsOnce.Do(func() {
		logging.Log.Print("Reading settings!")
	})

	return conf
}

func getIntOrDefault(name string, def int) int {
	if viper.IsSet(name) {
		v := viper.GetInt(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}
