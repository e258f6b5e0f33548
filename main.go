// @title Gala Stage Voting API
// @version 1.0
// @description Backend API for anniversary gala program voting, statistics and awards

// @securityDefinitions.apikey AdminToken
// @in header
// @name x-admin-token
package main

import (
	"github.com/spf13/viper"

	"github.com/pwbcr2502-crypto/galass/api"
	"github.com/pwbcr2502-crypto/galass/logging"
)

func main() {
	logging.BoostrapLogger()

	// Load env
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logging.Log.Errorf("Failed to read config file: %v", err)
		panic("Failed to read config file: " + err.Error())
	}

	// Read config
	config := api.ReadConfig()

	service := api.NewServer(config)
	service.Start()
}
