// Package config loads murmur configuration from YAML files and the
// environment using viper, with .env support via godotenv.
//
// Settings are layered: config.yml provides the base, environment variables
// override it, and a .env file can supply environment values for local
// development. Pipeline parameters (chunk window, diarization thresholds,
// backend endpoints) are validated after loading.
package config
