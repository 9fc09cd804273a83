// Package config loads service configuration from a YAML file, an optional
// .env file and the process environment using Viper.
//
// Environment variables override file values. A variable is matched to a
// nested key by trying every split of its underscore-separated name, so
// AUTH_JWT_ACCESS_TOKEN_TTL reaches auth.jwt.access_token_ttl.
//
// # Usage
//
//	var cfg app.Config
//	err := config.LoadConfig("authgate", &cfg)
package config
