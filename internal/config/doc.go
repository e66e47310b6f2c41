// Package config loads the Blogen client configuration.
//
// Settings come from three places, later ones winning:
//
//  1. Built-in defaults (see Default)
//  2. ~/.config/blogen/config.toml, or the path passed to Load
//  3. BLOGEN_* environment variables, e.g. BLOGEN_API_URL
//
// LoadDotEnv can seed the environment from a .env file before Load runs.
// A missing config file is not an error.
//
// Example config.toml:
//
//	api_url = "http://localhost:8080"
//	request_timeout = 10
//	page_size = 5
//	log_file = "~/.local/share/blogen/blogen.log"
//	token_store = "file"
//	refresh_interval = 30
//
// Durations are whole seconds. Paths starting with ~ are expanded to the
// home directory. An empty log_file turns file logging off.
package config
