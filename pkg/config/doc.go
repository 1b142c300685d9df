// Package config loads typed configuration structs from environment
// variables. A .env file, when present, is loaded once before the first
// parse so local development does not need exported variables.
package config
