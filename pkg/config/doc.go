// Package config loads typed configuration structs from the environment.
//
// It wraps github.com/caarlos0/env/v11 for struct-tag parsing and
// github.com/joho/godotenv for optional `.env` files. Every package of the
// notification engine declares its own Config struct (email, webpush, pg,
// notifications) and the binary loads each of them with Load or MustLoad.
// Parsed values are cached per type, so repeated loads are cheap and
// consistent across goroutines.
package config
