// Package config resolves the configuration of the circulation service from
// defaults, an optional YAML file, an optional .env file and CIRCULATION_*
// environment variables.
package config
