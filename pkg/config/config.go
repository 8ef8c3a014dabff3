// Package config loads application configuration from environment variables
// into tagged structs. It wraps github.com/joho/godotenv and
// github.com/caarlos0/env/v11:
//
//	type OAuthConfig struct {
//	    ClientID     string `env:"MAILRU_OAUTH_CLIENT_ID,required"`
//	    ClientSecret string `env:"MAILRU_OAUTH_CLIENT_SECRET,required"`
//	}
//
//	var cfg OAuthConfig
//	if err := config.Load(&cfg); err != nil {
//	    // handle error
//	}
//
// The default .env file, if present, is read once per process before the
// first parse.
package config

import (
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var defaultEnvLoaded sync.Once

// LoadEnv reads the given .env files into the process environment. Variables
// already set in the environment win over file values.
func LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("%w: %w", ErrLoadingEnvFile, err)
	}
	return nil
}

// Load populates the configuration struct from the environment, reading the
// default .env file first if one exists.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	defaultEnvLoaded.Do(func() {
		// The .env file is optional; a missing file is not an error.
		_ = godotenv.Load()
	})

	if err := env.Parse(v); err != nil {
		return fmt.Errorf("%w: %w", ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics on failure. Use it for configuration
// the application cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}
