// Package config provides Viper-based hierarchical configuration for the
// cash-flow analysis pipeline. Every threshold the pipeline depends on is a
// named key with a documented default so nothing numeric is buried in code.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Aggregation policies for the chunk layer. FailFast aborts the whole batch
// on the first failed chunk; Partial keeps the successful chunks and reports
// the failures as warnings.
const (
	PolicyFailFast = "fail_fast"
	PolicyPartial  = "partial"
)

// LoadEnv loads a .env file from the working directory or its parent when
// one exists. Missing files are not an error.
func LoadEnv() {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			return
		}
	}
	_ = godotenv.Load(envFile)
}
