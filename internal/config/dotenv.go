package config

import "github.com/joho/godotenv"

// LoadDotEnv reads a .env file into the environment.
// Variables that are already set keep their values.
func LoadDotEnv(path string) error {
	return godotenv.Load(path)
}
