package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// LoadEnv exports KEY=VALUE pairs from a dotenv file. Variables already set
// in the process environment win over the file. Blank lines, # comments and
// an optional "export " prefix are accepted; values may be single or double
// quoted.
func LoadEnv(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read env file: %w", err)
	}

	for i, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" || strings.ContainsAny(key, " \t") {
			return fmt.Errorf("%s:%d: expected KEY=VALUE", path, i+1)
		}

		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, unquote(strings.TrimSpace(value))); err != nil {
			return fmt.Errorf("%s:%d: %w", path, i+1, err)
		}
	}

	return nil
}

// LoadEnvOptional is LoadEnv that treats a missing file as success.
func LoadEnvOptional(path string) error {
	err := LoadEnv(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}
