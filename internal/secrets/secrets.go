// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves provider credentials. Keys come from, in order of
// precedence: an explicit value, the process environment, a dotenv file, and
// a directory of plain-text files where each filename is a key name and the
// trimmed contents are the value.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// APIKeyEnv is the environment variable and dotenv key for the OCR provider.
	APIKeyEnv = "MISTRAL_API_KEY"
	// APIKeyFile is the file name for the OCR provider key under the secrets directory.
	APIKeyFile = "mistral-api-key"
)

// ErrMissingCredential means no source supplied the provider key.
var ErrMissingCredential = errors.New("missing API credential")

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("could not read secret", "name", name, "error", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadDotenv parses a KEY=value file. A missing file yields an empty map.
func LoadDotenv(path string) (map[string]string, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading dotenv file %s: %w", path, err)
	}

	out := make(map[string]string)
	for _, key := range v.AllKeys() {
		if value := strings.TrimSpace(v.GetString(key)); value != "" {
			// viper lower-cases keys; dotenv keys are conventionally upper case.
			out[strings.ToUpper(key)] = value
		}
	}
	return out, nil
}

// Sources lists the places ResolveAPIKey consults.
type Sources struct {
	// Explicit is the value given on the command line.
	Explicit string
	// LookupEnv reads the environment; nil means os.LookupEnv.
	LookupEnv func(string) (string, bool)
	// DotenvPath is the dotenv file (e.g. ".env").
	DotenvPath string
	// SecretsDir is the secrets directory (e.g. ".secrets/").
	SecretsDir string
}

// ResolveAPIKey returns the first non-empty provider key from src, or
// ErrMissingCredential.
func ResolveAPIKey(src Sources) (string, error) {
	if v := strings.TrimSpace(src.Explicit); v != "" {
		return v, nil
	}

	lookup := src.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(APIKeyEnv); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), nil
	}

	if src.DotenvPath != "" {
		env, err := LoadDotenv(src.DotenvPath)
		if err != nil {
			return "", err
		}
		if v := env[APIKeyEnv]; v != "" {
			return v, nil
		}
	}

	if src.SecretsDir != "" {
		s, err := Load(src.SecretsDir)
		if err != nil {
			return "", err
		}
		if v := s[APIKeyFile]; v != "" {
			return v, nil
		}
	}

	return "", fmt.Errorf("%w: set %s in your environment or .env file, or pass --api-key", ErrMissingCredential, APIKeyEnv)
}
