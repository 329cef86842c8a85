package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// expandEnvVar resolves a value that is entirely an environment variable
// reference ($VAR or ${VAR}). Other values are returned unchanged, and an
// unset variable yields "".
func expandEnvVar(value string) (string, error) {
	name, ok := strings.CutPrefix(value, "$")
	if !ok {
		return value, nil
	}
	if inner, braced := strings.CutPrefix(name, "{"); braced {
		name = strings.TrimSuffix(inner, "}")
	}
	if name == "" {
		return "", fmt.Errorf("empty environment variable reference: %s", value)
	}

	v, _ := os.LookupEnv(name)
	return v, nil
}

// ResolvePath makes path absolute. "~/" is the home directory; other relative
// paths are taken relative to the directory of the config file in use, or the
// working directory when no config file was read.
func ResolvePath(path string) (string, error) {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("error getting home directory: %w", err)
		}
		return filepath.Join(home, rest), nil
	}
	if filepath.IsAbs(path) {
		return path, nil
	}

	base, err := baseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, path), nil
}

func baseDir() (string, error) {
	dir := "."
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		dir = filepath.Dir(configFile)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("error resolving base directory: %w", err)
	}
	return abs, nil
}
