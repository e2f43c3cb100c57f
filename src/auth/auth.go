// Package auth writes registry credentials for the docker CLI.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvVar holds the docker config.json payload provided by the CI system.
const EnvVar = "DOCKER_AUTH_CONFIG"

const configFile = "config.json"

// ErrInvalidPayload is returned when the payload is not a JSON object.
var ErrInvalidPayload = errors.New("credential payload is not a JSON object")

// ConfigDir returns the docker CLI config directory: $DOCKER_CONFIG when
// set, otherwise ~/.docker.
func ConfigDir(lookup func(string) (string, bool)) (string, error) {
	if dir, ok := lookup("DOCKER_CONFIG"); ok && strings.TrimSpace(dir) != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".docker"), nil
}

// Write stores payload as dir/config.json, readable by the owner only.
// An empty payload writes nothing and returns an empty path.
func Write(payload, dir string) (string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return "", nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &obj); err != nil || obj == nil {
		return "", ErrInvalidPayload
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating docker config dir: %w", err)
	}
	path := filepath.Join(dir, configFile)
	if err := os.WriteFile(path, []byte(payload+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, 0o600); err != nil {
		return "", fmt.Errorf("restricting %s: %w", path, err)
	}
	return path, nil
}
