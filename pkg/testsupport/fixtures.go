package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// LoadFixture reads a fixture file relative to the test's package.
func LoadFixture(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load fixture %s: %w", path, err)
	}
	return data, nil
}

// LoadTextFixture reads a fixture and normalizes line endings.
func LoadTextFixture(path string) (string, error) {
	data, err := LoadFixture(path)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
}

// LoadGolden decodes a JSON fixture into v.
func LoadGolden(path string, v any) error {
	data, err := LoadFixture(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode golden %s: %w", path, err)
	}
	return nil
}
