// Package utils holds small shared helpers for bundle file handling.
package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	hjson "github.com/hjson/hjson-go/v4"
)

// ParseHJSONToStruct unmarshals HJSON content into the given struct.
// HJSON allows comments and unquoted keys, which makes hand-written
// assumption bundle fixtures pleasant to maintain.
func ParseHJSONToStruct(data []byte, schema interface{}) error {
	if err := hjson.Unmarshal(data, schema); err != nil {
		return fmt.Errorf("HJSON parse error: %w", err)
	}
	return nil
}

// LoadBundleFile reads an assumption bundle from a .hjson or .json file.
func LoadBundleFile(path string, schema interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read bundle file: %w", err)
	}

	if strings.HasSuffix(path, ".hjson") {
		return ParseHJSONToStruct(data, schema)
	}
	if err := json.Unmarshal(data, schema); err != nil {
		return fmt.Errorf("JSON parse error: %w", err)
	}
	return nil
}
