package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for config files that are neither YAML nor JSON.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Format is the syntax of a config document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from a file extension: .yaml, .yml or .json.
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w %q (want .yaml, .yml or .json)", ErrUnsupportedFormat, ext)
	}
}

// FileError reports a config file that could not be read or parsed.
type FileError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *FileError) Error() string {
	return fmt.Sprintf("flowcanvas config %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *FileError) Unwrap() error {
	return e.Err
}

// FromFile reads and parses a config file. Failures are *FileError.
func FromFile(path string) (Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Config{}, &FileError{Path: path, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &FileError{Path: path, Err: err}
	}
	cfg, err := Parse(format, data)
	if err != nil {
		return Config{}, &FileError{Path: path, Err: err}
	}
	return cfg, nil
}

// LoadFile reads a config file and layers the keys it sets over base.
func LoadFile(path string, base Settings) (Settings, error) {
	cfg, err := FromFile(path)
	if err != nil {
		return Settings{}, err
	}
	return FromConfig(cfg, base), nil
}

// Parse decodes a document in the given format. An empty document yields
// an empty Config; a document whose top level is not a mapping is an error.
func Parse(format Format, data []byte) (Config, error) {
	switch format {
	case FormatYAML:
		return FromYAML(data)
	case FormatJSON:
		return FromJSON(data)
	default:
		return Config{}, fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
	}
}

// FromYAML parses YAML data into a Config.
func FromYAML(data []byte) (Config, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse yaml (expected a mapping of settings): %w", err)
	}
	return New(m), nil
}

// FromJSON parses JSON data into a Config.
func FromJSON(data []byte) (Config, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return New(nil), nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse json (expected an object of settings): %w", err)
	}
	return New(m), nil
}
