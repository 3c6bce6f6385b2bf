package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileLoader decodes one configuration file format
type FileLoader interface {
	Load(reader io.Reader, target interface{}) error
	Extension() string
}

// YAMLLoader reads .yaml files
type YAMLLoader struct{}

func (YAMLLoader) Extension() string { return "yaml" }

func (YAMLLoader) Load(reader io.Reader, target interface{}) error {
	err := yaml.NewDecoder(reader).Decode(target)
	if errors.Is(err, io.EOF) {
		return nil // empty file
	}
	return err
}

// JSONLoader reads .json files
type JSONLoader struct{}

func (JSONLoader) Extension() string { return "json" }

func (JSONLoader) Load(reader io.Reader, target interface{}) error {
	return json.NewDecoder(reader).Decode(target)
}

// TOMLLoader reads .toml files
type TOMLLoader struct{}

func (TOMLLoader) Extension() string { return "toml" }

func (TOMLLoader) Load(reader io.Reader, target interface{}) error {
	_, err := toml.NewDecoder(reader).Decode(target)
	return err
}

// Loader reads configuration from layered sources, lowest priority first:
// defaults, base file, environment file, local file (development only),
// environment variables.
type Loader struct {
	basePath    string
	environment string
	sources     []string
	fileLoaders []FileLoader
}

// NewLoader creates a loader reading files from basePath
func NewLoader(basePath, environment string) *Loader {
	if basePath == "" {
		basePath = "config"
	}
	return &Loader{
		basePath:    basePath,
		environment: strings.ToLower(environment),
		fileLoaders: []FileLoader{YAMLLoader{}, JSONLoader{}, TOMLLoader{}},
	}
}

// Load runs every layer and validates the result
func (l *Loader) Load() (*Config, error) {
	cfg := Default()
	cfg.Environment = l.environment
	l.sources = []string{"defaults"}

	if err := l.loadFile("base", cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load base config: %w", err)
	}
	if err := l.loadFile(l.environment, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s config: %w", l.environment, err)
	}
	if l.environment == "development" {
		if err := l.loadFile("local", cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load local config: %w", err)
		}
	}

	applyEnv(cfg)
	l.sources = append(l.sources, "environment")

	cfg.ConfigDir = l.basePath
	cfg.LoadedFrom = l.sources

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile decodes the first of name.yaml, name.json, name.toml found
func (l *Loader) loadFile(name string, cfg *Config) error {
	for _, loader := range l.fileLoaders {
		path := filepath.Join(l.basePath, name+"."+loader.Extension())

		file, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		err = loader.Load(file, cfg)
		file.Close()
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		l.sources = append(l.sources, path)
		return nil
	}
	return os.ErrNotExist
}

// Sources returns where the last Load read configuration from
func (l *Loader) Sources() []string {
	return l.sources
}

func isConfigFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json", ".toml":
		return true
	}
	return false
}
