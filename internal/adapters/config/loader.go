// Package config provides the configuration loader for lockstep.
package config

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/joho/godotenv"
	"github.com/pindeps/lockstep/internal/core/domain"
	"github.com/pindeps/lockstep/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

var validVariantNameRegex = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

// Load reads lockstep.yaml, walking up from cwd. When no config file exists,
// the built-in default configuration rooted at cwd is returned: pip-compile
// and pip-sync over the default and dev requirements pairs.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	cwd, err := filepath.Abs(cwd)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	configPath, found := findConfiguration(cwd)
	if !found {
		cfg := defaultConfig(cwd)
		l.loadEnvOverlay(cfg.Root)
		return cfg, nil
	}

	// #nosec G304 -- configPath is discovered from the user's working directory
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	var file File
	if parseErr := yaml.Unmarshal(data, &file); parseErr != nil {
		return nil, zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	cfg, err := l.resolve(configPath, &file)
	if err != nil {
		return nil, err
	}

	l.loadEnvOverlay(cfg.Root)
	return cfg, nil
}

// findConfiguration walks up from cwd looking for lockstep.yaml.
func findConfiguration(cwd string) (string, bool) {
	currentDir := cwd
	for {
		configPath := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, true
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			return "", false
		}
		currentDir = parentDir
	}
}

func (l *Loader) resolve(configPath string, file *File) (*domain.Config, error) {
	root := resolveRoot(configPath, file.Root)

	cfg := &domain.Config{
		Root:     root,
		Compiler: file.Compiler,
		Syncer:   file.Syncer,
	}
	if len(cfg.Compiler) == 0 {
		cfg.Compiler = []string{"pip-compile"}
	}
	if len(cfg.Syncer) == 0 {
		cfg.Syncer = []string{"pip-sync"}
	}

	if len(file.Variants) == 0 {
		return nil, zerr.With(domain.ErrNoVariantsConfigured, "config", configPath)
	}

	seen := make(map[string]bool, len(file.Variants))
	for i := range file.Variants {
		dto := &file.Variants[i]

		if !validVariantNameRegex.MatchString(dto.Name) {
			return nil, zerr.With(domain.ErrInvalidVariantName, "variant", dto.Name)
		}
		if seen[dto.Name] {
			return nil, zerr.With(domain.ErrDuplicateVariantName, "variant", dto.Name)
		}
		seen[dto.Name] = true

		if dto.Spec == "" {
			return nil, zerr.With(domain.ErrMissingSpecFile, "variant", dto.Name)
		}
		if dto.Lock == "" {
			return nil, zerr.With(domain.ErrMissingLockFile, "variant", dto.Name)
		}

		cfg.Variants = append(cfg.Variants, domain.Variant{
			Name:        dto.Name,
			SpecFile:    resolvePath(root, dto.Spec),
			LockFile:    resolvePath(root, dto.Lock),
			Environment: dto.Env,
		})
	}

	return cfg, nil
}

// defaultConfig mirrors the two hard-coded script pairs lockstep replaces.
func defaultConfig(cwd string) *domain.Config {
	root := filepath.Clean(cwd)
	return &domain.Config{
		Root:     root,
		Compiler: []string{"pip-compile"},
		Syncer:   []string{"pip-sync"},
		Variants: []domain.Variant{
			{
				Name:     "default",
				SpecFile: filepath.Join(root, "requirements.in"),
				LockFile: filepath.Join(root, "requirements.txt"),
			},
			{
				Name:     "dev",
				SpecFile: filepath.Join(root, "requirements-dev.in"),
				LockFile: filepath.Join(root, "requirements-dev.txt"),
			},
		},
	}
}

// loadEnvOverlay loads <root>/.env into the process environment. Existing
// variables are never overridden. A missing file is not an error.
func (l *Loader) loadEnvOverlay(root string) {
	envPath := filepath.Join(root, domain.EnvFileName)
	if _, err := os.Stat(envPath); err != nil {
		return
	}
	if err := godotenv.Load(envPath); err != nil {
		l.Logger.Warn("ignoring malformed " + domain.EnvFileName + " file: " + err.Error())
	}
}

func resolveRoot(configPath, configuredRoot string) string {
	configDir := filepath.Dir(configPath)
	if configuredRoot == "" {
		return filepath.Clean(configDir)
	}
	if filepath.IsAbs(configuredRoot) {
		return filepath.Clean(configuredRoot)
	}
	return filepath.Clean(filepath.Join(configDir, configuredRoot))
}

func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(root, path))
}
