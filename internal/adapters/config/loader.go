// Package config provides the configuration loader for roast.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/roast/internal/core/domain"
	"go.trai.ch/roast/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the settings from path, defaulting to roast.yaml in the working
// directory. A missing file yields default settings unless required is set.
// Relative paths in the file are resolved against the file's directory.
func (l *Loader) Load(path string, required bool) (domain.Settings, error) {
	if path == "" {
		path = domain.ConfigFileName
	}

	var roastfile Roastfile
	if err := readAndDecodeYAML(path, &roastfile); err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return domain.DefaultSettings(), nil
		}
		return domain.Settings{}, zerr.With(err, "path", path)
	}

	configDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return domain.Settings{}, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	if roastfile.SrcFile != "" && len(roastfile.FileSets) > 0 {
		l.Logger.Warn("'filesets' are ignored because 'srcfile' is set", "config", path)
	}

	return buildSettings(configDir, &roastfile), nil
}

func buildSettings(configDir string, rf *Roastfile) domain.Settings {
	settings := domain.DefaultSettings()
	settings.SrcFile = resolvePath(configDir, rf.SrcFile)
	settings.DestFile = resolvePath(configDir, rf.DestFile)
	settings.DestDir = resolvePath(configDir, rf.DestDir)
	settings.Force = rf.Force
	settings.Suffix = rf.Suffix
	settings.Bare = rf.Bare
	if rf.SuffixValue != "" {
		settings.SuffixValue = rf.SuffixValue
	}

	if len(rf.Compiler) > 0 {
		settings.Compiler = append([]string{resolveCommand(configDir, rf.Compiler[0])}, rf.Compiler[1:]...)
	}

	for _, dto := range rf.FileSets {
		dir := resolvePath(configDir, dto.Dir)
		if dir == "" {
			dir = configDir
		}
		settings.FileSets = append(settings.FileSets, domain.FileSet{
			Dir:      dir,
			Includes: dto.Includes,
			Excludes: dto.Excludes,
		})
	}

	return settings
}

// resolvePath anchors a relative path at configDir. Empty stays empty.
func resolvePath(configDir, p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(configDir, p))
}

// resolveCommand anchors commands given as relative paths at configDir.
// Bare names are left for PATH lookup.
func resolveCommand(configDir, name string) string {
	if !strings.ContainsRune(name, '/') && !strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	return resolvePath(configDir, name)
}

// readAndDecodeYAML reads a YAML file and strictly decodes it into the target struct.
func readAndDecodeYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is provided by the user
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	dec := yaml.NewDecoder(bytes.NewReader(configFile))
	dec.KnownFields(true)
	if parseErr := dec.Decode(target); parseErr != nil && !errors.Is(parseErr, io.EOF) {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}
