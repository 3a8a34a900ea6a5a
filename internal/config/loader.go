// Package config discovers, loads and resolves stylelint configurations.
//
// Discovery follows the cosmiconfig convention stylelint uses: starting from
// a directory, each of SearchPlaces is tried, then the parent directory, up
// to the filesystem root. Documents are parsed as JSON or YAML; JavaScript
// configs are recognised but rejected because they cannot be evaluated.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/leapstack-labs/findrules/pkg/core"
)

// Loader loads an extends target.
// ref is a file path or package specifier; fromDir is the directory of the
// config that references it.
type Loader interface {
	Load(ctx context.Context, ref string, fromDir string) (*core.UserConfig, error)
}

// FileLoader loads configs from a filesystem using node-style resolution.
type FileLoader struct {
	fs     billy.Filesystem
	logger *slog.Logger
}

// NewFileLoader creates a FileLoader. Paths handed to it must be absolute.
func NewFileLoader(fsys billy.Filesystem, logger *slog.Logger) *FileLoader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FileLoader{fs: fsys, logger: logger}
}

// Load resolves ref relative to fromDir and loads it.
func (l *FileLoader) Load(ctx context.Context, ref string, fromDir string) (*core.UserConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := l.resolveRef(ref, fromDir)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("loading extends target", "ref", ref, "path", path)
	return l.LoadFile(path)
}

// Discover finds the user's config. An explicit path (relative to startDir)
// bypasses the upward search.
func (l *FileLoader) Discover(startDir, explicit string) (*core.UserConfig, error) {
	if explicit != "" {
		path := resolvePathRelativeTo(explicit, startDir)
		if !l.isFile(path) {
			return nil, &core.ConfigNotFoundError{Path: explicit}
		}
		return l.LoadFile(path)
	}
	return l.Search(startDir)
}

// Search looks for a config from startDir upward.
func (l *FileLoader) Search(startDir string) (*core.UserConfig, error) {
	dir := startDir
	for {
		for _, name := range SearchPlaces {
			candidate := filepath.Join(dir, name)
			if !l.isFile(candidate) {
				continue
			}
			if name == "package.json" {
				has, err := l.packageHasConfig(candidate)
				if err != nil {
					return nil, err
				}
				if !has {
					continue
				}
			}
			l.logger.Debug("found stylelint config", "path", candidate)
			return l.LoadFile(candidate)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return nil, &core.ConfigNotFoundError{SearchFrom: startDir}
}

// LoadFile parses a config document at path.
func (l *FileLoader) LoadFile(path string) (*core.UserConfig, error) {
	if isJavaScript(path) {
		return nil, &core.ConfigMalformedError{
			Path:   path,
			Reason: "JavaScript configs cannot be evaluated; use .stylelintrc.json or .stylelintrc.yaml",
		}
	}

	data, err := util.ReadFile(l.fs, path)
	if err != nil {
		return nil, &core.ConfigMalformedError{Path: path, Reason: "cannot read file", Err: err}
	}

	k, err := parseDocument(path, data)
	if err != nil {
		return nil, err
	}

	if filepath.Base(path) == "package.json" {
		if !k.Exists(ModuleName) {
			return nil, &core.ConfigMalformedError{Path: path, Reason: `no "stylelint" field`}
		}
		k = k.Cut(ModuleName)
	}

	cfg, err := decodeUserConfig(k.Raw())
	if err != nil {
		return nil, &core.ConfigMalformedError{Path: path, Reason: "unexpected document shape", Err: err}
	}
	cfg.Source = path
	return cfg, nil
}

// MapLoader serves extends targets from memory, keyed by reference.
type MapLoader map[string]*core.UserConfig

// Load returns a copy of the config registered under ref.
func (m MapLoader) Load(_ context.Context, ref string, _ string) (*core.UserConfig, error) {
	cfg, ok := m[ref]
	if !ok {
		return nil, fmt.Errorf("cannot resolve %q: %w", ref, fs.ErrNotExist)
	}
	out := *cfg
	if out.Source == "" {
		out.Source = ref
	}
	return &out, nil
}

// document is the on-disk shape before normalization.
type document struct {
	Rules   map[string]any `mapstructure:"rules"`
	Extends any            `mapstructure:"extends"`
}

func decodeUserConfig(raw map[string]any) (*core.UserConfig, error) {
	var doc document
	if err := mapstructure.Decode(raw, &doc); err != nil {
		return nil, err
	}

	extends, err := normalizeExtends(doc.Extends)
	if err != nil {
		return nil, err
	}

	_, hasRules := raw["rules"]
	rules := doc.Rules
	if rules == nil {
		rules = map[string]any{}
	}

	return &core.UserConfig{
		Rules:    rules,
		Extends:  extends,
		HasRules: hasRules,
	}, nil
}

// normalizeExtends accepts a single reference or a list of references.
func normalizeExtends(v any) ([]string, error) {
	switch ext := v.(type) {
	case nil:
		return nil, nil
	case string:
		if ext == "" {
			return nil, nil
		}
		return []string{ext}, nil
	case []string:
		return ext, nil
	case []any:
		out := make([]string, 0, len(ext))
		for i, item := range ext {
			s, ok := item.(string)
			if !ok || s == "" {
				return nil, fmt.Errorf("extends[%d] must be a non-empty string, got %T", i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("extends must be a string or a list of strings, got %T", v)
	}
}

func parseDocument(path string, data []byte) (*koanf.Koanf, error) {
	k := koanf.NewWithConf(koanf.Conf{Delim: koanfDelim})

	var parser koanf.Parser = yaml.Parser()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		parser = json.Parser()
	}

	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return nil, &core.ConfigMalformedError{Path: path, Reason: "parse error", Err: err}
	}
	return k, nil
}

func (l *FileLoader) packageHasConfig(path string) (bool, error) {
	data, err := util.ReadFile(l.fs, path)
	if err != nil {
		return false, &core.ConfigMalformedError{Path: path, Reason: "cannot read file", Err: err}
	}
	k, err := parseDocument(path, data)
	if err != nil {
		return false, err
	}
	return k.Exists(ModuleName), nil
}

// resolveRef maps an extends reference to a file.
func (l *FileLoader) resolveRef(ref, fromDir string) (string, error) {
	if isPathRef(ref) {
		path := resolvePathRelativeTo(ref, fromDir)
		if resolved, ok := l.resolveFile(path); ok {
			return resolved, nil
		}
		return "", fmt.Errorf("cannot resolve %q from %s: %w", ref, fromDir, fs.ErrNotExist)
	}

	pkgName, subpath := splitPackageRef(ref)
	dir := fromDir
	for {
		pkgDir := filepath.Join(dir, "node_modules", filepath.FromSlash(pkgName))
		if l.isDir(pkgDir) {
			if subpath != "" {
				if resolved, ok := l.resolveFile(filepath.Join(pkgDir, filepath.FromSlash(subpath))); ok {
					return resolved, nil
				}
			} else if resolved, ok := l.resolvePackageMain(pkgDir); ok {
				return resolved, nil
			}
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("cannot resolve package %q from %s: %w", ref, fromDir, fs.ErrNotExist)
}

// resolveFile tries path as-is, then with known extensions, then as a package directory.
func (l *FileLoader) resolveFile(path string) (string, bool) {
	if l.isFile(path) {
		return path, true
	}
	for _, ext := range resolveExtensions {
		if l.isFile(path + ext) {
			return path + ext, true
		}
	}
	if l.isDir(path) {
		return l.resolvePackageMain(path)
	}
	return "", false
}

// resolvePackageMain follows package.json "main", falling back to index files.
func (l *FileLoader) resolvePackageMain(pkgDir string) (string, bool) {
	manifest := filepath.Join(pkgDir, "package.json")
	if l.isFile(manifest) {
		if data, err := util.ReadFile(l.fs, manifest); err == nil {
			if k, err := parseDocument(manifest, data); err == nil {
				if main := k.String("main"); main != "" {
					mainPath := filepath.Join(pkgDir, filepath.FromSlash(main))
					if l.isFile(mainPath) {
						return mainPath, true
					}
					for _, ext := range resolveExtensions {
						if l.isFile(mainPath + ext) {
							return mainPath + ext, true
						}
					}
				}
			}
		}
	}
	for _, name := range indexFiles {
		candidate := filepath.Join(pkgDir, name)
		if l.isFile(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func (l *FileLoader) isFile(path string) bool {
	info, err := l.fs.Stat(path)
	return err == nil && !info.IsDir()
}

func (l *FileLoader) isDir(path string) bool {
	info, err := l.fs.Stat(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			l.logger.Debug("stat failed", "path", path, "error", err)
		}
		return false
	}
	return info.IsDir()
}

// isPathRef reports whether ref is a filesystem path rather than a package.
func isPathRef(ref string) bool {
	return filepath.IsAbs(ref) ||
		ref == "." || ref == ".." ||
		strings.HasPrefix(ref, "./") || strings.HasPrefix(ref, "../")
}

// splitPackageRef splits "@scope/pkg/sub/file.json" into ("@scope/pkg", "sub/file.json").
func splitPackageRef(ref string) (string, string) {
	parts := strings.Split(ref, "/")
	n := 1
	if strings.HasPrefix(ref, "@") && len(parts) > 1 {
		n = 2
	}
	if len(parts) <= n {
		return ref, ""
	}
	return strings.Join(parts[:n], "/"), strings.Join(parts[n:], "/")
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

func isJavaScript(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".cjs", ".mjs":
		return true
	}
	return false
}
