// Package audit runs a full rule audit: it discovers and resolves the user's
// stylelint config, reads the installed rule registry, classifies
// deprecations and reconciles the three into a Report.
package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/uuid"

	"github.com/leapstack-labs/findrules/internal/config"
	"github.com/leapstack-labs/findrules/pkg/core"
	"github.com/leapstack-labs/findrules/pkg/lint"
)

// ErrNoSections is returned when every report section is disabled.
var ErrNoSections = errors.New("at least one of --unused, --deprecated, --invalid, --current or --available must be set")

// Config holds auditor configuration.
type Config struct {
	// ProjectRoot is where config discovery starts (default: working directory)
	ProjectRoot string
	// ConfigPath is an explicit config file, relative to ProjectRoot (optional)
	ConfigPath string
	// LibraryDir is the stylelint install (default: ProjectRoot/node_modules/stylelint)
	LibraryDir string
	// FS is the filesystem everything is read from (default: the OS filesystem)
	FS billy.Filesystem
	// Loader loads extends targets (default: a FileLoader over FS)
	Loader config.Loader

	Sections    Sections
	ChunkSize   int
	Concurrency int
	MissingDocs lint.MissingDocPolicy

	// Debounce delays re-runs in Watch (default: DefaultDebounce)
	Debounce time.Duration

	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Auditor runs audits for one project.
type Auditor struct {
	root        string
	configPath  string
	libraryDir  string
	fs          billy.Filesystem
	files       *config.FileLoader
	resolver    *config.Resolver
	sections    Sections
	chunkSize   int
	concurrency int
	missingDocs lint.MissingDocPolicy
	debounce    time.Duration
	logger      *slog.Logger
}

// New validates cfg and fills in defaults.
func New(cfg Config) (*Auditor, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if !cfg.Sections.Any() {
		return nil, ErrNoSections
	}

	root := cfg.ProjectRoot
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	libraryDir := cfg.LibraryDir
	switch {
	case libraryDir == "":
		libraryDir = filepath.Join(root, "node_modules", "stylelint")
	case !filepath.IsAbs(libraryDir):
		libraryDir = filepath.Join(root, libraryDir)
	}

	fsys := cfg.FS
	if fsys == nil {
		fsys = osfs.New("/")
	}

	files := config.NewFileLoader(fsys, logger)
	var loader config.Loader = files
	if cfg.Loader != nil {
		loader = cfg.Loader
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	logger.Debug("initializing auditor", "project_root", root, "library_dir", libraryDir)

	return &Auditor{
		root:        root,
		configPath:  cfg.ConfigPath,
		libraryDir:  libraryDir,
		fs:          fsys,
		files:       files,
		resolver:    config.NewResolver(loader, logger),
		sections:    cfg.Sections,
		chunkSize:   cfg.ChunkSize,
		concurrency: cfg.Concurrency,
		missingDocs: cfg.MissingDocs,
		debounce:    debounce,
		logger:      logger,
	}, nil
}

// ProjectRoot returns the absolute directory discovery starts from.
func (a *Auditor) ProjectRoot() string { return a.root }

// LibraryDir returns the absolute stylelint install directory.
func (a *Auditor) LibraryDir() string { return a.libraryDir }

// Run performs one audit. Any stage failure aborts the run; no partial
// report is returned.
func (a *Auditor) Run(ctx context.Context) (*Report, error) {
	started := time.Now()
	runID := uuid.NewString()
	logger := a.logger.With("run_id", runID)

	userCfg, err := a.Discover()
	if err != nil {
		return nil, err
	}
	logger.Debug("using stylelint config", "path", userCfg.Source)

	resolution, err := a.ResolveChain(ctx, userCfg)
	if err != nil {
		return nil, err
	}

	registry, err := lint.ReadRegistry(a.fs, a.libraryDir)
	if err != nil {
		return nil, err
	}
	logger.Debug("read rule registry", "rules", registry.Len(), "library_dir", a.libraryDir)

	verdicts, classified, err := a.classify(ctx, logger, registry)
	if err != nil {
		return nil, err
	}

	result := lint.Reconcile(registry.Names(), resolution.Rules, verdicts)

	logger.Info("audit complete",
		"unused", len(result.Unused),
		"deprecated", len(result.UserDeprecated),
		"invalid", len(result.Invalid),
	)

	return &Report{
		RunID:         runID,
		StartedAt:     started,
		Elapsed:       time.Since(started),
		ConfigFile:    userCfg.Source,
		ConfigSources: resolution.Sources,
		LibraryDir:    a.libraryDir,
		Sections:      a.sections,
		Classified:    classified,
		Result:        result,
	}, nil
}

func (a *Auditor) classify(ctx context.Context, logger *slog.Logger, registry *lint.Registry) (map[core.RuleName]bool, bool, error) {
	if !a.sections.NeedsClassification() {
		logger.Debug("skipping deprecation scan")
		return map[core.RuleName]bool{}, false, nil
	}

	classifier := a.Classifier(logger)
	verdicts, err := classifier.ClassifyAll(ctx, registry.Names())
	if err != nil {
		return nil, false, err
	}
	return verdicts, true, nil
}

// Classifier returns a classifier over the auditor's library.
func (a *Auditor) Classifier(logger *slog.Logger) *lint.Classifier {
	if logger == nil {
		logger = a.logger
	}
	return lint.NewClassifier(lint.ClassifierConfig{
		FS:          a.fs,
		LibraryDir:  a.libraryDir,
		ChunkSize:   a.chunkSize,
		Concurrency: a.concurrency,
		MissingDocs: a.missingDocs,
		Logger:      logger,
	})
}

// Discover finds the user's stylelint config.
func (a *Auditor) Discover() (*core.UserConfig, error) {
	return a.files.Discover(a.root, a.configPath)
}

// ResolveChain resolves the extends chain of a discovered config.
func (a *Auditor) ResolveChain(ctx context.Context, cfg *core.UserConfig) (*config.Resolution, error) {
	return a.resolver.ResolveChain(ctx, cfg)
}

// ResolveRules discovers the user config and returns its resolved rule names.
func (a *Auditor) ResolveRules(ctx context.Context) ([]core.RuleName, error) {
	userCfg, err := a.Discover()
	if err != nil {
		return nil, err
	}
	res, err := a.ResolveChain(ctx, userCfg)
	if err != nil {
		return nil, err
	}
	return res.Rules, nil
}

// Registry reads the installed rule registry.
func (a *Auditor) Registry() (*lint.Registry, error) {
	return lint.ReadRegistry(a.fs, a.libraryDir)
}
