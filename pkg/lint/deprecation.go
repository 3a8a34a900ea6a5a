package lint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/leapstack-labs/findrules/pkg/core"
)

// DefaultChunkSize is how many bytes of a rule README are scanned.
// Deprecation notices sit in the first lines of the document.
const DefaultChunkSize = 1024

var deprecatedPattern = regexp.MustCompile(`(?i)deprecated`)

// IsDeprecatedText reports whether a documentation prefix marks a rule as deprecated.
func IsDeprecatedText(prefix []byte) bool {
	return deprecatedPattern.Match(prefix)
}

// MissingDocPolicy decides what happens when a rule README cannot be read.
type MissingDocPolicy int

const (
	// MissingDocFatal aborts the run.
	MissingDocFatal MissingDocPolicy = iota
	// MissingDocNotDeprecated treats the rule as not deprecated and logs a warning.
	MissingDocNotDeprecated
)

// String returns the flag value for the policy.
func (p MissingDocPolicy) String() string {
	switch p {
	case MissingDocNotDeprecated:
		return "skip"
	default:
		return "fatal"
	}
}

// ParseMissingDocPolicy parses "fatal" or "skip".
func ParseMissingDocPolicy(s string) (MissingDocPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fatal":
		return MissingDocFatal, nil
	case "skip":
		return MissingDocNotDeprecated, nil
	default:
		return MissingDocFatal, fmt.Errorf("unknown missing-docs policy %q (want fatal or skip)", s)
	}
}

// ClassifierConfig configures a Classifier.
type ClassifierConfig struct {
	// FS is the filesystem the library is installed on.
	FS billy.Filesystem
	// LibraryDir is the library install location, e.g. node_modules/stylelint.
	LibraryDir string
	// ChunkSize bounds the bytes read per README (DefaultChunkSize if <= 0).
	ChunkSize int
	// Concurrency caps parallel reads in ClassifyAll; <= 0 means no cap.
	Concurrency int
	// MissingDocs selects the missing README behavior.
	MissingDocs MissingDocPolicy
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Classifier decides whether rules are deprecated from their documentation.
// Verdicts are memoized for the lifetime of the Classifier.
type Classifier struct {
	fs          billy.Filesystem
	libraryDir  string
	chunkSize   int
	concurrency int
	missingDocs MissingDocPolicy
	logger      *slog.Logger

	mu       sync.Mutex
	verdicts map[core.RuleName]bool
	inflight singleflight.Group
}

// NewClassifier creates a Classifier.
func NewClassifier(cfg ClassifierConfig) *Classifier {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	chunk := cfg.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	return &Classifier{
		fs:          cfg.FS,
		libraryDir:  cfg.LibraryDir,
		chunkSize:   chunk,
		concurrency: cfg.Concurrency,
		missingDocs: cfg.MissingDocs,
		logger:      logger,
		verdicts:    make(map[core.RuleName]bool),
	}
}

// Classify reports whether a rule is deprecated.
func (c *Classifier) Classify(ctx context.Context, rule core.RuleName) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if v, ok := c.cached(rule); ok {
		return v, nil
	}

	v, err, _ := c.inflight.Do(string(rule), func() (any, error) {
		if v, ok := c.cached(rule); ok {
			return v, nil
		}
		deprecated, err := c.scan(rule)
		if err != nil {
			return false, err
		}
		c.mu.Lock()
		c.verdicts[rule] = deprecated
		c.mu.Unlock()
		return deprecated, nil
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// ClassifyAll classifies every rule concurrently and waits for all of them.
// The first error aborts the join; results of other reads are discarded.
func (c *Classifier) ClassifyAll(ctx context.Context, rules []core.RuleName) (map[core.RuleName]bool, error) {
	verdicts := make([]bool, len(rules))

	g, gctx := errgroup.WithContext(ctx)
	if c.concurrency > 0 {
		g.SetLimit(c.concurrency)
	}

	for i, rule := range rules {
		g.Go(func() error {
			v, err := c.Classify(gctx, rule)
			if err != nil {
				return err
			}
			verdicts[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[core.RuleName]bool, len(rules))
	for i, rule := range rules {
		out[rule] = verdicts[i]
	}

	c.logger.Debug("classified rules", "count", len(rules), "deprecated", countTrue(out))
	return out, nil
}

// Prefix returns the bounded documentation prefix the verdict is based on.
func (c *Classifier) Prefix(rule core.RuleName) ([]byte, error) {
	path := RuleDocPath(c.libraryDir, rule)
	prefix, err := c.readPrefix(path)
	if err != nil {
		return nil, &core.DocArtifactUnavailableError{Rule: rule, Path: path, Err: err}
	}
	return prefix, nil
}

func (c *Classifier) cached(rule core.RuleName) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.verdicts[rule]
	return v, ok
}

func (c *Classifier) scan(rule core.RuleName) (bool, error) {
	prefix, err := c.Prefix(rule)
	if err != nil {
		if c.missingDocs == MissingDocNotDeprecated {
			c.logger.Warn("rule documentation unavailable, assuming not deprecated", "rule", rule, "error", err)
			return false, nil
		}
		return false, err
	}
	return IsDeprecatedText(prefix), nil
}

// readPrefix reads at most chunkSize bytes and closes the file right away.
func (c *Classifier) readPrefix(path string) ([]byte, error) {
	f, err := c.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, c.chunkSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return buf[:n], nil
}

func countTrue(m map[core.RuleName]bool) int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}
