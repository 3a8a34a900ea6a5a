package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/findrules/pkg/core"
)

// Resolver flattens a config and everything it extends into one rule list.
type Resolver struct {
	loader   Loader
	logger   *slog.Logger
	maxDepth int
}

// NewResolver creates a Resolver that loads extends targets with loader.
func NewResolver(loader Loader, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{loader: loader, logger: logger, maxDepth: MaxExtendsDepth}
}

// Resolve returns the sorted, de-duplicated rule names configured by cfg
// and every config it extends, at any depth.
func (r *Resolver) Resolve(ctx context.Context, cfg *core.UserConfig) ([]core.RuleName, error) {
	res, err := r.ResolveChain(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return res.Rules, nil
}

// ResolveChain is Resolve plus the list of files that took part.
func (r *Resolver) ResolveChain(ctx context.Context, cfg *core.UserConfig) (*Resolution, error) {
	if cfg == nil {
		return nil, &core.ConfigMalformedError{Reason: "no configuration"}
	}
	if err := requireRules(cfg, cfg.Source); err != nil {
		return nil, err
	}

	w := &walk{
		resolver: r,
		seen:     make(map[string]bool),
		sources:  []string{},
	}
	if err := w.visit(ctx, cfg, nil); err != nil {
		var malformed *core.ConfigMalformedError
		if errors.As(err, &malformed) && malformed.Chain == nil {
			malformed.Chain = append([]string(nil), w.sources...)
		}
		return nil, err
	}

	rules := core.SortedUnique(w.names)
	r.logger.Debug("resolved user rules", "rules", len(rules), "configs", len(w.sources))
	return &Resolution{Rules: rules, Sources: w.sources}, nil
}

type walk struct {
	resolver *Resolver
	names    []core.RuleName
	sources  []string
	seen     map[string]bool
}

// visit appends the rules of cfg's extends targets, in order, then cfg's own.
func (w *walk) visit(ctx context.Context, cfg *core.UserConfig, path chain) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := cfg.Source
	if key != "" {
		if path.contains(key) {
			return &core.ConfigMalformedError{
				Path:   key,
				Reason: "extends cycle: " + strings.Join(append(path, key), " -> "),
			}
		}
		path = append(path, key)
		if !w.seen[key] {
			w.seen[key] = true
			w.sources = append(w.sources, key)
		}
	}
	if len(path) > w.resolver.maxDepth {
		return &core.ConfigMalformedError{
			Path:   key,
			Reason: fmt.Sprintf("extends chain deeper than %d", w.resolver.maxDepth),
		}
	}

	fromDir := ""
	if cfg.Source != "" {
		fromDir = filepath.Dir(cfg.Source)
	}

	for _, ref := range cfg.Extends {
		target, err := w.resolver.loader.Load(ctx, ref, fromDir)
		if err != nil {
			return wrapExtendsError(cfg.Source, ref, err)
		}
		if err := requireRules(target, ref); err != nil {
			return err
		}
		w.resolver.logger.Debug("following extends", "ref", ref, "source", target.Source)

		// Copy so sibling branches don't share the backing array.
		if err := w.visit(ctx, target, append(chain(nil), path...)); err != nil {
			return err
		}
	}

	w.names = append(w.names, cfg.RuleNames()...)
	return nil
}

// requireRules rejects documents with neither rules nor extends.
func requireRules(cfg *core.UserConfig, name string) error {
	if cfg.HasRules || len(cfg.Extends) > 0 {
		return nil
	}
	if cfg.Source != "" {
		name = cfg.Source
	}
	return &core.ConfigMalformedError{Path: name, Reason: `missing "rules" field`}
}

func wrapExtendsError(parent, ref string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var malformed *core.ConfigMalformedError
	if errors.As(err, &malformed) {
		return err
	}
	return &core.ConfigMalformedError{
		Path:   parent,
		Reason: fmt.Sprintf("cannot load extends target %q", ref),
		Err:    err,
	}
}
