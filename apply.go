package remap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Gobd/remap/transform"
)

// Engine applies mapping rules to decoded JSON documents. It holds no
// per-document state and is safe for concurrent use once built.
type Engine struct {
	registry *transform.Registry
	catalog  *Catalog
	logger   *slog.Logger
}

// Option configures an [Engine].
type Option func(*Engine)

// WithRegistry sets the transform registry. Defaults to [transform.NewRegistry].
func WithRegistry(r *transform.Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithCatalog sets the rule sets used by [Engine.ApplyAPI].
func WithCatalog(c *Catalog) Option {
	return func(e *Engine) {
		e.catalog = c
	}
}

// WithLogger sets the logger for diagnostics. Defaults to [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New returns an Engine configured by opts.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, o := range opts {
		o(e)
	}
	if e.registry == nil {
		e.registry = transform.NewRegistry()
	}
	if e.catalog == nil {
		e.catalog = NewCatalog()
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Registry returns the engine's transform registry.
func (e *Engine) Registry() *transform.Registry {
	return e.registry
}

// Catalog returns the engine's rule sets.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Apply runs one rule against doc, mutating it in place.
//
// Parameters reach the transform as defaults, then rule.TransformParams, then
// overrides[rule.TransformFunction], later layers winning key by key. For each
// match the value is read and transformed, the result written to TargetKey on
// the match's parent, and only then is the source key removed when
// RemoveSourceKey is set. A source path that matches nothing is a no-op.
func (e *Engine) Apply(ctx context.Context, doc any, rule Rule, defaults transform.Params, overrides map[string]transform.Params) error {
	if rule.SourceKey == "" || rule.TargetKey == "" {
		e.logger.Warn("Skipping incomplete mapping rule",
			slog.String("source_key", rule.SourceKey),
			slog.String("target_key", rule.TargetKey))
		return nil
	}

	nodes := ResolveNodes(doc, rule.SourceKey)
	if len(nodes) == 0 {
		e.logger.Debug("Source path not present", slog.String("source_key", rule.SourceKey))
		return nil
	}

	var fn transform.Func
	if name := rule.TransformFunction; name != "" {
		if f, ok := e.registry.Lookup(name); ok {
			fn = f
		} else {
			e.logger.Warn("Unknown transform, passing values through",
				slog.String("transform", name),
				slog.String("source_key", rule.SourceKey))
		}
	}

	var params transform.Params
	if fn != nil {
		params = transform.Merge(defaults, rule.TransformParams, overrides[rule.TransformFunction])
	}

	for i, n := range nodes {
		if n.Parent == nil {
			continue
		}
		out := n.Value
		if fn != nil {
			var err error
			out, err = e.call(ctx, fn, rule.TransformFunction, n.Value, params)
			if errors.Is(err, ErrInternal) {
				return err
			}
			if err != nil {
				e.logger.Warn("Transform reported a problem",
					slog.String("transform", rule.TransformFunction),
					slog.String("source_key", rule.SourceKey),
					slog.Int("index", i),
					slog.String("error", err.Error()))
				if transform.IsNoValue(out) {
					continue
				}
			}
		}

		if !transform.IsNoValue(out) {
			n.Parent[rule.TargetKey] = out
		}
		if rule.RemoveSourceKey && rule.TargetKey != n.Key {
			delete(n.Parent, n.Key)
		}
	}
	return nil
}

func (e *Engine) call(ctx context.Context, fn transform.Func, name string, value any, params transform.Params) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: transform %q panicked: %v", ErrInternal, name, r)
		}
	}()
	return fn(ctx, value, params)
}

// ApplyMappings applies rules to doc one after another in list order and
// returns doc. Rules that fail with [ErrInternal] stop the batch; rules
// applied before the failure stay applied.
func (e *Engine) ApplyMappings(ctx context.Context, doc any, rules []Rule, defaults transform.Params, overrides map[string]transform.Params) (any, error) {
	start := time.Now()
	for i, r := range rules {
		if err := e.Apply(ctx, doc, r, defaults, overrides); err != nil {
			e.logger.Error("Applying mapping rule failed",
				slog.Int("rule", i),
				slog.String("source_key", r.SourceKey),
				slog.String("error", err.Error()))
			return doc, fmt.Errorf("rule %d (%s): %w", i, r.SourceKey, err)
		}
	}
	e.logger.Debug("Key mappings applied",
		slog.Int("rules", len(rules)),
		slog.Duration("elapsed", time.Since(start)))
	return doc, nil
}

// ApplyAPI applies the rule set registered for api. An unknown api leaves
// doc unchanged.
func (e *Engine) ApplyAPI(ctx context.Context, api string, doc any, defaults transform.Params, overrides map[string]transform.Params) (any, error) {
	rules, err := e.catalog.Lookup(api)
	if err != nil {
		e.logger.Warn("No mappings found, returning payload unchanged",
			slog.String("api", api),
			slog.String("error", err.Error()))
		return doc, nil
	}
	return e.ApplyMappings(ctx, doc, rules, defaults, overrides)
}

var defaultEngine = New()

// ApplyMappings applies rules to doc with the built-in transforms and no
// default parameters. See [Engine.ApplyMappings].
func ApplyMappings(doc any, rules ...Rule) (any, error) {
	return defaultEngine.ApplyMappings(context.Background(), doc, rules, nil, nil)
}
