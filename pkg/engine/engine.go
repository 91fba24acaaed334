// Package engine drives the provider check pipeline: extract pinned
// providers and used types, resolve each provider's upstream repository,
// diff releases against the pinned version, and annotate the notes.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/terralag/terralag/pkg/hclscan"
	"github.com/terralag/terralag/pkg/highlight"
	"github.com/terralag/terralag/pkg/registry"
	"github.com/terralag/terralag/pkg/releasediff"
)

// Resolver maps a provider to its upstream repository.
type Resolver interface {
	Resolve(ctx context.Context, ref hclscan.ProviderRef) (registry.ResolvedProvider, error)
}

// Config holds engine settings. Everything the pipeline varies on arrives
// here as a parameter; nothing reads globals.
type Config struct {
	Dir      string // project root for .tf files
	LockPath string // path to .terraform.lock.hcl
	Token    string // optional GitHub token, raises rate limits only

	NoPause   bool // show everything without pausing between providers
	CapsStyle bool // caps-mode highlighting instead of emphasis

	MaxConcurrency int
	Timeout        time.Duration // per provider, network calls included

	// Dependencies.
	Logger   *slog.Logger
	Resolver Resolver
	Lister   releasediff.Lister
}

// Engine executes the pipeline described by its Config.
type Engine struct {
	config   Config
	logger   *slog.Logger
	resolver Resolver
	lister   releasediff.Lister
}

// New builds an Engine, filling in production defaults for any
// dependency the config leaves unset.
func New(cfg Config) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Resolver == nil {
		cfg.Resolver = registry.NewClient("")
	}
	if cfg.Lister == nil {
		cfg.Lister = releasediff.NewGitHubLister(cfg.Token)
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Engine{
		config:   cfg,
		logger:   cfg.Logger,
		resolver: cfg.Resolver,
		lister:   cfg.Lister,
	}
}

// StyleMode returns the highlight mode selected by the config.
func (e *Engine) StyleMode() highlight.StyleMode {
	if e.config.CapsStyle {
		return highlight.StyleCaps
	}
	return highlight.StyleDefault
}

// Run executes the whole pipeline. Only the two extraction-level
// failures (missing lock file, no configuration files) return an error;
// every per-provider and per-file failure is recorded in the Result and
// the batch continues.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	refs, err := hclscan.ScanLockFile(e.config.LockPath)
	if err != nil {
		return nil, err
	}

	types, fileErrs, err := hclscan.ScanTypes(e.config.Dir)
	if err != nil {
		return nil, err
	}
	for _, fe := range fileErrs {
		e.logger.Warn("Skipping unparseable configuration file", "file", fe.Path, "error", fe.Err)
	}

	e.logger.Info("Checking providers", "providers", len(refs), "tracked_types", types.Len())

	// Each provider's result is computed independently and written to
	// its own slot; merging happens only after the wait.
	results := make([]ProviderResult, len(refs))
	sem := make(chan struct{}, e.config.MaxConcurrency)
	var wg sync.WaitGroup

	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref hclscan.ProviderRef) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			pctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
			defer cancel()
			results[i] = e.checkProvider(pctx, ref, types)
		}(i, ref)
	}
	wg.Wait()

	return &Result{
		TrackedTypes: types.Sorted(),
		FileErrors:   fileErrs,
		Providers:    results,
	}, nil
}

// checkProvider runs resolve → diff → annotate for one provider. Any
// failure becomes a classified skip on the result, never an abort.
func (e *Engine) checkProvider(ctx context.Context, ref hclscan.ProviderRef, types *hclscan.TypeSet) ProviderResult {
	tr := otel.Tracer("terralag/engine")
	ctx, span := tr.Start(ctx, "check_provider", trace.WithAttributes(
		attribute.String("provider.vendor", ref.Vendor),
		attribute.String("provider.name", ref.Name),
		attribute.String("provider.pinned", ref.PinnedVersion),
	))
	defer span.End()

	out := ProviderResult{Provider: ref}

	resolved, err := e.resolver.Resolve(ctx, ref)
	if err != nil {
		e.logger.Warn("Skipping provider: registry lookup failed", "provider", ref.String(), "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		out.Skip = &Skip{Reason: SkipResolveFailed, Detail: err.Error()}
		return out
	}
	out.RepoOrg = resolved.RepoOrg
	out.RepoName = resolved.RepoName

	releases, err := e.lister.ListReleases(ctx, resolved.RepoOrg, resolved.RepoName)
	if err != nil {
		e.logger.Warn("Skipping provider: release listing failed", "provider", ref.String(), "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		out.Skip = &Skip{Reason: SkipFetchFailed, Detail: err.Error()}
		return out
	}

	applicable, err := releasediff.Applicable(releases, ref.PinnedVersion)
	if err != nil {
		e.logger.Warn("Skipping provider: pinned version unparseable", "provider", ref.String(), "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		out.Skip = &Skip{Reason: SkipBadPinnedVersion, Detail: err.Error()}
		return out
	}

	for _, r := range applicable {
		out.Releases = append(out.Releases, AnnotatedRelease{
			Tag:       r.Tag,
			CreatedAt: r.CreatedAt,
			Lines:     highlight.Annotate(r.Body, types),
		})
	}
	span.SetAttributes(attribute.Int("provider.releases_behind", len(out.Releases)))
	return out
}
