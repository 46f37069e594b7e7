// Package advisor computes recommended service configurations from a cluster's
// hardware inventory and service topology, and validates user overrides against them.
package advisor

import (
	"fmt"

	"github.com/rs/zerolog"

	"stack-advisor/internal/config"
	"stack-advisor/internal/model"
	"stack-advisor/internal/splitpoints"
)

// Advisor runs the recommender pipeline and the validators.
// It holds no per-request state and is safe for concurrent use.
type Advisor struct {
	finder     splitpoints.Finder
	uids       UIDSource
	metricsDir string
	pipeline   *pipeline
	logger     zerolog.Logger
}

// Option is a functional option for configuring an Advisor.
type Option func(*Advisor)

// New creates an Advisor from the advisor configuration section.
func New(cfg *config.AdvisorConfig, logger zerolog.Logger, opts ...Option) (*Advisor, error) {
	a := &Advisor{
		logger: logger.With().Str("component", "advisor").Logger(),
	}
	loginDefs := defaultLoginDefsPath
	if cfg != nil {
		a.metricsDir = cfg.MetricsDefinitionDir
		if cfg.LoginDefsPath != "" {
			loginDefs = cfg.LoginDefsPath
		}
	}
	a.uids = LoginDefs{Path: loginDefs}
	a.finder = splitpoints.NewFileFinder(logger)

	for _, opt := range opts {
		opt(a)
	}

	p, err := newPipeline(defaultStages(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build recommender pipeline: %w", err)
	}
	a.pipeline = p
	return a, nil
}

// WithSplitPointFinder replaces the split-point finder.
func WithSplitPointFinder(f splitpoints.Finder) Option {
	return func(a *Advisor) {
		a.finder = f
	}
}

// WithUIDSource replaces the minimum UID source.
func WithUIDSource(u UIDSource) Option {
	return func(a *Advisor) {
		a.uids = u
	}
}

// Recommend computes the recommended configuration tree for the request.
func (a *Advisor) Recommend(req *model.Request) (*model.Recommendation, error) {
	if req == nil {
		return nil, fmt.Errorf("request is nil")
	}

	profile := BuildProfile(req.Hosts, req.Services)
	w := NewConfigWriter(req.Configurations, req.ChangedConfigurations)
	a.pipeline.run(a, &stageInput{req: req, profile: profile}, w)

	a.logger.Info().
		Str("profile", profile.Fingerprint()).
		Int("containers", profile.Containers).
		Float64("ram_per_container", profile.RAMPerContainerMB).
		Int("config_types", len(w.Tree())).
		Int("forced", len(w.Forced())).
		Msg("recommendation completed")

	return &model.Recommendation{
		Configurations:       w.Tree(),
		ForcedConfigurations: w.Forced(),
		Profile:              profile,
	}, nil
}

// Validate checks the live configuration and the component layout of the
// request. Findings are ordered: layout first, then per-service checks in
// request order, then the min/max sweep.
func (a *Advisor) Validate(req *model.Request) (*model.ValidationResult, error) {
	_, result, err := a.Advise(req)
	return result, err
}

// Advise runs the recommendation and validates the request against it.
func (a *Advisor) Advise(req *model.Request) (*model.Recommendation, *model.ValidationResult, error) {
	rec, err := a.Recommend(req)
	if err != nil {
		return nil, nil, err
	}

	var findings []*model.Finding
	findings = append(findings, a.validateTopology(req)...)
	findings = append(findings, a.validateConfigurations(req, rec)...)
	findings = append(findings, validateMinMax(req.Configurations, rec.Configurations)...)

	summary := model.NewFindingSummary(findings)
	a.logger.Info().
		Int("total", summary.Total).
		Int("warn", summary.WarnCount).
		Int("error", summary.ErrorCount).
		Msg("validation completed")

	return rec, &model.ValidationResult{Findings: findings, Summary: summary}, nil
}
