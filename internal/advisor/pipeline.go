package advisor

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"stack-advisor/internal/model"
)

// stageInput is the read-only view a recommender works from.
type stageInput struct {
	req     *model.Request
	profile *model.ClusterProfile
}

func (in *stageInput) live() model.Configurations {
	return in.req.Configurations
}

// stage is one recommender of the pipeline.
type stage struct {
	name    string
	service string   // stage runs only when this service is installed
	after   []string // stages that must have written before this one
	run     func(a *Advisor, in *stageInput, w *ConfigWriter)
}

// pipeline runs recommenders in declared order.
type pipeline struct {
	stages []stage
	logger zerolog.Logger
}

// defaultStages is the recommender order. Proxy users read the run-as user
// settings the storage stage leaves in place, so they come after it.
func defaultStages() []stage {
	return []stage{
		{name: "yarn", service: "YARN", run: (*Advisor).recommendYARN},
		{name: "mapreduce2", service: "MAPREDUCE2", after: []string{"yarn"}, run: (*Advisor).recommendMapReduce2},
		{name: "hdfs", service: "HDFS", run: (*Advisor).recommendHDFS},
		{name: "proxyusers", service: "HDFS", after: []string{"hdfs"}, run: (*Advisor).recommendProxyUsers},
		{name: "hbase", service: "HBASE", run: (*Advisor).recommendHBase},
		{name: "ambari-metrics", service: "AMBARI_METRICS", run: (*Advisor).recommendAmbariMetrics},
		{name: "ranger", service: "RANGER", run: (*Advisor).recommendRanger},
	}
}

// newPipeline checks that every dependency of a stage is declared before it.
func newPipeline(stages []stage, logger zerolog.Logger) (*pipeline, error) {
	seen := make([]string, 0, len(stages))
	for _, s := range stages {
		if s.name == "" || s.run == nil {
			return nil, fmt.Errorf("stage %q is incomplete", s.name)
		}
		if lo.Contains(seen, s.name) {
			return nil, fmt.Errorf("duplicate stage %q", s.name)
		}
		for _, dep := range s.after {
			if !lo.Contains(seen, dep) {
				return nil, fmt.Errorf("stage %q depends on %q which is not declared before it", s.name, dep)
			}
		}
		seen = append(seen, s.name)
	}
	return &pipeline{
		stages: stages,
		logger: logger.With().Str("component", "pipeline").Logger(),
	}, nil
}

func (p *pipeline) run(a *Advisor, in *stageInput, w *ConfigWriter) {
	for _, s := range p.stages {
		if s.service != "" && !in.req.Services.Installed(s.service) {
			continue
		}
		p.logger.Debug().Str("stage", s.name).Msg("running recommender")
		s.run(a, in, w)
	}
}
