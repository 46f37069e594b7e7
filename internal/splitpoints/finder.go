// Package splitpoints computes pre-split keys for the metrics storage tables.
package splitpoints

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Mode is the operation mode of the metrics storage.
type Mode string

const (
	ModeEmbedded    Mode = "embedded"
	ModeDistributed Mode = "distributed"
)

const (
	defaultFlushSize     = 134217728
	defaultMemstoreUpper = 0.35
)

// Input is what a Finder receives.
type Input struct {
	SiteProperties map[string]string // ams-hbase-site
	EnvProperties  map[string]string // ams-hbase-env
	MetricsDir     string
	Mode           Mode
	Services       []string
}

// Result holds the split keys of the two metric tables.
type Result struct {
	Precision []string // host-level table
	Aggregate []string // cluster-level table
}

// Finder computes split points.
type Finder interface {
	FindSplitPoints(in Input) (*Result, error)
}

// MetricDefinitions is the content of one <SERVICE>.yaml file.
type MetricDefinitions struct {
	HostMetrics    []string `yaml:"host_metrics"`
	ClusterMetrics []string `yaml:"cluster_metrics"`
}

// FileFinder reads per-service metric name lists from a directory and
// spreads split keys evenly over the sorted names.
type FileFinder struct {
	logger zerolog.Logger
}

// NewFileFinder creates a FileFinder.
func NewFileFinder(logger zerolog.Logger) *FileFinder {
	return &FileFinder{
		logger: logger.With().Str("component", "splitpoints").Logger(),
	}
}

// FindSplitPoints implements Finder.
func (f *FileFinder) FindSplitPoints(in Input) (*Result, error) {
	if in.MetricsDir == "" {
		return &Result{}, nil
	}

	var hostMetrics, clusterMetrics []string
	for _, svc := range in.Services {
		defs, err := loadDefinitions(filepath.Join(in.MetricsDir, svc+".yaml"))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		hostMetrics = append(hostMetrics, defs.HostMetrics...)
		clusterMetrics = append(clusterMetrics, defs.ClusterMetrics...)
	}

	regions := RegionCount(in)
	f.logger.Debug().
		Int("regions", regions).
		Int("host_metrics", len(hostMetrics)).
		Int("cluster_metrics", len(clusterMetrics)).
		Str("mode", string(in.Mode)).
		Msg("computing split points")

	return &Result{
		Precision: pick(hostMetrics, regions),
		Aggregate: pick(clusterMetrics, regions),
	}, nil
}

func loadDefinitions(path string) (*MetricDefinitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var defs MetricDefinitions
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("failed to parse metric definitions %s: %w", path, err)
	}
	return &defs, nil
}

// RegionCount is the number of regions the memstore can hold without flushing:
// heap * memstore upper limit / flush size, at least 1.
func RegionCount(in Input) int {
	heapKey := "hbase_master_heapsize"
	if in.Mode == ModeDistributed {
		heapKey = "hbase_regionserver_heapsize"
	}
	heapMB := leadingInt(in.EnvProperties[heapKey], 0)
	upper := leadingFloat(in.SiteProperties["hbase.regionserver.global.memstore.upperLimit"], defaultMemstoreUpper)
	flush := leadingInt(in.SiteProperties["hbase.hregion.memstore.flush.size"], defaultFlushSize)
	if flush <= 0 {
		flush = defaultFlushSize
	}

	regions := int(math.Floor(float64(heapMB) * 1024 * 1024 * upper / float64(flush)))
	return max(1, regions)
}

// pick returns regions-1 evenly spaced keys from the sorted unique names.
func pick(names []string, regions int) []string {
	names = lo.Uniq(names)
	sort.Strings(names)
	want := regions - 1
	if want <= 0 || len(names) == 0 {
		return nil
	}
	if want >= len(names) {
		return names
	}

	step := float64(len(names)) / float64(want+1)
	keys := make([]string, 0, want)
	for i := 1; i <= want; i++ {
		keys = append(keys, names[int(float64(i)*step)])
	}
	return lo.Uniq(keys)
}

func leadingInt(s string, def int64) int64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return def
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return def
	}
	return n
}

func leadingFloat(s string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return f
}
