package model

import (
	"sort"
	"time"

	"github.com/samber/lo"
)

// AdvisorReport is everything a report writer renders for one cluster.
type AdvisorReport struct {
	Cluster        string            `json:"cluster"`      // 集群名称或请求文件
	GeneratedAt    time.Time         `json:"generated_at"` // 生成时间
	Duration       time.Duration     `json:"duration"`     // 耗时
	Version        string            `json:"version"`      // 工具版本
	Hosts          []*HostSummary    `json:"hosts"`
	Recommendation *Recommendation   `json:"recommendation"`
	Validation     *ValidationResult `json:"validation"`

	current Configurations
	changed map[ConfigRef]bool
}

// HostSummary describes one host of the report.
type HostSummary struct {
	HostName     string   `json:"host_name"`     // 主机名
	CPUCount     int      `json:"cpu_count"`     // CPU 核数
	TotalMemKB   int64    `json:"total_mem"`     // 内存 (KB)
	Components   []string `json:"components"`    // 部署的组件
	FindingCount int      `json:"finding_count"` // 该主机相关的问题数
}

// PropertyRow is one recommended property next to its live value.
type PropertyRow struct {
	ConfigType  string
	Name        string
	Recommended string
	Current     string
	HasCurrent  bool
	Changed     bool // 用户本次修改
	Forced      bool // 需要重新下发
}

// Differs reports whether the live value is missing or not equal to the recommendation.
func (p PropertyRow) Differs() bool {
	return !p.HasCurrent || p.Current != p.Recommended
}

// NewAdvisorReport assembles a report from a request and its results.
// result may be nil for a recommendation-only run.
func NewAdvisorReport(cluster string, req *Request, rec *Recommendation, result *ValidationResult) *AdvisorReport {
	r := &AdvisorReport{
		Cluster:        cluster,
		GeneratedAt:    time.Now(),
		Recommendation: rec,
		Validation:     result,
		changed:        make(map[ConfigRef]bool),
	}
	if req == nil {
		return r
	}

	r.current = req.Configurations
	for _, c := range req.ChangedConfigurations {
		r.changed[c.Ref()] = true
	}

	var findings []*Finding
	if result != nil {
		findings = result.Findings
	}
	for _, h := range req.Hosts {
		r.Hosts = append(r.Hosts, &HostSummary{
			HostName:   h.HostName,
			CPUCount:   h.CPUCount,
			TotalMemKB: h.TotalMem,
			Components: req.Services.HostComponents(h.HostName),
			FindingCount: lo.CountBy(findings, func(f *Finding) bool {
				return f != nil && f.Host == h.HostName
			}),
		})
	}
	return r
}

// Summary returns the finding summary, empty for a recommendation-only report.
func (r *AdvisorReport) Summary() *FindingSummary {
	if r.Validation == nil || r.Validation.Summary == nil {
		return &FindingSummary{}
	}
	return r.Validation.Summary
}

// Findings returns the findings sorted by severity, errors first.
// The relative order of equal-severity findings is kept.
func (r *AdvisorReport) Findings() []*Finding {
	if r.Validation == nil {
		return nil
	}
	sorted := lo.Filter(r.Validation.Findings, func(f *Finding, _ int) bool { return f != nil })
	sort.SliceStable(sorted, func(i, j int) bool {
		return severityPriority(sorted[i].Level) > severityPriority(sorted[j].Level)
	})
	return sorted
}

// PropertyRows flattens the recommended tree sorted by config type and name.
func (r *AdvisorReport) PropertyRows() []PropertyRow {
	if r.Recommendation == nil {
		return nil
	}
	forced := make(map[ConfigRef]bool, len(r.Recommendation.ForcedConfigurations))
	for _, ref := range r.Recommendation.ForcedConfigurations {
		forced[ref] = true
	}

	var rows []PropertyRow
	tree := r.Recommendation.Configurations
	for _, configType := range tree.Types() {
		props := tree.Properties(configType)
		names := lo.Keys(props)
		sort.Strings(names)
		for _, name := range names {
			ref := ConfigRef{Type: configType, Name: name}
			current, ok := r.current.Get(configType, name)
			rows = append(rows, PropertyRow{
				ConfigType:  configType,
				Name:        name,
				Recommended: props[name],
				Current:     current,
				HasCurrent:  ok,
				Changed:     r.changed[ref],
				Forced:      forced[ref],
			})
		}
	}
	return rows
}

func severityPriority(level Severity) int {
	switch level {
	case SeverityError:
		return 2
	case SeverityWarn:
		return 1
	default:
		return 0
	}
}
