// Package html provides HTML report generation for the advisor.
// It implements the report.ReportWriter interface to generate .html files
// with the cluster profile, the findings and the recommended configuration.
package html

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stack-advisor/internal/model"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// Writer implements report.ReportWriter for HTML format.
type Writer struct {
	timezone     *time.Location
	templatePath string // User-defined template path (optional)
}

// TemplateData holds all data passed to the HTML template.
type TemplateData struct {
	Title       string
	Cluster     string
	GeneratedAt string
	Duration    string
	Version     string
	Summary     *model.FindingSummary
	Profile     *ProfileData
	Findings    []*FindingData
	Properties  []*PropertyData
	Hosts       []*HostData
}

// ProfileData is the cluster profile formatted for rendering.
type ProfileData struct {
	CPU             int
	RAMGB           int64
	DiskCount       int
	ReservedRAMGB   int64
	StorageRAMGB    int64
	AvailableRAMMB  int64
	Containers      int
	RAMPerContainer string
	Fingerprint     string
}

// FindingData is a finding formatted for rendering.
type FindingData struct {
	Level      string
	LevelClass string
	Type       string
	Target     string // config-type/name, component or host
	Message    string
}

// PropertyData is a recommended property formatted for rendering.
type PropertyData struct {
	ConfigType  string
	Name        string
	Recommended string
	Current     string
	RowClass    string
	Changed     bool
	Forced      bool
}

// HostData is a host formatted for rendering.
type HostData struct {
	HostName     string
	CPUCount     int
	Memory       string
	Components   string
	FindingCount int
}

// NewWriter creates a new HTML report writer.
// If timezone is nil, it defaults to Asia/Shanghai.
// If templatePath is empty, the embedded default template will be used.
func NewWriter(timezone *time.Location, templatePath string) *Writer {
	if timezone == nil {
		timezone, _ = time.LoadLocation("Asia/Shanghai")
	}
	return &Writer{
		timezone:     timezone,
		templatePath: templatePath,
	}
}

// Format returns the format identifier for this writer.
func (w *Writer) Format() string {
	return "html"
}

// Extension returns the file extension of the generated files.
func (w *Writer) Extension() string {
	return ".html"
}

// Write generates an HTML report.
func (w *Writer) Write(report *model.AdvisorReport, outputPath string) error {
	if report == nil {
		return fmt.Errorf("advisor report is nil")
	}

	if !strings.HasSuffix(strings.ToLower(outputPath), w.Extension()) {
		outputPath = outputPath + w.Extension()
	}

	tmpl, err := w.loadTemplate()
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}

	data := w.prepareTemplateData(report)

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := tmpl.Execute(file, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

// loadTemplate loads the user-defined template when it exists and falls
// back to the embedded default.
func (w *Writer) loadTemplate() (*template.Template, error) {
	funcMap := template.FuncMap{
		"yesNo": func(b bool) string {
			if b {
				return "是"
			}
			return ""
		},
	}

	if w.templatePath != "" {
		if _, err := os.Stat(w.templatePath); err == nil {
			tmpl, err := template.New(filepath.Base(w.templatePath)).Funcs(funcMap).ParseFiles(w.templatePath)
			if err != nil {
				return nil, fmt.Errorf("failed to parse user template: %w", err)
			}
			return tmpl, nil
		}
	}

	tmpl, err := template.New("default.html").Funcs(funcMap).ParseFS(embeddedTemplates, "templates/default.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded template: %w", err)
	}
	return tmpl, nil
}

// prepareTemplateData converts an AdvisorReport to TemplateData.
func (w *Writer) prepareTemplateData(report *model.AdvisorReport) *TemplateData {
	data := &TemplateData{
		Title:       "集群配置建议报告",
		Cluster:     report.Cluster,
		GeneratedAt: report.GeneratedAt.In(w.timezone).Format("2006-01-02 15:04:05"),
		Duration:    formatDuration(report.Duration),
		Version:     report.Version,
		Summary:     report.Summary(),
	}

	if rec := report.Recommendation; rec != nil && rec.Profile != nil {
		p := rec.Profile
		data.Profile = &ProfileData{
			CPU:             p.CPU,
			RAMGB:           p.RAMGB,
			DiskCount:       p.DiskCount,
			ReservedRAMGB:   p.ReservedRAMGB,
			StorageRAMGB:    p.StorageRAMGB,
			AvailableRAMMB:  p.TotalAvailableRAMMB,
			Containers:      p.Containers,
			RAMPerContainer: fmt.Sprintf("%g MB", p.RAMPerContainerMB),
			Fingerprint:     p.Fingerprint(),
		}
	}

	for _, f := range report.Findings() {
		data.Findings = append(data.Findings, convertFinding(f))
	}

	for _, p := range report.PropertyRows() {
		current := p.Current
		if !p.HasCurrent {
			current = "N/A"
		}
		rowClass := "prop-match"
		if p.Differs() {
			rowClass = "prop-differs"
		}
		data.Properties = append(data.Properties, &PropertyData{
			ConfigType:  p.ConfigType,
			Name:        p.Name,
			Recommended: p.Recommended,
			Current:     current,
			RowClass:    rowClass,
			Changed:     p.Changed,
			Forced:      p.Forced,
		})
	}

	for _, h := range report.Hosts {
		data.Hosts = append(data.Hosts, &HostData{
			HostName:     h.HostName,
			CPUCount:     h.CPUCount,
			Memory:       formatSize(h.TotalMemKB * 1024),
			Components:   strings.Join(h.Components, ", "),
			FindingCount: h.FindingCount,
		})
	}
	return data
}

func convertFinding(f *model.Finding) *FindingData {
	target := f.Host
	switch {
	case f.ConfigType != "":
		target = f.ConfigType + "/" + f.ConfigName
	case f.ComponentName != "":
		target = f.ComponentName
	}
	return &FindingData{
		Level:      levelText(f.Level),
		LevelClass: levelClass(f.Level),
		Type:       string(f.Type),
		Target:     target,
		Message:    f.Message,
	}
}

// Helper functions

// formatDuration formats a duration in a human-readable format.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1f秒", d.Seconds())
	}
	return fmt.Sprintf("%.1f分钟", d.Minutes())
}

// formatSize formats bytes to human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.2f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// levelText converts a finding severity to Chinese text.
func levelText(level model.Severity) string {
	switch level {
	case model.SeverityError:
		return "错误"
	case model.SeverityWarn:
		return "警告"
	default:
		return "未知"
	}
}

// levelClass returns the CSS class for a finding severity.
func levelClass(level model.Severity) string {
	switch level {
	case model.SeverityError:
		return "level-error"
	case model.SeverityWarn:
		return "level-warn"
	default:
		return ""
	}
}
