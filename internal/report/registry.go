package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"stack-advisor/internal/report/excel"
	"stack-advisor/internal/report/html"
)

// Registry manages report writers for different formats.
type Registry struct {
	writers map[string]ReportWriter
}

// NewRegistry creates a registry with the Excel and HTML writers.
// If timezone is nil, defaults to Asia/Shanghai.
// htmlTemplatePath is optional; the embedded template is used when empty.
func NewRegistry(timezone *time.Location, htmlTemplatePath string) *Registry {
	if timezone == nil {
		timezone, _ = time.LoadLocation("Asia/Shanghai")
	}

	r := &Registry{
		writers: make(map[string]ReportWriter),
	}
	r.register(excel.NewWriter(timezone))
	r.register(html.NewWriter(timezone, htmlTemplatePath))
	return r
}

func (r *Registry) register(w ReportWriter) {
	r.writers[w.Format()] = w
}

// Get returns a writer for the specified format.
// Format names are case-insensitive.
func (r *Registry) Get(format string) (ReportWriter, error) {
	writer, ok := r.writers[normalizeFormat(format)]
	if !ok {
		return nil, fmt.Errorf("unsupported report format %q, supported formats: %s",
			format, strings.Join(r.GetAll(), ", "))
	}
	return writer, nil
}

// GetAll returns all supported format names in sorted order.
func (r *Registry) GetAll() []string {
	formats := make([]string, 0, len(r.writers))
	for format := range r.writers {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// Has checks if the specified format is supported.
func (r *Registry) Has(format string) bool {
	_, ok := r.writers[normalizeFormat(format)]
	return ok
}

func normalizeFormat(format string) string {
	return strings.ToLower(strings.TrimSpace(format))
}
