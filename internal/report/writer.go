// Package report renders advisor results to files.
// It defines the ReportWriter interface and a registry of the supported
// output formats (Excel, HTML).
package report

import (
	"stack-advisor/internal/model"
)

// ReportWriter writes an advisor report in one output format.
type ReportWriter interface {
	// Write renders the report to outputPath. The format's file extension
	// is appended when missing.
	Write(report *model.AdvisorReport, outputPath string) error

	// Format returns the format identifier, e.g. "excel" or "html".
	Format() string

	// Extension returns the file extension including the leading dot.
	Extension() string
}
