// Package excel provides Excel report generation for the advisor.
// It implements the report.ReportWriter interface to generate .xlsx files
// with the cluster profile, the findings and the recommended configuration.
package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"stack-advisor/internal/model"
)

const (
	// Sheet names
	sheetSummary         = "概览"
	sheetFindings        = "问题列表"
	sheetRecommendations = "推荐配置"
	sheetHosts           = "主机列表"

	// Default sheet to remove
	defaultSheet = "Sheet1"

	// Colors for conditional formatting (RGB without #)
	colorWarningBg  = "FFEB9C" // Yellow background for warning
	colorWarningFg  = "9C6500" // Dark yellow text for warning
	colorCriticalBg = "FFC7CE" // Red background for error
	colorCriticalFg = "9C0006" // Dark red text for error
	colorHeaderBg   = "4472C4" // Blue background for header
	colorHeaderFg   = "FFFFFF" // White text for header
	colorNormalBg   = "C6EFCE" // Green background for matching values
	colorNormalFg   = "006100" // Dark green text for matching values

	// Column widths
	defaultColWidth = 15.0
	wideColWidth    = 40.0
	narrowColWidth  = 10.0
)

// Writer implements report.ReportWriter for Excel format.
type Writer struct {
	timezone *time.Location
}

// NewWriter creates a new Excel report writer.
// If timezone is nil, it defaults to Asia/Shanghai.
func NewWriter(timezone *time.Location) *Writer {
	if timezone == nil {
		timezone, _ = time.LoadLocation("Asia/Shanghai")
	}
	return &Writer{
		timezone: timezone,
	}
}

// Format returns the format identifier for this writer.
func (w *Writer) Format() string {
	return "excel"
}

// Extension returns the file extension of the generated files.
func (w *Writer) Extension() string {
	return ".xlsx"
}

// Write generates an Excel report.
func (w *Writer) Write(report *model.AdvisorReport, outputPath string) error {
	if report == nil {
		return fmt.Errorf("advisor report is nil")
	}

	if !strings.HasSuffix(strings.ToLower(outputPath), w.Extension()) {
		outputPath = outputPath + w.Extension()
	}

	f := excelize.NewFile()
	defer f.Close()

	styles, err := w.createStyles(f)
	if err != nil {
		return fmt.Errorf("failed to create styles: %w", err)
	}

	if err := w.createSummarySheet(f, report); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := w.createFindingsSheet(f, report, styles); err != nil {
		return fmt.Errorf("failed to create findings sheet: %w", err)
	}
	if err := w.createRecommendationsSheet(f, report, styles); err != nil {
		return fmt.Errorf("failed to create recommendations sheet: %w", err)
	}
	if err := w.createHostsSheet(f, report, styles); err != nil {
		return fmt.Errorf("failed to create hosts sheet: %w", err)
	}

	// Sheet1 only exists in a fresh workbook; a failed delete is harmless.
	_ = f.DeleteSheet(defaultSheet)

	idx, _ := f.GetSheetIndex(sheetSummary)
	f.SetActiveSheet(idx)

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

// =============================================================================
// Sheets
// =============================================================================

// createSummarySheet writes the run metadata, the finding counts and the
// cluster profile.
func (w *Writer) createSummarySheet(f *excelize.File, report *model.AdvisorReport) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 18,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	labelStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Size:  12,
			Color: colorHeaderFg,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{colorHeaderBg},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	valueStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Size: 12,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	f.SetColWidth(sheetSummary, "A", "A", 24)
	f.SetColWidth(sheetSummary, "B", "B", 30)

	f.MergeCell(sheetSummary, "A1", "B1")
	f.SetCellValue(sheetSummary, "A1", "集群配置建议报告")
	f.SetCellStyle(sheetSummary, "A1", "B1", titleStyle)
	f.SetRowHeight(sheetSummary, 1, 30)

	summary := report.Summary()
	rows := []struct {
		label string
		value interface{}
	}{
		{"集群", report.Cluster},
		{"生成时间", report.GeneratedAt.In(w.timezone).Format("2006-01-02 15:04:05")},
		{"耗时", formatDuration(report.Duration)},
		{"主机数量", len(report.Hosts)},
		{"问题总数", summary.Total},
		{"错误", summary.ErrorCount},
		{"警告", summary.WarnCount},
	}

	if rec := report.Recommendation; rec != nil && rec.Profile != nil {
		p := rec.Profile
		rows = append(rows, []struct {
			label string
			value interface{}
		}{
			{"参考主机 CPU", p.CPU},
			{"参考主机内存 (GB)", p.RAMGB},
			{"参考主机磁盘数", p.DiskCount},
			{"系统预留内存 (GB)", p.ReservedRAMGB},
			{"HBase 预留内存 (GB)", p.StorageRAMGB},
			{"可用内存 (MB)", p.TotalAvailableRAMMB},
			{"容器数量", p.Containers},
			{"单容器内存 (MB)", p.RAMPerContainerMB},
			{"画像指纹", p.Fingerprint()},
		}...)
	}

	if report.Version != "" {
		rows = append(rows, struct {
			label string
			value interface{}
		}{"工具版本", report.Version})
	}

	for i, row := range rows {
		r := i + 2
		labelCell := fmt.Sprintf("A%d", r)
		valueCell := fmt.Sprintf("B%d", r)
		f.SetCellValue(sheetSummary, labelCell, row.label)
		f.SetCellValue(sheetSummary, valueCell, row.value)
		f.SetCellStyle(sheetSummary, labelCell, labelCell, labelStyle)
		f.SetCellStyle(sheetSummary, valueCell, valueCell, valueStyle)
	}
	return nil
}

// createFindingsSheet lists the findings, errors first.
func (w *Writer) createFindingsSheet(f *excelize.File, report *model.AdvisorReport, styles *sheetStyles) error {
	if _, err := f.NewSheet(sheetFindings); err != nil {
		return err
	}

	headers := []string{"级别", "类型", "配置文件", "属性", "组件", "主机", "说明"}
	widths := []float64{narrowColWidth, defaultColWidth, defaultColWidth + 5, wideColWidth, defaultColWidth + 5, defaultColWidth + 5, wideColWidth + 30}
	w.writeHeader(f, sheetFindings, headers, widths, styles.header)

	for i, finding := range report.Findings() {
		row := i + 2
		values := []interface{}{
			levelText(finding.Level),
			findingTypeText(finding.Type),
			finding.ConfigType,
			finding.ConfigName,
			finding.ComponentName,
			finding.Host,
			finding.Message,
		}
		for col, v := range values {
			cell := fmt.Sprintf("%s%d", columnName(col+1), row)
			f.SetCellValue(sheetFindings, cell, v)
		}

		levelCell := fmt.Sprintf("A%d", row)
		if style := styles.forLevel(finding.Level); style > 0 {
			f.SetCellStyle(sheetFindings, levelCell, levelCell, style)
		}
	}
	return nil
}

// createRecommendationsSheet lists every recommended property next to its
// live value. Matching values are green, differing values yellow.
func (w *Writer) createRecommendationsSheet(f *excelize.File, report *model.AdvisorReport, styles *sheetStyles) error {
	if _, err := f.NewSheet(sheetRecommendations); err != nil {
		return err
	}

	headers := []string{"配置文件", "属性", "推荐值", "当前值", "用户修改", "重新下发"}
	widths := []float64{defaultColWidth + 5, wideColWidth + 10, wideColWidth, wideColWidth, narrowColWidth, narrowColWidth}
	w.writeHeader(f, sheetRecommendations, headers, widths, styles.header)

	for i, p := range report.PropertyRows() {
		row := i + 2
		current := p.Current
		if !p.HasCurrent {
			current = "N/A"
		}
		values := []interface{}{
			p.ConfigType,
			p.Name,
			p.Recommended,
			current,
			yesNo(p.Changed),
			yesNo(p.Forced),
		}
		for col, v := range values {
			cell := fmt.Sprintf("%s%d", columnName(col+1), row)
			f.SetCellValue(sheetRecommendations, cell, v)
		}

		currentCell := fmt.Sprintf("D%d", row)
		style := styles.normal
		if p.Differs() {
			style = styles.warning
		}
		f.SetCellStyle(sheetRecommendations, currentCell, currentCell, style)
	}
	return nil
}

// createHostsSheet lists the hosts with their components.
func (w *Writer) createHostsSheet(f *excelize.File, report *model.AdvisorReport, styles *sheetStyles) error {
	if _, err := f.NewSheet(sheetHosts); err != nil {
		return err
	}

	headers := []string{"主机名", "CPU", "内存", "组件", "问题数"}
	widths := []float64{wideColWidth - 10, narrowColWidth, defaultColWidth, wideColWidth + 40, narrowColWidth}
	w.writeHeader(f, sheetHosts, headers, widths, styles.header)

	for i, h := range report.Hosts {
		row := i + 2
		values := []interface{}{
			h.HostName,
			h.CPUCount,
			formatSize(h.TotalMemKB * 1024),
			strings.Join(h.Components, ", "),
			h.FindingCount,
		}
		for col, v := range values {
			cell := fmt.Sprintf("%s%d", columnName(col+1), row)
			f.SetCellValue(sheetHosts, cell, v)
		}
		if h.FindingCount > 0 {
			cell := fmt.Sprintf("E%d", row)
			f.SetCellStyle(sheetHosts, cell, cell, styles.critical)
		}
	}
	return nil
}

// writeHeader writes a styled header row, sets the column widths and
// freezes the first row.
func (w *Writer) writeHeader(f *excelize.File, sheet string, headers []string, widths []float64, style int) {
	for i, header := range headers {
		col := columnName(i + 1)
		f.SetCellValue(sheet, col+"1", header)
		f.SetCellStyle(sheet, col+"1", col+"1", style)
		if i < len(widths) {
			f.SetColWidth(sheet, col, col, widths[i])
		}
	}

	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// =============================================================================
// Styles
// =============================================================================

type sheetStyles struct {
	header   int
	warning  int
	critical int
	normal   int
}

func (s *sheetStyles) forLevel(level model.Severity) int {
	switch level {
	case model.SeverityError:
		return s.critical
	case model.SeverityWarn:
		return s.warning
	default:
		return 0
	}
}

func (w *Writer) createStyles(f *excelize.File) (*sheetStyles, error) {
	header, err := w.createHeaderStyle(f)
	if err != nil {
		return nil, err
	}
	warning, err := w.createFillStyle(f, colorWarningFg, colorWarningBg)
	if err != nil {
		return nil, err
	}
	critical, err := w.createFillStyle(f, colorCriticalFg, colorCriticalBg)
	if err != nil {
		return nil, err
	}
	normal, err := w.createFillStyle(f, colorNormalFg, colorNormalBg)
	if err != nil {
		return nil, err
	}
	return &sheetStyles{header: header, warning: warning, critical: critical, normal: normal}, nil
}

func (w *Writer) createHeaderStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Size:  11,
			Color: colorHeaderFg,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{colorHeaderBg},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

func (w *Writer) createFillStyle(f *excelize.File, fg, bg string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Color: fg,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{bg},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

// =============================================================================
// Helper functions
// =============================================================================

// columnName converts a 1-based column index to Excel column name (A, B, ..., Z, AA, AB, ...).
func columnName(index int) string {
	result := ""
	for index > 0 {
		index--
		result = string(rune('A'+index%26)) + result
		index /= 26
	}
	return result
}

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

// formatSize formats bytes into a human-readable string.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)
	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/float64(TB))
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	default:
		return fmt.Sprintf("%d KB", bytes/KB)
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

func findingTypeText(t model.FindingType) string {
	switch t {
	case model.FindingConfiguration:
		return "配置"
	case model.FindingHostComponent:
		return "组件布局"
	default:
		return string(t)
	}
}

func yesNo(b bool) string {
	if b {
		return "是"
	}
	return ""
}
