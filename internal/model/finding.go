package model

// Severity represents the level of a validation finding.
type Severity string

const (
	SeverityWarn  Severity = "WARN"  // 警告
	SeverityError Severity = "ERROR" // 错误
)

// FindingType tells what a finding is about.
type FindingType string

const (
	FindingConfiguration FindingType = "configuration"
	FindingHostComponent FindingType = "host-component"
)

// Finding is a single validation result.
type Finding struct {
	Type          FindingType `json:"type"`
	Level         Severity    `json:"level"`
	Message       string      `json:"message"`
	ConfigType    string      `json:"config-type,omitempty"`    // 配置文件类型
	ConfigName    string      `json:"config-name,omitempty"`    // 属性名
	ComponentName string      `json:"component-name,omitempty"` // 组件名
	Host          string      `json:"host,omitempty"`           // 主机名
}

// NewConfigFinding creates a finding about a configuration property.
func NewConfigFinding(level Severity, configType, name, message string) *Finding {
	return &Finding{
		Type:       FindingConfiguration,
		Level:      level,
		Message:    message,
		ConfigType: configType,
		ConfigName: name,
	}
}

// NewComponentFinding creates a placement finding about a component.
func NewComponentFinding(level Severity, component, message string) *Finding {
	return &Finding{
		Type:          FindingHostComponent,
		Level:         level,
		Message:       message,
		ComponentName: component,
	}
}

// NewHostFinding creates a placement finding about a host.
func NewHostFinding(level Severity, host, message string) *Finding {
	return &Finding{
		Type:    FindingHostComponent,
		Level:   level,
		Message: message,
		Host:    host,
	}
}

// IsWarning returns true if this finding is at WARN level.
func (f *Finding) IsWarning() bool {
	return f.Level == SeverityWarn
}

// IsError returns true if this finding is at ERROR level.
func (f *Finding) IsError() bool {
	return f.Level == SeverityError
}

// FindingSummary provides aggregated finding statistics.
type FindingSummary struct {
	Total      int `json:"total"`       // 问题总数
	WarnCount  int `json:"warn_count"`  // 警告数量
	ErrorCount int `json:"error_count"` // 错误数量
}

// NewFindingSummary creates a FindingSummary from a list of findings.
func NewFindingSummary(findings []*Finding) *FindingSummary {
	summary := &FindingSummary{}
	for _, f := range findings {
		if f == nil {
			continue
		}
		summary.Total++
		switch f.Level {
		case SeverityWarn:
			summary.WarnCount++
		case SeverityError:
			summary.ErrorCount++
		}
	}
	return summary
}
