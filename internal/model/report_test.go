package model

import (
	"testing"
)

func testReportInputs() (*Request, *Recommendation, *ValidationResult) {
	req := &Request{
		Hosts: HostInventory{
			{HostName: "h1", CPUCount: 8, TotalMem: 8388608},
			{HostName: "h2", CPUCount: 4, TotalMem: 4194304},
		},
		Services: ServiceTopology{
			{Name: "YARN", Components: []Component{
				{Name: "NODEMANAGER", Hostnames: []string{"h1"}},
				{Name: "RESOURCEMANAGER", Hostnames: []string{"h1"}},
			}},
		},
		Configurations: Configurations{
			"yarn-site": {Properties: map[string]string{
				"yarn.nodemanager.resource.memory-mb":  "6144",
				"yarn.scheduler.minimum-allocation-mb": "1024",
			}},
		},
		ChangedConfigurations: []ChangedConfig{{Type: "yarn-site", Name: "yarn.nodemanager.resource.memory-mb"}},
	}
	rec := &Recommendation{
		Configurations: Configurations{
			"yarn-site": {Properties: map[string]string{
				"yarn.nodemanager.resource.memory-mb":  "6144",
				"yarn.scheduler.minimum-allocation-mb": "2048",
				"yarn.scheduler.maximum-allocation-mb": "6144",
			}},
			"core-site": {Properties: map[string]string{"hadoop.proxyuser.hdfs.hosts": "*"}},
		},
		ForcedConfigurations: []ConfigRef{{Type: "core-site", Name: "hadoop.proxyuser.hdfs.hosts"}},
	}
	findings := []*Finding{
		NewConfigFinding(SeverityWarn, "yarn-site", "yarn.scheduler.minimum-allocation-mb", "low"),
		NewHostFinding(SeverityError, "h2", "Host is not used"),
		nil,
		NewComponentFinding(SeverityError, "ZOOKEEPER_SERVER", "At least 3"),
		NewConfigFinding(SeverityWarn, "yarn-site", "yarn.scheduler.maximum-allocation-mb", "low"),
	}
	result := &ValidationResult{Findings: findings, Summary: NewFindingSummary(findings)}
	return req, rec, result
}

// ============================================================================
// AdvisorReport Tests
// ============================================================================

func TestNewAdvisorReport_Hosts(t *testing.T) {
	req, rec, result := testReportInputs()

	r := NewAdvisorReport("prod", req, rec, result)

	if r.Cluster != "prod" {
		t.Errorf("Cluster = %s, want prod", r.Cluster)
	}
	if len(r.Hosts) != 2 {
		t.Fatalf("expected 2 hosts, got %d", len(r.Hosts))
	}
	h1, h2 := r.Hosts[0], r.Hosts[1]
	if len(h1.Components) != 2 || h1.FindingCount != 0 {
		t.Errorf("h1 = %+v", h1)
	}
	if len(h2.Components) != 0 || h2.FindingCount != 1 {
		t.Errorf("h2 = %+v", h2)
	}
	if h2.TotalMemKB != 4194304 || h2.CPUCount != 4 {
		t.Errorf("h2 sizing = %+v", h2)
	}
}

func TestAdvisorReport_Summary(t *testing.T) {
	req, rec, result := testReportInputs()

	summary := NewAdvisorReport("prod", req, rec, result).Summary()
	if summary.Total != 4 || summary.ErrorCount != 2 || summary.WarnCount != 2 {
		t.Errorf("Summary() = %+v", summary)
	}

	empty := NewAdvisorReport("prod", req, rec, nil).Summary()
	if empty == nil || empty.Total != 0 {
		t.Errorf("Summary() without validation = %+v", empty)
	}
}

func TestAdvisorReport_Findings(t *testing.T) {
	req, rec, result := testReportInputs()

	findings := NewAdvisorReport("prod", req, rec, result).Findings()

	if len(findings) != 4 {
		t.Fatalf("expected 4 findings, got %d", len(findings))
	}
	expected := []string{"h2", "ZOOKEEPER_SERVER", "yarn.scheduler.minimum-allocation-mb", "yarn.scheduler.maximum-allocation-mb"}
	for i, f := range findings {
		target := f.Host + f.ComponentName + f.ConfigName
		if target != expected[i] {
			t.Errorf("findings[%d] = %s, want %s", i, target, expected[i])
		}
	}

	// sorting must not reorder the validation result
	if result.Findings[0].Level != SeverityWarn {
		t.Error("Findings() modified the validation result")
	}

	if NewAdvisorReport("prod", req, rec, nil).Findings() != nil {
		t.Error("Findings() without validation should be nil")
	}
}

func TestAdvisorReport_PropertyRows(t *testing.T) {
	req, rec, result := testReportInputs()

	rows := NewAdvisorReport("prod", req, rec, result).PropertyRows()

	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}

	tests := []struct {
		configType string
		name       string
		differs    bool
		changed    bool
		forced     bool
	}{
		{"core-site", "hadoop.proxyuser.hdfs.hosts", true, false, true},
		{"yarn-site", "yarn.nodemanager.resource.memory-mb", false, true, false},
		{"yarn-site", "yarn.scheduler.maximum-allocation-mb", true, false, false},
		{"yarn-site", "yarn.scheduler.minimum-allocation-mb", true, false, false},
	}
	for i, tt := range tests {
		row := rows[i]
		if row.ConfigType != tt.configType || row.Name != tt.name {
			t.Errorf("rows[%d] = %s/%s, want %s/%s", i, row.ConfigType, row.Name, tt.configType, tt.name)
			continue
		}
		if row.Differs() != tt.differs || row.Changed != tt.changed || row.Forced != tt.forced {
			t.Errorf("rows[%d] = %+v", i, row)
		}
	}

	if rows[3].Current != "1024" || !rows[3].HasCurrent || rows[3].Recommended != "2048" {
		t.Errorf("rows[3] values = %+v", rows[3])
	}
	if rows[0].HasCurrent {
		t.Error("core-site has no live value")
	}
}

func TestNewAdvisorReport_NilRequest(t *testing.T) {
	r := NewAdvisorReport("c1", nil, nil, nil)

	if r.Hosts != nil || r.PropertyRows() != nil || r.Findings() != nil {
		t.Errorf("unexpected content in empty report: %+v", r)
	}
	if r.Summary().Total != 0 {
		t.Error("Summary() of empty report should be zero")
	}
}
