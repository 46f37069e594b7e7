package model

import (
	"strings"
	"testing"

	"go.uber.org/multierr"
)

func validRequest() *Request {
	return &Request{
		Hosts: HostInventory{
			{HostName: "h1", CPUCount: 8, TotalMem: 8388608, DiskInfo: []DiskInfo{{Mountpoint: "/"}}},
			{HostName: "h2", CPUCount: 8, TotalMem: 8388608},
		},
		Services: ServiceTopology{
			{Name: "HDFS", Components: []Component{{Name: "NAMENODE", Cardinality: "1", Hostnames: []string{"h1"}}}},
		},
		Configurations: Configurations{
			"hadoop-env": {Properties: map[string]string{"hdfs_user": "hdfs"}},
		},
	}
}

// ============================================================================
// Request Validation Tests
// ============================================================================

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Request)
		wantErr []string
	}{
		{
			name:   "valid",
			mutate: func(r *Request) {},
		},
		{
			name:    "duplicate host",
			mutate:  func(r *Request) { r.Hosts[1].HostName = "h1" },
			wantErr: []string{`duplicate host "h1"`},
		},
		{
			name: "duplicate service",
			mutate: func(r *Request) {
				r.Services = append(r.Services, Service{Name: "HDFS"})
			},
			wantErr: []string{`duplicate service "HDFS"`},
		},
		{
			name: "unknown host",
			mutate: func(r *Request) {
				r.Services[0].Components[0].Hostnames = []string{"ghost"}
			},
			wantErr: []string{`component HDFS/NAMENODE is assigned to unknown host "ghost"`},
		},
		{
			name:    "nil configuration",
			mutate:  func(r *Request) { r.Configurations["hdfs-site"] = nil },
			wantErr: []string{`configuration "hdfs-site" is empty`},
		},
		{
			name:    "missing host name",
			mutate:  func(r *Request) { r.Hosts[1].HostName = "" },
			wantErr: []string{"HostName", `"required"`},
		},
		{
			name:    "negative memory",
			mutate:  func(r *Request) { r.Hosts[0].TotalMem = -1 },
			wantErr: []string{"TotalMem", `"gte"`},
		},
		{
			name:    "missing mountpoint",
			mutate:  func(r *Request) { r.Hosts[0].DiskInfo[0].Mountpoint = "" },
			wantErr: []string{"Mountpoint"},
		},
		{
			name: "changed config without name",
			mutate: func(r *Request) {
				r.ChangedConfigurations = []ChangedConfig{{Type: "hadoop-env"}}
			},
			wantErr: []string{"ChangedConfigurations[0].Name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			tt.mutate(r)

			err := r.Validate()
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q does not contain %q", err.Error(), want)
				}
			}
		})
	}
}

func TestRequest_ValidateReportsAllProblems(t *testing.T) {
	r := validRequest()
	r.Hosts[1].HostName = "h1"
	r.Services[0].Components[0].Hostnames = []string{"ghost"}
	r.Configurations["hdfs-site"] = nil

	err := r.Validate()
	if got := len(multierr.Errors(err)); got != 3 {
		t.Errorf("expected 3 errors, got %d: %v", got, err)
	}
}

func TestRequest_ChangedConfigurations(t *testing.T) {
	old := "hadoop"
	r := validRequest()
	r.ChangedConfigurations = []ChangedConfig{
		{Type: "hadoop-env", Name: "hdfs_user", OldValue: &old},
		{Type: "yarn-site", Name: "yarn.nodemanager.resource.memory-mb"},
	}

	if v, ok := r.ChangedOldValue("hadoop-env", "hdfs_user"); !ok || v != "hadoop" {
		t.Errorf("ChangedOldValue() = %q, %v", v, ok)
	}
	if _, ok := r.ChangedOldValue("yarn-site", "yarn.nodemanager.resource.memory-mb"); ok {
		t.Error("ChangedOldValue() without an old value should fail")
	}
	if _, ok := r.ChangedOldValue("hadoop-env", "proxyuser_group"); ok {
		t.Error("ChangedOldValue() of an unchanged property should fail")
	}
}

// ============================================================================
// Configurations Tests
// ============================================================================

func TestConfigurations_Accessors(t *testing.T) {
	c := Configurations{
		"yarn-site": {Properties: map[string]string{"a": "1"}, PropertyAttributes: map[string]map[string]any{
			"a": {AttrMaximum: "2"},
		}},
		"empty-site": {},
		"nil-site":   nil,
	}

	if v, ok := c.Get("yarn-site", "a"); !ok || v != "1" {
		t.Errorf("Get(yarn-site, a) = %q, %v", v, ok)
	}
	if _, ok := c.Get("nil-site", "a"); ok {
		t.Error("Get on a nil config type should fail")
	}
	if !c.Has("yarn-site") || c.Has("empty-site") || c.Has("nil-site") || c.Has("missing") {
		t.Error("Has() mismatch")
	}
	if c.Attributes("yarn-site")["a"][AttrMaximum] != "2" {
		t.Error("Attributes() mismatch")
	}

	types := c.Types()
	if strings.Join(types, ",") != "empty-site,nil-site,yarn-site" {
		t.Errorf("Types() = %v", types)
	}
}
