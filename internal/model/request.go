package model

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/multierr"
)

// Request is everything the advisor needs for one recommendation or validation run.
// It is validated once at ingestion and treated as read-only afterwards.
type Request struct {
	Hosts                 HostInventory     `json:"hosts" yaml:"hosts" validate:"dive"`
	Services              ServiceTopology   `json:"services" yaml:"services" validate:"dive"`
	Configurations        Configurations    `json:"configurations" yaml:"configurations"`
	ChangedConfigurations []ChangedConfig   `json:"changed_configurations,omitempty" yaml:"changed_configurations,omitempty" validate:"dive"`
	ServerProperties      map[string]string `json:"server_properties,omitempty" yaml:"server_properties,omitempty"` // 身份认证服务配置
}

// Recommendation is the output of a recommendation run.
type Recommendation struct {
	Configurations       Configurations  `json:"configurations"`
	ForcedConfigurations []ConfigRef     `json:"forced_configurations,omitempty"`
	Profile              *ClusterProfile `json:"profile"`
}

// ValidationResult is the output of a validation run.
type ValidationResult struct {
	Findings []*Finding      `json:"items"`
	Summary  *FindingSummary `json:"summary"`
}

var requestValidate = validator.New()

// Validate checks the payload structurally and semantically.
// All problems are reported together.
func (r *Request) Validate() error {
	var err error

	if verr := requestValidate.Struct(r); verr != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(verr, &fieldErrors) {
			for _, fe := range fieldErrors {
				err = multierr.Append(err, fmt.Errorf("%s: failed on %q", fe.Namespace(), fe.Tag()))
			}
		} else {
			err = multierr.Append(err, verr)
		}
	}

	hostNames := r.Hosts.Names()
	for _, dup := range lo.FindDuplicates(hostNames) {
		err = multierr.Append(err, fmt.Errorf("duplicate host %q", dup))
	}
	for _, dup := range lo.FindDuplicates(r.Services.Names()) {
		err = multierr.Append(err, fmt.Errorf("duplicate service %q", dup))
	}

	for _, svc := range r.Services {
		for _, comp := range svc.Components {
			for _, h := range comp.Hostnames {
				if !lo.Contains(hostNames, h) {
					err = multierr.Append(err, fmt.Errorf("component %s/%s is assigned to unknown host %q", svc.Name, comp.Name, h))
				}
			}
		}
	}

	for name, ct := range r.Configurations {
		if ct == nil {
			err = multierr.Append(err, fmt.Errorf("configuration %q is empty", name))
		}
	}

	return err
}

// ChangedOldValue returns the old value recorded for an edited property.
func (r *Request) ChangedOldValue(configType, name string) (string, bool) {
	c, ok := r.changed(configType, name)
	if !ok || c.OldValue == nil {
		return "", false
	}
	return *c.OldValue, true
}

func (r *Request) changed(configType, name string) (ChangedConfig, bool) {
	return lo.Find(r.ChangedConfigurations, func(c ChangedConfig) bool {
		return c.Type == configType && c.Name == name
	})
}
