package model

import "github.com/samber/lo"

// ComponentCategory classifies a component's role.
type ComponentCategory string

const (
	CategoryMaster ComponentCategory = "MASTER"
	CategorySlave  ComponentCategory = "SLAVE"
	CategoryClient ComponentCategory = "CLIENT"
)

// Component is a deployable role of a service and the hosts it is assigned to.
type Component struct {
	Name        string            `json:"component_name" yaml:"component_name" validate:"required"`
	DisplayName string            `json:"display_name" yaml:"display_name"`
	Cardinality string            `json:"cardinality" yaml:"cardinality"` // N, N+, N-M, ALL
	Category    ComponentCategory `json:"component_category" yaml:"component_category"`
	Hostnames   []string          `json:"hostnames" yaml:"hostnames"`
}

// Label returns the display name, falling back to the component name.
func (c *Component) Label() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.Name
}

// IsMaster reports whether the component is master-class.
func (c *Component) IsMaster() bool {
	return c.Category == CategoryMaster
}

// Service is an installed (or to-be-installed) service.
type Service struct {
	Name       string      `json:"service_name" yaml:"service_name" validate:"required"`
	Version    string      `json:"service_version" yaml:"service_version"`
	Components []Component `json:"components" yaml:"components" validate:"dive"`
}

// Component returns the named component of the service.
func (s *Service) Component(name string) (*Component, bool) {
	for i := range s.Components {
		if s.Components[i].Name == name {
			return &s.Components[i], true
		}
	}
	return nil, false
}

// ServiceTopology is the ordered list of services requested for a cluster.
type ServiceTopology []Service

// Names returns service names in request order.
func (t ServiceTopology) Names() []string {
	return lo.Map(t, func(s Service, _ int) string { return s.Name })
}

// Installed reports whether the named service is part of the topology.
func (t ServiceTopology) Installed(name string) bool {
	return lo.Contains(t.Names(), name)
}

// Find returns the named service.
func (t ServiceTopology) Find(name string) (*Service, bool) {
	for i := range t {
		if t[i].Name == name {
			return &t[i], true
		}
	}
	return nil, false
}

// ComponentHosts returns the hostnames assigned to service/component, or nil.
func (t ServiceTopology) ComponentHosts(service, component string) []string {
	svc, ok := t.Find(service)
	if !ok {
		return nil
	}
	comp, ok := svc.Component(component)
	if !ok {
		return nil
	}
	return comp.Hostnames
}

// Components returns every component of every service in request order.
func (t ServiceTopology) Components() []*Component {
	var comps []*Component
	for i := range t {
		for j := range t[i].Components {
			comps = append(comps, &t[i].Components[j])
		}
	}
	return comps
}

// HostComponents returns the names of all components placed on the host.
func (t ServiceTopology) HostComponents(host string) []string {
	return lo.FilterMap(t.Components(), func(c *Component, _ int) (string, bool) {
		return c.Name, lo.Contains(c.Hostnames, host)
	})
}

// HostMasterComponents returns the master-class components placed on the host.
func (t ServiceTopology) HostMasterComponents(host string) []string {
	return lo.FilterMap(t.Components(), func(c *Component, _ int) (string, bool) {
		return c.Name, c.IsMaster() && lo.Contains(c.Hostnames, host)
	})
}
