package model

import (
	"sort"

	"github.com/samber/lo"
)

// Property attribute names understood by the advisor.
const (
	AttrMinimum = "minimum"
	AttrMaximum = "maximum"
	AttrDelete  = "delete"
)

// ConfigType holds the properties of one configuration file (e.g. "yarn-site")
// and the per-property attribute metadata.
//
// Attribute values are either a string or a []string.
type ConfigType struct {
	Properties         map[string]string         `json:"properties" yaml:"properties"`
	PropertyAttributes map[string]map[string]any `json:"property_attributes,omitempty" yaml:"property_attributes,omitempty"`
}

// Configurations maps a configuration type to its contents.
type Configurations map[string]*ConfigType

// Properties returns the properties of the config type, or nil when absent.
func (c Configurations) Properties(configType string) map[string]string {
	if ct, ok := c[configType]; ok && ct != nil {
		return ct.Properties
	}
	return nil
}

// Has reports whether the config type exists with a non-nil property map.
func (c Configurations) Has(configType string) bool {
	return c.Properties(configType) != nil
}

// Get returns a single property value.
func (c Configurations) Get(configType, name string) (string, bool) {
	props := c.Properties(configType)
	if props == nil {
		return "", false
	}
	v, ok := props[name]
	return v, ok
}

// Attributes returns the attribute map of the config type, or nil.
func (c Configurations) Attributes(configType string) map[string]map[string]any {
	if ct, ok := c[configType]; ok && ct != nil {
		return ct.PropertyAttributes
	}
	return nil
}

// Types returns the config types in sorted order.
func (c Configurations) Types() []string {
	types := lo.Keys(c)
	sort.Strings(types)
	return types
}

// ConfigRef identifies a single property.
type ConfigRef struct {
	Type string `json:"type" yaml:"type" validate:"required"`
	Name string `json:"name" yaml:"name" validate:"required"`
}

// ChangedConfig is a property the user edited in the current session.
type ChangedConfig struct {
	Type     string  `json:"type" yaml:"type" validate:"required"`
	Name     string  `json:"name" yaml:"name" validate:"required"`
	OldValue *string `json:"old_value,omitempty" yaml:"old_value,omitempty"`
}

// Ref returns the property reference of the change.
func (c ChangedConfig) Ref() ConfigRef {
	return ConfigRef{Type: c.Type, Name: c.Name}
}
