package advisor

import (
	"github.com/samber/lo"

	"stack-advisor/internal/model"
)

// ConfigWriter builds the recommended configuration tree of one request.
//
// A property the user edited in the current session keeps the user's live
// value instead of the computed one; recommenders never see the difference.
type ConfigWriter struct {
	tree    model.Configurations
	live    model.Configurations
	changed map[model.ConfigRef]struct{}
	forced  []model.ConfigRef
}

// NewConfigWriter creates a writer over an empty recommended tree.
func NewConfigWriter(live model.Configurations, changed []model.ChangedConfig) *ConfigWriter {
	set := make(map[model.ConfigRef]struct{}, len(changed))
	for _, c := range changed {
		set[c.Ref()] = struct{}{}
	}
	return &ConfigWriter{
		tree:    make(model.Configurations),
		live:    live,
		changed: set,
	}
}

func (w *ConfigWriter) configType(name string) *model.ConfigType {
	ct, ok := w.tree[name]
	if !ok || ct == nil {
		ct = &model.ConfigType{}
		w.tree[name] = ct
	}
	if ct.Properties == nil {
		ct.Properties = make(map[string]string)
	}
	return ct
}

// Put writes a property value. Ints are written in decimal, floats in
// their shortest form.
func (w *ConfigWriter) Put(configType, key string, value any) {
	ct := w.configType(configType)
	if _, edited := w.changed[model.ConfigRef{Type: configType, Name: key}]; edited {
		if v, ok := w.live.Get(configType, key); ok {
			ct.Properties[key] = v
			return
		}
	}
	ct.Properties[key] = formatValue(value)
}

// PutAttribute records attribute metadata (minimum, maximum, delete) for a property.
// A []string value is kept as a list; anything else is stored as a string.
func (w *ConfigWriter) PutAttribute(configType, key, attr string, value any) {
	ct := w.configType(configType)
	if ct.PropertyAttributes == nil {
		ct.PropertyAttributes = make(map[string]map[string]any)
	}
	attrs, ok := ct.PropertyAttributes[key]
	if !ok {
		attrs = make(map[string]any)
		ct.PropertyAttributes[key] = attrs
	}
	if list, isList := value.([]string); isList {
		attrs[attr] = append([]string(nil), list...)
		return
	}
	attrs[attr] = formatValue(value)
}

// Force appends a property to the forced re-apply list.
func (w *ConfigWriter) Force(refs ...model.ConfigRef) {
	for _, ref := range refs {
		if !lo.Contains(w.forced, ref) {
			w.forced = append(w.forced, ref)
		}
	}
}

// Get reads a value already written to the recommended tree.
func (w *ConfigWriter) Get(configType, key string) (string, bool) {
	return w.tree.Get(configType, key)
}

// Properties returns the recommended properties of a config type, or nil.
func (w *ConfigWriter) Properties(configType string) map[string]string {
	return w.tree.Properties(configType)
}

// Tree returns the recommended tree.
func (w *ConfigWriter) Tree() model.Configurations {
	return w.tree
}

// Forced returns the forced re-apply list in insertion order.
func (w *ConfigWriter) Forced() []model.ConfigRef {
	return w.forced
}
