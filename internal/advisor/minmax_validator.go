package advisor

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"stack-advisor/internal/model"
)

// validateMinMax sweeps every live property that carries a recommended
// minimum or maximum attribute.
func validateMinMax(live, recommended model.Configurations) []*model.Finding {
	var findings []*model.Finding
	for _, configType := range live.Types() {
		props := live.Properties(configType)
		attrs := recommended.Attributes(configType)
		if props == nil || attrs == nil {
			continue
		}
		recProps := recommended.Properties(configType)
		s := newSiteFindings(configType)

		names := lo.Keys(attrs)
		sort.Strings(names)
		for _, name := range names {
			value, ok := props[name]
			if !ok {
				continue
			}
			if _, ok := recProps[name]; !ok {
				continue
			}
			maxBound, hasMax := attrs[name][model.AttrMaximum].(string)
			minBound, hasMin := attrs[name][model.AttrMinimum].(string)
			if !hasMax && !hasMin {
				continue
			}
			v, ok := parseNumber(value)
			if !ok {
				s.add(name, errorItem("Value should be a number"))
				continue
			}
			if hasMax {
				s.add(name, compareBound(v, maxBound, func(v, b float64) bool { return v > b },
					"Value is greater than the recommended maximum of %s "))
			}
			if hasMin {
				s.add(name, compareBound(v, minBound, func(v, b float64) bool { return v < b },
					"Value is less than the recommended minimum of %s "))
			}
		}
		findings = append(findings, s.findings...)
	}
	return findings
}

func compareBound(value float64, bound string, violates func(v, b float64) bool, format string) *item {
	b, ok := parseNumber(bound)
	if !ok {
		return errorItem("Value should be a number")
	}
	if violates(value, b) {
		return warnItem(fmt.Sprintf(format, formatValue(b)))
	}
	return nil
}
