package advisor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"stack-advisor/internal/model"
)

// Components that alone do not make a host useful.
var notValuableComponents = []string{"JOURNALNODE", "ZKFC", "GANGLIA_MONITOR"}

// cardinality is a parsed host count constraint.
type cardinality struct {
	min, max int
	kind     byte // '+', '-', '=' or 'A'
}

// parseCardinality understands "N", "N+", "N-M" and "ALL".
func parseCardinality(s string) (cardinality, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "ALL":
		return cardinality{kind: 'A'}, nil
	case strings.Contains(s, "+"):
		n, err := strconv.Atoi(strings.TrimSuffix(s, "+"))
		if err != nil {
			return cardinality{}, fmt.Errorf("invalid cardinality %q: %w", s, err)
		}
		return cardinality{min: n, kind: '+'}, nil
	case strings.Contains(s, "-"):
		first, last, _ := strings.Cut(s, "-")
		n, err := strconv.Atoi(first)
		if err != nil {
			return cardinality{}, fmt.Errorf("invalid cardinality %q: %w", s, err)
		}
		m, err := strconv.Atoi(last)
		if err != nil {
			return cardinality{}, fmt.Errorf("invalid cardinality %q: %w", s, err)
		}
		return cardinality{min: n, max: m, kind: '-'}, nil
	default:
		n, err := strconv.Atoi(s)
		if err != nil {
			return cardinality{}, fmt.Errorf("invalid cardinality %q: %w", s, err)
		}
		return cardinality{min: n, max: n, kind: '='}, nil
	}
}

// violation returns the finding message when count hosts break the
// constraint, or "".
func (c cardinality) violation(count, clusterHosts int, label string) string {
	switch c.kind {
	case '+':
		if count < c.min {
			return fmt.Sprintf("At least %d %s components should be installed in cluster.", c.min, label)
		}
	case '-':
		if count < c.min || count > c.max {
			return fmt.Sprintf("Between %d and %d %s components should be installed in cluster.", c.min, c.max, label)
		}
	case 'A':
		if count != clusterHosts {
			return fmt.Sprintf("%s component should be installed on all hosts in cluster.", label)
		}
	default:
		if count != c.min {
			return fmt.Sprintf("Exactly %d %s components should be installed in cluster.", c.min, label)
		}
	}
	return ""
}

// validateTopology checks component cardinalities and flags hosts that run
// nothing of value.
func (a *Advisor) validateTopology(req *model.Request) []*model.Finding {
	var findings []*model.Finding
	components := req.Services.Components()

	for _, comp := range components {
		if comp.Cardinality == "" {
			continue
		}
		card, err := parseCardinality(comp.Cardinality)
		if err != nil {
			a.logger.Warn().Err(err).Str("component", comp.Name).Msg("skipping component with malformed cardinality")
			continue
		}
		if msg := card.violation(len(comp.Hostnames), len(req.Hosts), comp.Label()); msg != "" {
			findings = append(findings, model.NewComponentFinding(model.SeverityError, comp.Name, msg))
		}
	}

	used := lo.FlatMap(components, func(c *model.Component, _ int) []string {
		if lo.Contains(notValuableComponents, c.Name) {
			return nil
		}
		return c.Hostnames
	})
	for _, name := range req.Hosts.Names() {
		if !lo.Contains(used, name) {
			findings = append(findings, model.NewHostFinding(model.SeverityError, name, "Host is not used"))
		}
	}
	return findings
}
