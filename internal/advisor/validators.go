package advisor

import (
	"fmt"
	"strings"

	"stack-advisor/internal/model"
)

// item is the outcome of one check on one property.
type item struct {
	level   model.Severity
	message string
}

func warnItem(msg string) *item  { return &item{level: model.SeverityWarn, message: msg} }
func errorItem(msg string) *item { return &item{level: model.SeverityError, message: msg} }

// siteFindings collects findings of one config type.
type siteFindings struct {
	configType string
	findings   []*model.Finding
}

func newSiteFindings(configType string) *siteFindings {
	return &siteFindings{configType: configType}
}

func (s *siteFindings) add(name string, it *item) {
	if it == nil {
		return
	}
	s.findings = append(s.findings, model.NewConfigFinding(it.level, s.configType, name, it.message))
}

// ============================================================================
// Primitive checks
// ============================================================================

// belowRecommended warns when the live numeric value is below the recommendation.
func belowRecommended(props, recommended map[string]string, name string) *item {
	def, ok := recommended[name]
	if !ok {
		return nil
	}
	raw, ok := props[name]
	if !ok {
		return errorItem("Value should be set")
	}
	value, ok := toNumber(raw)
	if !ok {
		return errorItem("Value should be integer")
	}
	defValue, ok := toNumber(def)
	if !ok {
		return nil
	}
	if value < defValue {
		return warnItem(fmt.Sprintf("Value is less than the recommended default of %d", defValue))
	}
	return nil
}

// equalsPeer warns when two properties (possibly in different files) differ.
func equalsPeer(props1 map[string]string, name1 string, props2 map[string]string, name2 string) *item {
	v1, ok := props1[name1]
	if !ok {
		return errorItem(fmt.Sprintf("Value should be set for %s", name1))
	}
	v2, ok := props2[name2]
	if !ok {
		return errorItem(fmt.Sprintf("Value should be set for %s", name2))
	}
	if v1 != v2 {
		return warnItem(fmt.Sprintf("It is recommended to set equal values for properties %s and %s", name1, name2))
	}
	return nil
}

// equalsRecommended warns when the live value differs from the recommendation.
func equalsRecommended(props, recommended map[string]string, name string) *item {
	v, ok := props[name]
	if !ok {
		return errorItem(fmt.Sprintf("Value should be set for %s", name))
	}
	def, ok := recommended[name]
	if !ok {
		return errorItem(fmt.Sprintf("Value should be recommended for %s", name))
	}
	if v != def {
		return warnItem(fmt.Sprintf("It is recommended to set value %s for property %s", def, name))
	}
	return nil
}

// heapFlagBelowRecommended compares the -Xmx flag of a JVM options property.
func heapFlagBelowRecommended(props, recommended map[string]string, name string) *item {
	value, ok := props[name]
	if !ok {
		return errorItem("Value should be set")
	}
	def, ok := recommended[name]
	if !ok {
		return errorItem("Config's default value can't be null or undefined")
	}
	if !checkXmxValueFormat(value) && checkXmxValueFormat(def) {
		return errorItem("Invalid value format")
	}
	if !checkXmxValueFormat(def) {
		return nil
	}
	valueXmx := xmxSize(value)
	defXmx := xmxSize(def)
	if sizeToBytes(valueXmx) < sizeToBytes(defXmx) {
		return warnItem("Value is less than the recommended default of -Xmx" + defXmx)
	}
	return nil
}

// notOnRootPartition warns when a directory lands on "/" although the host
// has a better data mount.
func notOnRootPartition(props, recommended map[string]string, name string, host *model.Host) *item {
	dir, ok := props[name]
	if !ok {
		return errorItem("Value should be set")
	}
	if strings.HasPrefix(dir, "hdfs://") || dir == recommended[name] {
		return nil
	}
	dir = strings.Replace(dir, "file://", "", 1)
	mount := mountPointForDir(dir, host.Mountpoints())
	if mount == "/" && PreferredMountPoints(host)[0] != "/" {
		return warnItem(fmt.Sprintf("It is not recommended to use root partition for %s", name))
	}
	return nil
}

// diskSpaceSufficient warns when the mount holding a directory has less than
// requiredKB available.
func diskSpaceSufficient(props map[string]string, name string, host *model.Host, requiredKB int64) *item {
	dir, ok := props[name]
	if !ok {
		return errorItem("Value should be set")
	}
	if strings.HasPrefix(dir, "hdfs://") {
		return nil
	}
	if len(host.DiskInfo) == 0 {
		return errorItem(fmt.Sprintf("No disk info found on host %s", host.HostName))
	}
	dir = strings.Replace(dir, "file://", "", 1)
	mount := mountPointForDir(dir, host.Mountpoints())
	if mount == "" {
		return nil
	}
	for _, d := range host.DiskInfo {
		if d.Mountpoint != mount {
			continue
		}
		if int64(d.Available) < requiredKB {
			return warnItem(fmt.Sprintf("Ambari Metrics disk space requirements not met. \n"+
				"Recommended disk space for partition %s is %dG", mount, requiredKB/1048576))
		}
		break
	}
	return nil
}
