// Package model provides data models for the stack advisor.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kilobytes is a size reported by the host agent in KB.
// Agents report sizes either as JSON numbers or as numeric strings; both decode.
type Kilobytes int64

// UnmarshalJSON accepts 123, "123" and "".
func (k *Kilobytes) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return k.parse(s)
	}
	if string(data) == "null" {
		*k = 0
		return nil
	}
	return k.parse(string(data))
}

// UnmarshalYAML accepts both scalar ints and quoted numeric strings.
func (k *Kilobytes) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: size must be a scalar", value.Line)
	}
	return k.parse(value.Value)
}

func (k *Kilobytes) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*k = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid size %q: %w", s, err)
	}
	*k = Kilobytes(n)
	return nil
}

// DiskInfo describes one mounted filesystem of a host.
type DiskInfo struct {
	Mountpoint string    `json:"mountpoint" yaml:"mountpoint" validate:"required"` // 挂载点
	Type       string    `json:"type" yaml:"type"`                                 // 文件系统类型
	Available  Kilobytes `json:"available" yaml:"available"`                       // 可用空间 (KB)
	Size       Kilobytes `json:"size" yaml:"size"`                                 // 总空间 (KB)
}

// Host represents a single machine of the inventory.
type Host struct {
	HostName       string     `json:"host_name" yaml:"host_name" validate:"required"`
	PublicHostName string     `json:"public_host_name" yaml:"public_host_name"`
	CPUCount       int        `json:"cpu_count" yaml:"cpu_count" validate:"gte=0"`
	TotalMem       int64      `json:"total_mem" yaml:"total_mem" validate:"gte=0"` // 总内存 (KB)
	DiskInfo       []DiskInfo `json:"disk_info" yaml:"disk_info" validate:"dive"`
}

// PublicName returns the public host name, falling back to the host name.
func (h *Host) PublicName() string {
	if h.PublicHostName != "" {
		return h.PublicHostName
	}
	return h.HostName
}

// Mountpoints returns the mount points of the host in inventory order.
func (h *Host) Mountpoints() []string {
	mounts := make([]string, 0, len(h.DiskInfo))
	for _, d := range h.DiskInfo {
		mounts = append(mounts, d.Mountpoint)
	}
	return mounts
}

// HostInventory is the ordered list of hosts of a cluster.
type HostInventory []Host

// Find returns the host with the given name.
func (inv HostInventory) Find(name string) (*Host, bool) {
	for i := range inv {
		if inv[i].HostName == name {
			return &inv[i], true
		}
	}
	return nil, false
}

// Names returns all host names in inventory order.
func (inv HostInventory) Names() []string {
	names := make([]string, 0, len(inv))
	for _, h := range inv {
		names = append(names, h.HostName)
	}
	return names
}
