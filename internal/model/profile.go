package model

import (
	"fmt"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/samber/lo"
)

// ClusterProfile is the sizing summary derived from the reference host.
// It is built once per request and never modified afterwards.
type ClusterProfile struct {
	CPU                 int     `json:"cpu"`
	DiskCount           int     `json:"disk"`
	RAMMB               int64   `json:"ram_mb"`
	RAMGB               int64   `json:"ram"`
	ReservedRAMGB       int64   `json:"reserved_ram"`
	StorageRAMGB        int64   `json:"hbase_ram"`
	StorageInstalled    bool    `json:"hbase"`
	TotalAvailableRAMMB int64   `json:"total_available_ram"`
	MinContainerSizeMB  int64   `json:"min_container_size"`
	Containers          int     `json:"containers"`
	RAMPerContainerMB   float64 `json:"ram_per_container"`
	MapMemoryMB         int64   `json:"map_memory"`
	ReduceMemoryMB      float64 `json:"reduce_memory"`
	AMMemoryMB          float64 `json:"am_memory"`

	// ReferenceHost is the host the sizing is based on; nil for an empty inventory.
	ReferenceHost *Host `json:"reference_host,omitempty" hash:"ignore"`
	// ReferenceWorkerHost is set only when a NodeManager host exists.
	ReferenceWorkerHost *Host `json:"reference_node_manager_host,omitempty" hash:"ignore"`
}

// Fingerprint returns a stable hash of the sizing values.
// Equal inputs always produce equal fingerprints.
func (p *ClusterProfile) Fingerprint() string {
	hash := lo.Must(hashstructure.Hash(p, hashstructure.FormatV2, &hashstructure.HashOptions{
		SlicesAsSets: true,
	}))
	return fmt.Sprintf("%016x", hash)
}
