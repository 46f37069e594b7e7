package advisor

import (
	"math"

	"stack-advisor/internal/model"
)

// ramBucket maps a host memory range (GB) to the memory reserved for the OS
// and for a co-located storage region server.
type ramBucket struct {
	upTo      int64 // inclusive upper bound; -1 means unbounded
	reserved  int64
	storageGB int64
}

// Checked in order, first match wins.
var ramBuckets = []ramBucket{
	{upTo: 4, reserved: 1, storageGB: 1},
	{upTo: 8, reserved: 2, storageGB: 1},
	{upTo: 16, reserved: 2, storageGB: 2},
	{upTo: 24, reserved: 4, storageGB: 4},
	{upTo: 48, reserved: 6, storageGB: 8},
	{upTo: 64, reserved: 8, storageGB: 8},
	{upTo: 72, reserved: 8, storageGB: 8},
	{upTo: 96, reserved: 12, storageGB: 16},
	{upTo: 128, reserved: 24, storageGB: 24},
	{upTo: 256, reserved: 32, storageGB: 32},
	{upTo: -1, reserved: 64, storageGB: 64},
}

type containerBucket struct {
	upTo   int64
	sizeMB int64
}

var minContainerBuckets = []containerBucket{
	{upTo: 4, sizeMB: 256},
	{upTo: 8, sizeMB: 512},
	{upTo: 24, sizeMB: 1024},
	{upTo: -1, sizeMB: 2048},
}

func lookupRAM(ramGB int64) ramBucket {
	for _, b := range ramBuckets {
		if b.upTo < 0 || ramGB <= b.upTo {
			return b
		}
	}
	return ramBuckets[len(ramBuckets)-1]
}

func lookupMinContainer(ramGB int64) int64 {
	for _, b := range minContainerBuckets {
		if b.upTo < 0 || ramGB <= b.upTo {
			return b.sizeMB
		}
	}
	return minContainerBuckets[len(minContainerBuckets)-1].sizeMB
}

// referenceNodeManagerHost returns the NodeManager host with the least memory.
func referenceNodeManagerHost(hosts model.HostInventory, services model.ServiceTopology) *model.Host {
	var ref *model.Host
	for _, name := range services.ComponentHosts("YARN", "NODEMANAGER") {
		h, ok := hosts.Find(name)
		if !ok {
			continue
		}
		if ref == nil || h.TotalMem < ref.TotalMem {
			ref = h
		}
	}
	return ref
}

// BuildProfile derives the cluster sizing summary from the inventory and topology.
func BuildProfile(hosts model.HostInventory, services model.ServiceTopology) *model.ClusterProfile {
	p := &model.ClusterProfile{}

	p.ReferenceWorkerHost = referenceNodeManagerHost(hosts, services)
	p.ReferenceHost = p.ReferenceWorkerHost
	if p.ReferenceHost == nil && len(hosts) > 0 {
		p.ReferenceHost = &hosts[0]
	}

	if ref := p.ReferenceHost; ref != nil {
		p.CPU = ref.CPUCount
		p.DiskCount = len(ref.DiskInfo)
		p.RAMMB = ref.TotalMem / 1024
		p.RAMGB = ref.TotalMem / (1024 * 1024)
	}

	bucket := lookupRAM(p.RAMGB)
	p.ReservedRAMGB = bucket.reserved
	p.StorageRAMGB = bucket.storageGB
	p.StorageInstalled = services.Installed("HBASE")
	p.MinContainerSizeMB = lookupMinContainer(p.RAMGB)

	available := p.RAMGB - p.ReservedRAMGB
	if p.StorageInstalled {
		available -= p.StorageRAMGB
	}
	p.TotalAvailableRAMMB = max(512, available*1024)

	byDisk := math.Ceil(1.8 * float64(p.DiskCount))
	byRAM := float64(p.TotalAvailableRAMMB / p.MinContainerSizeMB)
	byCPU := float64(2 * p.CPU)
	p.Containers = int(math.Round(math.Max(3, math.Min(byCPU, math.Min(byDisk, byRAM)))))

	perContainer := math.Abs(float64(p.TotalAvailableRAMMB) / float64(p.Containers))
	if perContainer > 1024 {
		perContainer = float64(int64(perContainer/512) * 512)
	}
	p.RAMPerContainerMB = perContainer

	p.MapMemoryMB = int64(perContainer)
	p.ReduceMemoryMB = perContainer
	p.AMMemoryMB = math.Max(float64(p.MapMemoryMB), p.ReduceMemoryMB)

	return p
}
