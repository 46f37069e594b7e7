package advisor

import (
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"

	"stack-advisor/internal/model"
)

const (
	unusedMemoryThreshold int64 = 4294967296
	maxStorageHeapBytes   int64 = 32 * 1024 * 1024 * 1024
	colocationMinHosts          = 31
	colocationMaxMasters        = 2
	colocationMinMemKB    int64 = 32 * 1024 * 1024
)

// requiredMetricsDiskKB returns the free space a single collector needs for
// the given number of metric sources.
func requiredMetricsDiskKB(collectors, sinks int) int64 {
	if collectors > 1 {
		return 10485760
	}
	switch {
	case sinks > 2000:
		return 104857600
	case sinks > 500:
		return 52428800
	case sinks > 250:
		return 20971520
	default:
		return 10485760
	}
}

func (a *Advisor) validateAMSHBaseSite(c *siteCheck) []*model.Finding {
	s := newSiteFindings("ams-hbase-site")
	live := c.req.Configurations
	collectors := c.req.Services.ComponentHosts("AMBARI_METRICS", "METRICS_COLLECTOR")
	mem := estimateMetricsMemory(c.req)
	requiredKB := requiredMetricsDiskKB(len(collectors), mem.sinks)

	opMode, _ := live.Get("ams-site", "timeline.metrics.service.operation.mode")
	rootDir := c.props["hbase.rootdir"]
	tmpDir := c.props["hbase.tmp.dir"]
	distributed := strings.ToLower(c.props["hbase.cluster.distributed"]) == "true"
	onHDFS := strings.HasPrefix(rootDir, "hdfs://")

	if opMode == "distributed" && !onHDFS {
		s.add("hbase.rootdir", warnItem("In distributed mode hbase.rootdir should point to HDFS."))
	}
	if onHDFS && !distributed {
		s.add("hbase.cluster.distributed",
			errorItem("Distributed property should be set to true if hbase.rootdir points to HDFS."))
	}

	dataNodes := c.req.Services.ComponentHosts("HDFS", "DATANODE")
	for _, name := range collectors {
		host, ok := c.req.Hosts.Find(name)
		if !ok {
			continue
		}
		s.add("hbase.rootdir", diskSpaceSufficient(c.props, "hbase.rootdir", host, requiredKB))
		s.add("hbase.rootdir", notOnRootPartition(c.props, c.recommended, "hbase.rootdir", host))
		s.add("hbase.tmp.dir", notOnRootPartition(c.props, c.recommended, "hbase.tmp.dir", host))

		switch {
		case !strings.HasPrefix(rootDir, "hdfs"):
			a.checkMetricsMounts(c, s, host, rootDir, tmpDir, lo.Contains(dataNodes, name))
		case !lo.Contains(dataNodes, name) && distributed:
			s.add("hbase.cluster.distributed", warnItem(fmt.Sprintf(
				"It's recommended to install Datanode component on %s "+
					"to speed up IO operations between HDFS and Metrics "+
					"Collector in distributed mode ", name)))
		default:
			s.add("dfs.client.read.shortcircuit",
				equalsRecommended(c.props, c.recommended, "dfs.client.read.shortcircuit"))
		}
	}
	return s.findings
}

// checkMetricsMounts flags local metric storage sharing a partition with its
// temporary data or with a co-hosted DataNode.
func (a *Advisor) checkMetricsMounts(c *siteCheck, s *siteFindings, host *model.Host, rootDir, tmpDir string, dataNode bool) {
	mounts := host.Mountpoints()
	rootMount := mountPointForDir(rootDir, mounts)
	tmpMount := mountPointForDir(tmpDir, mounts)
	preferred := PreferredMountPoints(host)

	if rootMount == tmpMount && len(preferred) > 1 {
		s.add("hbase.tmp.dir", warnItem(fmt.Sprintf(
			"Consider not using %[1]s partition for storing metrics temporary data. "+
				"%[1]s partition is already used as hbase.rootdir to store metrics data", tmpMount)))
	}

	var dataDirs []string
	if v, ok := c.req.Configurations.Get("hdfs-site", "dfs.datanode.data.dir"); ok {
		dataDirs = strings.Split(v, ",")
	}
	if !dataNode || !c.req.Configurations.Has("ams-site") || len(dataDirs) == 0 || len(preferred) <= len(dataDirs) {
		return
	}
	for _, dir := range dataDirs {
		if mountPointForDir(dir, mounts) == rootMount {
			s.add("hbase.rootdir", warnItem(fmt.Sprintf(
				"Consider not using %[1]s partition for storing metrics data. "+
					"%[1]s is already used by datanode to store HDFS data", rootMount)))
			break
		}
	}
}

// xmnBounds returns the allowed young generation range for a heap.
func xmnBounds(heap int64) (float64, float64) {
	return 0.12 * float64(heap), 0.2 * float64(heap)
}

// xmnRatioCheck warns when xmn falls outside 12%..20% of heap; basis names
// the heap in the message.
func xmnRatioCheck(xmn, heap int64, basis string) *item {
	lower, upper := xmnBounds(heap)
	var it *item
	if float64(xmn) < lower {
		it = warnItem(fmt.Sprintf("Value is lesser than the recommended minimum Xmn size of %d (12%% of %s)",
			int64(math.Ceil(lower)), basis))
	}
	if float64(xmn) > upper {
		it = warnItem(fmt.Sprintf("Value is greater than the recommended maximum Xmn size of %d (20%% of %s)",
			int64(math.Floor(upper)), basis))
	}
	return it
}

func (a *Advisor) validateAMSHBaseEnv(c *siteCheck) []*model.Finding {
	s := newSiteFindings("ams-hbase-env")
	live := c.req.Configurations
	amsEnv := live.Properties("ams-env")

	regionServerItem := belowRecommended(c.props, c.recommended, "hbase_regionserver_heapsize")
	masterItem := belowRecommended(c.props, c.recommended, "hbase_master_heapsize")
	logDirItem := equalsPeer(c.props, "hbase_log_dir", amsEnv, "metrics_collector_log_dir")

	distributedValue, _ := live.Get("ams-hbase-site", "hbase.cluster.distributed")
	distributed := strings.ToLower(distributedValue) == "true"

	number := func(name string) (int64, bool) {
		v, ok := c.props[name]
		if !ok {
			return 0, false
		}
		return toNumber(v)
	}
	masterHeap, okMasterHeap := number("hbase_master_heapsize")
	masterXmn, okMasterXmn := number("hbase_master_xmn_size")
	rsHeap, okRSHeap := number("hbase_regionserver_heapsize")
	rsXmn, okRSXmn := number("regionserver_xmn_size")

	var masterXmnItem, rsXmnItem *item
	if distributed {
		if okMasterHeap && okMasterXmn {
			masterXmnItem = xmnRatioCheck(masterXmn, masterHeap, "hbase_master_heapsize")
		}
		if okRSHeap && okRSXmn {
			rsXmnItem = xmnRatioCheck(rsXmn, rsHeap, "hbase_regionserver_heapsize")
		}
	} else if okMasterHeap && okMasterXmn && okRSHeap {
		masterXmnItem = xmnRatioCheck(masterXmn, masterHeap+rsHeap,
			"hbase_master_heapsize + hbase_regionserver_heapsize")
	}

	var masterHostItem *item
	if masterItem == nil {
		for _, name := range c.req.Services.ComponentHosts("AMBARI_METRICS", "METRICS_COLLECTOR") {
			host, ok := c.req.Hosts.Find(name)
			if !ok {
				continue
			}
			masters := c.req.Services.HostMasterComponents(name)
			if len(c.req.Hosts) > colocationMinHosts && len(masters) > colocationMaxMasters &&
				host.TotalMem < colocationMinMemKB {
				masterHostItem = warnItem(fmt.Sprintf(
					"Host %s is used by multiple master components (%s). "+
						"It is recommended to use a separate host for the "+
						"Ambari Metrics Collector component and ensure "+
						"the host has sufficient memory available.", name, strings.Join(masters, ", ")))
			}

			heapProp, xmnProp := "hbase_master_heapsize", "hbase_master_xmn_size"
			if distributed {
				heapProp, xmnProp = "hbase_regionserver_heapsize", "regionserver_xmn_size"
			}
			s.add(heapProp, unusedMemoryAdvice(c, host, amsEnv, heapProp, xmnProp))
		}
	}

	s.add("hbase_regionserver_heapsize", regionServerItem)
	s.add("hbase_master_heapsize", masterItem)
	s.add("hbase_master_heapsize", masterHostItem)
	s.add("hbase_log_dir", logDirItem)
	s.add("hbase_master_xmn_size", masterXmnItem)
	s.add("regionserver_xmn_size", rsXmnItem)
	return s.findings
}

// unusedMemoryAdvice proposes a heap redistribution when more than 4GB of
// the collector host memory is not claimed by any known heap setting.
func unusedMemoryAdvice(c *siteCheck, host *model.Host, amsEnv map[string]string, heapProp, xmnProp string) *item {
	const mb = 1048576
	required := memoryRequired(c.req.Services.HostComponents(host.HostName), c.req.Configurations)
	unused := host.TotalMem*1024 - required
	if unused <= unusedMemoryThreshold {
		return nil
	}

	collectorHeap, _ := toNumber(amsEnv["metrics_collector_heapsize"])
	storageHeap, _ := toNumber(c.props[heapProp])
	spare := unused - unusedMemoryThreshold

	collector := spare/5 + collectorHeap*mb
	storage := min(maxStorageHeapBytes, spare*4/5+storageHeap*mb)
	xmn := roundToN(0.12*float64(storage)/mb, 128)

	return warnItem(fmt.Sprintf("%d MB RAM is unused on the host %s based on components "+
		"assigned. Consider allocating  %d MB to "+
		"metrics_collector_heapsize in ams-env, "+
		"%d MB to %s in ams-hbase-env and "+
		"%d MB to %s in ams-hbase-env",
		unused/mb, host.HostName, collector/mb, storage/mb, heapProp, xmn, xmnProp))
}

func (a *Advisor) validateAMSSite(c *siteCheck) []*model.Finding {
	s := newSiteFindings("ams-site")
	mode := c.props["timeline.metrics.service.operation.mode"]
	if mode != "embedded" && mode != "distributed" {
		s.add("timeline.metrics.service.operation.mode", errorItem("Correct value should be set."))
	}
	return s.findings
}
