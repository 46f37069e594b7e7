package advisor

import (
	"math"
	"path"
	"strings"

	"github.com/samber/lo"

	"stack-advisor/internal/model"
	"stack-advisor/internal/splitpoints"
)

const (
	defaultAMSRootDir = "file:///var/lib/ambari-metrics-collector/hbase"
	defaultAMSTmpDir  = "/var/lib/ambari-metrics-collector/hbase-tmp"

	heapPerMasterComponent = 50
	heapPerSlaveComponent  = 10
	minMetricsHeapMB       = 500
)

type sinkWeight struct {
	service   string
	component string
	weight    int
}

// Metric sources and the storage heap (MB) each instance costs.
var metricSinkWeights = []sinkWeight{
	{"HDFS", "NAMENODE", heapPerMasterComponent},
	{"HDFS", "DATANODE", heapPerSlaveComponent},
	{"YARN", "RESOURCEMANAGER", heapPerMasterComponent},
	{"HBASE", "HBASE_MASTER", heapPerMasterComponent},
	{"HBASE", "HBASE_REGIONSERVER", heapPerSlaveComponent},
	{"ACCUMULO", "ACCUMULO_MASTER", heapPerMasterComponent},
	{"ACCUMULO", "ACCUMULO_TSERVER", heapPerSlaveComponent},
	{"KAFKA", "KAFKA_BROKER", heapPerMasterComponent},
	{"FLUME", "FLUME_HANDLER", heapPerSlaveComponent},
	{"STORM", "NIMBUS", heapPerMasterComponent},
	{"AMBARI_METRICS", "METRICS_COLLECTOR", heapPerMasterComponent},
	{"AMBARI_METRICS", "METRICS_MONITOR", heapPerSlaveComponent},
}

// metricsMemory is the heap sizing of the metrics collector and its storage.
type metricsMemory struct {
	collectorHeapMB int64
	storageHeapMB   int64
	sinks           int
}

func estimateMetricsMemory(req *model.Request) metricsMemory {
	heap := int64(minMetricsHeapMB)
	sinks := 0
	for _, s := range metricSinkWeights {
		count := len(hostsWithComponent(req, s.service, s.component))
		heap += int64(math.Pow(float64(count*s.weight), 0.9))
		sinks += count
	}
	collector := int64(512)
	if heap > 2048 {
		collector = heap / 4
	}
	return metricsMemory{
		collectorHeapMB: roundToN(float64(collector), 128),
		storageHeapMB:   roundToN(float64(heap), 128),
		sinks:           sinks,
	}
}

// stripRootPrefix drops a leading "file:///", or else the first "/".
func stripRootPrefix(dir string) string {
	if strings.HasPrefix(dir, "file:///") {
		return strings.TrimPrefix(dir, "file:///")
	}
	return strings.Replace(dir, "/", "", 1)
}

func (a *Advisor) recommendAmbariMetrics(in *stageInput, w *ConfigWriter) {
	live := in.live()
	collectors := in.req.Services.ComponentHosts("AMBARI_METRICS", "METRICS_COLLECTOR")

	rootDir, tmpDir := defaultAMSRootDir, defaultAMSTmpDir
	distributed := false
	if site := live.Properties("ams-hbase-site"); site != nil {
		if v, ok := site["hbase.rootdir"]; ok {
			rootDir = v
		}
		if v, ok := site["hbase.tmp.dir"]; ok {
			tmpDir = v
		}
		distributed = strings.ToLower(site["hbase.cluster.distributed"]) == "true"
	}

	mounts := []string{"/"}
	for _, name := range collectors {
		if h, ok := in.req.Hosts.Find(name); ok {
			mounts = PreferredMountPoints(h)
		}
	}

	onHDFS := strings.HasPrefix(rootDir, "hdfs://")
	if !onHDFS {
		rootDir = "file://" + path.Join(mounts[0], stripRootPrefix(rootDir))
	}
	tmpDir = stripRootPrefix(tmpDir)
	if len(mounts) > 1 && !onHDFS {
		tmpDir = path.Join(mounts[1], tmpDir)
	} else {
		tmpDir = path.Join(mounts[0], tmpDir)
	}
	w.Put("ams-hbase-site", "hbase.rootdir", rootDir)
	w.Put("ams-hbase-site", "hbase.tmp.dir", tmpDir)

	mem := estimateMetricsMemory(in.req)
	w.Put("ams-env", "metrics_collector_heapsize", mem.collectorHeapMB)

	w.Put("ams-hbase-site", "hfile.block.cache.size", 0.3)
	w.Put("ams-hbase-site", "hbase.hregion.memstore.flush.size", 134217728)
	w.Put("ams-hbase-site", "hbase.regionserver.global.memstore.upperLimit", 0.35)
	w.Put("ams-hbase-site", "hbase.regionserver.global.memstore.lowerLimit", 0.3)
	w.Put("ams-site", "timeline.metrics.host.aggregator.ttl", 86400)

	if len(collectors) <= 1 {
		putMetricsStorageTier(w, mem.sinks)
	}

	if distributed {
		w.Put("ams-hbase-env", "hbase_master_heapsize", "512")
		w.Put("ams-hbase-env", "hbase_master_xmn_size", "102")
		w.Put("ams-hbase-env", "hbase_regionserver_heapsize", mem.storageHeapMB)
		w.Put("ams-hbase-env", "regionserver_xmn_size", roundToN(0.15*float64(mem.storageHeapMB), 64))
	} else {
		const regionServerHeapMB = 512
		w.Put("ams-hbase-env", "hbase_master_heapsize", mem.storageHeapMB)
		w.Put("ams-hbase-env", "hbase_master_xmn_size", roundToN(0.15*float64(mem.storageHeapMB+regionServerHeapMB), 64))
	}

	if onHDFS {
		dataNodes := in.req.Services.ComponentHosts("HDFS", "DATANODE")
		cohosted := len(lo.Intersect(collectors, dataNodes)) > 0
		w.Put("ams-hbase-site", "dfs.client.read.shortcircuit", cohosted)
	}

	a.recommendSplitPoints(in, w, distributed)
}

// putMetricsStorageTier scales the storage for a single collector by the
// number of metric sources.
func putMetricsStorageTier(w *ConfigWriter, sinks int) {
	switch {
	case sinks >= 2000:
		w.Put("ams-hbase-site", "hbase.regionserver.handler.count", 60)
		w.Put("ams-hbase-site", "hbase.regionserver.hlog.blocksize", 134217728)
		w.Put("ams-hbase-site", "hbase.regionserver.maxlogs", 64)
		w.Put("ams-hbase-site", "hbase.hregion.memstore.flush.size", 268435456)
		w.Put("ams-hbase-site", "hbase.regionserver.global.memstore.upperLimit", 0.3)
		w.Put("ams-hbase-site", "hbase.regionserver.global.memstore.lowerLimit", 0.25)
		w.Put("ams-hbase-site", "phoenix.query.maxGlobalMemoryPercentage", 20)
		w.Put("ams-site", "phoenix.query.maxGlobalMemoryPercentage", 30)
		w.Put("ams-hbase-site", "phoenix.coprocessor.maxMetaDataCacheSize", 81920000)
	case sinks >= 500:
		w.Put("ams-hbase-site", "hbase.regionserver.handler.count", 60)
		w.Put("ams-hbase-site", "hbase.regionserver.hlog.blocksize", 134217728)
		w.Put("ams-hbase-site", "hbase.regionserver.maxlogs", 64)
		w.Put("ams-hbase-site", "hbase.hregion.memstore.flush.size", 268435456)
		w.Put("ams-hbase-site", "phoenix.coprocessor.maxMetaDataCacheSize", 40960000)
	default:
		w.Put("ams-hbase-site", "phoenix.coprocessor.maxMetaDataCacheSize", 20480000)
	}
}

func (a *Advisor) recommendSplitPoints(in *stageInput, w *ConfigWriter, distributed bool) {
	live := in.live()

	site := live.Properties("ams-hbase-site")
	if len(site) == 0 {
		site = w.Properties("ams-hbase-site")
	}
	env := live.Properties("ams-hbase-env")
	if len(env) == 0 {
		env = w.Properties("ams-hbase-env")
	}

	mode := splitpoints.ModeEmbedded
	if distributed {
		mode = splitpoints.ModeDistributed
	}

	precision, aggregate := " ", " "
	result, err := a.finder.FindSplitPoints(splitpoints.Input{
		SiteProperties: site,
		EnvProperties:  env,
		MetricsDir:     a.metricsDir,
		Mode:           mode,
		Services:       in.req.Services.Names(),
	})
	if err != nil {
		a.logger.Warn().Err(err).Msg("failed to compute split points")
	} else if result != nil {
		if len(result.Precision) > 0 {
			precision = strings.Join(result.Precision, ",")
		}
		if len(result.Aggregate) > 0 {
			aggregate = strings.Join(result.Aggregate, ",")
		}
	}

	w.Put("ams-site", "timeline.metrics.host.aggregate.splitpoints", precision)
	w.Put("ams-site", "timeline.metrics.cluster.aggregate.splitpoints", aggregate)
}
