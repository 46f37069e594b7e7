package advisor

import (
	"stack-advisor/internal/model"
)

const osReservedBytes int64 = 512 * 1024 * 1024

// heapProperty names the setting holding the heap of a component.
type heapProperty struct {
	configType string
	property   string
	def        string
}

// componentHeaps maps components to the properties that size their JVMs.
var componentHeaps = map[string][]heapProperty{
	"NAMENODE":            {{"hadoop-env", "namenode_heapsize", "1024m"}},
	"DATANODE":            {{"hadoop-env", "dtnode_heapsize", "1024m"}},
	"HBASE_REGIONSERVER":  {{"hbase-env", "hbase_regionserver_heapsize", "1024m"}},
	"HBASE_MASTER":        {{"hbase-env", "hbase_master_heapsize", "1024m"}},
	"HIVE_CLIENT":         {{"hive-site", "hive.heapsize", "1024m"}},
	"HISTORYSERVER":       {{"mapred-env", "jobhistory_heapsize", "1024m"}},
	"OOZIE_SERVER":        {{"oozie-env", "oozie_heapsize", "1024m"}},
	"RESOURCEMANAGER":     {{"yarn-env", "resourcemanager_heapsize", "1024m"}},
	"NODEMANAGER":         {{"yarn-env", "nodemanager_heapsize", "1024m"}},
	"APP_TIMELINE_SERVER": {{"yarn-env", "apptimelineserver_heapsize", "1024m"}},
	"ZOOKEEPER_SERVER":    {{"zookeeper-env", "zookeeper_heapsize", "1024m"}},
	"METRICS_COLLECTOR": {
		{"ams-hbase-env", "hbase_master_heapsize", "1024"},
		{"ams-env", "metrics_collector_heapsize", "512"},
	},
}

// memoryRequired estimates the bytes taken by the OS and the JVM heaps of
// the given components. Heap values without a unit are megabytes.
func memoryRequired(components []string, live model.Configurations) int64 {
	total := osReservedBytes
	for _, name := range components {
		for _, hp := range componentHeaps[name] {
			heap, ok := live.Get(hp.configType, hp.property)
			if !ok {
				heap = hp.def
			}
			if len(heap) > 1 && heap[len(heap)-1] >= '0' && heap[len(heap)-1] <= '9' {
				heap += "m"
			}
			total += sizeToBytes(heap)
		}
	}
	return total
}
