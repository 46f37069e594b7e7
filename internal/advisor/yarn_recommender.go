package advisor

import (
	"math"
	"strconv"

	"stack-advisor/internal/model"
)

const (
	// nodeManagerMemoryCapMB caps what a single NodeManager advertises.
	nodeManagerMemoryCapMB = 1048576
	defaultUserGroup       = "hadoop"
)

func (a *Advisor) recommendYARN(in *stageInput, w *ConfigWriter) {
	p := in.profile

	capMB := int64(nodeManagerMemoryCapMB)
	if ref := p.ReferenceWorkerHost; ref != nil {
		capMB = min(ref.TotalMem/1024, capMB)
	}

	nmMemory := int64(math.Round(math.Min(float64(p.Containers)*p.RAMPerContainerMB, float64(capMB))))
	w.Put("yarn-site", "yarn.nodemanager.resource.memory-mb", nmMemory)
	w.Put("yarn-site", "yarn.scheduler.minimum-allocation-mb", int64(p.RAMPerContainerMB))

	maxAlloc := nmMemory
	if v, ok := w.Get("yarn-site", "yarn.nodemanager.resource.memory-mb"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			maxAlloc = n
		}
	}
	w.Put("yarn-site", "yarn.scheduler.maximum-allocation-mb", maxAlloc)

	w.Put("yarn-env", "min_user_id", a.uids.MinUID())

	group := defaultUserGroup
	if g, ok := in.live().Get("cluster-env", "user_group"); ok && g != "" {
		group = g
	}
	w.Put("yarn-site", "yarn.nodemanager.linux-container-executor.group", group)

	// Published bounds let the min/max sweep flag live values the hardware cannot back.
	if p.ReferenceWorkerHost != nil {
		w.PutAttribute("yarn-site", "yarn.nodemanager.resource.memory-mb", model.AttrMaximum, capMB)
	}
	w.PutAttribute("yarn-site", "yarn.scheduler.minimum-allocation-mb", model.AttrMaximum, maxAlloc)
	w.PutAttribute("yarn-site", "yarn.scheduler.maximum-allocation-mb", model.AttrMaximum, maxAlloc)
}

func (a *Advisor) recommendMapReduce2(in *stageInput, w *ConfigWriter) {
	p := in.profile

	w.Put("mapred-site", "yarn.app.mapreduce.am.resource.mb", int64(p.AMMemoryMB))
	w.Put("mapred-site", "yarn.app.mapreduce.am.command-opts", xmxOpt(0.8*p.AMMemoryMB))
	w.Put("mapred-site", "mapreduce.map.memory.mb", p.MapMemoryMB)
	w.Put("mapred-site", "mapreduce.reduce.memory.mb", int64(p.ReduceMemoryMB))
	w.Put("mapred-site", "mapreduce.map.java.opts", xmxOpt(0.8*float64(p.MapMemoryMB)))
	w.Put("mapred-site", "mapreduce.reduce.java.opts", xmxOpt(0.8*p.ReduceMemoryMB))
	w.Put("mapred-site", "mapreduce.task.io.sort.mb", min(int64(math.Round(0.4*float64(p.MapMemoryMB))), 1024))

	minAlloc, okMin := w.Get("yarn-site", "yarn.scheduler.minimum-allocation-mb")
	maxAlloc, okMax := w.Get("yarn-site", "yarn.scheduler.maximum-allocation-mb")
	if !okMin || !okMax {
		return
	}
	for _, key := range []string{
		"mapreduce.map.memory.mb",
		"mapreduce.reduce.memory.mb",
		"yarn.app.mapreduce.am.resource.mb",
	} {
		w.PutAttribute("mapred-site", key, model.AttrMinimum, minAlloc)
		w.PutAttribute("mapred-site", key, model.AttrMaximum, maxAlloc)
	}
}
