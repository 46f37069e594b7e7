package advisor

import (
	"strings"

	"stack-advisor/internal/model"
)

func (a *Advisor) recommendHDFS(in *stageInput, w *ConfigWriter) {
	total := in.profile.TotalAvailableRAMMB

	w.Put("hadoop-env", "namenode_heapsize", max(total/2, 1024))
	w.Put("hadoop-env", "namenode_opt_newsize", max(total/8, 128))
	w.Put("hadoop-env", "namenode_opt_maxnewsize", max(total/8, 256))

	// With NameNode HA the single rpc-address is replaced by per-namenode keys.
	site := in.live().Properties("hdfs-site")
	if ns, ok := site["dfs.nameservices"]; ok && ns != "" {
		if ids, ok := site["dfs.ha.namenodes."+ns]; ok && len(strings.Split(ids, ",")) > 1 {
			w.PutAttribute("hdfs-site", "dfs.namenode.rpc-address", model.AttrDelete, "true")
		}
	}
}
