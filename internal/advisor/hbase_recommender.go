package advisor

func (a *Advisor) recommendHBase(in *stageInput, w *ConfigWriter) {
	heap := in.profile.StorageRAMGB * 1024
	w.Put("hbase-env", "hbase_regionserver_heapsize", heap)
	w.Put("hbase-env", "hbase_master_heapsize", heap)

	user, okUser := in.live().Get("hbase-env", "hbase_user")
	superuser, okSuper := in.live().Get("hbase-site", "hbase.superuser")
	if okUser && okSuper && user != superuser {
		w.Put("hbase-site", "hbase.superuser", user)
	}
}
