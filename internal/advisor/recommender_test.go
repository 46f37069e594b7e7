package advisor

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stack-advisor/internal/model"
)

// amsRequest is a single collector host with a root and a data mount.
func amsRequest() *model.Request {
	return &model.Request{
		Hosts: model.HostInventory{
			host("h1", 8, ram8G, disk("/", 100*gbKB), disk("/data", 500*gbKB)),
		},
		Services: model.ServiceTopology{
			service("AMBARI_METRICS",
				component("METRICS_COLLECTOR", "1", "h1"),
				component("METRICS_MONITOR", "ALL", "h1")),
		},
		Configurations: model.Configurations{},
	}
}

func recommend(t *testing.T, req *model.Request) *model.Recommendation {
	t.Helper()
	rec, err := newTestAdvisor(t).Recommend(req)
	require.NoError(t, err)
	return rec
}

// ============================================================================
// YARN and MapReduce Tests
// ============================================================================

func TestRecommendYARN(t *testing.T) {
	rec := recommend(t, yarnRequest())

	want := map[string]string{
		"yarn.nodemanager.resource.memory-mb":             "6144",
		"yarn.scheduler.minimum-allocation-mb":            "2048",
		"yarn.scheduler.maximum-allocation-mb":            "6144",
		"yarn.nodemanager.linux-container-executor.group": "hadoop",
	}
	if diff := cmp.Diff(want, rec.Configurations.Properties("yarn-site")); diff != "" {
		t.Errorf("yarn-site mismatch (-want +got):\n%s", diff)
	}
	minUID, _ := rec.Configurations.Get("yarn-env", "min_user_id")
	assert.Equal(t, "1000", minUID)

	attrs := rec.Configurations.Attributes("yarn-site")
	assert.Equal(t, "8192", attrs["yarn.nodemanager.resource.memory-mb"][model.AttrMaximum])
	assert.Equal(t, "6144", attrs["yarn.scheduler.minimum-allocation-mb"][model.AttrMaximum])
	assert.Equal(t, "6144", attrs["yarn.scheduler.maximum-allocation-mb"][model.AttrMaximum])
}

func TestRecommendYARN_UserGroupAndUID(t *testing.T) {
	req := yarnRequest()
	req.Configurations["cluster-env"] = site(map[string]string{"user_group": "users"})

	rec, err := newTestAdvisor(t, WithUIDSource(StaticUID("500"))).Recommend(req)
	require.NoError(t, err)

	group, _ := rec.Configurations.Get("yarn-site", "yarn.nodemanager.linux-container-executor.group")
	minUID, _ := rec.Configurations.Get("yarn-env", "min_user_id")
	assert.Equal(t, "users", group)
	assert.Equal(t, "500", minUID)
}

func TestRecommendYARN_NoNodeManager(t *testing.T) {
	req := &model.Request{
		Hosts:    model.HostInventory{host("h1", 8, ram8G)},
		Services: model.ServiceTopology{service("YARN", component("RESOURCEMANAGER", "1", "h1"))},
	}

	rec := recommend(t, req)

	attrs := rec.Configurations.Attributes("yarn-site")
	_, capped := attrs["yarn.nodemanager.resource.memory-mb"]
	assert.False(t, capped)
	assert.Contains(t, attrs, "yarn.scheduler.maximum-allocation-mb")
}

func TestRecommendMapReduce2(t *testing.T) {
	rec := recommend(t, yarnRequest())

	want := map[string]string{
		"yarn.app.mapreduce.am.resource.mb":  "2048",
		"yarn.app.mapreduce.am.command-opts": "-Xmx1638m",
		"mapreduce.map.memory.mb":            "2048",
		"mapreduce.reduce.memory.mb":         "2048",
		"mapreduce.map.java.opts":            "-Xmx1638m",
		"mapreduce.reduce.java.opts":         "-Xmx1638m",
		"mapreduce.task.io.sort.mb":          "819",
	}
	if diff := cmp.Diff(want, rec.Configurations.Properties("mapred-site")); diff != "" {
		t.Errorf("mapred-site mismatch (-want +got):\n%s", diff)
	}

	attrs := rec.Configurations.Attributes("mapred-site")
	for _, key := range []string{"mapreduce.map.memory.mb", "mapreduce.reduce.memory.mb", "yarn.app.mapreduce.am.resource.mb"} {
		assert.Equal(t, "2048", attrs[key][model.AttrMinimum], key)
		assert.Equal(t, "6144", attrs[key][model.AttrMaximum], key)
	}
}

// ============================================================================
// HDFS and Proxy User Tests
// ============================================================================

func hdfsRequest() *model.Request {
	h := host("h1", 8, ram8G, disk("/", 100*gbKB))
	h.PublicHostName = "h1.example.com"
	return &model.Request{
		Hosts: model.HostInventory{h, host("h2", 8, ram8G)},
		Services: model.ServiceTopology{
			service("HDFS", component("NAMENODE", "1-2", "h1"), component("DATANODE", "1+", "h1", "h2")),
		},
		Configurations: model.Configurations{
			"hadoop-env": site(map[string]string{"hdfs_user": "hdfs", "proxyuser_group": "users"}),
		},
	}
}

func TestRecommendHDFS(t *testing.T) {
	rec := recommend(t, hdfsRequest())

	want := map[string]string{
		"namenode_heapsize":       "3072",
		"namenode_opt_newsize":    "768",
		"namenode_opt_maxnewsize": "768",
	}
	if diff := cmp.Diff(want, rec.Configurations.Properties("hadoop-env")); diff != "" {
		t.Errorf("hadoop-env mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, rec.Configurations.Attributes("hdfs-site"))
}

func TestRecommendHDFS_NameNodeHA(t *testing.T) {
	req := hdfsRequest()
	req.Configurations["hdfs-site"] = site(map[string]string{
		"dfs.nameservices":         "ns1",
		"dfs.ha.namenodes.ns1":     "nn1,nn2",
		"dfs.namenode.rpc-address": "h1:8020",
	})

	rec := recommend(t, req)

	attrs := rec.Configurations.Attributes("hdfs-site")
	assert.Equal(t, "true", attrs["dfs.namenode.rpc-address"][model.AttrDelete])
}

func TestRecommendProxyUsers(t *testing.T) {
	req := hdfsRequest()
	req.Services = append(req.Services,
		service("OOZIE", component("OOZIE_SERVER", "1", "h1")),
		service("HIVE", component("HIVE_SERVER", "1", "h2")),
		service("FALCON", component("FALCON_SERVER", "1", "h1")),
	)
	req.Configurations["oozie-env"] = site(map[string]string{"oozie_user": "oozie"})
	req.Configurations["hive-env"] = site(map[string]string{"hive_user": "hive", "webhcat_user": "hcat"})
	req.Configurations["falcon-env"] = site(map[string]string{"falcon_user": "hdfs"})

	rec := recommend(t, req)

	want := map[string]string{
		"hadoop.proxyuser.hdfs.hosts":   "*",
		"hadoop.proxyuser.hdfs.groups":  "*",
		"hadoop.proxyuser.oozie.hosts":  "h1.example.com",
		"hadoop.proxyuser.oozie.groups": "*",
		"hadoop.proxyuser.hive.hosts":   "h2",
		"hadoop.proxyuser.hive.groups":  "*",
		"hadoop.proxyuser.hcat.hosts":   "h2",
		"hadoop.proxyuser.hcat.groups":  "users",
	}
	if diff := cmp.Diff(want, rec.Configurations.Properties("core-site")); diff != "" {
		t.Errorf("core-site mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, rec.ForcedConfigurations)
}

func TestRecommendProxyUsers_Renamed(t *testing.T) {
	req := hdfsRequest()
	old := "hadoop"
	req.ChangedConfigurations = []model.ChangedConfig{{Type: "hadoop-env", Name: "hdfs_user", OldValue: &old}}

	rec := recommend(t, req)

	attrs := rec.Configurations.Attributes("core-site")
	assert.Equal(t, "true", attrs["hadoop.proxyuser.hadoop.hosts"][model.AttrDelete])
	assert.Equal(t, "true", attrs["hadoop.proxyuser.hadoop.groups"][model.AttrDelete])
	assert.Equal(t, []model.ConfigRef{
		{Type: "core-site", Name: "hadoop.proxyuser.hadoop.hosts"},
		{Type: "core-site", Name: "hadoop.proxyuser.hadoop.groups"},
		{Type: "core-site", Name: "hadoop.proxyuser.hdfs.hosts"},
		{Type: "core-site", Name: "hadoop.proxyuser.hdfs.groups"},
	}, rec.ForcedConfigurations)
}

func TestRecommendProxyUsers_UnchangedNameIsNotForced(t *testing.T) {
	req := hdfsRequest()
	same := "hdfs"
	req.ChangedConfigurations = []model.ChangedConfig{{Type: "hadoop-env", Name: "hdfs_user", OldValue: &same}}

	rec := recommend(t, req)

	assert.Empty(t, rec.ForcedConfigurations)
	assert.Nil(t, rec.Configurations.Attributes("core-site"))
}

// ============================================================================
// HBase Tests
// ============================================================================

func TestRecommendHBase(t *testing.T) {
	req := yarnRequest()
	req.Services = append(req.Services, service("HBASE", component("HBASE_MASTER", "1", "h1")))
	req.Configurations["hbase-env"] = site(map[string]string{"hbase_user": "hbase"})
	req.Configurations["hbase-site"] = site(map[string]string{"hbase.superuser": "admin"})

	rec := recommend(t, req)

	env := rec.Configurations.Properties("hbase-env")
	assert.Equal(t, "1024", env["hbase_regionserver_heapsize"])
	assert.Equal(t, "1024", env["hbase_master_heapsize"])
	superuser, _ := rec.Configurations.Get("hbase-site", "hbase.superuser")
	assert.Equal(t, "hbase", superuser)
}

func TestRecommendHBase_SuperuserMatches(t *testing.T) {
	req := yarnRequest()
	req.Services = append(req.Services, service("HBASE", component("HBASE_MASTER", "1", "h1")))
	req.Configurations["hbase-env"] = site(map[string]string{"hbase_user": "hbase"})
	req.Configurations["hbase-site"] = site(map[string]string{"hbase.superuser": "hbase"})

	rec := recommend(t, req)

	assert.False(t, rec.Configurations.Has("hbase-site"))
}

// ============================================================================
// Metrics Storage Tests
// ============================================================================

func TestRecommendAmbariMetrics_Embedded(t *testing.T) {
	rec := recommend(t, amsRequest())

	cfg := rec.Configurations
	get := func(configType, key string) string {
		v, _ := cfg.Get(configType, key)
		return v
	}

	assert.Equal(t, "file:///data/var/lib/ambari-metrics-collector/hbase", get("ams-hbase-site", "hbase.rootdir"))
	assert.Equal(t, "/var/lib/ambari-metrics-collector/hbase-tmp", get("ams-hbase-site", "hbase.tmp.dir"))
	assert.Equal(t, "512", get("ams-env", "metrics_collector_heapsize"))
	assert.Equal(t, "512", get("ams-hbase-env", "hbase_master_heapsize"))
	assert.Equal(t, "128", get("ams-hbase-env", "hbase_master_xmn_size"))
	assert.Equal(t, "0.3", get("ams-hbase-site", "hfile.block.cache.size"))
	assert.Equal(t, "0.35", get("ams-hbase-site", "hbase.regionserver.global.memstore.upperLimit"))
	assert.Equal(t, "86400", get("ams-site", "timeline.metrics.host.aggregator.ttl"))
	assert.Equal(t, "20480000", get("ams-hbase-site", "phoenix.coprocessor.maxMetaDataCacheSize"))

	_, ok := cfg.Get("ams-hbase-env", "hbase_regionserver_heapsize")
	assert.False(t, ok)
	_, ok = cfg.Get("ams-hbase-site", "dfs.client.read.shortcircuit")
	assert.False(t, ok)
}

func TestRecommendAmbariMetrics_RootMountOnly(t *testing.T) {
	req := amsRequest()
	req.Hosts[0].DiskInfo = []model.DiskInfo{disk("/", 100*gbKB)}

	rec := recommend(t, req)

	rootDir, _ := rec.Configurations.Get("ams-hbase-site", "hbase.rootdir")
	tmpDir, _ := rec.Configurations.Get("ams-hbase-site", "hbase.tmp.dir")
	assert.Equal(t, "file:///var/lib/ambari-metrics-collector/hbase", rootDir)
	assert.Equal(t, "/var/lib/ambari-metrics-collector/hbase-tmp", tmpDir)
}

func TestRecommendAmbariMetrics_Distributed(t *testing.T) {
	req := amsRequest()
	req.Services = append(req.Services, service("HDFS", component("DATANODE", "1+", "h1")))
	req.Configurations["ams-hbase-site"] = site(map[string]string{
		"hbase.rootdir":             "hdfs://nn:8020/ams",
		"hbase.tmp.dir":             "/var/lib/ams/tmp",
		"hbase.cluster.distributed": "true",
	})

	rec := recommend(t, req)

	cfg := rec.Configurations
	get := func(configType, key string) string {
		v, _ := cfg.Get(configType, key)
		return v
	}
	assert.Equal(t, "hdfs://nn:8020/ams", get("ams-hbase-site", "hbase.rootdir"))
	assert.Equal(t, "/data/var/lib/ams/tmp", get("ams-hbase-site", "hbase.tmp.dir"))
	assert.Equal(t, "true", get("ams-hbase-site", "dfs.client.read.shortcircuit"))
	assert.Equal(t, "512", get("ams-hbase-env", "hbase_master_heapsize"))
	assert.Equal(t, "102", get("ams-hbase-env", "hbase_master_xmn_size"))
	assert.Equal(t, "512", get("ams-hbase-env", "hbase_regionserver_heapsize"))
	assert.Equal(t, "64", get("ams-hbase-env", "regionserver_xmn_size"))
}

func TestRecommendAmbariMetrics_ShortCircuitWithoutDataNode(t *testing.T) {
	req := amsRequest()
	req.Hosts = append(req.Hosts, host("h2", 8, ram8G))
	req.Services = append(req.Services, service("HDFS", component("DATANODE", "1+", "h2")))
	req.Configurations["ams-hbase-site"] = site(map[string]string{"hbase.rootdir": "hdfs://nn:8020/ams"})

	rec := recommend(t, req)

	v, _ := rec.Configurations.Get("ams-hbase-site", "dfs.client.read.shortcircuit")
	assert.Equal(t, "false", v)
}

func TestEstimateMetricsMemory(t *testing.T) {
	mem := estimateMetricsMemory(amsRequest())

	// 500 + 50^0.9 + 10^0.9 = 540
	assert.Equal(t, int64(512), mem.collectorHeapMB)
	assert.Equal(t, int64(512), mem.storageHeapMB)
	assert.Equal(t, 2, mem.sinks)
}

func TestEstimateMetricsMemory_LargeCluster(t *testing.T) {
	req := &model.Request{}
	var names []string
	for i := 0; i < 600; i++ {
		name := fmt.Sprintf("dn%03d", i)
		names = append(names, name)
		req.Hosts = append(req.Hosts, host(name, 8, ram8G))
	}
	req.Services = model.ServiceTopology{service("HDFS", component("DATANODE", "1+", names...))}

	mem := estimateMetricsMemory(req)

	// 500 + 6000^0.9
	assert.Equal(t, 600, mem.sinks)
	assert.Greater(t, mem.storageHeapMB, int64(2048))
	assert.Equal(t, roundToN(float64(mem.storageHeapMB), 128), mem.storageHeapMB)
	assert.Less(t, mem.collectorHeapMB, mem.storageHeapMB)
}

func TestPutMetricsStorageTier(t *testing.T) {
	t.Run("large", func(t *testing.T) {
		w := NewConfigWriter(nil, nil)
		putMetricsStorageTier(w, 2500)

		want := map[string]string{
			"hbase.regionserver.handler.count":              "60",
			"hbase.regionserver.hlog.blocksize":             "134217728",
			"hbase.regionserver.maxlogs":                    "64",
			"hbase.hregion.memstore.flush.size":             "268435456",
			"hbase.regionserver.global.memstore.upperLimit": "0.3",
			"hbase.regionserver.global.memstore.lowerLimit": "0.25",
			"phoenix.query.maxGlobalMemoryPercentage":       "20",
			"phoenix.coprocessor.maxMetaDataCacheSize":      "81920000",
		}
		if diff := cmp.Diff(want, w.Properties("ams-hbase-site")); diff != "" {
			t.Errorf("ams-hbase-site mismatch (-want +got):\n%s", diff)
		}
		v, _ := w.Get("ams-site", "phoenix.query.maxGlobalMemoryPercentage")
		assert.Equal(t, "30", v)
	})

	t.Run("medium", func(t *testing.T) {
		w := NewConfigWriter(nil, nil)
		putMetricsStorageTier(w, 500)

		props := w.Properties("ams-hbase-site")
		assert.Equal(t, "268435456", props["hbase.hregion.memstore.flush.size"])
		assert.Equal(t, "40960000", props["phoenix.coprocessor.maxMetaDataCacheSize"])
		assert.NotContains(t, props, "hbase.regionserver.global.memstore.upperLimit")
		assert.False(t, w.Tree().Has("ams-site"))
	})

	t.Run("small", func(t *testing.T) {
		w := NewConfigWriter(nil, nil)
		putMetricsStorageTier(w, 300)

		assert.Equal(t, map[string]string{"phoenix.coprocessor.maxMetaDataCacheSize": "20480000"},
			w.Properties("ams-hbase-site"))
	})
}

func TestStripRootPrefix(t *testing.T) {
	assert.Equal(t, "var/lib/ams", stripRootPrefix("file:///var/lib/ams"))
	assert.Equal(t, "var/lib/ams", stripRootPrefix("/var/lib/ams"))
	assert.Equal(t, "relative/dir", stripRootPrefix("relative/dir"))
}

// ============================================================================
// Ranger Tests
// ============================================================================

func rangerRequest(version string) *model.Request {
	ranger := service("RANGER", component("RANGER_ADMIN", "1", "h1"))
	ranger.Version = version
	return &model.Request{
		Hosts:          model.HostInventory{host("h1", 8, ram8G)},
		Services:       model.ServiceTopology{ranger},
		Configurations: model.Configurations{},
	}
}

func TestRecommendRanger_ConnectorAndURL(t *testing.T) {
	tests := []struct {
		name    string
		live    model.Configurations
		wantJar string
		wantURL string
	}{
		{
			name:    "oracle over http",
			live:    model.Configurations{"admin-properties": site(map[string]string{"DB_FLAVOR": "ORACLE"})},
			wantJar: "/usr/share/java/ojdbc6.jar",
			wantURL: "http://h1:6080",
		},
		{
			name: "unknown flavor over https",
			live: model.Configurations{
				"admin-properties": site(map[string]string{"DB_FLAVOR": "DB2"}),
				"ranger-admin-site": site(map[string]string{
					"ranger.service.http.enabled": "False",
					"ranger.service.https.port":   "6182",
				}),
			},
			wantJar: "/usr/share/java/mysql-connector-java.jar",
			wantURL: "https://h1:6182",
		},
		{
			name:    "legacy site port",
			live:    model.Configurations{"ranger-site": site(map[string]string{"http.service.port": "7080"})},
			wantURL: "http://h1:7080",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := rangerRequest("0.5.0")
			req.Configurations = tt.live

			rec := recommend(t, req)

			jar, ok := rec.Configurations.Get("admin-properties", "SQL_CONNECTOR_JAR")
			if tt.wantJar == "" {
				assert.False(t, ok)
			} else {
				assert.Equal(t, tt.wantJar, jar)
			}
			url, _ := rec.Configurations.Get("admin-properties", "policymgr_external_url")
			assert.Equal(t, tt.wantURL, url)
			assert.False(t, rec.Configurations.Has("usersync-properties"))
		})
	}
}

func TestRecommendRanger_Legacy(t *testing.T) {
	req := rangerRequest(legacyRangerVersion)
	req.Services = append(req.Services, service("HDFS", component("NAMENODE", "1", "h1")))
	req.ServerProperties = map[string]string{
		"ambari.ldap.isConfigured":              "true",
		"authentication.ldap.managerDn":         "cn=admin,dc=example,dc=com",
		"authentication.ldap.primaryUrl":        "ldap.example.com:636",
		"authentication.ldap.useSSL":            "true",
		"authentication.ldap.usernameAttribute": "uid",
	}
	req.Configurations = model.Configurations{
		"admin-properties":    site(map[string]string{"DB_FLAVOR": "MYSQL"}),
		"usersync-properties": site(map[string]string{"SYNC_SOURCE": "ldap"}),
		"core-site":           site(map[string]string{"fs.defaultFS": "hdfs://nn:8020"}),
		"ranger-env": site(map[string]string{
			"xasecure.audit.destination.db":       "true",
			"xasecure.audit.destination.hdfs.dir": "hdfs://old/audit",
		}),
		"ranger-hdfs-plugin-properties": site(map[string]string{}),
	}

	rec := recommend(t, req)
	cfg := rec.Configurations

	wantSync := map[string]string{
		"SYNC_LDAP_BIND_DN":             "cn=admin,dc=example,dc=com",
		"SYNC_LDAP_URL":                 "ldaps://ldap.example.com:636",
		"SYNC_LDAP_USER_NAME_ATTRIBUTE": "uid",
	}
	if diff := cmp.Diff(wantSync, cfg.Properties("usersync-properties")); diff != "" {
		t.Errorf("usersync-properties mismatch (-want +got):\n%s", diff)
	}

	method, _ := cfg.Get("admin-properties", "authentication_method")
	assert.Equal(t, "LDAP", method)

	auditDir := "hdfs://nn:8020/ranger/audit/%app-type%/%time:yyyyMMdd%"
	dir, _ := cfg.Get("ranger-env", "xasecure.audit.destination.hdfs.dir")
	assert.Equal(t, auditDir, dir)

	wantPlugin := map[string]string{
		"XAAUDIT.DB.IS_ENABLED":              "true",
		"XAAUDIT.HDFS.DESTINATION_DIRECTORY": auditDir,
	}
	if diff := cmp.Diff(wantPlugin, cfg.Properties("ranger-hdfs-plugin-properties")); diff != "" {
		t.Errorf("ranger-hdfs-plugin-properties mismatch (-want +got):\n%s", diff)
	}
}

func TestRecommendRanger_FileSyncKeepsAuthentication(t *testing.T) {
	req := rangerRequest(legacyRangerVersion)
	req.Configurations = model.Configurations{
		"admin-properties":    site(map[string]string{}),
		"usersync-properties": site(map[string]string{"SYNC_SOURCE": "file"}),
	}

	rec := recommend(t, req)

	_, ok := rec.Configurations.Get("admin-properties", "authentication_method")
	assert.False(t, ok)
}
