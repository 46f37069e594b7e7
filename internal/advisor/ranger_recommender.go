package advisor

import (
	"fmt"
	"strings"
)

const legacyRangerVersion = "0.4.0"

var rangerSQLConnectors = map[string]string{
	"MYSQL":    "/usr/share/java/mysql-connector-java.jar",
	"ORACLE":   "/usr/share/java/ojdbc6.jar",
	"POSTGRES": "/usr/share/java/postgresql.jar",
	"MSSQL":    "/usr/share/java/sqljdbc4.jar",
	"SQLA":     "/path_to_driver/sqla-client-jdbc.tar.gz",
}

type rangerPlugin struct {
	service   string
	auditFile string
}

var rangerPlugins = []rangerPlugin{
	{service: "HDFS", auditFile: "ranger-hdfs-plugin-properties"},
	{service: "HBASE", auditFile: "ranger-hbase-plugin-properties"},
	{service: "HIVE", auditFile: "ranger-hive-plugin-properties"},
	{service: "KNOX", auditFile: "ranger-knox-plugin-properties"},
	{service: "STORM", auditFile: "ranger-storm-plugin-properties"},
}

// ranger-env audit switches and the plugin property each one feeds.
var rangerAuditMapping = []struct {
	source string
	target string
}{
	{source: "xasecure.audit.destination.db", target: "XAAUDIT.DB.IS_ENABLED"},
	{source: "xasecure.audit.destination.hdfs", target: "XAAUDIT.HDFS.IS_ENABLED"},
	{source: "xasecure.audit.destination.hdfs.dir", target: "XAAUDIT.HDFS.DESTINATION_DIRECTORY"},
}

func (a *Advisor) recommendRanger(in *stageInput, w *ConfigWriter) {
	live := in.live()

	if flavor, ok := live.Get("admin-properties", "DB_FLAVOR"); ok {
		jar, known := rangerSQLConnectors[flavor]
		if !known {
			jar = rangerSQLConnectors["MYSQL"]
		}
		w.Put("admin-properties", "SQL_CONNECTOR_JAR", jar)
	}

	w.Put("admin-properties", "policymgr_external_url", rangerExternalURL(in))

	svc, _ := in.req.Services.Find("RANGER")
	if svc == nil || svc.Version != legacyRangerVersion {
		return
	}

	a.recommendRangerUserSync(in, w)

	if live.Has("admin-properties") {
		if source, ok := live.Get("usersync-properties", "SYNC_SOURCE"); ok {
			if method := strings.ToUpper(source); method != "FILE" {
				w.Put("admin-properties", "authentication_method", method)
			}
		}
	}

	if in.req.Services.Installed("HDFS") {
		if fs, ok := live.Get("core-site", "fs.defaultFS"); ok {
			w.Put("ranger-env", "xasecure.audit.destination.hdfs.dir", fs+"/ranger/audit/%app-type%/%time:yyyyMMdd%")
		}
	}

	for _, plugin := range rangerPlugins {
		if !in.req.Services.Installed(plugin.service) || !live.Has(plugin.auditFile) {
			continue
		}
		for _, m := range rangerAuditMapping {
			if _, ok := live.Get("ranger-env", m.source); !ok {
				continue
			}
			value, ok := w.Get("ranger-env", m.source)
			if !ok {
				value, _ = live.Get("ranger-env", m.source)
			}
			w.Put(plugin.auditFile, m.target, value)
		}
	}
}

func rangerExternalURL(in *stageInput) string {
	live := in.live()
	isFalse := func(configType, key string) bool {
		v, ok := live.Get(configType, key)
		return ok && strings.ToLower(v) == "false"
	}
	firstOf := func(def string, refs ...[2]string) string {
		for _, r := range refs {
			if v, ok := live.Get(r[0], r[1]); ok {
				return v
			}
		}
		return def
	}

	protocol := "http"
	var port string
	if isFalse("ranger-site", "http.enabled") || isFalse("ranger-admin-site", "ranger.service.http.enabled") {
		protocol = "https"
		port = firstOf("6080",
			[2]string{"ranger-admin-site", "ranger.service.https.port"},
			[2]string{"ranger-site", "https.service.port"})
	} else {
		port = firstOf("6080",
			[2]string{"ranger-admin-site", "ranger.service.http.port"},
			[2]string{"ranger-site", "http.service.port"})
	}

	host := "localhost"
	if hosts := in.req.Services.ComponentHosts("RANGER", "RANGER_ADMIN"); len(hosts) > 0 {
		host = hosts[0]
	}
	return fmt.Sprintf("%s://%s:%s", protocol, host, port)
}

// recommendRangerUserSync copies the identity store settings of the
// management server into the user sync process.
func (a *Advisor) recommendRangerUserSync(in *stageInput, w *ConfigWriter) {
	props := in.req.ServerProperties
	if strings.ToLower(props["ambari.ldap.isConfigured"]) != "true" {
		return
	}

	if v, ok := props["authentication.ldap.managerDn"]; ok {
		w.Put("usersync-properties", "SYNC_LDAP_BIND_DN", v)
	}
	if primary, ok := props["authentication.ldap.primaryUrl"]; ok {
		url := primary
		if primary != "" {
			scheme := "ldap://"
			if props["authentication.ldap.useSSL"] == "true" {
				scheme = "ldaps://"
			}
			url = scheme + primary
		}
		w.Put("usersync-properties", "SYNC_LDAP_URL", url)
	}
	if v, ok := props["authentication.ldap.userObjectClass"]; ok {
		w.Put("usersync-properties", "SYNC_LDAP_USER_OBJECT_CLASS", v)
	}
	if v, ok := props["authentication.ldap.usernameAttribute"]; ok {
		w.Put("usersync-properties", "SYNC_LDAP_USER_NAME_ATTRIBUTE", v)
	}
}
