package advisor

import (
	"fmt"

	"github.com/samber/lo"

	"stack-advisor/internal/model"
)

// proxyUser is a service account allowed to impersonate other users.
type proxyUser struct {
	name       string
	hosts      string
	groups     string
	configType string // where the account name is configured
	property   string
}

func (a *Advisor) recommendProxyUsers(in *stageInput, w *ConfigWriter) {
	users := collectProxyUsers(in)

	for _, u := range users {
		hostsKey, groupsKey := proxyUserKeys(u.name)
		w.Put("core-site", hostsKey, u.hosts)
		w.Put("core-site", groupsKey, u.groups)

		old, ok := in.req.ChangedOldValue(u.configType, u.property)
		if !ok || old == u.name {
			continue
		}
		oldHosts, oldGroups := proxyUserKeys(old)
		w.PutAttribute("core-site", oldHosts, model.AttrDelete, "true")
		w.PutAttribute("core-site", oldGroups, model.AttrDelete, "true")
		w.Force(
			model.ConfigRef{Type: "core-site", Name: oldHosts},
			model.ConfigRef{Type: "core-site", Name: oldGroups},
			model.ConfigRef{Type: "core-site", Name: hostsKey},
			model.ConfigRef{Type: "core-site", Name: groupsKey},
		)
		a.logger.Debug().Str("old_user", old).Str("new_user", u.name).Msg("proxy user renamed")
	}
}

func proxyUserKeys(user string) (string, string) {
	return fmt.Sprintf("hadoop.proxyuser.%s.hosts", user), fmt.Sprintf("hadoop.proxyuser.%s.groups", user)
}

// collectProxyUsers lists proxy users in a fixed order. The first claim of
// an account name wins.
func collectProxyUsers(in *stageInput) []proxyUser {
	live := in.live()
	services := in.req.Services
	var users []proxyUser

	add := func(u proxyUser) {
		if lo.ContainsBy(users, func(x proxyUser) bool { return x.name == u.name }) {
			return
		}
		users = append(users, u)
	}

	proxyGroup, hasProxyGroup := live.Get("hadoop-env", "proxyuser_group")

	if services.Installed("HDFS") {
		if u, ok := live.Get("hadoop-env", "hdfs_user"); ok {
			add(proxyUser{name: u, hosts: "*", groups: "*", configType: "hadoop-env", property: "hdfs_user"})
		}
	}

	if services.Installed("OOZIE") {
		if u, ok := live.Get("oozie-env", "oozie_user"); ok {
			if h := firstHostWithComponent(in.req, "OOZIE", "OOZIE_SERVER"); h != nil {
				add(proxyUser{name: u, hosts: h.PublicName(), groups: "*", configType: "oozie-env", property: "oozie_user"})
			}
		}
	}

	if services.Installed("HIVE") {
		hiveUser, okHive := live.Get("hive-env", "hive_user")
		webhcatUser, okWebhcat := live.Get("hive-env", "webhcat_user")
		if okHive && okWebhcat {
			if h := firstHostWithComponent(in.req, "HIVE", "HIVE_SERVER"); h != nil {
				add(proxyUser{name: hiveUser, hosts: h.PublicName(), groups: "*", configType: "hive-env", property: "hive_user"})
				if hasProxyGroup {
					add(proxyUser{name: webhcatUser, hosts: h.PublicName(), groups: proxyGroup, configType: "hive-env", property: "webhcat_user"})
				}
			}
		}
	}

	if services.Installed("FALCON") {
		if u, ok := live.Get("falcon-env", "falcon_user"); ok && hasProxyGroup {
			add(proxyUser{name: u, hosts: "*", groups: proxyGroup, configType: "falcon-env", property: "falcon_user"})
		}
	}

	return users
}

// hostsWithComponent returns the inventory hosts running service/component,
// in inventory order.
func hostsWithComponent(req *model.Request, service, component string) []*model.Host {
	assigned := req.Services.ComponentHosts(service, component)
	if len(assigned) == 0 {
		return nil
	}
	var hosts []*model.Host
	for i := range req.Hosts {
		if lo.Contains(assigned, req.Hosts[i].HostName) {
			hosts = append(hosts, &req.Hosts[i])
		}
	}
	return hosts
}

func firstHostWithComponent(req *model.Request, service, component string) *model.Host {
	hosts := hostsWithComponent(req, service, component)
	if len(hosts) == 0 {
		return nil
	}
	return hosts[0]
}
