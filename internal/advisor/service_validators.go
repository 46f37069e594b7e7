package advisor

import (
	"stack-advisor/internal/model"
)

// siteCheck is the input of one per-site validator.
type siteCheck struct {
	req         *model.Request
	rec         *model.Recommendation
	props       map[string]string // live properties of the site
	recommended map[string]string // recommended properties of the site
}

type siteValidator struct {
	configType string
	validate   func(a *Advisor, c *siteCheck) []*model.Finding
}

// serviceValidators lists, per service, the site validators in run order.
var serviceValidators = map[string][]siteValidator{
	"HDFS":       {{configType: "hadoop-env", validate: (*Advisor).validateHadoopEnv}},
	"MAPREDUCE2": {{configType: "mapred-site", validate: (*Advisor).validateMapredSite}},
	"YARN":       {{configType: "yarn-site", validate: (*Advisor).validateYarnSite}},
	"HBASE":      {{configType: "hbase-env", validate: (*Advisor).validateHBaseEnv}},
	"AMBARI_METRICS": {
		{configType: "ams-hbase-site", validate: (*Advisor).validateAMSHBaseSite},
		{configType: "ams-hbase-env", validate: (*Advisor).validateAMSHBaseEnv},
		{configType: "ams-site", validate: (*Advisor).validateAMSSite},
	},
}

// validateConfigurations runs the site validators of every installed
// service, in request order. A site is checked only when it exists in both
// the live and the recommended trees.
func (a *Advisor) validateConfigurations(req *model.Request, rec *model.Recommendation) []*model.Finding {
	var findings []*model.Finding
	for _, svc := range req.Services {
		for _, v := range serviceValidators[svc.Name] {
			if !rec.Configurations.Has(v.configType) || !req.Configurations.Has(v.configType) {
				continue
			}
			check := &siteCheck{
				req:         req,
				rec:         rec,
				props:       req.Configurations.Properties(v.configType),
				recommended: rec.Configurations.Properties(v.configType),
			}
			found := v.validate(a, check)
			a.logger.Debug().
				Str("service", svc.Name).
				Str("config_type", v.configType).
				Int("findings", len(found)).
				Msg("site validated")
			findings = append(findings, found...)
		}
	}
	return findings
}

func (a *Advisor) validateHadoopEnv(c *siteCheck) []*model.Finding {
	s := newSiteFindings("hadoop-env")
	for _, name := range []string{"namenode_heapsize", "namenode_opt_newsize", "namenode_opt_maxnewsize"} {
		s.add(name, belowRecommended(c.props, c.recommended, name))
	}
	return s.findings
}

func (a *Advisor) validateMapredSite(c *siteCheck) []*model.Finding {
	s := newSiteFindings("mapred-site")
	s.add("mapreduce.map.java.opts", heapFlagBelowRecommended(c.props, c.recommended, "mapreduce.map.java.opts"))
	s.add("mapreduce.reduce.java.opts", heapFlagBelowRecommended(c.props, c.recommended, "mapreduce.reduce.java.opts"))
	for _, name := range []string{
		"mapreduce.task.io.sort.mb",
		"mapreduce.map.memory.mb",
		"mapreduce.reduce.memory.mb",
		"yarn.app.mapreduce.am.resource.mb",
	} {
		s.add(name, belowRecommended(c.props, c.recommended, name))
	}
	s.add("yarn.app.mapreduce.am.command-opts",
		heapFlagBelowRecommended(c.props, c.recommended, "yarn.app.mapreduce.am.command-opts"))
	return s.findings
}

func (a *Advisor) validateYarnSite(c *siteCheck) []*model.Finding {
	s := newSiteFindings("yarn-site")
	clusterEnv := c.req.Configurations.Properties("cluster-env")
	s.add("yarn.nodemanager.resource.memory-mb",
		belowRecommended(c.props, c.recommended, "yarn.nodemanager.resource.memory-mb"))
	s.add("yarn.scheduler.minimum-allocation-mb",
		belowRecommended(c.props, c.recommended, "yarn.scheduler.minimum-allocation-mb"))
	s.add("yarn.nodemanager.linux-container-executor.group",
		equalsPeer(c.props, "yarn.nodemanager.linux-container-executor.group", clusterEnv, "user_group"))
	s.add("yarn.scheduler.maximum-allocation-mb",
		belowRecommended(c.props, c.recommended, "yarn.scheduler.maximum-allocation-mb"))
	return s.findings
}

func (a *Advisor) validateHBaseEnv(c *siteCheck) []*model.Finding {
	s := newSiteFindings("hbase-env")
	s.add("hbase_regionserver_heapsize", belowRecommended(c.props, c.recommended, "hbase_regionserver_heapsize"))
	s.add("hbase_master_heapsize", belowRecommended(c.props, c.recommended, "hbase_master_heapsize"))
	s.add("hbase_user", equalsPeer(c.props, "hbase_user", c.req.Configurations.Properties("hbase-site"), "hbase.superuser"))
	return s.findings
}
