package inventory

import "stack-advisor/internal/model"

// HostsResponse is returned by GET /api/v1/clusters/:cluster/hosts.
type HostsResponse struct {
	Items model.HostInventory `json:"items"` // 主机列表
	Err   string              `json:"err"`   // 错误信息（空字符串表示成功）
}

// ServicesResponse is returned by GET /api/v1/clusters/:cluster/services.
type ServicesResponse struct {
	Items model.ServiceTopology `json:"items"` // 服务拓扑
	Err   string                `json:"err"`
}

// ConfigurationsResponse is returned by GET /api/v1/clusters/:cluster/configurations.
type ConfigurationsResponse struct {
	Dat ConfigurationsData `json:"dat"`
	Err string             `json:"err"`
}

// ConfigurationsData carries the live configuration of a cluster.
type ConfigurationsData struct {
	Configurations        model.Configurations  `json:"configurations"`                   // 当前配置
	ChangedConfigurations []model.ChangedConfig `json:"changed_configurations,omitempty"` // 本次会话修改的配置
	ServerProperties      map[string]string     `json:"server_properties,omitempty"`      // 管理服务属性
}

func (r *HostsResponse) apiError() string          { return r.Err }
func (r *ServicesResponse) apiError() string       { return r.Err }
func (r *ConfigurationsResponse) apiError() string { return r.Err }

// apiResult is a response envelope carrying an error field.
type apiResult interface {
	apiError() string
}
