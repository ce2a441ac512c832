package eks

// Nodegroup is an AWS::EKS::Nodegroup resource.
type Nodegroup struct {
	ClusterName   any                      `json:"ClusterName,omitempty"`
	NodegroupName any                      `json:"NodegroupName,omitempty"`
	NodeRole      any                      `json:"NodeRole,omitempty"`
	Subnets       []any                    `json:"Subnets,omitempty"`
	InstanceTypes []any                    `json:"InstanceTypes,omitempty"`
	AmiType       any                      `json:"AmiType,omitempty"`
	CapacityType  any                      `json:"CapacityType,omitempty"`
	ScalingConfig *Nodegroup_ScalingConfig `json:"ScalingConfig,omitempty"`
	Labels        map[string]any           `json:"Labels,omitempty"`
	Tags          map[string]any           `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r Nodegroup) ResourceType() string { return "AWS::EKS::Nodegroup" }

// Nodegroup_ScalingConfig sizes a managed node group.
type Nodegroup_ScalingConfig struct {
	DesiredSize int `json:"DesiredSize,omitempty"`
	MinSize     int `json:"MinSize,omitempty"`
	MaxSize     int `json:"MaxSize,omitempty"`
}
