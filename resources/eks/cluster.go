package eks

// Cluster is an AWS::EKS::Cluster resource.
type Cluster struct {
	Name               any                         `json:"Name,omitempty"`
	Version            any                         `json:"Version,omitempty"`
	RoleArn            any                         `json:"RoleArn,omitempty"`
	ResourcesVpcConfig *Cluster_ResourcesVpcConfig `json:"ResourcesVpcConfig,omitempty"`
	AccessConfig       *Cluster_AccessConfig       `json:"AccessConfig,omitempty"`
	Logging            *Cluster_Logging            `json:"Logging,omitempty"`
	Tags               []any                       `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r Cluster) ResourceType() string { return "AWS::EKS::Cluster" }

// Cluster_ResourcesVpcConfig places the control plane into subnets.
// The endpoint flags are typed any because CloudFormation defaults public
// access to true, so an explicit false must survive serialization.
type Cluster_ResourcesVpcConfig struct {
	SubnetIds             []any `json:"SubnetIds,omitempty"`
	SecurityGroupIds      []any `json:"SecurityGroupIds,omitempty"`
	EndpointPublicAccess  any   `json:"EndpointPublicAccess,omitempty"`
	EndpointPrivateAccess any   `json:"EndpointPrivateAccess,omitempty"`
	PublicAccessCidrs     []any `json:"PublicAccessCidrs,omitempty"`
}

// Cluster_AccessConfig selects how IAM principals authenticate to the cluster.
type Cluster_AccessConfig struct {
	AuthenticationMode                      any `json:"AuthenticationMode,omitempty"`
	BootstrapClusterCreatorAdminPermissions any `json:"BootstrapClusterCreatorAdminPermissions,omitempty"`
}

// Cluster_Logging enables control plane log types.
type Cluster_Logging struct {
	ClusterLogging *Cluster_ClusterLogging `json:"ClusterLogging,omitempty"`
}

// Cluster_ClusterLogging lists the enabled log types.
type Cluster_ClusterLogging struct {
	EnabledTypes []any `json:"EnabledTypes,omitempty"`
}

// Cluster_LoggingTypeConfig is a single control plane log type.
type Cluster_LoggingTypeConfig struct {
	Type_ any `json:"Type,omitempty"`
}
