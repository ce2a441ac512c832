package eks

// AccessEntry is an AWS::EKS::AccessEntry resource.
type AccessEntry struct {
	ClusterName      any   `json:"ClusterName,omitempty"`
	PrincipalArn     any   `json:"PrincipalArn,omitempty"`
	Type             any   `json:"Type,omitempty"`
	Username         any   `json:"Username,omitempty"`
	KubernetesGroups []any `json:"KubernetesGroups,omitempty"`
	AccessPolicies   []any `json:"AccessPolicies,omitempty"`
	Tags             []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r AccessEntry) ResourceType() string { return "AWS::EKS::AccessEntry" }

// AccessEntry_AccessPolicy associates an EKS access policy with an entry.
type AccessEntry_AccessPolicy struct {
	PolicyArn   any                      `json:"PolicyArn,omitempty"`
	AccessScope *AccessEntry_AccessScope `json:"AccessScope,omitempty"`
}

// AccessEntry_AccessScope limits an access policy to the cluster or namespaces.
type AccessEntry_AccessScope struct {
	Type_      any   `json:"Type,omitempty"`
	Namespaces []any `json:"Namespaces,omitempty"`
}

// PodIdentityAssociation is an AWS::EKS::PodIdentityAssociation resource.
type PodIdentityAssociation struct {
	ClusterName    any   `json:"ClusterName,omitempty"`
	Namespace      any   `json:"Namespace,omitempty"`
	ServiceAccount any   `json:"ServiceAccount,omitempty"`
	RoleArn        any   `json:"RoleArn,omitempty"`
	Tags           []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r PodIdentityAssociation) ResourceType() string { return "AWS::EKS::PodIdentityAssociation" }

// Addon is an AWS::EKS::Addon resource.
type Addon struct {
	AddonName             any   `json:"AddonName,omitempty"`
	AddonVersion          any   `json:"AddonVersion,omitempty"`
	ClusterName           any   `json:"ClusterName,omitempty"`
	ResolveConflicts      any   `json:"ResolveConflicts,omitempty"`
	ServiceAccountRoleArn any   `json:"ServiceAccountRoleArn,omitempty"`
	Tags                  []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r Addon) ResourceType() string { return "AWS::EKS::Addon" }
