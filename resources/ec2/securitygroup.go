package ec2

// SecurityGroup is an AWS::EC2::SecurityGroup resource.
type SecurityGroup struct {
	GroupName            any   `json:"GroupName,omitempty"`
	GroupDescription     any   `json:"GroupDescription,omitempty"`
	VpcId                any   `json:"VpcId,omitempty"`
	SecurityGroupIngress []any `json:"SecurityGroupIngress,omitempty"`
	SecurityGroupEgress  []any `json:"SecurityGroupEgress,omitempty"`
	Tags                 []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r SecurityGroup) ResourceType() string { return "AWS::EC2::SecurityGroup" }

// SecurityGroup_Ingress is an inbound rule of a security group.
// FromPort and ToPort are typed any so that port 0 survives serialization.
type SecurityGroup_Ingress struct {
	IpProtocol  any `json:"IpProtocol,omitempty"`
	CidrIp      any `json:"CidrIp,omitempty"`
	FromPort    any `json:"FromPort,omitempty"`
	ToPort      any `json:"ToPort,omitempty"`
	Description any `json:"Description,omitempty"`
}

// SecurityGroup_Egress is an outbound rule of a security group.
type SecurityGroup_Egress struct {
	IpProtocol  any `json:"IpProtocol,omitempty"`
	CidrIp      any `json:"CidrIp,omitempty"`
	FromPort    any `json:"FromPort,omitempty"`
	ToPort      any `json:"ToPort,omitempty"`
	Description any `json:"Description,omitempty"`
}
