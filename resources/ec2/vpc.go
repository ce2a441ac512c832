package ec2

// VPC is an AWS::EC2::VPC resource.
type VPC struct {
	CidrBlock          any   `json:"CidrBlock,omitempty"`
	EnableDnsHostnames bool  `json:"EnableDnsHostnames,omitempty"`
	EnableDnsSupport   bool  `json:"EnableDnsSupport,omitempty"`
	InstanceTenancy    any   `json:"InstanceTenancy,omitempty"`
	Tags               []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r VPC) ResourceType() string { return "AWS::EC2::VPC" }

// Subnet is an AWS::EC2::Subnet resource.
type Subnet struct {
	VpcId               any   `json:"VpcId,omitempty"`
	CidrBlock           any   `json:"CidrBlock,omitempty"`
	AvailabilityZone    any   `json:"AvailabilityZone,omitempty"`
	MapPublicIpOnLaunch bool  `json:"MapPublicIpOnLaunch,omitempty"`
	Tags                []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r Subnet) ResourceType() string { return "AWS::EC2::Subnet" }

// InternetGateway is an AWS::EC2::InternetGateway resource.
type InternetGateway struct {
	Tags []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r InternetGateway) ResourceType() string { return "AWS::EC2::InternetGateway" }

// VPCGatewayAttachment is an AWS::EC2::VPCGatewayAttachment resource.
type VPCGatewayAttachment struct {
	VpcId             any `json:"VpcId,omitempty"`
	InternetGatewayId any `json:"InternetGatewayId,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r VPCGatewayAttachment) ResourceType() string { return "AWS::EC2::VPCGatewayAttachment" }

// EIP is an AWS::EC2::EIP resource.
type EIP struct {
	Domain any   `json:"Domain,omitempty"`
	Tags   []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r EIP) ResourceType() string { return "AWS::EC2::EIP" }

// NatGateway is an AWS::EC2::NatGateway resource.
type NatGateway struct {
	AllocationId any   `json:"AllocationId,omitempty"`
	SubnetId     any   `json:"SubnetId,omitempty"`
	Tags         []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r NatGateway) ResourceType() string { return "AWS::EC2::NatGateway" }
