package ec2

// RouteTable is an AWS::EC2::RouteTable resource.
type RouteTable struct {
	VpcId any   `json:"VpcId,omitempty"`
	Tags  []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r RouteTable) ResourceType() string { return "AWS::EC2::RouteTable" }

// Route is an AWS::EC2::Route resource.
type Route struct {
	RouteTableId         any `json:"RouteTableId,omitempty"`
	DestinationCidrBlock any `json:"DestinationCidrBlock,omitempty"`
	GatewayId            any `json:"GatewayId,omitempty"`
	NatGatewayId         any `json:"NatGatewayId,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r Route) ResourceType() string { return "AWS::EC2::Route" }

// SubnetRouteTableAssociation is an AWS::EC2::SubnetRouteTableAssociation resource.
type SubnetRouteTableAssociation struct {
	RouteTableId any `json:"RouteTableId,omitempty"`
	SubnetId     any `json:"SubnetId,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r SubnetRouteTableAssociation) ResourceType() string {
	return "AWS::EC2::SubnetRouteTableAssociation"
}
