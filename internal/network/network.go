// Package network declares the virtual network of the platform: a VPC with
// one subnet per zone and visibility class, internet and NAT gateways, route
// tables and the shared security group.
package network

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	eksplatform "github.com/coderco/eks-platform"
	"github.com/coderco/eks-platform/internal/assembly"
	"github.com/coderco/eks-platform/internal/config"
	"github.com/coderco/eks-platform/internal/naming"
	"github.com/coderco/eks-platform/intrinsics"
	"github.com/coderco/eks-platform/resources/ec2"
)

// Subnet tags read by the AWS load balancer integrations.
const (
	ELBRoleTag         = "kubernetes.io/role/elb"
	InternalELBRoleTag = "kubernetes.io/role/internal-elb"

	SubnetNameTag = "eks-platform:subnet-name"
	SubnetTypeTag = "eks-platform:subnet-type"
)

// Subnet is one declared subnet.
type Subnet struct {
	Group string
	Type  config.SubnetType
	Zone  string
	CIDR  netip.Prefix
	// Index is the 1-based position within the group.
	Index int

	Declaration *assembly.Declaration
	RouteTable  *assembly.Declaration
	// DefaultRoute is the 0.0.0.0/0 route of the subnet's route table.
	DefaultRoute *assembly.Declaration
	// Export is the exported subnet ID.
	Export assembly.Export
}

// Network is the synthesized network unit.
type Network struct {
	Stack    *assembly.Stack
	Topology config.NetworkTopology
	Zones    []string

	VPC               *assembly.Declaration
	InternetGateway   *assembly.Declaration
	GatewayAttachment *assembly.Declaration
	NatGateways       []*assembly.Declaration
	SecurityGroup     *assembly.Declaration

	// Subnets are in allocation order: group, then zone.
	Subnets []Subnet

	VpcID           assembly.Export
	SecurityGroupID assembly.Export
}

// Synthesize declares the network described by topology in stack.
func Synthesize(stack *assembly.Stack, topology config.NetworkTopology, env eksplatform.Environment) (*Network, error) {
	cidrs, err := topology.SubnetCIDRs()
	if err != nil {
		return nil, fmt.Errorf("allocating subnets: %w", err)
	}

	n := &Network{
		Stack:    stack,
		Topology: topology,
		Zones:    topology.Zones(env.Region),
	}

	n.VPC = stack.Add(topology.Name, ec2.VPC{
		CidrBlock:          topology.CIDR,
		EnableDnsHostnames: true,
		EnableDnsSupport:   true,
		InstanceTenancy:    "default",
		Tags:               intrinsics.Tags("Name", naming.Path(stack.Name, topology.Name)),
	})
	n.declareInternetGateway()

	i := 0
	for _, spec := range topology.Subnets {
		for z, zone := range n.Zones {
			n.Subnets = append(n.Subnets, n.declareSubnet(spec, zone, z+1, cidrs[i]))
			i++
		}
	}

	n.declareNatGateways()
	n.declareRoutes()
	n.declareSecurityGroup()
	n.declareExports()
	return n, nil
}

// SubnetsOf returns the subnets of a visibility class in zone order.
func (n *Network) SubnetsOf(t config.SubnetType) []Subnet {
	var out []Subnet
	for _, s := range n.Subnets {
		if s.Type == t {
			out = append(out, s)
		}
	}
	return out
}

// SubnetExports returns the subnet ID exports of a visibility class.
func (n *Network) SubnetExports(t config.SubnetType) []assembly.Export {
	var out []assembly.Export
	for _, s := range n.SubnetsOf(t) {
		out = append(out, s.Export)
	}
	return out
}

func (n *Network) id(parts ...string) string {
	return naming.LogicalID(append([]string{n.Topology.Name}, parts...)...)
}

func (n *Network) nameTag(id string) string {
	return naming.Path(n.Stack.Name, id)
}

func (n *Network) declareInternetGateway() {
	igwID := n.id("IGW")
	n.InternetGateway = n.Stack.Add(igwID, ec2.InternetGateway{
		Tags: intrinsics.Tags("Name", n.nameTag(n.Topology.Name)),
	})
	n.GatewayAttachment = n.Stack.Add(n.id("VPCGW"), ec2.VPCGatewayAttachment{
		VpcId:             n.VPC.Ref(),
		InternetGatewayId: n.InternetGateway.Ref(),
	})
}

func (n *Network) declareSubnet(spec config.SubnetSpec, zone string, index int, cidr netip.Prefix) Subnet {
	base := n.id(spec.Name, "Subnet", strconv.Itoa(index))

	roleTag := InternalELBRoleTag
	typeTag := "Private"
	if spec.Type == config.SubnetPublic {
		roleTag = ELBRoleTag
		typeTag = "Public"
	}

	s := Subnet{Group: spec.Name, Type: spec.Type, Zone: zone, CIDR: cidr, Index: index}
	s.Declaration = n.Stack.Add(base, ec2.Subnet{
		VpcId:               n.VPC.Ref(),
		CidrBlock:           cidr.String(),
		AvailabilityZone:    zone,
		MapPublicIpOnLaunch: spec.Type == config.SubnetPublic,
		Tags: intrinsics.Tags(
			SubnetNameTag, spec.Name,
			SubnetTypeTag, typeTag,
			roleTag, "1",
			"Name", n.nameTag(base),
		),
	})
	s.RouteTable = n.Stack.Add(base+"RouteTable", ec2.RouteTable{
		VpcId: n.VPC.Ref(),
		Tags:  intrinsics.Tags("Name", n.nameTag(base)),
	})
	n.Stack.Add(base+"RouteTableAssociation", ec2.SubnetRouteTableAssociation{
		RouteTableId: s.RouteTable.Ref(),
		SubnetId:     s.Declaration.Ref(),
	})
	return s
}

// declareNatGateways places the NAT gateways in the first public subnets,
// in zone order.
func (n *Network) declareNatGateways() {
	public := n.SubnetsOf(config.SubnetPublic)
	for i := 0; i < n.Topology.NatGateways && i < len(public); i++ {
		s := public[i]
		base := s.Declaration.ID
		eip := n.Stack.Add(base+"EIP", ec2.EIP{
			Domain: "vpc",
			Tags:   intrinsics.Tags("Name", n.nameTag(base)),
		})
		n.NatGateways = append(n.NatGateways, n.Stack.Add(base+"NATGateway", ec2.NatGateway{
			AllocationId: eip.GetAtt("AllocationId"),
			SubnetId:     s.Declaration.Ref(),
			Tags:         intrinsics.Tags("Name", n.nameTag(base)),
		}))
	}
}

// declareRoutes adds the default route of every subnet: public subnets
// through the internet gateway, private subnets through a NAT gateway,
// round-robin by zone.
func (n *Network) declareRoutes() {
	var publicRoutes []*assembly.Declaration
	private := 0
	for i := range n.Subnets {
		s := &n.Subnets[i]
		route := ec2.Route{
			RouteTableId:         s.RouteTable.Ref(),
			DestinationCidrBlock: "0.0.0.0/0",
		}
		switch s.Type {
		case config.SubnetPublic:
			route.GatewayId = n.InternetGateway.Ref()
		case config.SubnetPrivateWithEgress:
			if len(n.NatGateways) == 0 {
				continue
			}
			route.NatGatewayId = n.NatGateways[private%len(n.NatGateways)].Ref()
			private++
		}
		s.DefaultRoute = n.Stack.Add(s.Declaration.ID+"DefaultRoute", route)
		if s.Type == config.SubnetPublic {
			s.DefaultRoute.AddDependency(n.GatewayAttachment)
			publicRoutes = append(publicRoutes, s.DefaultRoute)
		}
	}

	// NAT gateways need internet connectivity in their subnets
	for _, nat := range n.NatGateways {
		nat.AddDependency(publicRoutes...)
	}
}

func (n *Network) declareSecurityGroup() {
	sgID := n.id("SecurityGroup")

	var ingress []any
	for _, rule := range n.Topology.FirewallRules {
		ingress = append(ingress, ingressRule(rule))
	}

	egress := []any{ec2.SecurityGroup_Egress{
		IpProtocol:  "-1",
		CidrIp:      "0.0.0.0/0",
		Description: "Allow all outbound traffic by default",
	}}
	if n.Topology.RestrictOutbound {
		// an unmatchable rule replaces the implicit allow-all
		egress = []any{ec2.SecurityGroup_Egress{
			IpProtocol:  "icmp",
			CidrIp:      "255.255.255.255/32",
			FromPort:    252,
			ToPort:      86,
			Description: "Disallow all traffic",
		}}
	}

	n.SecurityGroup = n.Stack.Add(sgID, ec2.SecurityGroup{
		GroupName:            n.Topology.SecurityGroupName,
		GroupDescription:     n.nameTag(sgID),
		VpcId:                n.VPC.Ref(),
		SecurityGroupIngress: ingress,
		SecurityGroupEgress:  egress,
		Tags:                 intrinsics.Tags("Name", n.nameTag(sgID)),
	})
}

func ingressRule(rule config.FirewallRule) ec2.SecurityGroup_Ingress {
	in := ec2.SecurityGroup_Ingress{
		IpProtocol:  rule.Protocol,
		CidrIp:      rule.Source,
		Description: rule.Description,
	}
	switch strings.ToLower(rule.Protocol) {
	case "-1":
		// every protocol, no ports
	case "icmp":
		in.FromPort, in.ToPort = -1, -1
	default:
		in.FromPort, in.ToPort = rule.Port, rule.Port
	}
	if rule.Description == "" {
		in.Description = fmt.Sprintf("from %s:%s", rule.Source, portLabel(rule))
	}
	return in
}

func portLabel(rule config.FirewallRule) string {
	switch rule.Protocol {
	case "-1":
		return "ALL TRAFFIC"
	case "icmp":
		return "ICMP"
	}
	return strconv.Itoa(rule.Port)
}

func (n *Network) declareExports() {
	n.VpcID = n.Stack.Export("VpcId", n.VPC.Ref())
	for i := range n.Subnets {
		s := &n.Subnets[i]
		s.Export = n.Stack.Export(naming.LogicalID(s.Group, "Subnet", strconv.Itoa(s.Index), "Id"), s.Declaration.Ref())
	}
	n.SecurityGroupID = n.Stack.Export("SecurityGroupId", n.SecurityGroup.GetAtt("GroupId"))
}
