// Package ec2 contains typed AWS::EC2 resources used by the networking stack.
//
// Fields hold either literal values or intrinsics (Ref, GetAtt, ImportValue),
// so most of them are typed any. Zero values are omitted from the template.
//
//	vpc := ec2.VPC{
//		CidrBlock:          "10.0.0.0/16",
//		EnableDnsSupport:   true,
//		EnableDnsHostnames: true,
//	}
package ec2
