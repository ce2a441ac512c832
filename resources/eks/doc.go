// Package eks contains typed AWS::EKS resources used by the cluster stack.
//
//	cluster := eks.Cluster{
//		Name:    "demo-cluster",
//		Version: "1.32",
//		RoleArn: serviceRole.GetAtt("Arn"),
//		ResourcesVpcConfig: &eks.Cluster_ResourcesVpcConfig{
//			SubnetIds: subnets,
//		},
//	}
package eks
