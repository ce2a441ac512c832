// Package assembly models the desired-state graph and synthesizes it into a
// cloud assembly.
//
// An App owns stacks, a Stack owns declarations. Declarations read each other
// through Ref and GetAtt within a stack; across stacks a value travels through
// Export and Import, which also records the stack-level dependency.
//
//	app := assembly.NewApp(env)
//	network := app.NewStack("NetworkingStack", "")
//	vpc := network.Add("Vpc", ec2.VPC{CidrBlock: "10.0.0.0/16"})
//	vpcID := network.Export("VpcId", vpc.Ref())
//
//	cluster := app.NewStack("ClusterStack", "")
//	sg := cluster.Add("Sg", ec2.SecurityGroup{VpcId: cluster.Import(vpcID)})
//
//	asm, err := app.Synth()
//	err = asm.Write("cdk.out", assembly.FormatJSON)
//
// All structural errors (duplicate IDs, dangling references, cycles) are
// collected while declaring and reported together by Synth.
package assembly
