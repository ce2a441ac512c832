package template

import (
	"fmt"
	"testing"

	eksplatform "github.com/coderco/eks-platform"
	"github.com/coderco/eks-platform/intrinsics"
	"github.com/coderco/eks-platform/resources/ec2"
)

// BenchmarkBuild benchmarks building templates with varying subnet counts.
func BenchmarkBuild(b *testing.B) {
	sizes := []int{10, 50, 100, 200}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("resources_%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				builder := newSubnetBuilder(size)
				if _, err := builder.Build(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkToJSON benchmarks JSON serialization with varying subnet counts.
func BenchmarkToJSON(b *testing.B) {
	sizes := []int{10, 50, 100}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("resources_%d", size), func(b *testing.B) {
			tmpl, err := newSubnetBuilder(size).Build()
			if err != nil {
				b.Fatal(err)
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := ToJSON(tmpl); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// newSubnetBuilder declares one VPC and n subnets that reference it.
func newSubnetBuilder(n int) *Builder {
	resources := map[string]eksplatform.DeclaredResource{
		"Vpc": {Name: "Vpc", Stack: "NetworkingStack"},
	}
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("Subnet%d", i)
		resources[name] = eksplatform.DeclaredResource{Name: name, Stack: "NetworkingStack"}
	}

	builder := NewBuilder("NetworkingStack", resources)
	builder.SetValue("Vpc", ec2.VPC{CidrBlock: "10.0.0.0/8"})
	for i := 0; i < n; i++ {
		builder.SetValue(fmt.Sprintf("Subnet%d", i), ec2.Subnet{
			VpcId:     intrinsics.Ref{LogicalName: "Vpc"},
			CidrBlock: fmt.Sprintf("10.%d.0.0/16", i),
		})
	}
	return builder
}
