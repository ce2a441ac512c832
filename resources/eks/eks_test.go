package eks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResourceTypes(t *testing.T) {
	assert.Equal(t, "AWS::EKS::Cluster", Cluster{}.ResourceType())
	assert.Equal(t, "AWS::EKS::Nodegroup", Nodegroup{}.ResourceType())
	assert.Equal(t, "AWS::EKS::AccessEntry", AccessEntry{}.ResourceType())
	assert.Equal(t, "AWS::EKS::PodIdentityAssociation", PodIdentityAssociation{}.ResourceType())
	assert.Equal(t, "AWS::EKS::Addon", Addon{}.ResourceType())
}
