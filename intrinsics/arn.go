package intrinsics

import "fmt"

// Partition is the only partition the platform targets.
const Partition = "aws"

// AccountRootArn returns the root principal ARN of an account.
func AccountRootArn(account string) string {
	return fmt.Sprintf("arn:%s:iam::%s:root", Partition, account)
}

// ManagedPolicyArn returns the ARN of an AWS managed IAM policy.
func ManagedPolicyArn(name string) string {
	return fmt.Sprintf("arn:%s:iam::aws:policy/%s", Partition, name)
}

// HostedZoneArn returns the ARN of a Route 53 hosted zone.
// Route 53 is global, so the ARN carries neither account nor region.
func HostedZoneArn(zoneID string) string {
	return fmt.Sprintf("arn:%s:route53:::hostedzone/%s", Partition, zoneID)
}

// Route53ChangeArnPattern matches every Route 53 change batch.
func Route53ChangeArnPattern() string {
	return fmt.Sprintf("arn:%s:route53:::change/*", Partition)
}

// EKSClusterArnPattern matches every EKS cluster of an account in any region.
func EKSClusterArnPattern(account string) string {
	return fmt.Sprintf("arn:%s:eks:*:%s:cluster/*", Partition, account)
}

// EKSAccessPolicyArn returns the ARN of an EKS cluster access policy.
func EKSAccessPolicyArn(name string) string {
	return fmt.Sprintf("arn:%s:eks::aws:cluster-access-policy/%s", Partition, name)
}
