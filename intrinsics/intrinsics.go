// Package intrinsics provides CloudFormation intrinsic functions.
//
// This package re-exports the core intrinsic types from cloudformation-schema-go
// and adds IAM policy and ARN helpers used by the platform units.
//
// Core intrinsic functions:
//
//	Ref{LogicalName: "Vpc"} → {"Ref": "Vpc"}
//	Sub{String: "${AWS::StackName}-vpc"} → {"Fn::Sub": "${AWS::StackName}-vpc"}
//	ImportValue{ExportName: "NetworkingStack:VpcId"} → {"Fn::ImportValue": "NetworkingStack:VpcId"}
//
// Pseudo-parameters:
//
//	AWS_REGION, AWS_ACCOUNT_ID, AWS_STACK_NAME, etc.
package intrinsics

import (
	"encoding/json"

	"github.com/lex00/cloudformation-schema-go/intrinsics"
)

type (
	// Ref represents a CloudFormation Ref intrinsic function.
	Ref = intrinsics.Ref

	// GetAtt represents a CloudFormation Fn::GetAtt intrinsic function.
	GetAtt = intrinsics.GetAtt

	// Sub represents a CloudFormation Fn::Sub intrinsic function.
	Sub = intrinsics.Sub

	// SubWithMap is Fn::Sub with a variable map.
	SubWithMap = intrinsics.SubWithMap

	// Join represents a CloudFormation Fn::Join intrinsic function.
	Join = intrinsics.Join

	// Select represents a CloudFormation Fn::Select intrinsic function.
	Select = intrinsics.Select

	// GetAZs represents a CloudFormation Fn::GetAZs intrinsic function.
	GetAZs = intrinsics.GetAZs

	// ImportValue represents a CloudFormation Fn::ImportValue intrinsic function.
	ImportValue = intrinsics.ImportValue

	// Tag represents a CloudFormation resource tag.
	Tag = intrinsics.Tag
)

// IsIntrinsic reports whether v serializes to a CloudFormation intrinsic
// function object ({"Ref": ...} or {"Fn::...": ...}).
func IsIntrinsic(v any) bool {
	switch v.(type) {
	case Ref, GetAtt, Sub, SubWithMap, Join, Select, GetAZs, ImportValue:
		return true
	case json.Marshaler:
		data, err := json.Marshal(v)
		if err != nil {
			return false
		}
		var obj map[string]any
		if err := json.Unmarshal(data, &obj); err != nil || len(obj) != 1 {
			return false
		}
		for key := range obj {
			return key == "Ref" || (len(key) > 4 && key[:4] == "Fn::")
		}
	}
	return false
}

// Tags builds a tag list from alternating key/value pairs in declaration order.
//
//	Tags("Name", "NetworkingStack/Vpc", "kubernetes.io/role/elb", "1")
func Tags(kv ...string) []any {
	tags := make([]any, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		tags = append(tags, Tag{Key: kv[i], Value: kv[i+1]})
	}
	return tags
}
