package lookup

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRoute53 struct {
	pages []*route53.ListHostedZonesByNameOutput
	err   error
	calls []*route53.ListHostedZonesByNameInput
}

func (f *fakeRoute53) ListHostedZonesByName(_ context.Context, in *route53.ListHostedZonesByNameInput, _ ...func(*route53.Options)) (*route53.ListHostedZonesByNameOutput, error) {
	f.calls = append(f.calls, in)
	if f.err != nil {
		return nil, f.err
	}
	page := f.pages[len(f.calls)-1]
	return page, nil
}

func zone(id, name string, private bool) types.HostedZone {
	return types.HostedZone{
		Id:     aws.String("/hostedzone/" + id),
		Name:   aws.String(name),
		Config: &types.HostedZoneConfig{PrivateZone: private},
	}
}

var testQuery = HostedZoneQuery{Account: "111111111111", Region: "us-east-1", DomainName: "cdk-labs.com"}

func TestRoute53Provider_ExactMatch(t *testing.T) {
	fake := &fakeRoute53{pages: []*route53.ListHostedZonesByNameOutput{{
		HostedZones: []types.HostedZone{
			zone("ZPRIVATE", "cdk-labs.com.", true),
			zone("ZPUBLIC", "cdk-labs.com.", false),
			zone("ZOTHER", "dev.cdk-labs.com.", false),
		},
	}}}

	got, err := NewRoute53Provider(fake).HostedZone(context.Background(), testQuery)
	require.NoError(t, err)
	assert.Equal(t, HostedZone{ID: "ZPUBLIC", Name: "cdk-labs.com"}, got)
	require.Len(t, fake.calls, 1)
	assert.Equal(t, "cdk-labs.com", aws.ToString(fake.calls[0].DNSName))
}

func TestRoute53Provider_PrivateOnly(t *testing.T) {
	fake := &fakeRoute53{pages: []*route53.ListHostedZonesByNameOutput{{
		HostedZones: []types.HostedZone{zone("ZPRIVATE", "cdk-labs.com.", true)},
	}}}

	got, err := NewRoute53Provider(fake).HostedZone(context.Background(), testQuery)
	require.NoError(t, err)
	assert.Equal(t, HostedZone{ID: "ZPRIVATE", Name: "cdk-labs.com", Private: true}, got)
}

func TestRoute53Provider_Pagination(t *testing.T) {
	fake := &fakeRoute53{pages: []*route53.ListHostedZonesByNameOutput{
		{
			HostedZones:      []types.HostedZone{zone("ZPRIVATE", "cdk-labs.com.", true)},
			IsTruncated:      true,
			NextDNSName:      aws.String("cdk-labs.com."),
			NextHostedZoneId: aws.String("ZPUBLIC"),
		},
		{
			HostedZones: []types.HostedZone{zone("ZPUBLIC", "cdk-labs.com.", false)},
		},
	}}

	got, err := NewRoute53Provider(fake).HostedZone(context.Background(), testQuery)
	require.NoError(t, err)
	assert.Equal(t, "ZPUBLIC", got.ID)
	require.Len(t, fake.calls, 2)
	assert.Equal(t, "ZPUBLIC", aws.ToString(fake.calls[1].HostedZoneId))
}

func TestRoute53Provider_NoMatch(t *testing.T) {
	fake := &fakeRoute53{pages: []*route53.ListHostedZonesByNameOutput{{
		HostedZones: []types.HostedZone{zone("ZOTHER", "example.com.", false)},
		IsTruncated: true,
	}}}

	_, err := NewRoute53Provider(fake).HostedZone(context.Background(), testQuery)
	require.ErrorIs(t, err, ErrNoHostedZone)
	assert.Len(t, fake.calls, 1, "stops once past the name")
}

func TestRoute53Provider_StopsAtLaterSortingZone(t *testing.T) {
	// a.example.com sorts before cdk-labs.com as a string but after it by
	// reversed labels, which is the order Route 53 lists zones in.
	fake := &fakeRoute53{pages: []*route53.ListHostedZonesByNameOutput{{
		HostedZones: []types.HostedZone{
			zone("ZPUBLIC", "cdk-labs.com.", false),
			zone("ZOTHER", "a.example.com.", false),
		},
		IsTruncated:      true,
		NextDNSName:      aws.String("b.example.com."),
		NextHostedZoneId: aws.String("ZNEXT"),
	}}}

	got, err := NewRoute53Provider(fake).HostedZone(context.Background(), testQuery)
	require.NoError(t, err)
	assert.Equal(t, "ZPUBLIC", got.ID)
	assert.Len(t, fake.calls, 1)
}

func TestCompareZoneNames(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"cdk-labs.com", "cdk-labs.com", 0},
		{"a.example.com", "cdk-labs.com", 1},
		{"dev.cdk-labs.com", "cdk-labs.com", 1},
		{"cdk-labs.com", "zeta.org", -1},
		{"zeta.com", "alpha.org", -1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, compareZoneNames(tt.a, tt.b))
		})
	}
}

func TestRoute53Provider_APIError(t *testing.T) {
	fake := &fakeRoute53{err: &smithy.GenericAPIError{Code: "AccessDenied", Message: "not authorized"}}

	_, err := NewRoute53Provider(fake).HostedZone(context.Background(), testQuery)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessDenied")

	var apiErr smithy.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "AccessDenied", apiErr.ErrorCode())
}

func TestStaticProvider(t *testing.T) {
	p := StaticProvider{"cdk-labs.com": "Z0123456789ABC"}

	got, err := p.HostedZone(context.Background(), HostedZoneQuery{DomainName: "CDK-Labs.com."})
	require.NoError(t, err)
	assert.Equal(t, "Z0123456789ABC", got.ID)

	_, err = p.HostedZone(context.Background(), HostedZoneQuery{DomainName: "example.com"})
	assert.ErrorIs(t, err, ErrNoHostedZone)
}
