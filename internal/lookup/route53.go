package lookup

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/aws/smithy-go"
	"github.com/go-logr/logr"
)

// Route53API is the subset of the Route 53 client used for lookups.
type Route53API interface {
	ListHostedZonesByName(ctx context.Context, params *route53.ListHostedZonesByNameInput, optFns ...func(*route53.Options)) (*route53.ListHostedZonesByNameOutput, error)
}

// Route53Provider looks up hosted zones in the account of its client.
type Route53Provider struct {
	client Route53API
}

// NewRoute53Provider creates a provider using client.
func NewRoute53Provider(client Route53API) *Route53Provider {
	return &Route53Provider{client: client}
}

// NewRoute53ProviderFromConfig creates a provider from the default
// credential chain.
func NewRoute53ProviderFromConfig(ctx context.Context, region string) (*Route53Provider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewRoute53Provider(route53.NewFromConfig(cfg)), nil
}

// HostedZone returns the zone named exactly q.DomainName. Public zones are
// preferred over private ones of the same name.
func (p *Route53Provider) HostedZone(ctx context.Context, q HostedZoneQuery) (HostedZone, error) {
	log := logr.FromContextOrDiscard(ctx)
	want := normalizeName(q.DomainName)

	var matches []types.HostedZone
	input := &route53.ListHostedZonesByNameInput{DNSName: aws.String(want)}
	for {
		out, err := p.client.ListHostedZonesByName(ctx, input)
		if err != nil {
			return HostedZone{}, fmt.Errorf("listing hosted zones for %s: %w", want, describeError(err))
		}

		past := false
		for _, z := range out.HostedZones {
			name := normalizeName(aws.ToString(z.Name))
			if name == want {
				matches = append(matches, z)
				continue
			}
			if compareZoneNames(name, want) > 0 {
				past = true
				break
			}
		}
		if past || !out.IsTruncated {
			break
		}
		input = &route53.ListHostedZonesByNameInput{
			DNSName:      out.NextDNSName,
			HostedZoneId: out.NextHostedZoneId,
		}
	}

	if len(matches) == 0 {
		return HostedZone{}, fmt.Errorf("%w for %s", ErrNoHostedZone, want)
	}
	best := matches[0]
	for _, z := range matches {
		if !isPrivate(z) {
			best = z
			break
		}
	}

	zone := HostedZone{
		ID:      strings.TrimPrefix(aws.ToString(best.Id), "/hostedzone/"),
		Name:    want,
		Private: isPrivate(best),
	}
	log.V(1).Info("looked up hosted zone", "domain", want, "id", zone.ID, "matches", len(matches))
	return zone, nil
}

// compareZoneNames orders names the way ListHostedZonesByName returns them:
// label by label from the top-level domain down.
func compareZoneNames(a, b string) int {
	la, lb := strings.Split(a, "."), strings.Split(b, ".")
	slices.Reverse(la)
	slices.Reverse(lb)
	return slices.Compare(la, lb)
}

func isPrivate(z types.HostedZone) bool {
	return z.Config != nil && z.Config.PrivateZone
}

// describeError adds the API error code to err.
func describeError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", apiErr.ErrorCode(), err)
	}
	return err
}
