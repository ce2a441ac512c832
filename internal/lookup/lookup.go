// Package lookup resolves the hosted zone of the platform domain.
//
// Lookups read live account state, so their results are recorded in a
// context file next to the configuration. Later syntheses are served from
// that file and stay byte-identical even if the account changes.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoHostedZone is returned when no zone matches the domain name.
	ErrNoHostedZone = errors.New("no hosted zone found")

	// ErrLookupDisabled is returned when a lookup is not cached and live
	// lookups are not allowed.
	ErrLookupDisabled = errors.New("lookups are disabled")
)

// HostedZoneQuery identifies a hosted zone lookup.
type HostedZoneQuery struct {
	Account    string
	Region     string
	DomainName string
}

// Key returns the context key of the query.
func (q HostedZoneQuery) Key() string {
	return fmt.Sprintf("hosted-zone:account=%s:domainName=%s:region=%s", q.Account, q.DomainName, q.Region)
}

// HostedZone is the result of a lookup.
type HostedZone struct {
	ID      string `json:"Id"`
	Name    string `json:"Name"`
	Private bool   `json:"Private,omitempty"`
}

// HostedZoneProvider looks up hosted zones by domain name.
type HostedZoneProvider interface {
	HostedZone(ctx context.Context, q HostedZoneQuery) (HostedZone, error)
}

// StaticProvider serves zone IDs by domain name. It never reads live state.
type StaticProvider map[string]string

// HostedZone implements HostedZoneProvider.
func (p StaticProvider) HostedZone(_ context.Context, q HostedZoneQuery) (HostedZone, error) {
	id, ok := p[normalizeName(q.DomainName)]
	if !ok {
		return HostedZone{}, fmt.Errorf("%w for %s", ErrNoHostedZone, q.DomainName)
	}
	return HostedZone{ID: id, Name: normalizeName(q.DomainName)}, nil
}

// normalizeName lowercases a DNS name and drops the trailing dot.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSuffix(name, "."))
}
