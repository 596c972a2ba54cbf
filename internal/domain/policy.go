package domain

import "fmt"

// AggregatePolicy selects which transaction statuses are summed into an aggregate.
// Each policy is bound to exactly one investor column.
type AggregatePolicy string

const (
	// PolicyApprovedOnly feeds total_bonds, the authoritative funded amount.
	PolicyApprovedOnly AggregatePolicy = "APPROVED_ONLY"
	// PolicyAllNonRejected feeds total_contributions, the provisional pending+approved figure.
	PolicyAllNonRejected AggregatePolicy = "ALL_NON_REJECTED"
)

// Policies lists every policy in recompute order.
var Policies = []AggregatePolicy{PolicyApprovedOnly, PolicyAllNonRejected}

// Statuses returns the transaction statuses counted by p.
func (p AggregatePolicy) Statuses() []TransactionStatus {
	switch p {
	case PolicyApprovedOnly:
		return []TransactionStatus{StatusApproved}
	case PolicyAllNonRejected:
		return []TransactionStatus{StatusPending, StatusApproved}
	}
	return nil
}

// Column returns the investor column persisted for p.
func (p AggregatePolicy) Column() string {
	switch p {
	case PolicyApprovedOnly:
		return "total_bonds"
	case PolicyAllNonRejected:
		return "total_contributions"
	}
	return ""
}

func (p AggregatePolicy) Validate() error {
	if p.Column() == "" {
		return Validation("unknown aggregate policy %q", string(p))
	}
	return nil
}

func (p AggregatePolicy) String() string { return string(p) }

// ParsePolicy is used by the CLI and admin endpoints.
func ParsePolicy(s string) (AggregatePolicy, error) {
	p := AggregatePolicy(s)
	if err := p.Validate(); err != nil {
		return "", fmt.Errorf("parse policy: %w", err)
	}
	return p, nil
}
