package capabilities

import (
	"fmt"
	"sort"
)

// Policy defines which capabilities scripts may use. A nil Policy allows everything.
type Policy struct {
	Denied map[string]bool
}

// IsAllowed checks whether a capability is permitted by this policy.
func (p *Policy) IsAllowed(cap string) bool {
	if p == nil || p.Denied == nil {
		return true
	}
	return !p.Denied[cap]
}

// DeniedList returns the denied capabilities in sorted order.
func (p *Policy) DeniedList() []string {
	if p == nil {
		return nil
	}
	out := make([]string, 0, len(p.Denied))
	for c := range p.Denied {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// AllowAll returns a policy that permits all capabilities.
func AllowAll() *Policy {
	return &Policy{}
}

// Deny returns a policy that denies the named capabilities. Unknown names are an error.
func Deny(caps ...string) (*Policy, error) {
	known := make(map[string]bool)
	for _, c := range Known() {
		known[c] = true
	}
	denied := make(map[string]bool)
	for _, c := range caps {
		if !known[c] {
			return nil, fmt.Errorf("unknown capability %q", c)
		}
		denied[c] = true
	}
	return &Policy{Denied: denied}, nil
}
