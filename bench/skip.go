package bench

import (
	"fmt"

	"github.com/kwertop/membench/membership"
)

// Applies reports whether the rule disables method at size logins.
func (r SkipRule) Applies(method membership.Method, logins int) bool {
	if r.Method != method {
		return false
	}
	if r.MinSize != 0 && logins < r.MinSize {
		return false
	}
	if r.MaxSize != 0 && logins > r.MaxSize {
		return false
	}
	return true
}

func (r SkipRule) reason() string {
	if r.Reason != "" {
		return r.Reason
	}
	switch {
	case r.MinSize != 0 && r.MaxSize != 0:
		return fmt.Sprintf("disabled for %d to %d logins", r.MinSize, r.MaxSize)
	case r.MinSize != 0:
		return fmt.Sprintf("disabled from %d logins", r.MinSize)
	case r.MaxSize != 0:
		return fmt.Sprintf("disabled up to %d logins", r.MaxSize)
	}
	return "disabled"
}

// SkipReason returns the reason the first matching rule gives for skipping
// method at size logins, and false if no rule matches.
func SkipReason(rules []SkipRule, method membership.Method, logins int) (string, bool) {
	for _, r := range rules {
		if r.Applies(method, logins) {
			return r.reason(), true
		}
	}
	return "", false
}
