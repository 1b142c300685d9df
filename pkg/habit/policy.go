package habit

import (
	"fmt"

	"github.com/aurahabits/aura/pkg/role"
)

// Policy decides whether an account may create another habit given its tier
// and current habit list. It holds only the plan table and is therefore safe
// to share across goroutines.
type Policy struct {
	plans role.Plans
}

// NewPolicy creates an admission policy over the given plan set. A nil plan
// set uses the compiled-in defaults.
func NewPolicy(plans role.Plans) *Policy {
	if plans == nil {
		plans = role.DefaultPlans()
	}
	return &Policy{plans: plans}
}

// CanCreate reports whether one more habit may be created right now.
//
// Free tier: exactly one lifetime habit. Every existing habit counts,
// completed or not, so a free user who finished their habit cannot start a
// second one without upgrading. Pro tier: up to the plan limit of
// concurrently active habits; completed habits free their slot.
func (p *Policy) CanCreate(r role.Role, habits []Habit) bool {
	limit := p.plans.MaxHabits(r)
	return int64(p.countedHabits(r, habits)) < limit
}

// LimitInfo is the admission decision with a human-facing justification,
// surfaced by the API as an upsell prompt rather than an error.
type LimitInfo struct {
	Allowed   bool   `json:"canCreate"`
	Remaining int64  `json:"habitsRemaining"`
	Reason    string `json:"reason,omitempty"`
}

// LimitInfo computes the same decision as CanCreate together with the number
// of remaining slots. It is derived purely from the counting rules; there is
// no independent state to drift out of sync.
func (p *Policy) LimitInfo(r role.Role, habits []Habit) LimitInfo {
	limit := p.plans.MaxHabits(r)
	counted := int64(p.countedHabits(r, habits))

	remaining := limit - counted
	if remaining < 0 {
		remaining = 0
	}

	info := LimitInfo{
		Allowed:   counted < limit,
		Remaining: remaining,
	}
	if !info.Allowed {
		if role.Parse(string(r)) == role.RolePro {
			info.Reason = fmt.Sprintf("You already have %d active habits, the maximum for the Pro plan. Complete one to free a slot.", limit)
		} else {
			info.Reason = "The Free plan includes a single habit. Upgrade to Pro to track up to 5 at once."
		}
	}
	return info
}

// countedHabits applies the per-tier counting rule: all habits for free,
// active habits only for pro.
func (p *Policy) countedHabits(r role.Role, habits []Habit) int {
	if role.Parse(string(r)) == role.RolePro {
		return ActiveCount(habits)
	}
	return len(habits)
}
