package role

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Plan describes the entitlements of a tier. MaxHabits is the ceiling the
// admission policy in pkg/habit enforces; PriceID is the payment provider's
// price identifier used when creating a subscription for this tier.
type Plan struct {
	Role      Role   `yaml:"role" json:"role"`
	Name      string `yaml:"name" json:"name"`
	MaxHabits int64  `yaml:"max_habits" json:"maxHabits"`
	PriceID   string `yaml:"price_id,omitempty" json:"priceId,omitempty"`
}

// Plans maps a tier to its plan.
type Plans map[Role]Plan

// DefaultPlans returns the compiled-in plan set: one habit for free accounts,
// five concurrently active habits for pro accounts.
func DefaultPlans() Plans {
	return Plans{
		RoleFree: {Role: RoleFree, Name: "Free", MaxHabits: 1},
		RolePro:  {Role: RolePro, Name: "Pro", MaxHabits: 5},
	}
}

// For returns the plan for the given tier, falling back to the free plan for
// unknown roles so that a corrupt or missing role never grants pro limits.
func (p Plans) For(r Role) (Plan, error) {
	if plan, ok := p[Parse(string(r))]; ok {
		return plan, nil
	}
	return Plan{}, ErrPlanNotFound
}

// MaxHabits is a convenience accessor used on hot paths; it returns 0 when
// the plan set is misconfigured, which denies creation rather than allowing it.
func (p Plans) MaxHabits(r Role) int64 {
	plan, err := p.For(r)
	if err != nil {
		return 0
	}
	return plan.MaxHabits
}

// LoadPlans reads a plan set from YAML, merging over the defaults so a config
// file only needs to override what differs (typically the pro price ID).
func LoadPlans(data []byte) (Plans, error) {
	var raw struct {
		Plans []Plan `yaml:"plans"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	plans := DefaultPlans()
	for _, plan := range raw.Plans {
		if !plan.Role.Valid() {
			return nil, errors.Join(ErrInvalidPlanConfig,
				fmt.Errorf("unknown role %q in plans config", plan.Role))
		}
		if plan.MaxHabits <= 0 {
			return nil, errors.Join(ErrInvalidPlanConfig,
				fmt.Errorf("plan %q must allow at least one habit", plan.Role))
		}
		plans[plan.Role] = plan
	}
	return plans, nil
}

// LoadPlansFile reads a plan set from a YAML file. A missing path returns the
// defaults, so deployments without a plans file still start.
func LoadPlansFile(path string) (Plans, error) {
	if path == "" {
		return DefaultPlans(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPlans(), nil
		}
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}
	return LoadPlans(data)
}
