// Package plan holds the subscription plan catalog and the entitlement
// guard that gates mutating operations against it. The catalog is immutable
// process-wide configuration; it is passed by reference rather than read
// from a package singleton so tests can substitute alternate catalogs.
package plan

import "github.com/josoro11/FOXITE-V2/internal/domain"

// Resource names a countable, plan-limited resource kind.
type Resource string

const (
	ResourceStaffUsers      Resource = "staff_users"
	ResourceClientCompanies Resource = "client_companies"
	ResourceEndUsers        Resource = "end_users"
	ResourceDevices         Resource = "devices"
	ResourceLicenses        Resource = "licenses"
	ResourceSLAPolicies     Resource = "sla_policies"
)

// Feature names a plan-gated capability.
type Feature string

const (
	FeatureLicensesInventory Feature = "licenses_inventory"
	FeatureTimeTracking      Feature = "time_tracking"
	FeatureReporting         Feature = "reporting"
	FeatureAPIAccess         Feature = "api_access"
	FeatureCustomRoles       Feature = "custom_roles"
	FeatureAutomation        Feature = "automation"
)

// FeatureLevel is the access level a tier grants for a feature. Anything
// other than LevelOff grants access; the specific string communicates a
// capability tier to the caller for finer-grained behavior.
type FeatureLevel string

const (
	LevelOff       FeatureLevel = "off"
	LevelOn        FeatureLevel = "on"
	LevelBasic     FeatureLevel = "basic"
	LevelLimited   FeatureLevel = "limited"
	LevelReadOnly  FeatureLevel = "read_only"
	LevelAdvanced  FeatureLevel = "advanced"
	LevelFull      FeatureLevel = "full"
	LevelUnlimited FeatureLevel = "unlimited"
)

// Enabled reports whether the level grants access at all.
func (l FeatureLevel) Enabled() bool {
	return l != LevelOff && l != ""
}

// Tier bundles the limits and feature levels of one subscription plan.
// A nil limit means unlimited.
type Tier struct {
	ID       domain.PlanTier
	PriceUSD *int // nil = not publicly listed
	Limits   map[Resource]*int
	Features map[Feature]FeatureLevel
}

// Catalog is the ordered set of plan tiers, most restrictive first. Unknown
// tier ids resolve to the first tier so a corrupted organization record
// degrades to denying features rather than failing request handling.
type Catalog struct {
	order []domain.PlanTier
	tiers map[domain.PlanTier]Tier
}

// NewCatalog builds a catalog from tiers given in ascending order of
// capability. The first tier is the fallback for unknown tier ids.
func NewCatalog(tiers ...Tier) *Catalog {
	c := &Catalog{
		order: make([]domain.PlanTier, 0, len(tiers)),
		tiers: make(map[domain.PlanTier]Tier, len(tiers)),
	}
	for _, t := range tiers {
		c.order = append(c.order, t.ID)
		c.tiers[t.ID] = t
	}
	return c
}

func (c *Catalog) tier(id domain.PlanTier) Tier {
	if t, ok := c.tiers[id]; ok {
		return t
	}
	if len(c.order) == 0 {
		return Tier{}
	}
	return c.tiers[c.order[0]]
}

// LimitFor returns the resource limit for the tier, nil meaning unlimited.
func (c *Catalog) LimitFor(id domain.PlanTier, r Resource) *int {
	return c.tier(id).Limits[r]
}

// FeatureFor returns the feature level for the tier; absent features are off.
func (c *Catalog) FeatureFor(id domain.PlanTier, f Feature) FeatureLevel {
	if level, ok := c.tier(id).Features[f]; ok {
		return level
	}
	return LevelOff
}

// MinimumTierFor scans tiers in ascending order and returns the first tier
// where the feature is enabled. ok is false when no tier grants it.
func (c *Catalog) MinimumTierFor(f Feature) (domain.PlanTier, bool) {
	for _, id := range c.order {
		if c.tiers[id].Features[f].Enabled() {
			return id, true
		}
	}
	return "", false
}

// Tiers returns the tiers in catalog order.
func (c *Catalog) Tiers() []Tier {
	out := make([]Tier, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.tiers[id])
	}
	return out
}

// Default returns the production catalog: CORE < PLUS < PRIME < SCALE.
// SCALE is a negotiated tier and carries no public price.
func Default() *Catalog {
	return NewCatalog(
		Tier{
			ID:       domain.PlanTierCore,
			PriceUSD: price(25),
			Limits: map[Resource]*int{
				ResourceStaffUsers:      limit(5),
				ResourceClientCompanies: limit(10),
				ResourceEndUsers:        limit(100),
				ResourceDevices:         limit(25),
				ResourceLicenses:        limit(25),
				ResourceSLAPolicies:     limit(4),
			},
			Features: map[Feature]FeatureLevel{
				FeatureLicensesInventory: LevelOff,
				FeatureTimeTracking:      LevelOff,
				FeatureReporting:         LevelBasic,
				FeatureAPIAccess:         LevelOff,
				FeatureCustomRoles:       LevelOff,
				FeatureAutomation:        LevelOff,
			},
		},
		Tier{
			ID:       domain.PlanTierPlus,
			PriceUSD: price(55),
			Limits: map[Resource]*int{
				ResourceStaffUsers:      limit(15),
				ResourceClientCompanies: limit(50),
				ResourceEndUsers:        limit(500),
				ResourceDevices:         limit(250),
				ResourceLicenses:        limit(250),
				ResourceSLAPolicies:     limit(8),
			},
			Features: map[Feature]FeatureLevel{
				FeatureLicensesInventory: LevelOn,
				FeatureTimeTracking:      LevelOn,
				FeatureReporting:         LevelAdvanced,
				FeatureAPIAccess:         LevelReadOnly,
				FeatureCustomRoles:       LevelOff,
				FeatureAutomation:        LevelLimited,
			},
		},
		Tier{
			ID:       domain.PlanTierPrime,
			PriceUSD: price(90),
			Limits: map[Resource]*int{
				ResourceStaffUsers:      limit(50),
				ResourceClientCompanies: limit(250),
				ResourceEndUsers:        limit(2500),
				ResourceDevices:         limit(1000),
				ResourceLicenses:        limit(1000),
				ResourceSLAPolicies:     limit(16),
			},
			Features: map[Feature]FeatureLevel{
				FeatureLicensesInventory: LevelOn,
				FeatureTimeTracking:      LevelOn,
				FeatureReporting:         LevelAdvanced,
				FeatureAPIAccess:         LevelFull,
				FeatureCustomRoles:       LevelOn,
				FeatureAutomation:        LevelAdvanced,
			},
		},
		Tier{
			ID:     domain.PlanTierScale,
			Limits: map[Resource]*int{},
			Features: map[Feature]FeatureLevel{
				FeatureLicensesInventory: LevelOn,
				FeatureTimeTracking:      LevelOn,
				FeatureReporting:         LevelUnlimited,
				FeatureAPIAccess:         LevelFull,
				FeatureCustomRoles:       LevelOn,
				FeatureAutomation:        LevelUnlimited,
			},
		},
	)
}

func limit(n int) *int {
	return &n
}

func price(n int) *int {
	return &n
}
