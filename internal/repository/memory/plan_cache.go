package memory

import (
	"time"

	"meal-ordering-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

const activePlansKey = "plans:active"

// PlanCache holds the active catalog between writes. Entries are copies so
// callers cannot mutate what later readers see.
type PlanCache struct {
	cache *cache.Cache
}

func NewPlanCache(ttl time.Duration) *PlanCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PlanCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *PlanCache) SaveActive(plans []*entity.MealPlan) {
	c.cache.Set(activePlansKey, clonePlans(plans), cache.DefaultExpiration)
}

func (c *PlanCache) GetActive() ([]*entity.MealPlan, bool) {
	if x, found := c.cache.Get(activePlansKey); found {
		return clonePlans(x.([]*entity.MealPlan)), true
	}
	return nil, false
}

// Invalidate drops the active list. Called after any catalog write.
func (c *PlanCache) Invalidate() {
	c.cache.Delete(activePlansKey)
}

func clonePlans(plans []*entity.MealPlan) []*entity.MealPlan {
	out := make([]*entity.MealPlan, len(plans))
	for i, p := range plans {
		cp := *p
		out[i] = &cp
	}
	return out
}
