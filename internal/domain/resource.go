package domain

import (
	"fmt"
	"math"
	"sort"
)

// Resource names a numeric counter held by a noble.
type Resource string

// Known resources.
const (
	ResourceGold      Resource = "gold"
	ResourceInfluence Resource = "influence"
	ResourcePrestige  Resource = "prestige"
	ResourceFood      Resource = "food"
)

// AllResources lists the known resources in display order.
var AllResources = []Resource{ResourceGold, ResourceInfluence, ResourcePrestige, ResourceFood}

// Valid reports whether r is a known resource.
func (r Resource) Valid() bool {
	switch r {
	case ResourceGold, ResourceInfluence, ResourcePrestige, ResourceFood:
		return true
	default:
		return false
	}
}

// Resources maps resources to amounts.
type Resources map[Resource]int64

// Clone returns an independent copy. A nil map clones to an empty one.
func (r Resources) Clone() Resources {
	out := make(Resources, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Validate checks that every key is known and every amount is non-negative.
func (r Resources) Validate() error {
	for _, k := range r.Keys() {
		if !k.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidResource, k)
		}
		if r[k] < 0 {
			return fmt.Errorf("%w: %s=%d", ErrNegativeAmount, k, r[k])
		}
	}
	return nil
}

// Keys returns the resource names in sorted order.
func (r Resources) Keys() []Resource {
	keys := make([]Resource, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Add returns the key-wise sum of r and other.
func (r Resources) Add(other Resources) Resources {
	out := r.Clone()
	for k, v := range other {
		out[k] = saturatingAdd(out[k], v)
	}
	return out
}

// Scale multiplies every amount by n.
func (r Resources) Scale(n int64) Resources {
	out := make(Resources, len(r))
	for k, v := range r {
		out[k] = v * n
	}
	return out
}

func saturatingAdd(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}
