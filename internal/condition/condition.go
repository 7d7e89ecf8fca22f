// Package condition implements the wallet leaf of the host's availability
// rule tree. The tree itself (AND/OR composition, other leaf kinds) belongs
// to the host; this package only serializes the wallet variant, evaluates it
// against recorded payments, and walks trees to match configured costs.
package condition

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/bwmarrin/snowflake"
	entitlementdomain "github.com/opencampus/paygate/internal/entitlement/domain"
)

// KindWallet tags the wallet variant inside the rule tree.
const KindWallet = "wallet"

// Condition is the configured wallet requirement on one item. A Cost of
// zero (including non-numeric stored values, which parse to zero) means the
// condition never restricts.
type Condition struct {
	Cost int64
}

type conditionJSON struct {
	Type string          `json:"type"`
	Cost json.RawMessage `json:"cost"`
}

// MarshalJSON serializes to the stored form {"type":"wallet","cost":N}.
func (c Condition) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"type": KindWallet,
		"cost": c.Cost,
	})
}

// UnmarshalJSON tolerates legacy string costs; anything non-numeric becomes
// zero, i.e. unrestricted, rather than an error surfaced to learners.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var raw conditionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Cost = coerceCost(raw.Cost)
	return nil
}

func coerceCost(raw json.RawMessage) int64 {
	if len(raw) == 0 {
		return 0
	}

	var number json.Number
	if err := json.Unmarshal(raw, &number); err == nil {
		if v, err := number.Int64(); err == nil {
			return v
		}
		if f, err := number.Float64(); err == nil {
			return int64(f)
		}
		return 0
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if v, err := strconv.ParseInt(text, 10, 64); err == nil {
			return v
		}
	}
	return 0
}

// Evaluate is the leaf predicate dispatched by the rule engine. invert
// negates the boolean result only; stored data is never touched. An
// unrestricted condition short-circuits to true before the invert flag, the
// same way the legacy evaluator did.
func (c Condition) Evaluate(ctx context.Context, entitlements entitlementdomain.Service, userID snowflake.ID, ref entitlementdomain.ItemRef, invert bool) (bool, error) {
	if c.Cost <= 0 {
		return true, nil
	}

	allow, err := entitlements.IsAvailable(ctx, userID, ref, c.Cost)
	if err != nil {
		return false, err
	}
	if invert {
		allow = !allow
	}
	return allow, nil
}

// treeNode is the generic shape of a stored availability tree: internal
// nodes carry op/c, leaves carry a type plus their own payload.
type treeNode struct {
	Op   string            `json:"op,omitempty"`
	C    []json.RawMessage `json:"c,omitempty"`
	Type string            `json:"type,omitempty"`
	Cost json.RawMessage   `json:"cost,omitempty"`
}

// CostMatches reports whether cost equals the cost of at least one wallet
// leaf anywhere in the availability tree. A pay request claiming any other
// price is rejected before a single write happens.
func CostMatches(availability string, cost int64) bool {
	root, ok := parseTree(availability)
	if !ok {
		return false
	}
	return matchCost(root, cost)
}

// WalletCosts collects the costs of every wallet leaf in document order.
func WalletCosts(availability string) []int64 {
	root, ok := parseTree(availability)
	if !ok {
		return nil
	}
	var costs []int64
	collectCosts(root, &costs)
	return costs
}

func parseTree(availability string) (*treeNode, bool) {
	if availability == "" {
		return nil, false
	}
	var root treeNode
	if err := json.Unmarshal([]byte(availability), &root); err != nil {
		return nil, false
	}
	return &root, true
}

func matchCost(node *treeNode, cost int64) bool {
	for _, raw := range node.C {
		var child treeNode
		if err := json.Unmarshal(raw, &child); err != nil {
			continue
		}
		if len(child.C) > 0 && child.Op != "" {
			if matchCost(&child, cost) {
				return true
			}
		} else if child.Type == KindWallet {
			if coerceCost(child.Cost) == cost {
				return true
			}
		}
	}
	return false
}

func collectCosts(node *treeNode, out *[]int64) {
	for _, raw := range node.C {
		var child treeNode
		if err := json.Unmarshal(raw, &child); err != nil {
			continue
		}
		if len(child.C) > 0 && child.Op != "" {
			collectCosts(&child, out)
		} else if child.Type == KindWallet {
			*out = append(*out, coerceCost(child.Cost))
		}
	}
}
