// Package effects interprets item effects against an action in progress.
package effects

import (
	"math"
	"time"

	"chat_economy/internal/inventory"
	"chat_economy/internal/models"
)

// MinCooldown is the floor applied after cooldown reductions.
const MinCooldown = time.Hour

// Modifier is a resolved scalar and the names of the items that produced it.
type Modifier struct {
	Value   float64
	Sources []string
}

// Source returns the first contributing item name, or "" when none applied.
func (m Modifier) Source() string {
	if len(m.Sources) == 0 {
		return ""
	}
	return m.Sources[0]
}

// ConsumableResult is what using a consumable does to the account.
type ConsumableResult struct {
	XP           int64
	Coins        int64
	ResetCommand models.Command
	Effect       models.ConsumableKind
	Descriptor   *models.EffectDescriptor
}

// Resolver computes modifiers from inventory snapshots.
type Resolver struct{}

// NewResolver creates a Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// WorkBoost returns the best work boost held. Boosts never stack.
func (r *Resolver) WorkBoost(inv inventory.Snapshot) Modifier {
	return r.best(inv, models.EffectWorkBoost)
}

// RobDefense returns the best rob defense held. Pass the defender's inventory.
func (r *Resolver) RobDefense(inv inventory.Snapshot) Modifier {
	return r.best(inv, models.EffectRobDefense)
}

func (r *Resolver) best(inv inventory.Snapshot, kind models.EffectKind) Modifier {
	var m Modifier
	for _, e := range inv.Holding(kind) {
		var v float64
		switch eff := e.Item.Effect.(type) {
		case models.WorkBoost:
			v = eff.Value
		case models.RobDefense:
			v = eff.Value
		default:
			continue
		}
		if v > m.Value {
			m = Modifier{Value: v, Sources: []string{e.Item.Name}}
		}
	}
	return m
}

// Cooldown returns the cooldown for command after summing every matching reduction held,
// floored at MinCooldown, along with the reduction applied.
func (r *Resolver) Cooldown(inv inventory.Snapshot, command models.Command, base time.Duration) (time.Duration, Modifier) {
	var m Modifier
	for _, e := range inv.Holding(models.EffectCooldownReduction) {
		eff, ok := e.Item.Effect.(models.CooldownReduction)
		if !ok || eff.Command != command {
			continue
		}
		m.Value += eff.Hours
		m.Sources = append(m.Sources, e.Item.Name)
	}
	d := base - Hours(m.Value)
	if d < MinCooldown {
		d = MinCooldown
	}
	return d, m
}

// Consume resolves a consumable effect. ok is false for effects that cannot be used.
func (r *Resolver) Consume(effect models.Effect) (ConsumableResult, bool) {
	c, isConsumable := effect.(models.Consumable)
	if !isConsumable {
		return ConsumableResult{}, false
	}
	res := ConsumableResult{Effect: c.Effect, Descriptor: models.EncodeEffect(c)}
	switch c.Effect {
	case models.ConsumableXP:
		res.XP = c.Value
	case models.ConsumableCoins:
		res.Coins = c.Value
	case models.ConsumableCooldownReset:
		res.ResetCommand = c.Command
	default:
		return ConsumableResult{}, false
	}
	return res, true
}

// Hours converts fractional hours into a duration.
func Hours(h float64) time.Duration {
	return time.Duration(math.Round(h * float64(time.Hour)))
}
