package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// EffectKind names the variant of an Effect.
type EffectKind string

// Effect kinds.
const (
	EffectWorkBoost         EffectKind = "work_boost"
	EffectRobDefense        EffectKind = "rob_defense"
	EffectCooldownReduction EffectKind = "cooldown_reduction"
	EffectConsumable        EffectKind = "consumable"
	EffectPassive           EffectKind = "passive"
)

// ConsumableKind names what a consumable does when used.
type ConsumableKind string

// Consumable kinds.
const (
	ConsumableXP            ConsumableKind = "xp_grant"
	ConsumableCoins         ConsumableKind = "coin_grant"
	ConsumableCooldownReset ConsumableKind = "cooldown_reset"
)

// ErrInvalidEffect is returned when an effect descriptor cannot be decoded.
var ErrInvalidEffect = errors.New("models: invalid effect descriptor")

// Effect is the closed set of item effects. The unexported method keeps the set
// limited to the variants declared in this file.
type Effect interface {
	Kind() EffectKind
	effect()
}

// WorkBoost multiplies work base earnings by Value. Only the best one held applies.
type WorkBoost struct {
	Value float64
}

// RobDefense lowers an attacker's success probability by Value when held by the defender.
type RobDefense struct {
	Value float64
}

// CooldownReduction subtracts Hours from the cooldown of Command. Reductions stack.
type CooldownReduction struct {
	Command Command
	Hours   float64
}

// Consumable is a one-shot effect applied when the item is used.
// Command is only meaningful for ConsumableCooldownReset.
type Consumable struct {
	Effect  ConsumableKind
	Value   int64
	Command Command
}

// Passive is descriptive only.
type Passive struct{}

func (WorkBoost) Kind() EffectKind         { return EffectWorkBoost }
func (RobDefense) Kind() EffectKind        { return EffectRobDefense }
func (CooldownReduction) Kind() EffectKind { return EffectCooldownReduction }
func (Consumable) Kind() EffectKind        { return EffectConsumable }
func (Passive) Kind() EffectKind           { return EffectPassive }

func (WorkBoost) effect()         {}
func (RobDefense) effect()        {}
func (CooldownReduction) effect() {}
func (Consumable) effect()        {}
func (Passive) effect()           {}

// EffectDescriptor is the wire and storage form of an Effect.
type EffectDescriptor struct {
	Type    EffectKind `json:"type" yaml:"type"`
	Value   float64    `json:"value,omitempty" yaml:"value,omitempty"`
	Command Command    `json:"command,omitempty" yaml:"command,omitempty"`
	Effect  string     `json:"effect,omitempty" yaml:"effect,omitempty"`
}

// DecodeEffect converts a descriptor into its Effect variant.
// A nil descriptor decodes to a nil Effect.
func DecodeEffect(d *EffectDescriptor) (Effect, error) {
	if d == nil {
		return nil, nil
	}
	switch d.Type {
	case EffectWorkBoost:
		if d.Value <= 0 {
			return nil, fmt.Errorf("%w: work_boost value must be positive", ErrInvalidEffect)
		}
		return WorkBoost{Value: d.Value}, nil
	case EffectRobDefense:
		if d.Value <= 0 || d.Value > 1 {
			return nil, fmt.Errorf("%w: rob_defense value must be in (0, 1]", ErrInvalidEffect)
		}
		return RobDefense{Value: d.Value}, nil
	case EffectCooldownReduction:
		if !d.Command.Valid() {
			return nil, fmt.Errorf("%w: cooldown_reduction command %q", ErrInvalidEffect, d.Command)
		}
		if d.Value <= 0 {
			return nil, fmt.Errorf("%w: cooldown_reduction hours must be positive", ErrInvalidEffect)
		}
		return CooldownReduction{Command: d.Command, Hours: d.Value}, nil
	case EffectConsumable:
		c := Consumable{Effect: ConsumableKind(d.Effect), Value: int64(d.Value), Command: d.Command}
		switch c.Effect {
		case ConsumableXP, ConsumableCoins:
			if c.Value <= 0 {
				return nil, fmt.Errorf("%w: %s value must be positive", ErrInvalidEffect, c.Effect)
			}
		case ConsumableCooldownReset:
			if !c.Command.Valid() {
				return nil, fmt.Errorf("%w: cooldown_reset command %q", ErrInvalidEffect, c.Command)
			}
		default:
			return nil, fmt.Errorf("%w: consumable effect %q", ErrInvalidEffect, d.Effect)
		}
		return c, nil
	case EffectPassive:
		return Passive{}, nil
	}
	return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidEffect, d.Type)
}

// EncodeEffect converts an Effect into its descriptor. A nil Effect encodes to nil.
func EncodeEffect(e Effect) *EffectDescriptor {
	switch v := e.(type) {
	case nil:
		return nil
	case WorkBoost:
		return &EffectDescriptor{Type: EffectWorkBoost, Value: v.Value}
	case RobDefense:
		return &EffectDescriptor{Type: EffectRobDefense, Value: v.Value}
	case CooldownReduction:
		return &EffectDescriptor{Type: EffectCooldownReduction, Value: v.Hours, Command: v.Command}
	case Consumable:
		return &EffectDescriptor{Type: EffectConsumable, Value: float64(v.Value), Command: v.Command, Effect: string(v.Effect)}
	case Passive:
		return &EffectDescriptor{Type: EffectPassive}
	}
	panic(fmt.Sprintf("models: unhandled effect %T", e))
}

// itemJSON is the JSON shape of Item with its effect in descriptor form.
type itemJSON struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       int64             `json:"price"`
	Category    Category          `json:"category"`
	Rarity      Rarity            `json:"rarity"`
	Effect      *EffectDescriptor `json:"effect,omitempty"`
}

// MarshalJSON encodes the item with its effect descriptor.
func (i Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(itemJSON{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		Price:       i.Price,
		Category:    i.Category,
		Rarity:      i.Rarity,
		Effect:      EncodeEffect(i.Effect),
	})
}

// UnmarshalJSON decodes the item and its effect descriptor.
func (i *Item) UnmarshalJSON(data []byte) error {
	var raw itemJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	effect, err := DecodeEffect(raw.Effect)
	if err != nil {
		return err
	}
	*i = Item{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		Price:       raw.Price,
		Category:    raw.Category,
		Rarity:      raw.Rarity,
		Effect:      effect,
	}
	return nil
}
