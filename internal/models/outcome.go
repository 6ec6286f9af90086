package models

import (
	"fmt"
	"time"
)

// Action is the closed set of operations a dispatcher can invoke.
type Action string

// Actions.
const (
	ActionDaily Action = "daily"
	ActionWork  Action = "work"
	ActionPay   Action = "pay"
	ActionRob   Action = "rob"
	ActionBuy   Action = "buy"
	ActionSell  Action = "sell"
	ActionUse   Action = "use"
)

// Actions returns every action in a stable order.
func Actions() []Action {
	return []Action{ActionDaily, ActionWork, ActionPay, ActionRob, ActionBuy, ActionSell, ActionUse}
}

// Params carries the optional arguments of an action invocation.
type Params struct {
	TargetID    string
	TargetName  string
	TargetIsBot bool
	Amount      int64
	Item        string
}

// ParamsFromRequest converts the HTTP payload into engine parameters.
func ParamsFromRequest(req ActionRequest) Params {
	return Params{
		TargetID:    req.TargetID,
		TargetName:  req.TargetName,
		TargetIsBot: req.TargetIsBot,
		Amount:      req.Amount,
		Item:        req.Item,
	}
}

// Outcome statuses.
const (
	StatusOK       = "ok"
	StatusRejected = "rejected"
)

// Outcome is the structured result of an action, rendered by the dispatcher.
// Exactly one of Account and Rejection is meaningful depending on Status.
type Outcome struct {
	Action     Action         `json:"action"`
	Status     string         `json:"status"`
	Account    *Account       `json:"account,omitempty"`
	Target     *Account       `json:"target,omitempty"`
	CoinsDelta int64          `json:"coins_delta"`
	XPDelta    int64          `json:"xp_delta"`
	Details    map[string]any `json:"details,omitempty"`
	Rejection  *Rejection     `json:"rejection,omitempty"`
}

// Rejected reports whether the outcome is a validation rejection.
func (o *Outcome) Rejected() bool {
	return o != nil && o.Status == StatusRejected
}

// RejectionReason names why an action was refused.
type RejectionReason string

// Rejection reasons.
const (
	ReasonOnCooldown        RejectionReason = "on_cooldown"
	ReasonInsufficientFunds RejectionReason = "insufficient_funds"
	ReasonInvalidTarget     RejectionReason = "invalid_target"
	ReasonInvalidAmount     RejectionReason = "invalid_amount"
	ReasonItemNotFound      RejectionReason = "item_not_found"
	ReasonNotOwned          RejectionReason = "not_owned"
	ReasonNotUsable         RejectionReason = "not_usable"
)

// Rejection describes a refused action. Only the fields relevant to Reason are set.
type Rejection struct {
	Reason           RejectionReason `json:"reason"`
	Remaining        time.Duration   `json:"-"`
	RemainingSeconds int64           `json:"remaining_seconds,omitempty"`
	Required         int64           `json:"required,omitempty"`
	Available        int64           `json:"available,omitempty"`
	Message          string          `json:"message,omitempty"`
}

// CooldownRejection builds an on_cooldown rejection.
func CooldownRejection(remaining time.Duration) *Rejection {
	return &Rejection{
		Reason:           ReasonOnCooldown,
		Remaining:        remaining,
		RemainingSeconds: int64(remaining.Round(time.Second) / time.Second),
	}
}

// FundsRejection builds an insufficient_funds rejection.
func FundsRejection(required, available int64) *Rejection {
	return &Rejection{Reason: ReasonInsufficientFunds, Required: required, Available: available}
}

// Error makes a Rejection usable where an error is expected.
func (r *Rejection) Error() string {
	switch r.Reason {
	case ReasonOnCooldown:
		return fmt.Sprintf("on cooldown for another %s", r.Remaining.Round(time.Second))
	case ReasonInsufficientFunds:
		return fmt.Sprintf("insufficient funds: need %d, have %d", r.Required, r.Available)
	}
	if r.Message != "" {
		return string(r.Reason) + ": " + r.Message
	}
	return string(r.Reason)
}
