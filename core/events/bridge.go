package events

import (
	"github.com/holiman/uint256"

	"mctoken/core/types"
)

const (
	// TypeRequestRegistered is emitted when a bridge-out request locks funds
	// in escrow and receives its index.
	TypeRequestRegistered = "bridge.request_registered"
	// TypeRequestFinalized is emitted when an admin settles a pending
	// request: fees move to the fee receiver, the remainder leaves supply.
	TypeRequestFinalized = "bridge.request_finalized"
	// TypeFeeAdjusted records the additional fee applied at settlement.
	TypeFeeAdjusted = "bridge.fee_adjusted"
)

type RequestRegistered struct {
	Owner     types.Address
	Amount    *uint256.Int
	Index     *uint256.Int
	Receiver  string
	ToChainID *uint256.Int
}

func (RequestRegistered) EventType() string { return TypeRequestRegistered }

func (e RequestRegistered) Event() *types.Event {
	return &types.Event{
		Type: TypeRequestRegistered,
		Attributes: map[string]string{
			"owner":     e.Owner.String(),
			"amount":    formatAmount(e.Amount),
			"index":     formatAmount(e.Index),
			"receiver":  e.Receiver,
			"toChainId": formatAmount(e.ToChainID),
		},
	}
}

type RequestFinalized struct {
	Owner     types.Address
	Amount    *uint256.Int
	Fee       *uint256.Int
	Index     *uint256.Int
	Receiver  string
	ToChainID *uint256.Int
}

func (RequestFinalized) EventType() string { return TypeRequestFinalized }

func (e RequestFinalized) Event() *types.Event {
	return &types.Event{
		Type: TypeRequestFinalized,
		Attributes: map[string]string{
			"owner":     e.Owner.String(),
			"amount":    formatAmount(e.Amount),
			"fee":       formatAmount(e.Fee),
			"index":     formatAmount(e.Index),
			"receiver":  e.Receiver,
			"toChainId": formatAmount(e.ToChainID),
		},
	}
}

type FeeAdjusted struct {
	Index *uint256.Int
	Fee   *uint256.Int
}

func (FeeAdjusted) EventType() string { return TypeFeeAdjusted }

func (e FeeAdjusted) Event() *types.Event {
	return &types.Event{
		Type: TypeFeeAdjusted,
		Attributes: map[string]string{
			"index": formatAmount(e.Index),
			"fee":   formatAmount(e.Fee),
		},
	}
}
