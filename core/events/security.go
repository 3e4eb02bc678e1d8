package events

import (
	"strconv"

	"github.com/holiman/uint256"

	"mctoken/core/types"
)

const (
	// TypeChangeSecurity is emitted after a bulk badge update is applied.
	TypeChangeSecurity = "token.change_security"
	// TypeRedeemed links a burn on a source ledger with the mint here.
	TypeRedeemed = "redeem.redeemed"
)

type ChangeSecurity struct {
	Admin   types.Address
	Changes map[types.Address]uint8
}

func (ChangeSecurity) EventType() string { return TypeChangeSecurity }

func (e ChangeSecurity) Event() *types.Event {
	attrs := map[string]string{"admin": e.Admin.String()}
	for addr, badge := range e.Changes {
		attrs["badge:"+addr.String()] = strconv.Itoa(int(badge))
	}
	return &types.Event{Type: TypeChangeSecurity, Attributes: attrs}
}

type Redeemed struct {
	Owner       types.Address
	Amount      *uint256.Int
	SourceToken types.Address
}

func (Redeemed) EventType() string { return TypeRedeemed }

func (e Redeemed) Event() *types.Event {
	return &types.Event{
		Type: TypeRedeemed,
		Attributes: map[string]string{
			"owner":       e.Owner.String(),
			"amount":      formatAmount(e.Amount),
			"sourceToken": e.SourceToken.String(),
		},
	}
}
