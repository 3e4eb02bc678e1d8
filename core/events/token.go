package events

import (
	"github.com/holiman/uint256"

	"mctoken/core/types"
)

const (
	// TypeTransfer is emitted for every direct balance movement, including
	// bridge escrow and fee settlement legs.
	TypeTransfer = "token.transfer"
	// TypeTransferFrom is emitted for delegated transfers.
	TypeTransferFrom = "token.transfer_from"
	// TypeSetAllowance is emitted when an owner overwrites an allowance.
	TypeSetAllowance = "token.set_allowance"
	// TypeIncreaseAllowance is emitted for saturating allowance increases.
	TypeIncreaseAllowance = "token.increase_allowance"
	// TypeDecreaseAllowance is emitted for saturating allowance decreases.
	TypeDecreaseAllowance = "token.decrease_allowance"
	// TypeMint is emitted for every supply increase.
	TypeMint = "token.mint"
	// TypeMintSettled carries the caller-supplied mint id alongside the mint.
	TypeMintSettled = "token.mint_settled"
	// TypeBurn is emitted for every supply decrease.
	TypeBurn = "token.burn"
)

func formatAmount(amount *uint256.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.Dec()
}

type Transfer struct {
	Sender    types.Address
	Recipient types.Address
	Amount    *uint256.Int
}

func (Transfer) EventType() string { return TypeTransfer }

func (e Transfer) Event() *types.Event {
	return &types.Event{
		Type: TypeTransfer,
		Attributes: map[string]string{
			"sender":    e.Sender.String(),
			"recipient": e.Recipient.String(),
			"amount":    formatAmount(e.Amount),
		},
	}
}

type TransferFrom struct {
	Spender   types.Address
	Owner     types.Address
	Recipient types.Address
	Amount    *uint256.Int
}

func (TransferFrom) EventType() string { return TypeTransferFrom }

func (e TransferFrom) Event() *types.Event {
	return &types.Event{
		Type: TypeTransferFrom,
		Attributes: map[string]string{
			"spender":   e.Spender.String(),
			"owner":     e.Owner.String(),
			"recipient": e.Recipient.String(),
			"amount":    formatAmount(e.Amount),
		},
	}
}

type SetAllowance struct {
	Owner     types.Address
	Spender   types.Address
	Allowance *uint256.Int
}

func (SetAllowance) EventType() string { return TypeSetAllowance }

func (e SetAllowance) Event() *types.Event {
	return &types.Event{
		Type: TypeSetAllowance,
		Attributes: map[string]string{
			"owner":     e.Owner.String(),
			"spender":   e.Spender.String(),
			"allowance": formatAmount(e.Allowance),
		},
	}
}

type IncreaseAllowance struct {
	Owner     types.Address
	Spender   types.Address
	Allowance *uint256.Int
	IncBy     *uint256.Int
}

func (IncreaseAllowance) EventType() string { return TypeIncreaseAllowance }

func (e IncreaseAllowance) Event() *types.Event {
	return &types.Event{
		Type: TypeIncreaseAllowance,
		Attributes: map[string]string{
			"owner":     e.Owner.String(),
			"spender":   e.Spender.String(),
			"allowance": formatAmount(e.Allowance),
			"incBy":     formatAmount(e.IncBy),
		},
	}
}

type DecreaseAllowance struct {
	Owner     types.Address
	Spender   types.Address
	Allowance *uint256.Int
	DecrBy    *uint256.Int
}

func (DecreaseAllowance) EventType() string { return TypeDecreaseAllowance }

func (e DecreaseAllowance) Event() *types.Event {
	return &types.Event{
		Type: TypeDecreaseAllowance,
		Attributes: map[string]string{
			"owner":     e.Owner.String(),
			"spender":   e.Spender.String(),
			"allowance": formatAmount(e.Allowance),
			"decrBy":    formatAmount(e.DecrBy),
		},
	}
}

type Mint struct {
	Recipient types.Address
	Amount    *uint256.Int
}

func (Mint) EventType() string { return TypeMint }

func (e Mint) Event() *types.Event {
	return &types.Event{
		Type: TypeMint,
		Attributes: map[string]string{
			"recipient": e.Recipient.String(),
			"amount":    formatAmount(e.Amount),
		},
	}
}

type MintSettled struct {
	Recipient types.Address
	Amount    *uint256.Int
	MintID    string
}

func (MintSettled) EventType() string { return TypeMintSettled }

func (e MintSettled) Event() *types.Event {
	return &types.Event{
		Type: TypeMintSettled,
		Attributes: map[string]string{
			"recipient": e.Recipient.String(),
			"amount":    formatAmount(e.Amount),
			"mintId":    e.MintID,
		},
	}
}

type Burn struct {
	Owner  types.Address
	Amount *uint256.Int
}

func (Burn) EventType() string { return TypeBurn }

func (e Burn) Event() *types.Event {
	return &types.Event{
		Type: TypeBurn,
		Attributes: map[string]string{
			"owner":  e.Owner.String(),
			"amount": formatAmount(e.Amount),
		},
	}
}
