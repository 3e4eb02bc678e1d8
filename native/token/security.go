package token

import (
	"github.com/holiman/uint256"

	"mctoken/core/events"
	"mctoken/core/state"
	"mctoken/core/types"
)

// RequireBadge resolves the immediate caller and verifies its stored badge is
// in the allow-set. Identities without a stored badge are denied. The caller
// address is returned for use by the guarded operation.
func (e *Engine) RequireBadge(txn *state.Txn, ctx CallContext, allowed ...SecurityBadge) (types.Address, error) {
	caller, err := ctx.ImmediateCaller()
	if err != nil {
		return types.Address{}, err
	}
	stored, ok, err := txn.Badge(caller)
	if err != nil {
		return types.Address{}, err
	}
	if !ok {
		return types.Address{}, ErrInsufficientRights
	}
	badge, err := BadgeFromValue(stored)
	if err != nil {
		return types.Address{}, err
	}
	if !badgeAllowed(badge, allowed) {
		return types.Address{}, ErrInsufficientRights
	}
	return caller, nil
}

// ChangeSecurity bulk-applies badge updates. When an identity appears in
// several lists the strongest change wins: none over admin over minter. The
// caller's own entry is always dropped before applying, so an admin can never
// alter their own badge within the same call. Nothing stops the last admin
// from being removed; operators own that risk.
func (e *Engine) ChangeSecurity(ctx CallContext, adminList, minterList, noneList []types.Address) error {
	var (
		admin   types.Address
		changes map[types.Address]uint8
	)
	if err := e.state.Update(func(txn *state.Txn) error {
		enabled, err := txn.MintBurnEnabled()
		if err != nil {
			return err
		}
		if !enabled {
			return ErrMintBurnDisabled
		}
		admin, err = e.RequireBadge(txn, ctx, BadgeAdmin)
		if err != nil {
			return err
		}
		changes = make(map[types.Address]uint8)
		for _, addr := range minterList {
			changes[addr] = uint8(BadgeMinter)
		}
		for _, addr := range adminList {
			changes[addr] = uint8(BadgeAdmin)
		}
		for _, addr := range noneList {
			changes[addr] = uint8(BadgeNone)
		}
		delete(changes, admin)
		for addr, badge := range changes {
			if err := txn.SetBadge(addr, badge); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}
	e.emit(events.ChangeSecurity{Admin: admin, Changes: changes})
	return nil
}

// ChangeFeeReceiver points the swap fee at a new receiving account.
func (e *Engine) ChangeFeeReceiver(ctx CallContext, receiver types.Address) error {
	return e.state.Update(func(txn *state.Txn) error {
		if _, err := e.RequireBadge(txn, ctx, BadgeAdmin); err != nil {
			return err
		}
		return txn.SetFeeReceiver(receiver)
	})
}

// ChangeSwapFee overwrites the configured swap fee.
func (e *Engine) ChangeSwapFee(ctx CallContext, fee *uint256.Int) error {
	return e.state.Update(func(txn *state.Txn) error {
		if _, err := e.RequireBadge(txn, ctx, BadgeAdmin); err != nil {
			return err
		}
		return txn.SetSwapFee(cloneAmount(fee))
	})
}
