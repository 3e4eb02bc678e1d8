package token

import (
	"github.com/holiman/uint256"

	"mctoken/core/events"
	"mctoken/core/state"
	"mctoken/core/types"
)

// Transfer moves amount from the caller to recipient.
func (e *Engine) Transfer(ctx CallContext, recipient types.Address, amount *uint256.Int) error {
	sender, err := ctx.ImmediateCaller()
	if err != nil {
		return err
	}
	if sender == recipient {
		return ErrCannotTargetSelfUser
	}
	if err := e.state.Update(func(txn *state.Txn) error {
		return e.TransferBalance(txn, sender, recipient, amount)
	}); err != nil {
		return err
	}
	e.emit(events.Transfer{Sender: sender, Recipient: recipient, Amount: cloneAmount(amount)})
	return nil
}

// Approve overwrites the caller's allowance for spender. Unlike the
// increase/decrease adjustments this is an absolute write.
func (e *Engine) Approve(ctx CallContext, spender types.Address, amount *uint256.Int) error {
	owner, err := ctx.ImmediateCaller()
	if err != nil {
		return err
	}
	if spender == owner {
		return ErrCannotTargetSelfUser
	}
	amount = cloneAmount(amount)
	if err := e.state.Update(func(txn *state.Txn) error {
		return txn.SetAllowance(owner, spender, amount)
	}); err != nil {
		return err
	}
	e.emit(events.SetAllowance{Owner: owner, Spender: spender, Allowance: amount})
	return nil
}

// IncreaseAllowance raises the caller's allowance for spender by amount,
// saturating at the maximum value instead of erroring on overflow.
func (e *Engine) IncreaseAllowance(ctx CallContext, spender types.Address, amount *uint256.Int) error {
	owner, err := ctx.ImmediateCaller()
	if err != nil {
		return err
	}
	if spender == owner {
		return ErrCannotTargetSelfUser
	}
	amount = cloneAmount(amount)
	var updated *uint256.Int
	if err := e.state.Update(func(txn *state.Txn) error {
		current, err := txn.Allowance(owner, spender)
		if err != nil {
			return err
		}
		var overflow bool
		updated, overflow = new(uint256.Int).AddOverflow(current, amount)
		if overflow {
			updated.SetAllOne()
		}
		return txn.SetAllowance(owner, spender, updated)
	}); err != nil {
		return err
	}
	e.emit(events.IncreaseAllowance{Owner: owner, Spender: spender, Allowance: updated, IncBy: amount})
	return nil
}

// DecreaseAllowance lowers the caller's allowance for spender by amount,
// flooring at zero instead of erroring on underflow.
func (e *Engine) DecreaseAllowance(ctx CallContext, spender types.Address, amount *uint256.Int) error {
	owner, err := ctx.ImmediateCaller()
	if err != nil {
		return err
	}
	if spender == owner {
		return ErrCannotTargetSelfUser
	}
	amount = cloneAmount(amount)
	var updated *uint256.Int
	if err := e.state.Update(func(txn *state.Txn) error {
		current, err := txn.Allowance(owner, spender)
		if err != nil {
			return err
		}
		var underflow bool
		updated, underflow = new(uint256.Int).SubOverflow(current, amount)
		if underflow {
			updated.Clear()
		}
		return txn.SetAllowance(owner, spender, updated)
	}); err != nil {
		return err
	}
	e.emit(events.DecreaseAllowance{Owner: owner, Spender: spender, Allowance: updated, DecrBy: amount})
	return nil
}

// TransferFrom moves amount out of owner's balance on the strength of the
// caller's allowance. A zero amount is a no-op success emitting nothing. The
// allowance reduction uses checked arithmetic; the balance move must also
// succeed or the whole call aborts with the allowance untouched.
func (e *Engine) TransferFrom(ctx CallContext, owner, recipient types.Address, amount *uint256.Int) error {
	spender, err := ctx.ImmediateCaller()
	if err != nil {
		return err
	}
	if owner == recipient {
		return ErrCannotTargetSelfUser
	}
	amount = cloneAmount(amount)
	if amount.IsZero() {
		return nil
	}
	if err := e.state.Update(func(txn *state.Txn) error {
		allowance, err := txn.Allowance(owner, spender)
		if err != nil {
			return err
		}
		remaining, underflow := new(uint256.Int).SubOverflow(allowance, amount)
		if underflow {
			return ErrInsufficientAllowance
		}
		if err := e.TransferBalance(txn, owner, recipient, amount); err != nil {
			return err
		}
		return txn.SetAllowance(owner, spender, remaining)
	}); err != nil {
		return err
	}
	e.emit(events.TransferFrom{Spender: spender, Owner: owner, Recipient: recipient, Amount: amount})
	return nil
}

// Mint creates amount new tokens for recipient under a caller-supplied
// idempotency id. The supplied swapFee must equal the configured swap fee at
// call time, binding the caller to the fee it could observe and blocking
// stale-fee front-running. Supply grows by the gross amount; the fee share is
// credited to the fee receiver.
func (e *Engine) Mint(ctx CallContext, recipient types.Address, amount, swapFee *uint256.Int, mintID string) error {
	if err := e.state.Update(func(txn *state.Txn) error {
		enabled, err := txn.MintBurnEnabled()
		if err != nil {
			return err
		}
		if !enabled {
			return ErrMintBurnDisabled
		}
		if _, err := e.RequireBadge(txn, ctx, e.mintBadges...); err != nil {
			return err
		}
		used, err := txn.MintIDUsed(mintID)
		if err != nil {
			return err
		}
		if used {
			return ErrAlreadyMint
		}
		if err := txn.ConsumeMintID(mintID); err != nil {
			return err
		}
		configured, err := txn.SwapFee()
		if err != nil {
			return err
		}
		if !configured.Eq(cloneAmount(swapFee)) {
			return ErrInvalidFee
		}
		if cloneAmount(amount).Lt(configured) {
			return ErrMintTooLow
		}
		return e.MintTokens(txn, recipient, configured, amount)
	}); err != nil {
		return err
	}
	e.emit(
		events.Mint{Recipient: recipient, Amount: cloneAmount(amount)},
		events.MintSettled{Recipient: recipient, Amount: cloneAmount(amount), MintID: mintID},
	)
	return nil
}

// Burn destroys amount of the caller's own tokens. Delegated burns are not
// supported: the owner argument must name the caller.
func (e *Engine) Burn(ctx CallContext, owner types.Address, amount *uint256.Int) error {
	caller, err := ctx.ImmediateCaller()
	if err != nil {
		return err
	}
	if err := e.state.Update(func(txn *state.Txn) error {
		enabled, err := txn.MintBurnEnabled()
		if err != nil {
			return err
		}
		if !enabled {
			return ErrMintBurnDisabled
		}
		if owner != caller {
			return ErrInvalidBurnTarget
		}
		return e.BurnTokens(txn, owner, amount)
	}); err != nil {
		return err
	}
	e.emit(events.Burn{Owner: owner, Amount: cloneAmount(amount)})
	return nil
}

// BurnFrom destroys amount of owner's tokens without a caller check. It is
// the hook a successor ledger invokes while redeeming balances out of this
// instance; it still honours the global mint/burn flag.
func (e *Engine) BurnFrom(owner types.Address, amount *uint256.Int) error {
	if err := e.state.Update(func(txn *state.Txn) error {
		enabled, err := txn.MintBurnEnabled()
		if err != nil {
			return err
		}
		if !enabled {
			return ErrMintBurnDisabled
		}
		return e.BurnTokens(txn, owner, amount)
	}); err != nil {
		return err
	}
	e.emit(events.Burn{Owner: owner, Amount: cloneAmount(amount)})
	return nil
}
