package token

import "errors"

var (
	// ErrInvalidContext indicates the call chain was too short to resolve an
	// immediate caller.
	ErrInvalidContext = errors.New("token: invalid call context")
	// ErrInsufficientRights indicates the caller's badge is not in the
	// allow-set for the attempted operation.
	ErrInsufficientRights = errors.New("token: insufficient rights")
	// ErrCannotTargetSelfUser indicates an operation targeted the caller's
	// own identity where that is disallowed.
	ErrCannotTargetSelfUser = errors.New("token: cannot target self")
	// ErrInsufficientBalance indicates a balance debit would underflow.
	ErrInsufficientBalance = errors.New("token: insufficient balance")
	// ErrInsufficientAllowance indicates a delegated transfer exceeds the
	// remaining allowance.
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
	// ErrOverflow indicates checked arithmetic overflowed.
	ErrOverflow = errors.New("token: arithmetic overflow")
	// ErrMintBurnDisabled indicates the global mint/burn flag is off.
	ErrMintBurnDisabled = errors.New("token: mint and burn disabled")
	// ErrAlreadyMint indicates the supplied mint id has been consumed.
	ErrAlreadyMint = errors.New("token: mint id already used")
	// ErrInvalidFee indicates the supplied fee does not match the configured
	// swap fee.
	ErrInvalidFee = errors.New("token: fee does not match configured swap fee")
	// ErrMintTooLow indicates the mint amount does not cover the swap fee.
	ErrMintTooLow = errors.New("token: mint amount below swap fee")
	// ErrInvalidBurnTarget indicates a burn for an identity other than the
	// caller; only self-burn is permitted.
	ErrInvalidBurnTarget = errors.New("token: burn target must be caller")
	// ErrAlreadyInitialized indicates init ran more than once.
	ErrAlreadyInitialized = errors.New("token: already initialised")
	// ErrNotInitialized indicates a view or operation ran before init.
	ErrNotInitialized = errors.New("token: not initialised")
	// ErrFeeReceiverUnset indicates the fee receiver is missing from state.
	ErrFeeReceiverUnset = errors.New("token: fee receiver not configured")
)
