package bridge

import (
	"encoding/hex"
	"errors"

	"github.com/holiman/uint256"

	"mctoken/core/events"
	"mctoken/core/state"
	"mctoken/core/types"
	"mctoken/native/token"
)

var (
	// ErrUnsupportedChainID indicates the destination chain is not on the
	// bridge-out allow-list.
	ErrUnsupportedChainID = errors.New("bridge: unsupported destination chain")
	// ErrRequestIDIllFormatted indicates the external identifier is not a
	// 64-character hex string.
	ErrRequestIDIllFormatted = errors.New("bridge: request id must be 64 hex characters")
	// ErrRequestIDExist indicates the external identifier was already used
	// by an earlier bridge-out request.
	ErrRequestIDExist = errors.New("bridge: request id already used")
	// ErrRequestAmountTooLow indicates fees exceed the locked amount.
	ErrRequestAmountTooLow = errors.New("bridge: amount does not cover fees")
	// ErrRequestNotFound indicates no pending record exists for the index.
	ErrRequestNotFound = errors.New("bridge: request not found")
	// ErrRequestAlreadyFinalized indicates the request was settled before.
	ErrRequestAlreadyFinalized = errors.New("bridge: request already finalized")
)

var (
	requestInfoPrefix = []byte("bridge/request-info:")
	requestMapPrefix  = []byte("bridge/request-map:")
)

const externalIDHexLength = 64

// Request is the pending bridge-out record created when a user locks tokens
// for release on another chain. The record survives settlement with the
// Finalized flag set, guarding against a second settlement of the same index.
type Request struct {
	Owner      types.Address
	Amount     *uint256.Int
	Fee        *uint256.Int
	ToChainID  *uint256.Int
	Receiver   string
	ExternalID string
	Finalized  bool
}

// Engine drives the bridge-out state machine: request escrow, fee settlement
// and the supported-chain allow-list. Balance movements go through the token
// engine so ordinary conservation invariants apply to escrowed funds.
type Engine struct {
	state   *state.Manager
	token   *token.Engine
	emitter events.Emitter
}

// NewEngine creates a bridge engine sharing state with the token engine.
func NewEngine(mgr *state.Manager, tok *token.Engine) *Engine {
	return &Engine{state: mgr, token: tok, emitter: events.NoopEmitter{}}
}

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(evts ...events.Event) {
	for _, evt := range evts {
		e.emitter.Emit(evt)
	}
}

func normalize(v *uint256.Int) *uint256.Int {
	if v == nil {
		return uint256.NewInt(0)
	}
	return v
}

func requestInfoKey(index *uint256.Int) []byte {
	return append(append([]byte(nil), requestInfoPrefix...), index.Dec()...)
}

func requestMapKey(externalID string) []byte {
	return append(append([]byte(nil), requestMapPrefix...), externalID...)
}

func validExternalID(id string) bool {
	if len(id) != externalIDHexLength {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}

// RequestBridgeBack locks amount from the caller in the ledger's own balance
// pending release on the destination chain and returns the allocated request
// index. The supplied fee must match the configured swap fee at call time and
// the external id must never have been seen before.
func (e *Engine) RequestBridgeBack(ctx token.CallContext, amount, fee, toChainID *uint256.Int, externalID, receiver string) (*uint256.Int, error) {
	owner, err := ctx.ImmediateCaller()
	if err != nil {
		return nil, err
	}
	amount = normalize(amount)
	fee = normalize(fee)
	toChainID = normalize(toChainID)
	var index *uint256.Int
	if err := e.state.Update(func(txn *state.Txn) error {
		supported, err := txn.SupportedChain(toChainID)
		if err != nil {
			return err
		}
		if !supported {
			return ErrUnsupportedChainID
		}
		configured, err := txn.SwapFee()
		if err != nil {
			return err
		}
		if !configured.Eq(fee) {
			return token.ErrInvalidFee
		}
		if !validExternalID(externalID) {
			return ErrRequestIDIllFormatted
		}
		used, err := txn.KVGet(requestMapKey(externalID), nil)
		if err != nil {
			return err
		}
		if used {
			return ErrRequestIDExist
		}
		index, err = txn.RequestCounter()
		if err != nil {
			return err
		}
		next, overflow := new(uint256.Int).AddOverflow(index, uint256.NewInt(1))
		if overflow {
			return token.ErrOverflow
		}
		if err := txn.SetRequestCounter(next); err != nil {
			return err
		}
		if err := txn.KVPut(requestMapKey(externalID), index); err != nil {
			return err
		}
		if _, underflow := new(uint256.Int).SubOverflow(amount, fee); underflow {
			return ErrRequestAmountTooLow
		}
		ledger, ok, err := txn.LedgerAddress()
		if err != nil {
			return err
		}
		if !ok {
			return token.ErrNotInitialized
		}
		if err := e.token.TransferBalance(txn, owner, ledger, amount); err != nil {
			return err
		}
		record := Request{
			Owner:      owner,
			Amount:     new(uint256.Int).Set(amount),
			Fee:        new(uint256.Int).Set(fee),
			ToChainID:  new(uint256.Int).Set(toChainID),
			Receiver:   receiver,
			ExternalID: externalID,
		}
		return txn.KVPut(requestInfoKey(index), &record)
	}); err != nil {
		return nil, err
	}
	ledger := e.ledgerAddress()
	e.emit(
		events.Transfer{Sender: owner, Recipient: ledger, Amount: new(uint256.Int).Set(amount)},
		events.RequestRegistered{Owner: owner, Amount: new(uint256.Int).Set(amount), Index: index, Receiver: receiver, ToChainID: new(uint256.Int).Set(toChainID)},
	)
	return index, nil
}

// SetFeeRequestBridgeBack settles a pending request: the recorded fee plus
// additionalFee moves from escrow to the fee receiver and the remainder is
// burned, removing the bridged-out value from circulation on this chain.
func (e *Engine) SetFeeRequestBridgeBack(ctx token.CallContext, index, additionalFee *uint256.Int) error {
	index = normalize(index)
	additionalFee = normalize(additionalFee)
	var (
		record      Request
		totalFee    *uint256.Int
		remainder   *uint256.Int
		ledger      types.Address
		feeReceiver types.Address
	)
	if err := e.state.Update(func(txn *state.Txn) error {
		if _, err := e.token.RequireBadge(txn, ctx, token.BadgeAdmin); err != nil {
			return err
		}
		ok, err := txn.KVGet(requestInfoKey(index), &record)
		if err != nil {
			return err
		}
		if !ok {
			return ErrRequestNotFound
		}
		if record.Finalized {
			return ErrRequestAlreadyFinalized
		}
		var overflow bool
		totalFee, overflow = new(uint256.Int).AddOverflow(additionalFee, record.Fee)
		if overflow {
			return token.ErrOverflow
		}
		var underflow bool
		remainder, underflow = new(uint256.Int).SubOverflow(record.Amount, totalFee)
		if underflow {
			return ErrRequestAmountTooLow
		}
		ledger, _, err = txn.LedgerAddress()
		if err != nil {
			return err
		}
		var found bool
		feeReceiver, found, err = txn.FeeReceiver()
		if err != nil {
			return err
		}
		if !found {
			return token.ErrFeeReceiverUnset
		}
		if err := e.token.TransferBalance(txn, ledger, feeReceiver, totalFee); err != nil {
			return err
		}
		if err := e.token.BurnTokens(txn, ledger, remainder); err != nil {
			return err
		}
		record.Finalized = true
		return txn.KVPut(requestInfoKey(index), &record)
	}); err != nil {
		return err
	}
	e.emit(
		events.Transfer{Sender: ledger, Recipient: feeReceiver, Amount: totalFee},
		events.Burn{Owner: ledger, Amount: remainder},
		events.RequestFinalized{Owner: record.Owner, Amount: remainder, Fee: totalFee, Index: index, Receiver: record.Receiver, ToChainID: record.ToChainID},
		events.FeeAdjusted{Index: index, Fee: new(uint256.Int).Set(additionalFee)},
	)
	return nil
}

// SetSupportedChains toggles the allow-list entry for each chain id.
func (e *Engine) SetSupportedChains(ctx token.CallContext, chains []*uint256.Int, supported bool) error {
	return e.state.Update(func(txn *state.Txn) error {
		if _, err := e.token.RequireBadge(txn, ctx, token.BadgeAdmin); err != nil {
			return err
		}
		for _, chain := range chains {
			if err := txn.SetSupportedChain(chain, supported); err != nil {
				return err
			}
		}
		return nil
	})
}

// Request returns the stored record for a request index.
func (e *Engine) Request(index *uint256.Int) (*Request, bool, error) {
	var (
		record Request
		found  bool
	)
	err := e.state.View(func(txn *state.Txn) error {
		ok, err := txn.KVGet(requestInfoKey(index), &record)
		found = ok
		return err
	})
	if err != nil || !found {
		return nil, false, err
	}
	return &record, true, nil
}

// RequestIndex resolves an external identifier to its allocated index.
func (e *Engine) RequestIndex(externalID string) (*uint256.Int, bool, error) {
	var (
		index uint256.Int
		found bool
	)
	err := e.state.View(func(txn *state.Txn) error {
		ok, err := txn.KVGet(requestMapKey(externalID), &index)
		found = ok
		return err
	})
	if err != nil || !found {
		return nil, false, err
	}
	return &index, true, nil
}

// SupportedChain reports whether a destination chain is on the allow-list.
func (e *Engine) SupportedChain(chainID *uint256.Int) (bool, error) {
	var supported bool
	err := e.state.View(func(txn *state.Txn) error {
		var err error
		supported, err = txn.SupportedChain(chainID)
		return err
	})
	return supported, err
}

func (e *Engine) ledgerAddress() types.Address {
	var addr types.Address
	_ = e.state.View(func(txn *state.Txn) error {
		stored, ok, err := txn.LedgerAddress()
		if err == nil && ok {
			addr = stored
		}
		return err
	})
	return addr
}
