package redeem

import (
	"errors"

	"github.com/holiman/uint256"

	"mctoken/core/events"
	"mctoken/core/state"
	"mctoken/core/types"
	"mctoken/native/token"
)

var (
	// ErrNotSupportedToken indicates the source ledger is not on the
	// redemption allow-list.
	ErrNotSupportedToken = errors.New("redeem: token not supported")
	// ErrSourceUnavailable indicates no collaborator is wired for the
	// source ledger identity.
	ErrSourceUnavailable = errors.New("redeem: source ledger unavailable")
)

// Burner is the collaborator interface for the source ledger's burn
// operation. The call is synchronous; any failure aborts the redemption
// before this ledger mutates anything.
type Burner interface {
	Burn(owner types.Address, amount *uint256.Int) error
}

// BurnerResolver maps a source ledger identity to its Burner.
type BurnerResolver interface {
	Resolve(tokenAddr types.Address) (Burner, bool)
}

// Registry is an in-process BurnerResolver for co-deployed ledger instances.
type Registry struct {
	burners map[types.Address]Burner
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{burners: make(map[types.Address]Burner)}
}

// Register wires a source ledger identity to its Burner.
func (r *Registry) Register(tokenAddr types.Address, burner Burner) {
	r.burners[tokenAddr] = burner
}

// Resolve implements BurnerResolver.
func (r *Registry) Resolve(tokenAddr types.Address) (Burner, bool) {
	burner, ok := r.burners[tokenAddr]
	return burner, ok
}

// LedgerBurner adapts a token engine into the Burner collaborator, letting a
// co-deployed predecessor ledger serve as a redemption source.
type LedgerBurner struct {
	Token *token.Engine
}

// Burn implements Burner against the wrapped ledger instance.
func (b LedgerBurner) Burn(owner types.Address, amount *uint256.Int) error {
	return b.Token.BurnFrom(owner, amount)
}

// Engine migrates balances from an allow-listed foreign ledger instance into
// this one: burn there, zero-fee mint here, all in one call.
type Engine struct {
	state    *state.Manager
	token    *token.Engine
	resolver BurnerResolver
	emitter  events.Emitter
}

// NewEngine creates a redemption engine sharing state with the token engine.
func NewEngine(mgr *state.Manager, tok *token.Engine, resolver BurnerResolver) *Engine {
	return &Engine{state: mgr, token: tok, resolver: resolver, emitter: events.NoopEmitter{}}
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

// SetRedeemTokens toggles the redemption allow-list entry for each source
// ledger identity.
func (e *Engine) SetRedeemTokens(ctx token.CallContext, tokens []types.Address, supported bool) error {
	return e.state.Update(func(txn *state.Txn) error {
		if _, err := e.token.RequireBadge(txn, ctx, token.BadgeAdmin); err != nil {
			return err
		}
		for _, tokenAddr := range tokens {
			if err := txn.SetRedeemableToken(tokenAddr, supported); err != nil {
				return err
			}
		}
		return nil
	})
}

// RedeemableToken reports whether the source ledger may be redeemed here.
func (e *Engine) RedeemableToken(tokenAddr types.Address) (bool, error) {
	var supported bool
	err := e.state.View(func(txn *state.Txn) error {
		var err error
		supported, err = txn.RedeemableToken(tokenAddr)
		return err
	})
	return supported, err
}

// RedeemToMultichainToken burns amount of the caller's balance on the source
// ledger and mints the same amount here with zero swap fee. The downstream
// burn runs first; its failure propagates and leaves this ledger untouched.
// Local mutations commit only after the source reports success.
func (e *Engine) RedeemToMultichainToken(ctx token.CallContext, sourceToken types.Address, amount *uint256.Int) error {
	caller, err := ctx.ImmediateCaller()
	if err != nil {
		return err
	}
	if amount == nil {
		amount = uint256.NewInt(0)
	}
	supported, err := e.RedeemableToken(sourceToken)
	if err != nil {
		return err
	}
	if !supported {
		return ErrNotSupportedToken
	}
	source, ok := e.resolver.Resolve(sourceToken)
	if !ok {
		return ErrSourceUnavailable
	}
	if err := source.Burn(caller, amount); err != nil {
		return err
	}
	if err := e.state.Update(func(txn *state.Txn) error {
		return e.token.MintTokens(txn, caller, uint256.NewInt(0), amount)
	}); err != nil {
		return err
	}
	e.emit(
		events.Mint{Recipient: caller, Amount: new(uint256.Int).Set(amount)},
		events.Redeemed{Owner: caller, Amount: new(uint256.Int).Set(amount), SourceToken: sourceToken},
	)
	return nil
}
