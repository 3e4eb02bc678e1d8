package token

import (
	"github.com/holiman/uint256"

	"mctoken/core/events"
	"mctoken/core/state"
	"mctoken/core/types"
)

// Engine implements the fungible-token ledger: balances, allowances, supply,
// security badges and the admin configuration scalars. One Engine wraps one
// ledger instance; all persisted state lives in the state manager and every
// public operation runs inside a single transaction.
type Engine struct {
	state      *state.Manager
	emitter    events.Emitter
	mintBadges []SecurityBadge
}

// NewEngine creates a token engine bound to the supplied state manager. The
// mint allow-set defaults to minters only; deployments that also want admins
// minting configure that via SetMintBadges.
func NewEngine(mgr *state.Manager) *Engine {
	return &Engine{
		state:      mgr,
		emitter:    events.NoopEmitter{},
		mintBadges: []SecurityBadge{BadgeMinter},
	}
}

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetMintBadges overrides the badge allow-set consulted by Mint.
func (e *Engine) SetMintBadges(badges ...SecurityBadge) {
	if len(badges) == 0 {
		return
	}
	e.mintBadges = append([]SecurityBadge(nil), badges...)
}

// State exposes the underlying manager so collaborating engines can share a
// transaction with token primitives.
func (e *Engine) State() *state.Manager { return e.state }

func (e *Engine) emit(evts ...events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	for _, evt := range evts {
		e.emitter.Emit(evt)
	}
}

func cloneAmount(v *uint256.Int) *uint256.Int {
	if v == nil {
		return uint256.NewInt(0)
	}
	return new(uint256.Int).Set(v)
}

// InitConfig carries the one-time setup arguments for a ledger instance.
type InitConfig struct {
	Name            string
	Symbol          string
	Decimals        uint8
	InitialSupply   *uint256.Int
	AdminList       []types.Address
	MinterList      []types.Address
	SwapFee         *uint256.Int
	FeeReceiver     types.Address
	SupportedChains []*uint256.Int
	EnableMintBurn  bool
	// LedgerAddress is this instance's own identity, used as the escrow
	// account for bridge-out requests.
	LedgerAddress types.Address
}

// Init performs the one-time ledger setup: metadata, initial supply credited
// to the deployer, the deployer's admin badge plus the optional badge lists,
// fee configuration and the initial supported-chain set. Re-invocation fails
// with ErrAlreadyInitialized.
func (e *Engine) Init(ctx CallContext, cfg InitConfig) error {
	deployer, err := ctx.ImmediateCaller()
	if err != nil {
		return err
	}
	if cfg.FeeReceiver.IsZero() {
		return ErrFeeReceiverUnset
	}
	return e.state.Update(func(txn *state.Txn) error {
		initialized, err := txn.Initialized()
		if err != nil {
			return err
		}
		if initialized {
			return ErrAlreadyInitialized
		}
		if err := txn.SetMetadata(state.Metadata{Name: cfg.Name, Symbol: cfg.Symbol, Decimals: cfg.Decimals}); err != nil {
			return err
		}
		initial := cloneAmount(cfg.InitialSupply)
		if err := txn.SetTotalSupply(initial); err != nil {
			return err
		}
		if err := txn.SetBalance(deployer, initial); err != nil {
			return err
		}
		if err := txn.SetBadge(deployer, uint8(BadgeAdmin)); err != nil {
			return err
		}
		for _, minter := range cfg.MinterList {
			if err := txn.SetBadge(minter, uint8(BadgeMinter)); err != nil {
				return err
			}
		}
		for _, admin := range cfg.AdminList {
			if err := txn.SetBadge(admin, uint8(BadgeAdmin)); err != nil {
				return err
			}
		}
		if err := txn.SetSwapFee(cloneAmount(cfg.SwapFee)); err != nil {
			return err
		}
		if err := txn.SetFeeReceiver(cfg.FeeReceiver); err != nil {
			return err
		}
		if err := txn.SetLedgerAddress(cfg.LedgerAddress); err != nil {
			return err
		}
		for _, chain := range cfg.SupportedChains {
			if err := txn.SetSupportedChain(chain, true); err != nil {
				return err
			}
		}
		if err := txn.SetMintBurnEnabled(cfg.EnableMintBurn); err != nil {
			return err
		}
		return txn.SetInitialized()
	})
}

// Name returns the token name set at init.
func (e *Engine) Name() (string, error) {
	meta, err := e.metadata()
	if err != nil {
		return "", err
	}
	return meta.Name, nil
}

// Symbol returns the token symbol set at init.
func (e *Engine) Symbol() (string, error) {
	meta, err := e.metadata()
	if err != nil {
		return "", err
	}
	return meta.Symbol, nil
}

// Decimals returns the decimal count set at init.
func (e *Engine) Decimals() (uint8, error) {
	meta, err := e.metadata()
	if err != nil {
		return 0, err
	}
	return meta.Decimals, nil
}

func (e *Engine) metadata() (*state.Metadata, error) {
	var meta *state.Metadata
	err := e.state.View(func(txn *state.Txn) error {
		stored, ok, err := txn.Metadata()
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotInitialized
		}
		meta = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return meta, nil
}

// TotalSupply returns the current total supply.
func (e *Engine) TotalSupply() (*uint256.Int, error) {
	var supply *uint256.Int
	err := e.state.View(func(txn *state.Txn) error {
		var err error
		supply, err = txn.TotalSupply()
		return err
	})
	return supply, err
}

// BalanceOf returns the balance of addr, zero for unknown accounts.
func (e *Engine) BalanceOf(addr types.Address) (*uint256.Int, error) {
	var balance *uint256.Int
	err := e.state.View(func(txn *state.Txn) error {
		var err error
		balance, err = txn.Balance(addr)
		return err
	})
	return balance, err
}

// Allowance returns the remaining (owner, spender) allowance.
func (e *Engine) Allowance(owner, spender types.Address) (*uint256.Int, error) {
	var allowance *uint256.Int
	err := e.state.View(func(txn *state.Txn) error {
		var err error
		allowance, err = txn.Allowance(owner, spender)
		return err
	})
	return allowance, err
}

// SwapFee returns the currently configured swap fee.
func (e *Engine) SwapFee() (*uint256.Int, error) {
	var fee *uint256.Int
	err := e.state.View(func(txn *state.Txn) error {
		var err error
		fee, err = txn.SwapFee()
		return err
	})
	return fee, err
}

// TransferBalance moves amount between two accounts inside txn with checked
// arithmetic. It is the primitive under Transfer, TransferFrom and the bridge
// escrow legs; callers are responsible for self-target checks and events.
func (e *Engine) TransferBalance(txn *state.Txn, from, to types.Address, amount *uint256.Int) error {
	amount = cloneAmount(amount)
	fromBalance, err := txn.Balance(from)
	if err != nil {
		return err
	}
	newFrom, underflow := new(uint256.Int).SubOverflow(fromBalance, amount)
	if underflow {
		return ErrInsufficientBalance
	}
	if err := txn.SetBalance(from, newFrom); err != nil {
		return err
	}
	toBalance, err := txn.Balance(to)
	if err != nil {
		return err
	}
	newTo, overflow := new(uint256.Int).AddOverflow(toBalance, amount)
	if overflow {
		return ErrOverflow
	}
	return txn.SetBalance(to, newTo)
}

// MintTokens credits recipient with amount minus swapFee, credits the fee
// receiver with swapFee and grows total supply by the gross amount. The fee
// share is itself newly created supply, not a deduction moved from the
// recipient.
func (e *Engine) MintTokens(txn *state.Txn, recipient types.Address, swapFee, amount *uint256.Int) error {
	amount = cloneAmount(amount)
	swapFee = cloneAmount(swapFee)
	balance, err := txn.Balance(recipient)
	if err != nil {
		return err
	}
	credited, overflow := new(uint256.Int).AddOverflow(balance, amount)
	if overflow {
		return ErrOverflow
	}
	credited, underflow := credited.SubOverflow(credited, swapFee)
	if underflow {
		return ErrOverflow
	}
	if err := txn.SetBalance(recipient, credited); err != nil {
		return err
	}
	if !swapFee.IsZero() {
		receiver, ok, err := txn.FeeReceiver()
		if err != nil {
			return err
		}
		if !ok {
			return ErrFeeReceiverUnset
		}
		receiverBalance, err := txn.Balance(receiver)
		if err != nil {
			return err
		}
		newReceiverBalance, overflow := new(uint256.Int).AddOverflow(receiverBalance, swapFee)
		if overflow {
			return ErrOverflow
		}
		if err := txn.SetBalance(receiver, newReceiverBalance); err != nil {
			return err
		}
	}
	supply, err := txn.TotalSupply()
	if err != nil {
		return err
	}
	newSupply, overflow := new(uint256.Int).AddOverflow(supply, amount)
	if overflow {
		return ErrOverflow
	}
	return txn.SetTotalSupply(newSupply)
}

// BurnTokens debits amount from owner and shrinks total supply. A supply
// underflow reports ErrOverflow: it cannot occur while balance accounting is
// consistent.
func (e *Engine) BurnTokens(txn *state.Txn, owner types.Address, amount *uint256.Int) error {
	amount = cloneAmount(amount)
	balance, err := txn.Balance(owner)
	if err != nil {
		return err
	}
	newBalance, underflow := new(uint256.Int).SubOverflow(balance, amount)
	if underflow {
		return ErrInsufficientBalance
	}
	supply, err := txn.TotalSupply()
	if err != nil {
		return err
	}
	newSupply, underflow := new(uint256.Int).SubOverflow(supply, amount)
	if underflow {
		return ErrOverflow
	}
	if err := txn.SetBalance(owner, newBalance); err != nil {
		return err
	}
	return txn.SetTotalSupply(newSupply)
}
