package state

import (
	"errors"
	"fmt"
	"sync"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"mctoken/core/types"
	"mctoken/storage"
)

// Metadata carries the immutable token descriptors written once at init.
type Metadata struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// Manager owns all persisted ledger state. Every public ledger operation runs
// inside Update, which buffers mutations in a transaction overlay and flushes
// them to the backing store only when the operation succeeds. This reproduces
// the all-or-nothing per-call semantics the ledger requires.
type Manager struct {
	mu sync.Mutex
	db storage.Database
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

// Update runs fn inside a fresh transaction. Mutations are discarded when fn
// returns an error and committed otherwise. Updates are serialized: no two
// operations ever observe each other's partial state.
func (m *Manager) Update(fn func(*Txn) error) error {
	if m == nil {
		return fmt.Errorf("state manager unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	txn := &Txn{db: m.db, overlay: make(map[string][]byte)}
	if err := fn(txn); err != nil {
		return err
	}
	return txn.commit()
}

// View runs fn against current state without committing anything. Writes made
// through the transaction are visible to fn but never persisted.
func (m *Manager) View(fn func(*Txn) error) error {
	if m == nil {
		return fmt.Errorf("state manager unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&Txn{db: m.db, overlay: make(map[string][]byte)})
}

// Txn is a read-your-writes overlay over the backing store. It is only valid
// for the duration of the Update or View call that created it.
type Txn struct {
	db      storage.Database
	overlay map[string][]byte
}

func (t *Txn) commit() error {
	for key, value := range t.overlay {
		if err := t.db.Put([]byte(key), value); err != nil {
			return err
		}
	}
	return nil
}

func (t *Txn) getRaw(key []byte) ([]byte, bool, error) {
	if value, ok := t.overlay[string(key)]; ok {
		return value, true, nil
	}
	value, err := t.db.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

func (t *Txn) putRaw(key []byte, value []byte) {
	t.overlay[string(key)] = value
}

// KVGet decodes the value stored under the hashed key into out. It reports
// false without touching out when the key is absent.
func (t *Txn) KVGet(key []byte, out interface{}) (bool, error) {
	data, ok, err := t.getRaw(ethcrypto.Keccak256(key))
	if err != nil || !ok {
		return false, err
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// KVPut encodes value and stores it under the hashed key.
func (t *Txn) KVPut(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	t.putRaw(ethcrypto.Keccak256(key), encoded)
	return nil
}

func (t *Txn) readUint(key []byte) (*uint256.Int, error) {
	data, ok, err := t.getRaw(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return uint256.NewInt(0), nil
	}
	value := new(uint256.Int)
	if err := rlp.DecodeBytes(data, value); err != nil {
		return nil, err
	}
	return value, nil
}

func (t *Txn) writeUint(key []byte, value *uint256.Int) error {
	if value == nil {
		value = uint256.NewInt(0)
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	t.putRaw(key, encoded)
	return nil
}

// Balance returns the balance for addr, zero when the account is absent.
func (t *Txn) Balance(addr types.Address) (*uint256.Int, error) {
	return t.readUint(balanceKey(addr.Bytes()))
}

// SetBalance overwrites the balance entry for addr.
func (t *Txn) SetBalance(addr types.Address, amount *uint256.Int) error {
	return t.writeUint(balanceKey(addr.Bytes()), amount)
}

// Allowance returns the remaining amount spender may move out of owner's
// balance, zero when no approval exists.
func (t *Txn) Allowance(owner, spender types.Address) (*uint256.Int, error) {
	return t.readUint(allowanceKey(owner.Bytes(), spender.Bytes()))
}

// SetAllowance overwrites the (owner, spender) allowance entry.
func (t *Txn) SetAllowance(owner, spender types.Address, amount *uint256.Int) error {
	return t.writeUint(allowanceKey(owner.Bytes(), spender.Bytes()), amount)
}

// TotalSupply returns the recorded total supply, zero before init.
func (t *Txn) TotalSupply() (*uint256.Int, error) {
	return t.readUint(hashKey(supplyKeyRaw, nil))
}

// SetTotalSupply overwrites the total supply scalar. Token operations are the
// only callers; the scalar is never adjusted outside mint and burn paths.
func (t *Txn) SetTotalSupply(amount *uint256.Int) error {
	return t.writeUint(hashKey(supplyKeyRaw, nil), amount)
}

// Badge returns the stored security badge for addr. The second return reports
// whether any badge has been assigned.
func (t *Txn) Badge(addr types.Address) (uint8, bool, error) {
	data, ok, err := t.getRaw(badgeKey(addr.Bytes()))
	if err != nil || !ok {
		return 0, false, err
	}
	var badge uint8
	if err := rlp.DecodeBytes(data, &badge); err != nil {
		return 0, false, err
	}
	return badge, true, nil
}

// SetBadge assigns a badge value to addr, replacing any previous assignment.
func (t *Txn) SetBadge(addr types.Address, badge uint8) error {
	encoded, err := rlp.EncodeToBytes(badge)
	if err != nil {
		return err
	}
	t.putRaw(badgeKey(addr.Bytes()), encoded)
	return nil
}

// MintIDUsed reports whether the supplied mint id has already been consumed.
func (t *Txn) MintIDUsed(id string) (bool, error) {
	_, ok, err := t.getRaw(mintIDKey(id))
	return ok, err
}

// ConsumeMintID marks the mint id as used. Entries are never deleted.
func (t *Txn) ConsumeMintID(id string) error {
	encoded, err := rlp.EncodeToBytes(true)
	if err != nil {
		return err
	}
	t.putRaw(mintIDKey(id), encoded)
	return nil
}

// SwapFee returns the configured swap fee, zero when unset.
func (t *Txn) SwapFee() (*uint256.Int, error) {
	return t.readUint(hashKey(swapFeeKeyRaw, nil))
}

// SetSwapFee overwrites the configured swap fee.
func (t *Txn) SetSwapFee(fee *uint256.Int) error {
	return t.writeUint(hashKey(swapFeeKeyRaw, nil), fee)
}

// FeeReceiver returns the configured fee receiver. Presence is required after
// init; the boolean lets callers distinguish an unset receiver.
func (t *Txn) FeeReceiver() (types.Address, bool, error) {
	return t.readAddress(hashKey(feeReceiverKeyRaw, nil))
}

// SetFeeReceiver overwrites the fee receiver address.
func (t *Txn) SetFeeReceiver(addr types.Address) error {
	return t.writeAddress(hashKey(feeReceiverKeyRaw, nil), addr)
}

// LedgerAddress returns the ledger's own escrow identity.
func (t *Txn) LedgerAddress() (types.Address, bool, error) {
	return t.readAddress(hashKey(ledgerAddressKeyRaw, nil))
}

// SetLedgerAddress records the ledger's own escrow identity.
func (t *Txn) SetLedgerAddress(addr types.Address) error {
	return t.writeAddress(hashKey(ledgerAddressKeyRaw, nil), addr)
}

// MintBurnEnabled reports whether mint and burn operations are globally
// enabled. Absent defaults to disabled.
func (t *Txn) MintBurnEnabled() (bool, error) {
	data, ok, err := t.getRaw(hashKey(mintBurnKeyRaw, nil))
	if err != nil || !ok {
		return false, err
	}
	var enabled bool
	if err := rlp.DecodeBytes(data, &enabled); err != nil {
		return false, err
	}
	return enabled, nil
}

// SetMintBurnEnabled toggles the global mint/burn flag.
func (t *Txn) SetMintBurnEnabled(enabled bool) error {
	encoded, err := rlp.EncodeToBytes(enabled)
	if err != nil {
		return err
	}
	t.putRaw(hashKey(mintBurnKeyRaw, nil), encoded)
	return nil
}

// Metadata returns the stored token metadata.
func (t *Txn) Metadata() (*Metadata, bool, error) {
	data, ok, err := t.getRaw(hashKey(metadataKeyRaw, nil))
	if err != nil || !ok {
		return nil, false, err
	}
	meta := new(Metadata)
	if err := rlp.DecodeBytes(data, meta); err != nil {
		return nil, false, err
	}
	return meta, true, nil
}

// SetMetadata writes the immutable token descriptors.
func (t *Txn) SetMetadata(meta Metadata) error {
	encoded, err := rlp.EncodeToBytes(&meta)
	if err != nil {
		return err
	}
	t.putRaw(hashKey(metadataKeyRaw, nil), encoded)
	return nil
}

// Initialized reports whether init has completed for this ledger instance.
func (t *Txn) Initialized() (bool, error) {
	_, ok, err := t.getRaw(hashKey(initializedKeyRaw, nil))
	return ok, err
}

// SetInitialized marks the ledger instance as initialised.
func (t *Txn) SetInitialized() error {
	encoded, err := rlp.EncodeToBytes(true)
	if err != nil {
		return err
	}
	t.putRaw(hashKey(initializedKeyRaw, nil), encoded)
	return nil
}

// RequestCounter returns the next bridge request index to allocate.
func (t *Txn) RequestCounter() (*uint256.Int, error) {
	return t.readUint(hashKey(requestCounterKeyRaw, nil))
}

// SetRequestCounter overwrites the bridge request counter.
func (t *Txn) SetRequestCounter(value *uint256.Int) error {
	return t.writeUint(hashKey(requestCounterKeyRaw, nil), value)
}

// SupportedChain reports whether the destination chain accepts bridge-out
// requests. Absent entries default to unsupported.
func (t *Txn) SupportedChain(chainID *uint256.Int) (bool, error) {
	if chainID == nil {
		return false, nil
	}
	return t.readFlag(hashKey(chainPrefix, []byte(chainID.Dec())))
}

// SetSupportedChain toggles the allow-list entry for a destination chain.
func (t *Txn) SetSupportedChain(chainID *uint256.Int, supported bool) error {
	if chainID == nil {
		return fmt.Errorf("state: chain id required")
	}
	return t.writeFlag(hashKey(chainPrefix, []byte(chainID.Dec())), supported)
}

// RedeemableToken reports whether the foreign ledger instance may be redeemed
// into this one. Absent entries default to unsupported.
func (t *Txn) RedeemableToken(addr types.Address) (bool, error) {
	return t.readFlag(hashKey(redeemTokenPrefix, addr.Bytes()))
}

// SetRedeemableToken toggles the redemption allow-list entry for a foreign
// ledger instance.
func (t *Txn) SetRedeemableToken(addr types.Address, supported bool) error {
	return t.writeFlag(hashKey(redeemTokenPrefix, addr.Bytes()), supported)
}

func (t *Txn) readFlag(key []byte) (bool, error) {
	data, ok, err := t.getRaw(key)
	if err != nil || !ok {
		return false, err
	}
	var flag bool
	if err := rlp.DecodeBytes(data, &flag); err != nil {
		return false, err
	}
	return flag, nil
}

func (t *Txn) writeFlag(key []byte, flag bool) error {
	encoded, err := rlp.EncodeToBytes(flag)
	if err != nil {
		return err
	}
	t.putRaw(key, encoded)
	return nil
}

func (t *Txn) readAddress(key []byte) (types.Address, bool, error) {
	data, ok, err := t.getRaw(key)
	if err != nil || !ok {
		return types.Address{}, false, err
	}
	var addr types.Address
	if err := rlp.DecodeBytes(data, &addr); err != nil {
		return types.Address{}, false, err
	}
	return addr, true, nil
}

func (t *Txn) writeAddress(key []byte, addr types.Address) error {
	encoded, err := rlp.EncodeToBytes(addr)
	if err != nil {
		return err
	}
	t.putRaw(key, encoded)
	return nil
}
