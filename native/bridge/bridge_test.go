package bridge

import (
	"errors"
	"strings"
	"testing"

	"github.com/holiman/uint256"

	"mctoken/core/state"
	"mctoken/core/types"
	"mctoken/native/token"
	"mctoken/storage"
)

func addr(b byte) types.Address {
	var a types.Address
	a[types.AddressLength-1] = b
	return a
}

var (
	deployer    = addr(0x01)
	ledgerAddr  = addr(0xff)
	feeReceiver = addr(0x02)
	alice       = addr(0x0a)

	chainOne = uint256.NewInt(1)
	chainTwo = uint256.NewInt(2)
)

func externalID(seed string) string {
	return seed + strings.Repeat("0", externalIDHexLength-len(seed))
}

func callAs(caller types.Address) token.CallContext {
	return token.NewCallContext(caller, ledgerAddr)
}

func newTestEngines(t *testing.T, supply, swapFee uint64) (*token.Engine, *Engine) {
	t.Helper()
	mgr := state.NewManager(storage.NewMemDB())
	tok := token.NewEngine(mgr)
	cfg := token.InitConfig{
		Name:            "Bridge Token",
		Symbol:          "BRG",
		Decimals:        9,
		InitialSupply:   uint256.NewInt(supply),
		MinterList:      []types.Address{deployer},
		SwapFee:         uint256.NewInt(swapFee),
		FeeReceiver:     feeReceiver,
		SupportedChains: []*uint256.Int{chainOne},
		EnableMintBurn:  true,
		LedgerAddress:   ledgerAddr,
	}
	if err := tok.Init(callAs(deployer), cfg); err != nil {
		t.Fatalf("init: %v", err)
	}
	return tok, NewEngine(mgr, tok)
}

func mustBalance(t *testing.T, tok *token.Engine, who types.Address) *uint256.Int {
	t.Helper()
	balance, err := tok.BalanceOf(who)
	if err != nil {
		t.Fatalf("balance of %s: %v", who, err)
	}
	return balance
}

func mustSupply(t *testing.T, tok *token.Engine) *uint256.Int {
	t.Helper()
	supply, err := tok.TotalSupply()
	if err != nil {
		t.Fatalf("total supply: %v", err)
	}
	return supply
}

func TestRequestBridgeBack(t *testing.T) {
	tok, bridge := newTestEngines(t, 1000, 10)

	index, err := bridge.RequestBridgeBack(callAs(deployer), uint256.NewInt(400), uint256.NewInt(10), chainOne, externalID("aa"), "remote-receiver")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if !index.IsZero() {
		t.Fatalf("first request index = %s, want 0", index.Dec())
	}
	if got := mustBalance(t, tok, deployer); !got.Eq(uint256.NewInt(600)) {
		t.Fatalf("owner balance = %s", got.Dec())
	}
	if got := mustBalance(t, tok, ledgerAddr); !got.Eq(uint256.NewInt(400)) {
		t.Fatalf("escrow balance = %s", got.Dec())
	}
	// Escrow is a move, not a burn.
	if got := mustSupply(t, tok); !got.Eq(uint256.NewInt(1000)) {
		t.Fatalf("supply = %s", got.Dec())
	}

	record, ok, err := bridge.Request(index)
	if err != nil || !ok {
		t.Fatalf("request lookup: ok=%v err=%v", ok, err)
	}
	if record.Owner != deployer || !record.Amount.Eq(uint256.NewInt(400)) || record.Receiver != "remote-receiver" || record.Finalized {
		t.Fatalf("unexpected record: %+v", record)
	}
	mapped, ok, err := bridge.RequestIndex(externalID("aa"))
	if err != nil || !ok || !mapped.Eq(index) {
		t.Fatalf("index lookup: got %v ok=%v err=%v", mapped, ok, err)
	}
}

func TestRequestBridgeBackAllocatesSequentialIndexes(t *testing.T) {
	_, bridge := newTestEngines(t, 1000, 0)

	first, err := bridge.RequestBridgeBack(callAs(deployer), uint256.NewInt(10), nil, chainOne, externalID("01"), "r")
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	second, err := bridge.RequestBridgeBack(callAs(deployer), uint256.NewInt(10), nil, chainOne, externalID("02"), "r")
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	if !first.IsZero() || !second.Eq(uint256.NewInt(1)) {
		t.Fatalf("indexes = %s, %s", first.Dec(), second.Dec())
	}
}

func TestRequestBridgeBackReplayProtection(t *testing.T) {
	tok, bridge := newTestEngines(t, 1000, 0)

	id := externalID("ab")
	if _, err := bridge.RequestBridgeBack(callAs(deployer), uint256.NewInt(100), nil, chainOne, id, "r"); err != nil {
		t.Fatalf("first request: %v", err)
	}
	_, err := bridge.RequestBridgeBack(callAs(deployer), uint256.NewInt(100), nil, chainOne, id, "r")
	if !errors.Is(err, ErrRequestIDExist) {
		t.Fatalf("expected ErrRequestIDExist, got %v", err)
	}
	// The rejected replay must not have moved funds a second time.
	if got := mustBalance(t, tok, deployer); !got.Eq(uint256.NewInt(900)) {
		t.Fatalf("owner balance = %s", got.Dec())
	}
}

func TestRequestBridgeBackValidation(t *testing.T) {
	_, bridge := newTestEngines(t, 1000, 10)

	cases := []struct {
		name       string
		amount     *uint256.Int
		fee        *uint256.Int
		chain      *uint256.Int
		externalID string
		wantErr    error
	}{
		{"unsupported chain", uint256.NewInt(100), uint256.NewInt(10), chainTwo, externalID("01"), ErrUnsupportedChainID},
		{"fee mismatch", uint256.NewInt(100), uint256.NewInt(9), chainOne, externalID("02"), token.ErrInvalidFee},
		{"short id", uint256.NewInt(100), uint256.NewInt(10), chainOne, "abcd", ErrRequestIDIllFormatted},
		{"non-hex id", uint256.NewInt(100), uint256.NewInt(10), chainOne, strings.Repeat("zz", 32), ErrRequestIDIllFormatted},
		{"amount below fee", uint256.NewInt(5), uint256.NewInt(10), chainOne, externalID("03"), ErrRequestAmountTooLow},
		{"insufficient balance", uint256.NewInt(5000), uint256.NewInt(10), chainOne, externalID("04"), token.ErrInsufficientBalance},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := bridge.RequestBridgeBack(callAs(deployer), tc.amount, tc.fee, tc.chain, tc.externalID, "r")
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestSetFeeRequestBridgeBack(t *testing.T) {
	tok, bridge := newTestEngines(t, 1000, 10)

	index, err := bridge.RequestBridgeBack(callAs(deployer), uint256.NewInt(400), uint256.NewInt(10), chainOne, externalID("aa"), "r")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if err := bridge.SetFeeRequestBridgeBack(callAs(deployer), index, uint256.NewInt(5)); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	// Total fee 15 to the receiver, remaining 385 burned.
	if got := mustBalance(t, tok, feeReceiver); !got.Eq(uint256.NewInt(15)) {
		t.Fatalf("fee receiver balance = %s", got.Dec())
	}
	if got := mustBalance(t, tok, ledgerAddr); !got.IsZero() {
		t.Fatalf("escrow not drained: %s", got.Dec())
	}
	if got := mustSupply(t, tok); !got.Eq(uint256.NewInt(615)) {
		t.Fatalf("supply = %s", got.Dec())
	}
	record, ok, err := bridge.Request(index)
	if err != nil || !ok {
		t.Fatalf("record lookup: ok=%v err=%v", ok, err)
	}
	if !record.Finalized {
		t.Fatal("record must be marked finalized")
	}
}

func TestSetFeeRequestBridgeBackGuards(t *testing.T) {
	_, bridge := newTestEngines(t, 1000, 0)

	index, err := bridge.RequestBridgeBack(callAs(deployer), uint256.NewInt(100), nil, chainOne, externalID("aa"), "r")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if err := bridge.SetFeeRequestBridgeBack(callAs(alice), index, nil); !errors.Is(err, token.ErrInsufficientRights) {
		t.Fatalf("non-admin finalize: got %v", err)
	}
	if err := bridge.SetFeeRequestBridgeBack(callAs(deployer), uint256.NewInt(99), nil); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("unknown index: got %v", err)
	}
	if err := bridge.SetFeeRequestBridgeBack(callAs(deployer), index, uint256.NewInt(101)); !errors.Is(err, ErrRequestAmountTooLow) {
		t.Fatalf("fee above amount: got %v", err)
	}
	if err := bridge.SetFeeRequestBridgeBack(callAs(deployer), index, nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if err := bridge.SetFeeRequestBridgeBack(callAs(deployer), index, nil); !errors.Is(err, ErrRequestAlreadyFinalized) {
		t.Fatalf("double finalize: got %v", err)
	}
}

func TestSetSupportedChains(t *testing.T) {
	_, bridge := newTestEngines(t, 1000, 0)

	if err := bridge.SetSupportedChains(callAs(alice), []*uint256.Int{chainTwo}, true); !errors.Is(err, token.ErrInsufficientRights) {
		t.Fatalf("non-admin: got %v", err)
	}
	if err := bridge.SetSupportedChains(callAs(deployer), []*uint256.Int{chainTwo}, true); err != nil {
		t.Fatalf("enable: %v", err)
	}
	supported, err := bridge.SupportedChain(chainTwo)
	if err != nil || !supported {
		t.Fatalf("chain two supported=%v err=%v", supported, err)
	}
	if err := bridge.SetSupportedChains(callAs(deployer), []*uint256.Int{chainOne}, false); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if _, err := bridge.RequestBridgeBack(callAs(deployer), uint256.NewInt(10), nil, chainOne, externalID("aa"), "r"); !errors.Is(err, ErrUnsupportedChainID) {
		t.Fatalf("disabled chain: got %v", err)
	}
}

// TestBridgeLifecycle walks a mint, a burn and a full bridge-out round trip,
// checking total supply at each step.
func TestBridgeLifecycle(t *testing.T) {
	tok, bridge := newTestEngines(t, 1_000_000, 0)

	if err := tok.Mint(callAs(deployer), alice, uint256.NewInt(500), nil, externalID("11")); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if got := mustSupply(t, tok); !got.Eq(uint256.NewInt(1_000_500)) {
		t.Fatalf("supply after mint = %s", got.Dec())
	}
	if err := tok.Burn(callAs(alice), alice, uint256.NewInt(100)); err != nil {
		t.Fatalf("burn: %v", err)
	}
	if got := mustSupply(t, tok); !got.Eq(uint256.NewInt(1_000_400)) {
		t.Fatalf("supply after burn = %s", got.Dec())
	}
	index, err := bridge.RequestBridgeBack(callAs(alice), uint256.NewInt(400), nil, chainOne, externalID("22"), "remote-receiver")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if got := mustSupply(t, tok); !got.Eq(uint256.NewInt(1_000_400)) {
		t.Fatalf("supply after lock = %s", got.Dec())
	}
	if got := mustBalance(t, tok, alice); !got.IsZero() {
		t.Fatalf("alice balance after lock = %s", got.Dec())
	}
	if err := bridge.SetFeeRequestBridgeBack(callAs(deployer), index, nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if got := mustSupply(t, tok); !got.Eq(uint256.NewInt(1_000_000)) {
		t.Fatalf("supply after finalize = %s, want the initial supply", got.Dec())
	}
	if got := mustBalance(t, tok, feeReceiver); !got.IsZero() {
		t.Fatalf("zero-fee finalize credited the receiver: %s", got.Dec())
	}
}
