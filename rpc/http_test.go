package rpc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"

	"mctoken/core/state"
	"mctoken/core/types"
	"mctoken/native/bridge"
	"mctoken/native/redeem"
	"mctoken/native/token"
	"mctoken/observability"
	"mctoken/storage"
)

const (
	deployerHex    = "0x0000000000000000000000000000000000000001"
	feeReceiverHex = "0x0000000000000000000000000000000000000002"
	aliceHex       = "0x000000000000000000000000000000000000000a"
	ledgerHex      = "0x00000000000000000000000000000000000000ff"
)

func mustAddr(t *testing.T, raw string) types.Address {
	t.Helper()
	addr, err := types.ParseAddress(raw)
	if err != nil {
		t.Fatalf("parse %s: %v", raw, err)
	}
	return addr
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	t.Setenv("MCTOKEN_RPC_TOKEN", "")
	mgr := state.NewManager(storage.NewMemDB())
	tok := token.NewEngine(mgr)
	deployer := mustAddr(t, deployerHex)
	ledger := mustAddr(t, ledgerHex)
	cfg := token.InitConfig{
		Name:            "Multichain Token",
		Symbol:          "MCT",
		Decimals:        9,
		InitialSupply:   uint256.NewInt(1_000_000),
		MinterList:      []types.Address{deployer},
		SwapFee:         uint256.NewInt(0),
		FeeReceiver:     mustAddr(t, feeReceiverHex),
		SupportedChains: []*uint256.Int{uint256.NewInt(1)},
		EnableMintBurn:  true,
		LedgerAddress:   ledger,
	}
	if err := tok.Init(token.NewCallContext(deployer, ledger), cfg); err != nil {
		t.Fatalf("init: %v", err)
	}
	brd := bridge.NewEngine(mgr, tok)
	red := redeem.NewEngine(mgr, tok, redeem.NewRegistry())
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	srv := NewServer(tok, brd, red, ledger, metrics, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func call(t *testing.T, ts *httptest.Server, method string, params interface{}) RPCResponse {
	t.Helper()
	envelope := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
	}
	if params != nil {
		envelope["params"] = []interface{}{params}
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(ts.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	var decoded RPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return decoded
}

func mustResult(t *testing.T, resp RPCResponse) interface{} {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("rpc error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	return resp.Result
}

func TestViewMethods(t *testing.T) {
	ts := newTestServer(t)

	if got := mustResult(t, call(t, ts, "token_name", nil)); got != "Multichain Token" {
		t.Fatalf("name = %v", got)
	}
	if got := mustResult(t, call(t, ts, "token_symbol", nil)); got != "MCT" {
		t.Fatalf("symbol = %v", got)
	}
	if got := mustResult(t, call(t, ts, "token_totalSupply", nil)); got != "1000000" {
		t.Fatalf("supply = %v", got)
	}
	balance := mustResult(t, call(t, ts, "token_balanceOf", map[string]string{"address": deployerHex}))
	if balance != "1000000" {
		t.Fatalf("balance = %v", balance)
	}
}

func TestTransferOverRPC(t *testing.T) {
	ts := newTestServer(t)

	resp := call(t, ts, "token_transfer", map[string]string{
		"caller":    deployerHex,
		"recipient": aliceHex,
		"amount":    "250",
	})
	if got := mustResult(t, resp); got != true {
		t.Fatalf("transfer result = %v", got)
	}
	balance := mustResult(t, call(t, ts, "token_balanceOf", map[string]string{"address": aliceHex}))
	if balance != "250" {
		t.Fatalf("alice balance = %v", balance)
	}
}

func TestBridgeOverRPC(t *testing.T) {
	ts := newTestServer(t)

	externalID := "ab" + strings.Repeat("0", 62)
	resp := call(t, ts, "bridge_requestBridgeBack", map[string]string{
		"caller":          deployerHex,
		"amount":          "400",
		"fee":             "0",
		"toChainId":       "1",
		"id":              externalID,
		"receiverAddress": "remote",
	})
	result, ok := mustResult(t, resp).(map[string]interface{})
	if !ok || result["index"] != "0" {
		t.Fatalf("request result = %v", resp.Result)
	}
	finalize := call(t, ts, "bridge_setFeeRequestBridgeBack", map[string]string{
		"caller":    deployerHex,
		"requestId": "0",
		"fee":       "0",
	})
	if got := mustResult(t, finalize); got != true {
		t.Fatalf("finalize result = %v", got)
	}
	supply := mustResult(t, call(t, ts, "token_totalSupply", nil))
	if supply != "999600" {
		t.Fatalf("supply after settlement = %v", supply)
	}
}

func TestErrorCodes(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name     string
		method   string
		params   interface{}
		wantCode int
	}{
		{"unknown method", "token_frobnicate", nil, codeMethodNotFound},
		{"missing params", "token_balanceOf", nil, codeInvalidParams},
		{"bad address", "token_balanceOf", map[string]string{"address": "nope"}, codeInvalidParams},
		{"unauthorized op", "token_changeSwapFee", map[string]string{"caller": aliceHex, "swapFee": "5"}, codeUnauthorized},
		{"self transfer", "token_transfer", map[string]string{"caller": deployerHex, "recipient": deployerHex, "amount": "1"}, codeValidation},
		{"insufficient balance", "token_transfer", map[string]string{"caller": aliceHex, "recipient": deployerHex, "amount": "1"}, codeArithmetic},
		{"unknown request", "bridge_setFeeRequestBridgeBack", map[string]string{"caller": deployerHex, "requestId": "9", "fee": "0"}, codeStateConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := call(t, ts, tc.method, tc.params)
			if resp.Error == nil {
				t.Fatalf("expected an error, got result %v", resp.Result)
			}
			if resp.Error.Code != tc.wantCode {
				t.Fatalf("code = %d, want %d (%s)", resp.Error.Code, tc.wantCode, resp.Error.Message)
			}
		})
	}
}

func TestRejectsNonPost(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestBearerAuth(t *testing.T) {
	t.Setenv("MCTOKEN_RPC_TOKEN", "sekrit")
	mgr := state.NewManager(storage.NewMemDB())
	tok := token.NewEngine(mgr)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	srv := NewServer(tok, nil, nil, mustAddr(t, ledgerHex), metrics, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	body := []byte(`{"jsonrpc":"2.0","id":1,"method":"token_totalSupply"}`)

	resp, err := http.Post(ts.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	var decoded RPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if decoded.Error == nil || decoded.Error.Code != codeUnauthorized {
		t.Fatalf("missing token must be rejected, got %+v", decoded)
	}

	req, err := http.NewRequest(http.MethodPost, ts.URL, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer sekrit")
	authed, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer authed.Body.Close()
	var ok RPCResponse
	if err := json.NewDecoder(authed.Body).Decode(&ok); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ok.Error != nil {
		t.Fatalf("valid token rejected: %+v", ok.Error)
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
