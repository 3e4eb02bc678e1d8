package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"

	"mctoken/core/types"
	"mctoken/native/token"
)

func (s *Server) dispatch(req *RPCRequest) (interface{}, error) {
	switch req.Method {
	case "token_name":
		return s.token.Name()
	case "token_symbol":
		return s.token.Symbol()
	case "token_decimals":
		return s.token.Decimals()
	case "token_totalSupply":
		supply, err := s.token.TotalSupply()
		if err != nil {
			return nil, err
		}
		return supply.Dec(), nil
	case "token_balanceOf":
		return s.handleBalanceOf(req)
	case "token_allowance":
		return s.handleAllowance(req)
	case "token_approve":
		return s.handleApprove(req)
	case "token_increaseAllowance":
		return s.handleAdjustAllowance(req, true)
	case "token_decreaseAllowance":
		return s.handleAdjustAllowance(req, false)
	case "token_transfer":
		return s.handleTransfer(req)
	case "token_transferFrom":
		return s.handleTransferFrom(req)
	case "token_mint":
		return s.handleMint(req)
	case "token_burn":
		return s.handleBurn(req)
	case "token_changeSecurity":
		return s.handleChangeSecurity(req)
	case "token_changeFeeReceiver":
		return s.handleChangeFeeReceiver(req)
	case "token_changeSwapFee":
		return s.handleChangeSwapFee(req)
	case "bridge_requestBridgeBack":
		return s.handleRequestBridgeBack(req)
	case "bridge_setFeeRequestBridgeBack":
		return s.handleSetFeeRequestBridgeBack(req)
	case "bridge_setSupportedChains":
		return s.handleSetSupportedChains(req)
	case "redeem_setRedeemTokens":
		return s.handleSetRedeemTokens(req)
	case "redeem_redeemToMultichainToken":
		return s.handleRedeem(req)
	default:
		return nil, methodNotFoundError{method: req.Method}
	}
}

func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return paramError{err: fmt.Errorf("expected a single params object")}
	}
	if err := json.Unmarshal(req.Params[0], out); err != nil {
		return paramError{err: fmt.Errorf("invalid params: %w", err)}
	}
	return nil
}

func parseAddr(field, raw string) (types.Address, error) {
	addr, err := types.ParseAddress(raw)
	if err != nil {
		return types.Address{}, paramError{err: fmt.Errorf("%s: %w", field, err)}
	}
	return addr, nil
}

func parseAmountField(field, raw string) (*uint256.Int, error) {
	if raw == "" {
		return uint256.NewInt(0), nil
	}
	value, err := uint256.FromDecimal(raw)
	if err != nil {
		return nil, paramError{err: fmt.Errorf("%s: %w", field, err)}
	}
	return value, nil
}

func parseAddrList(field string, raw []string) ([]types.Address, error) {
	addrs := make([]types.Address, 0, len(raw))
	for _, entry := range raw {
		addr, err := parseAddr(field, entry)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

// callContext builds the two-frame chain for a directly dispatched call: the
// resolved caller followed by this ledger instance.
func (s *Server) callContext(caller types.Address) token.CallContext {
	return token.NewCallContext(caller, s.ledger)
}

func (s *Server) handleBalanceOf(req *RPCRequest) (interface{}, error) {
	var params struct {
		Address string `json:"address"`
	}
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	addr, err := parseAddr("address", params.Address)
	if err != nil {
		return nil, err
	}
	balance, err := s.token.BalanceOf(addr)
	if err != nil {
		return nil, err
	}
	return balance.Dec(), nil
}

func (s *Server) handleAllowance(req *RPCRequest) (interface{}, error) {
	var params struct {
		Owner   string `json:"owner"`
		Spender string `json:"spender"`
	}
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	owner, err := parseAddr("owner", params.Owner)
	if err != nil {
		return nil, err
	}
	spender, err := parseAddr("spender", params.Spender)
	if err != nil {
		return nil, err
	}
	allowance, err := s.token.Allowance(owner, spender)
	if err != nil {
		return nil, err
	}
	return allowance.Dec(), nil
}

func (s *Server) handleApprove(req *RPCRequest) (interface{}, error) {
	var params struct {
		Caller  string `json:"caller"`
		Spender string `json:"spender"`
		Amount  string `json:"amount"`
	}
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	caller, err := parseAddr("caller", params.Caller)
	if err != nil {
		return nil, err
	}
	spender, err := parseAddr("spender", params.Spender)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmountField("amount", params.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.token.Approve(s.callContext(caller), spender, amount); err != nil {
		return nil, err
	}
	return true, nil
}

func (s *Server) handleAdjustAllowance(req *RPCRequest, increase bool) (interface{}, error) {
	var params struct {
		Caller  string `json:"caller"`
		Spender string `json:"spender"`
		Amount  string `json:"amount"`
	}
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	caller, err := parseAddr("caller", params.Caller)
	if err != nil {
		return nil, err
	}
	spender, err := parseAddr("spender", params.Spender)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmountField("amount", params.Amount)
	if err != nil {
		return nil, err
	}
	ctx := s.callContext(caller)
	if increase {
		err = s.token.IncreaseAllowance(ctx, spender, amount)
	} else {
		err = s.token.DecreaseAllowance(ctx, spender, amount)
	}
	if err != nil {
		return nil, err
	}
	return true, nil
}

func (s *Server) handleTransfer(req *RPCRequest) (interface{}, error) {
	var params struct {
		Caller    string `json:"caller"`
		Recipient string `json:"recipient"`
		Amount    string `json:"amount"`
	}
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	caller, err := parseAddr("caller", params.Caller)
	if err != nil {
		return nil, err
	}
	recipient, err := parseAddr("recipient", params.Recipient)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmountField("amount", params.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.token.Transfer(s.callContext(caller), recipient, amount); err != nil {
		return nil, err
	}
	return true, nil
}

func (s *Server) handleTransferFrom(req *RPCRequest) (interface{}, error) {
	var params struct {
		Caller    string `json:"caller"`
		Owner     string `json:"owner"`
		Recipient string `json:"recipient"`
		Amount    string `json:"amount"`
	}
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	caller, err := parseAddr("caller", params.Caller)
	if err != nil {
		return nil, err
	}
	owner, err := parseAddr("owner", params.Owner)
	if err != nil {
		return nil, err
	}
	recipient, err := parseAddr("recipient", params.Recipient)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmountField("amount", params.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.token.TransferFrom(s.callContext(caller), owner, recipient, amount); err != nil {
		return nil, err
	}
	return true, nil
}

func (s *Server) handleMint(req *RPCRequest) (interface{}, error) {
	var params struct {
		Caller    string `json:"caller"`
		Recipient string `json:"recipient"`
		Amount    string `json:"amount"`
		SwapFee   string `json:"swapFee"`
		MintID    string `json:"mintId"`
	}
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	caller, err := parseAddr("caller", params.Caller)
	if err != nil {
		return nil, err
	}
	recipient, err := parseAddr("recipient", params.Recipient)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmountField("amount", params.Amount)
	if err != nil {
		return nil, err
	}
	swapFee, err := parseAmountField("swapFee", params.SwapFee)
	if err != nil {
		return nil, err
	}
	if err := s.token.Mint(s.callContext(caller), recipient, amount, swapFee, params.MintID); err != nil {
		return nil, err
	}
	return true, nil
}

func (s *Server) handleBurn(req *RPCRequest) (interface{}, error) {
	var params struct {
		Caller string `json:"caller"`
		Owner  string `json:"owner"`
		Amount string `json:"amount"`
	}
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	caller, err := parseAddr("caller", params.Caller)
	if err != nil {
		return nil, err
	}
	owner, err := parseAddr("owner", params.Owner)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmountField("amount", params.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.token.Burn(s.callContext(caller), owner, amount); err != nil {
		return nil, err
	}
	return true, nil
}

func (s *Server) handleChangeSecurity(req *RPCRequest) (interface{}, error) {
	var params struct {
		Caller     string   `json:"caller"`
		AdminList  []string `json:"adminList"`
		MinterList []string `json:"minterList"`
		NoneList   []string `json:"noneList"`
	}
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	caller, err := parseAddr("caller", params.Caller)
	if err != nil {
		return nil, err
	}
	admins, err := parseAddrList("adminList", params.AdminList)
	if err != nil {
		return nil, err
	}
	minters, err := parseAddrList("minterList", params.MinterList)
	if err != nil {
		return nil, err
	}
	nones, err := parseAddrList("noneList", params.NoneList)
	if err != nil {
		return nil, err
	}
	if err := s.token.ChangeSecurity(s.callContext(caller), admins, minters, nones); err != nil {
		return nil, err
	}
	return true, nil
}

func (s *Server) handleChangeFeeReceiver(req *RPCRequest) (interface{}, error) {
	var params struct {
		Caller      string `json:"caller"`
		FeeReceiver string `json:"feeReceiver"`
	}
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	caller, err := parseAddr("caller", params.Caller)
	if err != nil {
		return nil, err
	}
	receiver, err := parseAddr("feeReceiver", params.FeeReceiver)
	if err != nil {
		return nil, err
	}
	if err := s.token.ChangeFeeReceiver(s.callContext(caller), receiver); err != nil {
		return nil, err
	}
	return true, nil
}

func (s *Server) handleChangeSwapFee(req *RPCRequest) (interface{}, error) {
	var params struct {
		Caller  string `json:"caller"`
		SwapFee string `json:"swapFee"`
	}
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	caller, err := parseAddr("caller", params.Caller)
	if err != nil {
		return nil, err
	}
	fee, err := parseAmountField("swapFee", params.SwapFee)
	if err != nil {
		return nil, err
	}
	if err := s.token.ChangeSwapFee(s.callContext(caller), fee); err != nil {
		return nil, err
	}
	return true, nil
}

func (s *Server) handleRequestBridgeBack(req *RPCRequest) (interface{}, error) {
	var params struct {
		Caller          string `json:"caller"`
		Amount          string `json:"amount"`
		Fee             string `json:"fee"`
		ToChainID       string `json:"toChainId"`
		ID              string `json:"id"`
		ReceiverAddress string `json:"receiverAddress"`
	}
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	caller, err := parseAddr("caller", params.Caller)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmountField("amount", params.Amount)
	if err != nil {
		return nil, err
	}
	fee, err := parseAmountField("fee", params.Fee)
	if err != nil {
		return nil, err
	}
	toChainID, err := parseAmountField("toChainId", params.ToChainID)
	if err != nil {
		return nil, err
	}
	index, err := s.bridge.RequestBridgeBack(s.callContext(caller), amount, fee, toChainID, params.ID, params.ReceiverAddress)
	if err != nil {
		return nil, err
	}
	return map[string]string{"index": index.Dec()}, nil
}

func (s *Server) handleSetFeeRequestBridgeBack(req *RPCRequest) (interface{}, error) {
	var params struct {
		Caller    string `json:"caller"`
		RequestID string `json:"requestId"`
		Fee       string `json:"fee"`
	}
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	caller, err := parseAddr("caller", params.Caller)
	if err != nil {
		return nil, err
	}
	index, err := parseAmountField("requestId", params.RequestID)
	if err != nil {
		return nil, err
	}
	fee, err := parseAmountField("fee", params.Fee)
	if err != nil {
		return nil, err
	}
	if err := s.bridge.SetFeeRequestBridgeBack(s.callContext(caller), index, fee); err != nil {
		return nil, err
	}
	return true, nil
}

func (s *Server) handleSetSupportedChains(req *RPCRequest) (interface{}, error) {
	var params struct {
		Caller      string   `json:"caller"`
		Chains      []string `json:"chains"`
		IsSupported bool     `json:"isSupported"`
	}
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	caller, err := parseAddr("caller", params.Caller)
	if err != nil {
		return nil, err
	}
	chains := make([]*uint256.Int, 0, len(params.Chains))
	for _, raw := range params.Chains {
		chain, err := parseAmountField("chains", raw)
		if err != nil {
			return nil, err
		}
		chains = append(chains, chain)
	}
	if err := s.bridge.SetSupportedChains(s.callContext(caller), chains, params.IsSupported); err != nil {
		return nil, err
	}
	return true, nil
}

func (s *Server) handleSetRedeemTokens(req *RPCRequest) (interface{}, error) {
	var params struct {
		Caller      string   `json:"caller"`
		Tokens      []string `json:"tokens"`
		IsSupported bool     `json:"isSupported"`
	}
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	caller, err := parseAddr("caller", params.Caller)
	if err != nil {
		return nil, err
	}
	tokens, err := parseAddrList("tokens", params.Tokens)
	if err != nil {
		return nil, err
	}
	if err := s.redeem.SetRedeemTokens(s.callContext(caller), tokens, params.IsSupported); err != nil {
		return nil, err
	}
	return true, nil
}

func (s *Server) handleRedeem(req *RPCRequest) (interface{}, error) {
	var params struct {
		Caller string `json:"caller"`
		Token  string `json:"token"`
		Amount string `json:"amount"`
	}
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	caller, err := parseAddr("caller", params.Caller)
	if err != nil {
		return nil, err
	}
	tokenAddr, err := parseAddr("token", params.Token)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmountField("amount", params.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.redeem.RedeemToMultichainToken(s.callContext(caller), tokenAddr, amount); err != nil {
		return nil, err
	}
	return true, nil
}
