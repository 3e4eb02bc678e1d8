package rpc

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mctoken/core/types"
	"mctoken/native/bridge"
	"mctoken/native/redeem"
	"mctoken/native/token"
	"mctoken/observability"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
	codeUnauthorized   = -32001
	codeValidation     = -32030
	codeArithmetic     = -32031
	codeStateConflict  = -32032
)

// Server exposes every named ledger operation over JSON-RPC. The server is
// the host boundary: it resolves the caller identity for each request and
// builds the two-frame call context the engines authorize against.
type Server struct {
	token     *token.Engine
	bridge    *bridge.Engine
	redeem    *redeem.Engine
	ledger    types.Address
	metrics   *observability.Metrics
	logger    *slog.Logger
	authToken string
}

// NewServer wires the engine set behind the RPC surface. The optional bearer
// token comes from MCTOKEN_RPC_TOKEN.
func NewServer(tok *token.Engine, brd *bridge.Engine, red *redeem.Engine, ledger types.Address, metrics *observability.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		token:     tok,
		bridge:    brd,
		redeem:    red,
		ledger:    ledger,
		metrics:   metrics,
		logger:    logger,
		authToken: strings.TrimSpace(os.Getenv("MCTOKEN_RPC_TOKEN")),
	}
}

// Handler returns the HTTP handler serving the RPC endpoint, health check and
// Prometheus metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handle)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Start runs the server on addr until the listener fails.
func (s *Server) Start(addr string) error {
	s.logger.Info("starting JSON-RPC server", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// RPCRequest is a single JSON-RPC call envelope.
type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      interface{}       `json:"id"`
}

// RPCError carries a JSON-RPC error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RPCResponse is a single JSON-RPC response envelope.
type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorized(r) {
		writeResponse(w, RPCResponse{JSONRPC: jsonRPCVersion, Error: &RPCError{Code: codeUnauthorized, Message: "unauthorized"}})
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeResponse(w, RPCResponse{JSONRPC: jsonRPCVersion, Error: &RPCError{Code: codeParseError, Message: "failed to read request"}})
		return
	}
	var req RPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeResponse(w, RPCResponse{JSONRPC: jsonRPCVersion, Error: &RPCError{Code: codeParseError, Message: "invalid JSON"}})
		return
	}
	if strings.TrimSpace(req.Method) == "" {
		writeResponse(w, RPCResponse{JSONRPC: jsonRPCVersion, ID: req.ID, Error: &RPCError{Code: codeInvalidRequest, Message: "method required"}})
		return
	}
	result, err := s.dispatch(&req)
	s.metrics.ObserveRequest(req.Method, err)
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: req.ID}
	if err != nil {
		s.logger.Warn("rpc call failed", "method", req.Method, "err", err)
		resp.Error = &RPCError{Code: errorCode(err), Message: err.Error()}
	} else {
		resp.Result = result
	}
	writeResponse(w, resp)
}

func (s *Server) authorized(r *http.Request) bool {
	if s.authToken == "" {
		return true
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return false
	}
	supplied := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(s.authToken)) == 1
}

func writeResponse(w http.ResponseWriter, resp RPCResponse) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

type methodNotFoundError struct{ method string }

func (e methodNotFoundError) Error() string { return fmt.Sprintf("method %s not found", e.method) }

type paramError struct{ err error }

func (e paramError) Error() string { return e.err.Error() }

func errorCode(err error) int {
	switch {
	case errors.As(err, &methodNotFoundError{}):
		return codeMethodNotFound
	case errors.As(err, &paramError{}):
		return codeInvalidParams
	case errors.Is(err, token.ErrInvalidContext),
		errors.Is(err, token.ErrInsufficientRights):
		return codeUnauthorized
	case errors.Is(err, token.ErrCannotTargetSelfUser),
		errors.Is(err, token.ErrMintBurnDisabled),
		errors.Is(err, token.ErrInvalidFee),
		errors.Is(err, token.ErrMintTooLow),
		errors.Is(err, token.ErrInvalidBurnTarget),
		errors.Is(err, bridge.ErrUnsupportedChainID),
		errors.Is(err, bridge.ErrRequestIDIllFormatted),
		errors.Is(err, bridge.ErrRequestAmountTooLow),
		errors.Is(err, redeem.ErrNotSupportedToken):
		return codeValidation
	case errors.Is(err, token.ErrInsufficientBalance),
		errors.Is(err, token.ErrInsufficientAllowance),
		errors.Is(err, token.ErrOverflow):
		return codeArithmetic
	case errors.Is(err, token.ErrAlreadyInitialized),
		errors.Is(err, token.ErrNotInitialized),
		errors.Is(err, token.ErrAlreadyMint),
		errors.Is(err, bridge.ErrRequestIDExist),
		errors.Is(err, bridge.ErrRequestNotFound),
		errors.Is(err, bridge.ErrRequestAlreadyFinalized):
		return codeStateConflict
	default:
		return codeServerError
	}
}
