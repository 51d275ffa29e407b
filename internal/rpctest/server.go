// Package rpctest serves canned Solana JSON-RPC responses over httptest.
package rpctest

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Handler answers one JSON-RPC call. A non-nil *Error is sent as the error object.
type Handler func(params []json.RawMessage) (interface{}, *Error)

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type request struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]Handler
	calls    map[string][][]json.RawMessage
}

// New starts a server that is closed with the test.
func New(t testing.TB) *Server {
	s := &Server{
		handlers: make(map[string]Handler),
		calls:    make(map[string][][]json.RawMessage),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *Server) Handle(method string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = h
}

// Result registers a handler that always returns v.
func (s *Server) Result(method string, v interface{}) {
	s.Handle(method, func([]json.RawMessage) (interface{}, *Error) { return v, nil })
}

func (s *Server) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls[method])
}

// Params returns the params of every call to method, oldest first.
func (s *Server) Params(method string) [][]json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]json.RawMessage(nil), s.calls[method]...)
}

func (s *Server) Client() *rpc.Client {
	return rpc.New(s.URL)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	h, ok := s.handlers[req.Method]
	s.calls[req.Method] = append(s.calls[req.Method], req.Params)
	s.mu.Unlock()

	resp := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      req.ID,
	}
	if !ok {
		resp["error"] = &Error{Code: -32601, Message: "method not found: " + req.Method}
	} else if result, rpcErr := h(req.Params); rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Context wraps a value the way getBalance, getAccountInfo and friends do.
func Context(value interface{}) map[string]interface{} {
	return map[string]interface{}{
		"context": map[string]interface{}{"slot": 1},
		"value":   value,
	}
}

// Account is a getAccountInfo value holding data, owned by owner.
func Account(owner solana.PublicKey, data []byte) map[string]interface{} {
	return map[string]interface{}{
		"data":       []string{base64.StdEncoding.EncodeToString(data), "base64"},
		"executable": false,
		"lamports":   1461600,
		"owner":      owner.String(),
		"rentEpoch":  0,
		"space":      len(data),
	}
}

// Blockhash is a getLatestBlockhash result.
func Blockhash() map[string]interface{} {
	return Context(map[string]interface{}{
		"blockhash":            solana.Hash{1, 2, 3}.String(),
		"lastValidBlockHeight": 100,
	})
}

// Transaction is a getTransaction result with the given meta error.
func Transaction(metaErr interface{}) map[string]interface{} {
	return map[string]interface{}{
		"slot":      42,
		"blockTime": 1700000000,
		"meta": map[string]interface{}{
			"err":          metaErr,
			"fee":          5000,
			"preBalances":  []uint64{},
			"postBalances": []uint64{},
		},
		"version": 0,
	}
}
