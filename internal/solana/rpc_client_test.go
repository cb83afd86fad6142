package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// rpcHandler builds an httptest handler that answers each method from
// the results map. Unknown methods get an RPC error.
func rpcHandler(t *testing.T, results map[string]string, capture *[]json.RawMessage) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     uint64          `json:"id"`
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if capture != nil {
			*capture = append(*capture, req.Params)
		}

		result, ok := results[req.Method]
		if !ok {
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"error":{"code":-32601,"message":"method not found"}}`, req.ID)
			return
		}
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":%s}`, req.ID, result)
	}
}

func TestGetBalance(t *testing.T) {
	var params []json.RawMessage
	server := httptest.NewServer(rpcHandler(t, map[string]string{
		"getBalance": `{"context":{"slot":1},"value":1500000000}`,
	}, &params))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	balance, err := client.GetBalance(context.Background(), "somepubkey")
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if balance != 1500000000 {
		t.Errorf("balance = %d, want 1500000000", balance)
	}

	// Positional params: [pubkey, {commitment}]
	if !strings.Contains(string(params[0]), `"somepubkey"`) {
		t.Errorf("params missing pubkey: %s", params[0])
	}
	if !strings.Contains(string(params[0]), `"confirmed"`) {
		t.Errorf("params missing commitment: %s", params[0])
	}
}

func TestGetLatestBlockhash(t *testing.T) {
	server := httptest.NewServer(rpcHandler(t, map[string]string{
		"getLatestBlockhash": `{"value":{"blockhash":"J7rBdM6AecPDEZp8aPq5iPSNKVkU5Q76F3Rgf15CVHPt","lastValidBlockHeight":100}}`,
	}, nil))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	hash, err := client.GetLatestBlockhash(context.Background())
	if err != nil {
		t.Fatalf("GetLatestBlockhash failed: %v", err)
	}
	if hash != "J7rBdM6AecPDEZp8aPq5iPSNKVkU5Q76F3Rgf15CVHPt" {
		t.Errorf("unexpected blockhash %s", hash)
	}
}

func TestGetLatestBlockhash_EmptyValue(t *testing.T) {
	server := httptest.NewServer(rpcHandler(t, map[string]string{
		"getLatestBlockhash": `{"value":{"blockhash":""}}`,
	}, nil))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	if _, err := client.GetLatestBlockhash(context.Background()); err == nil {
		t.Error("expected error for empty blockhash")
	}
}

func TestSendTransaction_RPCErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32002,"message":"Transaction simulation failed"}}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithRetryDelay(time.Millisecond))

	_, err := client.SendTransaction(context.Background(), "dGVzdA==")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "simulation failed") {
		t.Errorf("unexpected error: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("RPC error retried %d times, want exactly 1 call", calls.Load())
	}
}

func TestCall_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"context":{"slot":1},"value":42}}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithRetryDelay(time.Millisecond))

	balance, err := client.GetBalance(context.Background(), "x")
	if err != nil {
		t.Fatalf("GetBalance failed after retries: %v", err)
	}
	if balance != 42 {
		t.Errorf("balance = %d, want 42", balance)
	}
	if calls.Load() != 3 {
		t.Errorf("server hit %d times, want 3", calls.Load())
	}
}

func TestConfirmTransaction(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// First poll: still processing, then confirmed.
		if calls.Add(1) == 1 {
			w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"value":[{"slot":1,"confirmationStatus":"processed","err":null}]}}`))
			return
		}
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"value":[{"slot":1,"confirmationStatus":"confirmed","err":null}]}}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithConfirmPollInterval(time.Millisecond))

	if err := client.ConfirmTransaction(context.Background(), "sig"); err != nil {
		t.Fatalf("ConfirmTransaction failed: %v", err)
	}
	if calls.Load() < 2 {
		t.Errorf("expected at least 2 polls, got %d", calls.Load())
	}
}

func TestConfirmTransaction_OnChainError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"value":[{"slot":1,"confirmationStatus":"confirmed","err":{"InstructionError":[0,"Custom"]}}]}}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithConfirmPollInterval(time.Millisecond))

	err := client.ConfirmTransaction(context.Background(), "sig")
	if err == nil {
		t.Fatal("expected on-chain failure")
	}
	if !strings.Contains(err.Error(), "failed on chain") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConfirmTransaction_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Never confirms
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"value":[null]}}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithConfirmPollInterval(time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := client.ConfirmTransaction(ctx, "sig"); err == nil {
		t.Error("expected context error")
	}
}

func TestGetTokenAccounts_ObjectParams(t *testing.T) {
	var params []json.RawMessage
	server := httptest.NewServer(rpcHandler(t, map[string]string{
		"getTokenAccounts": `{"total":2,"token_accounts":[
			{"address":"acc1","owner":"owner1","amount":1000000},
			{"address":"acc2","owner":"owner2","amount":"2000000"}
		]}`,
	}, &params))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	accounts, err := client.GetTokenAccounts(context.Background(), "mint123", 1, 1000)
	if err != nil {
		t.Fatalf("GetTokenAccounts failed: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("got %d accounts, want 2", len(accounts))
	}
	if accounts[0].Owner != "owner1" || accounts[0].Amount != "1000000" {
		t.Errorf("account 0 = %+v", accounts[0])
	}
	// Amounts keep full precision as strings regardless of JSON form
	if accounts[1].Amount != "2000000" {
		t.Errorf("account 1 amount = %s, want 2000000", accounts[1].Amount)
	}

	// DAS methods take an object, not a positional array
	var obj map[string]interface{}
	if err := json.Unmarshal(params[0], &obj); err != nil {
		t.Fatalf("params are not an object: %s", params[0])
	}
	if obj["mint"] != "mint123" {
		t.Errorf("params mint = %v", obj["mint"])
	}
	if obj["page"] != float64(1) || obj["limit"] != float64(1000) {
		t.Errorf("params paging = %v/%v", obj["page"], obj["limit"])
	}
}

func TestGetVersion(t *testing.T) {
	server := httptest.NewServer(rpcHandler(t, map[string]string{
		"getVersion": `{"solana-core":"1.18.22"}`,
	}, nil))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	version, err := client.GetVersion(context.Background())
	if err != nil {
		t.Fatalf("GetVersion failed: %v", err)
	}
	if version != "1.18.22" {
		t.Errorf("version = %s, want 1.18.22", version)
	}
}
