package rpc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// rpcServer replies per JSON-RPC method from a canned response table.
func rpcServer(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
		}
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &req))

		resp, ok := responses[req.Method]
		if !ok {
			t.Fatalf("unexpected RPC method %q", req.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(resp))
	}))
}

func newTestClient(url string) *Client {
	return NewClient(ClientConfig{
		BaseURL:      url,
		Timeout:      2 * time.Second,
		MaxRetries:   1,
		RetryBackoff: time.Millisecond,
		Logger:       testLogger(),
	})
}

func TestLatestBlockhash(t *testing.T) {
	srv := rpcServer(t, map[string]string{
		"getLatestBlockhash": `{"jsonrpc":"2.0","id":1,"result":{"value":{"blockhash":"9sHcv6xwn9YkB8nxTUGKDwPwNnmqVp5oLcxRK3gbGFTn","lastValidBlockHeight":350000123}}}`,
	})
	defer srv.Close()

	bh, err := newTestClient(srv.URL).LatestBlockhash(context.Background(), "confirmed")
	require.NoError(t, err)
	assert.Equal(t, "9sHcv6xwn9YkB8nxTUGKDwPwNnmqVp5oLcxRK3gbGFTn", bh.Hash)
	assert.Equal(t, uint64(350000123), bh.LastValidBlockHeight)
}

func TestBlockHeight(t *testing.T) {
	srv := rpcServer(t, map[string]string{
		"getBlockHeight": `{"jsonrpc":"2.0","id":1,"result":349999000}`,
	})
	defer srv.Close()

	h, err := newTestClient(srv.URL).BlockHeight(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(349999000), h)
}

func TestAccountExists(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		srv := rpcServer(t, map[string]string{
			"getAccountInfo": `{"jsonrpc":"2.0","id":1,"result":{"value":{"data":["","base64"],"lamports":2039280}}}`,
		})
		defer srv.Close()

		exists, err := newTestClient(srv.URL).AccountExists(context.Background(), "somekey")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("absent", func(t *testing.T) {
		srv := rpcServer(t, map[string]string{
			"getAccountInfo": `{"jsonrpc":"2.0","id":1,"result":{"value":null}}`,
		})
		defer srv.Close()

		exists, err := newTestClient(srv.URL).AccountExists(context.Background(), "somekey")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestAccountData_Absent(t *testing.T) {
	srv := rpcServer(t, map[string]string{
		"getAccountInfo": `{"jsonrpc":"2.0","id":1,"result":{"value":null}}`,
	})
	defer srv.Close()

	data, err := newTestClient(srv.URL).AccountData(context.Background(), "somekey")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestAccountData_Decodes(t *testing.T) {
	srv := rpcServer(t, map[string]string{
		"getAccountInfo": `{"jsonrpc":"2.0","id":1,"result":{"value":{"data":["AQIDBA==","base64"]}}}`,
	})
	defer srv.Close()

	data, err := newTestClient(srv.URL).AccountData(context.Background(), "somekey")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, data)
}

func TestSimulate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := rpcServer(t, map[string]string{
			"simulateTransaction": `{"jsonrpc":"2.0","id":1,"result":{"value":{"err":null,"logs":["Program log: ok"],"unitsConsumed":12345}}}`,
		})
		defer srv.Close()

		res, err := newTestClient(srv.URL).Simulate(context.Background(), "dHg=")
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, uint64(12345), res.UnitsConsumed)
		assert.Equal(t, []string{"Program log: ok"}, res.Logs)
	})

	t.Run("on-chain failure is a result, not an error", func(t *testing.T) {
		srv := rpcServer(t, map[string]string{
			"simulateTransaction": `{"jsonrpc":"2.0","id":1,"result":{"value":{"err":{"InstructionError":[2,{"Custom":6001}]},"logs":["Program log: Error: slippage"]}}}`,
		})
		defer srv.Close()

		res, err := newTestClient(srv.URL).Simulate(context.Background(), "dHg=")
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.NotEmpty(t, res.Err)
		assert.Equal(t, []string{"Program log: Error: slippage"}, res.Logs)
	})
}

func TestSendRawTransaction(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := rpcServer(t, map[string]string{
			"sendTransaction": `{"jsonrpc":"2.0","id":1,"result":"5VERYrealSignature"}`,
		})
		defer srv.Close()

		sig, err := newTestClient(srv.URL).SendRawTransaction(context.Background(), "dHg=", 2)
		require.NoError(t, err)
		assert.Equal(t, "5VERYrealSignature", sig)
	})

	t.Run("node error", func(t *testing.T) {
		srv := rpcServer(t, map[string]string{
			"sendTransaction": `{"jsonrpc":"2.0","id":1,"error":{"code":-32002,"message":"Transaction simulation failed"}}`,
		})
		defer srv.Close()

		_, err := newTestClient(srv.URL).SendRawTransaction(context.Background(), "dHg=", 2)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "-32002")
	})
}

func TestSignatureStatus(t *testing.T) {
	t.Run("unobserved", func(t *testing.T) {
		srv := rpcServer(t, map[string]string{
			"getSignatureStatuses": `{"jsonrpc":"2.0","id":1,"result":{"value":[null]}}`,
		})
		defer srv.Close()

		st, err := newTestClient(srv.URL).SignatureStatus(context.Background(), "5ig")
		require.NoError(t, err)
		assert.Nil(t, st)
	})

	t.Run("confirmed", func(t *testing.T) {
		srv := rpcServer(t, map[string]string{
			"getSignatureStatuses": `{"jsonrpc":"2.0","id":1,"result":{"value":[{"slot":42,"confirmations":5,"err":null,"confirmationStatus":"confirmed"}]}}`,
		})
		defer srv.Close()

		st, err := newTestClient(srv.URL).SignatureStatus(context.Background(), "5ig")
		require.NoError(t, err)
		require.NotNil(t, st)
		assert.Equal(t, uint64(42), st.Slot)
		assert.True(t, st.MeetsCommitment("confirmed"))
		assert.False(t, st.MeetsCommitment("finalized"))
	})
}

func TestCall_RetriesThenFails(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	var out map[string]any
	err := newTestClient(srv.URL).Call(context.Background(), "getHealth", nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, 2, calls) // initial attempt + 1 retry
}

func TestMeetsCommitment(t *testing.T) {
	assert.False(t, (*SignatureStatus)(nil).MeetsCommitment("confirmed"))

	processed := &SignatureStatus{ConfirmationStatus: "processed"}
	assert.True(t, processed.MeetsCommitment("processed"))
	assert.False(t, processed.MeetsCommitment("confirmed"))

	finalized := &SignatureStatus{ConfirmationStatus: "finalized"}
	assert.True(t, finalized.MeetsCommitment("processed"))
	assert.True(t, finalized.MeetsCommitment("confirmed"))
	assert.True(t, finalized.MeetsCommitment("finalized"))
}
