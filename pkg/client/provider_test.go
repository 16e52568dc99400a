package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTxRequestQuantities(t *testing.T) {
	tx, err := parseTxRequest("0x1231DEB6f5749EF6cE6943a275A1D3E7486F4EaE", "0x01", "0x0", "0x30d40", 8453)
	require.NoError(t, err)
	assert.Equal(t, uint64(200000), tx.GasLimit)
	assert.Zero(t, tx.Value.Sign())

	tx, err = parseTxRequest("0x1231DEB6f5749EF6cE6943a275A1D3E7486F4EaE", "", "1000", "21000", 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(21000), tx.GasLimit)
	assert.Equal(t, int64(1000), tx.Value.Int64())
}

func TestParseTxRequestRejectsBadInput(t *testing.T) {
	_, err := parseTxRequest("not-an-address", "", "", "", 1)
	assert.Error(t, err)

	_, err = parseTxRequest("0x1231DEB6f5749EF6cE6943a275A1D3E7486F4EaE", "", "xyz", "", 1)
	assert.Error(t, err)

	_, err = parseTxRequest("0x1231DEB6f5749EF6cE6943a275A1D3E7486F4EaE", "", "", "nope", 1)
	assert.Error(t, err)

	// a gas limit wider than uint64 must be rejected, not truncated
	_, err = parseTxRequest("0x1231DEB6f5749EF6cE6943a275A1D3E7486F4EaE", "", "", "0xffffffffffffffffff", 1)
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNotFound) // any response proves reachability
	}))
	defer server.Close()

	lifi := NewLiFiClient(server.URL, 300, nil)
	require.NoError(t, lifi.Ping(context.Background()))
	assert.Equal(t, "/chains", gotPath)

	symbiosis := NewSymbiosisClient(server.URL, 300, nil)
	require.NoError(t, symbiosis.Ping(context.Background()))
	assert.Equal(t, "/v1/health", gotPath)

	server.Close()
	assert.Error(t, lifi.Ping(context.Background()), "transport failure must surface")
}
