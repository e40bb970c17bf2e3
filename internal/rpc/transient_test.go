package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockNetError implements net.Error for testing
type mockNetError struct {
	msg       string
	timeout   bool
	temporary bool
}

func (e *mockNetError) Error() string   { return e.msg }
func (e *mockNetError) Timeout() bool   { return e.timeout }
func (e *mockNetError) Temporary() bool { return e.temporary }

func TestIsTransient(t *testing.T) {
	var syntaxErr error = &json.SyntaxError{Offset: 3}

	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{name: "nil error", err: nil, transient: false},
		{name: "network timeout error", err: &mockNetError{msg: "network timeout", timeout: true}, transient: true},
		{name: "connection refused", err: syscall.ECONNREFUSED, transient: true},
		{name: "connection reset", err: syscall.ECONNRESET, transient: true},
		{name: "broken pipe", err: syscall.EPIPE, transient: true},
		{name: "eof", err: io.EOF, transient: true},
		{name: "unexpected eof", err: fmt.Errorf("read: %w", io.ErrUnexpectedEOF), transient: true},
		{name: "timeout string", err: errors.New("operation timeout"), transient: true},
		{name: "context deadline exceeded", err: context.DeadlineExceeded, transient: true},
		{name: "context canceled", err: context.Canceled, transient: false},
		{name: "rate limit 429", err: errors.New("HTTP 429"), transient: true},
		{name: "rate limit", err: errors.New("rate limit exceeded"), transient: true},
		{name: "503 service unavailable", err: errors.New("503 Service Unavailable"), transient: true},
		{name: "http error 502", err: rpc.HTTPError{StatusCode: 502, Status: "502 Bad Gateway"}, transient: true},
		{name: "http error 401", err: rpc.HTTPError{StatusCode: 401, Status: "401 Unauthorized"}, transient: false},
		{name: "websocket closed", err: errors.New("websocket: close 1006 (abnormal closure)"), transient: true},
		{name: "malformed json", err: fmt.Errorf("decode: %w", syntaxErr), transient: false},
		{name: "invalid parameter", err: errors.New("invalid parameter"), transient: false},
		{name: "not found", err: errors.New("404 Not Found"), transient: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isTransient(tt.err)
			assert.Equal(t, tt.transient, result, "isTransient(%v) = %v, want %v", tt.err, result, tt.transient)
		})
	}
}

func TestIsTransient_NetworkError(t *testing.T) {
	netErr := &net.OpError{
		Op:  "dial",
		Net: "tcp",
		Err: syscall.ECONNREFUSED,
	}

	assert.True(t, isTransient(fmt.Errorf("connection failed: %w", netErr)))
}

func TestClassifyError(t *testing.T) {
	require.NoError(t, classifyError("op", nil))

	err := classifyError("concordium_getBlockInfo", syscall.ECONNRESET)
	var nodeErr *chain.NodeError
	require.ErrorAs(t, err, &nodeErr)
	require.True(t, nodeErr.Transient)
	require.Equal(t, "concordium_getBlockInfo", nodeErr.Op)
	require.ErrorIs(t, err, syscall.ECONNRESET)

	err = classifyError("concordium_getBlockInfo", errors.New("unknown block"))
	require.ErrorAs(t, err, &nodeErr)
	require.False(t, nodeErr.Transient)

	// already classified errors pass through untouched
	original := chain.NewTransientError("inner", errors.New("boom"))
	require.Same(t, original, classifyError("outer", original))
}
