package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
)

// classifyError wraps err into a chain.NodeError with the transient flag set
// for failures that may go away on their own.
func classifyError(op string, err error) error {
	if err == nil {
		return nil
	}

	var nodeErr *chain.NodeError
	if errors.As(err, &nodeErr) {
		return err
	}

	if isTransient(err) {
		return chain.NewTransientError(op, err)
	}

	return chain.NewFatalError(op, err)
}

// isTransient checks if an error is caused by the transport rather than the
// content of the response.
func isTransient(err error) bool {
	if err == nil {
		return false
	}

	// Cancellation comes from our side and is never worth a resubscription
	if errors.Is(err, context.Canceled) {
		return false
	}

	// Malformed responses do not improve by asking again
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	// Network errors
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Connection errors
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	// HTTP transport errors carry the status code
	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case 429, 502, 503, 504: //nolint:mnd
			return true
		}
	}

	errStr := strings.ToLower(err.Error())

	// Timeout errors
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") {
		return true
	}

	// Rate limiting
	if strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "rate limit") {
		return true
	}

	// Temporary server errors
	if strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504") ||
		strings.Contains(errStr, "bad gateway") ||
		strings.Contains(errStr, "service unavailable") ||
		strings.Contains(errStr, "gateway timeout") {
		return true
	}

	// Dropped websocket connections
	if strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "websocket: close") {
		return true
	}

	return false
}
