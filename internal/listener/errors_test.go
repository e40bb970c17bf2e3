package listener

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
	"github.com/goran-ethernal/RWAIndexor/pkg/processor"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		kind      Kind
		retryable bool
	}{
		{
			name:      "transient node error",
			err:       chain.NewTransientError("getBlockInfo", errors.New("timeout")),
			kind:      KindNodeTransient,
			retryable: true,
		},
		{
			name: "fatal node error",
			err:  chain.NewFatalError("getBlockInfo", errors.New("bad response")),
			kind: KindNodeFatal,
		},
		{
			name: "stream closed by node",
			err:  chain.NewFatalError("finalizedBlocks", fmt.Errorf("%w: eof", chain.ErrStreamClosed)),
			kind: KindStreamClosed,
		},
		{
			name:      "stream dropped by transport",
			err:       chain.NewTransientError("finalizedBlocks", errors.New("websocket: close 1006 (abnormal closure)")),
			kind:      KindNodeTransient,
			retryable: true,
		},
		{
			name:      "stream timeout",
			err:       newError(KindStreamTimeout, "stream", errors.New("silent")),
			kind:      KindStreamTimeout,
			retryable: true,
		},
		{
			name:      "stream gap",
			err:       fmt.Errorf("block 5: %w", newError(KindStreamGap, "stream", errors.New("gap"))),
			kind:      KindStreamGap,
			retryable: true,
		},
		{
			name: "processor not found",
			err:  fmt.Errorf("block 5: %w", processor.NotFound(processor.TypeSecurityMintFund, "invest", "fund %d", 99)),
			kind: KindNotFound,
		},
		{
			name: "processor invalid event",
			err:  processor.InvalidEvent(processor.TypeSecurityCIS2, "decode", errors.New("short payload")),
			kind: KindInvalidEvent,
		},
		{
			name:      "processor pool error",
			err:       processor.StorageError(processor.TypeCompliance, "save", sql.ErrConnDone, true),
			kind:      KindDatabasePool,
			retryable: true,
		},
		{
			name: "processor statement error",
			err:  processor.StorageError(processor.TypeCompliance, "save", errors.New("constraint"), false),
			kind: KindDatabase,
		},
		{
			name:      "raw pool error",
			err:       fmt.Errorf("read checkpoint: %w", sql.ErrConnDone),
			kind:      KindDatabasePool,
			retryable: true,
		},
		{
			name: "unknown processor",
			err:  newError(KindUnknownProcessor, "dispatch", errors.New("missing")),
			kind: KindUnknownProcessor,
		},
		{
			name: "canceled",
			err:  fmt.Errorf("wait: %w", context.Canceled),
			kind: KindCanceled,
		},
		{
			name: "unclassified",
			err:  errors.New("boom"),
			kind: KindDatabase,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.kind, KindOf(tt.err))
			require.Equal(t, tt.retryable, IsRetryable(tt.err))
		})
	}

	require.False(t, IsRetryable(nil))
}

func TestKind_String(t *testing.T) {
	require.Equal(t, "stream_gap", KindStreamGap.String())
	require.Equal(t, "unknown_processor", KindUnknownProcessor.String())
	require.Equal(t, "unknown", Kind(0).String())

	err := newError(KindStreamTimeout, "stream", errors.New("silent"))
	require.Equal(t, "stream: stream_timeout: silent", err.Error())
}
