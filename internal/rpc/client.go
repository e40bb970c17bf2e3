package rpc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goran-ethernal/RWAIndexor/internal/logger"
	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
)

const (
	namespace = "concordium"

	methodGetBlockInfo              = "concordium_getBlockInfo"
	methodGetBlockTransactionEvents = "concordium_getBlockTransactionEvents"
	subscriptionFinalizedBlocks     = "finalizedBlocks"

	// streamBuffer is the number of finalized blocks buffered between the
	// subscription and the listener.
	streamBuffer = 256
)

// Compile-time check to ensure Client implements chain.NodeClient interface.
var _ chain.NodeClient = (*Client)(nil)

// Client talks to a Concordium node through its JSON-RPC gateway.
// It implements the chain.NodeClient interface. Calls are never retried here.
type Client struct {
	rpc            *rpc.Client
	requestTimeout time.Duration
	log            *logger.Logger
}

// NewClient creates a new client connected to the given endpoint.
func NewClient(ctx context.Context, endpoint string, requestTimeout time.Duration, log *logger.Logger) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, classifyError("dial", err)
	}

	return NewClientWithRPC(rpcClient, requestTimeout, log), nil
}

// NewClientWithRPC wraps an already dialed rpc client.
func NewClientWithRPC(rpcClient *rpc.Client, requestTimeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		rpc:            rpcClient,
		requestTimeout: requestTimeout,
		log:            log,
	}
}

// Close closes the RPC client connection.
func (c *Client) Close() {
	c.rpc.Close()
}

// GetBlockInfo retrieves the metadata of the block at the given height.
func (c *Client) GetBlockInfo(ctx context.Context, height uint64) (chain.BlockInfo, error) {
	var info chain.BlockInfo
	if err := c.call(ctx, &info, methodGetBlockInfo, height); err != nil {
		return chain.BlockInfo{}, err
	}

	if info.Height != height {
		return chain.BlockInfo{}, chain.NewFatalError(methodGetBlockInfo,
			fmt.Errorf("requested height %d, node answered %d", height, info.Height))
	}

	return info, nil
}

// GetBlockTransactionEvents retrieves the summaries of all items in the given block.
func (c *Client) GetBlockTransactionEvents(ctx context.Context, hash chain.BlockHash) ([]chain.BlockItemSummary, error) {
	var items []chain.BlockItemSummary
	if err := c.call(ctx, &items, methodGetBlockTransactionEvents, hash); err != nil {
		return nil, err
	}

	return items, nil
}

// FinalizedBlocksFrom opens a subscription to finalized blocks starting at height.
func (c *Client) FinalizedBlocksFrom(ctx context.Context, height uint64) (chain.BlockStream, error) {
	RPCSubscriptionInc()

	blocks := make(chan chain.FinalizedBlock, streamBuffer)

	subCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	sub, err := c.rpc.Subscribe(subCtx, namespace, blocks, subscriptionFinalizedBlocks, height)
	if err != nil {
		RPCMethodError(subscriptionFinalizedBlocks, errorType(err))
		return nil, classifyError(subscriptionFinalizedBlocks, err)
	}

	c.log.Debugw("subscribed to finalized blocks", "from", height)

	return newBlockStream(sub, blocks), nil
}

// call executes a single JSON-RPC request with the per-request timeout and records metrics.
func (c *Client) call(ctx context.Context, result any, method string, args ...any) error {
	RPCMethodInc(method)
	start := time.Now()

	callCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	err := c.rpc.CallContext(callCtx, result, method, args...)
	RPCMethodDuration(method, time.Since(start))

	if err != nil {
		RPCMethodError(method, errorType(err))
		return classifyError(method, err)
	}

	return nil
}

func errorType(err error) string {
	var rpcErr rpc.Error
	switch {
	case errors.As(err, &rpcErr):
		return "rpc_error"
	case isTransient(err):
		return "transient"
	default:
		return "fatal"
	}
}

// blockStream adapts a go-ethereum client subscription to chain.BlockStream.
type blockStream struct {
	sub    *rpc.ClientSubscription
	blocks chan chain.FinalizedBlock
	errs   chan error
	once   sync.Once
}

func newBlockStream(sub *rpc.ClientSubscription, blocks chan chain.FinalizedBlock) *blockStream {
	s := &blockStream{
		sub:    sub,
		blocks: blocks,
		errs:   make(chan error, 1),
	}

	go s.watch()

	return s
}

// watch forwards the subscription failure, if any. The error channel of the
// subscription is closed without a value after Unsubscribe.
func (s *blockStream) watch() {
	defer close(s.errs)

	err, ok := <-s.sub.Err()
	if ok && err != nil {
		s.errs <- streamError(err)
	}
}

// streamError classifies the failure that ended a subscription. Transport drops
// are transient and worth a resubscription; anything else means the node closed
// the stream for good.
func streamError(err error) error {
	RPCMethodError(subscriptionFinalizedBlocks, errorType(err))

	if isTransient(err) {
		return chain.NewTransientError(subscriptionFinalizedBlocks, err)
	}

	return chain.NewFatalError(subscriptionFinalizedBlocks, fmt.Errorf("%w: %w", chain.ErrStreamClosed, err))
}

func (s *blockStream) Blocks() <-chan chain.FinalizedBlock {
	return s.blocks
}

func (s *blockStream) Err() <-chan error {
	return s.errs
}

func (s *blockStream) Close() {
	s.once.Do(s.sub.Unsubscribe)
}
