package api

import (
	"time"

	"github.com/goran-ethernal/RWAIndexor/internal/contracts"
)

// PaginationResult contains pagination metadata.
type PaginationResult struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	ListenerState string    `json:"listener_state"`
}

// CheckpointResponse is the last block whose effects are committed.
type CheckpointResponse struct {
	BlockHeight   uint64    `json:"block_height"`
	BlockHash     string    `json:"block_hash"`
	BlockSlotTime time.Time `json:"block_slot_time"`
}

// StatusResponse summarizes the indexer.
type StatusResponse struct {
	ListenerState    string              `json:"listener_state"`
	Healthy          bool                `json:"healthy"`
	Checkpoint       *CheckpointResponse `json:"checkpoint"`
	TrackedContracts int                 `json:"tracked_contracts"`
	Processors       int                 `json:"processors"`
}

// ContractsResponse is a page of tracked contracts.
type ContractsResponse struct {
	Contracts  []*contracts.TrackedContract `json:"contracts"`
	Pagination PaginationResult             `json:"pagination"`
}

// ProcessorInfo describes one configured processor.
type ProcessorInfo struct {
	Type         string `json:"type"`
	ModuleRef    string `json:"module_ref"`
	ContractName string `json:"contract_name"`
}
