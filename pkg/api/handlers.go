package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/goran-ethernal/RWAIndexor/internal/contracts"
	"github.com/goran-ethernal/RWAIndexor/internal/logger"
	"github.com/goran-ethernal/RWAIndexor/pkg/chain"
	"github.com/goran-ethernal/RWAIndexor/pkg/processor"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// Handler handles HTTP requests for the API.
type Handler struct {
	status StatusSource
	log    *logger.Logger
}

// NewHandler creates a new API handler.
func NewHandler(status StatusSource, log *logger.Logger) *Handler {
	return &Handler{
		status: status,
		log:    log,
	}
}

// Health reports whether the listener is still running.
// @Summary Health check
// @Description Liveness of the indexer. Returns 503 once the listener stopped on a fatal error.
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Listener running"
// @Failure 503 {object} HealthResponse "Listener stopped"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	state, healthy := h.status.ListenerState()

	response := HealthResponse{
		Status:        "ok",
		Timestamp:     time.Now(),
		ListenerState: state,
	}

	code := http.StatusOK
	if !healthy {
		response.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, response)
}

// GetStatus summarizes the indexer.
// @Summary Indexer status
// @Description Listener state, checkpoint and tracked contract count
// @Tags Status
// @Produce json
// @Success 200 {object} StatusResponse "Indexer status"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /status [get]
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	state, healthy := h.status.ListenerState()

	cp, err := h.status.Checkpoint(r.Context())
	if err != nil {
		h.log.Errorf("Failed to read checkpoint: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to read checkpoint")
		return
	}

	_, total, err := h.status.ListContracts(r.Context(), contracts.ListFilter{Limit: 1})
	if err != nil {
		h.log.Errorf("Failed to count contracts: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to count contracts")
		return
	}

	response := StatusResponse{
		ListenerState:    state,
		Healthy:          healthy,
		TrackedContracts: total,
		Processors:       len(h.status.Processors()),
	}
	if cp != nil {
		response.Checkpoint = &CheckpointResponse{
			BlockHeight:   cp.Height,
			BlockHash:     cp.Hash.Hex(),
			BlockSlotTime: cp.SlotTime,
		}
	}

	respondJSON(w, http.StatusOK, response)
}

// GetCheckpoint returns the last committed block.
// @Summary Last checkpoint
// @Description The last block whose effects are fully applied
// @Tags Status
// @Produce json
// @Success 200 {object} CheckpointResponse "Checkpoint"
// @Failure 404 {object} ErrorResponse "Nothing processed yet"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /checkpoint [get]
func (h *Handler) GetCheckpoint(w http.ResponseWriter, r *http.Request) {
	cp, err := h.status.Checkpoint(r.Context())
	if err != nil {
		h.log.Errorf("Failed to read checkpoint: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to read checkpoint")
		return
	}
	if cp == nil {
		respondError(w, http.StatusNotFound, "no block processed yet")
		return
	}

	respondJSON(w, http.StatusOK, CheckpointResponse{
		BlockHeight:   cp.Height,
		BlockHash:     cp.Hash.Hex(),
		BlockSlotTime: cp.SlotTime,
	})
}

// ListContracts returns a page of tracked contracts.
// @Summary List tracked contracts
// @Description Contracts initialized through a configured processor, ordered by creation height
// @Tags Contracts
// @Produce json
// @Param limit query int false "Maximum number of contracts to return" default(100)
// @Param offset query int false "Number of contracts to skip" default(0)
// @Param type query string false "Processor type, e.g. security_mint_fund"
// @Success 200 {object} ContractsResponse "Tracked contracts with pagination info"
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /contracts [get]
func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid query parameters: %v", err))
		return
	}

	list, total, err := h.status.ListContracts(r.Context(), filter)
	if err != nil {
		h.log.Errorf("Failed to list contracts: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list contracts")
		return
	}
	if list == nil {
		list = []*contracts.TrackedContract{}
	}

	respondJSON(w, http.StatusOK, ContractsResponse{
		Contracts: list,
		Pagination: PaginationResult{
			Total:   total,
			Limit:   filter.Limit,
			Offset:  filter.Offset,
			HasMore: filter.Offset+len(list) < total,
		},
	})
}

// GetContract returns one tracked contract.
// @Summary Get a tracked contract
// @Description Address as <index,subindex>, index,subindex or a bare index
// @Tags Contracts
// @Produce json
// @Param address path string true "Contract address"
// @Success 200 {object} contracts.TrackedContract "Tracked contract"
// @Failure 400 {object} ErrorResponse "Invalid address"
// @Failure 404 {object} ErrorResponse "Contract not tracked"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /contracts/{address} [get]
func (h *Handler) GetContract(w http.ResponseWriter, r *http.Request) {
	addr, err := chain.ParseContractAddress(r.PathValue("address"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.status.GetContract(r.Context(), addr)
	if errors.Is(err, contracts.ErrNotTracked) {
		respondError(w, http.StatusNotFound, fmt.Sprintf("contract %s is not tracked", addr))
		return
	}
	if err != nil {
		h.log.Errorf("Failed to load contract: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to load contract")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

// ListProcessors returns the configured processors.
// @Summary List processors
// @Description Processor families and the on-chain code they interpret
// @Tags Processors
// @Produce json
// @Success 200 {array} ProcessorInfo "Configured processors"
// @Router /processors [get]
func (h *Handler) ListProcessors(w http.ResponseWriter, r *http.Request) {
	list := h.status.Processors()

	infos := make([]ProcessorInfo, 0, len(list))
	for _, p := range list {
		id := p.Identity()
		infos = append(infos, ProcessorInfo{
			Type:         p.Type().String(),
			ModuleRef:    id.ModuleRef.Hex(),
			ContractName: id.ContractName,
		})
	}

	respondJSON(w, http.StatusOK, infos)
}

// parseListFilter parses pagination and type filters.
func parseListFilter(r *http.Request) (contracts.ListFilter, error) {
	f := contracts.ListFilter{Limit: defaultLimit}
	q := r.URL.Query()

	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > maxLimit {
			return f, fmt.Errorf("invalid limit: must be between 1 and %d", maxLimit)
		}
		f.Limit = limit
	}

	if offsetStr := q.Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return f, fmt.Errorf("invalid offset: must be non-negative")
		}
		f.Offset = offset
	}

	if typ := q.Get("type"); typ != "" {
		t, err := processor.ParseType(typ)
		if err != nil {
			return f, err
		}
		f.Type = t
	}

	return f, nil
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")

	// Encode first so a failure can still change the status
	encoded, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)

	// Headers are sent; a write error can only be dropped
	_, _ = w.Write(encoded)
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}
	respondJSON(w, status, response)
}
