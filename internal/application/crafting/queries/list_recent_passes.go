package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/cookbook-go/internal/application/common"
	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
)

const defaultPassLimit = 20

// ListRecentPassesQuery asks for the newest pass history records
type ListRecentPassesQuery struct {
	Limit int
}

// ListRecentPassesResponse holds records, newest first
type ListRecentPassesResponse struct {
	Passes []*crafting.PassRecord
}

// ListRecentPassesHandler handles the ListRecentPasses query
type ListRecentPassesHandler struct {
	passRepo crafting.PassRepository
}

// NewListRecentPassesHandler creates a new ListRecentPassesHandler
func NewListRecentPassesHandler(passRepo crafting.PassRepository) *ListRecentPassesHandler {
	return &ListRecentPassesHandler{passRepo: passRepo}
}

// Handle executes the ListRecentPasses query
func (h *ListRecentPassesHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListRecentPassesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListRecentPassesQuery")
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultPassLimit
	}

	passes, err := h.passRepo.FindRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load pass history: %w", err)
	}

	return &ListRecentPassesResponse{Passes: passes}, nil
}
