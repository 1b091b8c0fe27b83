// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"taxiledger/internal/core/types"
)

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// ItemsResponse wraps an unpaginated list.
type ItemsResponse struct {
	Items any `json:"items"`
}

// CountResponse reports how many records an operation touched.
type CountResponse struct {
	Count int `json:"count"`
}

// AmountResponse carries a single computed amount.
type AmountResponse struct {
	Amount types.Money `json:"amount"`
}

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// DateRequest carries the effective date of an operation. The zero date means today.
type DateRequest struct {
	Date types.Date `json:"date"`
}

