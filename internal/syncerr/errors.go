package syncerr

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the sync pipeline. Callers classify with errors.Is.
var (
	// ErrNotFound indicates a required entity (season, race, rider) is absent.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamUnavailable indicates a network failure, timeout, or non-2xx
	// response from the external results API.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrInvalidState indicates an operation was requested against an entity
	// that cannot support it, e.g. syncing results for a race with no
	// external event linkage.
	ErrInvalidState = errors.New("invalid state")

	// ErrPartialFailure indicates a batch operation completed but some
	// sub-items failed.
	ErrPartialFailure = errors.New("partial failure")
)

// ItemFailure records one failed sub-item inside a batch operation.
type ItemFailure struct {
	Item   string `json:"item"`
	Reason string `json:"reason"`
}

// PartialFailure carries per-item detail for a batch that completed with
// some sub-items failing. It unwraps to ErrPartialFailure.
type PartialFailure struct {
	Op    string        `json:"op"`
	Items []ItemFailure `json:"items"`
}

func (e *PartialFailure) Error() string {
	items := make([]string, 0, len(e.Items))
	for _, it := range e.Items {
		items = append(items, fmt.Sprintf("%s: %s", it.Item, it.Reason))
	}
	return fmt.Sprintf("%s: %d item(s) failed: %s", e.Op, len(e.Items), strings.Join(items, "; "))
}

func (e *PartialFailure) Unwrap() error {
	return ErrPartialFailure
}
