package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrBackpressure rejects a mutation while the refresh queue is saturated.
	ErrBackpressure = errors.New("backpressure")
	// ErrRefreshFetch reports that a refresh ran on substituted empty data.
	ErrRefreshFetch = errors.New("refresh fetch failed")
)
