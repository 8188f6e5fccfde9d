package model

import "fmt"

// ProviderError is a failure reported by an external collaborator (the
// upstream video API or the media-hosting service). Code and Message
// are provider-supplied and preserved for diagnostics.
type ProviderError struct {
	Provider string
	Code     int
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error %d: %s", e.Provider, e.Code, e.Message)
}

// StorageError marks a mirror-store operation failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// BatchError records which item of a reconcile batch failed. The whole
// batch is treated as failed; no partial commit happens.
type BatchError struct {
	VideoID string
	Index   int
	Err     error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("reconcile item %d (%s): %v", e.Index, e.VideoID, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }
