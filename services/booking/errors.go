package booking

import "fmt"

type SyncError struct {
	Stage string
	Err   error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("booking sync failed while %s: %v", e.Stage, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }
