package inventory

import "fmt"

// DelegationError means credential federation into a foreign account
// failed: the trust relationship is missing or the session request was
// rejected. It is never retried internally; it fails the one work item.
type DelegationError struct {
	AccountID string
	Region    string
	Err       error
}

func (e *DelegationError) Error() string {
	return fmt.Sprintf("assume role for account %s in %s: %v", e.AccountID, e.Region, e.Err)
}

func (e *DelegationError) Unwrap() error { return e.Err }

// StorageWriteError means persistence failed after successful
// collection. Earlier per-type writes from the same item are not rolled
// back.
type StorageWriteError struct {
	Key string
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Key, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }

// PublishError means the dispatcher failed to enqueue one work item.
// The scan continues with the remaining items.
type PublishError struct {
	AccountID string
	Region    string
	Err       error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish work item for account %s in %s: %v", e.AccountID, e.Region, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// RegistryScanError is fatal to the entire dispatch run.
type RegistryScanError struct {
	Table string
	Err   error
}

func (e *RegistryScanError) Error() string {
	return fmt.Sprintf("scan registry table %s: %v", e.Table, e.Err)
}

func (e *RegistryScanError) Unwrap() error { return e.Err }
