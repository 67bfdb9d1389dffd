package domain

import "time"

// SyncScope classifies what kind of operation a log entry records.
type SyncScope string

const (
	ScopeSync   SyncScope = "sync"
	ScopeExport SyncScope = "export"
	ScopeDigest SyncScope = "digest"
)

// SyncStatus is the lifecycle state of a log entry. The only permitted
// mutation is the pending -> success/failure transition of the same row.
type SyncStatus string

const (
	StatusPending SyncStatus = "pending"
	StatusSuccess SyncStatus = "success"
	StatusFailure SyncStatus = "failure"
)

// SyncLogEntry is an append-only audit record for sync, export and digest
// attempts. It backs the "last calculated" display and operational health
// checks, never business logic.
type SyncLogEntry struct {
	ID         string     `json:"id" db:"id"`
	ShopDomain string     `json:"shop_domain" db:"shop_domain"`
	Scope      SyncScope  `json:"scope" db:"scope"`
	Status     SyncStatus `json:"status" db:"status"`
	Message    string     `json:"message" db:"message"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
