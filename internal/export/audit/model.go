// Package audit persists a signed export as an append-only trail,
// generalizing the teacher's order_service AuditEntry/gorm pattern to
// one export-specific table instead of a generic order-change log.
package audit

import "time"

// Entry is one append-only row recording a signed export.
type Entry struct {
	ID           uint      `gorm:"primaryKey"`
	ExportID     string    `gorm:"uniqueIndex;size:36"`
	ArtifactHash string    `gorm:"index;size:64"`
	Signature    string    `gorm:"size:64"`
	CtxID        string    `gorm:"index;size:64"`
	PilotID      string    `gorm:"index;size:64"`
	IssuedAt     time.Time `gorm:"index"`
}

func (Entry) TableName() string { return "export_audit_entries" }
