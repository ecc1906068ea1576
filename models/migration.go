package models

import "time"

// MigrationStatus is the per-record outcome kept in the status map.
type MigrationStatus string

const (
	StatusPending  MigrationStatus = "pending"
	StatusMigrated MigrationStatus = "migrated"
	StatusFailed   MigrationStatus = "failed"
	StatusSkipped  MigrationStatus = "skipped"
	StatusDryRun   MigrationStatus = "dry-run"

	// LogStatusSuccess is what the log records for a migrated record.
	LogStatusSuccess MigrationStatus = "success"
)

// RunMode names the kind of run that touched a record.
type RunMode string

const (
	ModeSingle       RunMode = "single"
	ModeSingleDryRun RunMode = "single-dry-run"
	ModeChunk        RunMode = "chunk"
	ModeChunkDryRun  RunMode = "chunk-dry-run"
	ModeBulk         RunMode = "bulk"
	ModeBulkDryRun   RunMode = "bulk-dry-run"
)

// WithDryRun returns the dry-run variant of a base mode.
func (m RunMode) WithDryRun(dryRun bool) RunMode {
	if !dryRun {
		return m
	}
	switch m {
	case ModeSingle:
		return ModeSingleDryRun
	case ModeChunk:
		return ModeChunkDryRun
	case ModeBulk:
		return ModeBulkDryRun
	}
	return m
}

// RunState is the singleton describing the latest run. It is overwritten on
// every run start and finish and is not a history.
type RunState struct {
	RunID               string    `bson:"run_id" json:"run_id"`
	LastMode            RunMode   `bson:"last_mode" json:"last_mode"`
	LastRunAt           time.Time `bson:"last_run_at" json:"last_run_at"`
	LastProcessedPostID int64     `bson:"last_processed_post_id" json:"last_processed_post_id"`
}

// StatusEntry is overwritten on every attempt for a record and never deleted.
type StatusEntry struct {
	Status    MigrationStatus `bson:"status" json:"status"`
	Message   string          `bson:"message" json:"message"`
	UpdatedAt time.Time       `bson:"updated_at" json:"updated_at"`
	RunID     string          `bson:"run_id" json:"run_id"`
}

// LogEntry is one append-only migration log line.
type LogEntry struct {
	RunID     string          `bson:"run_id" json:"run_id"`
	PostID    int64           `bson:"post_id" json:"post_id"`
	Mode      RunMode         `bson:"mode" json:"mode"`
	Status    MigrationStatus `bson:"status" json:"status"`
	Message   string          `bson:"message" json:"message"`
	Fields    []string        `bson:"fields" json:"fields"`
	Timestamp time.Time       `bson:"timestamp" json:"timestamp"`
}
