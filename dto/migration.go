package dto

import (
	"time"

	"legacy-migrator/models"
)

// TimeLayout is how timestamps are rendered in dashboard payloads.
const TimeLayout = "2006-01-02 15:04:05"

// FormatTime renders t in TimeLayout, or "" for the zero time.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeLayout)
}

// DashboardStatsDTO aggregates over every candidate record, before filtering.
type DashboardStatsDTO struct {
	TotalOld            int    `json:"total_old"`
	Eligible            int    `json:"eligible"`
	Migrated            int    `json:"migrated"`
	Failed              int    `json:"failed"`
	Remaining           int    `json:"remaining"`
	LastRunAt           string `json:"last_run_at"`
	LastMode            string `json:"last_mode"`
	LastProcessedPostID int64  `json:"last_processed_post_id"`
	RunID               string `json:"run_id"`
}

// DashboardRowDTO is one candidate record as shown on the dashboard.
type DashboardRowDTO struct {
	PostID    int64  `json:"post_id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	UpdatedAt string `json:"updated_at"`
	Eligible  bool   `json:"eligible"`
}

type DashboardPaginationDTO struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalRows  int `json:"total_rows"`
	TotalPages int `json:"total_pages"`
}

// DashboardDTO is the dashboard payload. Logs are newest first.
type DashboardDTO struct {
	Stats      DashboardStatsDTO      `json:"stats"`
	Rows       []DashboardRowDTO      `json:"rows"`
	Pagination DashboardPaginationDTO `json:"pagination"`
	Logs       []models.LogEntry      `json:"logs"`
}

// RecordResultDTO is the terminal outcome of one record.
type RecordResultDTO struct {
	Status  string `json:"status" example:"migrated"`
	Message string `json:"message" example:"Migrated successfully (9 fields)."`
}

type RunSummaryDTO struct {
	Processed int              `json:"processed"`
	Migrated  int              `json:"migrated"`
	Failed    int              `json:"failed"`
	Skipped   int              `json:"skipped"`
	DryRun    int              `json:"dry_run"`
	Result    *RecordResultDTO `json:"result,omitempty"`
}

// Add counts one record outcome.
func (s *RunSummaryDTO) Add(r RecordResultDTO) {
	s.Processed++
	switch models.MigrationStatus(r.Status) {
	case models.StatusMigrated:
		s.Migrated++
	case models.StatusDryRun:
		s.DryRun++
	case models.StatusFailed:
		s.Failed++
	default:
		s.Skipped++
	}
}

type RunResultDTO struct {
	RunID   string        `json:"run_id"`
	Mode    string        `json:"mode"`
	Summary RunSummaryDTO `json:"summary"`
	Payload *DashboardDTO `json:"payload"`
}

// PreviewDTO lists the fields a migration would write, without writing them.
type PreviewDTO struct {
	PostID     int64                `json:"post_id"`
	Title      string               `json:"title"`
	IsLegacy   bool                 `json:"is_legacy"`
	FieldCount int                  `json:"field_count"`
	Fields     *models.FieldMapping `json:"fields" swaggertype:"object"`
	Message    string               `json:"message"`
}

// SavedFieldsDTO lists the enhanced fields currently stored on a record.
type SavedFieldsDTO struct {
	PostID     int64                `json:"post_id"`
	Title      string               `json:"title"`
	FieldCount int                  `json:"field_count"`
	Fields     *models.FieldMapping `json:"fields" swaggertype:"object"`
	Message    string               `json:"message"`
}

type RunBulkRequestDTO struct {
	Force  bool `json:"force"`
	DryRun bool `json:"dry_run"`
}

type RunChunkRequestDTO struct {
	Force  bool `json:"force"`
	DryRun bool `json:"dry_run"`
	Limit  int  `json:"limit" example:"20"`
}

type RunSingleRequestDTO struct {
	PostID int64 `json:"post_id" example:"123"`
	Force  bool  `json:"force"`
	DryRun bool  `json:"dry_run"`
}
