package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"legacy-migrator/models"
	"legacy-migrator/repositories"
)

// Option keys of the persisted migration state.
const (
	OptionState     = "migration_state"
	OptionStatusMap = "migration_status_map"
	OptionLogs      = "migration_logs"
)

// MaxLogEntries is how many log entries are retained; older ones are evicted first.
const MaxLogEntries = 1000

// StatusStore keeps the run-state singleton, the per-record status map and the
// bounded migration log on top of an option store. Updates are
// read-modify-write without transactions.
type StatusStore struct {
	store repositories.OptionStore
	now   func() time.Time
}

func NewStatusStore(store repositories.OptionStore) *StatusStore {
	return &StatusStore{store: store, now: time.Now}
}

// State returns the latest run state, or the zero state before the first run.
func (s *StatusStore) State(ctx context.Context) (models.RunState, error) {
	var st models.RunState
	if _, err := s.store.Get(ctx, OptionState, &st); err != nil {
		return models.RunState{}, fmt.Errorf("read %s: %w", OptionState, err)
	}
	return st, nil
}

func (s *StatusStore) PutState(ctx context.Context, st models.RunState) error {
	if err := s.store.Put(ctx, OptionState, st); err != nil {
		return fmt.Errorf("write %s: %w", OptionState, err)
	}
	return nil
}

// StatusMap returns the stored status of every record that was ever attempted.
func (s *StatusStore) StatusMap(ctx context.Context) (map[int64]models.StatusEntry, error) {
	raw, err := s.rawStatusMap(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]models.StatusEntry, len(raw))
	for k, v := range raw {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		out[id] = v
	}
	return out, nil
}

// stored with string keys so every option store backend can hold it
func (s *StatusStore) rawStatusMap(ctx context.Context) (map[string]models.StatusEntry, error) {
	raw := map[string]models.StatusEntry{}
	if _, err := s.store.Get(ctx, OptionStatusMap, &raw); err != nil {
		return nil, fmt.Errorf("read %s: %w", OptionStatusMap, err)
	}
	if raw == nil {
		raw = map[string]models.StatusEntry{}
	}
	return raw, nil
}

// SetStatus overwrites the status of one record and records it as the last
// processed record of the current run state.
func (s *StatusStore) SetStatus(ctx context.Context, postID int64, status models.MigrationStatus, message, runID string) error {
	raw, err := s.rawStatusMap(ctx)
	if err != nil {
		return err
	}
	raw[strconv.FormatInt(postID, 10)] = models.StatusEntry{
		Status:    status,
		Message:   message,
		UpdatedAt: s.now(),
		RunID:     runID,
	}
	if err := s.store.Put(ctx, OptionStatusMap, raw); err != nil {
		return fmt.Errorf("write %s: %w", OptionStatusMap, err)
	}

	st, err := s.State(ctx)
	if err != nil {
		return err
	}
	st.LastProcessedPostID = postID
	return s.PutState(ctx, st)
}

// AppendLog appends one entry, keeping only the newest MaxLogEntries.
func (s *StatusStore) AppendLog(ctx context.Context, entry models.LogEntry) error {
	logs, err := s.Logs(ctx)
	if err != nil {
		return err
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	if entry.Fields == nil {
		entry.Fields = []string{}
	}
	logs = append(logs, entry)
	if len(logs) > MaxLogEntries {
		logs = logs[len(logs)-MaxLogEntries:]
	}
	if err := s.store.Put(ctx, OptionLogs, logs); err != nil {
		return fmt.Errorf("write %s: %w", OptionLogs, err)
	}
	return nil
}

// Logs returns every retained entry, oldest first.
func (s *StatusStore) Logs(ctx context.Context) ([]models.LogEntry, error) {
	var logs []models.LogEntry
	if _, err := s.store.Get(ctx, OptionLogs, &logs); err != nil {
		return nil, fmt.Errorf("read %s: %w", OptionLogs, err)
	}
	return logs, nil
}

// RecentLogs returns up to limit entries, newest first. limit is clamped to [1, MaxLogEntries].
func (s *StatusStore) RecentLogs(ctx context.Context, limit int) ([]models.LogEntry, error) {
	logs, err := s.Logs(ctx)
	if err != nil {
		return nil, err
	}
	limit = max(1, min(MaxLogEntries, limit))
	if len(logs) > limit {
		logs = logs[len(logs)-limit:]
	}
	out := make([]models.LogEntry, 0, len(logs))
	for i := len(logs) - 1; i >= 0; i-- {
		out = append(out, logs[i])
	}
	return out, nil
}
