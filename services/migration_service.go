package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"legacy-migrator/assets"
	"legacy-migrator/config"
	"legacy-migrator/dto"
	"legacy-migrator/eventbus"
	"legacy-migrator/events"
	"legacy-migrator/models"
	"legacy-migrator/parser"
	"legacy-migrator/repositories"
)

// Record outcome messages.
const (
	MsgNotFound        = "Post not found or not video."
	MsgLoadFailed      = "Failed to load post."
	MsgNotLegacy       = "Legacy block content not found."
	MsgAlreadyMigrated = "Enhanced meta already present."
	MsgNoFields        = "No mapped fields extracted."
	MsgSaveFailed      = "Failed to save enhanced fields."
	MsgDryRun          = "Dry run successful (%d fields parsed, not saved)."
	MsgMigrated        = "Migrated successfully (%d fields)."
	MsgMetaExists      = "Enhanced meta already exists."

	MsgPreviewReady = "Preview generated successfully."
	MsgFieldsLoaded = "Saved enhanced fields loaded."
	MsgNoSaved      = "No migrated/saved enhanced fields found."
)

// Run limits.
const (
	MinChunkLimit = 1
	MaxChunkLimit = 200
	MaxPerPage    = 100
)

// ErrRunInProgress is returned when another run holds the single-writer guard.
var ErrRunInProgress = errors.New("a migration run is already in progress")

// RecordRepository is the catalog storage the orchestrator works on.
type RecordRepository interface {
	GetVideo(ctx context.Context, id int64) (*models.Video, error)
	ListVideos(ctx context.Context) ([]*models.Video, error)
	GetField(ctx context.Context, id int64, f models.Field) (models.Value, bool, error)
	SetField(ctx context.Context, id int64, f models.Field, v models.Value) error
}

// ContentParser maps legacy content onto enhanced fields.
type ContentParser interface {
	Parse(ctx context.Context, content string) *models.FieldMapping
}

// AssetRelocator copies an image to its canonical name and returns the new URL.
type AssetRelocator interface {
	Relocate(ctx context.Context, ownerID int64, sourceURL, suffix string) (string, error)
}

// EventPublisher is the publishing half of eventbus.EventBus.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event eventbus.Event) error
}

type MigrationOptions struct {
	PerPage      int
	LogLimit     int
	SingleWriter bool
	Topic        eventbus.Topic
}

// MigrationOptionsFromConfig builds service options from the migration and kafka config.
func MigrationOptionsFromConfig(cfg config.AppConfig) MigrationOptions {
	return MigrationOptions{
		PerPage:      cfg.Migration.PerPage,
		LogLimit:     cfg.Migration.LogLimit,
		SingleWriter: cfg.Migration.SingleWriter,
		Topic:        eventbus.MigrationTopic(cfg.Kafka.Topic),
	}
}

// MigrationService drives per-record migration and the single/chunk/bulk runs.
type MigrationService struct {
	records   RecordRepository
	parser    ContentParser
	relocator AssetRelocator
	status    *StatusStore
	bus       EventPublisher
	opts      MigrationOptions

	runMu sync.Mutex
	now   func() time.Time
}

func NewMigrationService(records RecordRepository, p ContentParser, relocator AssetRelocator, status *StatusStore, bus EventPublisher, opts MigrationOptions) *MigrationService {
	if opts.PerPage <= 0 {
		opts.PerPage = 20
	}
	if opts.LogLimit <= 0 {
		opts.LogLimit = 150
	}
	if opts.Topic.Base() == "" {
		opts.Topic = eventbus.TopicMigrationEvents
	}
	if bus == nil {
		bus = eventbus.NopEventBus{}
	}
	return &MigrationService{
		records:   records,
		parser:    p,
		relocator: relocator,
		status:    status,
		bus:       bus,
		opts:      opts,
		now:       time.Now,
	}
}

// -------------------- Runs --------------------

// RunSingle migrates one record inside its own run.
//
// Runs ignore cancellation of ctx: once started, every selected record reaches
// a terminal status and the run is closed.
func (s *MigrationService) RunSingle(ctx context.Context, postID int64, force, dryRun bool) (*dto.RunResultDTO, error) {
	ctx = context.WithoutCancel(ctx)
	unlock, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer unlock()

	mode := models.ModeSingle.WithDryRun(dryRun)
	runID, err := s.startRun(ctx, mode)
	if err != nil {
		return nil, err
	}

	result := s.Migrate(ctx, postID, mode, force, runID, dryRun)
	var summary dto.RunSummaryDTO
	summary.Add(result)
	summary.Result = &result
	return s.finishRun(ctx, runID, mode, summary)
}

// RunChunk migrates up to limit records whose displayed status is not
// migrated, in ascending id order. limit is clamped to [1, 200].
func (s *MigrationService) RunChunk(ctx context.Context, limit int, force, dryRun bool) (*dto.RunResultDTO, error) {
	ctx = context.WithoutCancel(ctx)
	unlock, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer unlock()

	mode := models.ModeChunk.WithDryRun(dryRun)
	runID, err := s.startRun(ctx, mode)
	if err != nil {
		return nil, err
	}
	limit = max(MinChunkLimit, min(MaxChunkLimit, limit))

	candidates, err := s.candidates(ctx)
	if err != nil {
		return nil, s.abortRun(ctx, runID, mode, err)
	}
	statusMap, err := s.status.StatusMap(ctx)
	if err != nil {
		return nil, s.abortRun(ctx, runID, mode, err)
	}

	var batch []int64
	for _, v := range candidates {
		if len(batch) == limit {
			break
		}
		if buildRow(v, statusMap).Status != string(models.StatusMigrated) {
			batch = append(batch, v.ID)
		}
	}

	var summary dto.RunSummaryDTO
	for _, id := range batch {
		summary.Add(s.Migrate(ctx, id, mode, force, runID, dryRun))
	}
	return s.finishRun(ctx, runID, mode, summary)
}

// RunBulk attempts every candidate record in ascending id order.
func (s *MigrationService) RunBulk(ctx context.Context, force, dryRun bool) (*dto.RunResultDTO, error) {
	ctx = context.WithoutCancel(ctx)
	unlock, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer unlock()

	mode := models.ModeBulk.WithDryRun(dryRun)
	runID, err := s.startRun(ctx, mode)
	if err != nil {
		return nil, err
	}

	candidates, err := s.candidates(ctx)
	if err != nil {
		return nil, s.abortRun(ctx, runID, mode, err)
	}

	var summary dto.RunSummaryDTO
	for _, v := range candidates {
		summary.Add(s.Migrate(ctx, v.ID, mode, force, runID, dryRun))
	}
	return s.finishRun(ctx, runID, mode, summary)
}

func (s *MigrationService) acquire() (func(), error) {
	if !s.opts.SingleWriter {
		return func() {}, nil
	}
	if !s.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	return s.runMu.Unlock, nil
}

// NewRunID returns {mode}-{UTC yyyymmdd-hhmmss}-{6 char suffix}.
func NewRunID(mode models.RunMode, at time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("%s-%s-%s", mode, at.UTC().Format("20060102-150405"), suffix)
}

func (s *MigrationService) startRun(ctx context.Context, mode models.RunMode) (string, error) {
	st, err := s.status.State(ctx)
	if err != nil {
		return "", err
	}
	st.RunID = NewRunID(mode, s.now())
	st.LastMode = mode
	if err := s.status.PutState(ctx, st); err != nil {
		return "", err
	}
	config.InfoWithFields("migration run started", config.Fields{"run_id": st.RunID, "mode": string(mode)})
	return st.RunID, nil
}

// abortRun closes a run that failed before any record was attempted.
func (s *MigrationService) abortRun(ctx context.Context, runID string, mode models.RunMode, cause error) error {
	config.ErrorWithFields("migration run aborted", config.Fields{
		"run_id": runID,
		"mode":   string(mode),
		"error":  cause.Error(),
	})
	st, err := s.status.State(ctx)
	if err == nil {
		st.RunID = runID
		st.LastMode = mode
		st.LastRunAt = s.now()
		err = s.status.PutState(ctx, st)
	}
	if err != nil {
		config.WarnWithFields("close aborted run failed", config.Fields{"run_id": runID, "error": err.Error()})
	}
	return fmt.Errorf("run %s: %w", runID, cause)
}

func (s *MigrationService) finishRun(ctx context.Context, runID string, mode models.RunMode, summary dto.RunSummaryDTO) (*dto.RunResultDTO, error) {
	st, err := s.status.State(ctx)
	if err != nil {
		return nil, err
	}
	st.RunID = runID
	st.LastMode = mode
	st.LastRunAt = s.now()
	if err := s.status.PutState(ctx, st); err != nil {
		return nil, err
	}

	config.InfoWithFields("migration run finished", config.Fields{
		"run_id":    runID,
		"mode":      string(mode),
		"processed": summary.Processed,
		"migrated":  summary.Migrated,
		"failed":    summary.Failed,
		"skipped":   summary.Skipped,
		"dry_run":   summary.DryRun,
	})
	s.publish(ctx, runID, events.MigrationRunFinishedEvent{
		BaseEvent: events.NewBaseEvent(events.MigrationRunFinished),
		RunID:     runID,
		Mode:      string(mode),
		Processed: summary.Processed,
		Migrated:  summary.Migrated,
		Failed:    summary.Failed,
		Skipped:   summary.Skipped,
		DryRun:    summary.DryRun,
	})

	payload, err := s.GetDashboardPayload(ctx, DashboardQuery{Filter: "all", Page: 1, PerPage: s.opts.PerPage})
	if err != nil {
		return nil, err
	}
	return &dto.RunResultDTO{
		RunID:   runID,
		Mode:    string(mode),
		Summary: summary,
		Payload: payload,
	}, nil
}

// -------------------- Per record --------------------

// Migrate takes one record to a terminal status. Every call writes exactly one
// status entry and one log entry and publishes one event; failures are
// reported in the result, never returned.
func (s *MigrationService) Migrate(ctx context.Context, postID int64, mode models.RunMode, force bool, runID string, dryRun bool) dto.RecordResultDTO {
	v, err := s.records.GetVideo(ctx, postID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		config.ErrorWithFields("load record failed", config.Fields{"post_id": postID, "run_id": runID, "error": err.Error()})
		return s.record(ctx, postID, mode, runID, models.StatusFailed, MsgLoadFailed, nil)
	}
	if err != nil || !v.IsVideo() {
		return s.record(ctx, postID, mode, runID, models.StatusFailed, MsgNotFound, nil)
	}

	if !parser.IsLegacyContent(v.Content) {
		return s.record(ctx, postID, mode, runID, models.StatusSkipped, MsgNotLegacy, nil)
	}

	if !force && v.HasEnhancedMeta() {
		return s.record(ctx, postID, mode, runID, models.StatusSkipped, MsgAlreadyMigrated, nil)
	}

	mapped := s.parser.Parse(ctx, v.Content)
	if mapped.Len() == 0 {
		return s.record(ctx, postID, mode, runID, models.StatusFailed, MsgNoFields, nil)
	}

	parsed := mapped.Len()
	if dryRun {
		return s.record(ctx, postID, mode, runID, models.StatusDryRun, fmt.Sprintf(MsgDryRun, parsed), mapped.KeyNames())
	}

	written, err := s.write(ctx, v, mapped)
	if err != nil {
		config.ErrorWithFields("save enhanced fields failed", config.Fields{"post_id": postID, "run_id": runID, "error": err.Error()})
		return s.record(ctx, postID, mode, runID, models.StatusFailed, MsgSaveFailed, written)
	}
	return s.record(ctx, postID, mode, runID, models.StatusMigrated, fmt.Sprintf(MsgMigrated, parsed), written)
}

// write persists mapped onto the record. Text fields go first because the
// relocated image names are built from film title, release date and directors.
func (s *MigrationService) write(ctx context.Context, v *models.Video, mapped *models.FieldMapping) ([]string, error) {
	fields := mapped.Clone()
	if !fields.Has(models.FieldFilmTitle) {
		fields.Set(models.FieldFilmTitle, models.Scalar(v.Title))
	}
	if !fields.Has(models.FieldReleaseDate) && !v.CreatedAt.IsZero() {
		fields.Set(models.FieldReleaseDate, models.Scalar(v.CreatedAt.Format("2006-01-02")))
	}

	var written []string
	for _, f := range fields.Keys() {
		if f.IsImage() {
			continue
		}
		val, _ := fields.Get(f)
		if err := s.records.SetField(ctx, v.ID, f, val.Compact()); err != nil {
			return written, fmt.Errorf("set %s: %w", f, err)
		}
		written = append(written, string(f))
	}

	for _, img := range []struct {
		field  models.Field
		suffix string
	}{
		{models.FieldPoster916, "poster"},
		{models.FieldTitleImage169, "title_image"},
	} {
		src := fields.Str(img.field)
		if src == "" {
			continue
		}
		if err := s.records.SetField(ctx, v.ID, img.field, models.Scalar(s.relocate(ctx, v.ID, src, img.suffix))); err != nil {
			return written, fmt.Errorf("set %s: %w", img.field, err)
		}
		written = append(written, string(img.field))
	}

	if stills, ok := fields.Get(models.FieldStillsGallery); ok && !stills.IsEmpty() {
		var relocated []string
		n := 1
		for _, src := range stills.Items() {
			if src == "" {
				continue
			}
			relocated = append(relocated, s.relocate(ctx, v.ID, src, "STILL_"+strconv.Itoa(n)))
			n++
		}
		if err := s.records.SetField(ctx, v.ID, models.FieldStillsGallery, models.List(relocated...)); err != nil {
			return written, fmt.Errorf("set %s: %w", models.FieldStillsGallery, err)
		}
		written = append(written, string(models.FieldStillsGallery))
	}
	return written, nil
}

// relocate returns the relocated URL, or src itself when relocation is not possible.
func (s *MigrationService) relocate(ctx context.Context, ownerID int64, src, suffix string) string {
	if s.relocator == nil {
		return src
	}
	newURL, err := s.relocator.Relocate(ctx, ownerID, src, suffix)
	if err != nil || newURL == "" {
		config.WarnWithFields("image relocation skipped, keeping original", config.Fields{
			"post_id": ownerID,
			"source":  src,
			"suffix":  suffix,
			"error":   fmt.Sprint(err),
		})
		return src
	}
	return newURL
}

func (s *MigrationService) record(ctx context.Context, postID int64, mode models.RunMode, runID string, status models.MigrationStatus, message string, fields []string) dto.RecordResultDTO {
	if fields == nil {
		fields = []string{}
	}
	if err := s.status.SetStatus(ctx, postID, status, message, runID); err != nil {
		config.ErrorWithFields("status write failed", config.Fields{"post_id": postID, "run_id": runID, "error": err.Error()})
	}

	logStatus := status
	if status == models.StatusMigrated {
		logStatus = models.LogStatusSuccess
	}
	if err := s.status.AppendLog(ctx, models.LogEntry{
		RunID:     runID,
		PostID:    postID,
		Mode:      mode,
		Status:    logStatus,
		Message:   message,
		Fields:    fields,
		Timestamp: s.now(),
	}); err != nil {
		config.ErrorWithFields("log append failed", config.Fields{"post_id": postID, "run_id": runID, "error": err.Error()})
	}

	config.InfoWithFields("migration record processed", config.Fields{
		"run_id":  runID,
		"post_id": postID,
		"mode":    string(mode),
		"status":  string(status),
		"message": message,
	})
	s.publish(ctx, fmt.Sprintf("%s:%d", runID, postID), events.MigrationRecordProcessedEvent{
		BaseEvent: events.NewBaseEvent(events.MigrationRecordProcessed),
		RunID:     runID,
		PostID:    postID,
		Mode:      string(mode),
		Status:    string(status),
		Message:   message,
		Fields:    fields,
	})

	return dto.RecordResultDTO{Status: string(status), Message: message}
}

func (s *MigrationService) publish(ctx context.Context, id string, payload any) {
	evt, err := eventbus.NewJSONEvent(id, payload, 0)
	if err != nil {
		config.Logger.Errorf("migration event encode failed: %v", err)
		return
	}
	if err := s.bus.Publish(ctx, s.opts.Topic.Base(), evt); err != nil {
		config.Logger.Warnf("migration event publish failed (id=%s): %v", id, err)
	}
}

// -------------------- Reads --------------------

// candidates returns the legacy-shaped video records in ascending id order.
func (s *MigrationService) candidates(ctx context.Context) ([]*models.Video, error) {
	videos, err := s.records.ListVideos(ctx)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	out := make([]*models.Video, 0, len(videos))
	for _, v := range videos {
		if parser.IsLegacyContent(v.Content) {
			out = append(out, v)
		}
	}
	return out, nil
}

// buildRow derives the displayed status: a record counts as migrated when its
// stored status says so or when it already carries enhanced meta.
func buildRow(v *models.Video, statusMap map[int64]models.StatusEntry) dto.DashboardRowDTO {
	title := v.Title
	if title == "" {
		title = fmt.Sprintf("Video #%d", v.ID)
	}
	row := dto.DashboardRowDTO{
		PostID:   v.ID,
		Title:    title,
		Status:   string(models.StatusPending),
		Eligible: !v.HasEnhancedMeta(),
	}
	if entry, ok := statusMap[v.ID]; ok {
		row.Status = string(entry.Status)
		row.Message = entry.Message
		row.UpdatedAt = dto.FormatTime(entry.UpdatedAt)
	}
	if !row.Eligible && row.Status != string(models.StatusMigrated) {
		row.Status = string(models.StatusMigrated)
		row.Message = MsgMetaExists
	}
	return row
}

type DashboardQuery struct {
	Filter  string
	Page    int
	PerPage int
	Search  string
}

// GetDashboardPayload aggregates stats over all candidates, then filters,
// searches and paginates the rows.
func (s *MigrationService) GetDashboardPayload(ctx context.Context, q DashboardQuery) (*dto.DashboardDTO, error) {
	candidates, err := s.candidates(ctx)
	if err != nil {
		return nil, err
	}
	statusMap, err := s.status.StatusMap(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.status.State(ctx)
	if err != nil {
		return nil, err
	}

	stats := dto.DashboardStatsDTO{
		TotalOld:            len(candidates),
		LastRunAt:           dto.FormatTime(st.LastRunAt),
		LastMode:            string(st.LastMode),
		LastProcessedPostID: st.LastProcessedPostID,
		RunID:               st.RunID,
	}
	rows := make([]dto.DashboardRowDTO, 0, len(candidates))
	for _, v := range candidates {
		row := buildRow(v, statusMap)
		if row.Eligible {
			stats.Eligible++
		}
		switch models.MigrationStatus(row.Status) {
		case models.StatusMigrated:
			stats.Migrated++
		case models.StatusFailed:
			stats.Failed++
		}
		rows = append(rows, row)
	}
	stats.Remaining = max(0, stats.TotalOld-stats.Migrated)

	if q.Filter != "" && q.Filter != "all" {
		rows = filterRows(rows, func(r dto.DashboardRowDTO) bool { return r.Status == q.Filter })
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		id, idErr := strconv.ParseInt(search, 10, 64)
		needle := strings.ToLower(search)
		rows = filterRows(rows, func(r dto.DashboardRowDTO) bool {
			if idErr == nil && r.PostID == id {
				return true
			}
			return strings.Contains(strings.ToLower(r.Title), needle)
		})
	}

	page := max(1, q.Page)
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = s.opts.PerPage
	}
	perPage = max(1, min(MaxPerPage, perPage))
	total := len(rows)
	totalPages := (total + perPage - 1) / perPage

	pageRows := []dto.DashboardRowDTO{}
	if offset := (page - 1) * perPage; offset < total {
		pageRows = rows[offset:min(total, offset+perPage)]
	}

	logs, err := s.status.RecentLogs(ctx, s.opts.LogLimit)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardDTO{
		Stats: stats,
		Rows:  pageRows,
		Pagination: dto.DashboardPaginationDTO{
			Page:       page,
			PerPage:    perPage,
			TotalRows:  total,
			TotalPages: totalPages,
		},
		Logs: logs,
	}, nil
}

func filterRows(rows []dto.DashboardRowDTO, keep func(dto.DashboardRowDTO) bool) []dto.DashboardRowDTO {
	out := rows[:0:0]
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// PreviewMapping parses a record without writing anything and adds the
// filenames its images would get.
func (s *MigrationService) PreviewMapping(ctx context.Context, postID int64) (*dto.PreviewDTO, error) {
	out := &dto.PreviewDTO{PostID: postID, Fields: models.NewFieldMapping()}

	v, err := s.records.GetVideo(ctx, postID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	if err != nil || !v.IsVideo() {
		out.Message = MsgNotFound
		return out, nil
	}
	out.Title = v.Title

	if !parser.IsLegacyContent(v.Content) {
		out.Message = MsgNotLegacy
		return out, nil
	}
	out.IsLegacy = true

	mapped := s.parser.Parse(ctx, v.Content)
	if mapped.Len() == 0 {
		out.Message = MsgNoFields
		return out, nil
	}

	parts := assets.NameParts{FilmTitle: mapped.Str(models.FieldFilmTitle), Directors: mapped.Str(models.FieldDirectors)}
	if parts.FilmTitle == "" {
		parts.FilmTitle = v.Title
	}
	if date := mapped.Str(models.FieldReleaseDate); date != "" {
		parts.ReleaseYear = assets.ReleaseYear(date)
	} else if !v.CreatedAt.IsZero() {
		parts.ReleaseYear = v.CreatedAt.Format("2006")
	}

	if src := mapped.Str(models.FieldPoster916); src != "" {
		mapped.Set(models.FieldPosterNewFilename, models.Scalar(assets.BuildFilename(parts, "poster", urlBasename(src))))
	}
	if src := mapped.Str(models.FieldTitleImage169); src != "" {
		mapped.Set(models.FieldTitleImageNewFilename, models.Scalar(assets.BuildFilename(parts, "title_image", urlBasename(src))))
	}
	if stills, ok := mapped.Get(models.FieldStillsGallery); ok && stills.IsList() {
		names := []string{}
		n := 1
		for _, src := range stills.Items() {
			if src == "" {
				continue
			}
			names = append(names, assets.BuildFilename(parts, "STILL_"+strconv.Itoa(n), urlBasename(src)))
			n++
		}
		mapped.Set(models.FieldStillsNewFilenames, models.List(names...))
	}

	out.Fields = mapped
	out.FieldCount = mapped.Len()
	out.Message = MsgPreviewReady
	return out, nil
}

// GetMigratedFields returns the enhanced fields stored on a record, plus the
// bare filenames of its image fields.
func (s *MigrationService) GetMigratedFields(ctx context.Context, postID int64) (*dto.SavedFieldsDTO, error) {
	out := &dto.SavedFieldsDTO{PostID: postID, Fields: models.NewFieldMapping()}

	v, err := s.records.GetVideo(ctx, postID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	if err != nil || !v.IsVideo() {
		out.Message = MsgNotFound
		return out, nil
	}
	out.Title = v.Title

	saved := models.NewFieldMapping()
	for _, f := range models.SavedFields {
		val, ok, err := s.records.GetField(ctx, postID, f)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if val = val.Compact(); !val.IsEmpty() {
			saved.Set(f, val)
		}
	}

	if src := saved.Str(models.FieldPoster916); src != "" {
		saved.Set(models.FieldPosterFilename, models.Scalar(urlBasename(src)))
	}
	if src := saved.Str(models.FieldTitleImage169); src != "" {
		saved.Set(models.FieldTitleImageFilename, models.Scalar(urlBasename(src)))
	}
	if stills, ok := saved.Get(models.FieldStillsGallery); ok && stills.IsList() {
		names := []string{}
		for _, src := range stills.Items() {
			names = append(names, urlBasename(src))
		}
		saved.Set(models.FieldStillsFilenames, models.List(names...))
	}

	out.Fields = saved
	out.FieldCount = saved.Len()
	if saved.Len() == 0 {
		out.Message = MsgNoSaved
	} else {
		out.Message = MsgFieldsLoaded
	}
	return out, nil
}

func urlBasename(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}
	if p == "" {
		return ""
	}
	return path.Base(p)
}
