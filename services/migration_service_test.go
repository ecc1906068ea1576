package services_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legacy-migrator/eventbus"
	"legacy-migrator/events"
	"legacy-migrator/models"
	"legacy-migrator/parser"
	"legacy-migrator/repositories"
	"legacy-migrator/services"
)

const legacyContent = `<!-- wp:paragraph --><p>Directed by Jane Doe</p><!-- /wp:paragraph -->`

// memRecords behaves like a real store on a dead context: every call fails
// with ctx.Err().
type memRecords struct {
	mu      sync.Mutex
	videos  map[int64]*models.Video
	writes  int
	failSet error
	loadErr error
	listErr error
}

func newMemRecords() *memRecords {
	return &memRecords{videos: map[int64]*models.Video{}}
}

func (m *memRecords) add(v *models.Video) {
	if v.PostType == "" {
		v.PostType = models.PostTypeVideo
	}
	m.videos[v.ID] = v
}

func (m *memRecords) GetVideo(ctx context.Context, id int64) (*models.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	v, ok := m.videos[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return v, nil
}

func (m *memRecords) ListVideos(ctx context.Context) ([]*models.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []*models.Video{}
	for _, v := range m.videos {
		if v.PostType == models.PostTypeVideo {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRecords) GetField(ctx context.Context, id int64, f models.Field) (models.Value, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.Value{}, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.videos[id]
	if !ok {
		return models.Value{}, false, nil
	}
	val, ok := v.Field(f)
	return val, ok, nil
}

func (m *memRecords) SetField(ctx context.Context, id int64, f models.Field, val models.Value) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet != nil {
		return m.failSet
	}
	v, ok := m.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if v.Meta == nil {
		v.Meta = map[string]any{}
	}
	v.Meta[f.MetaKey()] = val.Interface()
	m.writes++
	return nil
}

type stubParser struct {
	mapping func() *models.FieldMapping
}

func (p stubParser) Parse(context.Context, string) *models.FieldMapping {
	return p.mapping()
}

func nineFields() *models.FieldMapping {
	m := models.NewFieldMapping()
	m.Set(models.FieldPoster916, models.Scalar("https://cdn.example.com/uploads/poster.jpg"))
	m.Set(models.FieldTitleImage169, models.Scalar("https://cdn.example.com/uploads/poster.jpg"))
	m.Set(models.FieldStillsGallery, models.List("https://cdn.example.com/uploads/a.jpg", "", "https://cdn.example.com/uploads/b.jpg"))
	m.Set(models.FieldDirectors, models.Scalar("Jane Doe"))
	m.Set(models.FieldSynopsis, models.Scalar("A lighthouse keeper."))
	m.Set(models.FieldWriters, models.Scalar("John Roe"))
	m.Set(models.FieldDuration, models.Scalar("92 min"))
	m.Set(models.FieldGenres, models.Scalar("Drama"))
	m.Set(models.FieldLanguage, models.Scalar("French"))
	return m
}

type stubRelocator struct {
	fail  bool
	calls []string
}

func (r *stubRelocator) Relocate(_ context.Context, ownerID int64, src, suffix string) (string, error) {
	r.calls = append(r.calls, suffix)
	if r.fail {
		return "", errors.New("disk unavailable")
	}
	return fmt.Sprintf("https://cdn.example.com/uploads/%d_%s.jpg", ownerID, suffix), nil
}

type recordingBus struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (b *recordingBus) Publish(_ context.Context, _ string, evt eventbus.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, evt)
	return nil
}

type fixture struct {
	records   *memRecords
	relocator *stubRelocator
	status    *services.StatusStore
	bus       *recordingBus
	svc       *services.MigrationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		records:   newMemRecords(),
		relocator: &stubRelocator{},
		status:    services.NewStatusStore(repositories.NewMemoryOptionStore()),
		bus:       &recordingBus{},
	}
	f.svc = services.NewMigrationService(f.records, stubParser{mapping: nineFields}, f.relocator, f.status, f.bus, services.MigrationOptions{
		PerPage:      20,
		LogLimit:     150,
		SingleWriter: true,
	})
	return f
}

func (f *fixture) addLegacy(id int64, title string) *models.Video {
	v := &models.Video{ID: id, Title: title, Content: legacyContent, CreatedAt: time.Date(2019, 5, 2, 0, 0, 0, 0, time.UTC)}
	f.records.add(v)
	return v
}

func TestMigrateWritesFieldsAndReportsParsedCount(t *testing.T) {
	f := newFixture(t)
	v := f.addLegacy(7, "Lighthouse")
	ctx := context.Background()

	res := f.svc.Migrate(ctx, 7, models.ModeSingle, false, "run-1", false)

	assert.Equal(t, "migrated", res.Status)
	assert.Equal(t, "Migrated successfully (9 fields).", res.Message)

	assert.Equal(t, "Jane Doe", v.Meta["_enhanced_directors"])
	assert.Equal(t, "Lighthouse", v.Meta["_enhanced_film_title"])
	assert.Equal(t, "2019-05-02", v.Meta["_enhanced_original_release_date"])
	assert.Equal(t, "https://cdn.example.com/uploads/7_poster.jpg", v.Meta["_enhanced_poster_9_16"])
	assert.Equal(t, "https://cdn.example.com/uploads/7_title_image.jpg", v.Meta["_enhanced_poster_title_image_16_9"])
	assert.Equal(t, []string{
		"https://cdn.example.com/uploads/7_STILL_1.jpg",
		"https://cdn.example.com/uploads/7_STILL_2.jpg",
	}, v.Meta["_enhanced_stills_gallery"])
	assert.Equal(t, []string{"poster", "title_image", "STILL_1", "STILL_2"}, f.relocator.calls)

	statusMap, err := f.status.StatusMap(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusMigrated, statusMap[7].Status)
	assert.Equal(t, "run-1", statusMap[7].RunID)

	logs, err := f.status.Logs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.LogStatusSuccess, logs[0].Status)
	assert.Contains(t, logs[0].Fields, "enhanced_film_title")

	require.Len(t, f.bus.events, 1)
	evt, err := eventbus.DecodeJSON[events.MigrationRecordProcessedEvent](f.bus.events[0])
	require.NoError(t, err)
	assert.Equal(t, int64(7), evt.PostID)
	assert.Equal(t, "migrated", evt.Status)
}

func TestMigrateIsIdempotentWithoutForce(t *testing.T) {
	f := newFixture(t)
	f.addLegacy(7, "Lighthouse")
	ctx := context.Background()

	first := f.svc.Migrate(ctx, 7, models.ModeSingle, false, "run-1", false)
	require.Equal(t, "migrated", first.Status)
	writes := f.records.writes

	second := f.svc.Migrate(ctx, 7, models.ModeSingle, false, "run-2", false)
	assert.Equal(t, "skipped", second.Status)
	assert.Equal(t, "Enhanced meta already present.", second.Message)
	assert.Equal(t, writes, f.records.writes)

	forced := f.svc.Migrate(ctx, 7, models.ModeSingle, true, "run-3", false)
	assert.Equal(t, "migrated", forced.Status)
}

func TestMigrateIsIdempotentForAnyPersistedField(t *testing.T) {
	f := newFixture(t)
	content := `<!-- wp:image --><figure class="wp-block-image"></figure><!-- /wp:image -->` +
		`<!-- wp:paragraph --><p>Composer: Max Richter</p><!-- /wp:paragraph -->`
	v := &models.Video{ID: 7, Title: "Lighthouse", Content: content}
	f.records.add(v)
	svc := services.NewMigrationService(f.records, parser.New(parser.GutenbergProvider{}, nil), f.relocator, f.status, f.bus, services.MigrationOptions{})
	ctx := context.Background()

	first := svc.Migrate(ctx, 7, models.ModeSingle, false, "run-1", false)
	require.Equal(t, "migrated", first.Status)
	assert.Equal(t, "Max Richter", v.Meta["_enhanced_composers"])
	assert.NotContains(t, v.Meta, "_enhanced_directors")
	writes := f.records.writes

	second := svc.Migrate(ctx, 7, models.ModeSingle, false, "run-2", false)
	assert.Equal(t, "skipped", second.Status)
	assert.Equal(t, "Enhanced meta already present.", second.Message)
	assert.Equal(t, writes, f.records.writes)
}

func TestHasEnhancedMetaSeesEveryTargetField(t *testing.T) {
	for _, field := range []models.Field{models.FieldComposers, models.FieldFilmTitle, models.FieldReleaseDate, models.FieldDirectorBio, models.FieldTitleImage169} {
		v := &models.Video{ID: 1, Meta: map[string]any{field.MetaKey(): "x"}}
		assert.True(t, v.HasEnhancedMeta(), field)
	}
	assert.False(t, (&models.Video{ID: 1, Meta: map[string]any{"_thumbnail_id": "5"}}).HasEnhancedMeta())
}

func TestMigrateDryRunWritesNothing(t *testing.T) {
	f := newFixture(t)
	v := f.addLegacy(7, "Lighthouse")

	res := f.svc.Migrate(context.Background(), 7, models.ModeSingleDryRun, false, "run-1", true)

	assert.Equal(t, "dry-run", res.Status)
	assert.Equal(t, "Dry run successful (9 fields parsed, not saved).", res.Message)
	assert.Empty(t, v.Meta)
	assert.Zero(t, f.records.writes)
	assert.Empty(t, f.relocator.calls)
}

func TestMigrateTerminalOutcomes(t *testing.T) {
	f := newFixture(t)
	f.records.add(&models.Video{ID: 2, Title: "Modern", Content: "<!-- wp:paragraph --><p>hello</p><!-- /wp:paragraph -->"})
	f.records.add(&models.Video{ID: 3, PostType: "page", Content: legacyContent})
	ctx := context.Background()

	missing := f.svc.Migrate(ctx, 99, models.ModeSingle, false, "r", false)
	assert.Equal(t, "failed", missing.Status)
	assert.Equal(t, "Post not found or not video.", missing.Message)

	page := f.svc.Migrate(ctx, 3, models.ModeSingle, false, "r", false)
	assert.Equal(t, "Post not found or not video.", page.Message)

	modern := f.svc.Migrate(ctx, 2, models.ModeSingle, false, "r", false)
	assert.Equal(t, "skipped", modern.Status)
	assert.Equal(t, "Legacy block content not found.", modern.Message)

	logs, err := f.status.Logs(ctx)
	require.NoError(t, err)
	assert.Len(t, logs, 3)
	assert.Len(t, f.bus.events, 3)
}

func TestMigrateReportsLoadFailureSeparately(t *testing.T) {
	f := newFixture(t)
	f.addLegacy(7, "Lighthouse")
	f.records.loadErr = errors.New("connection reset")

	res := f.svc.Migrate(context.Background(), 7, models.ModeSingle, false, "r", false)

	assert.Equal(t, "failed", res.Status)
	assert.Equal(t, "Failed to load post.", res.Message)
	assert.NotEqual(t, services.MsgNotFound, res.Message)
}

func TestMigrateWithNoFieldsFails(t *testing.T) {
	f := newFixture(t)
	f.addLegacy(7, "Lighthouse")
	svc := services.NewMigrationService(f.records, stubParser{mapping: models.NewFieldMapping}, f.relocator, f.status, nil, services.MigrationOptions{})

	res := svc.Migrate(context.Background(), 7, models.ModeSingle, false, "r", false)

	assert.Equal(t, "failed", res.Status)
	assert.Equal(t, "No mapped fields extracted.", res.Message)
}

func TestMigrateKeepsOriginalURLWhenRelocationFails(t *testing.T) {
	f := newFixture(t)
	f.relocator.fail = true
	v := f.addLegacy(7, "Lighthouse")

	res := f.svc.Migrate(context.Background(), 7, models.ModeSingle, false, "r", false)

	assert.Equal(t, "migrated", res.Status)
	assert.Equal(t, "https://cdn.example.com/uploads/poster.jpg", v.Meta["_enhanced_poster_9_16"])
	assert.Equal(t, []string{
		"https://cdn.example.com/uploads/a.jpg",
		"https://cdn.example.com/uploads/b.jpg",
	}, v.Meta["_enhanced_stills_gallery"])
}

func TestMigrateReportsWriteFailure(t *testing.T) {
	f := newFixture(t)
	f.addLegacy(7, "Lighthouse")
	f.records.failSet = errors.New("write refused")

	res := f.svc.Migrate(context.Background(), 7, models.ModeSingle, false, "r", false)

	assert.Equal(t, "failed", res.Status)
	assert.Equal(t, services.MsgSaveFailed, res.Message)
}

func TestRunChunkSelectsFirstNonMigrated(t *testing.T) {
	f := newFixture(t)
	for id := int64(1); id <= 10; id++ {
		f.addLegacy(id, fmt.Sprintf("Film %d", id))
	}
	f.records.videos[2].Meta = map[string]any{"_enhanced_synopsis": "already done"}
	ctx := context.Background()

	res, err := f.svc.RunChunk(ctx, 5, false, false)
	require.NoError(t, err)

	assert.Equal(t, 5, res.Summary.Processed)
	assert.Equal(t, 5, res.Summary.Migrated)
	assert.Regexp(t, `^chunk-\d{8}-\d{6}-[0-9a-f]{6}$`, res.RunID)

	statusMap, err := f.status.StatusMap(ctx)
	require.NoError(t, err)
	var touched []int64
	for id := range statusMap {
		touched = append(touched, id)
	}
	sort.Slice(touched, func(i, j int) bool { return touched[i] < touched[j] })
	assert.Equal(t, []int64{1, 3, 4, 5, 6}, touched)

	st, err := f.status.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), st.LastProcessedPostID)
	assert.Equal(t, models.ModeChunk, st.LastMode)
	assert.False(t, st.LastRunAt.IsZero())

	require.NotNil(t, res.Payload)
	assert.Equal(t, 10, res.Payload.Stats.TotalOld)
	assert.Equal(t, 6, res.Payload.Stats.Migrated)
	assert.Equal(t, 4, res.Payload.Stats.Remaining)
}

func TestRunChunkClampsLimit(t *testing.T) {
	f := newFixture(t)
	f.addLegacy(1, "One")
	f.addLegacy(2, "Two")

	res, err := f.svc.RunChunk(context.Background(), 0, false, true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Summary.Processed)
	assert.Equal(t, 1, res.Summary.DryRun)
	assert.Equal(t, "chunk-dry-run", res.Mode)
}

func TestRunBulkPublishesRunFinished(t *testing.T) {
	f := newFixture(t)
	f.addLegacy(1, "One")
	f.addLegacy(2, "Two")

	res, err := f.svc.RunBulk(context.Background(), false, false)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Summary.Migrated)

	last := f.bus.events[len(f.bus.events)-1]
	finished, err := eventbus.DecodeJSON[events.MigrationRunFinishedEvent](last)
	require.NoError(t, err)
	assert.Equal(t, events.MigrationRunFinished, finished.Type)
	assert.Equal(t, res.RunID, finished.RunID)
	assert.Equal(t, 2, finished.Processed)
}

func TestRunCompletesAfterCallerCancels(t *testing.T) {
	f := newFixture(t)
	for id := int64(1); id <= 3; id++ {
		f.addLegacy(id, fmt.Sprintf("Film %d", id))
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := f.svc.RunBulk(ctx, false, false)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Summary.Processed)
	assert.Equal(t, 3, res.Summary.Migrated)
	assert.Zero(t, res.Summary.Failed)

	logs, err := f.status.Logs(context.Background())
	require.NoError(t, err)
	for _, l := range logs {
		assert.NotEqual(t, services.MsgNotFound, l.Message)
	}

	single, err := f.svc.RunSingle(ctx, 1, true, true)
	require.NoError(t, err)
	assert.Equal(t, 1, single.Summary.DryRun)
}

func TestRunClosesStateWhenCandidatesFail(t *testing.T) {
	f := newFixture(t)
	f.addLegacy(1, "One")
	f.records.listErr = errors.New("cursor lost")
	ctx := context.Background()

	_, err := f.svc.RunBulk(ctx, false, false)
	require.ErrorContains(t, err, "cursor lost")

	st, err := f.status.State(ctx)
	require.NoError(t, err)
	assert.Regexp(t, `^bulk-\d{8}-\d{6}-[0-9a-f]{6}$`, st.RunID)
	assert.Equal(t, models.ModeBulk, st.LastMode)
	assert.False(t, st.LastRunAt.IsZero())

	_, err = f.svc.RunChunk(ctx, 5, false, false)
	require.ErrorContains(t, err, "cursor lost")
	st, err = f.status.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ModeChunk, st.LastMode)

	f.records.listErr = nil
	res, err := f.svc.RunBulk(ctx, false, false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Summary.Migrated)
}

func TestRunSingleCarriesRecordResult(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.RunSingle(context.Background(), 404, false, false)
	require.NoError(t, err)
	require.NotNil(t, res.Summary.Result)
	assert.Equal(t, "Post not found or not video.", res.Summary.Result.Message)
	assert.Equal(t, 1, res.Summary.Failed)
}

type blockingParser struct {
	started chan struct{}
	release chan struct{}
}

func (p blockingParser) Parse(context.Context, string) *models.FieldMapping {
	close(p.started)
	<-p.release
	return nineFields()
}

func TestConcurrentRunIsRejected(t *testing.T) {
	f := newFixture(t)
	f.addLegacy(1, "One")
	bp := blockingParser{started: make(chan struct{}), release: make(chan struct{})}
	svc := services.NewMigrationService(f.records, bp, f.relocator, f.status, f.bus, services.MigrationOptions{SingleWriter: true})

	done := make(chan error, 1)
	go func() {
		_, err := svc.RunBulk(context.Background(), false, false)
		done <- err
	}()
	<-bp.started

	_, err := svc.RunChunk(context.Background(), 5, false, false)
	assert.ErrorIs(t, err, services.ErrRunInProgress)

	close(bp.release)
	require.NoError(t, <-done)
}

func TestDashboardPagination(t *testing.T) {
	f := newFixture(t)
	for id := int64(1); id <= 47; id++ {
		f.addLegacy(id, fmt.Sprintf("Film %d", id))
	}
	ctx := context.Background()

	page3, err := f.svc.GetDashboardPayload(ctx, services.DashboardQuery{Filter: "all", Page: 3, PerPage: 20})
	require.NoError(t, err)
	assert.Equal(t, 3, page3.Pagination.TotalPages)
	assert.Equal(t, 47, page3.Pagination.TotalRows)
	assert.Len(t, page3.Rows, 7)
	assert.Equal(t, int64(41), page3.Rows[0].PostID)

	past, err := f.svc.GetDashboardPayload(ctx, services.DashboardQuery{Page: 9, PerPage: 20})
	require.NoError(t, err)
	assert.NotNil(t, past.Rows)
	assert.Empty(t, past.Rows)

	clamped, err := f.svc.GetDashboardPayload(ctx, services.DashboardQuery{Page: -1, PerPage: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, clamped.Pagination.Page)
	assert.Equal(t, 100, clamped.Pagination.PerPage)
	assert.Len(t, clamped.Rows, 47)
}

func TestDashboardFilterSearchAndDisplayedStatus(t *testing.T) {
	f := newFixture(t)
	f.addLegacy(1, "The Lighthouse")
	f.addLegacy(2, "Harbour")
	f.addLegacy(3, "Lighthouse Keeper")
	f.records.videos[3].Meta = map[string]any{"_enhanced_directors": "Jane Doe"}
	f.records.add(&models.Video{ID: 4, Title: "Modern", Content: "<p>no blocks</p>"})
	ctx := context.Background()

	require.NoError(t, f.status.SetStatus(ctx, 2, models.StatusFailed, "boom", "r"))
	require.NoError(t, f.status.SetStatus(ctx, 3, models.StatusFailed, "boom", "r"))

	all, err := f.svc.GetDashboardPayload(ctx, services.DashboardQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Stats.TotalOld)
	assert.Equal(t, 2, all.Stats.Eligible)
	assert.Equal(t, 1, all.Stats.Migrated)
	assert.Equal(t, 1, all.Stats.Failed)
	assert.Equal(t, 2, all.Stats.Remaining)
	assert.Equal(t, "migrated", all.Rows[2].Status)
	assert.Equal(t, "Enhanced meta already exists.", all.Rows[2].Message)
	assert.Equal(t, "pending", all.Rows[0].Status)

	failed, err := f.svc.GetDashboardPayload(ctx, services.DashboardQuery{Filter: "failed"})
	require.NoError(t, err)
	require.Len(t, failed.Rows, 1)
	assert.Equal(t, int64(2), failed.Rows[0].PostID)

	search, err := f.svc.GetDashboardPayload(ctx, services.DashboardQuery{Search: "lighthouse"})
	require.NoError(t, err)
	assert.Len(t, search.Rows, 2)

	byID, err := f.svc.GetDashboardPayload(ctx, services.DashboardQuery{Search: "2"})
	require.NoError(t, err)
	require.Len(t, byID.Rows, 1)
	assert.Equal(t, "Harbour", byID.Rows[0].Title)
}

func TestPreviewMappingAddsNewFilenames(t *testing.T) {
	f := newFixture(t)
	v := f.addLegacy(7, "Lighthouse")

	preview, err := f.svc.PreviewMapping(context.Background(), 7)
	require.NoError(t, err)

	assert.True(t, preview.IsLegacy)
	assert.Equal(t, "Preview generated successfully.", preview.Message)
	assert.Equal(t, 12, preview.FieldCount)
	assert.Equal(t, "lighthouse_2019_jane_doe_POSTER.jpg", preview.Fields.Str(models.FieldPosterNewFilename))
	stills, ok := preview.Fields.Get(models.FieldStillsNewFilenames)
	require.True(t, ok)
	assert.Equal(t, []string{"lighthouse_2019_jane_doe_STILL_1.jpg", "lighthouse_2019_jane_doe_STILL_2.jpg"}, stills.Items())
	assert.Empty(t, v.Meta)
	assert.Empty(t, f.bus.events)
}

func TestPreviewMappingMessages(t *testing.T) {
	f := newFixture(t)
	f.records.add(&models.Video{ID: 2, Title: "Modern", Content: "<p>plain</p>"})

	missing, err := f.svc.PreviewMapping(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Post not found or not video.", missing.Message)

	modern, err := f.svc.PreviewMapping(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, modern.IsLegacy)
	assert.Equal(t, "Legacy block content not found.", modern.Message)
}

func TestGetMigratedFields(t *testing.T) {
	f := newFixture(t)
	f.addLegacy(7, "Lighthouse")
	ctx := context.Background()

	empty, err := f.svc.GetMigratedFields(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "No migrated/saved enhanced fields found.", empty.Message)
	assert.Zero(t, empty.FieldCount)

	f.svc.Migrate(ctx, 7, models.ModeSingle, false, "r", false)

	saved, err := f.svc.GetMigratedFields(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Saved enhanced fields loaded.", saved.Message)
	assert.Equal(t, "Jane Doe", saved.Fields.Str(models.FieldDirectors))
	assert.Equal(t, "7_poster.jpg", saved.Fields.Str(models.FieldPosterFilename))
	names, ok := saved.Fields.Get(models.FieldStillsFilenames)
	require.True(t, ok)
	assert.Equal(t, []string{"7_STILL_1.jpg", "7_STILL_2.jpg"}, names.Items())
}

func TestNewRunIDFormat(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.FixedZone("KST", 9*3600))
	id := services.NewRunID(models.ModeBulk, at)
	assert.Regexp(t, `^bulk-20240309-050507-[0-9a-f]{6}$`, id)
}
