package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"coursecraft/internal/domain"
	"coursecraft/internal/domain/models"
	"coursecraft/internal/domain/repositories"
	"coursecraft/internal/domain/services"
	"coursecraft/internal/registry"
	"coursecraft/internal/repository/memory"
	"coursecraft/internal/repository/snapshot"
)

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*lessonService, repositories.LessonTable, repositories.SnapshotStore) {
	t.Helper()

	reg, err := registry.NewRegistry()
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	table := memory.NewLessonTable()
	snaps, err := snapshot.NewStore(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("create snapshot store: %v", err)
	}
	resolver := NewPathResolver(t.TempDir(), reg)

	svc := NewLessonService(table, snaps, reg, resolver, base, logger).(*lessonService)
	svc.now = func() time.Time { return testTime }
	return svc, table, snaps
}

func strPtr(s string) *string { return &s }

func saveReq(title string) *services.SaveLessonRequest {
	return &services.SaveLessonRequest{LessonTitle: strPtr(title)}
}

func TestSaveLessonCreatesOnFirstWrite(t *testing.T) {
	svc, _, snaps := newTestService(t)
	ctx := context.Background()

	lesson, err := svc.SaveLesson(ctx, "l1", saveReq("Intro to Go"))
	if err != nil {
		t.Fatalf("SaveLesson: %v", err)
	}

	if lesson.LessonTitle != "Intro to Go" {
		t.Errorf("LessonTitle = %q", lesson.LessonTitle)
	}
	if !lesson.CreatedAt.Equal(testTime) || !lesson.UpdatedAt.Equal(testTime) {
		t.Errorf("timestamps: created=%v updated=%v", lesson.CreatedAt, lesson.UpdatedAt)
	}
	if lesson.Metadata.TotalContent != 6 || lesson.Metadata.CompletedContent != 0 {
		t.Errorf("metadata = %+v", lesson.Metadata)
	}

	// snapshot written through
	stored, err := snaps.Load(ctx, "l1")
	if err != nil {
		t.Fatalf("snapshot missing after save: %v", err)
	}
	if stored.LessonTitle != "Intro to Go" {
		t.Errorf("snapshot title = %q", stored.LessonTitle)
	}
}

func TestSaveLessonMergesTopLevelFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SaveLesson(ctx, "l1", saveReq("First")); err != nil {
		t.Fatalf("first save: %v", err)
	}

	later := testTime.Add(time.Hour)
	svc.now = func() time.Time { return later }

	req := saveReq("Second")
	req.CourseID = strPtr("course-9")
	lesson, err := svc.SaveLesson(ctx, "l1", req)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}

	if lesson.LessonTitle != "Second" {
		t.Errorf("title not merged: %q", lesson.LessonTitle)
	}
	if lesson.CourseID == nil || *lesson.CourseID != "course-9" {
		t.Errorf("courseId not merged: %v", lesson.CourseID)
	}
	if !lesson.CreatedAt.Equal(testTime) {
		t.Errorf("createdAt must not move on update: %v", lesson.CreatedAt)
	}
	if !lesson.UpdatedAt.Equal(later) {
		t.Errorf("updatedAt not stamped: %v", lesson.UpdatedAt)
	}
}

func TestUpdateSlotRequiresExistingLesson(t *testing.T) {
	svc, _, _ := newTestService(t)

	slot := &models.ContentSlot{Type: "text", Text: &models.TextContent{Content: "hello"}}
	_, err := svc.UpdateSlot(context.Background(), "ghost", "text", slot)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestUpdateSlotRejectsUnknownType(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SaveLesson(ctx, "l1", saveReq("L")); err != nil {
		t.Fatalf("save: %v", err)
	}

	_, err := svc.UpdateSlot(ctx, "l1", "transcripts", &models.ContentSlot{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestUpdateSlotRecomputesMetadata(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SaveLesson(ctx, "l1", saveReq("L")); err != nil {
		t.Fatalf("save: %v", err)
	}

	slot := &models.ContentSlot{Text: &models.TextContent{Content: "hello"}}
	lesson, err := svc.UpdateSlot(ctx, "l1", "text", slot)
	if err != nil {
		t.Fatalf("UpdateSlot: %v", err)
	}

	if lesson.Metadata.CompletedContent != 1 {
		t.Errorf("CompletedContent = %d, want 1", lesson.Metadata.CompletedContent)
	}
	if lesson.Metadata.Progress != 17 {
		t.Errorf("Progress = %d, want 17", lesson.Metadata.Progress)
	}
	if lesson.Content["text"].Method != models.MethodManual {
		t.Errorf("method not defaulted: %q", lesson.Content["text"].Method)
	}
}

func TestAppendToListSlotPreservesOrder(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	a := models.FileDescriptor{Name: "a.png", Size: 1, Type: "image/png", Path: "/uploads/lessons/l2/images/a.png"}
	b := models.FileDescriptor{Name: "b.png", Size: 2, Type: "image/png", Path: "/uploads/lessons/l2/images/b.png"}

	// upserts: lesson does not exist yet
	if _, err := svc.AppendToListSlot(ctx, "l2", "images", []models.FileDescriptor{a}); err != nil {
		t.Fatalf("first append: %v", err)
	}
	lesson, err := svc.AppendToListSlot(ctx, "l2", "images", []models.FileDescriptor{b})
	if err != nil {
		t.Fatalf("second append: %v", err)
	}

	files := lesson.Content["images"].List.Files
	if len(files) != 2 || files[0].Name != "a.png" || files[1].Name != "b.png" {
		t.Errorf("files = %+v, want [a.png b.png] in request order", files)
	}
	if lesson.Content["images"].Method != models.MethodUpload {
		t.Errorf("method = %q", lesson.Content["images"].Method)
	}
}

func TestAppendToListSlotRejectsSingleTypes(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.AppendToListSlot(context.Background(), "l1", "presentation", nil)
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestReplaceSingleSlotIsDestructive(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first := models.FileDescriptor{Name: "v1.pdf", Size: 1, Type: "application/pdf", Path: "/uploads/lessons/l3/presentations/v1.pdf"}
	second := models.FileDescriptor{Name: "v2.pdf", Size: 2, Type: "application/pdf", Path: "/uploads/lessons/l3/presentations/v2.pdf"}

	if _, err := svc.ReplaceSingleSlot(ctx, "l3", "presentation", first); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	lesson, err := svc.ReplaceSingleSlot(ctx, "l3", "presentation", second)
	if err != nil {
		t.Fatalf("second replace: %v", err)
	}

	slot := lesson.Content["presentation"]
	if slot.Single == nil || slot.Single.File.Name != "v2.pdf" {
		t.Errorf("slot holds %+v, want only the newest file", slot.Single)
	}
	if slot.List != nil {
		t.Error("single slot must not accumulate a file list")
	}
}

func TestRemoveFileFromSlot(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	fd := models.FileDescriptor{Name: "diagram.png", Size: 1200, Type: "image/png", Path: "/uploads/lessons/l2/images/stored-x.png"}
	if _, err := svc.AppendToListSlot(ctx, "l2", "images", []models.FileDescriptor{fd}); err != nil {
		t.Fatalf("append: %v", err)
	}

	// stored filename (last path segment) matches
	lesson, err := svc.RemoveFileFromSlot(ctx, "l2", "images", "stored-x.png")
	if err != nil {
		t.Fatalf("RemoveFileFromSlot: %v", err)
	}

	slot := lesson.Content["images"]
	if slot == nil {
		t.Fatal("emptied slot must stay present, not nulled")
	}
	if len(slot.List.Files) != 0 {
		t.Errorf("files = %+v, want empty", slot.List.Files)
	}
	// emptied slot still counts as populated
	if lesson.Metadata.CompletedContent != 1 {
		t.Errorf("CompletedContent = %d, want 1", lesson.Metadata.CompletedContent)
	}

	if _, err := svc.RemoveFileFromSlot(ctx, "l2", "images", "stored-x.png"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("removing again: err = %v, want not found", err)
	}
}

func TestGetLessonSoft404(t *testing.T) {
	svc, _, _ := newTestService(t)

	lesson, err := svc.GetLesson(context.Background(), "never-created-id")
	if err != nil {
		t.Fatalf("GetLesson must not fail for unknown IDs: %v", err)
	}

	if lesson.LessonID != "never-created-id" {
		t.Errorf("LessonID = %q", lesson.LessonID)
	}
	if lesson.Metadata.TotalContent != 6 || lesson.Metadata.CompletedContent != 0 || lesson.Metadata.Progress != 0 {
		t.Errorf("metadata = %+v, want empty template", lesson.Metadata)
	}
	for name, slot := range lesson.Content {
		if slot != nil {
			t.Errorf("slot %q not nil in empty template", name)
		}
	}
	if lesson.Template == nil {
		t.Error("empty template must carry a default template descriptor")
	}
}

func TestRoundTripRewritesOnReadOnly(t *testing.T) {
	svc, _, snaps := newTestService(t)
	ctx := context.Background()

	fd := models.FileDescriptor{Name: "a.png", Size: 1, Type: "image/png", Path: "/uploads/lessons/l2/images/a.png"}
	saved, err := svc.AppendToListSlot(ctx, "l2", "images", []models.FileDescriptor{fd})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	// the API response is absolute
	if p := saved.Content["images"].List.Files[0].Path; !strings.HasPrefix(p, base+"/uploads/") {
		t.Errorf("response path = %q, want absolute", p)
	}

	// the persisted snapshot stays relative
	stored, err := snaps.Load(ctx, "l2")
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if p := stored.Content["images"].List.Files[0].Path; !strings.HasPrefix(p, "/uploads/") {
		t.Errorf("stored path = %q, must stay site-relative", p)
	}

	// reading back matches the saved response
	loaded, err := svc.GetLesson(ctx, "l2")
	if err != nil {
		t.Fatalf("GetLesson: %v", err)
	}
	if loaded.Content["images"].List.Files[0].Path != saved.Content["images"].List.Files[0].Path {
		t.Errorf("round-trip mismatch: %q vs %q",
			loaded.Content["images"].List.Files[0].Path,
			saved.Content["images"].List.Files[0].Path)
	}
}

func TestSnapshotWinsOverMemory(t *testing.T) {
	svc, table, snaps := newTestService(t)
	ctx := context.Background()

	memLesson := models.NewEmptyLesson("l1", svc.registry.Names(), testTime)
	memLesson.LessonTitle = "from memory"
	if err := table.Put(ctx, memLesson); err != nil {
		t.Fatalf("table put: %v", err)
	}

	diskLesson := models.NewEmptyLesson("l1", svc.registry.Names(), testTime)
	diskLesson.LessonTitle = "from disk"
	if err := snaps.Save(ctx, diskLesson); err != nil {
		t.Fatalf("snapshot save: %v", err)
	}

	got, err := svc.GetLesson(ctx, "l1")
	if err != nil {
		t.Fatalf("GetLesson: %v", err)
	}
	if got.LessonTitle != "from disk" {
		t.Errorf("title = %q, the durable snapshot must win", got.LessonTitle)
	}
}

func TestGetSlot(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.GetSlot(ctx, "ghost", "text"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown lesson: err = %v, want not found", err)
	}

	if _, err := svc.SaveLesson(ctx, "l1", saveReq("L")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := svc.GetSlot(ctx, "l1", "text"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("empty slot: err = %v, want not found", err)
	}

	if _, err := svc.UpdateSlot(ctx, "l1", "text", &models.ContentSlot{Text: &models.TextContent{Content: "hi"}}); err != nil {
		t.Fatalf("update: %v", err)
	}
	slot, err := svc.GetSlot(ctx, "l1", "text")
	if err != nil {
		t.Fatalf("GetSlot: %v", err)
	}
	if slot.Text == nil || slot.Text.Content != "hi" {
		t.Errorf("slot = %+v", slot)
	}
}

func TestDeleteLessonPurgesBothStores(t *testing.T) {
	svc, table, snaps := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SaveLesson(ctx, "l1", saveReq("L")); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := svc.DeleteLesson(ctx, "l1"); err != nil {
		t.Fatalf("DeleteLesson: %v", err)
	}

	if got, _ := table.Get(ctx, "l1"); got != nil {
		t.Error("lesson still in memory table")
	}
	if _, err := snaps.Load(ctx, "l1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("snapshot still present: %v", err)
	}

	if err := svc.DeleteLesson(ctx, "l1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete: err = %v, want not found", err)
	}
}

type failingSnapshots struct {
	repositories.SnapshotStore
}

func (f *failingSnapshots) Save(_ context.Context, lesson *models.Lesson) error {
	return fmt.Errorf("disk full")
}

func TestSnapshotFailureFailsTheWrite(t *testing.T) {
	svc, _, snaps := newTestService(t)
	svc.snapshots = &failingSnapshots{SnapshotStore: snaps}

	_, err := svc.SaveLesson(context.Background(), "l1", saveReq("L"))

	var perr *domain.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want persistence error", err)
	}
	if perr.LessonID != "l1" || perr.Operation == "" {
		t.Errorf("persistence error missing context: %+v", perr)
	}
}
