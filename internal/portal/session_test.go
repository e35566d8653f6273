package portal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/dmolenda/achievehub/internal/dto"
	"github.com/dmolenda/achievehub/internal/models"
	"github.com/google/uuid"
)

// fakeTransport mimics the server's dense-ordering semantics in memory.
// Commit runs concurrently, so every method takes the lock.
type fakeTransport struct {
	mu   sync.Mutex
	achs []models.Achievement

	failCreate map[string]error
	failUpdate map[uuid.UUID]error
	failDelete map[uuid.UUID]error
	failUpload map[uuid.UUID]error

	createCalls int
	updateCalls map[uuid.UUID]*dto.UpdateAchievementRequest
	deleteCalls []uuid.UUID
	uploads     map[uuid.UUID]string
}

func newFakeTransport(titles ...string) *fakeTransport {
	f := &fakeTransport{
		failCreate:  map[string]error{},
		failUpdate:  map[uuid.UUID]error{},
		failDelete:  map[uuid.UUID]error{},
		failUpload:  map[uuid.UUID]error{},
		updateCalls: map[uuid.UUID]*dto.UpdateAchievementRequest{},
		uploads:     map[uuid.UUID]string{},
	}
	for i, title := range titles {
		f.achs = append(f.achs, models.Achievement{
			ID:        uuid.New(),
			Title:     title,
			Type:      models.AchievementTypeMilestone,
			SortOrder: i + 1,
		})
	}
	return f
}

func (f *fakeTransport) ListAchievements(_ context.Context, _ uuid.UUID) ([]models.Achievement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Achievement, len(f.achs))
	copy(out, f.achs)
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (f *fakeTransport) CreateAchievement(_ context.Context, _ uuid.UUID, req *dto.CreateAchievementRequest) (*models.Achievement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if err := f.failCreate[req.Title]; err != nil {
		return nil, err
	}
	ach := models.Achievement{
		ID:           uuid.New(),
		Title:        req.Title,
		Description:  req.Description,
		Type:         req.Type,
		ProgressGoal: req.ProgressGoal,
		IsHidden:     req.IsHidden,
		SortOrder:    len(f.achs) + 1,
	}
	f.achs = append(f.achs, ach)
	return &ach, nil
}

func (f *fakeTransport) UpdateAchievement(_ context.Context, _ uuid.UUID, id uuid.UUID, req *dto.UpdateAchievementRequest) (*models.Achievement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls[id] = req
	if err := f.failUpdate[id]; err != nil {
		return nil, err
	}
	for i := range f.achs {
		if f.achs[i].ID != id {
			continue
		}
		if req.Title != nil {
			f.achs[i].Title = *req.Title
		}
		if req.Description != nil {
			f.achs[i].Description = *req.Description
		}
		if req.Type != nil {
			f.achs[i].Type = *req.Type
		}
		if req.ProgressGoal != nil {
			f.achs[i].ProgressGoal = *req.ProgressGoal
		}
		if req.IsHidden != nil {
			f.achs[i].IsHidden = *req.IsHidden
		}
		if req.Order != nil {
			f.achs[i].SortOrder = *req.Order
		}
		out := f.achs[i]
		return &out, nil
	}
	return nil, fmt.Errorf("achievement %s not found", id)
}

func (f *fakeTransport) DeleteAchievement(_ context.Context, _ uuid.UUID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, id)
	if err := f.failDelete[id]; err != nil {
		return err
	}
	for i := range f.achs {
		if f.achs[i].ID != id {
			continue
		}
		removed := f.achs[i].SortOrder
		f.achs = append(f.achs[:i], f.achs[i+1:]...)
		for j := range f.achs {
			if f.achs[j].SortOrder > removed {
				f.achs[j].SortOrder--
			}
		}
		return nil
	}
	return fmt.Errorf("achievement %s not found", id)
}

func (f *fakeTransport) UploadImage(_ context.Context, _ uuid.UUID, id uuid.UUID, filename string, _ []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failUpload[id]; err != nil {
		return "", err
	}
	f.uploads[id] = filename
	return "/uploads/achievements/" + filename, nil
}

func beginSession(t *testing.T, fake *fakeTransport) *Session {
	t.Helper()
	s := NewSession(fake, uuid.New())
	if err := s.Begin(context.Background()); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	return s
}

func strptr(s string) *string { return &s }

func TestSessionRoundTrip(t *testing.T) {
	fake := newFakeTransport("a", "b", "c")
	s := beginSession(t, fake)

	items := s.Items()
	if err := s.Edit(items[1].Key, FieldChange{Title: strptr("b2")}); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if err := s.Remove(items[2].Key); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	key := s.Add()
	if err := s.Edit(key, FieldChange{Title: strptr("d")}); err != nil {
		t.Fatalf("Edit draft: %v", err)
	}

	if !s.Dirty() {
		t.Fatalf("session not dirty after edits")
	}

	result, err := s.Commit(context.Background())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !result.AllOK() {
		t.Fatalf("unexpected failures: %+v", result.Failed)
	}

	// Only the changed item was updated; "a" was untouched.
	if fake.createCalls != 1 {
		t.Fatalf("create calls = %d, want 1", fake.createCalls)
	}
	if len(fake.deleteCalls) != 1 || fake.deleteCalls[0] != items[2].Key.id {
		t.Fatalf("delete calls = %v, want [%s]", fake.deleteCalls, items[2].Key.id)
	}
	if _, touched := fake.updateCalls[items[0].Key.id]; touched {
		t.Fatalf("unchanged item was sent to the server")
	}
	if _, touched := fake.updateCalls[items[1].Key.id]; !touched {
		t.Fatalf("changed item was not sent to the server")
	}

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	after := s.Items()
	if len(after) != 3 {
		t.Fatalf("items after refresh = %d, want 3", len(after))
	}
	for i, it := range after {
		if it.Order != i+1 {
			t.Fatalf("rank at index %d = %d, want %d", i, it.Order, i+1)
		}
		if it.Key.IsDraft() {
			t.Fatalf("draft key survived refresh: %s", it.Key)
		}
	}
	if s.Dirty() {
		t.Fatalf("session dirty after refresh")
	}
}

func TestCommitPartialFailure(t *testing.T) {
	fake := newFakeTransport("a", "b", "c")
	s := beginSession(t, fake)
	items := s.Items()

	// Five operations: one delete, two updates, two creates. One update and
	// one create are made to fail.
	if err := s.Remove(items[0].Key); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := s.Edit(items[1].Key, FieldChange{Title: strptr("b2")}); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if err := s.Edit(items[2].Key, FieldChange{Title: strptr("c2")}); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	k1 := s.Add()
	if err := s.Edit(k1, FieldChange{Title: strptr("new-ok")}); err != nil {
		t.Fatalf("Edit draft: %v", err)
	}
	k2 := s.Add()
	if err := s.Edit(k2, FieldChange{Title: strptr("new-bad")}); err != nil {
		t.Fatalf("Edit draft: %v", err)
	}

	fake.failUpdate[items[1].Key.id] = errors.New("boom")
	fake.failCreate["new-bad"] = errors.New("boom")

	result, err := s.Commit(context.Background())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if len(result.Failed) != 2 {
		t.Fatalf("failed = %d (%+v), want 2", len(result.Failed), result.Failed)
	}
	if len(result.Succeeded) != 3 {
		t.Fatalf("succeeded = %d (%v), want 3", len(result.Succeeded), result.Succeeded)
	}
	for _, fail := range result.Failed {
		switch fail.Op {
		case OpUpdate:
			if fail.Key != items[1].Key {
				t.Fatalf("failed update key = %s, want %s", fail.Key, items[1].Key)
			}
		case OpCreate:
			if fail.Key != k2 {
				t.Fatalf("failed create key = %s, want %s", fail.Key, k2)
			}
		default:
			t.Fatalf("unexpected failed op %s", fail.Op)
		}
		if fail.Err == nil {
			t.Fatalf("failure without error attached")
		}
	}

	// The independent operations went through despite the failures.
	achs, _ := fake.ListAchievements(context.Background(), uuid.Nil)
	titles := map[string]bool{}
	for _, a := range achs {
		titles[a.Title] = true
	}
	if titles["a"] {
		t.Fatalf("deleted item still present after commit")
	}
	if !titles["c2"] || !titles["new-ok"] {
		t.Fatalf("successful operations missing from server state: %v", titles)
	}
}

func TestMoveRenumbersDraft(t *testing.T) {
	fake := newFakeTransport("a", "b", "c", "d", "e")
	s := beginSession(t, fake)
	items := s.Items()

	if err := s.Move(items[4].Key, 2); err != nil {
		t.Fatalf("Move: %v", err)
	}

	after := s.Items()
	want := []string{"a", "e", "b", "c", "d"}
	for i, it := range after {
		if it.Title != want[i] {
			t.Fatalf("titles after move = %v, want %v", titles(after), want)
		}
		if it.Order != i+1 {
			t.Fatalf("rank at index %d = %d, want %d", i, it.Order, i+1)
		}
	}

	if err := s.Move(items[0].Key, 6); err == nil {
		t.Fatalf("out-of-range move accepted")
	}
}

func TestRemoveDraftNeverCallsDelete(t *testing.T) {
	fake := newFakeTransport("a")
	s := beginSession(t, fake)

	key := s.Add()
	if err := s.Remove(key); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if s.Dirty() {
		t.Fatalf("session dirty after removing an unsaved draft")
	}

	result, err := s.Commit(context.Background())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if len(fake.deleteCalls) != 0 {
		t.Fatalf("delete calls = %v, want none", fake.deleteCalls)
	}
	if fake.createCalls != 0 {
		t.Fatalf("create calls = %d, want 0", fake.createCalls)
	}
	if !result.AllOK() {
		t.Fatalf("unexpected failures: %+v", result.Failed)
	}
}

func TestEditTypeChangeResetsGoal(t *testing.T) {
	fake := newFakeTransport()
	s := beginSession(t, fake)

	key := s.Add()
	goal := 10
	if err := s.Edit(key, FieldChange{ProgressGoal: &goal}); err != nil {
		t.Fatalf("Edit: %v", err)
	}

	milestone := models.AchievementTypeMilestone
	if err := s.Edit(key, FieldChange{Type: &milestone}); err != nil {
		t.Fatalf("Edit type: %v", err)
	}

	it := s.Items()[0]
	if it.ProgressGoal != 1 {
		t.Fatalf("goal after type change = %d, want 1", it.ProgressGoal)
	}

	// Milestone items ignore goal edits.
	if err := s.Edit(key, FieldChange{ProgressGoal: &goal}); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if got := s.Items()[0].ProgressGoal; got != 1 {
		t.Fatalf("milestone goal = %d, want 1", got)
	}

	bogus := "weekly"
	if err := s.Edit(key, FieldChange{Type: &bogus}); err == nil {
		t.Fatalf("unknown type accepted")
	}
}

func TestStagedImageUploadsAfterCreate(t *testing.T) {
	fake := newFakeTransport()
	s := beginSession(t, fake)

	key := s.Add()
	if err := s.Edit(key, FieldChange{Title: strptr("with-image")}); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if err := s.StageImage(key, "icon.png", []byte{0x89, 0x50}); err != nil {
		t.Fatalf("StageImage: %v", err)
	}

	result, err := s.Commit(context.Background())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !result.AllOK() {
		t.Fatalf("unexpected failures: %+v", result.Failed)
	}

	if len(fake.uploads) != 1 {
		t.Fatalf("uploads = %d, want 1", len(fake.uploads))
	}
	for id, name := range fake.uploads {
		if name != "icon.png" {
			t.Fatalf("uploaded name = %q, want icon.png", name)
		}
		found := false
		for _, a := range fake.achs {
			if a.ID == id {
				found = true
			}
		}
		if !found {
			t.Fatalf("upload used an id the server never issued")
		}
	}
}

func TestUploadFailureDoesNotRollBackItem(t *testing.T) {
	fake := newFakeTransport("a")
	s := beginSession(t, fake)
	items := s.Items()

	if err := s.Edit(items[0].Key, FieldChange{Title: strptr("a2")}); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if err := s.StageImage(items[0].Key, "icon.png", []byte{1}); err != nil {
		t.Fatalf("StageImage: %v", err)
	}
	fake.failUpload[items[0].Key.id] = errors.New("blob store down")

	result, err := s.Commit(context.Background())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if len(result.Succeeded) != 1 {
		t.Fatalf("succeeded = %v, want the updated item", result.Succeeded)
	}
	if len(result.Failed) != 1 || result.Failed[0].Op != OpUpload {
		t.Fatalf("failed = %+v, want one upload failure", result.Failed)
	}

	achs, _ := fake.ListAchievements(context.Background(), uuid.Nil)
	if achs[0].Title != "a2" {
		t.Fatalf("field update rolled back by upload failure")
	}
}

func titles(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}
