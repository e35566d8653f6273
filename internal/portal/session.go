package portal

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmolenda/achievehub/internal/dto"
	"github.com/dmolenda/achievehub/internal/models"
	"github.com/google/uuid"
)

// ItemKey identifies an item in the draft. Persisted items carry the server
// id; items created locally carry a temporary tag until the first successful
// commit assigns them a real id.
type ItemKey struct {
	id   uuid.UUID
	temp string
}

func PersistedKey(id uuid.UUID) ItemKey {
	return ItemKey{id: id}
}

func (k ItemKey) IsDraft() bool {
	return k.temp != ""
}

// ID returns the server id of a persisted key. The second return is false for
// draft keys.
func (k ItemKey) ID() (uuid.UUID, bool) {
	if k.IsDraft() {
		return uuid.Nil, false
	}
	return k.id, true
}

func (k ItemKey) String() string {
	if k.IsDraft() {
		return k.temp
	}
	return k.id.String()
}

// Item is one achievement as held in the draft. Order is 1-based and kept
// dense by the session after every structural edit.
type Item struct {
	Key          ItemKey
	Title        string
	Description  string
	Type         string
	ProgressGoal int
	IsHidden     bool
	ImageURL     string
	Order        int

	imageName string
	imageData []byte
}

// FieldChange is a partial edit of an item. Nil fields are left untouched.
type FieldChange struct {
	Title        *string
	Description  *string
	Type         *string
	ProgressGoal *int
	IsHidden     *bool
}

type CommitOp string

const (
	OpCreate CommitOp = "create"
	OpUpdate CommitOp = "update"
	OpDelete CommitOp = "delete"
	OpUpload CommitOp = "upload"
)

type CommitFailure struct {
	Key ItemKey
	Op  CommitOp
	Err error
}

// CommitResult partitions the outcome of a commit. A failed image upload is
// reported under Failed while the owning item still counts as succeeded.
type CommitResult struct {
	Succeeded []ItemKey
	Failed    []CommitFailure
}

func (r *CommitResult) AllOK() bool {
	return len(r.Failed) == 0
}

// Session is an edit session over one list. It keeps the last server snapshot
// and a local draft; Commit sends only the difference between the two and
// never fails fast on a single item.
type Session struct {
	api     Transport
	listID  uuid.UUID
	started bool

	snapshot map[uuid.UUID]models.Achievement
	items    []*Item
	deleted  []uuid.UUID
	tempSeq  int
}

func NewSession(api Transport, listID uuid.UUID) *Session {
	return &Session{api: api, listID: listID}
}

// Begin loads the server state and initializes the draft from it.
func (s *Session) Begin(ctx context.Context) error {
	achs, err := s.api.ListAchievements(ctx, s.listID)
	if err != nil {
		return fmt.Errorf("failed to load list: %w", err)
	}
	s.load(achs)
	s.started = true
	return nil
}

// Refresh discards the draft and reloads from the server. Called after every
// commit attempt so the server remains the source of truth.
func (s *Session) Refresh(ctx context.Context) error {
	return s.Begin(ctx)
}

func (s *Session) load(achs []models.Achievement) {
	s.snapshot = make(map[uuid.UUID]models.Achievement, len(achs))
	s.items = make([]*Item, 0, len(achs))
	s.deleted = nil
	for _, a := range achs {
		s.snapshot[a.ID] = a
		s.items = append(s.items, &Item{
			Key:          PersistedKey(a.ID),
			Title:        a.Title,
			Description:  a.Description,
			Type:         a.Type,
			ProgressGoal: a.ProgressGoal,
			IsHidden:     a.IsHidden,
			ImageURL:     a.ImageURL,
			Order:        a.SortOrder,
		})
	}
	s.renumber()
}

// Items returns the draft in display order.
func (s *Session) Items() []Item {
	out := make([]Item, len(s.items))
	for i, it := range s.items {
		out[i] = *it
	}
	return out
}

// Add appends a blank draft item and returns its key.
func (s *Session) Add() ItemKey {
	s.tempSeq++
	key := ItemKey{temp: fmt.Sprintf("draft-%d", s.tempSeq)}
	s.items = append(s.items, &Item{
		Key:          key,
		Type:         models.AchievementTypeProgress,
		ProgressGoal: 1,
		Order:        len(s.items) + 1,
	})
	return key
}

// Edit applies a partial change to an item. Changing the type resets
// ProgressGoal to 1 unless the change sets a goal of its own.
func (s *Session) Edit(key ItemKey, change FieldChange) error {
	it, err := s.find(key)
	if err != nil {
		return err
	}

	if change.Type != nil && *change.Type != it.Type {
		if !models.ValidType(*change.Type) {
			return fmt.Errorf("unknown achievement type %q", *change.Type)
		}
		it.Type = *change.Type
		it.ProgressGoal = 1
	}
	if change.Title != nil {
		it.Title = *change.Title
	}
	if change.Description != nil {
		it.Description = *change.Description
	}
	if change.ProgressGoal != nil && it.Type == models.AchievementTypeProgress {
		it.ProgressGoal = *change.ProgressGoal
	}
	if change.IsHidden != nil {
		it.IsHidden = *change.IsHidden
	}
	return nil
}

// StageImage attaches image bytes to an item. The upload runs during Commit,
// after the item itself has been persisted.
func (s *Session) StageImage(key ItemKey, filename string, data []byte) error {
	it, err := s.find(key)
	if err != nil {
		return err
	}
	it.imageName = filename
	it.imageData = data
	return nil
}

// Move places an item at the 1-based position pos and renumbers the draft.
func (s *Session) Move(key ItemKey, pos int) error {
	idx := s.index(key)
	if idx < 0 {
		return fmt.Errorf("no draft item with key %s", key)
	}
	if pos < 1 || pos > len(s.items) {
		return fmt.Errorf("position %d out of range 1..%d", pos, len(s.items))
	}

	it := s.items[idx]
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	rest := make([]*Item, 0, len(s.items)+1)
	rest = append(rest, s.items[:pos-1]...)
	rest = append(rest, it)
	rest = append(rest, s.items[pos-1:]...)
	s.items = rest
	s.renumber()
	return nil
}

// Remove drops an item from the draft. A persisted item is queued for
// deletion at the next commit; a local draft simply disappears.
func (s *Session) Remove(key ItemKey) error {
	idx := s.index(key)
	if idx < 0 {
		return fmt.Errorf("no draft item with key %s", key)
	}

	if id, ok := key.ID(); ok {
		s.deleted = append(s.deleted, id)
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.renumber()
	return nil
}

// Dirty reports whether the draft differs from the snapshot.
func (s *Session) Dirty() bool {
	if len(s.deleted) > 0 {
		return true
	}
	for _, it := range s.items {
		if it.Key.IsDraft() {
			return true
		}
		id, _ := it.Key.ID()
		if s.diff(it, s.snapshot[id]) != nil {
			return true
		}
	}
	return false
}

// Commit pushes the draft to the server. Deletes run first as their own
// concurrent phase, then creates and updates run concurrently. Every item is
// attempted regardless of other failures; the result carries both partitions.
func (s *Session) Commit(ctx context.Context) (*CommitResult, error) {
	if !s.started {
		return nil, fmt.Errorf("session not started")
	}

	result := &CommitResult{}
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, id := range s.deleted {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			err := s.api.DeleteAchievement(ctx, s.listID, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, CommitFailure{Key: PersistedKey(id), Op: OpDelete, Err: err})
			} else {
				result.Succeeded = append(result.Succeeded, PersistedKey(id))
			}
		}(id)
	}
	wg.Wait()

	for _, it := range s.items {
		if it.Key.IsDraft() {
			wg.Add(1)
			go func(it *Item) {
				defer wg.Done()
				s.commitCreate(ctx, it, result, &mu)
			}(it)
			continue
		}

		id, _ := it.Key.ID()
		req := s.diff(it, s.snapshot[id])
		if req == nil && it.imageData == nil {
			continue
		}
		wg.Add(1)
		go func(it *Item, id uuid.UUID, req *dto.UpdateAchievementRequest) {
			defer wg.Done()
			s.commitUpdate(ctx, it, id, req, result, &mu)
		}(it, id, req)
	}
	wg.Wait()

	return result, nil
}

func (s *Session) commitCreate(ctx context.Context, it *Item, result *CommitResult, mu *sync.Mutex) {
	created, err := s.api.CreateAchievement(ctx, s.listID, &dto.CreateAchievementRequest{
		Title:        it.Title,
		Description:  it.Description,
		Type:         it.Type,
		ProgressGoal: it.ProgressGoal,
		IsHidden:     it.IsHidden,
	})
	mu.Lock()
	if err != nil {
		result.Failed = append(result.Failed, CommitFailure{Key: it.Key, Op: OpCreate, Err: err})
		mu.Unlock()
		return
	}
	result.Succeeded = append(result.Succeeded, it.Key)
	mu.Unlock()

	s.uploadStaged(ctx, it, created.ID, result, mu)
}

func (s *Session) commitUpdate(ctx context.Context, it *Item, id uuid.UUID, req *dto.UpdateAchievementRequest, result *CommitResult, mu *sync.Mutex) {
	if req != nil {
		_, err := s.api.UpdateAchievement(ctx, s.listID, id, req)
		mu.Lock()
		if err != nil {
			result.Failed = append(result.Failed, CommitFailure{Key: it.Key, Op: OpUpdate, Err: err})
			mu.Unlock()
			return
		}
		result.Succeeded = append(result.Succeeded, it.Key)
		mu.Unlock()
	}

	s.uploadStaged(ctx, it, id, result, mu)
}

func (s *Session) uploadStaged(ctx context.Context, it *Item, id uuid.UUID, result *CommitResult, mu *sync.Mutex) {
	if it.imageData == nil {
		return
	}
	_, err := s.api.UploadImage(ctx, s.listID, id, it.imageName, it.imageData)
	if err != nil {
		mu.Lock()
		result.Failed = append(result.Failed, CommitFailure{Key: it.Key, Op: OpUpload, Err: err})
		mu.Unlock()
	}
}

// diff builds the minimal update request against the snapshot, or nil when
// nothing changed.
func (s *Session) diff(it *Item, snap models.Achievement) *dto.UpdateAchievementRequest {
	req := &dto.UpdateAchievementRequest{}
	changed := false

	if it.Title != snap.Title {
		req.Title = &it.Title
		changed = true
	}
	if it.Description != snap.Description {
		req.Description = &it.Description
		changed = true
	}
	if it.Type != snap.Type {
		req.Type = &it.Type
		changed = true
	}
	if it.ProgressGoal != snap.ProgressGoal {
		req.ProgressGoal = &it.ProgressGoal
		changed = true
	}
	if it.IsHidden != snap.IsHidden {
		req.IsHidden = &it.IsHidden
		changed = true
	}
	if it.Order != snap.SortOrder {
		req.Order = &it.Order
		changed = true
	}

	if !changed {
		return nil
	}
	return req
}

func (s *Session) renumber() {
	for i, it := range s.items {
		it.Order = i + 1
	}
}

func (s *Session) find(key ItemKey) (*Item, error) {
	idx := s.index(key)
	if idx < 0 {
		return nil, fmt.Errorf("no draft item with key %s", key)
	}
	return s.items[idx], nil
}

func (s *Session) index(key ItemKey) int {
	for i, it := range s.items {
		if it.Key == key {
			return i
		}
	}
	return -1
}
