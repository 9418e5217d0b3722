package services

import (
	"context"
	"sort"
	"sync"

	"github.com/sujankapadia/snaplist/logging"
	"github.com/sujankapadia/snaplist/models"
)

// Snapshot is the always-current pair of entity sets handed to the view
// engine. Tasks are in a canonical createdAt-then-id order so derivation is
// deterministic between republications.
type Snapshot struct {
	Tasks      []models.Task
	Categories []models.Category
}

// SyncService keeps one live session per user: a materialized in-memory copy
// of the user's tasks and categories, updated from the change streams and
// republished to subscribers on every committed event. The first load of a
// session runs the seeding check.
type SyncService struct {
	tasks      TaskStore
	categories *CategoryService
	streams    Streams

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSyncService(tasks TaskStore, categories *CategoryService, streams Streams) *SyncService {
	return &SyncService{
		tasks:      tasks,
		categories: categories,
		streams:    streams,
		sessions:   make(map[string]*Session),
	}
}

// Session returns the live session for userID, starting it on first use.
func (s *SyncService) Session(ctx context.Context, userID string) (*Session, error) {
	s.mu.Lock()
	if sess, ok := s.sessions[userID]; ok {
		s.mu.Unlock()
		return sess, nil
	}
	s.mu.Unlock()

	sess, err := s.start(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[userID]; ok {
		// Lost the race to another request; keep the first session.
		sess.Close()
		return existing, nil
	}
	s.sessions[userID] = sess
	return sess, nil
}

func (s *SyncService) start(ctx context.Context, userID string) (*Session, error) {
	if err := s.categories.SeedDefaults(ctx, userID); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	// The session outlives the request that created it.
	sessCtx, cancel := context.WithCancel(context.Background())

	taskEvents, err := s.streams.WatchTasks(sessCtx, userID)
	if err != nil {
		cancel()
		return nil, err
	}
	categoryEvents, err := s.streams.WatchCategories(sessCtx, userID)
	if err != nil {
		cancel()
		return nil, err
	}

	sess := &Session{
		userID:     userID,
		tasks:      make(map[string]models.Task, len(tasks)),
		categories: make(map[string]models.Category, len(categories)),
		cancel:     cancel,
	}
	for _, t := range tasks {
		sess.tasks[t.ID.Hex()] = t
	}
	for _, c := range categories {
		sess.categories[c.ID.Hex()] = c
	}

	go sess.runTasks(taskEvents)
	go sess.runCategories(categoryEvents)

	logging.Logger.Infof("Event ID: SYNC_SESSION_STARTED, Description: Live sync session started for user %s", userID)
	return sess, nil
}

// Close stops every live session. Used on shutdown.
func (s *SyncService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for userID, sess := range s.sessions {
		sess.Close()
		delete(s.sessions, userID)
	}
}

// Session is the per-user materialized state plus its fan-out list.
type Session struct {
	userID string
	cancel context.CancelFunc

	mu         sync.RWMutex
	tasks      map[string]models.Task
	categories map[string]models.Category
	subs       []chan Snapshot
}

func (sess *Session) Close() {
	sess.cancel()
}

// Snapshot returns the current entity sets.
func (sess *Session) Snapshot() Snapshot {
	sess.mu.RLock()
	defer sess.mu.RUnlock()
	return sess.snapshotLocked()
}

func (sess *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Tasks:      make([]models.Task, 0, len(sess.tasks)),
		Categories: make([]models.Category, 0, len(sess.categories)),
	}
	for _, t := range sess.tasks {
		snap.Tasks = append(snap.Tasks, t)
	}
	for _, c := range sess.categories {
		snap.Categories = append(snap.Categories, c)
	}
	sort.Slice(snap.Tasks, func(i, j int) bool {
		if !snap.Tasks[i].CreatedAt.Equal(snap.Tasks[j].CreatedAt) {
			return snap.Tasks[i].CreatedAt.Before(snap.Tasks[j].CreatedAt)
		}
		return snap.Tasks[i].ID.Hex() < snap.Tasks[j].ID.Hex()
	})
	sort.Slice(snap.Categories, func(i, j int) bool {
		return snap.Categories[i].Name < snap.Categories[j].Name
	})
	return snap
}

// Subscribe registers a listener for republished snapshots. The channel
// holds only the latest snapshot; a slow consumer sees the newest state, not
// every intermediate one.
func (sess *Session) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 1)
	sess.mu.Lock()
	sess.subs = append(sess.subs, ch)
	snap := sess.snapshotLocked()
	sess.mu.Unlock()
	ch <- snap
	return ch
}

// Unsubscribe removes a listener registered by Subscribe. Undelivered
// snapshots in its channel are abandoned with it.
func (sess *Session) Unsubscribe(ch <-chan Snapshot) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	for i, sub := range sess.subs {
		if sub == ch {
			sess.subs = append(sess.subs[:i], sess.subs[i+1:]...)
			return
		}
	}
}

func (sess *Session) runTasks(events <-chan models.TaskEvent) {
	for ev := range events {
		sess.mu.Lock()
		applyTaskEvent(sess.tasks, ev)
		sess.publishLocked()
		sess.mu.Unlock()
	}
}

func (sess *Session) runCategories(events <-chan models.CategoryEvent) {
	for ev := range events {
		sess.mu.Lock()
		applyCategoryEvent(sess.categories, ev)
		sess.publishLocked()
		sess.mu.Unlock()
	}
}

func (sess *Session) publishLocked() {
	snap := sess.snapshotLocked()
	for _, ch := range sess.subs {
		select {
		case ch <- snap:
		default:
			// Replace a stale undelivered snapshot with the current one.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

// applyTaskEvent folds one committed change into the materialized set.
// Deletes for other users' documents pass through the stream filter without
// a full document; they miss the map and are no-ops.
func applyTaskEvent(tasks map[string]models.Task, ev models.TaskEvent) {
	switch ev.Op {
	case models.OpInsert, models.OpUpdate, models.OpReplace:
		if ev.Task != nil {
			tasks[ev.ID] = *ev.Task
		}
	case models.OpDelete:
		delete(tasks, ev.ID)
	}
}

func applyCategoryEvent(categories map[string]models.Category, ev models.CategoryEvent) {
	switch ev.Op {
	case models.OpInsert, models.OpUpdate, models.OpReplace:
		if ev.Category != nil {
			categories[ev.ID] = *ev.Category
		}
	case models.OpDelete:
		delete(categories, ev.ID)
	}
}
