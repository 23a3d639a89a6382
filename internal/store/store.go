// Package store is the shared in-memory repository for accounts,
// sessions and content. Every operation runs under one exclusive
// process-wide mutex held for its full duration; there are no
// multi-operation transactions and no finer-grained locking. All state
// is lost at process exit; persistence is deliberately out of scope.
package store

import (
	"io"
	"log/slog"
	"sort"
	"sync"

	"linguahub/pkg/types"
)

// SessionPolicy decides what happens when a user logs in while an
// earlier session for the same username is still live.
type SessionPolicy string

const (
	// PolicyReplace silently evicts the earlier session. The evicted
	// connection gets no notice. This is the default.
	PolicyReplace SessionPolicy = "replace"

	// PolicyReject fails the second login while a session is live.
	PolicyReject SessionPolicy = "reject"
)

// Valid reports whether p is a known policy.
func (p SessionPolicy) Valid() bool {
	return p == PolicyReplace || p == PolicyReject
}

// Options configures a Store. Zero values fall back to a no-op logger,
// the default hasher and the replace policy.
type Options struct {
	Logger        *slog.Logger
	Hasher        PasswordHasher
	SessionPolicy SessionPolicy
}

// Store holds all shared mutable state. Connections and dispatchers
// only ever hold username references into it, never direct record
// access; every mutation goes through a method here.
type Store struct {
	mu sync.Mutex

	log    *slog.Logger
	hasher PasswordHasher
	policy SessionPolicy

	users     map[string]*types.UserRecord
	sessions  map[string]*types.Session // username -> session
	connUsers map[string]string         // connection ID -> username
	lessons   map[types.Level][]types.LessonEntry
	feedback  map[string][]types.FeedbackEntry
	gameItems map[string][]types.GameItem
}

// New creates a Store seeded with the lesson catalogue and the
// bootstrap admin and teacher accounts.
func New(opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Hasher == nil {
		opts.Hasher = DefaultHasher()
	}
	if !opts.SessionPolicy.Valid() {
		opts.SessionPolicy = PolicyReplace
	}

	s := &Store{
		log:       opts.Logger,
		hasher:    opts.Hasher,
		policy:    opts.SessionPolicy,
		users:     make(map[string]*types.UserRecord),
		sessions:  make(map[string]*types.Session),
		connUsers: make(map[string]string),
		lessons:   make(map[types.Level][]types.LessonEntry),
		feedback:  make(map[string][]types.FeedbackEntry),
		gameItems: make(map[string][]types.GameItem),
	}
	s.seed()
	return s
}

// seed installs the static lesson catalogue and the two bootstrap
// accounts. Runs before the store is shared, so no locking.
func (s *Store) seed() {
	s.lessons[types.LevelBeginner] = []types.LessonEntry{
		{ID: "lesson_b1", Title: "Greetings and Introductions"},
		{ID: "lesson_b2", Title: "Numbers and Time"},
		{ID: "lesson_b3", Title: "Family and Friends"},
	}
	s.lessons[types.LevelIntermediate] = []types.LessonEntry{
		{ID: "lesson_i1", Title: "Travel and Transportation"},
		{ID: "lesson_i2", Title: "Food and Cooking"},
		{ID: "lesson_i3", Title: "Work and Career"},
	}
	s.lessons[types.LevelAdvanced] = []types.LessonEntry{
		{ID: "lesson_a1", Title: "Business Communication"},
		{ID: "lesson_a2", Title: "Academic Writing"},
		{ID: "lesson_a3", Title: "Cultural Studies"},
	}

	for _, u := range []struct {
		name, password string
		role           types.Role
	}{
		{"admin", "admin123", types.RoleAdmin},
		{"teacher1", "teacher123", types.RoleTeacher},
	} {
		s.users[u.name] = &types.UserRecord{
			Username:     u.name,
			PasswordHash: s.hasher.Hash(u.password),
			Role:         u.role,
			Level:        types.LevelBeginner,
		}
	}
}

// CreateUser registers a new account at beginner level with zero score.
func (s *Store) CreateUser(username, password string, role types.Role) error {
	if err := types.ValidateUsername(username); err != nil {
		return err
	}
	if err := types.ValidatePassword(password); err != nil {
		return err
	}
	if !role.Valid() {
		return types.ErrInvalidRole
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[username]; exists {
		return ErrUserExists
	}
	s.users[username] = &types.UserRecord{
		Username:     username,
		PasswordHash: s.hasher.Hash(password),
		Role:         role,
		Level:        types.LevelBeginner,
	}
	s.log.Info("user created", "username", username, "role", role.String())
	return nil
}

// Authenticate verifies a username/password pair and returns a copy of
// the matching record. Unknown users and wrong passwords are
// indistinguishable to the caller.
func (s *Store) Authenticate(username, password string) (types.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[username]
	if !exists || u.PasswordHash != s.hasher.Hash(password) {
		return types.UserRecord{}, ErrInvalidCredentials
	}
	return *u, nil
}

// UserExists reports whether an account is registered.
func (s *Store) UserExists(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.users[username]
	return exists
}

// GetUser returns a copy of an account record.
func (s *Store) GetUser(username string) (types.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[username]
	if !exists {
		return types.UserRecord{}, ErrUserNotFound
	}
	return *u, nil
}

// SetLevel updates an account's proficiency level.
func (s *Store) SetLevel(username string, level types.Level) error {
	if !level.Valid() {
		return types.ErrInvalidLevel
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[username]
	if !exists {
		return ErrUserNotFound
	}
	u.Level = level
	s.log.Info("level updated", "username", username, "level", level.String())
	return nil
}

// AddScore increments an account's score and returns the new total.
func (s *Store) AddScore(username string, points int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[username]
	if !exists {
		return 0, ErrUserNotFound
	}
	u.Score += points
	s.log.Debug("score updated", "username", username, "points", points, "total", u.Score)
	return u.Score, nil
}

// Score returns an account's current aggregate score.
func (s *Store) Score(username string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[username]
	if !exists {
		return 0, ErrUserNotFound
	}
	return u.Score, nil
}

// CreateSession binds an authenticated identity to a connection. Under
// PolicyReplace an existing session for the same username is evicted;
// under PolicyReject the call fails while one is live.
func (s *Store) CreateSession(username, connectionID string) (types.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[username]
	if !exists {
		return types.Session{}, ErrUserNotFound
	}

	if old, live := s.sessions[username]; live {
		if s.policy == PolicyReject {
			return types.Session{}, ErrSessionExists
		}
		delete(s.connUsers, old.ConnectionID)
		s.log.Info("session evicted", "username", username, "connection_id", old.ConnectionID)
	}

	sess := &types.Session{
		Username:     username,
		Role:         u.Role,
		Level:        u.Level,
		ConnectionID: connectionID,
	}
	s.sessions[username] = sess
	s.connUsers[connectionID] = username
	s.log.Info("session created", "username", username, "connection_id", connectionID)
	return *sess, nil
}

// RemoveSession drops a user's session. Safe to call when none exists.
func (s *Store) RemoveSession(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.sessions[username]
	if !exists {
		return false
	}
	delete(s.connUsers, sess.ConnectionID)
	delete(s.sessions, username)
	s.log.Info("session removed", "username", username)
	return true
}

// RemoveSessionByConn drops the session bound to a connection, if any,
// returning the username it belonged to.
func (s *Store) RemoveSessionByConn(connectionID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	username, exists := s.connUsers[connectionID]
	if !exists {
		return "", false
	}
	delete(s.connUsers, connectionID)
	delete(s.sessions, username)
	s.log.Info("session removed", "username", username, "connection_id", connectionID)
	return username, true
}

// SessionByUsername looks up a live session by username.
func (s *Store) SessionByUsername(username string) (types.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.sessions[username]
	if !exists {
		return types.Session{}, ErrSessionNotFound
	}
	return *sess, nil
}

// SessionByConn looks up a live session by connection identity.
func (s *Store) SessionByConn(connectionID string) (types.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	username, exists := s.connUsers[connectionID]
	if !exists {
		return types.Session{}, ErrSessionNotFound
	}
	return *s.sessions[username], nil
}

// OnlineUsers lists usernames with live sessions, sorted for stable
// output.
func (s *Store) OnlineUsers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]string, 0, len(s.sessions))
	for username := range s.sessions {
		users = append(users, username)
	}
	sort.Strings(users)
	return users
}

// Lessons returns the catalogue entries for a proficiency level.
func (s *Store) Lessons(level types.Level) []types.LessonEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.lessons[level]
	out := make([]types.LessonEntry, len(entries))
	copy(out, entries)
	return out
}

// LessonContent returns the content body for a lesson id, searching the
// whole catalogue.
func (s *Store) LessonContent(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entries := range s.lessons {
		for _, e := range entries {
			if e.ID == id {
				return "Content for lesson: " + e.Title, nil
			}
		}
	}
	return "", ErrLessonNotFound
}

// AddFeedback appends a feedback entry to its recipient's list.
func (s *Store) AddFeedback(entry types.FeedbackEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.feedback[entry.Recipient] = append(s.feedback[entry.Recipient], entry)
	s.log.Info("feedback saved", "recipient", entry.Recipient, "author", entry.Author)
}

// FeedbackFor returns all feedback entries for a recipient in append
// order.
func (s *Store) FeedbackFor(username string) []types.FeedbackEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.feedback[username]
	out := make([]types.FeedbackEntry, len(entries))
	copy(out, entries)
	return out
}

// AddGameItem appends an item to a game category.
func (s *Store) AddGameItem(category, data string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gameItems[category] = append(s.gameItems[category], types.GameItem{Category: category, Data: data})
	s.log.Info("game item added", "category", category)
}

// GameItems returns the items of a category in append order.
func (s *Store) GameItems(category string) []types.GameItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.gameItems[category]
	out := make([]types.GameItem, len(items))
	copy(out, items)
	return out
}
