package account

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lingokids/lingo/internal/notify"
	"github.com/lingokids/lingo/internal/storage"
)

// The fixed identity returned by SocialLogin.
const (
	SocialEmail    = "little.explorer@gmail.com"
	SocialName     = "Little Explorer"
	SocialGoogleID = "google-oauth2-104729"
)

// Store holds the account list and the signed-in account. Reads are
// served from memory; every mutation is written through to the KV.
// Write failures are logged and the in-memory state is kept.
type Store struct {
	mu       sync.Mutex
	kv       storage.KV
	accounts []Account
	current  int // index into accounts, -1 when signed out

	changes notify.Hub[*Account]
	logger  *log.Logger
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open loads the store from kv. Unreadable data is logged and treated as
// empty.
func Open(ctx context.Context, kv storage.KV, opts ...Option) *Store {
	s := &Store{kv: kv, current: -1, logger: log.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.mu.Lock()
	s.load(ctx)
	s.mu.Unlock()
	return s
}

// Reload re-reads the persisted state, replacing what is in memory, and
// notifies subscribers.
func (s *Store) Reload(ctx context.Context) {
	s.mu.Lock()
	s.load(ctx)
	cur := s.currentLocked()
	s.mu.Unlock()
	s.changes.Publish(cur)
}

// Watcher reports changes to the backing store made elsewhere.
type Watcher interface {
	Watch(ctx context.Context, onChange func()) error
}

// Follow reloads the store every time w reports a change, until ctx is
// done.
func (s *Store) Follow(ctx context.Context, w Watcher) error {
	return w.Watch(ctx, func() { s.Reload(ctx) })
}

// Subscribe registers fn to receive the signed-in account after every
// change, or nil after a logout.
func (s *Store) Subscribe(fn func(*Account)) (unsubscribe func()) {
	return s.changes.Subscribe(fn)
}

// Current returns the signed-in account.
func (s *Store) Current() (Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current < 0 {
		return Account{}, false
	}
	return s.accounts[s.current].clone(), true
}

// Accounts returns every known account.
func (s *Store) Accounts() []Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Account, len(s.accounts))
	for i, a := range s.accounts {
		out[i] = a.clone()
	}
	return out
}

// Signup creates an account with no profiles and signs it in.
func (s *Store) Signup(ctx context.Context, name, email, password string) (Account, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || password == "" {
		return Account{}, ErrMissingCredentials
	}
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	s.mu.Lock()
	if s.find(email) >= 0 {
		s.mu.Unlock()
		return Account{}, ErrEmailInUse
	}
	s.accounts = append(s.accounts, Account{Email: email, Password: password, Name: name, Profiles: []Profile{}})
	s.current = len(s.accounts) - 1
	a := s.commit(ctx)
	s.mu.Unlock()

	s.logger.Info("account created", "email", email)
	s.changes.Publish(a)
	return a.clone(), nil
}

// Login signs in the account whose email matches case-insensitively and
// whose password matches exactly.
func (s *Store) Login(ctx context.Context, email, password string) (Account, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Account{}, ErrMissingCredentials
	}

	s.mu.Lock()
	i := s.find(email)
	if i < 0 || s.accounts[i].Password == "" || s.accounts[i].Password != password {
		s.mu.Unlock()
		return Account{}, ErrInvalidCredentials
	}
	s.current = i
	a := s.commit(ctx)
	s.mu.Unlock()

	s.logger.Debug("logged in", "email", a.Email)
	s.changes.Publish(a)
	return a.clone(), nil
}

// SocialLogin signs in the fixed social identity, creating it on first
// use.
func (s *Store) SocialLogin(ctx context.Context) (Account, error) {
	s.mu.Lock()
	i := s.find(SocialEmail)
	if i < 0 {
		s.accounts = append(s.accounts, Account{
			Email:    SocialEmail,
			GoogleID: SocialGoogleID,
			Name:     SocialName,
			Profiles: []Profile{},
		})
		i = len(s.accounts) - 1
	} else if s.accounts[i].GoogleID == "" {
		s.accounts[i].GoogleID = SocialGoogleID
	}
	s.current = i
	a := s.commit(ctx)
	s.mu.Unlock()

	s.changes.Publish(a)
	return a.clone(), nil
}

// Logout clears the signed-in account.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.current = -1
	if err := s.kv.Delete(ctx, KeyCurrent); err != nil {
		s.logger.Warn("clearing current account", "err", err)
	}
	s.mu.Unlock()

	s.changes.Publish(nil)
}

// mutate applies fn to the signed-in account and persists the result.
func (s *Store) mutate(ctx context.Context, fn func(a *Account) error) (Account, error) {
	s.mu.Lock()
	if s.current < 0 {
		s.mu.Unlock()
		return Account{}, ErrNotLoggedIn
	}
	if err := fn(&s.accounts[s.current]); err != nil {
		s.mu.Unlock()
		return Account{}, err
	}
	a := s.commit(ctx)
	s.mu.Unlock()

	s.changes.Publish(a)
	return a.clone(), nil
}

// find returns the index of the account with email, ignoring case. The
// caller holds s.mu.
func (s *Store) find(email string) int {
	for i, a := range s.accounts {
		if strings.EqualFold(a.Email, email) {
			return i
		}
	}
	return -1
}

func (s *Store) currentLocked() *Account {
	if s.current < 0 {
		return nil
	}
	a := s.accounts[s.current].clone()
	return &a
}

// commit writes the full account list and the current snapshot, and
// returns a copy of the current account. The caller holds s.mu.
func (s *Store) commit(ctx context.Context) *Account {
	s.put(ctx, KeyAccounts, s.accounts)
	cur := s.currentLocked()
	if cur != nil {
		s.put(ctx, KeyCurrent, cur)
	}
	return cur
}

func (s *Store) put(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err == nil {
		err = s.kv.Set(ctx, key, raw)
	}
	if err != nil {
		s.logger.Warn("persisting account data", "key", key, "err", err)
	}
}

// load replaces the in-memory state with what the KV holds. The caller
// holds s.mu.
func (s *Store) load(ctx context.Context) {
	s.accounts = nil
	s.current = -1

	if raw, ok := s.get(ctx, KeyAccounts); ok {
		if err := json.Unmarshal(raw, &s.accounts); err != nil {
			s.logger.Warn("discarding unreadable account list", "err", err)
			s.accounts = nil
		}
	}

	raw, ok := s.get(ctx, KeyCurrent)
	if !ok {
		return
	}
	var snap Account
	if err := json.Unmarshal(raw, &snap); err != nil {
		s.logger.Warn("discarding unreadable session", "err", err)
		return
	}
	if i := s.find(snap.Email); i >= 0 {
		s.current = i
		return
	}
	// the snapshot outlived the list; keep it
	s.accounts = append(s.accounts, snap)
	s.current = len(s.accounts) - 1
}

func (s *Store) get(ctx context.Context, key string) ([]byte, bool) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.Warn("reading account data", "key", key, "err", err)
		return nil, false
	}
	return raw, ok
}
