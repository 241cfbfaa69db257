// Package session holds the process-wide console session: who is logged in,
// which hotel is active and which hotels the identity may access.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/session/entity"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/session/repo"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/pkg/utilities"
)

var (
	ErrNotLoggedIn   = errors.New("not logged in")
	ErrInvalidLogin  = errors.New("credential and identity are required")
	ErrNoAffiliation = errors.New("identity has no hotel affiliation")
	ErrInvalidScope  = errors.New("hotel is not a valid scope for this identity")
)

// TenantFetcher loads the hotels the current identity may access.
type TenantFetcher interface {
	AccessibleTenants(ctx context.Context) ([]entity.Tenant, error)
}

type ChangeKind int

const (
	ChangeLogin ChangeKind = iota + 1
	ChangeLogout
	ChangeScope
	ChangeProfile
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeLogin:
		return "login"
	case ChangeLogout:
		return "logout"
	case ChangeScope:
		return "scope"
	case ChangeProfile:
		return "profile"
	}
	return "unknown"
}

// Change is delivered to listeners after the new state is committed.
type Change struct {
	Kind ChangeKind
	Old  entity.Snapshot
	New  entity.Snapshot
}

// ScopeChanged reports whether the active hotel differs between Old and New.
func (c Change) ScopeChanged() bool { return c.Old.ActiveScope != c.New.ActiveScope }

// Store is the tenant context store. The zero value is not usable; build it
// with NewStore.
type Store struct {
	mu   sync.RWMutex
	snap entity.Snapshot

	// writeMu orders commit+persist so the repo never sees an older snapshot
	// after a newer one.
	writeMu sync.Mutex

	repo    repo.Repo
	fetcher TenantFetcher
	tenants *gocache.Cache
	sf      singleflight.Group
	logger  *zap.SugaredLogger
	now     func() time.Time

	lmu       sync.Mutex
	listeners map[int]func(Change)
	nextID    int
}

type Option func(*Store)

func WithLogger(l *zap.SugaredLogger) Option { return func(s *Store) { s.logger = l } }

// WithTenantTTL bounds how long the accessible hotel list is reused before a
// lazy refetch. Zero or negative keeps the default.
func WithTenantTTL(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.tenants = gocache.New(d, 2*d)
		}
	}
}

func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

func NewStore(r repo.Repo, fetcher TenantFetcher, opts ...Option) *Store {
	if r == nil {
		r = repo.NewMemory()
	}
	s := &Store{
		repo:      r,
		fetcher:   fetcher,
		tenants:   gocache.New(10*time.Minute, 20*time.Minute),
		now:       time.Now,
		listeners: map[int]func(Change){},
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = utilities.OrNop(s.logger)
	return s
}

// SetTenantFetcher wires the fetcher after construction; the fetcher usually
// needs a dispatcher that in turn reads credentials from this store.
func (s *Store) SetTenantFetcher(f TenantFetcher) { s.fetcher = f }

// Restore loads the persisted snapshot. Listeners are not notified.
func (s *Store) Restore(ctx context.Context) error {
	snap, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	if snap.LoggedIn() {
		s.logger.Infow("session restored", "user", snap.Identity.Username, "scope", snap.ActiveScope, "session_id", snap.SessionID)
	}
	return nil
}

// Login stores the credential and identity. An identity with exactly one
// hotel gets it selected; any other count leaves the scope empty.
func (s *Store) Login(ctx context.Context, credential string, identity *entity.Identity) error {
	if credential == "" || identity == nil {
		return ErrInvalidLogin
	}
	id := cloneIdentity(identity)
	var scope int64
	if len(id.Hotels) == 1 {
		scope = id.Hotels[0]
	}
	next := entity.Snapshot{
		Credential:  credential,
		Identity:    id,
		ActiveScope: scope,
		SessionID:   utilities.NewSessionID(),
	}
	ch := s.commit(ctx, ChangeLogin, func(entity.Snapshot) entity.Snapshot { return next })
	s.tenants.Flush()
	s.logger.Infow("logged in", "user", id.Username, "role", id.Role, "hotels", len(id.Hotels), "scope", scope)
	s.notify(ch)
	return nil
}

// Logout clears credential, identity and scope unconditionally.
func (s *Store) Logout(ctx context.Context) {
	ch := s.commit(ctx, ChangeLogout, func(entity.Snapshot) entity.Snapshot { return entity.Snapshot{} })
	s.tenants.Flush()
	s.logger.Infow("logged out", "session_id", ch.Old.SessionID)
	s.notify(ch)
}

// ChangeScope selects hotelID, or the unscoped view when hotelID is 0. It
// does not refetch anything; bound controllers react to the change.
func (s *Store) ChangeScope(ctx context.Context, hotelID int64) error {
	s.mu.RLock()
	cur := s.snap
	s.mu.RUnlock()
	if !cur.LoggedIn() {
		return ErrNotLoggedIn
	}
	if cur.ActiveScope == hotelID {
		return nil
	}
	ch := s.commit(ctx, ChangeScope, func(old entity.Snapshot) entity.Snapshot {
		old.ActiveScope = hotelID
		return old
	})
	s.logger.Infow("scope changed", "from", ch.Old.ActiveScope, "to", hotelID)
	s.notify(ch)
	return nil
}

// RefreshProfile replaces the identity after an explicit profile reload. The
// credential and scope are kept.
func (s *Store) RefreshProfile(ctx context.Context, identity *entity.Identity) error {
	if identity == nil {
		return ErrInvalidLogin
	}
	s.mu.RLock()
	loggedIn := s.snap.LoggedIn()
	s.mu.RUnlock()
	if !loggedIn {
		return ErrNotLoggedIn
	}
	id := cloneIdentity(identity)
	ch := s.commit(ctx, ChangeProfile, func(old entity.Snapshot) entity.Snapshot {
		old.Identity = id
		return old
	})
	s.tenants.Flush()
	s.notify(ch)
	return nil
}

// commit applies fn to the current snapshot, persists the result and returns
// the change. Persistence is best-effort: the in-memory session stays usable
// when the repo fails.
func (s *Store) commit(ctx context.Context, kind ChangeKind, fn func(entity.Snapshot) entity.Snapshot) Change {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	old := s.snap
	next := fn(old)
	s.snap = next
	s.mu.Unlock()

	var err error
	if next.LoggedIn() || next.ActiveScope != 0 {
		err = s.repo.Save(ctx, next)
	} else {
		err = s.repo.Clear(ctx)
	}
	if err != nil {
		s.logger.Warnw("session not persisted", "change", kind.String(), "err", err)
	}
	return Change{Kind: kind, Old: old, New: next}
}

// Subscribe registers fn for every committed change. Listeners run
// synchronously on the goroutine that made the change.
func (s *Store) Subscribe(fn func(Change)) (cancel func()) {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.lmu.Unlock()
	return func() {
		s.lmu.Lock()
		delete(s.listeners, id)
		s.lmu.Unlock()
	}
}

func (s *Store) notify(ch Change) {
	s.lmu.Lock()
	fns := make([]func(Change), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.lmu.Unlock()
	for _, fn := range fns {
		fn(ch)
	}
}

// Credential implements dispatch.CredentialSource.
func (s *Store) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Credential
}

// ActiveScope implements dispatch.CredentialSource. 0 is unscoped.
func (s *Store) ActiveScope() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.ActiveScope
}

// Identity returns a copy of the logged in identity, or nil.
func (s *Store) Identity() *entity.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap.Identity == nil {
		return nil
	}
	return cloneIdentity(s.snap.Identity)
}

// Snapshot returns a copy of the whole session state.
func (s *Store) Snapshot() entity.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.snap
	if out.Identity != nil {
		out.Identity = cloneIdentity(out.Identity)
	}
	return out
}

// ListAffiliatedTenants returns the hotels the identity may access. The list
// is fetched lazily, shared between concurrent callers and cached until
// RefreshTenants, logout, login or TTL expiry.
func (s *Store) ListAffiliatedTenants(ctx context.Context) ([]entity.Tenant, error) {
	snap := s.Snapshot()
	if !snap.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	if s.fetcher == nil {
		return nil, errors.New("tenant fetcher not configured")
	}
	key := "tenants:" + snap.SessionID
	if v, ok := s.tenants.Get(key); ok {
		return cloneTenants(v.([]entity.Tenant)), nil
	}
	v, err, _ := s.sf.Do(key, func() (any, error) {
		list, err := s.fetcher.AccessibleTenants(ctx)
		if err != nil {
			return nil, err
		}
		s.tenants.SetDefault(key, list)
		return list, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list accessible hotels: %w", err)
	}
	return cloneTenants(v.([]entity.Tenant)), nil
}

// RefreshTenants drops the cached hotel list and fetches it again. Call it
// after creating, updating or deleting a hotel.
func (s *Store) RefreshTenants(ctx context.Context) ([]entity.Tenant, error) {
	snap := s.Snapshot()
	s.tenants.Delete("tenants:" + snap.SessionID)
	return s.ListAffiliatedTenants(ctx)
}

// Choices is what a scope selector may offer.
type Choices struct {
	Tenants       []entity.Tenant `json:"tenants"`
	AllowUnscoped bool            `json:"allow_unscoped"`
}

// ScopeChoices lists the valid selections for the current identity. Global
// roles may pick any listed hotel or the unscoped view; hotel-scoped roles
// only their affiliations.
func (s *Store) ScopeChoices(ctx context.Context) (Choices, error) {
	id := s.Identity()
	if id == nil {
		return Choices{}, ErrNotLoggedIn
	}
	list, err := s.ListAffiliatedTenants(ctx)
	if err != nil {
		return Choices{}, err
	}
	if id.Role.IsGlobal() {
		return Choices{Tenants: list, AllowUnscoped: true}, nil
	}
	out := make([]entity.Tenant, 0, len(list))
	for _, t := range list {
		if id.AffiliatedWith(t.ID) {
			out = append(out, t)
		}
	}
	return Choices{Tenants: out}, nil
}

// ValidateScope checks hotelID against ScopeChoices. 0 (clear) is always
// accepted.
func (s *Store) ValidateScope(ctx context.Context, hotelID int64) error {
	if hotelID == 0 {
		return nil
	}
	id := s.Identity()
	if id == nil {
		return ErrNotLoggedIn
	}
	if !id.CanActScoped() {
		return ErrNoAffiliation
	}
	c, err := s.ScopeChoices(ctx)
	if err != nil {
		return err
	}
	for _, t := range c.Tenants {
		if t.ID == hotelID {
			return nil
		}
	}
	return ErrInvalidScope
}

// Status summarises the session for display.
type Status struct {
	LoggedIn    bool             `json:"logged_in"`
	Identity    *entity.Identity `json:"identity,omitempty"`
	ActiveScope int64            `json:"active_scope"`
	SessionID   string           `json:"session_id,omitempty"`
	ExpiresAt   *time.Time       `json:"expires_at,omitempty"`
	Expired     bool             `json:"expired"`
}

// Status reads the credential's exp claim without verifying the signature;
// only the backend can verify it.
func (s *Store) Status() Status {
	snap := s.Snapshot()
	st := Status{
		LoggedIn:    snap.LoggedIn(),
		Identity:    snap.Identity,
		ActiveScope: snap.ActiveScope,
		SessionID:   snap.SessionID,
	}
	if snap.Credential == "" {
		return st
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(snap.Credential, claims); err != nil {
		return st
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		st.ExpiresAt = &t
		st.Expired = !s.now().Before(t)
	}
	return st
}

func cloneIdentity(id *entity.Identity) *entity.Identity {
	c := *id
	c.Hotels = append([]int64(nil), id.Hotels...)
	return &c
}

func cloneTenants(in []entity.Tenant) []entity.Tenant {
	return append([]entity.Tenant(nil), in...)
}
