package models

import (
	"sync"
	"time"

	"bitbucket.org/mmdatafocus/loanpulse_backend/utils"
	"github.com/google/uuid"
)

// SourceStats groups the per-file normalization counters of a session.
type SourceStats struct {
	Orders   NormalizeStats `json:"orders"`
	Plan     NormalizeStats `json:"plan"`
	Payments NormalizeStats `json:"payments"`
}

// Session carries one user's uploaded tables and analysis result. It
// replaces process-global dashboard state: the engine functions stay
// stateless and the session is just the container handed to them.
//
// The store hands the same *Session to every request that names its id,
// so all mutable state lives behind the session's own mutex and is only
// reached through methods.
type Session struct {
	Id        string
	CreatedAt time.Time

	// touchedAt is guarded by the store mutex, not the session mutex.
	touchedAt time.Time

	mu           sync.Mutex
	orders       *OrderTable
	plan         *PlanTable
	payments     *PaymentTable
	orderStats   NormalizeStats
	planStats    NormalizeStats
	paymentStats NormalizeStats

	// Set by Analyze: reconciled + scored rows and the asOf snapshot they
	// were scored against. The rows slice is never mutated once published.
	rows     []ReconciledRow
	asOf     time.Time
	analyzed bool
}

// SetOrders replaces the orders source. A replaced source invalidates any
// earlier analysis.
func (s *Session) SetOrders(table *OrderTable, stats NormalizeStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = table
	s.orderStats = stats
	s.invalidateLocked()
}

func (s *Session) SetPlan(table *PlanTable, stats NormalizeStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = table
	s.planStats = stats
	s.invalidateLocked()
}

func (s *Session) SetPayments(table *PaymentTable, stats NormalizeStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments = table
	s.paymentStats = stats
	s.invalidateLocked()
}

func (s *Session) invalidateLocked() {
	s.analyzed = false
	s.rows = nil
}

func (s *Session) completeLocked() bool {
	return s.orders != nil && s.plan != nil && s.payments != nil
}

func (s *Session) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completeLocked()
}

// Analyze runs the engine over the session's tables with a single asOf
// snapshot for the whole batch.
func (s *Session) Analyze(asOf time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.completeLocked() {
		return utils.ErrorSessionIncomplete
	}
	joined := Reconcile(s.orders, s.plan, s.payments)
	s.rows = ComputeMetrics(joined, asOf)
	s.asOf = asOf
	s.analyzed = true
	return nil
}

// Snapshot returns the analyzed rows and the asOf they were scored
// against. The slice is replaced wholesale on re-analysis and never
// mutated in place, so callers may keep reading it after the lock is
// released.
func (s *Session) Snapshot() (rows []ReconciledRow, asOf time.Time, analyzed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows, s.asOf, s.analyzed
}

// Diagnose reports join-key mismatches across the session's sources.
// Zero until all three files are present.
func (s *Session) Diagnose() Diagnostics {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.completeLocked() {
		return Diagnostics{}
	}
	return Diagnose(s.orders, s.plan, s.payments)
}

func (s *Session) SourceStats() SourceStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SourceStats{
		Orders:   s.orderStats,
		Plan:     s.planStats,
		Payments: s.paymentStats,
	}
}

// SessionStore is the map from session id to session. Sessions expire TTL
// after their last touch.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*Session
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

func (st *SessionStore) Create() *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := time.Now()
	session := &Session{
		Id:        uuid.NewString(),
		CreatedAt: now,
		touchedAt: now,
	}
	st.sessions[session.Id] = session
	return session
}

func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	session, ok := st.sessions[id]
	if !ok {
		return nil, utils.ErrorSessionNotFound
	}
	if time.Since(session.touchedAt) > st.ttl {
		delete(st.sessions, id)
		return nil, utils.ErrorSessionNotFound
	}
	session.touchedAt = time.Now()
	return session, nil
}

// Sweep drops expired sessions and reports how many were removed.
func (st *SessionStore) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, session := range st.sessions {
		if time.Since(session.touchedAt) > st.ttl {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
