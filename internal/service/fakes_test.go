package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/hangaroo/backend/internal/model"
)

// memStore is an in-memory implementation of the repository interfaces used
// by the service tests. A single mutex plays the role of the database row
// lock: every state transition holds it for the full check-then-write
// sequence, matching the atomicity the pgx implementations get from
// SELECT ... FOR UPDATE and the ref_id unique constraint.
type memStore struct {
	mu            sync.Mutex
	seq           int
	accounts      map[string]*model.Account
	events        map[string]*memEvent
	transactions  map[string]*model.Transaction // keyed by ref id
	notifications []model.Notification
}

type memEvent struct {
	event        model.Event
	participants map[string]bool
	attended     map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		accounts:     make(map[string]*model.Account),
		events:       make(map[string]*memEvent),
		transactions: make(map[string]*model.Transaction),
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return prefix + "-" + strconv.Itoa(s.seq)
}

func (s *memStore) addAccount(firstName string) *model.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &model.Account{
		ID:        s.nextID("acc"),
		Email:     firstName + "@example.com",
		FirstName: firstName,
		CreatedAt: time.Now(),
	}
	s.accounts[a.ID] = a
	return a
}

// ─── AccountRepository ────────────────────────────────────────────────────────

func (s *memStore) Create(_ context.Context, email, passwordHash, firstName, lastName string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Email == email {
			return nil, model.ErrEmailTaken
		}
	}
	a := &model.Account{
		ID:           s.nextID("acc"),
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		CreatedAt:    time.Now(),
	}
	s.accounts[a.ID] = a
	return a, nil
}

func (s *memStore) GetByID(_ context.Context, id string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (s *memStore) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Email == email {
			clone := *a
			return &clone, nil
		}
	}
	return nil, model.ErrNotFound
}

func (s *memStore) UpsertGoogle(_ context.Context, params *model.GoogleAccountParams) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, a := range s.accounts {
		if a.Email == params.Email {
			a.GoogleID = params.GoogleID
			a.LastLogin = &now
			clone := *a
			return &clone, nil
		}
	}
	a := &model.Account{
		ID:        s.nextID("acc"),
		Email:     params.Email,
		FirstName: params.FirstName,
		LastName:  params.LastName,
		GoogleID:  params.GoogleID,
		CreatedAt: now,
		LastLogin: &now,
	}
	s.accounts[a.ID] = a
	clone := *a
	return &clone, nil
}

func (s *memStore) SetPushToken(_ context.Context, id, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return model.ErrNotFound
	}
	a.PushToken = token
	return nil
}

func (s *memStore) TouchLastLogin(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[id]; ok {
		now := time.Now()
		a.LastLogin = &now
	}
	return nil
}

func (s *memStore) ListPushTokens(_ context.Context, recipientID *string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var tokens []string
	for _, a := range s.accounts {
		if a.PushToken == "" {
			continue
		}
		if recipientID == nil || a.ID == *recipientID {
			tokens = append(tokens, a.PushToken)
		}
	}
	return tokens, nil
}

// ─── EventRepository ──────────────────────────────────────────────────────────

func (s *memStore) CreateEvent(_ context.Context, params *model.CreateEventParams) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := &memEvent{
		event: model.Event{
			ID:              s.nextID("evt"),
			Title:           params.Title,
			Description:     params.Description,
			HostID:          params.HostID,
			Location:        model.Location{Address: params.Address, Lat: params.Lat, Lng: params.Lng},
			StartTime:       params.StartTime,
			EndTime:         params.EndTime,
			MaxParticipants: params.MaxParticipants,
			Category:        params.Category,
			Payment:         model.PaymentTerms{Method: params.PaymentMethod, Amount: params.Amount},
			ImageURL:        params.ImageURL,
			CreatedAt:       time.Now(),
		},
		participants: make(map[string]bool),
		attended:     make(map[string]bool),
	}
	s.events[e.event.ID] = e
	return s.snapshot(e), nil
}

func (s *memStore) GetEventByID(_ context.Context, id string) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return s.snapshot(e), nil
}

func (s *memStore) ListEvents(_ context.Context, filter model.EventFilter) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Event
	for _, e := range s.events {
		if filter.Category != "" && e.event.Category != model.NormalizeCategory(filter.Category) {
			continue
		}
		out = append(out, *s.snapshot(e))
	}
	return out, nil
}

func (s *memStore) ListJoined(_ context.Context, accountID string) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Event
	for _, e := range s.events {
		if e.participants[accountID] {
			out = append(out, *s.snapshot(e))
		}
	}
	return out, nil
}

func (s *memStore) ListHosted(_ context.Context, hostID string) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Event
	for _, e := range s.events {
		if e.event.HostID == hostID {
			out = append(out, *s.snapshot(e))
		}
	}
	return out, nil
}

func (s *memStore) ListOngoing(_ context.Context, hostID string) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Event
	for _, e := range s.events {
		if e.event.HostID == hostID && !e.event.IsCompleted {
			out = append(out, *s.snapshot(e))
		}
	}
	return out, nil
}

func (s *memStore) Join(_ context.Context, eventID, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.joinLocked(eventID, accountID)
}

func (s *memStore) joinLocked(eventID, accountID string) error {
	e, ok := s.events[eventID]
	if !ok {
		return model.ErrNotFound
	}
	if e.event.IsCompleted {
		return model.ErrEventCompleted
	}
	if e.participants[accountID] {
		return model.ErrAlreadyJoined
	}
	if len(e.participants) >= e.event.MaxParticipants {
		return model.ErrEventFull
	}
	e.participants[accountID] = true
	return nil
}

func (s *memStore) Complete(_ context.Context, eventID, hostID string, attendedIDs []string) (*model.CompletionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok || e.event.HostID != hostID {
		return nil, model.ErrNotFound
	}
	if e.event.IsCompleted {
		return &model.CompletionResult{AlreadyCompleted: true, PointsPerAccount: model.PointsPerAttendance}, nil
	}
	e.event.IsCompleted = true

	awarded := 0
	for _, id := range attendedIDs {
		if !e.participants[id] {
			continue
		}
		e.attended[id] = true
		if a, ok := s.accounts[id]; ok {
			a.Points += model.PointsPerAttendance
		}
		awarded++
	}
	return &model.CompletionResult{AwardedAccounts: awarded, PointsPerAccount: model.PointsPerAttendance}, nil
}

func (s *memStore) snapshot(e *memEvent) *model.Event {
	clone := e.event
	clone.Participants = []model.AccountSummary{}
	for id := range e.participants {
		if a, ok := s.accounts[id]; ok {
			clone.Participants = append(clone.Participants, a.Summary())
		} else {
			clone.Participants = append(clone.Participants, model.AccountSummary{ID: id})
		}
	}
	if host, ok := s.accounts[clone.HostID]; ok {
		summary := host.Summary()
		clone.Host = &summary
	}
	return &clone
}

// ─── TransactionRepository ────────────────────────────────────────────────────

func (s *memStore) RefExists(_ context.Context, refID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.transactions[refID]
	return ok, nil
}

func (s *memStore) RecordVerified(_ context.Context, params *model.VerifyPaymentParams) (*model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[params.RefID]; ok {
		return nil, model.ErrDuplicateReference
	}
	if err := s.joinLocked(params.EventID, params.PayerID); err != nil {
		return nil, err
	}
	txn := &model.Transaction{
		ID:        s.nextID("txn"),
		EventID:   params.EventID,
		PayerID:   params.PayerID,
		Amount:    params.Amount,
		RefID:     params.RefID,
		Status:    model.TransactionComplete,
		CreatedAt: time.Now(),
	}
	s.transactions[params.RefID] = txn
	return txn, nil
}

// ─── NotificationRepository ───────────────────────────────────────────────────

func (s *memStore) Record(_ context.Context, draft *model.NotificationDraft) (*model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := model.Notification{
		ID:          s.nextID("ntf"),
		Title:       draft.Title,
		Body:        draft.Body,
		RecipientID: draft.RecipientID,
		CreatedAt:   time.Now(),
	}
	s.notifications = append(s.notifications, n)
	return &n, nil
}

func (s *memStore) ListNotifications(_ context.Context) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out, nil
}

// memEvents adapts memStore to the EventRepository interface; the account
// variants of Create/GetByID live directly on memStore, so the event variants
// need distinct names plus this shim.
type memEvents struct {
	*memStore
}

func (m memEvents) Create(ctx context.Context, params *model.CreateEventParams) (*model.Event, error) {
	return m.CreateEvent(ctx, params)
}

func (m memEvents) GetByID(ctx context.Context, id string) (*model.Event, error) {
	return m.GetEventByID(ctx, id)
}

func (m memEvents) List(ctx context.Context, filter model.EventFilter) ([]model.Event, error) {
	return m.ListEvents(ctx, filter)
}

// memNotifications adapts memStore to the NotificationRepository interface.
type memNotifications struct {
	*memStore
}

func (m memNotifications) List(ctx context.Context) ([]model.Notification, error) {
	return m.ListNotifications(ctx)
}

// fakeGateway is a scripted PaymentGateway.
type fakeGateway struct {
	status model.PaymentStatus
	err    error
	calls  int
	mu     sync.Mutex
}

func (g *fakeGateway) Status(context.Context, string, float64) (model.PaymentStatus, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	return g.status, nil
}

// fakeGoogle is a scripted GoogleVerifier.
type fakeGoogle struct {
	identity *model.GoogleAccountParams
	err      error
}

func (g *fakeGoogle) Verify(context.Context, string) (*model.GoogleAccountParams, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.identity, nil
}
