package service_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/events"
	"github.com/spec-kit/marketplace-service/internal/repository"
	"github.com/spec-kit/marketplace-service/internal/service"
)

// fakeTx runs the function directly. The fakes below are already
// consistent without transactional isolation; what the tests assert is
// that services route writes through WithinTx and surface its error.
type fakeTx struct {
	failWith error
}

func (f *fakeTx) WithinTx(_ context.Context, fn func(db repository.DBTX) error) error {
	if f.failWith != nil {
		return f.failWith
	}
	return fn(nil)
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
	seq   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]domain.User{}}
}

func (f *fakeUserRepo) WithTx(repository.DBTX) repository.UserRepository { return f }

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	user.ID = fmt.Sprintf("user-%d", f.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// mustAddUser seeds a user directly, bypassing registration.
func (f *fakeUserRepo) mustAddUser(user domain.User) domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", f.seq)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	f.users[user.ID] = user
	return user
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]domain.ProviderProfile
	users    *fakeUserRepo
	seq      int
}

func newFakeProfileRepo(users *fakeUserRepo) *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[string]domain.ProviderProfile{}, users: users}
}

func (f *fakeProfileRepo) WithTx(repository.DBTX) repository.ProviderProfileRepository { return f }

func (f *fakeProfileRepo) Create(_ context.Context, profile *domain.ProviderProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	profile.ID = fmt.Sprintf("profile-%d", f.seq)
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = profile.CreatedAt
	stored := *profile
	stored.User = nil
	f.profiles[profile.ID] = stored
	return nil
}

func (f *fakeProfileRepo) Update(_ context.Context, profile *domain.ProviderProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[profile.ID]; !ok {
		return pgx.ErrNoRows
	}
	profile.UpdatedAt = time.Now()
	stored := *profile
	stored.User = nil
	f.profiles[profile.ID] = stored
	return nil
}

func (f *fakeProfileRepo) GetByID(ctx context.Context, id string) (*domain.ProviderProfile, error) {
	f.mu.Lock()
	profile, ok := f.profiles[id]
	f.mu.Unlock()
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return f.withUser(ctx, profile)
}

func (f *fakeProfileRepo) GetByUserID(ctx context.Context, userID string) (*domain.ProviderProfile, error) {
	f.mu.Lock()
	var found *domain.ProviderProfile
	for _, profile := range f.profiles {
		if profile.UserID == userID {
			p := profile
			found = &p
			break
		}
	}
	f.mu.Unlock()
	if found == nil {
		return nil, pgx.ErrNoRows
	}
	return f.withUser(ctx, *found)
}

func (f *fakeProfileRepo) ListByStatus(ctx context.Context, status domain.ApprovalStatus) ([]domain.ProviderProfile, error) {
	f.mu.Lock()
	matches := []domain.ProviderProfile{}
	for _, profile := range f.profiles {
		if profile.ApprovalStatus == status {
			matches = append(matches, profile)
		}
	}
	f.mu.Unlock()

	result := make([]domain.ProviderProfile, 0, len(matches))
	for _, profile := range matches {
		joined, err := f.withUser(ctx, profile)
		if err != nil {
			return nil, err
		}
		result = append(result, *joined)
	}
	return result, nil
}

func (f *fakeProfileRepo) withUser(ctx context.Context, profile domain.ProviderProfile) (*domain.ProviderProfile, error) {
	user, err := f.users.GetByID(ctx, profile.UserID)
	if err != nil {
		return nil, err
	}
	profile.User = user
	return &profile, nil
}

type fakeServiceRepo struct {
	mu       sync.Mutex
	services map[string]domain.Service
	users    *fakeUserRepo
	profiles *fakeProfileRepo
	pending  map[string]int
	seq      int
}

func newFakeServiceRepo(users *fakeUserRepo, profiles *fakeProfileRepo) *fakeServiceRepo {
	return &fakeServiceRepo{
		services: map[string]domain.Service{},
		users:    users,
		profiles: profiles,
		pending:  map[string]int{},
	}
}

func (f *fakeServiceRepo) WithTx(repository.DBTX) repository.ServiceRepository { return f }

func (f *fakeServiceRepo) Create(_ context.Context, svc *domain.Service) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	svc.ID = fmt.Sprintf("service-%d", f.seq)
	svc.CreatedAt = time.Now()
	svc.UpdatedAt = svc.CreatedAt
	stored := *svc
	stored.Provider = nil
	f.services[svc.ID] = stored
	return nil
}

func (f *fakeServiceRepo) Update(_ context.Context, svc *domain.Service) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.services[svc.ID]; !ok {
		return pgx.ErrNoRows
	}
	svc.UpdatedAt = time.Now()
	stored := *svc
	stored.Provider = nil
	f.services[svc.ID] = stored
	return nil
}

func (f *fakeServiceRepo) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	f.mu.Lock()
	svc, ok := f.services[id]
	f.mu.Unlock()
	if !ok {
		return nil, pgx.ErrNoRows
	}
	provider, err := f.users.GetByID(ctx, svc.ProviderID)
	if err != nil {
		return nil, err
	}
	svc.Provider = provider
	return &svc, nil
}

func (f *fakeServiceRepo) ListByProvider(_ context.Context, providerID string) ([]domain.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []domain.Service{}
	for _, svc := range f.services {
		if svc.ProviderID == providerID {
			result = append(result, svc)
		}
	}
	return result, nil
}

func (f *fakeServiceRepo) Search(ctx context.Context, filter repository.ServiceFilter) ([]domain.Service, error) {
	f.mu.Lock()
	candidates := []domain.Service{}
	for _, svc := range f.services {
		candidates = append(candidates, svc)
	}
	f.mu.Unlock()

	result := []domain.Service{}
	for _, svc := range candidates {
		if !svc.IsActive {
			continue
		}
		if filter.Location != nil && !strings.Contains(strings.ToLower(svc.Location), strings.ToLower(*filter.Location)) {
			continue
		}
		if filter.MinCost != nil && svc.Cost < *filter.MinCost {
			continue
		}
		if filter.MaxCost != nil && svc.Cost > *filter.MaxCost {
			continue
		}
		if filter.OnlyApproved {
			profile, err := f.profiles.GetByUserID(ctx, svc.ProviderID)
			if err != nil || profile.ApprovalStatus != domain.ApprovalStatusApproved {
				continue
			}
		}
		result = append(result, svc)
	}
	return result, nil
}

func (f *fakeServiceRepo) CountPendingRequests(_ context.Context, serviceID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending[serviceID], nil
}

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[string]domain.ServiceRequest
	services *fakeServiceRepo
	users    *fakeUserRepo
	seq      int
}

func newFakeRequestRepo(services *fakeServiceRepo, users *fakeUserRepo) *fakeRequestRepo {
	return &fakeRequestRepo{requests: map[string]domain.ServiceRequest{}, services: services, users: users}
}

func (f *fakeRequestRepo) WithTx(repository.DBTX) repository.RequestRepository { return f }

func (f *fakeRequestRepo) Create(_ context.Context, request *domain.ServiceRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	request.ID = fmt.Sprintf("request-%d", f.seq)
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	stored := *request
	stored.Service = nil
	stored.Requester = nil
	stored.Provider = nil
	f.requests[request.ID] = stored
	return nil
}

func (f *fakeRequestRepo) UpdateStatus(_ context.Context, id string, status domain.RequestStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.requests[id]
	if !ok {
		return pgx.ErrNoRows
	}
	request.Status = status
	request.UpdatedAt = time.Now()
	f.requests[id] = request
	return nil
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	f.mu.Lock()
	request, ok := f.requests[id]
	f.mu.Unlock()
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return f.join(ctx, request)
}

func (f *fakeRequestRepo) List(ctx context.Context, filter repository.RequestFilter) ([]domain.ServiceRequest, error) {
	f.mu.Lock()
	candidates := []domain.ServiceRequest{}
	for _, request := range f.requests {
		candidates = append(candidates, request)
	}
	f.mu.Unlock()

	result := []domain.ServiceRequest{}
	for _, request := range candidates {
		if filter.RequesterID != nil && request.RequesterID != *filter.RequesterID {
			continue
		}
		if filter.ProviderID != nil && request.ProviderID != *filter.ProviderID {
			continue
		}
		if filter.Status != nil && request.Status != *filter.Status {
			continue
		}
		joined, err := f.join(ctx, request)
		if err != nil {
			return nil, err
		}
		result = append(result, *joined)
	}
	return result, nil
}

func (f *fakeRequestRepo) join(ctx context.Context, request domain.ServiceRequest) (*domain.ServiceRequest, error) {
	svc, err := f.services.GetByID(ctx, request.ServiceID)
	if err != nil {
		return nil, err
	}
	requester, err := f.users.GetByID(ctx, request.RequesterID)
	if err != nil {
		return nil, err
	}
	provider, err := f.users.GetByID(ctx, request.ProviderID)
	if err != nil {
		return nil, err
	}
	request.Service = svc
	request.Requester = requester
	request.Provider = provider
	return &request, nil
}

type fakeRefreshStore struct {
	mu     sync.Mutex
	tokens map[string]string
	seq    int
}

func newFakeRefreshStore() *fakeRefreshStore {
	return &fakeRefreshStore{tokens: map[string]string{}}
}

func (f *fakeRefreshStore) Issue(_ context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	token := fmt.Sprintf("refresh-%d", f.seq)
	f.tokens[token] = userID
	return token, nil
}

func (f *fakeRefreshStore) Redeem(_ context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	userID, ok := f.tokens[token]
	if !ok {
		return "", auth.ErrRefreshTokenInvalid
	}
	delete(f.tokens, token)
	return userID, nil
}

func (f *fakeRefreshStore) Revoke(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
	return nil
}

// recordingDispatcher keeps published events and still delivers them to
// subscribers, matching the in-memory dispatcher's behavior.
type recordingDispatcher struct {
	mu        sync.Mutex
	published []events.Event
	listeners map[events.EventType][]events.EventHandler
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{listeners: map[events.EventType][]events.EventHandler{}}
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	d.published = append(d.published, event)
	handlers := append([]events.EventHandler{}, d.listeners[event.Type]...)
	d.mu.Unlock()

	for _, handler := range handlers {
		_ = handler(ctx, event)
	}
	return nil
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

func (d *recordingDispatcher) eventsOfType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	result := []events.Event{}
	for _, event := range d.published {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}

type sentEmail struct {
	kind      service.EmailKind
	recipient string
}

type fakeEmailSender struct {
	mu     sync.Mutex
	sent   []sentEmail
	result bool
}

func newFakeEmailSender() *fakeEmailSender {
	return &fakeEmailSender{result: true}
}

func (f *fakeEmailSender) Send(_ context.Context, kind service.EmailKind, recipient string, _ map[string]string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEmail{kind: kind, recipient: recipient})
	return f.result
}

func (f *fakeEmailSender) sentEmails() []sentEmail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentEmail{}, f.sent...)
}
