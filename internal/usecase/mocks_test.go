package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ahmar7/betabase-sub002/internal/entity"
	"github.com/ahmar7/betabase-sub002/internal/infra/mail"
)

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) FindByIDs(ctx context.Context, ids []string) ([]*entity.Lead, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

// MockUserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, u *entity.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

// MockPendingEmailRepository
type MockPendingEmailRepository struct {
	mock.Mock
}

func (m *MockPendingEmailRepository) CreateBatch(ctx context.Context, items []*entity.PendingEmail) (int, error) {
	args := m.Called(ctx, items)
	return args.Int(0), args.Error(1)
}

func (m *MockPendingEmailRepository) ClaimBatch(ctx context.Context, limit int) ([]*entity.PendingEmail, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.PendingEmail), args.Error(1)
}

func (m *MockPendingEmailRepository) MarkRetrying(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPendingEmailRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPendingEmailRepository) CountPending(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockPendingEmailRepository) ListRecent(ctx context.Context, limit int) ([]*entity.PendingEmail, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.PendingEmail), args.Error(1)
}

func (m *MockPendingEmailRepository) Clear(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockFailedEmailRepository
type MockFailedEmailRepository struct {
	mock.Mock
}

func (m *MockFailedEmailRepository) Create(ctx context.Context, f *entity.FailedEmail) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockFailedEmailRepository) CreateBatch(ctx context.Context, items []*entity.FailedEmail) (int, error) {
	args := m.Called(ctx, items)
	return args.Int(0), args.Error(1)
}

func (m *MockFailedEmailRepository) List(ctx context.Context, status string, page, limit int) ([]*entity.FailedEmail, int, error) {
	args := m.Called(ctx, status, page, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entity.FailedEmail), args.Int(1), args.Error(2)
}

func (m *MockFailedEmailRepository) FindByIDs(ctx context.Context, ids []string) ([]*entity.FailedEmail, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.FailedEmail), args.Error(1)
}

func (m *MockFailedEmailRepository) MarkRetrying(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFailedEmailRepository) MarkSent(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFailedEmailRepository) MarkPending(ctx context.Context, id, reason, errorType string) error {
	args := m.Called(ctx, id, reason, errorType)
	return args.Error(0)
}

func (m *MockFailedEmailRepository) MarkPermanentFailure(ctx context.Context, id, reason, errorType string) error {
	args := m.Called(ctx, id, reason, errorType)
	return args.Error(0)
}

func (m *MockFailedEmailRepository) DeleteByIDs(ctx context.Context, ids []string) (int, error) {
	args := m.Called(ctx, ids)
	return args.Int(0), args.Error(1)
}

func (m *MockFailedEmailRepository) CountPending(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockFailedEmailRepository) PurgeSentBefore(ctx context.Context, cutoff time.Time) (int, error) {
	args := m.Called(ctx, cutoff)
	return args.Int(0), args.Error(1)
}

// MockBatchSender
type MockBatchSender struct {
	mock.Mock
}

func (m *MockBatchSender) SendBatch(ctx context.Context, msgs []mail.EmailMessage, onProgress mail.ProgressFunc) (mail.BatchResult, error) {
	args := m.Called(ctx, msgs, onProgress)
	return args.Get(0).(mail.BatchResult), args.Error(1)
}

// MockEmailGateway
type MockEmailGateway struct {
	mock.Mock
}

func (m *MockEmailGateway) Send(ctx context.Context, msg mail.EmailMessage) (mail.SendResult, error) {
	args := m.Called(ctx, msg)
	return args.Get(0).(mail.SendResult), args.Error(1)
}

// recordingReporter captures pushed events in order.
type recordingReporter struct {
	mu     sync.Mutex
	events []entity.ActivationProgress
}

func (r *recordingReporter) Push(sessionID string, ev entity.ActivationProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev.SessionID = sessionID
	r.events = append(r.events, ev)
}

func (r *recordingReporter) byType(t string) []entity.ActivationProgress {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.ActivationProgress
	for _, ev := range r.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// recordingNotifier captures emitted events.
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Emit(event string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}
