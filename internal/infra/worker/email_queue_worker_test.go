package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ahmar7/betabase-sub002/internal/entity"
	"github.com/ahmar7/betabase-sub002/internal/infra/mail"
)

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

// MockMailGateway
type MockMailGateway struct {
	mock.Mock
}

func (m *MockMailGateway) Send(ctx context.Context, msg mail.EmailMessage) (mail.SendResult, error) {
	args := m.Called(ctx, msg)
	return args.Get(0).(mail.SendResult), args.Error(1)
}

func pendingRow(id, email string, attempts int) *entity.PendingEmail {
	return &entity.PendingEmail{
		ID:        id,
		UserID:    "u-" + id,
		Email:     email,
		FirstName: "Alice",
		LastName:  "Smith",
		Password:  "a1b2c3d4e5f60718",
		Status:    entity.PendingEmailStatusProcessing,
		Attempts:  attempts,
	}
}

func TestDrainDefaultsStayUnderProviderCeiling(t *testing.T) {
	ticksPerHour := float64(time.Hour) / float64(DefaultDrainInterval)
	perHour := float64(DefaultDrainBatch) * ticksPerHour
	assert.LessOrEqual(t, perHour, 150.0)
}

func TestDrainOnceDeliversAndDeletesRows(t *testing.T) {
	ctx := context.Background()
	pendingRepo := new(MockPendingEmailRepository)
	failedRepo := new(MockFailedEmailRepository)
	gw := new(MockMailGateway)
	w := NewEmailQueueWorker(pendingRepo, failedRepo, gw, "https://app.example.com/login")

	batch := []*entity.PendingEmail{
		pendingRow("p1", "a@x.com", 0),
		pendingRow("p2", "b@x.com", 0),
	}
	pendingRepo.On("ClaimBatch", ctx, DefaultDrainBatch).Return(batch, nil)
	gw.On("Send", ctx, mock.MatchedBy(func(msg mail.EmailMessage) bool {
		return msg.To == "a@x.com" || msg.To == "b@x.com"
	})).Return(mail.SendResult{Provider: "sendgrid"}, nil)
	pendingRepo.On("Delete", ctx, "p1").Return(nil)
	pendingRepo.On("Delete", ctx, "p2").Return(nil)

	n, err := w.DrainOnce(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	pendingRepo.AssertExpectations(t)
	failedRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDrainOnceEmptyQueue(t *testing.T) {
	ctx := context.Background()
	pendingRepo := new(MockPendingEmailRepository)
	failedRepo := new(MockFailedEmailRepository)
	gw := new(MockMailGateway)
	w := NewEmailQueueWorker(pendingRepo, failedRepo, gw, "")

	pendingRepo.On("ClaimBatch", ctx, DefaultDrainBatch).Return([]*entity.PendingEmail{}, nil)

	n, err := w.DrainOnce(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 0, n)
	gw.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestDrainOnceClaimFailure(t *testing.T) {
	ctx := context.Background()
	pendingRepo := new(MockPendingEmailRepository)
	w := NewEmailQueueWorker(pendingRepo, new(MockFailedEmailRepository), new(MockMailGateway), "")

	pendingRepo.On("ClaimBatch", ctx, DefaultDrainBatch).Return(nil, errors.New("db down"))

	n, err := w.DrainOnce(ctx)

	assert.Error(t, err)
	assert.Equal(t, 0, n)
}

func TestDrainFailureBelowCeilingRequeues(t *testing.T) {
	ctx := context.Background()
	pendingRepo := new(MockPendingEmailRepository)
	failedRepo := new(MockFailedEmailRepository)
	gw := new(MockMailGateway)
	w := NewEmailQueueWorker(pendingRepo, failedRepo, gw, "")

	// first attempt of three, so the row goes back for a later tick
	batch := []*entity.PendingEmail{pendingRow("p1", "a@x.com", 0)}
	pendingRepo.On("ClaimBatch", ctx, DefaultDrainBatch).Return(batch, nil)
	gw.On("Send", ctx, mock.Anything).Return(mail.SendResult{}, errors.New("rate limit exceeded"))
	pendingRepo.On("MarkRetrying", ctx, "p1").Return(nil)

	n, err := w.DrainOnce(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	pendingRepo.AssertCalled(t, "MarkRetrying", ctx, "p1")
	pendingRepo.AssertNotCalled(t, "Delete", ctx, "p1")
	failedRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDrainFailureAtCeilingMovesToLedger(t *testing.T) {
	ctx := context.Background()
	pendingRepo := new(MockPendingEmailRepository)
	failedRepo := new(MockFailedEmailRepository)
	gw := new(MockMailGateway)
	w := NewEmailQueueWorker(pendingRepo, failedRepo, gw, "")

	// third attempt of three
	batch := []*entity.PendingEmail{pendingRow("p1", "a@x.com", 2)}
	pendingRepo.On("ClaimBatch", ctx, DefaultDrainBatch).Return(batch, nil)
	gw.On("Send", ctx, mock.Anything).Return(mail.SendResult{}, errors.New("429 too many requests"))
	failedRepo.On("Create", ctx, mock.MatchedBy(func(f *entity.FailedEmail) bool {
		return f.Email == "a@x.com" &&
			f.ErrorType == entity.ErrorTypeRateLimit &&
			f.RetryCount == 3 &&
			f.Status == entity.FailedEmailStatusPending
	})).Return(nil)
	pendingRepo.On("Delete", ctx, "p1").Return(nil)

	n, err := w.DrainOnce(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	failedRepo.AssertExpectations(t)
	pendingRepo.AssertNotCalled(t, "MarkRetrying", ctx, "p1")
}

func TestDrainLedgerWriteFailureKeepsRow(t *testing.T) {
	ctx := context.Background()
	pendingRepo := new(MockPendingEmailRepository)
	failedRepo := new(MockFailedEmailRepository)
	gw := new(MockMailGateway)
	w := NewEmailQueueWorker(pendingRepo, failedRepo, gw, "")

	batch := []*entity.PendingEmail{pendingRow("p1", "a@x.com", 2)}
	pendingRepo.On("ClaimBatch", ctx, DefaultDrainBatch).Return(batch, nil)
	gw.On("Send", ctx, mock.Anything).Return(mail.SendResult{}, errors.New("boom"))
	failedRepo.On("Create", ctx, mock.Anything).Return(errors.New("db down"))
	pendingRepo.On("MarkRetrying", ctx, "p1").Return(nil)

	_, err := w.DrainOnce(ctx)

	assert.NoError(t, err)
	// the message survives in the queue rather than vanishing
	pendingRepo.AssertCalled(t, "MarkRetrying", ctx, "p1")
	pendingRepo.AssertNotCalled(t, "Delete", ctx, "p1")
}

func TestDrainOneFailureDoesNotBlockSiblings(t *testing.T) {
	ctx := context.Background()
	pendingRepo := new(MockPendingEmailRepository)
	failedRepo := new(MockFailedEmailRepository)
	gw := new(MockMailGateway)
	w := NewEmailQueueWorker(pendingRepo, failedRepo, gw, "")

	batch := []*entity.PendingEmail{
		pendingRow("p1", "bad@x.com", 0),
		pendingRow("p2", "ok@x.com", 0),
	}
	pendingRepo.On("ClaimBatch", ctx, DefaultDrainBatch).Return(batch, nil)
	gw.On("Send", ctx, mock.MatchedBy(func(msg mail.EmailMessage) bool {
		return msg.To == "bad@x.com"
	})).Return(mail.SendResult{}, errors.New("mailbox unavailable"))
	gw.On("Send", ctx, mock.MatchedBy(func(msg mail.EmailMessage) bool {
		return msg.To == "ok@x.com"
	})).Return(mail.SendResult{Provider: "smtp"}, nil)
	pendingRepo.On("MarkRetrying", ctx, "p1").Return(nil)
	pendingRepo.On("Delete", ctx, "p2").Return(nil)

	n, err := w.DrainOnce(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	pendingRepo.AssertExpectations(t)
}

func TestWorkerStopsOnContextCancel(t *testing.T) {
	pendingRepo := new(MockPendingEmailRepository)
	w := NewEmailQueueWorker(pendingRepo, new(MockFailedEmailRepository), new(MockMailGateway), "")
	w.tickInterval = time.Hour // never ticks during the test

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop on cancel")
	}
	pendingRepo.AssertNotCalled(t, "ClaimBatch", mock.Anything, mock.Anything)
}
