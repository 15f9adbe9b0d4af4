package leasing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	domain "github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockLeaseRepository is a mock implementation of leasing.LeaseRepository
type MockLeaseRepository struct {
	mock.Mock
}

func (m *MockLeaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Lease, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lease), args.Error(1)
}

func (m *MockLeaseRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*domain.Lease, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lease), args.Error(1)
}

func (m *MockLeaseRepository) FindByLeaseNumber(ctx context.Context, tenantID uuid.UUID, leaseNumber string) (*domain.Lease, error) {
	args := m.Called(ctx, tenantID, leaseNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lease), args.Error(1)
}

func (m *MockLeaseRepository) Save(ctx context.Context, lease *domain.Lease) error {
	args := m.Called(ctx, lease)
	return args.Error(0)
}

func (m *MockLeaseRepository) SaveWithLock(ctx context.Context, lease *domain.Lease, expectedVersion int) error {
	args := m.Called(ctx, lease, expectedVersion)
	return args.Error(0)
}

func (m *MockLeaseRepository) HasActiveLease(ctx context.Context, tenantID, unitID uuid.UUID, asOf time.Time) (bool, error) {
	args := m.Called(ctx, tenantID, unitID, asOf)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeaseRepository) FindDueForBilling(ctx context.Context, tenantID uuid.UUID, periodStart, periodEnd time.Time) ([]*domain.Lease, error) {
	args := m.Called(ctx, tenantID, periodStart, periodEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Lease), args.Error(1)
}

func (m *MockLeaseRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*domain.Lease], error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*domain.Lease]), args.Error(1)
}

func (m *MockLeaseRepository) GenerateLeaseNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

func (m *MockLeaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func testClock() shared.Clock {
	return shared.FixedClock{Instant: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func activationReadyLease(t *testing.T, tenantID uuid.UUID) *domain.Lease {
	t.Helper()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	lease, err := domain.NewLease(tenantID, "LSE-2026-00001", uuid.New(), start, nil, 5)
	require.NoError(t, err)
	_, err = lease.AddParty(uuid.New(), "Asha Nair", domain.PartyRolePrimaryTenant, true)
	require.NoError(t, err)
	term, err := domain.NewLeaseTerm(lease.ID, start, nil, decimal.NewFromInt(15000), decimal.NewFromInt(30000))
	require.NoError(t, err)
	require.NoError(t, lease.AppendTerm(term))
	lease.ClearDomainEvents()
	return lease
}

func TestLeaseServiceCreate(t *testing.T) {
	tenantID := uuid.New()
	ctx := context.Background()

	t.Run("creates draft with generated number", func(t *testing.T) {
		repo := new(MockLeaseRepository)
		service := NewLeaseService(repo, testClock())

		repo.On("GenerateLeaseNumber", ctx, tenantID).Return("LSE-2026-00042", nil)
		repo.On("Save", ctx, mock.AnythingOfType("*leasing.Lease")).Return(nil)

		response, err := service.Create(ctx, tenantID, CreateLeaseRequest{
			UnitID:     uuid.New(),
			StartDate:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			RentDueDay: 5,
		})

		require.NoError(t, err)
		assert.Equal(t, "LSE-2026-00042", response.LeaseNumber)
		assert.Equal(t, domain.LeaseStatusDraft.String(), response.Status)
		repo.AssertExpectations(t)
	})

	t.Run("propagates number generation failure", func(t *testing.T) {
		repo := new(MockLeaseRepository)
		service := NewLeaseService(repo, testClock())

		repo.On("GenerateLeaseNumber", ctx, tenantID).Return("", assert.AnError)

		_, err := service.Create(ctx, tenantID, CreateLeaseRequest{
			UnitID:     uuid.New(),
			StartDate:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			RentDueDay: 5,
		})

		assert.Error(t, err)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestLeaseServiceActivate(t *testing.T) {
	tenantID := uuid.New()
	ctx := context.Background()

	t.Run("activates when unit is free", func(t *testing.T) {
		repo := new(MockLeaseRepository)
		service := NewLeaseService(repo, testClock())
		lease := activationReadyLease(t, tenantID)

		repo.On("FindByIDForTenant", ctx, tenantID, lease.ID).Return(lease, nil)
		repo.On("HasActiveLease", ctx, tenantID, lease.UnitID, lease.StartDate).Return(false, nil)
		repo.On("SaveWithLock", ctx, lease, 1).Return(nil)

		response, err := service.Activate(ctx, tenantID, lease.ID, 1)

		require.NoError(t, err)
		assert.Equal(t, domain.LeaseStatusActive.String(), response.Status)
		repo.AssertExpectations(t)
	})

	t.Run("occupancy is checked as of the lease start date", func(t *testing.T) {
		repo := new(MockLeaseRepository)
		service := NewLeaseService(repo, testClock())
		lease := activationReadyLease(t, tenantID)

		// The sitting lease vacates before March 1, so the overlap check
		// keyed on the start date reports the unit free.
		repo.On("FindByIDForTenant", ctx, tenantID, lease.ID).Return(lease, nil)
		repo.On("HasActiveLease", ctx, tenantID, lease.UnitID, lease.StartDate).Return(false, nil)
		repo.On("SaveWithLock", ctx, lease, 1).Return(nil)

		_, err := service.Activate(ctx, tenantID, lease.ID, 1)

		require.NoError(t, err)
		repo.AssertCalled(t, "HasActiveLease", ctx, tenantID, lease.UnitID, lease.StartDate)
	})

	t.Run("occupied unit blocks activation before persistence", func(t *testing.T) {
		repo := new(MockLeaseRepository)
		service := NewLeaseService(repo, testClock())
		lease := activationReadyLease(t, tenantID)

		repo.On("FindByIDForTenant", ctx, tenantID, lease.ID).Return(lease, nil)
		repo.On("HasActiveLease", ctx, tenantID, lease.UnitID, lease.StartDate).Return(true, nil)

		_, err := service.Activate(ctx, tenantID, lease.ID, 1)

		assert.ErrorIs(t, err, domain.ErrUnitAlreadyOccupied)
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("version conflict surfaces from repository", func(t *testing.T) {
		repo := new(MockLeaseRepository)
		service := NewLeaseService(repo, testClock())
		lease := activationReadyLease(t, tenantID)

		repo.On("FindByIDForTenant", ctx, tenantID, lease.ID).Return(lease, nil)
		repo.On("HasActiveLease", ctx, tenantID, lease.UnitID, lease.StartDate).Return(false, nil)
		repo.On("SaveWithLock", ctx, lease, 2).Return(shared.ErrConcurrencyConflict)

		_, err := service.Activate(ctx, tenantID, lease.ID, 2)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestLeaseServiceAppendTerm(t *testing.T) {
	tenantID := uuid.New()
	ctx := context.Background()

	t.Run("appends and closes previous term", func(t *testing.T) {
		repo := new(MockLeaseRepository)
		service := NewLeaseService(repo, testClock())
		lease := activationReadyLease(t, tenantID)

		repo.On("FindByIDForTenant", ctx, tenantID, lease.ID).Return(lease, nil)
		repo.On("Save", ctx, lease).Return(nil)

		response, err := service.AppendTerm(ctx, tenantID, lease.ID, AppendTermRequest{
			EffectiveFrom: time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC),
			MonthlyRent:   decimal.NewFromInt(16500),
		})

		require.NoError(t, err)
		require.Len(t, response.Terms, 2)
		assert.NotNil(t, response.Terms[0].EffectiveTo)
	})

	t.Run("overlapping term rejected", func(t *testing.T) {
		repo := new(MockLeaseRepository)
		service := NewLeaseService(repo, testClock())
		lease := activationReadyLease(t, tenantID)

		end := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)
		closing, err := domain.NewLeaseTerm(lease.ID, end, nil, decimal.NewFromInt(16500), decimal.Zero)
		require.NoError(t, err)
		require.NoError(t, lease.AppendTerm(closing))

		repo.On("FindByIDForTenant", ctx, tenantID, lease.ID).Return(lease, nil)

		_, err = service.AppendTerm(ctx, tenantID, lease.ID, AppendTermRequest{
			EffectiveFrom: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			EffectiveTo:   &end,
			MonthlyRent:   decimal.NewFromInt(15500),
		})

		assert.ErrorIs(t, err, domain.ErrTermOverlap)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestLeaseServiceLifecycle(t *testing.T) {
	tenantID := uuid.New()
	ctx := context.Background()

	t.Run("give notice then end", func(t *testing.T) {
		repo := new(MockLeaseRepository)
		service := NewLeaseService(repo, testClock())
		lease := activationReadyLease(t, tenantID)
		require.NoError(t, lease.Activate(false, testClock().Now()))
		lease.ClearDomainEvents()

		repo.On("FindByIDForTenant", ctx, tenantID, lease.ID).Return(lease, nil)
		repo.On("Save", ctx, lease).Return(nil)

		response, err := service.GiveNotice(ctx, tenantID, lease.ID, GiveNoticeRequest{
			NoticeDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.LeaseStatusNoticeGiven.String(), response.Status)

		response, err = service.End(ctx, tenantID, lease.ID, EndLeaseRequest{
			EndDate: time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.LeaseStatusEnded.String(), response.Status)
	})

	t.Run("cancel draft", func(t *testing.T) {
		repo := new(MockLeaseRepository)
		service := NewLeaseService(repo, testClock())
		lease := activationReadyLease(t, tenantID)

		repo.On("FindByIDForTenant", ctx, tenantID, lease.ID).Return(lease, nil)
		repo.On("Save", ctx, lease).Return(nil)

		response, err := service.Cancel(ctx, tenantID, lease.ID, CancelLeaseRequest{Reason: "applicant withdrew"})

		require.NoError(t, err)
		assert.Equal(t, domain.LeaseStatusCancelled.String(), response.Status)
	})
}
