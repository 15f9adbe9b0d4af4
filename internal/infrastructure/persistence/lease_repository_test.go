package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockLeaseRepository creates a GormLeaseRepository with a mocked SQL connection
func newMockLeaseRepository(t *testing.T) (*GormLeaseRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormLeaseRepository(gormDB), mock, mockDB
}

// expectLeasePreloads registers the child-row queries GORM issues after
// loading a lease aggregate (alphabetical preload order)
func expectLeasePreloads(mock sqlmock.Sqlmock, leaseID uuid.UUID) {
	mock.ExpectQuery(`SELECT \* FROM "lease_parties" WHERE "lease_parties"\."lease_id" = \$1`).
		WithArgs(leaseID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "lease_id", "name", "role"}))
	mock.ExpectQuery(`SELECT \* FROM "lease_billing_settings" WHERE "lease_billing_settings"\."lease_id" = \$1`).
		WithArgs(leaseID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "lease_id", "billing_day"}))
	mock.ExpectQuery(`SELECT \* FROM "lease_terms" WHERE "lease_terms"\."lease_id" = \$1`).
		WithArgs(leaseID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "lease_id", "effective_from"}))
}

func TestNewGormLeaseRepository(t *testing.T) {
	t.Run("creates repository with valid DB", func(t *testing.T) {
		repo, _, mockDB := newMockLeaseRepository(t)
		defer mockDB.Close()

		assert.NotNil(t, repo)
		assert.NotNil(t, repo.db)
	})
}

func TestGormLeaseRepository_FindByID(t *testing.T) {
	t.Run("finds existing lease", func(t *testing.T) {
		repo, mock, mockDB := newMockLeaseRepository(t)
		defer mockDB.Close()

		leaseID := uuid.New()
		tenantID := uuid.New()
		unitID := uuid.New()
		startDate := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "version", "lease_number", "unit_id", "status", "start_date", "rent_due_day"}).
			AddRow(leaseID, tenantID, 1, "LSE-2026-00001", unitID, "ACTIVE", startDate, 1)

		mock.ExpectQuery(`SELECT \* FROM "leases" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(leaseID, 1).
			WillReturnRows(rows)
		expectLeasePreloads(mock, leaseID)

		lease, err := repo.FindByID(context.Background(), leaseID)

		assert.NoError(t, err)
		assert.NotNil(t, lease)
		assert.Equal(t, leaseID, lease.ID)
		assert.Equal(t, "LSE-2026-00001", lease.LeaseNumber)
		assert.Equal(t, leasing.LeaseStatusActive, lease.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns error for non-existent lease", func(t *testing.T) {
		repo, mock, mockDB := newMockLeaseRepository(t)
		defer mockDB.Close()

		leaseID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "leases" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(leaseID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		lease, err := repo.FindByID(context.Background(), leaseID)

		assert.Error(t, err)
		assert.Nil(t, lease)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLeaseRepository_FindByIDForTenant(t *testing.T) {
	t.Run("finds lease within tenant", func(t *testing.T) {
		repo, mock, mockDB := newMockLeaseRepository(t)
		defer mockDB.Close()

		leaseID := uuid.New()
		tenantID := uuid.New()
		startDate := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "version", "lease_number", "unit_id", "status", "start_date", "rent_due_day"}).
			AddRow(leaseID, tenantID, 1, "LSE-2026-00001", uuid.New(), "DRAFT", startDate, 1)

		mock.ExpectQuery(`SELECT \* FROM "leases" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, leaseID, 1).
			WillReturnRows(rows)
		expectLeasePreloads(mock, leaseID)

		lease, err := repo.FindByIDForTenant(context.Background(), tenantID, leaseID)

		assert.NoError(t, err)
		assert.NotNil(t, lease)
		assert.Equal(t, tenantID, lease.TenantID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("does not return a lease from another tenant", func(t *testing.T) {
		repo, mock, mockDB := newMockLeaseRepository(t)
		defer mockDB.Close()

		leaseID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "leases" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, leaseID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		lease, err := repo.FindByIDForTenant(context.Background(), tenantID, leaseID)

		assert.Error(t, err)
		assert.Nil(t, lease)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLeaseRepository_FindByLeaseNumber(t *testing.T) {
	t.Run("finds lease by lease number", func(t *testing.T) {
		repo, mock, mockDB := newMockLeaseRepository(t)
		defer mockDB.Close()

		leaseID := uuid.New()
		tenantID := uuid.New()
		startDate := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "version", "lease_number", "unit_id", "status", "start_date", "rent_due_day"}).
			AddRow(leaseID, tenantID, 1, "LSE-2026-00042", uuid.New(), "ACTIVE", startDate, 5)

		mock.ExpectQuery(`SELECT \* FROM "leases" WHERE tenant_id = \$1 AND lease_number = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, "LSE-2026-00042", 1).
			WillReturnRows(rows)
		expectLeasePreloads(mock, leaseID)

		lease, err := repo.FindByLeaseNumber(context.Background(), tenantID, "LSE-2026-00042")

		assert.NoError(t, err)
		assert.NotNil(t, lease)
		assert.Equal(t, "LSE-2026-00042", lease.LeaseNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLeaseRepository_HasActiveLease(t *testing.T) {
	t.Run("returns true when a lease covers the date", func(t *testing.T) {
		repo, mock, mockDB := newMockLeaseRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		unitID := uuid.New()
		asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "leases" WHERE tenant_id = \$1 AND unit_id = \$2 AND status IN \(\$3,\$4\) AND start_date <= \$5 AND \(end_date IS NULL OR end_date > \$6\)`).
			WithArgs(tenantID, unitID, leasing.LeaseStatusActive, leasing.LeaseStatusNoticeGiven, asOf, asOf).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		occupied, err := repo.HasActiveLease(context.Background(), tenantID, unitID, asOf)

		assert.NoError(t, err)
		assert.True(t, occupied)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns false when no lease overlaps the date", func(t *testing.T) {
		repo, mock, mockDB := newMockLeaseRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		unitID := uuid.New()
		// The sitting lease ends June 30, so a move-in dated July 1 is clear.
		asOf := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "leases" WHERE tenant_id = \$1 AND unit_id = \$2 AND status IN \(\$3,\$4\) AND start_date <= \$5 AND \(end_date IS NULL OR end_date > \$6\)`).
			WithArgs(tenantID, unitID, leasing.LeaseStatusActive, leasing.LeaseStatusNoticeGiven, asOf, asOf).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		occupied, err := repo.HasActiveLease(context.Background(), tenantID, unitID, asOf)

		assert.NoError(t, err)
		assert.False(t, occupied)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLeaseRepository_FindDueForBilling(t *testing.T) {
	t.Run("selects opted-in leases overlapping the period", func(t *testing.T) {
		repo, mock, mockDB := newMockLeaseRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		leaseID := uuid.New()
		periodStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		periodEnd := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "version", "lease_number", "unit_id", "status", "start_date", "rent_due_day"}).
			AddRow(leaseID, tenantID, 1, "LSE-2026-00001", uuid.New(), "ACTIVE", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 1)

		mock.ExpectQuery(`SELECT .* FROM "leases" JOIN lease_billing_settings ON lease_billing_settings\.lease_id = leases\.id WHERE leases\.tenant_id = \$1 AND leases\.status IN \(\$2,\$3\) AND lease_billing_settings\.generate_automatically = \$4 AND leases\.start_date < \$5 AND \(leases\.end_date IS NULL OR leases\.end_date > \$6\) ORDER BY leases\.lease_number ASC`).
			WithArgs(tenantID, leasing.LeaseStatusActive, leasing.LeaseStatusNoticeGiven, true, periodEnd, periodStart).
			WillReturnRows(rows)
		expectLeasePreloads(mock, leaseID)

		leases, err := repo.FindDueForBilling(context.Background(), tenantID, periodStart, periodEnd)

		assert.NoError(t, err)
		require.Len(t, leases, 1)
		assert.Equal(t, leaseID, leases[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns empty set when nothing is due", func(t *testing.T) {
		repo, mock, mockDB := newMockLeaseRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		periodStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		periodEnd := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT .* FROM "leases" JOIN lease_billing_settings ON lease_billing_settings\.lease_id = leases\.id WHERE .* ORDER BY leases\.lease_number ASC`).
			WithArgs(tenantID, leasing.LeaseStatusActive, leasing.LeaseStatusNoticeGiven, true, periodEnd, periodStart).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		leases, err := repo.FindDueForBilling(context.Background(), tenantID, periodStart, periodEnd)

		assert.NoError(t, err)
		assert.Empty(t, leases)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLeaseRepository_SaveWithLock(t *testing.T) {
	t.Run("rejects stale version", func(t *testing.T) {
		repo, mock, mockDB := newMockLeaseRepository(t)
		defer mockDB.Close()

		leaseID := uuid.New()
		lease := &leasing.Lease{}
		lease.ID = leaseID

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT "version" FROM "leases" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(leaseID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(3))
		mock.ExpectRollback()

		err := repo.SaveWithLock(context.Background(), lease, 2)

		assert.Error(t, err)
		assert.Equal(t, shared.ErrConcurrencyConflict, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing lease", func(t *testing.T) {
		repo, mock, mockDB := newMockLeaseRepository(t)
		defer mockDB.Close()

		leaseID := uuid.New()
		lease := &leasing.Lease{}
		lease.ID = leaseID

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT "version" FROM "leases" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(leaseID, 1).
			WillReturnError(gorm.ErrRecordNotFound)
		mock.ExpectRollback()

		err := repo.SaveWithLock(context.Background(), lease, 1)

		assert.Error(t, err)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLeaseRepository_Delete(t *testing.T) {
	t.Run("deletes lease with child rows", func(t *testing.T) {
		repo, mock, mockDB := newMockLeaseRepository(t)
		defer mockDB.Close()

		leaseID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "lease_parties" WHERE lease_id = \$1`).
			WithArgs(leaseID).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`DELETE FROM "lease_terms" WHERE lease_id = \$1`).
			WithArgs(leaseID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM "lease_billing_settings" WHERE lease_id = \$1`).
			WithArgs(leaseID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM "leases" WHERE id = \$1`).
			WithArgs(leaseID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Delete(context.Background(), leaseID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns error for non-existent lease", func(t *testing.T) {
		repo, mock, mockDB := newMockLeaseRepository(t)
		defer mockDB.Close()

		leaseID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "lease_parties" WHERE lease_id = \$1`).
			WithArgs(leaseID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM "lease_terms" WHERE lease_id = \$1`).
			WithArgs(leaseID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM "lease_billing_settings" WHERE lease_id = \$1`).
			WithArgs(leaseID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM "leases" WHERE id = \$1`).
			WithArgs(leaseID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Delete(context.Background(), leaseID)

		assert.Error(t, err)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLeaseRepository_InterfaceCompliance(t *testing.T) {
	t.Run("implements LeaseRepository interface", func(t *testing.T) {
		repo, _, mockDB := newMockLeaseRepository(t)
		defer mockDB.Close()

		var _ leasing.LeaseRepository = repo
	})
}
