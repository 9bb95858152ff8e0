package tenant

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type scopedRow struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Month    string
}

func (scopedRow) TableName() string {
	return "salary_records"
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
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

	return gormDB, mock, mockDB
}

func TestScope(t *testing.T) {
	t.Run("applies tenant filter to query", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "salary_records" WHERE tenant_id = \$1`).
			WithArgs(tenantID.String()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "month"}))

		var rows []scopedRow
		require.NoError(t, db.Scopes(Scope(tenantID)).Find(&rows).Error)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nil tenant never reaches the database", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		var rows []scopedRow
		err := db.Scopes(Scope(uuid.Nil)).Find(&rows).Error
		assert.ErrorIs(t, err, ErrTenantIDRequired)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestScopeColumn(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()
	tenantID := uuid.New()

	// scopes are applied at execution, after the caller's own conditions
	mock.ExpectQuery(`SELECT \* FROM "salary_records" WHERE month = \$1 AND salary_records.tenant_id = \$2`).
		WithArgs("January", tenantID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "month"}))

	var rows []scopedRow
	err := db.Scopes(ScopeColumn("salary_records.tenant_id", tenantID)).
		Where("month = ?", "January").
		Find(&rows).Error
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
