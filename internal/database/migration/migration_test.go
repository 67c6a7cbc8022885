package migration

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const sentinelQuery = "SELECT to_regclass"

func TestEnsureMigrated_Skip(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	core, logs := observer.New(zap.InfoLevel)

	mock.ExpectQuery(sentinelQuery).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err = EnsureMigrated(context.Background(), db, zap.New(core), "db")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 1, logs.FilterMessage("db_migration_skip").Len())
}

func TestEnsureMigrated_RunsAllSteps(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	core, logs := observer.New(zap.InfoLevel)

	mock.ExpectQuery(sentinelQuery).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	for _, step := range steps {
		mock.ExpectExec(regexp.QuoteMeta(step.SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	err = EnsureMigrated(context.Background(), db, zap.New(core), "db")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, len(steps), logs.FilterMessage("db_migration_step").Len())
	assert.Equal(t, 1, logs.FilterMessage("db_migration_success").Len())
}

func TestEnsureMigrated_StepFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	core, logs := observer.New(zap.InfoLevel)

	mock.ExpectQuery(sentinelQuery).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta(steps[0].SQL)).WillReturnError(errors.New("permission denied"))

	err = EnsureMigrated(context.Background(), db, zap.New(core), "db")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "migration step create_table_roles failed")
	assert.Equal(t, 1, logs.FilterMessage("db_migration_failed").Len())
}

func TestEnsureMigrated_SentinelFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(sentinelQuery).WillReturnError(errors.New("connection reset"))

	err = EnsureMigrated(context.Background(), db, zap.NewNop(), "db")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to check sentinel table")
}

func TestEnsureAdmin(t *testing.T) {
	const update = "UPDATE users SET role = 2"

	t.Run("empty email does nothing", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		require.NoError(t, EnsureAdmin(context.Background(), db, zap.NewNop(), "  "))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("promotes lower-cased email", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		core, logs := observer.New(zap.InfoLevel)
		mock.ExpectExec(update).WithArgs("ops@example.com").WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, EnsureAdmin(context.Background(), db, zap.New(core), " Ops@Example.com"))
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Equal(t, 1, logs.FilterMessage("admin_bootstrap_promoted").Len())
	})

	t.Run("no matching user", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		core, logs := observer.New(zap.InfoLevel)
		mock.ExpectExec(update).WithArgs("ops@example.com").WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, EnsureAdmin(context.Background(), db, zap.New(core), "ops@example.com"))
		assert.Equal(t, 1, logs.FilterMessage("admin_bootstrap_skip").Len())
	})

	t.Run("exec failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(update).WillReturnError(errors.New("read-only transaction"))

		err = EnsureAdmin(context.Background(), db, zap.NewNop(), "ops@example.com")
		assert.ErrorContains(t, err, "promote admin: read-only transaction")
	})
}
