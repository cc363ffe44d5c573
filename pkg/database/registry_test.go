package database

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryPingAndClose(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	reg := &Registry{DB: sqlx.NewDb(db, "sqlmock")}

	mock.ExpectPing()
	require.NoError(t, reg.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("down"))
	err = reg.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping postgres")

	mock.ExpectClose()
	require.NoError(t, reg.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistryPingWithoutDatabase(t *testing.T) {
	var reg *Registry
	assert.Error(t, reg.Ping(context.Background()))
	assert.NoError(t, reg.Close())
}
