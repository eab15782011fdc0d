package app

import (
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/business-school/campus-api/pkg/config"
)

func TestNewContainerWiresServices(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cfg := &config.Config{Reports: config.ReportsConfig{StorageDir: t.TempDir()}}
	container, err := NewContainer(cfg, sqlx.NewDb(db, "sqlmock"), nil, zap.NewNop())
	require.NoError(t, err)

	assert.NotNil(t, container.Migrator)
	assert.NotNil(t, container.Seed)
	assert.NotNil(t, container.Identity)
	assert.NotNil(t, container.Bootstrap)
	assert.NotNil(t, container.Reports)
	assert.NotNil(t, container.Catalog)
	assert.NotNil(t, container.Metrics.Registry())
	assert.NoError(t, mock.ExpectationsWereMet())
}
