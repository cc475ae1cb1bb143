package repository

import (
	"fmt"
	"sync/atomic"
	"testing"

	"go-wms/internal/apperr"
	"go-wms/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:repo_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.Outbound{}, &model.OutboundItem{}))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestUpdateVersioned_StaleVersionConflicts(t *testing.T) {
	db := setupDB(t)
	repo := NewOutboundRepo(db)

	ob := &model.Outbound{
		OutboundNo:  "OUT-100",
		Status:      model.OutboundPending,
		PaymentType: model.PaymentCOD,
	}
	require.NoError(t, repo.Create(ob))
	assert.Equal(t, 1, ob.Version)

	// Two readers hold the same snapshot.
	stale := *ob

	require.NoError(t, repo.UpdateHeader(db, ob, map[string]interface{}{
		"status": model.OutboundPicking,
	}))

	// The loser's version token no longer matches the row.
	err := repo.UpdateHeader(db, &stale, map[string]interface{}{
		"status": model.OutboundCancelled,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeConcurrencyConflict, apperr.CodeOf(err))

	// The winner's write stands untouched.
	var current model.Outbound
	require.NoError(t, db.First(&current, "id = ?", ob.ID).Error)
	assert.Equal(t, model.OutboundPicking, current.Status)
	assert.Equal(t, 2, current.Version)
}

func TestUpdateVersioned_BumpsVersionEachWrite(t *testing.T) {
	db := setupDB(t)
	repo := NewOutboundRepo(db)

	ob := &model.Outbound{
		OutboundNo:  "OUT-101",
		Status:      model.OutboundPending,
		PaymentType: model.PaymentCOD,
	}
	require.NoError(t, repo.Create(ob))

	require.NoError(t, repo.UpdateHeader(db, ob, map[string]interface{}{
		"status": model.OutboundPicking,
	}))

	reloaded, err := repo.FindByID(ob.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Version)

	// A fresh read carries the current token and writes cleanly.
	require.NoError(t, repo.UpdateHeader(db, reloaded, map[string]interface{}{
		"status": model.OutboundPicked,
	}))

	reloaded, err = repo.FindByID(ob.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Version)
	assert.Equal(t, model.OutboundPicked, reloaded.Status)
}
