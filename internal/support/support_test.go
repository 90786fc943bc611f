package support

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"remote-support-backend/internal/db"
	"remote-support-backend/internal/model"
	"remote-support-backend/internal/store"
)

// newTestStore opens a per-test in-memory SQLite database.
func newTestStore(t *testing.T) store.Store {
	dsn := fmt.Sprintf("file:support_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gormDB))
	return store.NewGormStore(gormDB)
}

// lastEventOfType scans recent activity for the newest event of one type.
func lastEventOfType(t *testing.T, s store.Store, eventType string) *model.ActivityEvent {
	events, err := s.RecentActivity(context.Background(), 50)
	require.NoError(t, err)
	for i := range events {
		if events[i].Type == eventType {
			return &events[i]
		}
	}
	return nil
}
