package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"assettrack/internal/types"
)

// Note: mockDBTX and mockRow are defined in asset_repo_test.go and reused here.

func TestWarrantyNotificationRepository_SentWithin_Found(t *testing.T) {
	db := new(mockDBTX)
	repo := NewWarrantyNotificationRepository(db)
	ctx := context.Background()

	cutoff := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	row := &mockRow{
		scanFn: func(dest ...any) error {
			*dest[0].(*bool) = true
			return nil
		},
	}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) {
			sqlArgs := args.Get(2).([]any)
			assert.Equal(t, int64(7), sqlArgs[0])
			assert.Equal(t, "30_day", sqlArgs[1])
			assert.Equal(t, cutoff, sqlArgs[2])
		}).
		Return(row)

	sent, err := repo.SentWithin(ctx, 7, types.Notify30Day, cutoff)
	require.NoError(t, err)
	assert.True(t, sent)
	db.AssertExpectations(t)
}

func TestWarrantyNotificationRepository_SentWithin_NotFound(t *testing.T) {
	db := new(mockDBTX)
	repo := NewWarrantyNotificationRepository(db)
	ctx := context.Background()

	row := &mockRow{
		scanFn: func(dest ...any) error {
			*dest[0].(*bool) = false
			return nil
		},
	}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(row)

	sent, err := repo.SentWithin(ctx, 7, types.NotifyExpired, time.Now())
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestWarrantyNotificationRepository_SentWithin_DBError(t *testing.T) {
	db := new(mockDBTX)
	repo := NewWarrantyNotificationRepository(db)
	ctx := context.Background()

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanErr: errors.New("connection refused")})

	_, err := repo.SentWithin(ctx, 7, types.Notify90Day, time.Now())
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

func TestWarrantyNotificationRepository_Record_Success(t *testing.T) {
	db := new(mockDBTX)
	repo := NewWarrantyNotificationRepository(db)
	ctx := context.Background()

	sentAt := time.Date(2026, 3, 15, 6, 0, 0, 0, time.UTC)

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) {
			sql := args.Get(1).(string)
			assert.Contains(t, sql, "ON CONFLICT")
			sqlArgs := args.Get(2).([]any)
			assert.Equal(t, int64(3), sqlArgs[0])
			assert.Equal(t, "expired", sqlArgs[1])
			assert.Equal(t, sentAt, sqlArgs[2])
		}).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	err := repo.Record(ctx, 3, types.NotifyExpired, sentAt)
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestWarrantyNotificationRepository_Record_ConflictIsNotAnError(t *testing.T) {
	// A concurrent run already landed a row for this asset/type/window;
	// ON CONFLICT DO NOTHING reports zero rows and Record stays quiet.
	db := new(mockDBTX)
	repo := NewWarrantyNotificationRepository(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 0"), nil)

	err := repo.Record(ctx, 3, types.NotifyExpired, time.Now())
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestWarrantyNotificationRepository_Record_DBError(t *testing.T) {
	db := new(mockDBTX)
	repo := NewWarrantyNotificationRepository(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("table locked"))

	err := repo.Record(ctx, 3, types.Notify30Day, time.Now())
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}
