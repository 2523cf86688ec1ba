package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/quackr/quack_auth_server/internal/repository"
	"github.com/quackr/quack_auth_server/internal/testutil"
)

func setupQuotaService(t *testing.T) (*QuotaService, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	userRepo := repository.NewUserRepository(db)
	service := NewQuotaService(userRepo, testConfig())

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return service, db, cleanup
}

func TestQuotaService_Use_Quack(t *testing.T) {
	service, db, cleanup := setupQuotaService(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithQuota(2, 2))

	require.NoError(t, service.Use(user.ID, ReactionQuack))

	info, err := service.GetQuotaInfo(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, info.RemainingQuack)
	assert.Equal(t, 2, info.RemainingHate)
}

func TestQuotaService_Use_Hate(t *testing.T) {
	service, db, cleanup := setupQuotaService(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithQuota(2, 2))

	require.NoError(t, service.Use(user.ID, ReactionHate))

	info, err := service.GetQuotaInfo(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, info.RemainingQuack)
	assert.Equal(t, 1, info.RemainingHate)
}

func TestQuotaService_Use_Exhausted(t *testing.T) {
	service, db, cleanup := setupQuotaService(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithQuota(1, 0))

	// Last quack succeeds, next one is rejected
	require.NoError(t, service.Use(user.ID, ReactionQuack))
	assert.Equal(t, ErrQuotaExceeded, service.Use(user.ID, ReactionQuack))

	// Exhausted hate counter is rejected outright
	assert.Equal(t, ErrQuotaExceeded, service.Use(user.ID, ReactionHate))

	// Counters stay at zero, never negative
	info, err := service.GetQuotaInfo(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, info.RemainingQuack)
	assert.Equal(t, 0, info.RemainingHate)
}

func TestQuotaService_Use_UserNotFound(t *testing.T) {
	service, _, cleanup := setupQuotaService(t)
	defer cleanup()

	assert.Equal(t, ErrUserNotFound, service.Use(99999, ReactionQuack))
}

func TestQuotaService_GetQuotaInfo(t *testing.T) {
	service, db, cleanup := setupQuotaService(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithQuota(42, 17))

	info, err := service.GetQuotaInfo(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 500, info.DailyLimit)
	assert.Equal(t, 42, info.RemainingQuack)
	assert.Equal(t, 17, info.RemainingHate)

	// Reading quota never decrements
	info2, err := service.GetQuotaInfo(user.ID)
	require.NoError(t, err)
	assert.Equal(t, info.RemainingQuack, info2.RemainingQuack)

	_, err = service.GetQuotaInfo(99999)
	assert.Equal(t, ErrUserNotFound, err)
}

func TestQuotaService_ResetAllQuotas(t *testing.T) {
	service, db, cleanup := setupQuotaService(t)
	defer cleanup()

	u1 := testutil.TestUser(t, db, testutil.WithQuota(0, 0))
	u2 := testutil.TestUser(t, db, testutil.WithQuota(250, 499))

	require.NoError(t, service.ResetAllQuotas())

	for _, id := range []int64{u1.ID, u2.ID} {
		info, err := service.GetQuotaInfo(id)
		require.NoError(t, err)
		assert.Equal(t, 500, info.RemainingQuack)
		assert.Equal(t, 500, info.RemainingHate)
	}
}

func TestQuotaService_ResetAllQuotas_NoUsers(t *testing.T) {
	service, _, cleanup := setupQuotaService(t)
	defer cleanup()

	// An empty user table is an operational anomaly, surfaced as ErrNoUsers
	assert.Equal(t, ErrNoUsers, service.ResetAllQuotas())
}
