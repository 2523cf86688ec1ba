package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/gorm"

	"github.com/quackr/quack_auth_server/config"
	"github.com/quackr/quack_auth_server/internal/model"
	"github.com/quackr/quack_auth_server/internal/model/dto"
	"github.com/quackr/quack_auth_server/internal/pkg/jwt"
	"github.com/quackr/quack_auth_server/internal/repository"
	"github.com/quackr/quack_auth_server/internal/testutil"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:              "test-secret-key-for-testing",
			AccessExpireMinutes: 30,
			RefreshExpireHours:  24,
			VerifyExpireMinutes: 60,
			ResetExpireMinutes:  15,
		},
		Quota: config.QuotaConfig{
			DailyLimit:  500,
			PopularTopN: 3,
		},
		Mail: config.MailConfig{
			QueueName: "test_mail_queue",
		},
		Links: config.LinksConfig{
			VerifyAccountURL: "http://localhost:3000/verify",
			ResetPasswordURL: "http://localhost:3000/reset",
		},
		OAuth: config.OAuthConfig{
			Github: config.GithubOAuthConfig{
				ClientID:     "test-client-id",
				ClientSecret: "test-client-secret",
				RedirectURI:  "http://localhost:8080/callback",
			},
		},
	}
}

func setupAuthService(t *testing.T) (*AuthService, *gorm.DB, *jwt.Codec, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	userRepo := repository.NewUserRepository(db)

	cfg := testConfig()
	codec := jwt.NewCodec(&cfg.JWT)
	service := NewAuthService(userRepo, codec, cfg)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return service, db, codec, cleanup
}

func TestAuthService_Login_Success(t *testing.T) {
	service, db, codec, cleanup := setupAuthService(t)
	defer cleanup()

	user := testutil.TestUser(t, db,
		testutil.WithMail("confirmed@example.com"),
		testutil.WithPassword(t, "password123"),
		testutil.WithStatus(model.StatusConfirmed),
	)

	resp, err := service.Login(&dto.LoginRequest{
		Mail:     "confirmed@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEqual(t, resp.AccessToken, resp.RefreshToken)

	// Access token carries the full identity
	claims, err := codec.ParsePurpose(resp.AccessToken, jwt.PurposeAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Mail, claims.Subject)
	assert.Equal(t, model.RoleUser, claims.Role)
	assert.Equal(t, model.StatusConfirmed, claims.Status)

	_, err = codec.ParsePurpose(resp.RefreshToken, jwt.PurposeRefresh)
	require.NoError(t, err)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	service, db, _, cleanup := setupAuthService(t)
	defer cleanup()

	testutil.TestUser(t, db,
		testutil.WithMail("user@example.com"),
		testutil.WithPassword(t, "correct-password"),
	)

	_, err := service.Login(&dto.LoginRequest{
		Mail:     "user@example.com",
		Password: "wrong-password",
	})
	assert.Equal(t, ErrInvalidCredentials, err)
}

func TestAuthService_Login_UnknownMail(t *testing.T) {
	service, _, _, cleanup := setupAuthService(t)
	defer cleanup()

	// Unknown mail and wrong password must be indistinguishable
	_, err := service.Login(&dto.LoginRequest{
		Mail:     "nobody@example.com",
		Password: "password123",
	})
	assert.Equal(t, ErrInvalidCredentials, err)
}

func TestAuthService_Login_NotVerified(t *testing.T) {
	service, db, _, cleanup := setupAuthService(t)
	defer cleanup()

	testutil.TestUser(t, db,
		testutil.WithMail("registered@example.com"),
		testutil.WithPassword(t, "password123"),
		testutil.WithStatus(model.StatusRegistered),
	)

	_, err := service.Login(&dto.LoginRequest{
		Mail:     "registered@example.com",
		Password: "password123",
	})
	assert.Equal(t, ErrNotVerified, err)
}

func TestAuthService_Login_Blocked(t *testing.T) {
	service, db, _, cleanup := setupAuthService(t)
	defer cleanup()

	testutil.TestUser(t, db,
		testutil.WithMail("blocked@example.com"),
		testutil.WithPassword(t, "password123"),
		testutil.WithStatus(model.StatusBlocked),
	)

	_, err := service.Login(&dto.LoginRequest{
		Mail:     "blocked@example.com",
		Password: "password123",
	})
	assert.Equal(t, ErrBlocked, err)
}

func TestAuthService_Login_CredentialsCheckedBeforeStatus(t *testing.T) {
	service, db, _, cleanup := setupAuthService(t)
	defer cleanup()

	// Wrong password on a blocked account must not reveal the blocked status
	testutil.TestUser(t, db,
		testutil.WithMail("blocked2@example.com"),
		testutil.WithPassword(t, "password123"),
		testutil.WithStatus(model.StatusBlocked),
	)

	_, err := service.Login(&dto.LoginRequest{
		Mail:     "blocked2@example.com",
		Password: "wrong-password",
	})
	assert.Equal(t, ErrInvalidCredentials, err)
}

func TestAuthService_Login_OAuthOnlyAccount(t *testing.T) {
	service, db, _, cleanup := setupAuthService(t)
	defer cleanup()

	// OAuth users have no password hash, password login must fail
	user := testutil.TestUser(t, db,
		testutil.WithMail("oauth@example.com"),
		testutil.WithGithubID("gh-777"),
	)
	user.PasswordHash = nil
	require.NoError(t, db.Save(user).Error)

	_, err := service.Login(&dto.LoginRequest{
		Mail:     "oauth@example.com",
		Password: "anything",
	})
	assert.Equal(t, ErrInvalidCredentials, err)
}

func TestAuthService_RefreshToken(t *testing.T) {
	service, db, codec, cleanup := setupAuthService(t)
	defer cleanup()

	user := testutil.TestUser(t, db,
		testutil.WithMail("refresh@example.com"),
		testutil.WithPassword(t, "password123"),
	)

	resp, err := service.RefreshToken("refresh@example.com")
	require.NoError(t, err)

	claims, err := codec.ParsePurpose(resp.AccessToken, jwt.PurposeAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestAuthService_RefreshToken_PicksUpRoleChange(t *testing.T) {
	service, db, codec, cleanup := setupAuthService(t)
	defer cleanup()

	user := testutil.TestUser(t, db,
		testutil.WithMail("promoted@example.com"),
		testutil.WithPassword(t, "password123"),
	)

	// Promote after the original pair was issued
	user.Role = model.RoleAdmin
	require.NoError(t, db.Save(user).Error)

	resp, err := service.RefreshToken("promoted@example.com")
	require.NoError(t, err)

	claims, err := codec.ParsePurpose(resp.AccessToken, jwt.PurposeAccess)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, claims.Role)
}

func TestAuthService_RefreshToken_UserDeleted(t *testing.T) {
	service, _, _, cleanup := setupAuthService(t)
	defer cleanup()

	_, err := service.RefreshToken("gone@example.com")
	assert.Equal(t, ErrUserNotFound, err)
}

func TestAuthService_ValidateToken(t *testing.T) {
	service, db, _, cleanup := setupAuthService(t)
	defer cleanup()

	user := testutil.TestUser(t, db,
		testutil.WithMail("validate@example.com"),
		testutil.WithPassword(t, "password123"),
	)

	resp, err := service.Login(&dto.LoginRequest{
		Mail:     "validate@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	info, err := service.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.Mail, info.Mail)
	assert.Equal(t, model.RoleUser, info.Role)
	assert.Equal(t, model.StatusConfirmed, info.Status)
	assert.NotEmpty(t, info.UserID)
}

func TestAuthService_ValidateToken_RefreshTokenRejected(t *testing.T) {
	service, db, _, cleanup := setupAuthService(t)
	defer cleanup()

	testutil.TestUser(t, db,
		testutil.WithMail("purpose@example.com"),
		testutil.WithPassword(t, "password123"),
	)

	resp, err := service.Login(&dto.LoginRequest{
		Mail:     "purpose@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	// Refresh token must not pass access validation
	_, err = service.ValidateToken(resp.RefreshToken)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestAuthService_ValidateToken_Expired(t *testing.T) {
	_, db, _, cleanup := setupAuthService(t)
	defer cleanup()

	userRepo := repository.NewUserRepository(db)
	cfg := testConfig()
	past := time.Now().Add(-2 * time.Hour)
	frozenCodec := jwt.NewCodec(&cfg.JWT).WithClock(func() time.Time { return past })
	frozenService := NewAuthService(userRepo, frozenCodec, cfg)

	user := testutil.TestUser(t, db,
		testutil.WithMail("expired@example.com"),
		testutil.WithPassword(t, "password123"),
	)
	_ = user

	resp, err := frozenService.Login(&dto.LoginRequest{
		Mail:     "expired@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	// Validate with a real clock: token issued 2h ago with 30min TTL
	service := NewAuthService(userRepo, jwt.NewCodec(&cfg.JWT), cfg)
	_, err = service.ValidateToken(resp.AccessToken)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestAuthService_ValidateToken_Garbage(t *testing.T) {
	service, _, _, cleanup := setupAuthService(t)
	defer cleanup()

	_, err := service.ValidateToken("not-a-token")
	assert.Equal(t, ErrInvalidToken, err)
}

func TestAuthService_GetGithubAuthURL(t *testing.T) {
	service, _, _, cleanup := setupAuthService(t)
	defer cleanup()

	url := service.GetGithubAuthURL("random-state")
	assert.Contains(t, url, "github.com")
	assert.Contains(t, url, "random-state")
	assert.Contains(t, url, "test-client-id")
}
