package auth

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewOAuthService(t *testing.T) {
	t.Parallel()

	users := &MockUserStore{}
	states := &MockStateStore{}
	adapter := &MockProviderAdapter{}

	t.Run("creates service with defaults", func(t *testing.T) {
		t.Parallel()

		svc := NewOAuthService(users, states, adapter)
		require.NotNil(t, svc)

		// Cast to implementation to verify defaults
		impl := svc.(*oauthService)
		assert.Equal(t, users, impl.users)
		assert.Equal(t, states, impl.states)
		assert.Equal(t, adapter, impl.adapter)
		assert.Equal(t, 10*time.Minute, impl.stateTTL)
		assert.True(t, impl.verifiedOnly)
		assert.NotNil(t, impl.logger)
	})

	t.Run("applies options correctly", func(t *testing.T) {
		t.Parallel()

		log := slog.Default()
		svc := NewOAuthService(users, states, adapter,
			WithLogger(log),
			WithStateTTL(5*time.Minute),
			WithVerifiedOnly(false),
		)

		impl := svc.(*oauthService)
		assert.Equal(t, log, impl.logger)
		assert.Equal(t, 5*time.Minute, impl.stateTTL)
		assert.False(t, impl.verifiedOnly)
	})
}

func TestOAuthService_GetAuthURL(t *testing.T) {
	t.Parallel()

	t.Run("generates auth URL successfully", func(t *testing.T) {
		t.Parallel()

		users := &MockUserStore{}
		states := &MockStateStore{}
		adapter := &MockProviderAdapter{}
		svc := NewOAuthService(users, states, adapter)

		expectedURL := "https://connect.mail.ru/oauth/authorize?state=test-state"

		states.On("StoreState", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)
		adapter.On("AuthURL", mock.AnythingOfType("string")).Return(expectedURL, nil)

		authURL, err := svc.GetAuthURL(context.Background())

		require.NoError(t, err)
		assert.Equal(t, expectedURL, authURL)

		states.AssertExpectations(t)
		adapter.AssertExpectations(t)
	})

	t.Run("generates unique state tokens", func(t *testing.T) {
		t.Parallel()

		users := &MockUserStore{}
		states := &MockStateStore{}
		adapter := &MockProviderAdapter{}
		svc := NewOAuthService(users, states, adapter)

		var capturedStates []string

		states.On("StoreState", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Run(func(args mock.Arguments) {
			capturedStates = append(capturedStates, args.Get(1).(string))
		}).Return(nil).Twice()
		adapter.On("AuthURL", mock.AnythingOfType("string")).Return("https://connect.mail.ru/oauth/authorize", nil).Twice()

		_, err1 := svc.GetAuthURL(context.Background())
		_, err2 := svc.GetAuthURL(context.Background())

		require.NoError(t, err1)
		require.NoError(t, err2)
		require.Len(t, capturedStates, 2)
		assert.NotEqual(t, capturedStates[0], capturedStates[1])
	})

	t.Run("fails when state cannot be stored", func(t *testing.T) {
		t.Parallel()

		users := &MockUserStore{}
		states := &MockStateStore{}
		adapter := &MockProviderAdapter{}
		svc := NewOAuthService(users, states, adapter)

		states.On("StoreState", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

		_, err := svc.GetAuthURL(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to store state")
	})
}

func TestOAuthService_Auth(t *testing.T) {
	t.Parallel()

	profile := ProviderProfile{
		ProviderUserID: "123456",
		Email:          "User@Corp.Mail.RU",
		EmailVerified:  true,
		Name:           "nickname",
		AvatarURL:      "http://avt.appsmail.ru/mail/user/_avatar",
	}

	t.Run("rejects unknown state", func(t *testing.T) {
		t.Parallel()

		users := &MockUserStore{}
		states := &MockStateStore{}
		adapter := &MockProviderAdapter{}
		svc := NewOAuthService(users, states, adapter)

		states.On("ConsumeState", mock.Anything, "bad-state").Return(ErrStateNotFound)

		_, err := svc.Auth(context.Background(), "code", "bad-state", nil)

		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("propagates invalid code from adapter", func(t *testing.T) {
		t.Parallel()

		users := &MockUserStore{}
		states := &MockStateStore{}
		adapter := &MockProviderAdapter{}
		svc := NewOAuthService(users, states, adapter)

		states.On("ConsumeState", mock.Anything, "state").Return(nil)
		adapter.On("ResolveProfile", mock.Anything, "bad-code").Return(ProviderProfile{}, ErrInvalidCode)

		_, err := svc.Auth(context.Background(), "bad-code", "state", nil)

		assert.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("rejects unverified email", func(t *testing.T) {
		t.Parallel()

		users := &MockUserStore{}
		states := &MockStateStore{}
		adapter := &MockProviderAdapter{}
		svc := NewOAuthService(users, states, adapter)

		unverified := profile
		unverified.EmailVerified = false

		states.On("ConsumeState", mock.Anything, "state").Return(nil)
		adapter.On("ResolveProfile", mock.Anything, "code").Return(unverified, nil)

		_, err := svc.Auth(context.Background(), "code", "state", nil)

		assert.ErrorIs(t, err, ErrUnverifiedEmail)
	})

	t.Run("returns existing linked user", func(t *testing.T) {
		t.Parallel()

		users := &MockUserStore{}
		states := &MockStateStore{}
		adapter := &MockProviderAdapter{}
		svc := NewOAuthService(users, states, adapter)

		existing := &User{ID: uuid.New(), Email: "user@corp.mail.ru"}

		states.On("ConsumeState", mock.Anything, "state").Return(nil)
		adapter.On("ResolveProfile", mock.Anything, "code").Return(profile, nil)
		adapter.On("ProviderID").Return(OAuthProviderMailru)
		users.On("GetUserByOAuth", mock.Anything, OAuthProviderMailru, "123456").Return(existing, nil)

		user, err := svc.Auth(context.Background(), "code", "state", nil)

		require.NoError(t, err)
		assert.Equal(t, existing, user)
		users.AssertExpectations(t)
	})

	t.Run("creates new user with normalized email", func(t *testing.T) {
		t.Parallel()

		users := &MockUserStore{}
		states := &MockStateStore{}
		adapter := &MockProviderAdapter{}
		svc := NewOAuthService(users, states, adapter)

		states.On("ConsumeState", mock.Anything, "state").Return(nil)
		adapter.On("ResolveProfile", mock.Anything, "code").Return(profile, nil)
		adapter.On("ProviderID").Return(OAuthProviderMailru)
		users.On("GetUserByOAuth", mock.Anything, OAuthProviderMailru, "123456").Return(nil, ErrUserNotFound)
		users.On("GetUserByEmail", mock.Anything, "user@corp.mail.ru").Return(nil, ErrUserNotFound)

		var created *User
		users.On("CreateUser", mock.Anything, mock.AnythingOfType("*auth.User")).Run(func(args mock.Arguments) {
			created = args.Get(1).(*User)
		}).Return(nil)
		users.On("StoreOAuthLink", mock.Anything, mock.AnythingOfType("uuid.UUID"), OAuthProviderMailru, "123456").Return(nil)

		user, err := svc.Auth(context.Background(), "code", "state", nil)

		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, created, user)
		assert.Equal(t, "user@corp.mail.ru", user.Email)
		assert.Equal(t, "nickname", user.Name)
		assert.Equal(t, MethodOAuthMailru, user.AuthMethod)
		assert.True(t, user.IsVerified)
		users.AssertExpectations(t)
	})

	t.Run("rejects provider email already registered", func(t *testing.T) {
		t.Parallel()

		users := &MockUserStore{}
		states := &MockStateStore{}
		adapter := &MockProviderAdapter{}
		svc := NewOAuthService(users, states, adapter)

		states.On("ConsumeState", mock.Anything, "state").Return(nil)
		adapter.On("ResolveProfile", mock.Anything, "code").Return(profile, nil)
		adapter.On("ProviderID").Return(OAuthProviderMailru)
		users.On("GetUserByOAuth", mock.Anything, OAuthProviderMailru, "123456").Return(nil, ErrUserNotFound)
		users.On("GetUserByEmail", mock.Anything, "user@corp.mail.ru").Return(&User{ID: uuid.New()}, nil)

		_, err := svc.Auth(context.Background(), "code", "state", nil)

		assert.ErrorIs(t, err, ErrProviderEmailInUse)
	})

	t.Run("cleans up user when link save fails", func(t *testing.T) {
		t.Parallel()

		users := &MockUserStore{}
		states := &MockStateStore{}
		adapter := &MockProviderAdapter{}
		svc := NewOAuthService(users, states, adapter)

		states.On("ConsumeState", mock.Anything, "state").Return(nil)
		adapter.On("ResolveProfile", mock.Anything, "code").Return(profile, nil)
		adapter.On("ProviderID").Return(OAuthProviderMailru)
		users.On("GetUserByOAuth", mock.Anything, OAuthProviderMailru, "123456").Return(nil, ErrUserNotFound)
		users.On("GetUserByEmail", mock.Anything, "user@corp.mail.ru").Return(nil, ErrUserNotFound)
		users.On("CreateUser", mock.Anything, mock.Anything).Return(nil)
		users.On("StoreOAuthLink", mock.Anything, mock.Anything, OAuthProviderMailru, "123456").Return(errors.New("db write failed"))
		users.On("DeleteUser", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(nil)

		_, err := svc.Auth(context.Background(), "code", "state", nil)

		require.Error(t, err)
		users.AssertCalled(t, "DeleteUser", mock.Anything, mock.AnythingOfType("uuid.UUID"))
	})
}

func TestOAuthService_Auth_Linking(t *testing.T) {
	t.Parallel()

	profile := ProviderProfile{
		ProviderUserID: "123456",
		Email:          "user@corp.mail.ru",
		EmailVerified:  true,
	}

	t.Run("links provider identity to existing user", func(t *testing.T) {
		t.Parallel()

		users := &MockUserStore{}
		states := &MockStateStore{}
		adapter := &MockProviderAdapter{}
		svc := NewOAuthService(users, states, adapter)

		userID := uuid.New()
		target := &User{ID: userID, Email: "user@corp.mail.ru"}

		states.On("ConsumeState", mock.Anything, "state").Return(nil)
		adapter.On("ResolveProfile", mock.Anything, "code").Return(profile, nil)
		adapter.On("ProviderID").Return(OAuthProviderMailru)
		users.On("GetUserByOAuth", mock.Anything, OAuthProviderMailru, "123456").Return(nil, ErrUserNotFound)
		users.On("GetUserByID", mock.Anything, userID).Return(target, nil)
		users.On("StoreOAuthLink", mock.Anything, userID, OAuthProviderMailru, "123456").Return(nil)

		user, err := svc.Auth(context.Background(), "code", "state", &userID)

		require.NoError(t, err)
		assert.Equal(t, target, user)
		users.AssertExpectations(t)
	})

	t.Run("rejects identity linked to another account", func(t *testing.T) {
		t.Parallel()

		users := &MockUserStore{}
		states := &MockStateStore{}
		adapter := &MockProviderAdapter{}
		svc := NewOAuthService(users, states, adapter)

		userID := uuid.New()
		other := &User{ID: uuid.New()}

		states.On("ConsumeState", mock.Anything, "state").Return(nil)
		adapter.On("ResolveProfile", mock.Anything, "code").Return(profile, nil)
		adapter.On("ProviderID").Return(OAuthProviderMailru)
		users.On("GetUserByOAuth", mock.Anything, OAuthProviderMailru, "123456").Return(other, nil)

		_, err := svc.Auth(context.Background(), "code", "state", &userID)

		assert.ErrorIs(t, err, ErrProviderLinked)
	})

	t.Run("beforeLink hook blocks linking", func(t *testing.T) {
		t.Parallel()

		users := &MockUserStore{}
		states := &MockStateStore{}
		adapter := &MockProviderAdapter{}
		svc := NewOAuthService(users, states, adapter,
			WithBeforeLink(func(ctx context.Context, id uuid.UUID) error {
				return errors.New("plan limit reached")
			}),
		)

		userID := uuid.New()

		states.On("ConsumeState", mock.Anything, "state").Return(nil)
		adapter.On("ResolveProfile", mock.Anything, "code").Return(profile, nil)
		adapter.On("ProviderID").Return(OAuthProviderMailru)
		users.On("GetUserByOAuth", mock.Anything, OAuthProviderMailru, "123456").Return(nil, ErrUserNotFound)

		_, err := svc.Auth(context.Background(), "code", "state", &userID)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "link blocked")
		users.AssertNotCalled(t, "StoreOAuthLink", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestOAuthService_Unlink(t *testing.T) {
	t.Parallel()

	t.Run("removes provider link", func(t *testing.T) {
		t.Parallel()

		users := &MockUserStore{}
		states := &MockStateStore{}
		adapter := &MockProviderAdapter{}
		svc := NewOAuthService(users, states, adapter)

		userID := uuid.New()
		adapter.On("ProviderID").Return(OAuthProviderMailru)
		users.On("RemoveOAuthLink", mock.Anything, userID, OAuthProviderMailru).Return(nil)

		require.NoError(t, svc.Unlink(context.Background(), userID))
		users.AssertExpectations(t)
	})

	t.Run("reports missing link", func(t *testing.T) {
		t.Parallel()

		users := &MockUserStore{}
		states := &MockStateStore{}
		adapter := &MockProviderAdapter{}
		svc := NewOAuthService(users, states, adapter)

		userID := uuid.New()
		adapter.On("ProviderID").Return(OAuthProviderMailru)
		users.On("RemoveOAuthLink", mock.Anything, userID, OAuthProviderMailru).Return(ErrNoProviderLink)

		assert.ErrorIs(t, svc.Unlink(context.Background(), userID), ErrNoProviderLink)
	})
}
