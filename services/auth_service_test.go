package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/barmor12/cakeshop-backend/models"
	"github.com/barmor12/cakeshop-backend/sender"
	"github.com/barmor12/cakeshop-backend/services"
)

type mockRefreshTokenRepo struct {
	tokens map[string]*models.RefreshToken
}

func newMockRefreshTokenRepo() *mockRefreshTokenRepo {
	return &mockRefreshTokenRepo{tokens: make(map[string]*models.RefreshToken)}
}

func (m *mockRefreshTokenRepo) Save(_ context.Context, token *models.RefreshToken) error {
	m.tokens[token.TokenID] = token
	return nil
}

func (m *mockRefreshTokenRepo) FindByTokenID(_ context.Context, tokenID string) (*models.RefreshToken, error) {
	t, ok := m.tokens[tokenID]
	if !ok || t.Revoked {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (m *mockRefreshTokenRepo) Revoke(_ context.Context, tokenID string) error {
	if t, ok := m.tokens[tokenID]; ok {
		t.Revoked = true
	}
	return nil
}

type sentEmail struct {
	to      string
	subject string
}

type mockEmailSender struct {
	sent []sentEmail
}

func (m *mockEmailSender) SendEmail(_ context.Context, to, subject, _ string, _ ...sender.Attachment) (sender.SendResult, error) {
	m.sent = append(m.sent, sentEmail{to: to, subject: subject})
	return sender.SendResult{}, nil
}

type authFixture struct {
	svc      services.AuthService
	users    *mockUserRepo
	refresh  *mockRefreshTokenRepo
	tokenSvc *services.TokenService
	email    *mockEmailSender
}

// newAuthFixture wires the service without a database handle; registration is
// the only path that needs one and is exercised elsewhere.
func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := newMockUserRepo()
	refresh := newMockRefreshTokenRepo()
	email := &mockEmailSender{}
	tokenSvc, err := services.NewTokenService("test-secret")
	assert.NoError(t, err)
	logger, _ := zap.NewDevelopment()
	return &authFixture{
		svc:      services.NewAuthService(nil, users, refresh, tokenSvc, email, logger),
		users:    users,
		refresh:  refresh,
		tokenSvc: tokenSvc,
		email:    email,
	}
}

func (f *authFixture) addUser(email, password string, verified bool) *models.User {
	hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &models.User{
		ID:            uuid.New(),
		Email:         email,
		Password:      string(hashed),
		Name:          "Dana",
		EmailVerified: verified,
		Role:          "user",
	}
	if !verified {
		user.VerificationCode = "123456"
	}
	_ = f.users.Create(context.Background(), user)
	return user
}

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser("dana@example.com", "s3cret!", true)

	pair, svcErr := f.svc.Login(context.Background(), "dana@example.com", "s3cret!")

	assert.Nil(t, svcErr)
	assert.NotEmpty(t, pair.AccessToken)

	claims, err := f.tokenSvc.ValidateToken(pair.AccessToken, "access")
	assert.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims["sub"])
	assert.Len(t, f.refresh.tokens, 1, "refresh token should be persisted")
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser("dana@example.com", "s3cret!", true)

	_, svcErr := f.svc.Login(context.Background(), "dana@example.com", "wrong")

	assert.NotNil(t, svcErr)
	assert.Equal(t, 401, svcErr.StatusCode)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	_, svcErr := f.svc.Login(context.Background(), "nobody@example.com", "whatever")

	assert.NotNil(t, svcErr)
	assert.Equal(t, 401, svcErr.StatusCode)
}

func TestAuthService_Login_UnverifiedEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser("dana@example.com", "s3cret!", false)

	_, svcErr := f.svc.Login(context.Background(), "dana@example.com", "s3cret!")

	assert.NotNil(t, svcErr)
	assert.Equal(t, 403, svcErr.StatusCode)
}

func TestAuthService_VerifyEmail(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser("dana@example.com", "s3cret!", false)

	svcErr := f.svc.VerifyEmail(context.Background(), "dana@example.com", "123456")

	assert.Nil(t, svcErr)
	assert.True(t, user.EmailVerified)
	assert.Empty(t, user.VerificationCode, "code is single-use")

	// A second verification is a no-op, not an error.
	svcErr = f.svc.VerifyEmail(context.Background(), "dana@example.com", "000000")
	assert.Nil(t, svcErr)
}

func TestAuthService_VerifyEmail_WrongCode(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser("dana@example.com", "s3cret!", false)

	svcErr := f.svc.VerifyEmail(context.Background(), "dana@example.com", "999999")

	assert.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)
	assert.False(t, user.EmailVerified)
}

func TestAuthService_RefreshTokens_Rotates(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser("dana@example.com", "s3cret!", true)
	pair, svcErr := f.svc.Login(context.Background(), "dana@example.com", "s3cret!")
	assert.Nil(t, svcErr)

	next, svcErr := f.svc.RefreshTokens(context.Background(), pair.RefreshToken)
	assert.Nil(t, svcErr)
	assert.NotEmpty(t, next.AccessToken)

	// The presented token was revoked; replaying it must fail.
	_, svcErr = f.svc.RefreshTokens(context.Background(), pair.RefreshToken)
	assert.NotNil(t, svcErr)
	assert.Equal(t, 401, svcErr.StatusCode)
}

func TestAuthService_RefreshTokens_RejectsAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser("dana@example.com", "s3cret!", true)
	pair, _ := f.svc.Login(context.Background(), "dana@example.com", "s3cret!")

	_, svcErr := f.svc.RefreshTokens(context.Background(), pair.AccessToken)

	assert.NotNil(t, svcErr)
	assert.Equal(t, 401, svcErr.StatusCode)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser("dana@example.com", "s3cret!", true)

	updated, svcErr := f.svc.UpdateProfile(context.Background(), user.ID, &models.UpdateProfileRequest{
		Name:  "Dana Levi",
		Phone: "050-1234567",
	})

	assert.Nil(t, svcErr)
	assert.Equal(t, "Dana Levi", updated.Name)
	assert.Equal(t, "050-1234567", updated.Phone)
	assert.Equal(t, "dana@example.com", updated.Email, "email is immutable")

	got, svcErr := f.svc.GetProfile(context.Background(), user.ID)
	assert.Nil(t, svcErr)
	assert.Equal(t, "Dana Levi", got.Name)
}

func TestAuthService_GetProfile_UnknownUser(t *testing.T) {
	f := newAuthFixture(t)

	_, svcErr := f.svc.GetProfile(context.Background(), uuid.New())

	assert.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser("dana@example.com", "s3cret!", true)
	pair, _ := f.svc.Login(context.Background(), "dana@example.com", "s3cret!")

	svcErr := f.svc.Logout(context.Background(), pair.RefreshToken)
	assert.Nil(t, svcErr)

	_, svcErr = f.svc.RefreshTokens(context.Background(), pair.RefreshToken)
	assert.NotNil(t, svcErr)
	assert.Equal(t, 401, svcErr.StatusCode)
}
