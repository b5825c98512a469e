package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/swediversity/swediversity-api/internal/models"
	appErrors "github.com/swediversity/swediversity-api/pkg/errors"
)

type mockAuthUserRepo struct {
	byEmail    map[string]*models.User
	byUserName map[string]*models.User
	byID       map[string]*models.User
	byRefresh  map[string]*models.User
	created    []*models.User
	passwords  map[string]string
	refreshSet map[string]string
}

func newMockAuthUserRepo(users ...*models.User) *mockAuthUserRepo {
	m := &mockAuthUserRepo{
		byEmail:    map[string]*models.User{},
		byUserName: map[string]*models.User{},
		byID:       map[string]*models.User{},
		byRefresh:  map[string]*models.User{},
		passwords:  map[string]string{},
		refreshSet: map[string]string{},
	}
	for _, u := range users {
		m.byEmail[u.Email] = u
		m.byUserName[u.UserName] = u
		m.byID[u.ID] = u
		if u.RefreshToken != nil {
			m.byRefresh[*u.RefreshToken] = u
		}
	}
	return m
}

func (m *mockAuthUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUserRepo) FindByUserName(ctx context.Context, userName string) (*models.User, error) {
	if u, ok := m.byUserName[userName]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUserRepo) FindByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	if u, ok := m.byRefresh[token]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = "generated-id"
	m.created = append(m.created, user)
	return nil
}

func (m *mockAuthUserRepo) UpdateRefreshToken(ctx context.Context, id string, token *string) error {
	if token != nil {
		m.refreshSet[id] = *token
	} else {
		delete(m.refreshSet, id)
	}
	return nil
}

func (m *mockAuthUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	m.passwords[id] = passwordHash
	return nil
}

type mockResetTokenRepo struct {
	tokens map[string]string
}

func newMockResetTokenRepo() *mockResetTokenRepo {
	return &mockResetTokenRepo{tokens: map[string]string{}}
}

func (m *mockResetTokenRepo) Upsert(ctx context.Context, userID, token string) error {
	m.tokens[userID] = token
	return nil
}

func (m *mockResetTokenRepo) FindByUser(ctx context.Context, userID string) (*models.ResetToken, error) {
	token, ok := m.tokens[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.ResetToken{UserID: userID, Token: token, CreatedAt: time.Now()}, nil
}

func (m *mockResetTokenRepo) Delete(ctx context.Context, userID string) error {
	delete(m.tokens, userID)
	return nil
}

type mockConsentSigner struct {
	signed map[string]string
}

func (m *mockConsentSigner) Sign(ctx context.Context, id, userID string) error {
	if m.signed == nil {
		m.signed = map[string]string{}
	}
	m.signed[id] = userID
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: 12 * time.Hour,
		ResetTokenExpiry:  20 * time.Minute,
		Issuer:            "swediversity",
	}
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestLoginSuccessReplacesRefreshToken(t *testing.T) {
	user := &models.User{ID: "u1", Email: "anna@example.com", UserName: "anna", PasswordHash: hashPassword(t, "hunter22"), Kind: models.UserKindProspective}
	repo := newMockAuthUserRepo(user)
	svc := NewAuthService(repo, newMockResetTokenRepo(), nil, nil, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "anna@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, resp.RefreshToken, repo.refreshSet["u1"])
	assert.Equal(t, int64((12 * time.Hour).Seconds()), resp.ExpiresIn)
	assert.Equal(t, models.UserKindProspective, resp.User.Kind)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.False(t, claims.Admin)
}

func TestLoginWrongPassword(t *testing.T) {
	user := &models.User{ID: "u1", Email: "anna@example.com", UserName: "anna", PasswordHash: hashPassword(t, "hunter22")}
	svc := NewAuthService(newMockAuthUserRepo(user), newMockResetTokenRepo(), nil, nil, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "anna@example.com", Password: "wrong"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginUnknownEmailSameErrorAsWrongPassword(t *testing.T) {
	svc := NewAuthService(newMockAuthUserRepo(), newMockResetTokenRepo(), nil, nil, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestRefreshTokenNotRotated(t *testing.T) {
	token := "stored-refresh"
	user := &models.User{ID: "u1", Email: "anna@example.com", UserName: "anna", RefreshToken: &token}
	repo := newMockAuthUserRepo(user)
	svc := NewAuthService(repo, newMockResetTokenRepo(), nil, nil, nil, nil, testAuthConfig())

	resp, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: token})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	// The stored refresh token stays untouched.
	assert.Empty(t, repo.refreshSet)
}

func TestRefreshTokenUnknown(t *testing.T) {
	svc := NewAuthService(newMockAuthUserRepo(), newMockResetTokenRepo(), nil, nil, nil, nil, testAuthConfig())

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "ghost"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := NewAuthService(newMockAuthUserRepo(), newMockResetTokenRepo(), nil, nil, nil, nil, testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{Email: "new@example.com", Password: "short", UserName: "new", Kind: models.UserKindNormal})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestRegisterRejectsAdminSelfGrant(t *testing.T) {
	svc := NewAuthService(newMockAuthUserRepo(), newMockResetTokenRepo(), nil, nil, nil, nil, testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{Email: "new@example.com", Password: "longenough", UserName: "new", Kind: models.UserKindNormal, Admin: true})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	existing := &models.User{ID: "u1", Email: "anna@example.com", UserName: "anna"}
	svc := NewAuthService(newMockAuthUserRepo(existing), newMockResetTokenRepo(), nil, nil, nil, nil, testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{Email: "anna@example.com", Password: "longenough", UserName: "other", Kind: models.UserKindNormal})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestRegisterSignsConsentForm(t *testing.T) {
	consents := &mockConsentSigner{}
	svc := NewAuthService(newMockAuthUserRepo(), newMockResetTokenRepo(), consents, nil, nil, nil, testAuthConfig())

	resp, err := svc.Register(context.Background(), models.RegisterRequest{Email: "new@example.com", Password: "longenough", UserName: "new", Kind: models.UserKindProspective, ConsentID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, resp.ID, consents.signed["c1"])
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	resets := newMockResetTokenRepo()
	svc := NewAuthService(newMockAuthUserRepo(), resets, nil, nil, nil, nil, testAuthConfig())

	err := svc.ForgotPassword(context.Background(), models.ForgotPasswordRequest{Email: "ghost@example.com"})
	require.NoError(t, err)
	assert.Empty(t, resets.tokens)
}

func TestForgotPasswordReplacesToken(t *testing.T) {
	user := &models.User{ID: "u1", Email: "anna@example.com", UserName: "anna"}
	resets := newMockResetTokenRepo()
	svc := NewAuthService(newMockAuthUserRepo(user), resets, nil, nil, nil, nil, testAuthConfig())

	require.NoError(t, svc.ForgotPassword(context.Background(), models.ForgotPasswordRequest{Email: "anna@example.com"}))
	first := resets.tokens["u1"]
	require.NotEmpty(t, first)

	time.Sleep(1100 * time.Millisecond)
	require.NoError(t, svc.ForgotPassword(context.Background(), models.ForgotPasswordRequest{Email: "anna@example.com"}))
	assert.NotEqual(t, first, resets.tokens["u1"])
}

func TestResetPasswordRedeemsAndInvalidates(t *testing.T) {
	user := &models.User{ID: "u1", Email: "anna@example.com", UserName: "anna"}
	repo := newMockAuthUserRepo(user)
	resets := newMockResetTokenRepo()
	svc := NewAuthService(repo, resets, nil, nil, nil, nil, testAuthConfig())

	require.NoError(t, svc.ForgotPassword(context.Background(), models.ForgotPasswordRequest{Email: "anna@example.com"}))
	token := resets.tokens["u1"]

	err := svc.ResetPassword(context.Background(), models.ResetPasswordRequest{Token: token, NewPassword: "brand-new-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, repo.passwords["u1"])
	assert.Empty(t, resets.tokens)

	// Redeeming the same token again must fail.
	err = svc.ResetPassword(context.Background(), models.ResetPasswordRequest{Token: token, NewPassword: "another-pass"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestResetPasswordSupersededTokenRejected(t *testing.T) {
	user := &models.User{ID: "u1", Email: "anna@example.com", UserName: "anna"}
	resets := newMockResetTokenRepo()
	svc := NewAuthService(newMockAuthUserRepo(user), resets, nil, nil, nil, nil, testAuthConfig())

	require.NoError(t, svc.ForgotPassword(context.Background(), models.ForgotPasswordRequest{Email: "anna@example.com"}))
	old := resets.tokens["u1"]
	time.Sleep(1100 * time.Millisecond)
	require.NoError(t, svc.ForgotPassword(context.Background(), models.ForgotPasswordRequest{Email: "anna@example.com"}))
	require.NotEqual(t, old, resets.tokens["u1"])

	err := svc.ResetPassword(context.Background(), models.ResetPasswordRequest{Token: old, NewPassword: "brand-new-pass"})
	require.Error(t, err)
}

func TestResetPasswordMalformedToken(t *testing.T) {
	svc := NewAuthService(newMockAuthUserRepo(), newMockResetTokenRepo(), nil, nil, nil, nil, testAuthConfig())

	err := svc.ResetPassword(context.Background(), models.ResetPasswordRequest{Token: "not-a-jwt", NewPassword: "brand-new-pass"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	user := &models.User{ID: "u1", Email: "anna@example.com", UserName: "anna"}
	resets := newMockResetTokenRepo()
	cfg := testAuthConfig()
	cfg.ResetTokenExpiry = -time.Minute
	svc := NewAuthService(newMockAuthUserRepo(user), resets, nil, nil, nil, nil, cfg)

	require.NoError(t, svc.ForgotPassword(context.Background(), models.ForgotPasswordRequest{Email: "anna@example.com"}))
	token := resets.tokens["u1"]

	err := svc.ResetPassword(context.Background(), models.ResetPasswordRequest{Token: token, NewPassword: "brand-new-pass"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestResetPasswordTamperedSignature(t *testing.T) {
	user := &models.User{ID: "u1", Email: "anna@example.com", UserName: "anna"}
	resets := newMockResetTokenRepo()
	svc := NewAuthService(newMockAuthUserRepo(user), resets, nil, nil, nil, nil, testAuthConfig())

	require.NoError(t, svc.ForgotPassword(context.Background(), models.ForgotPasswordRequest{Email: "anna@example.com"}))
	token := resets.tokens["u1"]

	tampered := token[:len(token)-1]
	if token[len(token)-1] == 'A' {
		tampered += "B"
	} else {
		tampered += "A"
	}

	err := svc.ResetPassword(context.Background(), models.ResetPasswordRequest{Token: tampered, NewPassword: "brand-new-pass"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}
