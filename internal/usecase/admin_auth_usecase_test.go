package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type IssuerMock struct{ mock.Mock }

func (m *IssuerMock) Issue(subject string, role string, now time.Time) (string, time.Time, error) {
	args := m.Called(subject, role, now)
	exp, _ := args.Get(1).(time.Time)
	return args.String(0), exp, args.Error(2)
}

func newAdminAuthUC(t *testing.T, issuer *IssuerMock) *usecase.AdminAuthUsecase {
	t.Helper()
	hash, err := usecase.NewBcryptPasswordHasher(bcrypt.MinCost).Hash("farm-secret")
	require.NoError(t, err)
	return usecase.NewAdminAuthUsecase(
		usecase.AdminCredential{Username: "laxmi", PasswordHash: hash},
		usecase.NewBcryptPasswordVerifier(),
		issuer,
		fixedClock{testNow},
	)
}

func TestAdminLogin_Success(t *testing.T) {
	issuer := &IssuerMock{}
	exp := testNow.Add(time.Hour)
	issuer.On("Issue", "laxmi", usecase.RoleAdmin, testNow).Return("signed.jwt", exp, nil).Once()
	uc := newAdminAuthUC(t, issuer)

	out, err := uc.Login(context.Background(), usecase.AdminLoginInput{Username: " laxmi ", Password: "farm-secret"})
	require.NoError(t, err)
	assert.Equal(t, "signed.jwt", out.AccessToken)
	assert.Equal(t, exp, out.ExpiresAt)
	assert.Equal(t, usecase.RoleAdmin, out.Role)
	issuer.AssertExpectations(t)
}

func TestAdminLogin_Rejects(t *testing.T) {
	issuer := &IssuerMock{}
	uc := newAdminAuthUC(t, issuer)
	ctx := context.Background()

	_, err := uc.Login(ctx, usecase.AdminLoginInput{Username: "laxmi"})
	requireHTTPError(t, err, http.StatusBadRequest)

	_, err = uc.Login(ctx, usecase.AdminLoginInput{Username: "laxmi", Password: "wrong"})
	he := requireHTTPError(t, err, http.StatusUnauthorized)
	assert.Equal(t, "invalid credentials", he.Message)

	_, err = uc.Login(ctx, usecase.AdminLoginInput{Username: "someone", Password: "farm-secret"})
	requireHTTPError(t, err, http.StatusUnauthorized)

	issuer.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminLogin_IssuerFailure(t *testing.T) {
	issuer := &IssuerMock{}
	issuer.On("Issue", mock.Anything, mock.Anything, mock.Anything).Return("", time.Time{}, errors.New("boom")).Once()
	uc := newAdminAuthUC(t, issuer)

	_, err := uc.Login(context.Background(), usecase.AdminLoginInput{Username: "laxmi", Password: "farm-secret"})
	requireHTTPError(t, err, http.StatusInternalServerError)
}
