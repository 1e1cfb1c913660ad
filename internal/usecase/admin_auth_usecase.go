package usecase

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"storefront/internal/logging"

	"golang.org/x/crypto/bcrypt"
)

const RoleAdmin = "ADMIN"

// 設定で渡された管理者1名だけ
type AdminCredential struct {
	Username     string
	PasswordHash string
}

type AdminAuthUsecase struct {
	cred     AdminCredential
	verifier PasswordVerifier
	issuer   AccessTokenIssuer
	clock    Clock
}

func NewAdminAuthUsecase(cred AdminCredential, verifier PasswordVerifier, issuer AccessTokenIssuer, clock Clock) *AdminAuthUsecase {
	return &AdminAuthUsecase{cred: cred, verifier: verifier, issuer: issuer, clock: clock}
}

type AdminLoginInput struct {
	Username string
	Password string
}

type AdminLoginOutput struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
}

func (u *AdminAuthUsecase) Login(ctx context.Context, in AdminLoginInput) (AdminLoginOutput, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return AdminLoginOutput{}, NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	//ユーザー名が違ってもbcryptは回す
	nameOK := subtle.ConstantTimeCompare([]byte(username), []byte(u.cred.Username)) == 1
	passOK := u.verifier.Verify(in.Password, u.cred.PasswordHash)
	if !nameOK || !passOK {
		logging.FromContext(ctx).Warn("admin_login_failed", "username", username)
		return AdminLoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	token, exp, err := u.issuer.Issue(u.cred.Username, RoleAdmin, u.clock.Now())
	if err != nil {
		return AdminLoginOutput{}, WrapHTTPError(http.StatusInternalServerError, "failed to issue token", err)
	}

	return AdminLoginOutput{
		AccessToken: token,
		ExpiresAt:   exp,
		Username:    u.cred.Username,
		Role:        RoleAdmin,
	}, nil
}

type BcryptPasswordHasher struct {
	cost int
}

func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost}
}

// bcryptでハッシュ化
func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// bcryptハッシュと平文を比較
type BcryptPasswordVerifier struct{}

// DI
func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

func (v *BcryptPasswordVerifier) Verify(plain string, hashed string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}
