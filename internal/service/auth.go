package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/techplan/admin-server-go/internal/config"
	apperrors "github.com/techplan/admin-server-go/internal/errors"
	"github.com/techplan/admin-server-go/internal/httputil"
	"github.com/techplan/admin-server-go/internal/metrics"
	"github.com/techplan/admin-server-go/internal/model"
	"github.com/techplan/admin-server-go/internal/repository"
	"github.com/techplan/admin-server-go/internal/util"
)

// DefaultLoginRedirect is where a successful login lands without a redirectTo.
const DefaultLoginRedirect = "/products"

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Admin      *model.AdminIdentity
	RedirectTo string
}

// dummyHash is compared against on unknown emails so both failure paths
// cost one bcrypt run.
var dummyHash = sync.OnceValue(func() string {
	hash, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), config.BcryptCost)
	return string(hash)
})

type AuthService struct {
	adminRepo repository.AdminRepository
	metrics   *metrics.Metrics
}

func NewAuthService(adminRepo repository.AdminRepository, m *metrics.Metrics) *AuthService {
	return &AuthService{
		adminRepo: adminRepo,
		metrics:   m,
	}
}

// Verify checks an email/password pair. The email match is exact.
func (s *AuthService) Verify(ctx context.Context, email, password string) (*model.AdminIdentity, error) {
	if email == "" {
		return nil, apperrors.MissingRequired("email")
	}
	if password == "" {
		return nil, apperrors.MissingRequired("password")
	}

	admin, err := s.adminRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if admin == nil {
		util.CheckPasswordHash(password, dummyHash())
		return nil, apperrors.AccountNotFound()
	}

	if !util.CheckPasswordHash(password, admin.PasswordHash) {
		return nil, apperrors.InvalidCredentials()
	}

	return admin.Identity(), nil
}

// Login verifies the credentials and resolves where to send the admin next.
func (s *AuthService) Login(ctx context.Context, email, password, redirectTo string) (*LoginResult, error) {
	identity, err := s.Verify(ctx, email, password)
	if err != nil {
		outcome := string(apperrors.GetCode(err))
		s.metrics.ObserveLogin(outcome)
		if apperrors.IsCredentialFailure(err) {
			log.Info().Str("email", email).Str("outcome", outcome).Msg("Admin login rejected")
		} else {
			log.Error().Err(err).Msg("Admin login failed")
		}
		return nil, err
	}

	s.metrics.ObserveLogin("SUCCESS")
	log.Info().Str("admin_id", identity.ID).Msg("Admin logged in")

	return &LoginResult{
		Admin:      identity,
		RedirectTo: httputil.SafeRedirectTarget(redirectTo, DefaultLoginRedirect),
	}, nil
}

// EnsureAdmin creates the admin if no record with that email exists.
// Reports whether a record was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string, name *string) (bool, error) {
	existing, err := s.adminRepo.FindByEmail(ctx, email)
	if err != nil {
		return false, apperrors.Database(err)
	}
	if existing != nil {
		return false, nil
	}

	hash, err := util.HashPassword(password, config.BcryptCost)
	if err != nil {
		return false, err
	}

	admin, err := s.adminRepo.Create(ctx, model.CreateAdminParams{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
	})
	if err != nil {
		return false, apperrors.Database(err)
	}

	log.Info().Str("admin_id", admin.ID).Str("email", admin.Email).Msg("Seeded admin account")
	return true, nil
}
