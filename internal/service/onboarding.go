package service

import (
	"context"
	"fmt"
	"log/slog"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"golang.org/x/crypto/bcrypt"

	"github.com/so-keyldzn/simple-cms-sub000/internal/cache"
	"github.com/so-keyldzn/simple-cms-sub000/internal/config"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/models"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/repositories"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/services"
	"github.com/so-keyldzn/simple-cms-sub000/internal/ratelimit"
)

type onboardingService struct {
	userRepo repositories.UserRepository
	limiter  *ratelimit.Store
	cache    *cache.QueryCache
	logger   *slog.Logger
}

// NewOnboardingService creates the first-run setup service.
func NewOnboardingService(
	userRepo repositories.UserRepository,
	limiter *ratelimit.Store,
	queryCache *cache.QueryCache,
	logger *slog.Logger,
) services.OnboardingService {
	return &onboardingService{
		userRepo: userRepo,
		limiter:  limiter,
		cache:    queryCache,
		logger:   logger,
	}
}

// Status reports whether an administrator account already exists.
func (s *onboardingService) Status(ctx context.Context) (bool, error) {
	count, err := s.userRepo.CountAdmins(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// checkPasswordStrength requires a minimum length plus at least one letter
// and one digit.
func checkPasswordStrength(password string) error {
	if len(password) < config.MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", config.MinPasswordLength)
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("password must contain a letter and a digit")
	}
	return nil
}

// Setup creates the first administrator. The attempt is rate limited per
// client IP and conflicts once any admin exists.
func (s *onboardingService) Setup(ctx context.Context, req *services.OnboardingRequest) (*models.User, error) {
	if req.ClientIP != "" && !s.limiter.Allow(req.ClientIP) {
		s.logger.Warn("onboarding rate limited", "ip", req.ClientIP)
		return nil, fmt.Errorf("onboarding: %w", domain.ErrRateLimited)
	}

	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxUserNameLength)),
		validation.Field(&req.Email, validation.Required, is.EmailFormat),
		validation.Field(&req.Password, validation.Required),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := checkPasswordStrength(req.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	admins, err := s.userRepo.CountAdmins(ctx)
	if err != nil {
		return nil, err
	}
	if admins > 0 {
		return nil, &domain.ConflictError{
			Kind:         domain.ConflictAlreadySetup,
			Message:      "setup has already been completed",
			ResourceType: "user",
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Roles:        models.NewRoleSet(models.RoleAdmin),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.cache.InvalidateEntity(EntityUsers)

	s.logger.Info("initial admin created", "id", user.ID, "email", user.Email)

	return user, nil
}
