package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/innouni-api/internal/models"
	"github.com/noah-isme/innouni-api/internal/repository"
	appErrors "github.com/noah-isme/innouni-api/pkg/errors"
	"github.com/noah-isme/innouni-api/pkg/logger"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, id int64, req models.UpdateProfileRequest) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string, updatedAt time.Time) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
	HashCost   int
}

// AuthService provides authentication use cases.
type AuthService struct {
	repo      authUserRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.Expiration <= 0 {
		config.Expiration = 24 * time.Hour
	}
	if config.HashCost == 0 {
		config.HashCost = bcrypt.DefaultCost
	}
	return &AuthService{repo: repo, validator: validate, logger: logger, config: config}
}

// Register creates a new account and returns its public profile.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.UserProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err, registerValidationMessage(err))
	}
	if req.Role == "" {
		req.Role = models.RoleStudent
	}

	taken, err := s.repo.EmailTaken(ctx, req.Email, 0)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err, "failed to check email")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.HashCost)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err, "failed to hash password")
	}

	user := &models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
		return nil, appErrors.ErrInternal.Wrap(err, "failed to create user")
	}

	s.audit(ctx, user.ID, models.AuditActionRegister, map[string]interface{}{"role": user.Role}, req.IP, req.UserAgent)

	profile := user.Profile()
	return &profile, nil
}

// Login authenticates a user and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.Wrap(err, "email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// keep timing close to the known-email path
			_ = bcrypt.CompareHashAndPassword(s.placeholderHash(), []byte(req.Password))
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, appErrors.ErrInternal.Wrap(err, "failed to fetch user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	if req.Role != "" && req.Role != user.Role {
		return nil, appErrors.Clone(appErrors.ErrRoleMismatch, "account does not have the requested role")
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, appErrors.ErrInternal.Wrap(err, "failed to create access token")
	}

	s.audit(ctx, user.ID, models.AuditActionLogin, map[string]interface{}{"status": "success"}, req.IP, req.UserAgent)

	return &models.LoginResponse{
		Message:   "Login successful",
		Token:     token,
		ExpiresIn: int64(s.config.Expiration.Seconds()),
		User:      user.Profile(),
	}, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, appErrors.ErrTokenInvalid.Wrap(err, "")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.UserID <= 0 || !claims.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrTokenInvalid, "invalid token claims")
	}

	return claims, nil
}

// Profile returns the public profile of a user.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := user.Profile()
	return &profile, nil
}

// UpdateProfile changes only the supplied profile fields.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, req models.UpdateProfileRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.ErrValidation.Wrap(err, "invalid profile payload")
	}

	if req.Email != nil {
		taken, err := s.repo.EmailTaken(ctx, *req.Email, userID)
		if err != nil {
			return appErrors.ErrInternal.Wrap(err, "failed to check email")
		}
		if taken {
			return appErrors.Clone(appErrors.ErrConflict, "email already in use")
		}
	}

	if err := s.repo.UpdateProfile(ctx, userID, req); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		case errors.Is(err, repository.ErrDuplicate):
			return appErrors.Clone(appErrors.ErrConflict, "email already in use")
		}
		return appErrors.ErrInternal.Wrap(err, "failed to update profile")
	}

	s.audit(ctx, userID, models.AuditActionProfileUpdate, nil, "", "")
	return nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.ErrValidation.Wrap(err, "new password must be at least 8 characters")
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "current password is incorrect")
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.config.HashCost)
	if err != nil {
		return appErrors.ErrInternal.Wrap(err, "failed to hash password")
	}

	if err := s.repo.UpdatePassword(ctx, userID, string(newHash), time.Now().UTC()); err != nil {
		return appErrors.ErrInternal.Wrap(err, "failed to update password")
	}

	s.audit(ctx, userID, models.AuditActionPasswordChange, map[string]interface{}{"status": "changed"}, "", "")
	return nil
}

func (s *AuthService) loadUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.ErrInternal.Wrap(err, "failed to load user")
	}
	return user, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	issuedAt := time.Now().UTC()
	claims := &models.JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   models.SubjectFor(user.ID),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.Expiration)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
}

func (s *AuthService) placeholderHash() []byte {
	s.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("innouni-placeholder"), s.config.HashCost)
		if err != nil {
			s.logger.Warn("failed to prepare placeholder hash", zap.Error(err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func (s *AuthService) audit(ctx context.Context, userID int64, action string, values map[string]interface{}, ip, userAgent string) {
	entry := models.NewAuditLog(userID, action, "auth").
		About(models.SubjectFor(userID)).
		From(ip, userAgent).
		Describe(values)
	if err := s.repo.CreateAuditLog(ctx, entry); err != nil {
		logger.FromContext(ctx, s.logger).Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}

func registerValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid registration payload"
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Password":
		return "password must be at least 8 characters"
	case "Email":
		return "a valid email is required"
	case "Role":
		return "role must be one of student, teacher, admin"
	case "FullName":
		return "full name is required"
	}
	return "invalid registration payload"
}
