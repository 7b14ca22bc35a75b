package services

import (
	"context"
	"crypto/rand"
	"math/big"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/barmor12/cakeshop-backend/models"
	"github.com/barmor12/cakeshop-backend/notifications"
	"github.com/barmor12/cakeshop-backend/repository"
	"github.com/barmor12/cakeshop-backend/sender"
)

// GenerateRandomCode returns a numeric code of the given length.
func GenerateRandomCode(length int) string {
	code := ""
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			// Fallback to 0 in the unlikely event of entropy failure
			code += "0"
			continue
		}
		code += n.String()
	}
	return code
}

// AuthService defines the interface for authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) *ServiceError
	Login(ctx context.Context, email, password string) (*TokenPair, *ServiceError)
	VerifyEmail(ctx context.Context, email, code string) *ServiceError
	RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, *ServiceError)
	Logout(ctx context.Context, refreshToken string) *ServiceError
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, *ServiceError)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *models.UpdateProfileRequest) (*models.User, *ServiceError)
}

type authServiceImpl struct {
	db            *gorm.DB
	userRepo      repository.UserRepository
	refreshTokens repository.RefreshTokenRepository
	tokenService  *TokenService
	email         sender.EmailSender
	logger        *zap.Logger
}

func NewAuthService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	refreshTokens repository.RefreshTokenRepository,
	tokenService *TokenService,
	email sender.EmailSender,
	logger *zap.Logger,
) AuthService {
	return &authServiceImpl{
		db:            db,
		userRepo:      userRepo,
		refreshTokens: refreshTokens,
		tokenService:  tokenService,
		email:         email,
		logger:        logger,
	}
}

// Register creates an unverified account and sends the verification email.
// Both happen inside one transaction so a failed email leaves no account
// behind that could never be verified.
func (s *authServiceImpl) Register(ctx context.Context, req *models.RegisterRequest) *ServiceError {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repository.NewGormUserRepository(tx)

		if _, err := txRepo.FindByEmail(ctx, req.Email); err == nil {
			return conflict("Email already registered")
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		newUser := &models.User{
			Email:            req.Email,
			Name:             req.Name,
			Phone:            req.Phone,
			Password:         string(hashedPassword),
			Role:             "user",
			EmailVerified:    false,
			VerificationCode: GenerateRandomCode(6),
		}
		if err := txRepo.Create(ctx, newUser); err != nil {
			return err
		}

		html := notifications.BuildVerificationEmailHTML(newUser.Name, newUser.VerificationCode)
		if _, err := s.email.SendEmail(ctx, newUser.Email, "Verify your CakeShop account", html); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if svcErr, ok := err.(*ServiceError); ok {
			return svcErr
		}
		s.logger.Error("Failed to register user", zap.String("email", req.Email), zap.Error(err))
		return internal("Failed to create account")
	}

	s.logger.Info("User registered", zap.String("email", req.Email))
	return nil
}

// Login verifies credentials and issues a token pair. The refresh token is
// recorded so it can be rotated and revoked.
func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*TokenPair, *ServiceError) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, &ServiceError{StatusCode: http.StatusUnauthorized, Message: "Invalid email or password"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, &ServiceError{StatusCode: http.StatusUnauthorized, Message: "Invalid email or password"}
	}

	if !user.EmailVerified {
		return nil, forbidden("Email not verified")
	}

	return s.issueTokens(ctx, user)
}

// VerifyEmail marks an account verified when the submitted code matches.
func (s *authServiceImpl) VerifyEmail(ctx context.Context, email, code string) *ServiceError {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return notFound("User not found")
	}

	if user.EmailVerified {
		return nil
	}
	if user.VerificationCode == "" || user.VerificationCode != code {
		return badRequest("Invalid verification code")
	}

	user.EmailVerified = true
	user.VerificationCode = ""
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to mark email verified", zap.String("email", email), zap.Error(err))
		return internal("Failed to verify email")
	}

	s.logger.Info("Email verified", zap.String("email", email))
	return nil
}

// RefreshTokens rotates a refresh token: the presented token is revoked and a
// fresh pair is issued. A revoked or expired token is rejected.
func (s *authServiceImpl) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, *ServiceError) {
	claims, err := s.tokenService.ValidateToken(refreshToken, "refresh")
	if err != nil {
		return nil, &ServiceError{StatusCode: http.StatusUnauthorized, Message: "Invalid refresh token"}
	}

	tokenID, ok := claims["jti"].(string)
	if !ok || tokenID == "" {
		return nil, &ServiceError{StatusCode: http.StatusUnauthorized, Message: "Invalid refresh token"}
	}

	stored, err := s.refreshTokens.FindByTokenID(ctx, tokenID)
	if err != nil {
		return nil, &ServiceError{StatusCode: http.StatusUnauthorized, Message: "Refresh token revoked or expired"}
	}

	user, err := s.userRepo.FindByID(ctx, stored.UserID)
	if err != nil {
		return nil, &ServiceError{StatusCode: http.StatusUnauthorized, Message: "User not found"}
	}

	if err := s.refreshTokens.Revoke(ctx, tokenID); err != nil {
		s.logger.Error("Failed to revoke refresh token", zap.String("token_id", tokenID), zap.Error(err))
		return nil, internal("Failed to refresh tokens")
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes the presented refresh token.
func (s *authServiceImpl) Logout(ctx context.Context, refreshToken string) *ServiceError {
	claims, err := s.tokenService.ValidateToken(refreshToken, "refresh")
	if err != nil {
		// Already invalid; nothing to revoke.
		return nil
	}
	tokenID, ok := claims["jti"].(string)
	if !ok || tokenID == "" {
		return nil
	}
	if err := s.refreshTokens.Revoke(ctx, tokenID); err != nil {
		s.logger.Error("Failed to revoke refresh token", zap.String("token_id", tokenID), zap.Error(err))
		return internal("Failed to log out")
	}
	return nil
}

func (s *authServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, *ServiceError) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound("User not found")
	}
	return user, nil
}

// UpdateProfile changes the user's display name and phone. Email and role are
// immutable here.
func (s *authServiceImpl) UpdateProfile(ctx context.Context, userID uuid.UUID, req *models.UpdateProfileRequest) (*models.User, *ServiceError) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound("User not found")
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update profile", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, internal("Failed to update profile")
	}
	return user, nil
}

func (s *authServiceImpl) issueTokens(ctx context.Context, user *models.User) (*TokenPair, *ServiceError) {
	pair, tokenID, err := s.tokenService.GenerateTokenPair(user.ID.String(), user.Email, user.Role)
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, internal("Failed to issue tokens")
	}

	record := &models.RefreshToken{
		ID:        uuid.New(),
		TokenID:   tokenID,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.refreshTokens.Save(ctx, record); err != nil {
		s.logger.Error("Failed to save refresh token", zap.Error(err))
		return nil, internal("Failed to issue tokens")
	}
	return pair, nil
}
