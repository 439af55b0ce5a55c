package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/planboard-backend/internal/apierr"
	"github.com/yungbote/planboard-backend/internal/logger"
	"github.com/yungbote/planboard-backend/internal/repos"
	"github.com/yungbote/planboard-backend/internal/requestdata"
	"github.com/yungbote/planboard-backend/internal/types"
)

type AuthService interface {
	Register(ctx context.Context, user *types.User) error
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error)
	Refresh(ctx context.Context) (accessToken string, err error)
	Logout(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           baseLog.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) Register(ctx context.Context, user *types.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Email == "" || user.Password == "" {
		return apierr.Validation("missing_credentials", nil)
	}
	exists, err := as.userRepo.EmailExists(ctx, nil, user.Email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if exists {
		return apierr.Conflict("email_taken", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hashed)
	user.ID = uuid.New()

	if _, err := as.userRepo.Create(ctx, nil, []*types.User{user}); err != nil {
		as.log.Error("Register: create user failed", "error", err)
		return err
	}
	return nil
}

func (as *authService) Login(ctx context.Context, email, password string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return "", "", fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return "", "", apierr.New(http.StatusUnauthorized, "invalid_credentials", nil)
	}
	user := users[0]

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", apierr.New(http.StatusUnauthorized, "invalid_credentials", nil)
	}

	accessToken, err := as.generateAccessToken(user.ID)
	if err != nil {
		return "", "", err
	}

	refreshToken := uuid.NewString()
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := as.userTokenRepo.DeleteByUserIDs(ctx, tx, []uuid.UUID{user.ID}); err != nil {
			return fmt.Errorf("clear prior tokens: %w", err)
		}
		_, err := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{{
			UserID:       user.ID,
			RefreshToken: refreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}})
		return err
	}); err != nil {
		as.log.Error("Login: persist refresh token failed", "error", err)
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (as *authService) Refresh(ctx context.Context) (string, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil || rd.RefreshToken == "" {
		return "", apierr.New(http.StatusUnauthorized, "missing_refresh_token", nil)
	}

	tokens, err := as.userTokenRepo.GetByUserIDs(ctx, nil, []uuid.UUID{rd.UserID})
	if err != nil {
		return "", fmt.Errorf("load refresh token: %w", err)
	}
	valid := false
	for _, t := range tokens {
		if t.RefreshToken == rd.RefreshToken && t.ExpiresAt.After(time.Now()) {
			valid = true
			break
		}
	}
	if !valid {
		return "", apierr.New(http.StatusUnauthorized, "invalid_refresh_token", nil)
	}
	return as.generateAccessToken(rd.UserID)
}

func (as *authService) Logout(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.New(http.StatusUnauthorized, "not_authenticated", nil)
	}
	return as.userTokenRepo.DeleteByUserIDs(ctx, nil, []uuid.UUID{rd.UserID})
}

// SetContextFromToken validates the access token and stamps the owning user
// onto the request context; every engine call downstream resolves its scope
// from this.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil || !token.Valid {
		return ctx, apierr.New(http.StatusUnauthorized, "invalid_token", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx, apierr.New(http.StatusUnauthorized, "invalid_token", nil)
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ctx, apierr.New(http.StatusUnauthorized, "invalid_token", err)
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return ctx, apierr.New(http.StatusUnauthorized, "invalid_token", err)
	}

	rd := &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) generateAccessToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"iat": now.Unix(),
		"exp": now.Add(as.accessTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}
