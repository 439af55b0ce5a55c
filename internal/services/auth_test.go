package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/yungbote/planboard-backend/internal/logger"
	"github.com/yungbote/planboard-backend/internal/repos"
	"github.com/yungbote/planboard-backend/internal/requestdata"
	"github.com/yungbote/planboard-backend/internal/types"
)

func newAuthService(env *testEnv) AuthService {
	return NewAuthService(env.db, logger.NewNop(),
		repos.NewUserRepo(env.db, logger.NewNop()),
		repos.NewUserTokenRepo(env.db, logger.NewNop()),
		"test-secret", time.Hour, 24*time.Hour)
}

func TestRegisterLoginSetContextRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuthService(env)

	user := &types.User{Email: "  New@Example.com ", Password: "hunter22", FirstName: "New", LastName: "User"}
	if err := auth.Register(context.Background(), user); err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Password == "hunter22" {
		t.Fatal("password must be stored hashed")
	}

	access, refresh, err := auth.Login(context.Background(), "new@example.com", "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("login must issue both tokens")
	}

	ctx, err := auth.SetContextFromToken(context.Background(), access)
	if err != nil {
		t.Fatalf("set context: %v", err)
	}
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID != user.ID {
		t.Fatal("access token must resolve to the registered user")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuthService(env)

	first := &types.User{Email: "dup@example.com", Password: "pw-one", FirstName: "A", LastName: "B"}
	if err := auth.Register(context.Background(), first); err != nil {
		t.Fatalf("register: %v", err)
	}
	second := &types.User{Email: "DUP@example.com", Password: "pw-two", FirstName: "C", LastName: "D"}
	wantAPIError(t, auth.Register(context.Background(), second), http.StatusConflict, "email_taken")
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuthService(env)

	user := &types.User{Email: "who@example.com", Password: "right", FirstName: "A", LastName: "B"}
	if err := auth.Register(context.Background(), user); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, _, err := auth.Login(context.Background(), "who@example.com", "wrong")
	wantAPIError(t, err, http.StatusUnauthorized, "invalid_credentials")
}

func TestRefreshRotatesAccessToken(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuthService(env)

	user := &types.User{Email: "r@example.com", Password: "pw", FirstName: "A", LastName: "B"}
	if err := auth.Register(context.Background(), user); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, refresh, err := auth.Login(context.Background(), "r@example.com", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	ctx := requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID:       user.ID,
		RefreshToken: refresh,
	})
	access, err := auth.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if access == "" {
		t.Fatal("refresh must issue a new access token")
	}

	stale := requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID:       user.ID,
		RefreshToken: "not-the-token",
	})
	_, err = auth.Refresh(stale)
	wantAPIError(t, err, http.StatusUnauthorized, "invalid_refresh_token")
}

func TestLogoutInvalidatesRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuthService(env)

	user := &types.User{Email: "bye@example.com", Password: "pw", FirstName: "A", LastName: "B"}
	if err := auth.Register(context.Background(), user); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, refresh, err := auth.Login(context.Background(), "bye@example.com", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	ctx := requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID:       user.ID,
		RefreshToken: refresh,
	})
	if err := auth.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	_, err = auth.Refresh(ctx)
	wantAPIError(t, err, http.StatusUnauthorized, "invalid_refresh_token")
}

func TestSetContextFromTokenRejectsGarbage(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuthService(env)
	_, err := auth.SetContextFromToken(context.Background(), "not.a.jwt")
	wantAPIError(t, err, http.StatusUnauthorized, "invalid_token")
}
