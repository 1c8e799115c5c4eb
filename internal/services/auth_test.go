package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/northstar-backend/internal/platform/ctxutil"
	"github.com/yungbote/northstar-backend/internal/platform/logger"
)

func TestAuthServiceRoundTrip(t *testing.T) {
	svc := NewAuthService(logger.Nop(), "test-secret")
	userID := uuid.New()

	token, err := svc.IssueToken(userID, "runner@example.com", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	ctx, err := svc.SetContextFromToken(context.Background(), token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID != userID || rd.Email != "runner@example.com" {
		t.Fatalf("unexpected request data: %+v", rd)
	}
}

func TestAuthServiceRejectsBadTokens(t *testing.T) {
	svc := NewAuthService(logger.Nop(), "test-secret")
	other := NewAuthService(logger.Nop(), "other-secret")

	expired, err := svc.IssueToken(uuid.New(), "", -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	foreign, err := other.IssueToken(uuid.New(), "", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	notUUID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	for name, tok := range map[string]string{
		"empty":    "",
		"garbage":  "not-a-token",
		"expired":  expired,
		"foreign":  foreign,
		"not uuid": notUUID,
	} {
		if _, err := svc.SetContextFromToken(context.Background(), tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}
