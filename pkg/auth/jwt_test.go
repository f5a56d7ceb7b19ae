package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func newTestJWTService(t *testing.T) *JWTService {
	t.Helper()
	svc, err := NewJWTService(JWTConfig{
		Secret:     "test-secret-key-for-unit-tests",
		Issuer:     "factoring-test",
		Expiration: 15 * time.Minute,
	})
	if err != nil {
		t.Fatalf("NewJWTService() error = %v", err)
	}
	return svc
}

func clientIdentity() Identity {
	return Identity{
		UserID:     "user-1",
		Email:      "ana@cliente.co",
		Membership: Membership{CompanyID: "company-1", Role: "owner", Status: MembershipActive},
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestJWTService(t)

	tokenString, err := svc.GenerateToken(clientIdentity())
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := svc.ValidateToken(tokenString)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != "user-1" || claims.Subject != "user-1" {
		t.Errorf("UserID/Subject = %q/%q, want user-1", claims.UserID, claims.Subject)
	}
	if claims.Email != "ana@cliente.co" || claims.IsStaff {
		t.Errorf("unexpected identity %+v", claims.Identity())
	}
	if claims.Membership.CompanyID != "company-1" || !claims.MembershipActive() {
		t.Errorf("unexpected membership %+v", claims.Membership)
	}
	if claims.Issuer != "factoring-test" {
		t.Errorf("Issuer = %q, want factoring-test", claims.Issuer)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	svc, err := NewJWTService(JWTConfig{
		Secret:     "test-secret-key-for-unit-tests",
		Expiration: -1 * time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}
	tokenString, err := svc.GenerateToken(clientIdentity())
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if _, err := svc.ValidateToken(tokenString); err == nil {
		t.Fatal("ValidateToken() expected error for expired token, got nil")
	}
}

func TestValidateToken_InvalidSignatureAndIssuer(t *testing.T) {
	svc1 := newTestJWTService(t)
	svc2, _ := NewJWTService(JWTConfig{Secret: "another-secret", Issuer: "factoring-test", Expiration: time.Minute})
	svc3, _ := NewJWTService(JWTConfig{Secret: "test-secret-key-for-unit-tests", Issuer: "someone-else", Expiration: time.Minute})

	tokenString, err := svc1.GenerateToken(clientIdentity())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc2.ValidateToken(tokenString); err == nil {
		t.Error("expected signature error")
	}
	if _, err := svc3.ValidateToken(tokenString); err == nil || !strings.Contains(err.Error(), "issuer") {
		t.Errorf("expected issuer error, got %v", err)
	}
}

func TestRSAKeyPair(t *testing.T) {
	privPEM, pubPEM, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error = %v", err)
	}
	issuer, err := NewJWTService(JWTConfig{PrivateKeyPEM: string(privPEM), Expiration: time.Minute})
	if err != nil {
		t.Fatal(err)
	}
	validator, err := NewJWTService(JWTConfig{PublicKeyPEM: string(pubPEM)})
	if err != nil {
		t.Fatal(err)
	}

	tokenString, err := issuer.GenerateToken(Identity{UserID: "staff-1", IsStaff: true})
	if err != nil {
		t.Fatal(err)
	}
	claims, err := validator.ValidateToken(tokenString)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if !claims.IsStaff {
		t.Error("expected staff claim")
	}
	if _, err := validator.GenerateToken(Identity{UserID: "x"}); err == nil {
		t.Error("validation-only service must not sign tokens")
	}
}

func TestNewJWTService_RequiresKeyMaterial(t *testing.T) {
	if _, err := NewJWTService(JWTConfig{}); err == nil {
		t.Fatal("expected error without any key material")
	}
}

func TestClaimsFromContext(t *testing.T) {
	if _, ok := ClaimsFromContext(context.Background()); ok {
		t.Error("ClaimsFromContext() ok = true for empty context, want false")
	}

	expected := &Claims{UserID: "user-9"}
	got, ok := ClaimsFromContext(ContextWithClaims(context.Background(), expected))
	if !ok || got.UserID != "user-9" {
		t.Errorf("ClaimsFromContext() = %+v, %v", got, ok)
	}
}

type validatorFunc func(string) (*Claims, error)

func (f validatorFunc) ValidateToken(s string) (*Claims, error) { return f(s) }

func TestUnaryAuthInterceptor(t *testing.T) {
	active := &Claims{UserID: "u1", Membership: Membership{CompanyID: "c1", Status: MembershipActive}}
	revoked := &Claims{UserID: "u2", Membership: Membership{CompanyID: "c1", Status: MembershipRevoked}}
	validator := validatorFunc(func(tok string) (*Claims, error) {
		switch tok {
		case "good":
			return active, nil
		case "revoked":
			return revoked, nil
		default:
			return nil, errors.New("bad token")
		}
	})
	interceptor := UnaryAuthInterceptor(validator, []string{"/grpc.health.v1.Health/Check"})

	var seen *Claims
	handler := func(ctx context.Context, _ interface{}) (interface{}, error) {
		seen, _ = ClaimsFromContext(ctx)
		return "ok", nil
	}
	info := &grpc.UnaryServerInfo{FullMethod: "/factoring.v1.FactoringService/Disburse"}

	withToken := func(tok string) context.Context {
		return metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+tok))
	}

	t.Run("valid token reaches handler with claims", func(t *testing.T) {
		_, err := interceptor(withToken("good"), nil, info, handler)
		if err != nil || seen != active {
			t.Fatalf("err=%v claims=%v", err, seen)
		}
	})

	t.Run("missing metadata is unauthenticated", func(t *testing.T) {
		_, err := interceptor(context.Background(), nil, info, handler)
		if status.Code(err) != codes.Unauthenticated {
			t.Errorf("code = %v, want Unauthenticated", status.Code(err))
		}
	})

	t.Run("invalid token is unauthenticated", func(t *testing.T) {
		_, err := interceptor(withToken("nope"), nil, info, handler)
		if status.Code(err) != codes.Unauthenticated {
			t.Errorf("code = %v, want Unauthenticated", status.Code(err))
		}
	})

	t.Run("revoked membership is denied", func(t *testing.T) {
		_, err := interceptor(withToken("revoked"), nil, info, handler)
		if status.Code(err) != codes.PermissionDenied {
			t.Errorf("code = %v, want PermissionDenied", status.Code(err))
		}
	})

	t.Run("skipped method bypasses auth", func(t *testing.T) {
		_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}, handler)
		if err != nil {
			t.Errorf("unexpected error %v", err)
		}
	})
}
