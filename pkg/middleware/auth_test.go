package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pressing-booking/internal/data/entity"
	"pressing-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type stubSessionRepo struct {
	session *entity.Session
}

func (s *stubSessionRepo) Create(ctx context.Context, session *entity.Session) error { return nil }
func (s *stubSessionRepo) FindValidSession(ctx context.Context, token string) (*entity.Session, error) {
	if s.session != nil && s.session.Token.String() == token {
		return s.session, nil
	}
	return nil, nil
}
func (s *stubSessionRepo) Revoke(ctx context.Context, token string) error { return nil }
func (s *stubSessionRepo) RevokeAllUserSessions(ctx context.Context, userID uuid.UUID) error {
	return nil
}

type stubUserRepo struct {
	user *entity.User
}

func (s *stubUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }
func (s *stubUserRepo) CreateIfAbsent(ctx context.Context, user *entity.User) (bool, error) {
	return false, nil
}
func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, nil
}
func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, nil
}
func (s *stubUserRepo) Update(ctx context.Context, user *entity.User) error { return nil }

func authRequest(t *testing.T, role entity.UserRole, active bool) *httptest.ResponseRecorder {
	t.Helper()

	user := &entity.User{
		Base:     entity.Base{ID: uuid.New()},
		Email:    "user@example.com",
		Role:     role,
		IsActive: active,
	}
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{ID: uuid.New()},
		UserID:     user.ID,
		Token:      uuid.New(),
		ExpiresAt:  time.Now().Add(time.Hour),
	}

	var gotRole string
	var called bool
	handler := AuthSession(&stubSessionRepo{session: session}, &stubUserRepo{user: user}, zap.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			gotRole, _ = utils.GetRoleFromContext(r.Context())
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if called && gotRole != string(role) {
		t.Errorf("context role = %q, want %q", gotRole, role)
	}
	return rec
}

func TestAuthSessionLoadsRoleFromAccount(t *testing.T) {
	if rec := authRequest(t, entity.RoleAdmin, true); rec.Code != http.StatusOK {
		t.Errorf("admin request status = %d, want 200", rec.Code)
	}
	if rec := authRequest(t, entity.RoleCustomer, true); rec.Code != http.StatusOK {
		t.Errorf("customer request status = %d, want 200", rec.Code)
	}
}

func TestAuthSessionRejectsDeactivatedAccount(t *testing.T) {
	if rec := authRequest(t, entity.RoleCustomer, false); rec.Code != http.StatusUnauthorized {
		t.Errorf("deactivated account status = %d, want 401", rec.Code)
	}
}

func TestAuthSessionRejectsUnknownToken(t *testing.T) {
	handler := AuthSession(&stubSessionRepo{}, &stubUserRepo{}, zap.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler reached without a valid session")
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+uuid.NewString())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
