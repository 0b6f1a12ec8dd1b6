package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/MaxGalant/auth-api/internal/adapters/http/middleware"
	"github.com/MaxGalant/auth-api/internal/apperr"
	"github.com/MaxGalant/auth-api/internal/domain"
	"github.com/MaxGalant/auth-api/internal/usecase"
)

type mockUserService struct {
	updatePasswordFn func(ctx context.Context, user *domain.User, oldPassword, newPassword string) (string, error)
	updateInfoFn     func(ctx context.Context, userID string, input usecase.UpdateUserInput) (string, error)
	getByIDFn        func(ctx context.Context, id string) (*domain.Profile, error)
	getByIDsFn       func(ctx context.Context, ids []string) ([]domain.Profile, error)
	searchFn         func(ctx context.Context, name string) ([]domain.Profile, error)
}

var _ usecase.UserService = (*mockUserService)(nil)

func (m *mockUserService) UpdatePassword(ctx context.Context, user *domain.User, oldPassword, newPassword string) (string, error) {
	return m.updatePasswordFn(ctx, user, oldPassword, newPassword)
}

func (m *mockUserService) UpdateInfo(ctx context.Context, userID string, input usecase.UpdateUserInput) (string, error) {
	return m.updateInfoFn(ctx, userID, input)
}

func (m *mockUserService) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockUserService) GetByIDs(ctx context.Context, ids []string) ([]domain.Profile, error) {
	return m.getByIDsFn(ctx, ids)
}

func (m *mockUserService) Search(ctx context.Context, name string) ([]domain.Profile, error) {
	return m.searchFn(ctx, name)
}

func serveWithUser(handler echo.HandlerFunc, req *http.Request, user *domain.User) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set(middleware.ContextUserKey, user)
	}
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestUpdatePasswordUsesContextUser(t *testing.T) {
	current := &domain.User{ID: "user-1", Active: true, Role: domain.RoleUser}
	users := &mockUserService{
		updatePasswordFn: func(_ context.Context, user *domain.User, oldPassword, newPassword string) (string, error) {
			if user.ID != "user-1" || oldPassword != "Aa1!aaaa" || newPassword != "Bb2@bbbb" {
				t.Fatalf("unexpected args: %s %s %s", user.ID, oldPassword, newPassword)
			}
			return "Password successfully updated", nil
		},
	}
	h := NewUserHandler(users)

	rec := serveWithUser(h.UpdatePassword, jsonRequest(http.MethodPost, "/user/update-password",
		`{"oldPassword":"Aa1!aaaa","newPassword":"Bb2@bbbb"}`), current)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestUpdatePasswordWrongOldMapped(t *testing.T) {
	users := &mockUserService{
		updatePasswordFn: func(context.Context, *domain.User, string, string) (string, error) {
			return "", apperr.Unauthorized("Invalid password")
		},
	}
	h := NewUserHandler(users)

	rec := serveWithUser(h.UpdatePassword, jsonRequest(http.MethodPost, "/user/update-password",
		`{"oldPassword":"wrong","newPassword":"Bb2@bbbb"}`), &domain.User{ID: "user-1"})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestUpdateInfoForwardsFields(t *testing.T) {
	users := &mockUserService{
		updateInfoFn: func(_ context.Context, userID string, input usecase.UpdateUserInput) (string, error) {
			if userID != "user-1" {
				t.Fatalf("unexpected user id: %s", userID)
			}
			if input.Nickname == nil || *input.Nickname != "maxg" || input.FirstName != nil {
				t.Fatalf("unexpected input: %+v", input)
			}
			return "User's profile info successfully updated", nil
		},
	}
	h := NewUserHandler(users)

	rec := serveWithUser(h.UpdateInfo, jsonRequest(http.MethodPatch, "/user/update-info",
		`{"nickname":"maxg"}`), &domain.User{ID: "user-1"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestGetByIDsSplitsQueryParam(t *testing.T) {
	users := &mockUserService{
		getByIDsFn: func(_ context.Context, ids []string) ([]domain.Profile, error) {
			want := []string{"user-1", "user-2"}
			if !reflect.DeepEqual(ids, want) {
				t.Fatalf("ids = %v, want %v", ids, want)
			}
			return []domain.Profile{{ID: "user-1"}, {ID: "user-2"}}, nil
		},
	}
	h := NewUserHandler(users)

	req := httptest.NewRequest(http.MethodGet, "/user/get-by-ids?ids=user-1,%20user-2,", nil)
	rec := serveWithUser(h.GetByIDs, req, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var profiles []domain.Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &profiles); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}
}

func TestGetByIDNotFoundMapped(t *testing.T) {
	users := &mockUserService{
		getByIDFn: func(context.Context, string) (*domain.Profile, error) {
			return nil, apperr.NotFound("User with id:ghost doesn't exist")
		},
	}
	h := NewUserHandler(users)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("ghost")
	if err := h.GetByID(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSearchForwardsName(t *testing.T) {
	users := &mockUserService{
		searchFn: func(_ context.Context, name string) ([]domain.Profile, error) {
			if name != "anna" {
				t.Fatalf("name = %s", name)
			}
			return []domain.Profile{{ID: "user-1"}}, nil
		},
	}
	h := NewUserHandler(users)

	rec := serveWithUser(h.Search, httptest.NewRequest(http.MethodGet, "/user/search?name=anna", nil), nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
