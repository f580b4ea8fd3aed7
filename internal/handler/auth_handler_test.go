package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SudhanshuYadav174/Calender-Management/internal/middleware"
	"github.com/SudhanshuYadav174/Calender-Management/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	signupFn         func(ctx context.Context, name, email, password string) (*model.User, error)
	verifyOTPFn      func(ctx context.Context, email, otp string) (*model.User, *model.Session, error)
	resendOTPFn      func(ctx context.Context, email string) error
	loginFn          func(ctx context.Context, email, password string) (*model.User, *model.Session, error)
	logoutFn         func(ctx context.Context, sessionID string) error
	getCurrentUserFn func(ctx context.Context, sessionID string) (*model.User, error)
}

func (m *mockAuthService) Signup(ctx context.Context, name, email, password string) (*model.User, error) {
	if m.signupFn != nil {
		return m.signupFn(ctx, name, email, password)
	}
	return &model.User{ID: "u1", Name: name, Email: email}, nil
}

func (m *mockAuthService) VerifyOTP(ctx context.Context, email, otp string) (*model.User, *model.Session, error) {
	if m.verifyOTPFn != nil {
		return m.verifyOTPFn(ctx, email, otp)
	}
	return &model.User{ID: "u1", Email: email, IsVerified: true},
		&model.Session{ID: "sess-verified", UserID: "u1"}, nil
}

func (m *mockAuthService) ResendOTP(ctx context.Context, email string) error {
	if m.resendOTPFn != nil {
		return m.resendOTPFn(ctx, email)
	}
	return nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return &model.User{ID: "u1", Email: email, IsVerified: true}, &model.Session{ID: "sess-1", UserID: "u1"}, nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if m.getCurrentUserFn != nil {
		return m.getCurrentUserFn(ctx, sessionID)
	}
	return &model.User{ID: "u1", Name: "田中太郎"}, nil
}

func testAuthHandler(service AuthServiceInterface) *AuthHandler {
	return NewAuthHandler(service, AuthHandlerConfig{
		CookieSecure:  false,
		SessionMaxAge: 3600,
	})
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// --- Signup ---

func TestSignup(t *testing.T) {
	h := testAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	h.Signup(w, jsonRequest(http.MethodPost, "/auth/signup",
		`{"name":"田中太郎","email":"taro@example.com","password":"secret123"}`))

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.Code)
	}

	var resp userResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if resp.Email != "taro@example.com" {
		t.Errorf("email = %q", resp.Email)
	}
	if strings.Contains(w.Body.String(), "secret123") {
		t.Error("password must not appear in response")
	}
}

func TestSignup_InvalidBody(t *testing.T) {
	h := testAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	h.Signup(w, jsonRequest(http.MethodPost, "/auth/signup", `{not json`))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSignup_MissingFields(t *testing.T) {
	h := testAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	h.Signup(w, jsonRequest(http.MethodPost, "/auth/signup", `{"email":"taro@example.com"}`))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSignup_UserExists(t *testing.T) {
	service := &mockAuthService{
		signupFn: func(_ context.Context, _, _, _ string) (*model.User, error) {
			return nil, model.NewUserExistsError()
		},
	}
	h := testAuthHandler(service)

	w := httptest.NewRecorder()
	h.Signup(w, jsonRequest(http.MethodPost, "/auth/signup",
		`{"name":"田中太郎","email":"taro@example.com","password":"secret123"}`))

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

// --- VerifyOTP ---

func TestVerifyOTP_SetsSessionCookie(t *testing.T) {
	h := testAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	h.VerifyOTP(w, jsonRequest(http.MethodPost, "/auth/verify-otp",
		`{"email":"taro@example.com","otp":"123456"}`))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var found bool
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName && c.Value == "sess-verified" {
			found = true
			if !c.HttpOnly {
				t.Error("session cookie must be HTTP only")
			}
		}
	}
	if !found {
		t.Error("verify-otp should log the user in with a session cookie")
	}
}

func TestVerifyOTP_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr *model.APIError
		wantStatus int
	}{
		{"期限切れOTPは400", model.NewOTPExpiredError(), http.StatusBadRequest},
		{"OTP不一致は400", model.NewInvalidOTPError(), http.StatusBadRequest},
		{"確認済みは409", model.NewAlreadyVerifiedError(), http.StatusConflict},
		{"ユーザー不在は404", model.NewUserNotFoundError(), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mockAuthService{
				verifyOTPFn: func(_ context.Context, _, _ string) (*model.User, *model.Session, error) {
					return nil, nil, tt.serviceErr
				},
			}
			h := testAuthHandler(service)

			w := httptest.NewRecorder()
			h.VerifyOTP(w, jsonRequest(http.MethodPost, "/auth/verify-otp",
				`{"email":"taro@example.com","otp":"000000"}`))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

// --- Login ---

func TestLogin_SetsSessionCookie(t *testing.T) {
	h := testAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	h.Login(w, jsonRequest(http.MethodPost, "/auth/login",
		`{"email":"taro@example.com","password":"secret123"}`))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	cookies := w.Result().Cookies()
	var sessionCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == middleware.SessionCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("session cookie should be set")
	}
	if sessionCookie.Value != "sess-1" {
		t.Errorf("cookie value = %q", sessionCookie.Value)
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie must be HTTP only")
	}
}

func TestLogin_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr *model.APIError
		wantStatus int
	}{
		{"資格情報不一致は401", model.NewInvalidCredentialsError(), http.StatusUnauthorized},
		{"未確認ユーザーは403", model.NewUserNotVerifiedError(), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mockAuthService{
				loginFn: func(_ context.Context, _, _ string) (*model.User, *model.Session, error) {
					return nil, nil, tt.serviceErr
				},
			}
			h := testAuthHandler(service)

			w := httptest.NewRecorder()
			h.Login(w, jsonRequest(http.MethodPost, "/auth/login",
				`{"email":"taro@example.com","password":"bad"}`))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			for _, c := range w.Result().Cookies() {
				if c.Name == middleware.SessionCookieName && c.Value != "" {
					t.Error("no session cookie should be set on failure")
				}
			}
		})
	}
}

// --- Logout / Me ---

func TestLogout_ClearsCookie(t *testing.T) {
	var loggedOutID string
	service := &mockAuthService{
		logoutFn: func(_ context.Context, sessionID string) error {
			loggedOutID = sessionID
			return nil
		},
	}
	h := testAuthHandler(service)

	req := jsonRequest(http.MethodPost, "/auth/logout", "")
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "sess-1"})
	w := httptest.NewRecorder()
	h.Logout(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if loggedOutID != "sess-1" {
		t.Errorf("logged out session = %q", loggedOutID)
	}

	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("session cookie should be cleared")
	}
}

func TestMe(t *testing.T) {
	h := testAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "sess-1"})
	w := httptest.NewRecorder()
	h.Me(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	var resp userResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if resp.ID != "u1" {
		t.Errorf("id = %q", resp.ID)
	}
}

func TestMe_NoCookie(t *testing.T) {
	h := testAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	h.Me(w, httptest.NewRequest(http.MethodGet, "/auth/me", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
