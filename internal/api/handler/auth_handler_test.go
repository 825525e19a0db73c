package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/jwt-auth/internal/core/domain"
	"github.com/99minutos/jwt-auth/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (string, error)
	loginFn    func(ctx context.Context, email, password string) (string, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (string, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Resolve(context.Context, string) (*domain.Profile, error) {
	return nil, domain.ErrUserNotFound
}

func newJSONContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

const validRegisterBody = `{"first_name":"A","last_name":"B","email":"a@b.com","password":"secret123"}`

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (string, error) {
			want := ports.RegisterInput{FirstName: "A", LastName: "B", Email: "a@b.com", Password: "secret123"}
			if in != want {
				t.Fatalf("unexpected args: %+v", in)
			}
			return "token123", nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/register", validRegisterBody)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" || len(resp) != 1 {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Register_EmailTaken(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (string, error) {
			return "", domain.ErrEmailTaken
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newJSONContext(http.MethodPost, "/register", validRegisterBody)
	if err := handler.Register(c); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidInput(t *testing.T) {
	cases := map[string]string{
		"not json":        "not-json",
		"missing names":   `{"email":"a@b.com","password":"secret123"}`,
		"bad email":       `{"first_name":"A","last_name":"B","email":"nope","password":"secret123"}`,
		"short password":  `{"first_name":"A","last_name":"B","email":"a@b.com","password":"short"}`,
		"long first name": `{"first_name":"` + strings.Repeat("x", 31) + `","last_name":"B","email":"a@b.com","password":"secret123"}`,

		"blank first name": `{"first_name":"   ","last_name":"B","email":"a@b.com","password":"secret123"}`,
		"blank last name":  `{"first_name":"A","last_name":"\t","email":"a@b.com","password":"secret123"}`,

		"ascii password over 72 bytes":     `{"first_name":"A","last_name":"B","email":"a@b.com","password":"` + strings.Repeat("x", 73) + `"}`,
		"multibyte password over 72 bytes": `{"first_name":"A","last_name":"B","email":"a@b.com","password":"` + strings.Repeat("é", 40) + `"}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			stub := &stubAuthService{
				registerFn: func(ctx context.Context, in ports.RegisterInput) (string, error) {
					t.Fatalf("should not be called")
					return "", nil
				},
			}
			c, _ := newJSONContext(http.MethodPost, "/register", body)

			err := NewAuthHandler(stub).Register(c)
			if domain.KindOf(err) != domain.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestAuthHandler_Register_PasswordBoundedInBytes(t *testing.T) {
	var got string
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (string, error) {
			got = in.Password
			return "token123", nil
		},
	}

	// 36 two-byte runes is exactly 72 bytes.
	password := strings.Repeat("é", 36)
	c, _ := newJSONContext(http.MethodPost, "/register",
		`{"first_name":"A","last_name":"B","email":"a@b.com","password":"`+password+`"}`)
	if err := NewAuthHandler(stub).Register(c); err != nil {
		t.Fatalf("72-byte password should be accepted, got %v", err)
	}
	if got != password {
		t.Fatalf("unexpected password passed to service: %q", got)
	}

	c, _ = newJSONContext(http.MethodPost, "/register",
		`{"first_name":"A","last_name":"B","email":"a@b.com","password":"`+password+`é"}`)
	err := NewAuthHandler(stub).Register(c)
	if err == nil || err.Error() != "password must be at most 72 bytes" {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestAuthHandler_Register_ValidationMessageUsesJSONNames(t *testing.T) {
	stub := &stubAuthService{}
	c, _ := newJSONContext(http.MethodPost, "/register", `{"last_name":"B","email":"a@b.com","password":"secret123"}`)

	err := NewAuthHandler(stub).Register(c)
	if err == nil || err.Error() != "first_name is required" {
		t.Fatalf("unexpected validation message: %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, error) {
			if email != "a@b.com" || password != "secret123" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return "token123", nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/login", `{"email":"a@b.com","password":"secret123"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, error) {
			return "", domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newJSONContext(http.MethodPost, "/login", `{"email":"a@b.com","password":"bad"}`)
	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, error) {
			t.Fatalf("should not be called")
			return "", nil
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newJSONContext(http.MethodPost, "/login", "{")
	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
