package internal_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/frahmantamala/hrms-portal/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestInternal(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Internal Suite")
}

func validConfig() *internal.Config {
	cfg := &internal.Config{
		Database: internal.DatabaseConfig{Source: "postgres://localhost/portal"},
		Backend:  internal.BackendConfig{BaseURL: "http://localhost:5000"},
	}
	cfg.ApplyDefaults()
	return cfg
}

var _ = Describe("Config", func() {
	It("accepts a defaulted config", func() {
		cfg := validConfig()
		Expect(cfg.Validate()).To(Succeed())
		Expect(cfg.UI.SearchDebounce).To(Equal(500 * time.Millisecond))
		Expect(cfg.Security.SessionCookieName).To(Equal("hrms_session"))
	})

	It("requires the backend URL", func() {
		cfg := validConfig()
		cfg.Backend.BaseURL = ""
		err := cfg.Validate()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("BaseURL"))
	})

	It("rejects a non-http backend URL", func() {
		cfg := validConfig()
		cfg.Backend.BaseURL = "ftp://files.example.com"
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("http(s)")))
	})

	It("rejects more idle than open connections", func() {
		cfg := validConfig()
		cfg.Database.MaxIdleConns = 50
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("max_idle_conns")))
	})

	It("requires secure cookies in production", func() {
		cfg := validConfig()
		cfg.Server.Environment = "production"
		cfg.Security.SecureCookies = false
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("secure_cookies")))
	})

	It("checks trusted proxies", func() {
		cfg := validConfig()
		cfg.Server.TrustedProxies = []string{"10.0.0.0/8", "192.0.2.10"}
		Expect(cfg.Validate()).To(Succeed())

		cfg.Server.TrustedProxies = []string{"load-balancer"}
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("trusted_proxies")))
	})
})

var _ = Describe("Errors", func() {
	It("keeps backend validation messages verbatim", func() {
		err := internal.NewBackendError(http.StatusBadRequest, "Insufficient leave balance")
		Expect(err.Type).To(Equal(internal.ErrorTypeValidation))
		Expect(internal.UserMessage(err, "Something went wrong")).To(Equal("Insufficient leave balance"))
	})

	It("falls back to the generic message when the backend sent none", func() {
		err := internal.NewBackendError(http.StatusInternalServerError, "")
		Expect(err.StatusCode).To(Equal(http.StatusBadGateway))
		Expect(internal.UserMessage(err, "Something went wrong")).To(Equal("Something went wrong"))
	})

	It("never exposes internal error text", func() {
		err := internal.NewInternalError("db exploded", errors.New("boom"))
		Expect(internal.UserMessage(err, "Try again")).To(Equal("Try again"))
		Expect(internal.UserMessage(errors.New("plain"), "Try again")).To(Equal("Try again"))
	})

	It("finds wrapped application errors", func() {
		wrapped := fmt.Errorf("loading: %w", internal.ErrSessionExpired)
		appErr, ok := internal.IsAppError(wrapped)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeSessionExpired))
	})

	It("joins multiple field errors", func() {
		err := internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).
			WithDetails(internal.ValidationErrors{Errors: []internal.ValidationError{
				{Field: "title", Message: "title is required"},
				{Field: "description", Message: "description is required"},
			}})
		Expect(err.GetDetailedMessage()).To(Equal("title is required; description is required"))
		Expect(err.Error()).To(Equal("title is required"))
	})
})

var _ = Describe("User context", func() {
	It("round-trips the user", func() {
		u := &internal.User{ID: "u1", Role: internal.ParseRole(" HR ")}
		got, ok := internal.UserFromContext(internal.ContextWithUser(context.Background(), u))
		Expect(ok).To(BeTrue())
		Expect(got.Role).To(Equal(internal.RoleHR))
		Expect(got.IsPrivileged()).To(BeTrue())
	})

	It("treats employees as unprivileged", func() {
		u := &internal.User{Role: internal.RoleEmployee}
		Expect(u.IsPrivileged()).To(BeFalse())
		var none *internal.User
		Expect(none.HasRole(internal.RoleAdmin)).To(BeFalse())
	})
})
