package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/internal/auth"
	"github.com/frahmantamala/hrms-portal/internal/core/events"
	"github.com/frahmantamala/hrms-portal/internal/transport"
	"github.com/frahmantamala/hrms-portal/internal/web"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Handler", func() {
	var (
		repo   *memoryRepo
		api    *fakeAPI
		svc    *auth.Service
		router *chi.Mux
	)

	BeforeEach(func() {
		repo = newMemoryRepo()
		api = &fakeAPI{payload: map[string]interface{}{
			"token": "backend-token",
			"user":  map[string]string{"_id": "u1", "email": "ana@corp.io", "role": "hr", "employeeId": "EMP-1", "name": "Ana"},
		}}
		bus := events.NewEventBus(quietLogger)
		svc = auth.NewService(repo, api, bus, auth.Config{SessionTTL: time.Hour}, quietLogger)

		renderer, err := web.NewRenderer(web.Options{AppName: "HRMS"})
		Expect(err).NotTo(HaveOccurred())

		h := auth.NewHandler(transport.NewBaseHandler(quietLogger, renderer, bus, svc), svc, auth.CookieConfig{Name: "sid"})
		router = chi.NewRouter()
		router.Get("/login", h.LoginPage)
		router.Post("/login", h.Login)
		router.Post("/logout", h.Logout)
		router.Group(func(r chi.Router) {
			r.Use(h.RequireSession)
			r.Get("/me", h.Me)
			r.Get("/leaves", func(w http.ResponseWriter, r *http.Request) {
				user, _ := internal.UserFromContext(r.Context())
				w.Write([]byte(user.ID))
			})
		})
	})

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	login := func() *http.Cookie {
		form := url.Values{"email": {"ana@corp.io"}, "password": {"secret"}, "next": {"/leaves"}}
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := serve(req)
		Expect(rec.Code).To(Equal(http.StatusSeeOther))
		Expect(rec.Header().Get("Location")).To(Equal("/leaves"))
		cookies := rec.Result().Cookies()
		Expect(cookies).To(HaveLen(1))
		Expect(cookies[0].HttpOnly).To(BeTrue())
		return cookies[0]
	}

	It("renders the sign-in form", func() {
		rec := serve(httptest.NewRequest(http.MethodGet, "/login?next=/grievances", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`value="/grievances"`))
	})

	It("signs in with a form and redirects to next", func() {
		cookie := login()
		Expect(cookie.Name).To(Equal("sid"))
		Expect(cookie.Value).NotTo(Equal("backend-token"))
	})

	It("answers JSON clients with the user", func() {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"ana@corp.io","password":"secret"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		rec := serve(req)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"role":"hr"`))
		Expect(rec.Body.String()).NotTo(ContainSubstring("backend-token"))
	})

	It("re-renders the form with the backend's message", func() {
		api.err = internal.NewBackendError(http.StatusUnauthorized, "Account is locked")
		form := url.Values{"email": {"ana@corp.io"}, "password": {"x"}}
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := serve(req)
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(rec.Body.String()).To(ContainSubstring("Account is locked"))
		Expect(rec.Body.String()).To(ContainSubstring(`value="ana@corp.io"`))
	})

	Describe("RequireSession", func() {
		It("loads the session into the request", func() {
			req := httptest.NewRequest(http.MethodGet, "/leaves", nil)
			req.AddCookie(login())
			rec := serve(req)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(Equal("u1"))
		})

		It("sends browsers to sign in with the current path", func() {
			rec := serve(httptest.NewRequest(http.MethodGet, "/leaves?mode=team", nil))
			Expect(rec.Code).To(Equal(http.StatusSeeOther))
			Expect(rec.Header().Get("Location")).To(Equal("/login?next=" + url.QueryEscape("/leaves?mode=team")))
		})

		It("answers 401 to JSON clients", func() {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Accept", "application/json")
			rec := serve(req)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(rec.Body.String()).To(ContainSubstring(string(internal.ErrCodeSessionExpired)))
		})

		It("uses HX-Redirect for htmx requests", func() {
			req := httptest.NewRequest(http.MethodGet, "/leaves", nil)
			req.Header.Set("HX-Request", "true")
			rec := serve(req)
			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(rec.Header().Get("HX-Redirect")).To(HavePrefix("/login"))
		})
	})

	It("ends the session on logout", func() {
		cookie := login()

		req := httptest.NewRequest(http.MethodPost, "/logout", nil)
		req.AddCookie(cookie)
		rec := serve(req)
		Expect(rec.Code).To(Equal(http.StatusSeeOther))
		Expect(rec.Header().Get("Location")).To(Equal("/login"))

		_, err := svc.Authenticate(context.Background(), cookie.Value)
		Expect(err).To(HaveOccurred())

		req = httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Accept", "application/json")
		req.AddCookie(cookie)
		Expect(serve(req).Code).To(Equal(http.StatusUnauthorized))
	})
})
