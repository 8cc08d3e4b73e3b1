package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/internal/transport"
	"github.com/frahmantamala/hrms-portal/internal/web"
	"github.com/frahmantamala/hrms-portal/pkg/logger"
)

type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO) (string, *internal.User, time.Time, error)
	Authenticate(ctx context.Context, rawToken string) (*internal.User, error)
	Logout(ctx context.Context, rawToken string) error
}

type CookieConfig struct {
	Name   string
	Secure bool
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Cookie  CookieConfig
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI, cookie CookieConfig) *Handler {
	if cookie.Name == "" {
		cookie.Name = "hrms_session"
	}
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
		Cookie:      cookie,
	}
}

type LoginView struct {
	Email string `json:"email"`
	Next  string `json:"next"`
	Error string `json:"error,omitempty"`
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if user := h.currentUser(r); user != nil {
		h.Redirect(w, r, safeNext(r.URL.Query().Get("next")))
		return
	}
	h.renderLogin(w, r, http.StatusOK, LoginView{Next: safeNext(r.URL.Query().Get("next"))})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid form")
			return
		}
		dto = LoginDTO{
			Email:    r.PostForm.Get("email"),
			Password: r.PostForm.Get("password"),
			Next:     r.PostForm.Get("next"),
		}
	}
	dto.Normalize()

	rawToken, user, expiresAt, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("Login: sign-in failed", "email", dto.Email, "error", err)
		if transport.WantsJSON(r) {
			h.WriteAppError(w, err)
			return
		}
		status := http.StatusUnauthorized
		if appErr, ok := internal.IsAppError(err); ok && appErr.StatusCode < http.StatusInternalServerError {
			status = appErr.StatusCode
		}
		h.renderLogin(w, r, status, LoginView{
			Email: dto.Email,
			Next:  dto.Next,
			Error: internal.UserMessage(err, "Sign-in failed, please try again"),
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.Cookie.Name,
		Value:    rawToken,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	h.Logger.Info("Login: signed in", "user_id", user.ID, "role", user.Role)
	if transport.WantsJSON(r) {
		h.WriteJSON(w, http.StatusOK, user)
		return
	}
	h.Redirect(w, r, dto.Next)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(h.Cookie.Name); err == nil {
		if err := h.Service.Logout(r.Context(), c.Value); err != nil {
			h.Logger.Error("Logout: failed to end session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.Cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	if transport.WantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.Redirect(w, r, "/login")
}

// Me returns the signed-in identity.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := h.MustUser(w, r)
	if !ok {
		return
	}
	h.WriteJSON(w, http.StatusOK, user)
}

// RequireSession loads the session into the request context. Browsers are
// sent to the sign-in page, JSON clients get 401.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := h.currentUser(r)
		if user == nil {
			if transport.WantsJSON(r) {
				h.WriteAppError(w, internal.ErrSessionExpired)
				return
			}
			target := r.URL.RequestURI()
			if r.Method != http.MethodGet {
				target = r.Header.Get("Referer")
				if target == "" {
					target = "/"
				}
			}
			h.Redirect(w, r, transport.LoginPath(safeNext(pathOf(target))))
			return
		}

		ctx := internal.ContextWithUser(r.Context(), user)
		ctx = logger.With(ctx, "userID", user.ID, "role", string(user.Role))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) currentUser(r *http.Request) *internal.User {
	c, err := r.Cookie(h.Cookie.Name)
	if err != nil || c.Value == "" {
		return nil
	}
	user, err := h.Service.Authenticate(r.Context(), c.Value)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); !ok || appErr.Code != internal.ErrCodeSessionExpired {
			h.Logger.Error("RequireSession: failed to load session", "error", err)
		}
		return nil
	}
	return user
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, view LoginView) {
	h.Render(w, r, status, "login", web.Page{Title: "Sign in", View: view})
}

// pathOf strips scheme and host from a Referer so only the local path is kept.
func pathOf(target string) string {
	if i := strings.Index(target, "://"); i >= 0 {
		rest := target[i+3:]
		if j := strings.Index(rest, "/"); j >= 0 {
			return rest[j:]
		}
		return "/"
	}
	return target
}
