package grievance_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/internal/auth"
	"github.com/frahmantamala/hrms-portal/internal/grievance"
	"github.com/frahmantamala/hrms-portal/internal/hrmsapi/hrmsapitest"
	"github.com/frahmantamala/hrms-portal/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

const tickets = `{"data":[
	{"_id":"g1","title":"Noise","status":"Open","submittedBy":{"_id":"e1","personalInfo":{"fullName":"Ayu"}}},
	{"_id":"g2","title":"Pay","status":"Resolved","resolution":{"resolvedBy":"m1","resolvedByRole":"manager","details":"fixed"}},
	{"_id":"g3","title":"Desk","status":"In Progress"}
]}`

var _ = Describe("Service", func() {
	var (
		api *hrmsapitest.Fake
		svc *grievance.Service
		ctx = context.Background()
	)

	BeforeEach(func() {
		api = hrmsapitest.New()
		svc = grievance.NewService(api, auth.NewPermissionChecker(), quiet)
	})

	It("lets managers resolve open tickets only", func() {
		api.On("GET", "/api/grievances", tickets)

		view := svc.Page(ctx, &internal.User{Role: internal.RoleManager}, "")
		Expect(view.Status).To(Equal("all"))
		Expect(view.CanSubmit).To(BeFalse())
		Expect(view.Grievances).To(HaveLen(3))
		Expect(view.Grievances[0].CanResolve).To(BeTrue())
		Expect(view.Grievances[0].SubmittedBy.Display()).To(Equal("Ayu"))
		Expect(view.Grievances[1].CanResolve).To(BeFalse())
		Expect(view.Grievances[1].ResolverLabel).To(Equal("Manager"))
		Expect(view.Grievances[2].Color).To(Equal("amber"))
	})

	It("counts the whole list while filtering rows", func() {
		api.On("GET", "/api/grievances", tickets)

		view := svc.Page(ctx, &internal.User{Role: internal.RoleEmployee}, "open")
		Expect(view.Status).To(Equal("Open"))
		Expect(view.CanSubmit).To(BeTrue())
		Expect(view.Grievances).To(HaveLen(1))
		Expect(view.Grievances[0].CanResolve).To(BeFalse())
		Expect(view.Counts).To(HaveKeyWithValue("all", 3))
	})

	It("reports a failed fetch and keeps an empty list", func() {
		api.Fail("GET", "/api/grievances", internal.NewBackendUnavailableError(nil))

		view := svc.Page(ctx, &internal.User{Role: internal.RoleHR}, "")
		Expect(view.Grievances).To(BeEmpty())
		Expect(view.Counts).To(HaveKeyWithValue("all", 0))
		Expect(view.Errors).To(ConsistOf("Service is temporarily unavailable"))
	})

	It("does not submit an incomplete ticket", func() {
		err := svc.Submit(ctx, &internal.User{Role: internal.RoleEmployee}, grievance.SubmitGrievanceDTO{Title: "x"})
		Expect(err).To(HaveOccurred())
		Expect(api.Mutations()).To(BeEmpty())
	})

	It("refuses submissions from managers", func() {
		err := svc.Submit(ctx, &internal.User{Role: internal.RoleManager}, grievance.SubmitGrievanceDTO{})
		Expect(err).To(MatchError(internal.ErrNotPermitted))
	})

	It("sends the trimmed resolution", func() {
		err := svc.Resolve(ctx, &internal.User{Role: internal.RoleManager, Token: "t"}, "g1", grievance.ResolveGrievanceDTO{Resolution: "  moved desk "})
		Expect(err).NotTo(HaveOccurred())

		calls := api.CallsTo("PUT", "/api/grievances/g1/resolve")
		Expect(calls).To(HaveLen(1))
		Expect(calls[0].Token).To(Equal("t"))
		Expect(hrmsapitest.BodyJSON(calls[0])).To(HaveKeyWithValue("resolution", "moved desk"))
	})
})

var _ = Describe("Handler", func() {
	var (
		api    *hrmsapitest.Fake
		router *chi.Mux
		user   *internal.User
	)

	BeforeEach(func() {
		api = hrmsapitest.New()
		user = &internal.User{ID: "e1", Role: internal.RoleEmployee, Token: "t", SessionID: "s1"}
		svc := grievance.NewService(api, auth.NewPermissionChecker(), quiet)
		h := grievance.NewHandler(transport.NewBaseHandler(quiet, nil, nil, nil), svc)

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(internal.ContextWithUser(r.Context(), user)))
			})
		})
		router.Route("/grievances", h.Routes)
	})

	It("submits a form and redirects back", func() {
		form := url.Values{
			"type": {"Suggestion"}, "category": {"Policy"}, "priority": {"Low"},
			"title": {"Remote days"}, "description": {"More please"},
		}
		req := httptest.NewRequest(http.MethodPost, "/grievances", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusSeeOther))
		Expect(rec.Header().Get("Location")).To(Equal("/grievances"))
		Expect(hrmsapitest.BodyJSON(api.CallsTo("POST", "/api/grievances")[0])).To(HaveKeyWithValue("title", "Remote days"))
	})

	It("answers JSON clients with 403 when an employee resolves", func() {
		req := httptest.NewRequest(http.MethodPost, "/grievances/g1/resolve", strings.NewReader(`{"resolution":"ok"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(rec.Body.String()).To(ContainSubstring("NOT_PERMITTED"))
	})

	It("surfaces backend validation messages verbatim", func() {
		api.Fail("POST", "/api/grievances", internal.NewBackendError(400, "Title already used"))
		req := httptest.NewRequest(http.MethodPost, "/grievances", strings.NewReader(
			`{"type":"Complaint","category":"Other","priority":"High","title":"t","description":"d"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring("Title already used"))
	})
})
