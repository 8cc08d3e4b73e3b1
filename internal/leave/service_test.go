package leave_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/internal/hrmsapi/hrmsapitest"
	"github.com/frahmantamala/hrms-portal/internal/leave"
	"github.com/frahmantamala/hrms-portal/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

var _ = Describe("Service", func() {
	var (
		api *hrmsapitest.Fake
		svc *leave.Service
		ctx = context.Background()
	)

	BeforeEach(func() {
		api = hrmsapitest.New()
		svc = leave.NewService(api, quiet)
	})

	It("loads own leaves and balance for employees", func() {
		api.On("GET", "/api/leaves", `{"data":[{"_id":"l1","leaveType":"SL","status":"Pending","startDate":"2024-03-04","endDate":"2024-03-05","totalDays":2}]}`)
		api.On("GET", "/api/leaves/balance", `{"PL":0,"UL":30}`)

		view := svc.Page(ctx, &internal.User{ID: "u1", Role: internal.RoleEmployee, Token: "t"}, "team")
		Expect(view.Mode).To(Equal("my"))
		Expect(view.CanApply).To(BeTrue())
		Expect(view.DefaultType).To(Equal(leave.TypeUnpaid))
		Expect(view.Leaves).To(HaveLen(1))
		Expect(view.Leaves[0].CanAct).To(BeFalse())
		Expect(view.Summary[leave.StatusPending]).To(Equal(1))
		Expect(view.Modes).To(HaveLen(1))

		Expect(api.CallsTo("GET", "/api/leaves")[0].Query.Get("view")).To(Equal("my"))
		Expect(api.CallsTo("GET", "/api/employees")).To(BeEmpty())
	})

	It("queries the team queue for managers", func() {
		api.On("GET", "/api/leaves", `[{"_id":"l1","status":"Pending"},{"_id":"l2","status":"HR Approved"}]`)

		view := svc.Page(ctx, &internal.User{Role: internal.RoleManager}, "team")
		Expect(view.Mode).To(Equal("team"))
		Expect(view.CanApply).To(BeFalse())
		Expect(view.Leaves[0].CanAct).To(BeTrue())
		Expect(view.Leaves[1].CanAct).To(BeFalse())
		Expect(api.CallsTo("GET", "/api/leaves")[0].Query).To(Equal(url.Values{"view": {"team"}}))
	})

	It("queries a selected employee for hr", func() {
		api.On("GET", "/api/employees", `{"employees":[{"_id":"e1","personalInfo":{"fullName":"Dewi"}}]}`)
		api.On("GET", "/api/leaves", `[]`)
		api.On("GET", "/api/leaves/balance", `{"PL":3}`)

		view := svc.Page(ctx, &internal.User{Role: internal.RoleHR}, "employee:e1")
		Expect(view.Mode).To(Equal("employee:e1"))
		Expect(view.SelectedName).To(Equal("Dewi"))
		Expect(view.DefaultType).To(Equal(leave.TypePaid))
		Expect(view.Modes).To(ContainElement(leave.ModeOption{Value: "employee:e1", Label: "Dewi"}))
		Expect(api.CallsTo("GET", "/api/leaves")[0].Query.Get("employeeId")).To(Equal("e1"))
		Expect(api.CallsTo("GET", "/api/leaves/balance")[0].Query.Get("employeeId")).To(Equal("e1"))
	})

	It("skips the balance for the all-employees view", func() {
		api.On("GET", "/api/leaves", `[]`)
		view := svc.Page(ctx, &internal.User{Role: internal.RoleAdmin}, "all")
		Expect(view.Mode).To(Equal("all"))
		Expect(api.CallsTo("GET", "/api/leaves/balance")).To(BeEmpty())
		Expect(view.Modes[1]).To(Equal(leave.ModeOption{Value: "all", Label: "All Employees"}))
	})

	It("keeps the page usable when a section fails", func() {
		api.On("GET", "/api/leaves/balance", `{"PL":5}`)
		api.Fail("GET", "/api/leaves", internal.NewBackendError(500, "Database timeout"))

		view := svc.Page(ctx, &internal.User{Role: internal.RoleEmployee}, "")
		Expect(view.Leaves).To(BeEmpty())
		Expect(view.Errors).To(ConsistOf("Database timeout"))
		Expect(view.DefaultType).To(Equal(leave.TypePaid))
	})

	It("posts the computed day count", func() {
		err := svc.Apply(ctx, &internal.User{Token: "t"}, leave.ApplyLeaveDTO{LeaveType: "CL", StartDate: "2024-03-04", EndDate: "2024-03-06", Reason: "trip"})
		Expect(err).NotTo(HaveOccurred())

		body := hrmsapitest.BodyJSON(api.CallsTo("POST", "/api/leaves")[0])
		Expect(body).To(HaveKeyWithValue("totalDays", 3.0))
		Expect(body).To(HaveKeyWithValue("leaveType", "CL"))
	})

	It("does not call the backend for an invalid range", func() {
		err := svc.Apply(ctx, &internal.User{}, leave.ApplyLeaveDTO{LeaveType: "CL", StartDate: "2024-03-06", EndDate: "2024-03-04", Reason: "trip"})
		Expect(err).To(HaveOccurred())
		Expect(api.Mutations()).To(BeEmpty())
	})

	It("refuses decisions from employees", func() {
		err := svc.Decide(ctx, &internal.User{Role: internal.RoleEmployee}, "l1", hrDecision("approved"))
		Expect(err).To(MatchError(internal.ErrNotPermitted))
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
		user = &internal.User{ID: "m1", Role: internal.RoleManager, Token: "t", SessionID: "s1"}
		h := leave.NewHandler(transport.NewBaseHandler(quiet, nil, nil, nil), leave.NewService(api, quiet))

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(internal.ContextWithUser(r.Context(), user)))
			})
		})
		router.Route("/leaves", h.Routes)
	})

	It("returns the view model as JSON", func() {
		api.On("GET", "/api/leaves", `[{"_id":"l1","status":"Pending"}]`)
		req := httptest.NewRequest(http.MethodGet, "/leaves?view=team", nil)
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"mode":"team"`))
		Expect(rec.Body.String()).To(ContainSubstring(`"canAct":true`))
	})

	It("redirects back to the same mode after a decision", func() {
		form := url.Values{"status": {"Approved"}, "comments": {"ok"}, "view": {"team"}}
		req := httptest.NewRequest(http.MethodPost, "/leaves/l1/approve", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusSeeOther))
		Expect(rec.Header().Get("Location")).To(Equal("/leaves?view=team"))
		Expect(hrmsapitest.BodyJSON(api.CallsTo("PUT", "/api/leaves/l1/approve")[0])).To(HaveKeyWithValue("status", "approved"))
	})

	It("answers JSON clients with the validation error", func() {
		req := httptest.NewRequest(http.MethodPost, "/leaves", strings.NewReader(`{"leaveType":"PL","startDate":"2024-03-04","endDate":"2024-03-01","reason":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring("INVALID_DATE_RANGE"))
		Expect(api.Mutations()).To(BeEmpty())
	})
})
