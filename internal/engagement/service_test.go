package engagement_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/internal/auth"
	"github.com/frahmantamala/hrms-portal/internal/engagement"
	"github.com/frahmantamala/hrms-portal/internal/hrmsapi/hrmsapitest"
	"github.com/frahmantamala/hrms-portal/internal/transport"
	"github.com/frahmantamala/hrms-portal/internal/web"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

const polls = `{"data":[
	{"_id":"p1","question":"Lunch?","options":[{"text":"Pizza","votes":["u1"]},{"text":"Salad","votes":[]}]},
	{"_id":"p2","question":"Offsite?","deadline":"2024-05-01","options":[{"text":"Yes","votes":[]},{"text":"No","votes":[]}]},
	{"_id":"p3","question":"Music?","options":[{"text":"On","votes":[]},{"text":"Off","votes":[]}]}
]}`

func clock() time.Time { return now }

var _ = Describe("Service", func() {
	var (
		api *hrmsapitest.Fake
		svc *engagement.Service
		ctx = context.Background()
	)

	BeforeEach(func() {
		api = hrmsapitest.New()
		svc = engagement.NewService(api, auth.NewPermissionChecker(), quiet).WithClock(clock)
	})

	It("loads announcements and polls", func() {
		api.On("GET", "/api/engagement/announcements", `[{"_id":"a1","title":"Hi"},{"_id":"a2","title":"Old","expiryDate":"2024-01-01"}]`)
		api.On("GET", "/api/engagement/polls", polls)

		view := svc.Page(ctx, &internal.User{ID: "u1", Role: internal.RoleEmployee})
		Expect(view.CanManage).To(BeFalse())
		Expect(view.Announcements).To(HaveLen(1))
		Expect(view.Polls).To(HaveLen(3))
		Expect(view.Polls[0].HasVoted).To(BeTrue())
		Expect(view.Polls[1].Expired).To(BeTrue())
		Expect(view.Errors).To(BeEmpty())
	})

	It("reports a failed section", func() {
		api.On("GET", "/api/engagement/announcements", `[]`)
		api.Fail("GET", "/api/engagement/polls", internal.NewBackendError(500, "Polls unavailable"))

		view := svc.Page(ctx, &internal.User{Role: internal.RoleHR})
		Expect(view.CanManage).To(BeTrue())
		Expect(view.Polls).To(BeEmpty())
		Expect(view.Errors).To(ConsistOf("Polls unavailable"))
	})

	It("makes no network call for a poll with one option", func() {
		err := svc.CreatePoll(ctx, &internal.User{Role: internal.RoleManager}, engagement.CreatePollDTO{Question: "Q", Options: []string{"only", ""}})
		Expect(err).To(HaveOccurred())
		Expect(api.Mutations()).To(BeEmpty())
	})

	It("refuses announcements from employees", func() {
		err := svc.CreateAnnouncement(ctx, &internal.User{Role: internal.RoleEmployee}, engagement.CreateAnnouncementDTO{Title: "t", Description: "d"})
		Expect(err).To(MatchError(internal.ErrNotPermitted))
	})

	It("posts announcements with the parsed expiry", func() {
		err := svc.CreateAnnouncement(ctx, &internal.User{Role: internal.RoleAdmin, Token: "t"}, engagement.CreateAnnouncementDTO{
			Title: "Town hall", Description: "Friday", ExpiryDate: "2024-06-30", IsPinned: true,
		})
		Expect(err).NotTo(HaveOccurred())
		body := hrmsapitest.BodyJSON(api.CallsTo("POST", "/api/engagement/announcements")[0])
		Expect(body).To(HaveKeyWithValue("visibility", "All"))
		Expect(body).To(HaveKeyWithValue("isPinned", true))
		Expect(body).To(HaveKeyWithValue("expiryDate", "2024-06-30T00:00:00Z"))
	})

	DescribeTable("voting",
		func(pollID string, option int, wantErr bool) {
			api.On("GET", "/api/engagement/polls", polls)
			err := svc.Vote(ctx, &internal.User{ID: "u1", Role: internal.RoleEmployee}, pollID, engagement.VoteDTO{OptionIndex: option})
			if wantErr {
				Expect(err).To(HaveOccurred())
				Expect(api.Mutations()).To(BeEmpty())
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(hrmsapitest.BodyJSON(api.CallsTo("POST", "/api/engagement/polls/"+pollID+"/vote")[0])).To(HaveKeyWithValue("optionIndex", float64(option)))
		},
		Entry("open poll", "p3", 1, false),
		Entry("already voted", "p1", 1, true),
		Entry("past deadline", "p2", 0, true),
		Entry("unknown option", "p3", 2, true),
		Entry("unknown poll", "p9", 0, true),
	)
})

var _ = Describe("Handler", func() {
	var (
		api    *hrmsapitest.Fake
		router *chi.Mux
	)

	BeforeEach(func() {
		api = hrmsapitest.New()
		user := &internal.User{ID: "m1", Role: internal.RoleManager, Token: "t", SessionID: "s1"}
		svc := engagement.NewService(api, auth.NewPermissionChecker(), quiet).WithClock(clock)
		h := engagement.NewHandler(transport.NewBaseHandler(quiet, nil, nil, nil), svc)

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(internal.ContextWithUser(r.Context(), user)))
			})
		})
		router.Route("/engagement", h.Routes)
	})

	postForm := func(path string, form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("adds an option to the draft", func() {
		rec := postForm("/engagement/polls/draft", url.Values{"action": {"add"}, "question": {"Q"}, "options": {"a", "b"}})
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"options":["a","b",""]`))
	})

	It("keeps two options when removal is refused", func() {
		rec := postForm("/engagement/polls/draft", url.Values{"action": {"remove"}, "index": {"1"}, "options": {"a", "b"}})
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"options":["a","b"]`))
		Expect(rec.Body.String()).To(ContainSubstring("at least two options"))
	})

	It("rejects an invalid poll without calling the backend", func() {
		rec := postForm("/engagement/polls", url.Values{"question": {"Q"}, "options": {"only"}})
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring("INSUFFICIENT_OPTIONS"))
		Expect(api.Mutations()).To(BeEmpty())
	})

	It("redirects browsers after voting", func() {
		api.On("GET", "/api/engagement/polls", polls)
		req := httptest.NewRequest(http.MethodPost, "/engagement/polls/p3/vote", strings.NewReader("optionIndex=0"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("HX-Request", "true")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusNoContent))
		Expect(rec.Header().Get("HX-Redirect")).To(Equal("/engagement"))
		Expect(api.CallsTo("POST", "/api/engagement/polls/p3/vote")).To(HaveLen(1))
	})
})

var _ = Describe("Handler with pages", func() {
	var (
		api    *hrmsapitest.Fake
		router *chi.Mux
	)

	BeforeEach(func() {
		api = hrmsapitest.New()
		api.On("GET", "/api/engagement/polls", polls)
		user := &internal.User{ID: "m1", Role: internal.RoleManager, Token: "t", SessionID: "s1"}
		svc := engagement.NewService(api, auth.NewPermissionChecker(), quiet).WithClock(clock)
		renderer, err := web.NewRenderer(web.Options{AppName: "HRMS"})
		Expect(err).NotTo(HaveOccurred())
		h := engagement.NewHandler(transport.NewBaseHandler(quiet, renderer, nil, nil), svc)

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(internal.ContextWithUser(r.Context(), user)))
			})
		})
		router.Route("/engagement", h.Routes)
	})

	submit := func(htmx bool) *httptest.ResponseRecorder {
		form := url.Values{"question": {"Team lunch"}, "options": {"Pizza", ""}, "deadline": {"2024-06-30"}}
		req := httptest.NewRequest(http.MethodPost, "/engagement/polls", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if htmx {
			req.Header.Set("HX-Request", "true")
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("gives htmx the poll form back with the draft and the error", func() {
		rec := submit(true)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("HX-Redirect")).To(BeEmpty())
		body := rec.Body.String()
		Expect(body).To(ContainSubstring(`id="poll-form"`))
		Expect(body).To(ContainSubstring(`value="Team lunch"`))
		Expect(body).To(ContainSubstring(`value="Pizza"`))
		Expect(body).To(ContainSubstring(`value="2024-06-30"`))
		Expect(body).To(ContainSubstring("notice-error"))
		Expect(body).NotTo(ContainSubstring("<html"))
		Expect(api.Mutations()).To(BeEmpty())
	})

	It("re-renders the page with the draft for a plain submit", func() {
		rec := submit(false)
		Expect(rec.Code).To(Equal(http.StatusUnprocessableEntity))
		Expect(rec.Header().Get("Location")).To(BeEmpty())
		body := rec.Body.String()
		Expect(body).To(ContainSubstring(`value="Team lunch"`))
		Expect(body).To(ContainSubstring(`value="Pizza"`))
		Expect(body).To(ContainSubstring("<details open>"))
		Expect(api.Mutations()).To(BeEmpty())
	})
})
