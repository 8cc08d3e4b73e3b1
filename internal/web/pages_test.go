package web_test

import (
	"bytes"
	"time"

	"github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/internal/core/datamodel"
	"github.com/frahmantamala/hrms-portal/internal/core/datamodel/employee"
	model "github.com/frahmantamala/hrms-portal/internal/core/datamodel/engagement"
	"github.com/frahmantamala/hrms-portal/internal/dashboard"
	directory "github.com/frahmantamala/hrms-portal/internal/employee"
	"github.com/frahmantamala/hrms-portal/internal/engagement"
	"github.com/frahmantamala/hrms-portal/internal/grievance"
	"github.com/frahmantamala/hrms-portal/internal/hrprofile"
	"github.com/frahmantamala/hrms-portal/internal/leave"
	"github.com/frahmantamala/hrms-portal/internal/offer"
	"github.com/frahmantamala/hrms-portal/internal/web"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var (
	pageUser = &internal.User{ID: "u1", Name: "Rina", Role: internal.RoleManager}
	pageNow  = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
)

func dashboardView() *dashboard.PageView {
	return &dashboard.PageView{
		Variant: dashboard.VariantManager,
		Stats: dashboard.NewStatsView(dashboard.Stats{
			PendingLeaves: 2,
			Attendance:    dashboard.Attendance{Present: 3, Absent: 1},
			LeaveUsage:    []dashboard.LeaveUsage{{Type: leave.TypePaid, Used: 4, Total: 12}},
			Departments:   []dashboard.DepartmentCount{{Department: "Finance", Count: 4}},
			RecentActivities: []dashboard.Activity{
				{Message: "Ayu applied for leave", Timestamp: datamodel.Time{Time: pageNow}},
			},
		}),
		Profile:          &hrprofile.Profile{Name: "Rina", Status: "approved", ProfileCompletion: 80},
		Announcements:    []model.Announcement{{Title: "Town hall", IsPinned: true}},
		PendingApprovals: []employee.HRProfile{{ID: "h1", Status: "pending", PersonalInfo: employee.PersonalInfo{FullName: "Sari"}}},
	}
}

func leavesView() *leave.PageView {
	return &leave.PageView{
		Mode:  "team",
		Modes: leave.Modes(pageUser, nil),
		Leaves: []leave.Row{{
			Leave:  leave.Leave{ID: "l1", LeaveType: leave.TypeSick, Status: leave.StatusPending, TotalDays: 2, Reason: "flu"},
			CanAct: true,
		}},
		Summary:     map[string]int{leave.StatusPending: 1},
		Balance:     leave.Balance{leave.TypePaid: 3},
		DefaultType: leave.TypePaid,
		Statuses:    leave.Statuses,
		Types:       leave.Types,
	}
}

func grievancesView() *grievance.PageView {
	list := []grievance.Grievance{
		{ID: "g1", Title: "Noise", Status: grievance.StatusResolved, Resolution: &grievance.Resolution{Details: "moved desks"}},
		{ID: "g2", Title: "Parking", Status: grievance.StatusOpen},
	}
	return &grievance.PageView{
		Status: "all",
		Counts: grievance.Count(list),
		Grievances: []grievance.Row{
			{Grievance: list[0], Color: "green", ResolverLabel: "Manager"},
			{Grievance: list[1], Color: "blue", CanResolve: true},
		},
		CanSubmit:  true,
		Statuses:   grievance.Statuses,
		Types:      grievance.Types,
		Categories: grievance.Categories,
		Priorities: grievance.Priorities,
	}
}

func employeesView(tab string) *directory.PageView {
	return &directory.PageView{
		Filter: directory.Filter{Tab: tab, Search: "ay"},
		Employees: []directory.Row{{
			Employee:   employee.Employee{ID: "e1", ProfileStatus: "pending"},
			Name:       "Ayu",
			CanApprove: true,
		}},
		HRProfiles:    []directory.ProfileRow{{HRProfile: employee.HRProfile{ID: "h1", Status: "pending"}, CanDecide: true}},
		Total:         1,
		ShowHRTab:     true,
		Departments:   employee.Departments,
		Statuses:      employee.EmploymentStatuses,
		ProfileStatus: directory.HRProfileStatuses,
	}
}

func engagementView() *engagement.PageView {
	poll := model.Poll{ID: "p1", Question: "Lunch?", Options: []model.PollOption{
		{Text: "Pizza", Votes: []string{"u1", "u2", "u3"}},
		{Text: "Salad", Votes: []string{"u4"}},
	}}
	open := model.Poll{ID: "p2", Question: "Music?", Options: []model.PollOption{{Text: "On"}, {Text: "Off"}}}
	return &engagement.PageView{
		Announcements: []model.Announcement{{Title: "Welcome", Visibility: model.VisibilityDepartment, Department: "Finance"}},
		Polls:         []engagement.PollView{engagement.NewPollView(poll, "u1", pageNow), engagement.NewPollView(open, "u1", pageNow)},
		CanManage:     true,
		Draft:         engagement.NewPollDraft(),
		Visibilities:  engagement.Visibilities,
		Departments:   employee.Departments,
	}
}

func offerView(status string) *offer.PageView {
	app := offer.Application{
		ID:        "app1",
		Candidate: offer.Candidate{Name: "Budi", Email: "budi@example.com"},
		Job:       offer.Job{Title: "Engineer"},
		Offer:     offer.Offer{Status: status, Salary: 1000, Currency: "USD"},
	}
	return &offer.PageView{
		ApplicationID: "app1",
		Action:        offer.ActionReject,
		Email:         "budi@example.com",
		Application:   &app,
		State:         offer.Evaluate(app, "budi@example.com", pageNow),
	}
}

var _ = Describe("Pages", func() {
	var renderer *web.Renderer

	BeforeEach(func() {
		var err error
		renderer, err = web.NewRenderer(web.Options{})
		Expect(err).NotTo(HaveOccurred())
	})

	DescribeTable("render with their view models",
		func(name string, view interface{}, want []string) {
			var buf bytes.Buffer
			err := renderer.Render(&buf, name, web.Page{Title: name, Active: name, User: pageUser, View: view})
			Expect(err).NotTo(HaveOccurred())
			for _, w := range want {
				Expect(buf.String()).To(ContainSubstring(w))
			}
		},
		Entry("dashboard", "dashboard", dashboardView(),
			[]string{"75.0%", "33.3%", "/dashboard/hr-approvals/h1", "Town hall", "80.0% complete"}),
		Entry("leaves", "leaves", leavesView(),
			[]string{"Team Approvals", "/leaves/l1/approve", `name="view" value="team"`, "Sick Leave"}),
		Entry("grievances", "grievances", grievancesView(),
			[]string{"All (2)", "Resolved by Manager", "/grievances/g2/resolve", "badge-blue"}),
		Entry("employees directory", "employees", employeesView(directory.TabEmployees),
			[]string{"delay:500ms", "/employees/e1/approve-profile", `id="employee-table"`}),
		Entry("employees hr tab", "employees", employeesView(directory.TabHRProfiles),
			[]string{"/employees/hr-profiles/h1"}),
		Entry("engagement", "engagement", engagementView(),
			[]string{"75.0%", "/engagement/polls/p2/vote", `id="poll-form"`, "Finance"}),
		Entry("open offer", "offer", offerView("Sent"),
			[]string{"Decline offer", "/offer/app1/reject"}),
		Entry("answered offer", "offer", offerView("Accepted"),
			[]string{"already been accepted"}),
	)

	It("hides vote buttons once the user voted", func() {
		var buf bytes.Buffer
		view := engagementView()
		Expect(renderer.Render(&buf, "engagement", web.Page{User: pageUser, View: view})).To(Succeed())
		Expect(buf.String()).NotTo(ContainSubstring("/engagement/polls/p1/vote"))
	})
})
