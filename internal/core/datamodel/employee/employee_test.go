package employee_test

import (
	"encoding/json"
	"testing"

	"github.com/frahmantamala/hrms-portal/internal/core/datamodel/employee"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestEmployeeModel(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Employee Datamodel Suite")
}

var _ = Describe("Ref", func() {
	It("decodes a bare id", func() {
		var r employee.Ref
		Expect(json.Unmarshal([]byte(`"65f0"`), &r)).To(Succeed())
		Expect(r.ID).To(Equal("65f0"))
		Expect(r.Display()).To(Equal("65f0"))
	})

	It("decodes a populated employee", func() {
		var r employee.Ref
		raw := `{"_id":"65f0","employeeId":"EMP-7","personalInfo":{"fullName":"Rina Putri"}}`
		Expect(json.Unmarshal([]byte(raw), &r)).To(Succeed())
		Expect(r).To(Equal(employee.Ref{ID: "65f0", EmployeeID: "EMP-7", Name: "Rina Putri"}))
	})

	It("decodes a populated user", func() {
		var r employee.Ref
		Expect(json.Unmarshal([]byte(`{"id":"u1","name":"Budi","role":"manager"}`), &r)).To(Succeed())
		Expect(r.Display()).To(Equal("Budi"))
		Expect(r.Role).To(Equal("manager"))
	})

	It("treats null as empty", func() {
		r := employee.Ref{ID: "x"}
		Expect(json.Unmarshal([]byte(`null`), &r)).To(Succeed())
		Expect(r).To(BeZero())
	})
})

var _ = Describe("HRProfile", func() {
	It("treats submitted and pending profiles as awaiting review", func() {
		Expect(employee.HRProfile{Status: "pending"}.IsPending()).To(BeTrue())
		Expect(employee.HRProfile{Status: "submitted"}.IsPending()).To(BeTrue())
		Expect(employee.HRProfile{Status: "approved"}.IsPending()).To(BeFalse())
	})

	It("falls back to the employee id for display", func() {
		Expect(employee.Employee{EmployeeID: "EMP-1"}.DisplayName()).To(Equal("EMP-1"))
	})
})
