package validation_test

import (
	"testing"

	errors "github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/internal/core/common/validation"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestValidation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Validation Suite")
}

var _ = Describe("ValidationBuilder", func() {
	It("passes when every field is valid", func() {
		v := validation.NewValidator()
		v.Field("title", "Quarterly townhall").Required().MaxLength(200)
		v.Field("visibility", "All").OneOf("All", "Department")
		Expect(v.Validate()).To(BeNil())
	})

	It("treats whitespace as missing", func() {
		v := validation.NewValidator()
		v.Field("resolution", "   ").Required()
		err := v.Validate()
		Expect(err).NotTo(BeNil())
		Expect(err.GetDetailedMessage()).To(Equal("resolution is required"))
	})

	It("reports one error per field", func() {
		v := validation.NewValidator()
		v.Field("title", "").Required().MaxLength(3)
		v.Field("days", 0).MinInt(1, errors.ErrCodeInvalidDateRange)
		err := v.Validate()
		Expect(err).NotTo(BeNil())
		details := err.Details.(errors.ValidationErrors)
		Expect(details.Errors).To(HaveLen(2))
		Expect(details.Errors[1].Code).To(Equal(string(errors.ErrCodeInvalidDateRange)))
	})

	It("rejects values outside the allowed set", func() {
		v := validation.NewValidator()
		v.Field("priority", "Whenever").OneOf("Low", "Medium", "High")
		err := v.Validate()
		Expect(err).NotTo(BeNil())
		Expect(err.GetDetailedMessage()).To(ContainSubstring("priority must be one of"))
	})

	It("parses form dates", func() {
		d, err := validation.ParseDate("2024-03-05")
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Day()).To(Equal(5))

		zero, err := validation.ParseDate("")
		Expect(err).NotTo(HaveOccurred())
		Expect(zero.IsZero()).To(BeTrue())

		_, err = validation.ParseDate("05/03/2024")
		Expect(err).To(HaveOccurred())
	})
})
