package category_test

import (
	"encoding/json"
	"errors"

	"github.com/frahmantamala/catalog-connector/internal"
	"github.com/frahmantamala/catalog-connector/internal/category"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Decoding categories", func() {
	It("round-trips a category through JSON", func() {
		original := category.NewCategory("c1", "Toddlers", 1, 10)

		body, err := json.Marshal(original)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(MatchJSON(`{"id":"c1","name":"Toddlers","min_age":1,"sort_order":10}`))

		decoded, err := category.DecodeCategory(body)
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded).To(Equal(original))
	})

	It("decodes a collection in order", func() {
		categories, err := category.DecodeCategories([]byte(`[
			{"id":"c1","name":"Toddlers","min_age":1,"sort_order":10},
			{"id":"c2","name":"Teens","min_age":13,"sort_order":40}
		]`))
		Expect(err).NotTo(HaveOccurred())
		Expect(categories).To(HaveLen(2))
		Expect(categories[0].ID).To(Equal("c1"))
		Expect(categories[1].MinAge).To(Equal(13))
	})

	It("accepts an empty collection", func() {
		categories, err := category.DecodeCategories([]byte(`[]`))
		Expect(err).NotTo(HaveOccurred())
		Expect(categories).To(BeEmpty())
	})

	It("rejects a collection that repeats an id", func() {
		_, err := category.DecodeCategories([]byte(`[
			{"id":"c1","name":"Toddlers","min_age":1,"sort_order":10},
			{"id":"c1","name":"Other","min_age":2,"sort_order":20}
		]`))
		Expect(errors.Is(err, internal.ErrDuplicateCategoryID)).To(BeTrue())

		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeConflict))
	})

	It("rejects a payload that is not an array", func() {
		_, err := category.DecodeCategories([]byte(`{"id":"c1"}`))
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeMalformedPayload))
	})

	DescribeTable("rejects invalid records",
		func(record string) {
			_, err := category.DecodeCategories([]byte("[" + record + "]"))
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("index 0"))

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		},
		Entry("negative min_age", `{"id":"c1","name":"Toddlers","min_age":-1,"sort_order":10}`),
		Entry("fractional min_age", `{"id":"c1","name":"Toddlers","min_age":1.5,"sort_order":10}`),
		Entry("string min_age", `{"id":"c1","name":"Toddlers","min_age":"1","sort_order":10}`),
		Entry("missing sort_order", `{"id":"c1","name":"Toddlers","min_age":1}`),
		Entry("null name", `{"id":"c1","name":null,"min_age":1,"sort_order":10}`),
		Entry("empty id", `{"id":"","name":"Toddlers","min_age":1,"sort_order":10}`),
		Entry("numeric id", `{"id":1,"name":"Toddlers","min_age":1,"sort_order":10}`),
		Entry("not an object", `"c1"`),
	)
})
