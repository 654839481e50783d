package settings_test

import (
	"encoding/json"
	"errors"

	"github.com/frahmantamala/catalog-connector/internal"
	"github.com/frahmantamala/catalog-connector/internal/settings"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Decoding settings", func() {
	It("round-trips a setting through JSON", func() {
		original := &settings.Setting{Key: "site_title", Value: "My App"}

		body, err := json.Marshal(original)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(MatchJSON(`{"key":"site_title","value":"My App"}`))

		decoded, err := settings.DecodeSetting(body)
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded).To(Equal(original))
	})

	It("keeps an empty value", func() {
		list, err := settings.DecodeSettings([]byte(`[{"key":"banner","value":""}]`))
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(1))
		Expect(list[0].Value).To(BeEmpty())
	})

	It("rejects a collection that repeats a key", func() {
		_, err := settings.DecodeSettings([]byte(`[{"key":"a","value":"1"},{"key":"a","value":"2"}]`))
		Expect(errors.Is(err, internal.ErrDuplicateSettingKey)).To(BeTrue())
	})

	DescribeTable("rejects invalid records",
		func(body string) {
			_, err := settings.DecodeSettings([]byte(body))
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		},
		Entry("not an array", `{"key":"a","value":"1"}`),
		Entry("missing value", `[{"key":"a"}]`),
		Entry("null key", `[{"key":null,"value":"1"}]`),
		Entry("empty key", `[{"key":"","value":"1"}]`),
		Entry("numeric value", `[{"key":"a","value":1}]`),
	)
})
