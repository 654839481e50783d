package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/catalog-connector/internal/transport/middleware"
	"github.com/frahmantamala/catalog-connector/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

var _ = Describe("AdminAuth", func() {
	var handler http.Handler

	BeforeEach(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		handler = middleware.AdminAuth("admin", string(hash), quiet)(okHandler)
	})

	DescribeTable("credentials",
		func(setAuth func(r *http.Request), expected int) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/categories", nil)
			setAuth(req)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(expected))
		},
		Entry("valid", func(r *http.Request) { r.SetBasicAuth("admin", "letmein") }, http.StatusOK),
		Entry("wrong password", func(r *http.Request) { r.SetBasicAuth("admin", "nope") }, http.StatusUnauthorized),
		Entry("wrong user", func(r *http.Request) { r.SetBasicAuth("root", "letmein") }, http.StatusUnauthorized),
		Entry("missing", func(r *http.Request) {}, http.StatusUnauthorized),
	)

	It("asks for basic credentials and explains the failure", func() {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/settings/x", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		Expect(w.Header().Get("WWW-Authenticate")).To(ContainSubstring("Basic"))
		Expect(w.Body.String()).To(ContainSubstring("INVALID_CREDENTIALS"))
	})
})

var _ = Describe("CORS", func() {
	It("echoes an allowed origin", func() {
		handler := middleware.CORS("https://app.example.com")(okHandler)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://app.example.com"))
	})

	It("ignores other origins", func() {
		handler := middleware.CORS("https://app.example.com")(okHandler)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
	})

	It("answers preflight requests", func() {
		handler := middleware.CORS("*")(okHandler)
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "https://any.example.com")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusNoContent))
	})
})

var _ = Describe("RequestID", func() {
	It("keeps an incoming trace id and attaches a logger", func() {
		var hasLogger bool
		handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, hasLogger = logger.FromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Trace-ID", "trace-123")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		Expect(w.Header().Get("X-Trace-ID")).To(Equal("trace-123"))
		Expect(hasLogger).To(BeTrue())
	})

	It("generates a trace id when none is sent", func() {
		handler := middleware.RequestID(okHandler)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(w.Header().Get("X-Trace-ID")).NotTo(BeEmpty())
	})
})

var _ = Describe("RecoveryMiddleware", func() {
	It("turns a panic into a 500 JSON error", func() {
		handler := middleware.RecoveryMiddleware(quiet)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("kaboom")
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).To(ContainSubstring("INTERNAL_ERROR"))
		Expect(w.Body.String()).NotTo(ContainSubstring("kaboom"))
	})
})
