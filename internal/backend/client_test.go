package backend_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/frahmantamala/catalog-connector/internal"
	"github.com/frahmantamala/catalog-connector/internal/backend"
	"github.com/frahmantamala/catalog-connector/internal/backend/backendtest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const publishableKey = "sb_publishable_test_key"

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var _ = Describe("Client", func() {
	var server *backendtest.Server

	BeforeEach(func() {
		server = backendtest.NewServer(map[string]string{"settings": "key"})
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("NewClient", func() {
		It("builds a handle from a url and publishable key", func() {
			client, err := backend.NewClient(internal.BackendConfig{
				URL:            server.URL + "/",
				PublishableKey: publishableKey,
			}, quietLogger)

			Expect(err).NotTo(HaveOccurred())
			Expect(client).NotTo(BeNil())
			Expect(client.URL()).To(Equal(server.URL))
			Expect(client.Schema()).To(Equal("public"))
			Expect(client.KeyKind()).To(Equal(backend.KeyKindPublishable))
			Expect(client.Raw()).NotTo(BeNil())
		})

		It("issues no requests while constructing", func() {
			_, err := backend.NewClient(internal.BackendConfig{URL: server.URL, PublishableKey: publishableKey}, quietLogger)
			Expect(err).NotTo(HaveOccurred())
			Expect(server.Requests()).To(BeEmpty())
		})

		DescribeTable("rejects bad configuration without returning a handle",
			func(cfg internal.BackendConfig, expected *internal.AppError) {
				client, err := backend.NewClient(cfg, quietLogger)
				Expect(client).To(BeNil())
				Expect(internal.IsConfigurationError(err)).To(BeTrue())
				Expect(errors.Is(err, expected)).To(BeTrue(), "got %v", err)
			},
			Entry("missing url", internal.BackendConfig{PublishableKey: publishableKey}, internal.ErrMissingEndpointURL),
			Entry("missing key", internal.BackendConfig{URL: "https://example.supabase.co"}, internal.ErrMissingPublicAPIKey),
			Entry("malformed url", internal.BackendConfig{URL: "not a url", PublishableKey: publishableKey}, internal.ErrInvalidEndpointURL),
			Entry("secret key", internal.BackendConfig{URL: "https://example.supabase.co", PublishableKey: "sb_secret_abc"}, internal.ErrSecretKeyExposed),
		)

		It("rejects a legacy service role key", func() {
			_, err := backend.NewClient(internal.BackendConfig{
				URL:            "https://example.supabase.co",
				PublishableKey: legacyKey("service_role"),
			}, quietLogger)
			Expect(errors.Is(err, internal.ErrSecretKeyExposed)).To(BeTrue())
		})
	})

	Describe("Probe", func() {
		It("attaches the publishable key to the request", func() {
			client, err := backend.NewClient(internal.BackendConfig{URL: server.URL, PublishableKey: publishableKey}, quietLogger)
			Expect(err).NotTo(HaveOccurred())

			Expect(client.Probe(context.Background(), "settings")).To(Succeed())

			requests := server.Requests()
			Expect(requests).To(HaveLen(1))
			Expect(requests[0].Table).To(Equal("settings"))
			Expect(requests[0].APIKey).To(Equal(publishableKey))
			Expect(requests[0].Authorization).To(Equal("Bearer " + publishableKey))
			Expect(requests[0].Query).To(ContainSubstring("limit=1"))
		})

		It("reports backend failures", func() {
			server.RespondWith("settings", http.StatusUnauthorized, `{"code":"PGRST301","message":"invalid api key"}`)

			client, err := backend.NewClient(internal.BackendConfig{URL: server.URL, PublishableKey: publishableKey}, quietLogger)
			Expect(err).NotTo(HaveOccurred())

			Expect(client.Probe(context.Background(), "settings")).NotTo(Succeed())
		})

		It("stops waiting when the context is done", func() {
			client, err := backend.NewClient(internal.BackendConfig{URL: server.URL, PublishableKey: publishableKey}, quietLogger)
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			err = client.Probe(ctx, "settings")
			if err != nil {
				Expect(errors.Is(err, context.Canceled)).To(BeTrue())
			}
		})
	})
})

var _ = Describe("Provider", func() {
	It("constructs the client exactly once across goroutines", func() {
		var builds int32
		provider := backend.NewProviderWith(func() (*backend.Client, error) {
			atomic.AddInt32(&builds, 1)
			return backend.NewClient(internal.BackendConfig{
				URL:            "https://example.supabase.co",
				PublishableKey: publishableKey,
			}, quietLogger)
		})

		const callers = 16
		clients := make([]*backend.Client, callers)

		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer GinkgoRecover()
				defer wg.Done()
				c, err := provider.Client()
				Expect(err).NotTo(HaveOccurred())
				clients[i] = c
			}(i)
		}
		wg.Wait()

		Expect(atomic.LoadInt32(&builds)).To(Equal(int32(1)))
		for _, c := range clients {
			Expect(c).To(BeIdenticalTo(clients[0]))
		}
	})

	It("returns the same configuration error on every call", func() {
		provider := backend.NewProvider(internal.BackendConfig{}, quietLogger)

		first, err1 := provider.Client()
		second, err2 := provider.Client()

		Expect(first).To(BeNil())
		Expect(second).To(BeNil())
		Expect(internal.IsConfigurationError(err1)).To(BeTrue())
		Expect(err2).To(BeIdenticalTo(err1))
	})
})
