package remote_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cutlineco/cutline/pkg/remote"
)

var _ = Describe("Client", func() {
	payload := remote.Payload{
		Version:     "1.2.0",
		ReleaseType: "minor",
		Repository: remote.Repository{
			URL:        "https://github.com/cutlineco/cutline",
			Name:       "cutline",
			Owner:      "cutlineco",
			Branch:     "main",
			CommitHash: "abc1234",
		},
		Changes: "### Features\n- add archive sweep",
		Context: remote.RequestContext{
			Timestamp:  "2026-08-30T12:00:00Z",
			CLIVersion: "0.3.0",
		},
	}

	newClient := func(url string) *remote.Client {
		return remote.NewClient(remote.ClientConfig{Endpoint: url, Token: "sekret"})
	}

	Describe("Configured", func() {
		It("requires both endpoint and token", func() {
			Expect(remote.NewClient(remote.ClientConfig{}).Configured()).To(BeFalse())
			Expect(remote.NewClient(remote.ClientConfig{Endpoint: "https://x"}).Configured()).To(BeFalse())
			Expect(remote.NewClient(remote.ClientConfig{Token: "t"}).Configured()).To(BeFalse())
			Expect(remote.NewClient(remote.ClientConfig{Endpoint: "https://x", Token: "t"}).Configured()).To(BeTrue())
		})
	})

	Describe("Generate", func() {
		It("posts the payload and returns the documentation", func() {
			var got map[string]any
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodPost))
				Expect(r.Header.Get("Content-Type")).To(Equal("application/json"))
				Expect(r.Header.Get("Authorization")).To(Equal("Bearer sekret"))
				Expect(json.NewDecoder(r.Body).Decode(&got)).To(Succeed())

				_ = json.NewEncoder(w).Encode(map[string]string{"documentation": "# Generated notes"})
			}))
			defer srv.Close()

			out, err := newClient(srv.URL).Generate(context.Background(), payload)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("# Generated notes"))

			Expect(got).To(HaveKeyWithValue("version", "1.2.0"))
			Expect(got).To(HaveKeyWithValue("release_type", "minor"))
			Expect(got).To(HaveKey("repository"))
			repo := got["repository"].(map[string]any)
			Expect(repo).To(HaveKeyWithValue("owner", "cutlineco"))
			Expect(repo).To(HaveKeyWithValue("commit_hash", "abc1234"))
			reqCtx := got["context"].(map[string]any)
			Expect(reqCtx).To(HaveKeyWithValue("cli_version", "0.3.0"))
		})

		It("returns a plain error on a non-2xx status", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "upstream overloaded", http.StatusBadGateway)
			}))
			defer srv.Close()

			_, err := newClient(srv.URL).Generate(context.Background(), payload)
			Expect(err).To(HaveOccurred())

			var vErr *remote.ValidationError
			Expect(errors.As(err, &vErr)).To(BeFalse())
			Expect(err.Error()).To(ContainSubstring("502"))
		})

		It("treats an error-bearing response as a validation error", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "quota exceeded"})
			}))
			defer srv.Close()

			_, err := newClient(srv.URL).Generate(context.Background(), payload)

			var vErr *remote.ValidationError
			Expect(errors.As(err, &vErr)).To(BeTrue())
			Expect(vErr.Reason).To(Equal("quota exceeded"))
		})

		It("treats a malformed body as a validation error", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json"))
			}))
			defer srv.Close()

			_, err := newClient(srv.URL).Generate(context.Background(), payload)

			var vErr *remote.ValidationError
			Expect(errors.As(err, &vErr)).To(BeTrue())
		})

		It("treats a missing documentation field as a validation error", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]string{})
			}))
			defer srv.Close()

			_, err := newClient(srv.URL).Generate(context.Background(), payload)

			var vErr *remote.ValidationError
			Expect(errors.As(err, &vErr)).To(BeTrue())
			Expect(vErr.Reason).To(ContainSubstring("missing documentation"))
		})

		It("honors context cancellation", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				<-r.Context().Done()
			}))
			defer srv.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := newClient(srv.URL).Generate(ctx, payload)
			Expect(err).To(HaveOccurred())
		})
	})
})
