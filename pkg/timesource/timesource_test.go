package timesource_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cutlineco/cutline/pkg/timesource"
)

// fakeSource returns a fixed time or error.
type fakeSource struct {
	name string
	at   time.Time
	err  error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Now(_ context.Context) (time.Time, error) {
	return f.at, f.err
}

var _ = Describe("Service", func() {
	var (
		base      time.Time
		localNow  time.Time
		clock     func() time.Time
	)

	BeforeEach(func() {
		base = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
		localNow = time.Date(2026, 8, 30, 13, 0, 0, 0, time.UTC)
		clock = func() time.Time { return localNow }
	})

	It("returns trusted when all sources agree", func() {
		svc := timesource.NewService(timesource.Config{
			Sources: []timesource.Source{
				&fakeSource{name: "a", at: base},
				&fakeSource{name: "b", at: base.Add(time.Second)},
				&fakeSource{name: "c", at: base.Add(2 * time.Second)},
			},
			Clock: clock,
		})

		ts := svc.Acquire(context.Background())
		Expect(ts.Provenance).To(Equal(timesource.ProvenanceTrusted))
		Expect(ts.Agreeing).To(Equal(3))
		Expect(ts.Responded).To(HaveLen(3))
		// Median of the agreeing cluster.
		Expect(ts.Time).To(Equal(base.Add(time.Second)))
	})

	It("returns trusted when two of three agree", func() {
		svc := timesource.NewService(timesource.Config{
			Sources: []timesource.Source{
				&fakeSource{name: "a", at: base},
				&fakeSource{name: "b", at: base.Add(time.Second)},
				&fakeSource{name: "skewed", at: base.Add(time.Hour)},
			},
			Clock: clock,
		})

		ts := svc.Acquire(context.Background())
		Expect(ts.Provenance).To(Equal(timesource.ProvenanceTrusted))
		Expect(ts.Agreeing).To(Equal(2))
	})

	It("returns best-effort when only one source responds", func() {
		svc := timesource.NewService(timesource.Config{
			Sources: []timesource.Source{
				&fakeSource{name: "a", at: base},
				&fakeSource{name: "b", err: errors.New("timeout")},
				&fakeSource{name: "c", err: errors.New("refused")},
			},
			Clock: clock,
		})

		ts := svc.Acquire(context.Background())
		Expect(ts.Provenance).To(Equal(timesource.ProvenanceBestEffort))
		Expect(ts.Time).To(Equal(base))
		Expect(ts.Responded).To(ConsistOf("a"))
	})

	It("falls back to the local clock when nothing responds", func() {
		svc := timesource.NewService(timesource.Config{
			Sources: []timesource.Source{
				&fakeSource{name: "a", err: errors.New("down")},
				&fakeSource{name: "b", err: errors.New("down")},
				&fakeSource{name: "c", err: errors.New("down")},
			},
			Clock: clock,
		})

		ts := svc.Acquire(context.Background())
		Expect(ts.Provenance).To(Equal(timesource.ProvenanceLocalFallback))
		Expect(ts.Time).To(Equal(localNow))
		Expect(ts.Responded).To(BeEmpty())
	})

	It("degrades to best-effort when responses disagree wildly", func() {
		svc := timesource.NewService(timesource.Config{
			Sources: []timesource.Source{
				&fakeSource{name: "a", at: base},
				&fakeSource{name: "b", at: base.Add(time.Hour)},
			},
			Tolerance: time.Second,
			Clock:     clock,
		})

		ts := svc.Acquire(context.Background())
		Expect(ts.Provenance).To(Equal(timesource.ProvenanceBestEffort))
		Expect(ts.Agreeing).To(Equal(1))
	})

	It("uses the local clock when no sources are configured", func() {
		svc := timesource.NewService(timesource.Config{Clock: clock})
		ts := svc.Acquire(context.Background())
		Expect(ts.Provenance).To(Equal(timesource.ProvenanceLocalFallback))
		Expect(ts.Time).To(Equal(localNow))
	})
})

var _ = Describe("HTTPSource", func() {
	It("parses a worldtimeapi-style response", func() {
		at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprintf(w, `{"utc_datetime": %q}`, at.Format(time.RFC3339))
		}))
		DeferCleanup(srv.Close)

		src := timesource.NewHTTPSource("test", srv.URL, srv.Client())
		got, err := src.Now(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Equal(at)).To(BeTrue())
	})

	It("parses a unixtime response", func() {
		at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprintf(w, `{"unixtime": %d}`, at.Unix())
		}))
		DeferCleanup(srv.Close)

		src := timesource.NewHTTPSource("test", srv.URL, srv.Client())
		got, err := src.Now(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Equal(at)).To(BeTrue())
	})

	It("fails on a non-200 status", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "nope", http.StatusServiceUnavailable)
		}))
		DeferCleanup(srv.Close)

		src := timesource.NewHTTPSource("test", srv.URL, srv.Client())
		_, err := src.Now(context.Background())
		Expect(err).To(HaveOccurred())
	})

	It("fails when no time field is present", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{}`)
		}))
		DeferCleanup(srv.Close)

		src := timesource.NewHTTPSource("test", srv.URL, srv.Client())
		_, err := src.Now(context.Background())
		Expect(err).To(MatchError(ContainSubstring("no recognizable time field")))
	})

	It("honors context cancellation", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		DeferCleanup(srv.Close)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		src := timesource.NewHTTPSource("test", srv.URL, srv.Client())
		_, err := src.Now(ctx)
		Expect(err).To(HaveOccurred())
	})
})
