package covers

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/testsupport"
	"github.com/mmcdole/shelf/internal/worker"
)

type pipelineHarness struct {
	pipeline *Pipeline
	pool     *worker.Pool
	inbox    *worker.Inbox
	store    *Store
	server   *testsupport.CoverServer
}

func newPipelineHarness(t *testing.T, capacity int, fetcher func(*Store) Fetcher) *pipelineHarness {
	t.Helper()
	cs := testsupport.NewCoverServer(t)
	store := NewStore(filepath.Join(t.TempDir(), "covers"), WithBaseURL(cs.URL))
	inbox := worker.NewInbox(16)
	pool := worker.NewPool(context.Background(), 2, inbox, nil)
	t.Cleanup(func() {
		pool.Shutdown(time.Second)
		inbox.Close()
	})

	var f Fetcher = store
	if fetcher != nil {
		f = fetcher(store)
	}
	p := NewPipeline(f, pool, PipelineOptions{Variant: domain.SizeMedium, ThumbnailCapacity: capacity}, nil)
	return &pipelineHarness{pipeline: p, pool: pool, inbox: inbox, store: store, server: cs}
}

// complete waits for the next delivery and feeds it to the pipeline, the way
// the owning loop does.
func (h *pipelineHarness) complete(t *testing.T) Update {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	msg, ok := h.inbox.Next(ctx)
	if !ok {
		t.Fatal("timed out waiting for a cover completion")
	}
	done, ok := msg.(FetchDone)
	if !ok {
		t.Fatalf("unexpected message %T", msg)
	}
	u, ok := h.pipeline.Complete(done)
	if !ok {
		t.Fatalf("pipeline did not recognise task %d", done.Task.ID)
	}
	return u
}

type gatedFetcher struct {
	inner   Fetcher
	release chan struct{}
	calls   atomic.Int64
}

func (g *gatedFetcher) Fetch(ctx context.Context, id domain.CoverID, v domain.SizeVariant) FetchOutcome {
	g.calls.Add(1)
	<-g.release
	return g.inner.Fetch(ctx, id, v)
}

func (g *gatedFetcher) Path(id domain.CoverID, v domain.SizeVariant) string { return g.inner.Path(id, v) }

func (g *gatedFetcher) Evict(id domain.CoverID, v domain.SizeVariant) error { return g.inner.Evict(id, v) }

type panickingFetcher struct{ Fetcher }

func (panickingFetcher) Fetch(context.Context, domain.CoverID, domain.SizeVariant) FetchOutcome {
	panic("decoder exploded")
}

func TestPipelineNoCover(t *testing.T) {
	h := newPipelineHarness(t, 4, nil)
	if st := h.pipeline.Decorate(0); st.Kind != StateNone {
		t.Errorf("Decorate(0) = %v, want none", st.Kind)
	}
	if h.pool.Submitted() != 0 {
		t.Error("no fetch should be submitted for a missing cover id")
	}
}

func TestPipelineDecorateFetchesThenReady(t *testing.T) {
	h := newPipelineHarness(t, 4, nil)
	h.server.Serve(10, testsupport.JPEG(t, 60, 90))

	if st := h.pipeline.Decorate(10); st.Kind != StateLoading {
		t.Fatalf("first Decorate = %v, want loading", st.Kind)
	}
	if !h.pipeline.IsInFlight(10) {
		t.Fatal("10 should be in flight")
	}

	u := h.complete(t)
	if u.Cover != 10 || u.State.Kind != StateReady || u.State.Image == nil {
		t.Fatalf("update = %+v, want ready for 10", u)
	}
	if u.Path != h.store.Path(10, domain.SizeMedium) {
		t.Errorf("path = %q", u.Path)
	}
	if h.pipeline.IsInFlight(10) {
		t.Error("10 still in flight after completion")
	}

	st := h.pipeline.Decorate(10)
	if st.Kind != StateReady || st.Image != u.State.Image {
		t.Errorf("Decorate after completion = %+v", st)
	}
	if h.pool.Submitted() != 1 {
		t.Errorf("Submitted = %d, want 1", h.pool.Submitted())
	}
}

func TestPipelineDedupesInFlight(t *testing.T) {
	var gate *gatedFetcher
	h := newPipelineHarness(t, 4, func(s *Store) Fetcher {
		gate = &gatedFetcher{inner: s, release: make(chan struct{})}
		return gate
	})
	h.server.Serve(21, testsupport.JPEG(t, 8, 8))

	if !h.pipeline.Request(21) {
		t.Fatal("first request should submit")
	}
	for i := 0; i < 5; i++ {
		if h.pipeline.Request(21) {
			t.Fatal("duplicate request submitted while in flight")
		}
		if st := h.pipeline.Decorate(21); st.Kind != StateLoading {
			t.Fatalf("Decorate while in flight = %v", st.Kind)
		}
	}
	close(gate.release)

	if u := h.complete(t); u.State.Kind != StateReady {
		t.Fatalf("update = %+v", u)
	}
	if n := gate.calls.Load(); n != 1 {
		t.Errorf("fetcher called %d times, want 1", n)
	}
	if h.server.Hits(21) != 1 {
		t.Errorf("server hits = %d, want 1", h.server.Hits(21))
	}
}

func TestPipelineFailedSetSuppressesRefetch(t *testing.T) {
	h := newPipelineHarness(t, 4, nil)
	h.server.Status(30, http.StatusInternalServerError)

	h.pipeline.Request(30)
	u := h.complete(t)
	if u.State.Kind != StateMissing {
		t.Fatalf("update = %+v, want missing", u)
	}
	if !h.pipeline.IsFailed(30) || h.pipeline.IsInFlight(30) {
		t.Fatal("30 should be failed and not in flight")
	}

	submitted := h.pool.Submitted()
	for i := 0; i < 3; i++ {
		if st := h.pipeline.Decorate(30); st.Kind != StateMissing {
			t.Fatalf("Decorate = %v, want missing", st.Kind)
		}
		h.pipeline.Select(1, 30)
	}
	if h.pool.Submitted() != submitted {
		t.Errorf("failed cover was resubmitted: %d -> %d", submitted, h.pool.Submitted())
	}
}

func TestPipelineMissingStaysMissingAfterUpstreamRecovers(t *testing.T) {
	h := newPipelineHarness(t, 4, nil)

	h.pipeline.Request(40)
	if u := h.complete(t); u.State.Kind != StateMissing {
		t.Fatalf("update = %+v, want missing", u)
	}

	h.server.Serve(40, testsupport.JPEG(t, 8, 8))

	if st := h.pipeline.Decorate(40); st.Kind != StateMissing {
		t.Errorf("pipeline state = %v, want missing for the session", st.Kind)
	}
	if out := h.store.Fetch(context.Background(), 40, domain.SizeMedium); out.Kind != OutcomeFound {
		t.Errorf("direct store fetch = %+v, want found", out)
	}
}

func TestPipelineRetryClearsFailure(t *testing.T) {
	h := newPipelineHarness(t, 4, nil)
	h.server.Status(50, http.StatusBadGateway)

	h.pipeline.Request(50)
	h.complete(t)
	if !h.pipeline.IsFailed(50) {
		t.Fatal("50 should be failed")
	}

	h.server.Serve(50, testsupport.JPEG(t, 8, 8))
	if !h.pipeline.Retry(50) {
		t.Fatal("Retry should submit a new fetch")
	}
	if u := h.complete(t); u.State.Kind != StateReady {
		t.Fatalf("after retry: %+v", u)
	}
}

func TestPipelineDetailIgnoresStaleCompletion(t *testing.T) {
	var gate *gatedFetcher
	h := newPipelineHarness(t, 4, func(s *Store) Fetcher {
		gate = &gatedFetcher{inner: s, release: make(chan struct{})}
		return gate
	})
	h.server.Serve(10, testsupport.JPEG(t, 8, 8))
	h.server.Serve(20, testsupport.JPEG(t, 8, 8))

	a := h.pipeline.Select(1, 10)
	if a.State.Kind != StateLoading {
		t.Fatalf("select A = %+v", a)
	}
	b := h.pipeline.Select(2, 20)
	if b.Token != (SelectionToken{Item: 2, Cover: 20}) {
		t.Fatalf("token = %+v", b.Token)
	}
	close(gate.release)

	seen := map[domain.CoverID]Update{}
	for i := 0; i < 2; i++ {
		u := h.complete(t)
		seen[u.Cover] = u
	}
	if seen[10].Detail {
		t.Error("completion for the previous selection was applied to the detail surface")
	}
	if seen[10].State.Kind != StateReady {
		t.Error("stale completion should still populate the thumbnail cache")
	}
	if !seen[20].Detail {
		t.Error("completion for the current selection should apply to the detail surface")
	}
	if h.pipeline.Token().Cover != 20 {
		t.Errorf("token changed by completion: %+v", h.pipeline.Token())
	}
}

func TestPipelineSelectCachedIsImmediate(t *testing.T) {
	h := newPipelineHarness(t, 4, nil)
	h.server.Serve(12, testsupport.JPEG(t, 8, 8))
	h.pipeline.Request(12)
	h.complete(t)

	d := h.pipeline.Select(3, 12)
	if d.State.Kind != StateReady || d.Path == "" {
		t.Fatalf("Select on cached cover = %+v", d)
	}
	if h.pool.Submitted() != 1 {
		t.Errorf("Submitted = %d, want 1", h.pool.Submitted())
	}
}

func TestPipelineLRUBound(t *testing.T) {
	const capacity = 3
	h := newPipelineHarness(t, capacity, nil)
	for id := int64(1); id <= capacity+1; id++ {
		h.server.Serve(id, testsupport.JPEG(t, 8, 8))
	}

	for id := domain.CoverID(1); id <= capacity+1; id++ {
		h.pipeline.Request(id)
		h.complete(t)
		if id == capacity {
			// Promote the first cover so the second is evicted next.
			if st := h.pipeline.Decorate(1); st.Kind != StateReady {
				t.Fatalf("Decorate(1) = %v", st.Kind)
			}
		}
	}

	st := h.pipeline.Stats()
	if st.Thumbnails != capacity {
		t.Fatalf("thumbnails = %d, want %d", st.Thumbnails, capacity)
	}
	if st := h.pipeline.Peek(2); st.Kind != StateLoading {
		t.Errorf("evicted cover should read as loading, got %v", st.Kind)
	}
	if h.pipeline.IsFailed(2) {
		t.Error("eviction must not mark a cover failed")
	}
	for _, id := range []domain.CoverID{1, 3, 4} {
		if st := h.pipeline.Peek(id); st.Kind != StateReady {
			t.Errorf("Peek(%d) = %v, want ready", id, st.Kind)
		}
	}
}

func TestPipelinePanicBecomesMissing(t *testing.T) {
	h := newPipelineHarness(t, 4, func(s *Store) Fetcher { return panickingFetcher{s} })

	h.pipeline.Request(77)
	u := h.complete(t)
	if u.Cover != 77 || u.State.Kind != StateMissing {
		t.Fatalf("update = %+v", u)
	}
	if h.pipeline.IsInFlight(77) {
		t.Error("panicked fetch left 77 in flight")
	}
}

func TestPipelineUndecodableFileIsMissing(t *testing.T) {
	h := newPipelineHarness(t, 4, nil)
	h.server.Serve(88, []byte("definitely not a jpeg"))

	h.pipeline.Request(88)
	if u := h.complete(t); u.State.Kind != StateMissing {
		t.Fatalf("update = %+v, want missing", u)
	}
}

func TestPipelineRetryRefetchesUndecodableFile(t *testing.T) {
	h := newPipelineHarness(t, 4, nil)
	h.server.Serve(77, []byte("<html>rate limited</html>"))

	h.pipeline.Request(77)
	if u := h.complete(t); u.State.Kind != StateMissing {
		t.Fatalf("update = %+v, want missing", u)
	}
	if _, err := os.Stat(h.store.Path(77, domain.SizeMedium)); !os.IsNotExist(err) {
		t.Fatalf("undecodable file left in the cache: %v", err)
	}

	h.server.Serve(77, testsupport.JPEG(t, 60, 90))
	if !h.pipeline.Retry(77) {
		t.Fatal("Retry should submit a new fetch")
	}
	if u := h.complete(t); u.State.Kind != StateReady {
		t.Fatalf("after retry: %+v", u)
	}
	if hits := h.server.Hits(77); hits != 2 {
		t.Errorf("network hits = %d, want 2", hits)
	}
}

func TestPipelineIgnoresUnknownTask(t *testing.T) {
	h := newPipelineHarness(t, 4, nil)
	done := FetchDone{Task: worker.Handle{ID: 999}, Err: errors.New("x")}
	if _, ok := h.pipeline.Complete(done); ok {
		t.Error("unknown task should be ignored")
	}
	if st := h.pipeline.Stats(); st.Failed != 0 {
		t.Errorf("stats changed: %+v", st)
	}
}

func TestPipelineClosedPoolMarksMissing(t *testing.T) {
	h := newPipelineHarness(t, 4, nil)
	h.pool.Shutdown(time.Second)

	if h.pipeline.Request(5) {
		t.Fatal("request on a closed pool should not submit")
	}
	if st := h.pipeline.Decorate(5); st.Kind != StateMissing {
		t.Errorf("Decorate = %v, want missing", st.Kind)
	}
}
