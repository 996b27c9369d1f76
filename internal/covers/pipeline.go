package covers

import (
	"context"
	"image"
	"log/slog"

	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/worker"
)

// StateKind is what a surface should draw for a cover.
type StateKind int

const (
	StateNone    StateKind = iota // item has no cover id
	StateLoading                  // fetch pending
	StateReady                    // bitmap available
	StateMissing                  // fetch failed or cover absent; sticky for the session
)

func (k StateKind) String() string {
	switch k {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateMissing:
		return "missing"
	default:
		return "none"
	}
}

// CoverState pairs a StateKind with the thumbnail when Ready.
type CoverState struct {
	Kind  StateKind
	Image *image.RGBA
}

// SelectionToken records which item and cover the detail surface is showing.
type SelectionToken struct {
	Item  domain.ItemID
	Cover domain.CoverID
}

// DetailCover is what the detail surface should show right after a selection.
type DetailCover struct {
	Token SelectionToken
	State CoverState
	Path  string // local file when State is Ready
}

// Update describes a completed fetch after the pipeline has absorbed it.
type Update struct {
	Cover domain.CoverID
	State CoverState
	Path  string // local file when State is Ready

	// Detail is true when the current selection shows this cover.
	Detail bool
	Token  SelectionToken
}

// FetchDone is the completion message the pool delivers for a cover fetch.
type FetchDone = worker.Done[FetchResult]

// PipelineOptions tunes a Pipeline. Zero values pick the defaults.
type PipelineOptions struct {
	Variant           domain.SizeVariant
	ThumbnailCapacity int
	ThumbnailSize     image.Point
}

// Stats is a snapshot of pipeline bookkeeping.
type Stats struct {
	InFlight   int
	Failed     int
	Thumbnails int
	Capacity   int
}

// Pipeline coordinates cover fetches for the interactive loop. It owns the
// in-flight set, the failed set, the thumbnail cache and the selection token.
//
// Pipeline has a single writer: every method must be called from the
// goroutine that drains the pool's Deliverer (the Bubble Tea Update loop, or
// the loop of a CLI command). Background tasks only produce FetchResult
// values; all mutation happens in Complete when that value is handed back.
type Pipeline struct {
	fetcher   Fetcher
	pool      *worker.Pool
	variant   domain.SizeVariant
	thumbSize image.Point
	thumbs    *ThumbnailCache
	logger    *slog.Logger

	inFlight map[domain.CoverID]uint64 // cover -> task id
	tasks    map[uint64]domain.CoverID // task id -> cover
	failed   map[domain.CoverID]error
	token    SelectionToken
}

// NewPipeline wires a fetcher to a pool.
func NewPipeline(fetcher Fetcher, pool *worker.Pool, opts PipelineOptions, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if !opts.Variant.Valid() {
		opts.Variant = domain.SizeMedium
	}
	if opts.ThumbnailSize.X <= 0 || opts.ThumbnailSize.Y <= 0 {
		opts.ThumbnailSize = ThumbnailSize
	}
	return &Pipeline{
		fetcher:   fetcher,
		pool:      pool,
		variant:   opts.Variant,
		thumbSize: opts.ThumbnailSize,
		thumbs:    NewThumbnailCache(opts.ThumbnailCapacity),
		logger:    logger,
		inFlight:  make(map[domain.CoverID]uint64),
		tasks:     make(map[uint64]domain.CoverID),
		failed:    make(map[domain.CoverID]error),
	}
}

// Request starts a background fetch for id unless it is invalid, failed,
// already in flight or already cached. It reports whether a task was
// submitted.
func (p *Pipeline) Request(id domain.CoverID) bool {
	if !id.Valid() {
		return false
	}
	if _, ok := p.failed[id]; ok {
		return false
	}
	if _, ok := p.inFlight[id]; ok {
		return false
	}
	if p.thumbs.Contains(id) {
		return false
	}

	fetcher, variant := p.fetcher, p.variant
	h, err := worker.Submit(p.pool, "cover:"+id.String(), func(ctx context.Context) (FetchResult, error) {
		return FetchResult{Cover: id, Variant: variant, Outcome: fetcher.Fetch(ctx, id, variant)}, nil
	})
	if err != nil {
		// The pool is gone; treat the cover as missing rather than retrying forever.
		p.logger.Warn("cover fetch not submitted", "coverID", id, "error", err)
		p.failed[id] = err
		return false
	}

	p.inFlight[id] = h.ID
	p.tasks[h.ID] = id
	p.logger.Debug("cover fetch submitted", "coverID", id, "task", h.ID)
	return true
}

// Peek reports the state of id without side effects. Safe to call from View.
func (p *Pipeline) Peek(id domain.CoverID) CoverState {
	if !id.Valid() {
		return CoverState{Kind: StateNone}
	}
	if img, ok := p.thumbs.Peek(id); ok {
		return CoverState{Kind: StateReady, Image: img}
	}
	if _, ok := p.failed[id]; ok {
		return CoverState{Kind: StateMissing}
	}
	return CoverState{Kind: StateLoading}
}

// Decorate is the per-row query for list surfaces. A hit promotes the
// thumbnail; the first query for an unknown id starts its fetch.
func (p *Pipeline) Decorate(id domain.CoverID) CoverState {
	if !id.Valid() {
		return CoverState{Kind: StateNone}
	}
	if img, ok := p.thumbs.Get(id); ok {
		return CoverState{Kind: StateReady, Image: img}
	}
	if _, ok := p.failed[id]; ok {
		return CoverState{Kind: StateMissing}
	}
	p.Request(id)
	return CoverState{Kind: StateLoading}
}

// Select records the detail surface's new selection and returns what it
// should show now. Results for any other cover are no longer applied to the
// detail surface.
func (p *Pipeline) Select(item domain.ItemID, cover domain.CoverID) DetailCover {
	p.token = SelectionToken{Item: item, Cover: cover}
	d := DetailCover{Token: p.token, State: p.Decorate(cover)}
	if d.State.Kind == StateReady {
		d.Path = p.fetcher.Path(cover, p.variant)
	}
	return d
}

// Path returns where id's file lives in the disk cache, whether or not it
// has been downloaded yet.
func (p *Pipeline) Path(id domain.CoverID) string {
	return p.fetcher.Path(id, p.variant)
}

// ClearSelection forgets the detail selection.
func (p *Pipeline) ClearSelection() {
	p.token = SelectionToken{}
}

// Token returns the current selection token.
func (p *Pipeline) Token() SelectionToken { return p.token }

// Complete absorbs a delivered fetch. It decodes Found covers into the
// thumbnail cache and marks everything else missing for the session. The
// second return value is false for completions the pipeline did not submit.
func (p *Pipeline) Complete(done FetchDone) (Update, bool) {
	id, ok := p.tasks[done.Task.ID]
	if !ok {
		return Update{}, false
	}
	delete(p.tasks, done.Task.ID)
	if p.inFlight[id] == done.Task.ID {
		delete(p.inFlight, id)
	}

	outcome := done.Value.Outcome
	if done.Err != nil {
		outcome = Failed(done.Err)
	}

	u := Update{Cover: id, Token: p.token}
	u.Detail = p.token.Cover.Valid() && p.token.Cover == id

	switch outcome.Kind {
	case OutcomeFound:
		img, err := DecodeFile(outcome.Path, p.thumbSize)
		if err != nil {
			p.logger.Warn("cover decode failed", "coverID", id, "path", outcome.Path, "error", err)
			// the file is useless; drop it so Retry goes back to the network
			if err := p.fetcher.Evict(id, p.variant); err != nil {
				p.logger.Warn("failed to evict undecodable cover", "coverID", id, "error", err)
			}
			p.failed[id] = err
			u.State = CoverState{Kind: StateMissing}
			return u, true
		}
		p.thumbs.Put(id, img)
		u.State = CoverState{Kind: StateReady, Image: img}
		u.Path = outcome.Path
	default:
		p.logger.Debug("cover unavailable", "coverID", id, "outcome", outcome.Kind, "error", outcome.Err)
		p.failed[id] = outcome.Err
		u.State = CoverState{Kind: StateMissing}
	}
	return u, true
}

// Invalidate forgets everything known about id so the next request fetches
// it again. An in-flight fetch is left alone and will still complete.
func (p *Pipeline) Invalidate(id domain.CoverID) {
	delete(p.failed, id)
	p.thumbs.Invalidate(id)
}

// Retry invalidates id and requests it again.
func (p *Pipeline) Retry(id domain.CoverID) bool {
	p.Invalidate(id)
	return p.Request(id)
}

// IsInFlight reports whether a fetch for id is pending.
func (p *Pipeline) IsInFlight(id domain.CoverID) bool {
	_, ok := p.inFlight[id]
	return ok
}

// IsFailed reports whether id is suppressed for the session.
func (p *Pipeline) IsFailed(id domain.CoverID) bool {
	_, ok := p.failed[id]
	return ok
}

// Stats returns a snapshot of the bookkeeping sets.
func (p *Pipeline) Stats() Stats {
	return Stats{
		InFlight:   len(p.inFlight),
		Failed:     len(p.failed),
		Thumbnails: p.thumbs.Len(),
		Capacity:   p.thumbs.Capacity(),
	}
}
