// Package testsupport holds helpers shared by package tests.
package testsupport

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
)

// JPEG encodes a w x h gradient as JPEG.
func JPEG(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / max(w, 1)), G: uint8(y * 255 / max(h, 1)), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// WriteJPEG writes a w x h JPEG into dir and returns its path.
func WriteJPEG(t testing.TB, dir, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, JPEG(t, w, h), 0o644); err != nil {
		t.Fatalf("write jpeg: %v", err)
	}
	return path
}

var coverPath = regexp.MustCompile(`^/b/id/(\d+)-([SML])\.jpg$`)

// CoverServer mimics the covers host. Ids in its status map answer with that
// status; every other id answers 404 until Serve is called for it.
type CoverServer struct {
	*httptest.Server

	mu     sync.Mutex
	bodies map[int64][]byte
	status map[int64]int
	hits   map[int64]int
	total  atomic.Int64
}

// NewCoverServer starts a server that is closed when the test ends.
func NewCoverServer(t testing.TB) *CoverServer {
	t.Helper()
	cs := &CoverServer{
		bodies: make(map[int64][]byte),
		status: make(map[int64]int),
		hits:   make(map[int64]int),
	}
	cs.Server = httptest.NewServer(http.HandlerFunc(cs.handle))
	t.Cleanup(cs.Close)
	return cs
}

// Serve makes id answer 200 with body.
func (cs *CoverServer) Serve(id int64, body []byte) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.bodies[id] = body
	delete(cs.status, id)
}

// Status makes id answer with code and an empty body.
func (cs *CoverServer) Status(id int64, code int) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.status[id] = code
}

// Hits returns how many requests id has received.
func (cs *CoverServer) Hits(id int64) int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.hits[id]
}

// Total returns the number of requests served.
func (cs *CoverServer) Total() int { return int(cs.total.Load()) }

func (cs *CoverServer) handle(w http.ResponseWriter, r *http.Request) {
	cs.total.Add(1)
	m := coverPath.FindStringSubmatch(r.URL.Path)
	if m == nil {
		http.NotFound(w, r)
		return
	}
	id, _ := strconv.ParseInt(m[1], 10, 64)

	cs.mu.Lock()
	cs.hits[id]++
	code, hasStatus := cs.status[id]
	body, hasBody := cs.bodies[id]
	cs.mu.Unlock()

	switch {
	case hasStatus:
		w.WriteHeader(code)
	case hasBody:
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(body)
	default:
		http.NotFound(w, r)
	}
}
