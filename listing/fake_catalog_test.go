package listing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"recipebrowser"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCatalog serves canned data and counts calls per operation.
type fakeCatalog struct {
	mu sync.Mutex

	categories    []string
	categoriesErr error
	byCategory    map[string][]recipebrowser.Recipe
	categoryErr   map[string]error
	search        map[string][]recipebrowser.Recipe
	searchErr     error
	details       map[string]*recipebrowser.Recipe
	lookupErr     error
	// searchGates blocks SearchByName for a term until the channel is closed.
	searchGates map[string]chan struct{}

	calls map[string]int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		byCategory:  make(map[string][]recipebrowser.Recipe),
		categoryErr: make(map[string]error),
		search:      make(map[string][]recipebrowser.Recipe),
		details:     make(map[string]*recipebrowser.Recipe),
		searchGates: make(map[string]chan struct{}),
		calls:       make(map[string]int),
	}
}

func (f *fakeCatalog) count(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

func (f *fakeCatalog) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeCatalog) ListCategories(ctx context.Context) ([]string, error) {
	f.count("categories")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.categoriesErr != nil {
		return nil, f.categoriesErr
	}
	return append([]string(nil), f.categories...), nil
}

func (f *fakeCatalog) FilterByCategory(ctx context.Context, category string) ([]recipebrowser.Recipe, error) {
	f.count("filter")
	f.count("filter:" + category)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.categoryErr[category]; err != nil {
		return nil, err
	}
	return append([]recipebrowser.Recipe(nil), f.byCategory[category]...), nil
}

func (f *fakeCatalog) SearchByName(ctx context.Context, query string) ([]recipebrowser.Recipe, error) {
	f.count("search")
	f.count("search:" + query)

	f.mu.Lock()
	gate := f.searchGates[query]
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return append([]recipebrowser.Recipe(nil), f.search[query]...), nil
}

func (f *fakeCatalog) LookupByID(ctx context.Context, id string) (*recipebrowser.Recipe, error) {
	f.count("lookup")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	r, ok := f.details[id]
	if !ok {
		return nil, fmt.Errorf("lookup %s: %w", id, recipebrowser.ErrNotFound)
	}
	return r, nil
}

func (f *fakeCatalog) gateSearch(term string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	f.searchGates[term] = gate
	return gate
}

// recipes builds n recipes with ids prefix-1..prefix-n.
func recipes(prefix string, n int) []recipebrowser.Recipe {
	out := make([]recipebrowser.Recipe, n)
	for i := range out {
		out[i] = recipebrowser.Recipe{
			ID:   fmt.Sprintf("%s-%d", prefix, i+1),
			Name: fmt.Sprintf("%s recipe %d", prefix, i+1),
		}
	}
	return out
}

func ids(rs []recipebrowser.Recipe) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

// fakeClock is a settable clock for freshness tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// captureResolutions keeps every logged resolution.
type captureResolutions struct {
	mu      sync.Mutex
	entries []recipebrowser.ResolutionLog
}

func (c *captureResolutions) LogResolution(entry recipebrowser.ResolutionLog) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry)
	return nil
}

func (c *captureResolutions) Last() recipebrowser.ResolutionLog {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) == 0 {
		return recipebrowser.ResolutionLog{}
	}
	return c.entries[len(c.entries)-1]
}
