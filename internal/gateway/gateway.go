package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/policylab/beancouncil/internal/agent"
	"github.com/policylab/beancouncil/internal/oracle"
)

// CallClass separates the two conceptual kinds of oracle traffic so that a
// selection-change burst never coalesces with a directed chat message.
type CallClass string

const (
	ClassSelection CallClass = "selection"
	ClassMessage   CallClass = "message"
)

type Options struct {
	// Quiet is the debounce window; a new request within it supersedes
	// the pending one.
	Quiet time.Duration
	// Timeout bounds the actual oracle invocation.
	Timeout time.Duration
}

// Gateway is the single choke point to the reasoning oracle. It debounces,
// caches and normalizes errors; callers only ever see a judgment or
// oracle.ErrUnavailable. Each gateway owns its own cache, so concurrent
// sessions never share entries.
type Gateway struct {
	oracle oracle.Oracle
	cache  *Cache
	opts   Options

	mu         sync.Mutex
	debouncers map[string]*debouncer
}

func New(o oracle.Oracle, opts Options) *Gateway {
	if opts.Quiet <= 0 {
		opts.Quiet = 1500 * time.Millisecond
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Gateway{
		oracle:     o,
		cache:      NewCache(),
		opts:       opts,
		debouncers: make(map[string]*debouncer),
	}
}

// Judge resolves one judgment request. Identical replayed states
// short-circuit to the cache; fresh states go through the per-(persona,
// class) debouncer. Any failure collapses to oracle.ErrUnavailable.
func (g *Gateway) Judge(ctx context.Context, class CallClass, req oracle.Request) (*oracle.Judgment, error) {
	if j, ok := g.cache.Get(cacheKey(req)); ok {
		return j, nil
	}
	c := g.debouncer(req.Persona, class).submit(req)
	select {
	case <-ctx.Done():
		return nil, oracle.ErrUnavailable
	case <-c.done:
	}
	if c.err != nil {
		return nil, oracle.ErrUnavailable
	}
	return c.judgment, nil
}

func (g *Gateway) debouncer(p agent.PersonaID, class CallClass) *debouncer {
	key := string(p) + "/" + string(class)
	g.mu.Lock()
	defer g.mu.Unlock()
	d, ok := g.debouncers[key]
	if !ok {
		d = newDebouncer(g.opts.Quiet, g.invoke)
		g.debouncers[key] = d
	}
	return d
}

// invoke performs the actual oracle call for a settled debounce window and
// settles the shared future. Successful judgments are memoized under the
// arguments that actually fired.
func (g *Gateway) invoke(c *call) {
	ctx, cancel := context.WithTimeout(context.Background(), g.opts.Timeout)
	defer cancel()
	j, err := g.oracle.Judge(ctx, c.req)
	if err != nil {
		log.Warn().Err(err).Str("persona", string(c.req.Persona)).Msg("oracle unavailable")
		c.err = oracle.ErrUnavailable
	} else {
		g.cache.Put(cacheKey(c.req), j)
		c.judgment = j
	}
	close(c.done)
}
