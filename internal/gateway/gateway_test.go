package gateway

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/policylab/beancouncil/internal/agent"
	"github.com/policylab/beancouncil/internal/oracle"
	"github.com/policylab/beancouncil/internal/policy"
)

type fakeOracle struct {
	mu    sync.Mutex
	calls int32
	fail  bool
	delay time.Duration
	last  oracle.Request
}

func (f *fakeOracle) Judge(ctx context.Context, req oracle.Request) (*oracle.Judgment, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.last = req
	fail, delay := f.fail, f.delay
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	if fail {
		return nil, errors.New("boom")
	}
	return &oracle.Judgment{
		Happiness:        0.6,
		SummaryStatement: "summary for " + string(req.Persona),
		DirectResponse:   "response to " + req.Selections.CacheKey(),
	}, nil
}

func (f *fakeOracle) count() int32 { return atomic.LoadInt32(&f.calls) }

func testGateway(f *fakeOracle) *Gateway {
	return New(f, Options{Quiet: 20 * time.Millisecond, Timeout: time.Second})
}

func selections(opt policy.OptionID) policy.SelectionSet {
	return policy.SelectionSet{policy.AreaAccess: opt}
}

func TestDebounceCoalescesRapidCalls(t *testing.T) {
	f := &fakeOracle{}
	g := testGateway(f)

	var wg sync.WaitGroup
	results := make([]*oracle.Judgment, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			j, err := g.Judge(context.Background(), ClassSelection, oracle.Request{
				Persona:    agent.PersonaState,
				Selections: selections(policy.Option2),
			})
			require.NoError(t, err)
			results[i] = j
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), f.count(), "rapid identical calls coalesce into one invocation")
	assert.Same(t, results[0], results[1])
	assert.Same(t, results[1], results[2])
}

func TestDebounceLatestArgumentsWin(t *testing.T) {
	f := &fakeOracle{}
	g := testGateway(f)
	d := newDebouncer(20*time.Millisecond, g.invoke)

	c1 := d.submit(oracle.Request{Persona: agent.PersonaState, Selections: selections(policy.Option1)})
	c2 := d.submit(oracle.Request{Persona: agent.PersonaState, Selections: selections(policy.Option3)})
	require.Same(t, c1, c2, "a submit within the quiet window joins the pending call")

	<-c1.done
	require.NoError(t, c1.err)
	assert.Equal(t, int32(1), f.count())
	f.mu.Lock()
	fired := f.last.Selections[policy.AreaAccess]
	f.mu.Unlock()
	assert.Equal(t, policy.Option3, fired, "only the latest arguments reach the oracle")
	assert.Contains(t, c1.judgment.DirectResponse, "option3")
}

func TestCacheShortCircuitsReplay(t *testing.T) {
	f := &fakeOracle{}
	g := testGateway(f)
	req := oracle.Request{Persona: agent.PersonaCitizen, Selections: selections(policy.Option2)}

	first, err := g.Judge(context.Background(), ClassSelection, req)
	require.NoError(t, err)
	require.Equal(t, int32(1), f.count())

	second, err := g.Judge(context.Background(), ClassSelection, req)
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.count(), "replayed state must not invoke the oracle again")
	assert.Same(t, first, second, "cached judgment is byte-identical")
}

func TestCacheKeyDiscriminatesMessageAndFocus(t *testing.T) {
	f := &fakeOracle{}
	g := testGateway(f)
	base := oracle.Request{Persona: agent.PersonaCitizen, Selections: selections(policy.Option2)}

	_, err := g.Judge(context.Background(), ClassSelection, base)
	require.NoError(t, err)

	withMsg := base
	withMsg.Message = "@citizens hello"
	_, err = g.Judge(context.Background(), ClassMessage, withMsg)
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.count())
}

func TestErrorNormalization(t *testing.T) {
	f := &fakeOracle{fail: true}
	g := testGateway(f)

	_, err := g.Judge(context.Background(), ClassSelection, oracle.Request{
		Persona:    agent.PersonaHumanRights,
		Selections: selections(policy.Option1),
	})
	assert.ErrorIs(t, err, oracle.ErrUnavailable, "transport errors collapse to the single unavailable outcome")
}

func TestFailedCallsAreNotCached(t *testing.T) {
	f := &fakeOracle{fail: true}
	g := testGateway(f)
	req := oracle.Request{Persona: agent.PersonaState, Selections: selections(policy.Option1)}

	_, err := g.Judge(context.Background(), ClassSelection, req)
	require.ErrorIs(t, err, oracle.ErrUnavailable)

	f.mu.Lock()
	f.fail = false
	f.mu.Unlock()

	j, err := g.Judge(context.Background(), ClassSelection, req)
	require.NoError(t, err)
	assert.Equal(t, 0.6, j.Happiness)
	assert.Equal(t, int32(2), f.count(), "retry reaches the oracle after a failure")
}

func TestCancelledCallerGetsUnavailable(t *testing.T) {
	f := &fakeOracle{delay: 200 * time.Millisecond}
	g := testGateway(f)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := g.Judge(ctx, ClassSelection, oracle.Request{
		Persona:    agent.PersonaState,
		Selections: selections(policy.Option1),
	})
	assert.ErrorIs(t, err, oracle.ErrUnavailable)
}
