package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/policylab/beancouncil/internal/agent"
	"github.com/policylab/beancouncil/internal/gateway"
	"github.com/policylab/beancouncil/internal/oracle"
	"github.com/policylab/beancouncil/internal/policy"
)

type fakeJudger struct {
	mu        sync.Mutex
	happiness map[agent.PersonaID]float64
	preferred map[agent.PersonaID]string
	fail      bool
	calls     []oracle.Request
}

func newFakeJudger() *fakeJudger {
	return &fakeJudger{
		happiness: map[agent.PersonaID]float64{},
		preferred: map[agent.PersonaID]string{},
	}
}

func (f *fakeJudger) Judge(ctx context.Context, class gateway.CallClass, req oracle.Request) (*oracle.Judgment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.fail {
		return nil, oracle.ErrUnavailable
	}
	h, ok := f.happiness[req.Persona]
	if !ok {
		h = 0.5
	}
	return &oracle.Judgment{
		Happiness:        h,
		SummaryStatement: "summary",
		DirectResponse:   "spoken by " + string(req.Persona),
		PreferredPackage: f.preferred[req.Persona],
	}, nil
}

func (f *fakeJudger) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// changeRecorder counts onChange callbacks so tests can wait for the
// asynchronous judgment fan-out to settle.
type changeRecorder struct {
	ch chan struct{}
}

func newChangeRecorder() *changeRecorder {
	return &changeRecorder{ch: make(chan struct{}, 64)}
}

func (c *changeRecorder) notify() { c.ch <- struct{}{} }

func (c *changeRecorder) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-c.ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for change %d of %d", i+1, n)
		}
	}
}

func testOptions() Options {
	return Options{Quorum: 2, HappyThreshold: 0.5, NeutralHappiness: 0.4}
}

func someSelections() policy.SelectionSet {
	return policy.SelectionSet{policy.AreaAccess: policy.Option2}
}

func TestSelectionsChangedFansOutToAllPersonas(t *testing.T) {
	f := newFakeJudger()
	rec := newChangeRecorder()
	e := New(f, testOptions(), rec.notify)

	e.SelectionsChanged(context.Background(), someSelections(), "")
	rec.wait(t, len(agent.All))

	assert.Equal(t, len(agent.All), f.callCount())
	for _, p := range agent.All {
		assert.Equal(t, Steady, e.Phase(p))
		assert.Equal(t, 0.5, e.Happiness()[p])
	}
	turns := e.Transcript()
	require.Len(t, turns, len(agent.All))
	for _, turn := range turns {
		assert.NotEqual(t, "user", turn.Sender)
		assert.Equal(t, 0.5, turn.Happiness)
	}
}

func TestEmptySelectionsIgnored(t *testing.T) {
	f := newFakeJudger()
	e := New(f, testOptions(), nil)

	e.SelectionsChanged(context.Background(), policy.SelectionSet{}, "")
	assert.Equal(t, 0, f.callCount())
}

func TestUnchangedSelectionsSkipOracle(t *testing.T) {
	f := newFakeJudger()
	rec := newChangeRecorder()
	e := New(f, testOptions(), rec.notify)

	sel := someSelections()
	e.SelectionsChanged(context.Background(), sel, "Access to Education")
	rec.wait(t, len(agent.All))
	require.Equal(t, len(agent.All), f.callCount())

	// Replaying identical state once every persona is steady is a no-op.
	e.SelectionsChanged(context.Background(), sel, "Access to Education")
	assert.Equal(t, len(agent.All), f.callCount())

	// A focus change alone still re-triggers the fan-out.
	e.SelectionsChanged(context.Background(), sel, "Language Instruction")
	rec.wait(t, len(agent.All))
	assert.Equal(t, 2*len(agent.All), f.callCount())
}

func TestConsensusQuorum(t *testing.T) {
	f := newFakeJudger()
	rec := newChangeRecorder()
	e := New(f, testOptions(), rec.notify)

	// All neutral: nobody reaches the threshold.
	assert.False(t, e.CanEndDeliberation())

	f.mu.Lock()
	f.happiness[agent.PersonaState] = 0.5
	f.happiness[agent.PersonaCitizen] = 0.6
	f.happiness[agent.PersonaHumanRights] = 0.1
	f.mu.Unlock()

	e.SelectionsChanged(context.Background(), someSelections(), "")
	rec.wait(t, len(agent.All))

	// 0.5 counts: the threshold is inclusive, so two of three qualify.
	assert.True(t, e.CanEndDeliberation())
}

func TestConsensusNotReachedBelowQuorum(t *testing.T) {
	f := newFakeJudger()
	rec := newChangeRecorder()
	e := New(f, testOptions(), rec.notify)

	f.mu.Lock()
	f.happiness[agent.PersonaState] = 0.9
	f.happiness[agent.PersonaCitizen] = 0.3
	f.happiness[agent.PersonaHumanRights] = 0.2
	f.mu.Unlock()

	e.SelectionsChanged(context.Background(), someSelections(), "")
	rec.wait(t, len(agent.All))

	assert.False(t, e.CanEndDeliberation())
}

func TestUndirectedMessageSkipsOracle(t *testing.T) {
	f := newFakeJudger()
	rec := newChangeRecorder()
	e := New(f, testOptions(), rec.notify)

	directed := e.SendMessage(context.Background(), "what do you all think?")
	rec.wait(t, 1) // the user turn itself

	assert.False(t, directed)
	assert.Equal(t, 0, f.callCount())
	turns := e.Transcript()
	require.Len(t, turns, 1)
	assert.Equal(t, "user", turns[0].Sender)
}

func TestDirectedMessageTargetsOnePersona(t *testing.T) {
	f := newFakeJudger()
	rec := newChangeRecorder()
	e := New(f, testOptions(), rec.notify)

	directed := e.SendMessage(context.Background(), "@state why so strict?")
	rec.wait(t, 2) // user turn, then the reply

	assert.True(t, directed)
	require.Equal(t, 1, f.callCount())
	f.mu.Lock()
	req := f.calls[0]
	f.mu.Unlock()
	assert.Equal(t, agent.PersonaState, req.Persona)
	assert.Equal(t, "@state why so strict?", req.Message)

	turns := e.Transcript()
	require.Len(t, turns, 2)
	assert.Equal(t, "user", turns[0].Sender)
	assert.Equal(t, string(agent.PersonaState), turns[1].Sender)
}

func TestFailedJudgmentLeavesStateUntouched(t *testing.T) {
	f := newFakeJudger()
	f.fail = true
	e := New(f, testOptions(), nil)

	e.SelectionsChanged(context.Background(), someSelections(), "")

	// Failures apply nothing, so poll briefly and assert nothing moved.
	deadline := time.After(200 * time.Millisecond)
	for f.callCount() < len(agent.All) {
		select {
		case <-deadline:
			t.Fatal("judger never invoked")
		case <-time.After(5 * time.Millisecond):
		}
	}
	time.Sleep(20 * time.Millisecond)

	for _, p := range agent.All {
		assert.Equal(t, 0.4, e.Happiness()[p], "failed judgment keeps the prior score")
		assert.Equal(t, AwaitingInitialJudgment, e.Phase(p))
	}
	assert.Empty(t, e.Transcript())
}

func TestStaleJudgmentDropped(t *testing.T) {
	e := New(newFakeJudger(), testOptions(), nil)

	e.apply(agent.PersonaState, 2, &oracle.Judgment{Happiness: 0.8, DirectResponse: "newer"})
	e.apply(agent.PersonaState, 1, &oracle.Judgment{Happiness: 0.1, DirectResponse: "stale"})

	assert.Equal(t, 0.8, e.Happiness()[agent.PersonaState])
	turns := e.Transcript()
	require.Len(t, turns, 1)
	assert.Equal(t, "newer", turns[0].Text)
}

func TestPreferredPackageSticksAcrossJudgments(t *testing.T) {
	e := New(newFakeJudger(), testOptions(), nil)

	e.apply(agent.PersonaCitizen, 1, &oracle.Judgment{Happiness: 0.5, DirectResponse: "a", PreferredPackage: "first package"})
	e.apply(agent.PersonaCitizen, 2, &oracle.Judgment{Happiness: 0.6, DirectResponse: "b", PreferredPackage: "second package"})
	e.apply(agent.PersonaCitizen, 3, &oracle.Judgment{Happiness: 0.7, DirectResponse: "c"})

	pkg, ok := e.PreferredPackage(agent.PersonaCitizen)
	require.True(t, ok)
	assert.Equal(t, "first package", pkg)
	assert.Equal(t, 0.7, e.Happiness()[agent.PersonaCitizen])
}
