package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/policylab/beancouncil/internal/agent"
	"github.com/policylab/beancouncil/internal/gateway"
	"github.com/policylab/beancouncil/internal/oracle"
	"github.com/policylab/beancouncil/internal/policy"
)

// Judger is the slice of the reasoning gateway the engine consumes.
type Judger interface {
	Judge(ctx context.Context, class gateway.CallClass, req oracle.Request) (*oracle.Judgment, error)
}

// PersonaPhase is the per-agent lifecycle within one negotiation.
type PersonaPhase int

const (
	Uninitialized PersonaPhase = iota
	AwaitingInitialJudgment
	Steady
)

// Turn is an immutable transcript entry. The transcript is append-only and
// never reordered.
type Turn struct {
	Sender    string    `json:"sender"` // "user" or a persona id
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	// Happiness carries the sending persona's score at append time;
	// zero for user turns.
	Happiness float64 `json:"happiness,omitempty"`
}

// Options are the negotiation policy knobs. They are deliberately
// injected, not hard-coded: the quorum and cutoffs are tunable.
type Options struct {
	// Quorum is how many personas must be at or above HappyThreshold
	// before deliberation may end.
	Quorum           int
	HappyThreshold   float64
	NeutralHappiness float64
}

// Engine owns the per-agent happiness scores, the chat transcript and the
// end-of-negotiation eligibility rule for one deliberation.
type Engine struct {
	judger   Judger
	personas *agent.Store
	opts     Options

	mu         sync.Mutex
	phase      map[agent.PersonaID]PersonaPhase
	nextSeq    map[agent.PersonaID]uint64
	appliedSeq map[agent.PersonaID]uint64
	selections policy.SelectionSet
	focus      string
	transcript []Turn

	// onChange fires after every applied judgment or appended turn so
	// the transport layer can push fresh state.
	onChange func()
}

func New(j Judger, opts Options, onChange func()) *Engine {
	if opts.Quorum <= 0 {
		opts.Quorum = 2
	}
	if opts.HappyThreshold <= 0 {
		opts.HappyThreshold = 0.5
	}
	if opts.NeutralHappiness <= 0 {
		opts.NeutralHappiness = 0.4
	}
	e := &Engine{
		judger:     j,
		personas:   agent.NewStore(opts.NeutralHappiness),
		opts:       opts,
		phase:      make(map[agent.PersonaID]PersonaPhase, len(agent.All)),
		nextSeq:    make(map[agent.PersonaID]uint64, len(agent.All)),
		appliedSeq: make(map[agent.PersonaID]uint64, len(agent.All)),
		onChange:   onChange,
	}
	for _, p := range agent.All {
		e.phase[p] = Uninitialized
	}
	return e
}

// SelectionsChanged re-evaluates every persona against the new selection
// state. Every agent's satisfaction depends on the whole package, so a
// change to one area still fans out to all three.
func (e *Engine) SelectionsChanged(ctx context.Context, sel policy.SelectionSet, focusArea string) {
	if len(sel) == 0 {
		return
	}
	e.mu.Lock()
	if policy.Equal(e.selections, sel) && e.focus == focusArea && e.allSteady() {
		e.mu.Unlock()
		return
	}
	e.selections = sel.Clone()
	e.focus = focusArea
	type pending struct {
		persona agent.PersonaID
		seq     uint64
		req     oracle.Request
	}
	reqs := make([]pending, 0, len(agent.All))
	for _, p := range agent.All {
		if e.phase[p] == Uninitialized {
			e.phase[p] = AwaitingInitialJudgment
		}
		e.nextSeq[p]++
		preferred, _ := e.personas.Preferred(p)
		reqs = append(reqs, pending{
			persona: p,
			seq:     e.nextSeq[p],
			req: oracle.Request{
				Persona:    p,
				Selections: e.selections.Clone(),
				Preferred:  preferred,
				FocusArea:  focusArea,
			},
		})
	}
	e.mu.Unlock()

	for _, r := range reqs {
		go e.requestJudgment(ctx, gateway.ClassSelection, r.persona, r.seq, r.req)
	}
}

// SendMessage appends the user's turn and, when the message is directed at
// one persona via a mention token, requests a judgment from that persona
// alone. Undirected messages are a no-op toward the oracle: the engine
// does not guess recipients.
func (e *Engine) SendMessage(ctx context.Context, text string) bool {
	e.appendTurn(Turn{Sender: "user", Text: text, Timestamp: time.Now().UTC()})

	target, ok := ParseMention(text)
	if !ok {
		return false
	}
	e.mu.Lock()
	e.nextSeq[target]++
	seq := e.nextSeq[target]
	preferred, _ := e.personas.Preferred(target)
	req := oracle.Request{
		Persona:    target,
		Selections: e.selections.Clone(),
		Preferred:  preferred,
		FocusArea:  e.focus,
		Message:    text,
	}
	e.mu.Unlock()

	go e.requestJudgment(ctx, gateway.ClassMessage, target, seq, req)
	return true
}

// requestJudgment awaits one gateway call and applies the result. A failed
// judgment leaves all prior state untouched; the next user action retries.
func (e *Engine) requestJudgment(ctx context.Context, class gateway.CallClass, p agent.PersonaID, seq uint64, req oracle.Request) {
	j, err := e.judger.Judge(ctx, class, req)
	if err != nil {
		log.Debug().Str("persona", string(p)).Msg("judgment unavailable, keeping prior state")
		return
	}
	e.apply(p, seq, j)
}

// apply installs a settled judgment. Judgments land in settle order, so a
// stale response that arrives after a newer applied one is dropped by the
// monotonic sequence check.
func (e *Engine) apply(p agent.PersonaID, seq uint64, j *oracle.Judgment) {
	e.mu.Lock()
	if seq <= e.appliedSeq[p] {
		e.mu.Unlock()
		return
	}
	e.appliedSeq[p] = seq
	e.phase[p] = Steady

	// Write-once: only the first non-empty package sticks.
	if j.PreferredPackage != "" {
		e.personas.SetPreferred(p, j.PreferredPackage)
	}
	e.personas.SetHappiness(p, j.Happiness)
	e.transcript = append(e.transcript, Turn{
		Sender:    string(p),
		Text:      j.DirectResponse,
		Timestamp: time.Now().UTC(),
		Happiness: j.Happiness,
	})
	e.mu.Unlock()

	if e.onChange != nil {
		e.onChange()
	}
}

func (e *Engine) appendTurn(t Turn) {
	e.mu.Lock()
	e.transcript = append(e.transcript, t)
	e.mu.Unlock()
	if e.onChange != nil {
		e.onChange()
	}
}

// CanEndDeliberation reports whether enough personas are at or above the
// happy threshold for the negotiation to legally end.
func (e *Engine) CanEndDeliberation() bool {
	happy := 0
	for _, h := range e.personas.Scores() {
		if h >= e.opts.HappyThreshold {
			happy++
		}
	}
	return happy >= e.opts.Quorum
}

// Happiness snapshots the current score per persona.
func (e *Engine) Happiness() map[agent.PersonaID]float64 {
	return e.personas.Scores()
}

// PreferredPackage exposes a persona's fixed package once decided.
func (e *Engine) PreferredPackage(p agent.PersonaID) (string, bool) {
	return e.personas.Preferred(p)
}

// Transcript returns a copy of the append-only transcript.
func (e *Engine) Transcript() []Turn {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Turn, len(e.transcript))
	copy(out, e.transcript)
	return out
}

// Phase reports one persona's lifecycle state.
func (e *Engine) Phase(p agent.PersonaID) PersonaPhase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase[p]
}

func (e *Engine) allSteady() bool {
	for _, p := range agent.All {
		if e.phase[p] != Steady {
			return false
		}
	}
	return true
}
