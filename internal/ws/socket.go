package ws

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog/log"

	"github.com/policylab/beancouncil/internal/engine"
	"github.com/policylab/beancouncil/internal/policy"
	"github.com/policylab/beancouncil/internal/session"
)

// ConnCtx is the per-connection state. Each participant holds exactly one
// live subscription to its session document; attaching to a new session
// cancels the previous watch.
type ConnCtx struct {
	SessionID string
	UID       string
	Name      string
	unwatch   func()
	eng       *engine.Engine
}

// Server mounts the socket.io surface: session synchronization events for
// the two-party mode and deliberation events for the agent negotiation.
type Server struct {
	sync      *session.Synchronizer
	newEngine func(onChange func()) *engine.Engine
	budget    int
}

func New(sy *session.Synchronizer, newEngine func(onChange func()) *engine.Engine, budget int) *Server {
	return &Server{sync: sy, newEngine: newEngine, budget: budget}
}

// Mount attaches the socket.io server with handlers to the given Gin engine.
func (srv *Server) Mount(r *gin.Engine) *socketio.Server {
	io := socketio.NewServer(nil)

	io.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext(&ConnCtx{})
		log.Info().Str("sid", s.ID()).Msg("socket connected")
		return nil
	})

	// session:create
	io.OnEvent("/", "session:create", func(s socketio.Conn, payload struct {
		Name string `json:"name"`
	}) map[string]any {
		uid := uuid.NewString()
		sess, err := srv.sync.CreateSession(context.Background(), uid, payload.Name)
		if err != nil {
			return srv.err(s, "unknown_error", err.Error())
		}
		srv.attach(s, sess.SessionID, uid, payload.Name)
		log.Info().Str("sid", s.ID()).Str("sessionId", sess.SessionID).Msg("session:create")
		return map[string]any{"sessionId": sess.SessionID, "uid": uid}
	})

	// session:join
	io.OnEvent("/", "session:join", func(s socketio.Conn, payload struct {
		SessionID string `json:"sessionId"`
		Name      string `json:"name"`
		UID       string `json:"uid"`
	}) map[string]any {
		uid := payload.UID
		if uid == "" {
			uid = uuid.NewString()
		}
		sess, err := srv.sync.Join(context.Background(), payload.SessionID, uid, payload.Name)
		if err != nil {
			return srv.err(s, session.Code(err), err.Error())
		}
		srv.attach(s, sess.SessionID, uid, payload.Name)
		log.Info().Str("sid", s.ID()).Str("sessionId", sess.SessionID).Str("uid", uid).Msg("session:join")
		return map[string]any{"sessionId": sess.SessionID, "uid": uid}
	})

	// session:resume (reconnection)
	io.OnEvent("/", "session:resume", func(s socketio.Conn, payload struct {
		SessionID string `json:"sessionId"`
		UID       string `json:"uid"`
	}) map[string]any {
		sess, err := srv.sync.Get(context.Background(), payload.SessionID)
		if err != nil {
			return srv.err(s, session.Code(err), err.Error())
		}
		var name string
		found := false
		for _, p := range sess.Participants {
			if p.UID == payload.UID {
				name = p.DisplayName
				found = true
			}
		}
		if !found {
			return srv.err(s, session.Code(session.ErrNotParticipant), "not a participant of this session")
		}
		srv.attach(s, payload.SessionID, payload.UID, name)
		log.Info().Str("sid", s.ID()).Str("sessionId", payload.SessionID).Msg("session:resume")
		return map[string]any{"ok": true}
	})

	// session:start (host)
	io.OnEvent("/", "session:start", func(s socketio.Conn) map[string]any {
		ctx := s.Context().(*ConnCtx)
		if _, err := srv.sync.Start(context.Background(), ctx.SessionID, ctx.UID); err != nil {
			return srv.err(s, session.Code(err), err.Error())
		}
		log.Info().Str("sessionId", ctx.SessionID).Msg("session:start")
		return map[string]any{"ok": true}
	})

	// session:submit
	io.OnEvent("/", "session:submit", func(s socketio.Conn, payload struct {
		Selections map[string]string `json:"selections"`
	}) map[string]any {
		ctx := s.Context().(*ConnCtx)
		sel := toSelectionSet(payload.Selections)
		sess, err := srv.sync.Submit(context.Background(), ctx.SessionID, ctx.UID, sel)
		if err != nil {
			return srv.err(s, session.Code(err), err.Error())
		}
		log.Info().Str("sessionId", ctx.SessionID).Str("uid", ctx.UID).Str("status", string(sess.Status)).Msg("session:submit")
		return map[string]any{"ok": true, "status": sess.Status}
	})

	// session:advance (host)
	io.OnEvent("/", "session:advance", func(s socketio.Conn) map[string]any {
		ctx := s.Context().(*ConnCtx)
		sess, err := srv.sync.Advance(context.Background(), ctx.SessionID, ctx.UID)
		if err != nil {
			return srv.err(s, session.Code(err), err.Error())
		}
		log.Info().Str("sessionId", ctx.SessionID).Str("status", string(sess.Status)).Msg("session:advance")
		return map[string]any{"ok": true, "status": sess.Status}
	})

	// session:chat
	io.OnEvent("/", "session:chat", func(s socketio.Conn, payload struct {
		Message string `json:"message"`
	}) map[string]any {
		ctx := s.Context().(*ConnCtx)
		if _, err := srv.sync.AppendChat(context.Background(), ctx.SessionID, ctx.UID, payload.Message); err != nil {
			return srv.err(s, session.Code(err), err.Error())
		}
		return map[string]any{"ok": true}
	})

	// agents:selections — the player's package changed; re-evaluate all
	// three personas. The evaluation itself is returned synchronously,
	// judgments stream back later as agents:update.
	io.OnEvent("/", "agents:selections", func(s socketio.Conn, payload struct {
		Selections map[string]string `json:"selections"`
		FocusArea  string            `json:"focusArea"`
	}) map[string]any {
		ctx := s.Context().(*ConnCtx)
		sel := toSelectionSet(payload.Selections)
		srv.engineFor(s, ctx).SelectionsChanged(context.Background(), sel, payload.FocusArea)
		return map[string]any{"evaluation": policy.Evaluate(sel, srv.budget)}
	})

	// agents:message — chat to the agents; only mentions reach the oracle.
	io.OnEvent("/", "agents:message", func(s socketio.Conn, payload struct {
		Text string `json:"text"`
	}) map[string]any {
		ctx := s.Context().(*ConnCtx)
		targeted := srv.engineFor(s, ctx).SendMessage(context.Background(), payload.Text)
		return map[string]any{"targeted": targeted}
	})

	io.OnError("/", func(s socketio.Conn, e error) {
		log.Error().Str("sid", s.ID()).Err(e).Msg("socket error")
	})
	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		if ctx, ok := s.Context().(*ConnCtx); ok && ctx.unwatch != nil {
			ctx.unwatch()
		}
		log.Info().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
	})

	go io.Serve()

	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))
	r.OPTIONS("/socket.io/*any", func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Status(http.StatusNoContent)
	})

	return io
}

// attach binds the connection to a session: one live watch per connection,
// with the current document pushed immediately so the client never starts
// from a blank state.
func (srv *Server) attach(s socketio.Conn, sessionID, uid, name string) {
	ctx := s.Context().(*ConnCtx)
	if ctx.unwatch != nil {
		ctx.unwatch()
	}
	ctx.SessionID = sessionID
	ctx.UID = uid
	ctx.Name = name
	ctx.unwatch = srv.sync.Watch(sessionID, func(doc *session.GameSession) {
		s.Emit("session:state", statePayload(doc))
	})
	if doc, err := srv.sync.Get(context.Background(), sessionID); err == nil {
		s.Emit("session:state", statePayload(doc))
	}
}

// engineFor lazily creates the per-connection deliberation engine wired to
// push agents:update on every applied judgment.
func (srv *Server) engineFor(s socketio.Conn, ctx *ConnCtx) *engine.Engine {
	if ctx.eng == nil {
		ctx.eng = srv.newEngine(func() {
			e := ctx.eng
			s.Emit("agents:update", map[string]any{
				"happiness":  e.Happiness(),
				"transcript": e.Transcript(),
				"canEnd":     e.CanEndDeliberation(),
			})
		})
	}
	return ctx.eng
}

// statePayload carries the full document plus the recomputed two-party
// consensus on every observed update.
func statePayload(doc *session.GameSession) map[string]any {
	return map[string]any{
		"session":   doc,
		"consensus": doc.ConsensusReached(),
	}
}

func toSelectionSet(m map[string]string) policy.SelectionSet {
	sel := policy.SelectionSet{}
	for k, v := range m {
		area := policy.AreaID(k)
		opt := policy.OptionID(v)
		if _, ok := policy.AreaByID(area); !ok || opt.Cost() == 0 {
			continue
		}
		sel[area] = opt
	}
	return sel
}

func (srv *Server) err(s socketio.Conn, code, message string) map[string]any {
	s.Emit("error", map[string]any{"code": code, "message": message})
	return map[string]any{"error": code, "message": message}
}
