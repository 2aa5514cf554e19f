package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"ledger/internal/cache"
	"ledger/internal/ledger"
	"ledger/internal/log"
)

const sessionCookie = "ledger_session"

// session is one browser's ledger: its controller and pending notifications.
type session struct {
	id         string
	controller *ledger.Controller
	queue      *ledger.Queue
}

type sessionStore struct {
	server *Server
	cache  *cache.LRUCache[*session]
	ttl    time.Duration
}

func newSessionStore(s *Server, maxSessions int, ttl time.Duration) *sessionStore {
	store := &sessionStore{server: s, ttl: ttl}
	store.cache = cache.NewLRUCache[*session](maxSessions, ttl,
		cache.WithEvictHook[*session](func(id string, _ *session) {
			s.logger.Debug("Session evicted", log.FieldSessionID, id)
		}))
	return store
}

// get returns the caller's session, starting a new one (and setting the
// cookie) when the request carries none or an expired one.
func (st *sessionStore) get(w http.ResponseWriter, r *http.Request) *session {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if sess, ok := st.cache.Get(c.Value); ok {
			return sess
		}
	}

	sess := st.server.newSession(uuid.NewString())
	st.cache.Set(sess.id, sess)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.id,
		Path:     "/",
		MaxAge:   int(st.ttl / time.Second),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	log.FromContext(r.Context()).DebugContext(r.Context(), "Session started", log.FieldSessionID, sess.id)
	return sess
}

func (st *sessionStore) size() int { return st.cache.Size() }

func (s *Server) newSession(id string) *session {
	q := ledger.NewQueue(ledger.DefaultQueueSize)
	opts := []ledger.Option{
		ledger.WithClock(s.now),
		ledger.WithLogger(s.logger.With(log.FieldSessionID, id).Logger),
	}
	if s.taxonomy != nil {
		opts = append(opts, ledger.WithTaxonomy(s.taxonomy))
	}
	return &session{
		id:         id,
		queue:      q,
		controller: ledger.NewController(s.ledger, q, opts...),
	}
}
