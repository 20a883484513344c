package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/aminulnv/Year-In-Review/internal/model"
)

// Idempotency headers
const (
	IdempotencyKeyHeader      = "Idempotency-Key"
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"
)

// IdempotencyStore remembers responses by client, key and route. A retried
// submit with the same key and body replays the first receipt instead of
// archiving a second copy.
type IdempotencyStore struct {
	mu       sync.RWMutex
	entries  map[string]*idempotencyEntry
	ttl      time.Duration
	key      func(*http.Request) string
	now      func() time.Time
	stopChan chan struct{}
}

type idempotencyEntry struct {
	digest    string // request body hash
	status    int
	headers   http.Header
	body      []byte
	expiresAt time.Time
	inFlight  bool
	done      chan struct{}
}

// IdempotencyConfig holds configuration for idempotency middleware
type IdempotencyConfig struct {
	TTL     time.Duration              // How long to keep idempotency results (default 24h)
	Cleanup time.Duration              // Cleanup interval (default 1h)
	Key     func(*http.Request) string // Client scope (default ClientKey)
	Now     func() time.Time
}

// NewIdempotencyStore creates a new idempotency store
func NewIdempotencyStore(cfg IdempotencyConfig) *IdempotencyStore {
	if cfg.TTL == 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Cleanup == 0 {
		cfg.Cleanup = time.Hour
	}
	if cfg.Key == nil {
		cfg.Key = ClientKey
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	store := &IdempotencyStore{
		entries:  make(map[string]*idempotencyEntry),
		ttl:      cfg.TTL,
		key:      cfg.Key,
		now:      cfg.Now,
		stopChan: make(chan struct{}),
	}

	go store.cleanupLoop(cfg.Cleanup)

	return store
}

// Stop stops the cleanup goroutine
func (s *IdempotencyStore) Stop() {
	close(s.stopChan)
}

func (s *IdempotencyStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopChan:
			return
		}
	}
}

func (s *IdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, entry := range s.entries {
		if entry.expiresAt.Before(now) && !entry.inFlight {
			delete(s.entries, key)
		}
	}
}

// scopeKey identifies one logical operation: the same client reusing the same
// key on the same route.
func scopeKey(client, idempotencyKey, method, path string) string {
	h := sha256.New()
	for _, part := range []string{client, idempotencyKey, method, path} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func bodyDigest(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// claim returns the entry the caller should replay, or registers a new
// in-flight entry owned by the caller. conflict is set when the key was used
// with a different body.
func (s *IdempotencyStore) claim(key, digest string) (replay *idempotencyEntry, owned *idempotencyEntry, conflict bool) {
	for {
		s.mu.Lock()
		entry, exists := s.entries[key]
		if exists && !entry.inFlight && !entry.expiresAt.After(s.now()) {
			delete(s.entries, key)
			exists = false
		}
		if !exists {
			entry = &idempotencyEntry{digest: digest, inFlight: true, done: make(chan struct{})}
			s.entries[key] = entry
			s.mu.Unlock()
			return nil, entry, false
		}
		if entry.digest != digest {
			s.mu.Unlock()
			return nil, nil, true
		}
		if !entry.inFlight {
			s.mu.Unlock()
			return entry, nil, false
		}

		// Wait for the first attempt, then look again: it may have been
		// forgotten after a server error.
		done := entry.done
		s.mu.Unlock()
		<-done
	}
}

// complete stores the response, or forgets the key after a server error so
// the client can retry.
func (s *IdempotencyStore) complete(key string, entry *idempotencyEntry, rec *idempotencyResponseWriter) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.status >= http.StatusInternalServerError {
		delete(s.entries, key)
	} else {
		entry.status = rec.status
		entry.headers = rec.Header().Clone()
		entry.body = rec.body.Bytes()
		entry.expiresAt = s.now().Add(s.ttl)
	}
	entry.inFlight = false
	close(entry.done)
}

func (e *idempotencyEntry) replay(w http.ResponseWriter) {
	for k, v := range e.headers {
		for _, val := range v {
			w.Header().Add(k, val)
		}
	}
	w.Header().Set(IdempotencyReplayedHeader, "true")
	w.WriteHeader(e.status)
	_, _ = w.Write(e.body)
}

// idempotencyResponseWriter captures the response for caching
type idempotencyResponseWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *idempotencyResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *idempotencyResponseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency returns middleware that honors Idempotency-Key on POST and
// PATCH. Reusing a key with a different body is a 422. 5xx responses are not
// cached.
func Idempotency(store *IdempotencyStore) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}
			idempotencyKey := r.Header.Get(IdempotencyKeyHeader)
			if idempotencyKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			key := scopeKey(store.key(r), idempotencyKey, r.Method, r.URL.Path)
			replay, owned, conflict := store.claim(key, bodyDigest(body))
			switch {
			case conflict:
				model.NewValidationError([]model.FieldError{{
					Field:   IdempotencyKeyHeader,
					Message: "key was already used with a different request body",
				}}).WriteJSON(w)
				return
			case replay != nil:
				replay.replay(w)
				return
			}

			rec := &idempotencyResponseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			store.complete(key, owned, rec)
		})
	}
}
