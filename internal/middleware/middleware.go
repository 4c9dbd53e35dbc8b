package middleware

import (
	"bufio"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"lucosms-backend/internal/utils"

	"go.uber.org/zap"
)

const (
	defaultMaxTokens = 60
	refillPeriod     = time.Minute
)

type Middleware struct {
	AllowedOrigins []string
	// MaxRequests is the per-IP budget for each refill period.
	MaxRequests  int
	logger       *zap.Logger
	rateLimiters sync.Map
}

func NewMiddleware(allowedOrigins []string, logger *zap.Logger) *Middleware {
	return &Middleware{
		AllowedOrigins: allowedOrigins,
		MaxRequests:    defaultMaxTokens,
		logger:         logger,
	}
}

func (m *Middleware) CORS(next http.Handler) http.Handler {
	allowed := m.AllowedOrigins
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && originAllowed(origin, allowed) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		} else if len(allowed) == 1 && allowed[0] == "*" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func originAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return true // non-browser clients
	}
	for _, o := range allowed {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// simple token bucket per IP
type limiter struct {
	mu         sync.Mutex
	tokens     int
	lastRefill time.Time
}

func (l *limiter) allow(now time.Time, maxTokens int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastRefill) > refillPeriod {
		l.tokens = maxTokens
		l.lastRefill = now
	}
	if l.tokens <= 0 {
		return false
	}
	l.tokens--
	return true
}

func (m *Middleware) RateLimitMiddleware(next http.Handler) http.Handler {
	maxTokens := m.MaxRequests
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		val, _ := m.rateLimiters.LoadOrStore(ip, &limiter{tokens: maxTokens, lastRefill: time.Now()})
		if !val.(*limiter).allow(time.Now(), maxTokens) {
			m.logger.Warn("Rate limit exceeded", zap.String("ip", ip), zap.String("path", r.URL.Path))
			utils.ErrorResponse(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades through the recorder.
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return h.Hijack()
}

func (m *Middleware) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		m.logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("ip", clientIP(r)),
		)
	})
}
