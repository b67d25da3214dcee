package web

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/JonMunkholm/feedbacks/internal/web/middleware"
)

const visitorTTL = 3 * time.Minute

// rateLimiter is a per-IP token bucket. Each client gets perMinute requests
// per minute with a burst of the same size.
type rateLimiter struct {
	name     string
	limit    rate.Limit
	burst    int
	onReject func(name string)

	mu       sync.Mutex
	visitors map[string]*visitor
	stop     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newRateLimiter starts a limiter whose idle visitors are evicted in the
// background until close is called.
func newRateLimiter(name string, perMinute int, onReject func(string)) *rateLimiter {
	rl := &rateLimiter{
		name:     name,
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    perMinute,
		onReject: onReject,
		visitors: make(map[string]*visitor),
		stop:     make(chan struct{}),
	}
	go rl.janitor(time.Minute)
	return rl
}

func (rl *rateLimiter) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.evict(now)
		}
	}
}

func (rl *rateLimiter) evict(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(rl.visitors, ip)
		}
	}
}

func (rl *rateLimiter) close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	rl.mu.Unlock()

	return v.limiter.Allow()
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(middleware.ClientIP(r)) {
			if rl.onReject != nil {
				rl.onReject(rl.name)
			}
			retry := time.Duration(float64(time.Second) / float64(rl.limit))
			w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
			writeJSON(w, http.StatusTooManyRequests, ErrorResponse{
				Error: "Too many requests, please try again later.",
				Code:  "RATE001",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
