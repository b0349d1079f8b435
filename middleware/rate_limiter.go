package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Every user action triggers a full recompute, so a runaway client can get
// expensive. 5 req/s with a burst of 20 is generous for a dashboard.
const (
	visitorRate  = 5
	visitorBurst = 20
	visitorTTL   = 3 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	visitors   = make(map[string]*visitor)
	visitorsMu sync.Mutex
)

func RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.Header.Get("X-Forwarded-For")
		if ip == "" {
			ip, _, _ = net.SplitHostPort(r.RemoteAddr)
		}

		if !getLimiter(ip).Allow() {
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func getLimiter(ip string) *rate.Limiter {
	visitorsMu.Lock()
	defer visitorsMu.Unlock()

	v, exists := visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(visitorRate, visitorBurst)}
		visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// CleanupVisitors evicts idle rate-limiter entries. Run as a goroutine from
// main.
func CleanupVisitors() {
	for {
		time.Sleep(time.Minute)
		visitorsMu.Lock()
		for ip, v := range visitors {
			if time.Since(v.lastSeen) > visitorTTL {
				delete(visitors, ip)
			}
		}
		visitorsMu.Unlock()
	}
}
