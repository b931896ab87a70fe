package enlistment

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"enlistment-gateway/enlistment/application"
	"enlistment-gateway/enlistment/domain"
)

type KeyFunc func(r *http.Request) domain.Key

type ThrottleOptions struct {
	Store        domain.LimiterStore
	KeyFn        KeyFunc
	RejectStatus int
	RetryAfter   time.Duration

	// Methods restringe o throttle a esses métodos. Vazio = todos.
	Methods            []string
	AddThrottleHeaders bool
}

type rateInfo interface {
	RateFor(domain.Key) (float64, int)
}

// StudentKeyFunc usa o aluno de /students/{id}/... como chave. Fora dessas
// rotas cai no host remoto.
func StudentKeyFunc() KeyFunc {
	return func(r *http.Request) domain.Key {
		if id, ok := studentFromPath(r.URL.Path); ok {
			return application.StudentKey(id)
		}
		return domain.Key("ip:" + remoteHost(r))
	}
}

func studentFromPath(path string) (int, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] != "students" {
		return 0, false
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

// ThrottleMiddleware aplica o token bucket por aluno.
func ThrottleMiddleware(opts ThrottleOptions) func(next http.Handler) http.Handler {
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.RetryAfter == 0 {
		opts.RetryAfter = 1 * time.Second
	}
	if opts.KeyFn == nil {
		opts.KeyFn = StudentKeyFunc()
	}
	methods := make(map[string]bool, len(opts.Methods))
	for _, m := range opts.Methods {
		methods[strings.ToUpper(m)] = true
	}

	svc := application.ThrottleService{
		Store:      opts.Store,
		RetryAfter: opts.RetryAfter,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(methods) > 0 && !methods[r.Method] {
				next.ServeHTTP(w, r)
				return
			}
			key := opts.KeyFn(r)

			if opts.AddThrottleHeaders {
				w.Header().Set("X-Throttle-Key", string(key))
				if ri, ok := opts.Store.(rateInfo); ok {
					rps, burst := ri.RateFor(key)
					w.Header().Set("X-Throttle-RPS", formatFloat(rps))
					w.Header().Set("X-Throttle-Burst", formatInt(burst))
				}
			}

			dec := svc.Decide(key)
			if !dec.Allowed {
				w.Header().Set("Retry-After", formatInt(int(dec.RetryAfter.Seconds())))
				writeError(w, opts.RejectStatus, http.StatusText(opts.RejectStatus))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
