package domain

// Contratos do throttle por aluno.
//
// Sem dependência de net/http; a infra usa golang.org/x/time/rate.

import (
	"strings"
	"time"
)

// Key identifica um bucket de throttle no formato "<classe>:<id>", ex:
// "student:42" ou "ip:10.0.0.1".
type Key string

// Class retorna a parte antes do primeiro ":". Chave sem ":" não tem classe.
func (k Key) Class() string {
	class, _, ok := strings.Cut(string(k), ":")
	if !ok {
		return ""
	}
	return class
}

// Limiter decide se uma tentativa é permitida agora.
type Limiter interface {
	Allow() bool
}

// LimiterStore obtém um limiter por chave (ex: ID do aluno, IP).
type LimiterStore interface {
	Get(Key) Limiter
}

type Decision struct {
	Allowed bool
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}
