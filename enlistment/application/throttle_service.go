package application

import (
	"strconv"
	"time"

	"enlistment-gateway/enlistment/domain"
)

// ThrottleService decide se um aluno pode tentar outra matrícula agora.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
type ThrottleService struct {
	Store      domain.LimiterStore
	RetryAfter time.Duration
}

// StudentKey é a chave de throttle de um aluno.
func StudentKey(studentID int) domain.Key {
	return domain.Key("student:" + strconv.Itoa(studentID))
}

func (s ThrottleService) Decide(key domain.Key) domain.Decision {
	if s.Store == nil {
		return domain.Decision{Allowed: true}
	}
	retryAfter := s.RetryAfter
	if retryAfter <= 0 {
		retryAfter = time.Second
	}

	lim := s.Store.Get(key)
	if lim == nil || lim.Allow() {
		return domain.Decision{Allowed: true}
	}
	return domain.Decision{Allowed: false, RetryAfter: retryAfter}
}
