package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// Room é uma sala com capacidade fixa.
type Room struct {
	Name     string
	Capacity int
}

func NewRoom(name string, capacity int) (Room, error) {
	if err := checkIdentifier("room name", name); err != nil {
		return Room{}, err
	}
	if capacity <= 0 {
		return Room{}, fmt.Errorf("%w: room capacity must be positive, was %d", ErrInvalidArgument, capacity)
	}
	return Room{Name: name, Capacity: capacity}, nil
}

// CanAdmit reporta se cabe mais um aluno com a ocupação informada.
func (r Room) CanAdmit(occupancy int) bool { return occupancy < r.Capacity }

func (r Room) String() string { return r.Name }

// checkIdentifier exige um identificador não vazio e alfanumérico.
func checkIdentifier(what, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s cannot be blank", ErrInvalidArgument, what)
	}
	for _, r := range v {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return fmt.Errorf("%w: %s must be alphanumeric, was %q", ErrInvalidArgument, what, v)
		}
	}
	return nil
}
