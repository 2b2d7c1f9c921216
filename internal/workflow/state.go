package workflow

import "github.com/google/uuid"

// State: состояние сессии заказа.
type State string

const (
	StateInit          State = "init"
	StateFetching      State = "fetching"
	StateSyncing       State = "syncing"
	StateAwaitingInput State = "awaiting_input"
	StateValidating    State = "validating"
	StateSubmitting    State = "submitting"
	StateDone          State = "done"
	StateAborted       State = "aborted"
)

var transitions = map[State][]State{
	StateInit:          {StateFetching, StateAborted},
	StateFetching:      {StateSyncing, StateAborted},
	StateSyncing:       {StateAwaitingInput, StateAborted},
	StateAwaitingInput: {StateValidating, StateAborted},
	StateValidating:    {StateAwaitingInput, StateSubmitting, StateAborted},
	StateSubmitting:    {StateDone, StateAborted},
}

// Terminal сообщает, что из состояния нет переходов.
func (s State) Terminal() bool {
	return s == StateDone || s == StateAborted
}

// CanTransition проверяет, допустим ли переход from → to.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Outcome: итог сессии. State всегда терминальное.
type Outcome struct {
	State   State
	OrderID uuid.UUID
	// Err равен nil для StateDone.
	Err error
}

// ExitCode переводит исход в код завершения процесса.
func (o Outcome) ExitCode() int {
	if o.State == StateDone {
		return 0
	}
	return 1
}
