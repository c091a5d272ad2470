package game

import (
	"errors"
	"fmt"
)

// CommandKind names an inbound command
type CommandKind string

const (
	CommandAdjustBet          CommandKind = "adjust_bet"
	CommandConfirmBet         CommandKind = "confirm_bet"
	CommandAllIn              CommandKind = "all_in"
	CommandHit                CommandKind = "hit"
	CommandStand              CommandKind = "stand"
	CommandEnterWildDigit     CommandKind = "wild_digit"
	CommandBackspaceWildInput CommandKind = "wild_backspace"
	CommandSubmitWildInput    CommandKind = "wild_submit"
	CommandSubmitWildValue    CommandKind = "wild_value"
	CommandAdvanceRound       CommandKind = "advance_round"
	CommandRestartGame        CommandKind = "restart_game"
	CommandRequestRestart     CommandKind = "request_restart"
	CommandConfirmRestart     CommandKind = "confirm_restart"
	CommandCancelRestart      CommandKind = "cancel_restart"
)

// ErrUnknownCommand is returned by Apply for a kind it does not recognise.
var ErrUnknownCommand = errors.New("unknown command")

// Command is the serialisable form of a Session command, used by the frame
// driver's queue and the websocket transport.
type Command struct {
	Kind   CommandKind `json:"kind"`
	Amount int         `json:"amount,omitempty"`
	Digit  string      `json:"digit,omitempty"`
	Text   string      `json:"text,omitempty"`
}

// Apply dispatches cmd to the matching Session method.
func (s *Session) Apply(cmd Command) error {
	switch cmd.Kind {
	case CommandAdjustBet:
		return s.AdjustBet(cmd.Amount)
	case CommandConfirmBet:
		return s.ConfirmBet(cmd.Amount)
	case CommandAllIn:
		return s.AllIn()
	case CommandHit:
		return s.Hit()
	case CommandStand:
		return s.Stand()
	case CommandEnterWildDigit:
		runes := []rune(cmd.Digit)
		if len(runes) != 1 {
			return fmt.Errorf("%w: digit %q must be a single character", ErrInvalidWildInput, cmd.Digit)
		}
		return s.EnterWildDigit(runes[0])
	case CommandBackspaceWildInput:
		return s.BackspaceWildInput()
	case CommandSubmitWildInput:
		return s.SubmitWildInput()
	case CommandSubmitWildValue:
		return s.SubmitWildValue(cmd.Text)
	case CommandAdvanceRound:
		return s.AdvanceRound()
	case CommandRestartGame:
		return s.RestartGame()
	case CommandRequestRestart:
		return s.RequestRestart()
	case CommandConfirmRestart:
		return s.ConfirmRestart()
	case CommandCancelRestart:
		return s.CancelRestart()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Kind)
	}
}

// IsRecoverable reports whether err is one of the command outcomes that
// leave the session unchanged.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrInvalidPhase) ||
		errors.Is(err, ErrInvalidBet) ||
		errors.Is(err, ErrInvalidWildInput) ||
		errors.Is(err, ErrUnknownCommand)
}
