// Package engerr defines the domain error taxonomy shared by the engine
// and the network layer. Kinds are classification tags, not distinct Go
// types, so callers dispatch with errors.As + a switch on Kind.
package engerr

import "fmt"

// Kind classifies a domain error for dispatch by callers (e.g. the
// network layer decides whether to log-and-disconnect or just reply).
type Kind int

const (
	InvalidAction Kind = iota
	InvalidTarget
	InsufficientCards
	SkillNotFound
	SkillCondition
	SkillCooldown
	SkillUsageLimit
	GameNotStarted
	GameAlreadyFinished
	InvalidPhase
	PlayerDead
	NotPlayerTurn
	InvalidPhaseTransition
	DataLoadError
	ConfigurationError
	Protocol
)

func (k Kind) String() string {
	switch k {
	case InvalidAction:
		return "InvalidAction"
	case InvalidTarget:
		return "InvalidTarget"
	case InsufficientCards:
		return "InsufficientCards"
	case SkillNotFound:
		return "SkillNotFound"
	case SkillCondition:
		return "SkillCondition"
	case SkillCooldown:
		return "SkillCooldown"
	case SkillUsageLimit:
		return "SkillUsageLimit"
	case GameNotStarted:
		return "GameNotStarted"
	case GameAlreadyFinished:
		return "GameAlreadyFinished"
	case InvalidPhase:
		return "InvalidPhase"
	case PlayerDead:
		return "PlayerDead"
	case NotPlayerTurn:
		return "NotPlayerTurn"
	case InvalidPhaseTransition:
		return "InvalidPhaseTransition"
	case DataLoadError:
		return "DataLoadError"
	case ConfigurationError:
		return "ConfigurationError"
	case Protocol:
		return "Protocol"
	default:
		return "Unknown"
	}
}

// DomainError is a recoverable, user-action-scoped failure. Raising one
// never mutates engine state; the caller is expected to report it and
// move on (spec'd in the error handling design: "recoverable user-action
// errors stay local to the action").
type DomainError struct {
	Kind    Kind
	Message string
	Fields  map[string]any
}

func New(kind Kind, message string, fields ...map[string]any) *DomainError {
	e := &DomainError{Kind: kind, Message: message}
	if len(fields) > 0 {
		e.Fields = fields[0]
	}
	return e
}

func (e *DomainError) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is lets callers use errors.Is(err, engerr.InvalidAction) by wrapping
// the Kind in a lightweight sentinel comparison.
func (e *DomainError) Is(target error) bool {
	other, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// Sentinel returns a zero-message DomainError of the given kind, useful
// as an errors.Is target: engerr.Sentinel(engerr.InvalidTarget).
func Sentinel(kind Kind) *DomainError {
	return &DomainError{Kind: kind}
}

// Fatal marks engine-invariant violations that are bugs, not user
// errors (e.g. InvalidPhaseTransition). The engine panics with these
// rather than returning them, per the error handling design.
type Fatal struct {
	Kind    Kind
	Message string
}

func (f *Fatal) Error() string {
	return fmt.Sprintf("fatal engine invariant violated (%s): %s", f.Kind, f.Message)
}

// Panic raises a Fatal for an engine-invariant violation.
func Panic(kind Kind, format string, args ...any) {
	panic(&Fatal{Kind: kind, Message: fmt.Sprintf(format, args...)})
}
