package cmd

import "errors"

var (
	// ErrValidation is returned at registration time for incomplete or unusable
	// command definitions. It is never routed through the error policy.
	ErrValidation = errors.New("invalid command registration")
	// ErrBinding marks arguments that do not match the handler's parameters.
	ErrBinding = errors.New("argument binding failed")
	// ErrConversion marks a failure inside a registered converter.
	ErrConversion = errors.New("argument conversion failed")
	// ErrHandler marks a failure returned or raised by the command handler.
	ErrHandler = errors.New("command handler failed")
)

// Stage identifies where in the invocation pipeline an error happened.
type Stage int

const (
	StageBind Stage = iota
	StageConvert
	StageHandler
)

func (s Stage) String() string {
	switch s {
	case StageBind:
		return "bind"
	case StageConvert:
		return "convert"
	case StageHandler:
		return "handler"
	}
	return "unknown"
}

func (s Stage) sentinel() error {
	switch s {
	case StageBind:
		return ErrBinding
	case StageConvert:
		return ErrConversion
	}
	return ErrHandler
}

// InvocationError is what the error policy receives for a failed invocation.
// Its message is the message of the underlying cause, so replies stay readable;
// errors.Is matches both the stage sentinel and the cause.
type InvocationError struct {
	Stage   Stage
	Command string
	Param   string
	Err     error
}

func (e *InvocationError) Error() string { return e.Err.Error() }

func (e *InvocationError) Unwrap() []error { return []error{e.Stage.sentinel(), e.Err} }
