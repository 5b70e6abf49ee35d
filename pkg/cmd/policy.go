package cmd

import "go.uber.org/zap"

// ErrorHandler receives every failed invocation together with its context.
// An error it returns is treated as fatal for that invocation and is handed back
// to the adapter unchanged.
type ErrorHandler func(ctx Context, err error) error

// SetErrorHandler installs fn as the only error sink. Passing nil restores the
// default policy. Only invocations that fail afterwards are affected.
func (r *Registry) SetErrorHandler(fn ErrorHandler) {
	r.errorHandler = fn
}

// HandleError applies the error policy. Without a custom handler it replies
// "Error: <message>" to ctx, unless ctx has already been replied to, in which
// case nothing is sent.
func (r *Registry) HandleError(ctx Context, err error) error {
	if r.errorHandler != nil {
		return r.errorHandler(ctx, err)
	}
	if ctx == nil || ctx.Replied() {
		r.logger.Debug("error reply suppressed", zap.Error(err))
		return nil
	}
	return ctx.Reply("Error: " + err.Error())
}
