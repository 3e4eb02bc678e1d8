package token

import "mctoken/core/types"

// CallContext carries the invocation frame chain for one dispatched
// operation, ordered outermost caller first and the executing ledger last.
// Authorization always resolves the immediate caller rather than the
// originating one so that an intermediate contract cannot launder a
// privileged call on behalf of an unprivileged originator.
type CallContext struct {
	frames []types.Address
}

// NewCallContext builds a context from the supplied frame chain.
func NewCallContext(frames ...types.Address) CallContext {
	return CallContext{frames: append([]types.Address(nil), frames...)}
}

// Push returns a new context extended with one inner frame, used when this
// ledger invokes another ledger instance.
func (c CallContext) Push(frame types.Address) CallContext {
	frames := make([]types.Address, 0, len(c.frames)+1)
	frames = append(frames, c.frames...)
	frames = append(frames, frame)
	return CallContext{frames: frames}
}

// ImmediateCaller resolves the identity of the second-from-innermost frame.
// Chains with fewer than two frames cannot name a caller and fail with
// ErrInvalidContext.
func (c CallContext) ImmediateCaller() (types.Address, error) {
	if len(c.frames) < 2 {
		return types.Address{}, ErrInvalidContext
	}
	return c.frames[len(c.frames)-2], nil
}
