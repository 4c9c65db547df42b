package microbus

import "reflect"

var errType = reflect.TypeOf((*error)(nil)).Elem()

// invoker wraps a subscriber callback together with its derived signature.
// It is the checked replacement for type-erased dispatch: arguments are
// validated against the signature before Call ever runs.
type invoker struct {
	fn         reflect.Value
	sig        Signature
	returnsErr bool
}

// newInvoker validates a handler value and wraps it for dispatch.
// The handler must be a non-nil, non-variadic function returning either
// nothing or a single error.
func newInvoker(fn any) (*invoker, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}

	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return nil, ErrNotFunc
	}
	if v.IsNil() {
		return nil, ErrNilHandler
	}
	if t.IsVariadic() {
		return nil, ErrBadHandlerShape
	}

	returnsErr := false
	switch t.NumOut() {
	case 0:
	case 1:
		if t.Out(0) != errType {
			return nil, ErrBadHandlerShape
		}
		returnsErr = true
	default:
		return nil, ErrBadHandlerShape
	}

	return &invoker{
		fn:         v,
		sig:        signatureOf(t),
		returnsErr: returnsErr,
	}, nil
}

// invoke calls the wrapped function with pre-validated arguments.
// A panic inside the handler propagates to the caller.
func (iv *invoker) invoke(args []reflect.Value) error {
	out := iv.fn.Call(args)
	if iv.returnsErr {
		if err, ok := out[0].Interface().(error); ok && err != nil {
			return err
		}
	}
	return nil
}
