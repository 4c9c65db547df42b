package microbus

import (
	"reflect"
	"strings"
)

// Signature is the ordered list of argument types an event carries.
// The first subscriber for an event name fixes that name's signature; every
// later subscribe and every trigger is checked against it.
type Signature []reflect.Type

// String returns the signature in call syntax, e.g. "(float64, int)".
func (s Signature) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, t := range s {
		if i > 0 {
			b.WriteString(", ")
		}
		if t == nil {
			b.WriteString("<nil>")
			continue
		}
		b.WriteString(t.String())
	}
	b.WriteByte(')')
	return b.String()
}

// equal reports whether two signatures name exactly the same types.
func (s Signature) equal(other Signature) bool {
	if len(s) != len(other) {
		return false
	}
	for i, t := range s {
		if t != other[i] {
			return false
		}
	}
	return true
}

// signatureOf derives the Signature from a handler function type.
func signatureOf(t reflect.Type) Signature {
	if t.NumIn() == 0 {
		return nil
	}
	sig := make(Signature, t.NumIn())
	for i := range sig {
		sig[i] = t.In(i)
	}
	return sig
}

// payload carries trigger arguments reflected exactly once, so the loop
// worker can dispatch without knowing argument types at the call site.
// An untyped nil argument is recorded with a nil type entry.
type payload struct {
	values []reflect.Value
	types  Signature
}

// newPayload materializes trigger arguments into a payload.
func newPayload(args []any) *payload {
	p := &payload{
		values: make([]reflect.Value, len(args)),
		types:  make(Signature, len(args)),
	}
	for i, a := range args {
		if a == nil {
			continue
		}
		v := reflect.ValueOf(a)
		p.values[i] = v
		p.types[i] = v.Type()
	}
	return p
}

// signature returns the argument types for error reporting.
func (p *payload) signature() Signature {
	return p.types
}

// conformsTo reports whether the payload's arguments can be passed to a
// handler with the given signature. Typed arguments must be assignable to
// the corresponding parameter; an untyped nil is accepted for any parameter
// kind that has a nil value.
func (p *payload) conformsTo(sig Signature) bool {
	if len(p.types) != len(sig) {
		return false
	}
	for i, t := range p.types {
		if t == nil {
			if !nilable(sig[i]) {
				return false
			}
			continue
		}
		if !t.AssignableTo(sig[i]) {
			return false
		}
	}
	return true
}

// argValues adapts the payload to a handler signature, substituting typed
// zero values for untyped nil arguments. conformsTo must hold.
func (p *payload) argValues(sig Signature) []reflect.Value {
	args := make([]reflect.Value, len(sig))
	for i, v := range p.values {
		if !v.IsValid() {
			args[i] = reflect.Zero(sig[i])
			continue
		}
		args[i] = v
	}
	return args
}

// nilable reports whether nil is a valid value for the type.
func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map,
		reflect.Pointer, reflect.Slice, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}
