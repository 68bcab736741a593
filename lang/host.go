package lang

import (
	"log/slog"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Invokable is a resolved host member, already bound to its target. The
// evaluator calls it with the eagerly evaluated arguments.
type Invokable func(args []any) (any, error)

// Binder is the abstract host-dispatch capability consumed by static and
// instance member invocation. The evaluator core depends only on this shape,
// not on any concrete introspection mechanism: an implementation may use
// reflection, static dispatch tables, or anything else.
//
// ResolveType maps a dotted type path to an opaque type handle.
//
// ResolveMember resolves a named member against a target, which is either a
// type handle (static surface) or a receiver instance. A nil argTypes slice
// requests resolution by name only; a non-nil slice asks the binder to match
// the member's signature against the argument types, disambiguating
// overloads where the host supports them. A nil element denotes a null
// argument. In both cases the binder falls back to a property accessor when
// no method matches.
type Binder interface {
	ResolveType(path []string) (any, bool)
	ResolveMember(target any, name string, argTypes []reflect.Type) (Invokable, bool)
}

// Registry is a reflection-backed Binder. Host types are registered under
// dotted names before evaluation begins; the static surface of a registered
// type is the method and field set of the registered value, and the instance
// surface is the method and field set of a receiver's runtime type.
//
// Registration is setup-phase only and is not safe for concurrent mutation.
type Registry struct {
	types map[string]any
}

// NewRegistry creates an empty host type registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]any)}
}

// RegisterType registers a host value under a dotted type name. Its methods
// become the type's static surface. Registering a name twice is a setup
// error.
func (r *Registry) RegisterType(name string, value any) error {
	if _, ok := r.types[name]; ok {
		return ErrBindingRedefined.With(slog.String("type", name))
	}

	r.types[name] = value

	return nil
}

// ResolveType implements Binder.
func (r *Registry) ResolveType(path []string) (any, bool) {
	v, ok := r.types[strings.Join(path, ".")]

	return v, ok
}

// ResolveMember implements Binder. Methods are tried first: by name only
// when argTypes is nil, or by name and signature compatibility otherwise.
// When no method matches, an exported field of the same name serves as a
// property accessor taking zero arguments or one index argument.
func (r *Registry) ResolveMember(
	target any,
	name string,
	argTypes []reflect.Type,
) (Invokable, bool) {
	if target == nil {
		return nil, false
	}

	rv := reflect.ValueOf(target)

	if m, ok := methodByName(rv, name); ok {
		if argTypes == nil || signatureAccepts(m.Type(), argTypes) {
			return invokeMethod(m), true
		}
	}

	if f, ok := fieldByName(rv, name); ok {
		return propertyAccessor(f), true
	}

	return nil, false
}

// exportedName maps a lexical member name onto Go's exported-identifier
// convention by upcasing the first rune. The exact name is preferred when it
// resolves.
func exportedName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}

	return string(unicode.ToUpper(r)) + name[size:]
}

func methodByName(rv reflect.Value, name string) (reflect.Value, bool) {
	if m := rv.MethodByName(name); m.IsValid() {
		return m, true
	}

	if m := rv.MethodByName(exportedName(name)); m.IsValid() {
		return m, true
	}

	return reflect.Value{}, false
}

func fieldByName(rv reflect.Value, name string) (reflect.Value, bool) {
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, false
		}

		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}

	if f := rv.FieldByName(name); f.IsValid() {
		return f, true
	}

	if f := rv.FieldByName(exportedName(name)); f.IsValid() {
		return f, true
	}

	return reflect.Value{}, false
}

// signatureAccepts reports whether a method signature can be called with the
// given argument types. A nil argument type (null argument) is accepted by
// any nilable parameter.
func signatureAccepts(mt reflect.Type, argTypes []reflect.Type) bool {
	if mt.IsVariadic() {
		if len(argTypes) < mt.NumIn()-1 {
			return false
		}
	} else if len(argTypes) != mt.NumIn() {
		return false
	}

	for i, at := range argTypes {
		var pt reflect.Type
		if mt.IsVariadic() && i >= mt.NumIn()-1 {
			pt = mt.In(mt.NumIn() - 1).Elem()
		} else {
			pt = mt.In(i)
		}

		if at == nil {
			if !nilable(pt) {
				return false
			}

			continue
		}

		if !at.AssignableTo(pt) && !at.ConvertibleTo(pt) {
			return false
		}
	}

	return true
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map,
		reflect.Pointer, reflect.Slice:
		return true
	default:
		return false
	}
}

// invokeMethod adapts a bound reflect method to the Invokable shape,
// converting arguments and unwrapping a trailing error result.
func invokeMethod(m reflect.Value) Invokable {
	return func(args []any) (any, error) {
		mt := m.Type()

		in := make([]reflect.Value, len(args))

		for i, arg := range args {
			var pt reflect.Type
			if mt.IsVariadic() && i >= mt.NumIn()-1 {
				pt = mt.In(mt.NumIn() - 1).Elem()
			} else if i < mt.NumIn() {
				pt = mt.In(i)
			} else {
				return nil, ErrArityMismatch.
					With(slog.Int("expected", mt.NumIn())).
					With(slog.Int("got", len(args)))
			}

			if arg == nil {
				in[i] = reflect.Zero(pt)

				continue
			}

			av := reflect.ValueOf(arg)
			if !av.Type().AssignableTo(pt) {
				if !av.Type().ConvertibleTo(pt) {
					return nil, ErrTypeMismatch.
						With(slog.Int("argument", i)).
						With(slog.String("expected", pt.String())).
						With(slog.String("got", av.Type().String()))
				}

				av = av.Convert(pt)
			}

			in[i] = av
		}

		if !mt.IsVariadic() && len(in) != mt.NumIn() {
			return nil, ErrArityMismatch.
				With(slog.Int("expected", mt.NumIn())).
				With(slog.Int("got", len(in)))
		}

		return unwrapResults(m.Call(in))
	}
}

// propertyAccessor adapts a struct field read to the Invokable shape. With no
// arguments it returns the field value. A single argument reads one element
// of an indexable field: an integer offset for slices and arrays, or a key
// for maps.
func propertyAccessor(f reflect.Value) Invokable {
	return func(args []any) (any, error) {
		switch len(args) {
		case 0:
			return f.Interface(), nil

		case 1:
			return indexProperty(f, args[0])

		default:
			return nil, ErrArityMismatch.
				With(slog.Int("expected", 1)).
				With(slog.Int("got", len(args)))
		}
	}
}

// indexProperty reads one element of an indexable property field.
func indexProperty(f reflect.Value, arg any) (any, error) {
	for f.Kind() == reflect.Pointer {
		if f.IsNil() {
			return nil, ErrTypeMismatch.
				With(slog.String("property", "nil pointer"))
		}

		f = f.Elem()
	}

	switch f.Kind() {
	case reflect.Slice, reflect.Array:
		av := reflect.ValueOf(arg)
		if arg == nil || !av.CanInt() {
			return nil, ErrTypeMismatch.
				With(slog.String("expected", "integer index")).
				With(slog.String("got", typeName(arg)))
		}

		i := av.Int()
		if i < 0 || i >= int64(f.Len()) {
			return nil, ErrTypeMismatch.
				With(slog.Int64("index", i)).
				With(slog.Int("length", f.Len()))
		}

		return f.Index(int(i)).Interface(), nil

	case reflect.Map:
		if arg == nil {
			return nil, ErrTypeMismatch.
				With(slog.String("expected", f.Type().Key().String())).
				With(slog.String("got", "null"))
		}

		kv := reflect.ValueOf(arg)

		kt := f.Type().Key()
		if !kv.Type().AssignableTo(kt) {
			if !kv.Type().ConvertibleTo(kt) {
				return nil, ErrTypeMismatch.
					With(slog.String("expected", kt.String())).
					With(slog.String("got", kv.Type().String()))
			}

			kv = kv.Convert(kt)
		}

		v := f.MapIndex(kv)
		if !v.IsValid() {
			return nil, nil
		}

		return v.Interface(), nil

	default:
		return nil, ErrTypeMismatch.
			With(slog.String("property", f.Type().String())).
			With(slog.String("reason", "not indexable"))
	}
}

// unwrapResults converts reflect call results into (value, error). A single
// trailing error result is unwrapped; multiple values beyond that are
// returned as a slice.
func unwrapResults(out []reflect.Value) (any, error) {
	var err error

	if n := len(out); n > 0 {
		last := out[n-1]
		if last.Type().Implements(errorType) {
			if !last.IsNil() {
				err = last.Interface().(error)
			}

			out = out[:n-1]
		}
	}

	switch len(out) {
	case 0:
		return nil, err
	case 1:
		return out[0].Interface(), err
	default:
		vals := make([]any, len(out))
		for i, v := range out {
			vals[i] = v.Interface()
		}

		return vals, err
	}
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()
