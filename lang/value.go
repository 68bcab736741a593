package lang

import (
	"reflect"

	"github.com/shopspring/decimal"
)

// typeOf returns the runtime type of a value, or nil for a null value.
func typeOf(v any) reflect.Type {
	if v == nil {
		return nil
	}

	return reflect.TypeOf(v)
}

// typeName returns the runtime type name of a value for diagnostics.
func typeName(v any) string {
	if v == nil {
		return "null"
	}

	return reflect.TypeOf(v).String()
}

// isPrimitiveValue reports whether v is a primitive value type for the
// purposes of the "if" test: numeric kinds and plain value structs qualify,
// while strings, lists, maps, pointers, and quoted expressions do not.
// Booleans are handled before this check applies.
func isPrimitiveValue(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.Struct, reflect.Array:
		return true
	default:
		return false
	}
}

// equalValues reports value equality between two runtime values.
// Null equals only null. Decimal values compare by numeric value so scale
// differences (1.5 vs 1.50) do not break equality. Everything else uses
// structural equality.
func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	da, aok := a.(decimal.Decimal)
	db, bok := b.(decimal.Decimal)

	if aok && bok {
		return da.Equal(db)
	}

	return reflect.DeepEqual(a, b)
}
