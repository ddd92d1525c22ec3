package freelist

import "reflect"

// typeHasPointers reports whether values of T contain anything the
// garbage collector needs to trace. Types that do cannot live in an
// off-heap arena.
func typeHasPointers[T any]() bool {
	// TypeOf on a *T keeps interface element types resolvable
	return typeNeedsScan(reflect.TypeOf((*T)(nil)).Elem())
}

func typeNeedsScan(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr, reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return typeNeedsScan(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if typeNeedsScan(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		// Pointers, slices, maps, channels, funcs, interfaces,
		// strings, unsafe pointers.
		return true
	}
}
