package lightlab

import (
	"reflect"
)

// Component columns are stored as typed slices ([]T) behind an any so that
// queries can type-assert them without reflection on the hot path. These
// helpers cover the structural operations, which only know the reflect.Type.

func reflectSliceMake(elem reflect.Type, capacity int) any {
	return reflect.MakeSlice(reflect.SliceOf(elem), 0, max(capacity, 1)).Interface()
}

func reflectSliceGet(slice any, idx int) reflect.Value {
	return reflect.ValueOf(slice).Index(idx)
}

func reflectSliceSet(slice any, idx int, val reflect.Value) {
	reflect.ValueOf(slice).Index(idx).Set(val)
}

// reflectSliceClear resets the element at idx to its zero value.
func reflectSliceClear(slice any, idx int) {
	elem := reflect.ValueOf(slice).Index(idx)
	elem.SetZero()
}

func reflectSliceAppend(slice any, val reflect.Value) any {
	return reflect.Append(reflect.ValueOf(slice), val).Interface()
}
