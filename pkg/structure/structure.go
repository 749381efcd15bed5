// Package structure contains type-related operations, such as iterating over a
// list of any type, converting numbers and evaluating truthiness.
package structure

import (
	"errors"
	"iter"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/goccy/go-reflect"
)

var (
	// ErrNilObj may be returned by [Seq] when a nil value is passed as
	// argument.
	ErrNilObj = errors.New("nil object")
)

// ErrorNonList is returned by [Seq] when a value that is neither a slice
// nor a array is passed as argument.
type ErrorNonList struct {
	Type reflect.Type
}

func (e ErrorNonList) Error() string {
	return "value of type " + e.Type.String() + " is not a list"
}

// Seq returns an iterator over a slice or array of any type.
func Seq(obj any) (iter.Seq[any], int, error) {
	if obj == nil {
		return nil, 0, ErrNilObj
	}
	if i, length, err := fastPathList(obj); err != nil || i != nil {
		return i, length, err
	}
	return iterReflect(obj)
}

// List copies a slice or array of any type into a []any.
func List(obj any) ([]any, error) {
	seq, length, err := Seq(obj)
	if err != nil {
		return nil, err
	}
	res := make([]any, 0, length)
	for v := range seq {
		res = append(res, v)
	}
	return res, nil
}

func fastPathList(obj any) (iter.Seq[any], int, error) {
	if err := checkPrimitive(obj); err != nil {
		return nil, 0, err
	}
	return checkLists(obj)
}

func checkPrimitive(obj any) error {
	switch obj.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint16, uint32, uint64,
		float32, float64,
		time.Time, *regexp.Regexp, []byte, map[string]any:
		return ErrorNonList{Type: reflect.TypeOf(obj)}
	default:
		return nil
	}
}

func checkLists(obj any) (iter.Seq[any], int, error) {
	switch t := obj.(type) {
	case []any:
		return iterSlice(t), len(t), nil
	case []string:
		return iterSlice(t), len(t), nil
	case []bool:
		return iterSlice(t), len(t), nil
	case []int:
		return iterSlice(t), len(t), nil
	case []int32:
		return iterSlice(t), len(t), nil
	case []int64:
		return iterSlice(t), len(t), nil
	case []float64:
		return iterSlice(t), len(t), nil
	case []time.Time:
		return iterSlice(t), len(t), nil
	}
	return nil, 0, nil
}

func iterReflect(obj any) (iter.Seq[any], int, error) {
	v := reflect.ValueNoEscapeOf(obj)
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
	default:
		return nil, 0, ErrorNonList{Type: v.Type()}
	}
	length := v.Len()
	return func(yield func(any) bool) {
		for n := range length {
			if !yield(v.Index(n).Interface()) {
				return
			}
		}
	}, length, nil
}

func iterSlice[T any](m []T) iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, v := range m {
			if !yield(v) {
				return
			}
		}
	}
}

// AsInteger converts any built-in number to int64 and returns a flag that
// informs if the argument is a valid integer.
func AsInteger(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case uint:
		return int64(t), true
	case uint8:
		return int64(t), true
	case uint16:
		return int64(t), true
	case uint32:
		return int64(t), true
	case uint64:
		if t > math.MaxInt64 {
			return 0, false
		}
		return int64(t), true
	case float32:
		if trunc := math.Trunc(float64(t)); trunc == float64(t) {
			return int64(trunc), true
		}
		return 0, false
	case float64:
		if trunc := math.Trunc(t); trunc == t && !math.IsInf(t, 0) {
			return int64(trunc), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// AsFloat converts any built-in number to float64.
func AsFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	}
	if i, ok := AsInteger(v); ok {
		return float64(i), true
	}
	return 0, false
}

var falseStrings = map[string]struct{}{
	"": {}, "0": {}, "false": {}, "f": {}, "no": {}, "n": {}, "off": {},
}

// Truthy reports whether v counts as true. nil, false, numeric zero, empty
// strings, strings such as "0" or "false", empty lists and maps and the zero
// time are false.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		_, isFalse := falseStrings[strings.ToLower(strings.TrimSpace(t))]
		return !isFalse
	case []byte:
		return len(t) > 0
	case time.Time:
		return !t.IsZero()
	}
	if f, ok := AsFloat(v); ok {
		return f != 0
	}

	rv := reflect.ValueNoEscapeOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String:
		return rv.Len() > 0
	case reflect.Ptr, reflect.Interface:
		return !rv.IsNil()
	}
	return !rv.IsZero()
}
