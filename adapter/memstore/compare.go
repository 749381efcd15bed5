package memstore

import (
	"bytes"
	"cmp"
	"fmt"
	"math/big"
	"slices"
	"time"

	"github.com/vinicius-lino-figueiredo/mongorm/domain"
	"github.com/vinicius-lino-figueiredo/mongorm/pkg/structure"
)

// compare orders values the way the server sorts mixed types: nil, numbers,
// strings, documents, arrays, binary data, booleans and dates.
func compare(a, b any) (int, error) {
	ra, rb := rank(a), rank(b)
	if ra < 0 || rb < 0 {
		return 0, fmt.Errorf("cannot compare unexpected types %T and %T", a, b)
	}
	if ra != rb {
		return cmp.Compare(ra, rb), nil
	}

	switch at := a.(type) {
	case nil:
		return 0, nil
	case string:
		return cmp.Compare(at, b.(string)), nil
	case domain.Document:
		return compareDoc(at, b.(domain.Document))
	case []any:
		return compareArray(at, b.([]any))
	case []byte:
		return bytes.Compare(at, b.([]byte)), nil
	case bool:
		return compareBool(at, b.(bool)), nil
	case time.Time:
		return at.Compare(b.(time.Time)), nil
	}

	an, _ := asNumber(a)
	bn, _ := asNumber(b)
	return an.Cmp(bn), nil
}

// rank returns the type bracket of v, or -1 for unsupported types.
func rank(v any) int {
	if _, ok := asNumber(v); ok {
		return 1
	}
	switch v.(type) {
	case nil:
		return 0
	case string:
		return 2
	case domain.Document:
		return 3
	case []any:
		return 4
	case []byte:
		return 5
	case bool:
		return 6
	case time.Time:
		return 7
	}
	return -1
}

func compareArray(a, b []any) (int, error) {
	for i := range min(len(a), len(b)) {
		comp, err := compare(a[i], b[i])
		if err != nil || comp != 0 {
			return comp, err
		}
	}

	// Common section was identical, longest one wins
	return cmp.Compare(len(a), len(b)), nil
}

func compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if a {
		return 1
	}
	return -1
}

func compareDoc(a, b domain.Document) (int, error) {
	aKeys := sortedKeys(a)
	bKeys := sortedKeys(b)

	for i := range min(len(aKeys), len(bKeys)) {
		if comp := cmp.Compare(aKeys[i], bKeys[i]); comp != 0 {
			return comp, nil
		}
		comp, err := compare(a[aKeys[i]], b[bKeys[i]])
		if err != nil || comp != 0 {
			return comp, err
		}
	}
	return cmp.Compare(len(aKeys), len(bKeys)), nil
}

func sortedKeys(d domain.Document) []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func asNumber(v any) (*big.Float, bool) {
	r := big.NewFloat(0)
	switch n := v.(type) {
	case int:
		r.SetInt64(int64(n))
	case int8:
		r.SetInt64(int64(n))
	case int16:
		r.SetInt64(int64(n))
	case int32:
		r.SetInt64(int64(n))
	case int64:
		r.SetInt64(n)
	case uint:
		r.SetUint64(uint64(n))
	case uint8:
		r.SetUint64(uint64(n))
	case uint16:
		r.SetUint64(uint64(n))
	case uint32:
		r.SetUint64(uint64(n))
	case uint64:
		r.SetUint64(n)
	case float32:
		r.SetFloat64(float64(n))
	case float64:
		r.SetFloat64(n)
	default:
		return nil, false
	}
	return r, true
}

// equal reports whether two values are equal for matching purposes. Numbers
// of different types are equal when they hold the same value.
func equal(a, b any) bool {
	comp, err := compare(a, b)
	return err == nil && comp == 0
}

// copyAny deep copies documents and lists so stored values never alias
// caller values. Lists of any element type become []any.
func copyAny(v any) any {
	switch t := v.(type) {
	case domain.Document:
		return copyDoc(t)
	case []byte:
		return bytes.Clone(t)
	case nil, string, bool, time.Time, domain.Regex:
		return v
	}
	list, err := structure.List(v)
	if err != nil {
		return v
	}
	for n, itm := range list {
		list[n] = copyAny(itm)
	}
	return list
}

func copyDoc(doc domain.Document) domain.Document {
	res := make(domain.Document, len(doc))
	for k, v := range doc {
		res[k] = copyAny(v)
	}
	return res
}
