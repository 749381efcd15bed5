package memstore

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vinicius-lino-figueiredo/mongorm/domain"
	"github.com/vinicius-lino-figueiredo/mongorm/pkg/structure"
)

// ErrUnknownOperator is returned when a query uses an operator the in-memory
// store does not implement.
type ErrUnknownOperator struct {
	Operator string
}

// Error implements [error].
func (e ErrUnknownOperator) Error() string {
	return fmt.Sprintf("unknown operator %q", e.Operator)
}

// ErrCompArgType is returned when an operator is called with an argument of
// invalid type.
type ErrCompArgType struct {
	Comp   string
	Want   string
	Actual any
}

// Error implements [error].
func (e ErrCompArgType) Error() string {
	return fmt.Sprintf("%s value should be of type %s, got %T", e.Comp, e.Want, e.Actual)
}

type condFunc func(value any, exists bool, arg any) (bool, error)

var conds map[string]condFunc

func init() {
	conds = map[string]condFunc{
		"$eq":     condEq,
		"$ne":     condNe,
		"$lt":     condOrder(func(c int) bool { return c < 0 }),
		"$lte":    condOrder(func(c int) bool { return c <= 0 }),
		"$gt":     condOrder(func(c int) bool { return c > 0 }),
		"$gte":    condOrder(func(c int) bool { return c >= 0 }),
		"$in":     condIn,
		"$nin":    condNin,
		"$regex":  condRegex,
		"$not":    condNot,
		"$exists": condExists,
	}
}

// match reports whether doc satisfies every field constraint of query.
func match(doc domain.Document, query domain.Document) (bool, error) {
	for field, cond := range query {
		if strings.HasPrefix(field, "$") {
			return false, ErrUnknownOperator{Operator: field}
		}
		value, exists := doc[field]
		ok, err := matchField(value, exists, cond)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchField(value any, exists bool, cond any) (bool, error) {
	ops, isOps := operators(cond)
	if !isOps {
		return condEq(value, exists, cond)
	}
	for op, arg := range ops {
		fn, ok := conds[op]
		if !ok {
			return false, ErrUnknownOperator{Operator: op}
		}
		res, err := fn(value, exists, arg)
		if err != nil || !res {
			return false, err
		}
	}
	return true, nil
}

// operators returns cond as an operator document when every key of it starts
// with '$'.
func operators(cond any) (domain.Document, bool) {
	doc, ok := cond.(domain.Document)
	if !ok || len(doc) == 0 {
		return nil, false
	}
	for k := range doc {
		if !strings.HasPrefix(k, "$") {
			return nil, false
		}
	}
	return doc, true
}

// candidates returns the value itself followed by its elements when it is a
// list, since list fields match when any element does.
func candidates(value any) []any {
	if list, ok := value.([]any); ok {
		return append([]any{value}, list...)
	}
	return []any{value}
}

func condEq(value any, exists bool, arg any) (bool, error) {
	if !exists {
		return arg == nil, nil
	}
	for _, v := range candidates(value) {
		if equal(v, arg) {
			return true, nil
		}
	}
	return false, nil
}

func condNe(value any, exists bool, arg any) (bool, error) {
	eq, err := condEq(value, exists, arg)
	return !eq, err
}

func condOrder(accept func(int) bool) condFunc {
	return func(value any, exists bool, arg any) (bool, error) {
		if !exists {
			return false, nil
		}
		for _, v := range candidates(value) {
			// only values of the same type bracket are comparable
			if v == nil || arg == nil || rank(v) != rank(arg) {
				continue
			}
			c, err := compare(v, arg)
			if err != nil {
				return false, err
			}
			if accept(c) {
				return true, nil
			}
		}
		return false, nil
	}
}

func condIn(value any, exists bool, arg any) (bool, error) {
	list, err := structure.List(arg)
	if err != nil {
		return false, ErrCompArgType{Comp: "$in", Want: "list", Actual: arg}
	}
	for _, item := range list {
		if ok, _ := condEq(value, exists, item); ok {
			return true, nil
		}
	}
	return false, nil
}

func condNin(value any, exists bool, arg any) (bool, error) {
	in, err := condIn(value, exists, arg)
	if err != nil {
		return false, ErrCompArgType{Comp: "$nin", Want: "list", Actual: arg}
	}
	return !in, nil
}

func condRegex(value any, exists bool, arg any) (bool, error) {
	re, err := compileRegex(arg)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	for _, v := range candidates(value) {
		if s, ok := v.(string); ok && re.MatchString(s) {
			return true, nil
		}
	}
	return false, nil
}

func condNot(value any, exists bool, arg any) (bool, error) {
	var res bool
	var err error
	switch arg.(type) {
	case domain.Regex, *regexp.Regexp:
		res, err = condRegex(value, exists, arg)
	default:
		ops, ok := operators(arg)
		if !ok {
			return false, ErrCompArgType{Comp: "$not", Want: "regex or operators", Actual: arg}
		}
		res, err = matchField(value, exists, ops)
	}
	return !res, err
}

func condExists(_ any, exists bool, arg any) (bool, error) {
	return exists == structure.Truthy(arg), nil
}

func compileRegex(arg any) (*regexp.Regexp, error) {
	switch t := arg.(type) {
	case *regexp.Regexp:
		return t, nil
	case domain.Regex:
		pattern := t.Pattern
		if flags := regexFlags(t.Options); flags != "" {
			pattern = "(?" + flags + ")" + pattern
		}
		return regexp.Compile(pattern)
	case string:
		return regexp.Compile(t)
	}
	return nil, ErrCompArgType{Comp: "$regex", Want: "regex", Actual: arg}
}

// regexFlags keeps the options understood by Go regular expressions.
func regexFlags(options string) string {
	var b strings.Builder
	for _, r := range options {
		switch r {
		case 'i', 'm', 's':
			b.WriteRune(r)
		}
	}
	return b.String()
}
