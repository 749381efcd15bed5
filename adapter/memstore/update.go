package memstore

import (
	"fmt"
	"math"
	"strings"

	"github.com/vinicius-lino-figueiredo/mongorm/domain"
	"github.com/vinicius-lino-figueiredo/mongorm/pkg/structure"
)

// ErrModQuery is returned when an update does not match the expected
// mongo-like structure.
type ErrModQuery struct {
	Reason string
}

// Error implements [error].
func (e ErrModQuery) Error() string {
	return fmt.Sprintf("invalid modification query: %s", e.Reason)
}

// ErrModFieldType is returned when a modifier runs on a field of a type that
// is not accepted.
type ErrModFieldType struct {
	Mod    string
	Want   string
	Actual any
}

// Error implements [error].
func (e ErrModFieldType) Error() string {
	return fmt.Sprintf("%s expects %s field, got %T", e.Mod, e.Want, e.Actual)
}

type modFunc func(doc domain.Document, field string, arg any) error

var mods = map[string]modFunc{
	"$set":   modSet,
	"$unset": modUnset,
	"$inc":   modInc,
}

// modify returns a modified copy of doc. $setOnInsert is only applied when
// inserting is true.
func modify(doc domain.Document, update domain.Document, inserting bool) (domain.Document, error) {
	if len(update) == 0 {
		return nil, ErrModQuery{Reason: "empty update"}
	}
	res := copyDoc(doc)
	for name, arg := range update {
		if !strings.HasPrefix(name, "$") {
			return nil, ErrModQuery{Reason: "replacement documents are not supported"}
		}
		fields, ok := arg.(domain.Document)
		if !ok {
			return nil, ErrModQuery{Reason: name + " expects a document"}
		}
		mod := mods[name]
		if name == "$setOnInsert" {
			if !inserting {
				continue
			}
			mod = modSet
		}
		if mod == nil {
			return nil, ErrUnknownOperator{Operator: name}
		}
		for field, v := range fields {
			if field == "_id" && !inserting {
				return nil, ErrModQuery{Reason: "_id is immutable"}
			}
			if err := mod(res, field, v); err != nil {
				return nil, fmt.Errorf("modifying field %q: %w", field, err)
			}
		}
	}
	return res, nil
}

func modSet(doc domain.Document, field string, arg any) error {
	doc[field] = copyAny(arg)
	return nil
}

func modUnset(doc domain.Document, field string, _ any) error {
	delete(doc, field)
	return nil
}

func modInc(doc domain.Document, field string, arg any) error {
	current, exists := doc[field]
	if !exists || current == nil {
		current = int64(0)
	}

	ci, cIsInt := structure.AsInteger(current)
	ai, aIsInt := structure.AsInteger(arg)
	_, cIsFloat := current.(float64)
	_, aIsFloat := arg.(float64)
	if cIsInt && aIsInt && !cIsFloat && !aIsFloat {
		if (ai > 0 && ci > math.MaxInt64-ai) || (ai < 0 && ci < math.MinInt64-ai) {
			return ErrModFieldType{Mod: "$inc", Want: "non overflowing integer", Actual: current}
		}
		doc[field] = ci + ai
		return nil
	}

	cf, ok := structure.AsFloat(current)
	if !ok {
		return ErrModFieldType{Mod: "$inc", Want: "number", Actual: current}
	}
	af, ok := structure.AsFloat(arg)
	if !ok {
		return ErrModFieldType{Mod: "$inc", Want: "number", Actual: arg}
	}
	doc[field] = cf + af
	return nil
}

// upsertBase builds the document inserted by an upsert from the equality
// constraints of the query.
func upsertBase(query domain.Document) domain.Document {
	doc := make(domain.Document, len(query))
	for field, cond := range query {
		ops, isOps := operators(cond)
		if !isOps {
			doc[field] = copyAny(cond)
			continue
		}
		if v, ok := ops["$eq"]; ok {
			doc[field] = copyAny(v)
		}
	}
	return doc
}
