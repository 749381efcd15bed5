// Package translator contains the default implementation of
// [domain.Translator], turning filter clauses into mongo-like predicate
// documents.
package translator

import (
	"maps"
	"regexp"
	"strings"

	"github.com/vinicius-lino-figueiredo/mongorm/domain"
	"github.com/vinicius-lino-figueiredo/mongorm/pkg/structure"
)

// Native operators emitted by the translator.
const (
	Eq    = "$eq"
	Ne    = "$ne"
	Lt    = "$lt"
	Lte   = "$lte"
	Gt    = "$gt"
	Gte   = "$gte"
	In    = "$in"
	Nin   = "$nin"
	Regex = "$regex"
	Not   = "$not"
)

type fragmentFunc func(operand any) (any, error)

// Translator implements [domain.Translator].
type Translator struct {
	table map[domain.Operator]fragmentFunc
}

// NewTranslator returns a new implementation of [domain.Translator].
func NewTranslator() domain.Translator {
	t := &Translator{}
	t.table = map[domain.Operator]fragmentFunc{
		domain.OpEq:       t.direct,
		domain.OpNe:       t.compare(Ne),
		domain.OpLt:       t.compare(Lt),
		domain.OpLte:      t.compare(Lte),
		domain.OpGt:       t.compare(Gt),
		domain.OpGte:      t.compare(Gte),
		domain.OpIn:       t.set(domain.OpIn, In),
		domain.OpNotIn:    t.set(domain.OpNotIn, Nin),
		domain.OpLike:     t.pattern(domain.OpLike, "", false),
		domain.OpILike:    t.pattern(domain.OpILike, "i", false),
		domain.OpNotLike:  t.pattern(domain.OpNotLike, "", true),
		domain.OpNotILike: t.pattern(domain.OpNotILike, "i", true),
	}
	return t
}

// Translate implements [domain.Translator].
func (t *Translator) Translate(filter domain.Filter) (domain.Document, error) {
	res := make(domain.Document, len(filter))
	// fields whose current fragment is a direct value instead of an
	// operator document
	direct := make(map[string]bool, len(filter))

	for _, clause := range filter {
		fn, ok := t.table[clause.Operator]
		if !ok {
			return nil, domain.ErrUnknownOperator{Operator: clause.Operator}
		}
		frag, err := fn(clause.Value)
		if err != nil {
			return nil, err
		}
		isDirect := clause.Operator == domain.OpEq

		current, exists := res[clause.Field]
		if !exists {
			res[clause.Field] = frag
			direct[clause.Field] = isDirect
			continue
		}

		merged := t.asOperators(current, direct[clause.Field])
		maps.Copy(merged, t.asOperators(frag, isDirect))
		res[clause.Field] = merged
		direct[clause.Field] = false
	}

	return res, nil
}

// asOperators returns a copy of the fragment as an operator document, so
// merging never changes a fragment that was already returned.
func (t *Translator) asOperators(frag any, isDirect bool) domain.Document {
	if isDirect {
		return domain.Document{Eq: frag}
	}
	return maps.Clone(frag.(domain.Document))
}

func (t *Translator) direct(operand any) (any, error) {
	return operand, nil
}

func (t *Translator) compare(op string) fragmentFunc {
	return func(operand any) (any, error) {
		return domain.Document{op: operand}, nil
	}
}

func (t *Translator) set(name domain.Operator, op string) fragmentFunc {
	return func(operand any) (any, error) {
		list, err := structure.List(operand)
		if err != nil {
			return nil, domain.ErrOperandType{Operator: name, Want: "list", Actual: operand}
		}
		return domain.Document{op: list}, nil
	}
}

func (t *Translator) pattern(name domain.Operator, options string, negate bool) fragmentFunc {
	return func(operand any) (any, error) {
		s, ok := operand.(string)
		if !ok {
			return nil, domain.ErrOperandType{Operator: name, Want: "string", Actual: operand}
		}
		re := domain.Regex{Pattern: Pattern(s), Options: options}
		if negate {
			return domain.Document{Not: re}, nil
		}
		return domain.Document{Regex: re}, nil
	}
}

// Pattern converts a SQL-like pattern into a regular expression. Every "%"
// becomes ".*" and the remaining text is matched literally. The result is not
// anchored.
func Pattern(like string) string {
	parts := strings.Split(like, "%")
	for n, part := range parts {
		parts[n] = regexp.QuoteMeta(part)
	}
	return strings.Join(parts, ".*")
}
