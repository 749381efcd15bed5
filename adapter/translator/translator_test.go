package translator

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/mongorm/domain"
)

type M = domain.Document

type A = []any

type TranslatorTestSuite struct {
	suite.Suite
	tr *Translator
}

func (s *TranslatorTestSuite) SetupTest() {
	s.tr = NewTranslator().(*Translator)
}

func (s *TranslatorTestSuite) translate(f ...domain.Clause) M {
	res, err := s.tr.Translate(f)
	s.Require().NoError(err)
	return res
}

func (s *TranslatorTestSuite) TestEmptyFilter() {
	s.Equal(M{}, s.translate())
}

func (s *TranslatorTestSuite) TestOperatorTable() {
	cases := []struct {
		op   domain.Operator
		val  any
		want any
	}{
		{op: "=", val: "ol", want: "ol"},
		{op: "!=", val: "ol", want: M{"$ne": "ol"}},
		{op: "<", val: 1, want: M{"$lt": 1}},
		{op: "<=", val: 1, want: M{"$lte": 1}},
		{op: ">", val: 1, want: M{"$gt": 1}},
		{op: ">=", val: 1, want: M{"$gte": 1}},
		{op: "in", val: []int{1, 2, 3}, want: M{"$in": A{1, 2, 3}}},
		{op: "not in", val: []int64{1}, want: M{"$nin": A{int64(1)}}},
		{op: "like", val: "ol%", want: M{"$regex": domain.Regex{Pattern: "ol.*"}}},
		{op: "ilike", val: "%ol%", want: M{"$regex": domain.Regex{Pattern: ".*ol.*", Options: "i"}}},
		{op: "not like", val: "%ol%", want: M{"$not": domain.Regex{Pattern: ".*ol.*"}}},
		{op: "not ilike", val: "%ol%", want: M{"$not": domain.Regex{Pattern: ".*ol.*", Options: "i"}}},
	}
	for _, tc := range cases {
		got := s.translate(domain.Clause{Field: "name", Operator: tc.op, Value: tc.val})
		s.Equal(M{"name": tc.want}, got, tc.op)
	}
}

// Two range clauses on the same field become one constraint with both bounds.
func (s *TranslatorTestSuite) TestMergeRange() {
	got := s.translate(
		domain.Clause{Field: "age", Operator: ">", Value: 10},
		domain.Clause{Field: "age", Operator: "<", Value: 15},
	)
	s.Equal(M{"age": M{"$gt": 10, "$lt": 15}}, got)
}

func (s *TranslatorTestSuite) TestMergeKeepsOtherFields() {
	got := s.translate(
		domain.Clause{Field: "age", Operator: ">=", Value: 10},
		domain.Clause{Field: "name", Operator: "ilike", Value: "%ol%"},
		domain.Clause{Field: "age", Operator: "!=", Value: 12},
		domain.Clause{Field: "age", Operator: "<=", Value: 15},
	)
	s.Equal(M{
		"age":  M{"$gte": 10, "$ne": 12, "$lte": 15},
		"name": M{"$regex": domain.Regex{Pattern: ".*ol.*", Options: "i"}},
	}, got)
}

func (s *TranslatorTestSuite) TestMergeDirectValue() {
	got := s.translate(
		domain.Clause{Field: "state", Operator: "=", Value: "draft"},
		domain.Clause{Field: "state", Operator: "in", Value: []string{"draft", "done"}},
	)
	s.Equal(M{"state": M{"$eq": "draft", "$in": A{"draft", "done"}}}, got)

	got = s.translate(
		domain.Clause{Field: "state", Operator: "not in", Value: []string{"done"}},
		domain.Clause{Field: "state", Operator: "=", Value: "draft"},
	)
	s.Equal(M{"state": M{"$nin": A{"done"}, "$eq": "draft"}}, got)
}

// When the same native operator repeats, the last clause wins.
func (s *TranslatorTestSuite) TestMergeSameOperator() {
	got := s.translate(
		domain.Clause{Field: "age", Operator: ">", Value: 10},
		domain.Clause{Field: "age", Operator: ">", Value: 20},
	)
	s.Equal(M{"age": M{"$gt": 20}}, got)
}

// Translating the same clause gives the same result regardless of what was
// translated before.
func (s *TranslatorTestSuite) TestPure() {
	clause := domain.Clause{Field: "age", Operator: ">", Value: 10}
	first := s.translate(clause)

	s.translate(
		domain.Clause{Field: "age", Operator: "<", Value: 1},
		domain.Clause{Field: "age", Operator: "in", Value: []int{1}},
	)
	s.Equal(first, s.translate(clause))

	other := NewTranslator()
	res, err := other.Translate(domain.Filter{clause})
	s.NoError(err)
	s.Equal(first, res)
}

// Merging never mutates fragments returned by previous calls.
func (s *TranslatorTestSuite) TestMergeDoesNotAlias() {
	filter := domain.Filter{
		{Field: "age", Operator: ">", Value: 10},
		{Field: "age", Operator: "<", Value: 15},
	}
	first := s.translate(filter[0])
	s.translate(filter...)
	s.Equal(M{"age": M{"$gt": 10}}, first)
}

func (s *TranslatorTestSuite) TestPatternQuoting() {
	s.Equal(`a\.b.*`, Pattern("a.b%"))
	s.Equal(`.*\(x\).*`, Pattern("%(x)%"))
	s.Equal(`plain`, Pattern("plain"))
	s.Equal(`.*`, Pattern("%"))
}

func (s *TranslatorTestSuite) TestUnknownOperator() {
	_, err := s.tr.Translate(domain.Filter{{Field: "a", Operator: "~=", Value: 1}})
	s.ErrorIs(err, domain.ErrTranslation)
	s.ErrorAs(err, new(domain.ErrUnknownOperator))
}

func (s *TranslatorTestSuite) TestOperandTypes() {
	_, err := s.tr.Translate(domain.Filter{{Field: "a", Operator: "in", Value: 1}})
	s.ErrorIs(err, domain.ErrTranslation)
	var opErr domain.ErrOperandType
	s.ErrorAs(err, &opErr)
	s.Equal("list", opErr.Want)

	_, err = s.tr.Translate(domain.Filter{{Field: "a", Operator: "like", Value: 1}})
	s.ErrorAs(err, &opErr)
	s.Equal("string", opErr.Want)
}

func TestTranslatorTestSuite(t *testing.T) {
	suite.Run(t, new(TranslatorTestSuite))
}
