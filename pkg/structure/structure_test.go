package structure

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type StructureTestSuite struct {
	suite.Suite
}

func (s *StructureTestSuite) TestListFastPath() {
	cases := []struct {
		in   any
		want []any
	}{
		{in: []any{1, "a"}, want: []any{1, "a"}},
		{in: []string{"a", "b"}, want: []any{"a", "b"}},
		{in: []bool{true}, want: []any{true}},
		{in: []int{1, 2}, want: []any{1, 2}},
		{in: []int32{3}, want: []any{int32(3)}},
		{in: []int64{4}, want: []any{int64(4)}},
		{in: []float64{5.5}, want: []any{5.5}},
		{in: []time.Time{time.UnixMilli(6)}, want: []any{time.UnixMilli(6)}},
	}
	for _, tc := range cases {
		got, err := List(tc.in)
		s.NoError(err)
		s.Equal(tc.want, got)
	}
}

func (s *StructureTestSuite) TestListReflect() {
	type id uint16
	got, err := List([]id{1, 2})
	s.NoError(err)
	s.Equal([]any{id(1), id(2)}, got)

	got, err = List([2]string{"a", "b"})
	s.NoError(err)
	s.Equal([]any{"a", "b"}, got)
}

func (s *StructureTestSuite) TestListEarlyStop() {
	seq, l, err := Seq([]uint16{1, 2, 3})
	s.NoError(err)
	s.Equal(3, l)
	var got []any
	for v := range seq {
		got = append(got, v)
		break
	}
	s.Equal([]any{uint16(1)}, got)
}

func (s *StructureTestSuite) TestListErrors() {
	_, err := List(nil)
	s.ErrorIs(err, ErrNilObj)

	for _, v := range []any{"abc", 1, []byte("x"), map[string]any{}, struct{}{}} {
		_, err := List(v)
		s.ErrorAs(err, new(ErrorNonList))
	}
}

func (s *StructureTestSuite) TestAsInteger() {
	cases := []struct {
		in   any
		want int64
		ok   bool
	}{
		{in: 1, want: 1, ok: true},
		{in: int8(-2), want: -2, ok: true},
		{in: int16(3), want: 3, ok: true},
		{in: int32(4), want: 4, ok: true},
		{in: int64(5), want: 5, ok: true},
		{in: uint(6), want: 6, ok: true},
		{in: uint8(7), want: 7, ok: true},
		{in: uint16(8), want: 8, ok: true},
		{in: uint32(9), want: 9, ok: true},
		{in: uint64(10), want: 10, ok: true},
		{in: float32(11), want: 11, ok: true},
		{in: 12.0, want: 12, ok: true},
		{in: 12.5, ok: false},
		{in: float32(1.5), ok: false},
		{in: uint64(math.MaxUint64), ok: false},
		{in: math.Inf(1), ok: false},
		{in: "13", ok: false},
	}
	for _, tc := range cases {
		got, ok := AsInteger(tc.in)
		s.Equal(tc.ok, ok, "%#v", tc.in)
		s.Equal(tc.want, got, "%#v", tc.in)
	}
}

func (s *StructureTestSuite) TestAsFloat() {
	f, ok := AsFloat(float32(1.5))
	s.True(ok)
	s.Equal(1.5, f)

	f, ok = AsFloat(3)
	s.True(ok)
	s.Equal(3.0, f)

	_, ok = AsFloat("3")
	s.False(ok)
}

func (s *StructureTestSuite) TestTruthy() {
	var nilPtr *int
	one := 1
	truthy := []any{
		true, 1, -1, 0.5, "a", "true", "1", "yes", []byte("x"),
		[]int{0}, map[string]any{"a": nil}, time.UnixMilli(1), &one,
		struct{ A int }{A: 1},
	}
	falsy := []any{
		nil, false, 0, 0.0, int64(0), uint8(0), "", "0", "false", "False",
		" off ", "no", []byte{}, []int{}, map[string]any{}, time.Time{},
		nilPtr, struct{ A int }{},
	}
	for _, v := range truthy {
		s.True(Truthy(v), "%#v", v)
	}
	for _, v := range falsy {
		s.False(Truthy(v), "%#v", v)
	}
}

func TestStructureTestSuite(t *testing.T) {
	suite.Run(t, new(StructureTestSuite))
}
