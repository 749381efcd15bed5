package order

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/mongorm/domain"
)

type ParserTestSuite struct {
	suite.Suite
	p *Parser
}

func (s *ParserTestSuite) SetupTest() {
	s.p = NewParser().(*Parser)
}

func (s *ParserTestSuite) TestSingleField() {
	cases := map[string]domain.Sort{
		"test desc":   {{Key: "test", Order: domain.Descending}},
		"test asc":    {{Key: "test", Order: domain.Ascending}},
		"test":        {{Key: "test", Order: domain.Ascending}},
		" test DESC":  {{Key: "test", Order: domain.Descending}},
		`"test" desc`: {{Key: "test", Order: domain.Descending}},
	}
	for spec, want := range cases {
		got, err := s.p.Parse("res.partner", spec)
		s.NoError(err, spec)
		s.Equal(want, got, spec)
	}
}

func (s *ParserTestSuite) TestMultipleFields() {
	cases := map[string]domain.Sort{
		"test desc, test2 desc": {
			{Key: "test", Order: domain.Descending},
			{Key: "test2", Order: domain.Descending},
		},
		"test asc, test2 desc": {
			{Key: "test", Order: domain.Ascending},
			{Key: "test2", Order: domain.Descending},
		},
		"a asc,b asc,c desc": {
			{Key: "a", Order: domain.Ascending},
			{Key: "b", Order: domain.Ascending},
			{Key: "c", Order: domain.Descending},
		},
	}
	for spec, want := range cases {
		got, err := s.p.Parse("res.partner", spec)
		s.NoError(err, spec)
		s.Equal(want, got, spec)
	}
}

// Every field of a multi-field specification needs a direction.
func (s *ParserTestSuite) TestMissingQualifier() {
	for _, spec := range []string{"test, test2 desc", "test desc, test2", "a asc, b"} {
		_, err := s.p.Parse("res.partner", spec)
		s.ErrorIs(err, domain.ErrTranslation, spec)

		var bad domain.ErrBadOrder
		s.ErrorAs(err, &bad)
		s.Equal("res.partner", bad.Model)
		s.Equal(spec, bad.Spec)
		s.Contains(err.Error(), "res.partner")
	}
}

func (s *ParserTestSuite) TestMalformed() {
	for _, spec := range []string{"", " ", "test sideways", "a b c", "a desc,", "na-me", "a desc,,b asc"} {
		_, err := s.p.Parse("m", spec)
		s.ErrorAs(err, new(domain.ErrBadOrder), spec)
	}
}

func TestParserTestSuite(t *testing.T) {
	suite.Run(t, new(ParserTestSuite))
}
