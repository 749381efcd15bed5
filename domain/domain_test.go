package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/mongorm/domain"
)

type DomainTestSuite struct {
	suite.Suite
}

func (s *DomainTestSuite) TestOptions() {
	var fos domain.FindOptions
	fo := []domain.FindOption{
		domain.WithFindProjection("a", "b"),
		domain.WithFindSkip(2),
		domain.WithFindLimit(3),
		domain.WithFindSort(domain.Sort{{Key: "a", Order: domain.Descending}}),
	}
	for _, opt := range fo {
		opt(&fos)
	}
	s.Equal(domain.FindOptions{
		Projection: []string{"a", "b"},
		Skip:       2,
		Limit:      3,
		Sort:       domain.Sort{{Key: "a", Order: -1}},
	}, fos)

	var uos domain.UpdateOptions
	domain.WithUpsert(true)(&uos)
	domain.WithReturnAfter(true)(&uos)
	s.Equal(domain.UpdateOptions{Upsert: true, ReturnAfter: true}, uos)

	var eios domain.EnsureIndexOptions
	domain.WithEnsureIndexFieldNames("id")(&eios)
	domain.WithEnsureIndexUnique(true)(&eios)
	s.Equal(domain.EnsureIndexOptions{FieldNames: []string{"id"}, Unique: true}, eios)

	var ros domain.ReadOptions
	domain.WithReadFields("name")(&ros)
	domain.WithReadBinSize(true)(&ros)
	s.Equal(domain.ReadOptions{Fields: []string{"name"}, BinSize: true}, ros)

	var sos domain.SearchOptions
	domain.WithSearchOffset(5)(&sos)
	domain.WithSearchLimit(10)(&sos)
	domain.WithSearchOrder("name desc")(&sos)
	s.Equal(domain.SearchOptions{Offset: 5, Limit: 10, Order: "name desc"}, sos)
}

func (s *DomainTestSuite) TestErrorKinds() {
	s.ErrorIs(domain.ErrUnknownOperator{Operator: "~"}, domain.ErrTranslation)
	s.ErrorIs(domain.ErrBadOrder{Model: "m", Spec: "a, b"}, domain.ErrTranslation)
	s.ErrorIs(domain.ErrOperandType{Operator: "in", Want: "list", Actual: 1}, domain.ErrTranslation)
	s.ErrorIs(domain.ErrPermission{Model: "m", Verb: domain.VerbRead}, domain.ErrAccessDenied)

	cause := errors.New("bad month")
	err := fmt.Errorf("write: %w", domain.ErrCoercion{Field: "date", Kind: domain.KindDate, Err: cause})
	s.ErrorIs(err, domain.ErrCoercionFailed)
	s.ErrorIs(err, cause)

	var coercion domain.ErrCoercion
	s.ErrorAs(err, &coercion)
	s.Equal("date", coercion.Field)
	s.Contains(err.Error(), `date field "date"`)

	store := domain.ErrStoreOperation{Op: "update", Err: cause}
	s.ErrorIs(store, cause)
	s.Equal("store update error: bad month", store.Error())
	s.False(domain.IsDuplicateKey(store))

	dup := domain.ErrStoreOperation{Op: "insert", Err: fmt.Errorf("%w: E11000", domain.ErrDuplicateKey)}
	s.True(domain.IsDuplicateKey(fmt.Errorf("create: %w", dup)))

	s.Equal(`bad order declaration "a, b" for model res.partner`,
		domain.ErrBadOrder{Model: "res.partner", Spec: "a, b"}.Error())
}

func (s *DomainTestSuite) TestColumnKinds() {
	s.True(domain.KindDate.Temporal())
	s.True(domain.KindDateTime.Temporal())
	s.False(domain.KindBoolean.Temporal())
	s.True(domain.KindInteger.Numeric())
	s.True(domain.KindFloat.Numeric())
	s.False(domain.KindComputed.Stored())
	s.True(domain.KindBinary.Stored())
	s.Equal("datetime", domain.KindDateTime.String())
	s.Equal("unknown", domain.ColumnKind(200).String())

	s.True(domain.Column{Kind: domain.KindBinary, ContentStore: true}.UsesContentStore())
	s.False(domain.Column{Kind: domain.KindBinary}.UsesContentStore())
	s.False(domain.Column{Kind: domain.KindPlain, ContentStore: true}.UsesContentStore())
}

func TestDomainTestSuite(t *testing.T) {
	suite.Run(t, new(DomainTestSuite))
}
