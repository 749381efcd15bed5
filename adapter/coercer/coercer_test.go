package coercer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/mongorm/domain"
)

type contentStoreMock struct{ mock.Mock }

// Put implements [domain.ContentStore].
func (c *contentStoreMock) Put(ctx context.Context, data []byte, filename string) (string, error) {
	call := c.Called(ctx, data, filename)
	return call.String(0), call.Error(1)
}

// Get implements [domain.ContentStore].
func (c *contentStoreMock) Get(ctx context.Context, handle string) ([]byte, error) {
	call := c.Called(ctx, handle)
	b, _ := call.Get(0).([]byte)
	return b, call.Error(1)
}

// Exists implements [domain.ContentStore].
func (c *contentStoreMock) Exists(ctx context.Context, handle string) (bool, error) {
	call := c.Called(ctx, handle)
	return call.Bool(0), call.Error(1)
}

// Delete implements [domain.ContentStore].
func (c *contentStoreMock) Delete(ctx context.Context, handle string) error {
	return c.Called(ctx, handle).Error(0)
}

// ListVersions implements [domain.ContentStore].
func (c *contentStoreMock) ListVersions(ctx context.Context, filename string) (int, error) {
	call := c.Called(ctx, filename)
	return call.Int(0), call.Error(1)
}

// Latest implements [domain.ContentStore].
func (c *contentStoreMock) Latest(ctx context.Context, filename string) (string, bool, error) {
	call := c.Called(ctx, filename)
	return call.String(0), call.Bool(1), call.Error(2)
}

// Versions implements [domain.ContentStore].
func (c *contentStoreMock) Versions(ctx context.Context, filename string) ([]string, error) {
	call := c.Called(ctx, filename)
	v, _ := call.Get(0).([]string)
	return v, call.Error(1)
}

type CoercerTestSuite struct {
	suite.Suite
	c   *Coercer
	cs  *contentStoreMock
	ctx context.Context
}

func (s *CoercerTestSuite) SetupTest() {
	s.cs = new(contentStoreMock)
	s.ctx = context.Background()
	s.c = NewCoercer(WithContentStore(s.cs), WithLocation(time.UTC)).(*Coercer)
}

func (s *CoercerTestSuite) target(name string, kind domain.ColumnKind) domain.FieldTarget {
	return domain.FieldTarget{
		Ref:    domain.FieldRef{Model: "res.partner", ID: 7, Field: name},
		Column: domain.Column{Name: name, Kind: kind},
	}
}

func (s *CoercerTestSuite) roundTrip(t domain.FieldTarget, v any) any {
	stored, err := s.c.OnWrite(s.ctx, t, v)
	s.Require().NoError(err)
	res, err := s.c.OnRead(s.ctx, t, stored, domain.ReadOptions{})
	s.Require().NoError(err)
	return res
}

func (s *CoercerTestSuite) TestDateRoundTrip() {
	t := s.target("birthday", domain.KindDate)
	s.Equal("1990-05-17", s.roundTrip(t, "1990-05-17"))

	stored, err := s.c.OnWrite(s.ctx, t, "1990-05-17")
	s.NoError(err)
	s.Equal(time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC), stored)

	// times are truncated to the day
	stored, err = s.c.OnWrite(s.ctx, t, time.Date(1990, 5, 17, 13, 0, 0, 0, time.UTC))
	s.NoError(err)
	s.Equal(time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC), stored)
}

func (s *CoercerTestSuite) TestDateTimeRoundTrip() {
	t := s.target("write_date", domain.KindDateTime)
	s.Equal("2024-01-02 03:04:05", s.roundTrip(t, "2024-01-02 03:04:05"))

	// date only strings are accepted by datetime columns
	s.Equal("2024-01-02 00:00:00", s.roundTrip(t, "2024-01-02"))

	// times stored by other zones are formatted in the configured location
	res, err := s.c.OnRead(s.ctx, t, time.Date(2024, 1, 2, 1, 4, 5, 0, time.FixedZone("x", -2*3600)), domain.ReadOptions{})
	s.NoError(err)
	s.Equal("2024-01-02 03:04:05", res)
}

func (s *CoercerTestSuite) TestTemporalFalsyPassThrough() {
	t := s.target("birthday", domain.KindDate)
	for _, v := range []any{nil, false, ""} {
		res, err := s.c.OnWrite(s.ctx, t, v)
		s.NoError(err)
		s.Equal(v, res)
	}
	res, err := s.c.OnRead(s.ctx, t, nil, domain.ReadOptions{})
	s.NoError(err)
	s.Nil(res)
}

func (s *CoercerTestSuite) TestTemporalErrors() {
	t := s.target("birthday", domain.KindDate)
	_, err := s.c.OnWrite(s.ctx, t, "17/05/1990")
	s.ErrorIs(err, domain.ErrCoercionFailed)

	var ce domain.ErrCoercion
	s.ErrorAs(err, &ce)
	s.Equal("birthday", ce.Field)
	s.Equal("17/05/1990", ce.Value)

	_, err = s.c.OnWrite(s.ctx, t, 42)
	s.ErrorIs(err, errNotTemporal)
}

func (s *CoercerTestSuite) TestBooleanRoundTrip() {
	t := s.target("flag", domain.KindBoolean)
	for _, v := range []any{true, 1, "1", "yes", 2.5} {
		s.Equal(true, s.roundTrip(t, v), "%#v", v)
	}
	for _, v := range []any{false, 0, "0", "false", "", nil} {
		s.Equal(false, s.roundTrip(t, v), "%#v", v)
	}
}

func (s *CoercerTestSuite) TestInteger() {
	t := s.target("qty", domain.KindInteger)
	s.Equal(int64(3), s.roundTrip(t, 3))
	s.Equal(int64(3), s.roundTrip(t, 3.0))
	s.Equal(int64(42), s.roundTrip(t, "42"))
	s.Equal(int64(1), s.roundTrip(t, true))
	s.Equal(int64(0), s.roundTrip(t, nil))

	res, err := s.c.OnRead(s.ctx, t, int32(5), domain.ReadOptions{})
	s.NoError(err)
	s.Equal(int64(5), res)

	_, err = s.c.OnWrite(s.ctx, t, 3.5)
	s.ErrorIs(err, errFraction)
	_, err = s.c.OnWrite(s.ctx, t, "x")
	s.ErrorIs(err, domain.ErrCoercionFailed)
	_, err = s.c.OnWrite(s.ctx, t, []int{1})
	s.ErrorIs(err, errNotNumber)
}

func (s *CoercerTestSuite) TestFloat() {
	t := s.target("price", domain.KindFloat)
	s.Equal(2.5, s.roundTrip(t, 2.5))
	s.Equal(3.0, s.roundTrip(t, 3))
	s.Equal(1.25, s.roundTrip(t, "1.25"))
	s.Equal(0.0, s.roundTrip(t, nil))

	t.Column.Digits = 2
	s.Equal(1.24, s.roundTrip(t, 1.236))
	s.Equal(3.14, s.roundTrip(t, 3.14159))

	_, err := s.c.OnWrite(s.ctx, t, "pi")
	s.ErrorIs(err, domain.ErrCoercionFailed)
	_, err = s.c.OnWrite(s.ctx, t, struct{ A int }{A: 1})
	s.ErrorIs(err, errNotNumber)
}

func (s *CoercerTestSuite) TestPlainAndComputedPassThrough() {
	for _, kind := range []domain.ColumnKind{domain.KindPlain, domain.KindComputed, domain.KindBinary} {
		t := s.target("x", kind)
		s.Equal("Foo", s.roundTrip(t, "Foo"))
		s.Equal([]byte("raw"), s.roundTrip(t, []byte("raw")))
	}
}

func (s *CoercerTestSuite) contentTarget(versioned bool, current any) domain.FieldTarget {
	t := s.target("image", domain.KindBinary)
	t.Column.ContentStore = true
	t.Column.Versioned = versioned
	t.Current = current
	return t
}

func (s *CoercerTestSuite) TestContentRoundTrip() {
	t := s.contentTarget(false, nil)
	s.cs.On("Put", s.ctx, []byte("payload"), "res.partner/7/image").Return("h1", nil).Once()
	s.cs.On("Exists", s.ctx, "h1").Return(true, nil).Once()
	s.cs.On("Get", s.ctx, "h1").Return([]byte("payload"), nil).Once()

	s.Equal([]byte("payload"), s.roundTrip(t, []byte("payload")))
	s.cs.AssertExpectations(s.T())
}

func (s *CoercerTestSuite) TestContentSupersede() {
	t := s.contentTarget(false, "old")
	s.cs.On("Delete", s.ctx, "old").Return(nil).Once()
	s.cs.On("Put", s.ctx, []byte("new"), "res.partner/7/image").Return("h2", nil).Once()

	res, err := s.c.OnWrite(s.ctx, t, "new")
	s.NoError(err)
	s.Equal("h2", res)
	s.cs.AssertExpectations(s.T())
}

func (s *CoercerTestSuite) TestContentVersionedKeepsPrevious() {
	t := s.contentTarget(true, "old")
	s.cs.On("Put", s.ctx, []byte("new"), "res.partner/7/image").Return("h2", nil).Once()

	res, err := s.c.OnWrite(s.ctx, t, []byte("new"))
	s.NoError(err)
	s.Equal("h2", res)
	s.cs.AssertNotCalled(s.T(), "Delete", mock.Anything, mock.Anything)
}

func (s *CoercerTestSuite) TestContentClear() {
	t := s.contentTarget(false, "old")
	s.cs.On("Delete", s.ctx, "old").Return(nil).Once()

	res, err := s.c.OnWrite(s.ctx, t, nil)
	s.NoError(err)
	s.Nil(res)
	s.cs.AssertNotCalled(s.T(), "Latest", mock.Anything, mock.Anything)
}

func (s *CoercerTestSuite) TestContentClearVersionedRelinks() {
	t := s.contentTarget(true, "h2")
	s.cs.On("Delete", s.ctx, "h2").Return(nil).Once()
	s.cs.On("Latest", s.ctx, "res.partner/7/image").Return("h1", true, nil).Once()

	res, err := s.c.OnWrite(s.ctx, t, false)
	s.NoError(err)
	s.Equal("h1", res)

	s.cs.On("Delete", s.ctx, "h1").Return(nil).Once()
	s.cs.On("Latest", s.ctx, "res.partner/7/image").Return("", false, nil).Once()
	t.Current = "h1"
	res, err = s.c.OnWrite(s.ctx, t, "")
	s.NoError(err)
	s.Nil(res)
	s.cs.AssertExpectations(s.T())
}

func (s *CoercerTestSuite) TestContentBinSize() {
	t := s.contentTarget(false, nil)
	s.cs.On("Exists", s.ctx, "h1").Return(true, nil)
	s.cs.On("Get", s.ctx, "h1").Return(make([]byte, 2048), nil)

	res, err := s.c.OnRead(s.ctx, t, "h1", domain.ReadOptions{BinSize: true})
	s.NoError(err)
	s.Equal("2.0 KiB", res)

	t.Column.Versioned = true
	s.cs.On("ListVersions", s.ctx, "res.partner/7/image").Return(3, nil).Once()
	res, err = s.c.OnRead(s.ctx, t, "h1", domain.ReadOptions{BinSize: true})
	s.NoError(err)
	s.Equal("2.0 KiB (v3)", res)
}

func (s *CoercerTestSuite) TestContentMissingBlob() {
	t := s.contentTarget(false, nil)
	s.cs.On("Exists", s.ctx, "gone").Return(false, nil).Once()

	res, err := s.c.OnRead(s.ctx, t, "gone", domain.ReadOptions{})
	s.NoError(err)
	s.Nil(res)
	s.cs.AssertNotCalled(s.T(), "Get", mock.Anything, mock.Anything)
}

func (s *CoercerTestSuite) TestContentErrors() {
	t := s.contentTarget(false, nil)
	_, err := s.c.OnWrite(s.ctx, t, 12)
	s.ErrorIs(err, errNotBinary)

	boom := errors.New("boom")
	s.cs.On("Put", s.ctx, []byte("x"), "res.partner/7/image").Return("", boom).Once()
	_, err = s.c.OnWrite(s.ctx, t, "x")
	s.ErrorIs(err, boom)
	s.ErrorIs(err, domain.ErrCoercionFailed)

	s.c = NewCoercer().(*Coercer)
	_, err = s.c.OnWrite(s.ctx, t, "x")
	s.ErrorIs(err, errNoStore)
}

func (s *CoercerTestSuite) TestOperand() {
	date := domain.Column{Name: "birthday", Kind: domain.KindDate}
	res, err := s.c.Operand(date, "1990-05-17")
	s.NoError(err)
	s.Equal(time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC), res)

	res, err = s.c.Operand(date, []string{"1990-05-17", "1990-05-18"})
	s.NoError(err)
	s.Equal([]any{
		time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
		time.Date(1990, 5, 18, 0, 0, 0, 0, time.UTC),
	}, res)

	_, err = s.c.Operand(date, "soon")
	s.ErrorIs(err, domain.ErrCoercionFailed)

	flag := domain.Column{Name: "flag", Kind: domain.KindBoolean}
	res, err = s.c.Operand(flag, 0)
	s.NoError(err)
	s.Equal(false, res)

	res, err = s.c.Operand(flag, "1")
	s.NoError(err)
	s.Equal(true, res)

	id := domain.Column{Name: "id", Kind: domain.KindInteger}
	res, err = s.c.Operand(id, "5")
	s.NoError(err)
	s.Equal(int64(5), res)

	res, err = s.c.Operand(id, 5.0)
	s.NoError(err)
	s.Equal(int64(5), res)

	res, err = s.c.Operand(id, 1.5)
	s.NoError(err)
	s.Equal(1.5, res)

	res, err = s.c.Operand(id, []any{"1", int32(2)})
	s.NoError(err)
	s.Equal([]any{int64(1), int64(2)}, res)

	res, err = s.c.Operand(id, nil)
	s.NoError(err)
	s.Nil(res)

	_, err = s.c.Operand(id, "five")
	s.ErrorIs(err, domain.ErrCoercionFailed)

	price := domain.Column{Name: "price", Kind: domain.KindFloat, Digits: 2}
	res, err = s.c.Operand(price, "2.345")
	s.NoError(err)
	s.Equal(2.345, res)

	res, err = s.c.Operand(price, 3)
	s.NoError(err)
	s.Equal(3.0, res)

	plain := domain.Column{Name: "name", Kind: domain.KindPlain}
	res, err = s.c.Operand(plain, "%ol%")
	s.NoError(err)
	s.Equal("%ol%", res)
}

func TestCoercerTestSuite(t *testing.T) {
	suite.Run(t, new(CoercerTestSuite))
}
