// Package coercer contains the default [domain.Coercer] implementation. It
// converts typed field values to their stored representation and back, one
// rule per [domain.ColumnKind].
package coercer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/vinicius-lino-figueiredo/mongorm/domain"
	"github.com/vinicius-lino-figueiredo/mongorm/pkg/structure"
)

var (
	errNotTemporal = errors.New("expected a date string or time value")
	errNotNumber   = errors.New("expected a number")
	errFraction    = errors.New("integer fields do not accept fractions")
	errNotBinary   = errors.New("expected bytes or string")
	errNoStore     = errors.New("no content store configured")
)

// Coercer implements [domain.Coercer].
type Coercer struct {
	contentStore domain.ContentStore
	location     *time.Location
}

// NewCoercer returns a new implementation of [domain.Coercer]. A content store
// is only required by models that declare content store columns.
func NewCoercer(opts ...Option) domain.Coercer {
	c := Coercer{location: time.Local}
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

// Filename returns the name shared by every blob stored for a field.
func Filename(ref domain.FieldRef) string {
	return fmt.Sprintf("%s/%d/%s", ref.Model, ref.ID, ref.Field)
}

// OnWrite implements [domain.Coercer].
func (c *Coercer) OnWrite(ctx context.Context, target domain.FieldTarget, value any) (any, error) {
	col := target.Column
	var res any
	var err error
	switch {
	case col.Kind.Temporal():
		res, err = c.parseTime(col.Kind, value)
	case col.Kind == domain.KindBoolean:
		res = structure.Truthy(value)
	case col.Kind == domain.KindInteger:
		res, err = c.toInteger(value)
	case col.Kind == domain.KindFloat:
		res, err = c.toFloat(value, col.Digits)
	case col.UsesContentStore():
		res, err = c.writeContent(ctx, target, value)
	default:
		res = value
	}
	if err != nil {
		return nil, c.fail(target.Ref.Field, col.Kind, value, err)
	}
	return res, nil
}

// OnRead implements [domain.Coercer].
func (c *Coercer) OnRead(ctx context.Context, target domain.FieldTarget, value any, options domain.ReadOptions) (any, error) {
	col := target.Column
	if value == nil {
		return nil, nil
	}
	switch {
	case col.Kind.Temporal():
		return c.formatTime(col.Kind, value), nil
	case col.Kind == domain.KindBoolean:
		return structure.Truthy(value), nil
	case col.Kind == domain.KindInteger:
		if i, ok := structure.AsInteger(value); ok {
			return i, nil
		}
	case col.Kind == domain.KindFloat:
		if f, ok := structure.AsFloat(value); ok {
			return f, nil
		}
	case col.UsesContentStore():
		return c.readContent(ctx, target, value, options)
	}
	return value, nil
}

// Operand implements [domain.Coercer]. Temporal, boolean and numeric operands
// are normalized like stored values. Lists are converted element by element.
func (c *Coercer) Operand(col domain.Column, value any) (any, error) {
	switch col.Kind {
	case domain.KindDate, domain.KindDateTime, domain.KindBoolean, domain.KindInteger, domain.KindFloat:
	default:
		return value, nil
	}
	if _, isBytes := value.([]byte); !isBytes {
		if list, err := structure.List(value); err == nil {
			for n, v := range list {
				if list[n], err = c.operand(col, v); err != nil {
					return nil, err
				}
			}
			return list, nil
		}
	}
	return c.operand(col, value)
}

func (c *Coercer) operand(col domain.Column, value any) (any, error) {
	switch col.Kind {
	case domain.KindBoolean:
		return structure.Truthy(value), nil
	case domain.KindInteger, domain.KindFloat:
		res, err := c.numericOperand(col.Kind, value)
		if err != nil {
			return nil, c.fail(col.Name, col.Kind, value, err)
		}
		return res, nil
	}
	res, err := c.parseTime(col.Kind, value)
	if err != nil {
		return nil, c.fail(col.Name, col.Kind, value, err)
	}
	return res, nil
}

// numericOperand compares integer columns against whole numbers as int64 and
// anything else as float64. nil is kept, so it still matches missing values.
func (c *Coercer) numericOperand(kind domain.ColumnKind, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if kind == domain.KindInteger {
		if i, ok := structure.AsInteger(value); ok {
			return i, nil
		}
		if str, ok := value.(string); ok {
			if i, err := strconv.ParseInt(strings.TrimSpace(str), 10, 64); err == nil {
				return i, nil
			}
		}
	}
	f, err := c.toFloat(value, 0)
	if err != nil {
		return nil, err
	}
	if kind == domain.KindInteger {
		if i, ok := structure.AsInteger(f); ok {
			return i, nil
		}
	}
	return f, nil
}

func (c *Coercer) fail(field string, kind domain.ColumnKind, value any, err error) error {
	var coercion domain.ErrCoercion
	if errors.As(err, &coercion) {
		return err
	}
	return domain.ErrCoercion{Field: field, Kind: kind, Value: value, Err: err}
}

func (c *Coercer) parseTime(kind domain.ColumnKind, value any) (any, error) {
	if !structure.Truthy(value) {
		return value, nil
	}
	switch t := value.(type) {
	case time.Time:
		if kind == domain.KindDate {
			y, m, d := t.In(c.location).Date()
			return time.Date(y, m, d, 0, 0, 0, 0, c.location), nil
		}
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		layout := domain.DateTimeLayout
		// date only strings are accepted by datetime columns too
		if len(s) == len(domain.DateLayout) {
			layout = domain.DateLayout
		}
		parsed, err := time.ParseInLocation(layout, s, c.location)
		if err != nil {
			return nil, err
		}
		if kind == domain.KindDate {
			return c.parseTime(kind, parsed)
		}
		return parsed, nil
	default:
		return nil, errNotTemporal
	}
}

func (c *Coercer) formatTime(kind domain.ColumnKind, value any) any {
	t, ok := value.(time.Time)
	if !ok {
		return value
	}
	if kind == domain.KindDate {
		return t.In(c.location).Format(domain.DateLayout)
	}
	return t.In(c.location).Format(domain.DateTimeLayout)
}

func (c *Coercer) toInteger(value any) (any, error) {
	if !structure.Truthy(value) {
		return int64(0), nil
	}
	switch t := value.(type) {
	case bool:
		return int64(1), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(t), 10, 64)
	}
	if i, ok := structure.AsInteger(value); ok {
		return i, nil
	}
	if _, ok := structure.AsFloat(value); ok {
		return nil, errFraction
	}
	return nil, errNotNumber
}

func (c *Coercer) toFloat(value any, digits int) (any, error) {
	if !structure.Truthy(value) {
		return 0.0, nil
	}
	var f float64
	switch t := value.(type) {
	case bool:
		f = 1
	case string:
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(t), 64); err != nil {
			return nil, err
		}
	default:
		var ok bool
		if f, ok = structure.AsFloat(value); !ok {
			return nil, errNotNumber
		}
	}
	if digits > 0 {
		pow := math.Pow10(digits)
		f = math.Round(f*pow) / pow
	}
	return f, nil
}

func (c *Coercer) writeContent(ctx context.Context, target domain.FieldTarget, value any) (any, error) {
	if c.contentStore == nil {
		return nil, errNoStore
	}
	current, _ := target.Current.(string)
	filename := Filename(target.Ref)

	if !structure.Truthy(value) {
		if current != "" {
			if err := c.contentStore.Delete(ctx, current); err != nil {
				return nil, err
			}
		}
		if !target.Column.Versioned {
			return nil, nil
		}
		// fall back to the newest remaining version
		handle, found, err := c.contentStore.Latest(ctx, filename)
		if err != nil || !found {
			return nil, err
		}
		return handle, nil
	}

	var data []byte
	switch t := value.(type) {
	case []byte:
		data = t
	case string:
		data = []byte(t)
	default:
		return nil, errNotBinary
	}

	if current != "" && !target.Column.Versioned {
		if err := c.contentStore.Delete(ctx, current); err != nil {
			return nil, err
		}
	}
	return c.contentStore.Put(ctx, data, filename)
}

func (c *Coercer) readContent(ctx context.Context, target domain.FieldTarget, value any, options domain.ReadOptions) (any, error) {
	handle, ok := value.(string)
	if !ok || handle == "" {
		return nil, nil
	}
	if c.contentStore == nil {
		return nil, errNoStore
	}

	exists, err := c.contentStore.Exists(ctx, handle)
	if err != nil || !exists {
		return nil, err
	}
	data, err := c.contentStore.Get(ctx, handle)
	if err != nil {
		return nil, err
	}
	if !options.BinSize || len(data) == 0 {
		return data, nil
	}

	size := humanize.IBytes(uint64(len(data)))
	if !target.Column.Versioned {
		return size, nil
	}
	versions, err := c.contentStore.ListVersions(ctx, Filename(target.Ref))
	if err != nil {
		return nil, err
	}
	return fmt.Sprintf("%s (v%d)", size, versions), nil
}
