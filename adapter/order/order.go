// Package order contains the default implementation of [domain.OrderParser].
package order

import (
	"errors"
	"regexp"
	"strings"

	"github.com/vinicius-lino-figueiredo/mongorm/domain"
)

var errBadField = errors.New("bad order field")

var fieldName = regexp.MustCompile(`(?i)^([a-z0-9_]+|"[a-z0-9_]+")$`)

// Parser implements [domain.OrderParser].
//
// A specification with a single field may omit the direction, which defaults
// to ascending. When several comma separated fields are given, every one of
// them needs an explicit "asc" or "desc".
type Parser struct{}

// NewParser returns a new implementation of [domain.OrderParser].
func NewParser() domain.OrderParser {
	return &Parser{}
}

// Parse implements [domain.OrderParser].
func (p *Parser) Parse(model string, spec string) (domain.Sort, error) {
	parts := strings.Split(spec, ",")
	single := len(parts) == 1

	res := make(domain.Sort, 0, len(parts))
	for _, part := range parts {
		name, err := p.parseField(part, single)
		if err != nil {
			return nil, domain.ErrBadOrder{Model: model, Spec: spec}
		}
		res = append(res, name)
	}
	return res, nil
}

func (p *Parser) parseField(part string, single bool) (domain.SortName, error) {
	tokens := strings.Fields(part)
	if len(tokens) == 0 || len(tokens) > 2 || !fieldName.MatchString(tokens[0]) {
		return domain.SortName{}, errBadField
	}
	key := strings.Trim(tokens[0], `"`)

	if len(tokens) == 1 {
		if !single {
			return domain.SortName{}, errBadField
		}
		return domain.SortName{Key: key, Order: domain.Ascending}, nil
	}

	switch strings.ToLower(tokens[1]) {
	case "asc":
		return domain.SortName{Key: key, Order: domain.Ascending}, nil
	case "desc":
		return domain.SortName{Key: key, Order: domain.Descending}, nil
	default:
		return domain.SortName{}, errBadField
	}
}

