package model

import (
	"context"
	"slices"

	"github.com/vinicius-lino-figueiredo/mongorm/domain"
)

// operators whose operand is compared with stored values
var comparisons = []domain.Operator{
	domain.OpEq, domain.OpNe,
	domain.OpLt, domain.OpLte, domain.OpGt, domain.OpGte,
	domain.OpIn, domain.OpNotIn,
}

// Search implements [domain.Model]. Without clauses the result is always
// sorted by id, whatever order is requested.
func (m *Model) Search(ctx context.Context, actor int64, filter domain.Filter, options ...domain.SearchOption) ([]int64, error) {
	var so domain.SearchOptions
	for _, opt := range options {
		opt(&so)
	}

	if err := m.check(ctx, actor, domain.VerbRead); err != nil {
		return nil, err
	}
	query, err := m.query(filter)
	if err != nil {
		return nil, err
	}

	sort := m.sort
	switch {
	case len(filter) == 0:
		sort = domain.Sort{{Key: domain.FieldID, Order: domain.Ascending}}
	case so.Order != "":
		if sort, err = m.orderParser.Parse(m.schema.Name, so.Order); err != nil {
			return nil, err
		}
	}

	c, err := m.collection(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := c.Find(ctx, query,
		domain.WithFindProjection(domain.FieldID),
		domain.WithFindSort(sort),
		domain.WithFindSkip(so.Offset),
		domain.WithFindLimit(so.Limit),
	)
	if err != nil {
		return nil, err
	}
	return docIDs(docs), nil
}

// Count implements [domain.Model].
func (m *Model) Count(ctx context.Context, actor int64, filter domain.Filter) (int64, error) {
	if err := m.check(ctx, actor, domain.VerbRead); err != nil {
		return 0, err
	}
	query, err := m.query(filter)
	if err != nil {
		return 0, err
	}
	c, err := m.collection(ctx)
	if err != nil {
		return 0, err
	}
	return c.CountDocuments(ctx, query)
}

// Exists implements [domain.Model].
func (m *Model) Exists(ctx context.Context, actor int64, id int64) (bool, error) {
	n, err := m.Count(ctx, actor, domain.Filter{{Field: domain.FieldID, Operator: domain.OpEq, Value: id}})
	return n > 0, err
}

// query coerces the operands of declared columns and translates filter.
func (m *Model) query(filter domain.Filter) (domain.Document, error) {
	clauses := make(domain.Filter, len(filter))
	for n, clause := range filter {
		if col, ok := m.column(clause.Field); ok && slices.Contains(comparisons, clause.Operator) {
			v, err := m.coercer.Operand(col, clause.Value)
			if err != nil {
				return nil, err
			}
			clause.Value = v
		}
		clauses[n] = clause
	}

	query, err := m.translator.Translate(clauses)
	if err != nil {
		return nil, err
	}
	m.log.Debug().Interface("filter", filter).Interface("query", query).Msg("filter translated")
	return query, nil
}
