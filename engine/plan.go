package engine

import (
	"fmt"
	"strings"

	"github.com/nao1215/csvapi/domain/model"
	"github.com/nao1215/csvapi/storage"
)

// rowidAliases are tried in order for the tie-breaking sort key; a dataset
// column may shadow any of them.
var rowidAliases = []string{"rowid", "_rowid_", "oid"}

// Plan is a validated, ready-to-run query against one dataset. Every
// identifier it embeds was checked against the dataset schema or comes from
// the catalog's sanitized table name; every value is a bound argument.
type Plan struct {
	table   string
	columns model.Schema
	where   string
	args    []any
	orderBy string
	limit   int
	offset  int
}

// NewPlan validates spec against ds. It performs no storage access.
func NewPlan(ds model.Dataset, spec model.QuerySpec) (*Plan, error) {
	ec := func(op string) *model.ErrorContext {
		return model.NewErrorContext(op).WithDataset(ds.Name)
	}

	if spec.Offset < 0 {
		return nil, ec("validate offset").
			WithValue(fmt.Sprint(spec.Offset)).WithDetails("offset must be >= 0").
			Error(model.ErrInvalidParameter)
	}

	p := &Plan{
		table:   ds.PhysicalTable,
		columns: ds.Schema,
		limit:   model.ClampLimit(spec.Limit),
		offset:  spec.Offset,
	}

	predicates := make([]string, 0, len(spec.Filters))
	for _, f := range spec.Filters {
		col, ok := ds.Schema.Lookup(f.Column)
		if !ok {
			return nil, ec("validate filter").WithColumn(f.Column).Error(model.ErrUnknownColumn)
		}
		if !f.Operator.Supported() {
			return nil, ec("validate filter").
				WithColumn(f.Column).WithValue(string(f.Operator)).
				WithDetails("supported operators: eq, neq, gt, gte, lt, lte, contains").
				Error(model.ErrUnsupportedOperator)
		}

		predicate, arg, err := buildPredicate(col, f)
		if err != nil {
			return nil, ec("validate filter").
				WithColumn(f.Column).WithValue(f.RawValue).
				WithDetails("expected "+col.Type.String()).
				Wrap(model.ErrInvalidFilterValue, err)
		}
		predicates = append(predicates, predicate)
		p.args = append(p.args, arg)
	}
	if len(predicates) > 0 {
		p.where = " WHERE " + strings.Join(predicates, " AND ")
	}

	var order []string
	if spec.Sort != nil {
		col, ok := ds.Schema.Lookup(spec.Sort.Column)
		if !ok {
			return nil, ec("validate sort").WithColumn(spec.Sort.Column).Error(model.ErrUnknownColumn)
		}
		order = append(order, storage.QuoteIdent(col.Name)+" "+spec.Sort.Direction.SQL())
	}
	if alias, ok := rowidAlias(ds.Schema); ok {
		order = append(order, alias)
	}
	if len(order) > 0 {
		p.orderBy = " ORDER BY " + strings.Join(order, ", ")
	}
	return p, nil
}

// buildPredicate renders one filter as SQL plus its bound argument.
// contains matches the text a row is rendered with, so boolean columns
// compare against "true" and "false" rather than the stored 0 and 1.
func buildPredicate(col model.Column, f model.FilterClause) (string, any, error) {
	ident := storage.QuoteIdent(col.Name)
	if f.Operator == model.OpContains {
		pattern := "%" + escapeLike(f.RawValue) + "%"
		if col.Type == model.LogicalTypeBoolean {
			return "CASE " + ident + ` WHEN 1 THEN 'true' WHEN 0 THEN 'false' END LIKE ? ESCAPE '\'`, pattern, nil
		}
		return "CAST(" + ident + ` AS TEXT) LIKE ? ESCAPE '\'`, pattern, nil
	}
	v, err := model.CoercerFor(col.Type)(f.RawValue)
	if err != nil {
		return "", nil, err
	}
	return ident + " " + f.Operator.SQL() + " ?", v, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func rowidAlias(schema model.Schema) (string, bool) {
	for _, alias := range rowidAliases {
		shadowed := false
		for _, col := range schema {
			if strings.EqualFold(col.Name, alias) {
				shadowed = true
				break
			}
		}
		if !shadowed {
			return alias, true
		}
	}
	return "", false
}

// Limit is the clamped page size.
func (p *Plan) Limit() int { return p.limit }

// Offset is the number of matching rows skipped.
func (p *Plan) Offset() int { return p.offset }

// SelectSQL returns the page query and its arguments. The filter arguments
// come first and are identical to CountSQL's.
func (p *Plan) SelectSQL() (string, []any) {
	query := p.selectClause() + p.where + p.orderBy + " LIMIT ? OFFSET ?"

	args := make([]any, 0, len(p.args)+2)
	args = append(args, p.args...)
	args = append(args, p.limit, p.offset)
	return query, args
}

// ScanSQL returns the same query as SelectSQL without paging. Every
// matching row is returned in order.
func (p *Plan) ScanSQL() (string, []any) {
	args := make([]any, len(p.args))
	copy(args, p.args)
	return p.selectClause() + p.where + p.orderBy, args
}

func (p *Plan) selectClause() string {
	cols := make([]string, len(p.columns))
	for i, col := range p.columns {
		cols[i] = storage.QuoteIdent(col.Name)
	}
	return "SELECT " + strings.Join(cols, ", ") + " FROM " + storage.QuoteIdent(p.table)
}

// CountSQL returns the total-count query: same predicate, no paging.
func (p *Plan) CountSQL() (string, []any) {
	args := make([]any, len(p.args))
	copy(args, p.args)
	return "SELECT COUNT(*) FROM " + storage.QuoteIdent(p.table) + p.where, args
}
