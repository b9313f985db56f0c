package engine

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/nao1215/csvapi/domain/model"
)

// Query string keys understood by ParseParams.
const (
	ParamLimit  = "limit"
	ParamOffset = "offset"
	ParamSort   = "sort"
	ParamFilter = "filter"
)

// ParseParams turns raw query parameters into a QuerySpec. It only checks
// shape (integers, col:op:value); schema-dependent checks happen in
// NewPlan. An absent limit becomes defaultLimit.
func ParseParams(values url.Values, defaultLimit int) (model.QuerySpec, error) {
	spec := model.QuerySpec{Limit: defaultLimit}

	if raw, ok := lookup(values, ParamLimit); ok {
		limit, err := parseLimit(raw)
		if err != nil {
			return model.QuerySpec{}, model.NewErrorContext("parse limit").
				WithValue(raw).WithDetails("limit must be an integer").
				Error(model.ErrInvalidParameter)
		}
		spec.Limit = limit
	}

	if raw, ok := lookup(values, ParamOffset); ok {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return model.QuerySpec{}, model.NewErrorContext("parse offset").
				WithValue(raw).WithDetails("offset must be an integer").
				Error(model.ErrInvalidParameter)
		}
		spec.Offset = offset
	}

	if raw, ok := lookup(values, ParamSort); ok {
		key := model.ParseSortKey(raw)
		spec.Sort = &key
	}

	for _, raw := range values[ParamFilter] {
		clause, err := ParseFilter(raw)
		if err != nil {
			return model.QuerySpec{}, err
		}
		spec.Filters = append(spec.Filters, clause)
	}
	return spec, nil
}

// parseLimit reads an integer limit. Integers outside the int range
// saturate to the clamp bounds instead of failing.
func parseLimit(raw string) (int, error) {
	limit, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(raw, "-") {
			return model.MinLimit, nil
		}
		return model.MaxLimit, nil
	}
	return limit, err
}

// ParseFilter parses one col:op:value token. The value may itself contain
// colons.
func ParseFilter(raw string) (model.FilterClause, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) != 3 || parts[0] == "" {
		return model.FilterClause{}, model.NewErrorContext("parse filter").
			WithValue(raw).WithDetails("filter must look like column:operator:value").
			Error(model.ErrInvalidParameter)
	}
	return model.FilterClause{
		Column:   parts[0],
		Operator: model.Operator(parts[1]),
		RawValue: parts[2],
	}, nil
}

// lookup returns the first non-blank value of key.
func lookup(values url.Values, key string) (string, bool) {
	raw := strings.TrimSpace(values.Get(key))
	return raw, raw != ""
}
