package qdrant

import (
	"fmt"
	"sort"
	"strings"
)

// Supported subset of the Pinecone-style metadata filter language.
const (
	filterOpAnd = "$and"
	filterOpEq  = "$eq"
	filterOpNe  = "$ne"
	filterOpIn  = "$in"
)

type translatedFilter struct {
	Must    []any
	MustNot []any
}

func (f translatedFilter) asMap() map[string]any {
	out := map[string]any{}
	if len(f.Must) > 0 {
		out["must"] = f.Must
	}
	if len(f.MustNot) > 0 {
		out["must_not"] = f.MustNot
	}
	return out
}

func (f *translatedFilter) merge(src translatedFilter) {
	f.Must = append(f.Must, src.Must...)
	f.MustNot = append(f.MustNot, src.MustNot...)
}

func translateFilterMap(filter map[string]any) (translatedFilter, error) {
	out := translatedFilter{}
	keys := make([]string, 0, len(filter))
	for key := range filter {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		k := strings.TrimSpace(key)
		switch {
		case k == "":
			continue
		case strings.EqualFold(k, filterOpAnd):
			items, ok := filter[key].([]any)
			if !ok {
				return translatedFilter{}, filterErr(OperationErrorValidation, "operator $and expects array of objects")
			}
			for _, raw := range items {
				item, ok := raw.(map[string]any)
				if !ok {
					return translatedFilter{}, filterErr(OperationErrorValidation, "operator $and expects array of objects")
				}
				sub, err := translateFilterMap(item)
				if err != nil {
					return translatedFilter{}, err
				}
				out.merge(sub)
			}
		case strings.HasPrefix(k, "$"):
			return translatedFilter{}, filterErr(OperationErrorUnsupportedFilter, fmt.Sprintf("unsupported top-level filter operator %q", k))
		default:
			part, err := translateFieldFilter(k, filter[key])
			if err != nil {
				return translatedFilter{}, err
			}
			out.merge(part)
		}
	}
	return out, nil
}

func translateFieldFilter(field string, value any) (translatedFilter, error) {
	out := translatedFilter{}
	ops, isOpMap := value.(map[string]any)
	if !isOpMap {
		scalar, ok := toScalarValue(value)
		if !ok {
			return out, filterErr(OperationErrorValidation, fmt.Sprintf("field %q expects scalar value or operator object", field))
		}
		out.Must = append(out.Must, qdrantMatchCondition(field, scalar))
		return out, nil
	}
	if len(ops) == 0 {
		return out, filterErr(OperationErrorValidation, fmt.Sprintf("field %q has empty operator map", field))
	}

	names := make([]string, 0, len(ops))
	for op := range ops {
		names = append(names, op)
	}
	sort.Strings(names)
	for _, op := range names {
		switch strings.ToLower(strings.TrimSpace(op)) {
		case filterOpEq, filterOpNe:
			scalar, ok := toScalarValue(ops[op])
			if !ok {
				return translatedFilter{}, filterErr(OperationErrorValidation, fmt.Sprintf("operator %s for field %q expects scalar value", op, field))
			}
			if strings.EqualFold(op, filterOpEq) {
				out.Must = append(out.Must, qdrantMatchCondition(field, scalar))
			} else {
				out.MustNot = append(out.MustNot, qdrantMatchCondition(field, scalar))
			}
		case filterOpIn:
			values, ok := toScalarSlice(ops[op])
			if !ok || len(values) == 0 {
				return translatedFilter{}, filterErr(OperationErrorValidation, fmt.Sprintf("operator $in for field %q expects non-empty scalar array", field))
			}
			out.Must = append(out.Must, map[string]any{"key": field, "match": map[string]any{"any": values}})
		default:
			return translatedFilter{}, filterErr(OperationErrorUnsupportedFilter, fmt.Sprintf("unsupported filter operator %q for field %q", op, field))
		}
	}
	return out, nil
}

func filterErr(code OperationErrorCode, msg string) error {
	return opErr("filter_translate", code, msg, nil)
}

func qdrantMatchCondition(key string, value any) map[string]any {
	return map[string]any{"key": key, "match": map[string]any{"value": value}}
}

func toScalarSlice(value any) ([]any, bool) {
	switch typed := value.(type) {
	case []any:
		out := make([]any, 0, len(typed))
		for _, v := range typed {
			scalar, ok := toScalarValue(v)
			if !ok {
				return nil, false
			}
			out = append(out, scalar)
		}
		return out, true
	case []string:
		out := make([]any, 0, len(typed))
		for _, v := range typed {
			out = append(out, v)
		}
		return out, true
	default:
		return nil, false
	}
}

func toScalarValue(value any) (any, bool) {
	switch typed := value.(type) {
	case string, bool, int, int64, float64:
		return typed, true
	case int32:
		return int64(typed), true
	case float32:
		return float64(typed), true
	case fmt.Stringer:
		return typed.String(), true
	default:
		return nil, false
	}
}
