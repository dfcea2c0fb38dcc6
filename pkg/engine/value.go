// Package engine implements the in-memory relational model: cell values,
// rows, schemas, tables, views, databases, predicate matching, projection
// and left outer join materialization.
package engine

import "fmt"

// ColumnType is a declared column's type tag.
type ColumnType string

const (
	TypeText    ColumnType = "TEXT"
	TypeInteger ColumnType = "INTEGER"
	TypeReal    ColumnType = "REAL"
	TypeBlob    ColumnType = "BLOB"
	TypeNone    ColumnType = "" // untyped column, accepts anything
)

// Value is a tagged cell value: nil, int64, float64, string, or []byte.
type Value = any

// Accepts reports whether v is compatible with column type ct, per
// SPEC_FULL.md §4.3: null bypasses the check for any type; TEXT accepts
// string, INTEGER accepts int64, REAL accepts float64, BLOB accepts
// anything, and an untyped column accepts anything.
func Accepts(ct ColumnType, v Value) bool {
	if v == nil {
		return true
	}
	switch ct {
	case TypeText:
		_, ok := v.(string)
		return ok
	case TypeInteger:
		_, ok := v.(int64)
		return ok
	case TypeReal:
		_, ok := v.(float64)
		return ok
	case TypeBlob:
		return true
	case TypeNone:
		return true
	default:
		return true
	}
}

// Compare orders two values, returning -1, 0, or 1. Null sorts before any
// non-null value, and int64 and float64 compare numerically with each
// other. Other values of differing dynamic type are ordered by a stable
// fallback on their formatted text so that sorts remain deterministic even
// over heterogeneous/untyped columns.
func Compare(a, b Value) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	switch av := a.(type) {
	case int64:
		if bv, ok := b.(int64); ok {
			return cmpOrdered(av, bv)
		}
		if bv, ok := b.(float64); ok {
			return cmpOrdered(float64(av), bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return cmpOrdered(av, bv)
		}
		if bv, ok := b.(int64); ok {
			return cmpOrdered(av, float64(bv))
		}
	case string:
		if bv, ok := b.(string); ok {
			return cmpOrdered(av, bv)
		}
	case []byte:
		if bv, ok := b.([]byte); ok {
			return cmpOrdered(string(av), string(bv))
		}
	}
	return cmpOrdered(fmt.Sprint(a), fmt.Sprint(b))
}

func cmpOrdered[T int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Equal reports deep equality between two cell values.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if av, ok := a.([]byte); ok {
		if bv, ok := b.([]byte); ok {
			return string(av) == string(bv)
		}
		return false
	}
	return a == b
}
