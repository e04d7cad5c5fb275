package filter

import (
	"fmt"
	"strconv"
)

// MaxConditions is the maximum number of AND-combined conditions in one expression.
const MaxConditions = 16

// Expression is a conjunction of pre-filter conditions evaluated by the store
// before the nearest-neighbor stage.
type Expression struct {
	must []Condition
}

// NewExpression validates and creates an AND expression.
func NewExpression(must ...Condition) (Expression, error) {
	if len(must) > MaxConditions {
		return Expression{}, fmt.Errorf("too many filter conditions (max %d)", MaxConditions)
	}
	for i, c := range must {
		if c.key == "" {
			return Expression{}, fmt.Errorf("condition %d has no field", i)
		}
	}
	return Expression{must: must}, nil
}

// Must returns the conditions that all have to hold.
func (e Expression) Must() []Condition { return e.must }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.must) == 0 }

// Condition is a numeric range over a single indexed field.
type Condition struct {
	key       string
	rangeExpr Range
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, rangeExpr: r}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Range returns the numeric range expression.
func (c Condition) Range() Range { return c.rangeExpr }

// Range is a numeric range with optional inclusive boundaries.
// A nil boundary is open (-inf / +inf).
type Range struct {
	gte *float64
	lte *float64
}

// NewRangeFilter validates and creates a Range. At least one boundary is required.
func NewRangeFilter(gte, lte *float64) (Range, error) {
	if gte == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if gte != nil && lte != nil && *gte > *lte {
		return Range{}, fmt.Errorf("lower bound %s exceeds upper bound %s",
			formatBound(*gte), formatBound(*lte))
	}
	return Range{gte: gte, lte: lte}, nil
}

// Between is a shorthand for an inclusive [lo, hi] range.
func Between(lo, hi float64) (Range, error) {
	return NewRangeFilter(&lo, &hi)
}

// GTE returns the lower inclusive bound.
func (r Range) GTE() *float64 { return r.gte }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }

// Contains reports whether v lies inside the range.
func (r Range) Contains(v float64) bool {
	if r.gte != nil && v < *r.gte {
		return false
	}
	if r.lte != nil && v > *r.lte {
		return false
	}
	return true
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
