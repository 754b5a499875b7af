package domain

import (
	"fmt"
	"strconv"
)

// ConditionOperator identifies a predicate used in conditional grants.
type ConditionOperator string

const (
	// OperatorEquals requires the request field to equal the configured value.
	OperatorEquals ConditionOperator = "equals"

	// OperatorNotEquals requires the request field to differ from the configured value.
	OperatorNotEquals ConditionOperator = "notEquals"

	// OperatorIn requires the request field to be one of the configured values.
	OperatorIn ConditionOperator = "in"

	// OperatorRange requires a numeric request field to fall within [min, max].
	OperatorRange ConditionOperator = "range"
)

// Condition is a single predicate attached to a grant. All conditions on a
// grant must hold for the grant to apply (logical AND).
type Condition struct {
	Field    string            `json:"field"`
	Operator ConditionOperator `json:"operator"`
	Value    any               `json:"value,omitempty"`
	Values   []any             `json:"values,omitempty"`
	Min      *float64          `json:"min,omitempty"`
	Max      *float64          `json:"max,omitempty"`
}

// Validate rejects malformed conditions at role-load time so the evaluator
// never sees an unknown operator.
func (c *Condition) Validate() error {
	if c.Field == "" {
		return ErrConditionFieldRequired
	}
	switch c.Operator {
	case OperatorEquals, OperatorNotEquals:
		if c.Value == nil {
			return ErrConditionValueRequired
		}
	case OperatorIn:
		if len(c.Values) == 0 {
			return ErrConditionValueRequired
		}
	case OperatorRange:
		if c.Min == nil && c.Max == nil {
			return ErrConditionValueRequired
		}
	default:
		return ErrUnknownConditionOperator
	}
	return nil
}

// Evaluate applies the predicate to a flat request context. A missing field
// fails every operator: conditions narrow grants, so absence means deny.
func (c *Condition) Evaluate(requestContext map[string]any) bool {
	fieldValue, ok := requestContext[c.Field]
	if !ok {
		return false
	}

	switch c.Operator {
	case OperatorEquals:
		return valuesEqual(fieldValue, c.Value)
	case OperatorNotEquals:
		return !valuesEqual(fieldValue, c.Value)
	case OperatorIn:
		for _, candidate := range c.Values {
			if valuesEqual(fieldValue, candidate) {
				return true
			}
		}
		return false
	case OperatorRange:
		number, ok := toFloat(fieldValue)
		if !ok {
			return false
		}
		if c.Min != nil && number < *c.Min {
			return false
		}
		if c.Max != nil && number > *c.Max {
			return false
		}
		return true
	default:
		// Unreachable for validated roles.
		return false
	}
}

// valuesEqual compares two values loosely: JSON decoding turns numbers into
// float64 while role documents may configure integers, so both sides are
// compared numerically when possible and as strings otherwise.
func valuesEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// toFloat converts numeric types and numeric strings to float64.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		number, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return number, true
	default:
		return 0, false
	}
}
