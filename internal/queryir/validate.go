package queryir

import (
	"errors"
	"fmt"
)

// ErrEmptyJoinCondition is returned for a join without any column equality.
var ErrEmptyJoinCondition = errors.New("join has no condition")

// Validate checks that a query stays inside the supported fragment:
// named tables and aliases, unique aliases, and non-empty join conditions
// that only reference aliases already in scope.
func Validate(q Query) error {
	switch query := q.(type) {
	case Select:
		return validateSelect(query)
	case *Select:
		if query == nil {
			return errors.New("nil select")
		}
		return validateSelect(*query)
	default:
		return fmt.Errorf("unsupported query type: %T", q)
	}
}

func validateSelect(s Select) error {
	if s.From == "" || s.Alias == "" {
		return errors.New("select requires a table and alias")
	}
	scope := map[string]bool{s.Alias: true}

	for i, j := range s.Joins {
		if j.Table == "" || j.Alias == "" {
			return fmt.Errorf("join %d: table and alias are required", i)
		}
		if scope[j.Alias] {
			return fmt.Errorf("join %d: alias %s already in use", i, j.Alias)
		}
		scope[j.Alias] = true

		n, err := validatePredicate(j.On, scope)
		if err != nil {
			return fmt.Errorf("join %s: %w", j.Alias, err)
		}
		if n == 0 {
			return fmt.Errorf("join %s: %w", j.Alias, ErrEmptyJoinCondition)
		}
	}

	for _, col := range s.OrderBy {
		if !scope[col.Alias] {
			return fmt.Errorf("order by references unknown alias %s", col.Alias)
		}
	}
	return nil
}

// validatePredicate returns the number of column equalities in p.
func validatePredicate(p Predicate, scope map[string]bool) (int, error) {
	switch pred := p.(type) {
	case nil:
		return 0, nil
	case ColumnEquals:
		for _, col := range []Column{pred.Left, pred.Right} {
			if !scope[col.Alias] {
				return 0, fmt.Errorf("unknown alias %s", col.Alias)
			}
			if col.Name == "" {
				return 0, errors.New("column name is empty")
			}
		}
		return 1, nil
	case And:
		total := 0
		for _, sub := range pred.Predicates {
			n, err := validatePredicate(sub, scope)
			if err != nil {
				return 0, err
			}
			total += n
		}
		return total, nil
	default:
		return 0, fmt.Errorf("unsupported predicate type: %T", p)
	}
}
