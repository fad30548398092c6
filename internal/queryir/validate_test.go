package queryir

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_PlainSelect(t *testing.T) {
	require.NoError(t, Validate(Select{From: "PERSON", Alias: "PERSON"}))
}

func TestValidate_JoinWithCondition(t *testing.T) {
	q := &Select{
		From:  "EMPLOYEE",
		Alias: "EMPLOYEE",
		Joins: []Join{{
			Table: "PERSON",
			Alias: "PERSON",
			On: And{Predicates: []Predicate{
				ColumnEquals{Left: Column{"PERSON", "ID"}, Right: Column{"EMPLOYEE", "ID"}},
			}},
		}},
		OrderBy: []Column{{"EMPLOYEE", "REV"}},
	}
	require.NoError(t, Validate(q))
}

func TestValidate_EmptyJoinCondition(t *testing.T) {
	q := Select{
		From:  "EMPLOYEE",
		Alias: "EMPLOYEE",
		Joins: []Join{{Table: "PERSON", Alias: "PERSON", On: And{}}},
	}
	err := Validate(q)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyJoinCondition))
}

func TestValidate_UnknownAlias(t *testing.T) {
	q := Select{
		From:  "A",
		Alias: "A",
		Joins: []Join{{
			Table: "B",
			Alias: "B",
			On:    ColumnEquals{Left: Column{"B", "ID"}, Right: Column{"C", "ID"}},
		}},
	}
	assert.ErrorContains(t, Validate(q), "unknown alias C")
}

func TestValidate_DuplicateAlias(t *testing.T) {
	q := Select{
		From:  "A",
		Alias: "A",
		Joins: []Join{{
			Table: "A",
			Alias: "A",
			On:    ColumnEquals{Left: Column{"A", "ID"}, Right: Column{"A", "ID"}},
		}},
	}
	assert.ErrorContains(t, Validate(q), "already in use")
}

func TestValidate_OrderByOutOfScope(t *testing.T) {
	q := Select{From: "A", Alias: "A", OrderBy: []Column{{"Z", "REV"}}}
	assert.Error(t, Validate(q))
}

func TestValidate_Nil(t *testing.T) {
	var q *Select
	assert.Error(t, Validate(q))
	assert.Error(t, Validate(nil))
}
