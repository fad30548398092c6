package queryir

// Query is a statement in the IR.
type Query interface {
	queryNode()
}

// Predicate is a join condition.
type Predicate interface {
	predicateNode()
}

// Column references a column through a table alias.
type Column struct {
	Alias string
	Name  string
}

// Select reads every column of From and its joined tables.
//
//	select * from <From> <Alias> <Joins...> order by <OrderBy...>
type Select struct {
	From    string
	Alias   string
	Joins   []Join
	OrderBy []Column
}

func (Select) queryNode() {}

// Join is an inner join appended to a Select, in order.
type Join struct {
	Table string
	Alias string
	On    Predicate
}

// ColumnEquals compares two columns: <Left> = <Right>.
type ColumnEquals struct {
	Left  Column
	Right Column
}

func (ColumnEquals) predicateNode() {}

// And is a conjunction. An empty And has no terms and is rejected by Validate.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}
