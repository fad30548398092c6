package audit

import (
	"github.com/roach88/revaudit/internal/row"
)

// RevisionType is the kind of change an audit row records.
type RevisionType int

const (
	// RevisionUnknown means the row has no revision type column or its
	// value is not mapped.
	RevisionUnknown RevisionType = iota
	RevisionAdd
	RevisionModify
	RevisionRemove
)

func (t RevisionType) String() string {
	switch t {
	case RevisionAdd:
		return "Add"
	case RevisionModify:
		return "Modify"
	case RevisionRemove:
		return "Remove"
	default:
		return "Unknown"
	}
}

// RevisionTypes maps raw revision type values to RevisionType.
// Values are compared in their canonical string form (row.Format), so 0,
// int64(0) and "0" all match "0".
type RevisionTypes struct {
	Column string
	Add    string
	Modify string
	Remove string
}

// EnversRevisionTypes is the Hibernate Envers convention: REVTYPE 0/1/2.
var EnversRevisionTypes = RevisionTypes{Column: "REVTYPE", Add: "0", Modify: "1", Remove: "2"}

// Of returns the revision type of an audit row.
func (m RevisionTypes) Of(r row.Row) RevisionType {
	v, ok := r.Get(m.Column)
	if !ok || v == nil {
		return RevisionUnknown
	}
	switch row.Format(v) {
	case m.Add:
		return RevisionAdd
	case m.Modify:
		return RevisionModify
	case m.Remove:
		return RevisionRemove
	default:
		return RevisionUnknown
	}
}
