package audit

import (
	"github.com/roach88/revaudit/internal/row"
)

var types = EnversRevisionTypes

func add(rev int64, cols row.Row) row.Row    { return auditRow(rev, 0, cols) }
func modify(rev int64, cols row.Row) row.Row { return auditRow(rev, 1, cols) }
func remove(rev int64, cols row.Row) row.Row { return auditRow(rev, 2, cols) }

func auditRow(rev, revType int64, cols row.Row) row.Row {
	r := row.Row{"REV": rev, "REVTYPE": revType}
	for k, v := range cols {
		r[k] = v
	}
	return r
}
