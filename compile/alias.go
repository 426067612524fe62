package compile

import "strconv"

// TableAlias allocates t1, t2, ... for the tables of one statement.
type TableAlias struct {
	n int
}

// NewTableAlias returns an allocator whose first alias is t1.
func NewTableAlias() *TableAlias {
	return &TableAlias{}
}

// Peek returns the alias Next would return, without consuming it.
func (a *TableAlias) Peek() string {
	return "t" + strconv.Itoa(a.n+1)
}

// Next consumes and returns the next alias.
func (a *TableAlias) Next() string {
	a.n++
	return "t" + strconv.Itoa(a.n)
}
