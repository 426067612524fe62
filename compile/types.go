package compile

import (
	"fmt"
	"strings"
)

// Statement holds compiled SQL text and its bind arguments.
// The Nth placeholder in SQL corresponds to Args[N-1].
type Statement struct {
	SQL  string
	Args []any
}

// ParamCount returns the number of bound arguments.
func (s Statement) ParamCount() int {
	return len(s.Args)
}

// String renders the statement for logs and the CLI.
func (s Statement) String() string {
	if len(s.Args) == 0 {
		return s.SQL
	}
	var b strings.Builder
	b.WriteString(s.SQL)
	b.WriteString(" -- args: [")
	for i, a := range s.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%#v", a)
	}
	b.WriteString("]")
	return b.String()
}
