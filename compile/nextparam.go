package compile

import "github.com/weldsql/weld"

// NextParam hands out placeholder tokens for one statement. A fresh value is
// created per compilation so numbering restarts at 1; it is not safe for
// concurrent use and does not need to be.
type NextParam struct {
	dialect Dialect
	count   int
}

// NewNextParam returns a sequencer for d starting at 1.
func NewNextParam(d Dialect) *NextParam {
	return &NextParam{dialect: d}
}

// Next returns the next placeholder token and advances.
func (p *NextParam) Next() string {
	p.count++
	return p.dialect.Placeholder(p.count)
}

// Count returns how many tokens have been issued.
func (p *NextParam) Count() int {
	return p.count
}

// MaxParams returns the dialect ceiling.
func (p *NextParam) MaxParams() int {
	return p.dialect.MaxParams()
}

// Check returns a *weld.ParamLimitError once more tokens have been issued
// than the dialect accepts.
func (p *NextParam) Check() error {
	if p.count > p.dialect.MaxParams() {
		return &weld.ParamLimitError{
			Dialect: p.dialect.Name(),
			Count:   p.count,
			Max:     p.dialect.MaxParams(),
		}
	}
	return nil
}
