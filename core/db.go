package core

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination bounds a list query to a single page.
type Pagination struct {
	Page     int
	PageSize int
}

func (p *Pagination) Clean() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

func (p Pagination) Limit() int  { return p.PageSize }
func (p Pagination) Offset() int { return (p.Page - 1) * p.PageSize }

// Paginate slices already-loaded rows to the requested page; for repositories
// that cannot push LIMIT/OFFSET down to the store.
func Paginate[T any](rows []T, p Pagination) []T {
	p.Clean()
	lo := p.Offset()
	if lo >= len(rows) {
		return []T{}
	}
	hi := lo + p.Limit()
	if hi > len(rows) {
		hi = len(rows)
	}
	return rows[lo:hi]
}
