package pagination

const (
	// MaxLimit caps how many rows any page query can request.
	MaxLimit = 100
)

// Params is a normalized page request.
type Params struct {
	Page  int
	Limit int
}

// New normalizes page and limit; non-positive values take the defaults.
func New(page, limit, defaultLimit int) Params {
	if page < 1 {
		page = 1
	}
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit}
}

// Offset is the number of rows to skip.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pages returns ceil(total/limit).
func (p Params) Pages(total int64) int {
	if total <= 0 || p.Limit <= 0 {
		return 0
	}
	limit := int64(p.Limit)
	return int((total + limit - 1) / limit)
}
