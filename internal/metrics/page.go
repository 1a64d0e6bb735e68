package metrics

import "strconv"

const maxPageLimit = 1000

// Page returns rows[offset:offset+limit] after clamping. limit <= 0 means all
// rows up to maxPageLimit.
func Page[T any](rows []T, limit, offset int) []T {
	limit, offset = ClampLimitOffset(limit, offset, len(rows))
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func ClampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset > n {
		offset = n
	}
	return limit, offset
}

// AtoiDef parses a query value, falling back to d.
func AtoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}
