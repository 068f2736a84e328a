package domain

import "strconv"

func formatID(id int64) string { return strconv.FormatInt(id, 10) }

// ParseID parses a decimal row id; it returns 0 for anything invalid.
func ParseID(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}
