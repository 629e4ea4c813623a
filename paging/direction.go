package paging

import (
	"fmt"
	"strings"
)

// Direction is a MongoDB sort direction.
type Direction int

const (
	Ascending  Direction = 1
	Descending Direction = -1
)

// Operator is the comparison operator used to build a range condition.
type Operator string

const (
	OpGreaterThan Operator = "$gt"
	OpLessThan    Operator = "$lt"
)

// Valid reports whether d is Ascending or Descending.
func (d Direction) Valid() bool {
	return d == Ascending || d == Descending
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection accepts "asc"/"ascending"/"1" and "desc"/"descending"/"-1".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending", "1":
		return Ascending, nil
	case "desc", "descending", "-1":
		return Descending, nil
	}
	return 0, configError("parse_direction", "ordering %q is not supported", s)
}

// ResolveDirection returns the comparison operator and the sort direction of
// the query that fetches the page after (forward) or before the pointer.
//
//	base  forward  operator  sort
//	asc   true     $gt       asc
//	asc   false    $lt       desc
//	desc  true     $lt       desc
//	desc  false    $gt       asc
func ResolveDirection(base Direction, forward bool) (Operator, Direction) {
	if forward {
		if base == Ascending {
			return OpGreaterThan, Ascending
		}
		return OpLessThan, Descending
	}
	if base == Ascending {
		return OpLessThan, Descending
	}
	return OpGreaterThan, Ascending
}
