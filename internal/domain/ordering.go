package domain

import "errors"

// ErrInvalidOrdering indicates that the ordering field is not allowed.
var ErrInvalidOrdering = errors.New("invalid ordering field")

// Ordering holds a sort field and its direction.
type Ordering struct {
	Field string
	Desc  bool
}

// ParseOrdering parses raw ordering parameter of the form "field" or "-field".
//
// The first allowed field is used when raw is empty.
func ParseOrdering(raw string, allowed ...string) (Ordering, error) {
	if raw == "" {
		return Ordering{Field: allowed[0]}, nil
	}

	o := Ordering{Field: raw}
	if raw[0] == '-' {
		o = Ordering{Field: raw[1:], Desc: true}
	}

	for _, f := range allowed {
		if f == o.Field {
			return o, nil
		}
	}

	return Ordering{}, ErrInvalidOrdering
}
