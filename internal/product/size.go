package product

import "strings"

// Size is a normalized garment size label.
type Size string

const (
	SizeXS   Size = "xs"
	SizeS    Size = "s"
	SizeM    Size = "m"
	SizeL    Size = "l"
	SizeXL   Size = "xl"
	SizeXXL  Size = "xxl"
	SizeXXXL Size = "xxxl"
)

var Sizes = []Size{SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL, SizeXXXL}

// ParseSize lower-cases and trims a size label. ok is false for labels
// outside the XS..XXXL set.
func ParseSize(label string) (Size, bool) {
	s := Size(strings.ToLower(strings.TrimSpace(label)))
	switch s {
	case SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL, SizeXXXL:
		return s, true
	}
	return "", false
}

// Field is the JSON/form name of the counter, e.g. "mQuantity".
func (s Size) Field() string {
	return string(s) + "Quantity"
}

// Column is the products table column holding the counter.
func (s Size) Column() string {
	return string(s) + "_quantity"
}

func (q *Quantities) counter(s Size) *int {
	switch s {
	case SizeXS:
		return &q.XS
	case SizeS:
		return &q.S
	case SizeM:
		return &q.M
	case SizeL:
		return &q.L
	case SizeXL:
		return &q.XL
	case SizeXXL:
		return &q.XXL
	case SizeXXXL:
		return &q.XXXL
	}
	return nil
}

// Get returns the counter for s, or 0 for an unknown size.
func (q Quantities) Get(s Size) int {
	if c := q.counter(s); c != nil {
		return *c
	}
	return 0
}

func (q *Quantities) Set(s Size, n int) {
	if c := q.counter(s); c != nil {
		*c = n
	}
}
