// Package pagepkg provides page number pagination helpers.
package pagepkg

// Page is a 1-based page of a fixed length.
type Page struct {
	Number int32 `json:"page_number"`
	Length int32 `json:"page_length"`
}

// New returns Page with defaults applied: a zero number becomes the first page,
// a zero length becomes defaultLength and length is capped by maxLength.
func New(number, length, defaultLength, maxLength int32) Page {
	if number < 1 {
		number = 1
	}

	if length < 1 {
		length = defaultLength
	}

	if length > maxLength {
		length = maxLength
	}

	return Page{Number: number, Length: length}
}

// Limit returns SQL limit for the page.
func (p Page) Limit() int32 {
	return p.Length
}

// Offset returns SQL offset for the page.
func (p Page) Offset() int32 {
	return (p.Number - 1) * p.Length
}
