// Package pagination provides the offset cursor used by list endpoints.
package pagination

import (
	"fmt"
	"strconv"
	"strings"

	"key-transactions-service/internal/entities"
)

// Cursor addresses one page of an ordered result set.
type Cursor struct {
	Offset int
	Prev   bool
}

// String renders the wire form "offset:is_prev".
func (c Cursor) String() string {
	prev := 0
	if c.Prev {
		prev = 1
	}
	return fmt.Sprintf("%d:%d", c.Offset, prev)
}

// Parse decodes a cursor from its wire form. An empty string is the first page.
func Parse(s string) (Cursor, error) {
	if s == "" {
		return Cursor{}, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return Cursor{}, &entities.ValidationError{Field: "cursor", Message: "Invalid cursor parameter."}
	}
	offset, err := strconv.Atoi(parts[0])
	if err != nil || offset < 0 {
		return Cursor{}, &entities.ValidationError{Field: "cursor", Message: "Invalid cursor parameter."}
	}
	prev, err := strconv.Atoi(parts[1])
	if err != nil || (prev != 0 && prev != 1) {
		return Cursor{}, &entities.ValidationError{Field: "cursor", Message: "Invalid cursor parameter."}
	}
	return Cursor{Offset: offset, Prev: prev == 1}, nil
}

// Page is one window over a result set of Total items.
type Page struct {
	Offset  int
	Size    int
	Total   int
	HasPrev bool
	HasNext bool
}

// Slice computes the page window for a cursor over total items. A prev cursor
// steps one page back from its offset; steps before the start clamp to zero
// and offsets past the end clamp to an empty last page.
func Slice(c Cursor, pageSize, total int) Page {
	offset := c.Offset
	if c.Prev {
		offset -= pageSize
	}
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := offset + pageSize
	if end > total {
		end = total
	}
	return Page{
		Offset:  offset,
		Size:    end - offset,
		Total:   total,
		HasPrev: offset > 0,
		HasNext: end < total,
	}
}

// PrevCursor returns the cursor addressing the page before p.
func (p Page) PrevCursor() Cursor { return Cursor{Offset: p.Offset, Prev: true} }

// NextCursor returns the cursor addressing the page after p.
func (p Page) NextCursor() Cursor { return Cursor{Offset: p.Offset + p.Size} }

// LinkHeader renders the RFC 5988 Link header the list endpoints respond with.
// Both relations are always present; the results flag tells the client whether
// following the link yields more rows.
func LinkHeader(url string, p Page) string {
	return fmt.Sprintf(
		`<%s>; rel="previous"; results="%t"; cursor="%s", <%s>; rel="next"; results="%t"; cursor="%s"`,
		url, p.HasPrev, p.PrevCursor(),
		url, p.HasNext, p.NextCursor(),
	)
}
