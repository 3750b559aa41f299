package domain

// PostPage is one fixed-size window into an ordered sequence of posts.
// Page numbers are 1-based. Requests for pages outside the valid range are
// clamped to the nearest valid page rather than failing, so a PostPage is
// always well-formed: even an empty result set yields page 1 of 1.
type PostPage struct {
	Items      []Post `json:"items"`
	Number     int    `json:"number"`
	TotalPages int    `json:"total_pages"`
	TotalItems int    `json:"total_items"`
	HasNext    bool   `json:"has_next"`
	HasPrev    bool   `json:"has_prev"`
}
