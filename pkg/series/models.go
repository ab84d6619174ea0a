package series

import "math"

// PageSize is the number of items shown per page.
const PageSize = 20

// NoOffset is the sentinel offset meaning no valid page was requested. The
// list request is sent without an offset parameter.
const NoOffset = -1

type Thumbnail struct {
	Path      string `json:"path"`
	Extension string `json:"extension"`
}

type Item struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Thumbnail Thumbnail `json:"thumbnail"`
	Modified  string    `json:"modified"`
}

// ImageURL joins the thumbnail path and extension into a fetchable URL.
func (i Item) ImageURL() string {
	if i.Thumbnail.Path == "" {
		return ""
	}
	return i.Thumbnail.Path + "." + i.Thumbnail.Extension
}

type ListQuery struct {
	Offset     int
	SearchText string
}

type ListResponse struct {
	Offset  int    `json:"offset"`
	Limit   int    `json:"limit"`
	Total   int    `json:"total"`
	Count   int    `json:"count"`
	Results []Item `json:"results"`
}

type listEnvelope struct {
	Code   int           `json:"code"`
	Status string        `json:"status"`
	Data   *ListResponse `json:"data"`
}

// OffsetForPage converts a zero-based page index into a result offset.
func OffsetForPage(page int) int {
	return page * PageSize
}

// PageCount is the number of pages needed to show total results, limit at a
// time.
func PageCount(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}
