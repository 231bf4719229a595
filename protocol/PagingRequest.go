package protocol

import (
	"fmt"
	"net/http"
	"strconv"
)

// PagingRequest supports a request constrained to a given page number and size
type PagingRequest struct {
	// PageNumber is the requested page number for this request
	PageNumber int `json:"pageNumber"`
	// PageSize is the requested page size for this request
	PageSize int `json:"pageSize"`
}

// NewPagingRequest creates a PagingRequest from the URL parameters of an
// incoming request. Absent parameters fall back to page 1 with a default
// size; values that do not parse as positive integers are an error.
func NewPagingRequest(r *http.Request) (*PagingRequest, error) {
	pagingRequest := PagingRequest{PageNumber: 1, PageSize: 100}
	query := r.URL.Query()
	if v := query.Get("pageNumber"); v != "" {
		pageNumber, err := strconv.Atoi(v)
		if err != nil || pageNumber < 1 {
			return nil, fmt.Errorf("pageNumber %q is not a positive integer", v)
		}
		pagingRequest.PageNumber = pageNumber
	}
	if v := query.Get("pageSize"); v != "" {
		pageSize, err := strconv.Atoi(v)
		if err != nil || pageSize < 1 {
			return nil, fmt.Errorf("pageSize %q is not a positive integer", v)
		}
		pagingRequest.PageSize = pageSize
	}
	return &pagingRequest, nil
}
