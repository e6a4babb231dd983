package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
)

// parsePagination reads page and pageSize from the query string. Values
// outside page >= 1 and 1 <= pageSize <= 100 are rejected, not clamped.
func parsePagination(r *http.Request) (page, pageSize int, err error) {
	page, pageSize = defaultPage, defaultPageSize

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, fmt.Errorf("page must be an integer >= 1")
		}
	}
	if raw := r.URL.Query().Get("pageSize"); raw != "" {
		pageSize, err = strconv.Atoi(raw)
		if err != nil || pageSize < 1 || pageSize > maxPageSize {
			return 0, 0, fmt.Errorf("pageSize must be an integer between 1 and %d", maxPageSize)
		}
	}
	return page, pageSize, nil
}

// totalPages is ceil(totalCount / pageSize).
func totalPages(totalCount, pageSize int) int {
	return (totalCount + pageSize - 1) / pageSize
}

// parsePathID reads the numeric {id} path variable. Routes constrain it to
// digits, so a parse failure only happens on overflow.
func parsePathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// parseTimeParam accepts YYYY-MM-DD dates or full RFC 3339 timestamps.
func parseTimeParam(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("expected YYYY-MM-DD or RFC 3339 timestamp, got %q", value)
}
