package httputil

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Page limits applied to list endpoints.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// ListQuery is a parsed offset/limit page plus an optional inclusive created_at window.
// Both bounds are in UTC when set.
type ListQuery struct {
	Offset        int
	Limit         int
	CreatedAtFrom *time.Time
	CreatedAtTo   *time.Time
}

// ParseListQuery reads offset, limit, created_at_from and created_at_to from the query string.
func ParseListQuery(c *gin.Context) (ListQuery, error) {
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		return ListQuery{}, fmt.Errorf("invalid offset parameter: must be a non-negative integer")
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageLimit)))
	if err != nil || limit < 1 || limit > MaxPageLimit {
		return ListQuery{}, fmt.Errorf("invalid limit parameter: must be between 1 and %d", MaxPageLimit)
	}

	from, err := parseTimeQuery(c, "created_at_from")
	if err != nil {
		return ListQuery{}, err
	}
	to, err := parseTimeQuery(c, "created_at_to")
	if err != nil {
		return ListQuery{}, err
	}
	if from != nil && to != nil && from.After(*to) {
		return ListQuery{}, fmt.Errorf("created_at_from must be before or equal to created_at_to")
	}

	return ListQuery{Offset: offset, Limit: limit, CreatedAtFrom: from, CreatedAtTo: to}, nil
}

func parseTimeQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s format: must be RFC3339 (e.g., 2026-02-01T00:00:00Z)", key)
	}

	utc := parsed.UTC()
	return &utc, nil
}
