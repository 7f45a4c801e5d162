package utils

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Pagination holds pagination parameters.
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// ParsePagination reads page and limit query params with sane defaults.
func ParsePagination(c *fiber.Ctx) Pagination {
	return ParsePaginationWithLimit(c, 10)
}

// ParsePaginationWithLimit is ParsePagination with a custom default limit.
func ParsePaginationWithLimit(c *fiber.Ctx, defaultLimit int) Pagination {
	page := parseInt(c.Query("page"), 1)
	limit := parseInt(c.Query("limit"), defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if page <= 0 {
		page = 1
	}

	return NewPagination(page, limit)
}

// ParseStrictPagination is like ParsePagination but reports non-positive
// values instead of replacing them.
func ParseStrictPagination(c *fiber.Ctx) (Pagination, bool) {
	page := parseInt(c.Query("page", "1"), 0)
	limit := parseInt(c.Query("limit", "10"), 0)
	if page <= 0 || limit <= 0 {
		return Pagination{}, false
	}
	return NewPagination(page, limit), true
}

func NewPagination(page, limit int) Pagination {
	return Pagination{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// TotalPages returns the number of pages needed for total items.
func (p Pagination) TotalPages(total int64) int {
	if p.Limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(p.Limit)))
}

func parseInt(value string, fallback int) int {
	if parsed, err := strconv.Atoi(value); err == nil {
		return parsed
	}
	return fallback
}
