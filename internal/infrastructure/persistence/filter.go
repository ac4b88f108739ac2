package persistence

import (
	"fmt"
	"strings"

	"github.com/billing/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// applyPagination applies page/page-size offsets from the filter
func applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	return query
}

// applyOrdering applies ordering from the filter, restricted to the given
// sortable columns to keep user input out of the SQL
func applyOrdering(query *gorm.DB, filter shared.Filter, sortable map[string]bool) *gorm.DB {
	column := filter.OrderBy
	if column == "" || !sortable[column] {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		direction = "ASC"
	}
	return query.Order(fmt.Sprintf("%s %s", column, direction))
}
