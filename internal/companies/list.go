package companies

import (
	"github.com/licensepro/alvara-backend/pkg/db/models"
	pkgpagination "github.com/licensepro/alvara-backend/pkg/pagination"
)

// ListParams holds the list filters accepted by the companies endpoint.
type ListParams struct {
	Search string
	Active *bool
	pkgpagination.Params
}

// ListResult is a single page of companies plus the next-page cursor.
type ListResult struct {
	Items  []CompanyDTO `json:"items"`
	Cursor string       `json:"cursor"`
}

type listQuery struct {
	search string
	active *bool
	limit  int
	cursor *pkgpagination.Cursor
}

func toListItems(rows []models.Company) []CompanyDTO {
	items := make([]CompanyDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return items
}
