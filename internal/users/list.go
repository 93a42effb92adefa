package users

import (
	pkgpagination "github.com/licensepro/alvara-backend/pkg/pagination"
)

// ListParams holds the list filters accepted by the users endpoint.
type ListParams struct {
	Active *bool
	pkgpagination.Params
}

// ListResult is a single page of users plus the next-page cursor.
type ListResult struct {
	Items  []UserDTO `json:"items"`
	Cursor string    `json:"cursor"`
}

type listQuery struct {
	active *bool
	limit  int
	cursor *pkgpagination.Cursor
}
