package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/licensepro/alvara-backend/api/responses"
	"github.com/licensepro/alvara-backend/api/validators"
	"github.com/licensepro/alvara-backend/internal/companies"
	pkgerrors "github.com/licensepro/alvara-backend/pkg/errors"
	"github.com/licensepro/alvara-backend/pkg/logger"
	"github.com/licensepro/alvara-backend/pkg/pagination"
	"github.com/licensepro/alvara-backend/pkg/types"
)

type companyCreateRequest struct {
	Name         string        `json:"name" validate:"required"`
	FantasyName  string        `json:"fantasy_name" validate:"required"`
	CNPJ         string        `json:"cnpj" validate:"required"`
	Active       *bool         `json:"active"`
	Latitude     *string       `json:"latitude"`
	Longitude    *string       `json:"longitude"`
	RenewalLinks types.JSONMap `json:"renewal_links"`
}

type companyUpdateRequest struct {
	Name         *string        `json:"name"`
	FantasyName  *string        `json:"fantasy_name"`
	CNPJ         *string        `json:"cnpj"`
	Active       *bool          `json:"active"`
	Latitude     *string        `json:"latitude"`
	Longitude    *string        `json:"longitude"`
	RenewalLinks *types.JSONMap `json:"renewal_links"`
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}

func parsePageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

func parseBoolFilter(r *http.Request, key string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	switch strings.ToLower(raw) {
	case "true":
		value := true
		return &value, nil
	case "false":
		value := false
		return &value, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a boolean").WithDetails(map[string]any{"field": key})
}

// CompanyCreate registers a new company.
func CompanyCreate(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "company service unavailable"))
			return
		}

		var body companyCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), companies.CreateCompanyInput{
			Name:         body.Name,
			FantasyName:  body.FantasyName,
			CNPJ:         body.CNPJ,
			Active:       body.Active,
			Latitude:     body.Latitude,
			Longitude:    body.Longitude,
			RenewalLinks: body.RenewalLinks,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// CompanyGet returns one company by id.
func CompanyGet(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "company service unavailable"))
			return
		}

		id, err := parseIDParam(r, "companyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

// CompanyList returns a cursor page of companies.
func CompanyList(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "company service unavailable"))
			return
		}

		page, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		active, err := parseBoolFilter(r, "active")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), companies.ListParams{
			Search: strings.TrimSpace(r.URL.Query().Get("search")),
			Active: active,
			Params: page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// CompanyUpdate patches the provided fields onto the company.
func CompanyUpdate(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "company service unavailable"))
			return
		}

		id, err := parseIDParam(r, "companyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body companyUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), id, companies.UpdateCompanyInput{
			Name:         body.Name,
			FantasyName:  body.FantasyName,
			CNPJ:         body.CNPJ,
			Active:       body.Active,
			Latitude:     body.Latitude,
			Longitude:    body.Longitude,
			RenewalLinks: body.RenewalLinks,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

// CompanyDelete removes the company and cascades its licenses.
func CompanyDelete(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "company service unavailable"))
			return
		}

		id, err := parseIDParam(r, "companyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
