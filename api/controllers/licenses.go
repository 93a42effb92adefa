package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/licensepro/alvara-backend/api/responses"
	"github.com/licensepro/alvara-backend/api/validators"
	"github.com/licensepro/alvara-backend/internal/licenses"
	"github.com/licensepro/alvara-backend/pkg/enums"
	pkgerrors "github.com/licensepro/alvara-backend/pkg/errors"
	"github.com/licensepro/alvara-backend/pkg/logger"
)

type licenseCreateRequest struct {
	CompanyID      string    `json:"company_id" validate:"required"`
	Name           string    `json:"name" validate:"required"`
	Type           string    `json:"type" validate:"required"`
	ExpirationDate time.Time `json:"expiration_date" validate:"required"`
	Notes          *string   `json:"notes"`
}

type licenseUpdateRequest struct {
	CompanyID      *string    `json:"company_id"`
	Name           *string    `json:"name"`
	Type           *string    `json:"type"`
	ExpirationDate *time.Time `json:"expiration_date"`
	Notes          *string    `json:"notes"`
}

func (b licenseCreateRequest) toInput() (licenses.CreateLicenseInput, error) {
	companyID, err := uuid.Parse(strings.TrimSpace(b.CompanyID))
	if err != nil {
		return licenses.CreateLicenseInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid company_id")
	}
	licenseType, err := enums.ParseLicenseType(strings.TrimSpace(b.Type))
	if err != nil {
		return licenses.CreateLicenseInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid license type")
	}
	return licenses.CreateLicenseInput{
		CompanyID:      companyID,
		Name:           b.Name,
		Type:           licenseType,
		ExpirationDate: b.ExpirationDate,
		Notes:          b.Notes,
	}, nil
}

func (b licenseUpdateRequest) toInput() (licenses.UpdateLicenseInput, error) {
	input := licenses.UpdateLicenseInput{
		Name:           b.Name,
		ExpirationDate: b.ExpirationDate,
		Notes:          b.Notes,
	}
	if b.CompanyID != nil {
		companyID, err := uuid.Parse(strings.TrimSpace(*b.CompanyID))
		if err != nil {
			return licenses.UpdateLicenseInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid company_id")
		}
		input.CompanyID = &companyID
	}
	if b.Type != nil {
		licenseType, err := enums.ParseLicenseType(strings.TrimSpace(*b.Type))
		if err != nil {
			return licenses.UpdateLicenseInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid license type")
		}
		input.Type = &licenseType
	}
	return input, nil
}

// LicenseCreate registers license metadata for a company.
func LicenseCreate(svc licenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "license service unavailable"))
			return
		}

		var body licenseCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// LicenseGet returns one license with its derived status and attachments.
func LicenseGet(svc licenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "license service unavailable"))
			return
		}

		id, err := parseIDParam(r, "licenseId")
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

// LicenseList returns a cursor page, optionally filtered by company,
// type, or derived status.
func LicenseList(svc licenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "license service unavailable"))
			return
		}

		page, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := licenses.ListParams{Params: page}
		if raw := strings.TrimSpace(r.URL.Query().Get("company_id")); raw != "" {
			companyID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid company_id"))
				return
			}
			params.CompanyID = &companyID
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			licenseType, err := enums.ParseLicenseType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid license type"))
				return
			}
			params.Type = &licenseType
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseLicenseStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status"))
				return
			}
			params.Status = &status
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// LicenseUpdate patches the provided fields onto the license.
func LicenseUpdate(svc licenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "license service unavailable"))
			return
		}

		id, err := parseIDParam(r, "licenseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body licenseUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

// LicenseDelete removes the license, its attachment rows, and their objects.
func LicenseDelete(svc licenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "license service unavailable"))
			return
		}

		id, err := parseIDParam(r, "licenseId")
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

// DashboardStats recomputes the classification counters on every call;
// nothing is cached or stored.
func DashboardStats(svc licenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "license service unavailable"))
			return
		}

		var companyID *uuid.UUID
		if raw := strings.TrimSpace(r.URL.Query().Get("company_id")); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid company_id"))
				return
			}
			companyID = &parsed
		}

		stats, err := svc.Stats(r.Context(), companyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}
