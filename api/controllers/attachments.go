package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/licensepro/alvara-backend/api/responses"
	"github.com/licensepro/alvara-backend/internal/attachments"
	"github.com/licensepro/alvara-backend/pkg/enums"
	pkgerrors "github.com/licensepro/alvara-backend/pkg/errors"
	"github.com/licensepro/alvara-backend/pkg/logger"
)

// multipart framing overhead on top of the payload cap.
const uploadOverheadBytes = 64 * 1024

type attachmentDownloadResponse struct {
	URL string `json:"url"`
}

// AttachmentUpload stores a license document. The body is a multipart
// form with a "file" part and a "kind" field (current|renewal). The
// request is capped before any part is read so an oversized body never
// reaches storage.
func AttachmentUpload(svc attachments.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "attachment service unavailable"))
			return
		}

		licenseID, err := parseIDParam(r, "licenseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+uploadOverheadBytes)
		if err := r.ParseMultipartForm(maxBytes + uploadOverheadBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "file exceeds the size limit").WithDetails(map[string]any{"max_bytes": maxBytes}))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		kind, err := enums.ParseAttachmentKind(strings.TrimSpace(r.FormValue("kind")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid attachment kind"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file part is required"))
			return
		}
		defer file.Close()

		dto, err := svc.Upload(r.Context(), licenseID, attachments.UploadInput{
			Kind:        kind,
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			SizeBytes:   header.Size,
			Content:     file,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// AttachmentDownload returns a short-lived signed URL for the object.
func AttachmentDownload(svc attachments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "attachment service unavailable"))
			return
		}

		fileID, err := parseIDParam(r, "fileId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		url, err := svc.SignedDownload(r.Context(), fileID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, attachmentDownloadResponse{URL: url})
	}
}

// AttachmentDelete removes the row and its stored object.
func AttachmentDelete(svc attachments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "attachment service unavailable"))
			return
		}

		fileID, err := parseIDParam(r, "fileId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), fileID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
