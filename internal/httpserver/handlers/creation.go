package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/productbazar/bazar/internal/apierr"
	"github.com/productbazar/bazar/internal/coordinator"
	"github.com/productbazar/bazar/internal/domain"
	"github.com/productbazar/bazar/internal/httpserver/deps"
	"github.com/productbazar/bazar/internal/httpserver/mw"
)

// maxCreationBody bounds job/project submissions, attachments included.
const maxCreationBody = 10 << 20

// CreateJob validates the "data" part of a multipart job submission and
// forwards the body to the upstream untouched.
func CreateJob(d deps.Deps) http.HandlerFunc {
	return submitMultipart(d, "/jobs", func(raw []byte) error {
		var sub domain.JobSubmission
		if err := json.Unmarshal(raw, &sub); err != nil {
			return apierr.Wrap(apierr.KindBadRequest, "invalid job payload", err)
		}
		return validateSubmission(d.Validate, &sub)
	})
}

// CreateProject is CreateJob for project submissions.
func CreateProject(d deps.Deps) http.HandlerFunc {
	return submitMultipart(d, "/projects", func(raw []byte) error {
		var sub domain.ProjectSubmission
		if err := json.Unmarshal(raw, &sub); err != nil {
			return apierr.Wrap(apierr.KindBadRequest, "invalid project payload", err)
		}
		return validateSubmission(d.Validate, &sub)
	})
}

// submitMultipart buffers the multipart body, runs check against its "data"
// part and replays the exact bytes upstream on success. Buffering keeps the
// boundary and file parts byte-identical.
func submitMultipart(d deps.Deps, path string, check func(raw []byte) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mw.SessionFrom(r.Context())
		if s.Viewer() == nil {
			writeError(w, d.Logger, apierr.New(apierr.KindUnauthenticated, "sign in required"))
			return
		}

		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "multipart/form-data" || params["boundary"] == "" {
			writeError(w, d.Logger, apierr.New(apierr.KindBadRequest, "multipart/form-data body required"))
			return
		}

		raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCreationBody))
		if err != nil {
			writeError(w, d.Logger, apierr.Wrap(apierr.KindBadRequest, "submission too large", err))
			return
		}

		data, err := dataPart(raw, params["boundary"])
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if err := check(data); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		var out json.RawMessage
		err = s.Coordinator.DoJSON(r.Context(), coordinator.Request{
			Method:      http.MethodPost,
			Path:        path,
			RawBody:     raw,
			ContentType: r.Header.Get("Content-Type"),
			Priority:    coordinator.PriorityHigh,
		}, &out)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, dataEnvelope{Success: true, Data: out})
	}
}

// dataPart extracts the JSON "data" form field from the buffered body.
func dataPart(raw []byte, boundary string) ([]byte, error) {
	mr := multipart.NewReader(bytes.NewReader(raw), boundary)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apierr.Wrap(apierr.KindBadRequest, "malformed multipart body", err)
		}
		if part.FormName() != "data" {
			continue
		}
		data, err := io.ReadAll(io.LimitReader(part, 1<<20))
		if err != nil {
			return nil, apierr.Wrap(apierr.KindBadRequest, "unreadable data part", err)
		}
		return data, nil
	}
	return nil, apierr.New(apierr.KindBadRequest, "missing data part")
}

// validateSubmission maps validator failures to field errors keyed by the
// struct's json names.
func validateSubmission(v *validator.Validate, sub any) error {
	err := v.Struct(sub)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apierr.Wrap(apierr.KindBadRequest, "invalid submission", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = "failed " + fe.Tag() + " check"
	}
	ae := apierr.New(apierr.KindBadRequest, "submission failed validation")
	ae.FieldErrors = fields
	return ae
}
