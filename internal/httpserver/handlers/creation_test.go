package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/productbazar/bazar/internal/apierr"
	"github.com/productbazar/bazar/internal/domain"
	"github.com/productbazar/bazar/internal/logger"
)

func multipartBody(t *testing.T, fields map[string]string) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			t.Fatalf("write field %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return buf.Bytes(), w.Boundary()
}

func TestDataPartExtractsJSONField(t *testing.T) {
	raw, boundary := multipartBody(t, map[string]string{
		"data":  `{"title":"Backend Engineer"}`,
		"other": "ignored",
	})

	data, err := dataPart(raw, boundary)
	if err != nil {
		t.Fatalf("dataPart() error = %v", err)
	}
	var decoded struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("data part is not json: %v", err)
	}
	if decoded.Title != "Backend Engineer" {
		t.Errorf("title = %q", decoded.Title)
	}
}

func TestDataPartMissing(t *testing.T) {
	raw, boundary := multipartBody(t, map[string]string{"logo": "bytes"})

	_, err := dataPart(raw, boundary)
	if !apierr.IsKind(err, apierr.KindBadRequest) {
		t.Errorf("dataPart() error = %v, want bad request", err)
	}
}

func TestValidateSubmissionReportsFields(t *testing.T) {
	v := validator.New(validator.WithRequiredStructEnabled())

	err := validateSubmission(v, &domain.JobSubmission{
		Title:       "x",
		Description: "too short",
		JobType:     "weekend",
	})
	if err == nil {
		t.Fatal("invalid submission passed validation")
	}
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("error type = %T", err)
	}
	for _, field := range []string{"Title", "Description", "CompanyName", "JobType", "LocationType"} {
		if _, ok := ae.FieldErrors[field]; !ok {
			t.Errorf("no field error for %s: %v", field, ae.FieldErrors)
		}
	}

	ok := validateSubmission(v, &domain.JobSubmission{
		Title:        "Backend Engineer",
		Description:  "Build and run the marketplace upstream services.",
		CompanyName:  "Bazar",
		JobType:      "full-time",
		LocationType: "remote",
	})
	if ok != nil {
		t.Errorf("valid submission rejected: %v", ok)
	}
}

func TestWriteErrorMapsDomainErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"comment not found", domain.ErrCommentNotFound, 404},
		{"reply too deep", domain.ErrReplyTooDeep, 422},
		{"self reply", domain.ErrSelfReply, 422},
		{"unknown product", domain.ErrProductNotKnown, 409},
		{"unauthenticated", apierr.New(apierr.KindUnauthenticated, "sign in required"), 401},
		{"upstream down", apierr.New(apierr.KindServer, "upstream failed"), 502},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, logger.Nop(), tt.err)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			var env errorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("body is not an error envelope: %v", err)
			}
			if env.Success {
				t.Error("error envelope reports success")
			}
		})
	}
}

func TestIntParam(t *testing.T) {
	q := url.Values{"page": {"3"}, "limit": {"zero"}, "neg": {"-2"}}
	if got := intParam(q, "page", 1); got != 3 {
		t.Errorf("page = %d, want 3", got)
	}
	if got := intParam(q, "limit", 12); got != 12 {
		t.Errorf("unparsable limit = %d, want default 12", got)
	}
	if got := intParam(q, "neg", 12); got != 12 {
		t.Errorf("negative value = %d, want default 12", got)
	}
	if got := intParam(q, "absent", 6); got != 6 {
		t.Errorf("absent key = %d, want default 6", got)
	}
}
