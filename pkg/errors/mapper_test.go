package errors_test

import (
	"context"
	"fmt"
	"net/url"
	"testing"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/validate-sheets/pkg/errors"
)

func TestFromResponse_StructuredRateLimit(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	body := []byte(`{"error":{"code":"RATE_LIMIT_EXCEEDED","message":"Too many requests","request_id":"r1"}}`)

	appErr := errors.FromResponse(429, body)

	g.Expect(appErr.Kind).To(Equal(errors.KindAPI))
	g.Expect(appErr.HTTPStatus).To(Equal(429))
	g.Expect(appErr.UserMessage).To(ContainSubstring("Te veel verzoeken"))
	g.Expect(appErr.Recoverable).To(BeTrue())
	g.Expect(appErr.SuggestedAction).To(Equal(errors.ActionWait))
	g.Expect(appErr.TechnicalDetails).To(ContainSubstring("r1"))
}

func TestFromResponse_UnknownCode(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	body := []byte(`{"error":{"code":"X_NEW_CODE","message":"???","request_id":"r2"}}`)

	appErr := errors.FromResponse(400, body)

	g.Expect(appErr.Kind).To(Equal(errors.KindUnknown))
	g.Expect(appErr.TechnicalDetails).To(ContainSubstring("X_NEW_CODE"))
	g.Expect(appErr.TechnicalDetails).To(ContainSubstring("r2"))
}

func TestFromResponse_CodeTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code        string
		wantKind    errors.Kind
		wantStatus  int
		recoverable bool
	}{
		{"INVALID_FILE_TYPE", errors.KindValidation, 400, false},
		{"EXCEL_STRUCTURE_ERROR", errors.KindValidation, 400, false},
		{"VALIDATION_ERROR", errors.KindValidation, 400, false},
		{"FILE_NOT_FOUND", errors.KindAPI, 404, false},
		{"RATE_LIMIT_EXCEEDED", errors.KindAPI, 429, true},
		{"INTERNAL_SERVER_ERROR", errors.KindAPI, 500, true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			body := fmt.Appendf(nil, `{"error":{"code":%q,"request_id":"req"}}`, tt.code)

			appErr := errors.FromResponse(tt.wantStatus, body)

			g.Expect(appErr.Kind).To(Equal(tt.wantKind))
			g.Expect(appErr.HTTPStatus).To(Equal(tt.wantStatus))
			g.Expect(appErr.Recoverable).To(Equal(tt.recoverable))
			g.Expect(appErr.UserMessage).NotTo(BeEmpty())
		})
	}
}

func TestFromResponse_StatusClassFallback(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	clientErr := errors.FromResponse(422, []byte(`{"message":"veld ontbreekt"}`))
	g.Expect(clientErr.Kind).To(Equal(errors.KindValidation))
	g.Expect(clientErr.UserMessage).To(Equal("veld ontbreekt"))
	g.Expect(clientErr.Recoverable).To(BeFalse())

	serverErr := errors.FromResponse(503, []byte(`{"error":"overloaded"}`))
	g.Expect(serverErr.Kind).To(Equal(errors.KindAPI))
	g.Expect(serverErr.Recoverable).To(BeTrue())
	g.Expect(serverErr.TechnicalDetails).To(Equal("overloaded"))

	oddErr := errors.FromResponse(302, nil)
	g.Expect(oddErr.Kind).To(Equal(errors.KindUnknown))
}

func TestFromResponse_MessageFieldPriority(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	// "message" wins over "error" and "detail" when all are present.
	body := []byte(`{"message":"eerste","error":"tweede","detail":"derde"}`)
	g.Expect(errors.FromResponse(400, body).UserMessage).To(Equal("eerste"))

	body = []byte(`{"error":"tweede","detail":"derde"}`)
	g.Expect(errors.FromResponse(400, body).UserMessage).To(Equal("tweede"))

	body = []byte(`{"detail":"derde"}`)
	g.Expect(errors.FromResponse(400, body).UserMessage).To(Equal("derde"))

	g.Expect(errors.FromResponse(400, []byte(`{}`)).UserMessage).To(Equal(errors.MsgBadRequest))
}

func TestFromTransport_Timeout(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	appErr := errors.FromTransport(context.DeadlineExceeded)

	g.Expect(appErr.Kind).To(Equal(errors.KindNetwork))
	g.Expect(appErr.UserMessage).To(Equal(errors.MsgTimeout))
	g.Expect(appErr.Recoverable).To(BeTrue())
}

func TestFromTransport_ConnectionFailure(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	urlErr := &url.Error{Op: "Post", URL: "http://localhost:1/upload", Err: fmt.Errorf("connection refused")}

	appErr := errors.FromTransport(urlErr)

	g.Expect(appErr.Kind).To(Equal(errors.KindNetwork))
	g.Expect(appErr.UserMessage).To(Equal(errors.MsgNoConnection))
	g.Expect(appErr.TechnicalDetails).To(ContainSubstring("connection refused"))
}

func TestFromTransport_PlainError(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	appErr := errors.FromTransport(fmt.Errorf("boom"))

	g.Expect(appErr.Kind).To(Equal(errors.KindUnknown))
	g.Expect(appErr.TechnicalDetails).To(Equal("boom"))
}

func TestFromTransport_NilDoesNotPanic(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	appErr := errors.FromTransport(nil)

	g.Expect(appErr).NotTo(BeNil())
	g.Expect(appErr.Kind).To(Equal(errors.KindUnknown))
}

func TestFromTransport_NoDoubleWrap(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	original := errors.New(errors.KindValidation, "al genormaliseerd")

	g.Expect(errors.FromTransport(original)).To(BeIdenticalTo(original))
}
