package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	agreementapp "github.com/hotelagreement/backend/internal/application/agreement"
	"github.com/hotelagreement/backend/internal/domain/agreement"
	"github.com/hotelagreement/backend/internal/interfaces/http/dto"
	"github.com/hotelagreement/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Mocks
// =============================================================================

// MockAgreementService implements AgreementService for testing
type MockAgreementService struct {
	mock.Mock
}

func (m *MockAgreementService) Generate(ctx context.Context, req agreementapp.GenerateRequest) (*agreementapp.GenerateResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*agreementapp.GenerateResult), args.Error(1)
}

func (m *MockAgreementService) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockAgreementService) Release(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func (m *MockAgreementService) Layouts() []agreementapp.LayoutResponse {
	return m.Called().Get(0).([]agreementapp.LayoutResponse)
}

func (m *MockAgreementService) Layout(name string) (*agreementapp.LayoutResponse, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*agreementapp.LayoutResponse), args.Error(1)
}

// =============================================================================
// Helpers
// =============================================================================

const pdfBody = "%PDF-1.3 test document"

func newAgreementRouter(svc *MockAgreementService, cfg AgreementHandlerConfig) *gin.Engine {
	h := NewAgreementHandler(svc, cfg)
	router := gin.New()
	router.Use(middleware.RequestID())
	h.RegisterRootRoutes(router)
	h.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func postJSON(router *gin.Engine, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func pdfResult(filename string) *agreementapp.GenerateResult {
	return &agreementapp.GenerateResult{
		Path:      "2026/10/doc.pdf",
		Filename:  filename,
		MediaType: "application/pdf",
		Size:      int64(len(pdfBody)),
		Layout:    "hotel_agreement",
	}
}

func strPtr(s string) *string {
	return &s
}

// =============================================================================
// Tests
// =============================================================================

func TestAgreementHandler_GeneratePDF(t *testing.T) {
	svc := new(MockAgreementService)
	router := newAgreementRouter(svc, AgreementHandlerConfig{MaxFieldLength: 200})

	svc.On("Generate", mock.Anything, agreementapp.GenerateRequest{
		Fields: map[string]*string{"name": strPtr("Ada Lovelace"), "v8": strPtr("AGMT-001"), "phone": nil},
		Format: "pdf",
	}).Return(pdfResult("AGMT-001-agreement.pdf"), nil)
	svc.On("Open", mock.Anything, "2026/10/doc.pdf").Return(io.NopCloser(strings.NewReader(pdfBody)), nil)
	svc.On("Release", mock.Anything, "2026/10/doc.pdf").Return(nil)

	w := postJSON(router, "/generate-pdf", `{"name":"Ada Lovelace","v8":"AGMT-001","phone":null}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="AGMT-001-agreement.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, pdfBody, w.Body.String())
	svc.AssertExpectations(t)
}

func TestAgreementHandler_GeneratePDF_NonASCIIFilename(t *testing.T) {
	svc := new(MockAgreementService)
	router := newAgreementRouter(svc, AgreementHandlerConfig{})

	svc.On("Generate", mock.Anything, mock.Anything).Return(pdfResult("Müller-agreement.pdf"), nil)
	svc.On("Open", mock.Anything, "2026/10/doc.pdf").Return(io.NopCloser(strings.NewReader(pdfBody)), nil)
	svc.On("Release", mock.Anything, "2026/10/doc.pdf").Return(nil)

	w := postJSON(router, "/generate-pdf", `{"v8":"Müller"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t,
		`attachment; filename="M_ller-agreement.pdf"; filename*=UTF-8''M%C3%BCller-agreement.pdf`,
		w.Header().Get("Content-Disposition"))
}

func TestAttachmentDisposition(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"ascii", "AGMT-001-agreement.pdf", `attachment; filename="AGMT-001-agreement.pdf"`},
		{"ascii with space", "A 1-agreement.pdf", `attachment; filename="A 1-agreement.pdf"`},
		{
			"accented with space",
			"José García-agreement.pdf",
			`attachment; filename="Jos_ Garc_a-agreement.pdf"; filename*=UTF-8''Jos%C3%A9%20Garc%C3%ADa-agreement.pdf`,
		},
		{
			"cjk",
			"山田-agreement.png",
			`attachment; filename="__-agreement.png"; filename*=UTF-8''%E5%B1%B1%E7%94%B0-agreement.png`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, attachmentDisposition(tt.filename))
		})
	}
}

func TestAgreementHandler_GeneratePDF_EmptyBody(t *testing.T) {
	svc := new(MockAgreementService)
	router := newAgreementRouter(svc, AgreementHandlerConfig{})

	svc.On("Generate", mock.Anything, mock.MatchedBy(func(req agreementapp.GenerateRequest) bool {
		return len(req.Fields) == 0 && req.Format == "pdf"
	})).Return(pdfResult("agreement.pdf"), nil)
	svc.On("Open", mock.Anything, "2026/10/doc.pdf").Return(io.NopCloser(strings.NewReader(pdfBody)), nil)
	svc.On("Release", mock.Anything, "2026/10/doc.pdf").Return(nil)

	w := postJSON(router, "/generate-pdf", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="agreement.pdf"`, w.Header().Get("Content-Disposition"))
	svc.AssertExpectations(t)
}

func TestAgreementHandler_Generate_QueryAndOverrides(t *testing.T) {
	t.Run("named layout and png", func(t *testing.T) {
		svc := new(MockAgreementService)
		router := newAgreementRouter(svc, AgreementHandlerConfig{Template: "winter.png", Font: "serif.ttf"})

		result := &agreementapp.GenerateResult{
			Path:      "2026/10/doc.png",
			Filename:  "agreement.png",
			MediaType: "image/png",
			Size:      4,
		}
		svc.On("Generate", mock.Anything, agreementapp.GenerateRequest{
			Layout: "compact",
			Fields: map[string]*string{},
			Format: "png",
		}).Return(result, nil)
		svc.On("Open", mock.Anything, "2026/10/doc.png").Return(io.NopCloser(strings.NewReader("\x89PNG")), nil)
		svc.On("Release", mock.Anything, "2026/10/doc.png").Return(nil)

		w := postJSON(router, "/api/v1/agreements/generate?format=png&layout=compact", "{}")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		svc.AssertExpectations(t)
	})

	t.Run("default layout gets configured assets", func(t *testing.T) {
		svc := new(MockAgreementService)
		router := newAgreementRouter(svc, AgreementHandlerConfig{Template: "winter.png", Font: "serif.ttf"})

		svc.On("Generate", mock.Anything, agreementapp.GenerateRequest{
			Template: "winter.png",
			Font:     "serif.ttf",
			Fields:   map[string]*string{},
			Format:   "pdf",
		}).Return(pdfResult("agreement.pdf"), nil)
		svc.On("Open", mock.Anything, "2026/10/doc.pdf").Return(io.NopCloser(strings.NewReader(pdfBody)), nil)
		svc.On("Release", mock.Anything, "2026/10/doc.pdf").Return(nil)

		w := postJSON(router, "/api/v1/agreements/generate", "{}")

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})
}

func TestAgreementHandler_Generate_InvalidBody(t *testing.T) {
	for _, body := range []string{`{"name":`, `{"name":42}`, `["a","b"]`} {
		t.Run(body, func(t *testing.T) {
			svc := new(MockAgreementService)
			router := newAgreementRouter(svc, AgreementHandlerConfig{})

			w := postJSON(router, "/generate-pdf", body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, dto.ErrCodeInvalidJSON, resp.Code)
			assert.NotEmpty(t, resp.RequestID)
			svc.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
		})
	}
}

func TestAgreementHandler_Generate_FieldTooLong(t *testing.T) {
	svc := new(MockAgreementService)
	router := newAgreementRouter(svc, AgreementHandlerConfig{MaxFieldLength: 5})

	// Five runes of multi-byte text pass; six fail
	w := postJSON(router, "/generate-pdf", `{"name":"ÅÅÅÅÅÅ","v1":"ok","passport":"toolong","phone":"日本語日本"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, dto.ErrCodeValidation, resp.Code)
	require.Len(t, resp.Details, 2)
	assert.Equal(t, "name", resp.Details[0].Field)
	assert.Equal(t, "passport", resp.Details[1].Field)
	assert.Equal(t, "must be at most 5 characters", resp.Details[0].Message)
	svc.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestAgreementHandler_Generate_ServiceErrors(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
		expectedError  string
	}{
		{
			name:           "missing template",
			err:            agreement.NewResourceNotFound("Sample agreement image not found: sample_agreement.png", nil),
			expectedStatus: http.StatusNotFound,
			expectedCode:   agreement.ErrCodeResourceNotFound,
			expectedError:  "Sample agreement image not found: sample_agreement.png",
		},
		{
			name:           "missing font",
			err:            agreement.NewResourceNotFound("Font file not found: font.ttf", nil),
			expectedStatus: http.StatusNotFound,
			expectedCode:   agreement.ErrCodeResourceNotFound,
			expectedError:  "Font file not found: font.ttf",
		},
		{
			name:           "unknown format",
			err:            agreement.NewError(agreement.ErrCodeUnsupportedFormat, "unsupported document format: docx", nil),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   agreement.ErrCodeUnsupportedFormat,
			expectedError:  "unsupported document format: docx",
		},
		{
			name:           "render failure",
			err:            agreement.NewRenderFailure("corrupt template", nil),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   agreement.ErrCodeRenderFailed,
			expectedError:  genericErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAgreementService)
			router := newAgreementRouter(svc, AgreementHandlerConfig{})
			svc.On("Generate", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := postJSON(router, "/api/v1/agreements/generate", `{"name":"Ada"}`)

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.expectedCode, resp.Code)
			assert.Equal(t, tt.expectedError, resp.Error)
			svc.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
		})
	}
}

func TestAgreementHandler_Generate_OpenFailureStillReleases(t *testing.T) {
	svc := new(MockAgreementService)
	router := newAgreementRouter(svc, AgreementHandlerConfig{})

	svc.On("Generate", mock.Anything, mock.Anything).Return(pdfResult("agreement.pdf"), nil)
	svc.On("Open", mock.Anything, "2026/10/doc.pdf").Return(nil, agreement.NewExportFailure("failed to open document", nil))
	svc.On("Release", mock.Anything, "2026/10/doc.pdf").Return(nil)

	w := postJSON(router, "/generate-pdf", "{}")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, genericErrorMessage, decodeError(t, w).Error)
	svc.AssertExpectations(t)
}

func TestAgreementHandler_Layouts(t *testing.T) {
	svc := new(MockAgreementService)
	router := newAgreementRouter(svc, AgreementHandlerConfig{})

	hotel := agreementapp.LayoutResponse{
		Name:            "hotel_agreement",
		Template:        "sample_agreement.png",
		Font:            "font.ttf",
		FontSize:        20,
		IdentifierField: "v8",
		Default:         true,
		Fields:          []agreementapp.FieldLayout{{ID: "name", X: 300, Y: 580, Color: "#000000", Size: 20}},
	}
	svc.On("Layouts").Return([]agreementapp.LayoutResponse{hotel})
	svc.On("Layout", "hotel_agreement").Return(&hotel, nil)
	svc.On("Layout", "villa").Return(nil, agreement.NewResourceNotFound("Layout not found: villa", nil))

	t.Run("list", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/agreements/layouts", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var got []agreementapp.LayoutResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, []agreementapp.LayoutResponse{hotel}, got)
	})

	t.Run("get", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/agreements/layouts/hotel_agreement", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var got agreementapp.LayoutResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "v8", got.IdentifierField)
	})

	t.Run("unknown", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/agreements/layouts/villa", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, agreement.ErrCodeResourceNotFound, resp.Code)
		assert.Equal(t, "Layout not found: villa", resp.Error)
	})
}
