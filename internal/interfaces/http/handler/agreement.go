package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	agreementapp "github.com/hotelagreement/backend/internal/application/agreement"
	"github.com/hotelagreement/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// AgreementService is the part of the agreement pipeline the handler drives
type AgreementService interface {
	Generate(ctx context.Context, req agreementapp.GenerateRequest) (*agreementapp.GenerateResult, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Release(ctx context.Context, path string) error
	Layouts() []agreementapp.LayoutResponse
	Layout(name string) (*agreementapp.LayoutResponse, error)
}

// AgreementHandlerConfig configures AgreementHandler
type AgreementHandlerConfig struct {
	// MaxFieldLength caps each field value in runes; 0 disables the check
	MaxFieldLength int
	// Template and Font override the default layout's assets when set
	Template string
	Font     string
	Logger   *zap.Logger
}

// AgreementHandler serves agreement generation and layout discovery
type AgreementHandler struct {
	BaseHandler
	service   AgreementService
	validate  *validator.Validate
	fieldRule string
	config    AgreementHandlerConfig
	logger    *zap.Logger
}

// NewAgreementHandler creates a new AgreementHandler
func NewAgreementHandler(service AgreementService, cfg AgreementHandlerConfig) *AgreementHandler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var rule string
	if cfg.MaxFieldLength > 0 {
		rule = "max=" + strconv.Itoa(cfg.MaxFieldLength)
	}
	return &AgreementHandler{
		service:   service,
		validate:  validator.New(),
		fieldRule: rule,
		config:    cfg,
		logger:    logger,
	}
}

// GenerateAgreementRequest documents the request body: field id to text.
// Every field is optional.
//
//	@Description	Agreement field values keyed by field id
type GenerateAgreementRequest map[string]string

// GeneratePDF godoc
// @ID           generateAgreementPDF
// @Summary      Generate an agreement PDF
// @Description  Draws the submitted fields onto the agreement template of the default layout and returns the PDF
// @Tags         agreements
// @Accept       json
// @Produce      application/pdf
// @Param        request body GenerateAgreementRequest true "Field values"
// @Success      200 {file} file
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /generate-pdf [post]
func (h *AgreementHandler) GeneratePDF(c *gin.Context) {
	h.generate(c, "", "pdf")
}

// Generate godoc
// @ID           generateAgreement
// @Summary      Generate an agreement document
// @Description  Draws the submitted fields onto the template of the named layout and returns the document
// @Tags         agreements
// @Accept       json
// @Produce      application/pdf,image/png
// @Param        format  query string false "Document format" Enums(pdf, png) default(pdf)
// @Param        layout  query string false "Layout name; the default layout when empty"
// @Param        request body  GenerateAgreementRequest true "Field values"
// @Success      200 {file} file
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /api/v1/agreements/generate [post]
func (h *AgreementHandler) Generate(c *gin.Context) {
	h.generate(c, c.Query("layout"), c.DefaultQuery("format", "pdf"))
}

func (h *AgreementHandler) generate(c *gin.Context, layout, format string) {
	fields, ok := h.bindFields(c)
	if !ok {
		return
	}

	req := agreementapp.GenerateRequest{
		Layout: layout,
		Fields: fields,
		Format: format,
	}
	if layout == "" {
		req.Template = h.config.Template
		req.Font = h.config.Font
	}

	ctx := c.Request.Context()
	result, err := h.service.Generate(ctx, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	// The document is removed even when the client goes away mid-stream
	defer func() {
		if err := h.service.Release(context.WithoutCancel(ctx), result.Path); err != nil {
			h.logger.Warn("failed to release document", zap.String("path", result.Path), zap.Error(err))
		}
	}()

	doc, err := h.service.Open(ctx, result.Path)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer doc.Close()

	c.DataFromReader(http.StatusOK, result.Size, result.MediaType, doc, map[string]string{
		"Content-Disposition": attachmentDisposition(result.Filename),
	})
}

// attachmentDisposition quotes an ASCII filename as is. Other names get an
// ASCII stand-in plus the exact name as an RFC 5987 filename* parameter.
func attachmentDisposition(filename string) string {
	var fallback strings.Builder
	ascii := true
	for _, r := range filename {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			fallback.WriteByte('_')
			ascii = false
			continue
		}
		fallback.WriteRune(r)
	}
	if ascii {
		return `attachment; filename="` + filename + `"`
	}

	const hex = "0123456789ABCDEF"
	var encoded strings.Builder
	for i := 0; i < len(filename); i++ {
		b := filename[i]
		if isAttrChar(b) {
			encoded.WriteByte(b)
			continue
		}
		encoded.WriteByte('%')
		encoded.WriteByte(hex[b>>4])
		encoded.WriteByte(hex[b&0x0f])
	}
	return `attachment; filename="` + fallback.String() + `"; filename*=UTF-8''` + encoded.String()
}

// isAttrChar reports whether b may appear unescaped in an RFC 5987 value
func isAttrChar(b byte) bool {
	switch {
	case 'a' <= b && b <= 'z', 'A' <= b && b <= 'Z', '0' <= b && b <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", b) >= 0
}

// bindFields decodes the body into field values and enforces the length cap.
// An empty body means no fields. It writes the error response itself.
func (h *AgreementHandler) bindFields(c *gin.Context) (map[string]*string, bool) {
	fields := map[string]*string{}
	if err := c.ShouldBindJSON(&fields); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
			return nil, false
		}
		h.BadRequest(c, dto.ErrCodeInvalidJSON, "Request body must be a JSON object of string values")
		return nil, false
	}

	if h.fieldRule == "" {
		return fields, true
	}

	var details []dto.ValidationDetail
	for id, value := range fields {
		if value == nil {
			continue
		}
		if err := h.validate.Var(*value, h.fieldRule); err != nil {
			details = append(details, dto.ValidationDetail{
				Field:   id,
				Message: fmt.Sprintf("must be at most %d characters", h.config.MaxFieldLength),
			})
		}
	}
	if len(details) > 0 {
		sort.Slice(details, func(i, j int) bool { return details[i].Field < details[j].Field })
		h.ValidationError(c, details)
		return nil, false
	}
	return fields, true
}

// ListLayouts godoc
// @ID           listAgreementLayouts
// @Summary      List agreement layouts
// @Description  Returns every layout with its field positions, default layout first
// @Tags         agreements
// @Produce      json
// @Success      200 {array} agreementapp.LayoutResponse
// @Router       /api/v1/agreements/layouts [get]
func (h *AgreementHandler) ListLayouts(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Layouts())
}

// GetLayout godoc
// @ID           getAgreementLayout
// @Summary      Get an agreement layout
// @Tags         agreements
// @Produce      json
// @Param        name path string true "Layout name"
// @Success      200 {object} agreementapp.LayoutResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /api/v1/agreements/layouts/{name} [get]
func (h *AgreementHandler) GetLayout(c *gin.Context) {
	layout, err := h.service.Layout(c.Param("name"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, layout)
}

// RegisterRoutes registers the versioned agreement routes
func (h *AgreementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	agreements := rg.Group("/agreements")
	agreements.POST("/generate", h.Generate)
	agreements.GET("/layouts", h.ListLayouts)
	agreements.GET("/layouts/:name", h.GetLayout)
}

// RegisterRootRoutes registers the unversioned generation endpoint
func (h *AgreementHandler) RegisterRootRoutes(r gin.IRoutes) {
	r.POST("/generate-pdf", h.GeneratePDF)
}
