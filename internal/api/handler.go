package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"pharmabill/m/domain"
	"pharmabill/m/internal/export"
	"pharmabill/m/internal/render"
	"pharmabill/m/internal/reprint"
	"pharmabill/m/internal/store"
	"pharmabill/m/internal/words"
)

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	profiles  *store.Profiles
	invoices  *store.Invoices
	engine    *render.Engine
	reprinter *reprint.Reprinter
	validate  *validator.Validate
	logger    *zap.Logger
	origins   []string
}

// New constructs a Handler.
func New(db *sqlx.DB, engine *render.Engine, reprinter *reprint.Reprinter, logger *zap.Logger, allowedOrigins []string) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{
		profiles:  store.NewProfiles(db),
		invoices:  store.NewInvoices(db),
		engine:    engine,
		reprinter: reprinter,
		validate:  v,
		logger:    logger,
		origins:   allowedOrigins,
	}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
	}))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/profile", func(r chi.Router) {
		r.Get("/", h.getProfile)
		r.Put("/", h.saveProfile)
	})

	r.Route("/invoices", func(r chi.Router) {
		r.Get("/", h.listInvoices)
		r.Get("/{invoiceNo}/pdf", h.invoicePDF)
		r.Get("/{invoiceNo}/hsn.xlsx", h.invoiceHSN)
	})

	r.Post("/render", h.renderInvoice)
	r.Post("/reprint", h.reprintInvoices)

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Profile handlers

type profileRequest struct {
	CompanyName     string            `json:"companyName" validate:"required,max=200"`
	AddressLine1    string            `json:"addressLine1" validate:"max=200"`
	AddressLine2    string            `json:"addressLine2" validate:"max=200"`
	GSTIN           string            `json:"gstin" validate:"omitempty,len=15,alphanum"`
	Phone           string            `json:"phone" validate:"max=100"`
	DLNo1           string            `json:"dlNo1" validate:"max=100"`
	DLNo2           string            `json:"dlNo2" validate:"max=100"`
	DLNo3           string            `json:"dlNo3" validate:"max=100"`
	DLNo4           string            `json:"dlNo4" validate:"max=100"`
	Email           string            `json:"email" validate:"omitempty,email"`
	Terms           string            `json:"terms" validate:"max=2000"`
	Theme           domain.Theme      `json:"theme" validate:"omitempty,oneof=blue green purple dark"`
	InvoiceTemplate domain.TemplateID `json:"invoiceTemplate" validate:"omitempty,oneof=standard modern thermal authentic"`
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.Get(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

func (h *Handler) saveProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !h.bind(w, r, &req) {
		return
	}
	profile := domain.CompanyProfile{
		ID:              domain.ProfileID,
		CompanyName:     req.CompanyName,
		AddressLine1:    req.AddressLine1,
		AddressLine2:    req.AddressLine2,
		GSTIN:           req.GSTIN,
		Phone:           req.Phone,
		DLNo1:           req.DLNo1,
		DLNo2:           req.DLNo2,
		DLNo3:           req.DLNo3,
		DLNo4:           req.DLNo4,
		Email:           req.Email,
		Terms:           req.Terms,
		Theme:           req.Theme,
		InvoiceTemplate: req.InvoiceTemplate,
	}
	if profile.Theme == "" {
		profile.Theme = domain.ThemeBlue
	}
	if profile.InvoiceTemplate == "" {
		profile.InvoiceTemplate = render.DefaultTemplate
	}
	if err := h.profiles.Save(r.Context(), profile); err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// Invoice handlers

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	if limit > 500 {
		limit = 500
	}
	invoices, err := h.invoices.List(r.Context(), limit, offset)
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, invoices)
}

// loadForRender fetches the invoice named in the path together with the
// stored profile.
func (h *Handler) loadForRender(r *http.Request) (*domain.Invoice, *domain.CompanyProfile, error) {
	no, err := url.PathUnescape(chi.URLParam(r, "invoiceNo"))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: bad invoice number", store.ErrNotFound)
	}
	inv, err := h.invoices.Get(r.Context(), no)
	if err != nil {
		return nil, nil, err
	}
	profile, err := h.storedProfile(r)
	if err != nil {
		return nil, nil, err
	}
	return inv, profile, nil
}

func (h *Handler) invoicePDF(w http.ResponseWriter, r *http.Request) {
	inv, profile, err := h.loadForRender(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	id := h.template(domain.TemplateID(r.URL.Query().Get("template")), profile)
	h.writePDF(w, *inv, profile, id, r.URL.Query().Get("copy"))
}

func (h *Handler) invoiceHSN(w http.ResponseWriter, r *http.Request) {
	no, err := url.PathUnescape(chi.URLParam(r, "invoiceNo"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid invoice number")
		return
	}
	inv, err := h.invoices.Get(r.Context(), no)
	if err != nil {
		h.fail(w, err)
		return
	}
	f, err := export.HSNWorkbook(*inv)
	if err != nil {
		h.fail(w, fmt.Errorf("build hsn workbook for %s: %w", inv.InvoiceNo, err))
		return
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		h.fail(w, fmt.Errorf("write hsn workbook for %s: %w", inv.InvoiceNo, err))
		return
	}

	name := strings.TrimSuffix(render.FileName(render.DefaultTemplate, inv.InvoiceNo), ".pdf") + "_HSN.xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("hsn download interrupted", zap.String("invoice_no", inv.InvoiceNo), zap.Error(err))
	}
}

type renderRequest struct {
	Invoice   *domain.Invoice        `json:"invoice" validate:"required"`
	Profile   *domain.CompanyProfile `json:"profile"`
	Template  domain.TemplateID      `json:"template" validate:"max=32"`
	CopyLabel string                 `json:"copyLabel" validate:"max=64"`
}

func (h *Handler) renderInvoice(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !h.bind(w, r, &req) {
		return
	}
	profile := req.Profile
	if profile == nil {
		var err error
		if profile, err = h.storedProfile(r); err != nil {
			h.fail(w, err)
			return
		}
	}
	id := h.template(req.Template, profile)
	h.writePDF(w, *req.Invoice, profile, id, req.CopyLabel)
}

type reprintRequest struct {
	InvoiceNos []string          `json:"invoiceNos" validate:"required,min=1,max=500,dive,required"`
	Template   domain.TemplateID `json:"template" validate:"max=32"`
	CopyLabel  string            `json:"copyLabel" validate:"max=64"`
}

func (h *Handler) reprintInvoices(w http.ResponseWriter, r *http.Request) {
	var req reprintRequest
	if !h.bind(w, r, &req) {
		return
	}
	res, err := h.reprinter.Run(r.Context(), reprint.Request{
		InvoiceNos: req.InvoiceNos,
		Template:   req.Template,
		CopyLabel:  req.CopyLabel,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// Rendering helpers

func (h *Handler) storedProfile(r *http.Request) (*domain.CompanyProfile, error) {
	profile, err := h.profiles.Get(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		return nil, render.ErrMissingProfile
	}
	return profile, err
}

// template picks the requested layout, then the profile's, then the default.
func (h *Handler) template(requested domain.TemplateID, profile *domain.CompanyProfile) domain.TemplateID {
	id := render.Resolve(requested, profile.InvoiceTemplate)
	if requested != "" && id != requested {
		h.logger.Warn("unknown invoice template, falling back",
			zap.String("requested", string(requested)),
			zap.String("template", string(id)))
	}
	return id
}

func (h *Handler) writePDF(w http.ResponseWriter, inv domain.Invoice, profile *domain.CompanyProfile, id domain.TemplateID, copyLabel string) {
	body, err := h.engine.WithCopyLabel(copyLabel).Render(inv, profile, id)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", render.FileName(id, inv.InvoiceNo)))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// fail maps domain errors onto HTTP statuses.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, render.ErrMissingProfile):
		respondError(w, http.StatusConflict, "company profile is not configured")
	case errors.Is(err, words.ErrAmountOverflow), errors.Is(err, render.ErrTooManyItems):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, render.ErrUnknownTemplate):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// bind decodes and validates a JSON body, answering 400 on failure.
func (h *Handler) bind(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := decodeJSON(r, dest); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if err := h.validate.Struct(dest); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			respondError(w, http.StatusBadRequest, err.Error())
			return false
		}
		fields := make(map[string]string, len(ve))
		for _, fe := range ve {
			fields[fe.Field()] = fe.Tag()
		}
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "validation failed", "fields": fields})
		return false
	}
	return true
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
