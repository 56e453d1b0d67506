package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/techplan/admin-server-go/internal/middleware"
	"github.com/techplan/admin-server-go/internal/model"
	"github.com/techplan/admin-server-go/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageLogin       = "login.html"
	pageDashboard   = "dashboard.html"
	pageProducts    = "products.html"
	pageProduct     = "product.html"
	pageProductForm = "product_form.html"
	pageError       = "error.html"
)

var templateFuncs = template.FuncMap{
	"price": func(p float64) string { return fmt.Sprintf("$%.2f", p) },
	"date":  func(t time.Time) string { return t.Format("2006-01-02 15:04") },
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

// view is the data every page template receives.
type view struct {
	Title     string
	Admin     *model.AdminIdentity
	CSRFToken string
	Error     string

	// login
	Email      string
	RedirectTo string

	// products
	Stats       *model.DashboardStats
	Products    []model.Product
	Product     *model.Product
	Form        service.ProductForm
	FieldErrors map[string]string
	Action      string
}

type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	pages := []string{pageLogin, pageDashboard, pageProducts, pageProduct, pageProductForm, pageError}

	rn := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		rn.pages[page] = tmpl
	}
	return rn, nil
}

// Render writes page with status. The page is rendered into a buffer first
// so a template error never produces a half-written response.
func (rn *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, v view) {
	if v.Admin == nil {
		v.Admin = middleware.AdminFromContext(r.Context())
	}
	v.CSRFToken = middleware.CSRFToken(r.Context())

	tmpl, ok := rn.pages[page]
	if !ok {
		log.Error().Str("page", page).Msg("Unknown template")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", v); err != nil {
		log.Error().Err(err).Str("page", page).Msg("Failed to render template")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}
