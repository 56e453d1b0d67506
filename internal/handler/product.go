package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/techplan/admin-server-go/internal/errors"
	"github.com/techplan/admin-server-go/internal/httputil"
	"github.com/techplan/admin-server-go/internal/middleware"
	"github.com/techplan/admin-server-go/internal/model"
	"github.com/techplan/admin-server-go/internal/service"
)

const (
	imageField   = "image"
	intentDelete = "delete"

	// file parts beyond this spill to temp files
	multipartMemory = 8 << 20
)

type ProductHandler struct {
	productService *service.ProductService
	guard          *middleware.AdminGuard
	render         *Renderer
}

func NewProductHandler(productService *service.ProductService, guard *middleware.AdminGuard, render *Renderer) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		guard:          guard,
		render:         render,
	}
}

func (h *ProductHandler) Routes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Use(h.guard.RequireAdmin)

		r.Get("/", h.List)
		r.Get("/new", h.NewPage)
		r.Post("/new", h.Create)
		r.Get("/{id}", h.Detail)
		r.Post("/{id}", h.Delete)
		r.Get("/{id}/edit", h.EditPage)
		r.Post("/{id}/edit", h.Update)
	})
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.List(r.Context())
	if err != nil {
		h.render.renderError(w, r, err)
		return
	}

	h.render.Render(w, r, http.StatusOK, pageProducts, view{
		Title:    "Products",
		Products: products,
	})
}

func (h *ProductHandler) Detail(w http.ResponseWriter, r *http.Request) {
	product, err := h.productService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.render.renderError(w, r, err)
		return
	}

	h.render.Render(w, r, http.StatusOK, pageProduct, view{
		Title:   product.Name,
		Product: product,
	})
}

func (h *ProductHandler) NewPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, pageProductForm, view{
		Title:  "New product",
		Action: "/products/new",
	})
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	v := view{Title: "New product", Action: "/products/new"}

	form, image, cleanup, err := readProductForm(r)
	if err != nil {
		h.formError(w, r, v, err)
		return
	}
	defer cleanup()
	v.Form = form

	admin := middleware.AdminFromContext(r.Context())
	if _, err := h.productService.Create(r.Context(), admin.ID, form, image); err != nil {
		h.formError(w, r, v, err)
		return
	}

	httputil.SeeOther(w, r, "/products")
}

func (h *ProductHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	product, err := h.productService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.render.renderError(w, r, err)
		return
	}

	h.render.Render(w, r, http.StatusOK, pageProductForm, view{
		Title:   "Edit " + product.Name,
		Action:  "/products/" + product.ID + "/edit",
		Product: product,
		Form:    formFromProduct(product),
	})
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	v := view{Title: "Edit product", Action: "/products/" + id + "/edit"}

	form, image, cleanup, err := readProductForm(r)
	if err != nil {
		h.formError(w, r, v, err)
		return
	}
	defer cleanup()
	v.Form = form

	if _, err := h.productService.Update(r.Context(), id, form, image); err != nil {
		h.formError(w, r, v, err)
		return
	}

	httputil.SeeOther(w, r, "/products/"+id)
}

// Delete requires intent=delete in the body. Blob failures are logged by
// the service and never shown here.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render.renderError(w, r, apperrors.ValidationError("Malformed form body", nil))
		return
	}

	intent := r.PostForm.Get("intent")
	if intent != intentDelete {
		h.render.renderError(w, r, apperrors.InvalidIntent(intent))
		return
	}

	if _, err := h.productService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.render.renderError(w, r, err)
		return
	}

	httputil.SeeOther(w, r, "/products")
}

// formError re-renders the product form for validation failures and falls
// back to the error page for everything else.
func (h *ProductHandler) formError(w http.ResponseWriter, r *http.Request, v view, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		v.Error = "The upload is too large."
		h.render.Render(w, r, http.StatusRequestEntityTooLarge, pageProductForm, v)
		return
	}

	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeValidation {
		h.render.renderError(w, r, err)
		return
	}

	v.Error = appErr.Message
	v.FieldErrors = make(map[string]string)
	for _, f := range appErr.FieldErrors() {
		v.FieldErrors[f.Field] = f.Message
	}
	h.render.Render(w, r, http.StatusBadRequest, pageProductForm, v)
}

// readProductForm parses the body and returns the form fields and the image
// part. image is nil when no file was chosen.
func readProductForm(r *http.Request) (service.ProductForm, io.Reader, func(), error) {
	noop := func() {}

	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return service.ProductForm{}, nil, noop, err
		}
		return service.ProductForm{}, nil, noop, apperrors.ValidationError("Malformed form body", nil).WithCause(err)
	}

	form := service.ProductForm{
		Name:        r.PostForm.Get("name"),
		Description: r.PostForm.Get("description"),
		Price:       r.PostForm.Get("price"),
	}

	file, _, err := r.FormFile(imageField)
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
			log.Warn().Err(err).Msg("Unreadable image part ignored")
		}
		return form, nil, noop, nil
	}
	return form, file, func() { file.Close() }, nil
}

func formFromProduct(p *model.Product) service.ProductForm {
	form := service.ProductForm{
		Name:  p.Name,
		Price: formatPrice(p.Price),
	}
	if p.Description != nil {
		form.Description = *p.Description
	}
	return form
}
