package service

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/techplan/admin-server-go/internal/errors"
	"github.com/techplan/admin-server-go/internal/model"
)

// ProductForm is the raw product form as submitted.
type ProductForm struct {
	Name        string `form:"name" validate:"required,max=200"`
	Description string `form:"description" validate:"max=5000"`
	Price       string `form:"price" validate:"required,numeric"`
}

// maxPrice is the largest value the NUMERIC(12,2) column holds.
const maxPrice = 9999999999.99

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Fields validates the form and converts it to the persisted shape. Failures
// are a VALIDATION_ERROR listing every rejected field.
func (f ProductForm) Fields() (model.ProductFields, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	f.Price = strings.TrimSpace(f.Price)

	var fields []apperrors.FieldError
	if err := validate.Struct(f); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return model.ProductFields{}, err
		}
		for _, fe := range verrs {
			fields = append(fields, apperrors.FieldError{
				Field:   fe.Field(),
				Message: fe.Field() + " " + validationMessage(fe.Tag(), fe.Param()),
			})
		}
	}

	var price float64
	if !hasField(fields, "price") {
		p, err := strconv.ParseFloat(f.Price, 64)
		// Postgres rounds to cents on insert, so the bound applies to the rounded value.
		p = math.Round(p*100) / 100
		switch {
		case err != nil || p < 0:
			fields = append(fields, apperrors.FieldError{Field: "price", Message: "price must be a non-negative number"})
		case p > maxPrice:
			fields = append(fields, apperrors.FieldError{Field: "price", Message: "price is too large"})
		default:
			price = p
		}
	}

	if len(fields) > 0 {
		return model.ProductFields{}, apperrors.ValidationError("Please correct the highlighted fields", fields)
	}

	out := model.ProductFields{Name: f.Name, Price: price}
	if f.Description != "" {
		desc := f.Description
		out.Description = &desc
	}
	return out, nil
}

func hasField(fields []apperrors.FieldError, name string) bool {
	for _, f := range fields {
		if f.Field == name {
			return true
		}
	}
	return false
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + param + " characters"
	case "numeric":
		return "must be a number"
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
