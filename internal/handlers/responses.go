package handlers

import (
	"productsapi/internal/models"
	"productsapi/internal/validation"
)

// ProductRequest is the body accepted by create and update.
type ProductRequest struct {
	Name         string  `json:"name" example:"Monitor curvo de 49 pulgadas"`
	Price        float64 `json:"price" example:"399"`
	Availability *bool   `json:"availability,omitempty" example:"true"`
}

// ProductResponse wraps a single product.
type ProductResponse struct {
	Data *models.Product `json:"data"`
}

// ProductListResponse wraps a list of products.
type ProductListResponse struct {
	Data []models.Product `json:"data"`
}

// DeleteResponse confirms a deletion.
type DeleteResponse struct {
	Data string `json:"data" example:"Producto eliminado"`
}

// ErrorResponse carries a single resource-level error.
type ErrorResponse struct {
	Error string `json:"error" example:"No se ha encontrado el producto"`
}

// ValidationErrorResponse lists field violations in the order they were found.
type ValidationErrorResponse struct {
	Errors []validation.Violation `json:"errors"`
}

// MessageResponse is the body of the API liveness probe.
type MessageResponse struct {
	Msg string `json:"msg" example:"Desde API"`
}
