package handlers

import (
	"errors"
	"strconv"
	"strings"

	"productsapi/internal/middleware"
	"productsapi/internal/models"
	"productsapi/internal/repositories"
	"productsapi/internal/services"
	"productsapi/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Messages returned to clients.
const (
	MsgInvalidID           = "Id no válido"
	MsgEmptyName           = "El nombre del producto no puede ir vacio"
	MsgInvalidValue        = "Valor no válido"
	MsgEmptyPrice          = "El precio del producto no puede ir vacio"
	MsgInvalidPrice        = "Precio no válido"
	MsgInvalidAvailability = "Valor para disponibilidad no válido"
	MsgProductNotFound     = "No se ha encontrado el producto"
	MsgProductDeleted      = "Producto eliminado"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes. Every route is
// [validators..., gate, handler].
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")

	productRoutes.Get("/", h.HandleGetProducts)

	productRoutes.Get("/:id",
		idRule(),
		middleware.HandleInputErrors,
		h.HandleGetProductByID,
	)

	productRoutes.Post("/",
		nameRule(),
		priceRule(),
		middleware.HandleInputErrors,
		h.HandleCreateProduct,
	)

	productRoutes.Put("/:id",
		idRule(),
		nameRule(),
		priceRule(),
		validation.Body("availability").
			Check(validation.TagBoolean, MsgInvalidAvailability).
			Handler(),
		middleware.HandleInputErrors,
		h.HandleUpdateProduct,
	)

	productRoutes.Patch("/:id",
		idRule(),
		middleware.HandleInputErrors,
		h.HandleUpdateAvailability,
	)

	productRoutes.Delete("/:id",
		idRule(),
		middleware.HandleInputErrors,
		h.HandleDeleteProduct,
	)
}

func idRule() fiber.Handler {
	return validation.Param("id").Check(validation.TagInteger, MsgInvalidID).Handler()
}

func nameRule() fiber.Handler {
	return validation.Body("name").Check(validation.TagRequired, MsgEmptyName).Handler()
}

// priceRule checks positivity on its own rather than after the numeric rule,
// so a non-numeric or absent price reports both failures.
func priceRule() fiber.Handler {
	return validation.Body("price").
		Check(validation.TagNumeric, MsgInvalidValue).
		Check(validation.TagRequired, MsgEmptyPrice).
		Check(validation.TagPositive, MsgInvalidPrice).
		Handler()
}

// HandleGetProducts lists the newest products.
//
//	@Summary		Get a list of products
//	@Description	Returns the three most recent products, newest first
//	@Tags			Products
//	@Produce		json
//	@Success		200	{object}	ProductListResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/products [get]
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(ProductListResponse{Data: products})
}

// HandleGetProductByID retrieves a single product.
//
//	@Summary		Get a product by ID
//	@Tags			Products
//	@Produce		json
//	@Param			id	path		int	true	"Product ID"
//	@Success		200	{object}	models.Product
//	@Failure		400	{object}	ValidationErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/products/{id} [get]
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return notFound(c)
	}
	product, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		return productError(c, err)
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a product.
//
//	@Summary		Create a new product
//	@Tags			Products
//	@Accept			json
//	@Produce		json
//	@Param			product	body		ProductRequest	true	"Product to create"
//	@Success		201		{object}	ProductResponse
//	@Failure		400		{object}	ValidationErrorResponse
//	@Router			/api/products [post]
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	in, err := productInput(c)
	if err != nil {
		return err
	}
	product, err := h.service.CreateProduct(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(ProductResponse{Data: product})
}

// HandleUpdateProduct overwrites every mutable field of a product.
//
//	@Summary		Update a product
//	@Tags			Products
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int				true	"Product ID"
//	@Param			product	body		ProductRequest	true	"Replacement fields"
//	@Success		200		{object}	ProductResponse
//	@Failure		400		{object}	ValidationErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/products/{id} [put]
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return notFound(c)
	}
	in, err := productInput(c)
	if err != nil {
		return err
	}
	product, err := h.service.ReplaceProduct(c.UserContext(), id, in)
	if err != nil {
		return productError(c, err)
	}
	return c.JSON(ProductResponse{Data: product})
}

// HandleUpdateAvailability flips a product's availability. The body is ignored.
//
//	@Summary		Toggle product availability
//	@Tags			Products
//	@Produce		json
//	@Param			id	path		int	true	"Product ID"
//	@Success		200	{object}	ProductResponse
//	@Failure		400	{object}	ValidationErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/products/{id} [patch]
func (h *ProductHandler) HandleUpdateAvailability(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return notFound(c)
	}
	product, err := h.service.ToggleAvailability(c.UserContext(), id)
	if err != nil {
		return productError(c, err)
	}
	return c.JSON(ProductResponse{Data: product})
}

// HandleDeleteProduct removes a product.
//
//	@Summary		Delete a product
//	@Tags			Products
//	@Produce		json
//	@Param			id	path		int	true	"Product ID"
//	@Success		200	{object}	DeleteResponse
//	@Failure		400	{object}	ValidationErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/products/{id} [delete]
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return notFound(c)
	}
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return productError(c, err)
	}
	return c.JSON(DeleteResponse{Data: MsgProductDeleted})
}

// productID parses an already validated id. Negative or out of range ids
// cannot name a stored product.
func productID(c *fiber.Ctx) (uint, bool) {
	raw := strings.TrimPrefix(c.Params("id"), "+")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// productInput reads the validated body fields. An availability that is not
// a boolean is treated as absent, so POST falls back to the default.
func productInput(c *fiber.Ctx) (services.ProductInput, error) {
	fields, err := validation.BodyFields(c)
	if err != nil {
		return services.ProductInput{}, err
	}
	in := services.ProductInput{
		Name: validation.Stringify(fields[models.ColumnName]),
	}
	in.Price, err = strconv.ParseFloat(validation.Stringify(fields[models.ColumnPrice]), 64)
	if err != nil {
		return services.ProductInput{}, fiber.NewError(fiber.StatusBadRequest, MsgInvalidPrice)
	}
	if raw, ok := fields[models.ColumnAvailability]; ok {
		if b, ok := validation.ParseBool(raw); ok {
			in.Availability = &b
		}
	}
	return in, nil
}

func productError(c *fiber.Ctx, err error) error {
	if errors.Is(err, repositories.ErrProductNotFound) {
		return notFound(c)
	}
	return err
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: MsgProductNotFound})
}
