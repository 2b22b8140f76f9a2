package handler

import (
	"heriken-shop/internal/dto"
	"heriken-shop/internal/repository"
	"heriken-shop/internal/service"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

func productFilter(c echo.Context) repository.ProductFilter {
	filter := repository.ProductFilter{
		Search: c.QueryParam("search"),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	}
	if id, err := strconv.ParseUint(c.QueryParam("category"), 10, 64); err == nil {
		filter.CategoryID = uint(id)
	}
	if id, err := strconv.ParseUint(c.QueryParam("brand"), 10, 64); err == nil {
		filter.BrandID = uint(id)
	}
	return filter
}

func (h *CatalogHandler) ListProducts(c echo.Context) error {
	resp, err := h.catalogService.ListProducts(c.Request().Context(), productFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) Featured(c echo.Context) error {
	products, err := h.catalogService.Featured(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "products": products})
}

func (h *CatalogHandler) New(c echo.Context) error {
	products, err := h.catalogService.New(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "products": products})
}

func (h *CatalogHandler) Product(c echo.Context) error {
	productID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	resp, err := h.catalogService.ProductDetail(c.Request().Context(), productID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) Categories(c echo.Context) error {
	categories, err := h.catalogService.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, &dto.CategoryListResponse{Success: true, Categories: categories})
}

func (h *CatalogHandler) TopCategories(c echo.Context) error {
	categories, err := h.catalogService.TopCategories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, &dto.CategoryListResponse{Success: true, Categories: categories})
}

func (h *CatalogHandler) CategoryProducts(c echo.Context) error {
	categoryID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	resp, err := h.catalogService.CategoryProducts(c.Request().Context(), categoryID, queryInt(c, "page"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) Brands(c echo.Context) error {
	brands, err := h.catalogService.Brands(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "brands": brands})
}
