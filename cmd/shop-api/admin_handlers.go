package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/petitmarche/backend/internal/order"
	"github.com/petitmarche/backend/internal/product"
)

// parsePrice accepts a positive decimal and normalizes it to two places.
func parsePrice(raw string) (string, bool) {
	d, err := decimal.NewFromString(raw)
	if err != nil || d.Cmp(decimal.Zero) <= 0 {
		return "", false
	}
	return d.StringFixed(2), true
}

// createProductHandler godoc
// @Summary Create a product (admin)
// @Tags admin
// @Accept json
// @Produce json
// @Param payload body product.CreateRequest true "product"
// @Success 201 {object} product.Product
// @Failure 400 {object} HTTPError
// @Failure 403 {object} HTTPError
// @Security BearerAuth
// @Router /admin/products [post]
func createProductHandler(repo product.Repository, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req product.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		if req.Name == "" || req.Description == "" || req.Category == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name, description and category are required"})
			return
		}
		price, ok := parsePrice(req.Price)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a positive number"})
			return
		}
		if req.Stock < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stock must be zero or positive"})
			return
		}
		p := &product.Product{
			Name:        req.Name,
			Description: req.Description,
			Price:       price,
			Stock:       req.Stock,
			Category:    req.Category,
		}
		if err := repo.Create(c.Request.Context(), p); err != nil {
			log.Error("product create failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

// updateProductHandler godoc
// @Summary Update a product (admin, partial)
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "product id"
// @Param payload body product.UpdateRequest true "fields to update"
// @Success 200 {object} product.Product
// @Failure 400 {object} HTTPError
// @Failure 404 {object} HTTPError
// @Security BearerAuth
// @Router /admin/products/{id} [put]
func updateProductHandler(repo product.Repository, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req product.UpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		if req.Name == "" && req.Description == "" && req.Price == "" && req.Stock == nil && req.Category == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}
		p := &product.Product{ID: id, Name: req.Name, Description: req.Description, Category: req.Category}
		updatePrice := false
		if req.Price != "" {
			price, ok := parsePrice(req.Price)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a positive number"})
				return
			}
			p.Price = price
			updatePrice = true
		}
		updateStock := false
		if req.Stock != nil {
			if *req.Stock < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "stock must be zero or positive"})
				return
			}
			p.Stock = *req.Stock
			updateStock = true
		}
		if err := repo.Update(c.Request.Context(), p, updatePrice, updateStock); err != nil {
			if errors.Is(err, product.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			log.Error("product update failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		out, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			log.Error("product refetch failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// deleteProductHandler godoc
// @Summary Delete a product (admin)
// @Tags admin
// @Produce json
// @Param id path int true "product id"
// @Success 200 {object} map[string]string
// @Failure 400 {object} HTTPError
// @Failure 404 {object} HTTPError
// @Security BearerAuth
// @Router /admin/products/{id} [delete]
func deleteProductHandler(repo product.Repository, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		err := repo.Delete(c.Request.Context(), id)
		switch {
		case errors.Is(err, product.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		case errors.Is(err, product.ErrInUse):
			c.JSON(http.StatusBadRequest, gin.H{"error": "product is referenced by existing orders"})
		case err != nil:
			log.Error("product delete failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		default:
			c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
		}
	}
}

// adminListOrdersHandler godoc
// @Summary List every order (admin)
// @Tags admin
// @Produce json
// @Success 200 {array} order.Order
// @Failure 403 {object} HTTPError
// @Security BearerAuth
// @Router /admin/orders [get]
func adminListOrdersHandler(orders *order.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := orders.ListAll(c.Request.Context())
		if err != nil {
			orderError(c, log, err)
			return
		}
		if out == nil {
			out = []order.Order{}
		}
		c.JSON(http.StatusOK, out)
	}
}

// updateOrderStatusHandler godoc
// @Summary Update order/payment/delivery statuses (admin, all-or-nothing)
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "order id"
// @Param payload body order.StatusUpdateRequest true "statuses to apply"
// @Success 200 {object} order.Order
// @Failure 400 {object} HTTPError
// @Failure 404 {object} HTTPError
// @Security BearerAuth
// @Router /admin/orders/{id}/status [patch]
func updateOrderStatusHandler(orders *order.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req order.StatusUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		o, err := orders.UpdateStatuses(c.Request.Context(), id, req)
		if err != nil {
			orderError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}
