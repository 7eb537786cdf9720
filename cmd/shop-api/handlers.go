package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/petitmarche/backend/internal/auth"
	"github.com/petitmarche/backend/internal/httpx"
	"github.com/petitmarche/backend/internal/order"
	"github.com/petitmarche/backend/internal/product"
	"github.com/petitmarche/backend/internal/user"
)

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: not found
	Error string `json:"error"`
}

func healthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// orderError maps the engine's error taxonomy onto HTTP statuses. Unknown
// errors are logged and reported as a generic 500.
func orderError(c *gin.Context, log *zap.Logger, err error) {
	var (
		ve  *order.ValidationError
		nfe *order.NotFoundError
		ise *order.InsufficientStockError
		ae  *order.AuthorizationError
		ste *order.InvalidStateError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
	case errors.As(err, &nfe):
		c.JSON(http.StatusNotFound, gin.H{"error": nfe.Error()})
	case errors.As(err, &ise):
		c.JSON(http.StatusConflict, gin.H{"error": ise.Error()})
	case errors.As(err, &ae):
		c.JSON(http.StatusForbidden, gin.H{"error": ae.Error()})
	case errors.As(err, &ste):
		c.JSON(http.StatusBadRequest, gin.H{"error": ste.Error()})
	case errors.Is(err, order.ErrTxConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "concurrent update, please retry"})
	default:
		log.Error("order operation failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

//
// ---------- auth / account ----------
//

// registerHandler godoc
// @Summary Create an account
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body user.RegisterRequest true "account"
// @Success 201 {object} user.User
// @Failure 400 {object} HTTPError
// @Failure 409 {object} HTTPError
// @Router /auth/register [post]
func registerHandler(users *user.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		u, err := users.Register(c.Request.Context(), req)
		switch {
		case errors.Is(err, user.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, user.ErrAlreadyExist):
			c.JSON(http.StatusConflict, gin.H{"error": "an account with this email already exists"})
		case err != nil:
			log.Error("register failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		default:
			c.JSON(http.StatusCreated, u)
		}
	}
}

// loginHandler godoc
// @Summary Authenticate and get a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body user.LoginRequest true "credentials"
// @Success 200 {object} map[string]string
// @Failure 401 {object} HTTPError
// @Router /auth/login [post]
func loginHandler(users *user.Service, gw *auth.Gateway, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		u, err := users.Authenticate(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, user.ErrBadCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
				return
			}
			log.Error("login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		token, err := gw.Issue(u.ID, u.Role)
		if err != nil {
			log.Error("token issue failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

// logoutHandler revokes the presented token until its natural expiry.
func logoutHandler(gw *auth.Gateway, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if err := gw.Revoke(c.Request.Context(), token); err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "token invalid or expired"})
				return
			}
			log.Error("logout failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}

func meHandler(users *user.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := users.Get(c.Request.Context(), httpx.UserID(c))
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			log.Error("me failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

func updateMeHandler(users *user.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.UpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		u, err := users.UpdateProfile(c.Request.Context(), httpx.UserID(c), req)
		switch {
		case errors.Is(err, user.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, user.ErrAlreadyExist):
			c.JSON(http.StatusConflict, gin.H{"error": "this email is already in use"})
		case err != nil:
			log.Error("profile update failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		default:
			c.JSON(http.StatusOK, u)
		}
	}
}

func deleteMeHandler(users *user.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := users.Delete(c.Request.Context(), httpx.UserID(c)); err != nil {
			if errors.Is(err, user.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			log.Error("account delete failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
	}
}

//
// ---------- catalog (public) ----------
//

// listProductsHandler godoc
// @Summary List catalog products
// @Tags products
// @Produce json
// @Param q query string false "search"
// @Param limit query int false "limit"
// @Param offset query int false "offset"
// @Success 200 {object} product.ListResponse
// @Router /products [get]
func listProductsHandler(repo product.Repository, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		q := product.Query{Q: c.Query("q"), Limit: limit, Offset: offset}
		items, err := repo.List(c.Request.Context(), q)
		if err != nil {
			log.Error("product list failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if items == nil {
			items = []product.Product{}
		}
		c.JSON(http.StatusOK, product.ListResponse{Q: q.Q, Limit: q.Limit, Offset: q.Offset, Items: items})
	}
}

// getProductHandler godoc
// @Summary Get one product
// @Tags products
// @Produce json
// @Param id path int true "product id"
// @Success 200 {object} product.Product
// @Failure 404 {object} HTTPError
// @Router /products/{id} [get]
func getProductHandler(repo product.Repository, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		p, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			log.Error("product get failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

//
// ---------- orders (authenticated) ----------
//

// createOrderHandler godoc
// @Summary Place an order
// @Tags orders
// @Accept json
// @Produce json
// @Param payload body order.CreateRequest true "items and delivery selection"
// @Success 201 {object} order.Order
// @Failure 400 {object} HTTPError
// @Failure 404 {object} HTTPError
// @Failure 409 {object} HTTPError
// @Security BearerAuth
// @Router /orders [post]
func createOrderHandler(orders *order.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		o, err := orders.Create(c.Request.Context(), httpx.UserID(c), req)
		if err != nil {
			orderError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, o)
	}
}

// listMyOrdersHandler godoc
// @Summary List my orders, newest first
// @Tags orders
// @Produce json
// @Success 200 {array} order.Order
// @Security BearerAuth
// @Router /orders/me [get]
func listMyOrdersHandler(orders *order.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := orders.ListMine(c.Request.Context(), httpx.UserID(c))
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

// getOrderHandler godoc
// @Summary Get one order (owner or admin)
// @Tags orders
// @Produce json
// @Param id path int true "order id"
// @Success 200 {object} order.Order
// @Failure 403 {object} HTTPError
// @Failure 404 {object} HTTPError
// @Security BearerAuth
// @Router /orders/{id} [get]
func getOrderHandler(orders *order.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		o, err := orders.Get(c.Request.Context(), httpx.UserID(c), httpx.IsAdmin(c), id)
		if err != nil {
			orderError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// cancelOrderHandler godoc
// @Summary Cancel my order and restore stock
// @Tags orders
// @Produce json
// @Param id path int true "order id"
// @Success 200 {object} order.Order
// @Failure 400 {object} HTTPError
// @Failure 403 {object} HTTPError
// @Failure 404 {object} HTTPError
// @Security BearerAuth
// @Router /orders/{id}/cancel [patch]
func cancelOrderHandler(orders *order.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		o, err := orders.Cancel(c.Request.Context(), httpx.UserID(c), id)
		if err != nil {
			orderError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}
