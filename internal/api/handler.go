package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"shop-backend/internal/auth"
	"shop-backend/internal/service"
	"shop-backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler contains HTTP handlers
type Handler struct {
	catalogService *service.CatalogService
	userService    *service.UserService
	orderService   *service.OrderService
	jwtService     *auth.JWTService
	tokenChecker   TokenChecker
}

// NewHandler creates a new HTTP handler
func NewHandler(
	catalogService *service.CatalogService,
	userService *service.UserService,
	orderService *service.OrderService,
	jwtService *auth.JWTService,
	tokenChecker TokenChecker,
) *Handler {
	return &Handler{
		catalogService: catalogService,
		userService:    userService,
		orderService:   orderService,
		jwtService:     jwtService,
		tokenChecker:   tokenChecker,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	api.GET("/products/", h.listProducts)
	api.GET("/products/:slug/", h.getProduct)

	users := api.Group("/users")
	{
		users.POST("/register/", h.register)
		users.POST("/login/", h.login)
		users.POST("/token/refresh/", h.refreshToken)
		users.PUT("/password/", AuthMiddleware(h.jwtService, h.tokenChecker), h.changePassword)
	}

	orders := api.Group("/orders")
	orders.Use(AuthMiddleware(h.jwtService, h.tokenChecker))
	{
		orders.POST("/create/", h.createOrder)
		orders.GET("/my-orders/", h.myOrders)
		orders.PUT("/:id/pay/", h.payOrder)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// listProducts returns all active products
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalogService.ListProducts(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// getProduct returns a single product by slug
func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.catalogService.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Product not found"})
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// register creates a new user account
func (h *Handler) register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	user, err := h.userService.Register(c.Request.Context(), &req)
	if ve, ok := service.AsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, ve.Fields)
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// login issues an access/refresh token pair
func (h *Handler) login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	pair, err := h.userService.Login(c.Request.Context(), &req)
	if errors.Is(err, service.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"detail": "No active account found with the given credentials",
		})
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// refreshToken issues a new access token from a refresh token
func (h *Handler) refreshToken(c *gin.Context) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	access, err := h.userService.Refresh(c.Request.Context(), req.Refresh)
	if errors.Is(err, service.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Token is invalid or expired"})
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access": access})
}

// changePassword updates the authenticated user's password
func (h *Handler) changePassword(c *gin.Context) {
	var req service.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password is required"})
		return
	}

	err := h.userService.ChangePassword(c.Request.Context(), currentUserID(c), &req)
	if _, ok := service.AsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password is required"})
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// createOrder places an order for the authenticated user
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	order, err := h.orderService.PlaceOrder(c.Request.Context(), currentUserID(c), &req)
	if ve, ok := service.AsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, ve.Fields)
		return
	}
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Product not found"})
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// myOrders lists the authenticated user's orders, newest first
func (h *Handler) myOrders(c *gin.Context) {
	orders, err := h.orderService.ListOrders(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// payOrder marks an owned order as paid (simulated payment)
func (h *Handler) payOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	err = h.orderService.MarkPaid(c.Request.Context(), currentUserID(c), orderID)
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Order paid successfully"})
}

func (h *Handler) serverError(c *gin.Context, err error) {
	util.GetLogger().Error("Request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
}
