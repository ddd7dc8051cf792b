package http

import (
	"crypto/sha256"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/velmark/storefront/internal/adapters/transport/http/dto"
	"github.com/velmark/storefront/internal/adapters/transport/http/middleware"
	authsvc "github.com/velmark/storefront/internal/app/auth/service"
	catalogsvc "github.com/velmark/storefront/internal/app/catalog/service"
	authErrors "github.com/velmark/storefront/internal/domain/errors"
	"github.com/velmark/storefront/internal/domain/model"
	"github.com/velmark/storefront/internal/infra/config"
)

type handlers struct {
	auth    authsvc.Service
	catalog catalogsvc.Service
	log     *zap.Logger
}

func NewRouter(cfg *config.Config, log *zap.Logger, auth authsvc.Service, catalog catalogsvc.Service) *gin.Engine {
	h := &handlers{auth: auth, catalog: catalog, log: log}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.NewRateLimitPerIP(50, 100, 10_000, time.Hour))

	corsConfig := cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			"Authorization",
			"X-Requested-With",
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
	})

	router.POST("/signup", h.signup)
	router.POST("/token", h.login)
	router.POST("/logout", h.logout)
	router.POST("/password-reset-request", h.passwordResetRequest)
	router.POST("/password-reset-confirm", h.passwordResetConfirm)
	router.GET("/users/profile", h.profile)

	router.POST("/products", h.createProduct)
	router.GET("/products", h.listProducts)
	router.GET("/products/:id", h.getProduct)
	router.DELETE("/products/:id", h.deleteProduct)

	router.POST("/orders", h.createOrder)
	router.GET("/orders", h.listOrders)
	router.GET("/orders/:id", h.getOrder)
	router.DELETE("/orders/:id", h.deleteOrder)

	return router
}

/* ───────────────────────────── auth ───────────────────────────── */

func (h *handlers) signup(c *gin.Context) {
	var body dto.SignupDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.log.Info("/signup",
		zap.String("user", fmt.Sprintf("%x", sha256.Sum256([]byte(body.Username)))),
	)

	user, err := h.auth.Signup(c.Request.Context(), body)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, userView(user))
}

func (h *handlers) login(c *gin.Context) {
	var body dto.LoginDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.log.Info("/token",
		zap.String("user", fmt.Sprintf("%x", sha256.Sum256([]byte(body.Username)))),
	)

	tok, err := h.auth.Login(c.Request.Context(), body)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": tok.AccessToken,
		"token_type":   tok.TokenType,
		"expires_in":   int(time.Until(tok.ExpiresAt).Seconds()),
	})
}

// logout revokes the presented token itself; it does not go through
// currentUser so that revoking an already revoked token stays a no-op.
func (h *handlers) logout(c *gin.Context) {
	raw := bearerToken(c)
	if raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}
	h.log.Info("/logout")

	if err := h.auth.Logout(c.Request.Context(), raw); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "logout successful"})
}

func (h *handlers) passwordResetRequest(c *gin.Context) {
	var body dto.PasswordResetRequestDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.log.Info("/password-reset-request",
		zap.String("email", fmt.Sprintf("%x", sha256.Sum256([]byte(body.Email)))),
	)

	reset, err := h.auth.RequestPasswordReset(c.Request.Context(), body)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reset_token": reset})
}

func (h *handlers) passwordResetConfirm(c *gin.Context) {
	var body dto.PasswordResetConfirmDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.log.Info("/password-reset-confirm")

	if err := h.auth.ConfirmPasswordReset(c.Request.Context(), body); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "password reset successful"})
}

func (h *handlers) profile(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, userView(user))
}

/* ─────────────────────────── catalog ─────────────────────────── */

func (h *handlers) createProduct(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var body dto.ProductCreateDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), user, body)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, productView(product))
}

func (h *handlers) listProducts(c *gin.Context) {
	offset, limit := pageParams(c)
	products, err := h.catalog.ListProducts(c.Request.Context(), offset, limit)
	if err != nil {
		handleError(c, err)
		return
	}

	out := make([]gin.H, 0, len(products))
	for _, p := range products {
		out = append(out, productView(p))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) getProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, productView(product))
}

func (h *handlers) deleteProduct(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	product, err := h.catalog.DeleteProduct(c.Request.Context(), user, id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, productView(product))
}

func (h *handlers) createOrder(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var body dto.OrderCreateDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.catalog.CreateOrder(c.Request.Context(), user, body)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderView(order))
}

func (h *handlers) listOrders(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	offset, limit := pageParams(c)
	orders, err := h.catalog.ListOrders(c.Request.Context(), user, offset, limit)
	if err != nil {
		handleError(c, err)
		return
	}

	out := make([]gin.H, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderView(o))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) getOrder(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	order, err := h.catalog.GetOrder(c.Request.Context(), user, id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderView(order))
}

func (h *handlers) deleteOrder(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	order, err := h.catalog.DeleteOrder(c.Request.Context(), user, id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderView(order))
}

/* ─────────────────────────── helpers ─────────────────────────── */

func bearerToken(c *gin.Context) string {
	raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(raw)
}

func (h *handlers) currentUser(c *gin.Context) (model.User, bool) {
	raw := bearerToken(c)
	if raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return model.User{}, false
	}

	user, err := h.auth.Authenticate(c.Request.Context(), raw)
	if err != nil {
		handleError(c, err)
		return model.User{}, false
	}
	return user, true
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func pageParams(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	return offset, limit
}

func userView(u model.User) gin.H {
	return gin.H{
		"id":        u.ID,
		"username":  u.Username,
		"email":     u.Email,
		"is_active": u.IsActive,
		"is_staff":  u.IsStaff,
	}
}

func productView(p model.Product) gin.H {
	return gin.H{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"is_active":   p.IsActive,
	}
}

func orderView(o model.Order) gin.H {
	return gin.H{
		"id":         o.ID,
		"user_id":    o.UserID,
		"product_id": o.ProductID,
		"quantity":   o.Quantity,
		"status":     o.Status,
	}
}

func handleError(c *gin.Context, err error) {
	switch {
	case authErrors.IsInvalidArgument(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case authErrors.IsInvalidCredentials(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case authErrors.IsInvalidToken(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
	case authErrors.IsForbidden(err):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case authErrors.IsAlreadyExists(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case authErrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
