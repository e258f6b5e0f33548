package transport

import (
	"net/http"
	"os"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	gonanoid "github.com/matoous/go-nanoid/v2"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/pwbcr2502-crypto/galass/auth"
	"github.com/pwbcr2502-crypto/galass/logging"
	"github.com/pwbcr2502-crypto/galass/storage"
)

// Context keys set by AuthMiddleware for downstream handlers.
const (
	ContextEmployeeID = "employeeID"
	ContextEventID    = "eventID"
	ContextEmpNo      = "empNo"
	ContextName       = "employeeName"
)

var empNoPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("empno", func(fl validator.FieldLevel) bool {
			return empNoPattern.MatchString(fl.Field().String())
		})
	}
}

func NewRouter(ginMode string) *gin.Engine {
	gin.SetMode(ginMode)
	registerValidations()

	engine := gin.New()
	engine.Use(RequestIDMiddleware())
	engine.Use(CORSMiddleware())

	//Bypass swagger for non-local
	if os.Getenv("APP_ENV") == "local" {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	engine.NoRoute(NoRouteHandler())

	return engine
}

// RequestIDMiddleware tags every request so log lines can be correlated.
// An inbound X-Request-Id is honored, otherwise one is generated.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			if generated, err := gonanoid.New(); err == nil {
				requestID = generated
			}
		}
		c.Set("requestID", requestID)
		c.Writer.Header().Set("X-Request-Id", requestID)
		c.Next()
	}
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, x-admin-token")

		if c.Request.Method == "OPTIONS" {
			logging.Log.Infof("OPTIONS request received:%s", c.Request.URL.Path)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func NoRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logging.Log.Infof("No routed request received for:%s", c.Request.URL.Path)
		c.JSON(http.StatusNotFound, gin.H{"code": "PAGE_NOT_FOUND", "message": "Page not found"})
	}
}

func AdminAuthMiddleware(adminToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("x-admin-token")
		expected := adminToken
		if expected == "" {
			expected = os.Getenv("ADMIN_TOKEN")
		}

		if token == "" || token != expected {
			logging.Log.Warnf("ADMIN: Unauthorized access attempt to %s", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// AuthMiddleware verifies the bearer token and checks the server-side session
// is still live, so a revoked session rejects even an otherwise valid token.
func AuthMiddleware(issuer *auth.TokenIssuer, sessions storage.SessionStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw := strings.TrimPrefix(header, "Bearer ")
		if raw == "" || raw == header {
			logging.Log.Warnf("AUTH: missing bearer token for %s", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "missing token"})
			return
		}

		claims, err := issuer.Verify(raw)
		if err != nil {
			logging.Log.Warnf("AUTH: token rejected for %s: %v", c.Request.URL.Path, err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "invalid token"})
			return
		}

		if sessions != nil {
			ok, err := sessions.Validate(c.Request.Context(), claims.EmployeeID, claims.EventID, auth.HashToken(raw))
			if err != nil || !ok {
				logging.Log.Warnf("AUTH: session invalid for employee %d", claims.EmployeeID)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "session expired"})
				return
			}
		}

		c.Set(ContextEmployeeID, claims.EmployeeID)
		c.Set(ContextEventID, claims.EventID)
		c.Set(ContextEmpNo, claims.EmpNo)
		c.Set(ContextName, claims.Name)
		c.Next()
	}
}
