package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pwbcr2502-crypto/galass/api/models"
	"github.com/pwbcr2502-crypto/galass/api/transport"
	"github.com/pwbcr2502-crypto/galass/auth"
	"github.com/pwbcr2502-crypto/galass/logging"
	"github.com/pwbcr2502-crypto/galass/storage"
)

type AuthController struct {
	eventsStorage    storage.EventStorage
	employeesStorage storage.EmployeeStorage
	votesStorage     storage.VoteStorage
	sessionsStorage  storage.SessionStorage
	issuer           *auth.TokenIssuer
	throttle         *auth.LoginThrottle
}

func NewAuthController(eventStorage storage.EventStorage, employeeStorage storage.EmployeeStorage, voteStorage storage.VoteStorage, sessionStorage storage.SessionStorage, issuer *auth.TokenIssuer, throttle *auth.LoginThrottle) *AuthController {
	return &AuthController{
		eventsStorage:    eventStorage,
		employeesStorage: employeeStorage,
		votesStorage:     voteStorage,
		sessionsStorage:  sessionStorage,
		issuer:           issuer,
		throttle:         throttle,
	}
}

func (c *AuthController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/auth")
	group.POST("/login", c.login)

	authed := engine.Group("/api/auth")
	authed.Use(transport.AuthMiddleware(c.issuer, c.sessionsStorage))
	authed.POST("/logout", c.logout)
	authed.GET("/profile", c.profile)
}

// login godoc
// @Summary Log a voter in
// @Description Exchanges an event code and employee number for a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param login body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.Response "Invalid request format"
// @Failure 401 {object} models.Response "Unknown employee or event"
// @Failure 429 {object} models.Response "Too many attempts"
// @Router /api/auth/login [post]
func (c *AuthController) login(g *gin.Context) {
	var req models.LoginRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, models.Fail(400, "invalid request format"))
		return
	}

	ctx := g.Request.Context()

	if err := c.throttle.Check(ctx, g.ClientIP(), req.EmpNo); err != nil {
		if errors.Is(err, auth.ErrTooManyAttempts) {
			logging.Log.Warnf("AUTH: throttled login for %s from %s", req.EmpNo, g.ClientIP())
			g.JSON(http.StatusTooManyRequests, models.Fail(429, "too many login attempts, try again later"))
			return
		}
		logging.Log.Errorf("AUTH: throttle check failed: %v", err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "internal error"))
		return
	}

	event, err := c.eventsStorage.GetByCode(ctx, req.EventCode)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusUnauthorized, models.Fail(401, "event not found"))
			return
		}
		logging.Log.Errorf("AUTH: event lookup failed: %v", err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "internal error"))
		return
	}
	if event.Status == storage.EventStatusClosed {
		g.JSON(http.StatusUnauthorized, models.Fail(401, "event has ended"))
		return
	}

	employee, err := c.employeesStorage.GetByEmpNo(ctx, req.EmpNo)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logging.Log.Warnf("AUTH: unknown or inactive employee %s", req.EmpNo)
			g.JSON(http.StatusUnauthorized, models.Fail(401, "employee not found or inactive"))
			return
		}
		logging.Log.Errorf("AUTH: employee lookup failed: %v", err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "internal error"))
		return
	}

	token, err := c.issuer.Generate(auth.Claims{
		EmployeeID: employee.ID,
		EventID:    event.ID,
		EmpNo:      employee.EmpNo,
		Name:       employee.Name,
		Department: employee.Department,
	})
	if err != nil {
		logging.Log.Errorf("AUTH: token generation failed: %v", err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "internal error"))
		return
	}

	// Logging in again replaces the previous session for this event.
	session := &storage.UserSession{
		EmployeeID: employee.ID,
		EventID:    event.ID,
		TokenHash:  auth.HashToken(token),
		ExpiresAt:  time.Now().UTC().Add(c.issuer.TTL()),
		IPAddress:  g.ClientIP(),
		UserAgent:  g.Request.UserAgent(),
	}
	if err := c.sessionsStorage.Upsert(ctx, session); err != nil {
		logging.Log.Errorf("AUTH: session upsert failed: %v", err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "internal error"))
		return
	}

	if err := c.employeesStorage.TouchLastLogin(ctx, employee.ID); err != nil {
		logging.Log.Warnf("AUTH: could not update last login for %d: %v", employee.ID, err)
	}

	votedPrograms, err := c.votedProgramIDs(g, event.ID, employee.ID)
	if err != nil {
		g.JSON(http.StatusInternalServerError, models.Fail(500, "internal error"))
		return
	}

	logging.Audit("login", employee.ID, map[string]interface{}{
		"empNo":   employee.EmpNo,
		"eventId": event.ID,
		"ip":      g.ClientIP(),
	})

	g.JSON(http.StatusOK, models.OK("login successful", &models.LoginResponse{
		Token:         token,
		Employee:      models.TransformLoginEmployee(employee),
		Event:         models.TransformLoginEvent(event),
		HasVoted:      len(votedPrograms) > 0,
		VotedPrograms: votedPrograms,
	}))
}

// logout godoc
// @Summary Log the voter out
// @Description Revokes the server-side session for the current token
// @Tags auth
// @Produce json
// @Success 200 {object} models.Response
// @Failure 401 {object} models.Response "Missing or invalid token"
// @Router /api/auth/logout [post]
func (c *AuthController) logout(g *gin.Context) {
	employeeID := g.GetInt(transport.ContextEmployeeID)
	eventID := g.GetInt(transport.ContextEventID)

	if err := c.sessionsStorage.Revoke(g.Request.Context(), employeeID, eventID); err != nil {
		logging.Log.Errorf("AUTH: session revoke failed for %d: %v", employeeID, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "internal error"))
		return
	}

	logging.Audit("logout", employeeID, map[string]interface{}{"eventId": eventID})
	g.JSON(http.StatusOK, models.OK("logged out", nil))
}

// profile godoc
// @Summary Current voter profile
// @Description Returns the logged-in employee and the programs already voted
// @Tags auth
// @Produce json
// @Success 200 {object} models.Response
// @Failure 401 {object} models.Response "Missing or invalid token"
// @Router /api/auth/profile [get]
func (c *AuthController) profile(g *gin.Context) {
	employeeID := g.GetInt(transport.ContextEmployeeID)
	eventID := g.GetInt(transport.ContextEventID)

	employee, err := c.employeesStorage.Get(g.Request.Context(), employeeID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusUnauthorized, models.Fail(401, "employee no longer exists"))
			return
		}
		logging.Log.Errorf("AUTH: profile lookup failed: %v", err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "internal error"))
		return
	}

	votedPrograms, err := c.votedProgramIDs(g, eventID, employeeID)
	if err != nil {
		g.JSON(http.StatusInternalServerError, models.Fail(500, "internal error"))
		return
	}

	g.JSON(http.StatusOK, models.OK("", gin.H{
		"employee":      models.TransformLoginEmployee(employee),
		"votedPrograms": votedPrograms,
	}))
}

func (c *AuthController) votedProgramIDs(g *gin.Context, eventID, employeeID int) ([]int, error) {
	votes, err := c.votesStorage.GetByEmployee(g.Request.Context(), eventID, employeeID)
	if err != nil {
		logging.Log.Errorf("AUTH: voted programs lookup failed: %v", err)
		return nil, err
	}
	ids := make([]int, 0, len(votes))
	for _, v := range votes {
		ids = append(ids, v.ProgramID)
	}
	return ids, nil
}
