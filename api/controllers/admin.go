package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/pwbcr2502-crypto/galass/api/models"
	"github.com/pwbcr2502-crypto/galass/api/transport"
	"github.com/pwbcr2502-crypto/galass/logging"
	"github.com/pwbcr2502-crypto/galass/notify"
	"github.com/pwbcr2502-crypto/galass/storage"
	"github.com/pwbcr2502-crypto/galass/voting"
)

type AdminController struct {
	eventsStorage     storage.EventStorage
	programsStorage   storage.ProgramStorage
	employeesStorage  storage.EmployeeStorage
	votesStorage      storage.VoteStorage
	statisticsStorage storage.StatisticStorage
	awardsStorage     storage.AwardStorage
	bus               notify.Bus
	adminToken        string
}

func NewAdminController(eventStorage storage.EventStorage, programStorage storage.ProgramStorage, employeeStorage storage.EmployeeStorage, voteStorage storage.VoteStorage, statisticStorage storage.StatisticStorage, awardStorage storage.AwardStorage, bus notify.Bus, adminToken string) *AdminController {
	return &AdminController{
		eventsStorage:     eventStorage,
		programsStorage:   programStorage,
		employeesStorage:  employeeStorage,
		votesStorage:      voteStorage,
		statisticsStorage: statisticStorage,
		awardsStorage:     awardStorage,
		bus:               bus,
		adminToken:        adminToken,
	}
}

func (c *AdminController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/admin")
	group.Use(transport.AdminAuthMiddleware(c.adminToken))

	group.POST("/events", c.createEvent)
	group.GET("/events", c.listEvents)
	group.GET("/events/:id", c.getEvent)
	group.PUT("/events/:id", c.updateEvent)
	group.PUT("/events/:id/status", c.setEventStatus)
	group.GET("/events/:id/programs", c.listEventPrograms)
	group.POST("/programs/import", c.importPrograms)
	group.POST("/programs/:id/vote-window", c.controlVoteWindow)
	group.GET("/employees", c.listEmployees)
	group.POST("/employees/import", c.importEmployees)
	group.DELETE("/employees/:id", c.deactivateEmployee)
	group.DELETE("/votes/:id", c.deleteVote)
	group.GET("/events/:id/export", c.exportVotes)
	group.GET("/events/:id/dashboard", c.getDashboard)
	group.POST("/events/:id/awards/calculate", c.calculateAwards)
	group.GET("/events/:id/awards", c.getAwards)
}

// @Security AdminToken
// createEvent godoc
// @Summary Create an event
// @Tags admin
// @Accept json
// @Produce json
// @Param event body models.EventCreateRequest true "Event definition"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.Response "Invalid event data"
// @Failure 409 {object} models.Response "Event code already exists"
// @Router /api/admin/events [post]
func (c *AdminController) createEvent(g *gin.Context) {
	var req models.EventCreateRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, models.Fail(400, "invalid request format"))
		return
	}

	weights := voting.EqualWeights()
	if req.Weights != nil {
		weights = voting.Weights{
			voting.DimensionStagePresence: req.Weights.StagePresence,
			voting.DimensionPerformance:   req.Weights.Performance,
			voting.DimensionPopularity:    req.Weights.Popularity,
			voting.DimensionTeamwork:      req.Weights.Teamwork,
			voting.DimensionCreativity:    req.Weights.Creativity,
		}
		if err := weights.Validate(); err != nil {
			g.JSON(http.StatusBadRequest, models.Fail(400, err.Error()))
			return
		}
	}

	code := req.Code
	if code == "" {
		generated, err := gonanoid.Generate("ABCDEFGHJKLMNPQRSTUVWXYZ23456789", 6)
		if err != nil {
			logging.Log.Errorf("ADMIN: failed to generate event code: %v", err)
			g.JSON(http.StatusInternalServerError, models.Fail(500, "could not create event"))
			return
		}
		code = generated
	}

	mode := req.VotingMode
	if mode == "" {
		mode = storage.VotingModePerProgram
	}
	windowSeconds := req.DefaultWindowSeconds
	if windowSeconds == 0 {
		windowSeconds = 300
	}

	event := &storage.Event{
		Code:                 code,
		Name:                 req.Name,
		VotingMode:           mode,
		DefaultWindowSeconds: windowSeconds,
		WeightStagePresence:  weights[voting.DimensionStagePresence],
		WeightPerformance:    weights[voting.DimensionPerformance],
		WeightPopularity:     weights[voting.DimensionPopularity],
		WeightTeamwork:       weights[voting.DimensionTeamwork],
		WeightCreativity:     weights[voting.DimensionCreativity],
	}
	if err := c.eventsStorage.Create(g.Request.Context(), event); err != nil {
		if errors.Is(err, storage.ErrItemWithIDAlreadyExists) {
			g.JSON(http.StatusConflict, models.Fail(409, "event code already exists"))
			return
		}
		logging.Log.Errorf("ADMIN: failed to create event: %v", err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "could not create event"))
		return
	}

	logging.Log.Infof("ADMIN: created event %s (%d)", event.Code, event.ID)
	resp := models.TransformEventFromStorage(event)
	g.JSON(http.StatusOK, models.OK("event created", &resp))
}

// @Security AdminToken
// listEvents godoc
// @Summary List all events
// @Tags admin
// @Produce json
// @Success 200 {object} models.Response
// @Router /api/admin/events [get]
func (c *AdminController) listEvents(g *gin.Context) {
	events, err := c.eventsStorage.GetAll(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("ADMIN: failed to list events: %v", err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "could not list events"))
		return
	}

	out := make([]models.EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, models.TransformEventFromStorage(e))
	}
	g.JSON(http.StatusOK, models.OK("", out))
}

// @Security AdminToken
// getEvent godoc
// @Summary Get one event
// @Tags admin
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.Response "Event not found"
// @Router /api/admin/events/{id} [get]
func (c *AdminController) getEvent(g *gin.Context) {
	event, ok := c.loadEvent(g)
	if !ok {
		return
	}
	resp := models.TransformEventFromStorage(event)
	g.JSON(http.StatusOK, models.OK("", &resp))
}

// @Security AdminToken
// updateEvent godoc
// @Summary Update an event
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param event body models.EventUpdateRequest true "Fields to update"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.Response "Event not found"
// @Router /api/admin/events/{id} [put]
func (c *AdminController) updateEvent(g *gin.Context) {
	event, ok := c.loadEvent(g)
	if !ok {
		return
	}

	var req models.EventUpdateRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, models.Fail(400, "invalid request format"))
		return
	}

	if req.Name != "" {
		event.Name = req.Name
	}
	if req.VotingMode != "" {
		event.VotingMode = req.VotingMode
	}
	if req.DefaultWindowSeconds != 0 {
		event.DefaultWindowSeconds = req.DefaultWindowSeconds
	}
	if req.Weights != nil {
		weights := voting.Weights{
			voting.DimensionStagePresence: req.Weights.StagePresence,
			voting.DimensionPerformance:   req.Weights.Performance,
			voting.DimensionPopularity:    req.Weights.Popularity,
			voting.DimensionTeamwork:      req.Weights.Teamwork,
			voting.DimensionCreativity:    req.Weights.Creativity,
		}
		if err := weights.Validate(); err != nil {
			g.JSON(http.StatusBadRequest, models.Fail(400, err.Error()))
			return
		}
		event.WeightStagePresence = weights[voting.DimensionStagePresence]
		event.WeightPerformance = weights[voting.DimensionPerformance]
		event.WeightPopularity = weights[voting.DimensionPopularity]
		event.WeightTeamwork = weights[voting.DimensionTeamwork]
		event.WeightCreativity = weights[voting.DimensionCreativity]
	}

	if err := c.eventsStorage.Update(g.Request.Context(), event); err != nil {
		logging.Log.Errorf("ADMIN: failed to update event %d: %v", event.ID, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "could not update event"))
		return
	}

	logging.Log.Infof("ADMIN: updated event %d", event.ID)
	resp := models.TransformEventFromStorage(event)
	g.JSON(http.StatusOK, models.OK("event updated", &resp))
}

// @Security AdminToken
// setEventStatus godoc
// @Summary Change event lifecycle status
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.Response "Invalid status"
// @Router /api/admin/events/{id}/status [put]
func (c *AdminController) setEventStatus(g *gin.Context) {
	event, ok := c.loadEvent(g)
	if !ok {
		return
	}

	var req struct {
		Status int `json:"status" binding:"min=0,max=2"`
	}
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, models.Fail(400, "invalid request format"))
		return
	}

	if err := c.eventsStorage.SetStatus(g.Request.Context(), event.ID, req.Status); err != nil {
		logging.Log.Errorf("ADMIN: failed to set status for event %d: %v", event.ID, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "could not update status"))
		return
	}

	logging.Audit("event_status", 0, map[string]interface{}{"eventId": event.ID, "status": req.Status})
	g.JSON(http.StatusOK, models.OK("status updated", gin.H{"status": req.Status}))
}

// @Security AdminToken
// listEventPrograms godoc
// @Summary List programs of one event
// @Tags admin
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} models.Response
// @Router /api/admin/events/{id}/programs [get]
func (c *AdminController) listEventPrograms(g *gin.Context) {
	event, ok := c.loadEvent(g)
	if !ok {
		return
	}

	programs, err := c.programsStorage.GetByEvent(g.Request.Context(), event.ID)
	if err != nil {
		logging.Log.Errorf("ADMIN: failed to list programs for event %d: %v", event.ID, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "could not list programs"))
		return
	}

	now := time.Now().UTC()
	out := make([]models.ProgramResponse, 0, len(programs))
	for _, p := range programs {
		out = append(out, models.TransformProgramFromStorage(p, now))
	}
	g.JSON(http.StatusOK, models.OK("", out))
}

// @Security AdminToken
// importPrograms godoc
// @Summary Batch import programs
// @Tags admin
// @Accept json
// @Produce json
// @Param programs body models.ProgramImportRequest true "Programs to import"
// @Success 200 {object} models.Response
// @Failure 409 {object} models.Response "Duplicate sequence number"
// @Router /api/admin/programs/import [post]
func (c *AdminController) importPrograms(g *gin.Context) {
	var req models.ProgramImportRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, models.Fail(400, "invalid request format"))
		return
	}

	if _, err := c.eventsStorage.Get(g.Request.Context(), req.EventID); err != nil {
		g.JSON(http.StatusNotFound, models.Fail(404, "event not found"))
		return
	}

	programs := make([]*storage.Program, 0, len(req.Programs))
	for _, p := range req.Programs {
		duration := p.DurationMinutes
		if duration == 0 {
			duration = 5
		}
		programs = append(programs, &storage.Program{
			EventID:         req.EventID,
			SeqNo:           p.SeqNo,
			Title:           p.Title,
			Performer:       p.Performer,
			Description:     p.Description,
			DurationMinutes: duration,
		})
	}

	if err := c.programsStorage.BatchCreate(g.Request.Context(), programs); err != nil {
		if errors.Is(err, storage.ErrItemWithIDAlreadyExists) {
			g.JSON(http.StatusConflict, models.Fail(409, "a program with the same sequence number already exists"))
			return
		}
		logging.Log.Errorf("ADMIN: program import failed: %v", err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "could not import programs"))
		return
	}

	logging.Log.Infof("ADMIN: imported %d programs into event %d", len(programs), req.EventID)
	g.JSON(http.StatusOK, models.OK("programs imported", gin.H{"imported": len(programs)}))
}

// @Security AdminToken
// controlVoteWindow godoc
// @Summary Open or close a program's voting window
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Program ID"
// @Param action body models.VoteWindowRequest true "open or close, with optional duration seconds"
// @Success 200 {object} models.Response
// @Failure 403 {object} models.Response "Window state does not allow the action"
// @Router /api/admin/programs/{id}/vote-window [post]
func (c *AdminController) controlVoteWindow(g *gin.Context) {
	id, err := strconv.Atoi(g.Param("id"))
	if err != nil {
		g.JSON(http.StatusBadRequest, models.Fail(400, "invalid program id"))
		return
	}

	var req models.VoteWindowRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, models.Fail(400, "invalid request format"))
		return
	}

	ctx := g.Request.Context()
	var program *storage.Program
	var kind string

	switch req.Action {
	case "open":
		duration := time.Duration(req.Duration) * time.Second
		if req.Duration == 0 {
			current, err := c.programsStorage.Get(ctx, id)
			if err != nil {
				g.JSON(http.StatusNotFound, models.Fail(404, "program not found"))
				return
			}
			event, err := c.eventsStorage.Get(ctx, current.EventID)
			if err != nil {
				logging.Log.Errorf("ADMIN: event lookup failed for program %d: %v", id, err)
				g.JSON(http.StatusInternalServerError, models.Fail(500, "internal error"))
				return
			}
			duration = time.Duration(event.DefaultWindowSeconds) * time.Second
		}
		program, err = c.programsStorage.OpenVoteWindow(ctx, id, duration)
		kind = notify.KindVoteWindowOpened
	case "close":
		program, err = c.programsStorage.CloseVoteWindow(ctx, id)
		kind = notify.KindVoteWindowClosed
	}

	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			g.JSON(http.StatusNotFound, models.Fail(404, "program not found"))
		case errors.Is(err, voting.ErrVotingNotStarted), errors.Is(err, voting.ErrVotingClosed):
			g.JSON(http.StatusForbidden, models.Fail(403, err.Error()))
		default:
			logging.Log.Errorf("ADMIN: vote window %s failed for program %d: %v", req.Action, id, err)
			g.JSON(http.StatusInternalServerError, models.Fail(500, "could not update vote window"))
		}
		return
	}

	logging.Audit("vote_window_"+req.Action, 0, map[string]interface{}{
		"programId": program.ID,
		"eventId":   program.EventID,
	})

	resp := models.TransformProgramFromStorage(program, time.Now().UTC())
	c.bus.Publish(notify.Message{Kind: kind, EventID: program.EventID, Payload: &resp})
	g.JSON(http.StatusOK, models.OK("vote window updated", &resp))
}

// @Security AdminToken
// listEmployees godoc
// @Summary List employees
// @Tags admin
// @Produce json
// @Param department query string false "Filter by department"
// @Param search query string false "Match against name or employee number"
// @Param page query int false "Page, default 1"
// @Param limit query int false "Page size, default 50"
// @Success 200 {object} models.Response
// @Router /api/admin/employees [get]
func (c *AdminController) listEmployees(g *gin.Context) {
	page, _ := strconv.Atoi(g.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(g.DefaultQuery("limit", "50"))

	employees, total, err := c.employeesStorage.List(g.Request.Context(), g.Query("department"), g.Query("search"), page, limit)
	if err != nil {
		logging.Log.Errorf("ADMIN: failed to list employees: %v", err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "could not list employees"))
		return
	}

	out := make([]models.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		out = append(out, models.TransformEmployeeFromStorage(e))
	}
	g.JSON(http.StatusOK, models.OK("", &models.EmployeeListResponse{Total: total, Employees: out}))
}

// @Security AdminToken
// importEmployees godoc
// @Summary Batch import employees
// @Description Imports the roster; rows whose employee number already exists are skipped
// @Tags admin
// @Accept json
// @Produce json
// @Param employees body models.EmployeeImportRequest true "Employees to import"
// @Success 200 {object} models.Response
// @Router /api/admin/employees/import [post]
func (c *AdminController) importEmployees(g *gin.Context) {
	var req models.EmployeeImportRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, models.Fail(400, "invalid request format"))
		return
	}

	employees := make([]*storage.Employee, 0, len(req.Employees))
	for _, e := range req.Employees {
		employees = append(employees, &storage.Employee{
			EmpNo:      e.EmpNo,
			Name:       e.Name,
			Department: e.Department,
			Status:     storage.EmployeeStatusActive,
		})
	}

	created, err := c.employeesStorage.BatchCreate(g.Request.Context(), employees)
	if err != nil {
		logging.Log.Errorf("ADMIN: employee import failed: %v", err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "could not import employees"))
		return
	}

	logging.Log.Infof("ADMIN: imported %d of %d employees", created, len(employees))
	g.JSON(http.StatusOK, models.OK("employees imported", gin.H{
		"imported": created,
		"skipped":  len(employees) - created,
	}))
}

// @Security AdminToken
// deactivateEmployee godoc
// @Summary Deactivate an employee
// @Description Soft delete, the employee can no longer log in but submitted votes stay
// @Tags admin
// @Produce json
// @Param id path int true "Employee ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.Response "Employee not found"
// @Router /api/admin/employees/{id} [delete]
func (c *AdminController) deactivateEmployee(g *gin.Context) {
	id, err := strconv.Atoi(g.Param("id"))
	if err != nil {
		g.JSON(http.StatusBadRequest, models.Fail(400, "invalid employee id"))
		return
	}

	if err := c.employeesStorage.Deactivate(g.Request.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, models.Fail(404, "employee not found"))
			return
		}
		logging.Log.Errorf("ADMIN: failed to deactivate employee %d: %v", id, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "could not deactivate employee"))
		return
	}

	logging.Audit("employee_deactivate", 0, map[string]interface{}{"employeeId": id})
	g.JSON(http.StatusOK, models.OK("employee deactivated", nil))
}

// @Security AdminToken
// deleteVote godoc
// @Summary Delete a vote
// @Description Removes a vote and reverses its statistics contribution
// @Tags admin
// @Produce json
// @Param id path int true "Vote ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.Response "Vote not found"
// @Router /api/admin/votes/{id} [delete]
func (c *AdminController) deleteVote(g *gin.Context) {
	id, err := strconv.Atoi(g.Param("id"))
	if err != nil {
		g.JSON(http.StatusBadRequest, models.Fail(400, "invalid vote id"))
		return
	}

	if err := c.votesStorage.Delete(g.Request.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, models.Fail(404, "vote not found"))
			return
		}
		logging.Log.Errorf("ADMIN: failed to delete vote %d: %v", id, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "could not delete vote"))
		return
	}

	logging.Audit("vote_delete", 0, map[string]interface{}{"voteId": id})
	g.JSON(http.StatusOK, models.OK("vote deleted", nil))
}

// @Security AdminToken
// exportVotes godoc
// @Summary Export the vote ledger
// @Description Returns every vote of the event joined with program and voter details
// @Tags admin
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} models.Response
// @Router /api/admin/events/{id}/export [get]
func (c *AdminController) exportVotes(g *gin.Context) {
	event, ok := c.loadEvent(g)
	if !ok {
		return
	}

	rows, err := c.votesStorage.ExportRows(g.Request.Context(), event.ID)
	if err != nil {
		logging.Log.Errorf("ADMIN: export failed for event %d: %v", event.ID, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "could not export votes"))
		return
	}

	logging.Log.Infof("ADMIN: exported %d votes for event %d", len(rows), event.ID)
	g.JSON(http.StatusOK, models.OK("", rows))
}

// @Security AdminToken
// getDashboard godoc
// @Summary Event dashboard
// @Description Aggregated event view with totals, per-program progress and top programs
// @Tags admin
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} models.Response
// @Router /api/admin/events/{id}/dashboard [get]
func (c *AdminController) getDashboard(g *gin.Context) {
	event, ok := c.loadEvent(g)
	if !ok {
		return
	}
	ctx := g.Request.Context()

	summary, err := c.statisticsStorage.EventSummary(ctx, event.ID)
	if err != nil {
		logging.Log.Errorf("ADMIN: dashboard summary failed for event %d: %v", event.ID, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "could not build dashboard"))
		return
	}

	progress, err := c.statisticsStorage.VotingProgress(ctx, event.ID)
	if err != nil {
		logging.Log.Errorf("ADMIN: dashboard progress failed for event %d: %v", event.ID, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "could not build dashboard"))
		return
	}

	top, err := c.statisticsStorage.Leaderboard(ctx, event.ID, "", 5)
	if err != nil {
		logging.Log.Errorf("ADMIN: dashboard leaderboard failed for event %d: %v", event.ID, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "could not build dashboard"))
		return
	}

	dashboard := &models.DashboardResponse{
		Event:    models.TransformEventFromStorage(event),
		Summary:  summary,
		Progress: progress,
		Top:      top,
	}
	if current, err := c.programsStorage.GetCurrentVoting(ctx, event.ID); err == nil {
		resp := models.TransformProgramFromStorage(current, time.Now().UTC())
		dashboard.Current = &resp
	}

	g.JSON(http.StatusOK, models.OK("", dashboard))
}

// @Security AdminToken
// calculateAwards godoc
// @Summary Calculate and publish awards
// @Description Runs the award resolver over the event statistics and stores the winners, recalculating overwrites
// @Tags admin
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} models.Response
// @Router /api/admin/events/{id}/awards/calculate [post]
func (c *AdminController) calculateAwards(g *gin.Context) {
	event, ok := c.loadEvent(g)
	if !ok {
		return
	}
	ctx := g.Request.Context()

	totals, err := c.awardsStorage.ProgramTotals(ctx, event.ID)
	if err != nil {
		logging.Log.Errorf("ADMIN: award totals failed for event %d: %v", event.ID, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "could not calculate awards"))
		return
	}

	winners := voting.ResolveAwards(totals, voting.AwardDefinitions)
	if err := c.awardsStorage.SaveResults(ctx, event.ID, winners); err != nil {
		logging.Log.Errorf("ADMIN: award save failed for event %d: %v", event.ID, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "could not save awards"))
		return
	}

	logging.Audit("awards_calculate", 0, map[string]interface{}{
		"eventId": event.ID,
		"winners": len(winners),
	})

	published, err := c.awardsStorage.GetPublished(ctx, event.ID)
	if err != nil {
		logging.Log.Errorf("ADMIN: award read-back failed for event %d: %v", event.ID, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "could not load awards"))
		return
	}

	out := make([]models.AwardResponse, 0, len(published))
	for _, a := range published {
		out = append(out, models.TransformAwardFromStorage(a))
	}

	c.bus.Publish(notify.Message{Kind: notify.KindAwardsPublished, EventID: event.ID, Payload: out})
	g.JSON(http.StatusOK, models.OK("awards published", out))
}

// @Security AdminToken
// getAwards godoc
// @Summary Published awards
// @Tags admin
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} models.Response
// @Router /api/admin/events/{id}/awards [get]
func (c *AdminController) getAwards(g *gin.Context) {
	event, ok := c.loadEvent(g)
	if !ok {
		return
	}

	published, err := c.awardsStorage.GetPublished(g.Request.Context(), event.ID)
	if err != nil {
		logging.Log.Errorf("ADMIN: award listing failed for event %d: %v", event.ID, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "could not load awards"))
		return
	}

	out := make([]models.AwardResponse, 0, len(published))
	for _, a := range published {
		out = append(out, models.TransformAwardFromStorage(a))
	}
	g.JSON(http.StatusOK, models.OK("", out))
}

func (c *AdminController) loadEvent(g *gin.Context) (*storage.Event, bool) {
	id, err := strconv.Atoi(g.Param("id"))
	if err != nil {
		g.JSON(http.StatusBadRequest, models.Fail(400, "invalid event id"))
		return nil, false
	}

	event, err := c.eventsStorage.Get(g.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, models.Fail(404, "event not found"))
			return nil, false
		}
		logging.Log.Errorf("ADMIN: event lookup failed for %d: %v", id, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "internal error"))
		return nil, false
	}

	return event, true
}
