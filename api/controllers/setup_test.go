package controllers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	ctesting "github.com/pwbcr2502-crypto/galass/api/controllers/testing"
	"github.com/pwbcr2502-crypto/galass/api/transport"
	"github.com/pwbcr2502-crypto/galass/auth"
	"github.com/pwbcr2502-crypto/galass/logging"
	"github.com/pwbcr2502-crypto/galass/notify"
	"github.com/pwbcr2502-crypto/galass/storage"
)

const testAdminToken = "test-admin-token"

type testEnv struct {
	db        *gorm.DB
	router    *gin.Engine
	issuer    *auth.TokenIssuer
	bus       *notify.Broadcaster
	events    *storage.GormEventStorage
	programs  *storage.GormProgramStorage
	employees *storage.GormEmployeeStorage
	votes     *storage.GormVoteStorage
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	logging.Log = logrus.New()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_fk=1"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, storage.Migrate(db))

	t.Cleanup(func() {
		for _, table := range []string{"votes", "program_statistics", "award_results", "programs", "events", "employees", "user_sessions", "login_attempts"} {
			db.Exec("DELETE FROM " + table)
		}
	})

	env := &testEnv{
		db:        db,
		issuer:    auth.NewTokenIssuer("test-secret", time.Hour),
		bus:       notify.NewBroadcaster(),
		events:    &storage.GormEventStorage{DB: db},
		programs:  &storage.GormProgramStorage{DB: db},
		employees: &storage.GormEmployeeStorage{DB: db},
		votes:     &storage.GormVoteStorage{DB: db},
	}
	statistics := &storage.GormStatisticStorage{DB: db}
	awards := &storage.GormAwardStorage{DB: db}
	sessions := &storage.GormSessionStorage{DB: db}
	attempts := &storage.GormLoginAttemptStorage{DB: db}
	throttle := auth.NewLoginThrottle(attempts)

	env.router = transport.NewRouter(gin.TestMode)
	NewAuthController(env.events, env.employees, env.votes, sessions, env.issuer, throttle).RegisterRoutes(env.router)
	NewProgramController(env.programs, env.votes, statistics, sessions, env.issuer).RegisterRoutes(env.router)
	NewVotingController(env.events, env.programs, env.votes, statistics, sessions, env.issuer, env.bus).RegisterRoutes(env.router)
	NewAdminController(env.events, env.programs, env.employees, env.votes, statistics, awards, env.bus, testAdminToken).RegisterRoutes(env.router)

	return env
}

func (e *testEnv) seedEvent(t *testing.T, code string) *storage.Event {
	t.Helper()
	event := &storage.Event{
		Code:                 code,
		Name:                 "Anniversary Gala",
		VotingMode:           storage.VotingModePerProgram,
		DefaultWindowSeconds: 300,
		WeightStagePresence:  0.2,
		WeightPerformance:    0.2,
		WeightPopularity:     0.2,
		WeightTeamwork:       0.2,
		WeightCreativity:     0.2,
		Status:               storage.EventStatusActive,
	}
	require.NoError(t, e.events.Create(context.Background(), event))
	return event
}

func (e *testEnv) seedProgram(t *testing.T, eventID, seqNo int) *storage.Program {
	t.Helper()
	program := &storage.Program{
		EventID:   eventID,
		SeqNo:     seqNo,
		Title:     "Program",
		Performer: "Performer",
	}
	require.NoError(t, e.programs.Create(context.Background(), program))
	return program
}

func (e *testEnv) seedEmployee(t *testing.T, empNo string) *storage.Employee {
	t.Helper()
	employee := &storage.Employee{
		EmpNo:      empNo,
		Name:       "Employee " + empNo,
		Department: "Engineering",
		Status:     storage.EmployeeStatusActive,
	}
	require.NoError(t, e.db.Create(employee).Error)
	return employee
}

func (e *testEnv) openWindow(t *testing.T, programID int) *storage.Program {
	t.Helper()
	program, err := e.programs.OpenVoteWindow(context.Background(), programID, 5*time.Minute)
	require.NoError(t, err)
	return program
}

// login performs a real login request and returns the bearer token.
func (e *testEnv) login(t *testing.T, eventCode, empNo string) string {
	t.Helper()
	res := ctesting.PerformRequest(e.router, "POST", "/api/auth/login", gin.H{
		"eventCode": eventCode,
		"empNo":     empNo,
	}, nil)
	require.Equal(t, 200, res.Code, res.Body.String())

	body := parseEnvelope(t, res)
	data := body["data"].(map[string]interface{})
	token := data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func authHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func adminHeader() map[string]string {
	return map[string]string{"x-admin-token": testAdminToken}
}

func parseEnvelope(t *testing.T, res *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	return body
}

func fullScores() gin.H {
	return gin.H{
		"stagePresence": 5,
		"performance":   4,
		"popularity":    3,
		"teamwork":      4,
		"creativity":    5,
	}
}
