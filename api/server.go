package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/pwbcr2502-crypto/galass/api/controllers"
	"github.com/pwbcr2502-crypto/galass/api/transport"
	"github.com/pwbcr2502-crypto/galass/auth"
	"github.com/pwbcr2502-crypto/galass/logging"
	"github.com/pwbcr2502-crypto/galass/notify"
	"github.com/pwbcr2502-crypto/galass/storage"
)

type Server struct {
	config *Config
}

func NewServer(config *Config) *Server {
	return &Server{
		config: config,
	}
}

func (s *Server) Start() {
	r := transport.NewRouter(gin.DebugMode)

	// Create storage
	db, err := storage.Open(s.config.DSN)
	if err != nil {
		logging.Log.Errorf("failed to open database: %v", err)
		panic("failed to open database")
	}

	eventStorage := &storage.GormEventStorage{DB: db}
	programStorage := &storage.GormProgramStorage{DB: db}
	employeeStorage := &storage.GormEmployeeStorage{DB: db}
	voteStorage := &storage.GormVoteStorage{DB: db}
	statisticStorage := &storage.GormStatisticStorage{DB: db}
	awardStorage := &storage.GormAwardStorage{DB: db}
	sessionStorage := &storage.GormSessionStorage{DB: db}
	attemptStorage := &storage.GormLoginAttemptStorage{DB: db}

	issuer := auth.NewTokenIssuer(s.config.JWTSecret, s.config.TokenTTL)
	throttle := auth.NewLoginThrottle(attemptStorage)
	bus := notify.NewBroadcaster()

	//Register controllers
	authController := controllers.NewAuthController(eventStorage, employeeStorage, voteStorage, sessionStorage, issuer, throttle)
	authController.RegisterRoutes(r)
	programController := controllers.NewProgramController(programStorage, voteStorage, statisticStorage, sessionStorage, issuer)
	programController.RegisterRoutes(r)
	votingController := controllers.NewVotingController(eventStorage, programStorage, voteStorage, statisticStorage, sessionStorage, issuer, bus)
	votingController.RegisterRoutes(r)
	adminController := controllers.NewAdminController(eventStorage, programStorage, employeeStorage, voteStorage, statisticStorage, awardStorage, bus, s.config.AdminToken)
	adminController.RegisterRoutes(r)

	startLocal(r, s.config.Port)
}

// startLocal starts a normal HTTP server on the configured port
func startLocal(engine *gin.Engine, port int) {
	logging.Log.Info(fmt.Sprintf("Starting server on http://localhost:%d", port))

	if err := engine.Run(fmt.Sprintf(":%d", port)); err != nil {
		logging.Log.Fatalf("Failed to run server: %v", err)
	}
}
