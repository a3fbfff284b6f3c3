package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/quincevale/cidery-api/docs"
	v1 "github.com/quincevale/cidery-api/internal/api/handler/v1"
	"github.com/quincevale/cidery-api/internal/api/middleware"
	"github.com/quincevale/cidery-api/internal/config"
	"github.com/quincevale/cidery-api/internal/repository"
	"github.com/quincevale/cidery-api/internal/repository/dao"
	"github.com/quincevale/cidery-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	authHandler := s.initAuthHandler(db)
	userHandler := s.initUserHandler(db)
	vesselHandler := s.initVesselHandler(db)
	batchHandler := s.initBatchHandler(db)
	ledgerHandler := s.initLedgerHandler(db)
	blendHandler := s.initBlendHandler(db)
	auditHandler := s.initAuditHandler(db)
	reconciliationHandler := s.initReconciliationHandler(db)
	s.MountHandlers(authHandler, userHandler, vesselHandler, batchHandler, ledgerHandler, blendHandler, auditHandler, reconciliationHandler)

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initUserHandler(db *gorm.DB) *v1.UserHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewUserService(repo)
	handler := v1.NewUserHandler(svc)

	return handler
}

func (s *Server) initVesselHandler(db *gorm.DB) *v1.VesselHandler {
	vesselDAO := dao.NewVesselDAO(db)
	repo := repository.NewVesselRepository(vesselDAO)
	svc := service.NewVesselService(repo)
	ledgerSvc := service.NewLedgerService(repository.NewLedgerRepository(dao.NewLedgerDAO(db)))
	handler := v1.NewVesselHandler(svc, ledgerSvc)

	return handler
}

func (s *Server) initBatchHandler(db *gorm.DB) *v1.BatchHandler {
	batchDAO := dao.NewBatchDAO(db)
	repo := repository.NewBatchRepository(batchDAO)
	svc := service.NewBatchService(repo)
	ledgerSvc := service.NewLedgerService(repository.NewLedgerRepository(dao.NewLedgerDAO(db)))
	handler := v1.NewBatchHandler(svc, ledgerSvc)

	return handler
}

func (s *Server) initLedgerHandler(db *gorm.DB) *v1.LedgerHandler {
	ledgerDAO := dao.NewLedgerDAO(db)
	repo := repository.NewLedgerRepository(ledgerDAO)
	svc := service.NewLedgerService(repo)
	handler := v1.NewLedgerHandler(svc)

	return handler
}

func (s *Server) initBlendHandler(db *gorm.DB) *v1.BlendHandler {
	ledgerDAO := dao.NewLedgerDAO(db)
	repo := repository.NewLedgerRepository(ledgerDAO)
	svc := service.NewBlendService(repo)
	handler := v1.NewBlendHandler(svc)

	return handler
}

func (s *Server) initAuditHandler(db *gorm.DB) *v1.AuditHandler {
	auditDAO := dao.NewAuditDAO(db)
	repo := repository.NewAuditRepository(auditDAO)
	svc := service.NewAuditService(repo)
	handler := v1.NewAuditHandler(svc)

	return handler
}

func (s *Server) initReconciliationHandler(db *gorm.DB) *v1.ReconciliationHandler {
	reconciliationDAO := dao.NewReconciliationDAO(db)
	repo := repository.NewReconciliationRepository(reconciliationDAO)
	// The closure re-reads config on every call so a viper hot reload of the
	// tolerance takes effect without a restart.
	svc := service.NewReconciliationService(repo, func() string {
		return s.Config.Reconciliation.TolerancePct
	})
	handler := v1.NewReconciliationHandler(svc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	vesselHandler *v1.VesselHandler,
	batchHandler *v1.BatchHandler,
	ledgerHandler *v1.LedgerHandler,
	blendHandler *v1.BlendHandler,
	auditHandler *v1.AuditHandler,
	reconciliationHandler *v1.ReconciliationHandler,
) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	verifyJWT := middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT()

	users := s.Router.Group(basePath, verifyJWT)
	{
		users.GET("/users/:userID", userHandler.HandleGetUser)
	}

	vessels := s.Router.Group(basePath, verifyJWT)
	{
		vessels.GET("/vessels", vesselHandler.HandleListVessels)
		vessels.GET("/vessels/:vesselID", vesselHandler.HandleGetVessel)
		vessels.POST("/vessels", middleware.RequireRole("admin"), vesselHandler.HandleCreateVessel)
		vessels.PUT("/vessels/:vesselID/status", middleware.RequireRole("admin"), vesselHandler.HandleUpdateVesselStatus)
	}

	batches := s.Router.Group(basePath, verifyJWT)
	{
		batches.GET("/batches", batchHandler.HandleListBatches)
		batches.GET("/batches/:batchID", batchHandler.HandleGetBatch)
		batches.GET("/batches/:batchID/volume", batchHandler.HandleGetBatchVolume)
		batches.GET("/batches/:batchID/entries", ledgerHandler.HandleHistory)
		batches.POST("/batches", batchHandler.HandleCreateBatch)
		batches.POST("/batches/:batchID/distillery-send", ledgerHandler.HandleDistillerySend)
		batches.POST("/batches/:batchID/packaging-runs", ledgerHandler.HandlePackage)
		batches.POST("/purchase-lots", batchHandler.HandleCreatePurchaseLot)
		batches.GET("/purchase-lots/:lotID", batchHandler.HandleGetPurchaseLot)
	}

	ledger := s.Router.Group(basePath, verifyJWT)
	{
		ledger.POST("/ledger/assign", ledgerHandler.HandleAssign)
		ledger.POST("/ledger/fill", ledgerHandler.HandleFill)
		ledger.POST("/ledger/transfer", ledgerHandler.HandleTransfer)
		ledger.POST("/ledger/adjust", ledgerHandler.HandleAdjust)
		ledger.POST("/distillery-receipts", ledgerHandler.HandleDistilleryReceive)
		ledger.POST("/blends", blendHandler.HandleBlend)
		ledger.POST("/blends/preview", blendHandler.HandleBlendPreview)
	}

	audit := s.Router.Group(basePath, verifyJWT)
	{
		audit.GET("/audit", auditHandler.HandleQueryAudit)
		audit.GET("/units/convert", v1.NewUnitHandler().HandleConvert)
	}

	reconciliations := s.Router.Group(basePath, verifyJWT, middleware.RequireRole("admin"))
	{
		reconciliations.POST("/reconciliations", reconciliationHandler.HandleReconcile)
		reconciliations.GET("/reconciliations", reconciliationHandler.HandleListSnapshots)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Cidery production API"
	docs.SwaggerInfo.Description = "Production ledger, blending and reconciliation for a cidery."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
