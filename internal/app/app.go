package app

import (
	"net/http"

	"tooma/internal/config"
	"tooma/internal/domain/buyers"
	"tooma/internal/domain/files"
	"tooma/internal/domain/payment"
	"tooma/internal/middleware"
	jwtsvc "tooma/internal/pkg/jwt"
	"tooma/internal/pkg/logging"
	"tooma/internal/pkg/notify"
	"tooma/internal/pkg/storage"
	"tooma/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the externally constructed clients the API runs on.
type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Store   storage.ObjectStore
	Gateway payment.Gateway
	Sender  notify.Sender
	JWT     *jwtsvc.Service
	Log     logging.Logger
}

type App struct {
	Router   *gin.Engine
	Files    *files.Service
	Buyers   *buyers.Service
	// Notifier sends in the background; Wait on it before exiting.
	Notifier *notify.Notifier
}

// New wires repositories, services and handlers onto a gin engine.
func New(d Deps) *App {
	cfg := d.Config

	fileRepo := repository.NewFileUploadRepository(d.DB)
	buyerRepo := repository.NewBuyerInfoRepository(d.DB)
	notifier := notify.NewNotifier(d.Sender, d.Log)

	filesService := files.NewService(fileRepo, d.Store, storage.NewLinkIssuer(d.Store), d.Gateway, d.Log, files.Settings{
		APIBaseURL:      cfg.APIBaseURL(),
		FrontendURL:     cfg.FrontendURL,
		UploadPrefix:    cfg.S3.UploadPrefix,
		MaxUploadSize:   cfg.MaxUploadSize,
		LinkTTL:         cfg.LinkTTL,
		FallbackLinkTTL: cfg.FallbackLinkTTL,
	})
	buyersService := buyers.NewService(buyerRepo, fileRepo, d.Gateway, notifier, d.Log, buyers.Settings{
		APIBaseURL:  cfg.APIBaseURL(),
		FrontendURL: cfg.FrontendURL,
		Currency:    cfg.Paystack.Currency,
	})

	filesHandler := files.NewHandler(filesService)
	buyersHandler := buyers.NewHandler(buyersService)

	r := gin.New()
	r.Use(middleware.ErrorLogger(d.Log))
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.MaxMultipartMemory = 32 << 20

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group(config.APIPrefix)
	{
		filesHandler.RegisterPublicRoutes(v1)
		buyersHandler.RegisterPublicRoutes(v1)
	}

	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(d.JWT))
	{
		filesHandler.RegisterRoutes(protected)
		buyersHandler.RegisterRoutes(protected)
	}

	return &App{Router: r, Files: filesService, Buyers: buyersService, Notifier: notifier}
}
