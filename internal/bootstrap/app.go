package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/locvowork/attrition_datahub/internal/config"
	"github.com/locvowork/attrition_datahub/internal/database"
	"github.com/locvowork/attrition_datahub/internal/domain"
	"github.com/locvowork/attrition_datahub/internal/handler"
	"github.com/locvowork/attrition_datahub/internal/logger"
	"github.com/locvowork/attrition_datahub/internal/repository"
	"github.com/locvowork/attrition_datahub/internal/service"
	"github.com/locvowork/attrition_datahub/internal/service/serviceutils"
)

const shutdownTimeout = 10 * time.Second

// App is the HTTP server. A store that cannot be reached at startup is left
// nil and its routes are not mounted.
type App struct {
	Echo   *echo.Echo
	SQL    *database.SQLClient
	Mongo  *database.MongoClient
	Search *database.ElasticSearchClient
}

func NewApp() *App {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.RequestValidator{}
	return &App{Echo: e}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := LoadEnvironment(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	sqlClient, err := database.OpenSQL(ctx, SQLConfig())
	if err != nil {
		logger.WarnLog(ctx, "SQL store unavailable, /sql routes disabled: %v", err)
	} else {
		if err := sqlClient.EnsureSchema(ctx); err != nil {
			sqlClient.Close()
			return fmt.Errorf("failed to ensure SQL schema: %w", err)
		}
		a.SQL = sqlClient
	}

	mongoClient, err := database.OpenMongo(ctx, MongoConfig())
	if err != nil {
		logger.WarnLog(ctx, "MongoDB unavailable, /mongo routes disabled: %v", err)
	} else {
		if err := mongoClient.EnsureIndexes(ctx); err != nil {
			logger.WarnLog(ctx, "Failed to ensure MongoDB indexes: %v", err)
		}
		a.Mongo = mongoClient
	}

	if a.SQL == nil && a.Mongo == nil {
		return fmt.Errorf("%w: no store reachable", domain.ErrConnectivity)
	}

	search, err := SearchClient()
	if err != nil {
		logger.WarnLog(ctx, "Search index unavailable: %v", err)
	}
	a.Search = search

	a.RegisterMiddlewares()
	a.RegisterRoutes()
	return nil
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

func (a *App) RegisterRoutes() {
	var (
		sqlStats domain.SQLStatsRepository
		docStats domain.DocumentStatsRepository
		searchSv *service.SearchService
	)

	if a.SQL != nil {
		sqlHandler := handler.NewSQLHandler(
			service.NewEmployeeService(repository.NewEmployeeRepository(a.SQL)),
			service.NewDepartmentService(repository.NewDepartmentRepository(a.SQL)),
			service.NewJobDetailService(repository.NewJobDetailRepository(a.SQL)),
		)
		sqlHandler.Register(a.Echo.Group("/sql"))
		sqlStats = repository.NewSQLStatsRepository(a.SQL, "")
	}

	if a.Mongo != nil {
		db := a.Mongo.Database()
		mongoHandler := handler.NewMongoHandler(
			service.NewEmployeeDocumentService(repository.NewEmployeeDocumentRepository(db)),
			service.NewDepartmentSnapshotService(repository.NewDepartmentSnapshotRepository(db)),
			service.NewPredictionService(repository.NewPredictionRepository(db)),
		)
		mongoHandler.Register(a.Echo.Group("/mongo"))
		docStats = repository.NewDocumentStatsRepository(db)
	}

	if a.Search != nil {
		searchSv = service.NewSearchService(a.Search)
	}
	handler.NewReportHandler(service.NewReportService(sqlStats, docStats), searchSv).Register(a.Echo)

	a.Echo.GET("/health", a.health)
}

func (a *App) health(c echo.Context) error {
	return serviceutils.ResponseSuccess(c, http.StatusOK, "ok", map[string]bool{
		"sql":    a.SQL != nil,
		"mongo":  a.Mongo != nil,
		"search": a.Search != nil,
	})
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// the server down gracefully and releases the stores.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer a.Close(context.WithoutCancel(ctx))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.InfoLog(ctx, "HTTP server listening on :%s", config.DefaultEnvConfig.APP_PORT)
		if err := a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		logger.InfoLog(ctx, "Shutting down HTTP server")
		return a.Echo.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *App) Close(ctx context.Context) {
	if a.SQL != nil {
		if err := a.SQL.Close(); err != nil {
			logger.ErrorLog(ctx, "Failed to close SQL store: %v", err)
		}
	}
	if a.Mongo != nil {
		if err := a.Mongo.Close(ctx); err != nil {
			logger.ErrorLog(ctx, "Failed to close MongoDB client: %v", err)
		}
	}
}
