package app

import (
	"context"
	"net/http"
	"time"

	"maisafe-go/internal/cleanup"
	"maisafe-go/internal/config"
	"maisafe-go/internal/db"
	frienddomain "maisafe-go/internal/domain/friend"
	meddomain "maisafe-go/internal/domain/medication"
	syncdomain "maisafe-go/internal/domain/sync"
	userdomain "maisafe-go/internal/domain/user"
	cleanuprepo "maisafe-go/internal/repository/postgres/cleanup"
	friendrepo "maisafe-go/internal/repository/postgres/friend"
	medrepo "maisafe-go/internal/repository/postgres/medication"
	syncrepo "maisafe-go/internal/repository/postgres/sync"
	userrepo "maisafe-go/internal/repository/postgres/user"
	"maisafe-go/internal/transport/httpserver"
	"maisafe-go/internal/transport/httpserver/handler"
	authmw "maisafe-go/internal/transport/httpserver/middleware"
	"maisafe-go/pkg/logger"

	"gorm.io/gorm"
)

type App struct {
	cfg        config.Config
	log        logger.Logger
	httpServer *http.Server
	db         *gorm.DB
	sweeper    *cleanup.Sweeper
}

func New(ctx context.Context, log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	log.Info("app: applying migrations")
	if err := db.Migrate(ctx, dbConn); err != nil {
		return nil, err
	}

	users := userdomain.NewService(userrepo.NewPostgres(dbConn), cfg.BcryptCost)
	friends := frienddomain.NewService(friendrepo.NewPostgres(dbConn), users, cfg.Invitations.CodeTTL)
	medications := meddomain.NewService(medrepo.NewPostgres(dbConn), friends)
	syncService := syncdomain.NewService(syncrepo.NewPostgres(dbConn))

	handlers := handler.New(log, users, friends, medications, syncService)
	auth := authmw.NewBasicAuth(users)
	router := httpserver.NewRouter(cfg, handlers, auth)

	retention := time.Duration(cfg.Cleanup.RetentionDays) * 24 * time.Hour
	sweeper := cleanup.NewSweeper(
		cleanuprepo.NewPostgres(dbConn),
		log,
		cfg.Cleanup.Interval,
		cfg.Cleanup.InitialDelay,
		retention,
	)

	return &App{
		cfg:        cfg,
		log:        log,
		httpServer: httpserver.New(cfg, router),
		db:         dbConn,
		sweeper:    sweeper,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

// RunSweeper blocks until ctx is cancelled.
func (a *App) RunSweeper(ctx context.Context) {
	a.sweeper.Run(ctx)
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
