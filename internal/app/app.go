package app

import (
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/okosten/hallbook/config"
	"github.com/okosten/hallbook/internal/cache"
	"github.com/okosten/hallbook/internal/mailer"
	"github.com/okosten/hallbook/internal/model"
	"github.com/okosten/hallbook/internal/mq"
	"github.com/okosten/hallbook/internal/repository"
	"github.com/okosten/hallbook/internal/service/domain"
	"github.com/okosten/hallbook/internal/service/workflow"
	"github.com/okosten/hallbook/internal/storage"
)

type App struct {
	Config *config.Config

	DB     *gorm.DB
	Cache  *cache.RedisCache
	Logger *zap.Logger
	MQConn *amqp.Connection

	SeatRowRepo repository.SeatRowRepo
	SeatRepo    repository.SeatRepo
	UserRepo    repository.UserRepo
	BookingRepo repository.BookingRepo
	SettingRepo repository.SettingRepo

	InventoryService domain.InventoryService
	BookingService   domain.BookingService
	SeatRowService   domain.SeatRowService
	SettingsService  domain.SettingsService

	PaymentWorkflow      *workflow.PaymentWorkflow
	NotificationWorkflow *workflow.NotificationWorkflow
}

func New(cfg *config.Config, db *gorm.DB, redisCache *cache.RedisCache, mqConn *amqp.Connection, logger *zap.Logger) (*App, error) {
	seatRowRepo := repository.NewSeatRowRepoGorm(db)
	seatRepo := repository.NewSeatRepoGorm(db)
	userRepo := repository.NewUserRepoGorm(db)
	bookingRepo := repository.NewBookingRepoGorm(db)
	settingRepo := repository.NewSettingRepoGorm(db)

	blobStore, err := storage.NewLocalStore(cfg.BlobDir, cfg.BlobBaseURL)
	if err != nil {
		return nil, err
	}
	uploader := storage.NewReceiptUploader(blobStore, logger)
	sender := mailer.NewSMTPSender(cfg.SMTPAddr, cfg.SMTPHost, cfg.SMTPFrom, cfg.SMTPPassword)

	inventoryService := domain.NewInventoryService(db, redisCache, seatRowRepo, seatRepo)
	settingsService := domain.NewSettingsService(redisCache, settingRepo)
	bookingService := domain.NewBookingService(db, redisCache, logger,
		bookingRepo, userRepo, seatRowRepo, seatRepo, uploader, cfg.MaxBookingsPerEmail)
	seatRowService := domain.NewSeatRowService(db, redisCache, seatRowRepo, seatRepo, inventoryService, settingsService)

	paymentWorkflow := workflow.NewPaymentWorkflow(bookingService, seatRowRepo, sender, mqConn, logger)
	notificationWorkflow := workflow.NewNotificationWorkflow(bookingService, seatRowRepo, sender, logger)

	return &App{
		Config:               cfg,
		DB:                   db,
		Cache:                redisCache,
		Logger:               logger,
		MQConn:               mqConn,
		SeatRowRepo:          seatRowRepo,
		SeatRepo:             seatRepo,
		UserRepo:             userRepo,
		BookingRepo:          bookingRepo,
		SettingRepo:          settingRepo,
		InventoryService:     inventoryService,
		BookingService:       bookingService,
		SeatRowService:       seatRowService,
		SettingsService:      settingsService,
		PaymentWorkflow:      paymentWorkflow,
		NotificationWorkflow: notificationWorkflow,
	}, nil
}

func (app *App) Init() error {
	if err := app.DB.AutoMigrate(
		&model.SeatRow{},
		&model.Seat{},
		&model.User{},
		&model.Booking{},
		&model.SeatAssignment{},
		&model.Setting{},
	); err != nil {
		return err
	}

	if app.MQConn != nil {
		if err := mq.InitQueues(app.MQConn); err != nil {
			return err
		}
		if err := app.NotificationWorkflow.Start(app.MQConn); err != nil {
			return err
		}
	}

	return nil
}

func (app *App) Close() error {
	sqlDB, err := app.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
