package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/okosten/hallbook/config"
	"github.com/okosten/hallbook/internal/app"
	"github.com/okosten/hallbook/internal/cache"
	"github.com/okosten/hallbook/internal/handler"
	"github.com/okosten/hallbook/internal/mq"

	amqp "github.com/rabbitmq/amqp091-go"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}

	var redisCache *cache.RedisCache
	if cfg.CacheURL != "" {
		redisCache, err = cache.NewRedisCache(cfg.CacheURL)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
	}

	var mqConn *amqp.Connection
	if cfg.MQURL != "" {
		mqConn, err = mq.NewMQConn(cfg.MQURL)
		if err != nil {
			logger.Fatal("failed to connect to rabbitmq", zap.Error(err))
		}
	}

	application, err := app.New(cfg, db, redisCache, mqConn, logger)
	if err != nil {
		logger.Fatal("failed to build app", zap.Error(err))
	}
	if err := application.Init(); err != nil {
		logger.Fatal("failed to init app", zap.Error(err))
	}
	defer application.Close()

	bookingHandler := handler.NewBookingHandler(application)
	seatRowHandler := handler.NewSeatRowHandler(application)
	settingsHandler := handler.NewSettingsHandler(application)

	r := gin.Default()

	r.POST("/bookings", bookingHandler.HandleCreate)
	r.GET("/bookings", bookingHandler.HandleList)
	r.GET("/bookings/:id", bookingHandler.HandleGet)
	r.DELETE("/bookings/:id", bookingHandler.HandleDelete)
	r.PATCH("/bookings/:id/payment", bookingHandler.HandleSetPaid)
	r.PUT("/bookings/:id/receipt", bookingHandler.HandleUpdateReceipt)

	r.POST("/seat-rows", seatRowHandler.HandleCreate)
	r.GET("/seat-rows", seatRowHandler.HandleList)
	r.POST("/seat-rows/:id/seats", seatRowHandler.HandleAddSeat)
	r.GET("/seat-rows/:id/available", seatRowHandler.HandleListAvailable)

	r.GET("/settings/balcony", settingsHandler.HandleGetBalcony)
	r.PUT("/settings/balcony", settingsHandler.HandleSetBalcony)

	logger.Info("listening", zap.String("addr", cfg.Addr))
	if err := r.Run(cfg.Addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
