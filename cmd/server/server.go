package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/itihub/backend/internal/database"
	"github.com/itihub/backend/internal/handlers"
	"github.com/itihub/backend/internal/services"
	ws "github.com/itihub/backend/internal/websocket"
	"github.com/itihub/backend/pkg/auth"
)

type Server struct {
	Router     *gin.Engine
	DB         *database.Database
	Redis      *redis.Client
	JWTManager *auth.JWTManager
	Hub        *ws.Hub
}

func NewServer() *Server {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			logrus.Info(".env not found, using environment variables")
		}
	}

	dbConn, err := database.Connect()
	if err != nil {
		logrus.Fatalf("Postgres connect failed: %v", err)
	}

	redisOpts, err := redis.ParseURL(os.Getenv("REDIS_URL"))
	if err != nil {
		logrus.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logrus.Fatalf("Redis connect failed: %v", err)
	}

	jwtMgr := auth.NewJWTManager(
		os.Getenv("JWT_SECRET"),
		24*time.Hour,
	)

	// Шина нужна только при нескольких экземплярах gateway; контракт
	// Broadcast одинаков в обоих режимах
	var bus ws.Bus
	if os.Getenv("BROADCAST_BUS") == "redis" {
		bus = ws.NewRedisBus(rdb)
	}

	hub := ws.NewHub(bus)
	go hub.Run()

	fanout := services.NewFanoutService(dbConn, dbConn)

	authH := handlers.NewAuthHandler(dbConn, jwtMgr, rdb)
	messageH := handlers.NewMessageHandler(dbConn, hub, fanout)
	wsH := handlers.NewChatWebSocketHandler(dbConn, hub, messageH)
	historyH := handlers.NewHTTPMessageHandler(dbConn)
	notificationH := handlers.NewNotificationHandler(dbConn)
	groupH := handlers.NewGroupHandler(dbConn)
	socialH := handlers.NewSocialHandler(dbConn, fanout)
	batchH := handlers.NewBatchHandler(dbConn, fanout)

	router := gin.Default()
	APIEndpoints(router, jwtMgr, rdb, authH, wsH, historyH, notificationH, groupH, socialH, batchH)

	return &Server{
		Router:     router,
		DB:         dbConn,
		Redis:      rdb,
		JWTManager: jwtMgr,
		Hub:        hub,
	}
}

func (s *Server) Run() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logrus.Infof("Server starting on port %s", port)
	if err := s.Router.Run(":" + port); err != nil {
		logrus.Fatalf("Server run error: %v", err)
	}
}
