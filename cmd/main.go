package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/facesave/gobackend/internal/config"
	"github.com/facesave/gobackend/internal/face"
	"github.com/facesave/gobackend/internal/handlers"
	"github.com/facesave/gobackend/internal/logging"
	"github.com/facesave/gobackend/internal/services"
	"github.com/facesave/gobackend/internal/store"
)

func main() {
	// Load .env
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Error loading .env: %s", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Connect to MongoDB
	client, err := store.Dial(context.Background(), cfg.MongoURI)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			logger.Error("error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	logger.Info("connected to MongoDB")

	db := client.Database("facesavedb")
	if err := store.EnsureIndexes(context.Background(), db); err != nil {
		logger.Fatal("failed to create indexes", zap.Error(err))
	}

	users := store.NewMongoUserStore(db)
	payments := store.NewMongoPaymentStore(db)
	transactions := store.NewMongoTransactionStore(db)

	var detector face.Detector
	if cfg.FaceAPIURL != "" {
		detector = face.New(cfg.FaceAPIURL)
	} else {
		logger.Warn("FACE_API_URL not set, face login disabled")
	}

	auth := handlers.NewAuth(cfg.JWTSecret)

	gatewayService := services.NewGatewayService(services.GatewayConfig{
		MerchantID:  cfg.MerchantID,
		MerchantKey: cfg.MerchantKey,
		Passphrase:  cfg.GatewayPassphrase,
		GatewayURL:  cfg.GatewayURL,
		AppBaseURL:  cfg.AppBaseURL,
	}, payments, logger)
	ledgerService := services.NewLedgerService(users, payments, transactions, cfg.GatewayPassphrase, logger)
	userService := services.NewUserService(users, payments, transactions, detector, logger)

	paymentHandler := handlers.NewPaymentHandler(gatewayService, ledgerService, auth)
	userHandler := handlers.NewUserHandler(userService, auth)

	// Set up router
	router := mux.NewRouter()
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET", "HEAD")

	router.HandleFunc("/api/user", userHandler.Register).Methods("POST")
	router.HandleFunc("/api/login/face", userHandler.LoginFace).Methods("POST")
	router.HandleFunc("/api/login/pin", userHandler.LoginPin).Methods("POST")
	router.HandleFunc("/api/user/{userID}/balance", userHandler.GetBalance).Methods("GET")
	router.HandleFunc("/api/user/{userID}/transactions", userHandler.GetTransactions).Methods("GET")
	router.HandleFunc("/api/user/{userID}/payments", userHandler.GetPayments).Methods("GET")

	router.HandleFunc("/api/deposit", paymentHandler.CreateDeposit).Methods("POST")
	router.HandleFunc("/api/payment/notify", paymentHandler.Notify).Methods("POST")

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server running", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
}
