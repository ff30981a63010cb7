package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"github.com/twilio/twilio-go"
	_ "time/tzdata"

	"github.com/nyumbani/billing-service/internal/app"
	"github.com/nyumbani/billing-service/internal/config"
	"github.com/nyumbani/billing-service/internal/constants"
	"github.com/nyumbani/billing-service/internal/controllers"
	"github.com/nyumbani/billing-service/internal/middleware"
	"github.com/nyumbani/billing-service/internal/repositories"
	"github.com/nyumbani/billing-service/internal/routes"
	"github.com/nyumbani/billing-service/internal/services"
	"github.com/nyumbani/billing-service/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()
	defer cfg.Close()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize billing-service:", err)
	}
	defer application.Close()

	// Repositories
	leaseRepo := repositories.NewLeaseRepository(application.DB)
	invoiceRepo := repositories.NewInvoiceRepository(application.DB)
	paymentRepo := repositories.NewPaymentRepository(application.DB)
	waterRepo := repositories.NewWaterBillRepository(application.DB)
	userRepo := repositories.NewUserProfileRepository(application.DB)
	commRepo := repositories.NewCommunicationRepository(application.DB)

	// Outbound messaging
	twilioClient := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	notifier := services.NewMessagingService(
		twilioClient,
		cfg.SendgridAPIKey,
		commRepo,
		cfg.LDFlag_TwilioFromPhone,
		cfg.LDFlag_SendgridFromEmail,
		cfg.OrganizationName,
		cfg.LDFlag_SandboxMode,
	)

	// Services
	rentPeriodService := services.NewRentPeriodService(leaseRepo, invoiceRepo)
	statementService := services.NewStatementService(leaseRepo, invoiceRepo, paymentRepo)
	ratingService := services.NewRatingService(leaseRepo, invoiceRepo, paymentRepo, userRepo)
	paymentService := services.NewPaymentService(paymentRepo, invoiceRepo, leaseRepo, userRepo, notifier)
	waterService := services.NewWaterBillingService(waterRepo, invoiceRepo, leaseRepo)
	reminderService := services.NewRentReminderService(leaseRepo, userRepo, rentPeriodService, notifier)

	// Controllers
	healthController := controllers.NewHealthController(application)
	statementController := controllers.NewStatementController(statementService)
	ratingController := controllers.NewRatingController(ratingService)
	invoiceController := controllers.NewInvoiceController(rentPeriodService, invoiceRepo, leaseRepo)
	paymentController := controllers.NewPaymentController(paymentService)
	waterController := controllers.NewWaterController(waterService)

	// Router setup
	router := mux.NewRouter()

	// Public routes
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)

	// Secured routes for any authenticated user
	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware(cfg.RSAPublicKey))
	secured.HandleFunc(routes.MyStatement, statementController.GetMyStatementHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.CurrentInvoice, invoiceController.ResolveCurrentInvoiceHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.LeaseInvoices, invoiceController.ListLeaseInvoicesHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.LeaseStatement, statementController.GetLeaseStatementHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.SubmitPayment, paymentController.SubmitPaymentHandler).Methods(http.MethodPost)

	// Manager-only routes
	managed := secured.NewRoute().Subrouter()
	managed.Use(middleware.RequireRole(middleware.RoleManager, middleware.RoleAdmin))
	managed.HandleFunc(routes.TenantStatement, statementController.GetTenantStatementHandler).Methods(http.MethodGet)
	managed.HandleFunc(routes.TenantRatings, ratingController.ListTenantRatingsHandler).Methods(http.MethodGet)
	managed.HandleFunc(routes.VerifyPayment, paymentController.VerifyPaymentHandler).Methods(http.MethodPost)
	managed.HandleFunc(routes.RejectPayment, paymentController.RejectPaymentHandler).Methods(http.MethodPost)
	managed.HandleFunc(routes.WaterReadings, waterController.RecordReadingsHandler).Methods(http.MethodPost)
	managed.HandleFunc(routes.WaterPostBills, waterController.PostPendingBillsHandler).Methods(http.MethodPost)

	// Cron job setup
	c := cron.New(cron.WithLocation(time.UTC))

	if cfg.LDFlag_RemindersEnabled {
		_, err = c.AddFunc(constants.RentReminderCronSpec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), constants.RentReminderTimeout)
			defer cancel()
			utils.Logger.Info("Starting rent reminder cron job...")
			reminderService.RunDailyReminderSweep(ctx)
		})
		if err != nil {
			utils.Logger.WithError(err).Fatal("Failed to schedule rent reminder cron")
		}
		c.Start()
		utils.Logger.Info("Scheduled rent reminder cron job")
	} else {
		utils.Logger.Info("Rent reminders disabled by flag")
	}

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000")
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("billing-service failed to start:", err)
	}
}
