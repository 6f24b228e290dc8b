package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ahmar7/betabase-sub002/internal/infra/database"
	"github.com/ahmar7/betabase-sub002/internal/infra/http/handlers"
	"github.com/ahmar7/betabase-sub002/internal/infra/http/middleware"
	"github.com/ahmar7/betabase-sub002/internal/infra/mail"
	"github.com/ahmar7/betabase-sub002/internal/infra/progress"
	"github.com/ahmar7/betabase-sub002/internal/infra/queue"
	"github.com/ahmar7/betabase-sub002/internal/infra/worker"
	"github.com/ahmar7/betabase-sub002/internal/usecase"
)

func main() {
	godotenv.Load()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Repositories
	leadRepo := database.NewLeadRepository(db)
	userRepo := database.NewUserRepository(db)
	pendingRepo := database.NewPendingEmailRepository(db)
	failedRepo := database.NewFailedEmailRepository(db)

	// 2. Provider gateway: API providers first, SMTP as the last rung
	smtpPort, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	from := os.Getenv("MAIL_FROM")
	fromName := os.Getenv("MAIL_FROM_NAME")

	providers := []mail.Provider{
		mail.NewSendGridProvider(os.Getenv("SENDGRID_API_KEY"), from, fromName),
		mail.NewMailjetProvider(os.Getenv("MAILJET_API_KEY"), os.Getenv("MAILJET_API_SECRET"), from, fromName),
		mail.NewBrevoProvider(os.Getenv("BREVO_API_KEY"), from, fromName),
		mail.NewSMTPProvider(os.Getenv("SMTP_HOST"), smtpPort, os.Getenv("SMTP_USER"), os.Getenv("SMTP_PASS"), from, fromName),
	}
	gateway := mail.NewGateway(providers...)

	var configured []string
	for _, p := range providers {
		if p.Configured() {
			configured = append(configured, p.Name())
		}
	}
	log.Printf("configured mail providers: %v", configured)

	batchSender := mail.NewBatchSender(gateway, failedRepo)

	// 3. Progress reporter (10 min TTL snapshots)
	reporter := progress.NewReporter(progress.DefaultTTL)

	// 4. RabbitMQ is optional: without it the async entry point is off and
	// notifications are no-ops, everything else still works
	var notifier usecase.Notifier = usecase.NoopNotifier{}
	var producer queue.ActivationProducerInterface
	var rabbitMQ *queue.RabbitMQ

	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		rabbitMQ, err = queue.NewRabbitMQ(url)
		if err != nil {
			log.Fatalf("rabbitmq setup failed: %v", err)
		}
		defer rabbitMQ.Conn.Close()
		defer rabbitMQ.Ch.Close()

		producer = queue.NewProducer(rabbitMQ.Ch)
		notifier = queue.NewEventNotifier(rabbitMQ.Ch)
	} else {
		log.Println("RABBITMQ_URL not set, activation queue disabled")
	}

	loginURL := os.Getenv("LOGIN_URL")
	if loginURL == "" {
		loginURL = "https://app.betabase.io/login"
	}

	// 5. Use cases
	activateUC := usecase.NewActivateLeadsUseCase(
		leadRepo, userRepo, pendingRepo, batchSender, reporter, notifier, loginURL,
	)
	resendUC := usecase.NewResendFailedEmailsUseCase(failedRepo, gateway, mail.DefaultBatchDelay)
	statusUC := usecase.NewEmailQueueStatusUseCase(pendingRepo, failedRepo, notifier)

	// 6. Background workers
	drain := worker.NewEmailQueueWorker(pendingRepo, failedRepo, gateway, loginURL)
	go drain.Start(ctx)

	purge := worker.NewFailedEmailPurgeWorker(failedRepo)
	go purge.Start(ctx)

	if rabbitMQ != nil {
		activationWorker := queue.NewWorker(rabbitMQ.Ch, activateUC)
		go func() {
			if err := activationWorker.Start(ctx, queue.QueueName); err != nil && err != context.Canceled {
				log.Printf("activation worker stopped: %v", err)
			}
		}()
	}

	// 7. Handlers
	activationHandler := handlers.NewActivationHandler(activateUC, producer, reporter)
	queueHandler := handlers.NewEmailQueueHandler(statusUC)
	failedHandler := handlers.NewFailedEmailHandler(failedRepo, resendUC)

	var rabbitConn *amqp.Connection
	if rabbitMQ != nil {
		rabbitConn = rabbitMQ.Conn
	}
	healthHandler := handlers.NewHealthHandler(db, rabbitConn, configured)

	// 8. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	r.Post("/activation/activate", activationHandler.HandleActivate)
	r.Post("/activation/activate-async", activationHandler.HandleActivateAsync)
	r.Post("/activation/enqueue", activationHandler.HandleEnqueue)
	r.Get("/activation/progress/{sessionId}", activationHandler.HandleProgress)

	r.Get("/emails/queue", queueHandler.HandleStatus)
	r.Delete("/emails/queue", queueHandler.HandleClear)
	r.Get("/emails/failed", failedHandler.HandleList)
	r.Post("/emails/failed/resend", failedHandler.HandleResend)
	r.Post("/emails/failed/delete", failedHandler.HandleDelete)

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("server listening on :%s", port)
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // SSE streams stay open
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
