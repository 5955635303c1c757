package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelReservationHandler "github.com/m04kA/SMC-ExamBookingService/internal/api/handlers/cancel_reservation"
	createReservationHandler "github.com/m04kA/SMC-ExamBookingService/internal/api/handlers/create_reservation"
	enrollHandler "github.com/m04kA/SMC-ExamBookingService/internal/api/handlers/enroll"
	getCollaborativeExamHandler "github.com/m04kA/SMC-ExamBookingService/internal/api/handlers/get_collaborative_exam"
	getFreeSlotsHandler "github.com/m04kA/SMC-ExamBookingService/internal/api/handlers/get_free_slots"
	getReservationHandler "github.com/m04kA/SMC-ExamBookingService/internal/api/handlers/get_reservation"
	getRoomReservationsHandler "github.com/m04kA/SMC-ExamBookingService/internal/api/handlers/get_room_reservations"
	getUserEnrolmentsHandler "github.com/m04kA/SMC-ExamBookingService/internal/api/handlers/get_user_enrolments"
	preEnrollHandler "github.com/m04kA/SMC-ExamBookingService/internal/api/handlers/pre_enroll"
	removeEnrolmentHandler "github.com/m04kA/SMC-ExamBookingService/internal/api/handlers/remove_enrolment"
	updateCollaborativeExamHandler "github.com/m04kA/SMC-ExamBookingService/internal/api/handlers/update_collaborative_exam"
	"github.com/m04kA/SMC-ExamBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-ExamBookingService/internal/config"
	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
	collaborativeRepo "github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/collaborative"
	enrolmentRepo "github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/enrolment"
	examRepo "github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/exam"
	participationRepo "github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/participation"
	reservationRepo "github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/reservation"
	roomRepo "github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/room"
	userRepo "github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/user"
	mailerClient "github.com/m04kA/SMC-ExamBookingService/internal/integrations/mailer"
	xmClient "github.com/m04kA/SMC-ExamBookingService/internal/integrations/xm"
	collaborativeService "github.com/m04kA/SMC-ExamBookingService/internal/service/collaborative"
	"github.com/m04kA/SMC-ExamBookingService/internal/service/examprovider"
	"github.com/m04kA/SMC-ExamBookingService/internal/service/machines"
	"github.com/m04kA/SMC-ExamBookingService/internal/service/notifications"
	reservationsService "github.com/m04kA/SMC-ExamBookingService/internal/service/reservations"
	cancelReservationUC "github.com/m04kA/SMC-ExamBookingService/internal/usecase/cancel_reservation"
	createReservationUC "github.com/m04kA/SMC-ExamBookingService/internal/usecase/create_reservation"
	enrollUC "github.com/m04kA/SMC-ExamBookingService/internal/usecase/enroll"
	getFreeSlotsUC "github.com/m04kA/SMC-ExamBookingService/internal/usecase/get_free_slots"
	"github.com/m04kA/SMC-ExamBookingService/internal/worker/noshow"
	"github.com/m04kA/SMC-ExamBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ExamBookingService/pkg/logger"
	"github.com/m04kA/SMC-ExamBookingService/pkg/metrics"
	"github.com/m04kA/SMC-ExamBookingService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-ExamBookingService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены). nil-коллектор безопасен для всех потребителей.
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)

	// Инициализируем репозитории
	reservationRepository := reservationRepo.NewRepository(wrappedDB)
	enrolmentRepository := enrolmentRepo.NewRepository(wrappedDB)
	examRepository := examRepo.NewRepository(wrappedDB)
	collaborativeRepository := collaborativeRepo.NewRepository(wrappedDB)
	participationRepository := participationRepo.NewRepository(wrappedDB)
	roomRepository := roomRepo.NewRepository(wrappedDB)
	userRepository := userRepo.NewRepository(wrappedDB)

	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Инициализируем интеграционных клиентов
	mailer := mailerClient.NewClient(
		cfg.Mailer.URL,
		time.Duration(cfg.Mailer.Timeout)*time.Second,
		log,
	)
	dispatcher := notifications.NewDispatcher(mailer, cfg.Mailer.NotifyDelay(), log)
	log.Info("Mailer client initialized (url=%s timeout=%ds delay=%ds)",
		cfg.Mailer.URL, cfg.Mailer.Timeout, cfg.Mailer.DelaySeconds)

	// Совместные экзамены. Когда интеграция выключена, удаленный источник и отмена у пира остаются nil.
	var (
		collabSvc    *collaborativeService.Service
		remoteExams  examprovider.Source
		createCancel createReservationUC.ExternalCanceller
		cancelCancel cancelReservationUC.ExternalCanceller
		enrollCancel enrollUC.ExternalCanceller
	)
	if cfg.Collaboration.Enabled {
		peer := xmClient.NewClient(
			cfg.Collaboration.URL,
			time.Duration(cfg.Collaboration.Timeout)*time.Second,
			log,
		)
		collabSvc = collaborativeService.NewService(collaborativeRepository, peer, metricsCollector, log)
		remoteExams = examprovider.NewRemote(collabSvc, collaborativeRepository)
		createCancel = collabSvc
		cancelCancel = collabSvc
		enrollCancel = collabSvc
		log.Info("Collaboration enabled (url=%s timeout=%ds)", cfg.Collaboration.URL, cfg.Collaboration.Timeout)
	} else {
		log.Info("Collaboration disabled")
	}

	localExams := examprovider.NewLocal(examRepository)
	exams := examprovider.NewProvider(localExams, remoteExams)

	// Инициализируем сервисы
	reservationSvc := reservationsService.NewService(
		reservationRepository,
		enrolmentRepository,
		roomRepository,
		log,
	)

	// Инициализируем use cases
	createReservationUseCase := createReservationUC.NewUseCase(
		exams,
		roomRepository,
		userRepository,
		enrolmentRepository,
		reservationRepository,
		machines.NewSelector(),
		dispatcher,
		createCancel,
		metricsCollector,
		txMgr,
		log,
	)

	cancelReservationUseCase := cancelReservationUC.NewUseCase(
		reservationRepository,
		enrolmentRepository,
		userRepository,
		localExams,
		cancelCancel,
		dispatcher,
		metricsCollector,
		txMgr,
		log,
	)

	enrollUseCase := enrollUC.NewUseCase(
		exams,
		userRepository,
		enrolmentRepository,
		reservationRepository,
		participationRepository,
		enrollCancel,
		metricsCollector,
		txMgr,
		log,
	)

	getFreeSlotsUseCase := getFreeSlotsUC.NewUseCase(roomRepository, log)

	// Инициализируем handlers
	createReservation := createReservationHandler.NewHandler(createReservationUseCase, log)
	cancelReservation := cancelReservationHandler.NewHandler(cancelReservationUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationSvc, log)
	getRoomReservations := getRoomReservationsHandler.NewHandler(reservationSvc, log)
	getUserEnrolments := getUserEnrolmentsHandler.NewHandler(reservationSvc, log)
	enroll := enrollHandler.NewHandler(enrollUseCase, false, log)
	enrollCollaborative := enrollHandler.NewHandler(enrollUseCase, true, log)
	preEnroll := preEnrollHandler.NewHandler(enrollUseCase, log)
	removeEnrolment := removeEnrolmentHandler.NewHandler(enrollUseCase, log)
	getFreeSlots := getFreeSlotsHandler.NewHandler(getFreeSlotsUseCase, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID(log))

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")

		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Свободные интервалы аудитории на дату
	api.HandleFunc("/rooms/{roomId}/free-slots", getFreeSlots.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют Bearer токен)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth([]byte(cfg.Auth.JWTSecret)))

	teacherOnly := middleware.RequireRole(domain.RoleTeacher)

	// --- Бронирования ---
	protected.HandleFunc("/reservations", createReservation.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/reservations/{reservationId}", getReservation.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/{reservationId}", cancelReservation.Handle).Methods(http.MethodDelete)

	// --- Записи на экзамен ---
	protected.HandleFunc("/enrolments", getUserEnrolments.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/enrolments/{examId}", enroll.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/enrolments/{enrolmentId}", removeEnrolment.Handle).Methods(http.MethodDelete)
	protected.Handle("/enrolments/{examId}/pre",
		teacherOnly(http.HandlerFunc(preEnroll.Handle))).Methods(http.MethodPost)

	// --- Аудитории (для преподавателей) ---
	protected.Handle("/rooms/{roomId}/reservations",
		teacherOnly(http.HandlerFunc(getRoomReservations.Handle))).Methods(http.MethodGet)

	// --- Совместные экзамены ---
	if collabSvc != nil {
		getCollaborativeExam := getCollaborativeExamHandler.NewHandler(collabSvc, log)
		updateCollaborativeExam := updateCollaborativeExamHandler.NewHandler(collabSvc, log)

		protected.HandleFunc("/collaborative/enrolments/{examId}", enrollCollaborative.Handle).Methods(http.MethodPost)
		protected.Handle("/collaborative/exams/{examId}",
			teacherOnly(http.HandlerFunc(getCollaborativeExam.Handle))).Methods(http.MethodGet)
		protected.Handle("/collaborative/exams/{examId}",
			teacherOnly(http.HandlerFunc(updateCollaborativeExam.Handle))).Methods(http.MethodPut)
	}

	// Фоновая отметка неявок
	var scheduler *noshow.Scheduler
	if cfg.NoShow.Enabled {
		sweeper := noshow.NewSweeper(
			enrolmentRepository,
			reservationRepository,
			examRepository,
			userRepository,
			dispatcher,
			metricsCollector,
			cfg.NoShow.BatchSize,
			log,
		)
		scheduler, err = noshow.NewScheduler(
			sweeper,
			cfg.NoShow.Schedule,
			time.Duration(cfg.NoShow.TimeoutSeconds)*time.Second,
			log,
		)
		if err != nil {
			log.Fatal("Failed to create no-show scheduler: %v", err)
		}
		scheduler.Start()
		log.Info("No-show sweeper scheduled (%s, batch=%d)", cfg.NoShow.Schedule, cfg.NoShow.BatchSize)
	}

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
		log.Info("No-show scheduler stopped")
	}

	// Дожидаемся отложенных уведомлений
	dispatcher.Wait()

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
