package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"voicecal/config"
	"voicecal/cron"
	"voicecal/handlers"
	"voicecal/middleware"
	"voicecal/routes"
	"voicecal/services/calendar"
	"voicecal/services/dialogue"
	"voicecal/services/ratelimit"
	"voicecal/services/schedule"
	"voicecal/services/tasks"
	"voicecal/services/voice"
	"voicecal/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	idleTimeout := time.Duration(config.AppConfig.SessionIdleTimeoutSec) * time.Second

	// Session and rate-counter storage.
	var sessionStore dialogue.SessionStore
	var counterStore ratelimit.CounterStore
	var redisClients []*redis.Client
	if config.AppConfig.SessionStore == "redis" {
		sessionClient := utils.GetSessionCacheClient()
		rateClient := utils.GetRateCacheClient()
		sessionStore = dialogue.NewRedisSessionStore(sessionClient, idleTimeout)
		counterStore = ratelimit.NewRedisCounterStore(rateClient)
		redisClients = append(redisClients, sessionClient, rateClient)
	} else {
		sessionStore = dialogue.NewMemorySessionStore()
		counterStore = ratelimit.NewMemoryCounterStore()
	}

	governor := ratelimit.NewGovernor(
		counterStore,
		config.AppConfig.RateLimitMax,
		time.Duration(config.AppConfig.RateLimitWindowSec)*time.Second,
		logger,
	)

	// Calendar collaborator.
	var calendarSvc calendar.CalendarService
	if config.AppConfig.CalendarBackend == "google" {
		googleCal, err := calendar.NewGoogleCalendar(
			context.Background(),
			config.AppConfig.GoogleServiceAccountFile,
			config.AppConfig.GoogleCalendarID,
		)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize google calendar: %v", err)
		}
		calendarSvc = googleCal
	} else {
		calendarSvc = calendar.NewMemoryCalendar()
	}

	// Voice collaborator.
	var voiceSvc voice.VoiceService
	if config.AppConfig.GoogleServiceAccountFile != "" {
		voiceSvc = voice.NewGoogleVoice(config.AppConfig.GoogleServiceAccountFile, logger)
	} else {
		voiceSvc = &voice.LogVoice{Logger: logger}
	}

	// Spoken reminders for committed bookings.
	var reminders dialogue.ReminderScheduler
	if config.AppConfig.RemindersEnabled {
		client := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisReminderQueueDB,
		})
		defer client.Close()
		reminders = &tasks.AsynqReminderScheduler{Client: client}
		cron.InitReminderWorker(voiceSvc)
	}

	dialogueSvc := dialogue.NewDialogueService(sessionStore, calendarSvc, governor, reminders, dialogue.Config{
		TriggerPhrase:    config.AppConfig.TriggerPhrase,
		TriggerThreshold: config.AppConfig.TriggerMatchThreshold,
		SilenceWindowMS:  config.AppConfig.SilenceWindowMS,
		IdleTimeout:      idleTimeout,
		WorkHours: schedule.WorkHours{
			StartMin: config.AppConfig.WorkHoursStartMin,
			EndMin:   config.AppConfig.WorkHoursEndMin,
		},
		SlotStepMinutes:        config.AppConfig.SlotStepMinutes,
		SearchDays:             config.AppConfig.SearchDays,
		MaxAlternatives:        config.AppConfig.MaxAlternatives,
		DefaultDurationMinutes: config.AppConfig.DefaultDurationMinutes,
		ReminderLeadMinutes:    config.AppConfig.ReminderLeadMinutes,
	}, logger)

	// Periodic sweep keeps abandoned sessions from holding resources; expiry
	// is also enforced lazily on access.
	sweepInterval := time.Duration(config.AppConfig.SessionSweepSec) * time.Second
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			if removed, err := dialogueSvc.SweepExpired(context.Background()); err != nil {
				logger.Warn("session sweep failed", zap.Error(err))
			} else if removed > 0 {
				logger.Debug("swept expired sessions", zap.Int("removed", removed))
			}
		}
	}()

	if len(redisClients) > 0 {
		utils.StartHealthMonitor(redisClients)
	}

	dialogueHandler := handlers.NewDialogueHandler(dialogueSvc, logger)
	voiceHandler := handlers.NewVoiceHandler(voiceSvc, dialogueSvc, logger)

	handlerBundle := &handlers.HandlerBundle{
		StartSession:    dialogueHandler.StartSession,
		SubmitUtterance: dialogueHandler.SubmitUtterance,
		EndSession:      dialogueHandler.EndSession,
		Transcribe:      voiceHandler.Transcribe,
	}

	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
