package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"voicecal/config"
	"voicecal/models"
	"voicecal/services/tasks"
	"voicecal/services/voice"
	"voicecal/utils"
)

// InitReminderWorker runs the async reminder worker in the background. Each
// task delivers a spoken heads-up shortly before a committed booking starts.
func InitReminderWorker(voiceSvc voice.VoiceService) {
	logger := utils.GetLogger()

	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSpeakReminder, handleReminderTask(voiceSvc, logger))

	go func() {
		logger.Info("starting reminder worker")
		const maxAttempts = 5
		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Warn("reminder worker failed to start",
				zap.Int("attempt", attempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("reminder worker giving up")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
}

func handleReminderTask(voiceSvc voice.VoiceService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("invalid reminder payload", zap.Error(err))
			return err
		}

		start, err := time.Parse(time.RFC3339, p.StartISO)
		if err != nil {
			logger.Error("invalid reminder start time", zap.String("start", p.StartISO), zap.Error(err))
			return err
		}

		text := fmt.Sprintf("Reminder: %s at %s.", p.Title, start.Format("15:04"))
		if err := voiceSvc.Speak(ctx, p.Identity, text); err != nil {
			logger.Warn("failed to deliver reminder",
				zap.String("identity", p.Identity), zap.String("eventID", p.EventID), zap.Error(err))
			return err
		}
		return nil
	}
}
