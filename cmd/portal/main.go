package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Sarika191/Teacher-student-appointment/internal/app"
	"github.com/Sarika191/Teacher-student-appointment/internal/booking"
	"github.com/Sarika191/Teacher-student-appointment/internal/bot"
	"github.com/Sarika191/Teacher-student-appointment/internal/config"
	"github.com/Sarika191/Teacher-student-appointment/internal/db"
	"github.com/Sarika191/Teacher-student-appointment/internal/identity"
	"github.com/Sarika191/Teacher-student-appointment/internal/jobs"
	"github.com/Sarika191/Teacher-student-appointment/internal/logging"
	"github.com/Sarika191/Teacher-student-appointment/internal/notify"
	"github.com/Sarika191/Teacher-student-appointment/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Closer()
	sl := lg.Sugar

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, cfg.Release)
	if err != nil {
		sl.Warnw("sentry init failed", "err", err)
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		sl.Fatalw("db connect failed", "err", err)
	}
	defer func() { _ = database.Close() }()
	if err := db.Migrate(database); err != nil {
		sl.Fatalw("migrations failed", "err", err)
	}
	store := db.NewStore(database)

	validate := validator.New()
	var ids identity.Gateway
	switch cfg.IdentityBackend {
	case "cognito":
		ids, err = identity.NewCognitoFromEnv(ctx, cfg.AWSRegion, cfg.CognitoClientID, cfg.CognitoUserPoolID)
		if err != nil {
			sl.Fatalw("cognito init failed", "err", err)
		}
	default:
		ids = identity.NewLocal(store, validate)
	}

	var (
		revoker   identity.Revoker   = identity.NewMemoryRevoker()
		links     identity.LinkCodes = identity.NewMemoryLinkCodes()
		redisPing app.Pinger
	)
	if cfg.RedisAddr != "" {
		rc := identity.NewRedisClient(cfg.RedisAddr)
		defer func() { _ = rc.Close() }()
		rr := identity.NewRedisRevoker(rc)
		if err := rr.Ping(ctx); err != nil {
			sl.Warnw("redis unavailable at startup", "addr", cfg.RedisAddr, "err", err)
		}
		revoker, links, redisPing = rr, identity.NewRedisLinkCodes(rc), rr
	}

	deps := booking.Deps{
		Store:            store,
		Identity:         ids,
		Sessions:         identity.NewSessions(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.SessionTTL, revoker),
		LinkCodes:        links,
		Validate:         validate,
		Log:              sl,
		Location:         cfg.Location,
		AllowAdminSignup: cfg.AllowAdminSignup,
		AdminEmails:      cfg.AdminEmails,
	}

	runner := jobs.New(ctx)
	var api *tgbotapi.BotAPI
	if cfg.BotToken != "" {
		api, err = notify.NewBot(cfg.BotToken)
		if err != nil {
			sl.Fatalw("telegram bot init failed", "err", err)
		}
		sl.Infow("telegram notifications enabled", "bot", api.Self.UserName)
		tgn := notify.NewTelegram(api, cfg.Location, lg.For("notify"))
		deps.Notifier = tgn

		rem := &jobs.Reminders{
			Store:  store,
			Sender: tgn,
			Log:    lg.For("jobs"),
			Window: cfg.ReminderWindow,
			Batch:  cfg.ReminderBatchLimit,
		}
		if err := runner.Every(cfg.ReminderInterval, "appointment_reminders", rem.Run); err != nil {
			sl.Fatalw("reminder job not scheduled", "err", err)
		}
	}

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	svc := booking.New(deps)
	if api != nil {
		go bot.New(api, svc, lg.For("bot")).Run(ctx)
	}
	router := app.NewRouter(app.Deps{
		Service:         svc,
		Log:             lg.For("http"),
		DB:              store,
		Redis:           redisPing,
		RateLimitPerMin: cfg.RateLimitPerMin,
		CORSOrigins:     cfg.CORSOrigins,
	})

	srv := app.StartHTTP(ctx, cfg.HTTPAddr, router, lg.For("http"))
	sl.Infow("portal started", "env", cfg.Env, "identity", cfg.IdentityBackend, "tz", cfg.Location.String())

	<-ctx.Done()
	sl.Infow("shutting down")
	<-srv.Done()
}
