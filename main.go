package main

import (
	"net/http"
	"time"

	"tastytracker/config"
	"tastytracker/database"
	"tastytracker/handlers"
	"tastytracker/integrations"
	"tastytracker/logger"
	"tastytracker/middleware"
	"tastytracker/models"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	middleware.SetJWTSecret(cfg.JWTSecret)

	if err := database.Init(cfg.DatabaseURL, log); err != nil {
		log.Fatal("database initialization failed", zap.Error(err))
	}

	calendar := integrations.NewCalendarClient(cfg.CalendarBaseURL, log)
	relay := integrations.NewTaskRelay(cfg.WebhookURL, log)

	authHandler := handlers.NewAuthHandler(cfg, log)
	clientHandler := handlers.NewClientHandler(log)
	projectHandler := handlers.NewProjectHandler(cfg, log, calendar, relay)
	taskHandler := handlers.NewTaskHandler(log)
	itemHandler := handlers.NewProjectItemHandler(log)
	timeHandler := handlers.NewTimeHandler(log)
	timerHandler := handlers.NewTimerHandler(log)
	teamHandler := handlers.NewTeamHandler(cfg, log)
	dashboardHandler := handlers.NewDashboardHandler(log)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(logger.RequestLogger(log))
	router.Use(chimiddleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := database.GetDB().DB()
		if err != nil || sqlDB.PingContext(r.Context()) != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/accept-invite", authHandler.AcceptInvite)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware)

			r.Post("/auth/logout", authHandler.Logout)
			r.Post("/auth/change-password", authHandler.ChangePassword)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePasswordChange)

				r.Get("/auth/me", authHandler.Me)
				r.Put("/auth/calendar-token", authHandler.SetCalendarToken)

				r.Get("/dashboard", dashboardHandler.Dashboard)

				r.Route("/clients", func(r chi.Router) {
					r.Get("/", clientHandler.List)
					r.Post("/", clientHandler.Create)
					r.Put("/{clientID}", clientHandler.Update)
					r.Delete("/{clientID}", clientHandler.Delete)
				})

				r.Route("/projects", func(r chi.Router) {
					r.Get("/", projectHandler.List)
					r.Post("/", projectHandler.Create)
					r.Get("/{projectID}", projectHandler.Detail)
					r.Put("/{projectID}", projectHandler.Update)
					r.Delete("/{projectID}", projectHandler.Delete)
					r.Patch("/{projectID}/status", projectHandler.UpdateStatus)
					r.Patch("/{projectID}/kanban", projectHandler.UpdateKanban)
					r.Post("/{projectID}/calendar/sync", projectHandler.SyncCalendar)
					r.Post("/{projectID}/relay", projectHandler.Relay)

					r.Get("/{projectID}/tasks", taskHandler.ListByProject)
					r.Post("/{projectID}/tasks", taskHandler.Create)

					r.Get("/{projectID}/members", itemHandler.ListMembers)
					r.Post("/{projectID}/members", itemHandler.AddMember)

					r.Get("/{projectID}/updates", itemHandler.ListUpdates)
					r.Post("/{projectID}/updates", itemHandler.AddUpdate)

					r.Get("/{projectID}/files", itemHandler.ListFiles)
					r.Post("/{projectID}/files", itemHandler.AddFile)
				})

				r.Route("/tasks/{taskID}", func(r chi.Router) {
					r.Put("/", taskHandler.Update)
					r.Delete("/", taskHandler.Delete)
					r.Patch("/status", taskHandler.UpdateStatus)
				})

				r.Delete("/members/{memberID}", itemHandler.RemoveMember)
				r.Delete("/files/{fileID}", itemHandler.RemoveFile)

				r.Route("/time", func(r chi.Router) {
					r.Get("/entries", timeHandler.ListEntries)
					r.Post("/entries", timeHandler.CreateEntry)
					r.Put("/entries/{entryID}", timeHandler.UpdateEntry)
					r.Delete("/entries/{entryID}", timeHandler.DeleteEntry)
					r.Get("/stats", timeHandler.Stats)
					r.Get("/export", timeHandler.ExportCSV)
				})

				r.Route("/timer", func(r chi.Router) {
					r.Get("/", timerHandler.Current)
					r.Post("/start", timerHandler.Start)
					r.Post("/stop", timerHandler.Stop)
				})

				r.Route("/team", func(r chi.Router) {
					r.Get("/", teamHandler.List)
					r.Post("/invites", teamHandler.Invite)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireRole(models.RoleAdmin))
						r.Put("/{memberID}", teamHandler.Update)
						r.Delete("/{memberID}", teamHandler.Delete)
					})
				})
			})
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting", zap.String("port", cfg.ServerPort))
	if err := server.ListenAndServe(); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
