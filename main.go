package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/camden-git/worksitebackend/config"
	"github.com/camden-git/worksitebackend/database"
	"github.com/camden-git/worksitebackend/handlers"
	"github.com/camden-git/worksitebackend/media"
	"github.com/camden-git/worksitebackend/realtime"
	"github.com/camden-git/worksitebackend/repository"
	"github.com/camden-git/worksitebackend/services"
	"github.com/camden-git/worksitebackend/vision"
	"github.com/camden-git/worksitebackend/workers"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	storagePaths := []string{cfg.SnapshotsPath, filepath.Dir(cfg.DatabasePath)}
	for _, p := range storagePaths {
		if err := os.MkdirAll(p, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create storage directory %s: %v", p, err)
		}
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database: %v", err)
	}
	if err := database.SeedDefaultAdmin(db); err != nil {
		log.Fatalf("FATAL: Failed to seed default admin: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("FATAL: Failed to get underlying sql.DB: %v", err)
	}
	defer sqlDB.Close()

	mediaSubDirs := map[media.AssetType]string{
		media.AssetTypeSnapshot:   filepath.Base(cfg.SnapshotsPath),
		media.AssetTypeEnrollment: "enrollment_photos",
	}
	mediaStore, err := media.NewLocalStorage(cfg.MediaStoragePath, mediaSubDirs)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize media store: %v", err)
	}
	mediaProcessor := media.NewProcessor(mediaStore, cfg.SnapshotMaxSize)

	employeeRepo := repository.NewEmployeeRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	eventRepo := repository.NewSafetyEventRepository(db)
	alertRepo := repository.NewAlertRepository(db)

	faceDetector := vision.NewFaceDetector(cfg.FaceCascadePath)
	defer faceDetector.Close()
	faceEncoder := vision.NewFaceEncoder(cfg.FaceNetModelPath)
	defer faceEncoder.Close()
	personLocalizer := vision.NewPersonLocalizer(cfg.BodyCascadePath)
	defer personLocalizer.Close()

	gallery := vision.NewFeatureGallery()
	matcher := vision.NewMatcher(faceDetector, faceEncoder, gallery, cfg.MatchTolerance)

	hub := realtime.NewHub()
	go hub.Run()

	monitorService := services.NewMonitorService(
		faceDetector, faceEncoder, gallery, matcher, personLocalizer,
		employeeRepo, attendanceRepo, eventRepo,
		mediaProcessor, hub,
	)
	if err := monitorService.ReloadGallery(); err != nil {
		log.Fatalf("FATAL: Failed to load face gallery: %v", err)
	}

	captureMonitor := workers.NewCaptureMonitor(monitorService, hub, cfg.CameraIndex, cfg.MonitorFPS)
	defer captureMonitor.Stop()

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"}, //TODO: configurable
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	employeeHandler := &handlers.EmployeeHandler{Repo: employeeRepo, Service: monitorService}
	attendanceHandler := &handlers.AttendanceHandler{Repo: attendanceRepo, StatsDB: sqlDB}
	safetyHandler := &handlers.SafetyHandler{Service: monitorService, Events: eventRepo, StatsDB: sqlDB}
	cameraHandler := &handlers.CameraHandler{Monitor: captureMonitor, PreviewFPS: cfg.PreviewFPS}
	dashboardHandler := &handlers.DashboardHandler{Alerts: alertRepo, StatsDB: sqlDB}
	healthHandler := &handlers.HealthHandler{DB: sqlDB, Encoder: faceEncoder, Monitor: captureMonitor}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)

		r.Route("/employees", func(r chi.Router) {
			r.Post("/", employeeHandler.Register)
			r.Get("/", employeeHandler.List)
			r.Route("/{employeeID}", func(r chi.Router) {
				r.Get("/", employeeHandler.Get)
				r.Put("/", employeeHandler.Update)
				r.Delete("/", employeeHandler.Delete)
				r.Put("/face_photo", employeeHandler.UpdateFacePhoto)
				r.Post("/deactivate", employeeHandler.Deactivate)
				r.Post("/reactivate", employeeHandler.Reactivate)
				r.Get("/attendance", attendanceHandler.ListByEmployee)
				r.Get("/attendance/today", attendanceHandler.CheckToday)
			})
		})

		r.Route("/attendance", func(r chi.Router) {
			r.Get("/", attendanceHandler.ListByDate)
			r.Get("/stats", attendanceHandler.Stats)
		})

		r.Route("/safety", func(r chi.Router) {
			r.Post("/analyze", safetyHandler.AnalyzeFrame)
			r.Get("/events", safetyHandler.ListEvents)
			r.Get("/stats", safetyHandler.Stats)
		})

		r.Route("/camera", func(r chi.Router) {
			r.Post("/start", cameraHandler.Start)
			r.Post("/stop", cameraHandler.Stop)
			r.Get("/status", cameraHandler.Status)
			r.Get("/feed", cameraHandler.Feed)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/stats", dashboardHandler.Stats)
			r.Get("/alerts", dashboardHandler.RecentAlerts)
			r.Post("/alerts/{alertID}/acknowledge", dashboardHandler.AcknowledgeAlert)
		})
	})

	r.Get("/ws", hub.ServeWS)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port
	fmt.Printf("Server starting on http://localhost:%s\n", port)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
