package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"coursecraft/internal/auth"
	"coursecraft/internal/config"
	"coursecraft/internal/handler"
	"coursecraft/internal/middleware"
	"coursecraft/internal/registry"
	"coursecraft/internal/repository/jsonfile"
	"coursecraft/internal/repository/memory"
	"coursecraft/internal/repository/snapshot"
	aiService "coursecraft/internal/service/ai"
	contentService "coursecraft/internal/service/content"
	courseService "coursecraft/internal/service/course"
	uploadService "coursecraft/internal/service/upload"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"base_url", cfg.BaseURL,
	)

	// JWT verification is optional: without a JWKS URL the server runs in
	// open single-author mode
	var jwtVerifier auth.JWTVerifier
	if cfg.JWKSURL != "" {
		var err error
		jwtVerifier, err = auth.NewJWTVerifier(cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer jwtVerifier.Close()
	} else {
		logger.Warn("JWKS_URL not set - running without authentication")
	}

	// Content type registry (closed slot set, aliases, MIME allowlists)
	contentRegistry, err := registry.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load content type registry: %v", err)
	}
	logger.Info("content type registry initialized", "types", contentRegistry.Names())

	// Stores
	lessonTable := memory.NewLessonTable()
	snapshotStore, err := snapshot.NewStore(cfg.DataDir, logger)
	if err != nil {
		log.Fatalf("Failed to create snapshot store: %v", err)
	}
	courseStore, err := jsonfile.NewCourseStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open course store: %v", err)
	}

	// Generation provider (may be absent)
	generator, err := aiService.SetupProvider(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to setup generation provider: %v", err)
	}

	// Services
	pathResolver := contentService.NewPathResolver(cfg.UploadDir, contentRegistry)
	lessonSvc := contentService.NewLessonService(lessonTable, snapshotStore, contentRegistry, pathResolver, cfg.BaseURL, logger)
	uploadSvc := uploadService.NewUploadService(contentRegistry, pathResolver, lessonSvc, cfg.BaseURL, logger)
	courseSvc := courseService.NewCourseService(courseStore, logger)
	generationSvc := aiService.NewGenerationService(generator, contentRegistry, lessonSvc, logger)

	// Handlers
	lessonHandler := handler.NewLessonHandler(lessonSvc, logger)
	uploadHandler := handler.NewUploadHandler(uploadSvc, logger)
	courseHandler := handler.NewCourseHandler(courseSvc, lessonSvc, logger)
	aiHandler := handler.NewAIHandler(generationSvc, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", lessonHandler.HealthCheck)

	// Lesson routes
	mux.HandleFunc("GET /api/lessons", lessonHandler.ListLessons)
	mux.HandleFunc("POST /api/lessons", lessonHandler.CreateLesson)
	mux.HandleFunc("GET /api/lessons/{lessonId}", lessonHandler.GetLesson)
	mux.HandleFunc("POST /api/lessons/{lessonId}", lessonHandler.SaveLesson)
	mux.HandleFunc("DELETE /api/lessons/{lessonId}", lessonHandler.DeleteLesson)

	// Format slot routes
	mux.HandleFunc("GET /api/lessons/{lessonId}/formats/{formatType}", lessonHandler.GetSlot)
	mux.HandleFunc("POST /api/lessons/{lessonId}/formats/{formatType}", lessonHandler.UpdateSlot)
	mux.HandleFunc("POST /api/lessons/{lessonId}/formats/{formatType}/generate", aiHandler.GenerateSlot)

	// Upload routes
	mux.HandleFunc("POST /api/upload/{lessonId}/{contentType}", uploadHandler.Upload)
	mux.HandleFunc("GET /api/upload/{lessonId}/{contentType}", uploadHandler.List)
	mux.HandleFunc("DELETE /api/upload/{lessonId}/{contentType}/{filename}", uploadHandler.Remove)

	// Course routes
	mux.HandleFunc("GET /api/courses", courseHandler.ListCourses)
	mux.HandleFunc("POST /api/courses", courseHandler.CreateCourse)
	mux.HandleFunc("GET /api/courses/{id}", courseHandler.GetCourse)
	mux.HandleFunc("PATCH /api/courses/{id}", courseHandler.UpdateCourse)
	mux.HandleFunc("DELETE /api/courses/{id}", courseHandler.DeleteCourse)
	mux.HandleFunc("POST /api/courses/{id}/enroll", courseHandler.Enroll)
	mux.HandleFunc("GET /api/courses/{id}/lessons", courseHandler.CourseLessons)

	// Generation routes
	mux.HandleFunc("POST /api/ai/generate-text", aiHandler.GenerateText)
	mux.HandleFunc("POST /api/ai/generate-structured", aiHandler.GenerateStructured)

	// Static serving for stored files
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Logging → Recovery → Auth → Routes
	root = middleware.AuthMiddleware(jwtVerifier)(root)
	root = middleware.Recovery(logger)(root)
	root = middleware.RequestLogger(logger)(root)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  60 * time.Second, // uploads can be slow
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
