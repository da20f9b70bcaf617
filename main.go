package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/backsoul/citizenquiz/pkg/config"
	"github.com/backsoul/citizenquiz/pkg/handlers"
	"github.com/backsoul/citizenquiz/pkg/redis"
	"github.com/backsoul/citizenquiz/pkg/services"
	"github.com/backsoul/citizenquiz/pkg/storage"
	"github.com/backsoul/citizenquiz/pkg/websocket"
	"github.com/valyala/fasthttp"
)

var _ services.ResultArchive = (*storage.ResultStore)(nil)

var (
	cfg             config.Config
	redisClient     *redis.RedisClient
	resultStore     *storage.ResultStore
	contentService  *services.ContentService
	resultsService  *services.ResultsService
	sessionService  *services.SessionService
	contentHandler  *handlers.ContentHandler
	sessionHandler  *handlers.SessionHandler
	resultsHandler  *handlers.ResultsHandler
	feedbackHandler *handlers.FeedbackHandler
	hub             *websocket.Hub
)

func main() {
	log.Println("🚀 Iniciando servidor de mini-juegos de ciudadanía digital")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	if cfg, err = config.Load(); err != nil {
		log.Fatalf("❌ Configuración inválida: %v", err)
	}

	initRedis(ctx)
	defer redisClient.Close()
	initResults(ctx)
	defer resultStore.Close()

	// Inicializar servicios
	initServices(ctx)

	// Cargar juegos al inicio
	loadInitialGames()

	// Configurar el servidor
	server := &fasthttp.Server{
		Handler: requestHandler,
		Name:    "Citizen Quiz Server",
	}

	go func() {
		<-ctx.Done()
		log.Println("🛑 Deteniendo servidor...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("⚠️ Error deteniendo servidor: %v", err)
		}
	}()

	log.Printf("🎮 Servidor iniciado en %s", cfg.HTTPAddr)
	log.Println("🔧 API Health: /api/health")
	log.Println("📊 API Juegos: /api/games")
	log.Println("🔌 Feedback: /ws?session={id}")

	if err := server.ListenAndServe(cfg.HTTPAddr); err != nil {
		log.Fatalf("Error al iniciar el servidor: %v", err)
	}
}

func initRedis(ctx context.Context) {
	log.Printf("🔌 Conectando a Redis en %s...", cfg.RedisAddr)
	client, err := redis.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	redisClient = client
}

func initResults(ctx context.Context) {
	log.Printf("🗄️  Abriendo archivo de resultados (%s)...", cfg.ResultsDriver)
	store, err := storage.Open(ctx, storage.Driver(cfg.ResultsDriver), cfg.ResultsDSN)
	if err != nil {
		log.Fatalf("❌ Error abriendo resultados: %v", err)
	}
	resultStore = store
}

func initServices(ctx context.Context) {
	log.Println("⚙️  Inicializando servicios...")
	contentService = services.NewContentService(redisClient)
	resultsService = services.NewResultsService(resultStore, nil, cfg.PassRatio, cfg.LeaderboardSize)
	sessionService = services.NewSessionService(redisClient, contentService, resultsService, cfg.SessionTTL)

	// Inicializar WebSocket Hub
	hub = websocket.NewHub()
	go hub.Run(ctx)

	// Inicializar handlers
	contentHandler = handlers.NewContentHandler(contentService, resultsService, cfg.CatalogPath)
	sessionHandler = handlers.NewSessionHandler(sessionService, hub)
	resultsHandler = handlers.NewResultsHandler(resultsService, sessionService)
	feedbackHandler = handlers.NewFeedbackHandler(sessionService, hub)
}

func loadInitialGames() {
	log.Println("📚 Cargando juegos iniciales...")

	count, err := contentService.GetGameCount()
	if err == nil && count > 0 {
		log.Printf("✅ Ya hay %d juegos en Redis", count)
	} else if _, err := contentService.LoadGamesFromFile(cfg.CatalogPath); err != nil {
		log.Printf("⚠️ Error cargando juegos iniciales: %v", err)
		log.Println("💡 El servidor continuará funcionando. Puedes cargar juegos usando POST /api/games/reload")
	}

	next, err := contentService.Resolver()
	if err != nil {
		log.Printf("⚠️ Error resolviendo orden del catálogo: %v", err)
		return
	}
	resultsService.SetResolver(next)
}

func requestHandler(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	method := string(ctx.Method())

	log.Printf("📡 %s %s", method, path)

	ctx.Response.Header.Set("Server", "CitizenQuiz-FastHTTP/1.0")
	ctx.Response.Header.Set("Cache-Control", "no-cache")

	// Headers CORS para el shell en desarrollo
	ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
	ctx.Response.Header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	ctx.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if method == fasthttp.MethodOptions {
		ctx.SetStatusCode(fasthttp.StatusOK)
		return
	}

	switch {
	case path == "/api/health":
		contentHandler.HealthCheck(ctx)

	// API Routes - Games
	case path == "/api/games" && method == fasthttp.MethodGet:
		contentHandler.GetAllGames(ctx)
	case path == "/api/games/reload" && method == fasthttp.MethodPost:
		contentHandler.ReloadGames(ctx)
	case strings.HasPrefix(path, "/api/games/") && method == fasthttp.MethodGet:
		handleGameRoutes(ctx, path)

	// API Routes - Sessions
	case path == "/api/sessions" && method == fasthttp.MethodPost:
		sessionHandler.CreateSession(ctx)
	case path == "/api/sessions/active" && method == fasthttp.MethodGet:
		sessionHandler.GetActiveSessions(ctx)
	case path == "/api/sessions/players" && method == fasthttp.MethodGet:
		sessionHandler.GetPlayerNames(ctx)
	case strings.HasPrefix(path, "/api/sessions/") && method == fasthttp.MethodGet:
		handleSessionGetRoutes(ctx, path)
	case strings.HasPrefix(path, "/api/sessions/") && method == fasthttp.MethodPost:
		handleSessionPostRoutes(ctx, path)

	// API Routes - Results
	case path == "/api/leaderboard" && method == fasthttp.MethodGet:
		resultsHandler.GetLeaderboard(ctx)
	case strings.HasPrefix(path, "/api/players/") && method == fasthttp.MethodGet:
		handlePlayerRoutes(ctx, path)

	// WebSocket Route
	case path == "/ws":
		feedbackHandler.HandleWebSocket(ctx)

	default:
		serve404(ctx)
	}
}

func serve404(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusNotFound)
	ctx.SetContentType("application/json")
	ctx.SetBodyString(`{"success": false, "error": "Ruta no encontrada"}`)
}

func handleGameRoutes(ctx *fasthttp.RequestCtx, path string) {
	parts := strings.Split(path, "/")

	// /api/games/{id}
	if len(parts) == 4 && parts[3] != "" {
		ctx.SetUserValue("id", parts[3])
		contentHandler.GetGame(ctx)
		return
	}

	// /api/games/{id}/next
	if len(parts) == 5 && parts[4] == "next" {
		ctx.SetUserValue("id", parts[3])
		contentHandler.GetNextGame(ctx)
		return
	}

	serve404(ctx)
}

func handleSessionGetRoutes(ctx *fasthttp.RequestCtx, path string) {
	parts := strings.Split(path, "/")

	// /api/sessions/{id}
	if len(parts) == 4 && parts[3] != "" {
		ctx.SetUserValue("id", parts[3])
		sessionHandler.GetSession(ctx)
		return
	}

	// /api/sessions/{id}/summary
	if len(parts) == 5 && parts[4] == "summary" {
		ctx.SetUserValue("id", parts[3])
		sessionHandler.Summary(ctx)
		return
	}

	serve404(ctx)
}

func handleSessionPostRoutes(ctx *fasthttp.RequestCtx, path string) {
	parts := strings.Split(path, "/")
	if len(parts) != 5 || parts[3] == "" {
		serve404(ctx)
		return
	}
	ctx.SetUserValue("id", parts[3])

	switch parts[4] {
	case "submit":
		sessionHandler.Submit(ctx)
	case "advance":
		sessionHandler.Advance(ctx)
	case "reset":
		sessionHandler.Reset(ctx)
	case "finish":
		sessionHandler.FinishSession(ctx)
	default:
		serve404(ctx)
	}
}

func handlePlayerRoutes(ctx *fasthttp.RequestCtx, path string) {
	parts := strings.Split(path, "/")

	// /api/players/{name}/history
	if len(parts) == 5 && parts[3] != "" && parts[4] == "history" {
		ctx.SetUserValue("playerName", parts[3])
		resultsHandler.GetPlayerHistory(ctx)
		return
	}

	serve404(ctx)
}
