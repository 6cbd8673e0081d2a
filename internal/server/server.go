package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/patchworkhq/hearth/internal/auth"
	"github.com/patchworkhq/hearth/internal/backup"
	"github.com/patchworkhq/hearth/internal/digest"
	"github.com/patchworkhq/hearth/internal/handler"
	"github.com/patchworkhq/hearth/internal/middleware"
	"github.com/patchworkhq/hearth/internal/push"
	"github.com/patchworkhq/hearth/internal/store"
	ws "github.com/patchworkhq/hearth/internal/websocket"
)

// Config carries everything the server needs beyond the database handle.
type Config struct {
	JWTSecret string
	TokenTTL  time.Duration

	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubscriber string

	DigestDailyHour  int
	DigestWeeklyDay  time.Weekday
	DigestWeeklyHour int

	Backup backup.Config
}

type Server struct {
	db  *sql.DB
	hub *ws.Hub

	authH         *handler.AuthHandler
	familyMemberH *handler.FamilyMemberHandler
	themeH        *handler.ThemeHandler
	taskH         *handler.TaskHandler
	listH         *handler.ListHandler
	recipeH       *handler.RecipeHandler
	mealPlanH     *handler.MealPlanHandler
	preferenceH   *handler.PreferenceHandler
	conversationH *handler.ConversationHandler
	pushH         *handler.PushHandler
	digestH       *handler.DigestHandler

	tokens          *auth.TokenManager
	userStore       *store.UserStore
	pushStore       *store.PushStore
	rateLimiter     *middleware.RateLimiter
	digestScheduler *digest.Scheduler
	backupManager   *backup.Manager
	logger          *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	householdStore := store.NewHouseholdStore(db)
	familyMemberStore := store.NewFamilyMemberStore(db)
	themeStore := store.NewThemeStore(db)
	taskStore := store.NewTaskStore(db)
	listStore := store.NewListStore(db)
	recipeStore := store.NewRecipeStore(db)
	mealPlanStore := store.NewMealPlanStore(db)
	preferenceStore := store.NewPreferenceStore(db)
	conversationStore := store.NewConversationStore(db)
	pushStore := store.NewPushStore(db)
	backupStore := store.NewBackupStore(db)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	// Push and the digests that ride on it are optional. Without VAPID
	// keys the routes are simply not registered.
	pushLogger := logger.With("component", "push")
	var pushH *handler.PushHandler
	var digestH *handler.DigestHandler
	var digestSched *digest.Scheduler
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		pushSvc := push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubscriber)
		dispatcher := push.NewDispatcher(pushSvc, pushStore, pushLogger)
		pushH = handler.NewPushHandler(pushStore, pushSvc, dispatcher, logger.With("component", "push_handler"))

		digestLogger := logger.With("component", "digest")
		digestSvc := digest.NewService(taskStore, familyMemberStore, householdStore, pushStore, dispatcher, digestLogger)
		digestSched = digest.NewScheduler(digestSvc, digestLogger, cfg.DigestDailyHour, cfg.DigestWeeklyDay, cfg.DigestWeeklyHour)
		digestH = handler.NewDigestHandler(digestSvc, digestLogger)
	}

	backupMgr := backup.NewManager(cfg.Backup, db, backupStore, logger.With("component", "backup"))

	return &Server{
		db:  db,
		hub: hub,

		authH:         handler.NewAuthHandler(userStore, tokens, logger.With("component", "auth")),
		familyMemberH: handler.NewFamilyMemberHandler(familyMemberStore, hub, logger.With("component", "family_member")),
		themeH:        handler.NewThemeHandler(themeStore, hub, logger.With("component", "theme")),
		taskH:         handler.NewTaskHandler(taskStore, hub, logger.With("component", "task")),
		listH:         handler.NewListHandler(listStore, userStore, hub, logger.With("component", "list")),
		recipeH:       handler.NewRecipeHandler(recipeStore, hub, logger.With("component", "recipe")),
		mealPlanH:     handler.NewMealPlanHandler(mealPlanStore, recipeStore, hub, logger.With("component", "meal_plan")),
		preferenceH:   handler.NewPreferenceHandler(preferenceStore, logger.With("component", "preference")),
		conversationH: handler.NewConversationHandler(conversationStore, logger.With("component", "conversation")),
		pushH:         pushH,
		digestH:       digestH,

		tokens:          tokens,
		userStore:       userStore,
		pushStore:       pushStore,
		rateLimiter:     middleware.NewRateLimiter(),
		digestScheduler: digestSched,
		backupManager:   backupMgr,
		logger:          logger,
	}
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// DigestScheduler returns the digest scheduler, nil when push is disabled.
func (s *Server) DigestScheduler() *digest.Scheduler {
	return s.digestScheduler
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// PushStore returns the push store for cleanup tasks.
func (s *Server) PushStore() *store.PushStore {
	return s.pushStore
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes behind RequireAuth
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.tokens, s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/me", s.authH.Me)

	// Family members
	mux.HandleFunc("GET /api/family-members", s.familyMemberH.List)
	mux.HandleFunc("POST /api/family-members", s.familyMemberH.Create)
	mux.HandleFunc("PUT /api/family-members/sort", s.familyMemberH.Reorder)
	mux.HandleFunc("GET /api/family-members/{id}", s.familyMemberH.Get)
	mux.HandleFunc("PUT /api/family-members/{id}", s.familyMemberH.Update)
	mux.HandleFunc("DELETE /api/family-members/{id}", s.familyMemberH.Delete)

	// Themes and projects
	mux.HandleFunc("GET /api/themes", s.themeH.List)
	mux.HandleFunc("POST /api/themes", s.themeH.Create)
	mux.HandleFunc("GET /api/themes/{id}", s.themeH.Get)
	mux.HandleFunc("PUT /api/themes/{id}", s.themeH.Update)
	mux.HandleFunc("DELETE /api/themes/{id}", s.themeH.Delete)
	mux.HandleFunc("GET /api/projects", s.themeH.ListProjects)
	mux.HandleFunc("POST /api/projects", s.themeH.CreateProject)
	mux.HandleFunc("GET /api/projects/{id}", s.themeH.GetProject)
	mux.HandleFunc("PUT /api/projects/{id}", s.themeH.UpdateProject)
	mux.HandleFunc("DELETE /api/projects/{id}", s.themeH.DeleteProject)

	// Tasks
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.HandleFunc("PUT /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.taskH.Complete)

	// Lists and items
	mux.HandleFunc("GET /api/lists", s.listH.List)
	mux.HandleFunc("POST /api/lists", s.listH.Create)
	mux.HandleFunc("GET /api/list-pins", s.listH.ListPins)
	mux.HandleFunc("GET /api/lists/{id}", s.listH.Get)
	mux.HandleFunc("PUT /api/lists/{id}", s.listH.Rename)
	mux.HandleFunc("DELETE /api/lists/{id}", s.listH.Delete)
	mux.HandleFunc("POST /api/lists/{list_id}/items", s.listH.CreateItem)
	mux.HandleFunc("PUT /api/lists/{list_id}/items/{id}", s.listH.UpdateItem)
	mux.HandleFunc("POST /api/lists/{list_id}/items/{id}/toggle", s.listH.ToggleItem)
	mux.HandleFunc("DELETE /api/lists/{list_id}/items/{id}", s.listH.DeleteItem)
	mux.HandleFunc("POST /api/lists/{list_id}/clear-marked", s.listH.ClearMarkedOff)
	mux.HandleFunc("POST /api/lists/{list_id}/shares", s.listH.Share)
	mux.HandleFunc("DELETE /api/lists/{list_id}/shares/{user_id}", s.listH.Unshare)
	mux.HandleFunc("POST /api/lists/{list_id}/pin", s.listH.Pin)
	mux.HandleFunc("DELETE /api/lists/{list_id}/pin", s.listH.Unpin)

	// Recipes
	mux.HandleFunc("GET /api/recipes", s.recipeH.List)
	mux.HandleFunc("POST /api/recipes", s.recipeH.Create)
	mux.HandleFunc("GET /api/recipes/{id}", s.recipeH.Get)
	mux.HandleFunc("PUT /api/recipes/{id}", s.recipeH.Update)
	mux.HandleFunc("DELETE /api/recipes/{id}", s.recipeH.Delete)
	mux.HandleFunc("POST /api/recipes/{id}/attachments", s.recipeH.AddAttachment)
	mux.HandleFunc("DELETE /api/recipes/{id}/attachments/{attachment_id}", s.recipeH.DeleteAttachment)

	// Meal plans
	mux.HandleFunc("GET /api/meal-plans", s.mealPlanH.List)
	mux.HandleFunc("PUT /api/meal-plans", s.mealPlanH.Upsert)
	mux.HandleFunc("DELETE /api/meal-plans/{id}", s.mealPlanH.Delete)

	// Household preferences
	mux.HandleFunc("GET /api/preferences", s.preferenceH.Get)
	mux.HandleFunc("PUT /api/preferences", s.preferenceH.Put)

	// Conversations
	mux.HandleFunc("GET /api/conversations", s.conversationH.List)
	mux.HandleFunc("POST /api/conversations", s.conversationH.Create)
	mux.HandleFunc("GET /api/conversations/{id}", s.conversationH.Get)
	mux.HandleFunc("POST /api/conversations/{id}/messages", s.conversationH.AppendMessage)
	mux.HandleFunc("POST /api/conversations/{id}/links", s.conversationH.Link)

	// Push notifications and digests
	if s.pushH != nil {
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)
		mux.HandleFunc("POST /api/push/test", s.pushH.Test)
	}
	if s.digestH != nil {
		mux.HandleFunc("POST /api/digests/daily", s.digestH.RunDaily)
		mux.HandleFunc("POST /api/digests/weekly", s.digestH.RunWeekly)
	}

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))
}
