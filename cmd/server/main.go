package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/aurum-collective/atelier-backend/internal/config"
	"github.com/aurum-collective/atelier-backend/internal/database"
	"github.com/aurum-collective/atelier-backend/internal/handlers"
	"github.com/aurum-collective/atelier-backend/internal/middleware"
	"github.com/aurum-collective/atelier-backend/internal/routes"
	"github.com/aurum-collective/atelier-backend/internal/services"
	"github.com/aurum-collective/atelier-backend/internal/store"
	"github.com/aurum-collective/atelier-backend/pkg/utils"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	// Check encryption key (warn if not set, but don't fail)
	var encryptionKey []byte
	if cfg.EncryptionKey == "" {
		log.Println("⚠️  WARNING: ENCRYPTION_KEY not set. Intent profile encryption at rest will not work.")
		log.Println("   To generate a key, run: openssl rand -base64 32")
		log.Println("   Set it in your environment: ENCRYPTION_KEY=<generated-key>")
	} else {
		key, err := utils.EncryptionKeyFromEnv()
		if err != nil {
			log.Fatalf("ENCRYPTION_KEY is invalid: %v (key must be base64-encoded 32 bytes; generate with: openssl rand -base64 32)", err)
		}
		encryptionKey = key
		log.Println("✅ Encryption key configured")
	}

	// Connect to PostgreSQL
	log.Printf("Connecting to PostgreSQL...")
	pg, err := database.ConnectPostgres(cfg.PostgresURI)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer pg.Close()

	// Connect to Redis
	log.Printf("Connecting to Redis...")
	redisClient, err := database.ConnectRedis(cfg.RedisURI)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	// Connect to MongoDB
	log.Printf("Connecting to MongoDB...")
	mongoClient, db, err := database.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.DisconnectMongo(mongoClient)

	// Ensure MongoDB indexes; the unique version index backs optimistic
	// concurrency, so a failure here is fatal.
	if err := store.EnsureIndexes(context.Background(), db); err != nil {
		log.Fatal("Failed to ensure MongoDB indexes:", err)
	}
	log.Println("✅ MongoDB indexes ensured")

	// Stores
	mongoStores := store.NewMongoStores(db)
	if encryptionKey != nil {
		mongoStores.Intents = mongoStores.Intents.WithKey(encryptionKey)
	}
	userStore := store.NewPostgresUserStore(pg)

	// Services
	stream := services.NewAuditStream(redisClient)
	stream.Start(context.Background())

	sessions := services.NewSessionService(redisClient)
	audit := services.NewAuditService(mongoStores.Audit, stream)
	ledger := services.NewVersionLedger(mongoStores.Versions)
	machine := services.NewStateMachine(mongoStores.Journeys, ledger, audit)
	journeys := services.NewJourneyService(mongoStores.Journeys, ledger, machine, audit)
	privacy := services.NewPrivacyService(services.PrivacyDeps{
		Privacy:  mongoStores.Privacy,
		Users:    userStore,
		Journeys: mongoStores.Journeys,
		Versions: mongoStores.Versions,
		Memories: mongoStores.Memories,
		Intents:  mongoStores.Intents,
		Audit:    audit,
	})

	h := handlers.New(journeys, audit, privacy, sessions, stream)

	// Setup router
	r := chi.NewRouter()

	// Custom CORS: set headers and respond to OPTIONS with 200 so preflight never gets 403
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RateLimit(redisClient))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r, h)

	log.Printf("🚀 Atelier backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
