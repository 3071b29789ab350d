package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/shopspring/decimal"

	"marmomart/internal/config"
	"marmomart/internal/database"
	"marmomart/internal/handlers"
	"marmomart/internal/models"
	"marmomart/internal/notifications"
	"marmomart/internal/otp"
	"marmomart/internal/phoneauth"
	"marmomart/internal/redis"
	"marmomart/internal/repositories"
	"marmomart/internal/services"
	"marmomart/pkg/rabbitmq"
	"marmomart/pkg/whatsapp"
)

// messenger delivers both login codes and order updates.
type messenger interface {
	otp.Sender
	notifications.OrderUpdateSender
}

// stores bundles the repositories the services run on.
type stores struct {
	products  repositories.ProductRepository
	orders    repositories.OrderRepository
	accounts  repositories.AccountRepository
	addresses repositories.AddressRepository
}

// backends describes which infrastructure is live, for the health check.
type backends map[string]string

// newApp wires services and handlers onto a Fiber app. publisher may be nil.
func newApp(cfg *config.Config, st stores, sessions otp.SessionStore, sender otp.Sender, publisher services.Publisher, live backends) *fiber.App {
	phones := phoneauth.NewNumberValidator(cfg.PhoneDefaultRegion)

	// --- Initialize Services ---
	authService := services.NewAuthService(st.accounts, cfg.JWTSecret, cfg.TokenTTL, adminPhones(cfg.AdminPhones, phones))
	accountService := services.NewAccountService(st.accounts, st.addresses)
	productService := services.NewProductService(st.products)
	orderService := services.NewOrderService(st.orders, st.products, publisher)
	adminService := services.NewAdminService(st.products, st.orders, st.accounts)

	codes := otp.NewManager(sessions, sender,
		otp.WithTTL(cfg.OTPTTL),
		otp.WithHashCost(cfg.OTPHashCost),
	)

	// --- Initialize Fiber App ---
	app := fiber.New()

	// --- Middleware ---
	app.Use(logger.New()) // Request logger

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"backends": live,
		})
	})

	// --- API Routes ---
	handlers.Routes{
		Auth:     handlers.NewAuthHandler(codes, phones, authService),
		Products: handlers.NewProductHandler(productService),
		Orders:   handlers.NewOrderHandler(orderService),
		Admin:    handlers.NewAdminHandler(adminService),
		Accounts: handlers.NewAccountHandler(accountService),
	}.Register(app, authService)

	return app
}

// adminPhones normalises the configured admin numbers the same way login
// does, so "98765 43210" matches the account created for "+919876543210".
// Entries that are not valid numbers are dropped.
func adminPhones(entries []string, phones phoneauth.PhoneValidator) []string {
	normalized := make([]string, 0, len(entries))
	for _, entry := range entries {
		phone, err := phones.Normalize(entry)
		if err != nil {
			log.Printf("Ignoring admin phone %q: %v", entry, err)
			continue
		}
		normalized = append(normalized, phone)
	}
	return normalized
}

func main() {
	// --- Configuration ---
	cfg := config.Load()
	live := backends{}

	// --- Initialize Repositories ---
	var st stores
	if cfg.DatabaseDSN != "" {
		db, err := database.Initialize(cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		st = stores{
			products:  repositories.NewGORMProductRepository(db),
			orders:    repositories.NewGORMOrderRepository(db),
			accounts:  repositories.NewGORMAccountRepository(db),
			addresses: repositories.NewGORMAddressRepository(db),
		}
		live["database"] = db.Dialector.Name()
	} else {
		log.Println("DATABASE_DSN not set, using in-memory repositories with demo catalog")
		st = stores{
			products:  repositories.NewMemoryProductRepository(),
			orders:    repositories.NewMemoryOrderRepository(),
			accounts:  repositories.NewMemoryAccountRepository(),
			addresses: repositories.NewMemoryAddressRepository(),
		}
		seedCatalog(st.products)
		live["database"] = "memory"
	}

	// --- OTP Session Store ---
	var sessions otp.SessionStore
	if cfg.RedisURL != "" {
		rdb, err := redis.Initialize(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to initialize Redis: %v", err)
		}
		defer rdb.Close()
		sessions = rdb
		live["otp_sessions"] = "redis"
	} else {
		sessions = otp.NewMemoryStore()
		live["otp_sessions"] = "memory"
	}

	// --- WhatsApp ---
	var sender messenger
	if cfg.WhatsApp.Enabled() {
		wa := whatsapp.NewClient(cfg.WhatsApp.APIURL, cfg.WhatsApp.APIVersion, cfg.WhatsApp.PhoneNumberID, cfg.WhatsApp.AccessToken)
		wa.Language = cfg.WhatsApp.Language
		wa.OTPTemplate = cfg.WhatsApp.OTPTemplate
		wa.OrderTemplate = cfg.WhatsApp.OrderTemplate
		sender = wa
		live["whatsapp"] = "cloud_api"
	} else {
		log.Println("WhatsApp credentials not set, codes and order updates will be logged")
		sender = whatsapp.LogSender{}
		live["whatsapp"] = "log"
	}

	// --- Initialize RabbitMQ Client ---
	// A nil *rabbitmq.Client must not end up inside the interface.
	var publisher services.Publisher
	live["rabbitmq"] = "disabled"
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Printf("RabbitMQ unavailable, order events will not be published: %v", err)
		} else {
			defer mqClient.Close() // Ensure the connection is closed on exit
			publisher = mqClient
			live["rabbitmq"] = "connected"

			updates := notifications.NewOrderUpdates(st.accounts, sender)
			if err := mqClient.Consume(rabbitmq.NotificationQueue, services.EventOrderStatusUpdated, updates.HandleDelivery); err != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", err)
			}
		}
	}

	app := newApp(cfg, st, sessions, sender, publisher, live)

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	// Redis and RabbitMQ are closed by the deferred calls above
	log.Println("Server gracefully stopped")
}

// seedCatalog fills an empty in-memory catalog with a few demo lines.
func seedCatalog(repo repositories.ProductRepository) {
	ctx := context.Background()
	price := func(v int64) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.NewFromInt(v)) }
	minSqft := 100

	categories := []models.Category{
		{Name: "Italian Marble", Slug: "italian-marble", IsActive: true, SortOrder: 1},
		{Name: "Vitrified Tiles", Slug: "vitrified-tiles", IsActive: true, SortOrder: 2},
	}
	for i := range categories {
		if err := repo.CreateCategory(ctx, &categories[i]); err != nil {
			log.Printf("Error seeding category %s: %v", categories[i].Name, err)
			return
		}
	}

	products := []models.Product{
		{
			CategoryID: categories[0].ID, Name: "Statuario White", SKU: "MAR-STA-001",
			Material: "Marble", Brand: "Carrara Stones", IsActive: true, IsFeatured: true,
			MinOrderQuantity: &minSqft,
			Variants: []models.Variant{
				{Size: "Slab", Finish: "Polished", Thickness: "18mm", PricePerSqft: price(450), StockQuantity: 2000},
				{Size: "Bookmatch", Finish: "Polished", Thickness: "20mm"},
			},
		},
		{
			CategoryID: categories[0].ID, Name: "Botticino Classico", SKU: "MAR-BOT-002",
			Material: "Marble", IsActive: true,
			Variants: []models.Variant{
				{Size: "2x2 ft", Finish: "Honed", Thickness: "16mm", PricePerSqft: price(240), StockQuantity: 1500},
			},
		},
		{
			CategoryID: categories[1].ID, Name: "Satin Grey Floor Tile", SKU: "TIL-SGR-010",
			Material: "Vitrified", Brand: "Kajaria", IsActive: true, IsFeatured: true,
			Variants: []models.Variant{
				{Size: "600x600 mm", Finish: "Matt", Thickness: "9mm", PricePerPiece: price(42), StockQuantity: 800},
				{Size: "800x800 mm", Finish: "Matt", Thickness: "10mm", PricePerPiece: price(95), StockQuantity: 300},
			},
		},
	}
	for i := range products {
		if err := repo.Create(ctx, &products[i]); err != nil {
			log.Printf("Error seeding product %s: %v", products[i].Name, err)
		} else {
			log.Printf("Seeded product: %s (ID: %s)", products[i].Name, products[i].ID)
		}
	}
}
