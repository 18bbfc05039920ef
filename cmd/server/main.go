package main

import (
	"log"

	"ecobites-be/internal/config"
	"ecobites-be/internal/db"
	"ecobites-be/internal/http/handlers"
	"ecobites-be/internal/listing"
	"ecobites-be/internal/logger"
	"ecobites-be/internal/middleware"
	"ecobites-be/internal/order"
	"ecobites-be/internal/restaurant"
	"ecobites-be/internal/user"

	"github.com/gofiber/fiber/v2"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	listingRepo := listing.NewRepository(database)
	listingSvc := listing.NewService(listingRepo)

	restaurantRepo := restaurant.NewRepository(database)
	restaurantSvc := restaurant.NewService(restaurantRepo)

	orderRepo := order.NewRepository(database, listingRepo, restaurantRepo)
	orderSvc := order.NewService(orderRepo, cfg.ServiceFee)

	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo)

	app := fiber.New(fiber.Config{AppName: "ecobites-be"})

	app.Use(middleware.RequestID())
	app.Use(middleware.Logging())
	app.Use(middleware.Auth())
	app.Use(middleware.RateLimit())

	api := app.Group("/api")

	orderHandler := &handlers.OrderHandler{Orders: orderSvc}
	orders := api.Group("/orders")
	orders.Post("/", orderHandler.Place)
	orders.Get("/user/:userId", orderHandler.ByUser)
	orders.Get("/detail/:id", orderHandler.Detail)
	orders.Get("/restaurant/:restaurantId", orderHandler.ByRestaurant)
	orders.Put("/:id/status", orderHandler.UpdateStatus)

	listingHandler := &handlers.ListingHandler{Listings: listingSvc}
	listings := api.Group("/listings")
	listings.Get("/", listingHandler.List)
	listings.Get("/restaurant/:restaurantId", listingHandler.ByRestaurant)
	listings.Post("/", listingHandler.Create)

	restaurantHandler := &handlers.RestaurantHandler{Restaurants: restaurantSvc}
	restaurants := api.Group("/restaurants")
	restaurants.Get("/", restaurantHandler.List)
	restaurants.Get("/:id", restaurantHandler.Get)
	restaurants.Post("/", restaurantHandler.Create)

	userHandler := &handlers.UserHandler{Users: userSvc}
	users := api.Group("/users")
	users.Post("/", userHandler.Register)
	users.Post("/login", userHandler.Login)
	users.Get("/:id", userHandler.Get)
	users.Patch("/:id/premium", userHandler.UpdatePremium)

	api.Get("/health", handlers.Health)

	log.Printf("Server running on port %s", cfg.AppPort)
	log.Fatal(app.Listen(":" + cfg.AppPort))
}
