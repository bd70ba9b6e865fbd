package main

import (
	"net/http"

	"github.com/parcelio/fleet-core/internal/auth"
	"github.com/parcelio/fleet-core/internal/config"
	"github.com/parcelio/fleet-core/internal/db"
	"github.com/parcelio/fleet-core/internal/events"
	"github.com/parcelio/fleet-core/internal/handlers"
	"github.com/parcelio/fleet-core/internal/middleware"
	"github.com/parcelio/fleet-core/internal/service"
	"github.com/parcelio/fleet-core/internal/util"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
		util.Verbose = false
	}

	client, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	collections := db.NewCollections(client, cfg.MongoDB)

	publisher, err := events.NewMQTTPublisher(cfg.MQTTBroker, cfg.MQTTClient)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MQTT broker")
	}

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("failed to create auth service")
	}

	tripService := service.NewTripService(collections.Trips, collections.Drivers, collections.Bookings, publisher)
	fleetService := service.NewFleetService(collections.Vehicles, collections.Drivers, collections.Trips, collections.Alerts)

	authHandler := handlers.NewAuthHandler(authService, collections.Users)
	tripHandler := handlers.NewTripHandler(tripService)
	bookingHandler := handlers.NewBookingHandler(tripService)
	vehicleHandler := handlers.NewVehicleHandler(collections.Vehicles)
	driverHandler := handlers.NewDriverHandler(collections.Drivers)
	fleetHandler := handlers.NewFleetHandler(fleetService)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("GET /api/auth/profile", authHandler.GetProfile)

	mux.HandleFunc("POST /api/trips", tripHandler.Create)
	mux.HandleFunc("GET /api/trips", tripHandler.List)
	mux.HandleFunc("POST /api/trips/bulk", tripHandler.BulkUpdate)
	mux.HandleFunc("GET /api/trips/{id}", tripHandler.Get)
	mux.HandleFunc("PATCH /api/trips/{id}", tripHandler.Update)
	mux.HandleFunc("DELETE /api/trips/{id}", tripHandler.Archive)
	mux.HandleFunc("POST /api/trips/{id}/assign", tripHandler.AssignDriver)
	mux.HandleFunc("POST /api/trips/{id}/stops", tripHandler.AddStop)
	mux.HandleFunc("POST /api/trips/{id}/cancel", tripHandler.Cancel)

	mux.HandleFunc("POST /api/bookings", bookingHandler.Create)
	mux.HandleFunc("POST /api/bookings/{id}/cancel", bookingHandler.Cancel)

	mux.HandleFunc("POST /api/vehicles", vehicleHandler.Create)
	mux.HandleFunc("GET /api/vehicles", vehicleHandler.List)
	mux.HandleFunc("GET /api/vehicles/{id}", vehicleHandler.Get)
	mux.HandleFunc("POST /api/vehicles/{id}/status", vehicleHandler.UpdateStatus)

	mux.HandleFunc("POST /api/drivers", driverHandler.Create)
	mux.HandleFunc("GET /api/drivers", driverHandler.List)

	mux.HandleFunc("GET /api/fleet/overview", fleetHandler.Overview)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	rateLimiter := middleware.NewRateLimitMiddleware()

	handler := middleware.RequestID(
		rateLimiter.RateLimit(300, 60)(
			authMiddleware.Authenticate(mux)))

	log.WithField("port", cfg.Port).Info("fleet-core listening")
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}
