package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/salon-scheduler/internal/booking"
	"github.com/example/salon-scheduler/internal/config"
	httptransport "github.com/example/salon-scheduler/internal/http"
	"github.com/example/salon-scheduler/internal/logging"
	"github.com/example/salon-scheduler/internal/persistence/memory"
	"github.com/example/salon-scheduler/internal/persistence/sqlite"
	"github.com/example/salon-scheduler/internal/staff"
)

// store is the combined persistence surface the service wires against.
type store interface {
	booking.AppointmentStore
	staff.Directory
}

func main() {
	// A .env file is optional; process environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err, "store", cfg.Store)
		os.Exit(1)
	}
	defer func() {
		if cerr := closeStore(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	service, validator := buildBookingStack(cfg, st, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Bookings:     httptransport.NewBookingHandler(validator, logger),
		Appointments: httptransport.NewAppointmentHandler(service, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("salon scheduler API listening", "addr", server.Addr, "store", cfg.Store)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// openStore selects the persistence backend from configuration. The memory
// backend ships with sample staff so a development instance can take bookings
// immediately.
func openStore(cfg config.Config, logger *slog.Logger) (store, func() error, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		st, err := sqlite.Open(cfg.SQLiteDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := st.Migrate(context.Background()); err != nil {
			cerr := st.Close()
			return nil, nil, errors.Join(err, cerr)
		}
		return st, st.Close, nil
	default:
		st := memory.NewStore()
		st.SeedStaff(sampleStaff()...)
		logger.Info("using in-memory store with sample staff")
		return st, func() error { return nil }, nil
	}
}

// buildBookingStack wires the validation pipeline and the appointment service
// around one shared store.
func buildBookingStack(cfg config.Config, st store, logger *slog.Logger) (*booking.Service, *booking.Validator) {
	staticBuffer := booking.BufferWindow{
		BeforeMinutes: cfg.BufferBeforeMinutes,
		AfterMinutes:  cfg.BufferAfterMinutes,
	}
	policy := &booking.RuleBufferPolicy{HomeTravelMinutes: cfg.HomeTravelMinutes}

	checker := booking.NewAvailabilityChecker(st, policy, staticBuffer, logger)
	resolver := booking.NewBidirectionalResolver(st, logger)
	validator := booking.NewValidator(checker, resolver, st, booking.ValidatorConfig{
		OpenHour:            cfg.OpenHour,
		CloseHour:           cfg.CloseHour,
		TravelWindowMinutes: cfg.TravelWindowMinutes,
	}, logger)

	reflections := booking.NewReflectionEngine(st, staff.NewService(st), logger)
	service := booking.NewService(st, validator, reflections, uuid.NewString, time.Now, logger)
	return service, validator
}

func sampleStaff() []staff.Entry {
	return []staff.Entry{
		{
			ID:                 "staff-woyni",
			DisplayName:        "Woyni",
			Active:             true,
			HomeServiceCapable: true,
			Locations:          []string{"loc1", "loc2"},
		},
		{
			ID:          "staff-solomon",
			DisplayName: "Solomon",
			Active:      true,
			Locations:   []string{"loc1"},
		},
	}
}
