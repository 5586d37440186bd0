package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orbital_node/internal/handlers"
	"orbital_node/internal/logger"
	"orbital_node/internal/repository"
	"orbital_node/internal/repository/db"
	"orbital_node/internal/server"
	"orbital_node/internal/service"

	"github.com/spf13/viper"
)

const defaultSimTick = 1 * time.Second

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load config.yml
	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	// open DB
	sqlDB, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(sqlDB)
	services := service.NewService(repos, buildServiceConfig(repos, log), log)
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start cooldown simulator (via composed service)
	go services.Simulator.Run(ctx, simTick())

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// buildServiceConfig maps the flat config surface onto the service layer.
// The last persisted snapshot, when present, seeds the radiator temperature
// so a restart keeps thermal continuity.
func buildServiceConfig(repos *repository.Repository, log *logger.Logger) service.Config {
	cfg := service.Config{
		Radiator: service.RadiatorConfig{
			Emissivity:       viper.GetFloat64("radiator.emissivity"),
			AreaM2:           viper.GetFloat64("radiator.area_m2"),
			AmbientK:         viper.GetFloat64("radiator.ambient_k"),
			ThresholdK:       viper.GetFloat64("radiator.threshold_k"),
			ThermalMassJPerK: viper.GetFloat64("radiator.thermal_mass_j_per_k"),
		},
		Chaos: service.ChaosPolicy{
			MinDelayMs:      viper.GetInt("uplink.min_delay_ms"),
			MaxDelayMs:      viper.GetInt("uplink.max_delay_ms"),
			DropProbability: viper.GetFloat64("uplink.drop_probability"),
		},
		Compute: service.ComputeConfig{
			APIKey:          viper.GetString("compute.api_key"),
			Model:           viper.GetString("compute.model"),
			HeatWattsLow:    viper.GetFloat64("compute.heat_watts_low"),
			HeatWattsNormal: viper.GetFloat64("compute.heat_watts_normal"),
			HeatWattsHigh:   viper.GetFloat64("compute.heat_watts_high"),
			WattsPerKiB:     viper.GetFloat64("compute.watts_per_kib"),
			MinExecSeconds:  viper.GetFloat64("compute.min_exec_seconds"),
		},
		Sim: service.SimulatorConfig{
			IdleLoadWatts: viper.GetFloat64("simulator.idle_load_watts"),
		},
	}

	snapCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if snap, err := repos.StateRepo.Load(snapCtx); err != nil {
		log.Infow("no thermal snapshot restored", "err", err)
	} else if snap.ID != 0 {
		cfg.Radiator.InitialK = snap.TemperatureK
		log.Infow("thermal snapshot restored", "temperature_k", snap.TemperatureK, "saved_at", snap.UpdatedAt)
	}
	return cfg
}

func simTick() time.Duration {
	if tick := viper.GetDuration("simulator.tick"); tick > 0 {
		return tick
	}
	return defaultSimTick
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "orbital.db")
		dbPath = "orbital.db"
	}
	return db.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8002"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests (and their injected delays) to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
