package app

import (
	"fmt"
	"log"
	"os"

	"github.com/edusphere/internship-api/api"
	"github.com/edusphere/internship-api/config"
	"github.com/edusphere/internship-api/database"
	"github.com/edusphere/internship-api/router"
	"github.com/edusphere/internship-api/services/cron"
	"gorm.io/gorm"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		return err
	}

	// Raw SQL store serves the public certificate verification lookup; the
	// app degrades to the ORM path if it cannot connect
	rawStore, err := database.Start()
	if err != nil {
		log.Printf("Warning: raw SQL store unavailable: %v", err)
		rawStore = nil
	}

	// Init API and routes first so the cron manager can reuse the service
	// layer built by the router
	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	wiring := router.SetupRoutes(app, store, rawStore)

	// Cron jobs (enabled by default)
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" {
		db, ok := store.GetDB().(*gorm.DB)
		if !ok {
			print("Warning: Failed to get database connection for cron jobs\n")
		} else {
			cronManager = cron.NewCronManager(db, wiring.Certificates)
			if err := cronManager.Start(); err != nil {
				print("Warning: Failed to start cron jobs\n")
				print("Error: ", err.Error(), "\n")
			}
		}
	}

	// Defer closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		if rawStore != nil {
			rawStore.Close()
		}
		store.Close()
	}()

	return server.Run()
}
