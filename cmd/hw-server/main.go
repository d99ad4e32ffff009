package main

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"healthwatch/internal/server"
)

func main() {
	// .env is optional; real deployments set the vars directly.
	_ = godotenv.Load()

	log := logrus.New()
	if lvl, err := logrus.ParseLevel(getenv("HW_LOG_LEVEL", "info")); err == nil {
		log.SetLevel(lvl)
	}

	addr := getenv("HW_ADDR", ":8085")
	dbPath := getenv("HW_DB_PATH", "./data/healthwatch.db")

	// Ensure DB directory exists
	dbDir := filepath.Dir(dbPath)
	if dbDir != "." && dbDir != "" {
		if err := os.MkdirAll(dbDir, 0700); err != nil {
			log.Fatalf("failed to create db dir %s: %v", dbDir, err)
		}
	}

	db, err := server.OpenDB(dbPath)
	if err != nil {
		log.Fatalf("failed to open db %s: %v", dbPath, err)
	}
	defer db.Close()

	api := &server.API{
		Store: server.NewSQLiteStore(db),
		Log:   log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/reports", api.SubmitReport)
	mux.HandleFunc("/api/v1/machines", api.ListMachines)
	mux.HandleFunc("/api/v1/machines/", api.MachineHistory) // prefix last
	mux.HandleFunc("/api/v1/export.csv", api.ExportCSV)
	mux.Handle("/", http.FileServer(http.Dir("./web/ui")))

	log.Infof("hw-server listening on %s", addr)
	log.Infof("db: %s", dbPath)

	log.Fatal(http.ListenAndServe(addr, mux))
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
