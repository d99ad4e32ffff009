package main

import (
	"fmt"
	"log"
	"os"

	"healthwatch/internal/server"
)

func main() {
	dbPath := os.Getenv("HW_DB_PATH")
	if dbPath == "" {
		dbPath = "./data/healthwatch.db"
	}

	db, err := server.OpenDB(dbPath)
	if err != nil {
		log.Fatalf("OpenDB failed: %v", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' ORDER BY name;`)
	if err != nil {
		log.Fatalf("query failed: %v", err)
	}
	defer rows.Close()

	fmt.Println("Tables:")
	for rows.Next() {
		var name string
		_ = rows.Scan(&name)
		fmt.Println(" -", name)
	}

	var reports, machines int
	_ = db.QueryRow(`SELECT COUNT(*) FROM reports;`).Scan(&reports)
	_ = db.QueryRow(`SELECT COUNT(DISTINCT machine_id) FROM reports;`).Scan(&machines)
	fmt.Println("Reports:", reports)
	fmt.Println("Machines:", machines)
}
