package main

import (
	"context"
	"flag"
	"os"

	"github.com/apex/log"
	"github.com/joho/godotenv"

	"platefinder/config"
	"platefinder/database"
	"platefinder/dataset"
	"platefinder/logging"
)

// main loads the Zomato CSV export into the restaurant store.
func main() {
	_ = godotenv.Load()

	path := flag.String("file", "data/zomato.csv", "path to the Zomato CSV export")
	flag.Parse()

	cfg := config.Load()
	logging.Setup(cfg.Logging.Level)
	ctx := context.Background()

	f, err := os.Open(*path)
	if err != nil {
		log.WithError(err).Fatalf("cannot open %s", *path)
	}
	defer f.Close()

	restaurants, err := dataset.Read(f)
	if err != nil {
		log.WithError(err).Fatal("cannot parse CSV")
	}

	db, err := database.Connect(cfg.Database.URL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}

	n, err := dataset.Load(ctx, database.NewStore(db), restaurants)
	if err != nil {
		log.WithError(err).Fatalf("import stopped after %d restaurants", n)
	}
	log.Infof("loaded %d restaurants from %s", n, *path)
}
