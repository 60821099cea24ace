// Command seed fills the bookings read model with demo data for local development.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"saubio/config"
	"saubio/database"
	bookingRepo "saubio/database/repository/booking"
	"saubio/models"

	"golang.org/x/crypto/bcrypt"
)

var (
	cities   = []string{"Berlin", "Hamburg", "München", "Köln", "Paris", "Lyon", "Bruxelles"}
	services = []string{"regular_cleaning", "deep_cleaning", "move_out", "window_cleaning"}
	modes    = []string{"smart_match", "manual"}
	streets  = []string{"Hauptstraße", "Rue de Rivoli", "Schillerstraße", "Avenue Louise", "Bahnhofstraße"}
)

func main() {
	clients := flag.Int("clients", 5, "number of demo clients")
	perClient := flag.Int("per-client", 6, "bookings per client")
	adminPassword := flag.String("admin-password", "", "print a bcrypt hash for ADMIN_PASSWORD_HASH and exit")
	flag.Parse()

	if *adminPassword != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*adminPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}
		fmt.Println(string(hashed))
		return
	}

	config.LoadConfig()
	database.InitDB()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	defer database.Close(ctx)

	repo, err := bookingRepo.NewMongoBookingRepo(database.DB())
	if err != nil {
		log.Fatalf("Failed to open bookings repository: %v", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now().UTC().Truncate(time.Minute)

	var bookings []models.BookingRequest
	counter := 1
	for c := 1; c <= *clients; c++ {
		clientID := fmt.Sprintf("client-%d", c)
		for i := 0; i < *perClient; i++ {
			start := now.AddDate(0, 0, rng.Intn(28)-7).Add(time.Duration(8+rng.Intn(9)) * time.Hour)
			created := start.AddDate(0, 0, -(1 + rng.Intn(10)))
			city := cities[rng.Intn(len(cities))]

			bookings = append(bookings, models.BookingRequest{
				ID:          fmt.Sprintf("demo-%04d", counter),
				ClientID:    clientID,
				ProviderIDs: []string{fmt.Sprintf("prov-%d", 1+rng.Intn(20))},
				Status:      models.BookingStatuses[rng.Intn(len(models.BookingStatuses))],
				Service:     services[rng.Intn(len(services))],
				Address: models.BookingAddress{
					StreetLine1: fmt.Sprintf("%s %d", streets[rng.Intn(len(streets))], 1+rng.Intn(120)),
					PostalCode:  fmt.Sprintf("%05d", 10000+rng.Intn(89999)),
					City:        city,
				},
				StartAt:    start,
				EndAt:      start.Add(time.Duration(2+rng.Intn(4)) * time.Hour),
				SurfacesM2: 30 + rng.Intn(150),
				Mode:       modes[rng.Intn(len(modes))],
				CreatedAt:  created,
				UpdatedAt:  created,
			})
			counter++
		}
	}

	written, err := repo.UpsertMany(ctx, bookings)
	if err != nil {
		log.Fatalf("Failed to insert bookings: %v", err)
	}
	fmt.Printf("Upserted %d demo bookings for %d clients\n", written, *clients)
}
