// Command seed fills a development database with fake clients, providers,
// and appointments.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	var (
		clients   = flag.Int("clients", 20, "number of client users to create")
		providers = flag.Int("providers", 5, "number of provider users to create")
		bookings  = flag.Int("bookings", 50, "number of appointments to create")
		seed      = flag.Uint64("seed", 0, "fake data seed (0 = random)")
	)
	flag.Parse()

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	faker := gofakeit.New(*seed)
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	clientIDs, err := insertUsers(ctx, pool, faker, *clients, false)
	if err != nil {
		log.Fatalf("seed clients: %v", err)
	}
	providerIDs, err := insertUsers(ctx, pool, faker, *providers, true)
	if err != nil {
		log.Fatalf("seed providers: %v", err)
	}
	log.Printf("created %d clients and %d providers", len(clientIDs), len(providerIDs))

	created := 0
	for i := 0; i < *bookings; i++ {
		clientID := clientIDs[faker.Number(0, len(clientIDs)-1)]
		providerID := providerIDs[faker.Number(0, len(providerIDs)-1)]
		// Business hours within the next two weeks, on the hour.
		day := faker.Number(1, 14)
		hour := faker.Number(8, 17)
		date := time.Now().UTC().AddDate(0, 0, day)
		date = time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, time.UTC)

		tag, err := pool.Exec(ctx, `
			INSERT INTO appointments (user_id, provider_id, date)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING
		`, clientID, providerID, date)
		if err != nil {
			log.Fatalf("seed appointment: %v", err)
		}
		created += int(tag.RowsAffected())
	}
	log.Printf("created %d appointments", created)
}

func insertUsers(ctx context.Context, pool *pgxpool.Pool, faker *gofakeit.Faker, count int, provider bool) ([]int64, error) {
	ids := make([]int64, 0, count)
	for i := 0; i < count; i++ {
		var id int64
		err := pool.QueryRow(ctx, `
			INSERT INTO users (name, email, avatar_url, provider)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, faker.Name(), faker.Email(), faker.ImageURL(200, 200), provider).Scan(&id)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
