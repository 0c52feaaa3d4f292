package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/brightkatongo/learn-hub/internal/config"
	"github.com/brightkatongo/learn-hub/internal/models"
	mongorepo "github.com/brightkatongo/learn-hub/internal/repositories/mongodb"
	"github.com/brightkatongo/learn-hub/pkg/mongodb"
)

// Seeds the mobile money provider directory. Safe to re-run: existing
// providers are left as-is.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	mongoURI := config.GetEnv("MONGODB_URI", "mongodb://localhost:27017")
	dbName := config.GetEnv("MONGODB_DATABASE", "learnhub")

	client, err := mongodb.NewClient(mongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(dbName)
	repo := mongorepo.NewProviderRepository(db)

	timeout := config.GetEnvAsInt("SEED_TIMEOUT_SECONDS", 30)
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	// SEED_ONLY=airtel,mtn restricts the run to a subset of providers.
	only := config.GetEnvAsSlice("SEED_ONLY", ",", nil)

	providers := []*models.Provider{
		{
			Name:          models.ProviderAirtel,
			DisplayName:   "Airtel Money",
			UssdCode:      "*778#",
			MerchantCode:  "LEARNHUB001",
			PhonePrefixes: []string{"097", "096", "095"},
			Instructions:  "Dial *778#, select Make Payments, then Merchant Payment.",
			IsActive:      true,
		},
		{
			Name:           models.ProviderZamtel,
			DisplayName:    "Zamtel Kwacha",
			UssdCode:       "*776#",
			BusinessNumber: "2001",
			PhonePrefixes:  []string{"095", "094"},
			Instructions:   "Dial *776#, select Payments, then Business Payment.",
			IsActive:       true,
		},
		{
			Name:          models.ProviderMTN,
			DisplayName:   "MTN Mobile Money",
			UssdCode:      "*175#",
			PayeeCode:     "LEARN001",
			PhonePrefixes: []string{"096", "097", "098"},
			Instructions:  "Dial *175#, select Pay Bill, then enter the payee code.",
			IsActive:      true,
		},
	}

	for _, provider := range providers {
		if len(only) > 0 && !containsName(only, provider.Name) {
			log.Printf("Provider %s not in SEED_ONLY, skipped", provider.Name)
			continue
		}
		created, err := repo.Upsert(ctx, provider)
		if err != nil {
			log.Fatalf("Failed to seed provider %s: %v", provider.Name, err)
		}
		if created {
			log.Printf("Created provider %s", provider.Name)
		} else {
			log.Printf("Provider %s already exists, skipped", provider.Name)
		}
	}

	log.Println("Provider seeding complete")
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(strings.TrimSpace(n), name) {
			return true
		}
	}
	return false
}
