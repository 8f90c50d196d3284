package main

import (
	"fmt"
	"log"
	"time"

	"homeswap-server/models"
	"homeswap-server/services"
	"homeswap-server/storage"

	"golang.org/x/crypto/bcrypt"
)

// Seeds two users with reciprocal homes and bids so a freshly migrated
// database has a proposed match to look at.
func main() {
	db := storage.InitializeDB()

	password, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	alice := models.User{FirstName: "Alice", LastName: "Jansen", Email: "alice@example.com", Password: string(password)}
	bob := models.User{FirstName: "Bob", LastName: "Visser", Email: "bob@example.com", Password: string(password)}
	if err := db.Create(&alice).Error; err != nil {
		log.Fatalf("Error seeding users: %v", err)
	}
	if err := db.Create(&bob).Error; err != nil {
		log.Fatalf("Error seeding users: %v", err)
	}

	from := time.Now().AddDate(0, 1, 0)
	to := from.AddDate(0, 3, 0)

	homes := []models.Home{
		{OwnerID: alice.ID, Title: "Canal-side apartment", Location: "Amsterdam", RoomCount: 3, AvailableFrom: from, AvailableTo: to},
		{OwnerID: bob.ID, Title: "Harbour loft", Location: "Rotterdam", RoomCount: 2, AvailableFrom: from, AvailableTo: to},
	}
	for i := range homes {
		if err := db.Create(&homes[i]).Error; err != nil {
			log.Fatalf("Error seeding homes: %v", err)
		}
	}

	swapService := services.NewSwapService(services.NewGormSwapStore(db), nil)

	start := time.Now().AddDate(0, 1, 7)
	if _, err := swapService.SubmitBid(alice.ID, "Rotterdam", start, start.AddDate(0, 0, 9)); err != nil {
		log.Fatalf("Error seeding bid: %v", err)
	}
	if _, err := swapService.SubmitBid(bob.ID, "Amsterdam", start.AddDate(0, 0, 4), start.AddDate(0, 0, 14)); err != nil {
		log.Fatalf("Error seeding bid: %v", err)
	}

	fmt.Println("Demo data seeded successfully!")
}
