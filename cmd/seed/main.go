package main

import (
	"log"
	"os"

	"hearth-chat-be/internal/model"
	"hearth-chat-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Seeding Default Rooms...")

	rooms := []model.Room{
		{Name: "로비", RoomType: model.RoomTypePublic, IsPublic: true, IsActive: true},
		{Name: "AI 상담실", RoomType: model.RoomTypeAI, IsPublic: true, IsActive: true, AIProvider: "gemini", AIModel: "gemini-1.5-flash"},
		{Name: "Lily 테스트", RoomType: model.RoomTypeAI, IsPublic: true, IsActive: true, AIProvider: "lily"},
	}

	for _, r := range rooms {
		// Check if a room with this name already exists
		var existing model.Room
		if err := db.Where("name = ?", r.Name).First(&existing).Error; err == nil {
			log.Printf("Room '%s' already exists, skipping...", r.Name)
			continue
		}

		if err := db.Create(&r).Error; err != nil {
			log.Printf("Error creating room '%s': %v", r.Name, err)
		} else {
			log.Printf("Created room: %s (#%d)", r.Name, r.ID)
		}
	}

	log.Println("Room seeding completed!")
}
