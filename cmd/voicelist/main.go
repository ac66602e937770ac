package main

import (
	"log"

	"github.com/MrSnakeDoc/voicelist/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ voicelist failed to start: %v", err)
	}
}
