package main

import (
	"log"

	"github.com/productbazar/bazar/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ bazar failed to start: %v", err)
	}
}
