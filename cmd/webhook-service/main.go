package main

import (
	"log"

	"github.com/robotson/iyb-printful-webhook/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		log.Fatalf("webhook service failed: %v", err)
	}
}
