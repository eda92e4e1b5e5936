// Command devtoken prints a signed bearer token for local testing of the
// authenticated song endpoints. It signs with the same JWT_SECRET the API uses.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/melodia/service/internal/config"
	"github.com/melodia/service/internal/middleware"
)

func main() {
	sub := flag.String("sub", "", "user id to put in the token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *sub == "" {
		log.Fatal("devtoken: -sub is required")
	}

	cfg := config.Load()
	if cfg.IsProduction() {
		log.Fatal("devtoken: refusing to mint tokens with APP_ENV=production")
	}

	token, err := middleware.IssueToken(cfg.JWTSecret, *sub, *ttl)
	if err != nil {
		log.Fatalf("devtoken: %v", err)
	}
	fmt.Println(token)
}
