package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"smartagri/client"
	"smartagri/models"
	"smartagri/pipeline"
	"smartagri/series"

	"github.com/joho/godotenv"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: pricecheck [options]")
	flag.PrintDefaults()
}

var (
	gateway  = flag.String("gateway", "", "gateway base `url` (default $GATEWAY_URL or http://localhost:3001)")
	crop     = flag.String("crop", "Rice", "crop name")
	state    = flag.String("state", "", "optional state filter")
	district = flag.String("district", "", "optional district filter")
	days     = flag.Int("days", 30, "number of days")
	token    = flag.String("token", "", "bearer token (default $GATEWAY_TOKEN)")
	trend    = flag.String("trend", string(series.PolicyHalfMean), "trend policy: halfmean or endpoint")
	expand   = flag.Bool("expand-single", true, "expand a single-day result over the whole window")
	timeout  = flag.Duration("timeout", client.DefaultTimeout, "request timeout")
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using environment variables directly")
	}

	flag.Usage = usage
	flag.Parse()

	policy, err := series.ParseTrendPolicy(*trend)
	if err != nil {
		log.Fatal(err)
	}

	base := *gateway
	if base == "" {
		base = os.Getenv("GATEWAY_URL")
	}
	if base == "" {
		base = "http://localhost:3001"
	}
	tok := *token
	if tok == "" {
		tok = os.Getenv("GATEWAY_TOKEN")
	}

	c := client.New(base, tok)
	c.Timeout = *timeout

	p := pipeline.New(c, nil, pipeline.Options{Policy: policy, ExpandSingle: *expand})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout+time.Second)
	defer cancel()

	res, err := p.Run(ctx, models.SeriesQuery{Crop: *crop, State: *state, District: *district, Days: *days})
	if err != nil {
		log.Fatal(err)
	}
	if res.Fallback {
		log.Printf("%s", res.Notice)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		log.Fatalf("encode result: %v", err)
	}
}
