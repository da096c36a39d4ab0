package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"newsroom_api/pkg/loadtest"
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:8080", "Base URL for testing")
		newsID      = flag.String("news", "", "News ID used by the comment listing scenario")
		concurrency = flag.Int("concurrency", 50, "Concurrent workers")
		duration    = flag.Duration("duration", 30*time.Second, "Duration of each scenario")
		testType    = flag.String("type", "all", "Scenario: health, news, comments, mixed, all")
	)
	flag.Parse()

	client := loadtest.NewClient(*baseURL, *concurrency)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err := client.Health(ctx)
	cancel()
	if err != nil {
		log.Fatalf("server not available at %s: %v", *baseURL, err)
	}

	health := func(ctx context.Context) error { return client.Health(ctx) }
	news := func(ctx context.Context) error { return client.ListNews(ctx, 1) }
	comments := func(ctx context.Context) error { return client.ListComments(ctx, *newsID) }

	scenarios := map[string][]loadtest.RequestFunc{
		"health":   {health},
		"news":     {news},
		"comments": {comments},
		"mixed":    {news, comments, news, health},
	}
	order := []string{"health", "news", "comments", "mixed"}

	if *testType != "all" {
		if _, ok := scenarios[*testType]; !ok {
			fmt.Fprintf(os.Stderr, "unknown scenario: %s\n", *testType)
			flag.Usage()
			os.Exit(1)
		}
		order = []string{*testType}
	}

	for _, name := range order {
		if (name == "comments" || name == "mixed") && *newsID == "" {
			fmt.Printf("skip %s: -news is required\n", name)
			continue
		}
		runner := loadtest.NewRunner(name, *concurrency, *duration)
		for _, req := range scenarios[name] {
			runner.AddRequest(req)
		}
		runner.Run(context.Background()).Print(os.Stdout)
	}
}
