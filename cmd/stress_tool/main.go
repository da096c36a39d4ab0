package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"newsroom_api/pkg/loadtest"
)

// 模拟大量用户同时对同一条评论点赞/点踩，结束后校验计数：
// 每个用户最终最多有一个反应，likes + dislikes 不能超过用户数。
func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:8080", "Base URL")
		commentID = flag.String("comment", "", "Approved comment ID to react to")
		users     = flag.Int("users", 200, "Number of simulated users")
		rounds    = flag.Int("rounds", 5, "Reactions per user")
	)
	flag.Parse()

	if *commentID == "" {
		log.Fatal("-comment is required")
	}

	client := loadtest.NewClient(*baseURL, *users)
	ctx := context.Background()

	fmt.Printf("registering %d users...\n", *users)
	tokens := make([]string, 0, *users)
	suffix := time.Now().UnixNano()
	for i := 0; i < *users; i++ {
		email := fmt.Sprintf("stress-%d-%d@news.test", suffix, i)
		if _, err := client.Register(ctx, fmt.Sprintf("stress %d", i), email, "stress-pass"); err != nil {
			log.Fatalf("register %s: %v", email, err)
		}
		token, err := client.Login(ctx, email, "stress-pass")
		if err != nil {
			log.Fatalf("login %s: %v", email, err)
		}
		tokens = append(tokens, token)
	}

	fmt.Printf("start: %d users x %d reactions on comment %s\n", *users, *rounds, *commentID)

	var (
		wg        sync.WaitGroup
		failed    int64
		limited   int64
		mu        sync.Mutex
		durations = make([]time.Duration, 0, *users**rounds)
		final     = make([]string, *users)
	)

	start := time.Now()
	for i, token := range tokens {
		wg.Add(1)
		go func(idx int, token string) {
			defer wg.Done()
			kinds := []string{"like", "dislike"}
			for r := 0; r < *rounds; r++ {
				begin := time.Now()
				res, err := client.React(ctx, token, *commentID, kinds[(idx+r)%2])
				elapsed := time.Since(begin)

				mu.Lock()
				durations = append(durations, elapsed)
				mu.Unlock()

				if err != nil {
					var se *loadtest.StatusError
					if errors.As(err, &se) && se.Status == 429 {
						atomic.AddInt64(&limited, 1)
					} else {
						atomic.AddInt64(&failed, 1)
					}
					continue
				}
				if res.UserReaction != nil {
					final[idx] = *res.UserReaction
				} else {
					final[idx] = ""
				}
			}
		}(i, token)
	}
	wg.Wait()

	result := loadtest.Summarize("react", *users, time.Since(start), durations, failed+limited)
	result.Print(os.Stdout)
	fmt.Printf("rate limited: %d, failed: %d\n", limited, failed)

	var likes, dislikes int64
	for _, k := range final {
		switch k {
		case "like":
			likes++
		case "dislike":
			dislikes++
		}
	}
	fmt.Printf("client view: likes=%d dislikes=%d\n", likes, dislikes)

	// 探测请求会切换第一个用户的反应，只用它读取服务端计数
	res, err := client.React(ctx, tokens[0], *commentID, "like")
	if err != nil {
		log.Fatalf("final check: %v", err)
	}
	if res.Likes+res.Dislikes > int64(*users) {
		log.Fatalf("counts exceed users: likes=%d dislikes=%d users=%d", res.Likes, res.Dislikes, *users)
	}
	fmt.Printf("server view after probe: likes=%d dislikes=%d\n", res.Likes, res.Dislikes)
}
