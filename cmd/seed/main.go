// Command main seeds a Quilog store with generated profiles, posts, likes
// and comments.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"quilog/internal/bootstrap"
	"quilog/internal/config"
	"quilog/internal/seed"
)

func main() {
	opts := seed.Options{}
	flag.IntVar(&opts.Users, "users", 50, "Number of users to create")
	flag.IntVar(&opts.Posts, "posts", 200, "Number of posts to create")
	flag.IntVar(&opts.MaxLikes, "max-likes", 20, "Upper bound of likes per post")
	flag.IntVar(&opts.MaxComments, "max-comments", 8, "Upper bound of comments per post")
	flag.IntVar(&opts.Orphans, "orphans", 0, "Comment documents to write without linking them to a post")
	flag.IntVar(&opts.MaxDays, "days", 90, "How many days back post timestamps reach")
	flag.Int64Var(&opts.Seed, "seed", 0, "Random seed (0 picks one)")
	flag.Parse()

	log.Printf("Target: %d users, %d posts, seed=%d", opts.Users, opts.Posts, opts.Seed)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	store, err := bootstrap.OpenStore(ctx, cfg, bootstrap.Options{EnsureIndexes: true})
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	sum, err := seed.NewSeeder(store, opts).Run(ctx)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded %d users, %d posts, %d likes, %d comments, %d orphans",
		sum.Users, sum.Posts, sum.Likes, sum.Comments, sum.Orphans)
}
