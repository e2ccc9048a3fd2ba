// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"ripple/internal/models"
	"ripple/internal/social"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers       int
	NumPosts       int
	FollowsPerUser int
	ShouldClean    bool
}

// Seeder populates the relational store and the follow graph with fake but
// plausible data.
type Seeder struct {
	db     *gorm.DB
	social *social.Service
	rng    *rand.Rand
}

// NewSeeder builds a seeder. The social service may be nil, in which case
// only relational data is produced.
func NewSeeder(db *gorm.DB, socialService *social.Service) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:     db,
		social: socialService,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run executes the full seeding pass.
func (s *Seeder) Run(ctx context.Context, opts Options) error {
	log.Printf("Seeding %d users, %d posts, ~%d follows per user...",
		opts.NumUsers, opts.NumPosts, opts.FollowsPerUser)

	if opts.ShouldClean {
		if err := s.clear(); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	users, err := s.createUsers(ctx, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("created %d users", len(users))

	posts, err := s.createPosts(users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("created %d posts", len(posts))

	if err := s.createEngagement(users, posts); err != nil {
		return fmt.Errorf("failed to create engagement: %w", err)
	}

	if s.social != nil {
		if err := s.createFollows(ctx, users, opts.FollowsPerUser); err != nil {
			return fmt.Errorf("failed to create follow graph: %w", err)
		}
		log.Println("follow graph created")
	}

	return nil
}

func (s *Seeder) clear() error {
	return s.db.Exec("TRUNCATE TABLE likes, comments, posts, users CASCADE").Error
}

func (s *Seeder) createUsers(ctx context.Context, n int) ([]models.User, error) {
	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		user := models.User{
			ID:          uuid.NewString(),
			DisplayName: gofakeit.Name(),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		// Mirror the user into the graph so follows have nodes to attach to.
		if s.social != nil {
			if err := s.social.CreateOrUpdateUser(ctx, user.ID, user.DisplayName); err != nil {
				return nil, err
			}
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) createPosts(users []models.User, n int) ([]models.Post, error) {
	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[s.rng.Intn(len(users))]
		post := models.Post{
			ID:       uuid.NewString(),
			AuthorID: author.ID,
			Content:  gofakeit.Paragraph(1, 3, 12, "\n"),
			// Spread creation over the last week so recency scoring has range.
			CreatedAt: time.Now().Add(-time.Duration(s.rng.Intn(7*24)) * time.Hour),
		}
		if err := s.db.Create(&post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *Seeder) createEngagement(users []models.User, posts []models.Post) error {
	for _, post := range posts {
		for _, user := range users {
			if s.rng.Float64() > 0.15 {
				continue
			}
			like := models.Like{PostID: post.ID, UserID: user.ID}
			if err := s.db.Create(&like).Error; err != nil {
				return err
			}
		}
		for i := 0; i < s.rng.Intn(4); i++ {
			comment := models.Comment{
				ID:       uuid.NewString(),
				PostID:   post.ID,
				AuthorID: users[s.rng.Intn(len(users))].ID,
				Content:  gofakeit.Sentence(8),
			}
			if err := s.db.Create(&comment).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// createFollows wires a loose mesh: every user follows a handful of random
// others through the social service, so graph invariants (no self-follows,
// single edge per pair) hold for seeded data too.
func (s *Seeder) createFollows(ctx context.Context, users []models.User, perUser int) error {
	if perUser <= 0 {
		perUser = 5
	}
	for _, user := range users {
		for i := 0; i < perUser; i++ {
			target := users[s.rng.Intn(len(users))]
			if target.ID == user.ID {
				continue
			}
			if _, err := s.social.Follow(ctx, user.ID, target.ID); err != nil {
				return err
			}
		}
	}
	return nil
}
