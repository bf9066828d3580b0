package seed

import (
	"fmt"
	"log"

	"quill/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumGroups   int
	NumPosts    int
	ShouldClean bool
}

// Run populates the database with a demo data set: users, groups, posts
// spread across groups and time, comments, and a follow mesh.
func Run(db *gorm.DB, opts Options) error {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 20
	}
	if opts.NumGroups <= 0 {
		opts.NumGroups = 5
	}
	if opts.NumPosts <= 0 {
		opts.NumPosts = 200
	}

	if opts.ShouldClean {
		if err := Clean(db); err != nil {
			return fmt.Errorf("clean: %w", err)
		}
	}

	factory := NewFactory(db)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("seeded %d users", len(users))

	groups := make([]*models.Group, 0, opts.NumGroups)
	for i := 0; i < opts.NumGroups; i++ {
		group, err := factory.CreateGroup()
		if err != nil {
			return fmt.Errorf("create group: %w", err)
		}
		groups = append(groups, group)
	}
	log.Printf("seeded %d groups", len(groups))

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[factory.rng.Intn(len(users))]
		var group *models.Group
		// Roughly a third of posts stay ungrouped.
		if factory.rng.Intn(3) != 0 {
			group = groups[factory.rng.Intn(len(groups))]
		}
		posts = append(posts, factory.BuildPost(author, group, 90))
	}
	if err := factory.CreatePostsBatch(posts); err != nil {
		return fmt.Errorf("create posts: %w", err)
	}
	log.Printf("seeded %d posts", len(posts))

	comments := 0
	for _, post := range posts {
		for i := factory.rng.Intn(4); i > 0; i-- {
			commenter := users[factory.rng.Intn(len(users))]
			if _, err := factory.CreateComment(post, commenter); err != nil {
				return fmt.Errorf("create comment: %w", err)
			}
			comments++
		}
	}
	log.Printf("seeded %d comments", comments)

	follows := 0
	for _, user := range users {
		for i := factory.rng.Intn(len(users)/2 + 1); i > 0; i-- {
			author := users[factory.rng.Intn(len(users))]
			if err := factory.CreateFollow(user, author); err != nil {
				return fmt.Errorf("create follow: %w", err)
			}
			follows++
		}
	}
	log.Printf("seeded %d follow edges", follows)

	return nil
}

// Clean removes all seeded content. Order matters for the FK constraints.
func Clean(db *gorm.DB) error {
	for _, stmt := range []string{
		"DELETE FROM comments",
		"DELETE FROM follows",
		"DELETE FROM posts",
		"DELETE FROM groups",
		"DELETE FROM users",
	} {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
