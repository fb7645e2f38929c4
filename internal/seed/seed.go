// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options controls how much data the seeder creates.
type Options struct {
	Users int
	Posts int
	Clean bool
}

// Run populates the database with demo users and posts.
func Run(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())

	if opts.Clean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("failed to clear data: %w", err)
		}
	}

	users, err := createUsers(db, opts.Users)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("Created %d users", len(users))

	count, err := createPosts(db, users, opts.Posts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("Created %d posts", count)

	return nil
}

func clearData(db *gorm.DB) error {
	// Posts reference users, so they go first
	if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Post{}).Error; err != nil {
		return err
	}
	return db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.User{}).Error
}

func createUsers(db *gorm.DB, n int) ([]*models.User, error) {
	// All demo accounts share one password to keep manual testing easy
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user := &models.User{
			Username: fmt.Sprintf("%s%d", gofakeit.Username(), i),
			Password: string(hashed),
		}
		if err := db.Create(user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createPosts(db *gorm.DB, users []*models.User, n int) (int, error) {
	if len(users) == 0 {
		return 0, nil
	}

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	created := 0
	for i := 0; i < n; i++ {
		author := users[r.Intn(len(users))]
		post := &models.Post{
			Title:    gofakeit.Sentence(5),
			Summary:  gofakeit.Sentence(12),
			Content:  gofakeit.Paragraph(2, 4, 8, "\n\n"),
			AuthorID: author.ID,
			// spread creation times so the front page looks lived-in
			CreatedAt: time.Now().Add(-time.Duration(r.Intn(90*24)) * time.Hour),
		}
		if err := db.Create(post).Error; err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
