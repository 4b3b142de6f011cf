package services

import (
	"fmt"
	"testing"

	"github.com/ekinyalgin/curiora/internal/db"
	"github.com/ekinyalgin/curiora/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB gives each test an isolated in-memory database with the
// full schema. A single connection keeps sqlite's :memory: databases
// from splitting across the pool.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return conn
}

var userSeq int

func seedUser(t *testing.T, conn *gorm.DB, role string) *models.User {
	t.Helper()
	userSeq++
	user := models.User{
		Username: fmt.Sprintf("user%d", userSeq),
		Email:    fmt.Sprintf("user%d@example.com", userSeq),
		Password: "x",
		Role:     role,
	}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &user
}

func seedPost(t *testing.T, conn *gorm.DB, author *models.User) *models.Post {
	t.Helper()
	category := models.Category{Name: fmt.Sprintf("cat%d", userSeq)}
	userSeq++
	if err := conn.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	post := models.Post{
		Pid:        fmt.Sprintf("pid%05d", userSeq),
		UserID:     author.ID,
		CategoryID: category.ID,
		Title:      "A post",
		Content:    "Body",
	}
	if err := conn.Create(&post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return &post
}
