package auth

import (
	"errors"
	"testing"

	"github.com/KiranSurya-SU/alumniconnect/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func verifierTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := gdb.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func TestTokenVerifier_Verify(t *testing.T) {
	gdb := verifierTestDB(t)
	user := models.User{Email: "alice@example.edu", PasswordHash: "x", Role: models.RoleStudent, FirstName: "Alice", LastName: "Adams", GraduationYear: 2026, Department: "CSE"}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	v := NewTokenVerifier(gdb, "secret")

	token, err := GenerateAccessToken(user.ID, "secret", 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	ident, err := v.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if ident.ID != user.ID {
		t.Errorf("Verify() ID = %d, want %d", ident.ID, user.ID)
	}
	if ident.Name != "Alice Adams" {
		t.Errorf("Verify() Name = %q, want %q", ident.Name, "Alice Adams")
	}
}

func TestTokenVerifier_VerifyRejects(t *testing.T) {
	gdb := verifierTestDB(t)
	v := NewTokenVerifier(gdb, "secret")

	wrongKey, _ := GenerateAccessToken(1, "other-secret", 15)
	expired, _ := GenerateAccessToken(1, "secret", -1)
	// 签名有效但用户不在库里
	orphan, _ := GenerateAccessToken(42, "secret", 15)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"wrong key", wrongKey},
		{"expired", expired},
		{"unknown user", orphan},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.Verify(tt.token); !errors.Is(err, ErrAuthentication) {
				t.Errorf("Verify(%s) error = %v, want ErrAuthentication", tt.name, err)
			}
		})
	}
}
