package service

import (
	"strings"
	"testing"

	"github.com/KiranSurya-SU/alumniconnect/internal/db"
	"github.com/KiranSurya-SU/alumniconnect/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB 打开一个内存 sqlite 并迁移全部表结构。
// 连接池限制为 1，避免 :memory: 在多连接下各自为政。
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

// seedUser 直接落库一个用户，绕过注册流程。
func seedUser(t *testing.T, gdb *gorm.DB, role, first, last string) models.User {
	t.Helper()
	user := models.User{
		Email:          strings.ToLower(first) + "." + strings.ToLower(last) + "@example.edu",
		PasswordHash:   "x",
		Role:           role,
		FirstName:      first,
		LastName:       last,
		GraduationYear: 2020,
		Department:     "CSE",
	}
	require.NoError(t, gdb.Create(&user).Error)
	return user
}
