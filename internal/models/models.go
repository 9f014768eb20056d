package models

import "time"

// 角色常量，和前端保持一致。
const (
	RoleStudent = "student"
	RoleAlumni  = "alumni"
)

type User struct {
	ID             uint     `gorm:"primaryKey"`
	Email          string   `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash   string   `gorm:"not null"`
	Role           string   `gorm:"size:16;not null"`
	FirstName      string   `gorm:"size:64;not null"`
	LastName       string   `gorm:"size:64;not null"`
	GraduationYear int      `gorm:"not null"`
	Department     string   `gorm:"size:128;not null"`
	CurrentCompany string   `gorm:"size:128"`
	Designation    string   `gorm:"size:128"`
	Location       string   `gorm:"size:128"`
	Bio            string   `gorm:"type:text"`
	Skills         []string `gorm:"serializer:json"`
	IsVerified     bool
	LastLogin      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DisplayName 返回聊天和列表里展示用的姓名。
func (u User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index;not null"`
	Token     string    `gorm:"uniqueIndex;size:128;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Message 按房间 key 存储，房间本身不落库（见 ws 包）。
type Message struct {
	ID          uint     `gorm:"primaryKey"`
	RoomKey     string   `gorm:"index:idx_msg_room_key;size:128;not null"`
	SenderID    uint     `gorm:"index;not null"`
	Text        string   `gorm:"type:text;not null"`
	Attachments []string `gorm:"serializer:json"`
	CreatedAt   time.Time
}

const (
	SessionScheduled = "scheduled"
	SessionCompleted = "completed"
	SessionCancelled = "cancelled"
)

type MentoringSession struct {
	ID        uint      `gorm:"primaryKey"`
	MentorID  uint      `gorm:"index:idx_session_mentor;not null"`
	StudentID uint      `gorm:"index:idx_session_student;not null"`
	Date      time.Time `gorm:"not null"`
	Time      string    `gorm:"size:16;not null"`
	Duration  int       `gorm:"default:60"`
	Topic     string    `gorm:"size:256;not null"`
	Status    string    `gorm:"size:16;default:scheduled"`
	Notes     string    `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	JobActive = "active"
	JobClosed = "closed"
)

type Job struct {
	ID                  uint     `gorm:"primaryKey"`
	Title               string   `gorm:"size:256;not null"`
	Company             string   `gorm:"size:128;not null"`
	Location            string   `gorm:"size:128;not null"`
	Type                string   `gorm:"size:32;not null"` // Full-time, Part-time, Contract, Internship
	Description         string   `gorm:"type:text;not null"`
	Requirements        []string `gorm:"serializer:json"`
	Responsibilities    []string `gorm:"serializer:json"`
	Experience          string   `gorm:"size:128"`
	Salary              string   `gorm:"size:64"`
	PostedByID          uint     `gorm:"index;not null"`
	ApplicationDeadline time.Time
	Status              string `gorm:"size:16;default:active"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type JobApplication struct {
	ID        uint   `gorm:"primaryKey"`
	JobID     uint   `gorm:"uniqueIndex:idx_app_job_user;not null"`
	UserID    uint   `gorm:"uniqueIndex:idx_app_job_user;not null"`
	Status    string `gorm:"size:16;default:pending"` // pending, reviewed, shortlisted, rejected
	AppliedAt time.Time
}

const (
	EventUpcoming  = "upcoming"
	EventOngoing   = "ongoing"
	EventCompleted = "completed"
	EventCancelled = "cancelled"
)

type Event struct {
	ID          uint      `gorm:"primaryKey"`
	Title       string    `gorm:"size:256;not null"`
	Description string    `gorm:"type:text;not null"`
	Type        string    `gorm:"size:32;not null"` // webinar, workshop, meetup, conference, other
	Date        time.Time `gorm:"index;not null"`
	StartTime   string    `gorm:"size:16;not null"`
	EndTime     string    `gorm:"size:16;not null"`
	Location    string    `gorm:"size:256;not null"`
	IsVirtual   bool
	MeetingLink string   `gorm:"size:512"`
	OrganizerID uint     `gorm:"index;not null"`
	Capacity    int      `gorm:"not null"`
	Tags        []string `gorm:"serializer:json"`
	Status      string   `gorm:"size:16;default:upcoming"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type EventRegistration struct {
	ID           uint   `gorm:"primaryKey"`
	EventID      uint   `gorm:"index:idx_reg_event_user;not null"`
	UserID       uint   `gorm:"index:idx_reg_event_user;not null"`
	Status       string `gorm:"size:16;default:confirmed"` // confirmed, waitlisted, cancelled
	RegisteredAt time.Time
}

type ForumPost struct {
	ID        uint     `gorm:"primaryKey"`
	Title     string   `gorm:"size:256;not null"`
	Content   string   `gorm:"type:text;not null"`
	AuthorID  uint     `gorm:"index;not null"`
	Category  string   `gorm:"size:32;not null"` // general, academic, career, technology, events, other
	Tags      []string `gorm:"serializer:json"`
	Likes     []uint   `gorm:"serializer:json"`
	Views     int      `gorm:"default:0"`
	Status    string   `gorm:"size:16;default:active"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ForumComment struct {
	ID        uint   `gorm:"primaryKey"`
	PostID    uint   `gorm:"index;not null"`
	AuthorID  uint   `gorm:"index;not null"`
	Content   string `gorm:"type:text;not null"`
	Likes     []uint `gorm:"serializer:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
