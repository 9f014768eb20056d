package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/KiranSurya-SU/alumniconnect/internal/models"

	"gorm.io/gorm"
)

// MentoringService 封装导师辅导会话的业务逻辑。
// 每个会话对应一个聊天房间，key 为 mentoring-<sessionID>。
type MentoringService struct {
	db *gorm.DB
}

func NewMentoringService(db *gorm.DB) *MentoringService {
	return &MentoringService{db: db}
}

// RoomKey 返回会话对应的聊天房间 key。
func RoomKey(sessionID uint) string {
	return fmt.Sprintf("mentoring-%d", sessionID)
}

// ScheduleInput 预约一次辅导会话所需的数据。
type ScheduleInput struct {
	MentorID  uint
	StudentID uint
	Date      time.Time
	Time      string
	Duration  int
	Topic     string
}

// SessionDTO 是对外输出的会话数据。
type SessionDTO struct {
	ID          uint      `json:"id"`
	MentorID    uint      `json:"mentor_id"`
	MentorName  string    `json:"mentor_name"`
	StudentID   uint      `json:"student_id"`
	StudentName string    `json:"student_name"`
	Date        time.Time `json:"date"`
	Time        string    `json:"time"`
	Duration    int       `json:"duration"`
	Topic       string    `json:"topic"`
	Status      string    `json:"status"`
	RoomKey     string    `json:"room_key"`
}

// Schedule 创建会话并返回对应的房间 key。只有校友可以发起，由 handler 鉴权。
func (s *MentoringService) Schedule(in ScheduleInput) (*SessionDTO, error) {
	var student models.User
	if err := s.db.First(&student, in.StudentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if in.Duration <= 0 {
		in.Duration = 60
	}
	session := models.MentoringSession{
		MentorID:  in.MentorID,
		StudentID: in.StudentID,
		Date:      in.Date,
		Time:      in.Time,
		Duration:  in.Duration,
		Topic:     in.Topic,
		Status:    models.SessionScheduled,
	}
	if err := s.db.Create(&session).Error; err != nil {
		return nil, err
	}
	return s.toDTO(session)
}

// ListForUser 按角色列出会话：校友看自己带的，学生看自己约的。
func (s *MentoringService) ListForUser(user models.User) ([]SessionDTO, error) {
	q := s.db.Order("date asc, time asc")
	if user.Role == models.RoleAlumni {
		q = q.Where("mentor_id = ?", user.ID)
	} else {
		q = q.Where("student_id = ?", user.ID)
	}
	var sessions []models.MentoringSession
	if err := q.Find(&sessions).Error; err != nil {
		return nil, err
	}
	out := make([]SessionDTO, 0, len(sessions))
	for _, sess := range sessions {
		dto, err := s.toDTO(sess)
		if err != nil {
			return nil, err
		}
		out = append(out, *dto)
	}
	return out, nil
}

// UpdateStatus 只有会话双方可以改状态。
func (s *MentoringService) UpdateStatus(sessionID, userID uint, status string) error {
	if status != models.SessionScheduled && status != models.SessionCompleted && status != models.SessionCancelled {
		return ErrNotFound
	}
	var session models.MentoringSession
	if err := s.db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if session.MentorID != userID && session.StudentID != userID {
		return ErrForbidden
	}
	return s.db.Model(&session).Update("status", status).Error
}

func (s *MentoringService) toDTO(sess models.MentoringSession) (*SessionDTO, error) {
	var users []models.User
	if err := s.db.Select("id", "first_name", "last_name").Where("id IN ?", []uint{sess.MentorID, sess.StudentID}).Find(&users).Error; err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(users))
	for _, u := range users {
		names[u.ID] = u.DisplayName()
	}
	return &SessionDTO{
		ID:          sess.ID,
		MentorID:    sess.MentorID,
		MentorName:  names[sess.MentorID],
		StudentID:   sess.StudentID,
		StudentName: names[sess.StudentID],
		Date:        sess.Date,
		Time:        sess.Time,
		Duration:    sess.Duration,
		Topic:       sess.Topic,
		Status:      sess.Status,
		RoomKey:     RoomKey(sess.ID),
	}, nil
}
