package service

import (
	"time"

	"github.com/KiranSurya-SU/alumniconnect/internal/models"
	"github.com/KiranSurya-SU/alumniconnect/internal/ws"

	"gorm.io/gorm"
)

// historyLimit 每个房间的历史回看窗口。
const historyLimit = 50

// MessageService 封装消息持久化和历史查询，实现 ws.MessageStore。
type MessageService struct {
	db *gorm.DB
}

func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{db: db}
}

// Append 追加一条消息。时间戳由 ws 层在收到时刻盖好，这里原样落库。
func (s *MessageService) Append(msg ws.StoredMessage) error {
	rec := models.Message{
		RoomKey:     msg.Room,
		SenderID:    msg.SenderID,
		Text:        msg.Text,
		Attachments: msg.Attachments,
		CreatedAt:   msg.CreatedAt,
	}
	return s.db.Create(&rec).Error
}

// SenderDTO 消息发送者的展示信息。
type SenderDTO struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// MessageDTO 是对外输出的消息数据。
type MessageDTO struct {
	ID          uint      `json:"id"`
	RoomKey     string    `json:"room_key"`
	Text        string    `json:"text"`
	Attachments []string  `json:"attachments,omitempty"`
	Sender      SenderDTO `json:"sender"`
	CreatedAt   time.Time `json:"created_at"`
}

// History 返回房间最近 50 条消息，按时间升序，带发送者姓名。
func (s *MessageService) History(roomKey string) ([]MessageDTO, error) {
	var msgs []models.Message
	if err := s.db.Where("room_key = ?", roomKey).Order("id desc").Limit(historyLimit).Find(&msgs).Error; err != nil {
		return nil, err
	}

	// 反转为升序
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	// 批量获取发送者姓名
	names, err := s.resolveSenders(msgs)
	if err != nil {
		return nil, err
	}

	out := make([]MessageDTO, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, MessageDTO{
			ID:          m.ID,
			RoomKey:     m.RoomKey,
			Text:        m.Text,
			Attachments: m.Attachments,
			Sender:      SenderDTO{ID: m.SenderID, Name: names[m.SenderID]},
			CreatedAt:   m.CreatedAt,
		})
	}
	return out, nil
}

// resolveSenders 批量获取消息涉及的用户姓名。
func (s *MessageService) resolveSenders(msgs []models.Message) (map[uint]string, error) {
	seen := make(map[uint]struct{}, len(msgs))
	userIDs := make([]uint, 0, len(msgs))
	for _, m := range msgs {
		if _, ok := seen[m.SenderID]; ok {
			continue
		}
		seen[m.SenderID] = struct{}{}
		userIDs = append(userIDs, m.SenderID)
	}

	names := make(map[uint]string, len(userIDs))
	if len(userIDs) > 0 {
		var users []models.User
		if err := s.db.Select("id", "first_name", "last_name").Where("id IN ?", userIDs).Find(&users).Error; err != nil {
			return nil, err
		}
		for _, u := range users {
			names[u.ID] = u.DisplayName()
		}
	}
	return names, nil
}
