package service

import (
	"errors"
	"time"

	"github.com/KiranSurya-SU/alumniconnect/internal/models"

	"gorm.io/gorm"
)

// EventService 封装活动发布与报名的业务逻辑。
type EventService struct {
	db *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{db: db}
}

// EventFilter 列表过滤条件。
type EventFilter struct {
	Status string
	Type   string
}

// EventDTO 是对外输出的活动数据。
type EventDTO struct {
	models.Event
	OrganizerName  string `json:"organizer_name"`
	Registered     int    `json:"registered"`
	AvailableSpots int    `json:"available_spots"`
}

// List 返回按日期升序的活动列表。
func (s *EventService) List(f EventFilter) ([]EventDTO, error) {
	q := s.db.Order("date asc")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	var events []models.Event
	if err := q.Find(&events).Error; err != nil {
		return nil, err
	}
	return s.decorate(events)
}

// Create 创建活动。
func (s *EventService) Create(ev models.Event) (*EventDTO, error) {
	if ev.Status == "" {
		ev.Status = models.EventUpcoming
	}
	if err := s.db.Create(&ev).Error; err != nil {
		return nil, err
	}
	dtos, err := s.decorate([]models.Event{ev})
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}

// Get 按 ID 查询活动。
func (s *EventService) Get(id uint) (*EventDTO, error) {
	var ev models.Event
	if err := s.db.First(&ev, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	dtos, err := s.decorate([]models.Event{ev})
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}

// Register 报名活动。名额满后进入候补，重复报名返回 ErrAlreadyRegistered。
func (s *EventService) Register(eventID, userID uint) (string, error) {
	var status string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var ev models.Event
		if err := tx.First(&ev, eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if ev.Status == models.EventCancelled || ev.Status == models.EventCompleted {
			return ErrNotFound
		}
		var count int64
		if err := tx.Model(&models.EventRegistration{}).Where("event_id = ? AND user_id = ? AND status <> ?", eventID, userID, "cancelled").Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyRegistered
		}
		var confirmed int64
		if err := tx.Model(&models.EventRegistration{}).Where("event_id = ? AND status = ?", eventID, "confirmed").Count(&confirmed).Error; err != nil {
			return err
		}
		status = "confirmed"
		if int(confirmed) >= ev.Capacity {
			status = "waitlisted"
		}
		reg := models.EventRegistration{EventID: eventID, UserID: userID, Status: status, RegisteredAt: time.Now()}
		return tx.Create(&reg).Error
	})
	if err != nil {
		return "", err
	}
	return status, nil
}

// decorate 批量补齐组织者姓名和报名情况。
func (s *EventService) decorate(events []models.Event) ([]EventDTO, error) {
	if len(events) == 0 {
		return []EventDTO{}, nil
	}
	organizerIDs := make([]uint, 0, len(events))
	eventIDs := make([]uint, 0, len(events))
	for _, ev := range events {
		organizerIDs = append(organizerIDs, ev.OrganizerID)
		eventIDs = append(eventIDs, ev.ID)
	}
	var users []models.User
	if err := s.db.Select("id", "first_name", "last_name").Where("id IN ?", organizerIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(users))
	for _, u := range users {
		names[u.ID] = u.DisplayName()
	}
	type regCount struct {
		EventID uint
		N       int
	}
	var counts []regCount
	if err := s.db.Model(&models.EventRegistration{}).Select("event_id, count(*) as n").Where("event_id IN ? AND status = ?", eventIDs, "confirmed").Group("event_id").Scan(&counts).Error; err != nil {
		return nil, err
	}
	byEvent := make(map[uint]int, len(counts))
	for _, c := range counts {
		byEvent[c.EventID] = c.N
	}
	out := make([]EventDTO, 0, len(events))
	for _, ev := range events {
		registered := byEvent[ev.ID]
		spots := ev.Capacity - registered
		if spots < 0 {
			spots = 0
		}
		out = append(out, EventDTO{Event: ev, OrganizerName: names[ev.OrganizerID], Registered: registered, AvailableSpots: spots})
	}
	return out, nil
}
