package service

import (
	"errors"
	"time"

	"github.com/KiranSurya-SU/alumniconnect/internal/models"

	"gorm.io/gorm"
)

// JobService 封装职位发布和申请的业务逻辑。
type JobService struct {
	db *gorm.DB
}

func NewJobService(db *gorm.DB) *JobService {
	return &JobService{db: db}
}

// JobFilter 列表过滤条件。
type JobFilter struct {
	Type    string
	Company string
}

// JobDTO 是对外输出的职位数据。
type JobDTO struct {
	models.Job
	PostedByName string `json:"posted_by_name"`
	Applicants   int    `json:"applicants"`
}

// List 返回按发布时间倒序的活跃职位。
func (s *JobService) List(f JobFilter) ([]JobDTO, error) {
	q := s.db.Where("status = ?", models.JobActive).Order("created_at desc")
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Company != "" {
		q = q.Where("LOWER(company) LIKE LOWER(?)", "%"+f.Company+"%")
	}
	var jobs []models.Job
	if err := q.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return s.decorate(jobs)
}

// Create 发布新职位，只有校友可以发，由 handler 鉴权。
func (s *JobService) Create(job models.Job) (*JobDTO, error) {
	if job.Status == "" {
		job.Status = models.JobActive
	}
	if err := s.db.Create(&job).Error; err != nil {
		return nil, err
	}
	dtos, err := s.decorate([]models.Job{job})
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}

// Get 按 ID 查询职位。
func (s *JobService) Get(id uint) (*JobDTO, error) {
	var job models.Job
	if err := s.db.First(&job, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	dtos, err := s.decorate([]models.Job{job})
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}

// Apply 学生申请职位，重复申请返回 ErrAlreadyApplied。
func (s *JobService) Apply(jobID, userID uint) error {
	var job models.Job
	if err := s.db.First(&job, jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if job.Status != models.JobActive {
		return ErrNotFound
	}
	var count int64
	if err := s.db.Model(&models.JobApplication{}).Where("job_id = ? AND user_id = ?", jobID, userID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrAlreadyApplied
	}
	app := models.JobApplication{JobID: jobID, UserID: userID, Status: "pending", AppliedAt: time.Now()}
	return s.db.Create(&app).Error
}

// decorate 批量补齐发布者姓名和申请人数。
func (s *JobService) decorate(jobs []models.Job) ([]JobDTO, error) {
	if len(jobs) == 0 {
		return []JobDTO{}, nil
	}
	posterIDs := make([]uint, 0, len(jobs))
	jobIDs := make([]uint, 0, len(jobs))
	for _, j := range jobs {
		posterIDs = append(posterIDs, j.PostedByID)
		jobIDs = append(jobIDs, j.ID)
	}
	var users []models.User
	if err := s.db.Select("id", "first_name", "last_name").Where("id IN ?", posterIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(users))
	for _, u := range users {
		names[u.ID] = u.DisplayName()
	}
	type appCount struct {
		JobID uint
		N     int
	}
	var counts []appCount
	if err := s.db.Model(&models.JobApplication{}).Select("job_id, count(*) as n").Where("job_id IN ?", jobIDs).Group("job_id").Scan(&counts).Error; err != nil {
		return nil, err
	}
	byJob := make(map[uint]int, len(counts))
	for _, c := range counts {
		byJob[c.JobID] = c.N
	}
	out := make([]JobDTO, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, JobDTO{Job: j, PostedByName: names[j.PostedByID], Applicants: byJob[j.ID]})
	}
	return out, nil
}
