package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/KiranSurya-SU/alumniconnect/internal/auth"
	"github.com/KiranSurya-SU/alumniconnect/internal/models"
	"github.com/KiranSurya-SU/alumniconnect/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Handler 聚合所有 HTTP handler，依赖注入 service 层。
type Handler struct {
	userSvc      *service.UserService
	msgSvc       *service.MessageService
	mentoringSvc *service.MentoringService
	jobSvc       *service.JobService
	eventSvc     *service.EventService
	forumSvc     *service.ForumService
}

func NewHandler(userSvc *service.UserService, msgSvc *service.MessageService, mentoringSvc *service.MentoringService, jobSvc *service.JobService, eventSvc *service.EventService, forumSvc *service.ForumService) *Handler {
	return &Handler{
		userSvc:      userSvc,
		msgSvc:       msgSvc,
		mentoringSvc: mentoringSvc,
		jobSvc:       jobSvc,
		eventSvc:     eventSvc,
		forumSvc:     forumSvc,
	}
}

// Register 处理用户注册请求。
func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Email          string `json:"email"`
		Password       string `json:"password"`
		Role           string `json:"role"`
		FirstName      string `json:"firstName"`
		LastName       string `json:"lastName"`
		GraduationYear int    `json:"graduationYear"`
		Department     string `json:"department"`
		CurrentCompany string `json:"currentCompany"`
		Designation    string `json:"designation"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" || req.Department == "" || req.GraduationYear == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if req.Role != models.RoleStudent && req.Role != models.RoleAlumni {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}
	if req.Role == models.RoleAlumni && (req.CurrentCompany == "" || req.Designation == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "company and designation required for alumni"})
		return
	}
	if len(req.Password) < 4 || len(req.Password) > 128 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid password"})
		return
	}
	result, err := h.userSvc.Register(service.RegisterInput{
		Email:          req.Email,
		Password:       req.Password,
		Role:           req.Role,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		GraduationYear: req.GraduationYear,
		Department:     req.Department,
		CurrentCompany: req.CurrentCompany,
		Designation:    req.Designation,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email taken"})
			return
		}
		log.Error().Err(err).Str("email", req.Email).Msg("register")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Login 处理用户登录请求。
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	result, err := h.userSvc.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		log.Error().Err(err).Str("email", req.Email).Msg("login")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"user": gin.H{
			"id":    result.User.ID,
			"email": result.User.Email,
			"name":  result.User.DisplayName(),
			"role":  result.User.Role,
		},
	})
}

// RefreshToken 处理 token 刷新请求。
func (h *Handler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	result, err := h.userSvc.RefreshTokens(req.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("refresh token")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": result.AccessToken, "refresh_token": result.RefreshToken})
}

// RoomMessages 返回房间最近 50 条消息，升序，带发送者姓名。
func (h *Handler) RoomMessages(c *gin.Context) {
	roomKey := c.Param("roomId")
	if roomKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room"})
		return
	}
	msgs, err := h.msgSvc.History(roomKey)
	if err != nil {
		log.Error().Err(err).Str("room", roomKey).Msg("list messages")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// ScheduleMentoring 校友发起辅导会话，返回会话和聊天房间 key。
func (h *Handler) ScheduleMentoring(c *gin.Context) {
	var req struct {
		StudentID uint   `json:"studentId"`
		Date      string `json:"date"`
		Time      string `json:"time"`
		Duration  int    `json:"duration"`
		Topic     string `json:"topic"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.StudentID == 0 || req.Topic == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}
	session, err := h.mentoringSvc.Schedule(service.ScheduleInput{
		MentorID:  auth.GetUserID(c),
		StudentID: req.StudentID,
		Date:      date,
		Time:      req.Time,
		Duration:  req.Duration,
		Topic:     req.Topic,
	})
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
			return
		}
		log.Error().Err(err).Uint("mentor_id", auth.GetUserID(c)).Msg("schedule mentoring")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to schedule session"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": session, "roomId": session.RoomKey})
}

// ListMentoringSessions 按角色列出当前用户的辅导会话。
func (h *Handler) ListMentoringSessions(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	sessions, err := h.mentoringSvc.ListForUser(user)
	if err != nil {
		log.Error().Err(err).Uint("user_id", user.ID).Msg("list mentoring sessions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sessions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// UpdateMentoringStatus 会话双方更新状态。
func (h *Handler) UpdateMentoringStatus(c *gin.Context) {
	sessionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || sessionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	err = h.mentoringSvc.UpdateStatus(uint(sessionID), auth.GetUserID(c), req.Status)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": req.Status})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	default:
		log.Error().Err(err).Int("session_id", sessionID).Msg("update mentoring status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update session"})
	}
}

// ListJobs 返回活跃职位，可按类型和公司过滤。
func (h *Handler) ListJobs(c *gin.Context) {
	jobs, err := h.jobSvc.List(service.JobFilter{Type: c.Query("type"), Company: c.Query("company")})
	if err != nil {
		log.Error().Err(err).Msg("list jobs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list jobs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// CreateJob 校友发布职位。
func (h *Handler) CreateJob(c *gin.Context) {
	var req struct {
		Title               string   `json:"title"`
		Company             string   `json:"company"`
		Location            string   `json:"location"`
		Type                string   `json:"type"`
		Description         string   `json:"description"`
		Requirements        []string `json:"requirements"`
		Responsibilities    []string `json:"responsibilities"`
		Experience          string   `json:"experience"`
		Salary              string   `json:"salary"`
		ApplicationDeadline string   `json:"applicationDeadline"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if req.Title == "" || req.Company == "" || req.Location == "" || req.Type == "" || req.Description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	deadline, err := time.Parse("2006-01-02", req.ApplicationDeadline)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deadline"})
		return
	}
	job, err := h.jobSvc.Create(models.Job{
		Title:               req.Title,
		Company:             req.Company,
		Location:            req.Location,
		Type:                req.Type,
		Description:         req.Description,
		Requirements:        req.Requirements,
		Responsibilities:    req.Responsibilities,
		Experience:          req.Experience,
		Salary:              req.Salary,
		PostedByID:          auth.GetUserID(c),
		ApplicationDeadline: deadline,
	})
	if err != nil {
		log.Error().Err(err).Uint("user_id", auth.GetUserID(c)).Msg("create job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create job"})
		return
	}
	c.JSON(http.StatusCreated, job)
}

// GetJob 按 ID 查询职位。
func (h *Handler) GetJob(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}
	job, err := h.jobSvc.Get(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		log.Error().Err(err).Int("job_id", id).Msg("get job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get job"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// ApplyJob 学生申请职位。
func (h *Handler) ApplyJob(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}
	err = h.jobSvc.Apply(uint(id), auth.GetUserID(c))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "application submitted"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
	case errors.Is(err, service.ErrAlreadyApplied):
		c.JSON(http.StatusConflict, gin.H{"error": "already applied"})
	default:
		log.Error().Err(err).Int("job_id", id).Msg("apply job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply"})
	}
}

// ListEvents 返回活动列表，可按状态和类型过滤。
func (h *Handler) ListEvents(c *gin.Context) {
	events, err := h.eventSvc.List(service.EventFilter{Status: c.Query("status"), Type: c.Query("type")})
	if err != nil {
		log.Error().Err(err).Msg("list events")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// CreateEvent 创建活动。
func (h *Handler) CreateEvent(c *gin.Context) {
	var req struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Type        string   `json:"type"`
		Date        string   `json:"date"`
		StartTime   string   `json:"startTime"`
		EndTime     string   `json:"endTime"`
		Location    string   `json:"location"`
		IsVirtual   bool     `json:"isVirtual"`
		MeetingLink string   `json:"meetingLink"`
		Capacity    int      `json:"capacity"`
		Tags        []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if req.Title == "" || req.Description == "" || req.Type == "" || req.Location == "" || req.Capacity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if req.IsVirtual && req.MeetingLink == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "meeting link required for virtual events"})
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}
	event, err := h.eventSvc.Create(models.Event{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Date:        date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
		IsVirtual:   req.IsVirtual,
		MeetingLink: req.MeetingLink,
		OrganizerID: auth.GetUserID(c),
		Capacity:    req.Capacity,
		Tags:        req.Tags,
	})
	if err != nil {
		log.Error().Err(err).Uint("user_id", auth.GetUserID(c)).Msg("create event")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create event"})
		return
	}
	c.JSON(http.StatusCreated, event)
}

// RegisterEvent 报名活动，满员进候补。
func (h *Handler) RegisterEvent(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}
	status, err := h.eventSvc.Register(uint(id), auth.GetUserID(c))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": status})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
	case errors.Is(err, service.ErrAlreadyRegistered):
		c.JSON(http.StatusConflict, gin.H{"error": "already registered"})
	default:
		log.Error().Err(err).Int("event_id", id).Msg("register event")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})
	}
}

// ListForumPosts 返回论坛帖子，可按分类过滤。
func (h *Handler) ListForumPosts(c *gin.Context) {
	posts, err := h.forumSvc.List(c.Query("category"))
	if err != nil {
		log.Error().Err(err).Msg("list forum posts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list posts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// CreateForumPost 发表新帖。
func (h *Handler) CreateForumPost(c *gin.Context) {
	var req struct {
		Title    string   `json:"title"`
		Content  string   `json:"content"`
		Category string   `json:"category"`
		Tags     []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" || req.Content == "" || req.Category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	post, err := h.forumSvc.Create(models.ForumPost{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Tags:     req.Tags,
		AuthorID: auth.GetUserID(c),
	})
	if err != nil {
		log.Error().Err(err).Uint("user_id", auth.GetUserID(c)).Msg("create forum post")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create post"})
		return
	}
	c.JSON(http.StatusCreated, post)
}

// GetForumPost 查询帖子详情（含评论），同时自增浏览量。
func (h *Handler) GetForumPost(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}
	post, comments, err := h.forumSvc.Get(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		log.Error().Err(err).Int("post_id", id).Msg("get forum post")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get post"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post, "comments": comments})
}

// CommentForumPost 追加评论。
func (h *Handler) CommentForumPost(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	comment, err := h.forumSvc.AddComment(uint(id), auth.GetUserID(c), req.Content)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		log.Error().Err(err).Int("post_id", id).Msg("comment forum post")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to comment"})
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// LikeForumPost 点赞/取消点赞。
func (h *Handler) LikeForumPost(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}
	likes, err := h.forumSvc.ToggleLike(uint(id), auth.GetUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		log.Error().Err(err).Int("post_id", id).Msg("like forum post")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to like post"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"likes": likes})
}
