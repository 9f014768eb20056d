package service

import (
	"errors"

	"github.com/KiranSurya-SU/alumniconnect/internal/models"

	"gorm.io/gorm"
)

// ForumService 封装论坛帖子、评论和点赞的业务逻辑。
type ForumService struct {
	db *gorm.DB
}

func NewForumService(db *gorm.DB) *ForumService {
	return &ForumService{db: db}
}

// PostDTO 是对外输出的帖子数据。
type PostDTO struct {
	models.ForumPost
	AuthorName   string `json:"author_name"`
	CommentCount int    `json:"comment_count"`
	LikeCount    int    `json:"like_count"`
}

// CommentDTO 是对外输出的评论数据。
type CommentDTO struct {
	models.ForumComment
	AuthorName string `json:"author_name"`
}

// List 返回指定分类的活跃帖子，按创建时间倒序。
func (s *ForumService) List(category string) ([]PostDTO, error) {
	q := s.db.Where("status = ?", "active").Order("created_at desc")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var posts []models.ForumPost
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	return s.decorate(posts)
}

// Create 发表新帖。
func (s *ForumService) Create(post models.ForumPost) (*PostDTO, error) {
	if post.Status == "" {
		post.Status = "active"
	}
	if err := s.db.Create(&post).Error; err != nil {
		return nil, err
	}
	dtos, err := s.decorate([]models.ForumPost{post})
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}

// Get 查询帖子并自增浏览量，附带全部评论。
func (s *ForumService) Get(id uint) (*PostDTO, []CommentDTO, error) {
	var post models.ForumPost
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if err := s.db.Model(&post).Update("views", gorm.Expr("views + 1")).Error; err != nil {
		return nil, nil, err
	}
	post.Views++

	var comments []models.ForumComment
	if err := s.db.Where("post_id = ?", id).Order("created_at asc").Find(&comments).Error; err != nil {
		return nil, nil, err
	}
	authorIDs := make([]uint, 0, len(comments))
	for _, c := range comments {
		authorIDs = append(authorIDs, c.AuthorID)
	}
	names, err := s.userNames(authorIDs)
	if err != nil {
		return nil, nil, err
	}
	commentDTOs := make([]CommentDTO, 0, len(comments))
	for _, c := range comments {
		commentDTOs = append(commentDTOs, CommentDTO{ForumComment: c, AuthorName: names[c.AuthorID]})
	}

	dtos, err := s.decorate([]models.ForumPost{post})
	if err != nil {
		return nil, nil, err
	}
	return &dtos[0], commentDTOs, nil
}

// AddComment 追加评论。
func (s *ForumService) AddComment(postID, authorID uint, content string) (*CommentDTO, error) {
	var post models.ForumPost
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	comment := models.ForumComment{PostID: postID, AuthorID: authorID, Content: content}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}
	names, err := s.userNames([]uint{authorID})
	if err != nil {
		return nil, err
	}
	return &CommentDTO{ForumComment: comment, AuthorName: names[authorID]}, nil
}

// ToggleLike 点赞/取消点赞，返回最新点赞数。
func (s *ForumService) ToggleLike(postID, userID uint) (int, error) {
	var post models.ForumPost
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	likes := make([]uint, 0, len(post.Likes)+1)
	found := false
	for _, id := range post.Likes {
		if id == userID {
			found = true
			continue
		}
		likes = append(likes, id)
	}
	if !found {
		likes = append(likes, userID)
	}
	if err := s.db.Model(&post).Update("likes", likes).Error; err != nil {
		return 0, err
	}
	return len(likes), nil
}

func (s *ForumService) decorate(posts []models.ForumPost) ([]PostDTO, error) {
	if len(posts) == 0 {
		return []PostDTO{}, nil
	}
	authorIDs := make([]uint, 0, len(posts))
	postIDs := make([]uint, 0, len(posts))
	for _, p := range posts {
		authorIDs = append(authorIDs, p.AuthorID)
		postIDs = append(postIDs, p.ID)
	}
	names, err := s.userNames(authorIDs)
	if err != nil {
		return nil, err
	}
	type commentCount struct {
		PostID uint
		N      int
	}
	var counts []commentCount
	if err := s.db.Model(&models.ForumComment{}).Select("post_id, count(*) as n").Where("post_id IN ?", postIDs).Group("post_id").Scan(&counts).Error; err != nil {
		return nil, err
	}
	byPost := make(map[uint]int, len(counts))
	for _, c := range counts {
		byPost[c.PostID] = c.N
	}
	out := make([]PostDTO, 0, len(posts))
	for _, p := range posts {
		out = append(out, PostDTO{ForumPost: p, AuthorName: names[p.AuthorID], CommentCount: byPost[p.ID], LikeCount: len(p.Likes)})
	}
	return out, nil
}

func (s *ForumService) userNames(ids []uint) (map[uint]string, error) {
	names := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var users []models.User
	if err := s.db.Select("id", "first_name", "last_name").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		names[u.ID] = u.DisplayName()
	}
	return names, nil
}
