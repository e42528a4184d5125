package post_repository_gorm

import (
	"time"

	model "marites-post-service/internal/domain/models"
)

// postRecord is the ORM view of the posts table created by the SQL
// migrations.
type postRecord struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Title     string    `gorm:"not null"`
	Content   string    `gorm:"type:text;not null"`
	Published bool      `gorm:"not null"`
	Author    string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
	Rating    *float64
	Likes     int      `gorm:"not null"`
	Comments  []string `gorm:"type:text;serializer:json"`
}

func (postRecord) TableName() string {
	return "posts"
}

func newPostRecord(post *model.Post) *postRecord {
	return &postRecord{
		Title:     post.Title,
		Content:   post.Content,
		Published: post.Published,
		Author:    post.Author,
		Rating:    post.Rating,
		Likes:     post.Likes,
		Comments:  post.Comments,
	}
}

func (r *postRecord) toModel() *model.Post {
	return &model.Post{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		Published: r.Published,
		Author:    r.Author,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Rating:    r.Rating,
		Likes:     r.Likes,
		Comments:  r.Comments,
	}
}
