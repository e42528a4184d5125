package model

type CreatePostDTO struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Published bool     `json:"published"`
	Author    string   `json:"author"`
	Rating    *float64 `json:"rating,omitempty"`
	Likes     int      `json:"likes"`
	Comments  []string `json:"comments,omitempty"`
}
