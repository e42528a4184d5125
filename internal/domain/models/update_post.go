package model

// UpdatePostDTO carries the mutable part of a post. Every field overwrites
// the stored value.
type UpdatePostDTO struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Published bool   `json:"published"`
}
