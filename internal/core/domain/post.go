package domain

import "time"

// Author is the populated view of a post's owning user.
type Author struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Post is a blog entry. Author is populated from the users collection on read.
type Post struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    Author    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
