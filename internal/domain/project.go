package domain

import "time"

// ProjectVisibility controls who can see a showcased project.
type ProjectVisibility string

const (
	VisibilityPublic   ProjectVisibility = "public"
	VisibilityUnlisted ProjectVisibility = "unlisted"
	VisibilityPrivate  ProjectVisibility = "private"
)

// GalleryImage is one entry of a project gallery.
type GalleryImage struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// Client is the customer block on a showcased project.
type Client struct {
	Name    string `json:"name,omitempty"`
	Logo    string `json:"logo,omitempty"`
	Website string `json:"website,omitempty"`
}

// Project is a maker's showcased piece of work.
type Project struct {
	ID           string            `json:"_id"`
	Slug         string            `json:"slug"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	Thumbnail    string            `json:"thumbnail,omitempty"`
	Gallery      []GalleryImage    `json:"gallery,omitempty"`
	Technologies []string          `json:"technologies,omitempty"`
	Skills       []string          `json:"skills,omitempty"`
	Client       Client            `json:"client"`
	Visibility   ProjectVisibility `json:"visibility"`
	Current      bool              `json:"current"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// ProjectSubmission is the `data` JSON field of a multipart project creation
// request, validated before forwarding.
type ProjectSubmission struct {
	Title        string   `json:"title" validate:"required,min=3,max=140"`
	Description  string   `json:"description" validate:"required,min=20"`
	Technologies []string `json:"technologies" validate:"omitempty,max=30,dive,min=1"`
	Skills       []string `json:"skills" validate:"omitempty,max=30,dive,min=1"`
	ClientName   string   `json:"clientName" validate:"omitempty,max=140"`
	Visibility   string   `json:"visibility" validate:"required,oneof=public unlisted private"`
	Current      bool     `json:"current"`
}
