package podcast

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/astravon/portal/core"
)

type Program struct {
	ID          int    `json:"id" db:"id"`
	Title       string `json:"title" db:"title" validate:"required,notblank,max=200"`
	Description string `json:"description" db:"description"`
	ImageURL    string `json:"image_url" db:"image_url" validate:"omitempty,url"`
	Category    string `json:"category" db:"category" validate:"max=100"`
}

func (p *Program) Validate(validate *validator.Validate) error {
	p.Title = core.CleanString(p.Title)
	p.Description = core.CleanString(p.Description)
	p.ImageURL = core.CleanString(p.ImageURL)
	p.Category = core.CleanString(p.Category)
	return validate.Struct(p)
}

type Episode struct {
	ID            int       `json:"id" db:"id"`
	ProgramID     int       `json:"program_id" db:"program_id" validate:"required"`
	Title         string    `json:"title" db:"title" validate:"required,notblank,max=200"`
	Description   string    `json:"description" db:"description"`
	AudioURL      string    `json:"audio_url" db:"audio_url" validate:"required,url"`
	Duration      int       `json:"duration" db:"duration" validate:"gte=0"` // seconds
	EpisodeNumber int       `json:"episode_number" db:"episode_number" validate:"gte=0"`
	PublishDate   time.Time `json:"publish_date" db:"publish_date"`
}

func (e *Episode) Validate(validate *validator.Validate) error {
	e.Title = core.CleanString(e.Title)
	e.Description = core.CleanString(e.Description)
	e.AudioURL = core.CleanString(e.AudioURL)
	return validate.Struct(e)
}

// ProgramFilter narrows program listings; empty fields match everything.
type ProgramFilter struct {
	Category string `query:"category"`
}

// EpisodeFilter narrows episode listings; empty fields match everything.
type EpisodeFilter struct {
	ProgramID int `query:"programId"`
}
