package school

import (
	"github.com/go-playground/validator/v10"

	"github.com/astravon/portal/core"
)

// Module levels
const (
	LevelBasic        = "Básico"
	LevelIntermediate = "Intermedio"
	LevelAdvanced     = "Avanzado"
)

var Levels = []string{LevelBasic, LevelIntermediate, LevelAdvanced}

type School struct {
	ID          int    `json:"id" db:"id"`
	Name        string `json:"name" db:"name" validate:"required,notblank,max=200"`
	Description string `json:"description" db:"description"`
	ImageURL    string `json:"imageUrl" db:"image_url" validate:"omitempty,url"`
	Tema        string `json:"tema" db:"tema" validate:"max=100"`
}

func (s *School) Validate(validate *validator.Validate) error {
	s.Name = core.CleanString(s.Name)
	s.Description = core.CleanString(s.Description)
	s.ImageURL = core.CleanString(s.ImageURL)
	s.Tema = core.CleanString(s.Tema)
	return validate.Struct(s)
}

type Module struct {
	ID          int    `json:"id" db:"id"`
	SchoolID    int    `json:"schoolId" db:"school_id" validate:"required"`
	Name        string `json:"name" db:"name" validate:"required,notblank,max=200"`
	Description string `json:"description" db:"description"`
	Level       string `json:"level" db:"level" validate:"required,oneof=Básico Intermedio Avanzado"`
	Order       int    `json:"order" db:"order" validate:"gte=0"`
}

func (m *Module) Validate(validate *validator.Validate) error {
	m.Name = core.CleanString(m.Name)
	m.Description = core.CleanString(m.Description)
	m.Level = core.CleanString(m.Level)
	return validate.Struct(m)
}

type Course struct {
	ID          int    `json:"id" db:"id"`
	ModuleID    int    `json:"moduleId" db:"module_id" validate:"required"`
	Title       string `json:"title" db:"title" validate:"required,notblank,max=200"`
	Description string `json:"description" db:"description"`
	ImageURL    string `json:"imageUrl" db:"image_url" validate:"omitempty,url"`
	VideoURL    string `json:"videoUrl" db:"video_url" validate:"omitempty,url"`
	Duration    int    `json:"duration" db:"duration" validate:"gte=0"` // minutes
	Order       int    `json:"order" db:"order" validate:"gte=0"`
}

func (c *Course) Validate(validate *validator.Validate) error {
	c.Title = core.CleanString(c.Title)
	c.Description = core.CleanString(c.Description)
	c.ImageURL = core.CleanString(c.ImageURL)
	c.VideoURL = core.CleanString(c.VideoURL)
	return validate.Struct(c)
}

type Section struct {
	ID           int    `json:"id" db:"id"`
	CourseID     int    `json:"courseId" db:"course_id" validate:"required"`
	ResourceName string `json:"resourceName" db:"resource_name" validate:"required,notblank,max=200"`
	Instructions string `json:"instructions" db:"instructions"`
	ExternalURL  string `json:"externalUrl" db:"external_url" validate:"omitempty,url"`
	Order        int    `json:"order" db:"order" validate:"gte=0"`
}

func (s *Section) Validate(validate *validator.Validate) error {
	s.ResourceName = core.CleanString(s.ResourceName)
	s.Instructions = core.CleanString(s.Instructions)
	s.ExternalURL = core.CleanString(s.ExternalURL)
	return validate.Struct(s)
}
