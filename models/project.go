package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Avatar identifies one of the fixed project icons.
type Avatar string

const (
	AvatarRobot1 Avatar = "robot-1"
	AvatarRobot2 Avatar = "robot-2"
	AvatarRobot3 Avatar = "robot-3"
	AvatarRobot4 Avatar = "robot-4"
	AvatarRobot5 Avatar = "robot-5"
)

// Avatars lists the selectable icons in display order.
var Avatars = []Avatar{AvatarRobot1, AvatarRobot2, AvatarRobot3, AvatarRobot4, AvatarRobot5}

// AvatarColor is one of the fixed palette classes used behind the avatar.
type AvatarColor string

const (
	ColorTeal        AvatarColor = "bg-teal-500"
	ColorYellow      AvatarColor = "bg-yellow-500"
	ColorLightYellow AvatarColor = "bg-yellow-400"
	ColorRed         AvatarColor = "bg-red-500"
	ColorPurple      AvatarColor = "bg-purple-500"
	ColorBlue        AvatarColor = "bg-blue-500"
)

// AvatarColors lists the palette in display order.
var AvatarColors = []AvatarColor{ColorTeal, ColorYellow, ColorLightYellow, ColorRed, ColorPurple, ColorBlue}

const (
	MinComplexity            = 1.0
	MaxComplexity            = 10.0
	MaxShortDescriptionRunes = 100
)

// Project is one showcase entry in the catalog.
type Project struct {
	ID               uuid.UUID                   `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Name             string                      `json:"name" db:"name" gorm:"type:text;not null"`
	ShortDescription string                      `json:"shortDescription" db:"short_description" gorm:"type:text;not null"`
	LongDescription  string                      `json:"longDescription" db:"long_description" gorm:"type:text;not null;default:''"`
	ProjectURL       string                      `json:"projectUrl" db:"project_url" gorm:"column:project_url;type:text;not null"`
	Technologies     datatypes.JSONSlice[string] `json:"technologies" db:"technologies" gorm:"type:jsonb;not null;default:'[]'"`
	Complexity       float64                     `json:"complexity" db:"complexity" gorm:"type:double precision;not null;check:complexity >= 1 AND complexity <= 10"`
	ProjectDate      Date                        `json:"projectDate" db:"project_date" gorm:"type:date;not null;index"`
	IsActive         bool                        `json:"isActive" db:"is_active" gorm:"not null;default:true;index"`
	Avatar           Avatar                      `json:"avatar" db:"avatar" gorm:"type:text;not null"`
	AvatarColor      AvatarColor                 `json:"avatarColor" db:"avatar_color" gorm:"type:text;not null"`
	Version          int                         `json:"version" db:"version" gorm:"not null;default:1"`
	CreatedAt        time.Time                   `json:"createdAt" db:"created_at" gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP"`
}

// ProjectDraft is the admin form payload for a project that has no id yet.
type ProjectDraft struct {
	Name             string      `json:"name"`
	ShortDescription string      `json:"shortDescription"`
	LongDescription  string      `json:"longDescription"`
	ProjectURL       string      `json:"projectUrl"`
	Technologies     []string    `json:"technologies"`
	Complexity       float64     `json:"complexity"`
	ProjectDate      Date        `json:"projectDate"`
	IsActive         bool        `json:"isActive"`
	Avatar           Avatar      `json:"avatar"`
	AvatarColor      AvatarColor `json:"avatarColor"`
}

// NewProject materializes a draft; id and version are left for the store to assign.
func (d ProjectDraft) NewProject() Project {
	techs := make([]string, len(d.Technologies))
	copy(techs, d.Technologies)
	return Project{
		Name:             d.Name,
		ShortDescription: d.ShortDescription,
		LongDescription:  d.LongDescription,
		ProjectURL:       d.ProjectURL,
		Technologies:     techs,
		Complexity:       d.Complexity,
		ProjectDate:      d.ProjectDate,
		IsActive:         d.IsActive,
		Avatar:           d.Avatar,
		AvatarColor:      d.AvatarColor,
	}
}

// Draft returns the editable part of p.
func (p Project) Draft() ProjectDraft {
	techs := make([]string, len(p.Technologies))
	copy(techs, p.Technologies)
	return ProjectDraft{
		Name:             p.Name,
		ShortDescription: p.ShortDescription,
		LongDescription:  p.LongDescription,
		ProjectURL:       p.ProjectURL,
		Technologies:     techs,
		Complexity:       p.Complexity,
		ProjectDate:      p.ProjectDate,
		IsActive:         p.IsActive,
		Avatar:           p.Avatar,
		AvatarColor:      p.AvatarColor,
	}
}

// Clone returns a deep copy so callers cannot mutate a stored snapshot.
func (p Project) Clone() Project {
	out := p
	if p.Technologies != nil {
		out.Technologies = append(datatypes.JSONSlice[string]{}, p.Technologies...)
	}
	return out
}
