package models

// SettingsID is the primary key of the only settings row.
const SettingsID = 1

// Settings is the site-wide singleton edited from the admin console.
type Settings struct {
	ID           int    `json:"-" db:"id" gorm:"primaryKey;autoIncrement:false"`
	SiteTitle    string `json:"siteTitle" db:"site_title" gorm:"type:text;not null"`
	SiteTagline  string `json:"siteTagline" db:"site_tagline" gorm:"type:text;not null"`
	AboutMe      string `json:"aboutMe" db:"about_me" gorm:"type:text;not null"`
	ContactEmail string `json:"contactEmail" db:"contact_email" gorm:"type:text;not null"`
}

// SettingsDraft is the admin form payload for the settings singleton.
type SettingsDraft struct {
	SiteTitle    string `json:"siteTitle"`
	SiteTagline  string `json:"siteTagline"`
	AboutMe      string `json:"aboutMe"`
	ContactEmail string `json:"contactEmail"`
}

func (d SettingsDraft) Settings() Settings {
	return Settings{
		ID:           SettingsID,
		SiteTitle:    d.SiteTitle,
		SiteTagline:  d.SiteTagline,
		AboutMe:      d.AboutMe,
		ContactEmail: d.ContactEmail,
	}
}

// DefaultSettings is what a fresh install starts with, and what readers fall back to
// when the stored record cannot be loaded.
func DefaultSettings() Settings {
	return Settings{
		ID:           SettingsID,
		SiteTitle:    "MindMesh Labs",
		SiteTagline:  "Built by Devs. Backed by AI.",
		AboutMe:      "Welcome to my portfolio! I am a passionate developer specializing in creating modern, responsive, and user-friendly web applications. With a strong foundation in both front-end and back-end technologies, I enjoy bringing ideas to life and solving complex problems. Feel free to browse my work and get in touch!",
		ContactEmail: "your-email@example.com",
	}
}
