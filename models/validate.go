package models

import (
	"math"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rpupo63/mindmesh-portfolio/errs"
)

var (
	emailPattern = regexp.MustCompile(`^(([^<>()\[\]\\.,;:\s@"]+(\.[^<>()\[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))$`)
	phonePattern = regexp.MustCompile(`^\+?(?:[0-9]{1,3}[-\s.]?)?[(]?[0-9]{3}[)]?[-\s.]?[0-9]{3}[-\s.]?[0-9]{4,6}$`)
)

const (
	minPhoneDigits = 10
	maxPhoneDigits = 13

	minPasswordLength = 8
	secretKeyLength   = 17
)

// Field messages shown next to the form inputs.
const (
	MsgInvalidEmail = "Please enter a valid email address."
	MsgInvalidPhone = "Please enter a valid phone number."
)

// ValidEmail reports whether s has the local@domain.tld shape used by every form.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.ToLower(strings.TrimSpace(s)))
}

// ValidPhone accepts 10 to 13 digits with optional separators and a leading '+'.
func ValidPhone(s string) bool {
	s = strings.TrimSpace(s)
	if !phonePattern.MatchString(s) {
		return false
	}
	digits := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return digits >= minPhoneDigits && digits <= maxPhoneDigits
}

// ValidateContact checks the lead gate form.
func ValidateContact(email, phone string) errs.FieldErrors {
	fields := errs.FieldErrors{}
	if !ValidEmail(email) {
		fields.Add("email", MsgInvalidEmail)
	}
	if !ValidPhone(phone) {
		fields.Add("phone", MsgInvalidPhone)
	}
	return fields
}

// NormalizeProjectDraft trims text inputs, drops blank technology entries and fills the
// avatar defaults. Duplicate or differently-cased technologies are kept as entered.
func NormalizeProjectDraft(d ProjectDraft) ProjectDraft {
	d.Name = strings.TrimSpace(d.Name)
	d.ShortDescription = strings.TrimSpace(d.ShortDescription)
	d.LongDescription = strings.TrimSpace(d.LongDescription)
	d.ProjectURL = strings.TrimSpace(d.ProjectURL)

	techs := make([]string, 0, len(d.Technologies))
	for _, t := range d.Technologies {
		if t = strings.TrimSpace(t); t != "" {
			techs = append(techs, t)
		}
	}
	d.Technologies = techs

	if d.Avatar == "" {
		d.Avatar = AvatarRobot1
	}
	if d.AvatarColor == "" {
		d.AvatarColor = ColorTeal
	}
	return d
}

// SplitTechnologies turns the comma-separated form input into a list.
func SplitTechnologies(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ValidateProjectDraft applies the admin form rules to an already normalized draft.
func ValidateProjectDraft(d ProjectDraft) errs.FieldErrors {
	fields := errs.FieldErrors{}

	if d.Name == "" {
		fields.Add("name", "Project name is required.")
	}
	if d.ProjectURL == "" {
		fields.Add("projectUrl", "Project URL is required.")
	} else if !validURL(d.ProjectURL) {
		fields.Add("projectUrl", "Project URL must be an absolute http(s) URL.")
	}
	if d.ShortDescription == "" {
		fields.Add("shortDescription", "Short description is required.")
	} else if utf8.RuneCountInString(d.ShortDescription) > MaxShortDescriptionRunes {
		fields.Add("shortDescription", "Short description must be at most 100 characters.")
	}
	if math.IsNaN(d.Complexity) || d.Complexity < MinComplexity || d.Complexity > MaxComplexity {
		fields.Add("complexity", "Complexity must be between 1.0 and 10.0.")
	}
	if d.ProjectDate.IsZero() {
		fields.Add("projectDate", "Project date is required.")
	}
	if !validAvatar(d.Avatar) {
		fields.Add("avatar", "Unknown avatar icon.")
	}
	if !validColor(d.AvatarColor) {
		fields.Add("avatarColor", "Unknown avatar color.")
	}
	return fields
}

// ValidateSettingsDraft requires every field and a well-formed contact email.
func ValidateSettingsDraft(d SettingsDraft) errs.FieldErrors {
	fields := errs.FieldErrors{}
	if strings.TrimSpace(d.SiteTitle) == "" {
		fields.Add("siteTitle", "Site title is required.")
	}
	if strings.TrimSpace(d.SiteTagline) == "" {
		fields.Add("siteTagline", "Site tagline is required.")
	}
	if strings.TrimSpace(d.AboutMe) == "" {
		fields.Add("aboutMe", "About me text is required.")
	}
	if strings.TrimSpace(d.ContactEmail) == "" {
		fields.Add("contactEmail", "Contact email is required.")
	} else if !ValidEmail(d.ContactEmail) {
		fields.Add("contactEmail", MsgInvalidEmail)
	}
	return fields
}

// ValidateCredentialsUpdate checks the shape of the form; verifying the current
// password against the stored hash is the caller's job.
func ValidateCredentialsUpdate(u CredentialsUpdate) errs.FieldErrors {
	fields := errs.FieldErrors{}
	if u.CurrentPassword == "" {
		fields.Add("currentPassword", "Current password is required.")
	}
	if u.NewUsername == "" {
		fields.Add("newUsername", "New username is required.")
	}
	if u.NewPassword != "" && len(u.NewPassword) < minPasswordLength {
		fields.Add("newPassword", "New password must be at least 8 characters.")
	}
	if u.NewSecretKey != "" && len(u.NewSecretKey) != secretKeyLength {
		fields.Add("newSecretKey", "Secret key must be 15 digits plus dashes (XXXXX-XXXXX-XXXXX).")
	}
	if u.NewPassword == "" && u.NewSecretKey == "" && u.NewUsername == "" {
		fields.Add("general", "You must provide at least one field to update.")
	}
	return fields
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func validAvatar(a Avatar) bool {
	for _, known := range Avatars {
		if a == known {
			return true
		}
	}
	return false
}

func validColor(c AvatarColor) bool {
	for _, known := range AvatarColors {
		if c == known {
			return true
		}
	}
	return false
}
