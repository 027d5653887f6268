package user

import "strings"

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// Title is the capitalized role name used in flash messages ("Student").
func (r Role) Title() string {
	s := string(r)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseRole maps form input to a Role. Empty input means student.
func ParseRole(s string) Role {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RoleStudent
	}
	return Role(s)
}

// Account is the credential half of a user record.
type Account struct {
	Username string `json:"username"`
	Password string `json:"-"` // bcrypt hash, or plaintext in plaintext mode
	Role     Role   `json:"role"`
	IsAdmin  bool   `json:"is_admin"`
}

// Profile is the goal-tracking half of a user record.
type Profile struct {
	Username    string  `json:"username"`
	College     string  `json:"college"`
	Education   string  `json:"education"`
	CGPA        string  `json:"cgpa"`
	Skills      string  `json:"skills"`
	TargetGoal  string  `json:"target_goal"`
	RoadmapText *string `json:"roadmap_text"`
}

// ProfileFields is the setup-goal payload; it overwrites all five fields.
type ProfileFields struct {
	College    string `form:"college" binding:"max=200"`
	Education  string `form:"education" binding:"max=200"`
	CGPA       string `form:"cgpa" binding:"max=20"`
	Skills     string `form:"skills" binding:"max=2000"`
	TargetGoal string `form:"target_goal" binding:"max=200"`
}

// User is one row of the users table: account and profile share the key.
type User struct {
	Account
	College     string  `json:"college"`
	Education   string  `json:"education"`
	CGPA        string  `json:"cgpa"`
	Skills      string  `json:"skills"`
	TargetGoal  string  `json:"target_goal"`
	RoadmapText *string `json:"roadmap_text"`
}

func (u User) Profile() Profile {
	return Profile{
		Username:    u.Username,
		College:     u.College,
		Education:   u.Education,
		CGPA:        u.CGPA,
		Skills:      u.Skills,
		TargetGoal:  u.TargetGoal,
		RoadmapText: u.RoadmapText,
	}
}

func (u *User) ApplyProfile(f ProfileFields) {
	u.College = f.College
	u.Education = f.Education
	u.CGPA = f.CGPA
	u.Skills = f.Skills
	u.TargetGoal = f.TargetGoal
}
