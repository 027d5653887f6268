package ai

import "fmt"

const (
	DefaultTarget = "Data Analyst"
	DefaultSkills = "Basic Computer Skills"
	DefaultGoal   = "General"
)

func GapPrompt(target, skills string) string {
	return fmt.Sprintf(
		"Act as a technical career analyst. A student wants to become a %s "+
			"and currently knows: %s. "+
			"Analyze the industry gap for 2026. Provide exactly 3 skills they already HAVE (Matched) "+
			"and 3 critical skills they are MISSING. "+
			"Format your entire response exactly like this: "+
			"MATCHED: skill1, skill2, skill3 | MISSING: skill4, skill5, skill6",
		target, skills,
	)
}

func RoadmapPrompt(college, target, skills string) string {
	return fmt.Sprintf(
		"Act as an elite Career Architect. Create a 4-phase roadmap for a student at %s "+
			"targeting a %s role. Current skills: %s. "+
			"Format your response as exactly 4 sections. Each section must start with 'PHASE X:' "+
			"followed by a short title and 2 bullet points for actions.",
		college, target, skills,
	)
}

// ChatSystem frames the counselor. goal defaults to "General"; the college
// line is added only when known.
func ChatSystem(goal, college string) string {
	if goal == "" {
		goal = DefaultGoal
	}
	s := fmt.Sprintf("You are a professional AI Career Counselor. Help the user achieve their goal of becoming a %s.", goal)
	if college != "" {
		s += fmt.Sprintf(" You are a counselor for a student at %s. Short answers only.", college)
	}
	return s
}
