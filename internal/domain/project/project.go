package project

type Project struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	ProblemStatement string  `json:"problem_statement"`
	SolutionOverview string  `json:"solution_overview"`
	Image            *string `json:"image"`
}

type CreateProjectRequest struct {
	Title            string `form:"title" binding:"required,max=200"`
	ProblemStatement string `form:"problem_statement" binding:"required,max=5000"`
	SolutionOverview string `form:"solution_overview" binding:"required,max=5000"`

	// Image is the sanitized upload filename; the bytes are not kept.
	Image *string `form:"-"`
}
