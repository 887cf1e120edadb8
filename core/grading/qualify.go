package grading

// NotProvided is recorded in a RequirementDetail when the student has no
// grade for the required subject.
const NotProvided = "not provided"

type (
	// Requirement is a single subject requirement on a course.
	Requirement struct {
		Subject      string `json:"subject" validate:"required"`
		MinimumGrade string `json:"minimum_grade" validate:"required,grade"`
		Mandatory    bool   `json:"is_mandatory"`
	}

	// RequirementDetail is the per-subject audit line of an evaluation.
	RequirementDetail struct {
		Subject       string `json:"subject"`
		RequiredGrade string `json:"required_grade"`
		StudentGrade  string `json:"student_grade"`
		Met           bool   `json:"met"`
		Mandatory     bool   `json:"is_mandatory"`
	}

	// Verdict is the outcome of evaluating a student's grades against a
	// course's requirements. It is frozen on the application at submission
	// time; re-evaluating later never rewrites a past decision.
	Verdict struct {
		Qualified bool                `json:"is_qualified"`
		Score     float64             `json:"score"` // 0-100
		Details   []RequirementDetail `json:"details"`
	}
)

// Evaluate applies the grade comparison across all requirements.
// Qualified is the AND over mandatory requirements only; non-mandatory misses
// are recorded but do not block. Score is 100 × met-mandatory over
// total-mandatory, and 100 when there is nothing mandatory to meet.
func Evaluate(grades map[string]string, reqs []Requirement) Verdict {
	v := Verdict{
		Qualified: true,
		Details:   make([]RequirementDetail, 0, len(reqs)),
	}

	var mandatory, met int
	for _, req := range reqs {
		grade, ok := grades[req.Subject]
		detail := RequirementDetail{
			Subject:       req.Subject,
			RequiredGrade: req.MinimumGrade,
			StudentGrade:  grade,
			Met:           AtLeast(grade, req.MinimumGrade),
			Mandatory:     req.Mandatory,
		}
		if !ok {
			detail.StudentGrade = NotProvided
		}
		if req.Mandatory {
			mandatory++
			if detail.Met {
				met++
			} else {
				v.Qualified = false
			}
		}
		v.Details = append(v.Details, detail)
	}

	if mandatory == 0 {
		v.Score = 100
		return v
	}
	v.Score = 100 * float64(met) / float64(mandatory)
	return v
}
