package job

import (
	"strings"

	"github.com/trezcool/udahili/core/student"
)

// Weights of the match criteria. A criterion only contributes when its inputs
// are present on both sides; absent criteria are skipped and the sum is
// renormalized over the weights actually evaluated.
type Weights struct {
	Academic      float64
	Skills        float64
	Experience    float64
	Qualification float64
}

var DefaultWeights = Weights{
	Academic:      0.4,
	Skills:        0.3,
	Experience:    0.2,
	Qualification: 0.1,
}

// Score computes the 0-1 weighted compatibility of a student with a job.
// Pure: no I/O, deterministic for a given input.
func (w Weights) Score(std *student.Student, j *Job) float64 {
	var sum, weights float64

	// academic: GPA against a 4.0 scale, capped
	if len(std.Grades) > 0 {
		gpa := std.GPA() / 4.0
		if gpa > 1 {
			gpa = 1
		}
		sum += w.Academic * gpa
		weights += w.Academic
	}

	// skills: fraction of required tokens matched by any student token
	if len(j.Skills) > 0 && len(std.Skills) > 0 {
		var matched int
		for _, req := range j.Skills {
			if anyTokenMatch(std.Skills, req) {
				matched++
			}
		}
		sum += w.Skills * float64(matched) / float64(len(j.Skills))
		weights += w.Skills
	}

	// experience: years against the stated requirement, capped
	if std.ExperienceYears > 0 {
		required := j.RequiredYears()
		if required < 1 {
			required = 1
		}
		exp := float64(std.ExperienceYears) / float64(required)
		if exp > 1 {
			exp = 1
		}
		sum += w.Experience * exp
		weights += w.Experience
	}

	// qualification: any student qualification covering any required one
	if len(j.Qualifications) > 0 && len(std.Qualifications) > 0 {
		var score float64
		for _, req := range j.Qualifications {
			if anyQualificationMatch(std.Qualifications, req) {
				score = 1
				break
			}
		}
		sum += w.Qualification * score
		weights += w.Qualification
	}

	if weights == 0 {
		return 0
	}
	return sum / weights
}

// anyTokenMatch reports whether any student token matches the required token:
// a case-insensitive substring in either direction.
func anyTokenMatch(tokens []string, required string) bool {
	required = strings.ToLower(strings.TrimSpace(required))
	if required == "" {
		return false
	}
	for _, tok := range tokens {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		if strings.Contains(tok, required) || strings.Contains(required, tok) {
			return true
		}
	}
	return false
}

func anyQualificationMatch(quals []string, required string) bool {
	required = strings.ToLower(strings.TrimSpace(required))
	if required == "" {
		return false
	}
	for _, q := range quals {
		if strings.Contains(strings.ToLower(q), required) {
			return true
		}
	}
	return false
}
