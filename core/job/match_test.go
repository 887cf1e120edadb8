package job

import (
	"math"
	"testing"

	"github.com/trezcool/udahili/core/student"
)

// gpa 3.6 transcript: (4+4+4+3+3)/5
var transcript36 = []student.SubjectGrade{
	{Subject: "Mathematics", Grade: "A"},
	{Subject: "Physics", Grade: "A"},
	{Subject: "Chemistry", Grade: "A"},
	{Subject: "English", Grade: "B"},
	{Subject: "History", Grade: "B"},
}

func TestWeightsScore(t *testing.T) {
	tests := []struct {
		name string
		std  student.Student
		job  Job
		want float64
	}{
		{
			name: "skills and academic only, renormalized",
			// academic 3.6/4 = 0.9; skills 1/2 matched = 0.5
			// (0.9×0.4 + 0.5×0.3) / 0.7 ≈ 0.729
			std: student.Student{
				Grades: transcript36,
				Skills: []string{"react", "sql"},
			},
			job:  Job{Skills: []string{"React", "Node"}},
			want: (0.9*0.4 + 0.5*0.3) / 0.7,
		},
		{
			name: "all four criteria",
			// academic 0.9, skills 1.0, experience 2/3, qualification 1
			std: student.Student{
				Grades:          transcript36,
				Skills:          []string{"React", "Node"},
				ExperienceYears: 2,
				Qualifications:  []string{"BSc Computer Science"},
			},
			job: Job{
				Skills:         []string{"react"},
				Experience:     "3+ years",
				Qualifications: []string{"computer science"},
			},
			want: 0.9*0.4 + 1*0.3 + (2.0/3.0)*0.2 + 1*0.1,
		},
		{
			name: "experience capped at requirement",
			std:  student.Student{ExperienceYears: 10},
			job:  Job{Experience: "2 years"},
			want: 1,
		},
		{
			name: "experience with no stated requirement",
			std:  student.Student{ExperienceYears: 1},
			job:  Job{},
			want: 1, // 1 year / max(0, 1)
		},
		{
			name: "no overlapping data",
			std:  student.Student{},
			job:  Job{Skills: []string{"Go"}},
			want: 0,
		},
		{
			name: "gpa capped at 4.0 scale",
			std: student.Student{
				Grades: []student.SubjectGrade{{Subject: "Mathematics", Grade: "A+"}},
			},
			job:  Job{},
			want: 1, // 4.5/4 capped
		},
		{
			name: "unmatched qualification scores zero but still counts",
			std: student.Student{
				Grades:         transcript36,
				Qualifications: []string{"Diploma in Art"},
			},
			job: Job{Qualifications: []string{"engineering"}},
			// (0.9×0.4 + 0×0.1) / 0.5
			want: (0.9 * 0.4) / 0.5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultWeights.Score(&tt.std, &tt.job)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScenarioGoodMatch(t *testing.T) {
	std := student.Student{
		Grades: transcript36,
		Skills: []string{"react", "sql"},
	}
	j := Job{Skills: []string{"React", "Node"}}

	score := DefaultWeights.Score(&std, &j)
	if math.Abs(score-0.7285714285714285) > 1e-9 {
		t.Errorf("Score() = %v, want ≈0.729", score)
	}
	if score < 0.7 {
		t.Error("score must clear the good-match threshold")
	}
}

func TestRequiredYears(t *testing.T) {
	tests := []struct {
		experience string
		want       int
	}{
		{"", 0},
		{"2+ years", 2},
		{"at least 3 years", 3},
		{"entry level", 0},
		{"10 years", 10},
	}
	for _, tt := range tests {
		j := Job{Experience: tt.experience}
		if got := j.RequiredYears(); got != tt.want {
			t.Errorf("RequiredYears(%q) = %d, want %d", tt.experience, got, tt.want)
		}
	}
}
