package grading

import "testing"

func TestEvaluate(t *testing.T) {
	grades := map[string]string{
		"Mathematics": "B",
		"Physics":     "C",
		"English":     "A",
	}

	tests := []struct {
		name          string
		grades        map[string]string
		reqs          []Requirement
		wantQualified bool
		wantScore     float64
	}{
		{
			name:          "no requirements",
			grades:        grades,
			wantQualified: true,
			wantScore:     100,
		},
		{
			name:   "all mandatory met",
			grades: grades,
			reqs: []Requirement{
				{Subject: "Mathematics", MinimumGrade: "B", Mandatory: true},
				{Subject: "English", MinimumGrade: "C", Mandatory: true},
			},
			wantQualified: true,
			wantScore:     100,
		},
		{
			name:   "mandatory unmet",
			grades: map[string]string{"Mathematics": "C"},
			reqs: []Requirement{
				{Subject: "Mathematics", MinimumGrade: "B", Mandatory: true},
			},
			wantQualified: false,
			wantScore:     0,
		},
		{
			name:   "half the mandatory met",
			grades: grades,
			reqs: []Requirement{
				{Subject: "Mathematics", MinimumGrade: "B", Mandatory: true},
				{Subject: "Physics", MinimumGrade: "B", Mandatory: true},
			},
			wantQualified: false,
			wantScore:     50,
		},
		{
			name:   "non-mandatory miss does not block",
			grades: grades,
			reqs: []Requirement{
				{Subject: "Mathematics", MinimumGrade: "B", Mandatory: true},
				{Subject: "Physics", MinimumGrade: "A", Mandatory: false},
			},
			wantQualified: true,
			wantScore:     100,
		},
		{
			name:   "only non-mandatory requirements",
			grades: grades,
			reqs: []Requirement{
				{Subject: "Physics", MinimumGrade: "A", Mandatory: false},
			},
			wantQualified: true,
			wantScore:     100,
		},
		{
			name:   "missing subject fails the requirement",
			grades: grades,
			reqs: []Requirement{
				{Subject: "Chemistry", MinimumGrade: "D", Mandatory: true},
			},
			wantQualified: false,
			wantScore:     0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Evaluate(tt.grades, tt.reqs)
			if v.Qualified != tt.wantQualified {
				t.Errorf("Qualified = %v, want %v", v.Qualified, tt.wantQualified)
			}
			if v.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", v.Score, tt.wantScore)
			}
			if len(v.Details) != len(tt.reqs) {
				t.Errorf("len(Details) = %d, want %d", len(v.Details), len(tt.reqs))
			}
		})
	}
}

func TestEvaluateDetails(t *testing.T) {
	v := Evaluate(
		map[string]string{"Mathematics": "C"},
		[]Requirement{
			{Subject: "Mathematics", MinimumGrade: "B", Mandatory: true},
			{Subject: "Chemistry", MinimumGrade: "D", Mandatory: false},
		},
	)

	d := v.Details[0]
	if d.Subject != "Mathematics" || d.RequiredGrade != "B" || d.StudentGrade != "C" || d.Met || !d.Mandatory {
		t.Errorf("unexpected detail: %+v", d)
	}

	d = v.Details[1]
	if d.StudentGrade != NotProvided {
		t.Errorf("StudentGrade = %q, want %q", d.StudentGrade, NotProvided)
	}
	if d.Met {
		t.Error("missing grade must not meet the requirement")
	}
}
