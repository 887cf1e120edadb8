package student

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/udahili/core"
	"github.com/trezcool/udahili/core/grading"
)

var (
	gradeTag  = "grade"
	gradeText = "unknown letter grade"
)

// InitValidators registers student-specific validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(gradeTag, gradeValidation)
	core.RegisterCustomTranslation(validate, translator, gradeTag, gradeText)
}

// gradeValidation only allows known letter grades.
func gradeValidation(fl validator.FieldLevel) bool {
	return grading.IsValid(fl.Field().String())
}
