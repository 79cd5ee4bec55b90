package dto

// ProgramTitleRequest sets one program title.
type ProgramTitleRequest struct {
	Title string `json:"title" validate:"max=300"`
}

// CourseLineRequest optionally carries a quick-entry line such as "COMP206 A 3".
type CourseLineRequest struct {
	Line string `json:"line" validate:"max=200"`
}

// CourseFieldRequest edits a single course attribute.
type CourseFieldRequest struct {
	Field string `json:"field" validate:"required,oneof=subject_code course_code grade credit"`
	Value string `json:"value" validate:"max=200"`
}
