package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/degree-audit-api/internal/coursetext"
	"github.com/noah-isme/degree-audit-api/internal/dto"
	"github.com/noah-isme/degree-audit-api/internal/models"
	appErrors "github.com/noah-isme/degree-audit-api/pkg/errors"
)

const maxSubjectRunes = 4

type sampleSource interface {
	SampleTranscript() (models.Transcript, error)
}

// TranscriptService edits the transcript draft of a session.
type TranscriptService struct {
	store     sessionStore
	samples   sampleSource
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTranscriptService constructs the transcript builder service.
func NewTranscriptService(store sessionStore, samples sampleSource, validate *validator.Validate, logger *zap.Logger) *TranscriptService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptService{store: store, samples: samples, validator: validate, logger: logger}
}

// AddProgram appends a blank program title.
func (s *TranscriptService) AddProgram(ctx context.Context, sessionID string) (*models.Session, error) {
	return s.store.Update(ctx, sessionID, func(session *models.Session) error {
		session.Transcript.ProgramTitles = append(session.Transcript.ProgramTitles, "")
		return nil
	})
}

// SetProgram replaces program title index.
func (s *TranscriptService) SetProgram(ctx context.Context, sessionID string, index int, req dto.ProgramTitleRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program payload")
	}
	return s.store.Update(ctx, sessionID, func(session *models.Session) error {
		titles := session.Transcript.ProgramTitles
		if index < 0 || index >= len(titles) {
			return missing("program", index)
		}
		titles[index] = req.Title
		return nil
	})
}

// RemoveProgram drops program title index. The last remaining row stays.
func (s *TranscriptService) RemoveProgram(ctx context.Context, sessionID string, index int) (*models.Session, error) {
	return s.store.Update(ctx, sessionID, func(session *models.Session) error {
		titles := session.Transcript.ProgramTitles
		if index < 0 || index >= len(titles) {
			return missing("program", index)
		}
		if len(titles) == 1 {
			return appErrors.Clone(appErrors.ErrValidation, "at least one program row is required")
		}
		session.Transcript.ProgramTitles = append(titles[:index:index], titles[index+1:]...)
		return nil
	})
}

// AddCourse appends a blank course, or the parse of req.Line when given.
func (s *TranscriptService) AddCourse(ctx context.Context, sessionID string, req dto.CourseLineRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course := models.NewCourse(models.BuilderDefaultCredit)
	if strings.TrimSpace(req.Line) != "" {
		course = coursetext.Parse(req.Line, models.BuilderDefaultCredit)
	}
	return s.store.Update(ctx, sessionID, func(session *models.Session) error {
		session.Transcript.Courses = append(session.Transcript.Courses, course)
		return nil
	})
}

// UpdateCourse sets one field of course index.
func (s *TranscriptService) UpdateCourse(ctx context.Context, sessionID string, index int, req dto.CourseFieldRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course field payload")
	}
	return s.store.Update(ctx, sessionID, func(session *models.Session) error {
		courses := session.Transcript.Courses
		if index < 0 || index >= len(courses) {
			return missing("course", index)
		}
		course, err := builderField(courses[index], models.CourseField(req.Field), req.Value)
		if err != nil {
			return err
		}
		courses[index] = course
		return nil
	})
}

// RemoveCourse drops course index.
func (s *TranscriptService) RemoveCourse(ctx context.Context, sessionID string, index int) (*models.Session, error) {
	return s.store.Update(ctx, sessionID, func(session *models.Session) error {
		courses := session.Transcript.Courses
		if index < 0 || index >= len(courses) {
			return missing("course", index)
		}
		session.Transcript.Courses = append(courses[:index:index], courses[index+1:]...)
		return nil
	})
}

// LoadSample replaces the draft with the sample transcript.
func (s *TranscriptService) LoadSample(ctx context.Context, sessionID string) (*models.Session, error) {
	if s.samples == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no sample transcript configured")
	}
	sample, err := s.samples.SampleTranscript()
	if err != nil {
		s.logger.Error("load sample transcript", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "sample transcript unavailable")
	}
	return s.store.Update(ctx, sessionID, func(session *models.Session) error {
		session.Transcript = sample.Clone()
		return nil
	})
}

// builderField applies a transcript builder edit. Subject codes are upper
// cased and cut to four letters; credit edits on a failing course are ignored.
func builderField(course models.Course, field models.CourseField, value string) (models.Course, error) {
	switch field {
	case models.CourseFieldSubjectCode:
		course.SubjectCode = truncateRunes(strings.ToUpper(value), maxSubjectRunes)
	case models.CourseFieldCourseCode:
		course.CourseCode = value
	case models.CourseFieldGrade:
		grade, ok := models.ParseGrade(value)
		if !ok {
			return course, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown grade %q", value))
		}
		course = course.WithGrade(grade)
	case models.CourseFieldCredit:
		credit, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			credit = 0
		}
		course, _ = course.WithCredit(credit)
	default:
		return course, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown course field %q", field))
	}
	return course, nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func missing(kind string, index int) error {
	return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s %d not found", kind, index))
}
