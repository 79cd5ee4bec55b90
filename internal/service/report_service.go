package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/degree-audit-api/internal/coursetext"
	"github.com/noah-isme/degree-audit-api/internal/dto"
	"github.com/noah-isme/degree-audit-api/internal/models"
	"github.com/noah-isme/degree-audit-api/internal/tree"
	appErrors "github.com/noah-isme/degree-audit-api/pkg/errors"
)

// ReportService edits the report trees of a session through the tree editor.
// Reads are permissive; every mutation resolves its path strictly and fails
// with STALE_PATH instead of editing a different block.
type ReportService struct {
	store     sessionStore
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReportService constructs the report editing service.
func NewReportService(store sessionStore, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{store: store, metrics: metrics, validator: validate, logger: logger}
}

// editFunc produces the next root of one report.
type editFunc func(root *models.Report, renames models.RenameSet) (*models.Report, error)

// Block returns the block at path, degrading to the deepest resolvable
// ancestor when the path is partly stale.
func (s *ReportService) Block(ctx context.Context, sessionID string, report int, rawPath string) (*dto.BlockView, error) {
	path, err := parsePath(rawPath)
	if err != nil {
		return nil, err
	}
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if report < 0 || report >= len(session.Reports) {
		return nil, missing("report", report)
	}
	return s.view(session, report, deepestPath(session.Reports[report], path)), nil
}

// Patch shallow-merges patch into the block at path. Credit fields are
// dropped when the patched block is CUSTOM.
func (s *ReportService) Patch(ctx context.Context, sessionID string, report int, rawPath string, patch models.BlockPatch) (*dto.BlockView, error) {
	path, err := parsePath(rawPath)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "patch has no fields")
	}
	session, err := s.edit(ctx, sessionID, report, "patch_block", func(root *models.Report, _ models.RenameSet) (*models.Report, error) {
		target, ok := tree.Lookup(root, path)
		if !ok {
			return nil, tree.ErrStalePath
		}
		effective := patch
		blockType := target.BlockType
		if patch.BlockType.Set {
			blockType = patch.BlockType.Value
		}
		if blockType == models.BlockTypeCustom {
			effective = patch.WithoutCredits()
		}
		return tree.Update(root, path, effective), nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(session, report, path), nil
}

// InsertChild appends a default child under path and tags it pending rename.
func (s *ReportService) InsertChild(ctx context.Context, sessionID string, report int, rawPath string) (*dto.InsertedBlockView, error) {
	path, err := parsePath(rawPath)
	if err != nil {
		return nil, err
	}
	var child models.Path
	session, err := s.edit(ctx, sessionID, report, "insert_child", func(root *models.Report, renames models.RenameSet) (*models.Report, error) {
		next, childPath, err := tree.InsertChildBlock(root, path)
		if err != nil {
			return nil, err
		}
		child = childPath
		renames.Mark(childPath)
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.InsertedBlockView{
		Report:    report,
		Path:      path.String(),
		ChildPath: child.String(),
		Block:     tree.Get(session.Reports[report], path).Display(),
	}, nil
}

// RemoveChild drops child index under path.
func (s *ReportService) RemoveChild(ctx context.Context, sessionID string, report int, rawPath string, index int) (*dto.BlockView, error) {
	path, err := parsePath(rawPath)
	if err != nil {
		return nil, err
	}
	session, err := s.edit(ctx, sessionID, report, "remove_child", func(root *models.Report, renames models.RenameSet) (*models.Report, error) {
		next, err := tree.RemoveChildBlock(root, path, index)
		if err != nil {
			return nil, err
		}
		renames.RemoveChild(path, index)
		return next, nil
	})
	if err != nil {
		return nil, indexed(err, "child block", index)
	}
	return s.view(session, report, path), nil
}

// AddNote appends a note to the block at path.
func (s *ReportService) AddNote(ctx context.Context, sessionID string, report int, rawPath string, req dto.NoteRequest) (*dto.BlockView, error) {
	return s.noteEdit(ctx, sessionID, report, rawPath, "insert_note", -1, req, func(root *models.Report, path models.Path) (*models.Report, error) {
		return tree.InsertNote(root, path, req.Value)
	})
}

// UpdateNote replaces note index of the block at path.
func (s *ReportService) UpdateNote(ctx context.Context, sessionID string, report int, rawPath string, index int, req dto.NoteRequest) (*dto.BlockView, error) {
	return s.noteEdit(ctx, sessionID, report, rawPath, "update_note", index, req, func(root *models.Report, path models.Path) (*models.Report, error) {
		return tree.UpdateNote(root, path, index, req.Value)
	})
}

// RemoveNote drops note index of the block at path.
func (s *ReportService) RemoveNote(ctx context.Context, sessionID string, report int, rawPath string, index int) (*dto.BlockView, error) {
	return s.noteEdit(ctx, sessionID, report, rawPath, "remove_note", index, dto.NoteRequest{}, func(root *models.Report, path models.Path) (*models.Report, error) {
		return tree.RemoveNote(root, path, index)
	})
}

func (s *ReportService) noteEdit(ctx context.Context, sessionID string, report int, rawPath, op string, index int, req dto.NoteRequest, fn func(*models.Report, models.Path) (*models.Report, error)) (*dto.BlockView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid note payload")
	}
	path, err := parsePath(rawPath)
	if err != nil {
		return nil, err
	}
	session, err := s.edit(ctx, sessionID, report, op, func(root *models.Report, _ models.RenameSet) (*models.Report, error) {
		return fn(root, path)
	})
	if err != nil {
		return nil, indexed(err, "note", index)
	}
	return s.view(session, report, path), nil
}

// AddCourse appends a blank course, or the parse of req.Line, to the block
// at path. Report courses default to 0 credit.
func (s *ReportService) AddCourse(ctx context.Context, sessionID string, report int, rawPath string, req dto.CourseLineRequest) (*dto.BlockView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	path, err := parsePath(rawPath)
	if err != nil {
		return nil, err
	}
	course := models.NewCourse(models.ReportDefaultCredit)
	if strings.TrimSpace(req.Line) != "" {
		course = coursetext.Parse(req.Line, models.ReportDefaultCredit)
	}
	session, err := s.edit(ctx, sessionID, report, "insert_course", func(root *models.Report, _ models.RenameSet) (*models.Report, error) {
		return tree.InsertCourse(root, path, course)
	})
	if err != nil {
		return nil, err
	}
	return s.view(session, report, path), nil
}

// EditCourse changes course index of the block at path, either one field at
// a time or by replacing it with a parsed line. A blank line clears the course
// to its report defaults.
func (s *ReportService) EditCourse(ctx context.Context, sessionID string, report int, rawPath string, index int, req dto.CourseEditRequest) (*dto.BlockView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course edit payload")
	}
	if req.Field == "" && req.Line == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "either field or line is required")
	}
	path, err := parsePath(rawPath)
	if err != nil {
		return nil, err
	}
	session, err := s.edit(ctx, sessionID, report, "update_course", func(root *models.Report, _ models.RenameSet) (*models.Report, error) {
		if req.Field == "" {
			return tree.UpdateCourse(root, path, index, coursetext.Parse(*req.Line, models.ReportDefaultCredit))
		}
		return tree.UpdateCourseField(root, path, index, models.CourseField(req.Field), req.Value)
	})
	if err != nil {
		return nil, indexed(err, "course", index)
	}
	return s.view(session, report, path), nil
}

// RemoveCourse drops course index of the block at path.
func (s *ReportService) RemoveCourse(ctx context.Context, sessionID string, report int, rawPath string, index int) (*dto.BlockView, error) {
	path, err := parsePath(rawPath)
	if err != nil {
		return nil, err
	}
	session, err := s.edit(ctx, sessionID, report, "remove_course", func(root *models.Report, _ models.RenameSet) (*models.Report, error) {
		return tree.RemoveCourse(root, path, index)
	})
	if err != nil {
		return nil, indexed(err, "course", index)
	}
	return s.view(session, report, path), nil
}

// ClearRename removes the pending rename tag on path. Clearing an untagged
// path is a no-op.
func (s *ReportService) ClearRename(ctx context.Context, sessionID string, report int, rawPath string) (*dto.BlockView, error) {
	path, err := parsePath(rawPath)
	if err != nil {
		return nil, err
	}
	session, err := s.edit(ctx, sessionID, report, "clear_rename", func(root *models.Report, renames models.RenameSet) (*models.Report, error) {
		renames.Clear(path)
		return root, nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(session, report, path), nil
}

// edit swaps report's root for the result of fn in one store update.
func (s *ReportService) edit(ctx context.Context, sessionID string, report int, op string, fn editFunc) (*models.Session, error) {
	session, err := s.store.Update(ctx, sessionID, func(session *models.Session) error {
		if report < 0 || report >= len(session.Reports) {
			return missing("report", report)
		}
		next, err := fn(session.Reports[report], session.Renames[report])
		if err != nil {
			return err
		}
		session.Reports[report] = next
		return nil
	})
	if err != nil {
		mapped := treeError(err)
		s.metrics.RecordTreeEdit(op, appErrors.FromError(mapped).Code)
		s.logger.Debug("report edit rejected", zap.String("session_id", sessionID), zap.String("operation", op), zap.Error(err))
		return nil, mapped
	}
	s.metrics.RecordTreeEdit(op, "ok")
	return session, nil
}

func (s *ReportService) view(session *models.Session, report int, path models.Path) *dto.BlockView {
	return &dto.BlockView{
		Report:        report,
		Path:          path.String(),
		PendingRename: session.Renames[report].Has(path),
		Block:         tree.Get(session.Reports[report], path).Display(),
	}
}

func parsePath(raw string) (models.Path, error) {
	path, err := models.ParsePath(raw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid block path")
	}
	return path, nil
}

// deepestPath trims path to the prefix that still resolves.
func deepestPath(root *models.Report, path models.Path) models.Path {
	for n := len(path); n > 0; n-- {
		if _, ok := tree.Lookup(root, path[:n]); ok {
			return append(models.Path{}, path[:n]...)
		}
	}
	return models.Path{}
}

func treeError(err error) error {
	switch {
	case errors.Is(err, tree.ErrStalePath):
		return appErrors.Wrap(err, appErrors.ErrStalePath.Code, appErrors.ErrStalePath.Status, appErrors.ErrStalePath.Message)
	case errors.Is(err, tree.ErrIndexOutOfRange):
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "index out of range")
	case errors.Is(err, tree.ErrCreditLocked):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "credit of a course graded F is fixed at 0")
	case errors.Is(err, tree.ErrInvalidField):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course field value")
	default:
		return err
	}
}

func indexed(err error, kind string, index int) error {
	if errors.Is(err, tree.ErrIndexOutOfRange) {
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, fmt.Sprintf("%s %d not found", kind, index))
	}
	return err
}
