package handler

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/degree-audit-api/pkg/errors"
)

// maxImportBytes bounds the body of a report import.
const maxImportBytes = 8 << 20

func indexParam(c *gin.Context, name string) (int, error) {
	raw := c.Param(name)
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be a non-negative integer", name))
	}
	return idx, nil
}

func bindJSON(c *gin.Context, dest interface{}, what string) error {
	if err := c.ShouldBindJSON(dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid %s payload", what))
	}
	return nil
}

// bindOptionalJSON is bindJSON for endpoints whose body may be omitted.
func bindOptionalJSON(c *gin.Context, dest interface{}, what string) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dest); err != nil && !errors.Is(err, io.EOF) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid %s payload", what))
	}
	return nil
}
