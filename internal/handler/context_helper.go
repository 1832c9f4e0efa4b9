package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/contoso-university-api/internal/middleware"
	appErrors "github.com/noah-isme/contoso-university-api/pkg/errors"
	"github.com/noah-isme/contoso-university-api/pkg/response"
)

// pathID parses the id path parameter. Anything that is not an integer is 0,
// which never matches a stored record.
func pathID(c *gin.Context) int {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0
	}
	return id
}

func queryInt(c *gin.Context, key string) int {
	value, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return 0
	}
	return value
}

func queryBool(c *gin.Context, key string) bool {
	value, err := strconv.ParseBool(c.Query(key))
	return err == nil && value
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

// respondFormError reports a failed create or update. Validation and save
// failures carry the submitted input back so it can be redisplayed.
func respondFormError(c *gin.Context, err error, input interface{}) {
	if errors.Is(err, appErrors.ErrValidation) || errors.Is(err, appErrors.ErrSaveFailed) {
		response.ErrorWithData(c, err, input)
		return
	}
	response.Error(c, err)
}

// respondDeleteError sends a failed delete back to its confirmation with the
// retry flag set.
func respondDeleteError(c *gin.Context, err error) {
	if errors.Is(err, appErrors.ErrDeleteFailed) {
		response.SeeOther(c, deleteConfirmPath(c)+"?saveChangesError=true")
		return
	}
	response.Error(c, err)
}

func deleteConfirmPath(c *gin.Context) string {
	return strings.TrimSuffix(c.Request.URL.Path, "/delete") + "/delete"
}

func createdPath(c *gin.Context, id int) string {
	return fmt.Sprintf("%s/%d", strings.TrimSuffix(c.Request.URL.Path, "/"), id)
}

func deleteConfirmMeta(c *gin.Context, message string) map[string]interface{} {
	if message != "" {
		middleware.SetMeta(c, middleware.MetaErrorMessage, message)
	}
	return middleware.ExtractMeta(c)
}
