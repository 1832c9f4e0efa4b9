package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/contoso-university-api/pkg/errors"
)

func TestErrorWithDataEchoesInput(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ErrorWithData(c, appErrors.ErrSaveFailed, map[string]string{"last_name": "Smith"})

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body struct {
		Data  map[string]string `json:"data"`
		Error appErrors.Error   `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Smith", body.Data["last_name"])
	assert.Equal(t, "SAVE_FAILED", body.Error.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestErrorNormalisesPlainErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "data")
}

func TestSeeOther(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/students/1/delete", nil)

	SeeOther(c, "/students/1/delete?saveChangesError=true")
	c.Writer.WriteHeaderNow() // gin buffers the status until first write; POST redirects have no body

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/students/1/delete?saveChangesError=true", w.Header().Get("Location"))
}
