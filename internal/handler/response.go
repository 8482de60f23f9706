package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/tawargy/project-manager/internal/service"
)

// Response helpers. Error bodies always carry {"message": ...}; for
// validation failures the message is a list of field issues.

const (
	msgDenied   = "You are not authorized to perform this action"
	msgInternal = "Something went wrong"
)

type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

func Denied(c *gin.Context) {
	Message(c, http.StatusForbidden, msgDenied)
}

func ValidationFailed(c *gin.Context, issues []ValidationIssue) {
	c.JSON(http.StatusBadRequest, gin.H{"message": issues})
}

// HandleError maps service errors to their status; anything else is logged
// and surfaced as a generic 500 so internals never leak.
func HandleError(c *gin.Context, err error) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		Message(c, svcErr.Status, svcErr.Message)
		return
	}
	log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	Message(c, http.StatusInternalServerError, msgInternal)
}

// bindJSON binds and validates the request body. On failure it writes the
// 400 response itself and returns false.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			issues := make([]ValidationIssue, 0, len(verrs))
			for _, e := range verrs {
				issues = append(issues, ValidationIssue{
					Field:   fieldName(e),
					Message: issueMessage(e),
				})
			}
			ValidationFailed(c, issues)
			return false
		}
		Message(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func fieldName(e validator.FieldError) string {
	name := e.Field()
	if name == "" {
		return name
	}
	runes := []rune(name)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

func issueMessage(e validator.FieldError) string {
	field := fieldName(e)
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Invalid email"
	case "min":
		if e.Kind().String() == "string" {
			return field + " must have at least " + e.Param() + " characters"
		}
		return field + " must be at least " + e.Param()
	case "max":
		if e.Kind().String() == "string" {
			return field + " must have at most " + e.Param() + " characters"
		}
		return field + " must be at most " + e.Param()
	case "oneof":
		return field + " must be one of: " + strings.ReplaceAll(e.Param(), " ", ", ")
	default:
		return field + " is invalid"
	}
}

func parseID(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 64)
	return uint(id)
}

func parsePage(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

// parseDate accepts RFC3339 or a bare date. Ordering of start/end is not
// checked here; the API stores whatever parseable range it is given.
func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
