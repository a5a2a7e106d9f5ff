package httputil

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/oyaguma3/eid-eac-terminal-poc/pkg/apperr"
)

// WriteError はProblemDetailをGinレスポンスとして書き込む。
func WriteError(c *gin.Context, problem *ProblemDetail) {
	c.Header("Content-Type", ContentType)
	c.JSON(problem.Status, problem)
}

// AbortWithError はProblemDetailをGinレスポンスとして書き込み、リクエスト処理を中断する。
func AbortWithError(c *gin.Context, problem *ProblemDetail) {
	c.Header("Content-Type", ContentType)
	c.AbortWithStatusJSON(problem.Status, problem)
}

// ProblemFromError は共通エラーをProblemDetailに変換する。
// 該当しないエラーは500として扱う。
func ProblemFromError(err error) *ProblemDetail {
	switch {
	case errors.Is(err, apperr.ErrInvalidRequest):
		return BadRequest(err.Error())
	case errors.Is(err, apperr.ErrSessionNotFound), errors.Is(err, apperr.ErrCardNotFound):
		return NotFound(err.Error())
	case errors.Is(err, apperr.ErrDuplicateCardEntry), errors.Is(err, apperr.ErrSessionAlreadyExists),
		errors.Is(err, apperr.ErrNoCardConnected):
		return Conflict(err.Error())
	case errors.Is(err, apperr.ErrIFDGateway):
		return BadGateway(err.Error())
	case errors.Is(err, apperr.ErrValkeyConnection), errors.Is(err, apperr.ErrTokenSpaceExhausted):
		return ServiceUnavailable(err.Error())
	default:
		return InternalServerError(err.Error())
	}
}
