package trust

import (
	"errors"
	"fmt"
)

// ErrPrerequisitesNotSatisfied はTR-03112 3.4.4のいずれかのチェックが失敗した場合のエラー
var ErrPrerequisitesNotSatisfied = errors.New("trust check failed: prerequisites not satisfied")

// CheckError は失敗したチェック名と理由を保持する。
type CheckError struct {
	Check  string // チェック名（eid-server, tc-token-server, same-origin）
	Reason string
}

// Error はerrorインターフェースを実装する。
func (e *CheckError) Error() string {
	return fmt.Sprintf("trust check %s failed: %s", e.Check, e.Reason)
}

// Unwrap はErrPrerequisitesNotSatisfiedを返す。
func (e *CheckError) Unwrap() error {
	return ErrPrerequisitesNotSatisfied
}

// チェック名
const (
	CheckNameEIDServer     = "eid-server"
	CheckNameTCTokenServer = "tc-token-server"
	CheckNameSameOrigin    = "same-origin"
)
