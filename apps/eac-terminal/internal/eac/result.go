package eac

// ResultMajor / ResultMinor（BSI TR-03112 Part 1）
const (
	MajorOK    = "http://www.bsi.bund.de/ecard/api/1.1/resultmajor#ok"
	MajorError = "http://www.bsi.bund.de/ecard/api/1.1/resultmajor#error"

	minorPrefix = "http://www.bsi.bund.de/ecard/api/1.1/resultminor/"

	MinorIncorrectParameter        = minorPrefix + "al/common#incorrectParameter"
	MinorInternalError             = minorPrefix + "al/common#internalError"
	MinorUnknownError              = minorPrefix + "al/common#unknownError"
	MinorCancellationByUser        = minorPrefix + "sal#cancellationByUser"
	MinorPrerequisitesNotSatisfied = minorPrefix + "sal#prerequisitesNotSatisfied"
	MinorSecurityConditionNotMet   = minorPrefix + "sal#securityConditionNotSatisfied"
	MinorDocumentValidityFailed    = minorPrefix + "sal/mEAC#DocumentValidityVerificationFailed"
	MinorIFDCancellationByUser     = minorPrefix + "ifdl/common#cancellationByUser"
	MinorDispatcherTimeout         = minorPrefix + "dp#timeout"
)

// Result はDIDAuthenticateResponseの処理結果。
type Result struct {
	Major   string `json:"result_major"`
	Minor   string `json:"result_minor,omitempty"`
	Message string `json:"result_message,omitempty"`
}

// ResultOK は成功結果を返す。
func ResultOK() Result {
	return Result{Major: MajorOK}
}

// IsOK は成功結果かどうかを返す。
func (r Result) IsOK() bool {
	return r.Major == MajorOK
}
