package eac

// State はEAC認証試行の状態を表す型
type State string

// EAC認証状態の定数
const (
	StateNew                   State = "NEW"
	StateReceiveEAC1           State = "RECEIVE_EAC1"
	StateRunTrustChecks        State = "RUN_TRUST_CHECKS"
	StateVerifyCertChain       State = "VERIFY_CERT_CHAIN"
	StateDeriveCHAT            State = "DERIVE_CHAT"
	StateRunInteractiveConsent State = "RUN_INTERACTIVE_CONSENT"
	StateAwaitPACEResult       State = "AWAIT_PACE_RESULT"
	StateBuildEAC1Output       State = "BUILD_EAC1_OUTPUT"
	StateEAC1Complete          State = "EAC1_COMPLETE" // EAC2待ち
	StateReceiveEAC2           State = "RECEIVE_EAC2"
	StateValidateSchema        State = "VALIDATE_MESSAGE_SCHEMA"
	StatePerformTA             State = "PERFORM_TERMINAL_AUTH"
	StateAwaitAdditionalInput  State = "AWAIT_ADDITIONAL_INPUT" // 署名待ち
	StateReceiveAdditional     State = "RECEIVE_ADDITIONAL_INPUT"
	StatePerformCA             State = "PERFORM_CHIP_AUTH"
	StateBuildEAC2Output       State = "BUILD_EAC2_OUTPUT"
	StateSuccess               State = "SUCCESS"           // 終了状態
	StateFailure               State = "FAILURE"           // 終了状態
	StateCancelledByUser       State = "CANCELLED_BY_USER" // 終了状態
)

// StateEvent は状態遷移イベントを表す型
type StateEvent string

// 状態遷移イベントの定数
const (
	EventEAC1Received       StateEvent = "EAC1_RECEIVED"
	EventInputParsed        StateEvent = "INPUT_PARSED"
	EventChecksPassed       StateEvent = "CHECKS_PASSED"
	EventChainVerified      StateEvent = "CHAIN_VERIFIED"
	EventCHATDerived        StateEvent = "CHAT_DERIVED"
	EventConsentStarted     StateEvent = "CONSENT_STARTED"
	EventPACEDone           StateEvent = "PACE_DONE"
	EventEAC1Built          StateEvent = "EAC1_BUILT"
	EventEAC2Received       StateEvent = "EAC2_RECEIVED"
	EventAdditionalReceived StateEvent = "ADDITIONAL_RECEIVED"
	EventSchemaPending      StateEvent = "SCHEMA_PENDING"
	EventSchemaValid        StateEvent = "SCHEMA_VALID"
	EventSignatureMissing   StateEvent = "SIGNATURE_MISSING" // 署名なしEAC2: チャレンジを返して待機
	EventTADone             StateEvent = "TA_DONE"
	EventCADone             StateEvent = "CA_DONE"
	EventEAC2Built          StateEvent = "EAC2_BUILT"
	EventFail               StateEvent = "FAIL"   // 任意の非終了状態から
	EventCancel             StateEvent = "CANCEL" // 任意の非終了状態から
)

// transitionTable はEAC状態遷移テーブル。EventFail/EventCancelは全非終了状態で受理する。
var transitionTable = map[State]map[StateEvent]State{
	StateNew: {
		EventEAC1Received: StateReceiveEAC1,
	},
	StateReceiveEAC1: {
		EventInputParsed: StateRunTrustChecks,
	},
	StateRunTrustChecks: {
		EventChecksPassed: StateVerifyCertChain,
	},
	StateVerifyCertChain: {
		EventChainVerified: StateDeriveCHAT,
	},
	StateDeriveCHAT: {
		EventCHATDerived: StateRunInteractiveConsent,
	},
	StateRunInteractiveConsent: {
		EventConsentStarted: StateAwaitPACEResult,
	},
	StateAwaitPACEResult: {
		EventPACEDone: StateBuildEAC1Output,
	},
	StateBuildEAC1Output: {
		EventEAC1Built: StateEAC1Complete,
	},
	StateEAC1Complete: {
		EventEAC2Received: StateReceiveEAC2,
	},
	StateReceiveEAC2: {
		EventSchemaPending: StateValidateSchema,
	},
	StateAwaitAdditionalInput: {
		EventAdditionalReceived: StateReceiveAdditional,
	},
	StateReceiveAdditional: {
		EventSchemaPending: StateValidateSchema,
	},
	StateValidateSchema: {
		EventSchemaValid: StatePerformTA,
	},
	StatePerformTA: {
		EventTADone:           StatePerformCA,
		EventSignatureMissing: StateAwaitAdditionalInput,
	},
	StatePerformCA: {
		EventCADone: StateBuildEAC2Output,
	},
	StateBuildEAC2Output: {
		EventEAC2Built: StateSuccess,
	},
}

// ValidateTransition は現在の状態とイベントから次の状態を返す。
// 無効な遷移の場合はErrInvalidTransitionを返す。
func ValidateTransition(current State, event StateEvent) (State, error) {
	// 終了状態からの遷移は不可
	if IsTerminal(current) {
		return "", ErrInvalidTransition
	}
	if _, ok := transitionTable[current]; !ok {
		return "", ErrInvalidTransition
	}

	switch event {
	case EventFail:
		return StateFailure, nil
	case EventCancel:
		return StateCancelledByUser, nil
	}

	next, ok := transitionTable[current][event]
	if !ok {
		return "", ErrInvalidTransition
	}
	return next, nil
}

// IsTerminal は指定された状態が終了状態かどうかを判定する。
func IsTerminal(state State) bool {
	return state == StateSuccess || state == StateFailure || state == StateCancelledByUser
}

// validStates は有効なState一覧
var validStates = map[State]struct{}{
	StateNew:                   {},
	StateReceiveEAC1:           {},
	StateRunTrustChecks:        {},
	StateVerifyCertChain:       {},
	StateDeriveCHAT:            {},
	StateRunInteractiveConsent: {},
	StateAwaitPACEResult:       {},
	StateBuildEAC1Output:       {},
	StateEAC1Complete:          {},
	StateReceiveEAC2:           {},
	StateValidateSchema:        {},
	StatePerformTA:             {},
	StateAwaitAdditionalInput:  {},
	StateReceiveAdditional:     {},
	StatePerformCA:             {},
	StateBuildEAC2Output:       {},
	StateSuccess:               {},
	StateFailure:               {},
	StateCancelledByUser:       {},
}

// IsValidState は文字列が有効なStateかどうかを判定する。
func IsValidState(s string) bool {
	_, ok := validStates[State(s)]
	return ok
}
