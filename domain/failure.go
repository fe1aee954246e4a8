package domain

type FailureKind string

const (
	FailureNone            FailureKind = ""
	FailureUnauthenticated FailureKind = "UNAUTHENTICATED"
	FailureValidation      FailureKind = "VALIDATION"
	FailureTransport       FailureKind = "TRANSPORT"
	FailureProvider        FailureKind = "PROVIDER"
	FailureVerification    FailureKind = "VERIFICATION"
)

// User-facing messages for failed checkout attempts.
const (
	MsgNoValidItems       = "no valid items"
	MsgInvalidAmount      = "invalid amount"
	MsgConnectivity       = "could not reach the store, please check your connection and try again"
	MsgSDKUnavailable     = "payment SDK unavailable"
	MsgPaymentFailed      = "payment was not completed"
	MsgVerificationFailed = "we could not confirm your payment; if money was deducted please contact support with your payment id"
	MsgSessionExpired     = "your session has expired, please sign in again"
	MsgAbandoned          = "checkout was abandoned"
)
