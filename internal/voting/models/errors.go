package models

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-readable reason a vote attempt was rejected.
type ErrorKind string

const (
	ErrEmailExists        ErrorKind = "EMAIL_EXISTS"
	ErrIncognitoMode      ErrorKind = "INCOGNITO_MODE"
	ErrVerification       ErrorKind = "VERIFICATION_ERROR"
	ErrVerificationCreate ErrorKind = "VERIFICATION_CREATE_ERROR"
	ErrDuplicateVote      ErrorKind = "DUPLICATE_VOTE"
	ErrVoteSubmission     ErrorKind = "VOTE_SUBMISSION_ERROR"
	ErrCooldownActive     ErrorKind = "COOLDOWN_ACTIVE"
	ErrCandidateNotFound  ErrorKind = "CANDIDATE_NOT_FOUND"
	ErrInvalidRequest     ErrorKind = "INVALID_REQUEST"
	ErrUnknown            ErrorKind = "UNKNOWN_ERROR"
	ErrProxyDetected      ErrorKind = "PROXY_DETECTED"
	ErrProfileCreate      ErrorKind = "PROFILE_CREATE_ERROR"
)

// Localized user-facing messages.
const (
	MsgVoteSuccess         = "تم تسجيل تصويتك بنجاح!"
	MsgIncognito           = "لا يمكن التصويت في وضع التصفح المتخفي. يرجى استخدام وضع التصفح العادي"
	MsgVerificationError   = "حدث خطأ أثناء التحقق من التصويت"
	MsgDuplicateVote       = "لقد قمت بالتصويت مسبقاً"
	MsgVerificationCreate  = "حدث خطأ أثناء إنشاء التحقق"
	MsgVoteSubmission      = "حدث خطأ أثناء تسجيل التصويت"
	MsgGeneric             = "حدث خطأ أثناء التصويت"
	MsgCooldownFormat      = "لقد قمت بالتصويت مسبقاً. يرجى المحاولة بعد %d ساعة"
	MsgProxy               = "التصويت غير مسموح به باستخدام VPN أو Proxy"
	MsgCandidateNotFound   = "المرشح غير موجود"
	MsgInvalidRequest      = "طلب غير صالح"
	MsgEmailExists         = "البريد الإلكتروني مسجل مسبقاً"
	MsgSignupSuccess       = "تم التسجيل بنجاح"
	MsgProfileCreate       = "فشل في إنشاء الملف الشخصي"
	MsgSignupGeneric       = "حدث خطأ أثناء التسجيل"
	MsgClientValidateRetry = "حدث خطأ أثناء التحقق من التصويت. يرجى المحاولة مرة أخرى"
)

var kindMessages = map[ErrorKind]string{
	ErrEmailExists:        MsgEmailExists,
	ErrIncognitoMode:      MsgIncognito,
	ErrVerification:       MsgVerificationError,
	ErrVerificationCreate: MsgVerificationCreate,
	ErrDuplicateVote:      MsgDuplicateVote,
	ErrVoteSubmission:     MsgVoteSubmission,
	ErrCandidateNotFound:  MsgCandidateNotFound,
	ErrInvalidRequest:     MsgInvalidRequest,
	ErrUnknown:            MsgGeneric,
	ErrProxyDetected:      MsgProxy,
	ErrProfileCreate:      MsgProfileCreate,
}

// Message returns the localized message for kind.
func (k ErrorKind) Message() string {
	if m, ok := kindMessages[k]; ok {
		return m
	}
	return MsgGeneric
}

// CooldownMessage formats the cooldown rejection for the remaining hours.
func CooldownMessage(remainingHours int) string {
	return fmt.Sprintf(MsgCooldownFormat, remainingHours)
}

// VoteError is a rejected vote attempt. Err carries the internal cause and
// is never shown to clients.
type VoteError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *VoteError) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Err.Error()
	}
	return string(e.Kind)
}

func (e *VoteError) Unwrap() error {
	return e.Err
}

// NewVoteError builds a VoteError with the kind's default message.
func NewVoteError(kind ErrorKind, cause error) *VoteError {
	return &VoteError{Kind: kind, Message: kind.Message(), Err: cause}
}

// NewCooldownError builds a COOLDOWN_ACTIVE rejection.
func NewCooldownError(remainingHours int) *VoteError {
	return &VoteError{Kind: ErrCooldownActive, Message: CooldownMessage(remainingHours)}
}

// KindOf extracts the vote error kind, or ErrUnknown for anything else.
func KindOf(err error) ErrorKind {
	var ve *VoteError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ErrUnknown
}

// VoteResult is the response shape of vote operations.
type VoteResult struct {
	Success    bool      `json:"success"`
	Message    string    `json:"message,omitempty"`
	Error      ErrorKind `json:"error,omitempty"`
	VoteID     string    `json:"vote_id,omitempty"`
	VotesCount int64     `json:"votes_count,omitempty"`
}

// ResultFromError converts a failure into a VoteResult without leaking
// internal error text.
func ResultFromError(err error) VoteResult {
	var ve *VoteError
	if errors.As(err, &ve) {
		msg := ve.Message
		if msg == "" {
			msg = ve.Kind.Message()
		}
		return VoteResult{Message: msg, Error: ve.Kind}
	}
	return VoteResult{Message: MsgGeneric, Error: ErrUnknown}
}
