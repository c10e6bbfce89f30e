package gferrors

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kataras/iris"
)

// IException provides interface for
//   - user facing error message with status code
//   - raw error for tracking them
type IException interface {
	ExceptionBody() map[string]interface{}
	ExceptionStatusCode() int
	RawException() error
}

type Error struct {
	IException
	Code       int
	Message    string
	StatusCode int
	RawError   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v (Code = %v)", e.Message, e.Code)
}

func (e *Error) ExceptionBody() map[string]interface{} {
	return map[string]interface{}{"code": e.Code, "message": e.Message}
}

func (e *Error) ExceptionStatusCode() int {
	return e.StatusCode
}

func (e *Error) RawException() error {
	return e.RawError
}

// WithMsg modify user visible message
func (e Error) WithMsg(msg string) *Error {
	e.Message = msg
	return &e
}

// WithError returns raw error struct which is not exposed to user.
// It is used for internal error tracking.
func (e Error) WithError(err error) *Error {
	e.RawError = err
	return &e
}

func New(code int, message string, statusCode int) *Error {
	return &Error{Code: code, Message: message, StatusCode: statusCode}
}

func Format(err error) string {
	if gferr, ok := err.(IException); ok && gferr.RawException() != nil {
		return fmt.Sprintf("%v : %v", err.Error(), gferr.RawException().Error())
	}
	return err.Error()
}

func hasCode(err error, code int) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), strconv.Itoa(code))
}

func IsNotFound(err error) bool {
	return hasCode(err, NotFound.Code)
}

// IsValidation reports whether the error is a record validation failure,
// which is fatal for one aggregate only and never aborts a batch.
func IsValidation(err error) bool {
	return hasCode(err, InvalidRecord.Code)
}

// IsPersistence reports whether the error came out of the storage layer.
func IsPersistence(err error) bool {
	return hasCode(err, PersistenceFailure.Code)
}

// code convention is http_status_code:custom_code where custom code starts from 10000
var (
	// 400
	RequestBodyLoadFailure = New(40010000, "request body format is invalid", iris.StatusBadRequest)
	InvalidRequestParam    = New(40010001, "request parameters are invalid", iris.StatusUnprocessableEntity)

	// 404
	NotFound = New(40410000, "resource not found", iris.StatusNotFound)

	// 422 - the aggregate violates a model invariant; the message names it
	InvalidRecord = New(42210000, "corporate action record failed validation", iris.StatusUnprocessableEntity)

	// 500
	InternalServerError = New(50010000, "internal server error occurred", iris.StatusInternalServerError)
	PersistenceFailure  = New(50010001, "corporate action could not be persisted", iris.StatusInternalServerError)
)
