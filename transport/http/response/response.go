package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"slotkeeper/shared/constant"
	"slotkeeper/shared/failure"
	"slotkeeper/shared/logger"
)

// retryAfterSeconds is advertised on retryable failures such as a busy resource lock.
const retryAfterSeconds = "1"

type Data[T any] struct {
	Data *T `json:"data,omitempty"`
}

type Error struct {
	Error *string `json:"error,omitempty"`
	// Kind and State let clients branch without parsing messages; State is the
	// current booking status on invalid transitions.
	Kind  string `json:"kind,omitempty"`
	State string `json:"state,omitempty"`
}

type Message struct {
	Message *string `json:"message,omitempty"`
}

// WithMessage sends a response with a simple text message
func WithMessage(writer http.ResponseWriter, code int, message string) {
	response(writer, code, Message{Message: &message})
}

// WithJSON sends a response containing a JSON object
func WithJSON(writer http.ResponseWriter, code int, jsonPayload interface{}) {
	response(writer, code, Data[any]{Data: &jsonPayload})
}

// WithError sends a response with an error message. Errors that are not a
// failure.Failure are reported without their internal message.
func WithError(writer http.ResponseWriter, err error) {
	code := failure.GetCode(err)
	payload := Error{Kind: string(failure.GetKind(err))}

	var fail *failure.Failure
	if errors.As(err, &fail) {
		payload.Error = &fail.Message
		payload.State = fail.State
	} else {
		errMsg := http.StatusText(code)
		payload.Error = &errMsg
	}

	if failure.IsRetryable(err) {
		writer.Header().Set(constant.RequestHeaderRetryAfter, retryAfterSeconds)
	}

	response(writer, code, payload)
}

// WithRequestLimitExceeded sends a default response for when the request limit is exceeded
func WithRequestLimitExceeded(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusTooManyRequests, constant.ResponseErrorRequestLimitExceeded)
}

// WithPreparingShutdown sends a default response for when the server is preparing to shut down
func WithPreparingShutdown(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorPrepareShutdown)
}


func response(writer http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorWithStack(err)

		return
	}

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	writer.WriteHeader(code)
	_, err = writer.Write(response)

	if err != nil {
		logger.ErrorWithStack(err)
	}
}
