package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/golfcompete/golfcompete/services"
)

// Error codes carried in the response envelope alongside the HTTP status.
const (
	codeValidationError    = "VALIDATION_ERROR"
	codeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	codeEmailInUse         = "AUTH_EMAIL_IN_USE"
	codeWeakPassword       = "AUTH_WEAK_PASSWORD"
	codeForbidden          = "FORBIDDEN"
	codeNotFound           = "NOT_FOUND"
	codeInvalidState       = "INVALID_STATE"
	codeConflict           = "CONFLICT"
	codeRPCError           = "RPC_ERROR"
	codeInternalError      = "INTERNAL_SERVER_ERROR"
)

type successEnvelope struct {
	Status    string      `json:"status"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

type errorEnvelope struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}, headers http.Header) error {
	js, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func successResponse(w http.ResponseWriter, status int, data interface{}) {
	env := successEnvelope{
		Status:    "success",
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.Error("failed to write JSON response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func errorResponse(w http.ResponseWriter, status int, code, message string) {
	env := errorEnvelope{
		Status:    "error",
		Message:   message,
		Code:      code,
		Timestamp: time.Now().UTC(),
	}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.Error("failed to write JSON error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal server error",
		slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Any("error", err))
	errorResponse(w, http.StatusInternalServerError, codeInternalError,
		"the server encountered a problem and could not process your request")
}

func badRequestResponse(w http.ResponseWriter, err error) {
	errorResponse(w, http.StatusBadRequest, codeValidationError, err.Error())
}

func notFoundResponse(w http.ResponseWriter) {
	errorResponse(w, http.StatusNotFound, codeNotFound, "the requested resource could not be found")
}

func unauthorizedResponse(w http.ResponseWriter, message string) {
	errorResponse(w, http.StatusUnauthorized, codeInvalidCredentials, message)
}

func forbiddenResponse(w http.ResponseWriter) {
	errorResponse(w, http.StatusForbidden, codeForbidden, "operation not allowed for the current user")
}

func getIDFromURL(r *http.Request, param string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, param))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s parameter", param)
	}
	return id, nil
}

// mapServiceErrorToHTTP converts service-layer sentinels to HTTP responses.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrSeriesNotFound),
		errors.Is(err, services.ErrEventNotFound),
		errors.Is(err, services.ErrParticipantNotFound),
		errors.Is(err, services.ErrRoundNotFound),
		errors.Is(err, services.ErrCourseNotFound),
		errors.Is(err, services.ErrHoleNotFound),
		errors.Is(err, services.ErrTeeNotFound),
		errors.Is(err, services.ErrBagNotFound),
		errors.Is(err, services.ErrNoteNotFound):
		notFoundResponse(w)

	case errors.Is(err, services.ErrEmailConflict):
		errorResponse(w, http.StatusConflict, codeEmailInUse, err.Error())
	case errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrParticipantConflict):
		errorResponse(w, http.StatusConflict, codeConflict, err.Error())

	case errors.Is(err, services.ErrPasswordTooWeak):
		errorResponse(w, http.StatusBadRequest, codeWeakPassword, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		errorResponse(w, http.StatusUnauthorized, codeInvalidCredentials, err.Error())
	case errors.Is(err, services.ErrAuthenticationFailed):
		unauthorizedResponse(w, err.Error())

	case errors.Is(err, services.ErrInvitationNotPending),
		errors.Is(err, services.ErrRoundAlreadyCompleted):
		errorResponse(w, http.StatusBadRequest, codeInvalidState, err.Error())

	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrSeriesNameRequired),
		errors.Is(err, services.ErrSeriesInvalidDateRange),
		errors.Is(err, services.ErrSeriesInvalidStatus),
		errors.Is(err, services.ErrEventNameRequired),
		errors.Is(err, services.ErrEventInvalidStatus),
		errors.Is(err, services.ErrInvalidHoleNumber),
		errors.Is(err, services.ErrInvalidPar),
		errors.Is(err, services.ErrInvalidStrokes),
		errors.Is(err, services.ErrInvalidSlope),
		errors.Is(err, services.ErrNoteTextRequired):
		badRequestResponse(w, err)

	case errors.Is(err, services.ErrForbiddenOperation):
		forbiddenResponse(w)

	default:
		serverErrorResponse(w, r, err)
	}
}
