package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mkrawczyk/volleypanel/engine"
	"github.com/mkrawczyk/volleypanel/repositories"
	"github.com/mkrawczyk/volleypanel/services"
)

type jsonResponse map[string]interface{}

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
			panic(err) // programmer error: non-pointer destination
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

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func badRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, jsonResponse{"error": err.Error()})
}

// serviceError maps domain errors to HTTP statuses in one place so every
// handler reports failures consistently. Transient version conflicts only
// reach here after the retry budget is exhausted; 409 tells the client the
// change was not applied and may be retried.
func serviceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var status int
	switch {
	case errors.Is(err, services.ErrInvalidPin),
		errors.Is(err, services.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, repositories.ErrTournamentNotFound),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrSponsorNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repositories.ErrVersionConflict),
		errors.Is(err, services.ErrMatchClaimed),
		errors.Is(err, repositories.ErrSlugConflict):
		status = http.StatusConflict
	case errors.Is(err, services.ErrPinTooShort),
		errors.Is(err, services.ErrSlugRequired),
		errors.Is(err, services.ErrTeamNameRequired),
		errors.Is(err, services.ErrSponsorNameRequired),
		errors.Is(err, services.ErrInvalidSets),
		errors.Is(err, services.ErrInvalidSlug),
		errors.Is(err, services.ErrNameRequired),
		errors.Is(err, engine.ErrNeedFourGroups):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrUploadsDisabled):
		status = http.StatusServiceUnavailable
	default:
		logger.Error("unhandled service error", slog.Any("error", err))
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, jsonResponse{"error": err.Error()})
}
