package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/waterwatch/internal/common"
	"github.com/dmitrijs2005/waterwatch/internal/server/aggregation"
	"github.com/dmitrijs2005/waterwatch/internal/server/services"
)

func (s *HTTPServer) ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *HTTPServer) signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req signupRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := s.users.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		var ve *common.ValidationError
		switch {
		case errors.As(err, &ve):
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "All fields are required.", Fields: ve.Fields})
		case errors.Is(err, common.ErrorAlreadyExists):
			writeMessage(w, http.StatusBadRequest, "User already exists")
		default:
			s.logger.Error(ctx, "registration failed", "error", err)
			writeMessage(w, http.StatusPaymentRequired, "Something went wrong")
		}
		return
	}

	s.logger.Info(ctx, "Registered", "user_id", user.ID)
	writeMessage(w, http.StatusOK, "User created successfully")
}

func (s *HTTPServer) signin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req signinRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := s.users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		s.logger.Error(ctx, "sign-in failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, signinResponse{Token: token, Message: "Login Successful"})
}

// warnOwnerMismatch logs a client-supplied owner id that differs from the
// token's. The supplied value is never used.
func (s *HTTPServer) warnOwnerMismatch(r *http.Request, supplied, actual string) {
	if supplied != "" && supplied != actual {
		s.logger.Warn(r.Context(), "ignoring userId that does not match token", "supplied", supplied, "user_id", actual)
	}
}

func (s *HTTPServer) submitReading(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := userFromContext(ctx)

	var req readingRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.warnOwnerMismatch(r, req.UserID, user.ID)

	if _, err := s.readings.Append(ctx, user.ID, req.Input()); err != nil {
		var ve *common.ValidationError
		if errors.As(err, &ve) {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "All fields are required.", Fields: ve.Fields})
			return
		}
		s.logger.Error(ctx, "append failed", "user_id", user.ID, "error", err)
		writeMessage(w, http.StatusInternalServerError, "Error submitting data")
		return
	}

	writeMessage(w, http.StatusCreated, "Data submitted successfully!")
}

func (s *HTTPServer) listReadings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := userFromContext(ctx)
	s.warnOwnerMismatch(r, r.URL.Query().Get("userId"), user.ID)

	list, err := s.readings.Readings(ctx, user.ID)
	if err != nil {
		s.logger.Error(ctx, "query failed", "user_id", user.ID, "error", err)
		writeMessage(w, http.StatusInternalServerError, "Error fetching data")
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// granularityFromQuery accepts either ?view=daily|weekly|monthly|yearly or
// ?granularity=<name>. Without either it falls back to daily.
func granularityFromQuery(r *http.Request) (aggregation.Granularity, error) {
	q := r.URL.Query()
	if g := q.Get("granularity"); g != "" {
		return aggregation.ParseGranularity(g)
	}
	view := q.Get("view")
	if view == "" {
		view = "daily"
	}
	return aggregation.ViewGranularity(view)
}

func (s *HTTPServer) getSeries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := userFromContext(ctx)

	g, err := granularityFromQuery(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.readings.Series(ctx, user.ID, g)
	if err != nil {
		s.logger.Error(ctx, "series failed", "user_id", user.ID, "error", err)
		writeMessage(w, http.StatusInternalServerError, "Error fetching data")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *HTTPServer) export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := userFromContext(ctx)

	g, err := granularityFromQuery(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := s.exports.Export(ctx, user.ID, g)
	if err != nil {
		if errors.Is(err, services.ErrExportUnavailable) {
			writeMessage(w, http.StatusNotImplemented, "Export is not configured")
			return
		}
		s.logger.Error(ctx, "export failed", "user_id", user.ID, "error", err)
		writeMessage(w, http.StatusInternalServerError, "Export failed")
		return
	}

	writeJSON(w, http.StatusOK, exportResponse{URL: out.URL, Key: out.Key})
}
