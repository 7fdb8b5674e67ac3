package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytparty/internal/models"
	"github.com/desertthunder/ytparty/internal/session"
	"github.com/desertthunder/ytparty/internal/shared"
)

// maxBodyBytes leaves room for a base64 avatar of [models.MaxAvatarBytes].
const maxBodyBytes = 4 << 20

// SessionAPI serves the session engine as JSON.
type SessionAPI struct {
	engine *session.Engine
	logger *log.Logger
}

type credentialsRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

type profileRequest struct {
	Alias  *string `json:"alias"`
	Avatar *string `json:"avatar"`
}

type eventRequest struct {
	Event string `json:"event"`
}

type eventUpdateRequest struct {
	ID string `json:"id"`
	models.EventDraft
}

// NewSessionAPI creates a SessionAPI over engine.
func NewSessionAPI(engine *session.Engine, logger *log.Logger) *SessionAPI {
	return &SessionAPI{engine: engine, logger: shared.WithLogger(logger, "component", "api")}
}

// Routes returns the HTTP routes this handler serves.
func (h *SessionAPI) Routes() []string {
	return []string{
		"/me", "/register", "/login", "/logout", "/profile", "/accounts",
		"/events", "/events/update", "/events/delete", "/events/start", "/events/cancel",
		"/events/join", "/events/leave", "/events/attendees",
	}
}

func (h *SessionAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + r.URL.Path
	switch route {
	case "GET /me":
		writeJSON(w, http.StatusOK, h.engine.LoadCurrentUser())
	case "POST /register":
		h.register(w, r)
	case "POST /login":
		h.login(w, r)
	case "POST /logout":
		if err := h.engine.ClearSession(); err != nil {
			h.fail(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case "POST /profile":
		h.profile(w, r)
	case "GET /accounts":
		h.accounts(w)
	case "GET /events":
		h.listEvents(w)
	case "POST /events":
		h.createEvent(w, r)
	case "POST /events/update":
		h.updateEvent(w, r)
	case "POST /events/delete", "POST /events/start":
		h.manageEvent(w, r)
	case "POST /events/cancel":
		event, err := h.engine.CancelEvent()
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, event)
	case "POST /events/join", "POST /events/leave":
		h.event(w, r)
	case "GET /events/attendees":
		h.attendees(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *SessionAPI) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}

	account, err := h.engine.RegisterNewAccount(req.ID, req.Password)
	if err != nil {
		h.fail(w, err)
		return
	}
	account.Password = ""
	writeJSON(w, http.StatusCreated, account)
}

func (h *SessionAPI) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}

	s, err := h.engine.Authenticate(shared.NormalizeAccountID(req.ID), req.Password)
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := h.engine.CommitUser(s); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *SessionAPI) profile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}
	if req.Alias == nil && req.Avatar == nil {
		h.fail(w, fmt.Errorf("%w: alias or avatar", shared.ErrMissingArgument))
		return
	}

	var s *models.Session
	var err error
	if req.Alias != nil {
		if s, err = h.engine.UpdateAlias(*req.Alias); err != nil {
			h.fail(w, err)
			return
		}
	}
	if req.Avatar != nil {
		if *req.Avatar == "" {
			s, err = h.engine.ClearAvatar()
		} else {
			s, err = h.engine.UpdateAvatar(*req.Avatar)
		}
		if err != nil {
			h.fail(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *SessionAPI) accounts(w http.ResponseWriter) {
	s := h.engine.LoadCurrentUser()
	if s == nil {
		h.fail(w, shared.ErrNotAuthenticated)
		return
	}
	if !s.Role.Privileged() {
		h.fail(w, fmt.Errorf("%w: administrator role required", shared.ErrForbidden))
		return
	}

	accounts, err := h.engine.ListAccounts()
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (h *SessionAPI) event(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}

	var err error
	if r.URL.Path == "/events/join" {
		err = h.engine.JoinEvent(req.Event)
	} else {
		err = h.engine.LeaveEvent(req.Event)
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionAPI) listEvents(w http.ResponseWriter) {
	events, err := h.engine.Events().List()
	if err != nil {
		h.fail(w, err)
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *SessionAPI) createEvent(w http.ResponseWriter, r *http.Request) {
	var draft models.EventDraft
	if err := decode(w, r, &draft); err != nil {
		h.fail(w, err)
		return
	}

	event, err := h.engine.CreateEvent(draft)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (h *SessionAPI) updateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventUpdateRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}

	event, err := h.engine.UpdateEvent(req.ID, req.EventDraft)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// manageEvent handles the catalogue operations addressed by event id alone.
func (h *SessionAPI) manageEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}

	if r.URL.Path == "/events/delete" {
		if err := h.engine.DeleteEvent(req.Event); err != nil {
			h.fail(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	event, err := h.engine.StartEvent(req.Event)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *SessionAPI) attendees(w http.ResponseWriter, r *http.Request) {
	eventID := r.URL.Query().Get("event")
	if eventID == "" {
		h.fail(w, fmt.Errorf("%w: event", shared.ErrMissingArgument))
		return
	}

	attendees, err := h.engine.Registrations().Attendees(eventID)
	if err != nil {
		h.fail(w, err)
		return
	}
	if attendees == nil {
		attendees = []string{}
	}
	writeJSON(w, http.StatusOK, attendees)
}

func (h *SessionAPI) fail(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
	}
	writeError(w, status, err.Error())
}

// StatusFor maps an engine error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrValidationFailed),
		errors.Is(err, shared.ErrMissingArgument),
		errors.Is(err, shared.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrInvalidCredentials), errors.Is(err, shared.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrForbidden), errors.Is(err, shared.ErrProtectedAccount):
		return http.StatusForbidden
	case errors.Is(err, shared.ErrAccountNotFound), errors.Is(err, shared.ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrNameReserved), errors.Is(err, shared.ErrNameTaken),
		errors.Is(err, shared.ErrEventInProgress):
		return http.StatusConflict
	case errors.Is(err, shared.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: request body: %v", shared.ErrInvalidArgument, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
