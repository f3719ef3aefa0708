// Package router exposes the users API over HTTP with chi. Every handler
// goes through the service, which owns the shared in-memory storage.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/hourstracker/internal/gzippedhttp"
	"github.com/patric-chuzhbe/hourstracker/internal/logger"
	"github.com/patric-chuzhbe/hourstracker/internal/models"
	"github.com/patric-chuzhbe/hourstracker/internal/user"
)

type usersService interface {
	ListUsers(ctx context.Context) ([]user.User, error)
	GetUser(ctx context.Context, userID uint32) (user.User, error)
	CreateUser(ctx context.Context, request models.CreateUserRequest) (user.User, error)
	UpdateUserName(ctx context.Context, userID uint32, request models.UpdateUserRequest) (user.User, error)
	AddUserHours(ctx context.Context, userID uint32, hoursToAdd float64) (user.User, error)
	DeleteUser(ctx context.Context, userID uint32) (user.User, error)
	DeleteAllUsers(ctx context.Context) ([]user.User, error)
}

type statsService interface {
	Ping(ctx context.Context) error
	GetInternalStats(ctx context.Context) (models.InternalStatsResponse, error)
}

type routerService interface {
	usersService
	statsService
}

type trustedGate interface {
	OnlyTrusted(h http.Handler) http.Handler
}

// Router holds the HTTP handlers of the users API.
type Router struct {
	svc routerService
}

var allowedMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// writeJSON encodes payload before the header goes out, so a payload that can
// not be encoded becomes a 500 instead of a success status with no body.
func writeJSON(response http.ResponseWriter, statusCode int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Log.Debugln("Error calling the `json.Marshal()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(statusCode)

	if _, err := response.Write(append(body, '\n')); err != nil {
		logger.Log.Debugln("Error calling the `response.Write()`: ", zap.Error(err))
	}
}

func writeText(response http.ResponseWriter, statusCode int, message string) {
	response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	response.Header().Set("X-Content-Type-Options", "nosniff")
	response.WriteHeader(statusCode)

	if _, err := response.Write([]byte(message)); err != nil {
		logger.Log.Debugln("Error calling the `response.Write()`: ", zap.Error(err))
	}
}

func writeServiceError(response http.ResponseWriter, request *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrUserNotFound):
		logger.Log.Infof("%s %s - user not found", request.Method, request.URL.Path)
		writeText(response, http.StatusNotFound, models.MessageUserNotFound)
	case errors.Is(err, models.ErrNameRequired):
		logger.Log.Infof("%s %s - invalid request body or missing name", request.Method, request.URL.Path)
		writeText(response, http.StatusBadRequest, models.MessageNameRequired)
	case errors.Is(err, models.ErrHoursOutOfRange):
		logger.Log.Infof("%s %s - hours worked would go out of range", request.Method, request.URL.Path)
		writeText(response, http.StatusBadRequest, models.MessageHoursOutOfRange)
	default:
		logger.Log.Debugln("Error handling", request.Method, request.URL.Path, zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
	}
}

// parseUserID reads the {id} URL param. An id that is not a uint32 can not
// belong to any user.
func parseUserID(request *http.Request) (uint32, bool) {
	userID, err := strconv.ParseUint(chi.URLParam(request, "id"), 10, 32)
	if err != nil {
		return 0, false
	}

	return uint32(userID), true
}

func decodeBody(request *http.Request, target any) error {
	return json.NewDecoder(request.Body).Decode(target)
}

func (router *Router) GetUsers(response http.ResponseWriter, request *http.Request) {
	users, err := router.svc.ListUsers(request.Context())
	if err != nil {
		writeServiceError(response, request, err)
		return
	}

	logger.Log.Infof("GET /users - returning %d users", len(users))
	writeJSON(response, http.StatusOK, users)
}

func (router *Router) GetUser(response http.ResponseWriter, request *http.Request) {
	userID, ok := parseUserID(request)
	if !ok {
		writeServiceError(response, request, models.ErrUserNotFound)
		return
	}

	usr, err := router.svc.GetUser(request.Context(), userID)
	if err != nil {
		writeServiceError(response, request, err)
		return
	}

	logger.Log.Infof("GET /users/%d - found user: %+v", userID, usr)
	writeJSON(response, http.StatusOK, usr)
}

func (router *Router) PostUsers(response http.ResponseWriter, request *http.Request) {
	var payload models.CreateUserRequest
	if err := decodeBody(request, &payload); err != nil {
		logger.Log.Debugln("Error calling the `decodeBody()`: ", zap.Error(err))
		writeText(response, http.StatusBadRequest, models.MessageInvalidBody)
		return
	}

	usr, err := router.svc.CreateUser(request.Context(), payload)
	if err != nil {
		writeServiceError(response, request, err)
		return
	}

	logger.Log.Infof("POST /users - added new user: %+v", usr)
	writeJSON(response, http.StatusCreated, usr)
}

// PutUser replaces the name. A blank name leaves the user as it was.
func (router *Router) PutUser(response http.ResponseWriter, request *http.Request) {
	userID, ok := parseUserID(request)
	if !ok {
		writeServiceError(response, request, models.ErrUserNotFound)
		return
	}

	var payload models.UpdateUserRequest
	if err := decodeBody(request, &payload); err != nil {
		logger.Log.Debugln("Error calling the `decodeBody()`: ", zap.Error(err))
		writeText(response, http.StatusBadRequest, models.MessageInvalidBody)
		return
	}

	logger.Log.Infof("PUT /users/%d - updating user, requested name: %q", userID, payload.Name)
	usr, err := router.svc.UpdateUserName(request.Context(), userID, payload)
	if err != nil {
		writeServiceError(response, request, err)
		return
	}

	logger.Log.Infof("PUT /users/%d - updated user: %+v", userID, usr)
	writeJSON(response, http.StatusOK, usr)
}

// PatchUser adds hoursToAdd to the hours worked.
func (router *Router) PatchUser(response http.ResponseWriter, request *http.Request) {
	userID, ok := parseUserID(request)
	if !ok {
		writeServiceError(response, request, models.ErrUserNotFound)
		return
	}

	var payload models.AddHoursRequest
	if err := decodeBody(request, &payload); err != nil {
		logger.Log.Debugln("Error calling the `decodeBody()`: ", zap.Error(err))
		writeText(response, http.StatusBadRequest, models.MessageInvalidBody)
		return
	}
	if payload.HoursToAdd == nil {
		writeText(response, http.StatusBadRequest, models.MessageHoursToAddMissing)
		return
	}

	logger.Log.Infof("PATCH /users/%d - adding %v hours", userID, *payload.HoursToAdd)
	usr, err := router.svc.AddUserHours(request.Context(), userID, *payload.HoursToAdd)
	if err != nil {
		writeServiceError(response, request, err)
		return
	}

	logger.Log.Infof("PATCH /users/%d - updated user hours: %+v", userID, usr)
	writeJSON(response, http.StatusOK, usr)
}

func (router *Router) DeleteUser(response http.ResponseWriter, request *http.Request) {
	userID, ok := parseUserID(request)
	if !ok {
		writeServiceError(response, request, models.ErrUserNotFound)
		return
	}

	usr, err := router.svc.DeleteUser(request.Context(), userID)
	if err != nil {
		writeServiceError(response, request, err)
		return
	}

	logger.Log.Infof("DELETE /users/%d - deleted user: %+v", userID, usr)
	writeJSON(response, http.StatusOK, usr)
}

// DeleteUsers wipes every user and restarts ids from 1.
func (router *Router) DeleteUsers(response http.ResponseWriter, request *http.Request) {
	users, err := router.svc.DeleteAllUsers(request.Context())
	if err != nil {
		writeServiceError(response, request, err)
		return
	}

	logger.Log.Infoln("DELETE /users - deleted all users")
	writeJSON(response, http.StatusOK, users)
}

func (router *Router) GetPing(response http.ResponseWriter, request *http.Request) {
	if err := router.svc.Ping(request.Context()); err != nil {
		logger.Log.Debugln("Error calling the `router.svc.Ping()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	response.WriteHeader(http.StatusOK)
}

func (router *Router) GetInternalStats(response http.ResponseWriter, request *http.Request) {
	stats, err := router.svc.GetInternalStats(request.Context())
	if err != nil {
		writeServiceError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, stats)
}

func sameOrigin(origin string, request *http.Request) bool {
	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}

	return strings.EqualFold(parsed.Host, request.Host)
}

// allowedOriginOnly answers 400 to cross-origin requests, preflights
// included, coming from any origin other than allowedOrigin. Requests
// without Origin pass.
func allowedOriginOnly(allowedOrigin string) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		middleware := func(response http.ResponseWriter, request *http.Request) {
			origin := request.Header.Get("Origin")
			if origin == "" || strings.EqualFold(origin, allowedOrigin) || sameOrigin(origin, request) {
				h.ServeHTTP(response, request)
				return
			}

			logger.Log.Infof("%s %s - rejected origin %q", request.Method, request.URL.Path, origin)
			writeText(response, http.StatusBadRequest, models.MessageOriginNotAllowed)
		}

		return http.HandlerFunc(middleware)
	}
}

// New builds the chi router with logging, gzip, CORS for allowedOrigin and
// all the users routes. The internal stats route is gated by trusted.
func New(
	svc routerService,
	allowedOrigin string,
	corsMaxAge int,
	trusted trustedGate,
) *chi.Mux {
	myRouter := &Router{
		svc: svc,
	}

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		allowedOriginOnly(allowedOrigin),
		cors.Handler(cors.Options{
			AllowedOrigins: []string{allowedOrigin},
			AllowedMethods: allowedMethods,
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         corsMaxAge,
		}),
		gzippedhttp.UngzipRequest,
		gzippedhttp.GzipJSONResponse,
	)

	router.Get(`/ping`, myRouter.GetPing)
	router.With(trusted.OnlyTrusted).Get(`/internal/stats`, myRouter.GetInternalStats)

	router.Route(`/users`, func(r chi.Router) {
		r.Get(`/`, myRouter.GetUsers)
		r.Post(`/`, myRouter.PostUsers)
		r.Delete(`/`, myRouter.DeleteUsers)
		r.Get(`/{id}`, myRouter.GetUser)
		r.Put(`/{id}`, myRouter.PutUser)
		r.Patch(`/{id}`, myRouter.PatchUser)
		r.Delete(`/{id}`, myRouter.DeleteUser)
	})

	return router
}
