package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jiaming2012/spx-fair-value/src/eventmodels"
	"github.com/jiaming2012/spx-fair-value/src/eventservices"
	"github.com/jiaming2012/spx-fair-value/src/utils"
)

type ErrorResponse struct {
	Type string `json:"type"`
	Msg  string `json:"msg"`
}

func NewErrorResponse(errType string, msg string) *ErrorResponse {
	return &ErrorResponse{
		Type: errType,
		Msg:  msg,
	}
}

func setResponse(response interface{}, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		return fmt.Errorf("SetResponse: encode: %w", err)
	}

	return nil
}

func setErrorResponse(errType string, statusCode int, err error, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := NewErrorResponse(errType, err.Error())
	if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
		return encodeErr
	}

	return nil
}

type Handler struct {
	service *eventservices.FairValueService
	store   eventservices.SessionStore
}

func (h *Handler) handleFairPrice(w http.ResponseWriter, r *http.Request) {
	save := false
	if saveStr := r.URL.Query().Get("save"); saveStr != "" {
		var err error
		save, err = strconv.ParseBool(saveStr)
		if err != nil {
			setErrorResponse("handleFairPrice: failed to parse save", 400, err, w)
			return
		}
	}

	symbol := eventmodels.NewStockSymbol(mux.Vars(r)["symbol"])

	estimate, err := h.service.Estimate(r.Context(), eventservices.EstimateRequest{
		Symbol: symbol,
		Save:   save,
	})
	if err != nil {
		if errors.Is(err, eventmodels.ErrInsufficientData) {
			setErrorResponse("handleFairPrice: insufficient data", 422, err, w)
			return
		}

		if errors.Is(err, eventmodels.ErrDegenerateEstimate) {
			setErrorResponse("handleFairPrice: degenerate estimate", 422, err, w)
			return
		}

		log.WithContext(r.Context()).Errorf("handleFairPrice: %v", err)
		setErrorResponse("handleFairPrice: failed to estimate", 500, err, w)
		return
	}

	if err := setResponse(estimate, w); err != nil {
		log.Errorf("handleFairPrice: failed to set response: %v", err)
	}
}

func (h *Handler) loadSession(w http.ResponseWriter, r *http.Request) (*eventmodels.Session, bool) {
	date := mux.Vars(r)["date"]
	if _, err := utils.ParseDate(date); err != nil {
		setErrorResponse("loadSession: invalid date", 400, err, w)
		return nil, false
	}

	session, err := h.store.Load(r.Context(), date)
	if err != nil {
		setErrorResponse("loadSession: failed to load session", 500, err, w)
		return nil, false
	}

	return session, true
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	if err := setResponse(session, w); err != nil {
		log.Errorf("handleSession: failed to set response: %v", err)
	}
}

func (h *Handler) handleSessionSummary(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	symbol := eventmodels.NewStockSymbol(r.URL.Query().Get("symbol"))
	if symbol == "" {
		symbol = "SPX"
	}

	summary, err := eventservices.SummarizeSession(session, symbol)
	if err != nil {
		setErrorResponse("handleSessionSummary: no estimates", 404, err, w)
		return
	}

	if err := setResponse(summary, w); err != nil {
		log.Errorf("handleSessionSummary: failed to set response: %v", err)
	}
}

func SetupHandler(router *mux.Router, service *eventservices.FairValueService, store eventservices.SessionStore) {
	h := &Handler{
		service: service,
		store:   store,
	}

	// handleFunc tags the HTTP instrumentation with the route pattern as http.route
	handleFunc := func(pattern string, handlerFunc func(http.ResponseWriter, *http.Request)) {
		handler := otelhttp.WithRouteTag(pattern, http.HandlerFunc(handlerFunc))
		router.Handle(pattern, handler).Methods(http.MethodGet)
	}

	handleFunc("/fair-price/{symbol}", h.handleFairPrice)
	handleFunc("/sessions/{date}", h.handleSession)
	handleFunc("/sessions/{date}/summary", h.handleSessionSummary)
}
