package calculator

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"keypad-calculator/internal/observability"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// API exposes the session endpoints over the given store.
type API struct {
	store *Store
}

func NewAPI(store *Store) *API {
	return &API{store: store}
}

// CreateSession handles POST /calculator/sessions
func (a *API) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.session.create",
		trace.WithAttributes(attribute.String("request.id", requestID)),
	)
	defer span.End()

	sessionID, m := a.store.Create(ctx)

	span.SetAttributes(attribute.String("calculator.session.id", sessionID))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator session created",
		zap.String("session_id", sessionID),
		zap.String("request_id", requestID),
	)

	writeJSON(w, http.StatusCreated, viewOf(sessionID, requestID, m.Current()))
}

// GetSession handles GET /calculator/sessions/{sessionID}
func (a *API) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	sessionID := chi.URLParam(r, "sessionID")

	ctx, span := tracer.Start(ctx, "calculator.session.get",
		trace.WithAttributes(
			attribute.String("calculator.session.id", sessionID),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	m, ok := a.store.Get(sessionID)
	if !ok {
		observability.RecordError(ctx, span, logger, errorCounter, "get", "session not found",
			fmt.Errorf("no session %q", sessionID), http.StatusNotFound, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	writeJSON(w, http.StatusOK, viewOf(sessionID, requestID, m.Current()))
}

// DeleteSession handles DELETE /calculator/sessions/{sessionID}
func (a *API) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	sessionID := chi.URLParam(r, "sessionID")

	ctx, span := tracer.Start(ctx, "calculator.session.delete",
		trace.WithAttributes(
			attribute.String("calculator.session.id", sessionID),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	if !a.store.Delete(ctx, sessionID) {
		observability.RecordError(ctx, span, logger, errorCounter, "delete", "session not found",
			fmt.Errorf("no session %q", sessionID), http.StatusNotFound, w)
		return
	}

	span.SetStatus(codes.Ok, "")

	logger.Info("calculator session deleted",
		zap.String("session_id", sessionID),
		zap.String("request_id", requestID),
	)

	w.WriteHeader(http.StatusNoContent)
}

// PressKey handles POST /calculator/sessions/{sessionID}/keys — dispatches
// one key press to the session's machine and returns the resulting state.
func (a *API) PressKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	sessionID := chi.URLParam(r, "sessionID")

	// --- 1. Custom child span ---
	ctx, span := tracer.Start(ctx, "calculator.press",
		trace.WithAttributes(
			attribute.String("calculator.session.id", sessionID),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	m, ok := a.store.Get(sessionID)
	if !ok {
		observability.RecordError(ctx, span, logger, errorCounter, "press", "session not found",
			fmt.Errorf("no session %q", sessionID), http.StatusNotFound, w)
		return
	}

	// --- 2. Decode and validate the key press ---
	var req KeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "press", "invalid request body",
			err, http.StatusBadRequest, w)
		return
	}

	action, err := actionFromKey(req)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "press", "invalid key press",
			err, http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(attribute.String("calculator.key", req.Key))

	// --- 3. Dispatch (timed for histogram) ---
	start := time.Now()
	next := m.Dispatch(action)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	// --- 4. Record metrics ---
	attrs := metric.WithAttributes(attribute.String("key", req.Key))
	keyCounter.Add(ctx, 1, attrs)
	keyHistogram.Record(ctx, elapsed, attrs)

	if req.Key == KeyEquals {
		if result, perr := strconv.ParseFloat(next.FirstNumber, 64); perr == nil {
			resultGauge.Record(ctx, result, attrs)
		}
	}

	// --- 5. Span event with the resulting state ---
	span.AddEvent("press.complete", trace.WithAttributes(
		attribute.String("calculator.first_number", next.FirstNumber),
		attribute.String("calculator.second_number", next.SecondNumber),
		attribute.String("calculator.operation", string(next.Operation)),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetStatus(codes.Ok, "")

	// --- 6. Structured log with trace correlation ---
	logger.Info("key press applied",
		zap.String("session_id", sessionID),
		zap.String("key", req.Key),
		zap.String("first_number", next.FirstNumber),
		zap.String("second_number", next.SecondNumber),
		zap.String("operation", string(next.Operation)),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	// --- 7. Write JSON response ---
	writeJSON(w, http.StatusOK, viewOf(sessionID, requestID, next))
}

// actionFromKey maps a key-press request onto the machine's action union.
// Unknown keys (including the keypad's percent button, which has no machine
// action) are rejected here; inapplicable-but-valid presses are accepted and
// no-op inside the machine.
func actionFromKey(req KeyRequest) (Action, error) {
	switch req.Key {
	case KeyDigit:
		if len(req.Digit) != 1 || req.Digit[0] < '0' || req.Digit[0] > '9' {
			return nil, fmt.Errorf("digit must be a single character 0-9, got %q", req.Digit)
		}
		return Digit{Value: req.Digit[0]}, nil
	case KeyOperator:
		op := Op(req.Operator)
		if !ValidOp(op) {
			return nil, fmt.Errorf("operator must be one of + - * /, got %q", req.Operator)
		}
		return ChooseOperation{Operation: op}, nil
	case KeyDecimal:
		return Decimal{}, nil
	case KeyDelete:
		return Delete{}, nil
	case KeyClear:
		return Clear{}, nil
	case KeyEquals:
		return Calculate{}, nil
	default:
		return nil, fmt.Errorf("unknown key %q", req.Key)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
