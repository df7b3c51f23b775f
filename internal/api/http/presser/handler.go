package presser

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	domain "github.com/oshokin/button-presser/internal/domain/actuator"
	"github.com/oshokin/button-presser/internal/logger"
)

// Route paths.
const (
	RouteHome             = "/"
	RoutePress            = "/press"
	RouteSetPressDuration = "/set-press-duration"
	RouteSetDutyCycle     = "/set-duty-cycle"
)

// triggerSource tags triggers coming through this transport.
const triggerSource = "http"

// Service abstracts the business operations the HTTP layer depends on.
type Service interface {
	Press(ctx context.Context, source string) error
	GetSetting(ctx context.Context, key domain.Key) (uint8, bool, error)
	SetSetting(ctx context.Context, key domain.Key, value uint8) error
	Status(ctx context.Context) domain.Status
}

// HomePage is the body of GET /.
type HomePage struct {
	// PressDuration is the stored press duration, 0 when never set.
	PressDuration uint8 `json:"press_duration"`
	// DutyCycle is the stored duty cycle, 0 when never set.
	DutyCycle uint8 `json:"duty_cycle"`
	// State is the sequencer state.
	State string `json:"state"`
	// Pending is the number of queued presses.
	Pending int `json:"pending"`
}

// handler serves the routes on top of a Service.
type handler struct {
	// ctx carries the logger.
	ctx context.Context //nolint:containedctx // Request contexts do not carry the service logger.
	// service provides the business logic.
	service Service
}

// NewRouter builds the HTTP router. ctx supplies the logger for request logs.
func NewRouter(ctx context.Context, service Service) http.Handler {
	h := &handler{
		ctx:     logger.WithName(ctx, "http"),
		service: service,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get(RouteHome, h.home)
	r.Get(RoutePress, h.press)
	r.Get(RouteSetPressDuration, h.setter(domain.KeyPressDuration))
	r.Get(RouteSetDutyCycle, h.setter(domain.KeyDutyCycle))

	return r
}

// home renders both settings. Unset values show as 0 without being stored.
func (h *handler) home(w http.ResponseWriter, r *http.Request) {
	var page HomePage

	for _, key := range domain.Keys() {
		value, _, err := h.service.GetSetting(r.Context(), key)
		if err != nil {
			h.fail(w, r, err)

			return
		}

		switch key {
		case domain.KeyPressDuration:
			page.PressDuration = value
		case domain.KeyDutyCycle:
			page.DutyCycle = value
		}
	}

	st := h.service.Status(r.Context())
	page.State = st.State.String()
	page.Pending = st.Pending

	render.JSON(w, r, page)
}

// press enqueues one actuation.
func (h *handler) press(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Press(r.Context(), triggerSource); err != nil {
		h.fail(w, r, err)

		return
	}

	w.WriteHeader(http.StatusOK)
}

// setter stores the value found after the first '=' of the query string.
// Missing, non-numeric or out-of-range values are ignored with 200 OK.
func (h *handler) setter(key domain.Key) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, raw, found := strings.Cut(r.URL.RawQuery, "=")

		value, err := domain.ParseValue(raw)
		if !found || err != nil {
			logger.DebugKV(h.ctx, "Ignoring invalid setting", "key", key, "query", r.URL.RawQuery)
			w.WriteHeader(http.StatusOK)

			return
		}

		if err = h.service.SetSetting(r.Context(), key, value); err != nil {
			h.fail(w, r, err)

			return
		}

		logger.InfoKV(h.ctx, "Setting updated", "key", key, "value", value)
		w.WriteHeader(http.StatusOK)
	}
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, domain.ErrChannelClosed) {
		code = http.StatusServiceUnavailable
	}

	logger.ErrorKV(h.ctx, "Request failed", "path", r.URL.Path, "error", err)
	render.Status(r, code)
	render.PlainText(w, r, http.StatusText(code))
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()

		next.ServeHTTP(ww, r)

		logger.DebugKV(h.ctx, "Handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(started).String(),
		)
	})
}
