package runner

import (
	"fmt"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tryfix/log"
	"github.com/tryfix/unbounded/encoding"
)

type Err struct {
	Err string `json:"error"`
}

type handler struct {
	registry *Registry
	encoder  encoding.Encoder
	logger   log.Logger
}

func (h *handler) encode(w http.ResponseWriter, status int, v interface{}) {
	byt, err := h.encoder.Encode(v)
	if err != nil {
		h.logger.Error(fmt.Sprintf(`cannot encode response - %+v`, err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set(`Content-Type`, `application/json`)
	w.WriteHeader(status)
	if _, err := w.Write(byt); err != nil {
		h.logger.Error(err)
	}
}

func (h *handler) splits(w http.ResponseWriter, _ *http.Request) {
	h.encode(w, http.StatusOK, h.registry.All())
}

func (h *handler) split(w http.ResponseWriter, r *http.Request) {
	status, err := h.registry.Status(mux.Vars(r)[`split`])
	if err != nil {
		h.encode(w, http.StatusNotFound, Err{Err: err.Error()})
		return
	}

	h.encode(w, http.StatusOK, status)
}

// NewHandler serves split statuses and prometheus metrics.
func NewHandler(registry *Registry, logger log.Logger) http.Handler {
	h := &handler{
		registry: registry,
		encoder:  encoding.NewJsonEncoder(),
		logger:   logger,
	}

	r := mux.NewRouter()
	r.HandleFunc(`/splits`, h.splits).Methods(http.MethodGet)
	r.HandleFunc(`/splits/{split}`, h.split).Methods(http.MethodGet)
	r.Handle(`/metrics`, promhttp.Handler()).Methods(http.MethodGet)

	return handlers.CORS()(r)
}

// MakeEndpoints starts serving NewHandler on host in the background. The
// returned server is shut down by the caller.
func MakeEndpoints(host string, registry *Registry, logger log.Logger) *http.Server {
	srv := &http.Server{
		Addr:    host,
		Handler: NewHandler(registry, logger),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(fmt.Sprintf(`cannot start web server : %+v`, err))
		}
	}()

	logger.Info(fmt.Sprintf(`http server started on %s`, host))
	return srv
}
