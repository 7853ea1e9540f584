package http

import (
	"net/http"

	gorillaWS "github.com/gorilla/websocket"

	annotationdomain "pinboard/internal/annotation/domain"
	"pinboard/internal/annotation/events"
	"pinboard/internal/annotation/service"
	"pinboard/internal/common/config"
	commonhttp "pinboard/internal/common/http"
	"pinboard/internal/common/logger"
	"pinboard/internal/session"
)

type createRequest struct {
	Text string   `json:"text" validate:"required"`
	X    *float64 `json:"x" validate:"required"`
	Y    *float64 `json:"y" validate:"required"`
}

type Handler struct {
	annotations *service.Service
	hub         *events.Hub
	cfg         config.Config
	upgrader    gorillaWS.Upgrader
	log         *logger.Logger
}

// NewHandler builds the annotation mux. Every route here sits behind the
// session middleware, so an identity is always present in the context.
func NewHandler(annotations *service.Service, hub *events.Hub, cfg config.Config, log *logger.Logger) http.Handler {
	h := &Handler{
		annotations: annotations,
		hub:         hub,
		cfg:         cfg,
		upgrader: gorillaWS.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				host := r.Host
				if host == "" {
					host = r.URL.Host
				}
				return origin == "http://"+host || origin == "https://"+host
			},
		},
		log: log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/annotations", h.collection)
	mux.HandleFunc("/api/annotations/ws", h.feed)
	mux.HandleFunc("/api/annotations/", commonhttp.RequireMethod(http.MethodDelete)(commonhttp.WithTimeout(cfg.RequestTimeout)(h.remove)))
	return mux
}

func (h *Handler) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		commonhttp.WithTimeout(h.cfg.RequestTimeout)(h.list)(w, r)
	case http.MethodPost:
		commonhttp.WithTimeout(h.cfg.RequestTimeout)(h.create)(w, r)
	default:
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	identity, ok := session.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, h.annotations.List(r.Context(), identity))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	identity, ok := session.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("annotation create failed: invalid json: %v", err)
		commonhttp.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := commonhttp.ValidateStruct(&req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	annotation, err := h.annotations.Create(r.Context(), identity, service.CreateInput{
		Text: req.Text,
		X:    *req.X,
		Y:    *req.Y,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, annotation)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	identity, ok := session.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, ok := commonhttp.ExtractPathID(r.URL.Path, "/api/annotations/")
	if !ok {
		commonhttp.WriteError(w, http.StatusNotFound, "annotation not found")
		return
	}

	// Ids are always uuids, so anything else cannot name a stored record.
	if err := commonhttp.ValidateUUID(id); err != nil {
		commonhttp.WriteError(w, http.StatusNotFound, "annotation not found")
		return
	}

	if err := h.annotations.Delete(r.Context(), identity, annotationdomain.ID(id)); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) feed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	identity, ok := session.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("events upgrade failed user_id=%s: %v", identity.UserID, err)
		return
	}

	client := events.NewClient(h.hub, conn, identity.UserID, identity.Username, h.log)
	h.hub.Register(client)
	client.Start()
}
