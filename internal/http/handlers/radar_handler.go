// README: Radar websocket handler bridging a viewer connection to its session.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"crowdradar/internal/modules/location"
	"crowdradar/internal/modules/radar"
	"crowdradar/internal/types"
)

type SessionOpener interface {
	OpenSession() (*radar.Session, func())
}

// WebSocketConfig holds the connection timings.
type WebSocketConfig struct {
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
	MaxMessageSize int64
}

func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 4 * 1024,
	}
}

type RadarHandler struct {
	sessions SessionOpener
	upgrader websocket.Upgrader
	cfg      WebSocketConfig
	log      logrus.FieldLogger
}

// NewRadarHandler accepts upgrades from the given browser origins ("*" for
// any). Same-origin pages and clients that send no Origin are always allowed.
func NewRadarHandler(sessions SessionOpener, allowedOrigins []string, log logrus.FieldLogger) *RadarHandler {
	return &RadarHandler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		cfg: DefaultWebSocketConfig(),
		log: log,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.ToLower(strings.TrimRight(o, "/"))] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		return set[strings.ToLower(strings.TrimRight(origin, "/"))]
	}
}

// clientMessage is what a viewer sends. "location" carries a fix;
// "location_error" means the device could not be located.
type clientMessage struct {
	Type string  `json:"type"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Serve handles GET /ws/radar for the lifetime of the connection.
func (h *RadarHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	sess, closeSession := h.sessions.OpenSession()
	log := h.log.WithField("session", sess.ID)
	log.Info("viewer connected")

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		defer closeSession()
		_ = sess.Run(ctx)
	}()
	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		h.writePump(conn, sess.Out(), cancel)
	}()

	h.readPump(ctx, conn, sess, log)
	cancel()
	<-runDone
	<-writeDone
	log.Info("viewer disconnected")
}

func (h *RadarHandler) readPump(ctx context.Context, conn *websocket.Conn, sess *radar.Session, log logrus.FieldLogger) {
	conn.SetReadLimit(h.cfg.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("websocket read failed")
			}
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.WithError(err).Debug("ignoring unparseable client message")
			continue
		}

		var loc types.Point
		switch msg.Type {
		case "location":
			loc = types.Point{Lat: msg.Lat, Lng: msg.Lng}
		case "location_error":
			loc = location.FallbackCenter
		default:
			continue
		}
		if err := sess.Observe(ctx, loc); err != nil {
			return
		}
	}
}

// writePump forwards session messages until the session closes its stream.
// A write failure cancels the session.
func (h *RadarHandler) writePump(conn *websocket.Conn, out <-chan radar.Message, cancel context.CancelFunc) {
	ticker := time.NewTicker(h.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case m, ok := <-out:
			conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(m); err != nil {
				cancel()
				drain(out)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				cancel()
				drain(out)
				return
			}
		}
	}
}

func drain(out <-chan radar.Message) {
	for range out {
	}
}
