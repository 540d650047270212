package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/Domenick1991/cinemabooking/internal/domain"
	"github.com/Domenick1991/cinemabooking/internal/logger"
	"github.com/Domenick1991/cinemabooking/internal/service/buddy"
	"github.com/fasthttp/websocket"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	buddyReadLimit    = 4096
	buddyWriteTimeout = 10 * time.Second
)

// BuddySubscriber opens the pub/sub channel of one buddy request. The
// subscription must be active when it returns.
type BuddySubscriber interface {
	SubscribeBuddy(ctx context.Context, requestID int64) (*redis.PubSub, error)
}

type BuddyHandler struct {
	service    buddy.BuddyUseCase
	subscriber BuddySubscriber
	upgrader   websocket.Upgrader
}

type buddyClientMessage struct {
	Type      string    `json:"type"`
	MovieID   int64     `json:"movie_id"`
	Showtime  time.Time `json:"showtime"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	RequestID int64     `json:"request_id"`
}

func NewBuddyHandler(service buddy.BuddyUseCase, subscriber BuddySubscriber) *BuddyHandler {
	return &BuddyHandler{
		service:    service,
		subscriber: subscriber,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *BuddyHandler) RegisterWS(router gin.IRoutes) {
	router.GET("/ws/buddy", h.serveWS)
}

func (h *BuddyHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
}

func (h *BuddyHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *BuddyHandler) get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	req, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *BuddyHandler) serveWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		logger.Warn("buddy websocket upgrade", "err", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &buddySession{
		handler: h,
		conn:    conn,
		ctx:     ctx,
		owned:   make(map[int64]bool),
		relayed: make(map[int64]bool),
	}
	defer func() {
		cancel()
		s.close()
	}()
	s.run()
}

// buddySession is one client socket. Reads happen on the handler goroutine;
// every subscription adds a relay goroutine, so writes go through writeMu.
type buddySession struct {
	handler *BuddyHandler
	conn    *websocket.Conn
	ctx     context.Context

	writeMu sync.Mutex

	mu      sync.Mutex
	owned   map[int64]bool
	relayed map[int64]bool
	subs    []*redis.PubSub
	wg      sync.WaitGroup
}

func (s *buddySession) run() {
	s.conn.SetReadLimit(buddyReadLimit)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("buddy websocket read", "err", err)
			}
			return
		}

		var msg buddyClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.writeError("malformed message")
			continue
		}

		switch msg.Type {
		case "join":
			s.join(msg)
		case "cancel":
			s.cancel(msg.RequestID)
		default:
			s.writeError("unknown message type " + msg.Type)
		}
	}
}

func (s *buddySession) join(msg buddyClientMessage) {
	req, err := s.handler.service.Join(s.ctx, buddy.JoinInput{
		MovieID:  msg.MovieID,
		Showtime: msg.Showtime,
		Name:     msg.Name,
		Contact:  msg.Contact,
	})
	if err != nil {
		s.writeError(err.Error())
		return
	}

	s.mu.Lock()
	s.owned[req.ID] = true
	s.mu.Unlock()

	s.write(buddy.Message{Type: buddy.MessageJoined, Request: req})

	if req.Status == domain.BuddyStatusMatched {
		// The match was published before we could subscribe.
		s.sendMatched(req)
		return
	}
	s.subscribe(req.ID)
}

func (s *buddySession) sendMatched(req *domain.BuddyRequest) {
	if req.MatchedWith == nil {
		return
	}
	partner, err := s.handler.service.GetByID(s.ctx, *req.MatchedWith)
	if err != nil {
		s.writeError(err.Error())
		return
	}
	s.write(buddy.Message{Type: buddy.MessageMatched, Request: req, Partner: partner})
}

func (s *buddySession) cancel(id int64) {
	s.mu.Lock()
	owned := s.owned[id]
	s.mu.Unlock()
	if !owned {
		s.writeError("unknown request")
		return
	}

	req, err := s.handler.service.Cancel(s.ctx, id)
	if err != nil {
		s.writeError(err.Error())
		return
	}
	s.mu.Lock()
	relayed := s.relayed[id]
	s.mu.Unlock()
	if !relayed {
		s.write(buddy.Message{Type: buddy.MessageCancelled, Request: req})
	}
}

// subscribe relays every message published for requestID to the socket. A
// partner can match between Join and the subscription, so the request is
// re-read once the channel is live; later matches queue on the channel.
func (s *buddySession) subscribe(requestID int64) {
	if s.handler.subscriber == nil {
		return
	}
	pubsub, err := s.handler.subscriber.SubscribeBuddy(s.ctx, requestID)
	if err != nil {
		logger.Warn("buddy subscribe", "request_id", requestID, "err", err)
		s.writeError("live updates unavailable")
		return
	}

	current, err := s.handler.service.GetByID(s.ctx, requestID)
	if err != nil {
		_ = pubsub.Close()
		s.writeError(err.Error())
		return
	}
	if current.Status == domain.BuddyStatusMatched {
		_ = pubsub.Close()
		s.sendMatched(current)
		return
	}

	s.mu.Lock()
	s.subs = append(s.subs, pubsub)
	s.relayed[requestID] = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for m := range pubsub.Channel() {
			if err := s.writeRaw([]byte(m.Payload)); err != nil {
				return
			}
		}
	}()
}

func (s *buddySession) write(msg buddy.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("marshal buddy message", "err", err)
		return
	}
	_ = s.writeRaw(data)
}

func (s *buddySession) writeError(text string) {
	s.write(buddy.Message{Type: buddy.MessageError, Error: text})
}

func (s *buddySession) writeRaw(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(buddyWriteTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *buddySession) close() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, ps := range subs {
		_ = ps.Close()
	}
	s.wg.Wait()
	_ = s.conn.Close()
}
