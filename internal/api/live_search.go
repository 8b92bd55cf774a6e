package api

import (
	"context"
	"sync"
	"time"

	"pharma-market/internal/debounce"
	"pharma-market/internal/service"
	"pharma-market/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const liveSearchWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// liveSearchMessage is pushed to the client once a query has settled
type liveSearchMessage struct {
	Query   string                 `json:"query"`
	Results []service.SearchResult `json:"results"`
	Error   string                 `json:"error,omitempty"`
}

// liveSearch upgrades to a websocket. Each text frame is the current content
// of the search box; results are sent only after the input stops changing for
// the debounce window.
func (h *Handler) liveSearch(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already replied to the client
		return
	}
	defer conn.Close()

	logger := util.GetLogger().With(zap.String("user_id", currentUser(c).ID))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var writeMu sync.Mutex
	send := func(msg liveSearchMessage) {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(liveSearchWriteTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			logger.Debug("Live search write failed", zap.Error(err))
		}
	}

	d := debounce.New(h.searchDebounce, func(query string) {
		if ctx.Err() != nil {
			return
		}
		util.DrugSearchesTotal.WithLabelValues("live").Inc()
		results, err := h.svc.Catalog.Search(ctx, query)
		if err != nil {
			send(liveSearchMessage{Query: query, Results: []service.SearchResult{}, Error: lookupError(err).message})
			return
		}
		send(liveSearchMessage{Query: query, Results: results})
	})
	defer d.Stop()

	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("Live search closed", zap.Error(err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		d.Push(string(payload))
	}
}
