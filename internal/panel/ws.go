package panel

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/unideck/unideck/pkg/provider"
	"go.uber.org/zap"
)

// handleWS streams snapshot-refresh notifications to the host UI so it can
// recompute its rendered list only when the underlying data changed. The
// panel never pushes entry data over the socket; clients re-query
// /library with their current filter state.
func (m *Module) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		m.logger.Debug("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	// We never expect client messages; CloseRead cancels the context when
	// the peer goes away.
	ctx := conn.CloseRead(r.Context())

	notifications := make(chan provider.PanelRefreshedEvent, 8)
	unsub := m.bus.Subscribe(provider.TopicPanelRefreshed, func(_ context.Context, e provider.Event) {
		payload, ok := e.Payload.(provider.PanelRefreshedEvent)
		if !ok {
			return
		}
		select {
		case notifications <- payload:
		default:
			// Slow client: drop intermediate notifications, the latest
			// revision is all it needs.
		}
	})
	defer unsub()

	// Tell the client where it stands right away.
	current := provider.PanelRefreshedEvent{
		Revision: m.view.Revision(),
		Entries:  m.view.Len(),
	}
	if err := wsjson.Write(ctx, conn, current); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case n := <-notifications:
			if err := wsjson.Write(ctx, conn, n); err != nil {
				m.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		}
	}
}
