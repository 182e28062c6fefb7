package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/parkyard/internal/journal"
	"github.com/zulandar/parkyard/internal/models"
)

const ssePageSize = 100

// streamEvent is the payload of a request_event SSE message.
type streamEvent struct {
	ID        uint      `json:"id"`
	Kind      string    `json:"kind"`
	RequestID string    `json:"request_id"`
	VehicleID string    `json:"vehicle_id,omitempty"`
	ZoneID    string    `json:"zone_id,omitempty"`
	Slot      string    `json:"slot,omitempty"`
	CrossZone bool      `json:"cross_zone,omitempty"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	At        time.Time `json:"at"`
}

func toStreamEvent(e models.RequestEvent) streamEvent {
	out := streamEvent{
		ID:        e.ID,
		Kind:      e.Kind,
		RequestID: e.RequestID,
		VehicleID: e.VehicleID,
		ZoneID:    e.ZoneID,
		CrossZone: e.CrossZone,
		From:      e.FromState,
		To:        e.ToState,
		Detail:    e.Detail,
		At:        e.At,
	}
	if e.SlotZone != "" || e.SlotID != "" {
		out.Slot = e.SlotZone + "/" + e.SlotID
	}
	return out
}

// handleSSE streams journal rows appended after the client connected.
func handleSSE(j *journal.Journal, poll, heartbeatEvery time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		// Only rows appended after the connected event are streamed.
		var lastSeenID uint
		if j != nil {
			id, err := j.LastID()
			if err != nil {
				writeSSE(c.Writer, "error", gin.H{"error": err.Error()})
				c.Writer.Flush()
				return
			}
			lastSeenID = id
		}

		writeSSE(c.Writer, "connected", map[string]string{"type": "connected"})
		c.Writer.Flush()

		if j == nil {
			return
		}

		ctx := c.Request.Context()
		ticker := time.NewTicker(poll)
		heartbeat := time.NewTicker(heartbeatEvery)
		defer ticker.Stop()
		defer heartbeat.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-heartbeat.C:
				writeSSE(c.Writer, "heartbeat", map[string]string{
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				})
				c.Writer.Flush()
			case <-ticker.C:
				rows, err := j.Since(lastSeenID, ssePageSize)
				if err != nil || len(rows) == 0 {
					continue
				}
				for _, row := range rows {
					writeSSE(c.Writer, "request_event", toStreamEvent(row))
				}
				lastSeenID = rows[len(rows)-1].ID
				c.Writer.Flush()
			}
		}
	}
}

// writeSSE writes a single SSE event to the writer.
func writeSSE(w io.Writer, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(jsonData))
}
