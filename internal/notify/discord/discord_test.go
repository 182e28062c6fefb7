package discord

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/zulandar/parkyard/internal/notify"
)

type sentEmbed struct {
	channelID string
	embed     *discordgo.MessageEmbed
}

type mockSession struct {
	mu     sync.Mutex
	sent   []sentEmbed
	errs   []error // returned in order, then nil
	calls  int
	closed bool
}

func (m *mockSession) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return nil, err
	}
	m.sent = append(m.sent, sentEmbed{channelID: channelID, embed: embed})
	return &discordgo.Message{ID: "M1", ChannelID: channelID}, nil
}

func (m *mockSession) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func rateLimited() error {
	return &discordgo.RESTError{Response: &http.Response{StatusCode: 429}}
}

func newTestAdapter(t *testing.T, sess *mockSession) *Adapter {
	t.Helper()
	a, err := New(AdapterOpts{ChannelID: "CH1", Session: sess})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a.baseBackoff = time.Millisecond
	a.maxBackoff = 5 * time.Millisecond
	return a
}

func TestNew_RequiresBotToken(t *testing.T) {
	if _, err := New(AdapterOpts{ChannelID: "CH1"}); err == nil {
		t.Fatal("expected error for missing bot token")
	}
}

func TestNew_RequiresChannel(t *testing.T) {
	if _, err := New(AdapterOpts{Session: &mockSession{}}); err == nil {
		t.Fatal("expected error for missing channel")
	}
}

func TestNew_RealSession(t *testing.T) {
	a, err := New(AdapterOpts{BotToken: "token", ChannelID: "CH1"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.Name() != "discord" {
		t.Errorf("Name = %q", a.Name())
	}
}

func TestSend_Embed(t *testing.T) {
	sess := &mockSession{}
	a := newTestAdapter(t, sess)

	err := a.Send(context.Background(), notify.Alert{
		Title:  "V4 parked outside ZA",
		Body:   "Zone ZA is full",
		Color:  "#439fe0",
		Fields: []notify.Field{{Name: "Slot", Value: "ZB/SB1", Short: true}},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(sess.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(sess.sent))
	}
	got := sess.sent[0]
	if got.channelID != "CH1" {
		t.Errorf("channel = %q, want CH1", got.channelID)
	}
	if got.embed.Title != "V4 parked outside ZA" || got.embed.Color != 0x439fe0 {
		t.Errorf("embed = %+v", got.embed)
	}
	if len(got.embed.Fields) != 1 || !got.embed.Fields[0].Inline {
		t.Errorf("fields = %+v", got.embed.Fields)
	}
}

func TestSend_RetriesOnRateLimit(t *testing.T) {
	sess := &mockSession{errs: []error{rateLimited(), rateLimited()}}
	a := newTestAdapter(t, sess)

	if err := a.Send(context.Background(), notify.Alert{Title: "x"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sess.calls != 3 {
		t.Errorf("calls = %d, want 3", sess.calls)
	}
}

func TestSend_GivesUpAfterMaxRetries(t *testing.T) {
	sess := &mockSession{errs: []error{rateLimited(), rateLimited(), rateLimited(), rateLimited(), rateLimited()}}
	a := newTestAdapter(t, sess)

	if err := a.Send(context.Background(), notify.Alert{Title: "x"}); err == nil {
		t.Fatal("expected error after max retries")
	}
	if sess.calls != maxRetries+1 {
		t.Errorf("calls = %d, want %d", sess.calls, maxRetries+1)
	}
}

func TestSend_NonRateLimitError(t *testing.T) {
	sess := &mockSession{errs: []error{errors.New("forbidden")}}
	a := newTestAdapter(t, sess)

	if err := a.Send(context.Background(), notify.Alert{Title: "x"}); err == nil {
		t.Fatal("expected error")
	}
	if sess.calls != 1 {
		t.Errorf("calls = %d, want 1", sess.calls)
	}
}

func TestClose(t *testing.T) {
	sess := &mockSession{}
	a := newTestAdapter(t, sess)
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	if !sess.closed {
		t.Error("session not closed")
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"#36a64f", 0x36a64f},
		{"d00000", 0xd00000},
		{"#DAA038", 0xdaa038},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseHexColor(tt.in); got != tt.want {
			t.Errorf("parseHexColor(%q) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
}
