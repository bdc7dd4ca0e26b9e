package action

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/kawainime/TelegramGemini/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// sent is one outbound call recorded by fakeMessenger.
type sent struct {
	kind  string // "text", "photo", "edit", "ack", "action"
	text  string
	photo domain.PhotoMessage
	msg   domain.TextMessage
}

type fakeMessenger struct {
	mu    sync.Mutex
	calls []sent

	photoErr error
	editErr  error
	textErr  error

	// photoExisted records whether each uploaded path existed at send time.
	photoExisted []bool
	photoPaths   []string
}

func (m *fakeMessenger) SendText(_ context.Context, msg domain.TextMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.textErr != nil {
		return m.textErr
	}
	m.calls = append(m.calls, sent{kind: "text", text: msg.Text, msg: msg})
	return nil
}

func (m *fakeMessenger) SendPhoto(_ context.Context, msg domain.PhotoMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg.Path != "" {
		_, err := os.Stat(msg.Path)
		m.photoExisted = append(m.photoExisted, err == nil)
		m.photoPaths = append(m.photoPaths, msg.Path)
	}
	if m.photoErr != nil {
		return m.photoErr
	}
	m.calls = append(m.calls, sent{kind: "photo", photo: msg})
	return nil
}

func (m *fakeMessenger) EditText(_ context.Context, chatID int64, messageID int, text, parseMode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.editErr != nil {
		return m.editErr
	}
	m.calls = append(m.calls, sent{kind: "edit", text: text})
	return nil
}

func (m *fakeMessenger) AnswerCallback(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, sent{kind: "ack", text: id})
	return nil
}

func (m *fakeMessenger) SendChatAction(_ context.Context, chatID int64, action string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, sent{kind: "action", text: action})
	return nil
}

func (m *fakeMessenger) FileURL(_ context.Context, fileID string) (string, error) {
	return "https://files.example/" + fileID, nil
}

// outbound returns the recorded calls, without chat actions.
func (m *fakeMessenger) outbound() []sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sent
	for _, c := range m.calls {
		if c.kind != "action" {
			out = append(out, c)
		}
	}
	return out
}

type fakeText struct {
	resp      *domain.AIResponse
	err       error
	prompt    string
	webSearch bool
	calls     int
}

func (f *fakeText) GenerateText(_ context.Context, prompt string, webSearch bool) (*domain.AIResponse, error) {
	f.calls++
	f.prompt = prompt
	f.webSearch = webSearch
	return f.resp, f.err
}

type fakeImages struct {
	resp   *domain.AIResponse
	err    error
	prompt string
	source *domain.InlineImage
	calls  int
}

func (f *fakeImages) GenerateImage(_ context.Context, prompt string, source *domain.InlineImage) (*domain.AIResponse, error) {
	f.calls++
	f.prompt = prompt
	f.source = source
	return f.resp, f.err
}

type memPersona struct {
	value    string
	readErr  error
	writeErr error
}

func (p *memPersona) Read(context.Context) (string, error) { return p.value, p.readErr }

func (p *memPersona) Write(_ context.Context, v string) error {
	if p.writeErr != nil {
		return p.writeErr
	}
	p.value = v
	return nil
}

type fakeDownloader struct {
	data        []byte
	contentType string
	err         error
	url         string
}

func (d *fakeDownloader) Download(_ context.Context, url string) ([]byte, string, error) {
	d.url = url
	return d.data, d.contentType, d.err
}

var errBoom = errors.New("boom")
