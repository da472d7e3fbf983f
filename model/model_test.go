package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multiai/backend"
	"multiai/catalog"
	"multiai/kv"
	"multiai/storage"
)

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// stepClock advances one second per reading.
type stepClock struct {
	n int
}

func (c *stepClock) Now() time.Time {
	c.n++
	return baseTime.Add(time.Duration(c.n) * time.Second)
}

type sequence struct {
	n int
}

func (s *sequence) Next() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

type fakeClient struct {
	config *catalog.Config
	reply  *backend.ChatResponse
	err    error
	calls  int
	last   backend.ChatRequest
}

func (f *fakeClient) FetchConfig(ctx context.Context) (*catalog.Config, error) {
	if f.config == nil {
		return nil, errors.New("unreachable")
	}
	return f.config, nil
}

func (f *fakeClient) Chat(ctx context.Context, req backend.ChatRequest) (*backend.ChatResponse, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

type harness struct {
	backend *kv.MemoryStore
	store   *storage.Store
	notices *NoticeQueue
	clock   *stepClock
	ids     *sequence
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		backend: kv.NewMemoryStore(),
		notices: &NoticeQueue{},
		clock:   &stepClock{},
		ids:     &sequence{},
	}
	h.store = storage.New(h.backend, storage.WithNormalizer(storage.Normalizer{
		DefaultModel: catalog.DefaultDefaults().Model,
		NewID:        h.ids.Next,
		Now:          h.clock.Now,
	}))
	return h
}

func (h *harness) seed(t *testing.T, key, value string) {
	t.Helper()
	require.NoError(t, h.backend.Set(context.Background(), key, value))
}

func (h *harness) raw(t *testing.T, key string) (string, bool) {
	t.Helper()
	v, found, err := h.backend.Get(context.Background(), key)
	require.NoError(t, err)
	return v, found
}

func (h *harness) model(client ChatClient) *Model {
	return New(h.store, client,
		WithNotifier(h.notices),
		WithClock(h.clock.Now),
		WithIDSource(h.ids.Next),
	)
}

func TestEnsureActiveChat(t *testing.T) {
	tests := []struct {
		name    string
		chats   string
		pointer string
		want    string
	}{
		{name: "stale pointer falls back to first", chats: `[{"id":"x"},{"id":"y"}]`, pointer: "z", want: "x"},
		{name: "missing pointer falls back to first", chats: `[{"id":"x"},{"id":"y"}]`, want: "x"},
		{name: "valid pointer kept", chats: `[{"id":"x"},{"id":"y"}]`, pointer: "y", want: "y"},
		{name: "no conversations clears pointer", chats: `[]`, pointer: "z", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.seed(t, storage.KeyChats, tt.chats)
			if tt.pointer != "" {
				h.seed(t, storage.KeyCurrentChat, tt.pointer)
			}

			m := h.model(nil)
			m.EnsureActiveChat()

			assert.Equal(t, tt.want, m.ActiveChatID())
			stored, found := h.raw(t, storage.KeyCurrentChat)
			if tt.want == "" {
				assert.False(t, found)
			} else {
				assert.Equal(t, tt.want, stored)
			}
		})
	}
}

func TestSendMessageEndToEnd(t *testing.T) {
	var got backend.ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":"Hi there"}`))
	}))
	defer server.Close()

	client, err := backend.NewClient(server.URL)
	require.NoError(t, err)

	h := newHarness(t)
	m := h.model(client)
	m.EnsureActiveChat()
	require.Empty(t, m.ActiveChatID())

	require.True(t, m.SendMessage(context.Background(), "  Hello  "))

	chats := m.Chats()
	require.Len(t, chats, 1)
	chat := chats[0]
	assert.Equal(t, chat.ID, m.ActiveChatID())
	assert.Equal(t, "Hello", chat.Title)
	require.Len(t, chat.Messages, 2)
	assert.Equal(t, storage.RoleUser, chat.Messages[0].Role)
	assert.Equal(t, "Hello", chat.Messages[0].Content)
	assert.Equal(t, storage.RoleAssistant, chat.Messages[1].Role)
	assert.Equal(t, "Hi there", chat.Messages[1].Content)
	assert.Equal(t, storage.TypeText, chat.Messages[1].Type)

	assert.True(t, chat.UpdatedAt.After(chat.CreatedAt))
	assert.True(t, chat.Messages[1].CreatedAt.After(chat.Messages[0].CreatedAt))
	assert.Equal(t, chat.Messages[1].CreatedAt, chat.UpdatedAt)
	assert.False(t, m.IsSending())

	assert.Equal(t, "gpt-4o", got.Model)
	assert.Equal(t, 0.7, got.Temperature)
	assert.Equal(t, 2000, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, backend.ChatMessage{Role: "user", Content: "Hello", Type: "text"}, got.Messages[0])

	reloaded := h.store.LoadChats(context.Background())
	assert.Equal(t, chats, reloaded, "persisted state matches memory")
}

func TestSendWhileSendingIsNoop(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"content":"ok"}`))
	}))
	defer server.Close()

	client, err := backend.NewClient(server.URL)
	require.NoError(t, err)

	h := newHarness(t)
	m := h.model(client)

	first := m.SendMessageCmd("one")
	require.NotNil(t, first)
	assert.True(t, m.IsSending())

	assert.Nil(t, m.SendMessageCmd("two"))
	assert.False(t, m.SendMessage(context.Background(), "three"))

	msg, ok := first().(ChatResponseMsg)
	require.True(t, ok)
	m.FinishSend(msg.Result)

	assert.Equal(t, int32(1), hits.Load())
	chat, ok := m.ActiveChat()
	require.True(t, ok)
	require.Len(t, chat.Messages, 2)
	assert.Equal(t, "one", chat.Messages[0].Content)
	assert.False(t, m.IsSending())
}

func TestSendBlankContentIsRefused(t *testing.T) {
	h := newHarness(t)
	client := &fakeClient{reply: &backend.ChatResponse{Content: "x"}}
	m := h.model(client)

	assert.Nil(t, m.BeginSend("   \n\t"))
	assert.Empty(t, m.Chats(), "no conversation is created for blank input")
	assert.Zero(t, client.calls)
}

func TestSendServerErrorAddsSystemMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer server.Close()

	client, err := backend.NewClient(server.URL)
	require.NoError(t, err)

	h := newHarness(t)
	m := h.model(client)
	require.True(t, m.SendMessage(context.Background(), "Hello"))

	chat, ok := m.ActiveChat()
	require.True(t, ok)
	require.Len(t, chat.Messages, 2)
	assert.Equal(t, storage.RoleSystem, chat.Messages[1].Role)
	assert.Equal(t, "Failed to get response: rate limited", chat.Messages[1].Content)
	assert.False(t, m.IsSending())

	notices := h.notices.Drain()
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeError, notices[0].Kind)
	assert.Equal(t, "Request failed", notices[0].Title)
}

func TestSendWithoutBackend(t *testing.T) {
	h := newHarness(t)
	m := h.model(nil)
	require.True(t, m.SendMessage(context.Background(), "Hello"))

	chat, ok := m.ActiveChat()
	require.True(t, ok)
	require.Len(t, chat.Messages, 2)
	assert.Equal(t, "Failed to get response: "+ErrNoBackend.Error(), chat.Messages[1].Content)
}

func TestReplyLandsInOriginatingChat(t *testing.T) {
	h := newHarness(t)
	client := &fakeClient{reply: &backend.ChatResponse{Content: "answer"}}
	m := h.model(client)

	d := m.BeginSend("question")
	require.NotNil(t, d)
	origin := d.ChatID

	other := m.CreateChat()
	require.Equal(t, other.ID, m.ActiveChatID())

	m.FinishSend(d.Run(context.Background(), client))

	a, ok := m.Chat(origin)
	require.True(t, ok)
	assert.Len(t, a.Messages, 2)
	b, ok := m.Chat(other.ID)
	require.True(t, ok)
	assert.Empty(t, b.Messages)
}

func TestReplyForDeletedChatIsDropped(t *testing.T) {
	h := newHarness(t)
	client := &fakeClient{reply: &backend.ChatResponse{Content: "answer"}}
	m := h.model(client)

	d := m.BeginSend("question")
	require.NotNil(t, d)
	m.DeleteChat(d.ChatID).Accept()

	m.FinishSend(d.Run(context.Background(), client))

	assert.Empty(t, m.Chats())
	assert.Empty(t, h.store.LoadChats(context.Background()))
	assert.False(t, m.IsSending())
}

func TestImageReplyKeepsType(t *testing.T) {
	h := newHarness(t)
	client := &fakeClient{reply: &backend.ChatResponse{Content: "https://img.example/cat.png", Type: "image"}}
	m := h.model(client)
	m.SelectModel("dall-e-3")

	require.True(t, m.SendMessage(context.Background(), "a cat"))
	chat, _ := m.ActiveChat()
	require.Len(t, chat.Messages, 2)
	assert.Equal(t, storage.TypeImage, chat.Messages[1].Type)
	assert.Equal(t, "dall-e-3", chat.Model)
	assert.Equal(t, "dall-e-3", client.last.Model)
}

func TestTitleOnlySetFromPlaceholder(t *testing.T) {
	h := newHarness(t)
	h.seed(t, storage.KeyChats, `[{"id":"a","title":"Nova conversa"},{"id":"b","title":"Kept"}]`)
	client := &fakeClient{reply: &backend.ChatResponse{Content: "ok"}}
	m := h.model(client)
	m.EnsureActiveChat()

	require.True(t, m.SendMessage(context.Background(), "first words"))
	a, _ := m.Chat("a")
	assert.Equal(t, "first words", a.Title, "legacy placeholder is replaced")

	m.SetActiveChat("b")
	require.True(t, m.SendMessage(context.Background(), "other words"))
	b, _ := m.Chat("b")
	assert.Equal(t, "Kept", b.Title)
}

func TestConfirmations(t *testing.T) {
	t.Run("declined delete changes nothing", func(t *testing.T) {
		h := newHarness(t)
		m := h.model(nil)
		chat := m.CreateChat()

		confirm := m.DeleteChat(chat.ID)
		require.NotNil(t, confirm)
		assert.NotEmpty(t, confirm.Message)

		assert.Len(t, m.Chats(), 1)
		assert.Equal(t, chat.ID, m.ActiveChatID())
	})

	t.Run("delete active falls back to first", func(t *testing.T) {
		h := newHarness(t)
		m := h.model(nil)
		older := m.CreateChat()
		newer := m.CreateChat()

		m.DeleteChat(newer.ID).Accept()
		assert.Equal(t, older.ID, m.ActiveChatID())

		m.DeleteChat(older.ID).Accept()
		assert.Empty(t, m.ActiveChatID())
		_, found := h.raw(t, storage.KeyCurrentChat)
		assert.False(t, found)
	})

	t.Run("accept applies once", func(t *testing.T) {
		h := newHarness(t)
		m := h.model(&fakeClient{reply: &backend.ChatResponse{Content: "ok"}})
		require.True(t, m.SendMessage(context.Background(), "hi"))

		confirm := m.ClearCurrentChat()
		require.NotNil(t, confirm)
		confirm.Accept()
		require.True(t, m.SendMessage(context.Background(), "again"))
		confirm.Accept()

		chat, _ := m.ActiveChat()
		assert.Len(t, chat.Messages, 2)
	})

	t.Run("unknown id", func(t *testing.T) {
		h := newHarness(t)
		m := h.model(nil)
		assert.Nil(t, m.DeleteChat("missing"))
	})

	t.Run("clear empty conversation notifies", func(t *testing.T) {
		h := newHarness(t)
		m := h.model(nil)
		m.CreateChat()

		assert.Nil(t, m.ClearCurrentChat())
		notices := h.notices.Drain()
		require.Len(t, notices, 1)
		assert.Equal(t, NoticeInfo, notices[0].Kind)
	})

	t.Run("clear empty history notifies", func(t *testing.T) {
		h := newHarness(t)
		m := h.model(nil)

		assert.Nil(t, m.ClearAllHistory())
		notices := h.notices.Drain()
		require.Len(t, notices, 1)
		assert.Equal(t, NoticeInfo, notices[0].Kind)
	})
}

func TestClearCurrentChatKeepsConversation(t *testing.T) {
	h := newHarness(t)
	m := h.model(&fakeClient{reply: &backend.ChatResponse{Content: "ok"}})
	require.True(t, m.SendMessage(context.Background(), "Hello"))
	before, _ := m.ActiveChat()

	m.ClearCurrentChat().Accept()

	after, ok := m.ActiveChat()
	require.True(t, ok)
	assert.Empty(t, after.Messages)
	assert.Equal(t, "Hello", after.Title)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
}

func TestClearAllHistory(t *testing.T) {
	h := newHarness(t)
	m := h.model(nil)
	m.CreateChat()
	m.CreateChat()

	m.ClearAllHistory().Accept()
	m.EnsureActiveChat()

	assert.Empty(t, m.Chats())
	assert.Empty(t, m.ActiveChatID())
	_, found := h.raw(t, storage.KeyCurrentChat)
	assert.False(t, found)
	stored, _ := h.raw(t, storage.KeyChats)
	assert.JSONEq(t, `[]`, stored)

	notices := h.notices.Drain()
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeSuccess, notices[0].Kind)
}

func TestReplaceOnWriteDoesNotAlias(t *testing.T) {
	h := newHarness(t)
	m := h.model(&fakeClient{reply: &backend.ChatResponse{Content: "ok"}})
	m.CreateChat()

	snapshot := m.Chats()
	require.True(t, m.SendMessage(context.Background(), "Hello"))

	assert.Empty(t, snapshot[0].Messages, "earlier snapshot is unchanged")
}

func TestHistoryOrder(t *testing.T) {
	h := newHarness(t)
	m := h.model(&fakeClient{reply: &backend.ChatResponse{Content: "ok"}})
	first := m.CreateChat()
	second := m.CreateChat()

	m.SetActiveChat(first.ID)
	require.True(t, m.SendMessage(context.Background(), "bump"))

	history := m.History()
	require.Len(t, history, 2)
	assert.Equal(t, first.ID, history[0].ID)
	assert.Equal(t, second.ID, history[1].ID)

	chats := m.Chats()
	assert.Equal(t, second.ID, chats[0].ID, "insertion order is unchanged")
}

func TestApplyConfig(t *testing.T) {
	serverConfig := &catalog.Config{
		Providers:   []catalog.Provider{{ID: "openai", Name: "OpenAI", Status: "available", Enabled: true}},
		ModelGroups: catalog.ServerGroups(),
		Defaults:    catalog.Defaults{Model: "claude-3-5-sonnet-20241022", Temperature: 0.3, MaxTokens: 1000},
	}

	t.Run("server default selected without remembered model", func(t *testing.T) {
		h := newHarness(t)
		m := h.model(&fakeClient{config: serverConfig})
		m.ConfigLoaded(m.FetchConfigCmd()().(ConfigLoadedMsg))

		assert.True(t, m.UsingServerCatalog())
		assert.Equal(t, "claude-3-5-sonnet-20241022", m.SelectedModel())
		assert.Equal(t, 0.3, m.Settings().Temperature)
		assert.Equal(t, 1000, m.Settings().MaxTokens)
		assert.Len(t, m.Providers(), 1)

		stored, _ := h.raw(t, storage.KeySettings)
		assert.NotContains(t, stored, "1000", "server defaults are not persisted")
	})

	t.Run("server default beats remembered model", func(t *testing.T) {
		h := newHarness(t)
		h.seed(t, storage.KeySettings, `{"lastModel":"gpt-4o-mini"}`)
		m := h.model(&fakeClient{config: serverConfig})
		m.ApplyConfig(serverConfig)

		assert.Equal(t, "claude-3-5-sonnet-20241022", m.SelectedModel())
	})

	t.Run("remembered model kept when server default is unlisted", func(t *testing.T) {
		h := newHarness(t)
		h.seed(t, storage.KeySettings, `{"lastModel":"gpt-4o-mini"}`)
		m := h.model(nil)
		m.ApplyConfig(&catalog.Config{
			ModelGroups: catalog.ServerGroups(),
			Defaults:    catalog.Defaults{Model: "retired-model", Temperature: 0.3, MaxTokens: 1000},
		})

		assert.Equal(t, "gpt-4o-mini", m.SelectedModel())
	})

	t.Run("partial defaults only touch present fields", func(t *testing.T) {
		var cfg catalog.Config
		require.NoError(t, json.Unmarshal([]byte(`{"modelGroups":[],"defaults":{"model":"gpt-4o","maxTokens":1000}}`), &cfg))

		h := newHarness(t)
		m := h.model(nil)
		m.ApplyConfig(&cfg)

		assert.Equal(t, 0.7, m.Settings().Temperature)
		assert.Equal(t, 1000, m.Settings().MaxTokens)
		assert.Equal(t, "gpt-4o", m.SelectedModel())
	})

	t.Run("non-numeric defaults are ignored", func(t *testing.T) {
		var cfg catalog.Config
		require.NoError(t, json.Unmarshal([]byte(`{"defaults":{"temperature":"hot","maxTokens":12.5}}`), &cfg))

		h := newHarness(t)
		m := h.model(nil)
		m.ApplyConfig(&cfg)

		assert.Equal(t, 0.7, m.Settings().Temperature)
		assert.Equal(t, 2000, m.Settings().MaxTokens)
	})

	t.Run("remembered model missing from server catalog", func(t *testing.T) {
		h := newHarness(t)
		h.seed(t, storage.KeySettings, `{"lastModel":"sonar"}`)
		m := h.model(nil)
		require.Equal(t, "sonar", m.SelectedModel(), "fallback catalog lists sonar")

		m.ApplyConfig(serverConfig)
		assert.Equal(t, "claude-3-5-sonnet-20241022", m.SelectedModel())
	})

	t.Run("missing defaults keep settings", func(t *testing.T) {
		h := newHarness(t)
		m := h.model(nil)
		m.ApplyConfig(&catalog.Config{ModelGroups: catalog.ServerGroups()})

		assert.Equal(t, 0.7, m.Settings().Temperature)
		assert.Equal(t, 2000, m.Settings().MaxTokens)
		assert.Equal(t, "gpt-4o", m.SelectedModel())
	})

	t.Run("fetch failure keeps fallback", func(t *testing.T) {
		h := newHarness(t)
		m := h.model(&fakeClient{})
		m.ConfigLoaded(m.FetchConfigCmd()().(ConfigLoadedMsg))

		assert.False(t, m.UsingServerCatalog())
		assert.Equal(t, catalog.Fallback(), m.ModelGroups())
		notices := h.notices.Drain()
		require.Len(t, notices, 1)
		assert.Equal(t, "Sync failed", notices[0].Title)
	})
}

func TestSetActiveChatAdoptsModel(t *testing.T) {
	h := newHarness(t)
	h.seed(t, storage.KeyChats, `[{"id":"a","model":"deepseek-chat"},{"id":"b","model":"retired-model"}]`)
	m := h.model(nil)
	m.EnsureActiveChat()
	assert.Equal(t, "deepseek-chat", m.SelectedModel())

	m.SetActiveChat("b")
	assert.Equal(t, "deepseek-chat", m.SelectedModel(), "unknown models are not adopted")
}

func TestSelectModel(t *testing.T) {
	h := newHarness(t)
	m := h.model(nil)
	chat := m.CreateChat()

	m.SelectModel("sonar-pro")
	assert.Equal(t, "sonar-pro", m.SelectedModel())
	updated, _ := m.Chat(chat.ID)
	assert.Equal(t, "sonar-pro", updated.Model)
	assert.Equal(t, "sonar-pro", h.store.LoadSettings(context.Background()).LastModel)

	m.SelectModel("not-a-model")
	assert.Equal(t, "sonar-pro", m.SelectedModel())
}

func TestSaveSettingsForm(t *testing.T) {
	tests := []struct {
		name        string
		temperature string
		maxTokens   string
		wantTemp    float64
		wantTokens  int
	}{
		{name: "plain numbers", temperature: "0.2", maxTokens: "512", wantTemp: 0.2, wantTokens: 512},
		{name: "leading number", temperature: "0.9x", maxTokens: "300 tokens", wantTemp: 0.9, wantTokens: 300},
		{name: "unparseable", temperature: "warm", maxTokens: "", wantTemp: 0.7, wantTokens: 2000},
		{name: "integer part only", temperature: "1", maxTokens: "64.5", wantTemp: 1, wantTokens: 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			m := h.model(nil)
			m.SaveSettings(SettingsForm{
				Theme:       storage.ThemeLight,
				Temperature: tt.temperature,
				MaxTokens:   tt.maxTokens,
				APIKeys:     map[string]string{"openai": "  sk-test  "},
			})

			assert.Equal(t, tt.wantTemp, m.Settings().Temperature)
			assert.Equal(t, tt.wantTokens, m.Settings().MaxTokens)
			assert.Equal(t, storage.ThemeLight, m.Settings().Theme)
			assert.Equal(t, "sk-test", m.APIKeys()["openai"])
			assert.Equal(t, "", m.APIKeys()["deepseek"])

			assert.Equal(t, m.Settings(), h.store.LoadSettings(context.Background()))
			assert.Equal(t, m.APIKeys(), h.store.LoadAPIKeys(context.Background()))

			notices := h.notices.Drain()
			require.Len(t, notices, 1)
			assert.Equal(t, NoticeSuccess, notices[0].Kind)
		})
	}
}

func TestUpdateSettingsAndKeys(t *testing.T) {
	h := newHarness(t)
	m := h.model(nil)

	settings := m.Settings()
	settings.Theme = "neon"
	settings.Temperature = 1.2
	m.UpdateSettings(settings)
	assert.Equal(t, storage.ThemeDark, m.Settings().Theme)
	assert.Equal(t, 1.2, h.store.LoadSettings(context.Background()).Temperature)

	m.UpdateAPIKeys(map[string]string{"anthropic": " sk-ant ", "unknown": "x"})
	keys := h.store.LoadAPIKeys(context.Background())
	assert.Equal(t, "sk-ant", keys["anthropic"])
	assert.NotContains(t, keys, "unknown")
	assert.Len(t, keys, len(catalog.ProviderIDs))
	assert.Empty(t, h.notices.Drain())
}

func TestAPIStatus(t *testing.T) {
	h := newHarness(t)
	m := h.model(nil)
	assert.Equal(t, "Configure your API keys", m.APIStatus().Label())

	m.SaveSettings(SettingsForm{APIKeys: map[string]string{"openai": "a", "google": "b"}})
	status := m.APIStatus()
	assert.Equal(t, 2, status.Configured)
	assert.Equal(t, "2 of 5 APIs configured", status.Label())
	require.Len(t, status.Providers, 5)
	assert.True(t, status.Providers[0].Configured)
	assert.Equal(t, "OpenAI", status.Providers[0].Name)

	all := map[string]string{}
	for _, id := range catalog.ProviderIDs {
		all[id] = "key"
	}
	m.SaveSettings(SettingsForm{APIKeys: all})
	assert.Equal(t, "All APIs configured", m.APIStatus().Label())
}

func TestThemes(t *testing.T) {
	assert.Equal(t, storage.ThemeDark, ResolveTheme(storage.ThemeAuto, true))
	assert.Equal(t, storage.ThemeLight, ResolveTheme(storage.ThemeAuto, false))
	assert.Equal(t, storage.ThemeLight, ResolveTheme(storage.ThemeLight, true))
	assert.Equal(t, storage.ThemeDark, ResolveTheme(storage.ThemeDark, false))

	h := newHarness(t)
	m := h.model(nil)
	assert.Equal(t, storage.ThemeLight, m.ToggleTheme())
	assert.Equal(t, storage.ThemeDark, m.ToggleTheme())
	assert.Equal(t, storage.ThemeDark, h.store.LoadSettings(context.Background()).Theme)
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	m := h.model(&fakeClient{reply: &backend.ChatResponse{Content: "Hi there"}})
	require.True(t, m.SendMessage(ctx, "Hello"))
	chat, _ := m.ActiveChat()

	path := filepath.Join(t.TempDir(), "exports", "chat.json")
	exported, ok := m.ExportChatCmd(ctx, chat.ID, path)().(ChatExportedMsg)
	require.True(t, ok)
	require.NoError(t, exported.Err)
	m.ChatExported(exported)

	imported, ok := m.ImportChatCmd(ctx, path)().(ChatImportedMsg)
	require.True(t, ok)
	require.NoError(t, imported.Err)

	added, ok := m.ChatImported(imported)
	require.True(t, ok)
	assert.NotEqual(t, chat.ID, added.ID, "colliding id is replaced")
	assert.Equal(t, chat.Messages, added.Messages)
	assert.Equal(t, chat.Title, added.Title)
	assert.Equal(t, added.ID, m.ActiveChatID())
	assert.Len(t, m.Chats(), 2)

	notices := h.notices.Drain()
	require.Len(t, notices, 2)
	assert.Equal(t, "Conversation exported", notices[0].Title)
	assert.Equal(t, "Conversation imported", notices[1].Title)
}

func TestImportRejectsNonObject(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	m := h.model(nil)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`[1,2,3]`), 0600))

	msg := m.ImportChatCmd(ctx, path)().(ChatImportedMsg)
	require.Error(t, msg.Err)

	_, ok := m.ChatImported(msg)
	assert.False(t, ok)
	assert.Empty(t, m.Chats())
}

func TestSearchMessages(t *testing.T) {
	h := newHarness(t)
	m := h.model(&fakeClient{reply: &backend.ChatResponse{Content: "Paris is the capital"}})
	require.True(t, m.SendMessage(context.Background(), "What is the capital of France?"))

	matches := m.SearchMessages("CAPITAL")
	assert.Len(t, matches, 2)
	assert.Empty(t, m.SearchMessages("berlin"))
}
