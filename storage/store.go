package storage

import (
	"context"
	"encoding/json"
	"math"
	"strings"

	"multiai/config"
	"multiai/kv"
)

// Persisted keys. Legacy keys are read once for migration and then removed.
const (
	KeyChats       = "multiAI_chats_v2"
	KeySettings    = "multiAI_settings_v2"
	KeyCurrentChat = "multiAI_current_chat_v2"
	KeyAPIKeys     = "multiAI_api_keys_v2"

	LegacyKeyChats    = "multiAI_chats"
	LegacyKeySettings = "multiAI_settings"
)

// Cipher seals the API key set at rest. *config.EncryptionManager satisfies it.
type Cipher interface {
	EncryptString(plaintext string) (string, error)
	DecryptString(ciphertext string) (string, error)
}

// Store reads and writes the typed multiai records through a kv backend.
// It never caches and never returns errors: failed loads yield defaults
// and failed saves are logged and dropped.
type Store struct {
	backend    kv.Store
	normalizer Normalizer
	cipher     Cipher
}

type Option func(*Store)

// WithNormalizer sets the defaults applied to stored conversations.
func WithNormalizer(n Normalizer) Option {
	return func(s *Store) {
		s.normalizer = n
	}
}

// WithCipher encrypts the API key set before it reaches the backend.
func WithCipher(c Cipher) Option {
	return func(s *Store) {
		s.cipher = c
	}
}

func New(backend kv.Store, opts ...Option) *Store {
	s := &Store{backend: backend}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Normalizer() Normalizer {
	return s.normalizer
}

func warnf(format string, args ...any) {
	if config.DebugLog != nil {
		config.DebugLog.Printf("[Storage] Warning: "+format, args...)
	}
}

// get treats an empty stored value as absent.
func (s *Store) get(ctx context.Context, key string) (string, bool) {
	value, found, err := s.backend.Get(ctx, key)
	if err != nil {
		warnf("failed to read %s: %v", key, err)
		return "", false
	}
	if !found || value == "" {
		return "", false
	}
	return value, true
}

func (s *Store) set(ctx context.Context, key, value string) bool {
	if err := s.backend.Set(ctx, key, value); err != nil {
		warnf("failed to write %s: %v", key, err)
		return false
	}
	return true
}

func (s *Store) remove(ctx context.Context, key string) {
	if err := s.backend.Remove(ctx, key); err != nil {
		warnf("failed to remove %s: %v", key, err)
	}
}

func (s *Store) saveJSON(ctx context.Context, key string, v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		warnf("failed to encode %s: %v", key, err)
		return false
	}
	return s.set(ctx, key, string(data))
}

// LoadChats returns the stored conversations, migrating the legacy key
// when the current one is absent.
func (s *Store) LoadChats(ctx context.Context) []Conversation {
	if stored, ok := s.get(ctx, KeyChats); ok {
		raw, isArray, err := decodeRawChats([]byte(stored))
		if err != nil {
			warnf("failed to parse %s: %v", KeyChats, err)
			return []Conversation{}
		}
		if !isArray {
			warnf("%s is not a list, ignoring", KeyChats)
			return []Conversation{}
		}
		return s.normalizeAll(raw)
	}

	legacy, ok := s.get(ctx, LegacyKeyChats)
	if !ok {
		return []Conversation{}
	}

	raw, isArray, err := decodeRawChats([]byte(legacy))
	if err != nil {
		warnf("failed to parse %s: %v", LegacyKeyChats, err)
		return []Conversation{}
	}
	if !isArray {
		return []Conversation{}
	}

	migrated := s.normalizeAll(raw)
	if s.saveJSON(ctx, KeyChats, migrated) {
		s.remove(ctx, LegacyKeyChats)
	}
	if config.DebugLog != nil {
		config.DebugLog.Printf("[Storage] Migrated %d conversations from %s", len(migrated), LegacyKeyChats)
	}
	return migrated
}

func (s *Store) normalizeAll(raw []rawChat) []Conversation {
	chats := make([]Conversation, 0, len(raw))
	for _, rc := range raw {
		chats = append(chats, s.normalizer.fromRawChat(rc))
	}
	return chats
}

func (s *Store) SaveChats(ctx context.Context, chats []Conversation) {
	if chats == nil {
		chats = []Conversation{}
	}
	s.saveJSON(ctx, KeyChats, chats)
}

// LoadSettings merges stored fields over DefaultSettings, field by field.
// A field with the wrong type keeps its default.
func (s *Store) LoadSettings(ctx context.Context) Settings {
	if stored, ok := s.get(ctx, KeySettings); ok {
		settings, err := mergeSettings([]byte(stored))
		if err != nil {
			warnf("failed to parse %s: %v", KeySettings, err)
		}
		return settings
	}

	legacy, ok := s.get(ctx, LegacyKeySettings)
	if !ok {
		return DefaultSettings()
	}

	settings, err := mergeSettings([]byte(legacy))
	if err != nil {
		warnf("failed to parse %s: %v", LegacyKeySettings, err)
		return DefaultSettings()
	}
	if s.saveJSON(ctx, KeySettings, settings) {
		s.remove(ctx, LegacyKeySettings)
	}
	return settings
}

func mergeSettings(data []byte) (Settings, error) {
	settings := DefaultSettings()

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return settings, err
	}

	if raw, ok := fields["theme"]; ok {
		var theme Theme
		if json.Unmarshal(raw, &theme) == nil {
			switch theme {
			case ThemeDark, ThemeLight, ThemeAuto:
				settings.Theme = theme
			}
		}
	}
	if raw, ok := fields["temperature"]; ok {
		var t float64
		if json.Unmarshal(raw, &t) == nil {
			settings.Temperature = t
		}
	}
	if raw, ok := fields["maxTokens"]; ok {
		var n float64
		if json.Unmarshal(raw, &n) == nil && n == math.Trunc(n) && n >= 0 && n <= math.MaxInt32 {
			settings.MaxTokens = int(n)
		}
	}
	if raw, ok := fields["lastModel"]; ok {
		var m string
		if json.Unmarshal(raw, &m) == nil {
			settings.LastModel = m
		}
	}

	return settings, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings Settings) {
	s.saveJSON(ctx, KeySettings, settings)
}

// LoadCurrentChatID returns the active chat pointer, or "" when absent.
func (s *Store) LoadCurrentChatID(ctx context.Context) string {
	id, _ := s.get(ctx, KeyCurrentChat)
	return id
}

// SaveCurrentChatID stores the pointer; an empty id removes it.
func (s *Store) SaveCurrentChatID(ctx context.Context, id string) {
	if id == "" {
		s.remove(ctx, KeyCurrentChat)
		return
	}
	s.set(ctx, KeyCurrentChat, id)
}

// LoadAPIKeys merges the stored key set over DefaultAPIKeys.
func (s *Store) LoadAPIKeys(ctx context.Context) APIKeys {
	keys := DefaultAPIKeys()

	stored, ok := s.get(ctx, KeyAPIKeys)
	if !ok {
		return keys
	}

	// A plain JSON object predates encryption and is read as-is
	if s.cipher != nil && !strings.HasPrefix(strings.TrimSpace(stored), "{") {
		plain, err := s.cipher.DecryptString(stored)
		if err != nil {
			warnf("failed to decrypt %s: %v", KeyAPIKeys, err)
			return keys
		}
		stored = plain
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stored), &fields); err != nil {
		warnf("failed to parse %s: %v", KeyAPIKeys, err)
		return keys
	}
	for provider, raw := range fields {
		var secret string
		if json.Unmarshal(raw, &secret) == nil {
			keys[provider] = secret
		}
	}
	return keys
}

func (s *Store) SaveAPIKeys(ctx context.Context, keys APIKeys) {
	data, err := json.Marshal(keys)
	if err != nil {
		warnf("failed to encode %s: %v", KeyAPIKeys, err)
		return
	}

	value := string(data)
	if s.cipher != nil {
		sealed, err := s.cipher.EncryptString(value)
		if err != nil {
			warnf("failed to encrypt %s: %v", KeyAPIKeys, err)
			return
		}
		value = sealed
	}
	s.set(ctx, KeyAPIKeys, value)
}
