package model

import (
	"multiai/catalog"
	"multiai/storage"
)

// ChatResponseMsg carries a settled send back to the update loop.
type ChatResponseMsg struct {
	Result DispatchResult
}

type ConfigLoadedMsg struct {
	Config *catalog.Config
	Err    error
}

type ChatExportedMsg struct {
	Path string
	Err  error
}

type ChatImportedMsg struct {
	Conversation storage.Conversation
	Err          error
}

type FlashTickMsg struct{}
