package ui

import (
	appmodel "multiai/model"
)

type chatResponseMsg = appmodel.ChatResponseMsg
type configLoadedMsg = appmodel.ConfigLoadedMsg
type chatExportedMsg = appmodel.ChatExportedMsg
type chatImportedMsg = appmodel.ChatImportedMsg
type flashTickMsg = appmodel.FlashTickMsg

// noticeExpiredMsg hides the notice with the given sequence number, unless
// a newer one replaced it.
type noticeExpiredMsg struct {
	seq int
}
