package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/deck/internal/anim"
	"github.com/desertthunder/deck/internal/export"
)

// MsgKind enumerates all message types in the presenter.
type MsgKind int

// Msg represents all presenter messages (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgReveal MsgKind = iota
	MsgFrame
	MsgNoticeExpired
	MsgExportStart
	MsgExportProgress
	MsgExportDone
	MsgExportFallback
	MsgDeckChanged
	MsgWatchError
)

// Kind reports which variant m holds.
func (m Msg) Kind() MsgKind { return m.kind }

type exportResult struct {
	token  int
	result *export.Result
	err    error
}

// revealMsg is the constructor for [MsgReveal]
func revealMsg(step anim.Step) Msg {
	return Msg{kind: MsgReveal, data: step}
}

// frameMsg is the constructor for [MsgFrame]
func frameMsg() Msg {
	return Msg{kind: MsgFrame}
}

// noticeExpiredMsg is the constructor for [MsgNoticeExpired]
func noticeExpiredMsg(token int) Msg {
	return Msg{kind: MsgNoticeExpired, data: token}
}

// exportStartMsg is the constructor for [MsgExportStart]
func exportStartMsg(token int) Msg {
	return Msg{kind: MsgExportStart, data: token}
}

// exportProgressMsg is the constructor for [MsgExportProgress]
func exportProgressMsg(update export.ProgressUpdate) Msg {
	return Msg{kind: MsgExportProgress, data: update}
}

// exportDoneMsg is the constructor for [MsgExportDone]
func exportDoneMsg(token int, result *export.Result, err error) Msg {
	return Msg{kind: MsgExportDone, data: exportResult{token: token, result: result, err: err}}
}

// exportFallbackMsg is the constructor for [MsgExportFallback]
func exportFallbackMsg(token int) Msg {
	return Msg{kind: MsgExportFallback, data: token}
}

// deckChangedMsg is the constructor for [MsgDeckChanged]
func deckChangedMsg() Msg {
	return Msg{kind: MsgDeckChanged}
}

// watchErrorMsg is the constructor for [MsgWatchError]
func watchErrorMsg(err error) Msg {
	return Msg{kind: MsgWatchError, data: err}
}
