package tui

import (
	"cpv/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
)

// Sender is the part of *tea.Program the copy goroutine talks to.
type Sender interface {
	Send(msg tea.Msg)
}

// Reporter forwards engine callbacks into the running program. Send is safe
// to call from the copy goroutine and returns once the program has exited.
type Reporter struct {
	Sender Sender
}

func (r Reporter) Report(e domain.ProgressEvent) {
	r.Sender.Send(ProgressMsg{Event: e})
}

func (r Reporter) Result(res domain.OperationResult) {
	r.Sender.Send(ResultMsg{Result: res})
}

func (r Reporter) ScanProgress(operations int, bytes int64) {
	r.Sender.Send(ScanProgressMsg{Operations: operations, Bytes: bytes})
}

func (r Reporter) PlanReady(plan domain.CopyPlan) {
	r.Sender.Send(PlanReadyMsg{Plan: plan})
}

func (r Reporter) Done(summary domain.CopySummary) {
	r.Sender.Send(DoneMsg{Summary: summary})
}

func (r Reporter) Fail(err error) {
	r.Sender.Send(ErrorMsg{Err: err})
}
