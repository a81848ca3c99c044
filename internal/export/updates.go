package export

import "fmt"

// ProgressUpdate represents a progress event during an export.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Phase enumerates the stages of an export.
type Phase int

const (
	RenderPages Phase = iota
	PrintDocument
	WriteFiles
	Done
)

func (p Phase) String() string {
	switch p {
	case RenderPages:
		return "render_pages"
	case PrintDocument:
		return "print_document"
	case WriteFiles:
		return "write_files"
	case Done:
		return "done"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func renderPageUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RenderPages,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Rendering %s...", step, total, title),
	}
}

func printDocumentUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: PrintDocument, Step: 1, Total: 1, Message: "Printing document with headless Chrome..."}
}

func writeFileUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteFiles,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Writing %s", step, total, path),
	}
}

func doneUpdate(files int) ProgressUpdate {
	return ProgressUpdate{Phase: Done, Step: 1, Total: 1, Message: fmt.Sprintf("Export complete (%d files)", files)}
}
