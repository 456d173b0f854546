package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// targetAttrKey is the attribute that marks a record as belonging to a
// staging session against a particular target root.
const targetAttrKey = "target"

// installerLogRel is where the tee lands inside the target tree. It sits
// outside the staged overlays, so it survives teardown and documents what
// was staged.
const installerLogRel = "var/log/installer/aptstage.log"

// TargetLogHandler wraps an slog.Handler and additionally appends records
// carrying a "target" attribute to <target>/var/log/installer/aptstage.log.
// Installer logs live inside the target so failures can be diagnosed from
// the installed system.
type TargetLogHandler struct {
	slog.Handler
	preAttrs []slog.Attr // attrs bound via WithAttrs, searched for "target"
}

func NewTargetLogHandler(wrapped slog.Handler) *TargetLogHandler {
	return &TargetLogHandler{Handler: wrapped}
}

func (h *TargetLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.Handler.Handle(ctx, r); err != nil {
		return err
	}

	target := ""
	for _, a := range h.preAttrs {
		if a.Key == targetAttrKey {
			target = a.Value.String()
			break
		}
	}
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == targetAttrKey {
			target = a.Value.String()
			return false
		}
		return true
	})

	if target != "" {
		h.appendToTargetLog(target, r)
	}
	return nil
}

// appendToTargetLog writes one formatted line to the target's installer log.
// Failures are swallowed: the primary handler already saw the record and a
// half-built target may legitimately lack var/log.
func (h *TargetLogHandler) appendToTargetLog(target string, r slog.Record) {
	logPath := filepath.Join(target, installerLogRel)
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return
	}

	line := fmt.Sprintf("%s %s %s", r.Time.Format(time.RFC3339), r.Level, r.Message)
	for _, a := range h.preAttrs {
		if a.Key != targetAttrKey {
			line += fmt.Sprintf(" %s=%v", a.Key, a.Value)
		}
	}
	r.Attrs(func(a slog.Attr) bool {
		if a.Key != targetAttrKey {
			line += fmt.Sprintf(" %s=%v", a.Key, a.Value)
		}
		return true
	})

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return
	}
	defer f.Close()
	f.WriteString(line + "\n")
}

func (h *TargetLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.Handler.Enabled(ctx, level)
}

func (h *TargetLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	preAttrs := make([]slog.Attr, len(h.preAttrs), len(h.preAttrs)+len(attrs))
	copy(preAttrs, h.preAttrs)
	preAttrs = append(preAttrs, attrs...)
	return &TargetLogHandler{
		Handler:  h.Handler.WithAttrs(attrs),
		preAttrs: preAttrs,
	}
}

func (h *TargetLogHandler) WithGroup(name string) slog.Handler {
	return &TargetLogHandler{
		Handler:  h.Handler.WithGroup(name),
		preAttrs: h.preAttrs,
	}
}
