package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const tagKey = "tag" // The slog attribute key used for filtering tags

// filteringHandler wraps a base slog.Handler to add tag, package and file filtering.
type filteringHandler struct {
	baseHandler slog.Handler
	cfg         *Config // Reference to processed config
	tag         string  // tag bound through WithAttrs, if any
}

// newFilteringHandler creates a handler with filtering capabilities.
func newFilteringHandler(base slog.Handler, cfg *Config) *filteringHandler {
	return &filteringHandler{
		baseHandler: base,
		cfg:         cfg,
	}
}

// Enabled checks if the level is enabled by the base handler.
func (h *filteringHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.baseHandler.Enabled(ctx, level)
}

func foundInSet(set map[string]struct{}, key string) bool {
	if set == nil {
		return false
	}
	_, found := set[key]
	return found
}

// allowed applies the enabled/disabled pair for one dimension. Disabled wins.
func allowed(enabled, disabled map[string]struct{}, key string) bool {
	if foundInSet(disabled, key) {
		return false
	}
	if enabled != nil && !foundInSet(enabled, key) {
		return false
	}
	return true
}

// source returns the package directory and file base name of the record's caller.
func source(r slog.Record) (pkg, file string, ok bool) {
	if r.PC == 0 {
		return "", "", false
	}
	frames := runtime.CallersFrames([]uintptr{r.PC})
	frame, _ := frames.Next()
	if frame.File == "" {
		return "", "", false
	}
	return filepath.Base(filepath.Dir(frame.File)), filepath.Base(frame.File), true
}

// Handle applies filtering logic before passing the record to the base handler.
func (h *filteringHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg == nil {
		return h.baseHandler.Handle(ctx, r)
	}

	if debugFilter {
		fmt.Fprintf(os.Stderr, "[FILTER] Message: Level=%s, Msg=%s\n", r.Level, r.Message)
	}

	if pkg, file, ok := source(r); ok {
		if !allowed(h.cfg.enabledPackagesSet, h.cfg.disabledPackagesSet, strings.ToLower(pkg)) {
			if debugFilter {
				fmt.Fprintf(os.Stderr, "[FILTER] FILTERED OUT: package '%s'\n", pkg)
			}
			return nil
		}
		if !allowed(h.cfg.enabledFilesSet, h.cfg.disabledFilesSet, strings.ToLower(file)) {
			if debugFilter {
				fmt.Fprintf(os.Stderr, "[FILTER] FILTERED OUT: file '%s'\n", file)
			}
			return nil
		}
	}

	tag := h.tag
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == tagKey {
			tag = a.Value.String()
			return false
		}
		return true
	})

	if tag != "" {
		if !allowed(h.cfg.enabledTagsSet, h.cfg.disabledTagsSet, strings.ToLower(tag)) {
			if debugFilter {
				fmt.Fprintf(os.Stderr, "[FILTER] FILTERED OUT: tag '%s'\n", tag)
			}
			return nil
		}
	} else if h.cfg.enabledTagsSet != nil {
		// Filtering for specific tags and this message has none
		return nil
	}

	return h.baseHandler.Handle(ctx, r)
}

// WithAttrs returns a new handler with attributes added.
func (h *filteringHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := newFilteringHandler(h.baseHandler.WithAttrs(attrs), h.cfg)
	next.tag = h.tag
	for _, a := range attrs {
		if a.Key == tagKey {
			next.tag = a.Value.String()
		}
	}
	return next
}

// WithGroup returns a new handler with a group added.
func (h *filteringHandler) WithGroup(name string) slog.Handler {
	next := newFilteringHandler(h.baseHandler.WithGroup(name), h.cfg)
	next.tag = h.tag
	return next
}
