package namespace

import "log/slog"

type TableOption func(*Table)

// WithDefaultPath sets the path used initially and by ResetToDefaultPath.
func WithDefaultPath(path string) TableOption {
	return func(t *Table) {
		if path != "" {
			t.defaultPath = path
		}
	}
}

func WithLogger(l *slog.Logger) TableOption {
	return func(t *Table) {
		if l != nil {
			t.logger = l
		}
	}
}
