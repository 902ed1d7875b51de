package preferences

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/vitaldent/clinic-site/internal/widgets"
	"github.com/vitaldent/clinic-site/pkg/logging"
)

// Handler serves the preference toggles and resolves preferences for pages.
type Handler struct {
	store  Store
	logger *logging.Logger
}

// NewHandler creates a preferences handler.
func NewHandler(store Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// Resolve returns the visitor's preferences without issuing a cookie.
// Store failures fall back to defaults.
func (h *Handler) Resolve(ctx context.Context, r *http.Request) Preferences {
	id, ok := VisitorID(r)
	if !ok {
		return Default()
	}
	prefs, err := h.store.Get(ctx, id)
	if err != nil {
		h.logger.Warn("preferences lookup failed", "error", err)
		return Default()
	}
	return prefs
}

// ToggleTheme handles POST /preferencias/tema.
func (h *Handler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, func(p Preferences) Preferences {
		p.Theme = p.Theme.Toggle()
		return p
	})
}

// AdjustText handles POST /preferencias/texto?delta=±2.
func (h *Handler) AdjustText(w http.ResponseWriter, r *http.Request) {
	delta, err := strconv.Atoi(r.FormValue("delta"))
	if err != nil {
		http.Error(w, "invalid delta", http.StatusBadRequest)
		return
	}
	h.update(w, r, func(p Preferences) Preferences {
		p.FontSizePx = widgets.AdjustFontSize(p.FontSizePx, delta)
		return p
	})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, change func(Preferences) Preferences) {
	id := EnsureVisitorID(w, r)
	prefs, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.logger.Warn("preferences lookup failed", "error", err)
		prefs = Default()
	}
	prefs = change(prefs.Normalize()).Normalize()
	if err := h.store.Save(r.Context(), id, prefs); err != nil {
		h.logger.Error("failed to save preferences", "error", err)
	}
	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

// backTo returns the same-origin path of the referring page, or "/".
func backTo(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != r.Host) ||
		strings.HasPrefix(ref.Path, "//") || strings.HasPrefix(ref.Path, "/\\") {
		return "/"
	}
	target := ref.Path
	if ref.RawQuery != "" {
		target += "?" + ref.RawQuery
	}
	return target
}
