package editshell

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Labels stay low-cardinality: no tokens, paths or IPs.
var (
	previewLogins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "editshell_preview_logins_total",
		Help: "Preview session attempts on /api/preview, by result.",
	}, []string{"result"})

	previewResets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "editshell_preview_resets_total",
		Help: "Preview sessions ended through /api/reset-preview.",
	})

	editModeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "editshell_edit_mode_toggles_total",
		Help: "Edit-mode toggle activations, by resulting state.",
	}, []string{"enabled"})

	draftSaves = promauto.NewCounter(prometheus.CounterOpts{
		Name: "editshell_draft_saves_total",
		Help: "Page drafts saved during preview sessions.",
	})

	pagesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "editshell_pages_created_total",
		Help: "New pages started as drafts during preview sessions.",
	})
)
