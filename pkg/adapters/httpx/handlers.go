package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/component"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/el"
)

// ActionParam is the form/query parameter naming the component to fire
// on a postback.
const ActionParam = "arbor.action"

// firer is satisfied by command components.
type firer interface {
	Fire(res *el.Resolution) (string, error)
}

// Page is a server-rendered view. Build assembles the view's components
// for the current request; Navigate maps a non-empty action outcome to a
// redirect target (return "" to re-render in place).
type Page struct {
	Build    func(c *arbor.Context) ([]component.Component, error)
	Navigate func(outcome string) string
}

// ServeHTTP renders the page, or on a postback fires the addressed
// component first and follows its outcome.
func (p *Page) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, ok := FromRequest(r)
	if !ok {
		http.Error(w, "no evaluation context", http.StatusInternalServerError)
		return
	}

	comps, err := p.Build(c)
	if err != nil {
		p.fail(c, w, "build view", err)
		return
	}

	if id := r.FormValue(ActionParam); id != "" {
		outcome, err := p.fire(c, comps, id)
		if err != nil {
			p.fail(c, w, "fire action", err)
			return
		}
		if target := p.target(outcome); target != "" {
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	for _, comp := range comps {
		if err := comp.Render(w); err != nil {
			c.Logger().Error("render failed", "error", err)
			return
		}
	}
}

func (p *Page) fire(c *arbor.Context, comps []component.Component, id string) (string, error) {
	for _, comp := range comps {
		cmd, ok := comp.(firer)
		if !ok {
			continue
		}
		if identified, ok := comp.(interface{ ComponentID() string }); !ok || identified.ComponentID() != id {
			continue
		}
		return cmd.Fire(c.Resolution())
	}
	return "", domain.ErrUnknownComponent
}

func (p *Page) target(outcome string) string {
	if outcome == "" || p.Navigate == nil {
		return ""
	}
	return p.Navigate(outcome)
}

func (p *Page) fail(c *arbor.Context, w http.ResponseWriter, op string, err error) {
	c.Logger().Error(op+" failed", "error", err)
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrUnknownComponent) || errors.Is(err, domain.ErrBeanNotFound) {
		status = http.StatusNotFound
	}
	http.Error(w, op+" failed", status)
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// InfoHandler reports the implementation metadata as JSON.
func InfoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(arbor.Info())
}
