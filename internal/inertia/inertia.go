// Package inertia implements the page renderer bridge between handlers
// and the hydrated client. Every page response is a page object
// (component name + props) delivered as JSON to bridge-aware requests
// and as an HTML shell embedding the page object on first load.
package inertia

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// HeaderInertia marks a request or response as bridge navigation.
const HeaderInertia = "X-Inertia"

// HeaderVersion carries the asset version for stale-bundle detection.
const HeaderVersion = "X-Inertia-Version"

// Props is the payload hydrated into a client view.
type Props map[string]any

// Page is the serialized page object.
type Page struct {
	Component string `json:"component"`
	Props     Props  `json:"props"`
	URL       string `json:"url"`
	Version   string `json:"version"`
}

// ShareFunc supplies props merged into every render, such as the
// authenticated user and the one-shot flash message.
type ShareFunc func(r *http.Request) Props

// Renderer turns controller output into page responses.
type Renderer struct {
	version string
	share   ShareFunc
	shell   *template.Template
}

// shellTemplate is the HTML document served on full (non-XHR) loads.
// The client bundle mounts on #app and hydrates from data-page.
var shellTemplate = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>QuillPost</title>
<link rel="stylesheet" href="/assets/app.css">
<script type="module" src="/assets/app.js" defer></script>
</head>
<body>
<div id="app" data-page="{{.}}"></div>
</body>
</html>
`))

// NewRenderer creates a Renderer. share may be nil.
func NewRenderer(version string, share ShareFunc) *Renderer {
	if share == nil {
		share = func(*http.Request) Props { return Props{} }
	}
	return &Renderer{
		version: version,
		share:   share,
		shell:   shellTemplate,
	}
}

// Render writes the page object for component with status 200.
func (rnd *Renderer) Render(w http.ResponseWriter, r *http.Request, component string, props Props) error {
	return rnd.RenderStatus(w, r, http.StatusOK, component, props)
}

// RenderStatus writes the page object for component with an explicit
// status, used for validation (422) and error (403/404) pages.
func (rnd *Renderer) RenderStatus(w http.ResponseWriter, r *http.Request, status int, component string, props Props) error {
	page := Page{
		Component: component,
		Props:     rnd.mergeProps(r, props),
		URL:       r.URL.RequestURI(),
		Version:   rnd.version,
	}

	if r.Header.Get(HeaderInertia) == "true" {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set(HeaderInertia, "true")
		w.Header().Set("Vary", HeaderInertia)
		w.WriteHeader(status)
		return json.NewEncoder(w).Encode(page)
	}

	data, err := json.Marshal(page)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return rnd.shell.Execute(w, string(data))
}

// Redirect sends the client to location with redirect semantics the
// hydration bridge understands: 303 after PUT/PATCH/DELETE so the
// follow-up request is a GET, 302 otherwise.
func (rnd *Renderer) Redirect(w http.ResponseWriter, r *http.Request, location string) {
	status := http.StatusFound
	switch r.Method {
	case http.MethodPut, http.MethodPatch, http.MethodDelete:
		status = http.StatusSeeOther
	}
	http.Redirect(w, r, location, status)
}

// mergeProps layers shared props under the handler's props.
// The errors bag is always present so client forms can bind to it.
func (rnd *Renderer) mergeProps(r *http.Request, props Props) Props {
	merged := Props{
		"errors": map[string]string{},
	}
	for k, v := range rnd.share(r) {
		merged[k] = v
	}
	for k, v := range props {
		merged[k] = v
	}
	return merged
}
