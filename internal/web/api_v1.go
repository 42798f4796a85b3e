package web

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/rook-computer/reticle/internal/render"
	"github.com/rook-computer/reticle/internal/reticle"
	"github.com/rook-computer/reticle/internal/settings"
	"github.com/rook-computer/reticle/internal/svg"
)

const (
	maxBodyBytes   = 1 << 20
	previewSize    = 200
	maxPreviewSize = 4096
	qrCodeSizePx   = 256
)

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type profilesResponse struct {
	Profiles []string `json:"profiles"`
	Active   string   `json:"active"`
}

func apiV1Router(deps APIV1Deps) http.Handler {
	deps = deps.withDefaults()
	mux := http.NewServeMux()
	mux.HandleFunc("/settings", func(w http.ResponseWriter, r *http.Request) { handleSettings(w, r, deps) })
	mux.HandleFunc("/settings/defaults", func(w http.ResponseWriter, r *http.Request) { handleDefaults(w, r, deps) })
	mux.HandleFunc("/profiles", func(w http.ResponseWriter, r *http.Request) { handleProfiles(w, r, deps) })
	mux.HandleFunc("/profiles/", func(w http.ResponseWriter, r *http.Request) { handleProfiles(w, r, deps) })
	mux.HandleFunc("/export", func(w http.ResponseWriter, r *http.Request) { handleExport(w, r, deps) })
	mux.HandleFunc("/import", func(w http.ResponseWriter, r *http.Request) { handleImport(w, r, deps) })
	mux.HandleFunc("/reticle.svg", func(w http.ResponseWriter, r *http.Request) { handlePreviewSVG(w, r, deps) })
	mux.HandleFunc("/reticle.png", func(w http.ResponseWriter, r *http.Request) { handlePreviewPNG(w, r, deps) })
	mux.HandleFunc("/qr", func(w http.ResponseWriter, r *http.Request) { handleQRCode(w, r, deps) })
	return mux
}

func handleSettings(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, deps.Settings.Current())
	case http.MethodPut, http.MethodPatch:
		values, ok := readObject(w, r)
		if !ok {
			return
		}
		if err := validateSettings(values); err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_settings", err.Error())
			return
		}
		if err := deps.Settings.Apply(values); err != nil {
			deps.Logger.Errorf("web", "apply settings failed: %v", err)
			writeAPIError(w, http.StatusInternalServerError, "store_failed", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, deps.Settings.Current())
	default:
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

// validateSettings rejects unknown keys and values that can't be decoded, so a bad
// form field never reaches the store.
func validateSettings(values map[string]any) error {
	var unknown []string
	for key := range values {
		if !settings.IsKey(key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown settings: %s", strings.Join(unknown, ", "))
	}
	candidate := settings.Defaults()
	if invalid := candidate.Merge(values); len(invalid) > 0 {
		return fmt.Errorf("invalid values for: %s", strings.Join(invalid, ", "))
	}
	return nil
}

func handleDefaults(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if err := deps.Settings.RestoreDefaults(); err != nil {
		writeAPIError(w, http.StatusInternalServerError, "store_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, deps.Settings.Current())
}

// handleProfiles serves:
//
//	GET    /profiles              -> saved profile names and the active one
//	POST   /profiles/{name}       -> save the current settings as {name}
//	DELETE /profiles/{name}       -> remove {name}
//	POST   /profiles/{name}/load  -> apply {name}
func handleProfiles(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	rel := strings.Trim(strings.TrimPrefix(r.URL.Path, "/profiles"), "/")
	if rel == "" {
		if r.Method != http.MethodGet {
			writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}
		writeProfiles(w, deps)
		return
	}

	name, action, _ := strings.Cut(rel, "/")
	var err error
	switch {
	case action == "" && r.Method == http.MethodPost:
		err = deps.Settings.SaveProfile(name)
	case action == "" && r.Method == http.MethodDelete:
		err = deps.Settings.RemoveProfile(name)
	case action == "load" && r.Method == http.MethodPost:
		err = deps.Settings.LoadProfile(name)
	case action == "" || action == "load":
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	default:
		writeAPIError(w, http.StatusNotFound, "not_found", "not found")
		return
	}
	if err != nil {
		writeProfileError(w, err)
		return
	}
	deps.Logger.Infof("web", "profile %q: %s %s", name, r.Method, action)
	writeProfiles(w, deps)
}

func writeProfiles(w http.ResponseWriter, deps APIV1Deps) {
	profiles := deps.Settings.Profiles()
	if profiles == nil {
		profiles = []string{}
	}
	writeJSON(w, http.StatusOK, profilesResponse{Profiles: profiles, Active: deps.Settings.ActiveProfile()})
}

func writeProfileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, settings.ErrInvalidLabel):
		writeAPIError(w, http.StatusBadRequest, "invalid_label", err.Error())
	case errors.Is(err, settings.ErrProfileNotFound):
		writeAPIError(w, http.StatusNotFound, "profile_not_found", err.Error())
	default:
		writeAPIError(w, http.StatusInternalServerError, "store_failed", err.Error())
	}
}

func handleExport(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	data, err := deps.Settings.Export()
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "export_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="reticle-settings.json"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func handleImport(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "read_failed", err.Error())
		return
	}
	if err := deps.Settings.Import(data); err != nil {
		if errors.Is(err, settings.ErrInvalidImport) {
			writeAPIError(w, http.StatusBadRequest, "invalid_import", err.Error())
			return
		}
		writeAPIError(w, http.StatusInternalServerError, "store_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, deps.Settings.Current())
}

// previewReticle lays out a standalone reticle from the stored settings. It never
// touches the overlay's own document, which belongs to the app goroutine.
func previewReticle(w http.ResponseWriter, r *http.Request, deps APIV1Deps) (*svg.Surface, bool) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return nil, false
	}
	width, werr := previewDimension(r, "width")
	height, herr := previewDimension(r, "height")
	if err := errors.Join(werr, herr); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_size", err.Error())
		return nil, false
	}
	doc := svg.NewDocument(width, height)
	doc.AddSurface("preview")
	ret, err := reticle.New(doc, "preview")
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "preview_failed", err.Error())
		return nil, false
	}
	ret.Render(deps.Settings.Current())
	return ret.Surface(), true
}

func previewDimension(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return previewSize, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > maxPreviewSize {
		return 0, fmt.Errorf("%s must be between 1 and %d", name, maxPreviewSize)
	}
	return n, nil
}

func handlePreviewSVG(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	surface, ok := previewReticle(w, r, deps)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := surface.WriteTo(w); err != nil {
		deps.Logger.Errorf("web", "write preview svg: %v", err)
	}
}

func handlePreviewPNG(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	surface, ok := previewReticle(w, r, deps)
	if !ok {
		return
	}
	width, height := surface.Parent().Size()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	render.Rasterize(img, surface)
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := png.Encode(w, img); err != nil {
		deps.Logger.Errorf("web", "write preview png: %v", err)
	}
}

func handleQRCode(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	url := deps.SettingsURL()
	if url == "" {
		writeAPIError(w, http.StatusNotFound, "no_settings_url", "settings url unknown")
		return
	}
	data, err := render.QRCodePNG(url, qrCodeSizePx)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "qr_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// readObject decodes a JSON object body, answering the request itself on failure.
func readObject(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "read_failed", err.Error())
		return nil, false
	}
	var values map[string]any
	if err := sonic.Unmarshal(data, &values); err != nil || values == nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_json", "body must be a JSON object")
		return nil, false
	}
	return values, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}
