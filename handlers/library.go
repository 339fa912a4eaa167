package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"reelfeed/models"
	librarysvc "reelfeed/services/library"
)

type libraryService interface {
	Load() models.Library
	AddToList(list string, input models.MovieInput) (models.Library, error)
	RemoveFromList(id, list string) (models.Library, error)
	MoveToMyList(id string) (models.Library, error)
	ReorderMyList(newOrder []models.StoredMovie) (models.Library, error)
	BlockMovie(id string) (models.Library, error)
	ExportSnapshot() (string, error)
	ImportSnapshot(snapshot string) error
	ClearAll() (models.Library, error)
	Stats() models.LibraryStats
}

var _ libraryService = (*librarysvc.Service)(nil)

// LibraryHandler exposes the persisted list store to the UI layer.
type LibraryHandler struct {
	Service libraryService
}

func NewLibraryHandler(s libraryService) *LibraryHandler {
	return &LibraryHandler{Service: s}
}

// Snapshot responds with the full persisted store.
func (h *LibraryHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Service.Load())
}

// Stats responds with the store summary for the profile view.
func (h *LibraryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Service.Stats())
}

// Add classifies a movie into the named list.
func (h *LibraryHandler) Add(w http.ResponseWriter, r *http.Request) {
	list := mux.Vars(r)["list"]

	var input models.MovieInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	lib, err := h.Service.AddToList(list, input)
	if err != nil {
		// Write failures degrade; the caller still gets the updated view.
		log.Printf("[library-handler] add to %s: %v", list, err)
	}
	writeJSON(w, lib)
}

// Remove filters the id out of the named list.
func (h *LibraryHandler) Remove(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	lib, err := h.Service.RemoveFromList(vars["id"], vars["list"])
	if err != nil {
		log.Printf("[library-handler] remove from %s: %v", vars["list"], err)
	}
	writeJSON(w, lib)
}

// Restore moves a watched entry back onto myList.
func (h *LibraryHandler) Restore(w http.ResponseWriter, r *http.Request) {
	lib, err := h.Service.MoveToMyList(mux.Vars(r)["id"])
	if err != nil {
		log.Printf("[library-handler] restore: %v", err)
	}
	writeJSON(w, lib)
}

// Reorder replaces myList with the supplied ordering.
func (h *LibraryHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var newOrder []models.StoredMovie
	if err := json.NewDecoder(r.Body).Decode(&newOrder); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	lib, err := h.Service.ReorderMyList(newOrder)
	if err != nil {
		log.Printf("[library-handler] reorder: %v", err)
	}
	writeJSON(w, lib)
}

// Block adds the id to the blocked set.
func (h *LibraryHandler) Block(w http.ResponseWriter, r *http.Request) {
	lib, err := h.Service.BlockMovie(mux.Vars(r)["id"])
	if err != nil {
		log.Printf("[library-handler] block: %v", err)
	}
	writeJSON(w, lib)
}

// Export streams the full store snapshot for backup.
func (h *LibraryHandler) Export(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.Service.ExportSnapshot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="reelfeed-library.json"`)
	io.WriteString(w, snapshot)
}

// Import replaces the store wholesale from an uploaded snapshot.
func (h *LibraryHandler) Import(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Service.ImportSnapshot(string(body)); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, h.Service.Load())
}

// Clear resets the store to its empty defaults.
func (h *LibraryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	lib, err := h.Service.ClearAll()
	if err != nil {
		log.Printf("[library-handler] clear: %v", err)
	}
	writeJSON(w, lib)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
