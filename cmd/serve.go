package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"

	"github.com/PabloCSScobar/musicxml-parser/catalog"
	"github.com/PabloCSScobar/musicxml-parser/constants"
	"github.com/PabloCSScobar/musicxml-parser/model"
	"github.com/PabloCSScobar/musicxml-parser/util"
)

var scoreCatalog model.Catalog

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the catalog over HTTP",
	Long:  `Serves the catalog over HTTP`,
	Run: func(cmd *cobra.Command, args []string) {
		serve()
	},
}

// LoadServeFiles loads the catalog the handlers serve from.
func LoadServeFiles() {
	scoreCatalog = catalog.LoadCatalog(constants.GetOutDir())
}

func catalogEntries() []model.CatalogEntry {
	nums := util.GetKeys(scoreCatalog)
	slices.Sort(nums)
	res := make([]model.CatalogEntry, 0, len(nums))
	for _, num := range nums {
		res = append(res, scoreCatalog[num])
	}
	return res
}

func entryFromRequest(w http.ResponseWriter, r *http.Request) (model.CatalogEntry, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		http.Error(w, "id must be a file number", 400)
		return model.CatalogEntry{}, false
	}
	entry, ok := scoreCatalog[uint32(id)]
	if !ok {
		w.WriteHeader(404)
		json.NewEncoder(w).Encode(model.ErrorResponse{Error: fmt.Sprintf("no score with id %v", id)})
		return model.CatalogEntry{}, false
	}
	return entry, true
}

func handleScores(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(catalogEntries())
}

func handleEvents(w http.ResponseWriter, r *http.Request) {
	entry, ok := entryFromRequest(w, r)
	if !ok {
		return
	}
	analyzed := catalog.LoadAnalyzed(constants.GetOutDir(), entry.EventsFile)
	json.NewEncoder(w).Encode(analyzed.Events)
}

func handlePlayback(w http.ResponseWriter, r *http.Request) {
	entry, ok := entryFromRequest(w, r)
	if !ok {
		return
	}
	analyzed := catalog.LoadAnalyzed(constants.GetOutDir(), entry.EventsFile)
	json.NewEncoder(w).Encode(analyzed.Playback)
}

func matchesQuery(entry model.CatalogEntry, query string) bool {
	for _, field := range []string{entry.Title, entry.Composer, entry.Path} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func handleSearch(w http.ResponseWriter, r *http.Request) {
	reqBody, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "could not read request body", 400)
		return
	}

	var input model.SearchRequestBody
	if err := json.Unmarshal(reqBody, &input); err != nil {
		http.Error(w, "could not unmarshal request body: "+err.Error(), 400)
		return
	}

	query := strings.ToLower(input.Query)
	res := make([]model.CatalogEntry, 0)
	for _, entry := range catalogEntries() {
		if matchesQuery(entry, query) {
			res = append(res, entry)
		}
	}
	json.NewEncoder(w).Encode(res)
}

// NewRouter wires the HTTP API. Exported so tests can drive the handlers
// without a listener.
func NewRouter() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/scores", handleScores).Methods("GET")
	router.HandleFunc("/scores/{id}/events", handleEvents).Methods("GET")
	router.HandleFunc("/scores/{id}/playback", handlePlayback).Methods("GET")
	router.HandleFunc("/search", handleSearch).Methods("POST")
	return router
}

func serve() {
	LoadServeFiles()
	handler := cors.Default().Handler(NewRouter())
	log.Fatal(http.ListenAndServe(":8080", handler))
}
