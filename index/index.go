package index

import (
	"os"

	"github.com/blevesearch/bleve/v2"
	log "github.com/sirupsen/logrus"
)

const defaultIndexPath = "pzmods.bleve"

// Item is one indexed mod. All fields are searchable by their lowercase
// JSON tag names (e.g. '+workshopId:2875848298' or '+name:hydrocraft').
type Item struct {
	ID          string `json:"id"`          // mod id (unique key)
	WorkshopID  string `json:"workshopId"`  // owning workshop item
	Name        string `json:"name"`        // display name from mod.info or Steam
	Description string `json:"description"` // long-form text when available
	Enabled     bool   `json:"enabled"`
}

// OpenOrCreateIndex opens an existing bleve index or creates a new one.
func OpenOrCreateIndex(indexPath string) (bleve.Index, error) {
	if indexPath == "" {
		indexPath = defaultIndexPath
	}

	idx, err := bleve.Open(indexPath)
	if err == bleve.ErrorIndexPathDoesNotExist {
		log.Infof("Creating new index at: %s", indexPath)
		mapping := bleve.NewIndexMapping()
		return bleve.New(indexPath, mapping)
	}
	if err != nil {
		return nil, err
	}
	log.Debugf("Opened existing index at: %s", indexPath)
	return idx, nil
}

// IndexItem adds or updates an item, keyed by its mod id.
func IndexItem(idx bleve.Index, item Item) error {
	return idx.Index(item.ID, item)
}

// SearchIndex runs a query-string search and returns all stored fields.
func SearchIndex(idx bleve.Index, query string) (*bleve.SearchResult, error) {
	searchQuery := bleve.NewQueryStringQuery(query)
	searchRequest := bleve.NewSearchRequest(searchQuery)
	searchRequest.Fields = []string{"*"}
	return idx.Search(searchRequest)
}

// DeleteIndex removes the index directory.
func DeleteIndex(indexPath string) error {
	if indexPath == "" {
		indexPath = defaultIndexPath
	}
	log.Infof("Deleting index at: %s", indexPath)
	return os.RemoveAll(indexPath)
}
