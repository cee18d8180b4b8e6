package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/zoolspeed/internal/catalog"
)

type featureResponse struct {
	Key         string `json:"key"`
	DisplayName string `json:"name"`
	Category    string `json:"category,omitempty"`
}

type featureCategoryResponse struct {
	Category string            `json:"category"`
	Features []featureResponse `json:"features"`
}

type catalogResponse struct {
	Admin   []featureResponse         `json:"admin"`
	General []featureCategoryResponse `json:"general"`
}

// ListFeatures returns the catalog in the layout of the permissions page: admin keys flat,
// general keys grouped by category in declaration order.
func (s *Server) ListFeatures(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": buildCatalogResponse(s.catalog)})
}

func buildCatalogResponse(cat *catalog.Catalog) catalogResponse {
	resp := catalogResponse{
		Admin:   []featureResponse{},
		General: []featureCategoryResponse{},
	}
	for _, def := range cat.ByScope(catalog.ScopeAdmin) {
		resp.Admin = append(resp.Admin, toFeatureResponse(def))
	}

	index := map[string]int{}
	for _, def := range cat.ByScope(catalog.ScopeGeneral) {
		i, ok := index[def.Category]
		if !ok {
			i = len(resp.General)
			index[def.Category] = i
			resp.General = append(resp.General, featureCategoryResponse{Category: def.Category})
		}
		resp.General[i].Features = append(resp.General[i].Features, toFeatureResponse(def))
	}
	return resp
}

func toFeatureResponse(def catalog.FeatureDefinition) featureResponse {
	return featureResponse{
		Key:         def.Key,
		DisplayName: def.DisplayName,
		Category:    def.Category,
	}
}
