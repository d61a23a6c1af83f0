package handlers

import (
	"net/http"

	"payconnect/internal/provider"
)

type connectorOut struct {
	provider.ConnectorInfo
	Implemented      []provider.Flow `json:"implemented_flows"`
	NeedsAccessToken bool            `json:"needs_access_token"`
}

// ListConnectors describes every registered connector and the flows it
// implements.
func ListConnectors(reg *provider.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := make([]connectorOut, 0)
		for _, kind := range reg.List() {
			c, err := reg.Get(kind)
			if err != nil {
				continue
			}
			info, _ := reg.Info(kind)
			out = append(out, connectorOut{ConnectorInfo: info, Implemented: c.Flows(), NeedsAccessToken: c.NeedsAccessToken})
		}
		writeJSON(w, http.StatusOK, map[string]any{"connectors": out})
	}
}
