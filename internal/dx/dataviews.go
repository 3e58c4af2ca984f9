package dx

import (
	"context"
	"net/http"
)

// DataViewQuery selects, filters, sorts and aggregates a list data view.
// The shape follows the DX API query grammar verbatim; the gateway treats
// it as opaque.
type DataViewQuery struct {
	Select              []map[string]any `json:"select,omitempty"`
	SortBy              []map[string]any `json:"sortBy,omitempty"`
	Filter              map[string]any   `json:"filter,omitempty"`
	Aggregations        map[string]any   `json:"aggregations,omitempty"`
	DistinctResultsOnly bool             `json:"distinctResultsOnly,omitempty"`
}

// ListDataViewInput is the body of a data view list/count request.
type ListDataViewInput struct {
	DataViewParameters map[string]any `json:"dataViewParameters,omitempty"`
	Query              *DataViewQuery `json:"query,omitempty"`
	Paging             map[string]any `json:"paging,omitempty"`
}

// GetListDataView queries a list data view, returning a page of rows.
func (c *Client) GetListDataView(ctx context.Context, sess *Session, dataViewID string, in ListDataViewInput) (*Result, error) {
	req := &request{method: http.MethodPost, segments: []string{"data_views", dataViewID}}
	if err := req.withJSONBody(in); err != nil {
		return nil, err
	}
	return c.call(ctx, sess, req)
}

// GetDataViewCount returns the result count of a data view query without
// transferring the rows.
func (c *Client) GetDataViewCount(ctx context.Context, sess *Session, dataViewID string, in ListDataViewInput) (*Result, error) {
	req := &request{method: http.MethodPost, segments: []string{"data_views", dataViewID, "count"}}
	if err := req.withJSONBody(in); err != nil {
		return nil, err
	}
	return c.call(ctx, sess, req)
}
