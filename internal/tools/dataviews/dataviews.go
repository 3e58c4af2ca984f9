// Package dataviews implements the data view tools: get_list_data_view and
// get_data_view_count.
package dataviews

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/marco-looy/pega-dx-mcp/internal/dx"
	"github.com/marco-looy/pega-dx-mcp/internal/mcp"
	"github.com/marco-looy/pega-dx-mcp/internal/tools/common"
)

const category = "dataviews"

// querySchemaFragment documents the DX query grammar once for both tools.
const querySchemaFragment = `"query": {
      "type": "object",
      "description": "DX query: select columns, filter, sortBy, aggregations",
      "properties": {
        "select": {"type": "array", "items": {"type": "object"}},
        "sortBy": {"type": "array", "items": {"type": "object"}},
        "filter": {"type": "object"},
        "aggregations": {"type": "object"},
        "distinctResultsOnly": {"type": "boolean"}
      }
    },
    "dataViewParameters": {
      "type": "object",
      "description": "Parameters the data view declares"
    }`

// --- get_list_data_view ---

type getListDataViewParams struct {
	common.SessionArgs
	DataViewID         string            `json:"dataViewID"`
	Query              *dx.DataViewQuery `json:"query,omitempty"`
	DataViewParameters map[string]any    `json:"dataViewParameters,omitempty"`
	Paging             map[string]any    `json:"paging,omitempty"`
}

type GetListDataView struct {
	deps *common.Deps
}

func NewGetListDataView(deps *common.Deps) *GetListDataView { return &GetListDataView{deps: deps} }

func (t *GetListDataView) Name() string     { return "get_list_data_view" }
func (t *GetListDataView) Category() string { return category }
func (t *GetListDataView) Description() string {
	return "Query a list data view: select columns, filter, sort and page through the rows. Without a query the data view's default column set is returned."
}
func (t *GetListDataView) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "dataViewID": {
      "type": "string",
      "description": "Data view name, e.g. 'D_EmployeeList'"
    },
    %s,
    "paging": {
      "type": "object",
      "description": "pageNumber/pageSize or maxResultsToFetch"
    },
    %s
  },
  "required": ["dataViewID"]
}`, querySchemaFragment, common.SessionCredentialsProperty))
}

func (t *GetListDataView) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[getListDataViewParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(common.Field{Name: "dataViewID", Value: p.DataViewID}); msg != "" {
		return common.ValidationError(msg), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Get List Data View", fctx, func(ctx context.Context) (*dx.Result, error) {
		in := dx.ListDataViewInput{
			DataViewParameters: p.DataViewParameters,
			Query:              p.Query,
			Paging:             p.Paging,
		}
		return t.deps.Client.GetListDataView(ctx, sess, p.DataViewID, in)
	}), nil
}

// --- get_data_view_count ---

type getDataViewCountParams struct {
	common.SessionArgs
	DataViewID         string            `json:"dataViewID"`
	Query              *dx.DataViewQuery `json:"query,omitempty"`
	DataViewParameters map[string]any    `json:"dataViewParameters,omitempty"`
}

type GetDataViewCount struct {
	deps *common.Deps
}

func NewGetDataViewCount(deps *common.Deps) *GetDataViewCount {
	return &GetDataViewCount{deps: deps}
}

func (t *GetDataViewCount) Name() string     { return "get_data_view_count" }
func (t *GetDataViewCount) Category() string { return category }
func (t *GetDataViewCount) Description() string {
	return "Count the results of a data view query without transferring the rows."
}
func (t *GetDataViewCount) InputSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "dataViewID": {
      "type": "string",
      "description": "Data view name"
    },
    %s,
    %s
  },
  "required": ["dataViewID"]
}`, querySchemaFragment, common.SessionCredentialsProperty))
}

func (t *GetDataViewCount) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	p, errRes := common.ParseParams[getDataViewCountParams](params)
	if errRes != nil {
		return errRes, nil
	}
	if msg := common.MissingRequired(common.Field{Name: "dataViewID", Value: p.DataViewID}); msg != "" {
		return common.ValidationError(msg), nil
	}

	sess, err := t.deps.Resolve(p.SessionArgs)
	if err != nil {
		return common.ConfigError(err), nil
	}

	fctx := &common.FormatContext{Session: sess}
	return common.Run(ctx, "Get Data View Count", fctx, func(ctx context.Context) (*dx.Result, error) {
		in := dx.ListDataViewInput{
			DataViewParameters: p.DataViewParameters,
			Query:              p.Query,
		}
		return t.deps.Client.GetDataViewCount(ctx, sess, p.DataViewID, in)
	}), nil
}
