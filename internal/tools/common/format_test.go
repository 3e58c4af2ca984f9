package common

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marco-looy/pega-dx-mcp/internal/dx"
)

func sampleResult() *dx.Result {
	return &dx.Result{
		Data: map[string]any{
			"ID":     "ON6E5R-DIYREC-WORK R-1001",
			"status": "Open",
			"urgency": float64(10),
			"resolved": nil,
			"caseInfo": map[string]any{
				"caseTypeID": "ON6E5R-DIYRecipe-Work-RecipeCollection",
				"stageLabel": "Review",
			},
			"assignments": []any{
				map[string]any{"ID": "ASSIGN-WORKLIST R-1001!FLOW", "name": "Approval"},
			},
		},
		ETag: "20230601T120000.000 GMT",
	}
}

func TestFormatSuccess_Snapshot(t *testing.T) {
	got := FormatSuccess("Get Case", sampleResult(), &FormatContext{})

	want := "## Get Case\n" +
		"\n" +
		"- **ID**: ON6E5R-DIYREC-WORK R-1001\n" +
		"- **resolved**: N/A\n" +
		"- **status**: Open\n" +
		"- **urgency**: 10\n" +
		"\n" +
		"### assignments\n" +
		"1. `{\"ID\":\"ASSIGN-WORKLIST R-1001!FLOW\",\"name\":\"Approval\"}`\n" +
		"\n" +
		"### caseInfo\n" +
		"- **caseTypeID**: ON6E5R-DIYRecipe-Work-RecipeCollection\n" +
		"- **stageLabel**: Review\n" +
		"\n" +
		"**eTag**: `20230601T120000.000 GMT` (use for the next conditional write)\n"
	require.Equal(t, want, got)
}

func TestFormatSuccess_Deterministic(t *testing.T) {
	a := FormatSuccess("Get Case", sampleResult(), &FormatContext{})
	for i := 0; i < 20; i++ {
		require.Equal(t, a, FormatSuccess("Get Case", sampleResult(), &FormatContext{}))
	}
}

func TestFormatSuccess_AutoFetchNote(t *testing.T) {
	got := FormatSuccess("Perform Case Action", &dx.Result{}, &FormatContext{AutoFetchedETag: true})
	require.Contains(t, got, "fetched automatically")
	require.True(t, len(got) > 0 && got[0] == '#')
}

func TestFormatSuccess_EmptyBody(t *testing.T) {
	got := FormatSuccess("Delete Case", &dx.Result{}, &FormatContext{})
	require.Contains(t, got, "completed with no response body")
}

func TestFormatError_PreconditionFailed(t *testing.T) {
	err := &dx.Error{
		Kind:    dx.KindPreconditionFailed,
		Message: "The case was updated by another operator",
		Status:  412,
		Details: []dx.ErrorDetail{
			{Message: "Error_Conflict", LocalizedValue: "Case contents changed", Field: ".Status"},
		},
	}
	got := FormatError("Perform Assignment Action", err, &FormatContext{})

	require.Contains(t, got, "## ❌ Perform Assignment Action failed\n")
	require.Contains(t, got, "- **Error**: PRECONDITION_FAILED\n")
	require.Contains(t, got, "- **HTTP status**: 412\n")
	require.Contains(t, got, "Case contents changed (field: .Status)")
	require.Contains(t, got, "Re-read", "remediation must tell the caller to refresh the eTag")
}

func TestFormatError_WrapsNonDomainErrors(t *testing.T) {
	got := FormatError("Get Case", assertableError("boom"), &FormatContext{})
	require.Contains(t, got, "INTERNAL_SERVER_ERROR")
	require.Contains(t, got, "boom")
}

type assertableError string

func (e assertableError) Error() string { return string(e) }

func TestMissingRequired_FirstViolationWins(t *testing.T) {
	msg := MissingRequired(
		Field{Name: "caseID", Value: "R-1"},
		Field{Name: "actionID", Value: "  "},
		Field{Name: "eTag", Value: ""},
	)
	require.Equal(t, "actionID is required", msg)

	require.Empty(t, MissingRequired(Field{Name: "caseID", Value: "R-1"}))
}

func TestEnumViolation(t *testing.T) {
	require.Empty(t, EnumViolation("viewType", "", "form", "page"))
	require.Empty(t, EnumViolation("viewType", "form", "form", "page"))
	require.Equal(t, "viewType must be one of form, page", EnumViolation("viewType", "xml", "form", "page"))
}
