package content

import (
	"fmt"
	"sort"
	"strings"

	"github.com/marco-looy/pega-dx-mcp/internal/mcp"
)

// --- pega-dx://tool-reference resource ---

// ToolReferenceResource renders a quick-reference card for every registered
// tool, grouped by category. It reads the live registry so the card never
// drifts from the catalog.
type ToolReferenceResource struct {
	Registry *mcp.Registry
}

func (r *ToolReferenceResource) Definition() mcp.ResourceDefinition {
	return mcp.ResourceDefinition{
		URI:         "pega-dx://tool-reference",
		Name:        "Pega DX Tool Reference",
		Description: "Quick-reference card for every tool, grouped by category, with one-line usage notes",
		MimeType:    "text/markdown",
	}
}

func (r *ToolReferenceResource) Read() (*mcp.ResourcesReadResult, error) {
	var sb strings.Builder
	sb.WriteString("# Tool Reference\n")

	counts := r.Registry.CategoryCounts()
	categories := make([]string, 0, len(counts))
	for cat := range counts {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	for _, cat := range categories {
		fmt.Fprintf(&sb, "\n## %s\n\n", cat)
		for _, name := range r.Registry.CategoryNames(cat) {
			tool := r.Registry.Get(name)
			fmt.Fprintf(&sb, "- **%s** — %s\n", name, tool.Description())
		}
	}

	return &mcp.ResourcesReadResult{
		Contents: []mcp.ResourceContent{
			{
				URI:      "pega-dx://tool-reference",
				MimeType: "text/markdown",
				Text:     sb.String(),
			},
		},
	}, nil
}

// --- pega-dx://auth-guide resource ---

// AuthGuideResource documents how the gateway authenticates against the
// DX API and how per-call credential overrides work.
type AuthGuideResource struct{}

func (r *AuthGuideResource) Definition() mcp.ResourceDefinition {
	return mcp.ResourceDefinition{
		URI:         "pega-dx://auth-guide",
		Name:        "Authentication Guide",
		Description: "How the gateway obtains OAuth2 tokens, how sessionCredentials overrides work, and how to troubleshoot auth failures",
		MimeType:    "text/markdown",
	}
}

func (r *AuthGuideResource) Read() (*mcp.ResourcesReadResult, error) {
	return &mcp.ResourcesReadResult{
		Contents: []mcp.ResourceContent{
			{
				URI:      "pega-dx://auth-guide",
				MimeType: "text/markdown",
				Text:     authGuideContent,
			},
		},
	}, nil
}

const authGuideContent = `# Authentication

The gateway authenticates against the Pega DX API with OAuth2 client
credentials.

## Server defaults

Configure once, used by every call that carries no override:

- ` + "`PEGA_BASE_URL`" + ` — the Infinity application URL ending in /prweb
- ` + "`PEGA_CLIENT_ID`" + ` / ` + "`PEGA_CLIENT_SECRET`" + ` — an OAuth2 client
  registration with the client_credentials grant
- ` + "`PEGA_TOKEN_URL`" + ` — optional; derived as
  <base>/PRRestService/oauth2/v1/token when unset

## Per-call override

Every tool accepts a ` + "`sessionCredentials`" + ` object with the same four
fields. Supplied fields replace the defaults for that invocation only;
nothing is shared with other calls, and tokens for different credentials
never mix.

## Token lifecycle

Tokens are cached per credential set and refreshed when expired or when the
upstream answers 401. A 401 triggers exactly one refresh and one retry; a
second 401 surfaces as UNAUTHORIZED.

## Troubleshooting

- AUTH_FAILED: the token endpoint rejected the client ID/secret. Verify the
  registration and the grant type.
- UNAUTHORIZED: the token was accepted by the token service but rejected by
  the API. Check the operator mapping and access group of the client.
- FORBIDDEN: authenticated, but the operator lacks access to the case type
  or action.`
