package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers the batch, entry and draft routes.
func RegisterRoutes(api huma.API, batches *BatchHandler, workspace *WorkspaceHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "submit-batch",
		Method:        http.MethodPost,
		Path:          "/batches",
		Summary:       "Submit URLs for shortening",
		Description:   "Validates up to 5 URL drafts and dispatches one shortening request per non-blank draft.",
		Tags:          []string{"Batches"},
		DefaultStatus: http.StatusAccepted,
	}, batches.SubmitBatch)

	huma.Register(api, huma.Operation{
		OperationID: "get-batch",
		Method:      http.MethodGet,
		Path:        "/batches/{id}",
		Summary:     "Get batch outcome",
		Tags:        []string{"Batches"},
	}, batches.GetBatch)

	huma.Register(api, huma.Operation{
		OperationID: "list-entries",
		Method:      http.MethodGet,
		Path:        "/entries",
		Summary:     "List tracked URLs with statistics",
		Tags:        []string{"Entries"},
	}, workspace.ListEntries)

	huma.Register(api, huma.Operation{
		OperationID: "get-drafts",
		Method:      http.MethodGet,
		Path:        "/drafts",
		Summary:     "Get the form drafts",
		Tags:        []string{"Drafts"},
	}, workspace.GetDrafts)

	huma.Register(api, huma.Operation{
		OperationID: "put-drafts",
		Method:      http.MethodPut,
		Path:        "/drafts",
		Summary:     "Replace the form drafts",
		Tags:        []string{"Drafts"},
	}, workspace.PutDrafts)
}

// RegisterMockRoutes registers the mock shortening backend.
func RegisterMockRoutes(api huma.API, mock *MockHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "mock-shorten",
		Method:        http.MethodPost,
		Path:          "/mock/shorten",
		Summary:       "Shorten a URL with the mock backend",
		Tags:          []string{"Mock"},
		DefaultStatus: http.StatusCreated,
	}, mock.Shorten)

	huma.Register(api, huma.Operation{
		OperationID: "mock-redirect",
		Method:      http.MethodGet,
		Path:        "/redirect/{code}",
		Summary:     "Redirect to original URL",
		Tags:        []string{"Mock"},
	}, mock.RedirectToURL)
}
