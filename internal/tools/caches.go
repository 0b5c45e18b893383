package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ee99ee/codemagic-mcp-improved/internal/codemagic"
)

// DeleteAppCacheArgs are the tool arguments for delete_app_cache.
type DeleteAppCacheArgs struct {
	AppID   string `json:"app_id" jsonschema:"The application identifier"`
	CacheID string `json:"cache_id" jsonschema:"The cache identifier to delete"`
}

func registerCaches(r *Registry, c *codemagic.Client) {
	addTool(r, &mcp.Tool{
		Name:        "get_app_caches",
		Description: "Retrieve the list of caches stored for an application",
		Annotations: readOnly(),
	}, func(ctx context.Context, args AppIDArgs) (any, error) {
		return c.ListAppCaches(ctx, args.AppID)
	})

	addTool(r, &mcp.Tool{
		Name:        "delete_all_app_caches",
		Description: "Delete all stored caches for an application",
		Annotations: destructive(),
	}, func(ctx context.Context, args AppIDArgs) (any, error) {
		return c.DeleteAllAppCaches(ctx, args.AppID)
	})

	addTool(r, &mcp.Tool{
		Name:        "delete_app_cache",
		Description: "Delete a specific cache from an application",
		Annotations: destructive(),
	}, func(ctx context.Context, args DeleteAppCacheArgs) (any, error) {
		return c.DeleteAppCache(ctx, args.AppID, args.CacheID)
	})
}
