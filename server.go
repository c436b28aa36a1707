package assistant

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ablelove766/Healthcare-AssistantNew/common/logger"
)

const Version = "1.0.0"

// ServerName identifies the MCP server to connected assistants.
const ServerName = "healthcare-mcp-server"

// NewMCPServer assembles the MCP server exposing the patient lookup tool
// backed by the client's registry.
func NewMCPServer(client *Client) *server.MCPServer {
	mcpServer := server.NewMCPServer(
		ServerName,
		Version,
		server.WithInstructions("This server provides healthcare-related tools for AI assistants."),
		server.WithToolCapabilities(false),
	)

	mcpServer.AddTool(
		mcp.NewToolWithRawSchema("getpatientlist", "Get a list of patients filtered by patient name", GetPatientListSchema()),
		HandleGetPatientList(client),
	)

	return mcpServer
}

// GetPatientListSchema describes the getpatientlist tool arguments.
func GetPatientListSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "patient_name": {
      "type": "string",
      "description": "Filter by patient name (optional, partial matches supported)"
    },
    "limit": {
      "type": "integer",
      "description": "Maximum number of patients to return (1-100, default: 10)",
      "minimum": 1,
      "maximum": 100
    }
  }
}`)
}

// HandleGetPatientList serves one patient lookup. Failures come back as
// tool text, the same way the chat layer treats them.
func HandleGetPatientList(client *Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := request.GetString("patient_name", "")
		limit := request.GetInt("limit", 0)
		logger.Debugf("mcp getpatientlist called, name=%q limit=%d", name, limit)
		return mcp.NewToolResultText(client.GetPatientList(ctx, name, limit)), nil
	}
}

// ServeStdio runs the MCP server over stdin/stdout until the stream ends.
func ServeStdio(client *Client) error {
	return server.ServeStdio(NewMCPServer(client))
}
