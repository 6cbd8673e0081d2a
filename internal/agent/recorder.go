package agent

import (
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/patchworkhq/hearth/internal/store"
)

// Recorder writes tool invocations into a conversation so the household
// can review what the assistant did. A nil Recorder disables recording.
type Recorder struct {
	convs          *store.ConversationStore
	conversationID int64
	logger         *slog.Logger
}

func NewRecorder(convs *store.ConversationStore, conversationID int64, logger *slog.Logger) *Recorder {
	return &Recorder{convs: convs, conversationID: conversationID, logger: logger}
}

// Record logs one invocation as a tool message with its call and result
// rows. Recording is best effort: a failure is logged, never returned,
// so it cannot break the tool call itself.
func (r *Recorder) Record(toolName string, req mcp.CallToolRequest, result string, isError bool) {
	if r == nil {
		return
	}

	args, err := json.Marshal(req.GetArguments())
	if err != nil {
		args = []byte("{}")
	}

	msg, err := r.convs.AppendMessage(r.conversationID, "tool", toolName)
	if err != nil {
		r.logger.Warn("record tool message", "tool", toolName, "error", err)
		return
	}
	call, err := r.convs.RecordToolCall(msg.ID, toolName, string(args))
	if err != nil {
		r.logger.Warn("record tool call", "tool", toolName, "error", err)
		return
	}
	if _, err := r.convs.RecordToolResult(call.ID, result, isError); err != nil {
		r.logger.Warn("record tool result", "tool", toolName, "error", err)
	}
}
