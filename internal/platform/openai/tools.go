package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ToolSpec describes a function tool. Parameters is a JSON schema object;
// tools are sent in strict mode, so every property must be required and
// additionalProperties must be false.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is a function invocation requested by the model.
type ToolCall struct {
	CallID    string
	Name      string
	Arguments json.RawMessage
}

// ToolExchange is a completed call together with the observation sent back.
type ToolExchange struct {
	Call   ToolCall
	Output string
}

// ToolRequest is one turn of a tool loop. History is replayed in order
// after the user message.
type ToolRequest struct {
	System  string
	User    string
	Tools   []ToolSpec
	History []ToolExchange
}

// ToolResponse holds either the calls the model wants executed or, when
// Calls is empty, its final text.
type ToolResponse struct {
	Text  string
	Calls []ToolCall
}

type functionTool struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters"`
	Strict      bool           `json:"strict"`
}

type functionCallItem struct {
	Type      string `json:"type"`
	CallID    string `json:"call_id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type functionCallOutputItem struct {
	Type   string `json:"type"`
	CallID string `json:"call_id"`
	Output string `json:"output"`
}

func (c *client) RunTools(ctx context.Context, tr ToolRequest) (ToolResponse, error) {
	req := responsesRequest{
		Model:        c.model,
		Instructions: tr.System,
		Input:        BuildToolInput(tr),
	}
	for _, t := range tr.Tools {
		req.Tools = append(req.Tools, functionTool{
			Type:        "function",
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
			Strict:      true,
		})
	}

	var resp responsesResponse
	if err := c.doResponses(ctx, &req, &resp); err != nil {
		return ToolResponse{}, err
	}
	if resp.Refusal != "" {
		return ToolResponse{}, fmt.Errorf("model refused: %s", resp.Refusal)
	}
	return parseToolResponse(resp)
}

// BuildToolInput renders the user message followed by each call and its output.
func BuildToolInput(tr ToolRequest) []any {
	input := []any{message{Role: "user", Content: tr.User}}
	for _, ex := range tr.History {
		input = append(input,
			functionCallItem{Type: "function_call", CallID: ex.Call.CallID, Name: ex.Call.Name, Arguments: string(ex.Call.Arguments)},
			functionCallOutputItem{Type: "function_call_output", CallID: ex.Call.CallID, Output: ex.Output},
		)
	}
	return input
}

func parseToolResponse(resp responsesResponse) (ToolResponse, error) {
	out := ToolResponse{}
	for _, item := range resp.Output {
		if item.Type != "function_call" {
			continue
		}
		name := strings.TrimSpace(item.Name)
		if name == "" || strings.TrimSpace(item.CallID) == "" {
			return ToolResponse{}, fmt.Errorf("function_call missing name or call_id")
		}
		args := strings.TrimSpace(item.Arguments)
		if args == "" {
			args = "{}"
		}
		out.Calls = append(out.Calls, ToolCall{CallID: item.CallID, Name: name, Arguments: json.RawMessage(args)})
	}
	if len(out.Calls) == 0 {
		out.Text = extractOutputText(resp)
		if strings.TrimSpace(out.Text) == "" {
			return ToolResponse{}, fmt.Errorf("no output_text or function_call found in response")
		}
	}
	return out, nil
}
