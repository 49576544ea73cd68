package notify

import (
	"fmt"

	"github.com/bothubai/bothub/internal/claims"
)

func claimTypeLabel(claimType string) string {
	switch claimType {
	case claims.TypeOwner:
		return "认领"
	case claims.TypeHire:
		return "雇佣"
	case claims.TypeShare:
		return "共享"
	default:
		return claimType
	}
}

// requestedCard asks the bot owner to decide on a pending request.
func requestedCard(req claims.Request) map[string]any {
	requesterName := req.RequesterID
	if req.Requester != nil && req.Requester.Name != "" {
		requesterName = req.Requester.Name
	}
	message := req.Message
	if message == "" {
		message = "无"
	}
	return map[string]any{
		"config": map[string]any{
			"wide_screen_mode": true,
		},
		"elements": []any{
			map[string]any{
				"tag": "div",
				"text": map[string]any{
					"tag":     "lark_md",
					"content": fmt.Sprintf("**%s** 请求%s你的机器人 **%s**", requesterName, claimTypeLabel(req.ClaimType), req.BotName),
				},
			},
			map[string]any{
				"tag": "div",
				"text": map[string]any{
					"tag":     "plain_text",
					"content": "理由：" + message,
				},
			},
			map[string]any{
				"tag": "action",
				"actions": []any{
					decisionButton("批准", "primary", req.ID, "approve"),
					decisionButton("拒绝", "danger", req.ID, "reject"),
				},
			},
		},
	}
}

func decisionButton(label, style, requestID, action string) map[string]any {
	return map[string]any{
		"tag":  "button",
		"text": map[string]any{"tag": "plain_text", "content": label},
		"type": style,
		"value": map[string]any{
			"request_id": requestID,
			"action":     action,
		},
	}
}

// decidedCard tells the requester how their request was resolved.
func decidedCard(req claims.Request) map[string]any {
	statusText := "已拒绝"
	color := "red"
	if req.Status == claims.StatusApproved {
		statusText = "已批准"
		color = "green"
	}
	elements := []any{
		map[string]any{
			"tag": "div",
			"text": map[string]any{
				"tag":     "lark_md",
				"content": fmt.Sprintf("你对机器人 **%s** 的%s请求%s", req.BotName, claimTypeLabel(req.ClaimType), statusText),
			},
		},
	}
	if req.ApprovalMessage != "" {
		elements = append(elements, map[string]any{
			"tag": "div",
			"text": map[string]any{
				"tag":     "plain_text",
				"content": "回复：" + req.ApprovalMessage,
			},
		})
	}
	return map[string]any{
		"config": map[string]any{
			"wide_screen_mode": true,
		},
		"header": map[string]any{
			"title":    map[string]any{"tag": "plain_text", "content": "认领请求" + statusText},
			"template": color,
		},
		"elements": elements,
	}
}
