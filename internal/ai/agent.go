package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-aqua-delivery/internal/database"
	"go-aqua-delivery/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// RunAgent answers an admin's natural-language question about the business
// using function calling over the live database.
func RunAgent(userMessage string, apiKey string) (string, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-2.0-flash-001")

	today := time.Now().Format("2006-01-02")

	systemPrompt := fmt.Sprintf(`SYSTEM: Today is %s. You are the assistant for a water-delivery business.

	RULES:
	1. STOCK: If the user asks for PRICE, STOCK or DETAILS of a product,
	   call 'check_inventory' and read the JSON to answer.
	2. SALES: If the user asks for revenue or delivery counts, use
	   'get_sales_report' with a date range.
	3. SUBSCRIPTIONS: If the user asks about a client's prepaid plan,
	   call 'check_subscription' with the subscription id.

	USER: %s`, today, userMessage)

	model.Tools = []*genai.Tool{
		{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				{
					Name:        "check_inventory",
					Description: "Get the full product list with ID, Name, Category, Price and Stock.",
				},
				{
					Name:        "get_sales_report",
					Description: "Get delivered revenue and order count for a date range.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
							"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
						},
						Required: []string{"start_date", "end_date"},
					},
				},
				{
					Name:        "check_subscription",
					Description: "Get the remaining bottle balance and status of a subscription.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"subscription_id": {Type: genai.TypeInteger, Description: "ID of the subscription"},
						},
						Required: []string{"subscription_id"},
					},
				},
			},
		},
	}

	session := model.StartChat()

	resp, err := session.SendMessage(ctx, genai.Text(systemPrompt))
	if err != nil {
		return "", err
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if funcCall, ok := part.(genai.FunctionCall); ok {
			switch funcCall.Name {
			case "check_inventory":
				return executeCheckInventory(ctx, session), nil
			case "get_sales_report":
				return executeSalesReport(ctx, session, funcCall), nil
			case "check_subscription":
				return executeCheckSubscription(ctx, session, funcCall), nil
			}
		}
	}

	return printResponse(resp), nil
}

func executeCheckInventory(ctx context.Context, session *genai.ChatSession) string {
	var products []models.Product
	database.DB.Find(&products)

	type SimpleProduct struct {
		ID       uint    `json:"id"`
		Name     string  `json:"name"`
		Category string  `json:"category"`
		Stock    int     `json:"stock"`
		Price    float64 `json:"price"`
	}
	var simpleList []SimpleProduct
	for _, p := range products {
		simpleList = append(simpleList, SimpleProduct{
			ID:       p.ID,
			Name:     p.Name,
			Category: p.Category,
			Stock:    p.StockQuantity,
			Price:    p.Price,
		})
	}

	jsonBytes, _ := json.Marshal(simpleList)

	finalResp, err := session.SendMessage(ctx, genai.FunctionResponse{
		Name:     "check_inventory",
		Response: map[string]interface{}{"inventory": string(jsonBytes)},
	})
	if err != nil {
		return "Error reading inventory."
	}
	return printResponse(finalResp)
}

func executeSalesReport(ctx context.Context, session *genai.ChatSession, funcCall genai.FunctionCall) string {
	args := funcCall.Args
	startStr := args["start_date"].(string)
	endStr := args["end_date"].(string)

	start, err1 := time.Parse("2006-01-02", startStr)
	end, err2 := time.Parse("2006-01-02", endStr)

	if err1 != nil || err2 != nil {
		return "Error: Dates must be in YYYY-MM-DD format."
	}
	end = end.Add(23*time.Hour + 59*time.Minute)

	report, err := database.GetSalesReport(start, end)
	if err != nil {
		return "Error calculating sales."
	}

	finalResp, _ := session.SendMessage(ctx, genai.FunctionResponse{
		Name: "get_sales_report",
		Response: map[string]interface{}{
			"revenue":         report.TotalRevenue,
			"delivered_count": report.TotalCount,
		},
	})
	return printResponse(finalResp)
}

func executeCheckSubscription(ctx context.Context, session *genai.ChatSession, funcCall genai.FunctionCall) string {
	args := funcCall.Args
	subID := int(args["subscription_id"].(float64))

	var sub models.Subscription
	if err := database.DB.First(&sub, subID).Error; err != nil {
		finalResp, _ := session.SendMessage(ctx, genai.FunctionResponse{
			Name:     "check_subscription",
			Response: map[string]interface{}{"status": "not found"},
		})
		return printResponse(finalResp)
	}

	finalResp, _ := session.SendMessage(ctx, genai.FunctionResponse{
		Name: "check_subscription",
		Response: map[string]interface{}{
			"status":            sub.Status,
			"bottles_remaining": sub.BottlesRemaining,
			"bottles_delivered": sub.BottlesDelivered,
			"daily_cap":         sub.DailyCap,
		},
	})
	return printResponse(finalResp)
}

func printResponse(resp *genai.GenerateContentResponse) string {
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I completed the action."
}
