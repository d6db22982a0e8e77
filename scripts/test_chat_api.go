package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

const (
	baseURL = "http://localhost:8000/api"
)

// Token comes from the environment so the script works against any deployment.
var userToken = os.Getenv("CHAT_TEST_TOKEN")

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func main() {
	color.Cyan("🚀 Starting Chat API Smoke Test\n")

	if userToken == "" {
		color.Red("CHAT_TEST_TOKEN is not set")
		os.Exit(1)
	}

	// 1. Create a room
	color.Yellow("\n1. Create Room")
	roomReq := map[string]interface{}{
		"name":        "API 테스트 룸",
		"room_type":   "ai",
		"is_public":   true,
		"ai_provider": "gemini",
	}
	resp, body, err := sendRequest("POST", "/rooms/v1", userToken, roomReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var createResp map[string]interface{}
	json.Unmarshal(body, &createResp)
	prettyPrint(createResp)

	// Extract the new room id
	var roomID float64
	if data, ok := createResp["data"].(map[string]interface{}); ok {
		if id, ok := data["id"].(float64); ok {
			roomID = id
		}
	}
	if roomID == 0 {
		color.Red("Room creation did not return an id")
		os.Exit(1)
	}

	// 2. List rooms
	color.Yellow("\n2. List Public Rooms")
	resp, body, err = sendRequest("GET", "/rooms/v1?public=true", userToken, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var listResp map[string]interface{}
	json.Unmarshal(body, &listResp)
	prettyPrint(listResp)

	// 3. Join the room
	color.Yellow("\n3. Join Room")
	resp, _, err = sendRequest("POST", fmt.Sprintf("/rooms/v1/%.0f/join", roomID), userToken, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	// 4. Read empty history
	color.Yellow("\n4. Room History")
	resp, body, err = sendRequest("GET", fmt.Sprintf("/rooms/v1/%.0f/messages?limit=10", roomID), userToken, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var historyResp map[string]interface{}
	json.Unmarshal(body, &historyResp)
	prettyPrint(historyResp)

	// 5. Settings round trip
	color.Yellow("\n5. Update AI Settings")
	settingsReq := map[string]interface{}{
		"ai_provider":  "gemini",
		"gemini_model": "gemini-1.5-flash",
	}
	resp, body, err = sendRequest("PUT", "/settings/v1", userToken, settingsReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var settingsResp map[string]interface{}
	json.Unmarshal(body, &settingsResp)
	prettyPrint(settingsResp)

	color.Cyan("\n✅ Smoke test finished")
}
