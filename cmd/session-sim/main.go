package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"
)

// session-sim drives a full session lifecycle against a running tracker:
// create, start, a handful of chip updates, maybe a rebuy, finalize.

type sessionView struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	BuyInCents        int64  `json:"buy_in_cents"`
	CurrentStackCents int64  `json:"current_stack_cents"`
	ProfitCents       int64  `json:"profit_cents"`
}

func main() {
	baseURL := getenv("TRACKER_URL", "http://localhost:8080")
	playerID := getenv("PLAYER_ID", "11111111-1111-1111-1111-111111111111")
	updates := getenvInt("SIM_UPDATES", 5)
	buyIn := int64(getenvInt("SIM_BUYIN_CENTS", 30000))

	client := &http.Client{Timeout: 10 * time.Second}
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	var view sessionView
	call(client, playerID, http.MethodPost, baseURL+"/api/sessions", map[string]any{
		"game_type": "cash", "game_name": "NL Hold'em 1/2", "stakes": "1/2", "buy_in_cents": buyIn,
	}, &view)
	log.Printf("created session %s buy-in %d", view.ID, view.BuyInCents)

	sessionURL := baseURL + "/api/sessions/" + view.ID
	call(client, playerID, http.MethodPost, sessionURL+"/start", nil, &view)
	log.Printf("started: %s", view.Status)

	stack := buyIn
	for i := 0; i < updates; i++ {
		time.Sleep(time.Second)
		// random walk, occasionally a rebuy when short
		if stack < buyIn/3 && rnd.Intn(2) == 0 {
			call(client, playerID, http.MethodPost, sessionURL+"/rebuys", map[string]any{"amount_cents": buyIn / 2}, &view)
			stack = view.CurrentStackCents
			log.Printf("rebuy: stack %d buy-in %d", view.CurrentStackCents, view.BuyInCents)
			continue
		}
		stack += int64(rnd.Intn(20001) - 10000)
		if stack < 0 {
			stack = 0
		}
		call(client, playerID, http.MethodPost, sessionURL+"/chip-updates", map[string]any{"amount_cents": stack}, &view)
		log.Printf("update %d: stack %d profit %d", i+1, view.CurrentStackCents, view.ProfitCents)
	}

	call(client, playerID, http.MethodPost, sessionURL+"/finalize", map[string]any{"amount_cents": stack}, &view)
	log.Printf("finalized: status %s profit %d", view.Status, view.ProfitCents)
}

func call(client *http.Client, playerID, method, url string, body any, out any) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			log.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		log.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Player-ID", playerID)
	resp, err := client.Do(req)
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var e map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&e)
		log.Fatal(fmt.Errorf("%s %s: %d %v", method, url, resp.StatusCode, e))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			log.Fatal(err)
		}
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
