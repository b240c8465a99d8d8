// Command chat is an interactive terminal client for the MiniLawyer API.
// It keeps one session per run, can attach a document file, and prints the
// cited sources under each answer.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

type askRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

type documentRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

type sourceView struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

type askResponse struct {
	Answer    string       `json:"answer"`
	State     string       `json:"state"`
	Caveat    string       `json:"caveat"`
	Laws      []sourceView `json:"laws"`
	Judgments []sourceView `json:"judgments"`
}

func main() {
	apiURL := envOr("MINILAWYER_API", "http://localhost:8080")
	sessionID := uuid.NewString()
	client := &http.Client{Timeout: 2 * time.Minute}

	fmt.Printf("minilawyer chat (session %s)\n", sessionID)
	fmt.Println("commands: /doc <path> attaches a document, /summary summarizes it, /quit exits")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return
		case strings.HasPrefix(line, "/doc "):
			attach(client, apiURL, sessionID, strings.TrimPrefix(line, "/doc "))
		case line == "/summary":
			summarize(client, apiURL, sessionID)
		default:
			ask(client, apiURL, sessionID, line)
		}
	}
}

func ask(client *http.Client, apiURL, sessionID, question string) {
	var resp askResponse
	if err := post(client, apiURL+"/api/ask", askRequest{SessionID: sessionID, Question: question}, &resp); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return
	}

	fmt.Println()
	fmt.Println(resp.Answer)
	if len(resp.Laws) > 0 || len(resp.Judgments) > 0 {
		fmt.Println()
		for _, l := range resp.Laws {
			fmt.Printf("  חוק: %s (%s) %.2f\n", l.Name, l.ID, l.Score)
		}
		for _, j := range resp.Judgments {
			fmt.Printf("  פסק דין: %s (%s) %.2f\n", j.Name, j.ID, j.Score)
		}
	}
	fmt.Println()
}

func attach(client *http.Client, apiURL, sessionID, path string) {
	data, err := os.ReadFile(strings.TrimSpace(path))
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return
	}
	var resp map[string]string
	if err := post(client, apiURL+"/api/document", documentRequest{SessionID: sessionID, Text: string(data)}, &resp); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return
	}
	fmt.Println("document attached, label:", resp["label"])
}

func summarize(client *http.Client, apiURL, sessionID string) {
	var resp map[string]string
	if err := post(client, apiURL+"/api/summary", map[string]string{"session_id": sessionID}, &resp); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return
	}
	fmt.Println()
	fmt.Println(resp["summary"])
	fmt.Println()
}

func post(client *http.Client, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var e map[string]string
		json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("%s: %s", resp.Status, e["error"])
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
