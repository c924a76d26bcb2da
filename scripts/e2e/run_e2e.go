// Package main runs E2E smoke tests of the triage conversation flow
// against a running API server.
//
// Scenarios cover:
//   - Full scripted flow: identity -> reasons -> scale -> result
//   - Critical yes/no answer triggering the emergency protocol
//   - Free-text critical phrase detection mid-conversation
//   - Invalid answers re-issuing the same question
//   - Restart command
//
// Usage:
//
//	API_BASE_URL=http://localhost:8080 go run scripts/e2e/run_e2e.go            # runs all
//	API_BASE_URL=http://localhost:8080 go run scripts/e2e/run_e2e.go full-flow  # runs one
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

var apiBase string

// ---------------------------------------------------------------------------
// Scenario definition
// ---------------------------------------------------------------------------

type scenario struct {
	Name string
	Fn   func(t *T)
}

// T is a lightweight test context for a single scenario.
type T struct {
	passed int
	failed int
	name   string
}

func (t *T) check(name string, ok bool) {
	if ok {
		fmt.Printf("    PASS: %s\n", name)
		t.passed++
	} else {
		fmt.Printf("    FAIL: %s\n", name)
		t.failed++
	}
}

func (t *T) fatalf(format string, args ...any) {
	fmt.Printf("    FATAL: "+format+"\n", args...)
	t.failed++
	panic(t)
}

// ---------------------------------------------------------------------------
// API helpers
// ---------------------------------------------------------------------------

type chatReply struct {
	ConversationID string `json:"conversation_id"`
	Reply          string `json:"reply"`
}

func startConversation(t *T) chatReply {
	return postJSON(t, "/conversations/start", map[string]string{})
}

func sendMessage(t *T, conversationID, message string) chatReply {
	return postJSON(t, "/conversations/message", map[string]string{
		"conversation_id": conversationID,
		"message":         message,
	})
}

func postJSON(t *T, path string, payload map[string]string) chatReply {
	body, _ := json.Marshal(payload)
	resp, err := http.Post(apiBase+path, "application/json", bytes.NewReader(body))
	if err != nil {
		t.fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		t.fatalf("POST %s: status %d: %s", path, resp.StatusCode, raw)
	}

	var out chatReply
	if err := json.Unmarshal(raw, &out); err != nil {
		t.fatalf("POST %s: decode: %v", path, err)
	}
	return out
}

// advanceToReasons walks a fresh conversation through the identity stage.
func advanceToReasons(t *T) string {
	started := startConversation(t)
	convID := started.ConversationID
	sendMessage(t, convID, "Maria Oliveira")
	reply := sendMessage(t, convID, "123.456.789-09 (11) 91234-5678")
	t.check("identity completion asks first reason", strings.Contains(reply.Reply, "MOTIVO 1/12"))
	return convID
}

// ---------------------------------------------------------------------------
// Scenarios
// ---------------------------------------------------------------------------

func fullFlow(t *T) {
	convID := advanceToReasons(t)

	var reply chatReply
	for i := 0; i < 12; i++ {
		reply = sendMessage(t, convID, "não")
	}
	t.check("reason stage hands off to scale questions", strings.Contains(reply.Reply, "SINTOMA 1/10"))

	for i := 0; i < 10; i++ {
		reply = sendMessage(t, convID, "0")
	}
	t.check("final reply renders the result", strings.Contains(reply.Reply, "RESULTADO DA TRIAGEM COMPLETA"))
	t.check("all-zero answers classify as mild", strings.Contains(reply.Reply, "LEVE"))
}

func criticalReason(t *T) {
	convID := advanceToReasons(t)

	sendMessage(t, convID, "não")
	sendMessage(t, convID, "não")
	reply := sendMessage(t, convID, "sim") // suicidal thoughts
	t.check("critical reason activates emergency protocol", strings.Contains(reply.Reply, "192"))
}

func criticalPhrase(t *T) {
	convID := advanceToReasons(t)

	reply := sendMessage(t, convID, "não aguento mais viver assim")
	t.check("critical phrase short-circuits the script", strings.Contains(reply.Reply, "192"))
}

func invalidAnswers(t *T) {
	convID := advanceToReasons(t)

	reply := sendMessage(t, convID, "talvez")
	t.check("invalid yes/no re-issues the same question", strings.Contains(reply.Reply, "MOTIVO 1/12"))

	reply = sendMessage(t, convID, "sim")
	t.check("valid answer advances to the next question", strings.Contains(reply.Reply, "MOTIVO 2/12"))
}

func restartCommand(t *T) {
	convID := advanceToReasons(t)

	reply := sendMessage(t, convID, "reiniciar")
	t.check("restart returns to the name prompt", strings.Contains(strings.ToLower(reply.Reply), "nome"))
}

// ---------------------------------------------------------------------------
// Runner
// ---------------------------------------------------------------------------

var scenarios = []scenario{
	{"full-flow", fullFlow},
	{"critical-reason", criticalReason},
	{"critical-phrase", criticalPhrase},
	{"invalid-answers", invalidAnswers},
	{"restart", restartCommand},
}

func runScenario(s scenario) (passed, failed int) {
	t := &T{name: s.Name}
	fmt.Printf("=== %s\n", s.Name)
	func() {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(*T); !ok {
					panic(r)
				}
			}
		}()
		s.Fn(t)
	}()
	return t.passed, t.failed
}

func main() {
	apiBase = os.Getenv("API_BASE_URL")
	if apiBase == "" {
		apiBase = "http://localhost:8080"
	}

	only := ""
	if len(os.Args) > 1 {
		only = os.Args[1]
	}

	totalPassed, totalFailed := 0, 0
	for _, s := range scenarios {
		if only != "" && s.Name != only {
			continue
		}
		p, f := runScenario(s)
		totalPassed += p
		totalFailed += f
	}

	fmt.Printf("\n%d passed, %d failed\n", totalPassed, totalFailed)
	if totalFailed > 0 {
		os.Exit(1)
	}
}
