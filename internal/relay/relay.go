// Package relay forwards operator chat lines to a locally running agent
// server and prints the agent's replies.
package relay

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/agentwire/agentwire/pkg/logger"
	"github.com/google/uuid"
)

const (
	// Prompt is printed before every chat line.
	Prompt = "You: "
	// ExitWord ends the loop (case-insensitive).
	ExitWord = "exit"

	maxReplySize = 1 << 20
)

// Reply is one message produced by the agent.
type Reply struct {
	User   string `json:"user,omitempty"`
	Text   string `json:"text"`
	Action string `json:"action,omitempty"`
}

type request struct {
	Text     string `json:"text"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

// StatusError is returned by Send for a non-2xx answer.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return "agent server answered " + e.Status
}

// Relay posts to <Endpoint>/<AgentID>/message.
type Relay struct {
	Endpoint string
	AgentID  string
	UserID   string
	UserName string
	Client   *http.Client
	Log      logger.Logger
}

// New returns a Relay with a random user id and the display name "User".
func New(endpoint, agentID string) *Relay {
	return &Relay{
		Endpoint: strings.TrimRight(endpoint, "/"),
		AgentID:  agentID,
		UserID:   uuid.NewString(),
		UserName: "User",
		Client:   http.DefaultClient,
		Log:      logger.NewNopLogger(),
	}
}

func (r *Relay) messageURL() string {
	return r.Endpoint + "/" + url.PathEscape(r.AgentID) + "/message"
}

// Send posts text and returns the agent's replies. A 2xx body that is not a
// JSON array of replies is returned as a single reply holding the raw body.
func (r *Relay) Send(ctx context.Context, text string) ([]Reply, error) {
	body, err := json.Marshal(request{Text: text, UserID: r.UserID, UserName: r.UserName})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.messageURL(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	hc := r.Client
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
	if err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	var replies []Reply
	if err := json.Unmarshal(data, &replies); err != nil {
		return []Reply{{Text: strings.TrimSpace(string(data))}}, nil
	}
	return replies, nil
}

// Loop reads lines from in until "exit" or EOF, sending each non-empty line
// and printing replies to out. A failed send is logged and the loop goes on.
func (r *Relay) Loop(ctx context.Context, in io.Reader, out io.Writer) error {
	log := r.Log
	if log == nil {
		log = logger.NewNopLogger()
	}
	sc := bufio.NewScanner(in)
	for {
		if _, err := io.WriteString(out, Prompt); err != nil {
			return err
		}
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			return nil
		}
		line := strings.TrimSpace(sc.Text())
		if strings.EqualFold(line, ExitWord) {
			return nil
		}
		if line == "" {
			continue
		}

		replies, err := r.Send(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var se *StatusError
			if errors.As(err, &se) {
				log.Warning("agent %s: %v", r.AgentID, err)
			} else {
				log.Error("error fetching response: %v", err)
			}
			continue
		}
		for _, rep := range replies {
			if _, err := fmt.Fprintf(out, "%s: %s\n", r.AgentID, rep.Text); err != nil {
				return err
			}
		}
	}
}
